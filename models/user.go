package models

// Role is the account type of a user.
type Role string

const (
	RoleAdmin Role = "admin"
	RoleOwner Role = "owner"
	RoleBuyer Role = "buyer"
)

func (r Role) IsValid() bool {
	return r == RoleAdmin || r == RoleOwner || r == RoleBuyer
}

// User is a read-only view of an account record.
type User struct {
	ID    string `bson:"id" json:"id"`
	Name  string `bson:"name" json:"name"`
	Email string `bson:"email" json:"email"`
	Role  Role   `bson:"role" json:"role"`
}

// Actor identifies who is performing an operation.
type Actor struct {
	UserID string
	Role   Role
}

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }
