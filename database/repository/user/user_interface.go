package userRepo

import (
	"context"

	"estately/models"
)

// UserRepository defines read access to user accounts.
type UserRepository interface {
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs retrieves several users in one call, keyed by id.
	GetByIDs(ctx context.Context, ids []string) (map[string]models.User, error)
}
