package middleware

import (
	"errors"
	"net/http"
	"strings"

	recordsRepo "estately/database/repository/records"
	userRepo "estately/database/repository/user"
	"estately/models"
	"estately/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ActorKey is the gin context key holding the authenticated models.Actor.
const ActorKey = "actor"

// JWTAuthMiddleware validates the bearer token and loads the caller's user
// record. The role always comes from the record, never from the token.
func JWTAuthMiddleware(users userRepo.UserRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Missing or invalid Authorization header", nil)
			return
		}
		tokenString := strings.TrimPrefix(authHeader, "Bearer ")

		userID, err := utils.ExtractIDFromToken(tokenString)
		if err != nil {
			utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "Invalid token", nil)
			return
		}

		user, err := users.GetByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, recordsRepo.ErrNotFound) {
				utils.JSONError(c, http.StatusUnauthorized, "unauthorized", "User not found", nil)
				return
			}
			utils.JSONError(c, http.StatusServiceUnavailable, "unavailable", "Could not load user", nil)
			return
		}
		if !user.Role.IsValid() {
			utils.JSONError(c, http.StatusForbidden, "forbidden", "Account has no valid role", nil)
			return
		}

		actor := models.Actor{UserID: user.ID, Role: user.Role}
		c.Set(ActorKey, actor)
		c.Set("userID", user.ID)
		c.Set("logger", loggerFrom(c).With(zap.String("userId", user.ID), zap.String("role", string(user.Role))))
		c.Next()
	}
}

// ActorFrom returns the actor set by JWTAuthMiddleware.
func ActorFrom(c *gin.Context) (models.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return models.Actor{}, false
	}
	actor, ok := v.(models.Actor)
	return actor, ok
}
