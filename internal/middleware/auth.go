package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"vishubh-healthcare-server/internal/config"
	"vishubh-healthcare-server/internal/models"
	"vishubh-healthcare-server/internal/utils"
)

const actorKey = "actor"

// Actor is the authenticated principal of a request. Handlers branch on the
// Role variant rather than comparing raw strings from the token.
type Actor struct {
	ID   string
	Role models.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool { return a.Role == models.RoleAdmin }

// IsDoctor reports whether the actor holds the doctor role.
func (a Actor) IsDoctor() bool { return a.Role == models.RoleDoctor }

// IsPatient reports whether the actor holds the patient role.
func (a Actor) IsPatient() bool { return a.Role == models.RolePatient }

// CanActFor reports whether the actor may operate on the given user's
// resources: admins always, everyone else only on their own.
func (a Actor) CanActFor(userID string) bool {
	return a.IsAdmin() || a.ID == userID
}

// AuthMiddleware creates a middleware for JWT authentication. On success the
// request's Actor is stored in the context.
func AuthMiddleware(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			utils.Unauthorized(c, "Authorization header required")
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			utils.Unauthorized(c, "Invalid authorization header format")
			c.Abort()
			return
		}

		claims, err := utils.ValidateToken(parts[1], cfg.JWTSecret)
		if err != nil {
			utils.Unauthorized(c, "Invalid token: "+err.Error())
			c.Abort()
			return
		}

		switch claims.Role {
		case models.RoleAdmin, models.RoleDoctor, models.RolePatient:
		default:
			utils.Unauthorized(c, "Unknown role in token")
			c.Abort()
			return
		}

		c.Set(actorKey, Actor{ID: claims.UserID, Role: claims.Role})
		c.Next()
	}
}

// RoleAuthMiddleware creates a middleware for role-based authorization.
// It should be used *after* AuthMiddleware.
func RoleAuthMiddleware(allowedRoles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := ActorFromContext(c)
		if !ok {
			utils.InternalServerError(c, "Actor not found in context. AuthMiddleware might be missing.")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if actor.Role == allowed {
				c.Next()
				return
			}
		}

		utils.Forbidden(c, "You do not have permission to access this resource.")
		c.Abort()
	}
}

// ActorFromContext returns the authenticated actor of the request.
func ActorFromContext(c *gin.Context) (Actor, bool) {
	v, exists := c.Get(actorKey)
	if !exists {
		return Actor{}, false
	}
	actor, ok := v.(Actor)
	return actor, ok
}
