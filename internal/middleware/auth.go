package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/example/yemak/internal/config"
	"github.com/example/yemak/internal/models"
	"github.com/example/yemak/internal/services"
	"github.com/example/yemak/internal/utils"
)

const actorContextKey = "currentActor"

// AuthMiddleware validates JWT tokens and loads the authenticated actor
// (user ID plus role) into the request context.
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "missing authorization header")
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid authorization header")
		}

		userID, role, err := utils.ParseToken(cfg.JWTSecret, parts[1])
		if err != nil {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		c.Locals(actorContextKey, services.Actor{ID: userID, Role: role})
		return c.Next()
	}
}

// CurrentActor extracts the authenticated actor from the request context.
func CurrentActor(c *fiber.Ctx) (services.Actor, bool) {
	value := c.Locals(actorContextKey)
	if value == nil {
		return services.Actor{}, false
	}

	if actor, ok := value.(services.Actor); ok {
		return actor, true
	}

	return services.Actor{}, false
}

// RequireRole lets only the listed roles through. Role mismatches never
// reach the store.
func RequireRole(roles ...models.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "unauthorized")
		}

		for _, role := range roles {
			if actor.Role == role {
				return c.Next()
			}
		}

		return fiber.NewError(fiber.StatusForbidden, "forbidden for this role")
	}
}
