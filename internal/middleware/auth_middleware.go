package middleware

import (
	"strings"

	"sgad-api/internal/permission"
	"sgad-api/internal/repository"
	"sgad-api/internal/service"
	"sgad-api/pkg/jwt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const actorKey = "actor"

// RequireAuth validates the bearer token, enforces the single-session token
// version and stores the caller as a service.Actor in the context.
func RequireAuth(userRepo repository.UserRepository, tokens *jwt.Manager) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing authorization token"})
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid authorization format. Use: Bearer <token>"})
		}

		claims, err := tokens.ValidateToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid or expired token"})
		}

		// role is read from the database so that a role change applies at once
		user, err := userRepo.FindByID(claims.UserID)
		if err != nil || !user.IsActive {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "User not found"})
		}
		if user.TokenVersion != claims.TokenVersion {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Session expired (logged in on another device)"})
		}

		c.Locals("user_id", user.ID.String())
		c.Locals("user_email", user.Email)
		c.Locals("user_name", user.FullName)
		c.Locals("user_role", string(user.RoleCode))
		SetActor(c, service.Actor{
			UserID:  user.ID,
			Role:    user.RoleCode,
			Name:    user.FullName,
			Email:   user.Email,
			OrgUnit: user.OrgUnit,
		})

		return c.Next()
	}
}

// CurrentActor returns the caller stored by RequireAuth.
func CurrentActor(c *fiber.Ctx) (service.Actor, bool) {
	a, ok := c.Locals(actorKey).(service.Actor)
	return a, ok && a.UserID != uuid.Nil
}

// SetActor stores a caller in the context.
func SetActor(c *fiber.Ctx, a service.Actor) {
	c.Locals(actorKey, a)
}

// RequireModule rejects callers whose role has no access to the module.
// The message never says which part of the check failed.
func RequireModule(evaluator *permission.Evaluator, module permission.ModuleCode) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok || !evaluator.HasModuleAccess(actor.Role, module) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}

// RequirePermission rejects callers without the module/action grant. Cycle
// locks are checked by the services, which know the record's cycle.
func RequirePermission(evaluator *permission.Evaluator, module permission.ModuleCode, action permission.Action) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := CurrentActor(c)
		if !ok || !evaluator.HasPermission(actor.Role, module, action) {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Forbidden"})
		}
		return c.Next()
	}
}
