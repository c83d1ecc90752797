package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/services"
	"github.com/vpoint-tv/vpoint-api/utils"
	"github.com/vpoint-tv/vpoint-api/utils/auth"
	"github.com/vpoint-tv/vpoint-api/utils/response"
	"gorm.io/gorm"
)

const (
	localOperator = "operator"
	localClaims   = "claims"
	localActor    = "actor"
	localJTI      = "token_jti"
)

// AuthMiddleware handles operator JWT authentication
type AuthMiddleware struct {
	jwtManager       *auth.JWTManager
	blacklistService *auth.BlacklistService
	db               *gorm.DB
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, db *gorm.DB) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager:       jwtManager,
		blacklistService: auth.NewBlacklistService(db),
		db:               db,
	}
}

func bearerToken(c *fiber.Ctx) (string, bool) {
	parts := strings.SplitN(c.Get(fiber.HeaderAuthorization), " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

// Required is middleware that requires a valid token of an active operator.
// Role and super-admin status are taken from the stored operator, so a
// demotion takes effect on the next request.
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Get(fiber.HeaderAuthorization) == "" {
			return response.Unauthorized(c, "Missing authorization token")
		}
		tokenString, ok := bearerToken(c)
		if !ok {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateToken(tokenString)
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		isRevoked, err := m.blacklistService.IsTokenRevoked(c.UserContext(), claims.ID)
		if err != nil {
			utils.Log.WithError(err).Error("failed to check token blacklist")
			return response.InternalServerError(c, "Failed to check token status")
		}
		if isRevoked {
			return response.Unauthorized(c, "Token has been revoked")
		}

		var op model.Operator
		if err := m.db.WithContext(c.UserContext()).First(&op, "id = ?", claims.OperatorID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return response.Unauthorized(c, "Operator not found")
			}
			return response.InternalServerError(c, "Failed to load operator")
		}

		if op.TokenVersion != claims.TokenVersion {
			return response.Unauthorized(c, "Token has been invalidated")
		}
		if !op.IsActive() {
			return response.Forbidden(c, "Operator account is suspended")
		}

		c.Locals(localOperator, &op)
		c.Locals(localClaims, claims)
		c.Locals(localJTI, claims.ID)
		c.Locals(localActor, services.Actor{
			OperatorID: op.ID,
			Name:       op.Name,
			Role:       op.Role,
			SuperAdmin: op.IsSuperAdmin,
		})

		return c.Next()
	}
}

// RequireRole allows operators holding one of roles. Super admins always pass.
func (m *AuthMiddleware) RequireRole(roles ...model.OperatorRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := GetActor(c)
		if !ok {
			return response.Forbidden(c, "Access denied")
		}
		if actor.SuperAdmin {
			return c.Next()
		}
		for _, r := range roles {
			if actor.Role == r {
				return c.Next()
			}
		}
		return response.Forbidden(c, "Insufficient permissions")
	}
}

// GetActor extracts the authenticated actor from context
func GetActor(c *fiber.Ctx) (services.Actor, bool) {
	actor, ok := c.Locals(localActor).(services.Actor)
	return actor, ok
}

// GetOperator extracts the stored operator from context
func GetOperator(c *fiber.Ctx) (*model.Operator, bool) {
	op, ok := c.Locals(localOperator).(*model.Operator)
	return op, ok && op != nil
}

// GetClaims extracts full claims from context
func GetClaims(c *fiber.Ctx) (*auth.Claims, bool) {
	claims, ok := c.Locals(localClaims).(*auth.Claims)
	return claims, ok && claims != nil
}

// GetTokenJTI extracts the token JTI from context
func GetTokenJTI(c *fiber.Ctx) (string, bool) {
	jti, ok := c.Locals(localJTI).(string)
	return jti, ok
}
