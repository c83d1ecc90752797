package auth

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/vpoint-tv/vpoint-api/handlers"
	"github.com/vpoint-tv/vpoint-api/model"
	"github.com/vpoint-tv/vpoint-api/services"
	authutil "github.com/vpoint-tv/vpoint-api/utils/auth"
	"github.com/vpoint-tv/vpoint-api/utils/middleware"
	"github.com/vpoint-tv/vpoint-api/utils/response"
	"github.com/vpoint-tv/vpoint-api/utils/validation"
)

// maxOperatorFailures locks an operator name regardless of source IP
const maxOperatorFailures = 10

// AuthHandler handles operator sign in and sign out
type AuthHandler struct {
	operators            *services.OperatorService
	jwtManager           *authutil.JWTManager
	blacklistService     *authutil.BlacklistService
	bruteForceProtection *middleware.BruteForceProtection
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil when Redis is unavailable.
func NewAuthHandler(
	operators *services.OperatorService,
	jwtManager *authutil.JWTManager,
	blacklistService *authutil.BlacklistService,
	bruteForce *middleware.BruteForceProtection,
) *AuthHandler {
	return &AuthHandler{
		operators:            operators,
		jwtManager:           jwtManager,
		blacklistService:     blacklistService,
		bruteForceProtection: bruteForce,
	}
}

// LoginRequest represents an operator login request
type LoginRequest struct {
	Name     string `json:"name" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=72"`
}

// LoginResponse represents a successful login response
type LoginResponse struct {
	Operator    *model.Operator `json:"operator"`
	AccessToken string          `json:"accessToken"`
	ExpiresIn   int             `json:"expiresIn"` // in seconds
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return handlers.BadBody(c, err)
	}
	if err := validation.ValidateStruct(req); err != nil {
		field, msg := validation.FirstError(err)
		return response.ValidationError(c, field, msg)
	}

	ip := c.IP()

	if h.bruteForceProtection != nil {
		if failures, err := h.bruteForceProtection.OperatorFailures(c, req.Name); err == nil && failures >= maxOperatorFailures {
			return response.TooManyRequests(c, "Too many failed attempts for this operator. Try again later")
		}
	}

	op, err := h.operators.Authenticate(c.UserContext(), req.Name, req.Password, ip)
	if err != nil {
		if h.bruteForceProtection != nil {
			h.bruteForceProtection.RecordFailedAttempt(c, ip, req.Name)
		}
		return handlers.RespondError(c, err)
	}

	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccessfulAttempt(c, ip, op.Name)
	}

	accessToken, _, err := h.jwtManager.GenerateAccessToken(op.ID, op.Name, string(op.Role), op.IsSuperAdmin, op.TokenVersion)
	if err != nil {
		return response.InternalServerError(c, "Failed to generate access token")
	}

	return response.Success(c, LoginResponse{
		Operator:    op,
		AccessToken: accessToken,
		ExpiresIn:   int(h.jwtManager.Expiry().Seconds()),
	})
}

// Logout handles POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	jti, ok := middleware.GetTokenJTI(c)
	if !ok {
		return response.BadRequest(c, "No token ID found")
	}

	expiresAt := time.Now().Add(h.jwtManager.Expiry())
	if claims, ok := middleware.GetClaims(c); ok && claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := h.blacklistService.RevokeToken(c.UserContext(), jti, actor.OperatorID, expiresAt, "logout"); err != nil {
		return response.InternalServerError(c, "Failed to logout")
	}

	if err := h.operators.Logout(c.UserContext(), actor); err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "Successfully logged out", nil)
}

// LogoutAll handles POST /api/v1/auth/logout-all
// Bumping the token version invalidates every session of the operator.
func (h *AuthHandler) LogoutAll(c *fiber.Ctx) error {
	actor, ok := middleware.GetActor(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}

	if err := h.blacklistService.RevokeAllOperatorTokens(c.UserContext(), actor.OperatorID); err != nil {
		return response.InternalServerError(c, "Failed to revoke sessions")
	}

	if err := h.operators.Logout(c.UserContext(), actor); err != nil {
		return handlers.RespondError(c, err)
	}

	return response.SuccessWithMessage(c, "All sessions revoked", nil)
}

// Me handles GET /api/v1/auth/me
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	op, ok := middleware.GetOperator(c)
	if !ok {
		return response.Unauthorized(c, "Not authenticated")
	}
	return response.Success(c, op)
}
