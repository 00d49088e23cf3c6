package auth

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"

	"github.com/byZeet/centralita-neron/internal/domain"
	"github.com/byZeet/centralita-neron/internal/repository"
	apperrors "github.com/byZeet/centralita-neron/pkg/util/errorutil"
)

const principalKey = "auth_principal"

// Principal represents the authenticated operator.
type Principal struct {
	Operator *domain.Operator
	Role     domain.OperatorRole
}

// AuthMiddleware validates bearer tokens and loads the operator principal.
type AuthMiddleware struct {
	tokens    *TokenManager
	operators repository.OperatorRepository
}

// NewAuthMiddleware constructs middleware.
func NewAuthMiddleware(tokens *TokenManager, operators repository.OperatorRepository) *AuthMiddleware {
	return &AuthMiddleware{tokens: tokens, operators: operators}
}

// Handle enforces authentication for protected routes.
func (m *AuthMiddleware) Handle(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return apperrors.NewUnauthorized("missing authorization header")
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return apperrors.NewUnauthorized("invalid authorization header")
	}

	claims, err := m.tokens.ParseToken(parts[1])
	if err != nil {
		return apperrors.NewUnauthorized("invalid token")
	}

	operator, err := m.operators.GetByID(c.Context(), claims.OperatorID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewUnauthorized("operator not found")
		}
		return apperrors.MapError(err)
	}

	c.Locals(principalKey, &Principal{Operator: operator, Role: operator.Role})
	return c.Next()
}

// RequireAdmin gates a route to admin operators. Must run after Handle.
func RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, ok := PrincipalFromContext(c)
		if !ok {
			return apperrors.NewUnauthorized("authentication required")
		}
		if principal.Role != domain.OperatorRoleAdmin {
			return apperrors.NewForbidden("admin role required")
		}
		return c.Next()
	}
}

// PrincipalFromContext retrieves the authenticated operator.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
