package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const principalKey = "auth_principal"

// Middleware binds the Authenticator to fiber routes. The session token
// is read from the configured cookie, falling back to a bearer header.
type Middleware struct {
	authenticator *Authenticator
	cookieName    string
}

// NewMiddleware constructs middleware.
func NewMiddleware(authenticator *Authenticator, cookieName string) *Middleware {
	if cookieName == "" {
		cookieName = "session_token"
	}
	return &Middleware{authenticator: authenticator, cookieName: cookieName}
}

// Handle authenticates the request under the given policy and stores the
// Principal for downstream handlers.
func (m *Middleware) Handle(policy Policy) fiber.Handler {
	return func(c *fiber.Ctx) error {
		principal, err := m.authenticator.Authenticate(c.UserContext(), m.extractToken(c), policy)
		if err != nil {
			return err
		}
		c.Locals(principalKey, principal)
		return c.Next()
	}
}

func (m *Middleware) extractToken(c *fiber.Ctx) string {
	if token := c.Cookies(m.cookieName); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return parts[1]
}

// PrincipalFromContext retrieves the authenticated caller.
func PrincipalFromContext(c *fiber.Ctx) (*Principal, bool) {
	val := c.Locals(principalKey)
	if val == nil {
		return nil, false
	}
	principal, ok := val.(*Principal)
	return principal, ok
}
