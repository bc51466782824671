package fiber

import (
	"github.com/gofiber/fiber/v3"

	"github.com/okrent/vouch"
)

// requireAuth validates the bearer token and stores the resolved user and
// token record in the context for downstream handlers. A missing header and
// a present-but-malformed one are reported as distinct 401s; internal
// failures go through handleAuthError so their text never reaches the
// client.
func (a *Adapter) requireAuth(c fiber.Ctx) error {
	if c.Get(fiber.HeaderAuthorization) == "" {
		return handleAuthError(c, vouch.ErrMissingAuthHeader)
	}

	token := extractToken(c)
	if token == "" {
		return handleAuthError(c, vouch.ErrInvalidAuthHeader)
	}

	user, record, err := a.auth.Authenticate(token)
	if err != nil {
		return handleAuthError(c, err)
	}

	c.Locals("user", user)
	c.Locals("token", record)

	return c.Next()
}
