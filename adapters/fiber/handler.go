package fiber

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v3"

	"github.com/okrent/vouch"
	"github.com/okrent/vouch/core"
)

// register handles the registration endpoint.
func (a *Adapter) register(c fiber.Ctx) error {
	var input vouch.RegisterInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := a.auth.Register(input)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusCreated).JSON(result)
}

// login handles the login endpoint.
func (a *Adapter) login(c fiber.Ctx) error {
	var input vouch.LoginInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	result, err := a.auth.Login(input)
	if err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(result)
}

// logout revokes the presented token. Runs behind requireAuth, so the token
// is known to be present and valid.
func (a *Adapter) logout(c fiber.Ctx) error {
	token := extractToken(c)

	if err := a.auth.Logout(token); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "logged out successfully",
	})
}

// verifyEmail consumes a signed verification link grant.
func (a *Adapter) verifyEmail(c fiber.Ctx) error {
	grant := c.Query("grant")
	if grant == "" {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": vouch.ErrInvalidSignature.Error(),
		})
	}

	if err := a.auth.VerifyEmailGrant(grant); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "email verified successfully",
	})
}

// resendVerification re-sends the verification email to the authenticated
// user.
func (a *Adapter) resendVerification(c fiber.Ctx) error {
	user, ok := c.Locals("user").(*vouch.User)
	if !ok {
		return c.Status(http.StatusUnauthorized).JSON(fiber.Map{
			"error": vouch.ErrInvalidToken.Error(),
		})
	}

	if err := a.auth.ResendVerification(user); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "verification email sent",
	})
}

// forgotPassword issues a password reset token. The response is identical
// whether or not the email belongs to an account.
func (a *Adapter) forgotPassword(c fiber.Ctx) error {
	var input struct {
		Email string `json:"email"`
	}
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := a.auth.RequestPasswordReset(input.Email); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "password reset link sent",
	})
}

// resetPassword consumes a reset token and installs the new password.
func (a *Adapter) resetPassword(c fiber.Ctx) error {
	var input vouch.ResetPasswordInput
	if err := c.Bind().Body(&input); err != nil {
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if err := a.auth.ResetPassword(input); err != nil {
		return handleAuthError(c, err)
	}

	return c.Status(http.StatusOK).JSON(fiber.Map{
		"message": "password has been reset",
	})
}

// extractToken extracts the bearer token from the Authorization header.
func extractToken(c fiber.Ctx) string {
	authHeader := c.Get(fiber.HeaderAuthorization)
	if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
		return authHeader[7:]
	}
	return ""
}

// handleAuthError maps service errors to HTTP responses. Validation errors
// carry a per-field breakdown; unexpected errors never leak their message.
func handleAuthError(c fiber.Ctx, err error) error {
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		fields := make(map[string]string, len(verr.Fields))
		for _, f := range verr.Fields {
			fields[f.Field] = f.Message
		}
		return c.Status(http.StatusBadRequest).JSON(fiber.Map{
			"error":  "validation failed",
			"fields": fields,
		})
	}

	status := mapErrorToStatus(err)
	if status == http.StatusInternalServerError {
		return c.Status(status).JSON(fiber.Map{
			"error": "internal server error",
		})
	}
	return c.Status(status).JSON(fiber.Map{
		"error": err.Error(),
	})
}

// mapErrorToStatus maps service error types to HTTP status codes.
func mapErrorToStatus(err error) int {
	if err == nil {
		return http.StatusOK
	}

	switch {
	case errors.Is(err, vouch.ErrInvalidCredentials),
		errors.Is(err, vouch.ErrMissingAuthHeader),
		errors.Is(err, vouch.ErrInvalidAuthHeader),
		errors.Is(err, vouch.ErrInvalidToken),
		errors.Is(err, vouch.ErrTokenExpired):
		return http.StatusUnauthorized

	case errors.Is(err, vouch.ErrEmailTaken),
		errors.Is(err, vouch.ErrAlreadyVerified):
		return http.StatusConflict

	case errors.Is(err, vouch.ErrUserNotFound):
		return http.StatusNotFound

	case errors.Is(err, vouch.ErrInvalidSignature),
		errors.Is(err, vouch.ErrResetInvalid),
		errors.Is(err, vouch.ErrNameRequired),
		errors.Is(err, vouch.ErrEmailRequired),
		errors.Is(err, vouch.ErrInvalidEmail),
		errors.Is(err, vouch.ErrPasswordRequired),
		errors.Is(err, vouch.ErrPasswordTooShort),
		errors.Is(err, vouch.ErrPasswordTooLong),
		errors.Is(err, vouch.ErrPasswordMismatch):
		return http.StatusBadRequest

	default:
		return http.StatusInternalServerError
	}
}
