package fiber

import (
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/limiter"

	"github.com/okrent/vouch"
)

type Adapter struct {
	app  *fiber.App
	auth vouch.AuthProvider
}

var _ vouch.HTTPAdapter = (*Adapter)(nil)

func New(app *fiber.App) *Adapter {
	return &Adapter{app: app}
}

func (a *Adapter) RegisterRoutes(v *vouch.Vouch) error {
	a.auth = v.Auth

	api := a.app.Group(v.BasePath)

	// Email-sending routes are throttled per client, one bucket per route.
	emailThrottle := func() fiber.Handler {
		return limiter.New(limiter.Config{
			Max:        6,
			Expiration: 1 * time.Minute,
		})
	}

	// Public routes
	api.Post("/register", a.register)
	api.Post("/login", a.login)
	api.Get("/verify-email", a.verifyEmail)
	api.Post("/forgot-password", emailThrottle(), a.forgotPassword)
	api.Post("/reset-password", a.resetPassword)

	// Protected routes
	api.Post("/logout", a.requireAuth, a.logout)
	api.Post("/resend-verification", emailThrottle(), a.requireAuth, a.resendVerification)

	return nil
}
