package vouch

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/okrent/vouch/core"
	"github.com/okrent/vouch/linksign"
	"github.com/okrent/vouch/notify"
	"github.com/okrent/vouch/pkg/cache"
	"github.com/okrent/vouch/pkg/crypto"
	"github.com/okrent/vouch/services"
)

// interfaces
type (
	AuthStorage = core.AuthStorage
	TokenCache  = core.TokenCache

	Notifier = notify.Notifier

	PasswordHandler = crypto.PasswordHandler
)

// structs
type (
	CacheConfig = core.CacheConfig

	RegisterInput      = services.RegisterInput
	LoginInput         = services.LoginInput
	ResetPasswordInput = services.ResetPasswordInput
	AuthResult         = services.AuthResult
)

type (
	User        = core.User
	AccessToken = core.AccessToken
	ResetToken  = core.ResetToken
	CacheStats  = core.CacheStats
)

const (
	defaultBasePath  = "/api/auth"
	defaultBaseURL   = "http://localhost:3000"
	defaultSecretLen = 32
)

// Constructors & helpers (convenience re-exports)
var (
	NewInMemoryCache = cache.NewInMemoryCache
	NewArgon2        = crypto.NewArgon2
	NewLogMailer     = notify.NewLogMailer
	NewSMTPMailer    = notify.NewSMTPMailer
)

var (
	ErrEmailTaken         = core.ErrEmailTaken
	ErrUserNotFound       = core.ErrUserNotFound
	ErrInvalidCredentials = core.ErrInvalidCredentials
	ErrAlreadyVerified    = core.ErrAlreadyVerified
	ErrInvalidSignature   = core.ErrInvalidSignature
	ErrResetInvalid       = core.ErrResetInvalid
)

var (
	ErrMissingAuthHeader = core.ErrMissingAuthHeader
	ErrInvalidAuthHeader = core.ErrInvalidAuthHeader
	ErrInvalidToken      = core.ErrInvalidToken
	ErrTokenExpired      = core.ErrTokenExpired
	ErrTokenNotFound     = core.ErrTokenNotFound
)

var (
	ErrNameRequired     = core.ErrNameRequired
	ErrEmailRequired    = core.ErrEmailRequired
	ErrInvalidEmail     = core.ErrInvalidEmail
	ErrPasswordRequired = core.ErrPasswordRequired
	ErrPasswordTooShort = core.ErrPasswordTooShort
	ErrPasswordTooLong  = core.ErrPasswordTooLong
	ErrPasswordMismatch = core.ErrPasswordMismatch
)

var (
	ErrStorageRequired  = core.ErrStorageRequired
	ErrNotifierRequired = core.ErrNotifierRequired
	ErrSecretRequired   = core.ErrSecretRequired
	ErrSecretTooShort   = core.ErrSecretTooShort
)

// AuthProvider is what a transport adapter needs from the service layer.
// *services.AuthService satisfies it; adapter tests substitute mocks.
type AuthProvider interface {
	Register(input services.RegisterInput) (*services.AuthResult, error)
	Login(input services.LoginInput) (*services.AuthResult, error)
	VerifyEmailGrant(grant string) error
	ResendVerification(user *core.User) error
	RequestPasswordReset(email string) error
	ResetPassword(input services.ResetPasswordInput) error
	Logout(rawToken string) error
	Authenticate(rawToken string) (*core.User, *core.AccessToken, error)
}

// HTTPAdapter mounts the lifecycle routes on a concrete web framework.
type HTTPAdapter interface {
	RegisterRoutes(v *Vouch) error
}

// Config configures a Vouch instance. Secret, Database, HTTP and Notifier
// are required; everything else has a sensible default.
type Config struct {
	Secret   string
	Database AuthStorage
	HTTP     HTTPAdapter
	Notifier Notifier

	Logger         *slog.Logger
	PasswordHasher PasswordHandler
	CacheAdapter   TokenCache
	DisableCache   bool

	// TokenTTL bounds access tokens, ResetTokenTTL bounds password reset
	// tokens, LinkTTL bounds signed verification links.
	TokenTTL      time.Duration
	ResetTokenTTL time.Duration
	LinkTTL       time.Duration

	// BaseURL is the public origin links in emails point at. BasePath is
	// where the HTTP adapter mounts the routes.
	BaseURL  string
	BasePath string

	// VerifyURL and ResetURL override the derived link targets, e.g. when
	// a separate frontend owns the reset form.
	VerifyURL string
	ResetURL  string
}

// Vouch is the assembled identity service.
type Vouch struct {
	Auth      *services.AuthService
	Tokens    *services.TokenIssuer
	Endpoints *services.EndpointRegistry
	Logger    *slog.Logger
	BasePath  string
}

// New validates the config, applies defaults and wires the service graph.
// The HTTP adapter's routes are registered before New returns.
func New(config Config) (*Vouch, error) {
	if config.Secret == "" {
		return nil, ErrSecretRequired
	}
	if len(config.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	if config.Database == nil {
		return nil, ErrStorageRequired
	}
	if config.Notifier == nil {
		return nil, ErrNotifierRequired
	}

	// Set Defaults

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	cacheAdapter := config.CacheAdapter
	if cacheAdapter == nil && !config.DisableCache {
		cacheAdapter = NewInMemoryCache(CacheConfig{
			TTL:     5 * time.Minute,
			MaxSize: 500,
		})
	}

	passwordHasher := config.PasswordHasher
	if passwordHasher == nil {
		passwordHasher = crypto.NewArgon2()
	}

	basePath := config.BasePath
	if basePath == "" {
		basePath = defaultBasePath
	}
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	verifyURL := config.VerifyURL
	if verifyURL == "" {
		verifyURL = baseURL + basePath + "/verify-email"
	}
	resetURL := config.ResetURL
	if resetURL == "" {
		resetURL = baseURL + "/reset-password"
	}

	links, err := linksign.New(linksign.Config{
		Secret: config.Secret,
		Issuer: "vouch",
		TTL:    config.LinkTTL,
	})
	if err != nil {
		return nil, err
	}

	tokens := services.NewTokenIssuer(
		services.TokenConfig{TTL: config.TokenTTL},
		config.Database,
		cacheAdapter,
	)
	resets := services.NewResetTokenService(
		services.ResetConfig{TTL: config.ResetTokenTTL},
		config.Database,
		config.Database,
		passwordHasher,
	)

	auth := services.NewAuthService(services.AuthServiceDeps{
		Logger:       logger,
		DB:           config.Database,
		Passwords:    passwordHasher,
		Tokens:       tokens,
		Resets:       resets,
		Fingerprints: services.NewFingerprintVerifier(config.Secret),
		Links:        links,
		Notifier:     config.Notifier,
		VerifyURL:    verifyURL,
		ResetURL:     resetURL,
	})

	v := &Vouch{
		Auth:      auth,
		Tokens:    tokens,
		Endpoints: services.NewEndpointRegistry(),
		Logger:    logger,
		BasePath:  basePath,
	}

	if config.HTTP != nil {
		if err := config.HTTP.RegisterRoutes(v); err != nil {
			return nil, err
		}
	}

	return v, nil
}
