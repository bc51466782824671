package services

import (
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/okrent/vouch/core"
	"github.com/okrent/vouch/linksign"
	"github.com/okrent/vouch/notify"
	"github.com/okrent/vouch/pkg/crypto"
)

// RegisterInput contains the data needed to register a new user.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginInput contains the credentials for authentication.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ResetPasswordInput contains the data needed to complete a password reset.
type ResetPasswordInput struct {
	Email                string `json:"email"`
	Token                string `json:"token"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResult contains the authenticated user and their bearer credential.
type AuthResult struct {
	User      *core.User `json:"user"`
	Token     string     `json:"token"` // The raw token (not the hash)
	ExpiresAt time.Time  `json:"expiresAt"`
}

// AuthServiceDeps wires an AuthService.
type AuthServiceDeps struct {
	Logger       *slog.Logger
	DB           core.AuthStorage
	Passwords    crypto.PasswordHandler
	Tokens       *TokenIssuer
	Resets       *ResetTokenService
	Fingerprints *FingerprintVerifier
	Links        *linksign.Signer
	Notifier     notify.Notifier

	// VerifyURL and ResetURL are the public endpoints links point at.
	VerifyURL string
	ResetURL  string
}

// AuthService orchestrates registration, login, email verification and
// password recovery. It is the only component the request boundary talks to.
type AuthService struct {
	deps AuthServiceDeps
}

// NewAuthService creates an AuthService.
func NewAuthService(deps AuthServiceDeps) *AuthService {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &AuthService{deps: deps}
}

// Register creates a new user with email and password and mints their first
// access token. The user row and token are one unit of work: if minting
// fails the freshly created user is removed again. The verification email is
// best-effort and never fails the registration.
func (s *AuthService) Register(input RegisterInput) (*AuthResult, error) {
	// Step 1: Validate input shape before touching storage
	if err := core.ValidateRegistration(input.Name, input.Email, input.Password); err != nil {
		return nil, err
	}
	email := core.NormalizeEmail(input.Email)

	// Step 2: Check if the email is already taken. The storage layer
	// re-checks atomically on insert, so a concurrent duplicate still
	// resolves to exactly one success.
	_, err := s.deps.DB.GetUserByEmail(email)
	switch {
	case err == nil:
		return nil, core.ErrEmailTaken
	case !errors.Is(err, core.ErrUserNotFound):
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}

	// Step 3: Hash the password
	passwordHash, err := s.deps.Passwords.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	// Step 4: Create the user, unverified
	user := &core.User{
		ID:           uuid.New().String(),
		Email:        email,
		Name:         input.Name,
		PasswordHash: passwordHash,
	}
	if err := s.deps.DB.CreateUser(user); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return nil, core.ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Step 5: Mint the first access token; roll the user back on failure
	// so no orphaned account survives a half-finished registration.
	minted, err := s.deps.Tokens.Mint(user.ID)
	if err != nil {
		if derr := s.deps.DB.DeleteUser(user.ID); derr != nil {
			s.deps.Logger.Error("registration rollback failed",
				slog.String("user_id", user.ID), slog.Any("error", derr))
		}
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	// Step 6: Request email verification (best-effort)
	s.sendVerification(user)

	return &AuthResult{
		User:      user,
		Token:     minted.Raw,
		ExpiresAt: minted.Token.ExpiresAt,
	}, nil
}

// Login authenticates a user with email and password. An unknown email and a
// wrong password produce the identical ErrInvalidCredentials so accounts
// cannot be enumerated. Unverified users may log in; doing so re-sends the
// verification email best-effort.
func (s *AuthService) Login(input LoginInput) (*AuthResult, error) {
	// Step 1: Validate input shape
	if err := core.ValidateLogin(input.Email, input.Password); err != nil {
		return nil, err
	}

	// Step 2: Find the user by email
	user, err := s.deps.DB.GetUserByEmail(core.NormalizeEmail(input.Email))
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return nil, core.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	// Step 3: Verify the password
	valid, err := s.deps.Passwords.Verify(input.Password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}
	if !valid {
		return nil, core.ErrInvalidCredentials
	}

	// Step 4: Mint a fresh access token
	minted, err := s.deps.Tokens.Mint(user.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to mint token: %w", err)
	}

	// Step 5: Nudge unverified users, without blocking the login
	if !user.EmailVerified() {
		s.sendVerification(user)
	}

	return &AuthResult{
		User:      user,
		Token:     minted.Raw,
		ExpiresAt: minted.Token.ExpiresAt,
	}, nil
}

// VerifyEmail checks a presented fingerprint against the expected one and
// marks the user verified. Verification is a one-way transition: repeating
// it reports ErrAlreadyVerified, a distinct outcome rather than success, so
// a client can tell a consumed link from a fresh one.
func (s *AuthService) VerifyEmail(userID, fingerprint string) error {
	user, err := s.deps.DB.GetUserByID(userID)
	if err != nil {
		if errors.Is(err, core.ErrUserNotFound) {
			return core.ErrUserNotFound
		}
		return fmt.Errorf("failed to find user: %w", err)
	}

	if !s.deps.Fingerprints.Matches(user, fingerprint) {
		return core.ErrInvalidSignature
	}

	// The storage transition is the source of truth, not the user snapshot
	// read above: concurrent verifications resolve to one success and the
	// rest report the consumed state.
	transitioned, err := s.deps.DB.MarkEmailVerified(user.ID, time.Now())
	if err != nil {
		return fmt.Errorf("failed to mark verified: %w", err)
	}
	if !transitioned {
		return core.ErrAlreadyVerified
	}
	return nil
}

// VerifyEmailGrant unwraps the signed link envelope and then performs the
// fingerprint check. Both must pass; an envelope failure (tamper or expiry)
// reports ErrInvalidSignature without distinguishing the cause.
func (s *AuthService) VerifyEmailGrant(grant string) error {
	parsed, err := s.deps.Links.Verify(grant)
	if err != nil {
		return core.ErrInvalidSignature
	}
	return s.VerifyEmail(parsed.UserID, parsed.Fingerprint)
}

// ResendVerification re-sends the verification email for an authenticated
// user. Already-verified users are reported, not silently ignored.
func (s *AuthService) ResendVerification(user *core.User) error {
	if user.EmailVerified() {
		return core.ErrAlreadyVerified
	}

	link, err := s.verificationLink(user)
	if err != nil {
		return fmt.Errorf("failed to build verification link: %w", err)
	}
	if err := s.deps.Notifier.SendVerification(user, link); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}
	return nil
}

// RequestPasswordReset issues a reset token and mails the recovery link.
// From the caller's perspective it succeeds whether or not the email belongs
// to an account; only malformed input is reported.
func (s *AuthService) RequestPasswordReset(email string) error {
	if err := core.ValidateEmail(email); err != nil {
		return err
	}

	raw, user, err := s.deps.Resets.Issue(email)
	if err != nil {
		return fmt.Errorf("failed to issue reset token: %w", err)
	}
	if user == nil {
		// Unknown email: report success, write nothing, send nothing.
		s.deps.Logger.Debug("password reset requested for unknown email")
		return nil
	}

	link := s.resetLink(user.Email, raw)
	if err := s.deps.Notifier.SendPasswordReset(user, link); err != nil {
		// Delivery is best-effort; the token remains valid and the
		// user can retry the request.
		s.deps.Logger.Error("failed to send password reset email",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}
	return nil
}

// ResetPassword completes a recovery: validates input, spends the token and
// installs the new password.
func (s *AuthService) ResetPassword(input ResetPasswordInput) error {
	if err := core.ValidatePasswordReset(input.Email, input.Token, input.Password, input.PasswordConfirmation); err != nil {
		return err
	}
	return s.deps.Resets.Consume(input.Email, input.Token, input.Password)
}

// Logout revokes the presented access token.
func (s *AuthService) Logout(rawToken string) error {
	return s.deps.Tokens.RevokePresented(rawToken)
}

// Authenticate resolves a presented bearer token to its user. Used by the
// boundary's auth middleware.
func (s *AuthService) Authenticate(rawToken string) (*core.User, *core.AccessToken, error) {
	token, err := s.deps.Tokens.Validate(rawToken)
	if err != nil {
		return nil, nil, err
	}

	user, err := s.deps.DB.GetUserByID(token.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, token, nil
}

// sendVerification builds and sends the verification link, logging failures
// instead of propagating them.
func (s *AuthService) sendVerification(user *core.User) {
	link, err := s.verificationLink(user)
	if err != nil {
		s.deps.Logger.Error("failed to build verification link",
			slog.String("user_id", user.ID), slog.Any("error", err))
		return
	}
	if err := s.deps.Notifier.SendVerification(user, link); err != nil {
		s.deps.Logger.Error("failed to send verification email",
			slog.String("user_id", user.ID), slog.Any("error", err))
	}
}

func (s *AuthService) verificationLink(user *core.User) (string, error) {
	grant, err := s.deps.Links.Sign(user.ID, s.deps.Fingerprints.Fingerprint(user))
	if err != nil {
		return "", err
	}
	return s.deps.VerifyURL + "?grant=" + url.QueryEscape(grant), nil
}

func (s *AuthService) resetLink(email, rawToken string) string {
	q := url.Values{}
	q.Set("email", email)
	q.Set("token", rawToken)
	return s.deps.ResetURL + "?" + q.Encode()
}
