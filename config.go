package vouch

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/okrent/vouch/notify"
)

// EnvConfig is the process-level configuration read from VOUCH_* environment
// variables. It covers what a deployment varies; the rest of Config is wiring
// and stays in code.
type EnvConfig struct {
	Secret      string `env:"VOUCH_SECRET,required"`
	DatabaseURL string `env:"VOUCH_DATABASE_URL" envDefault:"postgres://localhost:5432/vouch"`

	BaseURL  string `env:"VOUCH_BASE_URL" envDefault:"http://localhost:3000"`
	BasePath string `env:"VOUCH_BASE_PATH" envDefault:"/api/auth"`

	TokenTTL      time.Duration `env:"VOUCH_TOKEN_TTL" envDefault:"15m"`
	ResetTokenTTL time.Duration `env:"VOUCH_RESET_TOKEN_TTL" envDefault:"1h"`
	LinkTTL       time.Duration `env:"VOUCH_LINK_TTL" envDefault:"1h"`

	SMTPHost       string `env:"VOUCH_SMTP_HOST"`
	SMTPUser       string `env:"VOUCH_SMTP_USER"`
	SMTPPassword   string `env:"VOUCH_SMTP_PASSWORD"`
	SMTPSkipVerify bool   `env:"VOUCH_SMTP_SKIP_VERIFY" envDefault:"false"`
	MailName       string `env:"VOUCH_MAIL_NAME" envDefault:"Vouch"`
	MailAddress    string `env:"VOUCH_MAIL_ADDRESS" envDefault:"noreply@localhost"`
}

// LoadConfigFromEnv reads and validates the environment configuration.
func LoadConfigFromEnv() (*EnvConfig, error) {
	cfg, err := env.ParseAs[EnvConfig]()
	if err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if len(cfg.Secret) < defaultSecretLen {
		return nil, fmt.Errorf("%w - minimum of %d characters", ErrSecretTooShort, defaultSecretLen)
	}
	return &cfg, nil
}

// SMTP returns the notifier mail settings carried by the environment.
func (c *EnvConfig) SMTP() notify.SMTPConfig {
	return notify.SMTPConfig{
		Host:        c.SMTPHost,
		User:        c.SMTPUser,
		Password:    c.SMTPPassword,
		MailName:    c.MailName,
		MailAddress: c.MailAddress,
		SkipVerify:  c.SMTPSkipVerify,
	}
}
