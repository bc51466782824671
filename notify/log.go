package notify

import (
	"log/slog"

	"github.com/okrent/vouch/core"
)

// LogMailer writes would-be emails to the log instead of sending them.
// Useful in development and tests; links still reach the operator via logs.
type LogMailer struct {
	logger *slog.Logger
}

var _ Notifier = (*LogMailer)(nil)

// NewLogMailer returns a mailer that only logs.
func NewLogMailer(logger *slog.Logger) *LogMailer {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogMailer{logger: logger}
}

// SendVerification satisfies the Notifier interface.
func (m *LogMailer) SendVerification(user *core.User, link string) error {
	m.logger.Info("verification email",
		slog.String("email", user.Email),
		slog.String("link", link))
	return nil
}

// SendPasswordReset satisfies the Notifier interface.
func (m *LogMailer) SendPasswordReset(user *core.User, link string) error {
	m.logger.Info("password reset email",
		slog.String("email", user.Email),
		slog.String("link", link))
	return nil
}
