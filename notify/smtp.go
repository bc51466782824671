package notify

import (
	"crypto/tls"
	"fmt"
	"net/mail"
	"net/url"

	"github.com/dajohi/goemail"

	"github.com/okrent/vouch/core"
)

// SMTPConfig configures the outbound mail server connection.
type SMTPConfig struct {
	Host        string // host:port of the SMTP server
	User        string
	Password    string
	MailName    string // From display name
	MailAddress string // From email address
	SkipVerify  bool   // skip TLS certificate verification
}

// SMTPMailer sends emails from a preset address over smtps.
//
// SMTPMailer implements the Notifier interface. When the required
// credentials are missing the mailer is disabled and sends become no-ops,
// which keeps local development working without a mail server.
type SMTPMailer struct {
	smtp        *goemail.SMTP
	mailName    string
	mailAddress string
	disabled    bool
}

var _ Notifier = (*SMTPMailer)(nil)

// NewSMTPMailer returns a mailer for the given config. Email is considered
// disabled if any of the required credentials are missing.
func NewSMTPMailer(cfg SMTPConfig) (*SMTPMailer, error) {
	if cfg.Host == "" || cfg.User == "" || cfg.Password == "" {
		return &SMTPMailer{disabled: true}, nil
	}

	u, err := url.Parse(fmt.Sprintf("smtps://%s:%s@%s", cfg.User, cfg.Password, cfg.Host))
	if err != nil {
		return nil, fmt.Errorf("parse mail host: %w", err)
	}

	addr, err := mail.ParseAddress(cfg.MailAddress)
	if err != nil {
		return nil, fmt.Errorf("parse mail address: %w", err)
	}

	tlsConfig := &tls.Config{
		InsecureSkipVerify: cfg.SkipVerify, //nolint:gosec
	}

	smtp, err := goemail.NewSMTP(u.String(), tlsConfig)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	return &SMTPMailer{
		smtp:        smtp,
		mailName:    cfg.MailName,
		mailAddress: addr.Address,
	}, nil
}

// IsEnabled returns whether the mail server is enabled.
func (m *SMTPMailer) IsEnabled() bool {
	return !m.disabled
}

func (m *SMTPMailer) send(subject, body, recipient string) error {
	if m.disabled {
		return nil
	}

	msg := goemail.NewMessage(m.mailAddress, subject, body)
	msg.SetName(m.mailName)
	msg.AddTo(recipient)

	return m.smtp.Send(msg)
}

// SendVerification satisfies the Notifier interface.
func (m *SMTPMailer) SendVerification(user *core.User, link string) error {
	body, err := renderEmail(verificationTmpl, user, link)
	if err != nil {
		return err
	}
	return m.send(verificationSubject, body, user.Email)
}

// SendPasswordReset satisfies the Notifier interface.
func (m *SMTPMailer) SendPasswordReset(user *core.User, link string) error {
	body, err := renderEmail(passwordResetTmpl, user, link)
	if err != nil {
		return err
	}
	return m.send(passwordResetSubject, body, user.Email)
}
