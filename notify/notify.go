// Package notify delivers account emails. The core treats delivery as
// best-effort: a failed send is logged by the caller, never surfaced to the
// client of register or login.
package notify

import (
	"bytes"
	"text/template"

	"github.com/okrent/vouch/core"
)

// Notifier sends account lifecycle emails.
type Notifier interface {
	// SendVerification delivers the email-ownership proof link.
	SendVerification(user *core.User, link string) error
	// SendPasswordReset delivers the password recovery link.
	SendPasswordReset(user *core.User, link string) error
}

const verificationSubject = "Verify your email address"

var verificationTmpl = template.Must(template.New("verification").Parse(
	`Hi {{.Name}},

Thanks for signing up. Please confirm your email address by opening the
link below. The link expires after a short while.

{{.Link}}

If you did not create this account, you can ignore this email.
`))

const passwordResetSubject = "Reset your password"

var passwordResetTmpl = template.Must(template.New("passwordReset").Parse(
	`Hi {{.Name}},

We received a request to reset the password for your account. Open the link
below to choose a new password. The link is valid for a limited time and can
be used once.

{{.Link}}

If you did not request a password reset, no action is needed.
`))

type emailData struct {
	Name string
	Link string
}

func renderEmail(tmpl *template.Template, user *core.User, link string) (string, error) {
	var body bytes.Buffer
	err := tmpl.Execute(&body, emailData{
		Name: user.Name,
		Link: link,
	})
	if err != nil {
		return "", err
	}
	return body.String(), nil
}
