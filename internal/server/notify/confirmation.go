package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"net/url"

	"github.com/dmitrijs2005/bookmate-auth/internal/common"
)

// ConfirmationSubject is the subject line of the email-confirmation message.
const ConfirmationSubject = "Confirm your email"

var confirmationBody = template.Must(template.New("confirmation").Parse(
	`Please confirm your email by clicking <a href='{{.Link}}'>here</a>.`))

// ConfirmationLink appends the email as the "email" query parameter of base.
func ConfirmationLink(base, email string) (string, error) {
	if base == "" {
		return "", fmt.Errorf("%w: confirmation url", common.ErrConfigurationMissing)
	}
	u, err := url.Parse(base)
	if err != nil {
		return "", fmt.Errorf("parse confirmation url: %w", err)
	}
	q := u.Query()
	q.Set("email", email)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// ConfirmationMessage renders the confirmation subject and HTML body for email.
func ConfirmationMessage(base, email string) (subject, body string, err error) {
	link, err := ConfirmationLink(base, email)
	if err != nil {
		return "", "", err
	}

	var buf bytes.Buffer
	if err := confirmationBody.Execute(&buf, struct{ Link string }{link}); err != nil {
		return "", "", fmt.Errorf("render confirmation: %w", err)
	}
	return ConfirmationSubject, buf.String(), nil
}
