package mail

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
)

//go:embed templates/*.html
var templatesFS embed.FS

var verificationTmpl = template.Must(template.ParseFS(templatesFS, "templates/verification.html"))

// VerificationSubject is the subject line of verification emails.
const VerificationSubject = "Verify your email address"

// RenderVerification renders the verification email body around link.
func RenderVerification(link string) (string, error) {
	var buf bytes.Buffer
	if err := verificationTmpl.Execute(&buf, map[string]string{"Link": link}); err != nil {
		return "", fmt.Errorf("failed to render verification email: %w", err)
	}
	return buf.String(), nil
}
