package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"time"
)

const subject = "Verify your email address"

const htmlTemplate = `<!DOCTYPE html>
<html>
<body style="font-family: Arial, sans-serif; color: #333;">
  <div style="max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2>Hello {{.Name}}!</h2>
    <p>Thank you for registering. Please use the following code to verify your email address:</p>
    <div style="background-color: #f0f0f0; padding: 20px; text-align: center; font-size: 32px; letter-spacing: 5px; font-weight: bold;">
      {{.Code}}
    </div>
    <p>This code will expire in {{.Minutes}} minutes.</p>
    <p>If you did not create an account, please ignore this email.</p>
  </div>
</body>
</html>
`

const textTemplate = "Hello %s!\n\nYour verification code is %s.\nThis code will expire in %d minutes.\n\nIf you did not create an account, please ignore this email.\n"

// Message is a rendered verification mail.
type Message struct {
	Subject string
	HTML    string
	Text    string
}

// Renderer builds verification mails from the HTML template.
type Renderer struct {
	tmpl    *template.Template
	minutes int
}

func NewRenderer(validity time.Duration) (*Renderer, error) {
	tmpl, err := template.New("verification").Parse(htmlTemplate)
	if err != nil {
		return nil, fmt.Errorf("parse mail template: %w", err)
	}
	return &Renderer{tmpl: tmpl, minutes: int(validity.Minutes())}, nil
}

func (r *Renderer) Render(code, name string) (Message, error) {
	var buf bytes.Buffer
	err := r.tmpl.Execute(&buf, struct {
		Name    string
		Code    string
		Minutes int
	}{Name: name, Code: code, Minutes: r.minutes})
	if err != nil {
		return Message{}, fmt.Errorf("render mail: %w", err)
	}
	return Message{
		Subject: subject,
		HTML:    buf.String(),
		Text:    fmt.Sprintf(textTemplate, name, code, r.minutes),
	}, nil
}
