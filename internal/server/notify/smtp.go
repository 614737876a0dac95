package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

type SMTPSettings struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPNotifier sends the verification mail through an SMTP relay.
type SMTPNotifier struct {
	settings SMTPSettings
	renderer *Renderer
	send     func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPNotifier(settings SMTPSettings, renderer *Renderer) *SMTPNotifier {
	n := &SMTPNotifier{settings: settings, renderer: renderer}
	n.send = n.dialAndSend
	return n
}

func (n *SMTPNotifier) Send(ctx context.Context, email, code, name string) error {
	msg, err := n.buildMessage(email, code, name)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", email, err)
	}
	return nil
}

func (n *SMTPNotifier) buildMessage(email, code, name string) (*mail.Msg, error) {
	rendered, err := n.renderer.Render(code, name)
	if err != nil {
		return nil, err
	}

	msg := mail.NewMsg()
	if err := msg.From(n.settings.Sender); err != nil {
		return nil, fmt.Errorf("invalid sender: %w", err)
	}
	if err := msg.To(email); err != nil {
		return nil, fmt.Errorf("invalid recipient: %w", err)
	}
	msg.Subject(rendered.Subject)
	msg.SetBodyString(mail.TypeTextPlain, rendered.Text)
	msg.AddAlternativeString(mail.TypeTextHTML, rendered.HTML)

	return msg, nil
}

func (n *SMTPNotifier) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(n.settings.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if n.settings.Port == 465 {
		opts = append(opts, mail.WithSSL())
	}
	if n.settings.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(n.settings.Username),
			mail.WithPassword(n.settings.Password),
		)
	}

	client, err := mail.NewClient(n.settings.Host, opts...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, msg)
}
