package notify

import (
	"context"
	"fmt"

	"github.com/wneessen/go-mail"
)

// SMTPConfig describes the outgoing mail server. TLS is mandatory.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// SMTPNotifier delivers messages through an SMTP relay, one connection per
// message.
type SMTPNotifier struct {
	cfg    SMTPConfig
	client *mail.Client
	// send is a seam for tests.
	send func(ctx context.Context, msg *mail.Msg) error
}

func NewSMTPNotifier(cfg SMTPConfig) (*SMTPNotifier, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("smtp client: %w", err)
	}

	n := &SMTPNotifier{cfg: cfg, client: client}
	n.send = func(ctx context.Context, msg *mail.Msg) error {
		return n.client.DialAndSendWithContext(ctx, msg)
	}
	return n, nil
}

func (n *SMTPNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	msg, err := n.message(to, subject, htmlBody)
	if err != nil {
		return err
	}
	if err := n.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}
	return nil
}

func (n *SMTPNotifier) message(to, subject, htmlBody string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(n.cfg.Sender); err != nil {
		return nil, fmt.Errorf("smtp sender: %w", err)
	}
	if err := msg.To(to); err != nil {
		return nil, fmt.Errorf("smtp recipient: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)
	return msg, nil
}
