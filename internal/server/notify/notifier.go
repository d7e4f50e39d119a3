// Package notify delivers account notifications: the Notifier gateway, an SMTP
// implementation and a log-only implementation for development.
package notify

import (
	"context"

	"github.com/dmitrijs2005/bookmate-auth/internal/logging"
)

// Notifier sends one HTML message to one recipient. Delivery is at most once;
// callers do not retry.
type Notifier interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// LogNotifier writes messages to the logger instead of delivering them.
type LogNotifier struct {
	logger logging.Logger
}

func NewLogNotifier(logger logging.Logger) *LogNotifier {
	return &LogNotifier{logger: logger.With("module", "notify")}
}

func (n *LogNotifier) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	n.logger.Info(ctx, "notification", "to", to, "subject", subject, "body", htmlBody)
	return nil
}
