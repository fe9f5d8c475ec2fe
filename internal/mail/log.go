package mail

import (
	"context"

	"github.com/YassineIdiri/expense-tracker/pkg/slogx"
)

// LogMailer writes outgoing mail to the log instead of a relay. Used in
// development and tests where no SMTP server is configured.
type LogMailer struct{}

func (LogMailer) Send(ctx context.Context, to, subject, body string) error {
	slogx.FromContext(ctx).Info("outgoing mail",
		"to", to,
		"subject", subject,
		"body", body,
	)
	return nil
}
