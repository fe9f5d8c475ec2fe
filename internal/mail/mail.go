// Package mail delivers transactional email. The auth service only sends
// password reset messages, so the interface stays deliberately small.
package mail

import "context"

// Mailer sends a single message to one recipient.
type Mailer interface {
	Send(ctx context.Context, to, subject, body string) error
}
