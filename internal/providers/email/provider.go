// Package email delivers transactional mail. Dispatch failure is reported as
// a boolean outcome and never propagates to callers.
package email

import "context"

// Mailer sends a templated message to the given recipients and reports
// whether delivery was handed off successfully.
type Mailer interface {
	Send(ctx context.Context, to []string, subject, templateName string, data map[string]any) bool
}

// NoOpMailer accepts every message without sending. Used in tests and
// environments without an SMTP relay.
type NoOpMailer struct{}

func (NoOpMailer) Send(ctx context.Context, to []string, subject, templateName string, data map[string]any) bool {
	return true
}
