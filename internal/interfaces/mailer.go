package interfaces

import "context"

// Mailer - outbound email delivery
type Mailer interface {
	// Send delivers a message whose body is markdown
	Send(ctx context.Context, to, subject, markdownBody string) error
}
