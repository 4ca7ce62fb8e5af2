package mail

import "context"

// Transport delivers a single HTML email.
type Transport interface {
	Send(ctx context.Context, from, to, subject, html string) error
}
