// Package email provides the outbound mail collaborator. Delivery is
// best-effort from the caller's perspective: callers log a returned error and
// move on, they never retry or roll back.
package email

import "context"

// Message is a single outbound email.
type Message struct {
	ToName   string
	ToEmail  string
	Subject  string
	HTMLBody string
	TextBody string
}

// Service is any backend that can send emails.
type Service interface {
	Send(ctx context.Context, msg Message) error
}
