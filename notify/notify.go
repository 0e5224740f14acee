// Package notify delivers customer emails. Services hand messages to a
// Notifier and never wait for, or fail on, delivery.
package notify

//go:generate mockgen -source=notify.go -destination=mocks/notify_mock.go -package=mocks

import (
	"context"
)

// Kind selects the email template.
type Kind string

const (
	KindRegistration      Kind = "registration"
	KindOrderConfirmation Kind = "order-confirmation"
)

// Message is a request to notify one recipient.
type Message struct {
	To   string
	Kind Kind
	Data map[string]any
}

// Email is a rendered message ready for a Sender.
type Email struct {
	To      string
	Subject string
	HTML    string
}

// Notifier accepts messages for best-effort asynchronous delivery.
type Notifier interface {
	Notify(msg Message)
}

// Sender delivers one rendered email synchronously.
type Sender interface {
	Send(ctx context.Context, email Email) error
}
