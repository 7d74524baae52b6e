package ports

import (
	"context"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// Notifier receives post-commit complaint events. Implementations must not
// block on delivery and must never return delivery failures to the caller.
type Notifier interface {
	ComplaintCreated(ctx context.Context, c *domain.Complaint)
	ComplaintStatusChanged(ctx context.Context, c *domain.Complaint, owner *domain.User)
}

// Broadcaster delivers realtime events to connected clients.
type Broadcaster interface {
	// Broadcast sends to every connected client.
	Broadcast(event string, payload any)
	// SendTo sends to a single connection and reports whether it was found.
	SendTo(connID, event string, payload any) bool
}

// ConnectionLookup resolves a user to the connection it registered, if any.
type ConnectionLookup interface {
	Lookup(userID string) (string, bool)
}

// MailQueue accepts emails for asynchronous delivery. Enqueue never blocks
// and reports false when the message was dropped.
type MailQueue interface {
	Enqueue(msg domain.Email) bool
}

// MailSender performs a synchronous send over the mail transport.
type MailSender interface {
	Send(ctx context.Context, msg domain.Email) error
}

// NotificationGuard suppresses repeated notifications for the same
// persisted status change. First reports true the first time key is seen.
type NotificationGuard interface {
	First(ctx context.Context, key string) (bool, error)
}
