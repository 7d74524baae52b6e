package ports

import (
	"context"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// UserRepository defines persistence for identities. Email uniqueness is
// enforced by the store; Create returns domain.ErrUserExists on conflict.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*domain.User, error)
	FindByID(ctx context.Context, id string) (*domain.User, error)
	Create(ctx context.Context, user *domain.User) (*domain.User, error)
}

// SessionStore persists sessions keyed by session id.
type SessionStore interface {
	Create(ctx context.Context, session *domain.Session) error
	// Get returns domain.ErrSessionNotFound for unknown or expired ids.
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}
