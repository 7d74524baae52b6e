package ports

import (
	"context"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
)

// RegisterInput carries the fields of a citizen registration.
type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
	Password  string
}

// LoginResult is returned on successful authentication. Token is the signed
// value placed in the session cookie.
type LoginResult struct {
	User    *domain.User
	Session *domain.Session
	Token   string
}

type AuthService interface {
	Register(ctx context.Context, in RegisterInput) (*domain.User, error)
	CreateAdmin(ctx context.Context, in RegisterInput) (*domain.User, error)
	Login(ctx context.Context, email, password, role string) (*LoginResult, error)
	CurrentIdentity(ctx context.Context, token string) (domain.Principal, error)
	Logout(ctx context.Context, token, expectedRole string) error
	Me(ctx context.Context, userID string) (*domain.User, error)
}
