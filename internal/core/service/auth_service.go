package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

const bcryptCost = 10

var (
	dummyHashOnce sync.Once
	dummyHash     []byte
)

// equalizeTiming burns one bcrypt comparison so that a login for an unknown
// email costs the same as one with a wrong password.
func equalizeTiming(password string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = bcrypt.GenerateFromPassword([]byte("complaint-portal"), bcryptCost)
	})
	_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
}

// AuthService implements registration, login and the session gateway.
type AuthService struct {
	users    ports.UserRepository
	sessions ports.SessionStore
	mail     ports.MailQueue
	secret   []byte
	ttl      time.Duration
	log      zerolog.Logger

	now   func() time.Time
	newID func() string
}

func NewAuthService(
	users ports.UserRepository,
	sessions ports.SessionStore,
	mail ports.MailQueue,
	secret string,
	ttl time.Duration,
	log zerolog.Logger,
) *AuthService {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		sessions: sessions,
		mail:     mail,
		secret:   []byte(secret),
		ttl:      ttl,
		log:      log,
		now:      func() time.Time { return time.Now().UTC() },
		newID:    uuid.NewString,
	}
}

// SessionTTL is the lifetime of newly issued sessions.
func (s *AuthService) SessionTTL() time.Duration { return s.ttl }

func (s *AuthService) Register(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in = trimInput(in)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" || in.Address == "" || in.Password == "" {
		return nil, domain.Invalid("Please fill all fields")
	}

	user, err := s.create(ctx, in, domain.RoleUser)
	if err != nil {
		return nil, err
	}

	if s.mail != nil {
		s.mail.Enqueue(domain.Email{
			To:      user.Email,
			Subject: "Registration Successful",
			Body:    fmt.Sprintf("Hello %s,\n\nYou have successfully registered.", user.FirstName),
		})
	}
	s.log.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// CreateAdmin registers another administrator. Address is optional for admins.
func (s *AuthService) CreateAdmin(ctx context.Context, in ports.RegisterInput) (*domain.User, error) {
	in = trimInput(in)
	if in.FirstName == "" || in.LastName == "" || in.Email == "" || in.Phone == "" || in.Password == "" {
		return nil, domain.Invalid("Please fill all fields")
	}

	admin, err := s.create(ctx, in, domain.RoleAdmin)
	if err != nil {
		return nil, err
	}
	s.log.Info().Str("user_id", admin.ID).Msg("admin created")
	return admin, nil
}

// EnsureDefaultAdmin creates the bootstrap administrator unless an identity
// with that email already exists.
func (s *AuthService) EnsureDefaultAdmin(ctx context.Context, email, password string) error {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil
	}

	_, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		return fmt.Errorf("ensure default admin: %w", err)
	}

	_, err = s.create(ctx, ports.RegisterInput{
		FirstName: "System",
		LastName:  "Admin",
		Email:     email,
		Phone:     "0000000000",
		Address:   "Head Office",
		Password:  password,
	}, domain.RoleAdmin)
	if errors.Is(err, domain.ErrUserExists) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("ensure default admin: %w", err)
	}
	s.log.Info().Str("email", email).Msg("default admin created")
	return nil
}

func (s *AuthService) create(ctx context.Context, in ports.RegisterInput, role string) (*domain.User, error) {
	// Fast path for the common case; the unique index decides races.
	if _, err := s.users.FindByEmail(ctx, in.Email); err == nil {
		return nil, domain.ErrUserExists
	} else if !errors.Is(err, domain.ErrUserNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now()
	return s.users.Create(ctx, &domain.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		Address:      in.Address,
		PasswordHash: string(hash),
		Role:         role,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
}

// Login verifies credentials for the required role and opens a session.
// Unknown email, wrong role and wrong password all yield
// domain.ErrInvalidCredentials.
func (s *AuthService) Login(ctx context.Context, email, password, role string) (*ports.LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, domain.Invalid("Please fill all fields")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			equalizeTiming(password)
			return nil, domain.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("login: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil || user.Role != role {
		return nil, domain.ErrInvalidCredentials
	}

	now := s.now()
	session := &domain.Session{
		ID:        s.newID(),
		UserID:    user.ID,
		Role:      user.Role,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("login: create session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, fmt.Errorf("login: sign session: %w", err)
	}

	s.log.Info().Str("user_id", user.ID).Str("role", user.Role).Msg("session opened")
	return &ports.LoginResult{User: user, Session: session, Token: token}, nil
}

// CurrentIdentity resolves a cookie token to the principal bound to it.
func (s *AuthService) CurrentIdentity(ctx context.Context, token string) (domain.Principal, error) {
	session, err := s.resolve(ctx, token)
	if err != nil {
		return domain.Principal{}, err
	}
	return domain.Principal{UserID: session.UserID, Role: session.Role}, nil
}

// Logout destroys the session only when it is bound to expectedRole.
func (s *AuthService) Logout(ctx context.Context, token, expectedRole string) error {
	session, err := s.resolve(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrUnauthenticated) {
			return domain.ErrNotAuthenticated
		}
		return err
	}
	if session.Role != expectedRole {
		return domain.ErrRoleMismatch
	}
	if err := s.sessions.Delete(ctx, session.ID); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	s.log.Info().Str("user_id", session.UserID).Str("role", session.Role).Msg("session closed")
	return nil
}

func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.FindByID(ctx, userID)
}

func (s *AuthService) resolve(ctx context.Context, token string) (*domain.Session, error) {
	sid, ok := s.parseToken(token)
	if !ok {
		return nil, domain.ErrUnauthenticated
	}

	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	if session.Expired(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil {
			s.log.Warn().Err(err).Msg("failed to delete expired session")
		}
		return nil, domain.ErrUnauthenticated
	}
	return session, nil
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sid": session.ID,
		"exp": session.ExpiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(s.secret)
}

func (s *AuthService) parseToken(token string) (string, bool) {
	if token == "" {
		return "", false
	}
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !tkn.Valid {
		return "", false
	}
	sid, _ := claims["sid"].(string)
	return sid, sid != ""
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimInput(in ports.RegisterInput) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
		Email:     normalizeEmail(in.Email),
		Phone:     strings.TrimSpace(in.Phone),
		Address:   strings.TrimSpace(in.Address),
		Password:  in.Password,
	}
}
