package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/citizenconnect/complaint-portal/internal/core/domain"
	"github.com/citizenconnect/complaint-portal/internal/core/ports"
)

type stubUserRepo struct {
	users     map[string]*domain.User // keyed by email
	findErr   error
	createErr error
	creates   int
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[string]*domain.User)}
}

func cloneUser(u *domain.User) *domain.User {
	if u == nil {
		return nil
	}
	clone := *u
	return &clone
}

func (r *stubUserRepo) Create(_ context.Context, user *domain.User) (*domain.User, error) {
	if r.createErr != nil {
		return nil, r.createErr
	}
	if _, exists := r.users[user.Email]; exists {
		return nil, domain.ErrUserExists
	}
	r.creates++
	copy := cloneUser(user)
	if copy.ID == "" {
		copy.ID = fmt.Sprintf("u%d", r.creates)
	}
	r.users[copy.Email] = cloneUser(copy)
	return cloneUser(copy), nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*domain.User, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[email]; ok {
		return cloneUser(u), nil
	}
	return nil, domain.ErrUserNotFound
}

func (r *stubUserRepo) FindByID(_ context.Context, id string) (*domain.User, error) {
	for _, u := range r.users {
		if u.ID == id {
			return cloneUser(u), nil
		}
	}
	return nil, domain.ErrUserNotFound
}

type stubSessionStore struct {
	sessions map[string]*domain.Session
	deleted  []string
}

func newStubSessionStore() *stubSessionStore {
	return &stubSessionStore{sessions: make(map[string]*domain.Session)}
}

func (s *stubSessionStore) Create(_ context.Context, session *domain.Session) error {
	clone := *session
	s.sessions[session.ID] = &clone
	return nil
}

func (s *stubSessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	session, ok := s.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	clone := *session
	return &clone, nil
}

func (s *stubSessionStore) Delete(_ context.Context, id string) error {
	delete(s.sessions, id)
	s.deleted = append(s.deleted, id)
	return nil
}

type stubMailQueue struct {
	queued []domain.Email
	full   bool
}

func (q *stubMailQueue) Enqueue(msg domain.Email) bool {
	if q.full {
		return false
	}
	q.queued = append(q.queued, msg)
	return true
}

func newAuthSvc(repo *stubUserRepo, sessions *stubSessionStore, mail *stubMailQueue) *AuthService {
	svc := NewAuthService(repo, sessions, mail, "secret", time.Hour, zerolog.Nop())
	ids := 0
	svc.newID = func() string {
		ids++
		return fmt.Sprintf("sess-%d", ids)
	}
	return svc
}

func validRegistration(email string) ports.RegisterInput {
	return ports.RegisterInput{
		FirstName: "Alice",
		LastName:  "Ng",
		Email:     email,
		Phone:     "555-0100",
		Address:   "1 Main St",
		Password:  "pw1",
	}
}

func TestAuthService_Register_Success(t *testing.T) {
	repo := newStubUserRepo()
	mail := &stubMailQueue{}
	svc := newAuthSvc(repo, newStubSessionStore(), mail)

	user, err := svc.Register(context.Background(), validRegistration(" A@X.com "))
	if err != nil {
		t.Fatalf("Register returned error: %v", err)
	}
	if user.Email != "a@x.com" {
		t.Fatalf("expected normalized email, got %q", user.Email)
	}
	if user.Role != domain.RoleUser {
		t.Fatalf("unexpected role: %s", user.Role)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte("pw1")); err != nil {
		t.Fatalf("stored hash does not match password: %v", err)
	}
	if len(mail.queued) != 1 || mail.queued[0].To != "a@x.com" || mail.queued[0].Subject != "Registration Successful" {
		t.Fatalf("expected one registration email, got %+v", mail.queued)
	}
}

func TestAuthService_Register_MissingField(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})

	in := validRegistration("a@x.com")
	in.Address = "   "
	_, err := svc.Register(context.Background(), in)
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected ErrValidation, got %v", err)
	}
	if repo.creates != 0 {
		t.Fatalf("no record should be created")
	}
}

func TestAuthService_Register_Duplicate(t *testing.T) {
	repo := newStubUserRepo()
	mail := &stubMailQueue{}
	svc := newAuthSvc(repo, newStubSessionStore(), mail)

	first, err := svc.Register(context.Background(), validRegistration("a@x.com"))
	if err != nil {
		t.Fatalf("first register: %v", err)
	}

	second := validRegistration("a@x.com")
	second.FirstName = "Mallory"
	second.Password = "pw2"
	if _, err := svc.Register(context.Background(), second); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}

	stored := repo.users["a@x.com"]
	if repo.creates != 1 || stored.FirstName != "Alice" || stored.PasswordHash != first.PasswordHash {
		t.Fatalf("original record changed: %+v", stored)
	}
	if len(mail.queued) != 1 {
		t.Fatalf("duplicate registration must not send email, got %d", len(mail.queued))
	}
}

func TestAuthService_Register_RepoError(t *testing.T) {
	repo := newStubUserRepo()
	repo.findErr = errors.New("mongo down")
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})

	_, err := svc.Register(context.Background(), validRegistration("a@x.com"))
	if err == nil || errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestAuthService_Login_Success(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions, &stubMailQueue{})

	if _, err := svc.Register(context.Background(), validRegistration("carol@example.com")); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	res, err := svc.Login(context.Background(), "carol@example.com", "pw1", domain.RoleUser)
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if res.Token == "" {
		t.Fatalf("expected token, got empty")
	}
	if res.Session.UserID != res.User.ID || res.Session.Role != domain.RoleUser {
		t.Fatalf("unexpected session: %+v", res.Session)
	}
	if _, ok := sessions.sessions[res.Session.ID]; !ok {
		t.Fatalf("session not persisted")
	}
	if got := res.Session.ExpiresAt.Sub(res.Session.CreatedAt); got != time.Hour {
		t.Fatalf("expected 1h ttl, got %v", got)
	}

	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(res.Token, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte("secret"), nil
	})
	if err != nil || !parsed.Valid {
		t.Fatalf("token invalid: %v", err)
	}
	if claims["sid"] != res.Session.ID {
		t.Fatalf("expected sid %s, got %v", res.Session.ID, claims["sid"])
	}
}

func TestAuthService_Login_UniformFailure(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions, &stubMailQueue{})
	_, _ = svc.Register(context.Background(), validRegistration("dave@example.com"))

	_, wrongPassword := svc.Login(context.Background(), "dave@example.com", "badpass", domain.RoleUser)
	_, unknownEmail := svc.Login(context.Background(), "ghost@example.com", "pw1", domain.RoleUser)
	_, wrongRole := svc.Login(context.Background(), "dave@example.com", "pw1", domain.RoleAdmin)

	for name, err := range map[string]error{"wrong password": wrongPassword, "unknown email": unknownEmail, "wrong role": wrongRole} {
		if !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Errorf("%s: expected ErrInvalidCredentials, got %v", name, err)
		}
	}
	if wrongPassword.Error() != unknownEmail.Error() {
		t.Fatalf("errors must be identical: %q vs %q", wrongPassword, unknownEmail)
	}
	if len(sessions.sessions) != 0 {
		t.Fatalf("failed logins must not open sessions")
	}
}

func TestAuthService_Login_AdminRole(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})

	if err := svc.EnsureDefaultAdmin(context.Background(), "admin@gmail.com", "admin123"); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	res, err := svc.Login(context.Background(), "admin@gmail.com", "admin123", domain.RoleAdmin)
	if err != nil {
		t.Fatalf("admin login: %v", err)
	}
	if res.Session.Role != domain.RoleAdmin {
		t.Fatalf("expected admin session, got %s", res.Session.Role)
	}
	if _, err := svc.Login(context.Background(), "admin@gmail.com", "admin123", domain.RoleUser); !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("admin must not log in through the user path, got %v", err)
	}
}

func TestAuthService_CurrentIdentity(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})
	_, _ = svc.Register(context.Background(), validRegistration("erin@example.com"))
	res, _ := svc.Login(context.Background(), "erin@example.com", "pw1", domain.RoleUser)

	p, err := svc.CurrentIdentity(context.Background(), res.Token)
	if err != nil {
		t.Fatalf("CurrentIdentity: %v", err)
	}
	if p.UserID != res.User.ID || p.Role != domain.RoleUser {
		t.Fatalf("unexpected principal: %+v", p)
	}

	for name, token := range map[string]string{
		"empty":    "",
		"garbage":  "not-a-token",
		"tampered": res.Token + "x",
	} {
		if _, err := svc.CurrentIdentity(context.Background(), token); !errors.Is(err, domain.ErrUnauthenticated) {
			t.Errorf("%s: expected ErrUnauthenticated, got %v", name, err)
		}
	}
}

func TestAuthService_CurrentIdentity_WrongSecret(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions, &stubMailQueue{})
	_, _ = svc.Register(context.Background(), validRegistration("erin@example.com"))
	res, _ := svc.Login(context.Background(), "erin@example.com", "pw1", domain.RoleUser)

	other := NewAuthService(repo, sessions, nil, "other-secret", time.Hour, zerolog.Nop())
	if _, err := other.CurrentIdentity(context.Background(), res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated for foreign signature, got %v", err)
	}
}

func TestAuthService_CurrentIdentity_Expired(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions, &stubMailQueue{})
	_, _ = svc.Register(context.Background(), validRegistration("frank@example.com"))

	start := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return start }
	res, err := svc.Login(context.Background(), "frank@example.com", "pw1", domain.RoleUser)
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	// Token claims are checked with the same clock, so push only the stored
	// session past expiry to exercise the store-side check.
	sessions.sessions[res.Session.ID].ExpiresAt = start.Add(-time.Second)

	if _, err := svc.CurrentIdentity(context.Background(), res.Token); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
	if len(sessions.deleted) != 1 || sessions.deleted[0] != res.Session.ID {
		t.Fatalf("expired session should be deleted, got %v", sessions.deleted)
	}
}

func TestAuthService_Logout(t *testing.T) {
	repo := newStubUserRepo()
	sessions := newStubSessionStore()
	svc := newAuthSvc(repo, sessions, &stubMailQueue{})
	_, _ = svc.Register(context.Background(), validRegistration("gina@example.com"))
	res, _ := svc.Login(context.Background(), "gina@example.com", "pw1", domain.RoleUser)

	if err := svc.Logout(context.Background(), res.Token, domain.RoleAdmin); !errors.Is(err, domain.ErrRoleMismatch) {
		t.Fatalf("expected ErrRoleMismatch, got %v", err)
	}
	if _, ok := sessions.sessions[res.Session.ID]; !ok {
		t.Fatalf("role mismatch must not destroy the session")
	}

	if err := svc.Logout(context.Background(), res.Token, domain.RoleUser); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, ok := sessions.sessions[res.Session.ID]; ok {
		t.Fatalf("session should be destroyed")
	}

	if err := svc.Logout(context.Background(), res.Token, domain.RoleUser); !errors.Is(err, domain.ErrNotAuthenticated) {
		t.Fatalf("expected ErrNotAuthenticated after logout, got %v", err)
	}
}

func TestAuthService_CreateAdmin(t *testing.T) {
	repo := newStubUserRepo()
	mail := &stubMailQueue{}
	svc := newAuthSvc(repo, newStubSessionStore(), mail)

	in := validRegistration("boss@example.com")
	in.Address = ""
	admin, err := svc.CreateAdmin(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateAdmin: %v", err)
	}
	if admin.Role != domain.RoleAdmin {
		t.Fatalf("expected admin role, got %s", admin.Role)
	}
	if len(mail.queued) != 0 {
		t.Fatalf("admin creation does not send mail")
	}
	if _, err := svc.CreateAdmin(context.Background(), in); !errors.Is(err, domain.ErrUserExists) {
		t.Fatalf("expected ErrUserExists, got %v", err)
	}
}

func TestAuthService_EnsureDefaultAdmin_Idempotent(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})

	for i := 0; i < 2; i++ {
		if err := svc.EnsureDefaultAdmin(context.Background(), "admin@gmail.com", "admin123"); err != nil {
			t.Fatalf("seed #%d: %v", i, err)
		}
	}
	if repo.creates != 1 {
		t.Fatalf("expected exactly one admin, got %d", repo.creates)
	}
}

func TestAuthService_Me(t *testing.T) {
	repo := newStubUserRepo()
	svc := newAuthSvc(repo, newStubSessionStore(), &stubMailQueue{})
	user, _ := svc.Register(context.Background(), validRegistration("hank@example.com"))

	got, err := svc.Me(context.Background(), user.ID)
	if err != nil || got.ID != user.ID {
		t.Fatalf("Me: %+v, %v", got, err)
	}
	if _, err := svc.Me(context.Background(), "missing"); !errors.Is(err, domain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}
