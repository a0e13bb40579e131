package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"stayhub/internal/app/dto"
	"stayhub/internal/app/uow"
	domainauth "stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
)

var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserBlocked        = errors.New("auth: user is blocked")
	ErrPasswordTooShort   = errors.New("auth: password must be at least 8 characters")
)

const minPasswordLength = 8

// PasswordHasher abstracts the hash algorithm so tests can swap it for a
// cheap fake.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) error
}

// TokenGenerator issues opaque session tokens.
type TokenGenerator interface {
	Generate() (domainauth.Token, error)
}

type Service struct {
	UoWFactory uow.UoWFactory
	Sessions   domainauth.SessionStore
	Hasher     PasswordHasher
	Tokens     TokenGenerator
	SessionTTL time.Duration
	Logger     *slog.Logger
}

type RegisterParams struct {
	Email    string
	Name     string
	Password string
	PhotoURL string
}

type AuthResult struct {
	Token   string          `json:"token"`
	Profile dto.UserProfile `json:"profile"`
}

func (s *Service) Register(ctx context.Context, params RegisterParams) (*AuthResult, error) {
	if len(params.Password) < minPasswordLength {
		return nil, ErrPasswordTooShort
	}
	hash, err := s.Hasher.Hash(params.Password)
	if err != nil {
		return nil, err
	}

	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{})
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = unit.Rollback(ctx)
		}
	}()

	email := strings.ToLower(strings.TrimSpace(params.Email))
	if _, err := unit.Users().ByEmail(ctx, email); err == nil {
		return nil, domainuser.ErrEmailAlreadyUsed
	} else if !errors.Is(err, domainuser.ErrNotFound) {
		return nil, err
	}

	u, err := domainuser.NewUser(domainuser.CreateParams{
		ID:           domainuser.ID(uuid.NewString()),
		Email:        email,
		Name:         params.Name,
		PhotoURL:     params.PhotoURL,
		PasswordHash: hash,
		Roles:        []domainuser.Role{domainuser.RoleGuest},
		CreatedAt:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := unit.Users().Save(ctx, u); err != nil {
		return nil, err
	}
	if err := unit.Commit(ctx); err != nil {
		return nil, err
	}
	committed = true

	result, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user registered", "user_id", u.ID)
	}
	return result, nil
}

func (s *Service) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	unit, err := s.UoWFactory.Begin(ctx, uow.TxOptions{ReadOnly: true})
	if err != nil {
		return nil, err
	}
	defer func() { _ = unit.Rollback(ctx) }()

	u, err := unit.Users().ByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domainuser.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if u.Blocked {
		return nil, ErrUserBlocked
	}
	if err := s.Hasher.Compare(u.PasswordHash, password); err != nil {
		return nil, ErrInvalidCredentials
	}

	result, err := s.issueSession(ctx, u)
	if err != nil {
		return nil, err
	}
	if s.Logger != nil {
		s.Logger.Info("user logged in", "user_id", u.ID)
	}
	return result, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	return s.Sessions.Delete(ctx, domainauth.Token(token))
}

// ResolveToken maps a bearer token to its live session. Expired sessions
// are removed on sight.
func (s *Service) ResolveToken(ctx context.Context, token string) (*domainauth.Session, error) {
	if strings.TrimSpace(token) == "" {
		return nil, domainauth.ErrTokenRequired
	}
	session, err := s.Sessions.Get(ctx, domainauth.Token(token))
	if err != nil {
		return nil, err
	}
	if session.Expired(time.Now()) {
		_ = s.Sessions.Delete(ctx, session.Token)
		return nil, domainauth.ErrSessionNotFound
	}
	return session, nil
}

func (s *Service) issueSession(ctx context.Context, u *domainuser.User) (*AuthResult, error) {
	token, err := s.Tokens.Generate()
	if err != nil {
		return nil, err
	}
	session, err := domainauth.NewSession(domainauth.CreateSessionParams{
		Token:  token,
		UserID: u.ID,
		Roles:  u.Roles,
		TTL:    s.SessionTTL,
		Now:    time.Now(),
	})
	if err != nil {
		return nil, err
	}
	if err := s.Sessions.Save(ctx, session); err != nil {
		return nil, err
	}
	return &AuthResult{Token: string(session.Token), Profile: dto.MapUserProfile(u)}, nil
}
