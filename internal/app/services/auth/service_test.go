package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "stayhub/internal/domain/auth"
	domainuser "stayhub/internal/domain/user"
	"stayhub/internal/infra/storage/memory"
)

type plainHasher struct{}

func (plainHasher) Hash(password string) (string, error) { return "hashed:" + password, nil }

func (plainHasher) Compare(hash, password string) error {
	if hash != "hashed:"+password {
		return ErrInvalidCredentials
	}
	return nil
}

type staticTokens struct {
	next int
}

func (g *staticTokens) Generate() (domainauth.Token, error) {
	g.next++
	return domainauth.Token(string(rune('a' + g.next - 1)) + "-token"), nil
}

func newTestService(ttl time.Duration) (*Service, *memory.UserRepository) {
	users := memory.NewUserRepository()
	return &Service{
		UoWFactory: memory.Factory{
			ListingsRepo: memory.NewListingRepository(),
			BookingRepo:  memory.NewBookingRepository(),
			UserRepo:     users,
		},
		Sessions:   memory.NewSessionStore(),
		Hasher:     plainHasher{},
		Tokens:     &staticTokens{},
		SessionTTL: ttl,
	}, users
}

func registerParams() RegisterParams {
	return RegisterParams{
		Email:    "Guest@Example.com",
		Name:     "Guest One",
		Password: "correct horse",
	}
}

func TestRegisterIssuesSessionAndGuestRole(t *testing.T) {
	svc, _ := newTestService(time.Hour)

	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, "guest@example.com", result.Profile.Email, "email is normalized")
	assert.Equal(t, []string{"guest"}, result.Profile.Roles)

	session, err := svc.ResolveToken(context.Background(), result.Token)
	require.NoError(t, err)
	assert.Equal(t, domainuser.ID(result.Profile.ID), session.UserID)
}

func TestRegisterRejectsShortPasswordAndDuplicates(t *testing.T) {
	svc, _ := newTestService(time.Hour)

	params := registerParams()
	params.Password = "short"
	_, err := svc.Register(context.Background(), params)
	assert.ErrorIs(t, err, ErrPasswordTooShort)

	_, err = svc.Register(context.Background(), registerParams())
	require.NoError(t, err)
	_, err = svc.Register(context.Background(), registerParams())
	assert.ErrorIs(t, err, domainuser.ErrEmailAlreadyUsed)
}

func TestLogin(t *testing.T) {
	svc, users := newTestService(time.Hour)
	_, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	result, err := svc.Login(context.Background(), "guest@example.com", "correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)

	_, err = svc.Login(context.Background(), "guest@example.com", "wrong")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.Login(context.Background(), "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	u, err := users.ByEmail(context.Background(), "guest@example.com")
	require.NoError(t, err)
	u.Block(time.Now())
	require.NoError(t, users.Save(context.Background(), u))

	_, err = svc.Login(context.Background(), "guest@example.com", "correct horse")
	assert.ErrorIs(t, err, ErrUserBlocked)
}

func TestLogoutInvalidatesToken(t *testing.T) {
	svc, _ := newTestService(time.Hour)
	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	require.NoError(t, svc.Logout(context.Background(), result.Token))
	_, err = svc.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)
}

func TestResolveTokenExpiry(t *testing.T) {
	svc, _ := newTestService(time.Nanosecond)
	result, err := svc.Register(context.Background(), registerParams())
	require.NoError(t, err)

	time.Sleep(time.Millisecond)
	_, err = svc.ResolveToken(context.Background(), result.Token)
	assert.ErrorIs(t, err, domainauth.ErrSessionNotFound)

	_, err = svc.ResolveToken(context.Background(), "")
	assert.ErrorIs(t, err, domainauth.ErrTokenRequired)
}
