package auth

import (
	"context"
	"testing"
	"time"

	"github.com/adityaraut/dairydrop-backend/internal/users"
	pkgAuth "github.com/adityaraut/dairydrop-backend/pkg/auth"
	"github.com/adityaraut/dairydrop-backend/pkg/config"
	"github.com/adityaraut/dairydrop-backend/pkg/db/models"
	pkgerrors "github.com/adityaraut/dairydrop-backend/pkg/errors"
	"github.com/adityaraut/dairydrop-backend/pkg/security"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

var (
	testJWTCfg = config.JWTConfig{
		Secret:             "access-secret",
		Issuer:             "dairydrop",
		ExpirationMinutes:  30,
		RefreshSecret:      "refresh-secret",
		RefreshExpiryHours: 168,
	}
	testPassCfg = config.PasswordConfig{
		ArgonMemoryKB:    8192,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
)

type stubUserRepo struct {
	byEmail   map[string]*models.User
	createErr error
	nextID    int64
	lastLogin map[int64]time.Time
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{
		byEmail:   map[string]*models.User{},
		nextID:    7,
		lastLogin: map[int64]time.Time{},
	}
}

func (s *stubUserRepo) Create(_ context.Context, dto users.CreateUserDTO) (*models.User, error) {
	if s.createErr != nil {
		return nil, s.createErr
	}
	user := dto.ToModel()
	user.ID = s.nextID
	s.nextID++
	s.byEmail[user.Email] = user
	return user, nil
}

func (s *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	user, ok := s.byEmail[email]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (s *stubUserRepo) FindByID(_ context.Context, id int64) (*models.User, error) {
	for _, user := range s.byEmail {
		if user.ID == id {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (s *stubUserRepo) UpdateLastLogin(_ context.Context, id int64, at time.Time) error {
	s.lastLogin[id] = at
	return nil
}

type stubSessionRepo struct {
	sessions  map[string]*models.UserSession
	createErr error
}

func newStubSessionRepo() *stubSessionRepo {
	return &stubSessionRepo{sessions: map[string]*models.UserSession{}}
}

func (s *stubSessionRepo) WithTx(*gorm.DB) SessionRepository { return s }

func (s *stubSessionRepo) Create(_ context.Context, session *models.UserSession) error {
	if s.createErr != nil {
		return s.createErr
	}
	s.sessions[session.RefreshTokenHash] = session
	return nil
}

func (s *stubSessionRepo) FindByTokenHash(_ context.Context, hash string) (*models.UserSession, error) {
	session, ok := s.sessions[hash]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return session, nil
}

func (s *stubSessionRepo) DeleteByTokenHash(_ context.Context, hash string) error {
	delete(s.sessions, hash)
	return nil
}

func (s *stubSessionRepo) DeleteForUser(_ context.Context, userID int64, tokenHash *string) error {
	for hash, session := range s.sessions {
		if session.UserID != userID {
			continue
		}
		if tokenHash != nil && hash != *tokenHash {
			continue
		}
		delete(s.sessions, hash)
	}
	return nil
}

type authFixture struct {
	svc      Service
	users    *stubUserRepo
	sessions *stubSessionRepo
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()

	userRepo := newStubUserRepo()
	sessionRepo := newStubSessionRepo()
	svc, err := NewService(ServiceParams{
		UserRepo:       userRepo,
		SessionRepo:    sessionRepo,
		JWTConfig:      testJWTCfg,
		PasswordConfig: testPassCfg,
	})
	require.NoError(t, err)

	return &authFixture{svc: svc, users: userRepo, sessions: sessionRepo}
}

func (f *authFixture) seedUser(t *testing.T, email, password string, active bool) *models.User {
	t.Helper()

	hash, err := security.HashPassword(password, testPassCfg)
	require.NoError(t, err)

	user, err := f.users.Create(context.Background(), users.CreateUserDTO{
		Email:        email,
		PasswordHash: hash,
		FullName:     "Asha Rao",
	})
	require.NoError(t, err)
	user.IsActive = active
	return user
}

func assertCode(t *testing.T, err error, code pkgerrors.Code) {
	t.Helper()

	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed, "expected a typed error, got %v", err)
	assert.Equal(t, code, typed.Code())
}

func TestRegisterIssuesTokenPair(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	resp, err := f.svc.Register(context.Background(), RegisterRequest{
		Email:    "Asha@Example.COM",
		Password: "fresh-milk-123",
		FullName: "  Asha Rao  ",
	}, ClientMeta{})
	require.NoError(t, err)

	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, "asha@example.com", resp.User.Email)
	assert.Equal(t, "Asha Rao", resp.User.FullName)

	claims, err := pkgAuth.ParseAccessToken(testJWTCfg, resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, claims.UserID)
	assert.Equal(t, "asha@example.com", claims.Email)
	assert.False(t, claims.IsAdmin)

	require.Len(t, f.sessions.sessions, 1)
	for hash, session := range f.sessions.sessions {
		assert.Len(t, hash, 128)
		assert.Equal(t, resp.User.ID, session.UserID)
		assert.True(t, session.ExpiresAt.After(time.Now()))
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.users.createErr = errDuplicateEmail{}

	_, err := f.svc.Register(context.Background(), RegisterRequest{
		Email:    "asha@example.com",
		Password: "fresh-milk-123",
		FullName: "Asha Rao",
	}, ClientMeta{})
	assertCode(t, err, pkgerrors.CodeConflict)
}

type errDuplicateEmail struct{}

func (errDuplicateEmail) Error() string {
	return `duplicate key value violates unique constraint "idx_users_email"`
}

func TestLoginRecordsLastLoginAndStoresSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.seedUser(t, "asha@example.com", "fresh-milk-123", true)

	agent := "dairydrop-app/1.4"
	resp, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    " Asha@example.com ",
		Password: "fresh-milk-123",
	}, ClientMeta{UserAgent: &agent})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.AccessToken)
	require.NotNil(t, resp.User)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.NotNil(t, resp.User.LastLoginAt)

	_, recorded := f.users.lastLogin[user.ID]
	assert.True(t, recorded)

	require.Len(t, f.sessions.sessions, 1)
	for _, session := range f.sessions.sessions {
		require.NotNil(t, session.UserAgent)
		assert.Equal(t, agent, *session.UserAgent)
	}
}

func TestLoginRejections(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.seedUser(t, "asha@example.com", "fresh-milk-123", true)
	f.seedUser(t, "dormant@example.com", "fresh-milk-123", false)

	cases := []struct {
		name     string
		email    string
		password string
	}{
		{name: "unknown email", email: "nobody@example.com", password: "fresh-milk-123"},
		{name: "wrong password", email: "asha@example.com", password: "sour-milk-999"},
		{name: "inactive user", email: "dormant@example.com", password: "fresh-milk-123"},
		{name: "blank email", email: "   ", password: "fresh-milk-123"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := f.svc.Login(context.Background(), LoginRequest{
				Email:    tc.email,
				Password: tc.password,
			}, ClientMeta{})
			assertCode(t, err, pkgerrors.CodeUnauthorized)
			assert.Empty(t, f.sessions.sessions)
		})
	}
}

func TestRefreshRotatesSession(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.seedUser(t, "asha@example.com", "fresh-milk-123", true)

	first, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "fresh-milk-123",
	}, ClientMeta{})
	require.NoError(t, err)

	second, err := f.svc.Refresh(context.Background(), RefreshRequest{
		RefreshToken: first.RefreshToken,
	}, ClientMeta{})
	require.NoError(t, err)

	assert.NotEqual(t, first.RefreshToken, second.RefreshToken)
	require.Len(t, f.sessions.sessions, 1)
	_, oldAlive := f.sessions.sessions[hashRefreshToken(first.RefreshToken)]
	assert.False(t, oldAlive)

	// The original token is single-use.
	_, err = f.svc.Refresh(context.Background(), RefreshRequest{
		RefreshToken: first.RefreshToken,
	}, ClientMeta{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestRefreshExpiredSessionIsDeleted(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.seedUser(t, "asha@example.com", "fresh-milk-123", true)

	token, _, _, err := pkgAuth.MintRefreshToken(testJWTCfg, time.Now(), user.ID)
	require.NoError(t, err)
	hash := hashRefreshToken(token)
	f.sessions.sessions[hash] = &models.UserSession{
		UserID:           user.ID,
		RefreshTokenHash: hash,
		ExpiresAt:        time.Now().Add(-time.Hour),
	}

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: token}, ClientMeta{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
	assert.Empty(t, f.sessions.sessions)
}

func TestRefreshRejectsUnknownToken(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	user := f.seedUser(t, "asha@example.com", "fresh-milk-123", true)

	// Valid signature but no matching session row.
	token, _, _, err := pkgAuth.MintRefreshToken(testJWTCfg, time.Now(), user.ID)
	require.NoError(t, err)
	_, err = f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: token}, ClientMeta{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)

	_, err = f.svc.Refresh(context.Background(), RefreshRequest{RefreshToken: "not-a-jwt"}, ClientMeta{})
	assertCode(t, err, pkgerrors.CodeUnauthorized)
}

func TestSignout(t *testing.T) {
	t.Parallel()

	f := newAuthFixture(t)
	f.seedUser(t, "asha@example.com", "fresh-milk-123", true)

	first, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "fresh-milk-123",
	}, ClientMeta{})
	require.NoError(t, err)
	second, err := f.svc.Login(context.Background(), LoginRequest{
		Email:    "asha@example.com",
		Password: "fresh-milk-123",
	}, ClientMeta{})
	require.NoError(t, err)

	// Targeted signout revokes only the named session.
	require.NoError(t, f.svc.Signout(context.Background(), first.User.ID, SignoutRequest{
		RefreshToken: &first.RefreshToken,
	}))
	require.Len(t, f.sessions.sessions, 1)
	_, alive := f.sessions.sessions[hashRefreshToken(second.RefreshToken)]
	assert.True(t, alive)

	// Blanket signout revokes the rest.
	require.NoError(t, f.svc.Signout(context.Background(), first.User.ID, SignoutRequest{}))
	assert.Empty(t, f.sessions.sessions)
}
