package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"gladiadores/internal/models/db_models"
	"gladiadores/internal/models/request_models"
	mem "gladiadores/pkg/memcache"
	"gladiadores/pkg/utils"
)

type fakeAccountRepo struct {
	mu       sync.Mutex
	accounts map[uuid.UUID]*db_models.Account
}

func (f *fakeAccountRepo) InsertTx(_ context.Context, account *db_models.Account, defaultRole string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	account.ID = uuid.New()
	account.Roles = []db_models.UserRole{{AccountID: account.ID, Role: defaultRole}}
	f.accounts[account.ID] = account
	return nil
}

func (f *fakeAccountRepo) FindById(_ context.Context, id uuid.UUID) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.accounts[id], nil
}

func (f *fakeAccountRepo) FindByEmail(_ context.Context, email string) (*db_models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.accounts {
		if a.Email == email {
			return a, nil
		}
	}
	return nil, nil
}

func (f *fakeAccountRepo) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a, ok := f.accounts[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	a.PasswordHash = passwordHash
	return nil
}

func (f *fakeAccountRepo) TouchLastLogin(_ context.Context, id uuid.UUID, at int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a, ok := f.accounts[id]; ok {
		a.LastLoginAt = &at
	}
	return nil
}

type accountFixture struct {
	redis    *miniredis.Miniredis
	mail     *recordingMail
	regs     *fakeRegistrationRepo
	issuer   *utils.TokenIssuer
	denylist mem.TokenStore
	svc      AccountServiceInterface
}

func newAccountFixture(t *testing.T) *accountFixture {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	f := &accountFixture{
		redis:    mr,
		mail:     &recordingMail{},
		regs:     newFakeRegistrationRepo(),
		issuer:   utils.NewTokenIssuer("test-secret", time.Hour),
		denylist: mem.NewRedisTokens(client, "deny"),
	}
	f.svc = NewAccountService(AccountServiceDeps{
		AccountRepo:      &fakeAccountRepo{accounts: map[uuid.UUID]*db_models.Account{}},
		RegistrationRepo: f.regs,
		MailService:      f.mail,
		ResetTokens:      mem.NewRedisTokens(client, "reset"),
		Denylist:         f.denylist,
		Issuer:           f.issuer,
		ResetTTL:         15 * time.Minute,
		Log:              zap.NewNop(),
	})
	return f
}

func TestSignUpAndLogin(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	acc, err := f.svc.CreateAccount(ctx, request_models.SignUpRequest{
		DisplayName: " Juan Duarte ",
		Email:       "Juan@Example.com",
		Password:    "s3cret-pass",
	})
	require.NoError(t, err)
	assert.Equal(t, "juan@example.com", acc.Email)
	assert.Equal(t, "Juan Duarte", acc.Name)
	assert.Equal(t, []string{"user"}, acc.Roles)

	_, err = f.svc.CreateAccount(ctx, request_models.SignUpRequest{DisplayName: "Otro", Email: "juan@example.com", Password: "whatever1"})
	assert.ErrorIs(t, err, utils.ErrEmailAlreadyExists)

	_, err = f.svc.Login(ctx, request_models.LoginRequest{Email: "juan@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, utils.ErrInvalidCredentials)

	_, err = f.svc.Login(ctx, request_models.LoginRequest{Email: "nadie@example.com", Password: "wrong-pass"})
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)

	login, err := f.svc.Login(ctx, request_models.LoginRequest{Email: "JUAN@example.com", Password: "s3cret-pass"})
	require.NoError(t, err)
	assert.False(t, login.HasRegistration)

	claims, err := f.issuer.ValidateToken(login.Token)
	require.NoError(t, err)
	assert.Equal(t, acc.ID, claims.UserID)
}

func TestPasswordReset(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	_, err := f.svc.CreateAccount(ctx, request_models.SignUpRequest{DisplayName: "Rosa", Email: "rosa@example.com", Password: "old-password"})
	require.NoError(t, err)

	require.NoError(t, f.svc.ForgotPassword(ctx, "nadie@example.com"))
	assert.Empty(t, f.mail.resets)

	require.NoError(t, f.svc.ForgotPassword(ctx, "rosa@example.com"))
	token := f.mail.resets["rosa@example.com"]
	require.NotEmpty(t, token)

	require.NoError(t, f.svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Token: token, NewPassword: "new-password"}))

	err = f.svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Token: token, NewPassword: "another-pass"})
	assert.ErrorIs(t, err, utils.ErrInvalidResetToken, "tokens are single use")

	_, err = f.svc.Login(ctx, request_models.LoginRequest{Email: "rosa@example.com", Password: "new-password"})
	assert.NoError(t, err)
}

func TestPasswordResetTokenExpires(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	_, err := f.svc.CreateAccount(ctx, request_models.SignUpRequest{DisplayName: "Luis", Email: "luis@example.com", Password: "old-password"})
	require.NoError(t, err)
	require.NoError(t, f.svc.ForgotPassword(ctx, "luis@example.com"))

	f.redis.FastForward(16 * time.Minute)

	err = f.svc.ResetPassword(ctx, request_models.ResetPasswordRequest{Token: f.mail.resets["luis@example.com"], NewPassword: "new-password"})
	assert.ErrorIs(t, err, utils.ErrInvalidResetToken)
}

func TestLogoutDenylistsToken(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	_, claims, err := f.issuer.CreateToken(uuid.New(), []string{"user"})
	require.NoError(t, err)

	require.NoError(t, f.svc.Logout(ctx, claims))

	_, revoked, err := f.denylist.Peek(ctx, claims.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
	assert.InDelta(t, time.Hour.Seconds(), f.redis.TTL("deny:"+claims.ID).Seconds(), 5)

	assert.NoError(t, f.svc.Logout(ctx, nil))
}

func TestMeReportsRegistration(t *testing.T) {
	ctx := context.Background()
	f := newAccountFixture(t)

	acc, err := f.svc.CreateAccount(ctx, request_models.SignUpRequest{DisplayName: "Ana", Email: "ana@example.com", Password: "password1"})
	require.NoError(t, err)
	id := uuid.MustParse(acc.ID)

	me, err := f.svc.Me(ctx, id)
	require.NoError(t, err)
	assert.False(t, me.HasRegistration)

	f.regs.add(&db_models.Registration{AccountID: id, Cedula: "00113918205", ReferralCode: "ANA00001"})
	me, err = f.svc.Me(ctx, id)
	require.NoError(t, err)
	assert.True(t, me.HasRegistration)

	_, err = f.svc.Me(ctx, uuid.New())
	assert.ErrorIs(t, err, utils.ErrAccountNotFound)
}
