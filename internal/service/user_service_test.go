package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"velodrive/internal/auth"
	"velodrive/internal/domain"
)

func newUserServiceFixture(t *testing.T) (*UserService, *memStore, *auth.Manager) {
	t.Helper()
	store := newMemStore()
	tokens := auth.NewManager(&auth.Config{Secret: "test-secret", TokenTTLMinutes: 60})
	return NewUserService(store, tokens), store, tokens
}

func TestRegisterAndLogin(t *testing.T) {
	svc, store, tokens := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cret"))

	u, err := store.GetByIdentifier(ctx, "alice")
	require.NoError(t, err)
	require.NotEqual(t, "s3cret", u.Password)
	require.Equal(t, int64(domain.DefaultStorageLimitBytes), u.TotalStorageInBytes)
	require.Equal(t, int64(domain.DefaultStorageLimitBytes), u.AvailableStorageInBytes)

	token, err := svc.Login(ctx, "alice", "s3cret")
	require.NoError(t, err)
	userID, err := tokens.VerifyToken(token)
	require.NoError(t, err)
	require.Equal(t, u.ID.String(), userID)

	// По email тоже можно
	_, err = svc.Login(ctx, "alice@example.com", "s3cret")
	require.NoError(t, err)
}

func TestRegisterDuplicate(t *testing.T) {
	svc, _, _ := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cret"))
	err := svc.Register(ctx, "alice", "other@example.com", "s3cret")
	require.ErrorIs(t, err, domain.ErrConflict)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newUserServiceFixture(t)
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, "alice", "alice@example.com", "s3cret"))

	_, err := svc.Login(ctx, "alice", "wrong")
	require.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLoginUnknownUser(t *testing.T) {
	svc, _, _ := newUserServiceFixture(t)

	_, err := svc.Login(context.Background(), "nobody", "s3cret")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestGetQuotaInfo(t *testing.T) {
	store := newMemStore()
	ownerID := store.addUser("alice", "alice@example.com", 1000, 250)
	svc := NewStorageQuotaService(store)

	info, err := svc.GetQuotaInfo(context.Background(), ownerID)
	require.NoError(t, err)
	require.Equal(t, int64(1000), info.TotalSpace)
	require.Equal(t, int64(750), info.UsedSpace)
	require.Equal(t, int64(250), info.AvailableSpace)
	require.InDelta(t, 75.0, info.UsagePercent, 0.001)
}
