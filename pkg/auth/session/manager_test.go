package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hadeeqati/hadeeqati-backend/pkg/enums"
)

type memoryStore struct {
	mu     sync.Mutex
	data   map[string]string
	ttls   map[string]time.Duration
	getErr error
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (m *memoryStore) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = fmt.Sprint(value)
	m.ttls[key] = ttl
	return nil
}

func (m *memoryStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	val, ok := m.data[key]
	if !ok {
		return "", redislib.Nil
	}
	return val, nil
}

func (m *memoryStore) Del(_ context.Context, keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		delete(m.data, key)
	}
	return nil
}

func (m *memoryStore) AccessSessionKey(accessID string) string {
	return "hq:session:access:" + accessID
}

func newTestManager(store *memoryStore) *Manager {
	m := newManager(store, store, 30*24*time.Hour)
	m.now = func() time.Time { return time.Date(2025, 5, 1, 9, 0, 0, 0, time.UTC) }
	return m
}

func TestGenerateStoresOwnerAndDigest(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	owner := Owner{UserID: uuid.New(), Role: enums.UserRoleAdmin}

	token, err := manager.Generate(context.Background(), "access-1", owner)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	raw := store.data[store.AccessSessionKey("access-1")]
	assert.NotContains(t, raw, token)
	var rec record
	require.NoError(t, json.Unmarshal([]byte(raw), &rec))
	assert.Equal(t, owner, rec.Owner)
	assert.Equal(t, digest(token), rec.RefreshDigest)
	assert.Equal(t, manager.now(), rec.IssuedAt)
	assert.Equal(t, 30*24*time.Hour, store.ttls[store.AccessSessionKey("access-1")])
}

func TestGenerateValidatesInput(t *testing.T) {
	manager := newTestManager(newMemoryStore())
	ctx := context.Background()

	_, err := manager.Generate(ctx, " ", Owner{UserID: uuid.New(), Role: enums.UserRoleUser})
	assert.Error(t, err)
	_, err = manager.Generate(ctx, "access-1", Owner{Role: enums.UserRoleUser})
	assert.Error(t, err)
	_, err = manager.Generate(ctx, "access-1", Owner{UserID: uuid.New(), Role: "gardener"})
	assert.Error(t, err)
}

func TestRotateCarriesOwnerAndConsumesOldSession(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()
	owner := Owner{UserID: uuid.New(), Role: enums.UserRoleUser}

	token, err := manager.Generate(ctx, "access-1", owner)
	require.NoError(t, err)

	_, err = manager.Rotate(ctx, "access-1", "wrong")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)

	rotation, err := manager.Rotate(ctx, "access-1", token)
	require.NoError(t, err)
	assert.Equal(t, owner, rotation.Owner)
	assert.NotEqual(t, "access-1", rotation.AccessID)
	assert.NotEqual(t, token, rotation.RefreshToken)

	ok, err := manager.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, ok)
	ok, err = manager.HasSession(ctx, rotation.AccessID)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = manager.Rotate(ctx, "access-1", token)
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRotateRejectsCorruptRecord(t *testing.T) {
	store := newMemoryStore()
	store.data[store.AccessSessionKey("access-1")] = "plain-token"
	manager := newTestManager(store)

	_, err := manager.Rotate(context.Background(), "access-1", "plain-token")
	assert.ErrorIs(t, err, ErrInvalidRefreshToken)
}

func TestRevokeAndStoreFailures(t *testing.T) {
	store := newMemoryStore()
	manager := newTestManager(store)
	ctx := context.Background()

	_, err := manager.Generate(ctx, "access-1", Owner{UserID: uuid.New(), Role: enums.UserRoleUser})
	require.NoError(t, err)
	require.NoError(t, manager.Revoke(ctx, "access-1"))
	ok, err := manager.HasSession(ctx, "access-1")
	require.NoError(t, err)
	assert.False(t, ok)

	store.getErr = errors.New("redis down")
	_, err = manager.HasSession(ctx, "access-1")
	assert.EqualError(t, err, "redis down")
	_, err = manager.Rotate(ctx, "access-1", "token")
	assert.EqualError(t, err, "redis down")
}
