package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
	"github.com/Neuro316/Neuro-progeny-university/repository"
)

// memPaywallRepository is an in-memory PaywallRepository counting lookups.
type memPaywallRepository struct {
	byID  map[uuid.UUID]*models.Paywall
	calls int
}

func (m *memPaywallRepository) FindActiveByID(_ context.Context, id uuid.UUID) (*models.Paywall, error) {
	m.calls++
	p, ok := m.byID[id]
	if !ok || !p.IsActive {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memPaywallRepository) FindActiveBySlug(_ context.Context, slug string) (*models.Paywall, error) {
	m.calls++
	for _, p := range m.byID {
		if p.Slug == slug && p.IsActive {
			return p, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (m *memPaywallRepository) FindByID(_ context.Context, id uuid.UUID) (*models.Paywall, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return p, nil
}

func (m *memPaywallRepository) List(_ context.Context, _, _ int) ([]models.Paywall, int64, error) {
	return nil, 0, nil
}

func (m *memPaywallRepository) Create(_ context.Context, p *models.Paywall) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memPaywallRepository) Update(_ context.Context, p *models.Paywall) error {
	m.byID[p.ID] = p
	return nil
}

func (m *memPaywallRepository) Deactivate(_ context.Context, id uuid.UUID) error {
	p, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	p.IsActive = false
	return nil
}

// unreachableRedis points at a closed port so every command fails fast.
func unreachableRedis() *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
}

func TestCachedPaywall_FallsThroughWhenRedisDown(t *testing.T) {
	id := uuid.New()
	inner := &memPaywallRepository{byID: map[uuid.UUID]*models.Paywall{
		id: {ID: id, Name: "Capacity 101", Slug: "capacity-101", IsActive: true},
	}}
	rdb := unreachableRedis()
	defer rdb.Close()

	repo := repository.NewCachedPaywallRepository(inner, rdb, time.Minute, zap.NewNop())

	p, err := repo.FindActiveByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Capacity 101", p.Name)

	p, err = repo.FindActiveBySlug(context.Background(), "capacity-101")
	require.NoError(t, err)
	assert.Equal(t, id, p.ID)
	assert.Equal(t, 2, inner.calls)
}

func TestCachedPaywall_NotFoundPropagates(t *testing.T) {
	inner := &memPaywallRepository{byID: map[uuid.UUID]*models.Paywall{}}
	rdb := unreachableRedis()
	defer rdb.Close()

	repo := repository.NewCachedPaywallRepository(inner, rdb, time.Minute, zap.NewNop())
	_, err := repo.FindActiveBySlug(context.Background(), "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestCachedPaywall_DeactivateStillApplies(t *testing.T) {
	id := uuid.New()
	inner := &memPaywallRepository{byID: map[uuid.UUID]*models.Paywall{
		id: {ID: id, Slug: "s", IsActive: true},
	}}
	rdb := unreachableRedis()
	defer rdb.Close()

	repo := repository.NewCachedPaywallRepository(inner, rdb, time.Minute, zap.NewNop())
	require.NoError(t, repo.Deactivate(context.Background(), id))
	assert.False(t, inner.byID[id].IsActive)

	_, err := repo.FindActiveByID(context.Background(), id)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
