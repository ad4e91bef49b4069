package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/Neuro316/Neuro-progeny-university/models"
)

const paywallKeyPrefix = "enrollment:paywall:"

// CachedPaywallRepository is a read-through cache for the public paywall
// lookups. Redis errors are logged and the database answers instead.
type CachedPaywallRepository struct {
	inner  PaywallRepository
	rdb    redis.Cmdable
	ttl    time.Duration
	logger *zap.Logger
}

func NewCachedPaywallRepository(inner PaywallRepository, rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) PaywallRepository {
	return &CachedPaywallRepository{inner: inner, rdb: rdb, ttl: ttl, logger: logger}
}

func paywallIDKey(id uuid.UUID) string { return paywallKeyPrefix + "id:" + id.String() }
func paywallSlugKey(slug string) string { return paywallKeyPrefix + "slug:" + slug }

func (r *CachedPaywallRepository) FindActiveByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error) {
	return r.readThrough(ctx, paywallIDKey(id), func() (*models.Paywall, error) {
		return r.inner.FindActiveByID(ctx, id)
	})
}

func (r *CachedPaywallRepository) FindActiveBySlug(ctx context.Context, slug string) (*models.Paywall, error) {
	return r.readThrough(ctx, paywallSlugKey(slug), func() (*models.Paywall, error) {
		return r.inner.FindActiveBySlug(ctx, slug)
	})
}

func (r *CachedPaywallRepository) readThrough(ctx context.Context, key string, load func() (*models.Paywall, error)) (*models.Paywall, error) {
	raw, err := r.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var p models.Paywall
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return &p, nil
		}
		r.logger.Warn("Discarding undecodable cached paywall", zap.String("key", key))
	case !errors.Is(err, redis.Nil):
		r.logger.Warn("Paywall cache read failed", zap.String("key", key), zap.Error(err))
	}

	p, err := load()
	if err != nil {
		return nil, err
	}

	if data, jerr := json.Marshal(p); jerr == nil {
		if serr := r.rdb.Set(ctx, key, data, r.ttl).Err(); serr != nil {
			r.logger.Warn("Paywall cache write failed", zap.String("key", key), zap.Error(serr))
		}
	}
	return p, nil
}

func (r *CachedPaywallRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Paywall, error) {
	return r.inner.FindByID(ctx, id)
}

func (r *CachedPaywallRepository) List(ctx context.Context, page, limit int) ([]models.Paywall, int64, error) {
	return r.inner.List(ctx, page, limit)
}

func (r *CachedPaywallRepository) Create(ctx context.Context, paywall *models.Paywall) error {
	if err := r.inner.Create(ctx, paywall); err != nil {
		return err
	}
	r.invalidate(ctx, paywall.ID, paywall.Slug)
	return nil
}

func (r *CachedPaywallRepository) Update(ctx context.Context, paywall *models.Paywall) error {
	// The slug may have changed; drop the old entry too.
	oldSlug := ""
	if prev, err := r.inner.FindByID(ctx, paywall.ID); err == nil {
		oldSlug = prev.Slug
	}
	if err := r.inner.Update(ctx, paywall); err != nil {
		return err
	}
	r.invalidate(ctx, paywall.ID, paywall.Slug, oldSlug)
	return nil
}

func (r *CachedPaywallRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	slug := ""
	if prev, err := r.inner.FindByID(ctx, id); err == nil {
		slug = prev.Slug
	}
	if err := r.inner.Deactivate(ctx, id); err != nil {
		return err
	}
	r.invalidate(ctx, id, slug)
	return nil
}

func (r *CachedPaywallRepository) invalidate(ctx context.Context, id uuid.UUID, slugs ...string) {
	keys := []string{paywallIDKey(id)}
	for _, s := range slugs {
		if s != "" {
			keys = append(keys, paywallSlugKey(s))
		}
	}
	if err := r.rdb.Del(ctx, keys...).Err(); err != nil {
		r.logger.Warn("Paywall cache invalidation failed", zap.Strings("keys", keys), zap.Error(err))
	}
}
