package propertyRepo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"estately/models"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// PropertyCachePrefix is the prefix used for cached property keys.
const PropertyCachePrefix = "property:"

// CachedPropertyRepo fronts a PropertyRepository with Redis for id lookups.
// Cache failures are logged and the lookup falls through to the inner repo.
type CachedPropertyRepo struct {
	Inner  PropertyRepository
	Cache  *redis.Client
	TTL    time.Duration
	Logger *zap.Logger
}

func (r *CachedPropertyRepo) GetByID(ctx context.Context, id string) (*models.Property, error) {
	found, err := r.GetByIDs(ctx, []string{id})
	if err != nil {
		return nil, err
	}
	if p, ok := found[id]; ok {
		return &p, nil
	}
	// Let the inner repo produce its own not-found error.
	return r.Inner.GetByID(ctx, id)
}

func (r *CachedPropertyRepo) GetByIDs(ctx context.Context, ids []string) (map[string]models.Property, error) {
	out := make(map[string]models.Property, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = PropertyCachePrefix + id
	}

	misses := ids
	vals, err := r.Cache.MGet(ctx, keys...).Result()
	if err != nil {
		r.Logger.Warn("property cache read failed", zap.Error(err))
	} else {
		misses = misses[:0:0]
		for i, v := range vals {
			s, ok := v.(string)
			if !ok {
				misses = append(misses, ids[i])
				continue
			}
			var p models.Property
			if err := json.Unmarshal([]byte(s), &p); err != nil {
				misses = append(misses, ids[i])
				continue
			}
			out[p.ID] = p
		}
	}
	if len(misses) == 0 {
		return out, nil
	}

	loaded, err := r.Inner.GetByIDs(ctx, misses)
	if err != nil {
		return nil, err
	}
	r.store(ctx, loaded)
	for id, p := range loaded {
		out[id] = p
	}
	return out, nil
}

// ListByOwner always reads through so newly listed properties show up at once.
func (r *CachedPropertyRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Property, error) {
	props, err := r.Inner.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	loaded := make(map[string]models.Property, len(props))
	for _, p := range props {
		loaded[p.ID] = p
	}
	r.store(ctx, loaded)
	return props, nil
}

func (r *CachedPropertyRepo) store(ctx context.Context, props map[string]models.Property) {
	if len(props) == 0 {
		return
	}
	pipe := r.Cache.Pipeline()
	for id, p := range props {
		raw, err := json.Marshal(p)
		if err != nil {
			continue
		}
		pipe.Set(ctx, PropertyCachePrefix+id, raw, r.TTL)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		r.Logger.Warn("property cache write failed", zap.Error(fmt.Errorf("caching %d properties: %w", len(props), err)))
	}
}
