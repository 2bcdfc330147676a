package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ariefcatur/go-storefront-sync/internal/logging"
	"github.com/ariefcatur/go-storefront-sync/internal/redisx"
	"github.com/ariefcatur/go-storefront-sync/internal/storefront"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// fillScript caches a cart only if no write invalidated it since the fill
// started reading: KEYS[1] cart key, KEYS[2] generation key, ARGV[1] the
// generation seen before the read, ARGV[2] payload, ARGV[3] ttl in ms.
var fillScript = redis.NewScript(`
local gen = redis.call('GET', KEYS[2]) or ''
if gen ~= ARGV[1] then
	return 0
end
redis.call('SET', KEYS[1], ARGV[2], 'PX', ARGV[3])
return 1
`)

// CachedStore puts a Redis read-through cache in front of a Store. Every
// write, including a rejected one, drops the cached copy and bumps the
// cart's generation, so a fill that raced a write is never stored.
type CachedStore struct {
	next  Store
	rdb   *redis.Client
	ttl   time.Duration
	group singleflight.Group
	log   *zap.Logger
}

func NewCachedStore(next Store, rdb *redis.Client, log *zap.Logger) *CachedStore {
	return &CachedStore{next: next, rdb: rdb, ttl: redisx.TTLCart, log: logging.OrNop(log)}
}

func (s *CachedStore) Get(ctx context.Context, customerID string) (*storefront.Cart, error) {
	if c, err := s.cached(ctx, customerID); err == nil {
		return c, nil
	} else if !errors.Is(err, redis.Nil) {
		s.log.Warn("cart cache read failed", zap.String("customer_id", customerID), zap.Error(err))
	}

	v, err, _ := s.group.Do(customerID, func() (any, error) {
		gen, genErr := s.rdb.Get(ctx, genKey(customerID)).Result()
		if errors.Is(genErr, redis.Nil) {
			gen, genErr = "", nil
		}
		c, err := s.next.Get(ctx, customerID)
		if err != nil {
			return nil, err
		}
		if genErr == nil {
			s.fill(ctx, c, gen)
		}
		return c, nil
	})
	if err != nil {
		return nil, err
	}
	return clone(*v.(*storefront.Cart)), nil
}

// GetFresh reads the backing store, skipping the cache. Writers use it so a
// decision to skip a write is never made on a cached copy.
func (s *CachedStore) GetFresh(ctx context.Context, customerID string) (*storefront.Cart, error) {
	return s.next.Get(ctx, customerID)
}

func (s *CachedStore) Save(ctx context.Context, c *storefront.Cart) error {
	defer s.invalidate(ctx, c.CustomerID)
	return s.next.Save(ctx, c)
}

func (s *CachedStore) Delete(ctx context.Context, customerID string) error {
	defer s.invalidate(ctx, customerID)
	return s.next.Delete(ctx, customerID)
}

func (s *CachedStore) DeleteIfVersion(ctx context.Context, customerID string, version int64) error {
	defer s.invalidate(ctx, customerID)
	return s.next.DeleteIfVersion(ctx, customerID, version)
}

func (s *CachedStore) cached(ctx context.Context, customerID string) (*storefront.Cart, error) {
	b, err := s.rdb.Get(ctx, key(customerID)).Bytes()
	if err != nil {
		return nil, err
	}
	var c storefront.Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("decode cached cart: %w", err)
	}
	return &c, nil
}

func (s *CachedStore) fill(ctx context.Context, c *storefront.Cart, gen string) {
	b, err := json.Marshal(c)
	if err != nil {
		return
	}
	keys := []string{key(c.CustomerID), genKey(c.CustomerID)}
	stored, err := fillScript.Run(ctx, s.rdb, keys, gen, b, s.ttl.Milliseconds()).Int()
	switch {
	case err != nil:
		s.log.Warn("cart cache write failed", zap.String("customer_id", c.CustomerID), zap.Error(err))
	case stored == 0:
		s.log.Debug("cart changed during cache fill, not cached", zap.String("customer_id", c.CustomerID))
	}
}

func (s *CachedStore) invalidate(ctx context.Context, customerID string) {
	ctx = context.WithoutCancel(ctx)
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Del(ctx, key(customerID))
		p.Incr(ctx, genKey(customerID))
		p.Expire(ctx, genKey(customerID), redisx.TTLCartGen)
		return nil
	})
	if err != nil {
		s.log.Warn("cart cache invalidate failed", zap.String("customer_id", customerID), zap.Error(err))
	}
}

func key(customerID string) string    { return fmt.Sprintf(redisx.KeyCart, customerID) }
func genKey(customerID string) string { return fmt.Sprintf(redisx.KeyCartGen, customerID) }
