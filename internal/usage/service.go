// Package usage reports the session user's credit and quota standing. The
// backend value changes rarely, so responses are cached briefly and the
// cache is invalidated whenever a local action is known to change it.
package usage

import (
	"context"
	"fmt"
	"time"

	gocache "github.com/patrickmn/go-cache"
	slogctx "github.com/veqryn/slog-context"

	"github.com/styleai/styleai/internal/apiclient"
)

const cacheKey = "usage-info"

// DefaultTTL is how long a fetched usage snapshot stays valid.
const DefaultTTL = 30 * time.Second

// Source is the slice of the backend API the usage service needs.
type Source interface {
	UsageInfo(ctx context.Context) (apiclient.UsageInfo, error)
}

type Service struct {
	source Source
	cache  *gocache.Cache
	ttl    time.Duration
}

func NewService(source Source, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}

	return &Service{
		source: source,
		cache:  gocache.New(ttl, 2*ttl),
		ttl:    ttl,
	}
}

// Info returns the current usage snapshot, serving a cached copy when one
// is fresh.
func (s *Service) Info(ctx context.Context) (apiclient.UsageInfo, error) {
	if cached, ok := s.cache.Get(cacheKey); ok {
		info, ok := cached.(apiclient.UsageInfo)
		if ok {
			slogctx.Debug(ctx, "Serving cached usage info")
			return info, nil
		}
	}

	info, err := s.source.UsageInfo(ctx)
	if err != nil {
		return apiclient.UsageInfo{}, fmt.Errorf("fetching usage info: %w", err)
	}

	s.cache.Set(cacheKey, info, s.ttl)

	return info, nil
}

// Invalidate drops the cached snapshot. Callers invoke it after any action
// that changes the backend accounting, such as an upload or a purchase.
func (s *Service) Invalidate() {
	s.cache.Delete(cacheKey)
}
