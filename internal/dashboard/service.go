package dashboard

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/osalazarm/alertview/internal/alertstore"
	"github.com/osalazarm/alertview/internal/logger"
)

// StatsSource abstracts the alert index stats call for testability.
type StatsSource interface {
	Stats(ctx context.Context, period alertstore.Period) (*alertstore.Stats, error)
}

// Service serves derived dashboard series, caching them per period so a
// dashboard refresh storm does not hammer the alert index.
type Service struct {
	source StatsSource
	cache  *gocache.Cache
	log    logger.Logger
}

// NewService creates a dashboard service with the given cache TTL.
func NewService(source StatsSource, cacheTTL time.Duration, log logger.Logger) *Service {
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &Service{
		source: source,
		cache:  gocache.New(cacheTTL, 2*cacheTTL),
		log:    log,
	}
}

// Series returns the derived dashboard series for a period, from cache
// when fresh. Store errors are never cached and never yield partial data.
func (s *Service) Series(ctx context.Context, period alertstore.Period) (*Series, error) {
	if cached, found := s.cache.Get(string(period)); found {
		if series, ok := cached.(*Series); ok {
			return series, nil
		}
	}

	stats, err := s.source.Stats(ctx, period)
	if err != nil {
		return nil, err
	}

	series := BuildSeries(stats)
	s.cache.Set(string(period), series, gocache.DefaultExpiration)
	return series, nil
}

// Refresh recomputes and caches the series for a period, bypassing any
// cached value.
func (s *Service) Refresh(ctx context.Context, period alertstore.Period) error {
	stats, err := s.source.Stats(ctx, period)
	if err != nil {
		return err
	}
	s.cache.Set(string(period), BuildSeries(stats), gocache.DefaultExpiration)
	return nil
}
