package reports

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// RepositoryPort describes the queries used by Service.
type RepositoryPort interface {
	StockReport(ctx context.Context, filter Filter) ([]StockReportRow, error)
}

// Service serves the stock report through a redis cache. Concurrent requests
// for the same filter combination are coalesced; a missing or failing redis
// degrades to direct queries.
type Service struct {
	repo   RepositoryPort
	cache  *redis.Client
	ttl    time.Duration
	group  singleflight.Group
	logger *slog.Logger
}

// NewService constructs reports service. cache may be nil.
func NewService(repo RepositoryPort, cache *redis.Client, ttl time.Duration, logger *slog.Logger) *Service {
	return &Service{repo: repo, cache: cache, ttl: ttl, logger: logger}
}

// StockReport returns the report rows for the given filter.
func (s *Service) StockReport(ctx context.Context, filter Filter) ([]StockReportRow, error) {
	key := filter.CacheKey()
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, key).Bytes()
		if err == nil {
			var rows []StockReportRow
			if err := json.Unmarshal(raw, &rows); err == nil {
				return rows, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn("report cache read", slog.Any("error", err))
		}
	}

	result, err, _ := s.group.Do(key, func() (interface{}, error) {
		rows, err := s.repo.StockReport(ctx, filter)
		if err != nil {
			return nil, err
		}
		if s.cache != nil {
			if raw, err := json.Marshal(rows); err == nil {
				if err := s.cache.Set(ctx, key, raw, s.ttl).Err(); err != nil {
					s.logger.Warn("report cache write", slog.Any("error", err))
				}
			}
		}
		return rows, nil
	})
	if err != nil {
		return nil, err
	}
	rows, _ := result.([]StockReportRow)
	return rows, nil
}

// WarmStockReport rebuilds the unfiltered report cache entry, replacing
// whatever is cached.
func (s *Service) WarmStockReport(ctx context.Context) error {
	filter := Filter{}
	rows, err := s.repo.StockReport(ctx, filter)
	if err != nil {
		return err
	}
	if s.cache == nil {
		return nil
	}
	raw, err := json.Marshal(rows)
	if err != nil {
		return err
	}
	return s.cache.Set(ctx, filter.CacheKey(), raw, s.ttl).Err()
}
