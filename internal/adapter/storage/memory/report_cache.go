package memory

import (
	"context"
	"fmt"
	"time"

	"rpcdrift/internal/config"
	"rpcdrift/internal/domain/entity"
	domainRepo "rpcdrift/internal/domain/repository"

	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// Compile-time check
var _ domainRepo.ReportCache = (*ReportCache)(nil)

const reportKeyPrefix = "drift_report_v1_"

// ReportCache implements domainRepo.ReportCache using the go-cache
// in-memory library. Entries expire on their own; nothing survives the
// process.
type ReportCache struct {
	cache  *cache.Cache
	logger *zap.Logger
}

// NewReportCache creates a new in-memory report cache.
func NewReportCache(cfg config.CacheConfig, logger *zap.Logger) *ReportCache {
	c := cache.New(cfg.ReportTTL(), cfg.CleanupInterval())
	logger.Info("Initialized go-cache for report storage",
		zap.Duration("reportTTL", cfg.ReportTTL()),
		zap.Duration("cleanupInterval", cfg.CleanupInterval()),
	)

	return &ReportCache{
		cache:  c,
		logger: logger.Named("MemoryReportCache"),
	}
}

// GetReport retrieves a cached report for the given probe key.
func (r *ReportCache) GetReport(_ context.Context, key string) (entity.DriftReport, bool, error) {
	fullKey := reportKeyPrefix + key
	if x, found := r.cache.Get(fullKey); found {
		if report, ok := x.(entity.DriftReport); ok {
			r.logger.Debug("Report cache hit", zap.String("key", key))
			return report, true, nil
		}
		r.logger.Warn("Report cache data type mismatch",
			zap.String("key", key), zap.String("type", fmt.Sprintf("%T", x)),
		)
	}
	r.logger.Debug("Report cache miss", zap.String("key", key))
	return entity.DriftReport{}, false, nil
}

// SetReport caches a report under the given probe key with a TTL.
func (r *ReportCache) SetReport(_ context.Context, key string, report entity.DriftReport, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = cache.DefaultExpiration
	}
	r.cache.Set(reportKeyPrefix+key, report, ttl)
	r.logger.Debug("Report cache set", zap.String("key", key), zap.Duration("ttl", ttl))
	return nil
}
