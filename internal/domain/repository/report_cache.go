package repository

import (
	"context"
	"time"

	"rpcdrift/internal/domain/entity"
)

// ReportCache holds recently computed drift reports keyed by the probed
// endpoint pair, so the API can absorb request storms without hammering the
// endpoints themselves. Entries expire; nothing is persisted.
type ReportCache interface {
	GetReport(ctx context.Context, key string) (entity.DriftReport, bool, error)
	SetReport(ctx context.Context, key string, report entity.DriftReport, ttl time.Duration) error
}
