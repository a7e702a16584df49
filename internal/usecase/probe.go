package usecase

import (
	"context"
	"sync"
	"time"

	"rpcdrift/internal/domain/entity"

	"go.uber.org/zap"
)

// ProbeUseCase drives a full probe: snapshot both endpoints, then compute
// drift. The two snapshots run concurrently; each owns its own client, and
// a hang or failure on one side never starves the other beyond its own
// timeout.
type ProbeUseCase struct {
	snapshotter *Snapshotter
	logger      *zap.Logger
}

// NewProbeUseCase creates a new probe use case.
func NewProbeUseCase(snapshotter *Snapshotter, logger *zap.Logger) *ProbeUseCase {
	return &ProbeUseCase{
		snapshotter: snapshotter,
		logger:      logger.Named("ProbeUseCase"),
	}
}

// Probe snapshots the primary and secondary endpoints and derives their
// drift report. Both snapshots complete before drift is computed; the
// report always lists primary before secondary regardless of which probe
// finished first.
func (uc *ProbeUseCase) Probe(
	ctx context.Context,
	primaryURL string,
	secondaryURL string,
	timeout time.Duration,
) entity.DriftReport {
	uc.logger.Debug("Starting probe",
		zap.String("primary", primaryURL),
		zap.String("secondary", secondaryURL),
		zap.Duration("timeout", timeout),
	)

	var wg sync.WaitGroup
	var primary, secondary entity.EndpointSnapshot

	wg.Add(2)
	go func() {
		defer wg.Done()
		primary = uc.snapshotter.Snapshot(ctx, entity.RolePrimary, primaryURL, timeout)
	}()
	go func() {
		defer wg.Done()
		secondary = uc.snapshotter.Snapshot(ctx, entity.RoleSecondary, secondaryURL, timeout)
	}()
	wg.Wait()

	report := ComputeDrift(primary, secondary)

	uc.logger.Debug("Probe finished",
		zap.Bool("consistentChain", report.ConsistentChain),
		zap.Bool("primaryConnected", primary.Connected),
		zap.Bool("secondaryConnected", secondary.Connected),
	)
	return report
}
