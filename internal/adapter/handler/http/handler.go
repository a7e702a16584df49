package http

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"rpcdrift/internal/config"
	"rpcdrift/internal/domain/entity"
	domainRepo "rpcdrift/internal/domain/repository"
	"rpcdrift/internal/usecase"
)

// DriftHandler serves on-demand drift probes over HTTP. Identical probe
// requests inside the cache TTL are answered from memory so a burst of
// callers does not turn into a burst of RPC traffic.
type DriftHandler struct {
	probe  *usecase.ProbeUseCase
	cache  domainRepo.ReportCache
	cfg    config.Config
	logger *zap.Logger
}

// NewDriftHandler creates a new drift probe handler.
func NewDriftHandler(
	probe *usecase.ProbeUseCase,
	cache domainRepo.ReportCache,
	cfg config.Config,
	logger *zap.Logger,
) *DriftHandler {
	return &DriftHandler{
		probe:  probe,
		cache:  cache,
		cfg:    cfg,
		logger: logger.Named("DriftHandler"),
	}
}

// GetDrift handles GET /drift?primary=<url>&secondary=<url>[&timeout=<seconds>].
func (h *DriftHandler) GetDrift(ctx *fasthttp.RequestCtx) {
	primaryURL := string(ctx.QueryArgs().Peek("primary"))
	secondaryURL := string(ctx.QueryArgs().Peek("secondary"))
	if primaryURL == "" || secondaryURL == "" {
		ctx.Error("Bad Request: 'primary' and 'secondary' query parameters are required",
			fasthttp.StatusBadRequest)
		return
	}

	if _, err := entity.NewRPCURL(primaryURL); err != nil {
		ctx.Error("Bad Request: invalid 'primary' URL", fasthttp.StatusBadRequest)
		return
	}
	if _, err := entity.NewRPCURL(secondaryURL); err != nil {
		ctx.Error("Bad Request: invalid 'secondary' URL", fasthttp.StatusBadRequest)
		return
	}

	timeout := h.cfg.Probe.DefaultTimeout()
	if raw := string(ctx.QueryArgs().Peek("timeout")); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			ctx.Error("Bad Request: 'timeout' must be a positive integer of seconds",
				fasthttp.StatusBadRequest)
			return
		}
		timeout = time.Duration(seconds) * time.Second
	}

	key := probeKey(primaryURL, secondaryURL, timeout)
	if report, found, err := h.cache.GetReport(ctx, key); err == nil && found {
		h.writeReport(ctx, report)
		return
	}

	report := h.probe.Probe(ctx, primaryURL, secondaryURL, timeout)

	if err := h.cache.SetReport(ctx, key, report, h.cfg.Cache.ReportTTL()); err != nil {
		// Serving the fresh report matters more than caching it.
		h.logger.Error("Failed to cache drift report", zap.String("key", key), zap.Error(err))
	}

	h.writeReport(ctx, report)
}

// Health handles GET /health.
func (h *DriftHandler) Health(ctx *fasthttp.RequestCtx) {
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBodyString("OK")
}

func (h *DriftHandler) writeReport(ctx *fasthttp.RequestCtx, report entity.DriftReport) {
	ctx.SetContentType("application/json")
	if err := json.NewEncoder(ctx).Encode(report); err != nil {
		h.logger.Error("Failed to encode drift report response", zap.Error(err))
	}
}

func probeKey(primaryURL, secondaryURL string, timeout time.Duration) string {
	return fmt.Sprintf("%s|%s|%d", primaryURL, secondaryURL, int64(timeout/time.Second))
}
