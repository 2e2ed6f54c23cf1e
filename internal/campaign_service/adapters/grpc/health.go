package grpc

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"
	gRPC "google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
)

// ServiceName is the name reported through the gRPC health protocol.
const ServiceName = "vendorrisk.campaign.v1.CampaignService"

// Check pings one dependency.
type Check struct {
	Name string
	Ping func(ctx context.Context) error
}

// HealthServer serves grpc.health.v1 and refreshes the serving status from a
// periodic dependency probe.
type HealthServer struct {
	*health.Server
	checks   []Check
	interval time.Duration
	timeout  time.Duration
	cron     *cron.Cron
	logger   *slog.Logger
}

func NewHealthServer(logger *slog.Logger, interval time.Duration, checks ...Check) *HealthServer {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	h := &HealthServer{
		Server:   health.NewServer(),
		checks:   checks,
		interval: interval,
		timeout:  interval / 2,
		cron:     cron.New(),
		logger:   logger.With("component", "grpc_health"),
	}
	h.setStatus(healthpb.HealthCheckResponse_NOT_SERVING)
	return h
}

func (h *HealthServer) Register(s *gRPC.Server) {
	healthpb.RegisterHealthServer(s, h.Server)
}

// Probe runs every check once and publishes the result.
func (h *HealthServer) Probe(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	status := healthpb.HealthCheckResponse_SERVING
	for _, c := range h.checks {
		if err := c.Ping(ctx); err != nil {
			h.logger.WarnContext(ctx, "dependency check failed", "dependency", c.Name, "error", err)
			status = healthpb.HealthCheckResponse_NOT_SERVING
		}
	}
	h.setStatus(status)
	return status
}

// Start probes immediately and then on every interval.
func (h *HealthServer) Start(ctx context.Context) error {
	h.Probe(ctx)
	schedule := fmt.Sprintf("@every %s", h.interval)
	if _, err := h.cron.AddFunc(schedule, func() { h.Probe(ctx) }); err != nil {
		return fmt.Errorf("schedule health probe: %w", err)
	}
	h.cron.Start()
	return nil
}

// Stop halts the probe and marks every service NOT_SERVING.
func (h *HealthServer) Stop() {
	<-h.cron.Stop().Done()
	h.Server.Shutdown()
}

func (h *HealthServer) setStatus(status healthpb.HealthCheckResponse_ServingStatus) {
	h.SetServingStatus("", status)
	h.SetServingStatus(ServiceName, status)
}
