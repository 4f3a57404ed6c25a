package health

import (
	"context"
	"errors"
	"sync"
	"time"

	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"github.com/helloca/ai-service/internal/logging"
)

// DatabaseService is the health service name reporting database reachability.
const DatabaseService = "helloca.db"

const defaultPingTimeout = 5 * time.Second

type Pinger interface {
	Ping(ctx context.Context) error
}

// Monitor probes the database on a fixed interval and publishes the result on
// a gRPC health server.
type Monitor struct {
	status   *health.Server
	db       Pinger
	interval time.Duration
	timeout  time.Duration

	mu   sync.Mutex
	last healthpb.HealthCheckResponse_ServingStatus
}

func NewMonitor(status *health.Server, db Pinger, interval time.Duration) (*Monitor, error) {
	if status == nil {
		return nil, errors.New("health: status server must not be nil")
	}
	if db == nil {
		return nil, errors.New("health: pinger must not be nil")
	}
	if interval <= 0 {
		return nil, errors.New("health: interval must be positive")
	}
	status.SetServingStatus(DatabaseService, healthpb.HealthCheckResponse_NOT_SERVING)
	return &Monitor{
		status:   status,
		db:       db,
		interval: interval,
		timeout:  defaultPingTimeout,
		last:     healthpb.HealthCheckResponse_UNKNOWN,
	}, nil
}

// Run checks once immediately and then on every tick until ctx is done.
func (m *Monitor) Run(ctx context.Context) {
	m.Check(ctx)

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check(ctx)
		}
	}
}

func (m *Monitor) Check(ctx context.Context) healthpb.HealthCheckResponse_ServingStatus {
	pingCtx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	err := m.db.Ping(pingCtx)
	st := healthpb.HealthCheckResponse_SERVING
	if err != nil {
		st = healthpb.HealthCheckResponse_NOT_SERVING
	}
	m.status.SetServingStatus(DatabaseService, st)

	m.mu.Lock()
	changed := st != m.last
	m.last = st
	m.mu.Unlock()

	if changed {
		log := logging.GetLogger().WithField("service", DatabaseService)
		if err != nil {
			log.WithError(err).Warn("database unreachable")
		} else {
			log.Info("database reachable")
		}
	}
	return st
}
