package federation

import (
	"context"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/rs/zerolog"
)

// ShardStatus is the last observed health of one shard.
type ShardStatus struct {
	Healthy   bool      `json:"healthy"`
	LastCheck time.Time `json:"last_check"`
	Error     string    `json:"error,omitempty"`
}

// Monitor pings every shard on an interval and records the result for the
// health endpoint. Federated reads never consult it, since availability is
// discovered per request. It exists so operators can see a region outage
// without waiting for a failed request.
type Monitor struct {
	reg       *Registry
	log       zerolog.Logger
	pingTO    time.Duration
	scheduler *gocron.Scheduler

	mu     sync.RWMutex
	status map[string]ShardStatus
}

func NewMonitor(reg *Registry, log zerolog.Logger, pingTimeout time.Duration) *Monitor {
	return &Monitor{
		reg:    reg,
		log:    log,
		pingTO: pingTimeout,
		status: make(map[string]ShardStatus),
	}
}

// Start polls immediately and then on every interval tick.
func (m *Monitor) Start(interval time.Duration) error {
	m.scheduler = gocron.NewScheduler(time.UTC)
	if _, err := m.scheduler.Every(interval).StartImmediately().Do(m.poll); err != nil {
		return err
	}
	m.scheduler.StartAsync()
	return nil
}

func (m *Monitor) Stop() {
	if m.scheduler != nil {
		m.scheduler.Stop()
	}
}

func (m *Monitor) poll() {
	for _, shard := range m.reg.Shards() {
		st := ShardStatus{LastCheck: time.Now().UTC()}
		if shard.Pool == nil {
			st.Error = "no connection pool"
		} else {
			ctx, cancel := context.WithTimeout(context.Background(), m.pingTO)
			if err := shard.Pool.Ping(ctx); err != nil {
				st.Error = err.Error()
				m.log.Warn().Str("shard", shard.Name).Err(err).Msg("shard unreachable")
			} else {
				st.Healthy = true
			}
			cancel()
		}
		m.mu.Lock()
		m.status[shard.Name] = st
		m.mu.Unlock()
	}
}

// Status returns a copy of the last observed status per shard.
func (m *Monitor) Status() map[string]ShardStatus {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]ShardStatus, len(m.status))
	for k, v := range m.status {
		out[k] = v
	}
	return out
}
