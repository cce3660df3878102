package monitor

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Pinger is satisfied by *pgxpool.Pool and redis.Pinger.
type Pinger interface {
	Ping(ctx context.Context) error
}

// QueueSizer is satisfied by *buffer.Store.
type QueueSizer interface {
	Size() (int, error)
}

// Monitor polls Postgres, Redis and the offline buffer on an interval.
type Monitor struct {
	pg     Pinger
	redis  Pinger
	buffer QueueSizer

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(pg, redis Pinger, buf QueueSizer, interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		pg:       pg,
		redis:    redis,
		buffer:   buf,
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
	}
}

// Start runs a first check synchronously, then polls in the background.
func (m *Monitor) Start() {
	m.Refresh()
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

// IsOnline reports whether Postgres answered on the last check. Buffered writes replay only then.
func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.PostgreSQL
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Refresh()
		case <-m.stopCh:
			return
		}
	}
}

// Refresh checks every dependency once and stores the result.
func (m *Monitor) Refresh() Status {
	bufferOK, bufferSize := m.checkBuffer()
	status := Status{
		PostgreSQL: m.ping(m.pg, 3*time.Second),
		Redis:      m.ping(m.redis, 2*time.Second),
		Buffer:     bufferOK,
		BufferSize: bufferSize,
		LastCheck:  time.Now(),
	}

	m.mu.Lock()
	prev := m.status
	m.status = status
	m.mu.Unlock()

	if !prev.LastCheck.IsZero() && prev.PostgreSQL != status.PostgreSQL {
		m.logger.Warn("postgres connectivity changed", zap.Bool("online", status.PostgreSQL))
	}
	return status
}

func (m *Monitor) ping(p Pinger, timeout time.Duration) bool {
	if p == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return p.Ping(ctx) == nil
}

func (m *Monitor) checkBuffer() (bool, int) {
	if m.buffer == nil {
		return false, 0
	}
	size, err := m.buffer.Size()
	if err != nil {
		m.logger.Warn("buffer size check failed", zap.Error(err))
		return false, size
	}
	return true, size
}
