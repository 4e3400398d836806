package monitor

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Probe reports whether a dependency is reachable.
type Probe func(ctx context.Context) error

type probe struct {
	name    string
	check   Probe
	timeout time.Duration
}

// Monitor periodically checks the task store and the session store.
type Monitor struct {
	probes []probe

	status   Status
	mu       sync.RWMutex
	interval time.Duration
	stopCh   chan struct{}
	stopOnce sync.Once
	logger   *zap.Logger
}

func New(interval time.Duration, logger *zap.Logger) *Monitor {
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Monitor{
		interval: interval,
		stopCh:   make(chan struct{}),
		logger:   logger,
		status:   Status{Components: map[string]ComponentStatus{}},
	}
}

// Add registers a named probe. It must be called before Start.
func (m *Monitor) Add(name string, check Probe, timeout time.Duration) {
	if check == nil {
		return
	}
	if timeout <= 0 {
		timeout = 3 * time.Second
	}
	m.probes = append(m.probes, probe{name: name, check: check, timeout: timeout})
}

// Names returns the registered probe names in sorted order.
func (m *Monitor) Names() []string {
	names := make([]string, 0, len(m.probes))
	for _, p := range m.probes {
		names = append(names, p.name)
	}
	sort.Strings(names)
	return names
}

func (m *Monitor) Start() {
	go m.loop()
}

func (m *Monitor) Stop() {
	m.stopOnce.Do(func() { close(m.stopCh) })
}

func (m *Monitor) IsOnline() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.Online
}

func (m *Monitor) GetStatus() Status {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.status.clone()
}

func (m *Monitor) loop() {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.Refresh(context.Background())
	for {
		select {
		case <-ticker.C:
			m.Refresh(context.Background())
		case <-m.stopCh:
			return
		}
	}
}

// Refresh runs every probe once, concurrently, and stores the snapshot.
func (m *Monitor) Refresh(ctx context.Context) Status {
	status := Status{
		Components: make(map[string]ComponentStatus, len(m.probes)),
		Online:     true,
		LastCheck:  time.Now(),
	}

	var mu sync.Mutex
	var g errgroup.Group
	for _, p := range m.probes {
		p := p
		g.Go(func() error {
			probeCtx, cancel := context.WithTimeout(ctx, p.timeout)
			err := p.check(probeCtx)
			cancel()

			component := ComponentStatus{Healthy: err == nil}
			if err != nil {
				component.Error = err.Error()
				m.logger.Warn("dependency check failed", zap.String("component", p.name), zap.Error(err))
			}

			mu.Lock()
			status.Components[p.name] = component
			if err != nil {
				status.Online = false
			}
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	m.mu.Lock()
	m.status = status
	m.mu.Unlock()
	return status.clone()
}
