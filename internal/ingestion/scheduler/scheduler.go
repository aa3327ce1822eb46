package scheduler

import (
	"context"
	"log"
	"sync"
	"time"

	ingestiondomain "timesheetpro-backend/internal/ingestion/domain"
	"timesheetpro-backend/internal/ingestion/usecase"
	integrationdomain "timesheetpro-backend/internal/integration/domain"
	integrationrepo "timesheetpro-backend/internal/integration/repository"
)

// JobStatus describes one scheduled integration for the status endpoint.
type JobStatus struct {
	Type     string     `json:"type"`
	LastSync *time.Time `json:"last_sync,omitempty"`
	NextRun  time.Time  `json:"next_run"`
}

// Status is the scheduler snapshot returned to admins.
type Status struct {
	Running bool        `json:"running"`
	Tick    string      `json:"tick"`
	Jobs    []JobStatus `json:"jobs"`
}

// Scheduler drives periodic ingestion. One master tick checks every active
// configuration against its own interval, so each integration keeps its own
// cadence without one goroutine per config.
type Scheduler struct {
	configs  integrationrepo.ConfigRepository
	engines  map[integrationdomain.IntegrationType]usecase.Engine
	tick     time.Duration
	stopChan chan struct{}
	now      func() time.Time

	mu      sync.Mutex
	running bool
}

// NewScheduler creates a new scheduler over the given engines
func NewScheduler(configs integrationrepo.ConfigRepository, engines []usecase.Engine, tick time.Duration) *Scheduler {
	byKind := make(map[integrationdomain.IntegrationType]usecase.Engine, len(engines))
	for _, e := range engines {
		byKind[e.Kind()] = e
	}
	if tick <= 0 {
		tick = time.Minute
	}
	return &Scheduler{
		configs:  configs,
		engines:  byKind,
		tick:     tick,
		stopChan: make(chan struct{}),
		now:      time.Now,
	}
}

// Start begins the scheduler loop
func (s *Scheduler) Start() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return
	}
	s.running = true
	// Stop closes the channel, so a restart needs a fresh one.
	s.stopChan = make(chan struct{})
	stop := s.stopChan
	s.mu.Unlock()

	log.Printf("[Scheduler] Starting ingestion scheduler (tick: %s)", s.tick)

	go func() {
		// Run immediately on start
		s.checkAndRun()

		ticker := time.NewTicker(s.tick)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.checkAndRun()
			case <-stop:
				log.Println("[Scheduler] Scheduler stopped")
				return
			}
		}
	}()
}

// Stop gracefully stops the scheduler
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return
	}
	s.running = false
	close(s.stopChan)
}

// RunNow runs one integration immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, kind integrationdomain.IntegrationType) *ingestiondomain.SyncResult {
	engine, ok := s.engines[kind]
	if !ok {
		return &ingestiondomain.SyncResult{Success: false, Message: "unknown integration type: " + string(kind)}
	}
	return engine.Run(ctx)
}

// Status reports the scheduler state and the next due time per active config.
func (s *Scheduler) Status() (*Status, error) {
	s.mu.Lock()
	running := s.running
	s.mu.Unlock()

	status := &Status{Running: running, Tick: s.tick.String()}

	configs, err := s.configs.ListActive()
	if err != nil {
		return nil, err
	}

	now := s.now()
	for _, cfg := range configs {
		next := now
		if cfg.LastSync != nil {
			next = cfg.LastSync.Add(time.Duration(cfg.SyncIntervalMinutes) * time.Minute)
		}
		status.Jobs = append(status.Jobs, JobStatus{
			Type:     string(cfg.Type),
			LastSync: cfg.LastSync,
			NextRun:  next,
		})
	}

	return status, nil
}

// checkAndRun runs every active configuration that is due.
func (s *Scheduler) checkAndRun() {
	configs, err := s.configs.ListActive()
	if err != nil {
		log.Printf("[Scheduler] Failed to list active integrations: %v", err)
		return
	}

	now := s.now()
	for _, cfg := range configs {
		if !isDue(&cfg, now) {
			continue
		}
		engine, ok := s.engines[cfg.Type]
		if !ok {
			continue
		}

		log.Printf("[Scheduler] Running %s sync", cfg.Type)
		result := engine.Run(context.Background())
		if !result.Success {
			log.Printf("[Scheduler] %s sync failed: %s", cfg.Type, result.Message)
			continue
		}
		log.Printf("[Scheduler] %s sync: %s", cfg.Type, result.Message)
	}
}

// isDue applies the per-config interval. A config that never synced is due
// immediately; its engine bootstraps the watermark on first run.
func isDue(cfg *integrationdomain.IntegrationConfig, now time.Time) bool {
	if cfg.LastSync == nil {
		return true
	}
	interval := time.Duration(cfg.SyncIntervalMinutes) * time.Minute
	return !now.Before(cfg.LastSync.Add(interval))
}
