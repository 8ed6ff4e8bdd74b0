package cron

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrJobNotFound is returned for names that were never registered.
var ErrJobNotFound = errors.New("job not found")

type Status string

const (
	StatusIdle    Status = "idle"
	StatusRunning Status = "running"
	StatusOK      Status = "ok"
	StatusFailed  Status = "failed"
)

// Job is a task repeated every Interval.
type Job struct {
	Name        string
	Description string
	Interval    time.Duration
	Fn          func(ctx context.Context) error
}

type jobState struct {
	job     Job
	mu      sync.Mutex
	status  Status
	message string
	lastRun *time.Time
	nextRun time.Time
}

// Snapshot is the reportable state of a job.
type Snapshot struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	Message     string     `json:"message,omitempty"`
	LastRunAt   *time.Time `json:"lastRunAt,omitempty"`
	NextRunAt   time.Time  `json:"nextRunAt"`
}

type Scheduler struct {
	mu     sync.RWMutex
	jobs   map[string]*jobState
	logger *zap.Logger
}

func New(logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Scheduler{jobs: make(map[string]*jobState), logger: logger.Named("Cron")}
}

// Register adds job. Registering a name twice replaces the earlier job; it must happen
// before Start.
func (s *Scheduler) Register(job Job) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.jobs[job.Name] = &jobState{job: job, status: StatusIdle, nextRun: time.Now().Add(job.Interval)}
}

// Start runs every job on its interval until ctx is done.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, js := range s.jobs {
		go s.loop(ctx, js)
	}
}

func (s *Scheduler) loop(ctx context.Context, js *jobState) {
	ticker := time.NewTicker(js.job.Interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.execute(ctx, js)
		}
	}
}

func (s *Scheduler) execute(ctx context.Context, js *jobState) error {
	js.mu.Lock()
	if js.status == StatusRunning {
		js.mu.Unlock()
		return nil
	}
	js.status = StatusRunning
	js.mu.Unlock()

	started := time.Now()
	err := js.job.Fn(ctx)

	js.mu.Lock()
	js.lastRun = &started
	js.nextRun = time.Now().Add(js.job.Interval)
	if err != nil {
		js.status, js.message = StatusFailed, err.Error()
	} else {
		js.status, js.message = StatusOK, ""
	}
	js.mu.Unlock()

	if err != nil {
		s.logger.Warn("job failed", zap.String("job", js.job.Name), zap.Error(err))
	} else {
		s.logger.Debug("job done", zap.String("job", js.job.Name), zap.Duration("took", time.Since(started)))
	}
	return err
}

func (s *Scheduler) lookup(name string) (*jobState, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	js, ok := s.jobs[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrJobNotFound, name)
	}
	return js, nil
}

// Trigger starts a run of name in the background.
func (s *Scheduler) Trigger(name string) error {
	js, err := s.lookup(name)
	if err != nil {
		return err
	}
	go func() { _ = s.execute(context.Background(), js) }()
	return nil
}

// RunNow runs name synchronously and returns its error.
func (s *Scheduler) RunNow(ctx context.Context, name string) error {
	js, err := s.lookup(name)
	if err != nil {
		return err
	}
	return s.execute(ctx, js)
}

// List returns every job sorted by name.
func (s *Scheduler) List() []Snapshot {
	s.mu.RLock()
	items := make([]Snapshot, 0, len(s.jobs))
	for _, js := range s.jobs {
		js.mu.Lock()
		items = append(items, Snapshot{
			Name:        js.job.Name,
			Description: js.job.Description,
			Status:      js.status,
			Message:     js.message,
			LastRunAt:   js.lastRun,
			NextRunAt:   js.nextRun,
		})
		js.mu.Unlock()
	}
	s.mu.RUnlock()
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}
