package jobs

import (
	"context"
	"log/slog"
	"sync"
	"time"
)

const (
	JobAutosave        = "autosave"
	JobQuarterRollover = "quarter_rollover"
)

type Recorder interface {
	RecordJob(jobType string, ok bool)
}

type RunFunc func(context.Context) error

type Service struct {
	queue    chan job
	recorder Recorder

	mu      sync.Mutex
	pending map[string]*pendingJob
}

type job struct {
	Type string
	Key  string
	Run  RunFunc
}

type pendingJob struct {
	timer *time.Timer
	job   job
}

func New(recorder Recorder) *Service {
	return &Service{
		queue:    make(chan job, 128),
		recorder: recorder,
		pending:  map[string]*pendingJob{},
	}
}

func (s *Service) Start(ctx context.Context) {
	go s.worker(ctx)
}

func (s *Service) Enqueue(jobType, key string, run RunFunc) {
	select {
	case s.queue <- job{Type: jobType, Key: key, Run: run}:
	default:
		slog.Warn("job queue full", "jobType", jobType, "key", key)
		s.record(jobType, false)
	}
}

func (s *Service) RunNow(ctx context.Context, jobType, key string, run RunFunc) error {
	return s.runJob(ctx, job{Type: jobType, Key: key, Run: run})
}

// Debounce enqueues run once no further call with the same key has arrived
// for the quiet period. Each call replaces the pending run for that key.
func (s *Service) Debounce(jobType, key string, quiet time.Duration, run RunFunc) {
	id := jobType + ":" + key
	j := job{Type: jobType, Key: key, Run: run}

	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.pending[id]; ok {
		existing.timer.Stop()
	}
	entry := &pendingJob{job: j}
	entry.timer = time.AfterFunc(quiet, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		// Replaced by a later call or already taken by Flush.
		if current, ok := s.pending[id]; !ok || current != entry {
			return
		}
		delete(s.pending, id)
		s.Enqueue(j.Type, j.Key, j.Run)
	})
	s.pending[id] = entry
}

// Pending reports how many debounced runs are still waiting for their quiet
// period to elapse.
func (s *Service) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.pending)
}

// Flush enqueues every debounced run immediately. A timer that fired but
// has not yet claimed its entry finds it gone and does nothing.
func (s *Service) Flush() {
	for _, j := range s.takePending() {
		s.Enqueue(j.Type, j.Key, j.Run)
	}
}

func (s *Service) takePending() []job {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.takePendingLocked()
}

func (s *Service) takePendingLocked() []job {
	due := make([]job, 0, len(s.pending))
	for id, entry := range s.pending {
		entry.timer.Stop()
		due = append(due, entry.job)
		delete(s.pending, id)
	}
	return due
}

// Shutdown flushes debounced runs and executes whatever is queued on the
// calling goroutine. Call it after the worker context is cancelled.
func (s *Service) Shutdown(ctx context.Context) {
	s.Flush()
	for {
		select {
		case j := <-s.queue:
			if err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "key", j.Key, "err", err)
			}
		default:
			return
		}
	}
}

// Schedule enqueues run every interval until ctx is done.
func (s *Service) Schedule(ctx context.Context, jobType string, interval time.Duration, run RunFunc) {
	if interval <= 0 {
		return
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Enqueue(jobType, "", run)
			}
		}
	}()
}

func (s *Service) worker(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case j := <-s.queue:
			if err := s.runJob(ctx, j); err != nil {
				slog.Warn("job run failed", "jobType", j.Type, "key", j.Key, "err", err)
			}
		}
	}
}

func (s *Service) runJob(ctx context.Context, j job) error {
	start := time.Now()
	err := j.Run(ctx)
	s.record(j.Type, err == nil)
	slog.Debug("job finished", "jobType", j.Type, "key", j.Key, "durationMs", time.Since(start).Milliseconds(), "ok", err == nil)
	return err
}

func (s *Service) record(jobType string, ok bool) {
	if s.recorder != nil {
		s.recorder.RecordJob(jobType, ok)
	}
}
