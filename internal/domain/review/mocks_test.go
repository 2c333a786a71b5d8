package review

import (
	"context"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"hrunity/internal/platform/email"
	"hrunity/internal/platform/feedbackgen"
	"hrunity/internal/platform/jobs"
)

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Name() string {
	return "mock"
}

func (m *mockMailer) Send(ctx context.Context, msg email.Message) (email.Result, error) {
	args := m.Called(ctx, msg)
	if res, ok := args.Get(0).(email.Result); ok {
		return res, args.Error(1)
	}
	return email.Result{}, args.Error(1)
}

type mockGenerator struct {
	mock.Mock
}

func (m *mockGenerator) Name() string {
	return "mockgen"
}

func (m *mockGenerator) Generate(ctx context.Context, req feedbackgen.Request) (feedbackgen.Result, error) {
	args := m.Called(ctx, req)
	if res, ok := args.Get(0).(feedbackgen.Result); ok {
		return res, args.Error(1)
	}
	return feedbackgen.Result{}, args.Error(1)
}

// captureDebouncer keeps the latest run per key so tests can fire it.
type captureDebouncer struct {
	mu    sync.Mutex
	runs  map[string]jobs.RunFunc
	calls int
	quiet time.Duration
}

func (d *captureDebouncer) Debounce(jobType, key string, quiet time.Duration, run jobs.RunFunc) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.runs == nil {
		d.runs = map[string]jobs.RunFunc{}
	}
	d.calls++
	d.quiet = quiet
	d.runs[jobType+":"+key] = run
}

func (d *captureDebouncer) fire(ctx context.Context) error {
	d.mu.Lock()
	runs := d.runs
	d.runs = nil
	d.mu.Unlock()
	for _, run := range runs {
		if err := run(ctx); err != nil {
			return err
		}
	}
	return nil
}

type countingRecorder struct {
	mu          sync.Mutex
	emails      map[bool]int
	generations map[bool]int
}

func (r *countingRecorder) RecordEmail(_ string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.emails == nil {
		r.emails = map[bool]int{}
	}
	r.emails[ok]++
}

func (r *countingRecorder) RecordGeneration(_ string, ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.generations == nil {
		r.generations = map[bool]int{}
	}
	r.generations[ok]++
}
