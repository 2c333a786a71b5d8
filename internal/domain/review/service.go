// Package review implements the quarterly review workflow on top of the
// performance records: self-assessment drafts and submission, feedback
// requests, generated feedback and the feedback summary.
package review

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"hrunity/internal/domain/employee"
	"hrunity/internal/domain/performance"
	"hrunity/internal/domain/quarter"
	"hrunity/internal/domain/questions"
	"hrunity/internal/platform/email"
	"hrunity/internal/platform/feedbackgen"
	"hrunity/internal/platform/jobs"
)

type EmployeeDirectory interface {
	Get(ctx context.Context, id string) (employee.Employee, error)
}

type QuarterCatalog interface {
	Get(ctx context.Context, id string) (quarter.Quarter, error)
}

type QualitativeCatalog interface {
	List(ctx context.Context) ([]questions.Qualitative, error)
}

type QuantitativeCatalog interface {
	List(ctx context.Context) ([]questions.Quantitative, error)
}

type RecordStore interface {
	RecordsFor(ctx context.Context, employeeID, quarterID string) ([]performance.Record, error)
	RecordByType(ctx context.Context, employeeID, quarterID string, t performance.Type) (performance.Record, bool, error)
	Upsert(ctx context.Context, employeeID, quarterID string, t performance.Type, patch performance.Patch) (performance.Record, error)
}

type Debouncer interface {
	Debounce(jobType, key string, quiet time.Duration, run jobs.RunFunc)
}

type Recorder interface {
	RecordEmail(provider string, ok bool)
	RecordGeneration(provider string, ok bool)
}

type Deps struct {
	Employees    EmployeeDirectory
	Quarters     QuarterCatalog
	Qualitative  QualitativeCatalog
	Quantitative QuantitativeCatalog
	Records      RecordStore
	Mailer       email.Provider
	Generator    feedbackgen.Generator
	Jobs         Debouncer
	Recorder     Recorder
}

type Options struct {
	EmailFrom       string
	EmailFromName   string
	FeedbackBaseURL string
	AutosaveQuiet   time.Duration
}

type Service struct {
	deps Deps
	opts Options
	now  func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewService(deps Deps, opts Options) *Service {
	return &Service{
		deps:  deps,
		opts:  opts,
		now:   func() time.Time { return time.Now().UTC() },
		locks: map[string]*sync.Mutex{},
	}
}

// lock serializes read-modify-write sequences on the records of one
// employee in one quarter.
func (s *Service) lock(employeeID, quarterID string) func() {
	key := employeeID + "|" + quarterID
	s.mu.Lock()
	m, ok := s.locks[key]
	if !ok {
		m = &sync.Mutex{}
		s.locks[key] = m
	}
	s.mu.Unlock()
	m.Lock()
	return m.Unlock
}

type subject struct {
	employee employee.Employee
	quarter  quarter.Quarter
}

func (s *Service) resolve(ctx context.Context, employeeID, quarterID string) (subject, error) {
	emp, err := s.deps.Employees.Get(ctx, employeeID)
	if err != nil {
		return subject{}, err
	}
	q, err := s.deps.Quarters.Get(ctx, quarterID)
	if err != nil {
		return subject{}, err
	}
	return subject{employee: emp, quarter: q}, nil
}

type catalog struct {
	qualitative  []questions.Qualitative
	quantitative []questions.Quantitative
}

func (s *Service) loadCatalog(ctx context.Context) (catalog, error) {
	ql, err := s.deps.Qualitative.List(ctx)
	if err != nil {
		return catalog{}, err
	}
	qn, err := s.deps.Quantitative.List(ctx)
	if err != nil {
		return catalog{}, err
	}
	return catalog{qualitative: ql, quantitative: qn}, nil
}

func (s *Service) recordEmail(provider string, ok bool) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordEmail(provider, ok)
	}
}

func (s *Service) recordGeneration(provider string, ok bool) {
	if s.deps.Recorder != nil {
		s.deps.Recorder.RecordGeneration(provider, ok)
	}
}

func decodePayload[T any](rec performance.Record) (T, error) {
	var out T
	if len(rec.Data) == 0 || string(rec.Data) == "null" {
		return out, nil
	}
	if err := json.Unmarshal(rec.Data, &out); err != nil {
		return out, fmt.Errorf("decode %s payload: %w", rec.Type, err)
	}
	return out, nil
}

func encodePayload(v any) (json.RawMessage, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return raw, nil
}

func statusPtr(s performance.Status) *performance.Status {
	return &s
}
