package employee

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"hrunity/internal/platform/storage"
	"hrunity/internal/platform/validation"
)

type Service struct {
	table   *storage.Table[Employee]
	latency time.Duration
	now     func() time.Time
}

func NewService(ns *storage.Namespace, latency time.Duration, seed bool) *Service {
	opts := []storage.TableOption[Employee]{storage.WithShapeCheck[Employee](hasManagerFlag)}
	if seed {
		opts = append(opts, storage.WithSeed(SampleEmployees))
	}
	return &Service{
		table:   storage.NewTable(ns, TableName, opts...),
		latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Table() *storage.Table[Employee] {
	return s.table
}

func (s *Service) List(ctx context.Context) ([]Employee, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return nil, err
	}
	return s.table.Rows(ctx), nil
}

func (s *Service) Get(ctx context.Context, id string) (Employee, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Employee{}, err
	}
	for _, e := range s.table.Rows(ctx) {
		if e.EmployeeID == id {
			return e, nil
		}
	}
	return Employee{}, ErrEmployeeNotFound
}

func (s *Service) Create(ctx context.Context, e Employee) (Employee, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Employee{}, err
	}
	e.EmployeeID = strings.TrimSpace(e.EmployeeID)
	if e.EmployeeID == "" {
		e.EmployeeID = "EMP-" + ulid.Make().String()
	}
	e.Name = strings.TrimSpace(e.Name)
	if err := validation.Struct(e); err != nil {
		return Employee{}, err
	}
	now := s.now()
	e.CreatedAt = now
	e.UpdatedAt = now

	err := s.table.Mutate(ctx, func(rows []Employee) ([]Employee, error) {
		if indexOf(rows, e.EmployeeID) >= 0 {
			return nil, ErrDuplicateEmployee
		}
		return append(rows, e), nil
	})
	if err != nil {
		return Employee{}, err
	}
	return e, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Employee, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Employee{}, err
	}
	var updated Employee
	err := s.table.Mutate(ctx, func(rows []Employee) ([]Employee, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrEmployeeNotFound
		}
		next := rows[idx]
		patch.apply(&next)
		next.Name = strings.TrimSpace(next.Name)
		if err := validation.Struct(next); err != nil {
			return nil, err
		}
		next.UpdatedAt = s.now()
		rows[idx] = next
		updated = next
		return rows, nil
	})
	if err != nil {
		return Employee{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return err
	}
	return s.table.Mutate(ctx, func(rows []Employee) ([]Employee, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrEmployeeNotFound
		}
		return slices.Delete(rows, idx, idx+1), nil
	})
}

// Search matches term case-insensitively against name, role, department
// and id. An empty term returns every employee.
func (s *Service) Search(ctx context.Context, term string) ([]Employee, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return rows, nil
	}
	out := make([]Employee, 0, len(rows))
	for _, e := range rows {
		for _, field := range []string{e.Name, e.Role, e.Department, e.EmployeeID} {
			if strings.Contains(strings.ToLower(field), term) {
				out = append(out, e)
				break
			}
		}
	}
	return out, nil
}

func (s *Service) Managers(ctx context.Context) ([]Employee, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Employee, 0, len(rows))
	for _, e := range rows {
		if e.IsManager {
			out = append(out, e)
		}
	}
	return out, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	rows, err := s.List(ctx)
	if err != nil {
		return Stats{}, err
	}
	return computeStats(rows), nil
}

func computeStats(rows []Employee) Stats {
	stats := Stats{Total: len(rows)}
	if len(rows) == 0 {
		return stats
	}
	departments := map[string]struct{}{}
	var performance, compensation float64
	for _, e := range rows {
		if e.IsManager {
			stats.Managers++
		}
		if e.Department != "" {
			departments[e.Department] = struct{}{}
		}
		performance += e.PerformanceRating
		compensation += e.Compensation
	}
	stats.Departments = len(departments)
	stats.AveragePerformance = performance / float64(len(rows))
	stats.AverageCompensation = compensation / float64(len(rows))
	return stats
}

func indexOf(rows []Employee, id string) int {
	return slices.IndexFunc(rows, func(e Employee) bool { return e.EmployeeID == id })
}
