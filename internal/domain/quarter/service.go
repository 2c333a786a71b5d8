package quarter

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"hrunity/internal/platform/storage"
)

type Service struct {
	table   *storage.Table[Quarter]
	latency time.Duration
	now     func() time.Time
}

func NewService(ns *storage.Namespace, latency time.Duration, seed bool) *Service {
	var opts []storage.TableOption[Quarter]
	if seed {
		opts = append(opts, storage.WithSeed(sampleQuarters))
	}
	return &Service{
		table:   storage.NewTable(ns, TableName, opts...),
		latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Table() *storage.Table[Quarter] {
	return s.table
}

// List returns every quarter, most recently created first.
func (s *Service) List(ctx context.Context) ([]Quarter, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return nil, err
	}
	rows := s.table.Rows(ctx)
	slices.SortStableFunc(rows, func(a, b Quarter) int {
		return b.CreatedAt.Compare(a.CreatedAt)
	})
	return rows, nil
}

func (s *Service) Get(ctx context.Context, id string) (Quarter, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Quarter{}, err
	}
	for _, q := range s.table.Rows(ctx) {
		if q.ID == id {
			return q, nil
		}
	}
	return Quarter{}, ErrQuarterNotFound
}

func (s *Service) Active(ctx context.Context) (Quarter, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Quarter{}, err
	}
	for _, q := range s.table.Rows(ctx) {
		if q.IsActive {
			return q, nil
		}
	}
	return Quarter{}, ErrNoActiveQuarter
}

// Activate makes id the only active quarter. An unknown id leaves the
// current active quarter untouched.
func (s *Service) Activate(ctx context.Context, id string) (Quarter, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Quarter{}, err
	}
	var active Quarter
	err := s.table.Mutate(ctx, func(rows []Quarter) ([]Quarter, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrQuarterNotFound
		}
		now := s.now()
		for i := range rows {
			wasActive := rows[i].IsActive
			rows[i].IsActive = i == idx
			if wasActive != rows[i].IsActive || i == idx {
				rows[i].UpdatedAt = now
			}
		}
		active = rows[idx]
		return rows, nil
	})
	if err != nil {
		return Quarter{}, err
	}
	slog.Info("quarter activated", "quarterId", active.ID)
	return active, nil
}

// EnsureYear adds any missing calendar quarter of year and reports how many
// were created. When no quarter is active afterwards the first quarter of
// year is activated.
func (s *Service) EnsureYear(ctx context.Context, year int) (int, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return 0, err
	}
	created := 0
	err := s.table.Mutate(ctx, func(rows []Quarter) ([]Quarter, error) {
		for _, q := range Calendar(year, s.now()) {
			if indexOf(rows, q.ID) < 0 {
				rows = append(rows, q)
				created++
			}
		}
		if !slices.ContainsFunc(rows, func(q Quarter) bool { return q.IsActive }) {
			rows[indexOf(rows, ID(year, 1))].IsActive = true
		}
		return rows, nil
	})
	if err != nil {
		return 0, err
	}
	if created > 0 {
		slog.Info("quarters created", "year", year, "count", created)
	}
	return created, nil
}

// Update changes the date range of a quarter.
func (s *Service) Update(ctx context.Context, id string, start, end time.Time) (Quarter, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Quarter{}, err
	}
	if end.Before(start) {
		return Quarter{}, ErrInvalidRange
	}
	var updated Quarter
	err := s.table.Mutate(ctx, func(rows []Quarter) ([]Quarter, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrQuarterNotFound
		}
		rows[idx].StartDate = start.UTC()
		rows[idx].EndDate = end.UTC()
		rows[idx].UpdatedAt = s.now()
		updated = rows[idx]
		return rows, nil
	})
	if err != nil {
		return Quarter{}, err
	}
	return updated, nil
}

func indexOf(rows []Quarter, id string) int {
	return slices.IndexFunc(rows, func(q Quarter) bool { return q.ID == id })
}
