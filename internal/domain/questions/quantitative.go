package questions

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"hrunity/internal/platform/storage"
	"hrunity/internal/platform/validation"
)

// QuantitativeService manages the scored question catalog.
type QuantitativeService struct {
	catalog[Quantitative]
}

func NewQuantitativeService(ns *storage.Namespace, latency time.Duration, seed bool) *QuantitativeService {
	var seedFn func() []Quantitative
	if seed {
		seedFn = sampleQuantitative
	}
	return &QuantitativeService{newCatalog(ns, QuantitativeTable, latency, seedFn,
		func(q Quantitative) string { return q.ID },
		func(q Quantitative) time.Time { return q.CreatedAt },
	)}
}

func (s *QuantitativeService) Table() *storage.Table[Quantitative] {
	return s.table
}

func (s *QuantitativeService) List(ctx context.Context) ([]Quantitative, error) {
	return s.list(ctx)
}

func (s *QuantitativeService) Get(ctx context.Context, id string) (Quantitative, error) {
	return s.get(ctx, id)
}

func (s *QuantitativeService) Create(ctx context.Context, question string, scale Scale) (Quantitative, error) {
	now := s.now()
	q := Quantitative{ID: ulid.Make().String(), Question: strings.TrimSpace(question), Scale: scale, CreatedAt: now, UpdatedAt: now}
	if err := validation.Struct(q); err != nil {
		return Quantitative{}, err
	}
	if err := s.insert(ctx, q); err != nil {
		return Quantitative{}, err
	}
	return q, nil
}

// Update replaces the question text and scale. An empty scale keeps the
// current one.
func (s *QuantitativeService) Update(ctx context.Context, id, question string, scale Scale) (Quantitative, error) {
	return s.update(ctx, id, func(q *Quantitative) error {
		next := *q
		next.Question = strings.TrimSpace(question)
		if scale != "" {
			next.Scale = scale
		}
		if err := validation.Struct(next); err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		*q = next
		return nil
	})
}

func (s *QuantitativeService) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *QuantitativeService) Search(ctx context.Context, term string) ([]Quantitative, error) {
	return s.search(ctx, term, func(q Quantitative) []string { return []string{q.Question, string(q.Scale)} })
}

func (s *QuantitativeService) ByScale(ctx context.Context, scale Scale) ([]Quantitative, error) {
	if !slices.Contains(Scales, scale) {
		return nil, ErrInvalidScale
	}
	rows, err := s.list(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Quantitative, 0, len(rows))
	for _, q := range rows {
		if q.Scale == scale {
			out = append(out, q)
		}
	}
	return out, nil
}

func (s *QuantitativeService) Stats(ctx context.Context) (QuantitativeStats, error) {
	rows, err := s.list(ctx)
	if err != nil {
		return QuantitativeStats{}, err
	}
	stats := QuantitativeStats{Total: len(rows), ScaleBreakdown: map[Scale]int{}}
	for _, q := range rows {
		stats.ScaleBreakdown[q.Scale]++
	}
	return stats, nil
}
