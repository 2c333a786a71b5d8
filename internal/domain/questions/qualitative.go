package questions

import (
	"context"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"hrunity/internal/platform/storage"
	"hrunity/internal/platform/validation"
)

// QualitativeService manages the free-text question catalog.
type QualitativeService struct {
	catalog[Qualitative]
}

func NewQualitativeService(ns *storage.Namespace, latency time.Duration, seed bool) *QualitativeService {
	var seedFn func() []Qualitative
	if seed {
		seedFn = sampleQualitative
	}
	return &QualitativeService{newCatalog(ns, QualitativeTable, latency, seedFn,
		func(q Qualitative) string { return q.ID },
		func(q Qualitative) time.Time { return q.CreatedAt },
	)}
}

func (s *QualitativeService) Table() *storage.Table[Qualitative] {
	return s.table
}

func (s *QualitativeService) List(ctx context.Context) ([]Qualitative, error) {
	return s.list(ctx)
}

func (s *QualitativeService) Get(ctx context.Context, id string) (Qualitative, error) {
	return s.get(ctx, id)
}

func (s *QualitativeService) Create(ctx context.Context, question string) (Qualitative, error) {
	now := s.now()
	q := Qualitative{ID: ulid.Make().String(), Question: strings.TrimSpace(question), CreatedAt: now, UpdatedAt: now}
	if err := validation.Struct(q); err != nil {
		return Qualitative{}, err
	}
	if err := s.insert(ctx, q); err != nil {
		return Qualitative{}, err
	}
	return q, nil
}

func (s *QualitativeService) Update(ctx context.Context, id, question string) (Qualitative, error) {
	return s.update(ctx, id, func(q *Qualitative) error {
		next := *q
		next.Question = strings.TrimSpace(question)
		if err := validation.Struct(next); err != nil {
			return err
		}
		next.UpdatedAt = s.now()
		*q = next
		return nil
	})
}

func (s *QualitativeService) Delete(ctx context.Context, id string) error {
	return s.delete(ctx, id)
}

func (s *QualitativeService) Search(ctx context.Context, term string) ([]Qualitative, error) {
	return s.search(ctx, term, func(q Qualitative) []string { return []string{q.Question} })
}

func (s *QualitativeService) Stats(ctx context.Context) (QualitativeStats, error) {
	rows, err := s.list(ctx)
	if err != nil {
		return QualitativeStats{}, err
	}
	return QualitativeStats{Total: len(rows)}, nil
}
