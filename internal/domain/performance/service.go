// Package performance stores review activity records and enforces one
// record per employee, quarter and activity type.
package performance

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/oklog/ulid/v2"

	"hrunity/internal/platform/storage"
)

type Service struct {
	table   *storage.Table[Record]
	latency time.Duration
	now     func() time.Time
}

func NewService(ns *storage.Namespace, latency time.Duration) *Service {
	return &Service{
		table:   storage.NewTable[Record](ns, TableName),
		latency: latency,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) Table() *storage.Table[Record] {
	return s.table
}

// RecordsFor returns the records of an employee in a quarter in storage
// order.
func (s *Service) RecordsFor(ctx context.Context, employeeID, quarterID string) ([]Record, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return nil, err
	}
	rows := s.table.Rows(ctx)
	out := make([]Record, 0, 3)
	for _, r := range rows {
		if r.EmployeeID == employeeID && r.QuarterID == quarterID {
			out = append(out, r)
		}
	}
	return out, nil
}

// RecordByType returns the record of the given type, if any. A missing
// record is not an error.
func (s *Service) RecordByType(ctx context.Context, employeeID, quarterID string, t Type) (Record, bool, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Record{}, false, err
	}
	rows := s.table.Rows(ctx)
	if idx := indexOfKey(rows, employeeID, quarterID, t); idx >= 0 {
		return rows[idx], true, nil
	}
	return Record{}, false, nil
}

func (s *Service) Get(ctx context.Context, id string) (Record, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Record{}, err
	}
	rows := s.table.Rows(ctx)
	if idx := indexOf(rows, id); idx >= 0 {
		return rows[idx], nil
	}
	return Record{}, ErrRecordNotFound
}

// Create stores a new record with a fresh id. Status defaults to pending.
func (s *Service) Create(ctx context.Context, r Record) (Record, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Record{}, err
	}
	if err := checkNew(&r); err != nil {
		return Record{}, err
	}
	now := s.now()
	r.ID = ulid.Make().String()
	r.CreatedAt = now
	r.UpdatedAt = now

	err := s.table.Mutate(ctx, func(rows []Record) ([]Record, error) {
		if indexOfKey(rows, r.EmployeeID, r.QuarterID, r.Type) >= 0 {
			return nil, ErrDuplicateRecord
		}
		return append(rows, r), nil
	})
	if err != nil {
		return Record{}, err
	}
	return r, nil
}

// Upsert creates the record for (employee, quarter, type) or applies patch
// to the existing one, as a single step under the table lock.
func (s *Service) Upsert(ctx context.Context, employeeID, quarterID string, t Type, patch Patch) (Record, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Record{}, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Record{}, ErrInvalidStatus
	}
	var result Record
	err := s.table.Mutate(ctx, func(rows []Record) ([]Record, error) {
		now := s.now()
		if idx := indexOfKey(rows, employeeID, quarterID, t); idx >= 0 {
			applyPatch(&rows[idx], patch, now)
			result = rows[idx]
			return rows, nil
		}
		r := Record{EmployeeID: employeeID, QuarterID: quarterID, Type: t, Data: patch.Data}
		if patch.Status != nil {
			r.Status = *patch.Status
		}
		if err := checkNew(&r); err != nil {
			return nil, err
		}
		r.ID = ulid.Make().String()
		r.CreatedAt = now
		r.UpdatedAt = now
		result = r
		return append(rows, r), nil
	})
	if err != nil {
		return Record{}, err
	}
	return result, nil
}

func (s *Service) Update(ctx context.Context, id string, patch Patch) (Record, error) {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return Record{}, err
	}
	if patch.Status != nil && !patch.Status.Valid() {
		return Record{}, ErrInvalidStatus
	}
	var updated Record
	err := s.table.Mutate(ctx, func(rows []Record) ([]Record, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrRecordNotFound
		}
		applyPatch(&rows[idx], patch, s.now())
		updated = rows[idx]
		return rows, nil
	})
	if err != nil {
		return Record{}, err
	}
	return updated, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if err := storage.Pause(ctx, s.latency); err != nil {
		return err
	}
	return s.table.Mutate(ctx, func(rows []Record) ([]Record, error) {
		idx := indexOf(rows, id)
		if idx < 0 {
			return nil, ErrRecordNotFound
		}
		return slices.Delete(rows, idx, idx+1), nil
	})
}

func (s *Service) Stats(ctx context.Context, employeeID, quarterID string) (Stats, error) {
	records, err := s.RecordsFor(ctx, employeeID, quarterID)
	if err != nil {
		return Stats{}, err
	}
	return ComputeStats(records), nil
}

func checkNew(r *Record) error {
	if r.EmployeeID == "" || r.QuarterID == "" {
		return ErrMissingOwner
	}
	if !r.Type.Valid() {
		return ErrInvalidType
	}
	if r.Status == "" {
		r.Status = StatusPending
	}
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}
	if len(r.Data) == 0 {
		r.Data = json.RawMessage("null")
	}
	return nil
}

func applyPatch(r *Record, patch Patch, now time.Time) {
	if patch.Status != nil {
		r.Status = *patch.Status
	}
	if len(patch.Data) > 0 {
		r.Data = patch.Data
	}
	r.UpdatedAt = now
}

func indexOf(rows []Record, id string) int {
	return slices.IndexFunc(rows, func(r Record) bool { return r.ID == id })
}

func indexOfKey(rows []Record, employeeID, quarterID string, t Type) int {
	return slices.IndexFunc(rows, func(r Record) bool {
		return r.EmployeeID == employeeID && r.QuarterID == quarterID && r.Type == t
	})
}
