package review

import (
	"context"
	"log/slog"

	"hrunity/internal/domain/performance"
)

// NextSummaryStatus is the status the feedback summary moves to on the
// next explicit action. Completed is terminal.
func NextSummaryStatus(current performance.Status, found bool) performance.Status {
	if !found {
		return performance.StatusInProgress
	}
	switch current {
	case performance.StatusInProgress, performance.StatusCompleted:
		return performance.StatusCompleted
	default:
		return performance.StatusInProgress
	}
}

func (s *Service) AdvanceFeedbackSummary(ctx context.Context, employeeID, quarterID string) (performance.Record, error) {
	return s.changeSummary(ctx, employeeID, quarterID, func(current performance.Status, found bool) (performance.Status, error) {
		return NextSummaryStatus(current, found), nil
	})
}

func (s *Service) SetFeedbackSummaryStatus(ctx context.Context, employeeID, quarterID string, status performance.Status) (performance.Record, error) {
	switch status {
	case performance.StatusPending, performance.StatusInProgress, performance.StatusCompleted:
	default:
		return performance.Record{}, ErrSummaryStatus
	}
	return s.changeSummary(ctx, employeeID, quarterID, func(performance.Status, bool) (performance.Status, error) {
		return status, nil
	})
}

func (s *Service) changeSummary(ctx context.Context, employeeID, quarterID string, next func(performance.Status, bool) (performance.Status, error)) (performance.Record, error) {
	unlock := s.lock(employeeID, quarterID)
	defer unlock()

	if _, err := s.resolve(ctx, employeeID, quarterID); err != nil {
		return performance.Record{}, err
	}
	rec, found, err := s.deps.Records.RecordByType(ctx, employeeID, quarterID, performance.TypeFeedbackSummary)
	if err != nil {
		return performance.Record{}, err
	}
	status, err := next(rec.Status, found)
	if err != nil {
		return performance.Record{}, err
	}
	data, err := encodePayload(FeedbackSummaryPayload{ChangedAt: s.now()})
	if err != nil {
		return performance.Record{}, err
	}
	updated, err := s.deps.Records.Upsert(ctx, employeeID, quarterID, performance.TypeFeedbackSummary, performance.Patch{Status: statusPtr(status), Data: data})
	if err != nil {
		return performance.Record{}, err
	}
	slog.Info("feedback summary status changed", "employeeId", employeeID, "quarterId", quarterID, "status", status)
	return updated, nil
}
