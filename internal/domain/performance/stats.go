package performance

// ComputeStats aggregates records by status and picks the first record of
// each activity type.
func ComputeStats(records []Record) Stats {
	stats := Stats{TotalRecords: len(records)}
	for i := range records {
		r := records[i]
		switch r.Status {
		case StatusCompleted:
			stats.CompletedRecords++
		case StatusInProgress:
			stats.InProgressRecords++
		case StatusPending:
			stats.PendingRecords++
		case StatusFailed:
			stats.FailedRecords++
		}
		switch r.Type {
		case TypeSelfAssessment:
			if stats.SelfAssessment == nil {
				stats.SelfAssessment = &r
			}
		case TypeRequestFeedback:
			if stats.RequestFeedback == nil {
				stats.RequestFeedback = &r
			}
		case TypeFeedbackSummary:
			if stats.FeedbackSummary == nil {
				stats.FeedbackSummary = &r
			}
		}
	}
	return stats
}
