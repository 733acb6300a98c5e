package prediction

import "context"

// Repository persists prediction outputs for later scoring.
type Repository interface {
	Load(ctx context.Context) ([]Row, error)
	Save(ctx context.Context, rows []Row) error
}

// RecommendationRepository persists the daily betting verdicts.
type RecommendationRepository interface {
	SaveRecommendations(ctx context.Context, rows []Recommendation) error
}

// ReportRepository persists predicted-vs-actual comparisons and the
// accuracy history.
type ReportRepository interface {
	SaveReport(ctx context.Context, rows []ReportRow, thresholds map[int]int) error
	AppendMAEHistory(ctx context.Context, entry MAEHistoryEntry) error
}
