package game

import "context"

// Repository persists the canonical per-game table. Load on a missing
// backing store returns an empty slice, not an error.
type Repository interface {
	Load(ctx context.Context) ([]Record, error)
	Save(ctx context.Context, rows []Record) error
}

// SourceRepository exposes the raw source tables the reconciler merges.
type SourceRepository interface {
	LoadHeaders(ctx context.Context) ([]HeaderRow, error)
	LoadLineScores(ctx context.Context) ([]LineScoreRow, error)
	SaveHeaders(ctx context.Context, rows []HeaderRow) error
	SaveLineScores(ctx context.Context, rows []LineScoreRow) error
}

// ClosingRepository exposes the optional closing-dataset fallback.
type ClosingRepository interface {
	LoadClosing(ctx context.Context) ([]ClosingRow, error)
}
