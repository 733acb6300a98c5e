package odds

import "context"

// Repository persists the odds table accumulated across daily runs.
type Repository interface {
	Load(ctx context.Context) ([]Row, error)
	Save(ctx context.Context, rows []Row) error
}
