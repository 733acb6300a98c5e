package override

import "context"

// Repository reads operator-maintained corrections. The file is owned
// by the operator; the pipeline never writes it.
type Repository interface {
	Load(ctx context.Context) ([]Row, error)
}
