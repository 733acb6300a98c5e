package csvstore

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/lucabrevi/nba-totals/internal/domain/override"
	"github.com/lucabrevi/nba-totals/internal/platform/logging"
)

const OverridesFile = "manual_overrides.csv"

// OverrideStore reads the operator-maintained corrections file. Rows
// that fail validation are dropped with a warning instead of failing
// the run; the file is untrusted input.
type OverrideStore struct {
	dir      string
	validate *validator.Validate
	logger   *logging.Logger
}

func NewOverrideStore(dir string, logger *logging.Logger) *OverrideStore {
	if logger == nil {
		logger = logging.Default()
	}
	return &OverrideStore{
		dir:      dir,
		validate: validator.New(),
		logger:   logger,
	}
}

func (s *OverrideStore) Load(ctx context.Context) ([]override.Row, error) {
	rows, err := readTable(filepath.Join(s.dir, OverridesFile))
	if err != nil {
		return nil, err
	}

	out := make([]override.Row, 0, len(rows))
	for i, row := range rows {
		o := override.Row{
			GameID:      parseOptionalInt64(field(row, 0)),
			Date:        parseOptionalDate(field(row, 1)),
			HomeTeam:    strings.TrimSpace(field(row, 2)),
			AwayTeam:    strings.TrimSpace(field(row, 3)),
			HomePoints:  parseOptionalInt(field(row, 4)),
			AwayPoints:  parseOptionalInt(field(row, 5)),
			TotalPoints: parseOptionalInt(field(row, 6)),
		}
		if err := s.validate.StructCtx(ctx, o); err != nil {
			s.logger.WarnContext(ctx, "dropping invalid override row",
				"line", i+2,
				"error", err,
			)
			continue
		}
		out = append(out, o)
	}
	return out, nil
}
