package postgres

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/lucabrevi/nba-totals/internal/domain/game"
	qb "github.com/lucabrevi/nba-totals/internal/platform/querybuilder"
)

// GameRepository stores the canonical per-game table in Postgres as an
// alternative to the CSV backend.
type GameRepository struct {
	db *sqlx.DB
}

func NewGameRepository(db *sqlx.DB) *GameRepository {
	return &GameRepository{db: db}
}

func (r *GameRepository) Load(ctx context.Context) ([]game.Record, error) {
	query, args, err := qb.Select("*").From("games").
		OrderBy("game_date NULLS LAST", "game_id").
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build select games query: %w", err)
	}

	var rows []gameTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("select games: %w", err)
	}

	out := make([]game.Record, 0, len(rows))
	for _, row := range rows {
		out = append(out, game.Record{
			GameID:      row.GameID,
			Date:        row.GameDate,
			HomeTeam:    row.HomeTeam,
			AwayTeam:    row.AwayTeam,
			HomePoints:  nullInt64ToIntPtr(row.HomePoints),
			AwayPoints:  nullInt64ToIntPtr(row.AwayPoints),
			TotalPoints: nullInt64ToIntPtr(row.TotalPoints),
			IsFinal:     row.IsFinal,
			StatusText:  row.StatusText,
		})
	}

	return out, nil
}

// Save replaces the canonical table with the reconciled snapshot:
// every row is upserted by game_id and rows absent from the snapshot
// are deleted, all in one transaction.
func (r *GameRepository) Save(ctx context.Context, records []game.Record) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx save games: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	keep := make([]any, 0, len(records))
	for _, rec := range records {
		keep = append(keep, rec.GameID)

		insertModel := gameInsertModel{
			GameID:      rec.GameID,
			GameDate:    rec.Date,
			HomeTeam:    rec.HomeTeam,
			AwayTeam:    rec.AwayTeam,
			HomePoints:  nullableInt(rec.HomePoints),
			AwayPoints:  nullableInt(rec.AwayPoints),
			TotalPoints: nullableInt(rec.TotalPoints),
			IsFinal:     rec.IsFinal,
			StatusText:  rec.StatusText,
		}

		query, args, err := qb.InsertModel("games", insertModel, `ON CONFLICT (game_id)
DO UPDATE SET
    game_date = EXCLUDED.game_date,
    home_team = EXCLUDED.home_team,
    away_team = EXCLUDED.away_team,
    home_points = EXCLUDED.home_points,
    away_points = EXCLUDED.away_points,
    total_points = EXCLUDED.total_points,
    is_final = EXCLUDED.is_final,
    status_text = EXCLUDED.status_text,
    updated_at = NOW()`)
		if err != nil {
			return fmt.Errorf("build upsert game query: %w", err)
		}
		if _, err := tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert game id=%d: %w", rec.GameID, err)
		}
	}

	if len(keep) == 0 {
		if _, err := tx.ExecContext(ctx, "DELETE FROM games"); err != nil {
			return fmt.Errorf("clear games table: %w", err)
		}
	} else {
		deleteQuery, deleteArgs, err := sqlx.In("DELETE FROM games WHERE game_id NOT IN (?)", keep)
		if err != nil {
			return fmt.Errorf("build delete stale games query: %w", err)
		}
		deleteQuery = tx.Rebind(deleteQuery)
		if _, err := tx.ExecContext(ctx, deleteQuery, deleteArgs...); err != nil {
			return fmt.Errorf("delete stale games: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit save games tx: %w", err)
	}

	return nil
}
