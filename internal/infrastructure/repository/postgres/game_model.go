package postgres

import (
	"database/sql"
	"time"
)

type gameTableModel struct {
	GameID      int64         `db:"game_id"`
	GameDate    *time.Time    `db:"game_date"`
	HomeTeam    string        `db:"home_team"`
	AwayTeam    string        `db:"away_team"`
	HomePoints  sql.NullInt64 `db:"home_points"`
	AwayPoints  sql.NullInt64 `db:"away_points"`
	TotalPoints sql.NullInt64 `db:"total_points"`
	IsFinal     bool          `db:"is_final"`
	StatusText  string        `db:"status_text"`
	CreatedAt   time.Time     `db:"created_at"`
	UpdatedAt   time.Time     `db:"updated_at"`
}

type gameInsertModel struct {
	GameID      int64         `db:"game_id"`
	GameDate    *time.Time    `db:"game_date"`
	HomeTeam    string        `db:"home_team"`
	AwayTeam    string        `db:"away_team"`
	HomePoints  sql.NullInt64 `db:"home_points"`
	AwayPoints  sql.NullInt64 `db:"away_points"`
	TotalPoints sql.NullInt64 `db:"total_points"`
	IsFinal     bool          `db:"is_final"`
	StatusText  string        `db:"status_text"`
}

func nullableInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullInt64ToIntPtr(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	out := int(v.Int64)
	return &out
}
