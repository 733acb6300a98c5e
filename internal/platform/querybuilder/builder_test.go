package querybuilder

import "testing"

func TestSelectBuilder(t *testing.T) {
	t.Parallel()

	query, args, err := Select("game_id", "total_points").
		From("games").
		Where(Eq("is_final", true), IsNull("total_points")).
		OrderBy("game_date", "game_id").
		Limit(25).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT game_id, total_points FROM games WHERE is_final = $1 AND total_points IS NULL ORDER BY game_date, game_id LIMIT 25"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != true {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilderEmptyIn(t *testing.T) {
	t.Parallel()

	query, args, err := Select("game_id").
		From("games").
		Where(In("game_id", nil)).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT game_id FROM games WHERE 1=0" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 0 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderWithSuffix(t *testing.T) {
	t.Parallel()

	query, args, err := InsertInto("games").
		Columns("game_id", "home_team").
		Values(int64(22500101), "BOS").
		Suffix("ON CONFLICT (game_id) DO NOTHING").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO games (game_id, home_team) VALUES ($1, $2) ON CONFLICT (game_id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != int64(22500101) || args[1] != "BOS" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilderRejectsRaggedRows(t *testing.T) {
	t.Parallel()

	_, _, err := InsertInto("games").
		Columns("game_id", "home_team").
		Values(int64(22500101)).
		ToSQL()
	if err == nil {
		t.Fatal("expected error for mismatched value count")
	}
}

func TestInsertModel(t *testing.T) {
	t.Parallel()

	type row struct {
		GameID   int64  `db:"game_id"`
		HomeTeam string `db:"home_team"`
		Ignored  string `db:"-"`
	}

	query, args, err := InsertModel("games", row{GameID: 1, HomeTeam: "NYK"}, "")
	if err != nil {
		t.Fatalf("insert model: %v", err)
	}
	if query != "INSERT INTO games (game_id, home_team) VALUES ($1, $2)" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestExprRewritesPlaceholders(t *testing.T) {
	t.Parallel()

	query, args, err := Select("game_id").
		From("games").
		Where(Expr("game_date BETWEEN ? AND ?", "2025-10-21", "2025-11-03")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}
	if query != "SELECT game_id FROM games WHERE game_date BETWEEN $1 AND $2" {
		t.Fatalf("unexpected query: %s", query)
	}
	if len(args) != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}
}
