package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder(t *testing.T) {
	query, args, err := Select("id", "status").
		From("matches").
		Where(Eq("season_id", "s1"), IsNull("deleted_at")).
		OrderBy("scheduled_at", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, status FROM matches WHERE season_id = $1 AND deleted_at IS NULL ORDER BY scheduled_at, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 1 || args[0] != "s1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_ComparisonAndSuffix(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	query, args, err := Select("id").
		From("standing_recompute_tasks").
		Where(In("status", []any{"pending", "running"}), Lte("available_at", now)).
		OrderBy("available_at").
		Limit(5).
		Suffix("FOR UPDATE SKIP LOCKED").
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM standing_recompute_tasks WHERE status IN ($1, $2) AND available_at <= $3 ORDER BY available_at LIMIT 5 FOR UPDATE SKIP LOCKED"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != now {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder(t *testing.T) {
	query, args, err := InsertInto("players").
		Columns("id", "display_name").
		Values("p1", "Efren").
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO players (id, display_name) VALUES ($1, $2) RETURNING id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "p1" || args[1] != "Efren" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_ConditionalStatus(t *testing.T) {
	query, args, err := Update("matches").
		Set("status", "approved").
		SetExpr("version", "version + 1").
		Where(Eq("id", "m1"), Eq("status", "submitted")).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE matches SET status = $1, version = version + 1 WHERE id = $2 AND status = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "approved" || args[1] != "m1" || args[2] != "submitted" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

type weekRow struct {
	ID       string `db:"id"`
	SeasonID string `db:"season_id"`
	Number   int    `db:"week_number"`
	internal string
}

func TestInsertModels(t *testing.T) {
	rows := []weekRow{
		{ID: "w1", SeasonID: "s1", Number: 1},
		{ID: "w2", SeasonID: "s1", Number: 2},
	}

	query, args, err := InsertModels("weeks", rows, "")
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO weeks (id, season_id, week_number) VALUES ($1, $2, $3), ($4, $5, $6)"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 6 || args[3] != "w2" || args[5] != 2 {
		t.Fatalf("unexpected args: %+v", args)
	}

	if _, _, err := InsertModels[weekRow]("weeks", nil, ""); err == nil {
		t.Fatalf("expected error for empty rows")
	}
}

func TestColumns(t *testing.T) {
	got := Columns(weekRow{}, "w")
	want := []string{"w.id", "w.season_id", "w.week_number"}
	if len(got) != len(want) {
		t.Fatalf("unexpected columns: %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("column %d: want %s, got %s", i, want[i], got[i])
		}
	}
}

func TestConditions_OrExprAndEmptyIn(t *testing.T) {
	query, args, err := Select("id").
		From("matches").
		Where(
			Or(Eq("player_a_id", "p1"), Eq("player_b_id", "p1")),
			Expr("scheduled_at >= ? AND scheduled_at < ?", 1, 2),
			Ne("status", "locked"),
			In("week_id", nil),
		).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id FROM matches WHERE (player_a_id = $1 OR player_b_id = $2) AND scheduled_at >= $3 AND scheduled_at < $4 AND status <> $5 AND 1=0"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 5 || args[4] != "locked" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestUpdateBuilder_ClaimWithSubqueryAndReturning(t *testing.T) {
	due := Select("id").
		From("standing_recompute_tasks").
		Where(In("status", []any{"pending", "running"}), Lte("available_at", "now")).
		OrderBy("available_at").
		Limit(10).
		Suffix("FOR UPDATE SKIP LOCKED")

	query, args, err := Update("standing_recompute_tasks").
		Set("status", "running").
		SetExpr("attempts", "attempts + 1").
		Set("available_at", "lease").
		Where(InQuery("id", due)).
		Returning("id", "season_id").
		ToSQL()
	if err != nil {
		t.Fatalf("build claim query: %v", err)
	}

	wantQuery := "UPDATE standing_recompute_tasks SET status = $1, attempts = attempts + 1, available_at = $2 " +
		"WHERE id IN (SELECT id FROM standing_recompute_tasks WHERE status IN ($3, $4) AND available_at <= $5 " +
		"ORDER BY available_at LIMIT 10 FOR UPDATE SKIP LOCKED) RETURNING id, season_id"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	want := []any{"running", "lease", "pending", "running", "now"}
	if len(args) != len(want) {
		t.Fatalf("unexpected args: %+v", args)
	}
	for i := range want {
		if args[i] != want[i] {
			t.Fatalf("arg %d: want %v, got %v", i, want[i], args[i])
		}
	}

	if _, _, err := Update("t").Set("a", 1).Where(InQuery("id", Select("id"))).ToSQL(); err == nil {
		t.Fatalf("expected error for subquery without table")
	}
}

func TestBuilders_RejectIncompleteQueries(t *testing.T) {
	if _, _, err := Select().From("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for select without columns")
	}
	if _, _, err := Update("matches").ToSQL(); err == nil {
		t.Fatalf("expected error for update without sets")
	}
	if _, _, err := InsertInto("weeks").Columns("id", "season_id").Values("w1").ToSQL(); err == nil {
		t.Fatalf("expected error for short insert row")
	}
}
