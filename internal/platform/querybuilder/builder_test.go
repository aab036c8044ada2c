package querybuilder

import (
	"testing"
	"time"
)

func TestSelectBuilder_EventWindow(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 60)

	query, args, err := Select("id", "title").
		From("events").
		Where(Eq("team_id", "T1"), Gte("start_at", from), Lt("start_at", to), IsNull("spond_id")).
		OrderBy("start_at", "id").
		Limit(10).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT id, title FROM events WHERE team_id = $1 AND start_at >= $2 AND start_at < $3 AND spond_id IS NULL ORDER BY start_at, id LIMIT 10"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "T1" || args[1] != from || args[2] != to {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestSelectBuilder_InExprAndEmptyIn(t *testing.T) {
	query, args, err := Select("team_id").
		From("sync_settings").
		Where(In("team_id", []any{"T1", "T2"}), Expr("(import_events = ? OR export_events = ?)", true, true), In("spond_group_id", nil), IsNotNull("spond_group_id")).
		ToSQL()
	if err != nil {
		t.Fatalf("build select query: %v", err)
	}

	wantQuery := "SELECT team_id FROM sync_settings WHERE team_id IN ($1, $2) AND (import_events = $3 OR export_events = $4) AND 1=0 AND spond_group_id IS NOT NULL"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 4 {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_UpsertSuffix(t *testing.T) {
	query, args, err := InsertInto("spond_credentials").
		Columns("id", "email").
		Values(1, "coach@example.com").
		Suffix("ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = ?", "now").
		ToSQL()
	if err != nil {
		t.Fatalf("build insert query: %v", err)
	}

	wantQuery := "INSERT INTO spond_credentials (id, email) VALUES ($1, $2) ON CONFLICT (id) DO UPDATE SET email = EXCLUDED.email, updated_at = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[2] != "now" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestInsertBuilder_RowLengthMismatch(t *testing.T) {
	_, _, err := InsertInto("teams").Columns("id", "name").Values("t1").ToSQL()
	if err == nil {
		t.Fatalf("expected row length error")
	}
}

func TestUpdateBuilder(t *testing.T) {
	query, args, err := Update("sync_settings").
		Set("last_import_at", "ts").
		SetExpr("updated_at", "NOW()").
		Where(Eq("team_id", "T1"), Eq("is_active", true)).
		ToSQL()
	if err != nil {
		t.Fatalf("build update query: %v", err)
	}

	wantQuery := "UPDATE sync_settings SET last_import_at = $1, updated_at = NOW() WHERE team_id = $2 AND is_active = $3"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 3 || args[0] != "ts" || args[1] != "T1" {
		t.Fatalf("unexpected args: %+v", args)
	}
}

func TestDeleteBuilder(t *testing.T) {
	query, args, err := DeleteFrom("spond_credentials").Where(Eq("id", 1)).ToSQL()
	if err != nil {
		t.Fatalf("build delete query: %v", err)
	}
	if query != "DELETE FROM spond_credentials WHERE id = $1" || len(args) != 1 {
		t.Fatalf("unexpected delete: %s %+v", query, args)
	}
}

func TestInsertModel(t *testing.T) {
	type row struct {
		ID      string `db:"id"`
		Name    string `db:"name"`
		Ignored string `db:"-"`
		NoTag   string
		private string `db:"private"`
	}

	query, args, err := InsertModel("teams", &row{ID: "t1", Name: "U12", private: "x"}, "ON CONFLICT (id) DO NOTHING")
	if err != nil {
		t.Fatalf("build insert model: %v", err)
	}
	wantQuery := "INSERT INTO teams (id, name) VALUES ($1, $2) ON CONFLICT (id) DO NOTHING"
	if query != wantQuery {
		t.Fatalf("unexpected query:\nwant: %s\ngot:  %s", wantQuery, query)
	}
	if len(args) != 2 || args[0] != "t1" || args[1] != "U12" {
		t.Fatalf("unexpected args: %+v", args)
	}
}
