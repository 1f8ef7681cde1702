package mssql

import "testing"

func TestBuildFindOneSQL(t *testing.T) {
	got := buildFindOneSQL("time_slot", []string{"date", "hour", "minute", "second"}, []string{"id"})
	want := "SELECT TOP 1 [id] FROM time_slot WHERE [date] = @p1 AND [hour] = @p2 AND [minute] = @p3 AND [second] = @p4"
	if got != want {
		t.Errorf("buildFindOneSQL = %q, want %q", got, want)
	}
}

func TestBuildInsertSQL(t *testing.T) {
	got := buildInsertSQL("genre", []string{"name"})
	want := "INSERT INTO genre ([name]) OUTPUT INSERTED.id VALUES (@p1)"
	if got != want {
		t.Errorf("buildInsertSQL = %q, want %q", got, want)
	}
}

func TestBuildInsertIgnoreSQL(t *testing.T) {
	q, args, err := buildInsertIgnoreSQL(
		"song_session",
		[]string{"song_session_id"},
		[]any{"abc"},
		[]string{"song_session_id"},
	)
	if err != nil {
		t.Fatalf("buildInsertIgnoreSQL: %v", err)
	}
	want := "IF NOT EXISTS (SELECT 1 FROM song_session WHERE [song_session_id] = @p2) " +
		"INSERT INTO song_session ([song_session_id]) VALUES (@p1)"
	if q != want {
		t.Errorf("query = %q, want %q", q, want)
	}
	if len(args) != 2 || args[0] != "abc" || args[1] != "abc" {
		t.Errorf("args = %v, want [abc abc]", args)
	}
}

func TestBuildInsertIgnoreSQLMissingConflictColumn(t *testing.T) {
	_, _, err := buildInsertIgnoreSQL("t", []string{"a"}, []any{1}, []string{"b"})
	if err == nil {
		t.Fatal("expected error for conflict column not in insert columns")
	}
}

func TestMsIdent(t *testing.T) {
	if got := msIdent("da]te"); got != "[da]]te]" {
		t.Errorf("msIdent = %q", got)
	}
}
