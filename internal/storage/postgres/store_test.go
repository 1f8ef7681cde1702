package postgres

import "testing"

func TestBuildFindOneSQL(t *testing.T) {
	got := buildFindOneSQL("time_slot", []string{"date", "hour", "minute", "second"}, []string{"id"})
	want := `SELECT "id" FROM time_slot WHERE "date" = $1 AND "hour" = $2 AND "minute" = $3 AND "second" = $4 LIMIT 1`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuildInsertSQL(t *testing.T) {
	tests := []struct {
		name         string
		table        string
		cols         []string
		returningID  bool
		conflictCols []string
		want         string
	}{
		{
			name:        "dimension insert returns id",
			table:       "genre",
			cols:        []string{"name"},
			returningID: true,
			want:        `INSERT INTO genre ("name") VALUES ($1) RETURNING id`,
		},
		{
			name:         "insert ignore",
			table:        "song_session",
			cols:         []string{"song_session_id"},
			conflictCols: []string{"song_session_id"},
			want:         `INSERT INTO song_session ("song_session_id") VALUES ($1) ON CONFLICT ("song_session_id") DO NOTHING`,
		},
		{
			name:        "multi column placeholder numbering",
			table:       "play_session",
			cols:        []string{"listener_count", "song_session_id", "radio_id", "time_id", "recorded_at"},
			returningID: true,
			want:        `INSERT INTO play_session ("listener_count", "song_session_id", "radio_id", "time_id", "recorded_at") VALUES ($1, $2, $3, $4, $5) RETURNING id`,
		},
	}
	for _, tc := range tests {
		if got := buildInsertSQL(tc.table, tc.cols, tc.returningID, tc.conflictCols); got != tc.want {
			t.Errorf("%s:\ngot:  %s\nwant: %s", tc.name, got, tc.want)
		}
	}
}
