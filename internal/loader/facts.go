package loader

import (
	"context"
	"fmt"
	"strings"

	"radioetl/internal/record"
	"radioetl/internal/storage"
	"radioetl/internal/timeparse"
)

const defaultHeadquarters = "unknown"

// headquartersByRadio maps known station names (lowercased) to their seat.
var headquartersByRadio = map[string]string{
	"vlna":     "Bratislava",
	"melody":   "Bratislava",
	"expres":   "Bratislava",
	"jazz":     "Bratislava",
	"rock":     "Bratislava",
	"funradio": "Bratislava",
}

func headquartersFor(radio string) string {
	if hq, ok := headquartersByRadio[strings.ToLower(radio)]; ok {
		return hq
	}
	return defaultHeadquarters
}

// factWriter inserts the fact rows of both pipelines.
type factWriter struct {
	tx storage.Tx
}

// writePlayback inserts one bulk record: the song session (idempotent), the
// song, and the anchor play_session row. The anchor carries NULL
// listener_count and recorded_at; streaming measurements later copy its
// radio/time linkage.
func (w factWriter) writePlayback(ctx context.Context, p record.Playback, genreID, radioID, timeID int64) error {
	err := w.tx.InsertIgnore(ctx, storage.TableSongSession,
		[]string{"song_session_id"}, []any{p.SongSessionID},
		[]string{"song_session_id"})
	if err != nil {
		return fmt.Errorf("loader: song_session %s: %w", p.SongSessionID, err)
	}

	_, err = w.tx.Insert(ctx, storage.TableSong,
		[]string{"title", "artists", "duration", "release_year", "genre_id", "song_session_id"},
		[]any{p.Title, p.Artists, nullableInt(p.DurationSeconds), nullableInt(p.ReleaseYear), genreID, p.SongSessionID})
	if err != nil {
		return fmt.Errorf("loader: song %q: %w", p.Title, err)
	}

	_, err = w.tx.Insert(ctx, storage.TablePlaySession,
		[]string{"listener_count", "song_session_id", "radio_id", "time_id", "recorded_at"},
		[]any{nil, p.SongSessionID, radioID, timeID, nil})
	if err != nil {
		return fmt.Errorf("loader: play_session anchor %s: %w", p.SongSessionID, err)
	}
	return nil
}

// writeMeasurement inserts one listener-count sample, copying radio_id and
// time_id from the session's anchor row. A measurement whose session has no
// anchor is rejected, not fatal: the streaming export routinely contains
// sessions the bulk export never shipped.
func (w factWriter) writeMeasurement(ctx context.Context, m record.Measurement) error {
	row, found, err := w.tx.FindOne(ctx, storage.TablePlaySession,
		[]string{"song_session_id"}, []any{m.SongSessionID},
		[]string{"radio_id", "time_id"})
	if err != nil {
		return fmt.Errorf("loader: find anchor %s: %w", m.SongSessionID, err)
	}
	if !found {
		return &record.RejectError{Reason: record.ReasonNoAnchor}
	}

	_, err = w.tx.Insert(ctx, storage.TablePlaySession,
		[]string{"listener_count", "song_session_id", "radio_id", "time_id", "recorded_at"},
		[]any{nullableInt(m.Listeners), m.SongSessionID, row[0], row[1], timeparse.FormatDateTime(m.RecordedAt)})
	if err != nil {
		return fmt.Errorf("loader: play_session measurement %s: %w", m.SongSessionID, err)
	}
	return nil
}

// nullableInt unwraps an optional numeric for binding; nil becomes SQL NULL.
func nullableInt(p *int64) any {
	if p == nil {
		return nil
	}
	return *p
}
