package loader

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"radioetl/internal/record"
	"radioetl/internal/storage"
	"radioetl/internal/timeparse"
)

// RunBulk loads the bulk playback export: one JSON array of records. The
// whole array is decoded up front (the export is a finite snapshot) and then
// loaded in a single transaction.
func (p *Pipeline) RunBulk(ctx context.Context, r io.Reader) (Summary, error) {
	start := time.Now()
	logf := p.logger()

	dec := json.NewDecoder(r)
	dec.UseNumber()
	var rows []map[string]any
	if err := dec.Decode(&rows); err != nil {
		return Summary{}, fmt.Errorf("loader: decode bulk export: %w", err)
	}
	logf("stage=bulk_decode rows=%d", len(rows))

	sum := Summary{Reasons: make(map[string]int)}

	err := runInTx(ctx, p.Store, func(tx storage.Tx) error {
		genres := newDimension(storage.TableGenre, "name")
		radios := newDimension(storage.TableRadio, "name")
		times := newDimension(storage.TableTimeSlot, "date", "hour", "minute", "second")
		facts := factWriter{tx: tx}

		for i, raw := range rows {
			pb, err := record.NormalizePlayback(raw)
			if reason, ok := record.IsReject(err); ok {
				sum.Skipped++
				sum.Reasons[reason]++
				continue
			}
			if err != nil {
				return fmt.Errorf("loader: record %d: %w", i, err)
			}

			genreID, err := genres.resolve(ctx, tx, []any{pb.Genre}, nil, nil)
			if err != nil {
				return err
			}
			radioID, err := radios.resolve(ctx, tx, []any{pb.Radio},
				[]string{"headquarters", "genre_id"},
				[]any{headquartersFor(pb.Radio), genreID})
			if err != nil {
				return err
			}
			timeID, err := times.resolve(ctx, tx,
				[]any{timeparse.FormatDate(pb.Date), pb.Hour, pb.Minute, pb.Second},
				[]string{"day_of_week"},
				[]any{timeparse.DayOfWeek(pb.Date)})
			if err != nil {
				return err
			}

			if err := facts.writePlayback(ctx, pb, genreID, radioID, timeID); err != nil {
				return err
			}
			sum.Inserted++
		}
		return nil
	})

	sum.Elapsed = time.Since(start)
	if err != nil {
		return sum, err
	}

	emitRunMetrics("bulk", sum)
	logf("stage=bulk_load ok inserted=%d skipped=%d duration=%s", sum.Inserted, sum.Skipped, durMS(start))
	return sum, nil
}
