package loader

import (
	"context"
	"fmt"
	"strconv"

	"radioetl/internal/storage"
)

// dimension memoizes natural-key to id resolution for one table within a
// run. First sighting of a key looks the row up and inserts it when absent;
// every later sighting hits the cache, so each distinct key costs at most
// one insert per run.
type dimension struct {
	table   string
	keyCols []string
	cache   map[string]int64
}

func newDimension(table string, keyCols ...string) *dimension {
	return &dimension{
		table:   table,
		keyCols: keyCols,
		cache:   make(map[string]int64),
	}
}

// resolve returns the id for keyVals, inserting the row when it does not
// exist yet. extraCols/extraVals are the non-key columns to populate on
// insert; existing rows keep their stored values.
func (d *dimension) resolve(ctx context.Context, tx storage.Tx, keyVals []any, extraCols []string, extraVals []any) (int64, error) {
	if len(keyVals) != len(d.keyCols) {
		return 0, fmt.Errorf("loader: %s: got %d key values for %d key columns", d.table, len(keyVals), len(d.keyCols))
	}

	ck := storage.CacheKey(keyVals)
	if id, ok := d.cache[ck]; ok {
		return id, nil
	}

	row, found, err := tx.FindOne(ctx, d.table, d.keyCols, keyVals, []string{"id"})
	if err != nil {
		return 0, fmt.Errorf("loader: find %s: %w", d.table, err)
	}

	var id int64
	if found {
		id, err = toID(row[0])
		if err != nil {
			return 0, fmt.Errorf("loader: %s id: %w", d.table, err)
		}
	} else {
		cols := make([]string, 0, len(d.keyCols)+len(extraCols))
		cols = append(cols, d.keyCols...)
		cols = append(cols, extraCols...)

		vals := make([]any, 0, len(keyVals)+len(extraVals))
		vals = append(vals, keyVals...)
		vals = append(vals, extraVals...)

		id, err = tx.Insert(ctx, d.table, cols, vals)
		if err != nil {
			return 0, fmt.Errorf("loader: insert %s: %w", d.table, err)
		}
	}

	d.cache[ck] = id
	return id, nil
}

// toID coerces a scanned id column to int64 across driver value types.
func toID(v any) (int64, error) {
	switch t := v.(type) {
	case int64:
		return t, nil
	case int:
		return int64(t), nil
	case int32:
		return int64(t), nil
	case uint64:
		return int64(t), nil
	case []byte:
		return strconv.ParseInt(string(t), 10, 64)
	case string:
		return strconv.ParseInt(t, 10, 64)
	default:
		return 0, fmt.Errorf("unexpected id type %T", v)
	}
}
