package sqlutil

import (
	"database/sql"
	"strconv"

	"github.com/vxengine/vxengine/vxerr"
)

// RowMapper post-processes one result row into a string-valued
// attribute map. Planner-supplied, executor-invoked, per QueryPlan.
type RowMapper func(*sql.Rows) (map[string]string, error)

// RowToStringMap reads every column of the current row via
// database/sql's generic scan target (sql.RawBytes-free: we rely on
// driver.Value's dynamic type) and formats it to a string. This is
// deliberately lossy and meant for observability / generic attribute
// maps; callers reparse numeric fields (rowid, distance) themselves.
func RowToStringMap(rows *sql.Rows) (map[string]string, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, vxerr.Wrap(vxerr.DataParsing, err, "reading column names")
	}

	values := make([]any, len(cols))
	scanTargets := make([]any, len(cols))
	for i := range values {
		scanTargets[i] = &values[i]
	}

	result := make(map[string]string, len(cols))
	if err := rows.Scan(scanTargets...); err != nil {
		for _, c := range cols {
			result[c] = "<ERR>"
		}
		return result, nil
	}

	for i, c := range cols {
		result[c] = valueToString(values[i])
	}
	return result, nil
}

func valueToString(v any) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case string:
		return t
	case []byte:
		return "<BLOB>"
	case bool:
		if t {
			return "1"
		}
		return "0"
	default:
		return "<ERR>"
	}
}
