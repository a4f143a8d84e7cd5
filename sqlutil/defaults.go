package sqlutil

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"

	"github.com/vxengine/vxengine/vxerr"
)

type columnInfo struct {
	name         string
	colType      string
	notNull      bool
	defaultValue *string
	isPK         bool
}

// GenerateDefaultInsert introspects table's columns via
// PRAGMA table_info and synthesizes an INSERT statement usable when
// the caller supplies no payload-insert query of its own.
//
// Per column, in this order:
//  1. a SQL default expression is used verbatim;
//  2. a NOT NULL column without a default gets a type-keyed fallback
//     literal ('' / 0 / 0.0 / x'' / '');
//  3. a primary-key column gets the next positional parameter
//     placeholder;
//  4. anything else gets NULL.
//
// The order matters: a declared "rowid INTEGER PRIMARY KEY" column is
// not NOT-NULL in SQLite's pragma output, so it falls through to (3)
// and receives a placeholder that InjectRowid subsequently overwrites
// with the literal id — the two functions are designed to compose.
func GenerateDefaultInsert(ctx context.Context, db *sql.DB, table string) (string, error) {
	rows, err := db.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return "", vxerr.FromSQL(err)
	}
	defer rows.Close()

	var cols []columnInfo
	for rows.Next() {
		var (
			cid          int
			name         string
			colType      string
			notNullInt   int
			defaultValue sql.NullString
			pkInt        int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNullInt, &defaultValue, &pkInt); err != nil {
			return "", vxerr.Wrap(vxerr.DataParsing, err, "scanning table_info(%s)", table)
		}
		ci := columnInfo{name: name, colType: colType, notNull: notNullInt != 0, isPK: pkInt != 0}
		if defaultValue.Valid {
			v := defaultValue.String
			ci.defaultValue = &v
		}
		cols = append(cols, ci)
	}
	if err := rows.Err(); err != nil {
		return "", vxerr.FromSQL(err)
	}

	columns := make([]string, 0, len(cols))
	values := make([]string, 0, len(cols))
	placeholderIndex := 1

	for _, col := range cols {
		columns = append(columns, col.name)

		if col.defaultValue != nil {
			values = append(values, *col.defaultValue)
			continue
		}

		if col.notNull {
			values = append(values, typeFallbackLiteral(col.colType))
			continue
		}

		if col.isPK {
			values = append(values, "?"+strconv.Itoa(placeholderIndex))
			placeholderIndex++
			continue
		}

		values = append(values, "NULL")
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", table, strings.Join(columns, ", "), strings.Join(values, ", ")), nil
}

func typeFallbackLiteral(colType string) string {
	switch strings.ToUpper(colType) {
	case "TEXT":
		return "''"
	case "INTEGER":
		return "0"
	case "REAL":
		return "0.0"
	case "BLOB":
		return "x''"
	default:
		return "''"
	}
}
