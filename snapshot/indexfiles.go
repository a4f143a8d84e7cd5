package snapshot

import (
	"context"
	"database/sql"
	"regexp"
	"strings"

	"github.com/vxengine/vxengine/vxerr"
)

var usingVectorliteRe = regexp.MustCompile(`(?i)using\s+vectorlite\s*\(`)

// getIndexFiles scans the schema catalog for vectorlite virtual-table
// DDL and extracts the on-disk index path each one names, skipping
// tables with no path (in-memory-only indexes).
func getIndexFiles(ctx context.Context, db *sql.DB) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT sql FROM sqlite_master WHERE type='table' AND sql LIKE '%vectorlite%'`)
	if err != nil {
		return nil, vxerr.FromSQL(err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var ddl sql.NullString
		if err := rows.Scan(&ddl); err != nil {
			return nil, vxerr.FromSQL(err)
		}
		if !ddl.Valid {
			continue
		}
		if path, ok := extractIndexPath(ddl.String); ok && path != "" && path != ":memory:" {
			paths = append(paths, path)
		}
	}
	if err := rows.Err(); err != nil {
		return nil, vxerr.FromSQL(err)
	}
	return paths, nil
}

// extractIndexPath recovers the index file path from a
// "... USING vectorlite(...)" virtual-table DDL statement. The path,
// when present, is the rightmost top-level comma-separated argument
// that looks like a filesystem path (contains a slash or ends in
// ".idx") — it is always the final positional argument, but scanning
// from the right tolerates extra trailing whitespace or a stray
// trailing comma. The argument list is bounded by the outer
// vectorlite(...) parenthesis, found by balancing parens rather than
// stopping at the first ")", since the nested "hnsw(max_elements=...)"
// clause closes before the argument list does.
func extractIndexPath(ddl string) (string, bool) {
	loc := usingVectorliteRe.FindStringIndex(ddl)
	if loc == nil {
		return "", false
	}
	rest := ddl[loc[1]:]
	end := matchingCloseParen(rest)
	if end < 0 {
		return "", false
	}
	args := splitTopLevelArgs(rest[:end])
	for i := len(args) - 1; i >= 0; i-- {
		trimmed := strings.Trim(strings.TrimSpace(args[i]), `'"`)
		if trimmed == "" {
			continue
		}
		if strings.ContainsAny(trimmed, `/\`) || strings.HasSuffix(trimmed, ".idx") {
			return trimmed, true
		}
	}
	return "", false
}

// matchingCloseParen returns the index of the ")" that closes the
// "(" already consumed by the caller (depth starts at 1), or -1 if
// s never balances back to 0.
func matchingCloseParen(s string) int {
	depth := 1
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevelArgs splits s on commas that are not nested inside a
// parenthesized sub-clause, so an argument like "hnsw(max_elements=1,
// foo=2)" is never mistaken for two arguments.
func splitTopLevelArgs(s string) []string {
	var args []string
	depth := 0
	start := 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				args = append(args, s[start:i])
				start = i + 1
			}
		}
	}
	args = append(args, s[start:])
	return args
}
