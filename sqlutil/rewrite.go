package sqlutil

import (
	"regexp"
	"strconv"
	"strings"
)

// Regexes compiled once at package init, matching the shapes
// inject_rowid recognizes in the Rust original. Intentionally
// forgiving: anything else is returned unchanged.
var (
	reInsertWithCols = regexp.MustCompile(`(?i)insert\s+into\s+([^\s(]+)\s*\(([^)]*)\)\s*values\s*\(([^)]*)\)`)
	reInsertNoCols   = regexp.MustCompile(`(?i)^insert\s+into\s+([^\s(]+)\s*values\s*\(([^)]*)\)`)
	reSelectFrom     = regexp.MustCompile(`(?is)SELECT\s+.*?\s+FROM`)
)

// InjectRowid rewrites a user payload INSERT statement so that its
// first insert into the rowid column carries the given literal
// integer. Three shapes are recognized:
//
//  1. INSERT INTO t (cols) VALUES (vals), rowid listed among cols →
//     the corresponding value slot is replaced with the literal.
//  2. INSERT INTO t (cols) VALUES (vals), rowid absent → rowid is
//     prepended to both the column list and the value list.
//  3. INSERT INTO t VALUES (vals), no column list → the literal is
//     prepended to the values.
//
// Any other shape is returned unchanged.
func InjectRowid(sql string, rowid uint64) string {
	rowidStr := strconv.FormatUint(rowid, 10)

	if m := reInsertWithCols.FindStringSubmatch(sql); m != nil {
		table := m[1]
		columns := strings.TrimSpace(m[2])
		values := strings.TrimSpace(m[3])

		colList := splitTrim(columns)
		valList := splitTrim(values)

		idx := -1
		for i, c := range colList {
			if strings.EqualFold(c, "rowid") {
				idx = i
				break
			}
		}

		if idx >= 0 {
			if idx < len(valList) {
				valList[idx] = rowidStr
			}
			return "INSERT INTO " + table + " (" + strings.Join(colList, ", ") + ") VALUES (" + strings.Join(valList, ", ") + ")"
		}

		return "INSERT INTO " + table + " (rowid, " + columns + ") VALUES (" + rowidStr + ", " + values + ")"
	}

	if m := reInsertNoCols.FindStringSubmatch(sql); m != nil {
		table := m[1]
		values := strings.TrimSpace(m[2])
		return "INSERT INTO " + table + " VALUES (" + rowidStr + ", " + values + ")"
	}

	return sql
}

func splitTrim(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, len(parts))
	for i, p := range parts {
		out[i] = strings.TrimSpace(p)
	}
	return out
}

// ReplaceSelectWithCount rewrites only the first "SELECT ... FROM"
// (non-greedy, dot-matches-newline) with "SELECT count(*) FROM",
// preserving everything after that first FROM verbatim — joins,
// filters, ORDER BY, and any subquery's own SELECT ... FROM are left
// alone, since only the outermost row set is being counted.
func ReplaceSelectWithCount(query string) string {
	return replaceFirstSelectFrom(query, "SELECT count(*) FROM")
}

// ReplaceSelectWithRowids rewrites only the first "SELECT ... FROM"
// with "SELECT rowid FROM", same single-match rule as
// ReplaceSelectWithCount.
func ReplaceSelectWithRowids(query string) string {
	return replaceFirstSelectFrom(query, "SELECT rowid FROM")
}

// replaceFirstSelectFrom splices replacement in place of the first
// match of reSelectFrom only, leaving any later "SELECT ... FROM" in
// the query (e.g. inside a subquery) untouched.
func replaceFirstSelectFrom(query, replacement string) string {
	loc := reSelectFrom.FindStringIndex(query)
	if loc == nil {
		return query
	}
	return query[:loc[0]] + replacement + query[loc[1]:]
}
