// Package sqlutil holds the naming, SQL-rewriting, and row-materialization
// helpers shared by the planner and executor. None of it parses SQL
// properly — it is a small regex toolkit over a fixed set of shapes,
// ported from vector_xlite's Rust sql_helper module.
package sqlutil

import "regexp"

const vectorTablePrefix = "vt_vector_"

// VectorTableName returns the deterministic ANN virtual table name for
// a collection. This alone distinguishes it from the payload table,
// which is named after the collection itself.
func VectorTableName(collection string) string {
	return vectorTablePrefix + collection
}

var collectionNameRe = regexp.MustCompile(`(?i)\b(?:table|into|from)\s+([a-zA-Z_][a-zA-Z0-9_]*)`)

// ParseCollectionName recovers a collection/table name from a
// CREATE TABLE / INSERT INTO / SELECT ... FROM fragment. Builders use
// this to infer collection_name when the caller only supplied a
// schema or query string.
func ParseCollectionName(sql string) (string, bool) {
	m := collectionNameRe.FindStringSubmatch(sql)
	if m == nil {
		return "", false
	}
	return m[1], true
}

var collectionNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// ValidCollectionName reports whether name matches the identifier
// shape required by spec: [A-Za-z_][A-Za-z0-9_]*.
func ValidCollectionName(name string) bool {
	return collectionNamePattern.MatchString(name)
}
