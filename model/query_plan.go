package model

import "database/sql"

// RowMapper post-processes one result row into a string-valued
// attribute map. The planner wires sqlutil.RowToStringMap in as the
// concrete value.
type RowMapper func(*sql.Rows) (map[string]string, error)

// QueryPlan is a single planned statement: the SQL text, its bound
// parameters in positional order, and an optional row post-processor
// for read queries. Write plans leave PostProcess nil.
type QueryPlan struct {
	SQL         string
	Params      []any
	PostProcess RowMapper
}
