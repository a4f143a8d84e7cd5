package executor

import (
	"context"
	"database/sql"
	"log/slog"

	"github.com/vxengine/vxengine/model"
	"github.com/vxengine/vxengine/vxerr"
)

// SQLiteExecutor runs plans against a *sql.DB pool. Write operations
// run inside one transaction in SQLite's default deferred-isolation
// mode; any statement error rolls the transaction back.
type SQLiteExecutor struct {
	db *sql.DB
}

func NewSQLiteExecutor(db *sql.DB) *SQLiteExecutor {
	return &SQLiteExecutor{db: db}
}

var _ QueryExecutor = (*SQLiteExecutor)(nil)

func (e *SQLiteExecutor) ExecuteCreateCollectionQuery(ctx context.Context, plans []model.QueryPlan) error {
	return e.runInTx(ctx, plans, "create_collection")
}

func (e *SQLiteExecutor) ExecuteInsertQuery(ctx context.Context, plans []model.QueryPlan) error {
	return e.runInTx(ctx, plans, "insert")
}

func (e *SQLiteExecutor) ExecuteDeleteQuery(ctx context.Context, plans []model.QueryPlan) error {
	return e.runInTx(ctx, plans, "delete")
}

func (e *SQLiteExecutor) ExecuteDeleteCollectionQuery(ctx context.Context, plans []model.QueryPlan) error {
	return e.runInTx(ctx, plans, "delete_collection")
}

func (e *SQLiteExecutor) runInTx(ctx context.Context, plans []model.QueryPlan, op string) error {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return vxerr.FromSQL(err)
	}

	for _, plan := range plans {
		if _, err := tx.ExecContext(ctx, plan.SQL, plan.Params...); err != nil {
			_ = tx.Rollback()
			slog.Error("plan execution failed, rolling back", "op", op, "sql", plan.SQL, "error", err)
			return vxerr.FromSQL(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return vxerr.FromSQL(err)
	}

	slog.Debug("executed plans", "op", op, "plan_count", len(plans))
	return nil
}

func (e *SQLiteExecutor) ExecuteSearchQuery(ctx context.Context, plan model.QueryPlan) ([]map[string]string, error) {
	stmt, err := e.db.PrepareContext(ctx, plan.SQL)
	if err != nil {
		return nil, vxerr.FromSQL(err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx, plan.Params...)
	if err != nil {
		return nil, vxerr.FromSQL(err)
	}
	defer rows.Close()

	mapper := plan.PostProcess
	if mapper == nil {
		return nil, vxerr.New(vxerr.InvalidQuery, "search plan has no row post-processor")
	}

	var results []map[string]string
	for rows.Next() {
		m, err := mapper(rows)
		if err != nil {
			return nil, vxerr.Wrap(vxerr.DataParsing, err, "mapping search result row")
		}
		results = append(results, m)
	}
	if err := rows.Err(); err != nil {
		return nil, vxerr.FromSQL(err)
	}

	slog.Debug("executed search", "result_count", len(results))
	return results, nil
}

func (e *SQLiteExecutor) ExecuteCollectionExistsQuery(ctx context.Context, plan model.QueryPlan) (bool, error) {
	var count int64
	if err := e.db.QueryRowContext(ctx, plan.SQL, plan.Params...).Scan(&count); err != nil {
		return false, vxerr.FromSQL(err)
	}
	return count >= 1, nil
}
