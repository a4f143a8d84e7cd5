// Package engine is the facade (C9): it composes the planner and
// executor behind the public API surface spec.md fixes — create,
// insert, search, delete, delete-collection, collection-exists — and
// mediates snapshot export/import against the same connection pool.
package engine

import (
	"context"
	"database/sql"

	"github.com/vxengine/vxengine/connpool"
	"github.com/vxengine/vxengine/executor"
	"github.com/vxengine/vxengine/model"
	"github.com/vxengine/vxengine/planner"
	"github.com/vxengine/vxengine/snapshot"
	"github.com/vxengine/vxengine/vxerr"
)

// Engine owns the connection pool and composes QueryPlanner +
// QueryExecutor into the library API surface. Safe for concurrent use
// from multiple goroutines, each operation checking out one pooled
// connection for its own duration.
type Engine struct {
	db             *sql.DB
	planner        planner.QueryPlanner
	executor       executor.QueryExecutor
	snapshotConfig snapshot.SnapshotConfig
}

// Open registers a customized sqlite3 driver (busy timeout + vectorlite
// extension load on every connection, per connpool) and opens the
// pool at cfg.DatabasePath.
func Open(cfg *Config) (*Engine, error) {
	driverName := connpool.RegisterDriver(cfg.BusyTimeout)

	db, err := sql.Open(driverName, cfg.DatabasePath)
	if err != nil {
		return nil, vxerr.Wrap(vxerr.Sql, err, "opening database %s", cfg.DatabasePath)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}

	return NewWithDB(db, cfg.Snapshot), nil
}

// NewWithDB builds an Engine around an already-open *sql.DB, bypassing
// driver registration. Useful for callers (and tests) that manage
// their own pool/driver setup — e.g. a plain sqlite3 connection with
// no vectorlite extension loaded, for exercising the planner/executor/
// snapshot paths that don't need it.
func NewWithDB(db *sql.DB, snapshotConfig snapshot.SnapshotConfig) *Engine {
	return &Engine{
		db:             db,
		planner:        planner.NewSQLitePlanner(db),
		executor:       executor.NewSQLiteExecutor(db),
		snapshotConfig: snapshotConfig,
	}
}

// Close releases the connection pool.
func (e *Engine) Close() error {
	return e.db.Close()
}

// CreateCollection brings a collection's payload table (the configured
// schema, or a minimal rowid-only table when none is set) and its ANN
// virtual table into existence in one transaction.
func (e *Engine) CreateCollection(ctx context.Context, cfg *model.CollectionConfig) error {
	plans, err := e.planner.PlanCreateCollection(cfg)
	if err != nil {
		return err
	}
	return e.executor.ExecuteCreateCollectionQuery(ctx, plans)
}

// Insert writes one point's payload row and ANN entry in one
// transaction, payload first so a payload constraint violation aborts
// before the ANN side is touched.
func (e *Engine) Insert(ctx context.Context, point *model.InsertPoint) error {
	plans, err := e.planner.PlanInsertQuery(ctx, point)
	if err != nil {
		return err
	}
	return e.executor.ExecuteInsertQuery(ctx, plans)
}

// Search runs a top-k nearest-neighbor query, optionally combined with
// a payload filter, selecting the hybrid strategy per the planner's
// selective/non-selective split.
func (e *Engine) Search(ctx context.Context, search *model.SearchPoint) ([]map[string]string, error) {
	plan, err := e.planner.PlanSearchQuery(ctx, search)
	if err != nil {
		return nil, err
	}
	return e.executor.ExecuteSearchQuery(ctx, plan)
}

// Delete removes one rowid's payload row and ANN entry in one
// transaction.
func (e *Engine) Delete(ctx context.Context, point *model.DeletePoint) error {
	plans, err := e.planner.PlanDeleteQuery(point)
	if err != nil {
		return err
	}
	return e.executor.ExecuteDeleteQuery(ctx, plans)
}

// DeleteCollection drops a collection's ANN virtual table and payload
// table in one transaction; fails if neither exists.
func (e *Engine) DeleteCollection(ctx context.Context, req *model.DeleteCollectionRequest) error {
	plans, err := e.planner.PlanDeleteCollectionQuery(ctx, req)
	if err != nil {
		return err
	}
	return e.executor.ExecuteDeleteCollectionQuery(ctx, plans)
}

// CollectionExists reports whether the schema catalog holds a table
// named name or its ANN table vt_vector_<name>; either one is enough.
func (e *Engine) CollectionExists(ctx context.Context, name string) (bool, error) {
	plan, err := e.planner.PlanCollectionExistsQuery(name)
	if err != nil {
		return false, err
	}
	return e.executor.ExecuteCollectionExistsQuery(ctx, plan)
}

// ExportSnapshot produces a streaming, checksum-verified backup of the
// live database (and, if configured, ANN index files). The caller
// owns the returned iterator and must drain or Close it.
func (e *Engine) ExportSnapshot(ctx context.Context) (*snapshot.ChunkIterator, error) {
	return snapshot.NewExporter(e.db, e.snapshotConfig).Export(ctx)
}

// ImportSnapshot restores a snapshot produced by ExportSnapshot (or a
// peer engine) into this engine's database, restoring ANN index files
// to indexFilePaths in metadata order.
func (e *Engine) ImportSnapshot(ctx context.Context, src snapshot.ChunkSource, indexFilePaths []string) (*snapshot.ImportResult, error) {
	imp := snapshot.NewImporter(e.db, e.snapshotConfig).WithIndexPaths(indexFilePaths)
	return imp.Import(ctx, src)
}
