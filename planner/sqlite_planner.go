package planner

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/vxengine/vxengine/model"
	"github.com/vxengine/vxengine/sqlutil"
	"github.com/vxengine/vxengine/vxerr"
)

// selectiveThreshold and oversampleFactor are the hybrid-search tuning
// constants: below the threshold the payload filter is pushed into the
// ANN traversal as a rowid set; at or above it the ANN side is
// oversampled and post-filtered by a join instead.
const (
	selectiveThreshold = 10_000
	oversampleFactor   = 10
)

// SQLitePlanner is the only QueryPlanner implementation: it targets a
// SQLite database extended with the vectorlite virtual-table module.
// Planning is pure except for the best-effort payload row count used
// by the search strategy selector.
type SQLitePlanner struct {
	db *sql.DB
}

func NewSQLitePlanner(db *sql.DB) *SQLitePlanner {
	return &SQLitePlanner{db: db}
}

var _ QueryPlanner = (*SQLitePlanner)(nil)

func (p *SQLitePlanner) PlanCreateCollection(cfg *model.CollectionConfig) ([]model.QueryPlan, error) {
	if cfg.CollectionName == "" {
		return nil, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	var plans []model.QueryPlan

	if cfg.PayloadTableSchema != "" {
		plans = append(plans, model.QueryPlan{SQL: cfg.PayloadTableSchema})
	} else {
		plans = append(plans, model.QueryPlan{
			SQL: fmt.Sprintf("CREATE TABLE %s (rowid INTEGER PRIMARY KEY)", cfg.CollectionName),
		})
	}

	vtable := sqlutil.VectorTableName(cfg.CollectionName)
	virtualTableQuery := fmt.Sprintf(
		"create virtual table %s using vectorlite(vector_embedding float32[%d] %s, hnsw(max_elements=%d))",
		vtable, cfg.Dimension, cfg.Distance.AsSQLToken(), cfg.MaxElements,
	)

	if cfg.IndexFilePath != "" {
		virtualTableQuery = virtualTableQuery[:len(virtualTableQuery)-1] + ", " + cfg.IndexFilePath + ")"
	}

	plans = append(plans, model.QueryPlan{SQL: virtualTableQuery})

	return plans, nil
}

func (p *SQLitePlanner) PlanInsertQuery(ctx context.Context, point *model.InsertPoint) ([]model.QueryPlan, error) {
	if point.CollectionName == "" {
		return nil, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	payloadInsertQuery := point.PayloadInsertQuery
	if payloadInsertQuery == "" {
		generated, err := sqlutil.GenerateDefaultInsert(ctx, p.db, point.CollectionName)
		if err != nil {
			return nil, err
		}
		payloadInsertQuery = generated
	}

	plans := []model.QueryPlan{
		{SQL: sqlutil.InjectRowid(payloadInsertQuery, point.ID)},
	}

	vtable := sqlutil.VectorTableName(point.CollectionName)
	vectorJSON := vectorToJSON(point.Vector)

	plans = append(plans, model.QueryPlan{
		SQL:    fmt.Sprintf("insert into %s(rowid, vector_embedding) values (?, vector_from_json(?))", vtable),
		Params: []any{int64(point.ID), vectorJSON},
	})

	return plans, nil
}

func (p *SQLitePlanner) PlanDeleteQuery(point *model.DeletePoint) ([]model.QueryPlan, error) {
	if point.CollectionName == "" {
		return nil, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	vtable := sqlutil.VectorTableName(point.CollectionName)
	id := int64(point.ID)

	return []model.QueryPlan{
		{SQL: fmt.Sprintf("DELETE FROM %s WHERE rowid = ?", point.CollectionName), Params: []any{id}},
		{SQL: fmt.Sprintf("DELETE FROM %s WHERE rowid = ?", vtable), Params: []any{id}},
	}, nil
}

func (p *SQLitePlanner) PlanDeleteCollectionQuery(ctx context.Context, req *model.DeleteCollectionRequest) ([]model.QueryPlan, error) {
	if req.CollectionName == "" {
		return nil, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	existsPlan, err := p.PlanCollectionExistsQuery(req.CollectionName)
	if err != nil {
		return nil, err
	}
	var count int64
	if err := p.db.QueryRowContext(ctx, existsPlan.SQL, existsPlan.Params...).Scan(&count); err != nil {
		return nil, vxerr.FromSQL(err)
	}
	if count == 0 {
		return nil, vxerr.New(vxerr.InvalidQuery, "collection %q does not exist", req.CollectionName)
	}

	vtable := sqlutil.VectorTableName(req.CollectionName)

	return []model.QueryPlan{
		{SQL: fmt.Sprintf("DROP TABLE IF EXISTS %s", vtable)},
		{SQL: fmt.Sprintf("DROP TABLE IF EXISTS %s", req.CollectionName)},
	}, nil
}

func (p *SQLitePlanner) PlanCollectionExistsQuery(collectionName string) (model.QueryPlan, error) {
	if collectionName == "" {
		return model.QueryPlan{}, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	vtable := sqlutil.VectorTableName(collectionName)
	return model.QueryPlan{
		SQL:    "SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN (?, ?)",
		Params: []any{collectionName, vtable},
	}, nil
}

func (p *SQLitePlanner) PlanSearchQuery(ctx context.Context, search *model.SearchPoint) (model.QueryPlan, error) {
	if search.CollectionName == "" {
		return model.QueryPlan{}, vxerr.New(vxerr.InvalidQuery, "collection name must not be empty")
	}

	vtable := sqlutil.VectorTableName(search.CollectionName)
	vectorJSON := vectorToJSON(search.Vector)
	mapper := model.RowMapper(sqlutil.RowToStringMap)

	if search.PayloadSearchQuery == "" {
		sql := fmt.Sprintf(
			"SELECT rowid, distance FROM %s WHERE knn_search(vector_embedding, knn_param(vector_from_json(?1), ?2)) ORDER BY distance",
			vtable,
		)
		return model.QueryPlan{
			SQL:         sql,
			Params:      []any{vectorJSON, search.TopK},
			PostProcess: mapper,
		}, nil
	}

	payloadQuery := search.PayloadSearchQuery
	count := p.bestEffortRowCount(ctx, sqlutil.ReplaceSelectWithCount(payloadQuery))

	if count < selectiveThreshold {
		payloadQueryIDs := sqlutil.ReplaceSelectWithRowids(payloadQuery)
		sql := fmt.Sprintf(
			`SELECT vt.rowid, vt.distance, pt.*
FROM (
	SELECT vt_inner.rowid, vt_inner.distance
	FROM %s as vt_inner
	WHERE knn_search(vt_inner.vector_embedding, knn_param(vector_from_json(?1), ?2))
	AND vt_inner.rowid in (%s)
) AS vt
INNER JOIN (%s) AS pt
	ON vt.rowid = pt.rowid
ORDER BY vt.distance LIMIT ?2`,
			vtable, payloadQueryIDs, payloadQuery,
		)
		return model.QueryPlan{
			SQL:         sql,
			Params:      []any{vectorJSON, search.TopK},
			PostProcess: mapper,
		}, nil
	}

	sql := fmt.Sprintf(
		`SELECT vt.rowid, vt.distance, pt.*
FROM (
	SELECT vt_inner.rowid, vt_inner.distance
	FROM %s as vt_inner
	WHERE knn_search(vt_inner.vector_embedding, knn_param(vector_from_json(?1), ?2))
) AS vt
INNER JOIN (%s) AS pt
	ON vt.rowid = pt.rowid
ORDER BY vt.distance LIMIT ?3`,
		vtable, payloadQuery,
	)
	return model.QueryPlan{
		SQL:         sql,
		Params:      []any{vectorJSON, oversampleFactor * search.TopK, search.TopK},
		PostProcess: mapper,
	}, nil
}

// bestEffortRowCount runs the COUNT-rewritten payload query and
// returns 0 on any failure, matching the Rust planner's
// unwrap_or(0) — a malformed or unauthorized filter degrades to the
// selective (rowid push-down) search path rather than failing search.
func (p *SQLitePlanner) bestEffortRowCount(ctx context.Context, countQuery string) int64 {
	var count int64
	if err := p.db.QueryRowContext(ctx, countQuery).Scan(&count); err != nil {
		return 0
	}
	return count
}
