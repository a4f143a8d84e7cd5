package planner

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/vxengine/vxengine/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestPlanCreateCollectionNoIndexPath(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	cfg := &model.CollectionConfig{
		CollectionName: "persons",
		Dimension:      4,
		Distance:       model.Cosine,
		MaxElements:    1000,
	}

	plans, err := p.PlanCreateCollection(cfg)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "CREATE TABLE persons (rowid INTEGER PRIMARY KEY)", plans[0].SQL)
	assert.Contains(t, plans[1].SQL, "create virtual table vt_vector_persons using vectorlite(vector_embedding float32[4] cosine, hnsw(max_elements=1000))")
}

func TestPlanCreateCollectionWithSchemaAndIndexPath(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	cfg := &model.CollectionConfig{
		CollectionName:     "persons",
		Dimension:          4,
		Distance:           model.L2,
		MaxElements:        500,
		PayloadTableSchema: "create table persons (rowid integer primary key, name text)",
		IndexFilePath:      "/var/lib/vx/persons.idx",
	}

	plans, err := p.PlanCreateCollection(cfg)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, cfg.PayloadTableSchema, plans[0].SQL)
	assert.Contains(t, plans[1].SQL, ", /var/lib/vx/persons.idx)")
	assert.Contains(t, plans[1].SQL, "hnsw(max_elements=500)")
}

func TestPlanInsertQueryWithDefaultPayload(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE persons (rowid INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)

	p := NewSQLitePlanner(db)
	point := &model.InsertPoint{CollectionName: "persons", ID: 7, Vector: []float32{1, 2, 3, 4}}

	plans, err := p.PlanInsertQuery(ctx, point)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Contains(t, plans[0].SQL, "INSERT INTO persons")
	assert.Contains(t, plans[0].SQL, "7")
	assert.Equal(t, "insert into vt_vector_persons(rowid, vector_embedding) values (?, vector_from_json(?))", plans[1].SQL)
	require.Len(t, plans[1].Params, 2)
	assert.Equal(t, int64(7), plans[1].Params[0])
	assert.Equal(t, "[1, 2, 3, 4]", plans[1].Params[1])
}

func TestPlanInsertQueryWithExplicitPayload(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	point := &model.InsertPoint{
		CollectionName:     "persons",
		ID:                 3,
		Vector:             []float32{1, 2},
		PayloadInsertQuery: "insert into persons (rowid, name) values (99, 'Alice')",
	}

	plans, err := p.PlanInsertQuery(context.Background(), point)
	require.NoError(t, err)
	assert.Equal(t, "insert into persons (rowid, name) values (3, 'Alice')", plans[0].SQL)
}

func TestPlanDeleteQuery(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	point := &model.DeletePoint{CollectionName: "persons", ID: 9}

	plans, err := p.PlanDeleteQuery(point)
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "DELETE FROM persons WHERE rowid = ?", plans[0].SQL)
	assert.Equal(t, "DELETE FROM vt_vector_persons WHERE rowid = ?", plans[1].SQL)
	assert.Equal(t, []any{int64(9)}, plans[0].Params)
}

func TestPlanCollectionExistsQuery(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE persons (rowid INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	p := NewSQLitePlanner(db)
	plan, err := p.PlanCollectionExistsQuery("persons")
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.QueryRowContext(ctx, plan.SQL, plan.Params...).Scan(&count))
	assert.Equal(t, int64(1), count)
}

func TestPlanDeleteCollectionQueryMissingCollection(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	_, err := p.PlanDeleteCollectionQuery(context.Background(), &model.DeleteCollectionRequest{CollectionName: "ghost"})
	require.Error(t, err)
}

func TestPlanDeleteCollectionQueryExistingCollection(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE persons (rowid INTEGER PRIMARY KEY)`)
	require.NoError(t, err)

	p := NewSQLitePlanner(db)
	plans, err := p.PlanDeleteCollectionQuery(ctx, &model.DeleteCollectionRequest{CollectionName: "persons"})
	require.NoError(t, err)
	require.Len(t, plans, 2)
	assert.Equal(t, "DROP TABLE IF EXISTS vt_vector_persons", plans[0].SQL)
	assert.Equal(t, "DROP TABLE IF EXISTS persons", plans[1].SQL)
}

func TestPlanSearchQueryNoFilter(t *testing.T) {
	p := NewSQLitePlanner(openTestDB(t))
	search := &model.SearchPoint{CollectionName: "persons", Vector: []float32{1, 2, 3}, TopK: 5}

	plan, err := p.PlanSearchQuery(context.Background(), search)
	require.NoError(t, err)
	assert.Contains(t, plan.SQL, "FROM vt_vector_persons")
	assert.Contains(t, plan.SQL, "ORDER BY distance")
	assert.NotNil(t, plan.PostProcess)
	assert.Equal(t, []any{"[1, 2, 3]", int64(5)}, plan.Params)
}

func TestPlanSearchQuerySelectiveFilter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE products (rowid INTEGER PRIMARY KEY, category TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `INSERT INTO products (rowid, category) VALUES (1, 'electronics')`)
	require.NoError(t, err)

	p := NewSQLitePlanner(db)
	search := &model.SearchPoint{
		CollectionName:     "products",
		Vector:             []float32{1, 2, 3},
		TopK:               10,
		PayloadSearchQuery: "SELECT * FROM products WHERE category = 'electronics'",
	}

	plan, err := p.PlanSearchQuery(ctx, search)
	require.NoError(t, err)
	assert.Contains(t, plan.SQL, "vt_inner.rowid in (SELECT rowid FROM products")
	assert.Contains(t, plan.SQL, "INNER JOIN (SELECT * FROM products WHERE category = 'electronics') AS pt")
	assert.Equal(t, []any{"[1, 2, 3]", int64(10)}, plan.Params)
}

func TestPlanSearchQueryNonSelectiveFilter(t *testing.T) {
	db := openTestDB(t)
	ctx := context.Background()
	_, err := db.ExecContext(ctx, `CREATE TABLE products (rowid INTEGER PRIMARY KEY, category TEXT)`)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, `
		INSERT INTO products (category)
		SELECT 'electronics' FROM (
			WITH RECURSIVE seq(n) AS (
				SELECT 1 UNION ALL SELECT n + 1 FROM seq WHERE n < 10001
			)
			SELECT n FROM seq
		)`)
	require.NoError(t, err)

	p := NewSQLitePlanner(db)
	search := &model.SearchPoint{
		CollectionName:     "products",
		Vector:             []float32{1, 2, 3},
		TopK:               10,
		PayloadSearchQuery: "SELECT * FROM products WHERE category = 'electronics'",
	}

	plan, err := p.PlanSearchQuery(ctx, search)
	require.NoError(t, err)
	assert.NotContains(t, plan.SQL, "vt_inner.rowid in")
	assert.Equal(t, []any{"[1, 2, 3]", int64(100), int64(10)}, plan.Params)
}
