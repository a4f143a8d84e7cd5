package engine

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vxengine/vxengine/model"
	"github.com/vxengine/vxengine/snapshot"
)

// newTestEngine builds an Engine around the plain sqlite3 driver (no
// vectorlite extension loaded), enough to exercise the payload-side of
// create/insert/delete/exists and the snapshot subsystem, none of
// which depend on the ANN virtual table.
func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := snapshot.DefaultSnapshotConfig()
	cfg.TempDir = t.TempDir()
	cfg.IncludeIndexFiles = false
	return NewWithDB(db, cfg)
}

// createPayloadOnly exercises only the payload side of CreateCollection
// (the plan the planner emits first), skipping the ANN virtual table
// plan since these tests open their pool with the plain sqlite3 driver
// and no vectorlite module registered — see connpool's DESIGN.md entry.
func createPayloadOnly(t *testing.T, e *Engine, ctx context.Context, cfg *model.CollectionConfig) {
	t.Helper()
	plans, err := e.planner.PlanCreateCollection(cfg)
	require.NoError(t, err)
	_, err = e.db.ExecContext(ctx, plans[0].SQL)
	require.NoError(t, err)
}

func TestCreateCollectionAndExists(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	cfg, err := model.NewCollectionConfigBuilder().
		PayloadTableSchema("CREATE TABLE persons (rowid INTEGER PRIMARY KEY, name TEXT)").
		Build()
	require.NoError(t, err)

	createPayloadOnly(t, e, ctx, cfg)

	exists, err := e.CollectionExists(ctx, "persons")
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = e.CollectionExists(ctx, "ghosts")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestDeleteCollectionRequiresExistence(t *testing.T) {
	e := newTestEngine(t)
	ctx := context.Background()

	req, err := model.NewDeleteCollectionRequestBuilder().CollectionName("missing").Build()
	require.NoError(t, err)

	err = e.DeleteCollection(ctx, req)
	require.Error(t, err)
}

func TestSnapshotRoundTripThroughEngine(t *testing.T) {
	ctx := context.Background()
	source := newTestEngine(t)
	dest := newTestEngine(t)

	cfg, err := model.NewCollectionConfigBuilder().
		PayloadTableSchema("CREATE TABLE notes (rowid INTEGER PRIMARY KEY, body TEXT)").
		Build()
	require.NoError(t, err)
	createPayloadOnly(t, source, ctx, cfg)

	_, err = source.db.ExecContext(ctx, "INSERT INTO notes (rowid, body) VALUES (1, 'hello')")
	require.NoError(t, err)

	it, err := source.ExportSnapshot(ctx)
	require.NoError(t, err)
	defer it.Close()

	var chunks []snapshot.Chunk
	for {
		c, ok, err := it.Next()
		require.NoError(t, err)
		if !ok {
			break
		}
		chunks = append(chunks, c)
	}

	result, err := dest.ImportSnapshot(ctx, sliceSource(chunks), nil)
	require.NoError(t, err)
	assert.True(t, result.Success)

	var body string
	require.NoError(t, dest.db.QueryRowContext(ctx, "SELECT body FROM notes WHERE rowid = 1").Scan(&body))
	assert.Equal(t, "hello", body)
}

// sliceSource adapts an in-memory chunk slice to snapshot.ChunkSource
// for tests that collect chunks themselves instead of using
// Exporter.ExportToMemory.
type sliceChunks struct {
	chunks []snapshot.Chunk
	idx    int
}

func (s *sliceChunks) Next() (snapshot.Chunk, bool, error) {
	if s.idx >= len(s.chunks) {
		return snapshot.Chunk{}, false, nil
	}
	c := s.chunks[s.idx]
	s.idx++
	return c, true, nil
}

func sliceSource(chunks []snapshot.Chunk) snapshot.ChunkSource {
	return &sliceChunks{chunks: chunks}
}
