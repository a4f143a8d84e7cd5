package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceFunctionAsSQLToken(t *testing.T) {
	assert.Equal(t, "l2", L2.AsSQLToken())
	assert.Equal(t, "cosine", Cosine.AsSQLToken())
	assert.Equal(t, "ip", InnerProduct.AsSQLToken())
}

func TestCollectionConfigBuilderDefaults(t *testing.T) {
	cfg, err := NewCollectionConfigBuilder().CollectionName("products").Build()
	require.NoError(t, err)
	assert.Equal(t, "products", cfg.CollectionName)
	assert.EqualValues(t, 3, cfg.Dimension)
	assert.Equal(t, Cosine, cfg.Distance)
	assert.EqualValues(t, 100000, cfg.MaxElements)
}

func TestCollectionConfigBuilderInfersNameFromSchema(t *testing.T) {
	cfg, err := NewCollectionConfigBuilder().
		PayloadTableSchema("create table persons (rowid integer primary key, name text)").
		Build()
	require.NoError(t, err)
	assert.Equal(t, "persons", cfg.CollectionName)
}

func TestCollectionConfigBuilderRequiresNameOrSchema(t *testing.T) {
	_, err := NewCollectionConfigBuilder().Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "collection_name or payload_table_schema")
}

func TestCollectionConfigBuilderRejectsInvalidName(t *testing.T) {
	_, err := NewCollectionConfigBuilder().CollectionName("1bad-name").Build()
	require.Error(t, err)
}

func TestInsertPointBuilder(t *testing.T) {
	p, err := NewInsertPointBuilder().
		CollectionName("products").
		ID(7).
		Vector([]float32{1, 2, 3}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, uint64(7), p.ID)
	assert.Equal(t, "products", p.CollectionName)
}

func TestInsertPointBuilderRequiresVector(t *testing.T) {
	_, err := NewInsertPointBuilder().CollectionName("products").ID(1).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Vector must be provided")
}

func TestInsertPointBuilderInfersNameFromQuery(t *testing.T) {
	p, err := NewInsertPointBuilder().
		PayloadInsertQuery("insert into products (category) values ('x')").
		ID(1).
		Vector([]float32{1}).
		Build()
	require.NoError(t, err)
	assert.Equal(t, "products", p.CollectionName)
}

func TestSearchPointBuilderDefaultsTopK(t *testing.T) {
	p, err := NewSearchPointBuilder().CollectionName("products").Vector([]float32{1, 2}).Build()
	require.NoError(t, err)
	assert.EqualValues(t, 10, p.TopK)
}

func TestSearchPointBuilderRejectsNonPositiveTopK(t *testing.T) {
	_, err := NewSearchPointBuilder().CollectionName("products").Vector([]float32{1}).TopK(0).Build()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "top_k must be greater than 0")
}

func TestDeletePointBuilder(t *testing.T) {
	_, err := NewDeletePointBuilder().ID(1).Build()
	require.Error(t, err)

	_, err = NewDeletePointBuilder().CollectionName("products").Build()
	require.Error(t, err)

	p, err := NewDeletePointBuilder().CollectionName("products").ID(5).Build()
	require.NoError(t, err)
	assert.EqualValues(t, 5, p.ID)
}

func TestDeleteCollectionRequestBuilder(t *testing.T) {
	_, err := NewDeleteCollectionRequestBuilder().Build()
	require.Error(t, err)

	req, err := NewDeleteCollectionRequestBuilder().CollectionName("products").Build()
	require.NoError(t, err)
	assert.Equal(t, "products", req.CollectionName)
}
