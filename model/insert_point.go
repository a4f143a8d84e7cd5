package model

import (
	"errors"

	"github.com/vxengine/vxengine/sqlutil"
)

// InsertPoint is one vector-plus-payload row to write. If
// PayloadInsertQuery is empty the planner synthesizes a default
// INSERT via sqlutil.GenerateDefaultInsert.
type InsertPoint struct {
	CollectionName     string
	ID                 uint64
	Vector             []float32
	PayloadInsertQuery string
}

type InsertPointBuilder struct {
	collectionName     string
	id                 uint64
	idSet              bool
	vector             []float32
	vectorSet          bool
	payloadInsertQuery string
}

func NewInsertPointBuilder() *InsertPointBuilder {
	return &InsertPointBuilder{}
}

func (b *InsertPointBuilder) CollectionName(name string) *InsertPointBuilder {
	b.collectionName = name
	return b
}

func (b *InsertPointBuilder) ID(id uint64) *InsertPointBuilder {
	b.id = id
	b.idSet = true
	return b
}

func (b *InsertPointBuilder) Vector(v []float32) *InsertPointBuilder {
	b.vector = v
	b.vectorSet = true
	return b
}

func (b *InsertPointBuilder) PayloadInsertQuery(query string) *InsertPointBuilder {
	b.payloadInsertQuery = query
	return b
}

func (b *InsertPointBuilder) Build() (*InsertPoint, error) {
	if b.collectionName == "" && b.payloadInsertQuery == "" {
		return nil, errors.New("Either collection_name or payload_insert_query must be provided.")
	}
	if !b.vectorSet || b.vector == nil {
		return nil, errors.New("Vector must be provided.")
	}
	if !b.idSet {
		return nil, errors.New("Rowid must be provided.")
	}

	name := b.collectionName
	if parsed, ok := sqlutil.ParseCollectionName(b.payloadInsertQuery); ok {
		name = parsed
	}

	return &InsertPoint{
		CollectionName:     name,
		ID:                 b.id,
		Vector:             b.vector,
		PayloadInsertQuery: b.payloadInsertQuery,
	}, nil
}
