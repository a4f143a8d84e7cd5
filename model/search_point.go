package model

import (
	"errors"

	"github.com/vxengine/vxengine/sqlutil"
)

const defaultTopK = 10

// SearchPoint is a nearest-neighbor query: a query vector, how many
// results to return, and an optional payload filter query that
// constrains (and is joined back onto) the result set.
type SearchPoint struct {
	CollectionName     string
	Vector             []float32
	TopK               int64
	PayloadSearchQuery string
}

type SearchPointBuilder struct {
	collectionName     string
	vector             []float32
	vectorSet          bool
	topK               int64
	topKSet            bool
	payloadSearchQuery string
}

func NewSearchPointBuilder() *SearchPointBuilder {
	return &SearchPointBuilder{}
}

func (b *SearchPointBuilder) CollectionName(name string) *SearchPointBuilder {
	b.collectionName = name
	return b
}

func (b *SearchPointBuilder) Vector(v []float32) *SearchPointBuilder {
	b.vector = v
	b.vectorSet = true
	return b
}

func (b *SearchPointBuilder) TopK(topK int64) *SearchPointBuilder {
	b.topK = topK
	b.topKSet = true
	return b
}

func (b *SearchPointBuilder) PayloadSearchQuery(query string) *SearchPointBuilder {
	b.payloadSearchQuery = query
	return b
}

func (b *SearchPointBuilder) Build() (*SearchPoint, error) {
	if b.collectionName == "" && b.payloadSearchQuery == "" {
		return nil, errors.New("Either collection_name or payload_search_query must be provided.")
	}
	if !b.vectorSet || b.vector == nil {
		return nil, errors.New("Vector must be provided.")
	}

	topK := int64(defaultTopK)
	if b.topKSet {
		topK = b.topK
	}
	if topK <= 0 {
		return nil, errors.New("top_k must be greater than 0.")
	}

	name := b.collectionName
	if parsed, ok := sqlutil.ParseCollectionName(b.payloadSearchQuery); ok {
		name = parsed
	}

	return &SearchPoint{
		CollectionName:     name,
		Vector:             b.vector,
		TopK:               topK,
		PayloadSearchQuery: b.payloadSearchQuery,
	}, nil
}
