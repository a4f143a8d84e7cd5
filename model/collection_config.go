package model

import (
	"errors"

	"github.com/vxengine/vxengine/sqlutil"
)

const (
	defaultDimension   = 3
	defaultMaxElements = 100000
)

// CollectionConfig describes the payload table and ANN index a
// CreateCollection call should bring into existence. Immutable once
// built; planners read it, never mutate it.
type CollectionConfig struct {
	CollectionName     string
	Dimension          uint16
	Distance           DistanceFunction
	IndexFilePath      string
	MaxElements        uint32
	PayloadTableSchema string
}

// CollectionConfigBuilder accumulates CollectionConfig fields before
// validation in Build.
type CollectionConfigBuilder struct {
	name               string
	dimension          uint16
	dimensionSet       bool
	distance           DistanceFunction
	distanceSet        bool
	indexFilePath      string
	maxElements        uint32
	maxElementsSet     bool
	payloadTableSchema string
}

func NewCollectionConfigBuilder() *CollectionConfigBuilder {
	return &CollectionConfigBuilder{}
}

func (b *CollectionConfigBuilder) CollectionName(name string) *CollectionConfigBuilder {
	b.name = name
	return b
}

func (b *CollectionConfigBuilder) VectorDimension(dim uint16) *CollectionConfigBuilder {
	b.dimension = dim
	b.dimensionSet = true
	return b
}

func (b *CollectionConfigBuilder) WithDistance(dist DistanceFunction) *CollectionConfigBuilder {
	b.distance = dist
	b.distanceSet = true
	return b
}

func (b *CollectionConfigBuilder) PayloadTableSchema(schema string) *CollectionConfigBuilder {
	b.payloadTableSchema = schema
	return b
}

func (b *CollectionConfigBuilder) IndexFilePath(path string) *CollectionConfigBuilder {
	b.indexFilePath = path
	return b
}

func (b *CollectionConfigBuilder) MaxElements(max uint32) *CollectionConfigBuilder {
	b.maxElements = max
	b.maxElementsSet = true
	return b
}

// Build validates and materializes the CollectionConfig. Either a
// collection name or a payload table schema (from which the name is
// inferred) must be present; the collection name must match
// [A-Za-z_][A-Za-z0-9_]*.
func (b *CollectionConfigBuilder) Build() (*CollectionConfig, error) {
	if b.name == "" && b.payloadTableSchema == "" {
		return nil, errors.New("Either collection_name or payload_table_schema must be provided.")
	}

	name := b.name
	if parsed, ok := sqlutil.ParseCollectionName(b.payloadTableSchema); ok {
		name = parsed
	}
	if name == "" {
		return nil, errors.New("Either collection_name or payload_table_schema must be provided.")
	}
	if !sqlutil.ValidCollectionName(name) {
		return nil, errors.New("Collection name must match [A-Za-z_][A-Za-z0-9_]*.")
	}

	dimension := uint16(defaultDimension)
	if b.dimensionSet {
		dimension = b.dimension
	}

	distance := Cosine
	if b.distanceSet {
		distance = b.distance
	}

	maxElements := uint32(defaultMaxElements)
	if b.maxElementsSet {
		maxElements = b.maxElements
	}

	return &CollectionConfig{
		CollectionName:     name,
		Dimension:          dimension,
		Distance:           distance,
		IndexFilePath:      b.indexFilePath,
		MaxElements:        maxElements,
		PayloadTableSchema: b.payloadTableSchema,
	}, nil
}
