// Package planner turns validated model requests into ordered lists of
// parameterized SQL plans. Planning reads the database in three places
// only: the best-effort row count for the hybrid search strategy
// selector, the table_info introspection behind a default payload
// insert, and the existence check before deleting a collection (which
// fails when the collection does not exist). Otherwise it only fails
// on malformed input.
package planner

import (
	"context"

	"github.com/vxengine/vxengine/model"
)

// QueryPlanner mirrors the Rust query_planner trait: one method per
// operation kind, each returning the plans the executor must run, in
// order.
type QueryPlanner interface {
	PlanCreateCollection(cfg *model.CollectionConfig) ([]model.QueryPlan, error)
	PlanInsertQuery(ctx context.Context, point *model.InsertPoint) ([]model.QueryPlan, error)
	PlanDeleteQuery(point *model.DeletePoint) ([]model.QueryPlan, error)
	PlanDeleteCollectionQuery(ctx context.Context, req *model.DeleteCollectionRequest) ([]model.QueryPlan, error)
	PlanSearchQuery(ctx context.Context, search *model.SearchPoint) (model.QueryPlan, error)
	PlanCollectionExistsQuery(collectionName string) (model.QueryPlan, error)
}
