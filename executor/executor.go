// Package executor runs planner-produced QueryPlans against a pooled
// SQLite connection. Write paths execute inside one transaction;
// search runs a single prepared statement and maps rows through the
// plan's post-processor.
package executor

import (
	"context"

	"github.com/vxengine/vxengine/model"
)

// QueryExecutor mirrors the Rust query_executor trait: one method per
// plan-kind, never mixing kinds within a call.
type QueryExecutor interface {
	ExecuteCreateCollectionQuery(ctx context.Context, plans []model.QueryPlan) error
	ExecuteInsertQuery(ctx context.Context, plans []model.QueryPlan) error
	ExecuteDeleteQuery(ctx context.Context, plans []model.QueryPlan) error
	ExecuteDeleteCollectionQuery(ctx context.Context, plans []model.QueryPlan) error
	ExecuteSearchQuery(ctx context.Context, plan model.QueryPlan) ([]map[string]string, error)
	ExecuteCollectionExistsQuery(ctx context.Context, plan model.QueryPlan) (bool, error)
}
