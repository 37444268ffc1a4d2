package directustool

import (
	"context"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/directus"
)

// ActivityQueryName is the name of the activity query tool.
const ActivityQueryName = "directus_query_activity"

var activityActions = []any{"create", "update", "delete", "login", "comment", "run"}

var activityQueryParams = agenttool.Parameters{
	agenttool.Param("action", agenttool.String("Only entries with this action").WithEnum(activityActions...)),
	agenttool.Param("collection", agenttool.String("Only entries for this collection")),
	agenttool.Param("item", agenttool.String("Only entries for this item id")),
	agenttool.Param("user", agenttool.String("Only entries by this user id")),
	agenttool.Param("date_from", agenttool.String("ISO 8601 lower bound of the timestamp")),
	agenttool.Param("date_to", agenttool.String("ISO 8601 upper bound of the timestamp")),
	agenttool.Param("limit", agenttool.Integer("Maximum number of entries").WithDefault(50)),
	agenttool.Param("sort", agenttool.Array("Sort fields", agenttool.String("")).WithDefault([]any{"-timestamp"})),
}

// NewActivityQuery returns the read-only tool that queries the activity log.
func NewActivityQuery(client Client, opts ...agenttool.ToolOption) (agenttool.Tool, error) {
	cfg := agenttool.ToolConfig{
		Name:        ActivityQueryName,
		Description: "Query the Directus activity log (who changed what, and when).",
		Category:    CategoryActivity,
		Parameters:  activityQueryParams,
		Examples: []agenttool.Example{{
			Description: "Recent deletions in articles",
			Arguments:   map[string]any{"action": "delete", "collection": "articles", "limit": 10},
		}},
	}
	run := func(ctx context.Context, params map[string]any) (any, error) {
		args := agenttool.Args(params)
		resp, err := client.Activity(ctx, directus.Query{
			Filter: activityFilter(args),
			Sort:   args.Strings("sort"),
			Limit:  args.Int("limit"),
		})
		if err != nil {
			return nil, err
		}
		return map[string]any{"data": resp.Data}, nil
	}
	return agenttool.New(cfg, run, append([]agenttool.ToolOption{agenttool.WithReadOnly()}, opts...)...)
}

// activityFilter builds an _and filter from the set arguments; nil when none is set.
func activityFilter(args agenttool.Args) map[string]any {
	var conds []any
	eq := func(field, value string) {
		if value != "" {
			conds = append(conds, map[string]any{field: map[string]any{"_eq": value}})
		}
	}
	eq("action", args.String("action"))
	eq("collection", args.String("collection"))
	eq("item", args.String("item"))
	eq("user", args.String("user"))
	if from := args.String("date_from"); from != "" {
		conds = append(conds, map[string]any{"timestamp": map[string]any{"_gte": from}})
	}
	if to := args.String("date_to"); to != "" {
		conds = append(conds, map[string]any{"timestamp": map[string]any{"_lte": to}})
	}
	if len(conds) == 0 {
		return nil
	}
	return map[string]any{"_and": conds}
}
