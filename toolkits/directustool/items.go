package directustool

import (
	"context"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/directus"
)

// ItemQueryName is the name of the item query tool.
const ItemQueryName = "directus_query_items"

const defaultItemLimit = 100

var itemQueryParams = agenttool.Parameters{
	agenttool.Param("collection", agenttool.String("Collection to read, e.g. \"articles\" or \"directus_users\"").AsRequired()),
	agenttool.Param("fields", agenttool.Array("Fields to return; supports dot notation for relations", agenttool.String(""))),
	agenttool.Param("filter", agenttool.Object("Directus filter object, e.g. {\"status\":{\"_eq\":\"published\"}}")),
	agenttool.Param("sort", agenttool.Array("Sort fields; prefix with - for descending", agenttool.String(""))),
	agenttool.Param("limit", agenttool.Integer("Maximum number of items").WithDefault(defaultItemLimit)),
	agenttool.Param("offset", agenttool.Integer("Number of items to skip")),
	agenttool.Param("search", agenttool.String("Full-text search across string fields")),
}

// NewItemQuery returns the read-only tool that queries collection items.
func NewItemQuery(client Client, opts ...agenttool.ToolOption) (agenttool.Tool, error) {
	cfg := agenttool.ToolConfig{
		Name:        ItemQueryName,
		Description: "Query items from a Directus collection with optional filtering, sorting and pagination.",
		Category:    CategoryItems,
		Parameters:  itemQueryParams,
		Examples: []agenttool.Example{{
			Description: "Latest five published articles",
			Arguments: map[string]any{
				"collection": "articles",
				"filter":     map[string]any{"status": map[string]any{"_eq": "published"}},
				"sort":       []any{"-date_created"},
				"limit":      5,
			},
		}},
	}
	run := func(ctx context.Context, params map[string]any) (any, error) {
		args := agenttool.Args(params)
		resp, err := client.Items(ctx, args.String("collection"), directus.Query{
			Fields: args.Strings("fields"),
			Filter: args.Object("filter"),
			Sort:   args.Strings("sort"),
			Limit:  args.Int("limit"),
			Offset: args.Int("offset"),
			Search: args.String("search"),
		})
		if err != nil {
			return nil, err
		}
		out := map[string]any{"data": resp.Data}
		if len(resp.Meta) > 0 {
			out["meta"] = resp.Meta
		}
		return out, nil
	}
	return agenttool.New(cfg, run, append([]agenttool.ToolOption{agenttool.WithReadOnly()}, opts...)...)
}
