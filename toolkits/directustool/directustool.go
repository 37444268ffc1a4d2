// Package directustool provides the Directus agent tools: item queries, user
// management, flow triggering and activity log queries.
package directustool

import (
	"context"
	"time"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/directus"
)

// Client is the subset of *directus.Client used by the tools.
type Client interface {
	Items(ctx context.Context, collection string, q directus.Query) (*directus.Response, error)
	Activity(ctx context.Context, q directus.Query) (*directus.Response, error)
	CreateUser(ctx context.Context, in directus.UserInput) (map[string]any, error)
	InviteUser(ctx context.Context, email, role, inviteURL string) error
	TriggerFlow(ctx context.Context, flowID, method string, payload map[string]any) (any, error)
	PollFlowExecution(ctx context.Context, flowID string, since time.Time, interval time.Duration) (map[string]any, error)
}

var _ Client = (*directus.Client)(nil)

// Categories used by the tools.
const (
	CategoryItems    = "items"
	CategoryUsers    = "users"
	CategoryFlows    = "flows"
	CategoryActivity = "activity"
)

// All returns every Directus tool bound to client: item query, user
// management, flow trigger and activity query, in that order.
func All(client Client, opts ...agenttool.ToolOption) ([]agenttool.Tool, error) {
	ctors := []func(Client, ...agenttool.ToolOption) (agenttool.Tool, error){
		NewItemQuery,
		NewUserManagement,
		NewFlowTrigger,
		NewActivityQuery,
	}
	tools := make([]agenttool.Tool, 0, len(ctors))
	for _, ctor := range ctors {
		t, err := ctor(client, opts...)
		if err != nil {
			return nil, err
		}
		tools = append(tools, t)
	}
	return tools, nil
}

// Register adds every Directus tool to reg.
func Register(reg *agenttool.Registry, client Client, opts ...agenttool.ToolOption) error {
	tools, err := All(client, opts...)
	if err != nil {
		return err
	}
	return reg.RegisterMany(tools...)
}
