package directustool

import (
	"context"
	"errors"
	"fmt"
	"time"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

// FlowTriggerName is the name of the flow trigger tool.
const FlowTriggerName = "directus_trigger_flow"

// CodeFlowTimeout is reported when a flow does not complete in time.
const CodeFlowTimeout = "FLOW_TIMEOUT"

var flowTriggerParams = agenttool.Parameters{
	agenttool.Param("flow_id", agenttool.String("Id of a flow with a webhook trigger").AsRequired()),
	agenttool.Param("method", agenttool.String("HTTP method configured on the trigger").WithEnum("GET", "POST").WithDefault("POST")),
	agenttool.Param("data", agenttool.Object("Payload passed to the flow")),
	agenttool.Param("wait_for_completion", agenttool.Boolean("Wait until the flow run shows up in the activity log").WithDefault(false)),
	agenttool.Param("timeout_ms", agenttool.Integer("Maximum wait in milliseconds").WithDefault(30000)),
	agenttool.Param("poll_interval_ms", agenttool.Integer("Activity polling interval in milliseconds").WithDefault(1000)),
}

// NewFlowTrigger returns the tool that triggers Directus flows.
func NewFlowTrigger(client Client, opts ...agenttool.ToolOption) (agenttool.Tool, error) {
	cfg := agenttool.ToolConfig{
		Name:        FlowTriggerName,
		Description: "Trigger a Directus flow through its webhook and optionally wait for it to finish.",
		Category:    CategoryFlows,
		Parameters:  flowTriggerParams,
		Examples: []agenttool.Example{{
			Description: "Trigger a flow and wait",
			Arguments:   map[string]any{"flow_id": "7c8e...", "data": map[string]any{"order_id": 42}, "wait_for_completion": true},
		}},
	}
	run := func(ctx context.Context, params map[string]any) (any, error) {
		args := agenttool.Args(params)
		flowID := args.String("flow_id")
		method := args.String("method")
		started := time.Now()
		response, err := client.TriggerFlow(ctx, flowID, method, args.Object("data"))
		if err != nil {
			return nil, err
		}
		out := map[string]any{"flow_id": flowID, "method": method, "response": response}
		if !args.Bool("wait_for_completion") {
			return out, nil
		}

		timeout := time.Duration(args.Int("timeout_ms")) * time.Millisecond
		waitCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		entry, err := client.PollFlowExecution(waitCtx, flowID, started,
			time.Duration(args.Int("poll_interval_ms"))*time.Millisecond)
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, agenttool.WrapError(CodeFlowTimeout,
				fmt.Errorf("flow %s did not complete within %s: %w", flowID, timeout, err))
		}
		if err != nil {
			return nil, err
		}
		out["completed"] = true
		out["execution"] = entry
		return out, nil
	}
	return agenttool.New(cfg, run, opts...)
}
