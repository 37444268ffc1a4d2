package agenttool

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// MetaCallID is the metadata field holding the tool call id set by Registry.Execute.
const MetaCallID = "callId"

// Registry maps tool names to tools. Names are unique: registering a second
// tool under an existing name fails and keeps the first. Listing methods return
// tools in registration order. A Registry is safe for concurrent use.
type Registry struct {
	mu          sync.RWMutex
	tools       map[string]Tool // wrapped with middlewares, used by Execute
	rawTools    map[string]Tool // unwrapped, used by Use() to re-apply middlewares from scratch
	order       []string
	middlewares []Middleware
	opts        registryOptions
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	o := registryOptions{
		timeout:        30 * time.Second,
		maxConcurrency: 4,
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return &Registry{
		tools:    make(map[string]Tool),
		rawTools: make(map[string]Tool),
		opts:     o,
	}
}

// Register adds a tool. Stored middlewares (see Use) are applied to it.
// It returns a *DuplicateToolError if the name is taken.
func (r *Registry) Register(t Tool) error {
	if t == nil {
		return fmt.Errorf("%w: nil tool", ErrInvalidTool)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	name := t.Name()
	if _, exists := r.rawTools[name]; exists {
		return &DuplicateToolError{Name: name}
	}
	r.rawTools[name] = t
	r.tools[name] = wrap(t, r.middlewares)
	r.order = append(r.order, name)
	r.opts.logger.Debug("tool registered", "tool", name, "category", t.Category())
	return nil
}

// RegisterMany registers tools in order and stops at the first failure.
// Tools registered before the failure stay registered.
func (r *Registry) RegisterMany(tools ...Tool) error {
	for _, t := range tools {
		if err := r.Register(t); err != nil {
			return err
		}
	}
	return nil
}

// GetTool returns the tool with the given name (after middlewares are applied).
func (r *Registry) GetTool(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.tools[name]
	return t, ok
}

// GetAllTools returns a snapshot of all registered tools.
func (r *Registry) GetAllTools() []Tool {
	return r.filter(func(Tool) bool { return true })
}

// GetToolsByCategory returns the tools whose category equals category exactly.
// Uncategorized tools never match.
func (r *Registry) GetToolsByCategory(category string) []Tool {
	return r.filter(func(t Tool) bool {
		return t.Category() != "" && t.Category() == category
	})
}

func (r *Registry) filter(keep func(Tool) bool) []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Tool, 0, len(r.order))
	for _, name := range r.order {
		if t := r.tools[name]; keep(t) {
			out = append(out, t)
		}
	}
	return out
}

// OpenAIFunctions returns the function descriptions of all tools.
func (r *Registry) OpenAIFunctions() []Function {
	return functions(r.GetAllTools())
}

// OpenAIFunctionsByCategory returns the function descriptions of the tools in category.
func (r *Registry) OpenAIFunctionsByCategory(category string) []Function {
	return functions(r.GetToolsByCategory(category))
}

func functions(tools []Tool) []Function {
	out := make([]Function, len(tools))
	for i, t := range tools {
		out[i] = t.OpenAIFunction()
	}
	return out
}

// Unregister removes a tool and reports whether it was present.
func (r *Registry) Unregister(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.rawTools[name]; !ok {
		return false
	}
	delete(r.rawTools, name)
	delete(r.tools, name)
	r.order = slices.DeleteFunc(r.order, func(n string) bool { return n == name })
	return true
}

// Clear removes all tools. Middlewares are kept.
func (r *Registry) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	clear(r.tools)
	clear(r.rawTools)
	r.order = nil
}

// Count returns the number of registered tools.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// ToolNames returns the registered names in registration order.
func (r *Registry) ToolNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.order)
}

// Execute decodes the call arguments, runs the named tool, and stamps the call
// id into the result metadata (a random one is generated when call.ID is
// empty). Unknown tools and undecodable arguments produce failed results with
// TOOL_NOT_FOUND and VALIDATION_ERROR codes.
func (r *Registry) Execute(ctx context.Context, call ToolCall) ToolResult {
	if call.ID == "" {
		call.ID = uuid.NewString()
	}
	start := time.Now()
	if r.opts.onBefore != nil {
		r.opts.onBefore(ctx, call)
	}
	res := r.execute(ctx, call, start).clone()
	res.Metadata.Set(MetaCallID, call.ID)
	if r.opts.onAfter != nil {
		r.opts.onAfter(ctx, call, res)
	}
	return res
}

func (r *Registry) execute(ctx context.Context, call ToolCall, start time.Time) ToolResult {
	t, ok := r.GetTool(call.Name)
	if !ok {
		r.opts.logger.Warn("unknown tool requested", "tool", call.Name, "call_id", call.ID)
		return Failure(call.Name, CodeToolNotFound, fmt.Errorf("%w: %s", ErrToolNotFound, call.Name), start)
	}
	params, err := DecodeArguments(call.Arguments)
	if err != nil {
		return Failure(call.Name, CodeValidation, err, start)
	}
	if r.opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.timeout)
		defer cancel()
	}
	return t.Execute(ctx, params)
}

// ExecuteBatch runs calls in parallel (bounded by WithMaxConcurrency) and
// returns one result per call, in call order. One failure does not affect the
// others.
func (r *Registry) ExecuteBatch(ctx context.Context, calls []ToolCall) []ToolResult {
	results := make([]ToolResult, len(calls))
	var g errgroup.Group
	if r.opts.maxConcurrency > 0 {
		g.SetLimit(r.opts.maxConcurrency)
	}
	for i, call := range calls {
		g.Go(func() error {
			results[i] = r.Execute(ctx, call)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func wrap(t Tool, middlewares []Middleware) Tool {
	for i := len(middlewares) - 1; i >= 0; i-- {
		t = middlewares[i](t)
	}
	return t
}
