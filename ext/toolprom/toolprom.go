// Package toolprom exports Prometheus metrics for tool executions.
package toolprom

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

// CodeOK is the code label of successful executions.
const CodeOK = "OK"

// Metrics holds the collectors. Create one per Prometheus registry.
type Metrics struct {
	executions *prometheus.CounterVec
	duration   *prometheus.HistogramVec
	inFlight   *prometheus.GaugeVec
}

// New creates the collectors and registers them with reg
// (prometheus.DefaultRegisterer when nil). Collectors already registered by an
// earlier call are reused.
func New(reg prometheus.Registerer) (*Metrics, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	m := &Metrics{
		executions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tool_executions_total",
			Help: "Tool executions by tool and result code.",
		}, []string{"tool", "code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tool_execution_duration_seconds",
			Help:    "Tool execution latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		inFlight: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "tool_executions_in_flight",
			Help: "Tool executions currently running.",
		}, []string{"tool"}),
	}
	var err error
	if m.executions, err = register(reg, m.executions); err != nil {
		return nil, err
	}
	if m.duration, err = register(reg, m.duration); err != nil {
		return nil, err
	}
	if m.inFlight, err = register(reg, m.inFlight); err != nil {
		return nil, err
	}
	return m, nil
}

func register[C prometheus.Collector](reg prometheus.Registerer, c C) (C, error) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			if existing, ok := already.ExistingCollector.(C); ok {
				return existing, nil
			}
		}
		return c, err
	}
	return c, nil
}

// Middleware returns a middleware recording every execution.
func (m *Metrics) Middleware() agenttool.Middleware {
	return func(next agenttool.Tool) agenttool.Tool {
		return &meteredTool{Base: agenttool.Base{Next: next}, m: m}
	}
}

type meteredTool struct {
	agenttool.Base
	m *Metrics
}

func (t *meteredTool) Execute(ctx context.Context, params map[string]any) agenttool.ToolResult {
	name := t.Name()
	gauge := t.m.inFlight.WithLabelValues(name)
	gauge.Inc()
	timer := prometheus.NewTimer(t.m.duration.WithLabelValues(name))
	res := t.Next.Execute(ctx, params)
	timer.ObserveDuration()
	gauge.Dec()

	code := CodeOK
	if !res.Success && res.Error != nil {
		code = res.Error.Code
	}
	t.m.executions.WithLabelValues(name, code).Inc()
	return res
}
