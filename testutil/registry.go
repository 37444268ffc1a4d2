package testutil

import (
	"io"
	"log/slog"
	"time"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
)

// NewTestRegistry returns a Registry with a long timeout and a discarding
// logger, suitable for tests. Registration errors are ignored.
func NewTestRegistry(tools ...agenttool.Tool) *agenttool.Registry {
	reg := agenttool.NewRegistry(
		agenttool.WithDefaultTimeout(30*time.Second),
		agenttool.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	for _, t := range tools {
		_ = reg.Register(t)
	}
	return reg
}
