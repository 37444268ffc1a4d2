package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	agenttool "github.com/marceldarvas/n8n-nodes-directus-sub000"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/internal/config"
	"github.com/marceldarvas/n8n-nodes-directus-sub000/internal/server"
)

var errToolFailed = errors.New("tool execution failed")

type rootOptions struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "directus-tools",
		Short:         "Directus tools for LLM agents",
		Long:          "directus-tools exposes Directus item queries, user management, flow triggers and activity queries as OpenAI-style function tools.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default "+config.DefaultFile+" if present)")

	root.AddCommand(
		newFunctionsCmd(opts),
		newCallCmd(opts),
		newBatchCmd(opts),
		newServeCmd(opts),
		newConfigCmd(opts),
	)
	return root
}

// withApp loads the configuration, builds the app and runs fn with it.
func withApp(cmd *cobra.Command, opts *rootOptions, fn func(*app) error) error {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return err
	}
	a, err := newApp(cmd.Context(), cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.Close(ctx); err != nil {
			a.logger.Warn("telemetry shutdown", "error", err)
		}
	}()
	return fn(a)
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newFunctionsCmd(opts *rootOptions) *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "functions",
		Short: "Print the OpenAI function descriptions of the tools",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				if category != "" {
					return printJSON(cmd.OutOrStdout(), a.registry.OpenAIFunctionsByCategory(category))
				}
				return printJSON(cmd.OutOrStdout(), a.registry.OpenAIFunctions())
			})
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "only tools of this category")
	return cmd
}

func newCallCmd(opts *rootOptions) *cobra.Command {
	var args, argsFile, id string
	cmd := &cobra.Command{
		Use:   "call <tool>",
		Short: "Execute one tool and print its result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, positional []string) error {
			raw := []byte(args)
			if argsFile != "" {
				b, err := readInput(cmd, argsFile)
				if err != nil {
					return err
				}
				raw = b
			}
			return withApp(cmd, opts, func(a *app) error {
				res := a.registry.Execute(cmd.Context(), agenttool.ToolCall{ID: id, Name: positional[0], Arguments: raw})
				if err := printJSON(cmd.OutOrStdout(), res); err != nil {
					return err
				}
				if !res.Success {
					return fmt.Errorf("%w: %s", errToolFailed, res.Error.Code)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&args, "args", "{}", "arguments as a JSON object")
	cmd.Flags().StringVar(&argsFile, "args-file", "", "read arguments from a file (- for stdin)")
	cmd.Flags().StringVar(&id, "id", "", "call id (generated when empty)")
	cmd.MarkFlagsMutuallyExclusive("args", "args-file")
	return cmd
}

func newBatchCmd(opts *rootOptions) *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Execute a JSON array of tool calls in parallel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := readInput(cmd, file)
			if err != nil {
				return err
			}
			var calls []agenttool.ToolCall
			if err := json.Unmarshal(raw, &calls); err != nil {
				return fmt.Errorf("parse %s: %w", file, err)
			}
			return withApp(cmd, opts, func(a *app) error {
				return printJSON(cmd.OutOrStdout(), a.registry.ExecuteBatch(cmd.Context(), calls))
			})
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "file with tool calls (- for stdin)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the tools over HTTP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, opts, func(a *app) error {
				sopts := server.Options{
					Addr:        a.cfg.Server.Addr,
					CORSOrigins: a.cfg.Server.CORSOrigins,
					Logger:      a.logger,
				}
				if a.metrics != nil {
					sopts.Metrics = promhttp.HandlerFor(a.metrics, promhttp.HandlerOpts{})
				}
				return server.New(a.registry, sopts).Run(cmd.Context())
			})
		},
	}
}

func newConfigCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "init [path]",
			Short: "Write the default configuration file",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := config.DefaultFile
				if len(args) == 1 {
					path = args[0]
				}
				if err := config.WriteDefault(path); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)
				return nil
			},
		},
		&cobra.Command{
			Use:   "schema",
			Short: "Print the JSON Schema of the configuration",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return printJSON(cmd.OutOrStdout(), config.Schema())
			},
		},
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective configuration (secrets redacted)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				cfg, err := config.Load(opts.configPath)
				if err != nil {
					return err
				}
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				if err := enc.Encode(cfg.Redacted()); err != nil {
					return err
				}
				return enc.Close()
			},
		},
	)
	return cmd
}
