// Command sample serves a small todo API built on apidoc and prints its
// OpenAPI document.
//
//	sample serve --config sample.yaml
//	sample spec --format yaml -o openapi.yaml
//	sample validate
package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
)

func main() {
	var configPath string

	root := &cobra.Command{
		Use:           "sample",
		Short:         "Todo API demonstrating schema deduplication",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to a YAML config file")

	root.AddCommand(newServeCmd(&configPath))
	root.AddCommand(newSpecCmd(&configPath))
	root.AddCommand(newValidateCmd(&configPath))

	if err := root.Execute(); err != nil {
		slog.Error("sample failed", "error", err)
		os.Exit(1)
	}
}

func newServeCmd(configPath *string) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the API, its OpenAPI document and docs UI",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Addr = addr
			}

			logger := newLogger(cfg.LogLevel)
			r := newRouter(cfg, logger)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = r.ListenAndServe(ctx, cfg.Addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", defaultAddr, "Listen address")
	return cmd
}

func newSpecCmd(configPath *string) *cobra.Command {
	var (
		format string
		out    string
	)

	cmd := &cobra.Command{
		Use:   "spec",
		Short: "Print the OpenAPI document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			r := newRouter(cfg, newLogger(cfg.LogLevel))

			w := cmd.OutOrStdout()
			if out != "" {
				f, err := os.Create(out) //nolint:gosec // user-provided CLI flag
				if err != nil {
					return err
				}
				defer f.Close() //nolint:errcheck // closed after write
				w = f
			}
			return writeSpec(r, w, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format (json or yaml)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file (default stdout)")
	return cmd
}

func newValidateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate the generated OpenAPI document",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			r := newRouter(cfg, newLogger(cfg.LogLevel))
			if err := r.ValidateSpec(cmd.Context()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "ok")
			return err
		},
	}
}

type specWriter interface {
	WriteSpec(w io.Writer) error
	WriteSpecYAML(w io.Writer) error
}

func writeSpec(r specWriter, w io.Writer, format string) error {
	switch format {
	case "json":
		return r.WriteSpec(w)
	case "yaml", "yml":
		return r.WriteSpecYAML(w)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func newLogger(level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
