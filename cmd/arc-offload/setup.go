package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-offload/internal/config"
	"github.com/gezibash/arc-offload/internal/observability"
	"github.com/gezibash/arc-offload/pkg/blobstore"
	_ "github.com/gezibash/arc-offload/pkg/blobstore/badger"
	_ "github.com/gezibash/arc-offload/pkg/blobstore/fs"
	_ "github.com/gezibash/arc-offload/pkg/blobstore/redis"
	_ "github.com/gezibash/arc-offload/pkg/blobstore/s3"
	_ "github.com/gezibash/arc-offload/pkg/blobstore/sqlite"
	"github.com/gezibash/arc-offload/pkg/payload"
)

// setup loads config and initializes observability for one command run.
// Logs go to stderr so wire bytes on stdout stay clean.
func setup(cmd *cobra.Command, v *viper.Viper) (config.Config, *observability.Observability, error) {
	configFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("load config: %w", err)
	}

	obs, err := observability.New(cmd.Context(), observability.ObsConfig{
		LogLevel:       cfg.Observability.LogLevel,
		LogFormat:      resolveLogFormat(cfg.Observability.LogFormat),
		OTLPEndpoint:   cfg.Observability.OTLPEndpoint,
		OTLPProtocol:   cfg.Observability.OTLPProtocol,
		ServiceName:    cfg.Observability.ServiceName,
		ServiceVersion: cfg.Observability.ServiceVersion,
	}, os.Stderr)
	if err != nil {
		return config.Config{}, nil, fmt.Errorf("init observability: %w", err)
	}

	return cfg, obs, nil
}

// resolveLogFormat turns the "auto" format into a concrete one: pretty on a
// terminal, json when stderr is piped.
func resolveLogFormat(format string) string {
	if format != "" && format != "auto" {
		return format
	}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		return "pretty"
	}
	return "json"
}

// openStore builds the configured blob store, instrumented against the run's
// metrics registry. The file backend gets a default path under the data dir
// when none is configured.
func openStore(ctx context.Context, cfg config.Config, obs *observability.Observability) (blobstore.Store, error) {
	opts := make(map[string]string, len(cfg.Storage.Config))
	for k, val := range cfg.Storage.Config {
		opts[k] = val
	}
	if cfg.Storage.Backend == blobstore.BackendFile && opts["path"] == "" {
		opts["path"] = config.DefaultBlobDir()
	}

	store, err := blobstore.New(ctx, cfg.Storage.Backend, opts)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Backend, err)
	}
	return blobstore.Instrument(store, obs.Metrics.Registry), nil
}

func readInput(name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(os.Stdin)
	}
	return os.ReadFile(name) //nolint:gosec // G304: intentional CLI file read
}

func writeOutput(name string, data []byte) error {
	if name == "" || name == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	return os.WriteFile(name, data, 0o600)
}

// loadAttrs reads a marker attribute set written by encode. An empty path
// yields an empty set.
func loadAttrs(path string) (*payload.Attributes, error) {
	attrs := &payload.Attributes{}
	if path == "" {
		return attrs, nil
	}
	data, err := os.ReadFile(path) //nolint:gosec // G304: intentional CLI file read
	if err != nil {
		return nil, fmt.Errorf("read attributes: %w", err)
	}
	if err := json.Unmarshal(data, attrs); err != nil {
		return nil, fmt.Errorf("parse attributes: %w", err)
	}
	return attrs, nil
}

func saveAttrs(path string, attrs *payload.Attributes) error {
	data, err := json.MarshalIndent(attrs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode attributes: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("write attributes: %w", err)
	}
	return nil
}
