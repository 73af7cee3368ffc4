package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gezibash/arc-offload/internal/observability"
	"github.com/gezibash/arc-offload/pkg/message"
	"github.com/gezibash/arc-offload/pkg/payload"
)

func newEncodeCmd(v *viper.Viper) *cobra.Command {
	var topic string
	var forKey bool
	var output string
	var attrsOut string

	cmd := &cobra.Command{
		Use:   "encode <file>",
		Short: "Run the write path on one payload",
		Long: `Encode one payload the way a producing client would.

Payloads at or under the threshold stay inline; larger ones are uploaded to
the configured blob store and replaced on the wire by their URI. Wire bytes
go to stdout unless -o is set.

With --headers the wire bytes stay identical to the payload and the backed
marker lands in an attribute set, written as JSON to --attrs-out.

Examples:
  arc-offload encode --topic orders payload.bin > wire.bin
  arc-offload encode --topic orders --max-byte-size 1024 --base-path s3://acme/offload payload.bin
  arc-offload encode --topic orders --headers --attrs-out attrs.json payload.bin
  cat payload.bin | arc-offload encode --topic orders -`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(args[0])
			if err != nil {
				return fmt.Errorf("read payload: %w", err)
			}

			cfg, obs, err := setup(cmd, v)
			if err != nil {
				return err
			}
			defer func() { _ = obs.Close(cmd.Context()) }()

			if cfg.Offload.UseHeaders && attrsOut == "" {
				return fmt.Errorf("the header variant carries the marker out of band: set --attrs-out")
			}

			store, err := openStore(cmd.Context(), cfg, obs)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			storer, err := message.NewStorer(store, message.StorerConfig{
				MaxByteSize: cfg.Offload.MaxByteSize,
				BasePath:    cfg.Offload.BasePath,
				UseHeaders:  cfg.Offload.UseHeaders,
			})
			if err != nil {
				return fmt.Errorf("create storer: %w", err)
			}

			op, ctx := observability.StartOperation(cmd.Context(), obs.Metrics, "offload.encode",
				attribute.String("topic", topic),
				attribute.Bool("is_key", forKey),
				attribute.Int("size_bytes", len(data)),
			)

			attrs := &payload.Attributes{}
			wire, err := storer.StoreBytes(ctx, topic, forKey, attrs, data)
			op.End(err)
			if err != nil {
				return err
			}

			direction := "inline"
			if len(data) > cfg.Offload.MaxByteSize {
				direction = "offloaded"
			}
			obs.Metrics.BytesProcessed.WithLabelValues(direction).Add(float64(len(data)))

			if attrsOut != "" {
				if err := saveAttrs(attrsOut, attrs); err != nil {
					return err
				}
			}
			return writeOutput(output, wire)
		},
	}

	cmd.Flags().StringVar(&topic, "topic", "", "topic the payload belongs to (names the storage key)")
	cmd.Flags().BoolVar(&forKey, "for-key", false, "treat the payload as the message key rather than the value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write wire bytes to a file instead of stdout")
	cmd.Flags().StringVar(&attrsOut, "attrs-out", "", "write the marker attribute set as JSON (header variant)")

	return cmd
}
