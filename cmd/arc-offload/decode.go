package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gezibash/arc-offload/internal/observability"
	"github.com/gezibash/arc-offload/pkg/message"
)

func newDecodeCmd(v *viper.Viper) *cobra.Command {
	var forKey bool
	var output string
	var attrsIn string

	cmd := &cobra.Command{
		Use:   "decode <file>",
		Short: "Run the read path on one wire payload",
		Long: `Decode wire bytes back into the original payload.

Inline payloads come back as-is; backed ones are fetched from the blob store
named by their URI. The header variant needs the attribute set the encoder
produced, passed via --attrs.

Examples:
  arc-offload decode wire.bin > payload.bin
  arc-offload decode --headers --attrs attrs.json wire.bin
  cat wire.bin | arc-offload decode -`,
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

			store, err := openStore(cmd.Context(), cfg, obs)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			retriever := message.NewRetriever(store, message.RetrieverConfig{
				UseHeaders: cfg.Offload.UseHeaders,
			})

			attrs, err := loadAttrs(attrsIn)
			if err != nil {
				return err
			}

			op, ctx := observability.StartOperation(cmd.Context(), obs.Metrics, "offload.decode",
				attribute.Bool("is_key", forKey),
			)

			out, err := retriever.RetrieveBytes(ctx, forKey, attrs, data)
			op.End(err)
			if err != nil {
				return err
			}

			return writeOutput(output, out)
		},
	}

	cmd.Flags().BoolVar(&forKey, "for-key", false, "treat the payload as the message key rather than the value")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the payload to a file instead of stdout")
	cmd.Flags().StringVar(&attrsIn, "attrs", "", "attribute set JSON produced by encode (header variant)")

	return cmd
}
