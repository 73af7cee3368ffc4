package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.opentelemetry.io/otel/attribute"

	"github.com/gezibash/arc-offload/internal/observability"
	"github.com/gezibash/arc-offload/pkg/bloburi"
)

func newFetchCmd(v *viper.Viper) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "fetch <uri>",
		Short: "Fetch one stored blob by its URI",
		Long: `Fetch a blob directly, bypassing the wire format.

The URI is the reference a backed payload carries, for example
s3://bucket/prefix/orders/values/5e0db810-63be-4a08-bfc3-04a07a2b2ab1.

Examples:
  arc-offload fetch s3://acme/offload/orders/values/5e0db810-... > payload.bin
  arc-offload fetch --store file --store-opt path=/var/lib/blobs file:///var/lib/blobs/orders/values/5e0db810-...`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			u, err := bloburi.Parse(args[0])
			if err != nil {
				return fmt.Errorf("parse uri: %w", err)
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

			op, ctx := observability.StartOperation(cmd.Context(), obs.Metrics, "offload.fetch",
				attribute.String("uri", u.String()),
			)

			data, err := store.Get(ctx, u)
			op.End(err)
			if err != nil {
				return err
			}

			return writeOutput(output, data)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "write the blob to a file instead of stdout")

	return cmd
}
