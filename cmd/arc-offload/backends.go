package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gezibash/arc-offload/pkg/blobstore"
)

func newBackendsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "backends",
		Short: "List registered blob store backends",
		Long: `List every compiled-in blob store backend and its default options.

Pick one with --store and override options with --store-opt key=value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out := cmd.OutOrStdout()
			for _, name := range blobstore.ListBackends() {
				fmt.Fprintln(out, name)
				defaults := blobstore.GetDefaults(name)
				keys := make([]string, 0, len(defaults))
				for k := range defaults {
					keys = append(keys, k)
				}
				sort.Strings(keys)
				for _, k := range keys {
					fmt.Fprintf(out, "  %s=%s\n", k, defaults[k])
				}
			}
			return nil
		},
	}
}
