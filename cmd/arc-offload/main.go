package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gezibash/arc-offload/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	v := viper.New()

	rootCmd := &cobra.Command{
		Use:   "arc-offload",
		Short: "Move oversized message payloads into blob storage",
		Long: `arc-offload runs the claim-check codec from the command line: payloads
above the size threshold are uploaded to a blob store and replaced on the
wire by their URI; smaller payloads pass through inline.

Write path:
  arc-offload encode <file>    Offload if above the threshold, emit wire bytes

Read path:
  arc-offload decode <file>    Resolve a wire payload back to its bytes
  arc-offload fetch <uri>      Fetch one stored blob directly by URI

Introspection:
  arc-offload backends         List registered blob store backends`,
	}

	config.BindRootFlags(rootCmd, v)
	config.BindOffloadFlags(rootCmd, v)

	rootCmd.AddCommand(newEncodeCmd(v))
	rootCmd.AddCommand(newDecodeCmd(v))
	rootCmd.AddCommand(newFetchCmd(v))
	rootCmd.AddCommand(newBackendsCmd())
	rootCmd.AddCommand(newVersionCmd())

	return rootCmd.ExecuteContext(context.Background())
}
