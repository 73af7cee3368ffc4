package config

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// BindRootFlags binds the flags shared by every command to Viper.
func BindRootFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()

	f.String("config", "", "config file path")
	f.String("log-level", "", "log level (debug, info, warn, error)")
	f.String("log-format", "", "log format (auto, json, pretty)")
	f.String("store", "", "blob store backend (default file)")
	f.StringToString("store-opt", nil, "backend option as key=value (repeatable)")

	_ = v.BindPFlag("observability.log_level", f.Lookup("log-level"))
	_ = v.BindPFlag("observability.log_format", f.Lookup("log-format"))
	_ = v.BindPFlag("storage.backend", f.Lookup("store"))
	_ = v.BindPFlag("storage.config", f.Lookup("store-opt"))
}

// BindOffloadFlags binds the offload pipeline flags (threshold, base path,
// wire variant) to Viper. Bound on the root command: a Viper key can follow
// only one flag, so sharing the definition across subcommands would leave all
// but the last one unbound.
func BindOffloadFlags(cmd *cobra.Command, v *viper.Viper) {
	f := cmd.PersistentFlags()

	f.Int("max-byte-size", 0, "largest payload kept inline, in bytes")
	f.String("base-path", "", "blob base path, e.g. s3://bucket/prefix")
	f.Bool("headers", false, "mark backed payloads in a header attribute instead of a flag byte")

	_ = v.BindPFlag("offload.max_byte_size", f.Lookup("max-byte-size"))
	_ = v.BindPFlag("offload.base_path", f.Lookup("base-path"))
	_ = v.BindPFlag("offload.use_headers", f.Lookup("headers"))
}
