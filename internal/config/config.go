package config

import (
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Offload       OffloadConfig       `mapstructure:"offload"`
	Storage       BackendConfig       `mapstructure:"storage"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// OffloadConfig controls when payloads leave the message and where they go.
type OffloadConfig struct {
	MaxByteSize int    `mapstructure:"max_byte_size"`
	BasePath    string `mapstructure:"base_path"`
	UseHeaders  bool   `mapstructure:"use_headers"`
}

type BackendConfig struct {
	Backend string            `mapstructure:"backend"`
	Config  map[string]string `mapstructure:"config"`
}

type ObservabilityConfig struct {
	LogLevel       string `mapstructure:"log_level"`
	LogFormat      string `mapstructure:"log_format"`
	OTLPEndpoint   string `mapstructure:"otlp_endpoint"`
	OTLPProtocol   string `mapstructure:"otlp_protocol"`
	ServiceName    string `mapstructure:"service_name"`
	ServiceVersion string `mapstructure:"service_version"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("offload.max_byte_size", OffloadDefaults.MaxByteSize)
	v.SetDefault("offload.base_path", "")
	v.SetDefault("offload.use_headers", false)

	v.SetDefault("observability.log_level", Common.LogLevel)
	v.SetDefault("observability.log_format", Common.LogFormat)
	v.SetDefault("observability.otlp_endpoint", "")
	v.SetDefault("observability.otlp_protocol", "http")
	v.SetDefault("observability.service_name", "arc-offload")
	v.SetDefault("observability.service_version", "dev")

	v.SetDefault("storage.backend", OffloadDefaults.Backend)
}

// Load reads config from flags, env, and file, returning the merged Config.
func Load(v *viper.Viper, configFile string) (Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("ARC_OFFLOAD")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("arc-offload")
		v.SetConfigType("hcl")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.arc-offload")
		v.AddConfigPath("/etc/arc-offload")
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && configFile != "" {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
