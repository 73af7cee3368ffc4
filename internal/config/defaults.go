// Package config provides the configuration surface for the arc-offload CLI.
package config

import (
	"os"
	"path/filepath"
)

// Common contains default values shared across commands.
var Common = struct {
	LogLevel  string
	LogFormat string
	DataDir   string
}{
	LogLevel:  "info",
	LogFormat: "auto", // pretty on a terminal, json when piped
	DataDir:   DefaultDataDir(),
}

// OffloadDefaults contains default values for the offload pipeline.
var OffloadDefaults = struct {
	MaxByteSize int
	Backend     string
}{
	MaxByteSize: 1000 * 1000, // 1MB
	Backend:     "file",
}

// DefaultDataDir returns the default data directory (~/.arc-offload).
func DefaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".arc-offload"
	}
	return filepath.Join(home, ".arc-offload")
}

// DefaultBlobDir returns the directory the file backend uses when no path is
// configured.
func DefaultBlobDir() string {
	return filepath.Join(DefaultDataDir(), "blobs")
}
