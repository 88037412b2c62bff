package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the envi configuration file (~/.config/envi/config.yaml).
// Empty fields leave the flag defaults alone.
type Config struct {
	DataDir string `yaml:"data_dir"`

	// Output
	LogLevel   string `yaml:"log_level"`
	LogFormat  string `yaml:"log_format"`
	OutputType string `yaml:"output_type"`

	// Server
	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "envi", "config.yaml")
}

// LoadConfig reads the config file at path, or the default location when
// path is empty. A missing or unreadable file yields a zero Config.
func LoadConfig(path string) Config {
	if path == "" {
		path = configPath()
	}
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyLoggingConfig fills the logging flags the user did not set.
func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, dataDir, addr *string) {
	if cfg.DataDir != "" && !c.IsSet("data-dir") {
		*dataDir = cfg.DataDir
	}
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
}

// applyConvertConfig applies config file defaults to convert command variables.
func applyConvertConfig(c *cli.Command, cfg Config, outType *string) {
	if cfg.OutputType != "" && !c.IsSet("type") {
		*outType = cfg.OutputType
	}
}
