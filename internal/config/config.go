// Package config loads server settings from the environment and an optional
// .env file.
package config

import (
	"os"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Supported transports.
const (
	TransportStdio = "stdio"
	TransportHTTP  = "http"
)

// Config is the complete server configuration.
type Config struct {
	Server ServerConfig
	Schema SchemaConfig
	Log    LogConfig
}

// ServerConfig identifies the server and selects its transport.
type ServerConfig struct {
	Name      string `env:"MCP_SERVER_NAME,default=demo-server"`
	Version   string `env:"MCP_SERVER_VERSION,default=1.0.0"`
	Transport string `env:"MCP_TRANSPORT,default=stdio"`
	HTTPAddr  string `env:"MCP_HTTP_ADDR,default=:8080"`
}

// SchemaConfig locates the acceptance-criteria schema.
type SchemaConfig struct {
	// Path is resolved against the working directory on every load.
	Path  string `env:"MCP_SCHEMA_PATH,default=resources/story.schema.json"`
	Cache bool   `env:"MCP_SCHEMA_CACHE,default=true"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level       string `env:"MCP_LOG_LEVEL,default=info"`
	Development bool   `env:"MCP_LOG_DEVELOPMENT,default=false"`
}

// Default returns the configuration used when nothing is set.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Name:      "demo-server",
			Version:   "1.0.0",
			Transport: TransportStdio,
			HTTPAddr:  ":8080",
		},
		Schema: SchemaConfig{
			Path:  "resources/story.schema.json",
			Cache: true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads envFile when it exists, then decodes the environment. Variables
// already set in the environment win over the file.
func Load(envFile string) (Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !os.IsNotExist(errors.Cause(err)) {
			return Config{}, errors.Wrapf(err, "loading %s", envFile)
		}
	}

	cfg := Default()
	if err := envdecode.Decode(&cfg); err != nil && err != envdecode.ErrNoTargetFieldsAreSet {
		return Config{}, errors.Wrap(err, "decoding environment")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the configuration can be served.
func (c Config) Validate() error {
	if c.Server.Name == "" {
		return errors.New("server name cannot be empty")
	}
	switch c.Server.Transport {
	case TransportStdio:
	case TransportHTTP:
		if c.Server.HTTPAddr == "" {
			return errors.New("http transport requires an address")
		}
	default:
		return errors.Errorf("unknown transport %q", c.Server.Transport)
	}
	if c.Schema.Path == "" {
		return errors.New("schema path cannot be empty")
	}
	return nil
}
