package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// E2E_ENABLED guards the suites, they need a running server
	Enabled    bool   `envconfig:"E2E_ENABLED" default:"false"`
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8080"`
	// E2E_DEBUG_JSON allows dumping full gRPC request/response bodies as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
