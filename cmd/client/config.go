package main

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerAddr string `envconfig:"SERVER_ADDR" default:"localhost:8080"`
	// CHAT_SESSION_FILE keeps the token between two invocations
	SessionFile string `envconfig:"CHAT_SESSION_FILE" default:".chat-session"`
	// CHAT_COLOURS enables colorized output
	Colours bool          `envconfig:"CHAT_COLOURS" default:"true"`
	Timeout time.Duration `envconfig:"CHAT_TIMEOUT" default:"10s"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
