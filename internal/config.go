package internal

import (
	"fmt"
	"time"
	"unicode/utf8"
)

// Config is the server configuration, read from the environment.
type Config struct {
	BufferSize           int           `env:"BUFFER_SIZE,required=true"`
	ConnectionBufferSize int           `env:"CONNECTION_BUFFER_SIZE,required=true"`
	NumberOfWorkers      int           `env:"NUMBER_OF_WORKERS,required=true"`
	LimitMessages        *int          `env:"LIMIT_MESSAGES"`
	MaxContentLength     int           `env:"MAX_CONTENT_LENGTH,default=4096"`
	SinkTimeout          time.Duration `env:"SINK_TIMEOUT,required=true"`
	RestartInterval      time.Duration `env:"RESTART_INTERVAL,required=true"`
	MetricInterval       time.Duration `env:"METRIC_INTERVAL,default=5s"`
	PresenceWindow       time.Duration `env:"PRESENCE_WINDOW,default=5m"`
	AuthTokenDuration    time.Duration `env:"AUTH_TOKEN_DURATION,required=true"`
	AuthSecret           string        `env:"AUTH_SECRET,required=true"`
	BadgerFilepath       string        `env:"BADGER_FILEPATH,required=true"`
	LogLevel             string        `env:"LOG_LEVEL,required=true"`
	Host                 string        `env:"HOST,default=localhost"`
	Port                 int           `env:"PORT,default=8080"`
	DebugPort            int           `env:"DEBUG_PORT,default=6060"`
	// CENSORED_DIR holds one .txt dictionary per language, moderation is off when empty
	CensoredDir  string `env:"CENSORED_DIR"`
	CensoredChar string `env:"CENSORED_CHAR,default=*"`
}

// Validate checks the values the environment parser cannot.
func (c Config) Validate() error {
	if c.NumberOfWorkers <= 0 {
		return fmt.Errorf("NUMBER_OF_WORKERS must be positive, got %d", c.NumberOfWorkers)
	}
	if c.BufferSize <= 0 || c.ConnectionBufferSize <= 0 {
		return fmt.Errorf("BUFFER_SIZE and CONNECTION_BUFFER_SIZE must be positive, got %d and %d",
			c.BufferSize, c.ConnectionBufferSize)
	}
	if c.LimitMessages != nil && *c.LimitMessages <= 0 {
		return fmt.Errorf("LIMIT_MESSAGES must be positive when set, got %d", *c.LimitMessages)
	}
	if len(c.AuthSecret) < 16 {
		return fmt.Errorf("AUTH_SECRET must hold at least 16 characters")
	}
	if c.CensoredDir != "" && utf8.RuneCountInString(c.CensoredChar) != 1 {
		return fmt.Errorf("CENSORED_CHAR must be a single character, got %q", c.CensoredChar)
	}
	return nil
}

// CensoredRune is the character replacing each letter of a censored word.
func (c Config) CensoredRune() rune {
	r, _ := utf8.DecodeRuneInString(c.CensoredChar)
	return r
}
