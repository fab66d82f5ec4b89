package config

import (
	"fmt"
	"net"
	"strconv"

	"github.com/caarlos0/env/v11"
)

// Config is the full process configuration. It is parsed once at startup and
// passed explicitly to the loader, persister and HTTP server.
type Config struct {
	Addr      string `env:"SCORESHEET_ADDR" envDefault:"0.0.0.0"`
	Port      int    `env:"SCORESHEET_PORT" envDefault:"7890"`
	PublicURL string `env:"SCORESHEET_PUBLIC_URL"`

	SaveDir            string `env:"SCORESHEET_SAVE_DIR" envDefault:"evaluation_score"`
	AllowCustomSaveDir bool   `env:"SCORESHEET_ALLOW_CUSTOM_SAVE_DIR" envDefault:"false"`
	MaxUploadMB        int64  `env:"SCORESHEET_MAX_UPLOAD_MB" envDefault:"32"`

	Columns Columns

	LogLevel string `env:"SCORESHEET_LOG_LEVEL" envDefault:"info"`
	LogDev   bool   `env:"SCORESHEET_LOG_DEV" envDefault:"false"`

	DatabaseURL string `env:"DATABASE_URL"`
	RedisAddr   string `env:"REDIS_ADDR"`
	APIToken    string `env:"API_TOKEN"`

	Mirror Mirror
}

// Columns holds the accepted header spellings for each canonical column.
// Order matters: the first alias present in a file wins.
type Columns struct {
	ID     []string `env:"SCORESHEET_ID_ALIASES" envSeparator:"," envDefault:"ID,id,prompt_id"`
	Input  []string `env:"SCORESHEET_INPUT_ALIASES" envSeparator:"," envDefault:"input,Input,question,prompt"`
	Output []string `env:"SCORESHEET_OUTPUT_ALIASES" envSeparator:"," envDefault:"output,Output,response,answer,content"`
	Score  []string `env:"SCORESHEET_SCORE_ALIASES" envSeparator:"," envDefault:"score,Score,mark,Mark"`
}

// Mirror configures the optional object-storage copy of saved files.
type Mirror struct {
	Endpoint  string `env:"MINIO_ENDPOINT"`
	Bucket    string `env:"MINIO_BUCKET"`
	AccessKey string `env:"MINIO_ACCESS_KEY"`
	SecretKey string `env:"MINIO_SECRET_KEY"`
	Prefix    string `env:"MIRROR_PREFIX" envDefault:"scores"`
}

// Enabled reports whether enough settings are present to reach a bucket.
func (m Mirror) Enabled() bool {
	return m.Endpoint != "" && m.Bucket != ""
}

// Load parses the environment into a Config and validates it.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Default returns the configuration that Load produces with an empty
// environment.
func Default() Config {
	cfg, err := env.ParseAsWithOptions[Config](env.Options{Environment: map[string]string{}})
	if err != nil {
		// defaults are static; a failure here is a programming error
		panic(err)
	}
	return cfg
}

// Validate checks the settings that would otherwise fail late.
func (c Config) Validate() error {
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Port)
	}
	if c.SaveDir == "" {
		return fmt.Errorf("save dir must not be empty")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("max upload must be positive, got %d MB", c.MaxUploadMB)
	}
	if len(c.Columns.ID) == 0 || len(c.Columns.Input) == 0 || len(c.Columns.Output) == 0 {
		return fmt.Errorf("column alias lists for id, input and output must not be empty")
	}
	return nil
}

// ListenAddr joins the bind host and port.
func (c Config) ListenAddr() string {
	return net.JoinHostPort(c.Addr, strconv.Itoa(c.Port))
}

// BaseURL is the URL users should open: the public URL when set, otherwise
// the bind address.
func (c Config) BaseURL() string {
	if c.PublicURL != "" {
		return c.PublicURL
	}
	host := c.Addr
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, strconv.Itoa(c.Port))
}
