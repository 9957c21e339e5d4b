package config

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/sandevgo/ctxbroker/pkg/log"
)

const (
	PersistenceNone   = "none"
	PersistenceJSON   = "json"
	PersistenceSQLite = "sqlite"
)

type AppConfig struct {
	RuntimePath string `env:"CTXBROKER_RUNTIME_PATH" envDefault:".ctxbroker"`

	// Context store
	HistorySize   int    `env:"HISTORY_SIZE" envDefault:"10"`
	Persistence   string `env:"PERSISTENCE" envDefault:"json"`
	DefaultUserID string `env:"DEFAULT_USER_ID" envDefault:"default"`

	// Extraction
	EnhanceContext bool `env:"ENHANCE_CONTEXT" envDefault:"false"`

	// Agents
	ExternalAgentTimeout   time.Duration `env:"EXTERNAL_AGENT_TIMEOUT" envDefault:"30s"`
	DirectoryWatchInterval time.Duration `env:"DIRECTORY_WATCH_INTERVAL" envDefault:"1s"`

	// Transport Flags
	EnableTelegram bool `env:"ENABLE_TELEGRAM" envDefault:"false"`
	EnableCLI      bool `env:"ENABLE_CLI" envDefault:"true"`
}

func NewAppConfig(ctx context.Context) *AppConfig {
	c, err := ParseAppConfig()
	if err != nil {
		log.FromCtx(ctx).Fatal().Err(err).Msg("failed to parse App config")
	}
	return c
}

// ParseAppConfig reads AppConfig from the environment and validates it.
func ParseAppConfig() (*AppConfig, error) {
	c := &AppConfig{}
	if err := env.Parse(c); err != nil {
		return nil, err
	}
	c.RuntimePath = resolveRuntimePath(c.RuntimePath)
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

func (c AppConfig) Validate() error {
	switch c.Persistence {
	case PersistenceNone, PersistenceJSON, PersistenceSQLite:
	default:
		return fmt.Errorf("unknown persistence backend %q", c.Persistence)
	}
	if c.HistorySize <= 0 {
		return fmt.Errorf("history size must be positive, got %d", c.HistorySize)
	}
	if c.ExternalAgentTimeout <= 0 {
		return fmt.Errorf("external agent timeout must be positive, got %s", c.ExternalAgentTimeout)
	}
	return nil
}

func (c AppConfig) GetRuntimePath() string {
	return c.RuntimePath
}

func (c AppConfig) GetHistorySize() int {
	return c.HistorySize
}

func (c AppConfig) GetContextSnapshotPath() string {
	return filepath.Join(c.RuntimePath, "context.json")
}

func (c AppConfig) GetDatabasePath() string {
	return filepath.Join(c.RuntimePath, "ctxbroker.db")
}

func (c AppConfig) GetDirectoryPath() string {
	return filepath.Join(c.RuntimePath, "directory.json")
}

func (c AppConfig) GetEnvPath() string {
	return filepath.Join(c.RuntimePath, ".env")
}

func (c AppConfig) IsTelegramSelected() bool {
	return c.EnableTelegram
}
