package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Veraticus/immowert/internal/common"
	"github.com/Veraticus/immowert/internal/geocode"
	"github.com/Veraticus/immowert/internal/history"
	"github.com/Veraticus/immowert/internal/llm"
	"github.com/Veraticus/immowert/internal/storage"
)

// EnvPrefix prefixes every environment override, e.g. IMMOWERT_LLM_MODEL.
const EnvPrefix = "IMMOWERT"

// Config is the resolved application configuration.
type Config struct {
	LLM     LLM
	Logging Logging
	History History
	Geocode Geocode
	Server  Server
}

// LLM selects and configures the remote reasoning provider.
type LLM struct {
	Provider string
	Model    string
	APIKey   string
	BaseURL  string
	Timeout  time.Duration
}

// Client returns the llm package configuration.
func (l LLM) Client() llm.Config {
	return llm.Config{
		Provider: l.Provider,
		APIKey:   l.APIKey,
		Model:    l.Model,
		BaseURL:  l.BaseURL,
		Timeout:  l.Timeout,
	}
}

// Logging configures the process-wide slog logger.
type Logging struct {
	Level  string
	Format string
}

// History configures where past valuations are kept.
type History struct {
	Backend    storage.Backend
	Path       string
	MaxEntries int
}

// Geocode configures the address search client.
type Geocode struct {
	BaseURL   string
	UserAgent string
}

// Server configures the HTTP API. With TLS set the API is served over HTTPS
// using a self-signed localhost certificate kept in CertDir.
type Server struct {
	Addr    string
	CertDir string
	TLS     bool
}

// SetDefaults registers the default value of every key on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("llm.provider", llm.ProviderAnthropic)
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.base_url", "")
	v.SetDefault("llm.timeout", llm.DefaultTimeout)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("history.backend", string(storage.BackendSQLite))
	v.SetDefault("history.path", "")
	v.SetDefault("history.max_entries", history.DefaultMaxEntries)

	v.SetDefault("geocode.base_url", geocode.DefaultBaseURL)
	v.SetDefault("geocode.user_agent", geocode.DefaultUserAgent)

	v.SetDefault("server.addr", "127.0.0.1:8080")
	v.SetDefault("server.tls", false)
	v.SetDefault("server.cert_dir", "")
}

// Read points v at the config file and environment. A missing file is not an
// error; an explicit file that cannot be read is.
func Read(v *viper.Viper, file string) error {
	if file != "" {
		v.SetConfigFile(ExpandPath(file))
	} else {
		v.AddConfigPath(DefaultDir())
		v.AddConfigPath(".")
		v.SetConfigName("config")
		v.SetConfigType("yaml")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	return nil
}

// Load resolves the configuration from v. The provider API key falls back to
// the provider's conventional environment variable.
func Load(v *viper.Viper) (Config, error) {
	cfg := Config{
		LLM: LLM{
			Provider: strings.ToLower(strings.TrimSpace(v.GetString("llm.provider"))),
			Model:    v.GetString("llm.model"),
			APIKey:   v.GetString("llm.api_key"),
			BaseURL:  v.GetString("llm.base_url"),
			Timeout:  v.GetDuration("llm.timeout"),
		},
		Logging: Logging{
			Level:  v.GetString("logging.level"),
			Format: v.GetString("logging.format"),
		},
		History: History{
			Backend:    storage.Backend(strings.ToLower(v.GetString("history.backend"))),
			Path:       ExpandPath(v.GetString("history.path")),
			MaxEntries: v.GetInt("history.max_entries"),
		},
		Geocode: Geocode{
			BaseURL:   v.GetString("geocode.base_url"),
			UserAgent: v.GetString("geocode.user_agent"),
		},
		Server: Server{
			Addr:    v.GetString("server.addr"),
			CertDir: ExpandPath(v.GetString("server.cert_dir")),
			TLS:     v.GetBool("server.tls"),
		},
	}

	if cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = os.Getenv(llm.APIKeyEnv(cfg.LLM.Provider))
	}
	if cfg.Server.CertDir == "" {
		cfg.Server.CertDir = filepath.Join(DefaultDir(), "tls")
	}
	if cfg.History.Path == "" {
		cfg.History.Path = defaultHistoryPath(cfg.History.Backend)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail late.
func (c Config) Validate() error {
	known := false
	for _, p := range llm.Providers() {
		if c.LLM.Provider == p {
			known = true
		}
	}
	if !known {
		return invalid("llm.provider", "unsupported provider %q (expected one of %s)",
			c.LLM.Provider, strings.Join(llm.Providers(), ", "))
	}
	if c.LLM.Timeout < 0 {
		return invalid("llm.timeout", "must not be negative")
	}

	if _, err := common.ParseLevel(c.Logging.Level); err != nil {
		return common.NewConfigurationError("logging.level", fmt.Errorf("%w: %w", common.ErrInvalidConfig, err))
	}
	if c.Logging.Format != "console" && c.Logging.Format != "json" {
		return invalid("logging.format", "invalid log format: %s", c.Logging.Format)
	}

	switch c.History.Backend {
	case storage.BackendMemory, storage.BackendFile, storage.BackendSQLite:
	default:
		return invalid("history.backend", "unknown backend %q", c.History.Backend)
	}
	if c.History.MaxEntries <= 0 {
		return invalid("history.max_entries", "must be positive, got %d", c.History.MaxEntries)
	}

	if c.Server.Addr == "" {
		return invalid("server.addr", "must not be empty")
	}
	return nil
}

func defaultHistoryPath(backend storage.Backend) string {
	switch backend {
	case storage.BackendFile:
		return filepath.Join(DefaultDataDir(), "history")
	case storage.BackendSQLite:
		return filepath.Join(DefaultDataDir(), "immowert.db")
	default:
		return ""
	}
}

func invalid(setting, format string, args ...any) error {
	return common.NewConfigurationError(setting,
		fmt.Errorf("%w: %s", common.ErrInvalidConfig, fmt.Sprintf(format, args...)))
}
