// Package config loads the intake service configuration from an optional
// YAML file, then environment variables, then built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Store kinds.
const (
	StoreMemory   = "memory"
	StoreFile     = "file"
	StoreSQLite   = "sqlite"
	StorePostgres = "postgres"
)

// Defaults.
const (
	DefaultLLMURL      = "http://127.0.0.1:8000/v1/chat/completions"
	DefaultLLMModel    = "TinyLlama/TinyLlama-1.1B-Chat-v1.0"
	DefaultLLMTimeout  = 30 * time.Second
	DefaultMaxAttempts = 3
	DefaultAddr        = "127.0.0.1:8550"
	DefaultFilePath    = "form_data.json"
	DefaultSQLitePath  = "intake.db"
)

// Config is the complete service configuration.
type Config struct {
	LLM     LLM     `yaml:"llm"`
	Extract Extract `yaml:"extract"`
	Store   Store   `yaml:"store"`
	Server  Server  `yaml:"server"`
	Log     Log     `yaml:"log"`
}

// LLM configures the chat-completion endpoint.
type LLM struct {
	URL              string   `yaml:"url"`
	Model            string   `yaml:"model"`
	APIKey           string   `yaml:"api_key"`
	Timeout          Duration `yaml:"timeout"`
	TransportRetries int      `yaml:"transport_retries"`
	StructuredOutput bool     `yaml:"structured_output"`
}

// Extract configures the extraction loop.
type Extract struct {
	MaxAttempts int  `yaml:"max_attempts"`
	LenientJSON bool `yaml:"lenient_json"`
}

// Store selects the persistence backend. Path is used by file and sqlite,
// DSN by postgres.
type Store struct {
	Kind string `yaml:"kind"`
	Path string `yaml:"path"`
	DSN  string `yaml:"dsn"`
}

// Server configures the HTTP surface.
type Server struct {
	Addr string `yaml:"addr"`
}

// Log configures the process logger.
type Log struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Duration is a time.Duration written as "30s" in YAML.
type Duration time.Duration

// UnmarshalYAML accepts Go duration strings and plain integers (seconds).
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := parseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: %w", node.Line, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML writes the duration as a string.
func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Std returns d as a time.Duration.
func (d Duration) Std() time.Duration { return time.Duration(d) }

func parseDuration(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if secs, err := strconv.Atoi(s); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid duration %q", s)
	}
	return d, nil
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		LLM: LLM{
			URL:     DefaultLLMURL,
			Model:   DefaultLLMModel,
			Timeout: Duration(DefaultLLMTimeout),
		},
		Extract: Extract{MaxAttempts: DefaultMaxAttempts},
		Store:   Store{Kind: StoreFile},
		Server:  Server{Addr: DefaultAddr},
		Log:     Log{Level: "INFO", Format: "text"},
	}
}

// Load returns the defaults overlaid with the YAML file at path (skipped when
// path is empty) and then with the environment. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return Config{}, err
	}
	cfg.applyStoreDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(key); ok && v != "" {
			*dst = v
		}
	}
	var errs []error
	integer := func(key string, dst *int) {
		if v, ok := lookup(key); ok && v != "" {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: invalid integer %q", key, v))
				return
			}
			*dst = n
		}
	}
	boolean := func(key string, dst *bool) {
		if v, ok := lookup(key); ok && v != "" {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, fmt.Errorf("config: %s: invalid boolean %q", key, v))
				return
			}
			*dst = b
		}
	}

	str("LLM_API_URL", &c.LLM.URL)
	str("LLM_MODEL", &c.LLM.Model)
	str("LLM_API_KEY", &c.LLM.APIKey)
	if v, ok := lookup("LLM_TIMEOUT"); ok && v != "" {
		d, err := parseDuration(v)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: LLM_TIMEOUT: %w", err))
		} else {
			c.LLM.Timeout = Duration(d)
		}
	}
	integer("LLM_TRANSPORT_RETRIES", &c.LLM.TransportRetries)
	boolean("LLM_STRUCTURED_OUTPUT", &c.LLM.StructuredOutput)
	integer("INTAKE_MAX_ATTEMPTS", &c.Extract.MaxAttempts)
	boolean("INTAKE_LENIENT_JSON", &c.Extract.LenientJSON)
	str("INTAKE_STORE", &c.Store.Kind)
	str("INTAKE_STORE_PATH", &c.Store.Path)
	str("INTAKE_STORE_DSN", &c.Store.DSN)
	str("INTAKE_ADDR", &c.Server.Addr)
	str("INTAKE_LOG_LEVEL", &c.Log.Level)
	str("INTAKE_LOG_FORMAT", &c.Log.Format)

	return errors.Join(errs...)
}

func (c *Config) applyStoreDefaults() {
	c.Store.Kind = strings.ToLower(strings.TrimSpace(c.Store.Kind))
	if c.Store.Path != "" {
		return
	}
	switch c.Store.Kind {
	case StoreFile:
		c.Store.Path = DefaultFilePath
	case StoreSQLite:
		c.Store.Path = DefaultSQLitePath
	}
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error

	if strings.TrimSpace(c.LLM.URL) == "" {
		errs = append(errs, errors.New("config: llm.url is required"))
	}
	if c.LLM.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("config: llm.timeout must be positive, got %s", c.LLM.Timeout.Std()))
	}
	if c.LLM.TransportRetries < 0 {
		errs = append(errs, fmt.Errorf("config: llm.transport_retries must not be negative, got %d", c.LLM.TransportRetries))
	}
	if c.Extract.MaxAttempts < 1 {
		errs = append(errs, fmt.Errorf("config: extract.max_attempts must be at least 1, got %d", c.Extract.MaxAttempts))
	}

	switch c.Store.Kind {
	case StoreMemory, StoreFile, StoreSQLite:
	case StorePostgres:
		if c.Store.DSN == "" {
			errs = append(errs, errors.New("config: store.dsn is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown store kind %q", c.Store.Kind))
	}

	if strings.TrimSpace(c.Server.Addr) == "" {
		errs = append(errs, errors.New("config: server.addr is required"))
	}

	return errors.Join(errs...)
}
