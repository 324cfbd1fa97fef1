package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

const filePerm = 0o644

// Config is the root configuration.
type Config struct {
	Logging   LoggingConfig   `mapstructure:"logging" json:"logging"`
	Database  DatabaseConfig  `mapstructure:"database" json:"database"`
	Filtering FilteringConfig `mapstructure:"filtering" json:"filtering"`
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string `mapstructure:"level" json:"level" jsonschema:"enum=trace,enum=debug,enum=info,enum=warn,enum=error"`
	Format string `mapstructure:"format" json:"format" jsonschema:"enum=console,enum=json"`
}

// DatabaseConfig controls the sqlite store.
type DatabaseConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// FilteringConfig controls the shield engine.
type FilteringConfig struct {
	Enabled             bool                    `mapstructure:"enabled" json:"enabled"`
	UpdateIntervalHours int                     `mapstructure:"update_interval_hours" json:"update_interval_hours"`
	CacheDir            string                  `mapstructure:"cache_dir" json:"cache_dir"`
	FilterLists         []FilterListConfig      `mapstructure:"filter_lists" json:"filter_lists"`
	CustomRules         []CustomRuleConfig      `mapstructure:"custom_rules" json:"custom_rules,omitempty"`
	CompiledPatterns    []CompiledPatternConfig `mapstructure:"compiled_patterns" json:"compiled_patterns,omitempty"`
}

// FilterListConfig declares a remote filter list.
type FilterListConfig struct {
	Name    string `mapstructure:"name" json:"name"`
	URL     string `mapstructure:"url" json:"url"`
	Enabled bool   `mapstructure:"enabled" json:"enabled"`
}

// CustomRuleConfig declares a user rule. This is the only path that attaches
// domain scopes, exceptions and resource-type restrictions to a rule.
// An empty Resources list means the rule applies to every resource type.
type CustomRuleConfig struct {
	Pattern    string   `mapstructure:"pattern" json:"pattern"`
	Kind       string   `mapstructure:"kind" json:"kind" jsonschema:"enum=block,enum=allow,enum=hide,enum=redirect"`
	Domains    []string `mapstructure:"domains" json:"domains,omitempty"`
	Exceptions []string `mapstructure:"exceptions" json:"exceptions,omitempty"`
	Resources  []string `mapstructure:"resources" json:"resources,omitempty"`
}

// CompiledPatternConfig binds a regular expression matcher to the exact
// pattern text of a rule.
type CompiledPatternConfig struct {
	Pattern string `mapstructure:"pattern" json:"pattern"`
	Regex   string `mapstructure:"regex" json:"regex"`
}

// Manager handles configuration loading, watching, and reloading.
type Manager struct {
	config    *Config
	viper     *viper.Viper
	mu        sync.RWMutex
	callbacks []func(*Config)
	watching  bool
}

// NewManager creates a new configuration manager.
func NewManager() (*Manager, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")

	configDir, err := GetConfigDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine config directory: %w", err)
	}
	v.AddConfigPath(configDir)
	v.AddConfigPath(".") // current directory for development

	v.SetEnvPrefix("SW3DO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.BindEnv("logging.level", "SW3DO_LOG_LEVEL"); err != nil {
		return nil, fmt.Errorf("failed to bind SW3DO_LOG_LEVEL: %w", err)
	}
	if err := v.BindEnv("logging.format", "SW3DO_LOG_FORMAT"); err != nil {
		return nil, fmt.Errorf("failed to bind SW3DO_LOG_FORMAT: %w", err)
	}

	return &Manager{
		viper:     v,
		callbacks: make([]func(*Config), 0),
	}, nil
}

// Load loads the configuration from file and environment variables.
func (m *Manager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := EnsureDirectories(); err != nil {
		return fmt.Errorf("failed to ensure directories: %w", err)
	}

	m.setDefaults()

	if err := m.readConfigFile(); err != nil {
		return err
	}

	config, err := m.unmarshalConfig()
	if err != nil {
		return err
	}
	if err := ensurePaths(config); err != nil {
		return err
	}

	if err := validateConfig(config); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	m.config = config
	return nil
}

// Get returns the loaded configuration.
func (m *Manager) Get() *Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

func (m *Manager) readConfigFile() error {
	if err := m.viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			if createErr := m.createDefaultConfig(); createErr != nil {
				configDir, _ := GetConfigDir()
				return fmt.Errorf("failed to create default config at %s: %w", configDir, createErr)
			}
			if rereadErr := m.viper.ReadInConfig(); rereadErr != nil {
				return fmt.Errorf("failed to read newly created config file: %w", rereadErr)
			}
			return nil
		}
		configFile := m.viper.ConfigFileUsed()
		if configFile == "" {
			configDir, _ := GetConfigDir()
			configFile = filepath.Join(configDir, "config.toml")
		}
		return fmt.Errorf("failed to read config file at %s: %w", configFile, err)
	}
	return nil
}

func (m *Manager) unmarshalConfig() (*Config, error) {
	config := &Config{}
	if err := m.viper.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to parse config file at %s: %w", m.viper.ConfigFileUsed(), err)
	}
	return config, nil
}

func (m *Manager) createDefaultConfig() error {
	configDir, err := GetConfigDir()
	if err != nil {
		return err
	}

	configFile := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(configFile, []byte(defaultConfigTOML), filePerm); err != nil {
		return err
	}

	// Keep the schema file next to the config for editor integration.
	if err := GenerateSchemaFile(); err != nil {
		return err
	}
	return nil
}

func ensurePaths(config *Config) error {
	if config.Database.Path == "" {
		dbPath, err := GetDatabaseFile()
		if err != nil {
			return fmt.Errorf("failed to get database path: %w", err)
		}
		config.Database.Path = dbPath
	}
	if config.Filtering.CacheDir == "" {
		cacheDir, err := GetRuleCacheDir()
		if err != nil {
			return fmt.Errorf("failed to get rule cache path: %w", err)
		}
		config.Filtering.CacheDir = cacheDir
	}
	return nil
}
