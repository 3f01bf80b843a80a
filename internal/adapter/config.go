package adapter

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	API     APIConfig     `mapstructure:"api"`
	Loader  LoaderConfig  `mapstructure:"loader"`
	Storage StorageConfig `mapstructure:"storage"`
	Cache   CacheConfig   `mapstructure:"cache"`
	UI      UIConfig      `mapstructure:"ui"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// APIConfig holds PokeAPI connection settings
type APIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// LoaderConfig holds infinite-scroll settings
type LoaderConfig struct {
	Limit        int           `mapstructure:"limit"`         // Items per page
	ScrollOffset int           `mapstructure:"scroll_offset"` // Rows from the bottom that trigger a fetch
	RecheckDelay time.Duration `mapstructure:"recheck_delay"` // Wait after focus gain before re-checking scroll
}

// StorageConfig holds durable store settings
type StorageConfig struct {
	Backend      string `mapstructure:"backend"` // bolt, sqlite, file or memory
	Path         string `mapstructure:"path"`
	FavoritesKey string `mapstructure:"favorites_key"`
	Watch        bool   `mapstructure:"watch"` // file backend only
}

// CacheConfig holds page cache settings
type CacheConfig struct {
	Pages bool `mapstructure:"pages"`
}

// UIConfig holds UI configuration
type UIConfig struct {
	Theme   string `mapstructure:"theme"`
	ShowIDs bool   `mapstructure:"show_ids"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	File  string `mapstructure:"file"`
	Level string `mapstructure:"level"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	return &Config{
		API: APIConfig{
			BaseURL: "https://pokeapi.co/api/v2",
			Timeout: 15 * time.Second,
		},
		Loader: LoaderConfig{
			Limit:        20,
			ScrollOffset: 10,
			RecheckDelay: 100 * time.Millisecond,
		},
		Storage: StorageConfig{
			Backend:      "bolt",
			Path:         defaultDataPath(),
			FavoritesKey: "pokemon-favorites",
		},
		Cache: CacheConfig{
			Pages: true,
		},
		UI: UIConfig{
			Theme:   "default",
			ShowIDs: true,
		},
		Logging: LoggingConfig{
			File:  filepath.Join(defaultDataPath(), "pokedex.log"),
			Level: "INFO",
		},
	}
}

// defaultDataPath returns the default data directory for the current OS
func defaultDataPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("LOCALAPPDATA"), "pokedex")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".local", "share", "pokedex")
	}
}

// defaultConfigPath returns the default config directory for the current OS
func defaultConfigPath() string {
	switch runtime.GOOS {
	case "windows":
		return filepath.Join(os.Getenv("APPDATA"), "pokedex")
	default:
		home, _ := os.UserHomeDir()
		return filepath.Join(home, ".config", "pokedex")
	}
}

// setDefaults registers every key so environment overrides apply even when
// no config file mentions them.
func setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("api.base_url", cfg.API.BaseURL)
	v.SetDefault("api.timeout", cfg.API.Timeout)

	v.SetDefault("loader.limit", cfg.Loader.Limit)
	v.SetDefault("loader.scroll_offset", cfg.Loader.ScrollOffset)
	v.SetDefault("loader.recheck_delay", cfg.Loader.RecheckDelay)

	v.SetDefault("storage.backend", cfg.Storage.Backend)
	v.SetDefault("storage.path", cfg.Storage.Path)
	v.SetDefault("storage.favorites_key", cfg.Storage.FavoritesKey)
	v.SetDefault("storage.watch", cfg.Storage.Watch)

	v.SetDefault("cache.pages", cfg.Cache.Pages)

	v.SetDefault("ui.theme", cfg.UI.Theme)
	v.SetDefault("ui.show_ids", cfg.UI.ShowIDs)

	v.SetDefault("logging.file", cfg.Logging.File)
	v.SetDefault("logging.level", cfg.Logging.Level)
}

// LoadConfig loads configuration from file and environment. An empty path
// searches the default config directory and the working directory.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	v := viper.New()
	setDefaults(v, cfg)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(defaultConfigPath())
		v.AddConfigPath(".")
	}

	// Environment variable overrides (POKEDEX_STORAGE_BACKEND, ...)
	v.SetEnvPrefix("POKEDEX")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, use defaults
	}

	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	cfg.Storage.Path = expandHome(cfg.Storage.Path)
	cfg.Logging.File = expandHome(cfg.Logging.File)
	return cfg, nil
}

// SaveConfig writes cfg to the default config directory and returns the
// file path.
func SaveConfig(cfg *Config) (string, error) {
	configPath := defaultConfigPath()
	if err := os.MkdirAll(configPath, 0755); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	configFile := filepath.Join(configPath, "config.yaml")
	return configFile, WriteConfig(cfg, configFile)
}

// WriteConfig writes cfg as YAML to file.
func WriteConfig(cfg *Config, file string) error {
	v := viper.New()

	// Set fields individually to ensure snake_case key names
	v.Set("api.base_url", cfg.API.BaseURL)
	v.Set("api.timeout", cfg.API.Timeout.String())

	v.Set("loader.limit", cfg.Loader.Limit)
	v.Set("loader.scroll_offset", cfg.Loader.ScrollOffset)
	v.Set("loader.recheck_delay", cfg.Loader.RecheckDelay.String())

	v.Set("storage.backend", cfg.Storage.Backend)
	v.Set("storage.path", cfg.Storage.Path)
	v.Set("storage.favorites_key", cfg.Storage.FavoritesKey)
	v.Set("storage.watch", cfg.Storage.Watch)

	v.Set("cache.pages", cfg.Cache.Pages)

	v.Set("ui.theme", cfg.UI.Theme)
	v.Set("ui.show_ids", cfg.UI.ShowIDs)

	v.Set("logging.file", cfg.Logging.File)
	v.Set("logging.level", cfg.Logging.Level)

	if err := v.WriteConfigAs(file); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory
func expandHome(path string) string {
	if !strings.HasPrefix(path, "~") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[1:])
}
