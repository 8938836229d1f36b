package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/genomics-tools/datacheck/internal/codes"
)

// EnvPrefix prefixes environment variable overrides (DATACHECK_CACHE_DIR, ...)
const EnvPrefix = "DATACHECK"

// ConfigDirEnv overrides the directory searched for the global config file
const ConfigDirEnv = EnvPrefix + "_CONFIG_DIR"

// flagKeys maps command flags to their viper keys
var flagKeys = map[string]string{
	"file":              "file",
	"database":          "database",
	"test":              "test",
	"cache-dir":         "cache_dir",
	"no-warnings":       "no_warnings",
	"no-cache-results":  "no_cache_results",
	"load-test-results": "load_test_results",
	"no-color":          "no_color",
	"verbose":           "verbose",
	"max-line-length":   "max_line_length",
}

// Loader handles configuration loading from various sources
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadForRun loads configuration for a check run
func (l *Loader) LoadForRun(cmd *cobra.Command) (*Config, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.bindCommandFlags(cmd)
	l.bindEnv()
	l.loadLocalConfig(viper.GetString("file"))

	return Load()
}

// LoadCacheDir resolves the cache root for commands that do not run checks
func (l *Loader) LoadCacheDir(cmd *cobra.Command) (string, error) {
	l.setupViperDefaults()
	l.loadGlobalConfig()
	l.bindCommandFlags(cmd)
	l.bindEnv()
	l.loadLocalConfig("")

	dir := viper.GetString("cache_dir")
	if dir == "" {
		dir = DefaultCacheRoot()
	}

	dir, err := expandHome(dir)
	if err != nil {
		return "", fmt.Errorf("%w: invalid cache directory: %v", codes.ErrConfiguration, err)
	}

	return filepath.Abs(dir)
}

// setupViperDefaults sets up default values for viper
func (l *Loader) setupViperDefaults() {
	viper.SetDefault("max_line_length", DefaultMaxLineLength)
	viper.SetDefault("no_warnings", DefaultNoWarnings)
	viper.SetDefault("no_cache_results", DefaultNoCache)
	viper.SetDefault("load_test_results", DefaultLoadResults)
	viper.SetDefault("no_color", DefaultNoColor)
	viper.SetDefault("verbose", DefaultVerbose)
}

// globalConfigDir returns the directory holding the user-wide config file
func (l *Loader) globalConfigDir() string {
	if dir := os.Getenv(ConfigDirEnv); dir != "" {
		return dir
	}

	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}

	return filepath.Join(dir, DefaultCacheDirName)
}

// loadGlobalConfig loads global configuration from the user config directory
func (l *Loader) loadGlobalConfig() {
	globalDir := l.globalConfigDir()
	if globalDir == "" {
		return
	}

	for _, ext := range []string{"yml", "yaml", "json", "toml"} {
		globalPath := filepath.Join(globalDir, "config."+ext)

		if _, err := os.Stat(globalPath); err == nil {
			viper.SetConfigFile(globalPath)

			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}
}

// loadLocalConfig merges local configuration found above the input file,
// or above the working directory in database mode
func (l *Loader) loadLocalConfig(file string) {
	dir, err := os.Getwd()
	if file != "" {
		abs, absErr := filepath.Abs(file)
		if absErr != nil {
			return // silently ignore, config.Load() will handle validation
		}

		dir, err = filepath.Dir(abs), nil
	}

	if err != nil {
		return
	}

	localPath := FindLocalConfig(dir)
	if localPath != "" {
		viper.SetConfigFile(localPath)
		_ = viper.MergeInConfig()
	}
}

// bindEnv lets DATACHECK_* environment variables override config files
func (l *Loader) bindEnv() {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()
}

// bindCommandFlags binds command flags to viper
func (l *Loader) bindCommandFlags(cmd *cobra.Command) {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			_ = viper.BindPFlag(key, f)
		}
	}
}
