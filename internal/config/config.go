package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/utils"
)

// Default configuration values
const (
	DefaultCacheDirName  = "datacheck"
	DefaultLocalCacheDir = ".datacheck-cache"
	DefaultMaxLineLength = 80
	DefaultNoWarnings    = false
	DefaultNoCache       = false
	DefaultLoadResults   = false
	DefaultNoColor       = false
	DefaultVerbose       = false

	fileInputPlaceholder = "{file}"
	databasePlaceholder  = "{database}"
)

// CommandCheck declares an external program run as a check.
// A zero exit status passes; anything else fails.
type CommandCheck struct {
	Suite string   `mapstructure:"suite"`
	Name  string   `mapstructure:"name"`
	Path  string   `mapstructure:"path"`
	Args  []string `mapstructure:"args"`
}

// Holds the configuration options for datacheck
type Config struct {
	// Path to the file under test
	File string

	// Database URL under test (mysql://... or sqlite:///...)
	Database string

	// Name of the check suite to run
	Suite string

	// Root directory holding cache slots
	CacheDir string

	// Omit the warnings section from console and stored summaries
	NoWarnings bool

	// Bypass the result cache entirely
	NoCache bool

	// Print the stored report and exit without running checks
	LoadResults bool

	// Disable colored console output
	NoColor bool

	// Enable verbose output
	Verbose bool

	// Maximum line length for line length checks
	MaxLineLength int

	// Extra checks backed by external commands
	Commands []CommandCheck
}

func Load() (*Config, error) {
	cfg := &Config{
		File:          viper.GetString("file"),
		Database:      viper.GetString("database"),
		Suite:         viper.GetString("test"),
		CacheDir:      viper.GetString("cache_dir"),
		NoWarnings:    viper.GetBool("no_warnings"),
		NoCache:       viper.GetBool("no_cache_results"),
		LoadResults:   viper.GetBool("load_test_results"),
		NoColor:       viper.GetBool("no_color"),
		Verbose:       viper.GetBool("verbose"),
		MaxLineLength: viper.GetInt("max_line_length"),
	}

	if err := viper.UnmarshalKey("commands", &cfg.Commands); err != nil {
		return nil, fmt.Errorf("%w: invalid commands: %v", codes.ErrConfiguration, err)
	}

	// Apply defaults if not set
	if cfg.CacheDir == "" {
		cfg.CacheDir = DefaultCacheRoot()
	}

	if cfg.MaxLineLength == 0 {
		cfg.MaxLineLength = DefaultMaxLineLength
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.File == "" && c.Database == "":
		return fmt.Errorf("%w: either --file or --database must be provided", codes.ErrConfiguration)
	case c.File != "" && c.Database != "":
		return fmt.Errorf("%w: --file and --database are mutually exclusive", codes.ErrConfiguration)
	}

	if c.NoCache && c.LoadResults {
		return fmt.Errorf("%w: --load-test-results requires the result cache", codes.ErrConfiguration)
	}

	if c.MaxLineLength < 0 {
		return fmt.Errorf("%w: invalid max line length: %d", codes.ErrConfiguration, c.MaxLineLength)
	}

	// Resolve input file path
	if c.File != "" {
		path, err := expandHome(c.File)
		if err != nil {
			return fmt.Errorf("%w: invalid file path: %v", codes.ErrConfiguration, err)
		}

		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("%w: invalid file path: %v", codes.ErrConfiguration, err)
		}
		c.File = abs
	}

	if c.Suite == "" && c.File != "" {
		c.Suite = utils.InferSuite(c.File)
	}

	if c.Suite == "" {
		return fmt.Errorf("%w: no check suite specified (use --test)", codes.ErrConfiguration)
	}

	if abs, err := filepath.Abs(c.CacheDir); err == nil {
		c.CacheDir = abs
	}

	for i, cmd := range c.Commands {
		if cmd.Name == "" || cmd.Path == "" {
			return fmt.Errorf("%w: command check %d needs a name and a path", codes.ErrConfiguration, i)
		}

		if cmd.Suite == "" {
			c.Commands[i].Suite = c.Suite
		}
	}

	return nil
}

// ExpandArgs substitutes the input placeholders in a command check's arguments
func (cc CommandCheck) ExpandArgs(file, database string) []string {
	args := make([]string, len(cc.Args))
	r := strings.NewReplacer(fileInputPlaceholder, file, databasePlaceholder, database)

	for i, arg := range cc.Args {
		args[i] = r.Replace(arg)
	}

	return args
}

// DefaultCacheRoot returns the per-user cache root, falling back to the working directory
func DefaultCacheRoot() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, DefaultCacheDirName)
	}

	return DefaultLocalCacheDir
}

func expandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") && !strings.HasPrefix(path, "~"+string(filepath.Separator)) {
		return path, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	return filepath.Join(home, path[1:]), nil
}
