package cmd

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/genomics-tools/datacheck/internal/cache"
	"github.com/genomics-tools/datacheck/internal/checks"
	"github.com/genomics-tools/datacheck/internal/codes"
	"github.com/genomics-tools/datacheck/internal/config"
	"github.com/genomics-tools/datacheck/internal/coordinator"
	"github.com/genomics-tools/datacheck/internal/fingerprint"
	"github.com/genomics-tools/datacheck/internal/logging"
	"github.com/genomics-tools/datacheck/internal/report"
	"github.com/genomics-tools/datacheck/internal/runner"
	"github.com/genomics-tools/datacheck/internal/source"
	"github.com/genomics-tools/datacheck/internal/version"
)

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run a check suite",
	Long:         `Run the selected check suite against a file or a database, reusing cached results where possible.`,
	RunE:         runChecks,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func runChecks(cmd *cobra.Command, args []string) error {
	loader := config.NewLoader()
	cfg, err := loader.LoadForRun(cmd)
	if err != nil {
		return err
	}

	logger := logging.New(cmd.ErrOrStderr(), cfg.Verbose)
	out := cmd.OutOrStdout()

	registry := checks.Default()
	if err := registry.Register(checks.NewCommandRunner().Checks(cfg.Commands)...); err != nil {
		return fmt.Errorf("%w: %v", codes.ErrConfiguration, err)
	}

	suite, err := registry.Suite(cfg.Suite)
	if err != nil {
		return err
	}

	printBanner(cmd.ErrOrStderr(), cfg)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	env := &checks.Env{
		File:          cfg.File,
		Database:      cfg.Database,
		MaxLineLength: cfg.MaxLineLength,
	}

	opts := coordinator.Options{
		Input:       fingerprint.Input{File: cfg.File, Database: cfg.Database},
		Out:         out,
		Logger:      logger,
		NoCache:     cfg.NoCache,
		LoadResults: cfg.LoadResults,
	}

	if cfg.Database != "" {
		src, err := source.Open(ctx, cfg.Database)
		if err != nil {
			return err
		}
		defer src.Close()

		env.Source = src
		opts.Source = src
	}

	if !cfg.NoCache {
		store, err := cache.New(cfg.CacheDir, logger)
		if err != nil {
			return err
		}
		opts.Store = store
	}

	renderer := report.NewRenderer(terminalWidth(out), useColor(cfg, out), cfg.NoWarnings)
	opts.Aggregator = report.NewAggregator(renderer)

	coord, err := coordinator.New(opts)
	if err != nil {
		return err
	}
	defer coord.Close()

	summary, err := runner.New(suite, env, coord, logger).Run(ctx)
	if err != nil {
		return err
	}

	level.Debug(logger).Log(
		"msg", "run complete",
		"mode", summary.Plan.Mode,
		"executed", summary.Executed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)

	if coord.Failed() {
		return codes.ErrChecksFailed
	}

	return nil
}

func printBanner(w io.Writer, cfg *config.Config) {
	input := cfg.File
	if cfg.Database != "" {
		input = redactURL(cfg.Database)
	}

	fmt.Fprintf(w, "datacheck %s\nSuite: %s\nInput: %s\n", version.Version, cfg.Suite, input)
}

// redactURL hides the password of a database URL
func redactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "<invalid database url>"
	}

	return u.Redacted()
}

// terminalWidth returns the console width of w, or the default when w is not a terminal
func terminalWidth(w io.Writer) int {
	f, ok := w.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		return report.DefaultWidth
	}

	width, _, err := term.GetSize(int(f.Fd()))
	if err != nil || width <= 0 {
		return report.DefaultWidth
	}

	return width
}

func useColor(cfg *config.Config, w io.Writer) bool {
	if cfg.NoColor || os.Getenv("NO_COLOR") != "" {
		return false
	}

	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
