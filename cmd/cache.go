package cmd

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/genomics-tools/datacheck/internal/cache"
	"github.com/genomics-tools/datacheck/internal/config"
	"github.com/genomics-tools/datacheck/internal/logging"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or clear cached results",
}

var cacheListCmd = &cobra.Command{
	Use:          "list",
	Short:        "List cached results",
	RunE:         runCacheList,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheStatsCmd = &cobra.Command{
	Use:          "stats",
	Short:        "Show cache statistics",
	RunE:         runCacheStats,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

var cacheShowCmd = &cobra.Command{
	Use:          "show KEY",
	Short:        "Show one cached result by key",
	RunE:         runCacheShow,
	SilenceUsage: true,
	Args:         cobra.ExactArgs(1),
}

var cacheClearCmd = &cobra.Command{
	Use:          "clear",
	Short:        "Remove all cached results",
	RunE:         runCacheClear,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
}

func init() {
	cacheCmd.AddCommand(cacheListCmd, cacheShowCmd, cacheStatsCmd, cacheClearCmd)
}

func openStore(cmd *cobra.Command) (*cache.Store, error) {
	dir, err := config.NewLoader().LoadCacheDir(cmd)
	if err != nil {
		return nil, err
	}

	verbose, _ := cmd.Flags().GetBool("verbose")
	return cache.New(dir, logging.New(cmd.ErrOrStderr(), verbose))
}

func runCacheList(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	entries, err := store.Entries()
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "No cached results")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "STATUS\tFAILURES\tFINALIZED\tINPUT\tKEY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", e.Status, len(e.Failures), e.Timestamp.Format("2006-01-02 15:04:05"), e.Input, e.Key)
	}

	return w.Flush()
}

func runCacheShow(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	entry, err := store.Lookup(args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Key: %s\nInput: %s\nKind: %s\nStatus: %s\nFinalized: %s\nDirectory: %s\n",
		entry.Key, entry.Input, entry.Kind, entry.Status, entry.Timestamp.Format("2006-01-02 15:04:05"), entry.Dir)

	if len(entry.Failures) > 0 {
		fmt.Fprintln(out, "Failures:")
		for _, id := range entry.Failures {
			fmt.Fprintf(out, "  %s\n", id)
		}
	}

	return nil
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	count, size, err := store.Stats()
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cache directory: %s\nEntries: %d\nSize: %s\n", store.Root(), count, humanize.IBytes(uint64(size)))
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore(cmd)
	if err != nil {
		return err
	}

	if err := store.Clear(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s\n", store.Root())
	return nil
}
