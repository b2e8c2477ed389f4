package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/conduitllm/admin/internal/cachemgmt"
	"github.com/conduitllm/admin/internal/config"
	"github.com/conduitllm/admin/internal/httpclient"
)

var (
	serverURL   string
	adminUser   string
	outputJSON  bool
	statsRegion string
)

// cacheCmd groups the commands that talk to a running server
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and manage the cache regions of a running server",
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache statistics for all regions or one region",
	RunE:  runCacheStats,
}

var cacheTopCmd = &cobra.Command{
	Use:   "top",
	Short: "Show the most used key families",
	RunE:  runCacheTop,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear <region|all>",
	Short: "Clear one cache region, or every region with \"all\"",
	Args:  cobra.ExactArgs(1),
	RunE:  runCacheClear,
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheStatsCmd, cacheTopCmd, cacheClearCmd)

	cacheCmd.PersistentFlags().StringVar(&serverURL, "server", "", "admin server URL (default derived from the config file)")
	cacheCmd.PersistentFlags().StringVar(&adminUser, "user", "cli", "name recorded as the author of changes")
	cacheCmd.PersistentFlags().BoolVar(&outputJSON, "json", false, "print JSON even on a terminal")
	cacheStatsCmd.Flags().StringVar(&statsRegion, "region", "", "region to show (default all regions combined)")
}

// newClient builds an API client for --server, or for the address and prefix
// of the loaded configuration.
func newClient() *httpclient.Client {
	prefix := httpclient.DefaultPrefix
	target := serverURL

	cfg, err := config.LoadConfig(afero.NewOsFs(), configFile)
	if err != nil {
		cfg = config.DefaultConfig()
	}
	if cfg.API.Prefix != "" {
		prefix = cfg.API.Prefix
	}
	if target == "" {
		host := cfg.API.Host
		if host == "" || host == "0.0.0.0" {
			host = "127.0.0.1"
		}
		target = "http://" + host + ":" + strconv.Itoa(cfg.API.Port)
	}

	return httpclient.New(target, httpclient.WithPrefix(prefix), httpclient.WithUser(adminUser))
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	stats, err := newClient().GetStatistics(cmd.Context(), statsRegion)
	if err != nil {
		return fmt.Errorf("failed to get statistics: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(out, outputJSON) {
		return writeJSON(out, stats)
	}

	_, err = fmt.Fprintln(out, renderTable([]string{"Metric", "Value"}, statsRows(stats)))
	return err
}

func statsRows(stats *cachemgmt.StatisticsSnapshot) [][]string {
	name := stats.DisplayName
	if name == "" {
		name = stats.Region
	}
	return [][]string{
		{"Region", name},
		{"Hits", formatCount(stats.TotalHits)},
		{"Misses", formatCount(stats.TotalMisses)},
		{"Sets", formatCount(stats.TotalSets)},
		{"Evictions", formatCount(stats.TotalEvictions)},
		{"Entries", formatCount(stats.EntryCount)},
		{"Hit rate", formatPercent(stats.HitRate)},
		{"Eviction rate", formatPercent(stats.EvictionRate)},
		{"Avg get latency", formatMillis(stats.AverageGetLatencyMs)},
		{"Avg set latency", formatMillis(stats.AverageSetLatencyMs)},
		{"Memory", stats.Memory.Current + " / " + stats.Memory.Limit},
	}
}

func runCacheTop(cmd *cobra.Command, args []string) error {
	items, err := newClient().GetTopCachedItems(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to get top cached items: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(out, outputJSON) {
		return writeJSON(out, items)
	}

	rows := make([][]string, 0, len(items))
	for _, item := range items {
		rows = append(rows, []string{item.KeyPattern, item.Region, formatCount(item.HitCount), item.AverageItemSize})
	}
	_, err = fmt.Fprintln(out, renderTable([]string{"Pattern", "Region", "Hits", "Avg size"}, rows))
	return err
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	msg, err := newClient().ClearCache(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}

	out := cmd.OutOrStdout()
	if wantJSON(out, outputJSON) {
		return writeJSON(out, map[string]string{"message": msg})
	}
	_, err = fmt.Fprintln(out, successStyle.Render(msg))
	return err
}
