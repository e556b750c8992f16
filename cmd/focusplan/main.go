// Command focusplan runs the planner API and offers a few offline helpers
// for inspecting grids, focus statistics and ICS exports.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"focusplan/internal/app"
	"focusplan/internal/config"
	appLog "focusplan/internal/log"
)

const version = "0.3.0"

var (
	configPath string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "focusplan",
	Short: "Monthly planner, focus tracker and ICS overlay",
	Long: `focusplan keeps a month-grid planner, a focus task list and a
"top of mind" list in memory and serves them as a JSON API. Read-only ICS
subscriptions are overlaid on the calendar and refreshed on a cron schedule.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if verbose {
			appLog.SetLevel(appLog.LevelDebug)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		appLog.Sync()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(serveCmd, gridCmd, statsCmd, exportCmd, versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "focusplan", version)
	},
}

// loadConfig reads the config file and applies its log level unless
// --verbose already raised it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", configPath, err)
	}
	if !verbose {
		appLog.SetLevel(appLog.ParseLevel(cfg.LogLevel))
	}
	return cfg, nil
}

func newApp(cfg *config.Config, cacheDir string) *app.App {
	opts := app.OptionsFromConfig(cfg)
	opts.CacheDir = cacheDir
	return app.New(opts)
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		appLog.Error("command failed", err)
		appLog.Sync()
		os.Exit(1)
	}
}
