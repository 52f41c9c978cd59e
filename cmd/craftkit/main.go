package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime/debug"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/spf13/cobra"

	"github.com/provide-io/craftkit/pkg/config"
	"github.com/provide-io/craftkit/pkg/download"
	"github.com/provide-io/craftkit/pkg/logging"
)

const version = "0.4.0"

var (
	configPath  string
	logLevel    string
	launcherDir string
	rootCmd     *cobra.Command
)

func buildTimestamp() string {
	// Try to get vcs.time from build info
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.time" {
				if t, err := time.Parse(time.RFC3339, setting.Value); err == nil {
					return t.UTC().Format(time.RFC3339)
				}
			}
		}
	}
	// Fallback to binary modification time
	if exePath, err := os.Executable(); err == nil {
		if stat, err := os.Stat(exePath); err == nil {
			return stat.ModTime().UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}

func init() {
	rootCmd = &cobra.Command{
		Use:           "craftkit",
		Short:         "Provision Java runtimes and mod loaders for game instances",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to craftkit.yaml")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&launcherDir, "dir", "", "Launcher directory (overrides config and CRAFTKIT_DIR)")

	rootCmd.AddCommand(newVersionCmd(), newJavaCmd(), newForgeCmd(), newFabricCmd())
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("craftkit %s\n", version)
			fmt.Printf("Built: %s\n", buildTimestamp())
		},
	}
}

// env is what every subcommand needs.
type env struct {
	cfg    *config.Config
	logger hclog.Logger
	client *download.Client
}

func setup() (*env, error) {
	level := logLevel
	if level == "" {
		level = logging.GetLogLevel()
	}
	logger := logging.NewLogger("craftkit", level, os.Stderr)

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}
	if launcherDir != "" {
		cfg.LauncherDir = launcherDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger.Debug("🔧 Configuration loaded", "launcher_dir", cfg.LauncherDir, "concurrency", cfg.Concurrency)
	return &env{cfg: cfg, logger: logger, client: download.New(cfg, logger)}, nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, errorStyle.Render("error: ")+err.Error())
		stop()
		os.Exit(1)
	}
}
