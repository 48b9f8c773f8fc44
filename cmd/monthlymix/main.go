// Package main запускает сборщик ежемесячного плейлиста.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"monthlymix/internal/app"
	"monthlymix/internal/config"
	"monthlymix/internal/model"
	"monthlymix/internal/service"
	"monthlymix/pkg/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var version = "dev"

var (
	cfg *config.Config
	log *zap.Logger
)

func main() {
	log = logger.New()
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "monthlymix",
	Short:         "Monthly playlist of community music picks",
	Long:          "monthlymix collects music links shared during a month and publishes the previous month's releases as a private Spotify playlist.",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" {
			return nil
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			log.Error("Failed to load configuration", zap.Error(err))
			return err
		}
		return nil
	},
}

func init() {
	runCmd.Flags().StringVar(&runMonth, "month", "", "Target month as YYYY-MM (default: previous month)")
	statsCmd.Flags().IntVar(&statsArtists, "artists", 10, "Number of top artists")
	statsCmd.Flags().IntVar(&statsRuns, "runs", 5, "Number of recent runs")

	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(configCmd)
}

// openApp собирает приложение, вызывающий обязан закрыть его
func openApp(ctx context.Context) (*app.App, error) {
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Error("Failed to initialize application", zap.Error(err))
		return nil, err
	}
	return a, nil
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("monthlymix", version)
	},
}

// --- run command ---

var runMonth string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Build the playlist for the previous month and print the JSON report",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		var report *model.Report
		if runMonth != "" {
			month, err := model.ParseMonthKey(runMonth)
			if err != nil {
				return err
			}
			report = a.Services.Mixtape.RunForMonth(ctx, model.TriggerCLI, month)
		} else {
			report = a.Services.Mixtape.Run(ctx, model.TriggerCLI)
		}

		if err := printJSON(report); err != nil {
			return err
		}
		if !report.Success {
			return fmt.Errorf("run failed: %s", report.Message)
		}
		return nil
	},
}

// --- serve command ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server, the monthly schedule and the Telegram bot",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Serve(ctx); err != nil {
			log.Error("Service stopped with error", zap.Error(err))
			return err
		}

		log.Info("Service stopped successfully")
		return nil
	},
}

// --- submit command ---

var submitCmd = &cobra.Command{
	Use:   "submit [text...]",
	Short: "Store submissions for the current month",
	Long:  "Each argument is stored as one submission. Without arguments, submissions are read from stdin, one per line.",
	RunE: func(cmd *cobra.Command, args []string) error {
		texts := args
		if len(texts) == 0 {
			lines, err := readLines(cmd.InOrStdin())
			if err != nil {
				return err
			}
			texts = lines
		}
		if len(texts) == 0 {
			return fmt.Errorf("nothing to submit")
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		result, err := a.Services.Submissions.Submit(cmd.Context(), texts)
		if err != nil {
			return err
		}
		return printJSON(result)
	},
}

// --- stats command ---

var (
	statsArtists int
	statsRuns    int
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show playlist history and recent runs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		summary, err := a.Services.History.GetSummary(cmd.Context(), statsArtists, statsRuns)
		if err != nil {
			return err
		}
		return printJSON(summary)
	},
}

// --- config command ---

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration stored in the database",
}

var configSetCmd = &cobra.Command{
	Use:   "set KEY VALUE",
	Short: "Store a configuration value",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		key := strings.ToUpper(strings.TrimSpace(args[0]))
		if !model.ConfigKey(key).IsValid() {
			return fmt.Errorf("unknown config key %q", key)
		}

		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Services.Config.Set(cmd.Context(), key, args[1]); err != nil {
			return err
		}
		fmt.Printf("%s updated\n", key)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored configuration, secrets are hidden",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer a.Close()

		lines, err := a.Services.Config.GetAll(cmd.Context())
		if err != nil {
			if errors.Is(err, service.ErrNoConfigStore) {
				return fmt.Errorf("%w: storage type %s keeps links only", err, cfg.StorageType)
			}
			return err
		}
		for _, line := range lines {
			fmt.Println(line)
		}
		return nil
	},
}
