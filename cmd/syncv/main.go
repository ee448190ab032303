package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/gmurga/syncv/internal/sync"
	"github.com/gmurga/syncv/internal/syncd"
	"github.com/gmurga/syncv/internal/syncd/config"
	"github.com/gmurga/syncv/internal/utils"
	"github.com/gmurga/syncv/internal/version"
)

var (
	red   = color.New(color.FgHiRed, color.Bold).SprintFunc()
	green = color.New(color.FgHiGreen).SprintFunc()
	cyan  = color.New(color.FgHiCyan).SprintFunc()
)

var logFile *os.File

var rootCmd = &cobra.Command{
	Use:   "syncv SOURCE REPLICA",
	Short: "One-way folder synchronizer",
	Long: "syncv periodically makes REPLICA an exact copy of SOURCE: new and changed\n" +
		"files are copied over, and anything absent from SOURCE is deleted.",
	Version: version.Detailed(),
	Args:    cobra.ExactArgs(2),
	PreRunE: func(cmd *cobra.Command, args []string) error {
		if err := loadConfig(cmd); err != nil {
			return err
		}
		return setupLogging()
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			SourceDir:  args[0],
			ReplicaDir: args[1],
			Interval:   viper.GetDuration("interval"),
			LogFile:    viper.GetString("log_file"),
			LogLevel:   viper.GetString("log_level"),
			Watch:      viper.GetBool("watch"),
			Detect:     viper.GetString("detect"),
			HistoryDB:  viper.GetString("history_db"),
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		cmd.SilenceUsage = true

		if dryRun, _ := cmd.Flags().GetBool("dry-run"); dryRun {
			return runDryRun(cmd, cfg)
		}

		daemon, err := syncd.New(cfg)
		if err != nil {
			return err
		}

		defer slog.Info("Bye!")
		if err := daemon.Run(cmd.Context()); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	rootCmd.Flags().SortFlags = false
	rootCmd.Flags().DurationP("interval", "i", 0, "time between passes; 0 runs a single pass")
	rootCmd.Flags().String("logfile", config.DefaultLogFilePath, "path of the log file")
	rootCmd.Flags().String("loglevel", "info", "log level (debug|info|warn|error)")
	rootCmd.Flags().BoolP("watch", "w", false, "also trigger a pass when the source changes")
	rootCmd.Flags().String("detect", config.DetectModTime, "change detection policy (modtime|content)")
	rootCmd.Flags().String("history-db", "", "record passes and events into this sqlite file")
	rootCmd.Flags().BoolP("dry-run", "n", false, "print the planned actions without applying them")
	rootCmd.PersistentFlags().StringP("config", "c", config.DefaultConfigPath, "syncv config file")
}

func main() {
	defer func() {
		if logFile != nil {
			logFile.Close()
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func loadConfig(cmd *cobra.Command) error {
	if cmd.Flag("config").Changed {
		configFilePath, _ := cmd.Flags().GetString("config")
		viper.SetConfigFile(configFilePath)
	} else {
		home, _ := os.UserHomeDir()
		viper.AddConfigPath(home + "/.syncv")
		viper.SetConfigName("config")
		viper.SetConfigType("json")
	}

	if err := viper.ReadInConfig(); err != nil {
		enoent := errors.Is(err, os.ErrNotExist)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !enoent && !notFound {
			return fmt.Errorf("config read %q: %w", viper.ConfigFileUsed(), err)
		}
	}

	viper.BindPFlag("interval", cmd.Flags().Lookup("interval"))
	viper.BindPFlag("log_file", cmd.Flags().Lookup("logfile"))
	viper.BindPFlag("log_level", cmd.Flags().Lookup("loglevel"))
	viper.BindPFlag("watch", cmd.Flags().Lookup("watch"))
	viper.BindPFlag("detect", cmd.Flags().Lookup("detect"))
	viper.BindPFlag("history_db", cmd.Flags().Lookup("history-db"))

	viper.SetEnvPrefix("SYNCV")
	viper.AutomaticEnv()

	return nil
}

func setupLogging() error {
	level := parseLogLevel(viper.GetString("log_level"))

	logPath := viper.GetString("log_file")
	if err := utils.EnsureParent(logPath); err != nil {
		return fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	logFile = file

	stdoutHandler := tint.NewHandler(os.Stdout, &tint.Options{
		Level:      level,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
		NoColor:    !isatty.IsTerminal(os.Stdout.Fd()),
	})

	// each file line is prefixed with a sequence number and timestamp,
	// so the handler's own time attribute is dropped
	fileHandler := slog.NewTextHandler(utils.NewSequencedWriter(file), &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			return a
		},
	})

	slog.SetDefault(slog.New(utils.NewMultiLogHandler(stdoutHandler, fileHandler)))
	return nil
}

func parseLogLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func runDryRun(cmd *cobra.Command, cfg *config.Config) error {
	var detector sync.Detector
	if cfg.Detect == config.DetectContent {
		var err error
		if detector, err = sync.NewContentDetector(); err != nil {
			return err
		}
	}

	syncer, err := sync.New(cfg.SourceDir, cfg.ReplicaDir, sync.Options{Detector: detector})
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
	defer cancel()

	plan, err := syncer.Plan(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, a := range plan.Actions {
		switch a.Kind {
		case sync.ActionDeleteFile, sync.ActionDeleteDir:
			fmt.Fprintf(out, "%s %s\n", red(a.Kind), a.Path)
		default:
			fmt.Fprintf(out, "%s %s\n", green(a.Kind), a.Path)
		}
	}
	for _, s := range plan.Skips {
		fmt.Fprintf(out, "%s %s (%s)\n", cyan("skip"), s.Path, s.Reason)
	}
	if plan.Empty() {
		fmt.Fprintln(out, "replica is up to date")
	}
	return nil
}
