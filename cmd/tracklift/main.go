// Package main provides the tracklift CLI entry point.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"tracklift/internal/browser"
	"tracklift/internal/core"
	httpserver "tracklift/internal/http"
)

var (
	cfgFile string
	config  *core.Config
	logger  *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "tracklift SOURCE",
	Short: "Export streaming playlists and resolve them across platforms",
	Long: `tracklift extracts a playlist's track listing from a YouTube Music or
Spotify web page by driving a real browser, optionally saves it as JSON, and
resolves each track against Apple Music search to print equivalent links.

SOURCE is a playlist URL or the path of a previously saved playlist JSON file.`,
	Args: cobra.ExactArgs(1),
	RunE: runTracklift,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().String("log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("save", "", "write the extracted playlist as JSON to this path")
	rootCmd.PersistentFlags().String("target", "", "resolve tracks against this platform (apple)")
	rootCmd.PersistentFlags().Bool("headful", false, "run the browser with a visible window")
	rootCmd.PersistentFlags().String("cache", "", "SQLite path for caching resolved links across runs")
	rootCmd.PersistentFlags().String("metrics-addr", "", "serve Prometheus metrics on this address")
	rootCmd.PersistentFlags().Duration("wait-timeout", 0, "how long to wait for playlist content to render")
	rootCmd.PersistentFlags().Duration("resolve-timeout", 0, "how long to wait for search results per track")
	rootCmd.PersistentFlags().Int("max-passes", -1, "scroll pass ceiling for virtualized playlists (-1 = default, 0 = unbounded)")
	rootCmd.PersistentFlags().String("match-policy", "name-only", "candidate match policy (name-only, name-and-artist, fuzzy-title)")
	rootCmd.PersistentFlags().Int("nav-per-minute", 0, "navigation rate limit per host (0 = default)")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to bind flags: %v\n", err)
		os.Exit(1)
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
	}

	viper.SetEnvPrefix("TRACKLIFT")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
	}

	config = buildConfig()
	logger = buildLogger(config.Log.Level)
}

func buildConfig() *core.Config {
	cfg := core.DefaultConfig()

	cfg.Browser.Headless = !viper.GetBool("headful")
	if n := viper.GetInt("nav-per-minute"); n > 0 {
		cfg.Browser.NavPerMinute = n
	}

	if d := viper.GetDuration("wait-timeout"); d > 0 {
		cfg.Extract.WaitTimeout = d
	}
	if n := viper.GetInt("max-passes"); n >= 0 {
		cfg.Extract.MaxPasses = n
	}

	cfg.Resolve.Target = viper.GetString("target")
	cfg.Resolve.MatchPolicy = viper.GetString("match-policy")
	cfg.Resolve.CachePath = viper.GetString("cache")
	if d := viper.GetDuration("resolve-timeout"); d > 0 {
		cfg.Resolve.Timeout = d
	}

	cfg.Output.SavePath = viper.GetString("save")
	cfg.Metrics.Addr = viper.GetString("metrics-addr")
	cfg.Log.Level = viper.GetString("log-level")

	return cfg
}

func buildLogger(level string) *zap.Logger {
	var zapLevel zapcore.Level
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zapcore.DebugLevel
	case "info":
		zapLevel = zapcore.InfoLevel
	case "warn":
		zapLevel = zapcore.WarnLevel
	case "error":
		zapLevel = zapcore.ErrorLevel
	default:
		zapLevel = zapcore.InfoLevel
	}

	zapCfg := zap.NewProductionConfig()
	zapCfg.Level = zap.NewAtomicLevelAt(zapLevel)
	// Resolved links go to stdout; keep diagnostics on stderr.
	zapCfg.OutputPaths = []string{"stderr"}

	builtLogger, err := zapCfg.Build()
	if err != nil {
		panic(fmt.Sprintf("Failed to build logger: %v", err))
	}

	return builtLogger
}

func runTracklift(_ *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	source := args[0]

	logger.Info("Starting tracklift",
		zap.String("source", source),
		zap.String("target", config.Resolve.Target),
		zap.Bool("headless", config.Browser.Headless))

	factory, err := browser.NewRodFactory(
		config.Browser.Headless,
		config.Browser.NavPerMinute,
		logger.Named("browser"),
	)
	if err != nil {
		return fmt.Errorf("failed to start browser: %w", err)
	}
	defer func() {
		if err := factory.Close(); err != nil {
			logger.Warn("Failed to close browser", zap.Error(err))
		}
	}()

	var metrics *httpserver.Metrics
	g, gCtx := errgroup.WithContext(ctx)

	if config.Metrics.Addr != "" {
		metrics = httpserver.NewMetrics()
		server := httpserver.NewServer(config.Metrics.Addr, logger.Named("http"))
		g.Go(func() error {
			return server.Start(gCtx)
		})
	}

	orchestrator := core.NewOrchestrator(config, factory, metrics, os.Stdout, logger.Named("orchestrator"))

	g.Go(func() error {
		defer cancel()
		return orchestrator.Run(gCtx, source)
	})

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("Run failed", zap.Error(err))
		return err
	}

	return nil
}
