package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"go.uber.org/zap"

	"github.com/mimirsh/mimir/internal/config"
	"github.com/mimirsh/mimir/internal/core"
	"github.com/mimirsh/mimir/internal/interaction"
	"github.com/mimirsh/mimir/internal/ollama"
	"github.com/mimirsh/mimir/internal/pipeline"
	"github.com/mimirsh/mimir/internal/styles"
)

var BUILD_VERSION = "dev"

var historyFlag = flag.Bool("history", false, "include matching shell history as context")
var logsFlag = flag.Bool("logs", false, "include matching previous interactions as context")
var manFlag = flag.Bool("man", false, "include a man page summary as context")
var modelFlag = flag.String("model", "", "model to use; persisted when no query is given")
var profileFlag = flag.String("profile", "", "profile to use; persisted when no query is given")
var tempFlag = flag.Float64("temp", 0, "temperature (0.0-1.0); persisted when no query is given")
var modelsFlag = flag.Bool("models", false, "list models available on the inference server")
var selectModelFlag = flag.Bool("select-model", false, "pick a model interactively")
var favoritesFlag = flag.Bool("favorites", false, "show favorite models")
var addFavoriteFlag = flag.String("add-favorite", "", "add a model to favorites")
var configFlag = flag.Bool("config", false, "show the current configuration")
var resetDefaultFlag = flag.Bool("reset-default", false, "reset to the default model")
var copyFlag = flag.Bool("copy", false, "copy the suggested command to the clipboard")

var helpFlag = flag.Bool("h", false, "display help information")
var versionFlag = flag.Bool("ver", false, "display build version")

const helpText = `mimir - turn a question into a shell command, locally

USAGE:
  mimir [options] "your question"

EXAMPLES:
  mimir "show running processes"
  mimir -history -man "compress this directory"
  mimir -model mistral:latest "find files over 100MB"

Without a query, -model/-profile/-temp/-reset-default change the persisted
configuration. With a query they only apply to that one invocation.

OPTIONS:
`

func main() {
	flag.Parse()

	if *versionFlag {
		fmt.Println(BUILD_VERSION)
		return
	}

	if *helpFlag {
		fmt.Print(helpText)
		flag.PrintDefaults()
		return
	}

	logger, err := initializeLogger()
	if err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(fmt.Sprintf("failed to initialize logger: %v", err)))
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("-------- new mimir invocation --------", zap.Any("args", os.Args))

	cfg, err := config.Load(core.ConfigFile())
	if err != nil {
		// A broken config file must be fixed, not silently replaced.
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		logger.Error("config load failed", zap.Error(err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		fmt.Fprintln(os.Stderr, styles.ERROR(err.Error()))
		logger.Error("unhandled error", zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	query := strings.TrimSpace(strings.Join(flag.Args(), " "))
	client := newClient(cfg, logger)

	if query == "" {
		return runAction(ctx, cfg, client, logger)
	}

	return runQuery(ctx, cfg, client, logger, query)
}

// runQuery drives the full pipeline for one question and prints its result.
func runQuery(ctx context.Context, cfg *config.Config, client *ollama.Client, logger *zap.Logger, query string) error {
	inv := pipeline.Invocation{
		Query:       query,
		WithHistory: *historyFlag,
		WithLogs:    *logsFlag,
		WithMan:     *manFlag,
		Overrides: config.Overrides{
			Model:       *modelFlag,
			Profile:     *profileFlag,
			Temperature: temperatureOverride(),
		},
	}

	if cfg.Stream {
		inv.OnChunk = func(text string) {
			fmt.Fprint(os.Stderr, text)
		}
	}

	p := pipeline.New(pipeline.Options{
		Config:         cfg,
		Client:         client,
		InteractionLog: interaction.NewLog(core.InteractionLogFile(), logger),
		Logger:         logger,
	})

	result, err := p.Run(ctx, inv)
	if cfg.Stream {
		fmt.Fprintln(os.Stderr)
	}
	if err != nil {
		if ollama.IsUnavailable(err) {
			return fmt.Errorf("%w\nstart it with: ollama serve", err)
		}
		return err
	}

	if result.Outcome == pipeline.OutcomeNoCommand {
		fmt.Fprintln(os.Stderr, styles.NOTICE("no command could be determined for this query"))
		return nil
	}

	fmt.Println(styles.COMMAND(result.Command))

	if *copyFlag {
		if err := clipboard.WriteAll(result.Command); err != nil {
			fmt.Fprintln(os.Stderr, styles.NOTICE("could not copy to clipboard"))
			logger.Warn("clipboard write failed", zap.Error(err))
		}
	}

	return nil
}

// temperatureOverride returns the -temp value only when the flag was
// explicitly set, so 0.0 stays distinguishable from "not given".
func temperatureOverride() *float64 {
	var set bool
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "temp" {
			set = true
		}
	})
	if !set {
		return nil
	}
	v := *tempFlag
	return &v
}

func newClient(cfg *config.Config, logger *zap.Logger) *ollama.Client {
	return ollama.NewClient(ollama.ClientConfig{
		BaseURL: cfg.OllamaURL,
		Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}, logger)
}

func initializeLogger() (*zap.Logger, error) {
	loggerConfig := zap.NewProductionConfig()
	loggerConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if BUILD_VERSION == "dev" {
		loggerConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	// Logs go to a file, never stdout: stdout is reserved for the command.
	loggerConfig.OutputPaths = []string{
		core.LogFile(),
	}

	return loggerConfig.Build()
}
