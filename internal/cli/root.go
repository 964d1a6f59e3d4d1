// Package cli wires the scoring pipeline into a command-line tool.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/config"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/models"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/openai"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/scoring"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/storage"
)

var (
	configPath string
	dbURL      string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "wirescore <image_path> [<before_image_path>]",
	Short:         "Score Simulink wiring-diagram layout quality with a vision model",
	Args:          cobra.MaximumNArgs(2),
	RunE:          runScore,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command tree.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a YAML config file")
	rootCmd.PersistentFlags().StringVar(&dbURL, "db", "", "PostgreSQL connection string for evaluation history")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

func runScore(cmd *cobra.Command, args []string) error {
	// The usage message for a missing argument is part of the stdout
	// contract, so it bypasses cobra's stderr usage printing.
	if len(args) < 1 {
		fmt.Println("Usage: wirescore <image_path> [<before_image_path>]")
		os.Exit(1)
	}
	imagePath := args[0]
	beforePath := ""
	if len(args) > 1 {
		beforePath = args[1]
	}

	logger := newLogger()
	app := resolveConfig(logger)

	client := openai.NewClient(app.baseURL, app.apiKey, app.model, app.embeddingModel, app.timeout)
	evaluator := scoring.NewEvaluator(client, logger, os.Stdout, app.maxTokens, app.clarifyMaxTokens)

	result, err := evaluator.Evaluate(cmd.Context(), imagePath, beforePath)
	if err != nil {
		return err
	}

	if result.Source != scoring.SourceManual {
		recordEvaluation(cmd.Context(), logger, app, client, imagePath, beforePath, result)
	}

	// The authoritative machine-parsable lines. Nothing may print to stdout
	// after these.
	fmt.Printf("Final score: %d\n", result.Score)
	fmt.Printf("SCORE:%d\n", result.Score)
	return nil
}

// recordEvaluation appends the run to the evaluation history. History is
// best-effort: any failure is logged and the score stands.
func recordEvaluation(ctx context.Context, logger *slog.Logger, app *appConfig, embedder storage.Embedder, imagePath, beforePath string, result scoring.Result) {
	store := openStore(ctx, logger, app, embedder)
	defer store.Close()

	eval := models.Evaluation{
		ID:         uuid.New(),
		ImagePath:  imagePath,
		BeforePath: beforePath,
		Mode:       scoring.Mode(beforePath != ""),
		Score:      result.Score,
		Source:     string(result.Source),
		Answer:     result.Answer,
		CreatedAt:  time.Now(),
	}
	if err := store.Record(ctx, eval); err != nil {
		logger.Warn("failed to record evaluation history", "error", err)
	}
}

// openStore picks Postgres when configured, otherwise the JSON file store.
// A failed Postgres connection degrades to the file store.
func openStore(ctx context.Context, logger *slog.Logger, app *appConfig, embedder storage.Embedder) storage.Store {
	if app.postgresURL != "" {
		store, err := storage.NewPostgresStore(ctx, app.postgresURL, embedder, logger)
		if err == nil {
			return store
		}
		logger.Warn("failed to open Postgres history store, falling back to file store", "error", err)
	}
	return storage.NewFileStore(app.historyDir)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(
		tint.NewHandler(os.Stderr, &tint.Options{
			Level:      level,
			TimeFormat: "15:04:05",
		}),
	)
}

// appConfig is the fully resolved configuration: defaults, then the optional
// YAML file, then environment and flags.
type appConfig struct {
	apiKey           string
	baseURL          string
	model            string
	embeddingModel   string
	maxTokens        int
	clarifyMaxTokens int
	timeout          time.Duration
	historyDir       string
	postgresURL      string
}

func resolveConfig(logger *slog.Logger) *appConfig {
	cfg := config.Empty()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			logger.Warn("failed to load config file, using defaults", "path", configPath, "error", err)
		} else {
			cfg = loaded
		}
	}

	return &appConfig{
		apiKey:           os.Getenv("OPENAI_API_KEY"),
		baseURL:          cfg.GetStringOrDefault("base_url", config.DefaultBaseURL),
		model:            cfg.GetStringOrDefault("model", config.DefaultModel),
		embeddingModel:   cfg.GetStringOrDefault("embedding_model", config.DefaultEmbeddingModel),
		maxTokens:        cfg.GetIntOrDefault("max_tokens", config.DefaultMaxTokens),
		clarifyMaxTokens: cfg.GetIntOrDefault("clarify_max_tokens", config.DefaultClarifyMaxTokens),
		timeout:          cfg.GetDurationOrDefault("request_timeout_ms", config.DefaultRequestTimeout),
		historyDir:       cfg.GetStringOrDefault("history_dir", config.DefaultHistoryDir),
		postgresURL:      resolvePostgresURL(cfg),
	}
}

// resolvePostgresURL prefers the --db flag, then POSTGRES_* environment
// variables, then the config file. Empty means history goes to the file
// store.
func resolvePostgresURL(cfg *config.Config) string {
	if dbURL != "" {
		return dbURL
	}
	if host := os.Getenv("POSTGRES_HOST"); host != "" {
		user := os.Getenv("POSTGRES_USER")
		pass := os.Getenv("POSTGRES_PASSWORD")
		name := os.Getenv("POSTGRES_DB")
		port := os.Getenv("POSTGRES_PORT")
		if port == "" {
			port = "5432"
		}
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s", user, pass, host, port, name)
	}
	return cfg.GetString("postgres_url")
}
