package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/openai"
	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/storage"
)

var similarLimit int

var similarCmd = &cobra.Command{
	Use:   "similar <query>",
	Short: "Find stored evaluations whose answers are similar to a query",
	Args:  cobra.ExactArgs(1),
	RunE:  runSimilar,
}

func init() {
	similarCmd.Flags().IntVar(&similarLimit, "limit", 5, "maximum number of results")
	rootCmd.AddCommand(similarCmd)
}

func runSimilar(cmd *cobra.Command, args []string) error {
	logger := newLogger()
	app := resolveConfig(logger)

	if app.apiKey == "" {
		return fmt.Errorf("OPENAI_API_KEY is required to embed the query")
	}
	if app.postgresURL == "" {
		return fmt.Errorf("similarity search requires a PostgreSQL history store (--db or POSTGRES_* environment)")
	}

	client := openai.NewClient(app.baseURL, app.apiKey, app.model, app.embeddingModel, app.timeout)

	embedding, err := client.Embed(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("failed to embed query: %w", err)
	}

	store, err := storage.NewPostgresStore(cmd.Context(), app.postgresURL, client, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	results, err := store.SearchSimilar(cmd.Context(), embedding, similarLimit)
	if err != nil {
		return err
	}

	if len(results) == 0 {
		fmt.Println("No similar evaluations found.")
		return nil
	}
	for _, r := range results {
		fmt.Printf("%.3f  score=%d  %s\n", r.Similarity, r.Score, r.ImagePath)
	}
	return nil
}
