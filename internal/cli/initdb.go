package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ryuu1kyou/SimulinkWiringOptimization/internal/storage"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the evaluation history schema in PostgreSQL",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger()
		app := resolveConfig(logger)

		if app.postgresURL == "" {
			return fmt.Errorf("initdb requires a PostgreSQL connection (--db or POSTGRES_* environment)")
		}
		if err := storage.InitSchema(cmd.Context(), app.postgresURL); err != nil {
			return err
		}
		fmt.Println("Schema initialized.")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
