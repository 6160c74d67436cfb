package cmd

import (
	"context"
	"fmt"

	"github.com/budget-finance/budget/api"
	"github.com/budget-finance/budget/integrations/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server that accepts CSV statement exports and returns
normalized transactions as JSON. With a database URL configured, uploads are
also stored.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := api.DefaultConfig()
		cfg.Port = ":" + viper.GetString("server.port")

		if dbURL := viper.GetString("database.url"); dbURL != "" {
			db, err := postgres.Connect(context.Background(), dbURL, poolOptions())
			if err != nil {
				return fmt.Errorf("database connection failed: %w", err)
			}
			defer db.Close()

			if err := db.EnsureSchema(context.Background()); err != nil {
				return fmt.Errorf("schema creation failed: %w", err)
			}
			cfg.Sink = db
		}

		return api.New(cfg).Start()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
