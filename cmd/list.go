package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/budget-finance/budget/integrations/postgres"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var listFilter postgres.ListFilter

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print stored transactions as JSON",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbURL := viper.GetString("database.url")
		if dbURL == "" {
			return errors.New("--db-url or DATABASE_URL environment variable is required")
		}

		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(viper.GetInt("database.timeout"))*time.Second)
		defer cancel()

		db, err := postgres.Connect(ctx, dbURL, poolOptions())
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer db.Close()

		transactions, err := db.ListTransactions(ctx, listFilter)
		if err != nil {
			return err
		}

		asJSON, err := json.Marshal(transactions)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(asJSON))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(listCmd)

	listCmd.Flags().StringVar(&listFilter.Bank, "bank", "", "Only show transactions from this bank")
	listCmd.Flags().IntVar(&listFilter.Limit, "limit", 0, "Maximum number of transactions (0 for all)")
}
