package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/budget-finance/budget/extractor"
	"github.com/budget-finance/budget/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize",
	Short: "Normalizes statement(s) and prints them as JSON",
	Long: `Normalizes every statement export found under a folder.
File names select the bank; nothing is written to the database.`,
	PreRun: func(cmd *cobra.Command, args []string) {
		viper.BindPFlag("statements.strict", cmd.Flags().Lookup("strict"))
	},
	RunE: runNormalize,
}

func runNormalize(cmd *cobra.Command, args []string) error {
	target := viper.GetString("target")

	ctx := logger.WithContext(context.Background(), logger.New())
	result, err := extractor.Normalize(ctx, target, nil, extractor.Options{
		Extension: viper.GetString("statements.extension"),
		Strict:    viper.GetBool("statements.strict"),
	})
	if err != nil {
		return err
	}

	if viper.GetBool("statements.report_skipped") {
		for _, path := range result.Skipped {
			fmt.Fprintf(os.Stderr, "skipped (no matching bank): %s\n", path)
		}
	}
	for _, e := range result.Errors {
		fmt.Fprintf(os.Stderr, "failed: %s\n", e)
	}

	asJSON, err := json.Marshal(result.Transactions())
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(asJSON))
	return nil
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
	normalizeCmd.Flags().StringP("folder", "f", ".", "Folder in which budget will scan for files")
	normalizeCmd.Flags().Bool("strict", false, "Abort on the first unreadable file")
	normalizeCmd.Flags().Bool("report-skipped", true, "List files that match no bank on stderr")
	viper.BindPFlag("target", normalizeCmd.Flags().Lookup("folder"))
	viper.BindPFlag("statements.report_skipped", normalizeCmd.Flags().Lookup("report-skipped"))
}
