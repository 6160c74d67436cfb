package cmd

import (
	"bytes"
	"fmt"
	"os"
	"time"

	"github.com/budget-finance/budget/integrations/postgres"
	"github.com/budget-finance/budget/logger"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// Embedded default configuration (mirrors .budget.yaml)
const defaultConfigYAML = `
statements:
  extension: .csv
  strict: false
  report_skipped: true
database:
  url: ""
  timeout: 300
  connect_timeout: 10
  max_conns: 4
  create: true
server:
  port: "8080"
`

var (
	cfgFile string
	verbose bool
	rootCmd = &cobra.Command{
		Use:   "budget [folder]",
		Short: "Normalize bank statement exports",
		Long: `budget reads CSV exports from CIBC, Scotia, RBC, NBC and Walmart
and normalizes them into one canonical transaction shape.`,
		Args: cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				viper.Set("target", args[0])
				return runNormalize(normalizeCmd, []string{})
			}
			return cmd.Help()
		},
	}
)

// Execute runs the root command; version backs the --version flag.
func Execute(version string) {
	rootCmd.Version = version
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.budget.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
	rootCmd.PersistentFlags().String("db-url", "", "PostgreSQL connection URL (or set DATABASE_URL env)")
	viper.BindPFlag("database.url", rootCmd.PersistentFlags().Lookup("db-url"))
}

// poolOptions reads the database.* pool settings.
func poolOptions() postgres.PoolOptions {
	return postgres.PoolOptions{
		MaxConns:       viper.GetInt32("database.max_conns"),
		ConnectTimeout: time.Duration(viper.GetInt("database.connect_timeout")) * time.Second,
	}
}

func initLogging() {
	logger.SetVerbose(verbose)
}

func initConfig() {
	if err := loadConfig(cfgFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig reads the config file, falling back to the embedded defaults
// when none is found. DATABASE_URL overrides database.url.
func loadConfig(path string) error {
	viper.SetConfigType("yaml")
	if err := viper.ReadConfig(bytes.NewBufferString(defaultConfigYAML)); err != nil {
		return fmt.Errorf("error loading embedded configuration: %w", err)
	}

	if path != "" {
		viper.SetConfigFile(path)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			return err
		}

		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".budget")
	}

	viper.AutomaticEnv()
	viper.BindEnv("database.url", "DATABASE_URL")

	if err := viper.MergeInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}
	return nil
}
