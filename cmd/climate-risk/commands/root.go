package commands

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/mr1hm/go-climate-risk/internal/config"
	"github.com/mr1hm/go-climate-risk/internal/logging"
	"github.com/mr1hm/go-climate-risk/internal/repository"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:   "climate-risk",
	Short: "Climate disaster exposure analytics for an insurance portfolio",
	Long: `Loads historical disaster records together with the insurer's portfolio
and premium-by-peril tables, prepares the merged dataset and serves the
dashboard analytics over HTTP.

Examples:
  climate-risk serve
  climate-risk report --country Germany --from 2000 --to 2025
  climate-risk snapshots`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if envFile != "" {
			_ = godotenv.Load(envFile)
		} else {
			_ = godotenv.Load()
		}
	},
}

func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", "", "env file to load (default is .env)")
}

// loadConfig reads the environment and installs the JSON logger.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logging.Setup(cfg.Logging.Level)
	return cfg, nil
}

// openStore opens the snapshot store, or returns nil when DB_PATH is empty.
func openStore(cfg *config.Config) (*repository.SQLiteDB, error) {
	if cfg.DB.Path == "" {
		return nil, nil
	}
	return repository.NewSQLiteDB(cfg.DB.Path)
}
