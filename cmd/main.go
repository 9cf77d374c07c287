// Command gtfs loads a GTFS dataset from disk and answers
// earliest-arrival, minimum-transfer journey queries against it.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"connectionsearch.dev/gtfs/config"
)

var rootCmd = &cobra.Command{
	Use:          "gtfs",
	Short:        "GTFS journey planning tool",
	Long:         "Loads a GTFS static dataset and answers earliest-arrival route queries against it.",
	SilenceUsage: true,
}

var (
	datasetPath string
	envPath     string
	storageKind string
	storagePath string
	transferArg string
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&datasetPath, "dataset", "d", "", "path to a directory of GTFS .txt files")
	rootCmd.PersistentFlags().StringVarP(&envPath, "env", "e", "", "path to a .env file of config overrides")
	rootCmd.PersistentFlags().StringVarP(&storageKind, "storage", "s", "memory", "feed backend: memory, sqlite, or postgres")
	rootCmd.PersistentFlags().StringVarP(&storagePath, "storage-path", "", "", "SQLite file path, or Postgres connection string")
	rootCmd.PersistentFlags().StringVarP(&transferArg, "transfer-mode", "", "", "override the configured transfer mode")
	rootCmd.AddCommand(routeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

// loadConfig applies .env and environment overrides, then layers the
// command-line flags on top so a one-off query doesn't require a .env
// edit just to try a different transfer mode.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(envPath)
	if err != nil {
		return config.Config{}, err
	}

	if datasetPath != "" {
		cfg.DatasetPath = datasetPath
	}
	if transferArg != "" {
		mode := config.TransferMode(transferArg)
		switch mode {
		case config.TransferModeNone, config.TransferModeByNodeID, config.TransferModeByParentStation, config.TransferModeByTransfersTxt:
			cfg.TransferMode = mode
		default:
			return config.Config{}, fmt.Errorf("unrecognized transfer mode: %q", transferArg)
		}
	}

	return cfg, nil
}
