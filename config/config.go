// Package config loads the options recognized by the search engine
// and its parser from the environment, with a .env file (via
// godotenv) as the usual way of setting them locally.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// TransferMode selects how the schedule index enumerates transfers
// out of a stop.
type TransferMode string

const (
	TransferModeNone            TransferMode = "none"
	TransferModeByNodeID        TransferMode = "by_node_id"
	TransferModeByParentStation TransferMode = "by_parent_station"
	TransferModeByTransfersTxt  TransferMode = "by_transfers_txt"
)

// Config mirrors the options table in the external-interfaces
// section: a directory of GTFS files, a search horizon, and the
// transfer policy.
type Config struct {
	DatasetPath            string
	MaxSearchTimeHours     int
	TransferMode           TransferMode
	TransferNodeID         string
	MinTransferTimeSeconds int
	Profile                bool
}

// Default matches the example dataset config shipped with the
// reference implementation this engine is modeled on.
func Default() Config {
	return Config{
		DatasetPath:            "data",
		MaxSearchTimeHours:     24,
		TransferMode:           TransferModeByNodeID,
		TransferNodeID:         "asw_node_id",
		MinTransferTimeSeconds: 180,
		Profile:                false,
	}
}

// Load starts from Default(), loads envPath (if non-empty) into the
// process environment via godotenv, then overlays any of the
// recognized environment variables that are set. A missing envPath is
// not an error: env vars and defaults still apply.
func Load(envPath string) (Config, error) {
	if envPath != "" {
		if err := godotenv.Load(envPath); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("loading %s: %w", envPath, err)
		}
	}

	cfg := Default()

	if v := os.Getenv("DATASET_PATH"); v != "" {
		cfg.DatasetPath = v
	}
	if v := os.Getenv("MAX_SEARCH_TIME_HOURS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing MAX_SEARCH_TIME_HOURS: %w", err)
		}
		cfg.MaxSearchTimeHours = n
	}
	if v := os.Getenv("TRANSFER_MODE"); v != "" {
		mode := TransferMode(v)
		switch mode {
		case TransferModeNone, TransferModeByNodeID, TransferModeByParentStation, TransferModeByTransfersTxt:
			cfg.TransferMode = mode
		default:
			return Config{}, fmt.Errorf("unrecognized TRANSFER_MODE: %q", v)
		}
	}
	if v, ok := os.LookupEnv("TRANSFER_NODE_ID"); ok {
		cfg.TransferNodeID = v
	}
	if v := os.Getenv("MIN_TRANSFER_TIME_SECONDS"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing MIN_TRANSFER_TIME_SECONDS: %w", err)
		}
		cfg.MinTransferTimeSeconds = n
	}
	if v := os.Getenv("PROFILE"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return Config{}, fmt.Errorf("parsing PROFILE: %w", err)
		}
		cfg.Profile = b
	}

	return cfg, nil
}
