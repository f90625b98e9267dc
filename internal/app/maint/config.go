// Package maint holds the operator tasks behind the greenlink-maint
// command: schema setup, sample data, and data repair.
package maint

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/dalemusser/greenlink/internal/app/system/collections"
	"github.com/joho/godotenv"
)

// ErrMissingConfig means a required environment variable is unset or
// empty. The command exits non-zero on it.
var ErrMissingConfig = errors.New("missing required configuration")

// Config is read from the environment, after an optional .env file.
type Config struct {
	MongoURI      string `env:"GREENLINK_MONGO_URI,required,notEmpty"`
	MongoDatabase string `env:"GREENLINK_MONGO_DATABASE,required,notEmpty"`
	ProjectID     string `env:"GREENLINK_PROJECT_ID"`

	HouseholdsCollection string `env:"GREENLINK_COLLECTION_HOUSEHOLDS"`
	CollectorsCollection string `env:"GREENLINK_COLLECTION_COLLECTORS"`
	RoutesCollection     string `env:"GREENLINK_COLLECTION_ROUTES"`
	LogsCollection       string `env:"GREENLINK_COLLECTION_LOGS"`

	TimeZone string `env:"GREENLINK_TIME_ZONE" envDefault:"Asia/Kolkata"`
	LogFile  string `env:"GREENLINK_MAINT_LOG_FILE"`
}

// LoadConfig loads envFile when it exists, then parses the environment.
// Variables already set in the environment win over the file.
func LoadConfig(envFile string) (Config, error) {
	if envFile != "" {
		if _, err := os.Stat(envFile); err == nil {
			if err := godotenv.Load(envFile); err != nil {
				return Config{}, fmt.Errorf("load %s: %w", envFile, err)
			}
		}
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %v", ErrMissingConfig, err)
	}
	return cfg, nil
}

// Names returns the collection names, blank meaning the default.
func (c Config) Names() collections.Names {
	return collections.Names{
		Households: c.HouseholdsCollection,
		Collectors: c.CollectorsCollection,
		Routes:     c.RoutesCollection,
		Logs:       c.LogsCollection,
	}
}
