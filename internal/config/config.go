package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config is the process configuration, read from the environment with an
// optional .env file on top.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,required"`
	TestGuildID  string `env:"TEST_GUILD_ID"`
	StoragePath  string `env:"STORAGE_PATH" envDefault:"data/datastore.json"`
	SyncCommands bool   `env:"SYNC_COMMANDS" envDefault:"true"`
}

// New loads the configuration.
func New() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("[INFO] No .env file found, using system environment variables")
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config from environment: %w", err)
	}
	return &cfg, nil
}
