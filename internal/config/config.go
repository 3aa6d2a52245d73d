package config

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/tonkeeper/tongo/ton"

	"nftraffle/internal/blockchain"
	"nftraffle/internal/logger"
	"nftraffle/internal/metadata"
)

type Config struct {
	DatabasePath    string   `env:"RAFFLE_DATABASE_PATH" envDefault:"persistent.db"`
	HTTPAddr        string   `env:"RAFFLE_HTTP_ADDR" envDefault:":8080"`
	JWTSecret       string   `env:"RAFFLE_JWT_SECRET"`
	ProgramAddress  string   `env:"RAFFLE_PROGRAM_ADDRESS"`
	TreasuryAddress string   `env:"RAFFLE_TREASURY_ADDRESS"`
	Randomness      string   `env:"RAFFLE_RANDOMNESS" envDefault:"derived"`
	MetadataSource  string   `env:"RAFFLE_METADATA_SOURCE" envDefault:"store"`
	AllowedOrigins  []string `env:"RAFFLE_ALLOWED_ORIGINS" envSeparator:","`

	Tonapi metadata.TonapiConfiguration
	Log    logger.Configuration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Program() (ton.AccountID, error) {
	return addressOrDefault(c.ProgramAddress, blockchain.ProgramAddressRaw)
}

func (c *Config) Treasury() (ton.AccountID, error) {
	return addressOrDefault(c.TreasuryAddress, blockchain.TreasuryAddressRaw)
}

func addressOrDefault(value, fallback string) (ton.AccountID, error) {
	if value == "" {
		value = fallback
	}
	return blockchain.ParseAddress(value)
}
