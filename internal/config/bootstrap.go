package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Bootstrap is the initial ledger state applied by raffle-seed.
type Bootstrap struct {
	Authority   string             `yaml:"authority"`
	Collections []string           `yaml:"collections"`
	Balances    []BootstrapBalance `yaml:"balances"`
	Assets      []BootstrapAsset   `yaml:"assets"`
}

type BootstrapBalance struct {
	Owner  string `yaml:"owner"`
	Amount uint64 `yaml:"amount"`
}

type BootstrapAsset struct {
	Address  string             `yaml:"address"`
	Owner    string             `yaml:"owner"`
	Name     string             `yaml:"name"`
	Creators []BootstrapCreator `yaml:"creators"`
}

type BootstrapCreator struct {
	Address  string `yaml:"address"`
	Verified bool   `yaml:"verified"`
	Share    uint8  `yaml:"share"`
}

func LoadBootstrap(path string) (*Bootstrap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read bootstrap file: %w", err)
	}

	var bootstrap Bootstrap
	if err := yaml.Unmarshal(data, &bootstrap); err != nil {
		return nil, fmt.Errorf("failed to parse bootstrap file: %w", err)
	}
	if bootstrap.Authority == "" {
		return nil, fmt.Errorf("bootstrap file %s: authority is required", path)
	}
	return &bootstrap, nil
}
