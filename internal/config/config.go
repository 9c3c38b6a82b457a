// Package config loads studio configuration from a YAML file.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds everything the CLI needs to talk to the contract and run
// the preview host.
type Config struct {
	// Endpoint is the contract gateway URL calls are posted to.
	Endpoint string `yaml:"endpoint"`

	// ContractID is the account the series contract lives on.
	ContractID string `yaml:"contract_id"`

	// MarketID is the market account approved for sell-now submissions.
	MarketID string `yaml:"market_id"`

	// GasBudget is attached to every contract call.
	GasBudget string `yaml:"gas_budget"`

	// Deposit is attached to state-changing calls that require one.
	Deposit string `yaml:"deposit"`

	// Origin is the host origin composed documents post messages to.
	Origin string `yaml:"origin"`

	// StorePath is the SQLite database backing the journal.
	StorePath string `yaml:"store_path"`

	// ListenAddr is the preview server bind address.
	ListenAddr string `yaml:"listen_addr"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Endpoint:   "http://localhost:3030/call",
		ContractID: "series.testnet",
		MarketID:   "market.series.testnet",
		GasBudget:  "200000000000000",
		Deposit:    "1",
		Origin:     "http://localhost:1234/",
		StorePath:  "atelier.db",
		ListenAddr: "localhost:1234",
	}
}

// Load reads a YAML config file, filling unset fields from Default.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("read config: %w", err)
	}

	var file Config
	if err := yaml.Unmarshal(data, &file); err != nil {
		return cfg, fmt.Errorf("parse config: %w", err)
	}

	merge(&cfg, file)
	return cfg, nil
}

func merge(dst *Config, src Config) {
	if src.Endpoint != "" {
		dst.Endpoint = src.Endpoint
	}
	if src.ContractID != "" {
		dst.ContractID = src.ContractID
	}
	if src.MarketID != "" {
		dst.MarketID = src.MarketID
	}
	if src.GasBudget != "" {
		dst.GasBudget = src.GasBudget
	}
	if src.Deposit != "" {
		dst.Deposit = src.Deposit
	}
	if src.Origin != "" {
		dst.Origin = src.Origin
	}
	if src.StorePath != "" {
		dst.StorePath = src.StorePath
	}
	if src.ListenAddr != "" {
		dst.ListenAddr = src.ListenAddr
	}
}
