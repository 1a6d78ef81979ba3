package main

import (
	"encoding/hex"
	"os"

	"github.com/BurntSushi/toml"

	"flowkernel/crypto"
)

// daemonConfig is the top-level configuration for the flowkerneld process:
// key material, persistence, and the path to the admin API's own config.
type daemonConfig struct {
	ControllerKey  string `toml:"ControllerKey"`
	SelfKey        string `toml:"SelfKey"`
	DataDir        string `toml:"DataDir"`
	SQLitePath     string `toml:"SQLitePath"`
	DomainSalt     string `toml:"DomainSalt"`
	AdminConfig    string `toml:"AdminConfig"`
	WebhookURL     string `toml:"WebhookURL"`
	WebhookSecret  string `toml:"WebhookSecret"`
}

// loadDaemonConfig loads daemonConfig from path, generating a fresh
// ControllerKey/SelfKey pair and a default file when none exists yet.
func loadDaemonConfig(path string) (*daemonConfig, error) {
	cfg := &daemonConfig{}
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return createDefaultDaemonConfig(path)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}
	if cfg.ControllerKey == "" || cfg.SelfKey == "" {
		if err := fillMissingKeys(cfg); err != nil {
			return nil, err
		}
		if err := writeDaemonConfig(path, cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

func fillMissingKeys(cfg *daemonConfig) error {
	if cfg.ControllerKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		cfg.ControllerKey = hex.EncodeToString(key.Bytes())
	}
	if cfg.SelfKey == "" {
		key, err := crypto.GeneratePrivateKey()
		if err != nil {
			return err
		}
		cfg.SelfKey = hex.EncodeToString(key.Bytes())
	}
	return nil
}

func createDefaultDaemonConfig(path string) (*daemonConfig, error) {
	cfg := &daemonConfig{
		DataDir:     "./flowkernel-data",
		SQLitePath:  "./flowkernel-data/kernel.db",
		DomainSalt:  "flowkernel-default-domain",
		AdminConfig: "./flowkernel-admin.yaml",
	}
	if err := fillMissingKeys(cfg); err != nil {
		return nil, err
	}
	if err := writeDaemonConfig(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func writeDaemonConfig(path string, cfg *daemonConfig) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return toml.NewEncoder(f).Encode(cfg)
}
