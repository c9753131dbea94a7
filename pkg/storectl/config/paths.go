package config

import (
	"os"
	"path/filepath"
)

const (
	defaultConfigDirName = "storectl"
	defaultConfigFile    = "config.yaml"
	defaultTokenDirName  = "tokens"
)

func DefaultConfigPath() string {
	if env := os.Getenv("STORECTL_CONFIG"); env != "" {
		return env
	}
	base, err := os.UserConfigDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultConfigFile)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".storectl", defaultConfigFile)
}

// DefaultTokenDir holds one token file per context.
func DefaultTokenDir() string {
	base, err := os.UserCacheDir()
	if err == nil {
		return filepath.Join(base, defaultConfigDirName, defaultTokenDirName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".storectl", defaultTokenDirName)
}
