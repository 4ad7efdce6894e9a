// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/segmentio/ksuid"
)

const (
	ConfigDirectory = ".config/composa"
	DataDirectory   = ".pel/composa"
)

var Config = cliconfig{}

type cliconfig struct{}

func (cliconfig) ConfigDirectory() string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homePath, ConfigDirectory)
}

func (cliconfig) DataDirectory() string {
	homePath, err := os.UserHomeDir()
	if err != nil {
		return ""
	}

	return filepath.Join(homePath, DataDirectory)
}

func (cliconfig) EnsureConfigDirectory() error {
	configPath := Config.ConfigDirectory()
	if configPath == "" {
		return fmt.Errorf("failed to ensure composa config directory")
	}

	return os.MkdirAll(configPath, 0700)
}

func (cliconfig) EnsureDataDirectory() error {
	dataPath := Config.DataDirectory()
	if dataPath == "" {
		return fmt.Errorf("failed to ensure composa data directory")
	}

	return os.MkdirAll(dataPath, 0700)
}

func (cliconfig) EnsureClientID() error {
	configPath := Config.DataDirectory()
	if configPath == "" {
		return fmt.Errorf("failed to ensure composa directory")
	}

	idFile := filepath.Join(configPath, "cli_client_id")
	if _, err := os.Stat(idFile); os.IsNotExist(err) {
		err := os.WriteFile(idFile, []byte(ksuid.New().String()), 0600)
		if err != nil {
			return fmt.Errorf("failed to create ID file: %w", err)
		}
	} else if err != nil {
		return fmt.Errorf("failed to check ID file: %w", err)
	}

	return nil
}

func (cliconfig) ClientID() (string, error) {
	configPath := Config.DataDirectory()
	if configPath == "" {
		return "", fmt.Errorf("failed to retrieve composa directory")
	}

	clientIDFile := filepath.Join(configPath, "cli_client_id")
	data, err := os.ReadFile(clientIDFile)
	if err != nil {
		return "", err
	}

	return strings.TrimSpace(string(data)), nil
}
