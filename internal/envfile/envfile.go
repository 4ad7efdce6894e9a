// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

// Package envfile loads environment configuration files. YAML and JSON are
// both accepted; the YAML path normalizes through JSON so that command-line
// overrides and the typed decode share one representation.
package envfile

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"
	"github.com/masterminds/semver"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
	"gopkg.in/yaml.v3"

	"github.com/platform-engineering-labs/composa"
	"github.com/platform-engineering-labs/composa/internal/util"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

// Load reads an environment file, applies any path=value overrides, and
// decodes the result into a typed configuration. Overrides use gjson path
// syntax on the left and either a JSON literal or a bare string on the right.
func Load(path string, overrides []string) (*model.EnvironmentConfig, error) {
	path = util.ExpandHomePath(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading environment file: %w", err)
	}

	doc, err := normalize(path, data)
	if err != nil {
		return nil, err
	}

	for _, override := range overrides {
		doc, err = applyOverride(doc, override)
		if err != nil {
			return nil, err
		}
	}

	var cfg model.EnvironmentConfig
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("decoding environment file %s: %w", path, err)
	}

	if cfg.Project == "" || cfg.Environment == "" {
		return nil, fmt.Errorf("environment file %s must name both Project and Environment", path)
	}

	if err := checkMinVersion(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func normalize(path string, data []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		var raw map[string]any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
		return json.Marshal(raw)
	case ".json":
		if !gjson.ValidBytes(data) {
			return nil, fmt.Errorf("parsing %s: not valid JSON", path)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("unsupported environment file extension %q", filepath.Ext(path))
	}
}

func applyOverride(doc []byte, override string) ([]byte, error) {
	path, value, found := strings.Cut(override, "=")
	if !found || path == "" {
		return nil, fmt.Errorf("override %q must be path=value", override)
	}

	// JSON literals pass through raw so numbers, booleans and objects keep
	// their types; anything else is set as a string.
	if gjson.Valid(value) {
		return sjson.SetRawBytes(doc, path, []byte(value))
	}
	return sjson.SetBytes(doc, path, value)
}

// checkMinVersion refuses configurations that declare a minimum engine
// version newer than the running one.
func checkMinVersion(cfg *model.EnvironmentConfig) error {
	if cfg.MinVersion == "" {
		return nil
	}

	minimum, err := semver.NewVersion(cfg.MinVersion)
	if err != nil {
		return fmt.Errorf("invalid MinVersion %q: %w", cfg.MinVersion, err)
	}

	current, err := semver.NewVersion(composa.Version)
	if err != nil {
		// Dev builds carry a non-semver version; let them through.
		return nil
	}

	if current.LessThan(minimum) {
		return fmt.Errorf("environment requires composa >= %s, this build is %s", cfg.MinVersion, composa.Version)
	}

	return nil
}
