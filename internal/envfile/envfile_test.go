// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package envfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const devYAML = `
Project: acme
Environment: dev
Tags:
  Team: platform
Network:
  CIDR: 10.0.0.0/16
  Zones: [eu-west-1a, eu-west-1b]
  SubnetCIDRs: [10.0.0.0/24, 10.0.1.0/24]
LoadBalancer:
  IdleTimeout: 120
  TargetGroups:
    web:
      Port: 8080
`

func TestLoad_DecodesYAML(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML)

	cfg, err := Load(path, nil)
	require.NoError(t, err)

	assert.Equal(t, "acme", cfg.Project)
	assert.Equal(t, "acme-dev", cfg.Prefix())
	require.NotNil(t, cfg.Network)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
	require.NotNil(t, cfg.LoadBalancer)
	assert.Equal(t, 120, cfg.LoadBalancer.IdleTimeout)
	assert.Equal(t, 8080, cfg.LoadBalancer.TargetGroups["web"].Port)
	assert.Nil(t, cfg.Database)
}

func TestLoad_DecodesJSON(t *testing.T) {
	path := writeFile(t, "dev.json", `{"Project":"acme","Environment":"dev","Network":{"CIDR":"10.0.0.0/16"}}`)

	cfg, err := Load(path, nil)
	require.NoError(t, err)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
}

func TestLoad_OverridesApplyInOrder(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML)

	cfg, err := Load(path, []string{
		"LoadBalancer.IdleTimeout=30",
		"LoadBalancer.Internal=true",
		"Environment=staging",
		"Environment=prod",
	})
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.LoadBalancer.IdleTimeout)
	assert.True(t, cfg.LoadBalancer.Internal)
	assert.Equal(t, "prod", cfg.Environment)
}

func TestLoad_OverrideCanEnableWholeBlock(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML)

	cfg, err := Load(path, []string{`Firewall={"AssociateLoadBalancer":true}`})
	require.NoError(t, err)

	require.NotNil(t, cfg.Firewall)
	assert.True(t, cfg.Firewall.AssociateLoadBalancer)
}

func TestLoad_MalformedOverrideFails(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML)

	_, err := Load(path, []string{"no-equals-sign"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "path=value")
}

func TestLoad_MissingProjectFails(t *testing.T) {
	path := writeFile(t, "dev.yaml", "Environment: dev\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Project")
}

func TestLoad_UnsupportedExtensionFails(t *testing.T) {
	path := writeFile(t, "dev.toml", "Project = \"acme\"\n")

	_, err := Load(path, nil)
	require.Error(t, err)
}

func TestLoad_MinVersionGate(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML+"MinVersion: 99.0.0\n")

	_, err := Load(path, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires composa")
}

func TestLoad_MinVersionSatisfied(t *testing.T) {
	path := writeFile(t, "dev.yaml", devYAML+"MinVersion: 0.0.0\n")

	_, err := Load(path, nil)
	require.NoError(t, err)
}
