// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package validate

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/composa/internal/api"
	"github.com/platform-engineering-labs/composa/internal/catalog"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	cliconfig "github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/display"
	"github.com/platform-engineering-labs/composa/internal/cli/renderer"
	"github.com/platform-engineering-labs/composa/internal/envfile"
	"github.com/platform-engineering-labs/composa/internal/logging"
	composecore "github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/model"
)

type ValidateOptions struct {
	EnvFile  string
	Sets     []string
	Endpoint string
	Port     int
}

func validateValidateOptions(opts *ValidateOptions) error {
	if opts.EnvFile == "" {
		return cmd.FlagErrorf("environment file is required")
	}
	return nil
}

func ValidateCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "validate",
		Short: "Validate an environment's composition invariants",
		PreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupClientLogging(fmt.Sprintf("%s/log/client.log", cliconfig.Config.DataDirectory()))
		},
		RunE: func(command *cobra.Command, args []string) error {
			opts := &ValidateOptions{}
			opts.EnvFile = command.Flags().Arg(0)
			opts.Sets, _ = command.Flags().GetStringArray("set")
			opts.Endpoint, _ = command.Flags().GetString("endpoint")
			opts.Port, _ = command.Flags().GetInt("port")

			return runValidate(opts)
		},
		Annotations: map[string]string{
			"type":     "Composition",
			"examples": "{{.Name}} {{.Command}} dev.yaml  |  {{.Name}} {{.Command}} --endpoint http://localhost dev.yaml",
			"args":     "<environment file>",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().StringArray("set", nil, "Override a configuration value (path=value, repeatable)")
	command.Flags().String("endpoint", "", "Validate against a running composa server instead of locally")
	command.Flags().Int("port", api.DefaultPort, "Port of the composa server (with --endpoint)")

	return command
}

func runValidate(opts *ValidateOptions) error {
	if err := validateValidateOptions(opts); err != nil {
		return err
	}

	cfg, err := envfile.Load(opts.EnvFile, opts.Sets)
	if err != nil {
		return err
	}

	if opts.Endpoint != "" {
		return runValidateRemote(cfg, opts)
	}

	g, err := composecore.Compose(cfg, catalog.Default()...)
	if err != nil {
		return fmt.Errorf("cannot compose environment: %w", err)
	}

	output, err := renderer.RenderViolations(g.Violations)
	if err != nil {
		return err
	}
	fmt.Print(output)

	if blocking := g.Blocking(); len(blocking) > 0 {
		return fmt.Errorf("%d blocking violation(s)", len(blocking))
	}

	display.Success(fmt.Sprintf("Environment %s is valid.", cfg.Prefix()))
	return nil
}

func runValidateRemote(cfg *model.EnvironmentConfig, opts *ValidateOptions) error {
	clientID, _ := cliconfig.Config.ClientID()
	client := api.NewClient(api.ClientConfig{URL: opts.Endpoint, Port: opts.Port, ClientID: clientID}, nil, nil)

	result, err := client.Validate(cfg)
	if err != nil {
		return fmt.Errorf("cannot validate against %s: %w", opts.Endpoint, err)
	}

	violations := make([]model.Violation, len(result.Violations))
	for i, v := range result.Violations {
		violations[i] = model.Violation{
			Rule:       v.Rule,
			Descriptor: v.Descriptor,
			Detail:     v.Detail,
			Severity:   model.Severity(v.Severity),
		}
	}

	output, err := renderer.RenderViolations(violations)
	if err != nil {
		return err
	}
	fmt.Print(output)

	if !result.Valid {
		return fmt.Errorf("environment %s has blocking violations", cfg.Prefix())
	}

	display.Success(fmt.Sprintf("Environment %s is valid.", cfg.Prefix()))
	return nil
}
