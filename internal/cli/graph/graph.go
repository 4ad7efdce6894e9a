// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package graph

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/composa/internal/catalog"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	cliconfig "github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/renderer"
	"github.com/platform-engineering-labs/composa/internal/envfile"
	"github.com/platform-engineering-labs/composa/internal/logging"
	composecore "github.com/platform-engineering-labs/composa/pkg/compose"
)

type GraphOptions struct {
	EnvFile string
	Sets    []string
}

func validateGraphOptions(opts *GraphOptions) error {
	if opts.EnvFile == "" {
		return cmd.FlagErrorf("environment file is required")
	}
	return nil
}

func GraphCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "graph",
		Short: "Show the dependency tree of a composed environment",
		PreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupClientLogging(fmt.Sprintf("%s/log/client.log", cliconfig.Config.DataDirectory()))
		},
		RunE: func(command *cobra.Command, args []string) error {
			opts := &GraphOptions{}
			opts.EnvFile = command.Flags().Arg(0)
			opts.Sets, _ = command.Flags().GetStringArray("set")

			return runGraph(opts)
		},
		Annotations: map[string]string{
			"type":     "Composition",
			"examples": "{{.Name}} {{.Command}} dev.yaml",
			"args":     "<environment file>",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().StringArray("set", nil, "Override a configuration value (path=value, repeatable)")

	return command
}

func runGraph(opts *GraphOptions) error {
	if err := validateGraphOptions(opts); err != nil {
		return err
	}

	cfg, err := envfile.Load(opts.EnvFile, opts.Sets)
	if err != nil {
		return err
	}

	g, err := composecore.Compose(cfg, catalog.Default()...)
	if err != nil {
		return fmt.Errorf("cannot compose environment: %w", err)
	}

	output, err := renderer.RenderGraph(g)
	if err != nil {
		return err
	}
	fmt.Print(output)

	return nil
}
