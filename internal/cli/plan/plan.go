// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package plan

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/composa/internal/catalog"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	cliconfig "github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/renderer"
	"github.com/platform-engineering-labs/composa/internal/envfile"
	"github.com/platform-engineering-labs/composa/internal/logging"
	"github.com/platform-engineering-labs/composa/internal/util"
	composecore "github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/emit"
)

type PlanOptions struct {
	EnvFile  string
	Snapshot string
	Sets     []string
}

func validatePlanOptions(opts *PlanOptions) error {
	if opts.EnvFile == "" {
		return cmd.FlagErrorf("environment file is required")
	}
	return nil
}

func PlanCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "plan",
		Short: "Diff an environment against a previously emitted document",
		PreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupClientLogging(fmt.Sprintf("%s/log/client.log", cliconfig.Config.DataDirectory()))
		},
		RunE: func(command *cobra.Command, args []string) error {
			opts := &PlanOptions{}
			opts.EnvFile = command.Flags().Arg(0)
			opts.Snapshot, _ = command.Flags().GetString("snapshot")
			opts.Sets, _ = command.Flags().GetStringArray("set")

			return runPlan(opts)
		},
		Annotations: map[string]string{
			"type":     "Composition",
			"examples": "{{.Name}} {{.Command}} dev.yaml  |  {{.Name}} {{.Command}} --snapshot current.json dev.yaml",
			"args":     "<environment file>",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().String("snapshot", "", "Previously emitted document to diff against (omit to plan from scratch)")
	command.Flags().StringArray("set", nil, "Override a configuration value (path=value, repeatable)")

	return command
}

func runPlan(opts *PlanOptions) error {
	if err := validatePlanOptions(opts); err != nil {
		return err
	}

	cfg, err := envfile.Load(opts.EnvFile, opts.Sets)
	if err != nil {
		return err
	}

	var snapshot []byte
	if opts.Snapshot != "" {
		snapshot, err = os.ReadFile(util.ExpandHomePath(opts.Snapshot))
		if err != nil {
			return fmt.Errorf("cannot read snapshot %s: %w", opts.Snapshot, err)
		}
	}

	g, err := composecore.Compose(cfg, catalog.Default()...)
	if err != nil {
		return fmt.Errorf("cannot compose environment: %w", err)
	}

	result, err := emit.Plan(g, snapshot)
	if err != nil {
		return fmt.Errorf("cannot plan environment: %w", err)
	}

	output, err := renderer.RenderPlan(result)
	if err != nil {
		return err
	}
	fmt.Print(output)

	return nil
}
