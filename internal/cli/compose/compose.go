// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package compose

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/tidwall/pretty"

	"github.com/platform-engineering-labs/composa/internal/catalog"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	cliconfig "github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/display"
	"github.com/platform-engineering-labs/composa/internal/cli/renderer"
	"github.com/platform-engineering-labs/composa/internal/envfile"
	"github.com/platform-engineering-labs/composa/internal/logging"
	composecore "github.com/platform-engineering-labs/composa/pkg/compose"
	"github.com/platform-engineering-labs/composa/pkg/emit"
)

type ComposeOptions struct {
	EnvFile  string
	Sets     []string
	Out      string
	Beautify bool
	Colorize bool
	Machine  bool
}

func validateComposeOptions(opts *ComposeOptions) error {
	if opts.EnvFile == "" {
		return cmd.FlagErrorf("environment file is required")
	}
	return nil
}

func ComposeCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "compose",
		Short: "Compose an environment into a resource document",
		PreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupClientLogging(fmt.Sprintf("%s/log/client.log", cliconfig.Config.DataDirectory()))
		},
		RunE: func(command *cobra.Command, args []string) error {
			opts := &ComposeOptions{}
			opts.EnvFile = command.Flags().Arg(0)
			opts.Sets, _ = command.Flags().GetStringArray("set")
			opts.Out, _ = command.Flags().GetString("out")
			opts.Beautify, _ = command.Flags().GetBool("beautify")
			opts.Colorize, _ = command.Flags().GetBool("colorize")
			opts.Machine, _ = command.Flags().GetBool("machine")

			return runCompose(opts)
		},
		Annotations: map[string]string{
			"type":     "Composition",
			"examples": "{{.Name}} {{.Command}} dev.yaml  |  {{.Name}} {{.Command}} --set Network.NATGateway=true dev.yaml",
			"args":     "<environment file>",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().StringArray("set", nil, "Override a configuration value (path=value, repeatable)")
	command.Flags().String("out", "", "Write the document to a file instead of stdout")
	command.Flags().Bool("beautify", true, "beautify output")
	command.Flags().Bool("colorize", true, "colorize output (stdout only)")
	command.Flags().Bool("machine", false, "machine-readable output: compact, uncolored, no banner")

	return command
}

func runCompose(opts *ComposeOptions) error {
	if err := validateComposeOptions(opts); err != nil {
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

	beautify := opts.Beautify && !opts.Machine
	serialized, err := emit.EncodeDocument(g, beautify)
	if err != nil {
		return err
	}

	if opts.Out != "" {
		if err := os.WriteFile(opts.Out, append(serialized, '\n'), 0644); err != nil {
			return fmt.Errorf("cannot write document: %w", err)
		}
		if !opts.Machine {
			display.Success(fmt.Sprintf("Composed %d resources into %s", len(g.Descriptors), opts.Out))
			warnAdvisories(g)
		}
		return nil
	}

	if opts.Machine {
		fmt.Println(string(serialized))
		return nil
	}

	display.PrintBanner()
	fmt.Print(display.Gold("Composing environment:") + "\n  " +
		display.Green("File: ") + opts.EnvFile + "\n  " +
		display.Green("Environment: ") + cfg.Prefix() + "\n\n")

	if opts.Colorize {
		serialized = pretty.Color(serialized, nil)
	}

	fmt.Printf("%s\n\n%s\n", display.Goldf("Composed %d resources:", len(g.Descriptors)), serialized)
	warnAdvisories(g)

	return nil
}

func warnAdvisories(g *composecore.Graph) {
	if len(g.Violations) == 0 {
		return
	}

	output, err := renderer.RenderViolations(g.Violations)
	if err != nil {
		display.Warning(err.Error())
		return
	}
	fmt.Print("\n" + output)
}
