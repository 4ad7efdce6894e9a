// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package cli

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/platform-engineering-labs/composa"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	composecmd "github.com/platform-engineering-labs/composa/internal/cli/compose"
	"github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/display"
	"github.com/platform-engineering-labs/composa/internal/cli/graph"
	"github.com/platform-engineering-labs/composa/internal/cli/plan"
	"github.com/platform-engineering-labs/composa/internal/cli/serve"
	"github.com/platform-engineering-labs/composa/internal/cli/validate"
)

func longDescription() string {
	return display.Tool + ": " + display.Green("Conditional resource composition for cloud environments")
}

var rootCmd = &cobra.Command{
	Use:     display.Tool,
	Short:   display.Tool + " CLI",
	Long:    longDescription(),
	Version: composa.Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		// Redirect slog output to discard to prevent it from appearing on screen
		devNull, _ := os.OpenFile(os.DevNull, os.O_WRONLY, 0)
		slog.SetDefault(slog.New(slog.NewTextHandler(devNull, nil)))
	},
}

func init() {
	hp := rootCmd.HelpFunc()
	longestFlagName := 0
	rootCmd.SetHelpFunc(func(cmd *cobra.Command, args []string) {
		display.PrintBanner()
		hp(cmd, args)
	})

	rootCmd.SetHelpCommand(&cobra.Command{
		Hidden: true,
	})

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	cobra.AddTemplateFunc("typeMap", func(cmds []*cobra.Command) map[string][]*cobra.Command {
		m := make(map[string][]*cobra.Command)
		for _, c := range cmds {
			if c.IsAvailableCommand() {
				t := c.Annotations["type"]
				if t == "" {
					t = "Tooling"
				}

				m[t] = append(m[t], c)
			}
		}
		return m
	})

	cobra.AddTemplateFunc("formatExamples", func(examples string, cmd *cobra.Command) string {
		cliName := cmd.Root().Name()
		cmdName := cmd.Name()
		replaced := strings.ReplaceAll(examples, "{{.Name}}", cliName)
		return strings.ReplaceAll(replaced, "{{.Command}}", cmdName)
	})

	cobra.AddTemplateFunc("optionsUsage", func(f *pflag.FlagSet) []string {
		var usage []string

		f.VisitAll(func(flag *pflag.Flag) {
			length := len(flag.Name)
			if flag.Shorthand != "" {
				length += 6
			}

			if length > longestFlagName {
				longestFlagName = length
			}
		})

		longestFlagName += 10

		f.VisitAll(func(flag *pflag.Flag) {
			s := fmt.Sprintf("      --%s ", flag.Name)
			if flag.Shorthand != "" {
				s = fmt.Sprintf("  -%s, --%s ", flag.Shorthand, flag.Name)
			}

			s = fmt.Sprintf("%-*s%s", longestFlagName, s, flag.Usage)
			if flag.DefValue != "" &&
				flag.DefValue != "[]" &&
				flag.Name != "help" &&
				flag.Name != "version" {
				s += display.Grey(fmt.Sprintf(" [default: %q]", flag.DefValue))
			}

			usage = append(usage, s)
		})
		return usage
	})

	rootCmd.SetUsageTemplate(cmd.RootCmdUsageTemplate)

	rootCmd.AddCommand(composecmd.ComposeCmd())
	rootCmd.AddCommand(validate.ValidateCmd())
	rootCmd.AddCommand(plan.PlanCmd())
	rootCmd.AddCommand(graph.GraphCmd())
	rootCmd.AddCommand(serve.ServeCmd())

	rootCmd.PersistentFlags().BoolP("help", "h", false, "Show help for "+rootCmd.Use)
	for _, cmd := range rootCmd.Commands() {
		cmd.PersistentFlags().BoolP("help", "h", false, fmt.Sprintf("Show help for %s command", cmd.Name()))
	}

	rootCmd.PersistentFlags().BoolP("version", "v", false, "Show "+rootCmd.Use+" version information")
	rootCmd.SetVersionTemplate(fmt.Sprintf("composa version: %s\ngo version: %s\n", composa.Version, runtime.Version()))
}

func Start() {
	err := config.Config.EnsureConfigDirectory()
	if err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}

	err = config.Config.EnsureDataDirectory()
	if err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}

	if err := config.Config.EnsureClientID(); err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}

	if err := rootCmd.Execute(); err != nil {
		fmt.Println(display.Red("Error: " + err.Error()))
		os.Exit(1)
	}
}
