// © 2025 Platform Engineering Labs Inc.
//
// SPDX-License-Identifier: FSL-1.1-ALv2

package serve

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/platform-engineering-labs/composa/internal/api"
	"github.com/platform-engineering-labs/composa/internal/catalog"
	"github.com/platform-engineering-labs/composa/internal/cli/cmd"
	cliconfig "github.com/platform-engineering-labs/composa/internal/cli/config"
	"github.com/platform-engineering-labs/composa/internal/cli/display"
	"github.com/platform-engineering-labs/composa/internal/logging"
)

type ServeOptions struct {
	Port    int
	TLSCert string
	TLSKey  string
	Quiet   bool
}

func validateServeOptions(opts *ServeOptions) error {
	if opts.Port <= 0 || opts.Port > 65535 {
		return cmd.FlagErrorf("port must be between 1 and 65535")
	}
	if (opts.TLSCert == "") != (opts.TLSKey == "") {
		return cmd.FlagErrorf("--tls-cert and --tls-key must be given together")
	}
	return nil
}

func ServeCmd() *cobra.Command {
	command := &cobra.Command{
		Use:   "serve",
		Short: "Run the composa API server",
		RunE: func(command *cobra.Command, args []string) error {
			opts := &ServeOptions{}
			opts.Port, _ = command.Flags().GetInt("port")
			opts.TLSCert, _ = command.Flags().GetString("tls-cert")
			opts.TLSKey, _ = command.Flags().GetString("tls-key")
			opts.Quiet, _ = command.Flags().GetBool("quiet")

			return runServe(opts)
		},
		Annotations: map[string]string{
			"type":     "Server",
			"examples": "{{.Name}} {{.Command}}  |  {{.Name}} {{.Command}} --port 9000",
			"args":     "",
		},
		SilenceErrors: true,
	}

	command.SetUsageTemplate(cmd.SimpleCmdUsageTemplate)

	command.Flags().Int("port", api.DefaultPort, "Port for the API server to listen on")
	command.Flags().String("tls-cert", "", "Path to a TLS certificate (enables HTTPS)")
	command.Flags().String("tls-key", "", "Path to the TLS private key")
	command.Flags().Bool("quiet", false, "Log to the server log file only, not to the console")

	return command
}

func runServe(opts *ServeOptions) error {
	if err := validateServeOptions(opts); err != nil {
		return err
	}

	consoleLevel := slog.LevelInfo
	if opts.Quiet {
		consoleLevel = logging.NoLoggingLevel
	}
	logging.SetupServerLogging(
		fmt.Sprintf("%s/log/server.log", cliconfig.Config.DataDirectory()),
		consoleLevel,
		slog.LevelDebug,
	)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		sig := <-sigChan
		slog.Info("Received signal, shutting down", "signal", sig)
		cancel()
	}()

	if !opts.Quiet {
		display.Success(fmt.Sprintf("composa server listening on port %d. Press Ctrl+C to stop.", opts.Port))
	}

	server := api.NewServer(ctx, catalog.Default(), &api.ServerConfig{
		Port:    opts.Port,
		TLSCert: opts.TLSCert,
		TLSKey:  opts.TLSKey,
	})

	// Blocks until the signal handler cancels the context.
	server.Start()

	return nil
}
