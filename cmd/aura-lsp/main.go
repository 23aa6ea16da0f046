// Copyright 2022, Pulumi Corporation.  All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"runtime/debug"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/pulumi/aura-lsp/sdk/aura"
	"github.com/pulumi/aura-lsp/sdk/lsp"
	"github.com/pulumi/aura-lsp/sdk/version"
)

func main() {
	defer panicHandler()
	if err := newLSPCommand().Execute(); err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "An error occurred: %v\n", err)
		os.Exit(1)
	}
}

// Flags shared by every command that builds an engine.
type engineFlags struct {
	registry string
	lookback int
	verbose  bool
}

func (f *engineFlags) register(cmd *cobra.Command) {
	cmd.PersistentFlags().StringVar(&f.registry, "registry", "",
		"A YAML file of tags and attributes to use instead of the built-in Aura registry")
	cmd.PersistentFlags().IntVar(&f.lookback, "lookback", 0,
		"How many bytes around the cursor are inspected (default 500)")
	cmd.PersistentFlags().BoolVarP(&f.verbose, "verbose", "v", false, "Log every completion request")
}

func (f *engineFlags) logger() (*zap.SugaredLogger, error) {
	config := zap.NewDevelopmentConfig()
	if !f.verbose {
		config.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}

func (f *engineFlags) config(logger *zap.SugaredLogger) aura.Config {
	return aura.Config{
		RegistryPath: f.registry,
		Window:       f.lookback,
		Logger:       logger,
	}
}

func newLSPCommand() *cobra.Command {
	var flags engineFlags
	cmd := &cobra.Command{
		Use:   "aura-lsp",
		Short: "A LSP for Aura component markup",
		Long: "Serves tag and attribute completions for Aura and Lightning component\n" +
			"markup over stdin and stdout.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			logger, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx := context.Background()
			engine := aura.LoadEngine(ctx, flags.config(logger))
			server := lsp.NewServer(aura.Methods(engine), &stdio{false})
			server.Logger = logger
			return server.Run(ctx)
		},
	}
	flags.register(cmd)

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newCompleteCmd(&flags))
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print aura-lsp's version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%v\n", version.Version)
		},
	}
}

func panicHandler() {
	if panicPayload := recover(); panicPayload != nil {
		stack := string(debug.Stack())
		fmt.Fprintln(os.Stderr, "================================================================================")
		fmt.Fprintln(os.Stderr, "aura-lsp encountered a fatal error. This is a bug!")
		fmt.Fprintln(os.Stderr, "We would appreciate a report: https://github.com/pulumi/aura-lsp/issues/")
		fmt.Fprintln(os.Stderr, "Please provide all of the below text in your report.")
		fmt.Fprintln(os.Stderr, "================================================================================")
		fmt.Fprintf(os.Stderr, "aura-lsp Version:     %s\n", version.Version)
		fmt.Fprintf(os.Stderr, "Go Version:           %s\n", runtime.Version())
		fmt.Fprintf(os.Stderr, "Go Compiler:          %s\n", runtime.Compiler)
		fmt.Fprintf(os.Stderr, "Architecture:         %s\n", runtime.GOARCH)
		fmt.Fprintf(os.Stderr, "Operating System:     %s\n", runtime.GOOS)
		fmt.Fprintf(os.Stderr, "Panic:                %s\n\n", panicPayload)
		fmt.Fprintln(os.Stderr, stack)
		os.Exit(1)
	}
}

// An io.ReadWriteCloser, whose value indicates if the closer is closed.
type stdio struct{ bool }

func (s *stdio) Read(p []byte) (n int, err error) {
	if s.bool {
		return 0, io.EOF
	}
	return os.Stdin.Read(p)
}

func (s *stdio) Write(p []byte) (n int, err error) {
	if s.bool {
		return 0, io.EOF
	}
	return os.Stdout.Write(p)
}

func (s *stdio) Close() error {
	s.bool = true
	return nil
}
