// Copyright 2022, Pulumi Corporation.  All rights reserved.

package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.lsp.dev/protocol"

	"github.com/pulumi/aura-lsp/sdk/aura"
	"github.com/pulumi/aura-lsp/sdk/aura/complete"
	"github.com/pulumi/aura-lsp/sdk/lsp"
)

func newCompleteCmd(flags *engineFlags) *cobra.Command {
	var (
		offset   int
		prefix   string
		colorize string
	)
	cmd := &cobra.Command{
		Use:   "complete FILE",
		Short: "Print the completions offered at an offset of a file",
		Long: "Runs a single completion request against FILE, as the language server\n" +
			"would, and prints the candidates. Without --offset the cursor is placed\n" +
			"at the end of the file; without --prefix the word before the cursor is\n" +
			"taken as typed.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := setColor(colorize, cmd.OutOrStdout()); err != nil {
				return err
			}
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			text := lsp.NewText(string(data))
			if offset < 0 || offset > text.Len() {
				offset = text.Len()
			}

			logger, err := flags.logger()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()
			engine, ok := aura.LoadEngine(cmd.Context(), flags.config(logger)).GetResult()
			if !ok {
				return fmt.Errorf("could not load the tag registry")
			}

			if !cmd.Flags().Changed("prefix") {
				prefix = complete.WordBefore(text, offset, engine.Window())
			}
			result := engine.Complete(complete.Request{
				Prefix:    prefix,
				Locations: []int{offset},
				Oracle:    aura.NewOracle(text, engine.Window()),
				Buffer:    text,
			})
			render(cmd.OutOrStdout(), text.Position(offset), prefix, result)
			return nil
		},
	}
	cmd.Flags().IntVar(&offset, "offset", -1, "The byte offset of the cursor")
	cmd.Flags().StringVar(&prefix, "prefix", "", "The text typed before the cursor")
	cmd.Flags().StringVar(&colorize, "color", "auto", "Colorize the output: auto, always or never")
	return cmd
}

func setColor(mode string, out io.Writer) error {
	switch mode {
	case "always":
		color.NoColor = false
	case "never":
		color.NoColor = true
	case "auto":
		f, ok := out.(*os.File)
		color.NoColor = !ok || !isatty.IsTerminal(f.Fd())
	default:
		return fmt.Errorf("invalid --color %q: expected auto, always or never", mode)
	}
	return nil
}

var (
	labelColor    = color.New(color.Bold)
	hintColor     = color.New(color.FgCyan)
	templateColor = color.New(color.FgGreen)
	summaryColor  = color.New(color.Faint)
)

func render(w io.Writer, pos protocol.Position, prefix string, result complete.Result) {
	width := 0
	for _, c := range result.Candidates {
		name, _, _ := strings.Cut(c.Label, "\t")
		width = max(width, len(name))
	}
	for _, c := range result.Candidates {
		name, hint, _ := strings.Cut(c.Label, "\t")
		fmt.Fprintf(w, "%s%s  %s  %s\n",
			labelColor.Sprint(name), strings.Repeat(" ", width-len(name)),
			hintColor.Sprintf("%-12s", hint),
			templateColor.Sprint(c.Template))
	}

	var flags []string
	if result.Flags.Has(complete.InhibitWordCompletions) {
		flags = append(flags, "inhibit word completions")
	}
	if result.Flags.Has(complete.InhibitExplicitCompletions) {
		flags = append(flags, "inhibit explicit completions")
	}
	if len(flags) == 0 {
		flags = append(flags, "no flags")
	}
	summaryColor.Fprintf(w, "%d candidates for %q at %d:%d (%s, replacing %d more bytes)\n",
		len(result.Candidates), prefix, pos.Line+1, pos.Character+1, strings.Join(flags, ", "), result.Replace)
}
