package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sdl3gen/internal/diagfmt"
	"sdl3gen/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] header.h",
	Short: "Print the tokens of a header",
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	result, err := driver.Tokenize(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}
	if err := printDiagnostics(cmd, result.Bag, result.FileSet); err != nil {
		return err
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
