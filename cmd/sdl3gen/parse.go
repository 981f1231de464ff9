package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"sdl3gen/internal/diagfmt"
	"sdl3gen/internal/driver"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] header.h",
	Short: "Print the declarations of a header after patching",
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runParse(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")
	maxDiagnostics, _ := cmd.Root().PersistentFlags().GetInt("max-diagnostics")

	result, err := driver.Parse(args[0], maxDiagnostics)
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if err := printDiagnostics(cmd, result.Bag, result.FileSet); err != nil {
		return err
	}
	if result.AST == nil {
		return errReported
	}

	out := cmd.OutOrStdout()
	switch format {
	case "pretty":
		if len(result.Patched) > 0 {
			fmt.Fprintf(out, "patched: %s\n", strings.Join(result.Patched, ", "))
		}
		return diagfmt.FormatASTPretty(out, result.AST, result.FileSet)
	case "json":
		return diagfmt.FormatASTJSON(out, result.AST)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
