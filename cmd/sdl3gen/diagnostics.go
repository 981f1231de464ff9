package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/diagfmt"
	"sdl3gen/internal/source"
	"sdl3gen/internal/version"
)

// errReported marks failures whose diagnostics were already printed.
var errReported = errors.New("generation failed")

func useColor(cmd *cobra.Command, f *os.File) bool {
	switch flag, _ := cmd.Root().PersistentFlags().GetString("color"); flag {
	case "on":
		return true
	case "off":
		return false
	default:
		return isTerminal(f) && !color.NoColor
	}
}

// printDiagnostics renders bag on stderr in the --diagnostics format.
// Info diagnostics are shown only with --timings.
func printDiagnostics(cmd *cobra.Command, bag *diag.Bag, fs *source.FileSet) error {
	if bag == nil || bag.Len() == 0 {
		return nil
	}
	flags := cmd.Root().PersistentFlags()
	format, _ := flags.GetString("diagnostics")
	pathFlag, _ := flags.GetString("path-mode")
	maxDiag, _ := flags.GetInt("max-diagnostics")
	timings, _ := flags.GetBool("timings")
	quiet, _ := flags.GetBool("quiet")

	pathMode, ok := diagfmt.ParsePathMode(pathFlag)
	if !ok {
		return fmt.Errorf("invalid --path-mode %q (expected auto|absolute|relative|basename)", pathFlag)
	}
	if fs == nil {
		fs = source.NewFileSet()
	}

	shown := diag.NewBag(maxDiag)
	for _, d := range bag.Items() {
		if d.Severity == diag.SevInfo && !timings {
			continue
		}
		if d.Severity == diag.SevWarning && quiet {
			continue
		}
		shown.Add(d)
	}
	if shown.Len() == 0 {
		return nil
	}
	shown.Sort()

	out := cmd.ErrOrStderr()
	switch diagnosticsFormat(format, out) {
	case "pretty":
		diagfmt.Pretty(out, shown, fs, diagfmt.PrettyOpts{
			Color:     useColor(cmd, os.Stderr),
			Context:   1,
			PathMode:  pathMode,
			ShowNotes: true,
		})
		return nil
	case "short":
		_, err := fmt.Fprintln(out, diag.FormatShortDiagnostics(shown.Items(), fs, true))
		return err
	case "json":
		return diagfmt.JSON(out, shown, fs, diagfmt.JSONOpts{IncludePositions: true, PathMode: pathMode, IncludeNotes: true})
	case "sarif":
		return diagfmt.Sarif(out, shown, fs, diagfmt.SarifRunMeta{
			ToolName:       "sdl3gen",
			ToolVersion:    version.Version,
			InvocationArgs: os.Args[1:],
		})
	default:
		return fmt.Errorf("unknown diagnostics format: %s", format)
	}
}

// diagnosticsFormat resolves "auto" to pretty on a terminal and to the
// one-line short form otherwise.
func diagnosticsFormat(format string, w io.Writer) string {
	if format != "auto" {
		return format
	}
	if f, ok := w.(*os.File); ok && isTerminal(f) {
		return "pretty"
	}
	return "short"
}

func printError(cmd *cobra.Command, err error) {
	if errors.Is(err, errReported) {
		return
	}
	var d diag.Diagnostic
	if errors.As(err, &d) {
		bag := diag.NewBag(1)
		bag.Add(d)
		if printDiagnostics(cmd, bag, nil) == nil {
			return
		}
	}
	red := color.New(color.FgRed, color.Bold)
	if !useColor(cmd, os.Stderr) {
		red.DisableColor()
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "%s %v\n", red.Sprint("error:"), err)
}
