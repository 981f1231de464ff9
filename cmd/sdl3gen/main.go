// Command sdl3gen generates Go bindings from the SDL3 C headers.
package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sdl3gen/internal/version"
)

var rootCmd = &cobra.Command{
	Use:           "sdl3gen",
	Short:         "Generate Go bindings for SDL3",
	Long:          `sdl3gen parses the SDL3 public headers and writes a cgo-free Go binding package.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		return setupSession(cmd)
	},
}

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(depsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	flags := rootCmd.PersistentFlags()
	flags.String("color", "auto", "colorize output (auto|on|off)")
	flags.Bool("quiet", false, "suppress non-essential output")
	flags.Bool("timings", false, "show timing information")
	flags.Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	flags.String("diagnostics", "auto", "diagnostics format (auto|pretty|short|json|sarif); auto is pretty on a terminal, short otherwise")
	flags.String("path-mode", "auto", "path display in diagnostics (auto|absolute|relative|basename)")

	flags.String("trace", "", "write trace events to this file (- for stderr)")
	flags.String("trace-level", "off", "trace level (off|phase|detail)")
	flags.String("trace-mode", "stream", "trace storage (stream|ring|both)")
	flags.String("trace-format", "auto", "trace format (auto|text|ndjson)")
	flags.Int("trace-ring-size", 4096, "events kept by the ring tracer")

	flags.String("cpuprofile", "", "write a CPU profile to this file")
	flags.String("memprofile", "", "write a heap profile to this file")
	flags.String("runtime-trace", "", "write a Go runtime trace to this file")
}

func main() {
	err := rootCmd.Execute()
	if err != nil {
		dumpRing(rootCmd)
	}
	closeSession(rootCmd)
	if err != nil {
		printError(rootCmd, err)
		os.Exit(1)
	}
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
