// Package version holds the sdl3gen build identity. The variables can be
// overridden at build time via -ldflags.
package version

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
)

var (
	// Version is the semantic version of the generator.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)
)

// Colored renders Version with one colour per component. fatih/color
// drops the escapes when output is not a terminal.
func Colored() string {
	core, suffix, _ := strings.Cut(Version, "-")
	parts := strings.SplitN(core, ".", 3)
	if len(parts) != 3 {
		return Version
	}
	out := majorColor.Sprint(parts[0]) + "." + minorColor.Sprint(parts[1]) + "." + patchColor.Sprint(parts[2])
	if suffix != "" {
		out += "-" + suffix
	}
	return out
}

// Describe is the one-line "sdl3gen version" output.
func Describe() string {
	out := "sdl3gen " + Colored()
	var extra []string
	if GitCommit != "" {
		extra = append(extra, "commit "+GitCommit)
	}
	if BuildDate != "" {
		extra = append(extra, "built "+BuildDate)
	}
	if len(extra) > 0 {
		out += fmt.Sprintf(" (%s)", strings.Join(extra, ", "))
	}
	return out
}
