package main

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"

	"sdl3gen/internal/version"
)

type versionPayload struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	GitCommit string `json:"git_commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	Go        string `json:"go"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the generator version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		format, _ := cmd.Flags().GetString("format")
		out := cmd.OutOrStdout()
		switch format {
		case "pretty":
			_, err := fmt.Fprintln(out, version.Describe())
			return err
		case "json":
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(versionPayload{
				Tool:      "sdl3gen",
				Version:   version.Version,
				GitCommit: version.GitCommit,
				BuildDate: version.BuildDate,
				Go:        runtime.Version(),
			})
		default:
			return fmt.Errorf("unknown format: %s", format)
		}
	},
}

func init() {
	versionCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}
