package version

import (
	"testing"

	"github.com/fatih/color"
)

func TestDescribe(t *testing.T) {
	saved := []string{Version, GitCommit, BuildDate}
	savedNoColor := color.NoColor
	t.Cleanup(func() {
		Version, GitCommit, BuildDate = saved[0], saved[1], saved[2]
		color.NoColor = savedNoColor
	})
	color.NoColor = true

	tests := []struct {
		version, commit, date string
		want                  string
	}{
		{"0.1.0-dev", "", "", "sdl3gen 0.1.0-dev"},
		{"1.2.3", "abc123", "", "sdl3gen 1.2.3 (commit abc123)"},
		{"1.2.3", "abc123", "2026-01-15", "sdl3gen 1.2.3 (commit abc123, built 2026-01-15)"},
		{"nightly", "", "", "sdl3gen nightly"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			Version, GitCommit, BuildDate = tt.version, tt.commit, tt.date
			if got := Describe(); got != tt.want {
				t.Fatalf("Describe() = %q, want %q", got, tt.want)
			}
		})
	}
}
