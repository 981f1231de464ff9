package ui

import (
	"strings"
	"testing"

	"sdl3gen/internal/buildpipeline"
)

func TestProgressModelTracksHeaders(t *testing.T) {
	m := NewProgressModel("sdl3gen", nil).(*progressModel)
	events := []buildpipeline.Event{
		{Stage: buildpipeline.StageParse, Status: buildpipeline.StatusWorking},
		{File: "SDL_init.h", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusQueued},
		{File: "SDL_video.h", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusQueued},
		{File: "SDL_init.h", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusDone},
		{File: "SDL_video.h", Stage: buildpipeline.StageParse, Status: buildpipeline.StatusError},
	}
	for _, ev := range events {
		m.applyEvent(ev)
	}
	if parsed, failed := m.counts(); parsed != 2 || failed != 1 {
		t.Fatalf("counts = %d, %d", parsed, failed)
	}
	if got := m.percent(); got != 0.6 {
		t.Fatalf("percent = %v, want 0.6", got)
	}
	view := m.View()
	for _, want := range []string{"(parsing)", "SDL_video.h", "2/2 headers parsed, 1 failed"} {
		if !strings.Contains(view, want) {
			t.Errorf("view lacks %q:\n%s", want, view)
		}
	}
	if strings.Contains(view, "SDL_init.h") {
		t.Errorf("finished headers should not be listed:\n%s", view)
	}

	m.applyEvent(buildpipeline.Event{Stage: buildpipeline.StageCommit, Status: buildpipeline.StatusDone})
	if m.percent() != 1.0 {
		t.Fatalf("percent after commit = %v", m.percent())
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		in    string
		width int
		want  string
	}{
		{"SDL_video.h", 20, "SDL_video.h"},
		{"SDL_gamepad.h", 10, "SDL_gam..."},
		{"SDL_gamepad.h", 12, "SDL_gamep..."},
		{"SDL_日本語.h", 9, "SDL_日..."},
		{"SDL_gamepad.h", 3, "SDL"},
		{"SDL_gamepad.h", 0, "SDL_gamepad.h"},
	}
	for _, tt := range tests {
		if got := truncate(tt.in, tt.width); got != tt.want {
			t.Errorf("truncate(%q, %d) = %q, want %q", tt.in, tt.width, got, tt.want)
		}
	}
}
