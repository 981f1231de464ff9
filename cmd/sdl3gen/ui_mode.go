package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"sdl3gen/internal/buildpipeline"
	"sdl3gen/internal/ui"
)

type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch strings.TrimSpace(strings.ToLower(value)) {
	case "", "auto":
		return uiModeAuto, nil
	case "on":
		return uiModeOn, nil
	case "off":
		return uiModeOff, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		return isTerminal(os.Stdout)
	}
}

type generateOutcome struct {
	result *buildpipeline.GenerateResult
	err    error
}

// runGenerateWithUI runs the pipeline in the background and renders its
// progress events until the pipeline finishes.
func runGenerateWithUI(ctx context.Context, title string, req *buildpipeline.GenerateRequest) (*buildpipeline.GenerateResult, error) {
	events := make(chan buildpipeline.Event, 256)
	outcomeCh := make(chan generateOutcome, 1)

	go func() {
		reqCopy := *req
		reqCopy.Progress = buildpipeline.ChannelSink{Ch: events}
		res, err := buildpipeline.Generate(ctx, &reqCopy)
		outcomeCh <- generateOutcome{result: res, err: err}
		close(events)
	}()

	program := tea.NewProgram(ui.NewProgressModel(title, events), tea.WithOutput(os.Stdout))
	_, uiErr := program.Run()
	if uiErr != nil {
		// keep draining so the pipeline never blocks on a full channel
		go func() {
			for range events {
			}
		}()
	}
	outcome := <-outcomeCh
	if uiErr != nil && outcome.err == nil {
		return outcome.result, uiErr
	}
	return outcome.result, outcome.err
}
