package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    Level
		wantErr bool
	}{
		{"off", LevelOff, false},
		{"PHASE", LevelPhase, false},
		{"detail", LevelDetail, false},
		{"debug", LevelOff, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseLevel(tt.in)
			if (err != nil) != tt.wantErr || got != tt.want {
				t.Fatalf("ParseLevel(%q) = %v, %v", tt.in, got, err)
			}
		})
	}
}

func TestStreamTracerFiltersScopes(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatNDJSON)

	root := Begin(tr, ScopePhase, "parse", 0)
	Begin(tr, ScopeHeader, "header:SDL_video.h", root.ID()).End("")
	root.WithExtra("headers", "2").End("ok")

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d events, want 2:\n%s", len(lines), buf.String())
	}
	var end jsonEvent
	if err := json.Unmarshal([]byte(lines[1]), &end); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if end.Kind != "end" || end.Name != "parse" || end.Detail != "ok" || end.Extra["headers"] != "2" {
		t.Fatalf("unexpected end event %+v", end)
	}
}

func TestRingTracerKeepsLastEvents(t *testing.T) {
	tr := NewRingTracer(3, LevelDetail)
	for _, name := range []string{"a", "b", "c", "d", "e"} {
		tr.Emit(&Event{Kind: KindPoint, Scope: ScopeHeader, Name: name})
	}
	var names []string
	for _, ev := range tr.Snapshot() {
		names = append(names, ev.Name)
	}
	if strings.Join(names, ",") != "c,d,e" {
		t.Fatalf("snapshot = %v", names)
	}

	var buf bytes.Buffer
	if err := tr.Dump(&buf, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(buf.String(), "[header] * e") {
		t.Fatalf("unexpected dump:\n%s", buf.String())
	}
}

func TestContextPropagation(t *testing.T) {
	ctx := context.Background()
	if FromContext(ctx) != Nop || CurrentSpan(ctx) != 0 {
		t.Fatalf("empty context should carry Nop and no span")
	}
	tr := NewRingTracer(8, LevelPhase)
	ctx = WithTracer(ctx, tr)
	span := Begin(FromContext(ctx), ScopeDriver, "generate", 0)
	ctx = WithSpan(ctx, span)
	if CurrentSpan(ctx) != span.ID() || span.ID() == 0 {
		t.Fatalf("span not propagated")
	}
	if d := Begin(Nop, ScopeDriver, "x", 0).End(""); d < 0 {
		t.Fatalf("negative duration")
	}
}

func TestNewDisabled(t *testing.T) {
	tr, err := New(Config{Level: LevelOff})
	if err != nil || tr.Enabled() {
		t.Fatalf("New(off) = %v, %v", tr, err)
	}
	var buf bytes.Buffer
	tr, err = New(Config{Level: LevelDetail, Output: &buf, Format: FormatText})
	if err != nil || !tr.Enabled() {
		t.Fatalf("New(detail) = %v, %v", tr, err)
	}
}
