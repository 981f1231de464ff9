package driver

import (
	"encoding/json"
	"fmt"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/observ"
	"sdl3gen/internal/source"
)

type timingPayload struct {
	Kind    string               `json:"kind"`
	Path    string               `json:"path,omitempty"`
	TotalMS float64              `json:"total_ms"`
	Phases  []observ.PhaseReport `json:"phases"`
}

// AppendTimings adds an ObsTimings info diagnostic whose note is the JSON
// form of report. The bag grows if it is full.
func AppendTimings(bag *diag.Bag, kind, path string, report observ.Report) {
	if bag == nil {
		return
	}
	if kind == "" {
		kind = "pipeline"
	}
	payload := timingPayload{Kind: kind, Path: path, TotalMS: report.TotalMS, Phases: report.Phases}
	msg := fmt.Sprintf("timings (%s): total %.2f ms", kind, payload.TotalMS)
	if path != "" {
		msg += ", " + path
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}

	entry := diag.Diagnostic{
		Severity: diag.SevInfo,
		Code:     diag.ObsTimings,
		Message:  msg,
		Primary:  source.Nowhere,
		Notes:    []diag.Note{{Span: source.Nowhere, Msg: string(data)}},
	}
	if bag.Add(entry) {
		return
	}
	overflow := diag.NewBag(1)
	overflow.Add(entry)
	bag.Merge(overflow)
}
