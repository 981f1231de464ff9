package diagfmt

import (
	"encoding/json"
	"io"
	"slices"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/source"
)

const (
	sarifSchema  = "https://json.schemastore.org/sarif-2.1.0.json"
	sarifVersion = "2.1.0"
)

type sarifLog struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool        sarifTool         `json:"tool"`
	Invocations []sarifInvocation `json:"invocations,omitempty"`
	Results     []sarifResult     `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version,omitempty"`
	Rules   []sarifRule `json:"rules,omitempty"`
}

type sarifRule struct {
	ID               string       `json:"id"`
	ShortDescription sarifMessage `json:"shortDescription"`
}

type sarifInvocation struct {
	Arguments           []string `json:"arguments,omitempty"`
	ExecutionSuccessful bool     `json:"executionSuccessful"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations,omitempty"`
	Related   []sarifLocation `json:"relatedLocations,omitempty"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	Physical *sarifPhysical `json:"physicalLocation,omitempty"`
	Message  *sarifMessage  `json:"message,omitempty"`
}

type sarifPhysical struct {
	Artifact sarifArtifact `json:"artifactLocation"`
	Region   sarifRegion   `json:"region"`
}

type sarifArtifact struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine   uint32 `json:"startLine"`
	StartColumn uint32 `json:"startColumn"`
	EndLine     uint32 `json:"endLine"`
	EndColumn   uint32 `json:"endColumn"`
	ByteOffset  uint32 `json:"byteOffset"`
	ByteLength  uint32 `json:"byteLength"`
}

// Sarif writes the diagnostics as a SARIF 2.1.0 log with one run.
func Sarif(w io.Writer, bag *diag.Bag, fs *source.FileSet, meta SarifRunMeta) error {
	run := sarifRun{
		Tool:    sarifTool{Driver: sarifDriver{Name: meta.ToolName, Version: meta.ToolVersion}},
		Results: make([]sarifResult, 0, bag.Len()),
	}
	if len(meta.InvocationArgs) > 0 {
		run.Invocations = []sarifInvocation{{
			Arguments:           meta.InvocationArgs,
			ExecutionSuccessful: !bag.HasErrors(),
		}}
	}

	seen := make(map[diag.Code]bool)
	var codes []diag.Code
	for _, d := range bag.Items() {
		if !seen[d.Code] {
			seen[d.Code] = true
			codes = append(codes, d.Code)
		}
		res := sarifResult{
			RuleID:  d.Code.ID(),
			Level:   sarifLevel(d.Severity),
			Message: sarifMessage{Text: d.Message},
		}
		if loc, ok := sarifLocationOf(d.Primary, fs, ""); ok {
			res.Locations = []sarifLocation{loc}
		}
		for _, n := range d.Notes {
			if loc, ok := sarifLocationOf(n.Span, fs, n.Msg); ok {
				res.Related = append(res.Related, loc)
			}
		}
		run.Results = append(run.Results, res)
	}
	slices.Sort(codes)
	for _, c := range codes {
		run.Tool.Driver.Rules = append(run.Tool.Driver.Rules, sarifRule{
			ID:               c.ID(),
			ShortDescription: sarifMessage{Text: c.Title()},
		})
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(sarifLog{Schema: sarifSchema, Version: sarifVersion, Runs: []sarifRun{run}})
}

func sarifLocationOf(span source.Span, fs *source.FileSet, msg string) (sarifLocation, bool) {
	if !hasSource(span, fs) {
		return sarifLocation{}, false
	}
	start, end := fs.Resolve(span)
	loc := sarifLocation{Physical: &sarifPhysical{
		Artifact: sarifArtifact{URI: fs.Get(span.File).FormatPath("relative", fs.BaseDir())},
		Region: sarifRegion{
			StartLine:   start.Line,
			StartColumn: start.Col,
			EndLine:     end.Line,
			EndColumn:   end.Col,
			ByteOffset:  span.Start,
			ByteLength:  span.Len(),
		},
	}}
	if msg != "" {
		loc.Message = &sarifMessage{Text: msg}
	}
	return loc, true
}

func sarifLevel(sev diag.Severity) string {
	switch sev {
	case diag.SevError:
		return "error"
	case diag.SevWarning:
		return "warning"
	}
	return "note"
}
