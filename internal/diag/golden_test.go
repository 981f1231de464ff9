package diag

import (
	"testing"

	"sdl3gen/internal/source"
)

func TestFormatShortDiagnostics(t *testing.T) {
	fs := source.NewFileSet()
	fs.SetBaseDir("/workspace")

	header := fs.Add("/workspace/include/SDL3/SDL_power.h", []byte("a\nb\n"), 0)

	diags := []Diagnostic{
		{
			Severity: SevWarning,
			Code:     ModUnresolvedType,
			Message:  "another",
			Primary:  source.Span{File: header, Start: 2, End: 3},
		},
		{
			Severity: SevError,
			Code:     SynUnexpectedToken,
			Message:  "first line\nsecond",
			Primary:  source.Span{File: header, Start: 0, End: 1},
			Notes: []Note{
				{Span: source.Span{File: header, Start: 2, End: 3}, Msg: "note line"},
			},
		},
		{
			Severity: SevError,
			Code:     ProjNoHeaders,
			Message:  "no headers",
			Primary:  source.Nowhere,
		},
	}

	expected := "error SYN2001 include/SDL3/SDL_power.h:1:1 first line second\n" +
		"note SYN2001 include/SDL3/SDL_power.h:2:1 note line\n" +
		"warning MOD3001 include/SDL3/SDL_power.h:2:1 another\n" +
		"error PRJ6002 sdl3gen:0:0 no headers"

	if got := FormatShortDiagnostics(diags, fs, true); got != expected {
		t.Fatalf("unexpected diagnostics:\nwant:\n%s\n\ngot:\n%s", expected, got)
	}
}

func TestBagSortAndDedup(t *testing.T) {
	b := NewBag(10)
	sp := source.Span{File: 0, Start: 4, End: 5}
	b.Add(NewError(SynExpectSemicolon, sp, "missing ;"))
	b.Add(NewError(SynExpectSemicolon, sp, "missing ;"))
	b.Add(New(SevWarning, ModInfo, source.Span{File: 0, Start: 1, End: 2}, "early"))
	b.Add(NewError(LexBadNumber, sp, "bad"))

	b.Dedup()
	if b.Len() != 3 {
		t.Fatalf("Len() after Dedup = %d, want 3", b.Len())
	}
	b.Sort()
	got := []Code{b.Items()[0].Code, b.Items()[1].Code, b.Items()[2].Code}
	want := []Code{ModInfo, LexBadNumber, SynExpectSemicolon}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Items()[%d].Code = %v, want %v", i, got[i].ID(), want[i].ID())
		}
	}
	if !b.HasErrors() {
		t.Error("HasErrors() = false")
	}
	first, ok := b.FirstError()
	if !ok || first.Code != LexBadNumber {
		t.Errorf("FirstError() = %v,%v", first.Code.ID(), ok)
	}
}

func TestBagLimit(t *testing.T) {
	b := NewBag(1)
	if !b.Add(NewError(SynInfo, source.Nowhere, "a")) {
		t.Fatal("first Add rejected")
	}
	if b.Add(NewError(SynInfo, source.Nowhere, "b")) {
		t.Fatal("second Add accepted beyond limit")
	}
	other := NewBag(5)
	other.Add(NewError(ModInfo, source.Nowhere, "c"))
	other.Add(NewError(ModInfo, source.Nowhere, "d"))
	b.Merge(other)
	if b.Len() != 3 || b.Cap() != 3 {
		t.Errorf("after Merge Len/Cap = %d/%d, want 3/3", b.Len(), b.Cap())
	}
}

func TestCodeID(t *testing.T) {
	cases := map[Code]string{
		LexBadNumber:        "LEX1004",
		SynExpectSemicolon:  "SYN2005",
		ModUnresolvedType:   "MOD3001",
		EmtNameCollision:    "EMT4001",
		IOWriteError:        "IO5002",
		ProjDuplicateModule: "PRJ6001",
		Code(9999):          "E0000",
	}
	for c, want := range cases {
		if got := c.ID(); got != want {
			t.Errorf("Code(%d).ID() = %q, want %q", c, got, want)
		}
	}
	if Code(9999).Title() != "Unknown error" {
		t.Errorf("unknown Title() = %q", Code(9999).Title())
	}
}

func TestDedupReporter(t *testing.T) {
	bag := NewBag(10)
	r := NewDedupReporter(BagReporter{Bag: bag})
	sp := source.Span{File: 0, Start: 1, End: 2}
	ReportError(r, SynBadLiteral, sp, "bad literal").Emit()
	ReportError(r, SynBadLiteral, sp, "bad literal").Emit()
	ReportWarning(r, SynBadLiteral, sp, "other text").Emit()
	if bag.Len() != 2 {
		t.Fatalf("bag.Len() = %d, want 2", bag.Len())
	}
}
