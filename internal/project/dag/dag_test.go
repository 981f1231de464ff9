package dag

import (
	"slices"
	"testing"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/project"
	"sdl3gen/internal/source"
)

func idsToNames(idx HeaderIndex, ids []HeaderID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func header(module string, includes ...string) project.HeaderMeta {
	meta := project.HeaderMeta{Module: module, Path: "SDL_" + module + ".h"}
	for _, inc := range includes {
		meta.Includes = append(meta.Includes, project.IncludeMeta{Module: inc})
	}
	return meta
}

func nodesOf(metas ...project.HeaderMeta) []HeaderNode {
	nodes := make([]HeaderNode, len(metas))
	for i, m := range metas {
		nodes[i] = HeaderNode{Meta: m}
	}
	return nodes
}

func TestBuildIndexSkipsUnknownIncludes(t *testing.T) {
	metas := []project.HeaderMeta{
		header("video", "stdinc", "rect", "platform_defines"),
		header("stdinc"),
		header("rect", "stdinc"),
	}
	idx := BuildIndex(metas)
	want := []string{"rect", "stdinc", "video"}
	if !slices.Equal(idx.IDToName, want) {
		t.Fatalf("IDToName = %v, want %v", idx.IDToName, want)
	}
	for i, name := range want {
		if id, ok := idx.NameToID[name]; !ok || int(id) != i {
			t.Fatalf("NameToID[%q] = %v, want %d", name, id, i)
		}
	}

	g, _ := BuildGraph(idx, nodesOf(metas...))
	video := idx.NameToID["video"]
	if got := idsToNames(idx, g.Edges[int(video)]); !slices.Equal(got, []string{"rect", "stdinc"}) {
		t.Fatalf("video includes = %v", got)
	}
	if g.Indeg[int(idx.NameToID["stdinc"])] != 2 {
		t.Fatalf("stdinc indegree = %d, want 2", g.Indeg[int(idx.NameToID["stdinc"])])
	}
}

func TestBuildGraphDuplicateModules(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 5}
	spanB := source.Span{File: 2, Start: 0, End: 5}

	metaA := project.HeaderMeta{Module: "video", Path: "SDL3/SDL_video.h", Span: spanA}
	metaB := project.HeaderMeta{Module: "video", Path: "SDL3/sdl_video.h", Span: spanB}

	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []HeaderNode{
		{Meta: metaA, Reporter: diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: diag.BagReporter{Bag: bagB}},
	}

	idx := BuildIndex([]project.HeaderMeta{metaA, metaB})
	_, slots := BuildGraph(idx, nodes)

	if bagA.Len() != 0 {
		t.Fatalf("unexpected diagnostics for first header: %v", bagA.Items())
	}
	if bagB.Len() != 1 || bagB.Items()[0].Code != diag.ProjDuplicateModule {
		t.Fatalf("duplicate diagnostics = %v", bagB.Items())
	}
	if notes := bagB.Items()[0].Notes; len(notes) != 1 || notes[0].Span != spanA {
		t.Fatalf("duplicate notes = %v", notes)
	}
	slot := slots[int(idx.NameToID["video"])]
	if !slot.Present || slot.Meta.Span != spanA {
		t.Fatalf("expected slot to hold the first header")
	}
}

func TestToposortKahnBatches(t *testing.T) {
	metas := []project.HeaderMeta{
		header("video", "rect", "stdinc"),
		header("audio", "stdinc"),
		header("rect", "stdinc"),
		header("stdinc", "stdinc"),
	}
	idx := BuildIndex(metas)
	g, _ := BuildGraph(idx, nodesOf(metas...))

	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatalf("expected acyclic graph")
	}
	if got := idsToNames(idx, topo.Order); !slices.Equal(got, []string{"audio", "video", "rect", "stdinc"}) {
		t.Fatalf("order = %v", got)
	}
	var batches [][]string
	for _, b := range topo.Batches {
		batches = append(batches, idsToNames(idx, b))
	}
	want := [][]string{{"audio", "video"}, {"rect"}, {"stdinc"}}
	if !slices.EqualFunc(batches, want, slices.Equal) {
		t.Fatalf("batches = %v, want %v", batches, want)
	}
}

func TestReportCycles(t *testing.T) {
	spanA := source.Span{File: 1, Start: 0, End: 4}
	spanB := source.Span{File: 2, Start: 0, End: 4}

	metaA := header("a", "b")
	metaA.Span = spanA
	metaB := header("b", "a")
	metaB.Span = spanB

	bagA := diag.NewBag(10)
	bagB := diag.NewBag(10)
	nodes := []HeaderNode{
		{Meta: metaA, Reporter: diag.BagReporter{Bag: bagA}},
		{Meta: metaB, Reporter: diag.BagReporter{Bag: bagB}},
	}

	idx := BuildIndex([]project.HeaderMeta{metaA, metaB})
	g, slots := BuildGraph(idx, nodes)

	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("expected cycle with two headers, got %+v", topo)
	}

	ReportCycles(idx, slots, topo)
	for name, bag := range map[string]*diag.Bag{"a": bagA, "b": bagB} {
		if bag.Len() != 1 {
			t.Fatalf("header %s diagnostics = %v", name, bag.Items())
		}
		d := bag.Items()[0]
		if d.Code != diag.ProjIncludeCycle || d.Severity != diag.SevWarning {
			t.Fatalf("header %s diagnostic = %+v", name, d)
		}
	}
}
