package dag

import (
	"fmt"
	"slices"
	"strings"

	"sdl3gen/internal/diag"
	"sdl3gen/internal/project"
	"sdl3gen/internal/source"
)

type Graph struct {
	Edges [][]HeaderID // Edges[includer] = included
	Indeg []int
}

type HeaderNode struct {
	Meta     project.HeaderMeta
	Reporter diag.Reporter
}

type HeaderSlot struct {
	Meta     project.HeaderMeta
	Reporter diag.Reporter
	Present  bool
}

// BuildGraph links every header to the headers it includes. A second
// header for an already seen module is reported as ProjDuplicateModule and
// dropped; includes of unknown modules and self-includes are ignored.
func BuildGraph(idx HeaderIndex, nodes []HeaderNode) (Graph, []HeaderSlot) {
	count := len(idx.IDToName)
	g := Graph{
		Edges: make([][]HeaderID, count),
		Indeg: make([]int, count),
	}
	slots := make([]HeaderSlot, count)

	for _, node := range nodes {
		meta := node.Meta
		id, ok := idx.NameToID[meta.Module]
		if !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			if node.Reporter != nil {
				var notes []diag.Note
				if slot.Meta.Span != (source.Span{}) {
					notes = append(notes, diag.Note{
						Span: slot.Meta.Span,
						Msg:  fmt.Sprintf("module %q first provided by %s", meta.Module, slot.Meta.Path),
					})
				}
				node.Reporter.Report(
					diag.ProjDuplicateModule,
					diag.SevError,
					meta.Span,
					fmt.Sprintf("header %s maps to module %q, already taken", meta.Path, meta.Module),
					notes,
				)
			}
			continue
		}
		slot.Meta = meta
		slot.Reporter = node.Reporter
		slot.Present = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		for _, inc := range slot.Meta.Includes {
			to, ok := idx.NameToID[inc.Module]
			if !ok || !slots[int(to)].Present || HeaderID(from) == to {
				continue
			}
			if slices.Contains(g.Edges[from], to) {
				continue
			}
			g.Edges[from] = append(g.Edges[from], to)
			g.Indeg[int(to)]++
		}
		slices.Sort(g.Edges[from])
	}
	return g, slots
}

// ReportCycles warns on every header left in an include cycle. Include
// guards make such cycles legal C, so they only break hash ordering.
func ReportCycles(idx HeaderIndex, slots []HeaderSlot, topo *Topo) {
	if topo == nil || !topo.Cyclic || len(topo.Cycles) == 0 {
		return
	}
	names := make([]string, 0, len(topo.Cycles))
	for _, id := range topo.Cycles {
		names = append(names, idx.IDToName[int(id)])
	}
	summary := strings.Join(names, " -> ")

	for _, id := range topo.Cycles {
		slot := slots[int(id)]
		if !slot.Present || slot.Reporter == nil {
			continue
		}
		msg := fmt.Sprintf("header %s is part of an include cycle: %s", slot.Meta.Path, summary)
		slot.Reporter.Report(diag.ProjIncludeCycle, diag.SevWarning, slot.Meta.Span, msg, nil)
	}
}
