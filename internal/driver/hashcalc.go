package driver

import (
	"sdl3gen/internal/diag"
	"sdl3gen/internal/project"
	"sdl3gen/internal/project/dag"
)

// IncludeGraph is the include DAG over the successfully parsed headers.
type IncludeGraph struct {
	Index dag.HeaderIndex
	Graph dag.Graph
	Slots []dag.HeaderSlot
	Topo  *dag.Topo
}

// BuildIncludeGraph links the parsed headers of set, reports include
// cycles as warnings into each header's bag and fills the header hashes.
func BuildIncludeGraph(set *ParseSet) *IncludeGraph {
	metas := make([]project.HeaderMeta, 0, len(set.Results))
	nodes := make([]dag.HeaderNode, 0, len(set.Results))
	for _, r := range set.Results {
		if r.AST == nil {
			continue
		}
		meta := project.HeaderMetaOf(r.AST, r.File)
		metas = append(metas, meta)
		nodes = append(nodes, dag.HeaderNode{Meta: meta, Reporter: diag.BagReporter{Bag: r.Bag}})
	}
	g := &IncludeGraph{Index: dag.BuildIndex(metas)}
	g.Graph, g.Slots = dag.BuildGraph(g.Index, nodes)
	g.Topo = dag.ToposortKahn(g.Graph)
	dag.ReportCycles(g.Index, g.Slots, g.Topo)
	ComputeHeaderHashes(g)
	return g
}

// ComputeHeaderHashes folds every header's content hash with the hashes of
// the headers it includes, in reverse topological order. Headers caught in
// a cycle, and headers with no includes, keep their content hash.
func ComputeHeaderHashes(g *IncludeGraph) {
	for i := range g.Slots {
		g.Slots[i].Meta.ModuleHash = g.Slots[i].Meta.ContentHash
	}
	if g.Topo == nil || g.Topo.Cyclic {
		return
	}
	for i := len(g.Topo.Order) - 1; i >= 0; i-- {
		id := g.Topo.Order[i]
		slot := &g.Slots[int(id)]
		if len(g.Graph.Edges[int(id)]) == 0 {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Graph.Edges[int(id)]))
		for _, to := range g.Graph.Edges[int(id)] {
			deps = append(deps, g.Slots[int(to)].Meta.ModuleHash)
		}
		slot.Meta.ModuleHash = project.Combine(slot.Meta.ContentHash, deps...)
	}
}

// Hashes returns the header hashes in module name order.
func (g *IncludeGraph) Hashes() []project.Digest {
	out := make([]project.Digest, 0, len(g.Slots))
	for _, s := range g.Slots {
		if s.Present {
			out = append(out, s.Meta.ModuleHash)
		}
	}
	return out
}

// Includes returns the modules included by module, in name order.
func (g *IncludeGraph) Includes(module string) []string {
	id, ok := g.Index.NameToID[module]
	if !ok {
		return nil
	}
	out := make([]string, 0, len(g.Graph.Edges[int(id)]))
	for _, to := range g.Graph.Edges[int(id)] {
		out = append(out, g.Index.IDToName[int(to)])
	}
	return out
}
