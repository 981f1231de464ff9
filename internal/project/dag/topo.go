package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

type Topo struct {
	Order   []HeaderID   // includers before the headers they include
	Batches [][]HeaderID // waves of headers with no pending includer
	Cyclic  bool
	Cycles  []HeaderID // headers left with unresolved edges
}

// ToposortKahn sorts g in waves; every wave is in id order.
func ToposortKahn(g Graph) *Topo {
	count := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]HeaderID, 0, count)}

	current := make([]HeaderID, 0, count)
	for i := range count {
		if indeg[i] == 0 {
			current = append(current, headerID(i))
		}
	}

	for len(current) > 0 {
		batch := slices.Clone(current)
		topo.Batches = append(topo.Batches, batch)

		var next []HeaderID
		for _, id := range batch {
			topo.Order = append(topo.Order, id)
			for _, to := range g.Edges[int(id)] {
				indeg[int(to)]--
				if indeg[int(to)] == 0 {
					next = append(next, to)
				}
			}
		}
		slices.Sort(next)
		current = next
	}

	if len(topo.Order) != count {
		topo.Cyclic = true
		for i := range count {
			if indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, headerID(i))
			}
		}
	}
	return topo
}

func headerID(i int) HeaderID {
	id, err := safecast.Conv[HeaderID](i)
	if err != nil {
		panic(fmt.Errorf("header id overflow: %w", err))
	}
	return id
}
