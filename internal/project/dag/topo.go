package dag

import (
	"fmt"
	"slices"

	"fortio.org/safecast"
)

// Topo orders present files parents first.
type Topo struct {
	Order   []ModuleID   // линейный порядок (только реальные файлы)
	Batches [][]ModuleID // уровни дерева модулей
	Cyclic  bool
	Cycles  []ModuleID // файлы, оставшиеся в цикле
}

func ToposortKahn(g Graph) *Topo {
	nodeCount := len(g.Edges)
	indeg := slices.Clone(g.Indeg)
	topo := &Topo{Order: make([]ModuleID, 0, nodeCount)}

	active := 0
	var current []ModuleID
	for i := range nodeCount {
		if !g.Present[i] {
			continue
		}
		active++
		if indeg[i] == 0 {
			current = append(current, toModuleID(i))
		}
	}

	for len(current) > 0 {
		topo.Batches = append(topo.Batches, current)
		var next []ModuleID
		for _, id := range current {
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

	if len(topo.Order) != active {
		topo.Cyclic = true
		for i := range nodeCount {
			if g.Present[i] && indeg[i] > 0 {
				topo.Cycles = append(topo.Cycles, toModuleID(i))
			}
		}
	}
	return topo
}

func toModuleID(i int) ModuleID {
	id, err := safecast.Conv[ModuleID](i)
	if err != nil {
		panic(fmt.Errorf("module id overflow: %w", err))
	}
	return id
}
