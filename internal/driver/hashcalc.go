package driver

import (
	"oxide/internal/project"
	"oxide/internal/project/dag"
)

// ComputeModuleHashes вычисляет Hash модулей по обратному порядку топосортировки:
// H(content || child1 || child2 ...), дети в порядке рёбер графа.
// Для циклического графа намеренно ничего не делает (оставляет нули).
func ComputeModuleHashes(g dag.Graph, slots []dag.ModuleSlot, topo *dag.Topo) {
	if topo == nil || topo.Cyclic {
		return
	}
	for i := len(topo.Order) - 1; i >= 0; i-- {
		id := topo.Order[i]
		slot := &slots[int(id)]
		if !slot.Present {
			continue
		}
		deps := make([]project.Digest, 0, len(g.Edges[int(id)]))
		for _, to := range g.Edges[int(id)] {
			if !g.Present[int(to)] {
				continue
			}
			deps = append(deps, slots[int(to)].Hash)
		}
		slot.Hash = project.Combine(slot.Meta.ContentHash, deps...)
	}
}
