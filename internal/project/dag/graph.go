package dag

import (
	"fmt"
	"slices"
	"strings"

	"oxide/internal/diag"
	"oxide/internal/project"
	"oxide/internal/source"
)

// Graph is the crate's module tree as parent -> child file edges.
type Graph struct {
	Edges   [][]ModuleID // Edges[from] = []to
	Indeg   []int        // входящие степени для Kahn (только по присутствующим файлам)
	Present []bool       // файл реально прочитан, а не только объявлен
}

// ModuleNode is a parsed file handed to BuildGraph.
type ModuleNode struct {
	Meta     ModuleMeta
	Reporter diag.Reporter
	Broken   bool
	FirstErr *diag.Diagnostic
}

type ModuleSlot struct {
	Meta     ModuleMeta
	Reporter diag.Reporter
	Present  bool
	Broken   bool
	FirstErr *diag.Diagnostic
	// DeclaredAt: первое объявление `mod`, загрузившее файл; Parent - его файл
	DeclaredAt source.Span
	Parent     ModuleID
	HasParent  bool
	// Hash: содержимое файла вместе с хешами дочерних модулей
	Hash project.Digest
}

// BuildGraph wires declarations to files. A declaration whose file was never
// read is reported as missing; a file reached from two declarations is
// reported at the second one.
func BuildGraph(idx ModuleIndex, nodes []ModuleNode) (Graph, []ModuleSlot) {
	nodeCount := len(idx.IDToName)
	g := Graph{
		Edges:   make([][]ModuleID, nodeCount),
		Indeg:   make([]int, nodeCount),
		Present: make([]bool, nodeCount),
	}
	slots := make([]ModuleSlot, nodeCount)
	for i, name := range idx.IDToName {
		slots[i].Meta.Path = name
	}

	for _, node := range nodes {
		id, ok := idx.NameToID[node.Meta.Path]
		if node.Meta.Path == "" || !ok {
			continue
		}
		slot := &slots[int(id)]
		if slot.Present {
			// один и тот же файл прочитан дважды: оставляем первый
			continue
		}
		slot.Meta = node.Meta
		slot.Reporter = node.Reporter
		slot.Present = true
		slot.Broken = node.Broken
		slot.FirstErr = node.FirstErr
		g.Present[int(id)] = true
	}

	for from := range slots {
		slot := &slots[from]
		if !slot.Present {
			continue
		}
		for _, decl := range slot.Meta.Decls {
			toID, ok := idx.NameToID[decl.Path]
			if decl.Path == "" || !ok {
				continue
			}
			if !g.Present[int(toID)] {
				report(slot.Reporter, diag.ProjMissingModuleFile, decl.Span,
					missingMessage(decl), nil)
				continue
			}
			target := &slots[int(toID)]
			if target.DeclaredAt != (source.Span{}) {
				report(slot.Reporter, diag.ProjDuplicateModule, decl.Span,
					fmt.Sprintf("file %q is already loaded as a module", decl.Path),
					[]diag.Note{{Span: target.DeclaredAt, Msg: "first loaded here"}})
				continue
			}
			target.DeclaredAt = decl.Span
			target.Parent = toModuleID(from)
			target.HasParent = true
			g.Edges[from] = append(g.Edges[from], toID)
			g.Indeg[int(toID)]++
		}
		if len(g.Edges[from]) > 1 {
			slices.Sort(g.Edges[from])
		}
	}
	return g, slots
}

func missingMessage(decl ModDecl) string {
	if decl.Alt == "" {
		return fmt.Sprintf("file not found for module `%s`: %s", decl.Name, decl.Path)
	}
	return fmt.Sprintf("file not found for module `%s`: expected %s or %s", decl.Name, decl.Path, decl.Alt)
}

func report(r diag.Reporter, code diag.Code, sp source.Span, msg string, notes []diag.Note) {
	if r == nil {
		return
	}
	sev := diag.SevError
	if code == diag.ProjModuleHasErrors {
		sev = diag.SevWarning
	}
	r.Report(code, sev, sp, msg, notes, nil)
}

// ReportCycles reports every file of a cycle at the declaration that loads it.
func ReportCycles(idx ModuleIndex, slots []ModuleSlot, topo *Topo) {
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
		if !slot.Present {
			continue
		}
		sp, r := slot.Meta.Span, slot.Reporter
		if slot.HasParent {
			sp, r = slot.DeclaredAt, slots[int(slot.Parent)].Reporter
		}
		msg := fmt.Sprintf("module file %q is part of a declaration cycle: %s", slot.Meta.Path, summary)
		report(r, diag.ProjModuleCycle, sp, msg, nil)
	}
}

// ReportBrokenChildren warns at each `mod` declaration whose file has
// errors, pointing at the first one.
func ReportBrokenChildren(idx ModuleIndex, slots []ModuleSlot) {
	for i := range slots {
		from := &slots[i]
		if !from.Present {
			continue
		}
		for _, decl := range from.Meta.Decls {
			toID, ok := idx.NameToID[decl.Path]
			if !ok {
				continue
			}
			child := slots[int(toID)]
			if !child.Present || !child.Broken || child.DeclaredAt != decl.Span {
				continue
			}
			var notes []diag.Note
			if child.FirstErr != nil {
				notes = append(notes, diag.Note{
					Span: child.FirstErr.Primary,
					Msg:  "first error: " + child.FirstErr.Message,
				})
			}
			report(from.Reporter, diag.ProjModuleHasErrors, decl.Span,
				fmt.Sprintf("module `%s` has errors", decl.Name), notes)
		}
	}
}
