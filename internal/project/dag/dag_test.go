package dag

import (
	"testing"

	"oxide/internal/diag"
	"oxide/internal/source"
)

func idsToNames(idx ModuleIndex, ids []ModuleID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = idx.IDToName[int(id)]
	}
	return out
}

func sp(file source.FileID, start uint32) source.Span {
	return source.Span{File: file, Start: start, End: start + 4}
}

func decl(name, path string, file source.FileID, start uint32) ModDecl {
	return ModDecl{Name: name, Path: path, Span: sp(file, start)}
}

func codes(b *diag.Bag) []diag.Code {
	var out []diag.Code
	for _, d := range b.Items() {
		out = append(out, d.Code)
	}
	return out
}

func TestBuildIndexIncludesDeclaredFiles(t *testing.T) {
	metas := []ModuleMeta{
		{Path: "main.rs", Decls: []ModDecl{decl("net", "net.rs", 1, 0), decl("util", "util.rs", 1, 10)}},
		{Path: "util.rs"},
	}
	idx := BuildIndex(metas)
	want := []string{"main.rs", "net.rs", "util.rs"}
	if len(idx.IDToName) != len(want) {
		t.Fatalf("IDToName = %v", idx.IDToName)
	}
	for i, name := range want {
		if idx.IDToName[i] != name || idx.NameToID[name] != ModuleID(i) {
			t.Fatalf("index[%d] = %q, want %q", i, idx.IDToName[i], name)
		}
	}
}

func TestBuildGraphReportsMissingFiles(t *testing.T) {
	netDecl := decl("net", "net.rs", 1, 0)
	netDecl.Alt = "net/mod.rs"
	main := ModuleMeta{Path: "main.rs", Span: sp(1, 0), Decls: []ModDecl{netDecl, decl("util", "util.rs", 1, 10)}}
	util := ModuleMeta{Path: "util.rs", Span: sp(2, 0)}

	bagMain := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: main, Reporter: diag.BagReporter{Bag: bagMain}},
		{Meta: util, Reporter: diag.BagReporter{Bag: diag.NewBag(10)}},
	}
	idx := BuildIndex([]ModuleMeta{main, util})
	g, slots := BuildGraph(idx, nodes)

	mainID, netID, utilID := idx.NameToID["main.rs"], idx.NameToID["net.rs"], idx.NameToID["util.rs"]
	if edges := g.Edges[int(mainID)]; len(edges) != 1 || edges[0] != utilID {
		t.Fatalf("main edges = %v, want [%v]", edges, utilID)
	}
	if g.Present[int(netID)] || !g.Present[int(utilID)] {
		t.Fatalf("Present = %v", g.Present)
	}
	if !slots[int(utilID)].HasParent || slots[int(utilID)].Parent != mainID {
		t.Fatalf("util slot = %+v", slots[int(utilID)])
	}
	items := bagMain.Items()
	if len(items) != 1 || items[0].Code != diag.ProjMissingModuleFile {
		t.Fatalf("main diagnostics = %v", codes(bagMain))
	}
	if want := "file not found for module `net`: expected net.rs or net/mod.rs"; items[0].Message != want {
		t.Errorf("message = %q", items[0].Message)
	}
}

func TestBuildGraphDuplicateDeclaration(t *testing.T) {
	first := decl("a", "shared.rs", 1, 0)
	second := decl("b", "shared.rs", 1, 20)
	main := ModuleMeta{Path: "main.rs", Decls: []ModDecl{first, second}}
	shared := ModuleMeta{Path: "shared.rs"}

	bag := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: main, Reporter: diag.BagReporter{Bag: bag}},
		{Meta: shared},
	}
	idx := BuildIndex([]ModuleMeta{main, shared})
	g, slots := BuildGraph(idx, nodes)

	if got := g.Indeg[idx.NameToID["shared.rs"]]; got != 1 {
		t.Fatalf("indeg = %d, want 1", got)
	}
	if slots[idx.NameToID["shared.rs"]].DeclaredAt != first.Span {
		t.Fatal("first declaration must own the file")
	}
	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjDuplicateModule {
		t.Fatalf("diagnostics = %v", codes(bag))
	}
	if items[0].Primary != second.Span || len(items[0].Notes) != 1 || items[0].Notes[0].Span != first.Span {
		t.Fatalf("duplicate diagnostic = %+v", items[0])
	}
}

func TestToposortParentsFirst(t *testing.T) {
	metas := []ModuleMeta{
		{Path: "main.rs", Decls: []ModDecl{decl("b", "b.rs", 1, 0), decl("a", "a.rs", 1, 8)}},
		{Path: "a.rs", Decls: []ModDecl{decl("c", "a/c.rs", 2, 0)}},
		{Path: "b.rs"},
		{Path: "a/c.rs"},
	}
	nodes := make([]ModuleNode, len(metas))
	for i, m := range metas {
		nodes[i] = ModuleNode{Meta: m}
	}
	idx := BuildIndex(metas)
	g, _ := BuildGraph(idx, nodes)
	topo := ToposortKahn(g)
	if topo.Cyclic {
		t.Fatal("unexpected cycle")
	}
	got := idsToNames(idx, topo.Order)
	want := []string{"main.rs", "a.rs", "b.rs", "a/c.rs"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("order = %v, want %v", got, want)
		}
	}
	if len(topo.Batches) != 3 {
		t.Fatalf("batches = %v", topo.Batches)
	}
}

func TestReportCyclesAtDeclaration(t *testing.T) {
	mainDecl := decl("a", "a.rs", 1, 0)
	backDecl := decl("main", "main.rs", 2, 0)
	metas := []ModuleMeta{
		{Path: "main.rs", Span: sp(1, 0), Decls: []ModDecl{mainDecl}},
		{Path: "a.rs", Span: sp(2, 0), Decls: []ModDecl{backDecl}},
	}
	bagMain, bagA := diag.NewBag(10), diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: metas[0], Reporter: diag.BagReporter{Bag: bagMain}},
		{Meta: metas[1], Reporter: diag.BagReporter{Bag: bagA}},
	}
	idx := BuildIndex(metas)
	g, slots := BuildGraph(idx, nodes)
	topo := ToposortKahn(g)
	if !topo.Cyclic || len(topo.Cycles) != 2 {
		t.Fatalf("topo = %+v", topo)
	}
	ReportCycles(idx, slots, topo)

	// a.rs загружен из main.rs, main.rs - из a.rs
	if got := codes(bagMain); len(got) != 1 || got[0] != diag.ProjModuleCycle {
		t.Fatalf("main.rs diagnostics = %v", got)
	}
	if bagMain.Items()[0].Primary != mainDecl.Span {
		t.Errorf("cycle reported at %v", bagMain.Items()[0].Primary)
	}
	if got := codes(bagA); len(got) != 1 || got[0] != diag.ProjModuleCycle {
		t.Fatalf("a.rs diagnostics = %v", got)
	}
}

func TestReportBrokenChildren(t *testing.T) {
	childDecl := decl("lexer", "lexer.rs", 1, 0)
	firstErr := diag.NewError(diag.SynExpectSemicolon, sp(2, 12), "expected `;`")
	metas := []ModuleMeta{
		{Path: "lib.rs", Decls: []ModDecl{childDecl}},
		{Path: "lexer.rs"},
	}
	bag := diag.NewBag(10)
	nodes := []ModuleNode{
		{Meta: metas[0], Reporter: diag.BagReporter{Bag: bag}},
		{Meta: metas[1], Broken: true, FirstErr: &firstErr},
	}
	idx := BuildIndex(metas)
	_, slots := BuildGraph(idx, nodes)
	ReportBrokenChildren(idx, slots)

	items := bag.Items()
	if len(items) != 1 || items[0].Code != diag.ProjModuleHasErrors || items[0].Severity != diag.SevWarning {
		t.Fatalf("diagnostics = %+v", items)
	}
	if len(items[0].Notes) != 1 || items[0].Notes[0].Span != firstErr.Primary {
		t.Fatalf("notes = %+v", items[0].Notes)
	}
}
