package driver_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"oxide/internal/driver"
	"oxide/internal/observ"
	"oxide/internal/project"
	"oxide/internal/project/dag"
)

func TestParseSourceReportsPhases(t *testing.T) {
	var (
		mu     sync.Mutex
		events []string
	)
	timer := observ.NewTimer()
	opts := driver.Options{
		Timer: timer,
		OnPhase: func(ev driver.PhaseEvent) {
			mu.Lock()
			defer mu.Unlock()
			state := "start"
			if ev.Status == driver.PhaseEnd {
				state = "end"
			}
			events = append(events, ev.Name+":"+state)
		},
	}
	res := driver.ParseSource(context.Background(), "main.rs", []byte("fn main() {}\n"), opts)
	if res.Bag.Len() != 0 || res.Tree == nil || res.Halted {
		t.Fatalf("unexpected result: %d diagnostics, halted=%v", res.Bag.Len(), res.Halted)
	}
	if diff := cmp.Diff([]string{"parse:start", "parse:end"}, events); diff != "" {
		t.Fatalf("phases (-want +got):\n%s", diff)
	}
	report := timer.Report()
	if len(report.Phases) != 1 || report.Phases[0].Name != "parse" || report.Phases[0].Count != 1 {
		t.Fatalf("timer report = %+v", report)
	}
}

func TestParseSourceHonoursLimits(t *testing.T) {
	src := []byte("fn f() { " + strings.Repeat("(", 64) + strings.Repeat(")", 64) + " }")
	opts := driver.Options{Parse: project.ParseConfig{MaxDepth: 16}}
	res := driver.ParseSource(context.Background(), "deep.rs", src, opts)
	if !res.Bag.HasErrors() {
		t.Fatal("expected a depth diagnostic")
	}
}

func TestTokenizeSource(t *testing.T) {
	res := driver.TokenizeSource("t.rs", []byte("fn x"), driver.Options{})
	var kinds []string
	for _, tok := range res.Tokens {
		kinds = append(kinds, tok.Kind.String())
	}
	if diff := cmp.Diff([]string{"KwFn", "Ident", "EOF"}, kinds); diff != "" {
		t.Fatalf("kinds (-want +got):\n%s", diff)
	}
}

func TestOptionsFromConfig(t *testing.T) {
	cfg := project.DefaultConfig()
	cfg.Project.Jobs = 3
	opts := driver.OptionsFromConfig(cfg)
	if opts.Jobs != 3 || opts.Parse != cfg.Parse {
		t.Fatalf("options = %+v", opts)
	}
	if diff := cmp.Diff([]string{".rs"}, opts.Extensions); diff != "" {
		t.Fatalf("extensions (-want +got):\n%s", diff)
	}
}

func digest(b byte) project.Digest {
	var d project.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func TestComputeModuleHashesDeterministicAndTransitive(t *testing.T) {
	// Граф: A -> B, B -> C
	g := dag.Graph{
		Edges:   [][]dag.ModuleID{{1}, {2}, {}},
		Indeg:   []int{0, 1, 1},
		Present: []bool{true, true, true},
	}
	topo := &dag.Topo{Order: []dag.ModuleID{0, 1, 2}}
	mkSlots := func(c byte) []dag.ModuleSlot {
		return []dag.ModuleSlot{
			{Meta: dag.ModuleMeta{Path: "a.rs", ContentHash: digest('A')}, Present: true},
			{Meta: dag.ModuleMeta{Path: "a/b.rs", ContentHash: digest('B')}, Present: true},
			{Meta: dag.ModuleMeta{Path: "a/b/c.rs", ContentHash: digest(c)}, Present: true},
		}
	}

	s1 := mkSlots('C')
	driver.ComputeModuleHashes(g, s1, topo)
	if s1[2].Hash != project.Combine(digest('C')) {
		t.Fatal("leaf hash must depend on its content only")
	}
	if s1[1].Hash != project.Combine(digest('B'), s1[2].Hash) {
		t.Fatal("B hash must fold in C")
	}

	s2 := mkSlots('C')
	driver.ComputeModuleHashes(g, s2, topo)
	if s1[0].Hash != s2[0].Hash {
		t.Fatal("hashes must be deterministic")
	}

	s3 := mkSlots('X')
	driver.ComputeModuleHashes(g, s3, topo)
	if s1[0].Hash == s3[0].Hash {
		t.Fatal("changing a leaf must change the root hash")
	}

	s4 := mkSlots('C')
	driver.ComputeModuleHashes(g, s4, &dag.Topo{Cyclic: true})
	if s4[0].Hash != (project.Digest{}) {
		t.Fatal("cyclic graph must leave hashes zero")
	}
}

func TestWriteTimings(t *testing.T) {
	timer := observ.NewTimer()
	timer.Measure("parse", func() {})
	payload := driver.NewTimingPayload("", "a.rs", timer)

	var buf bytes.Buffer
	if err := driver.WriteTimings(&buf, payload, true); err != nil {
		t.Fatal(err)
	}
	var decoded driver.TimingPayload
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("invalid json %q: %v", buf.String(), err)
	}
	if decoded.Kind != "pipeline" || decoded.Path != "a.rs" || len(decoded.Phases) != 1 {
		t.Fatalf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := driver.WriteTimings(&buf, payload, false); err != nil {
		t.Fatal(err)
	}
	out := buf.String()
	for _, want := range []string{"timings (pipeline): a.rs", "parse", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}
}
