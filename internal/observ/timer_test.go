package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerMergesPhasesByName(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Measure("parse", func() { time.Sleep(time.Millisecond) })
		}()
	}
	wg.Wait()
	idx, started := tm.Begin("render")
	tm.End(idx, started, "3 files")

	report := tm.Report()
	if len(report.Phases) != 2 {
		t.Fatalf("phases = %+v", report.Phases)
	}
	parse := report.Phases[0]
	if parse.Name != "parse" || parse.Count != 8 || parse.DurationMS <= 0 {
		t.Fatalf("parse phase = %+v", parse)
	}
	if report.Phases[1].Note != "3 files" {
		t.Errorf("note = %q", report.Phases[1].Note)
	}
	if report.TotalMS < parse.DurationMS {
		t.Errorf("total %.2f < parse %.2f", report.TotalMS, parse.DurationMS)
	}
}

func TestTimerSummary(t *testing.T) {
	tm := NewTimer()
	tm.Measure("lex", func() {})
	tm.Measure("lex", func() {})
	out := tm.Summary()
	for _, want := range []string{"timings:", "lex", "x2", "total"} {
		if !strings.Contains(out, want) {
			t.Errorf("summary misses %q:\n%s", want, out)
		}
	}
}

func TestTimerIgnoresBadIndex(t *testing.T) {
	tm := NewTimer()
	tm.End(5, time.Now(), "")
	if got := tm.Report(); len(got.Phases) != 0 || got.TotalMS != 0 {
		t.Fatalf("report = %+v", got)
	}
}
