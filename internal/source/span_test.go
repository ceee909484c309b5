package source

import (
	"testing"
)

func TestSpanCover(t *testing.T) {
	tests := []struct {
		name     string
		a, b     Span
		expected Span
	}{
		{"disjoint", Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 10}},
		{"nested", Span{File: 1, Start: 0, End: 10}, Span{File: 1, Start: 3, End: 4}, Span{File: 1, Start: 0, End: 10}},
		{"reverse order", Span{File: 1, Start: 8, End: 10}, Span{File: 1, Start: 2, End: 4}, Span{File: 1, Start: 2, End: 10}},
		{"other file ignored", Span{File: 1, Start: 2, End: 4}, Span{File: 2, Start: 0, End: 40}, Span{File: 1, Start: 2, End: 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Cover(tt.b); got != tt.expected {
				t.Fatalf("Cover() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestSpanContainsAndOverlaps(t *testing.T) {
	outer := Span{File: 0, Start: 10, End: 20}
	if !outer.Contains(Span{File: 0, Start: 10, End: 20}) {
		t.Fatal("span must contain itself")
	}
	if !outer.Contains(Span{File: 0, Start: 20, End: 20}) {
		t.Fatal("empty span at the end must be contained")
	}
	if outer.Contains(Span{File: 0, Start: 9, End: 12}) {
		t.Fatal("span starting before outer must not be contained")
	}
	if outer.Contains(Span{File: 1, Start: 12, End: 13}) {
		t.Fatal("span from other file must not be contained")
	}
	if !outer.Overlaps(Span{File: 0, Start: 19, End: 25}) {
		t.Fatal("expected overlap")
	}
	if outer.Overlaps(Span{File: 0, Start: 20, End: 25}) {
		t.Fatal("adjacent spans must not overlap")
	}
}

func TestSpanShift(t *testing.T) {
	sp := Span{File: 1, Start: 10, End: 20}
	if got := sp.ShiftLeft(5); got != (Span{File: 1, Start: 5, End: 15}) {
		t.Fatalf("ShiftLeft(5) = %v", got)
	}
	if got := sp.ShiftLeft(15); got != sp {
		t.Fatalf("ShiftLeft past start must return original, got %v", got)
	}
	if got := sp.ShiftRight(3); got != (Span{File: 1, Start: 13, End: 23}) {
		t.Fatalf("ShiftRight(3) = %v", got)
	}
	if got := sp.ZeroideToEnd(); got.Start != 20 || got.End != 20 {
		t.Fatalf("ZeroideToEnd = %v", got)
	}
}
