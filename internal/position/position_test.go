package position

import "testing"

func TestSpanMerge(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 3, Offset: 2}}
	b := Span{Start: Position{Line: 1, Column: 5, Offset: 4}, End: Position{Line: 1, Column: 9, Offset: 8}}

	got := a.Merge(b)
	if got.Start.Offset != 0 || got.End.Offset != 8 {
		t.Fatalf("Merge() = %+v, want start=0 end=8", got)
	}
}

func TestSpanMergeIgnoresInvalidOperand(t *testing.T) {
	a := Span{Start: Position{Line: 1, Column: 1, Offset: 0}, End: Position{Line: 1, Column: 3, Offset: 2}}

	if got := a.Merge(Span{}); got != a {
		t.Fatalf("Merge(invalid) = %+v, want %+v", got, a)
	}

	if got := (Span{}).Merge(a); got != a {
		t.Fatalf("invalid.Merge() = %+v, want %+v", got, a)
	}
}

func TestTrackerAdvanceTracksNewlines(t *testing.T) {
	tr := NewTracker("f.sv")

	p0 := tr.Advance(0, 'a')
	if p0.Line != 1 || p0.Column != 1 {
		t.Fatalf("first Advance = %+v, want line=1 col=1", p0)
	}

	p1 := tr.Advance(1, '\n')
	if p1.Line != 1 || p1.Column != 2 {
		t.Fatalf("second Advance = %+v, want line=1 col=2", p1)
	}

	p2 := tr.Advance(2, 'b')
	if p2.Line != 2 || p2.Column != 1 {
		t.Fatalf("third Advance = %+v, want line=2 col=1", p2)
	}
}
