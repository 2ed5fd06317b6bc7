package wrap

import "testing"

func TestWrapCoversFullRange(t *testing.T) {
	line := []byte("the quick brown fox jumps over the lazy dog")
	subs := Wrap(line, 10)
	if len(subs) == 0 {
		t.Fatal("expected at least one sub-line")
	}
	if subs[0].Start != 0 {
		t.Errorf("first sub-line Start = %d, want 0", subs[0].Start)
	}
	if subs[len(subs)-1].End != len(line) {
		t.Errorf("last sub-line End = %d, want %d", subs[len(subs)-1].End, len(line))
	}
	for i := 1; i < len(subs); i++ {
		if subs[i].Start != subs[i-1].End {
			t.Errorf("gap between sub-line %d and %d: %d != %d", i-1, i, subs[i-1].End, subs[i].Start)
		}
	}
}

func TestWrapEmptyLine(t *testing.T) {
	subs := Wrap(nil, 10)
	if len(subs) != 1 || subs[0].Start != 0 || subs[0].End != 0 {
		t.Errorf("Wrap(nil) = %+v, want a single empty sub-line", subs)
	}
}

func TestWrapLongWordBreaksAtWidth(t *testing.T) {
	line := []byte("supercalifragilisticexpialidocious")
	subs := Wrap(line, 10)
	if len(subs) < 3 {
		t.Fatalf("expected the long word to break across multiple sub-lines, got %d", len(subs))
	}
	total := 0
	for _, s := range subs {
		total += s.End - s.Start
	}
	if total != len(line) {
		t.Errorf("sub-line ranges cover %d bytes, want %d", total, len(line))
	}
}

func TestWrapMinimumWidth(t *testing.T) {
	subs := Wrap([]byte("abc"), 0)
	if len(subs) == 0 {
		t.Fatal("expected sub-lines even with width<1 (clamped to 1)")
	}
}

func TestCountMatchesWrapLength(t *testing.T) {
	line := []byte("one two three four five")
	if Count(line, 8) != len(Wrap(line, 8)) {
		t.Errorf("Count and len(Wrap(...)) disagree")
	}
}
