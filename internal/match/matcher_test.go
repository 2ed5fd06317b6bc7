package match

import "testing"

func TestSubstring(t *testing.T) {
	m := NewSubstring("hit")
	r, ok := m.IsMatch([]byte("a hit b hit"))
	if !ok {
		t.Fatalf("expected match")
	}
	if r.Start != 2 || r.End != 5 {
		t.Errorf("range = %+v, want {2 5}", r)
	}
}

func TestSubstringRoundTrip(t *testing.T) {
	line := []byte("prefix-needle-suffix")
	m := NewSubstring("needle")
	r, ok := m.IsMatch(line)
	if !ok {
		t.Fatalf("expected match")
	}
	sub := NewSubstring(string(line[r.Start:r.End]))
	if !Matches(sub, line[r.Start:r.End]) {
		t.Errorf("extracted range does not self-match")
	}
}

func TestSubstringNoMatch(t *testing.T) {
	m := NewSubstring("zzz")
	if _, ok := m.IsMatch([]byte("abc")); ok {
		t.Errorf("expected no match")
	}
}

func TestRegex(t *testing.T) {
	m, err := NewRegex(`h.t`)
	if err != nil {
		t.Fatalf("compile error: %v", err)
	}
	r, ok := m.IsMatch([]byte("a hot dog"))
	if !ok || r.Start != 2 || r.End != 5 {
		t.Errorf("range = %+v ok=%v, want {2 5} true", r, ok)
	}
}

func TestRegexInvalid(t *testing.T) {
	if _, err := NewRegex("("); err == nil {
		t.Errorf("expected compile error for unbalanced paren")
	}
}

func TestIgnore(t *testing.T) {
	inner := NewSubstring("bad")
	ig := Ignore{Inner: inner}
	if Matches(ig, []byte("this is bad")) {
		t.Errorf("Ignore should not match a line containing the inner pattern")
	}
	if !Matches(ig, []byte("this is fine")) {
		t.Errorf("Ignore should match a line lacking the inner pattern")
	}
}

func TestAny(t *testing.T) {
	a := Any{NewSubstring("zzz"), NewSubstring("hit")}
	r, ok := a.IsMatch([]byte("a hit"))
	if !ok || r.Start != 2 {
		t.Errorf("Any should find the second variant's match, got %+v ok=%v", r, ok)
	}
}

func TestAllRequiresEveryVariant(t *testing.T) {
	all := All{NewSubstring("a"), NewSubstring("zzz")}
	if _, ok := all.IsMatch([]byte("abc")); ok {
		t.Errorf("All should miss when one variant misses")
	}
	all2 := All{NewSubstring("a"), NewSubstring("c")}
	r, ok := all2.IsMatch([]byte("abc"))
	if !ok || r.Start != 2 {
		t.Errorf("All should return the last variant's match, got %+v ok=%v", r, ok)
	}
}
