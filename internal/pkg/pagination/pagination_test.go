package pagination

import "testing"

func TestResolve(t *testing.T) {
	cases := []struct {
		raw   string
		total int64
		want  int
	}{
		{"", 13, 1},
		{"abc", 13, 1},
		{"2.0", 13, 1},
		{"1", 13, 1},
		{"3", 13, 3},
		{"4", 13, 3},
		{"999", 13, 3},
		{"0", 13, 3},
		{"-2", 13, 3},
		{"1", 0, 1},
		{"5", 0, 1},
	}
	for _, tc := range cases {
		if got := Resolve(tc.raw, tc.total, 6); got != tc.want {
			t.Fatalf("Resolve(%q, %d) = %d, want %d", tc.raw, tc.total, got, tc.want)
		}
	}
}

func TestNumPages(t *testing.T) {
	if got := NumPages(0, 6); got != 1 {
		t.Fatalf("NumPages(0) = %d, want 1", got)
	}
	if got := NumPages(12, 6); got != 2 {
		t.Fatalf("NumPages(12) = %d, want 2", got)
	}
	if got := NumPages(13, 6); got != 3 {
		t.Fatalf("NumPages(13) = %d, want 3", got)
	}
}

func TestPageNavigation(t *testing.T) {
	p := &Page[int]{Number: 2, NumPages: 3}
	if !p.HasNext() || !p.HasPrevious() || p.NextNumber() != 3 || p.PrevNumber() != 1 {
		t.Fatalf("unexpected navigation for %+v", p)
	}
	if r := p.Range(); len(r) != 3 || r[0] != 1 || r[2] != 3 {
		t.Fatalf("Range = %v", r)
	}
}
