package slug

import (
	"errors"
	"strings"
	"testing"
)

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"My Post":                        "my-post",
		"  Girls' Education -- Matters ": "girls-education-matters",
		"Éducation des filles":           "education-des-filles",
		"snake_case stays":               "snake_case-stays",
		"!!!":                            "",
		"Légal  Rights\tNow":             "legal-rights-now",
	}
	for in, want := range cases {
		if got := Slugify(in); got != want {
			t.Fatalf("Slugify(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestMakeTruncatesAndFallsBack(t *testing.T) {
	long := strings.Repeat("word ", 30)
	got := Make(long)
	if len(got) > MaxLength {
		t.Fatalf("Make produced %d chars, want <= %d", len(got), MaxLength)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("Make left a trailing dash: %q", got)
	}
	if got := Make("???"); got != Fallback {
		t.Fatalf("Make(???) = %q, want %q", got, Fallback)
	}
}

func TestUniqueAppendsCounter(t *testing.T) {
	taken := map[string]bool{"my-post": true, "my-post-1": true}
	got, err := Unique("my-post", func(c string) (bool, error) { return taken[c], nil })
	if err != nil {
		t.Fatalf("Unique: %v", err)
	}
	if got != "my-post-2" {
		t.Fatalf("Unique = %q, want my-post-2", got)
	}

	got, err = Unique("fresh", func(c string) (bool, error) { return taken[c], nil })
	if err != nil || got != "fresh" {
		t.Fatalf("Unique(fresh) = %q, %v", got, err)
	}
}

func TestUniquePropagatesLookupError(t *testing.T) {
	boom := errors.New("boom")
	if _, err := Unique("x", func(string) (bool, error) { return false, boom }); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
}

func TestValid(t *testing.T) {
	if !Valid("my-post_2") {
		t.Fatal("expected my-post_2 to be valid")
	}
	for _, bad := range []string{"", "has space", "slash/y", "ümlaut"} {
		if Valid(bad) {
			t.Fatalf("expected %q to be invalid", bad)
		}
	}
}
