package mediamigrate

import (
	"errors"
	"fmt"
	"os"
	"path"
	"regexp"
	"sort"
	"strings"
)

var (
	ErrSourceNotFound  = errors.New("local file not found")
	ErrAmbiguousSource = errors.New("ambiguous local file")
)

// uniqueSuffix is what file storage appends to a stem when a name is taken.
var uniqueSuffix = regexp.MustCompile(`_[a-zA-Z0-9]+$`)

// OriginalName returns the last path segment of ref and the same name with
// a trailing uniqueness suffix removed from its stem.
func OriginalName(ref string) (recorded, stripped string) {
	recorded = path.Base(strings.ReplaceAll(strings.TrimSpace(ref), "\\", "/"))
	ext := path.Ext(recorded)
	stem := strings.TrimSuffix(recorded, ext)
	if s := uniqueSuffix.ReplaceAllString(stem, ""); s != "" {
		stem = s
	}
	return recorded, stem + ext
}

type finder struct {
	dir            string
	allowAmbiguous bool
	entries        []string
}

func newFinder(dir string, allowAmbiguous bool) (*finder, error) {
	items, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read source dir: %w", err)
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		if it.Type().IsRegular() {
			names = append(names, it.Name())
		}
	}
	sort.Strings(names)
	return &finder{dir: dir, allowAmbiguous: allowAmbiguous, entries: names}, nil
}

// Find resolves a recorded image name to a file in the source directory.
// Exact names win; otherwise exactly one suffix variant must match unless
// ambiguity is allowed, in which case the first in lexical order is used
// and the other candidates are returned alongside.
func (f *finder) Find(recorded, stripped string) (string, []string, error) {
	for _, name := range []string{recorded, stripped} {
		if f.has(name) {
			return name, nil, nil
		}
	}

	ext := path.Ext(stripped)
	stem := strings.TrimSuffix(stripped, ext)
	pattern := regexp.MustCompile(`^` + regexp.QuoteMeta(stem) + `(_[a-zA-Z0-9]+)?` + regexp.QuoteMeta(ext) + `$`)

	var matches []string
	for _, name := range f.entries {
		if pattern.MatchString(name) {
			matches = append(matches, name)
		}
	}
	switch {
	case len(matches) == 0:
		return "", nil, fmt.Errorf("%w: %s", ErrSourceNotFound, recorded)
	case len(matches) == 1:
		return matches[0], nil, nil
	case f.allowAmbiguous:
		return matches[0], matches[1:], nil
	}
	return "", matches, fmt.Errorf("%w: %s matches %s", ErrAmbiguousSource, recorded, strings.Join(matches, ", "))
}

func (f *finder) has(name string) bool {
	i := sort.SearchStrings(f.entries, name)
	return i < len(f.entries) && f.entries[i] == name
}
