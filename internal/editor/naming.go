package editor

import (
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

// DefaultNameBase is the prefix of generated region names.
const DefaultNameBase = "Cell"

var trailingNumber = regexp.MustCompile(`^(.+?)(\s*)(\d+)$`)

// SuggestNextName returns the name to offer for the next create after name
// was used. A trailing number is incremented, keeping the separator, until a
// free name is found. Otherwise a name containing "cell" in any case gets a
// " 2" suffix, so "My cell" becomes "My cell 2". Names matching neither rule
// yield "".
func SuggestNextName(name string, exists func(string) bool) string {
	if next, ok := incrementTrailing(name, exists); ok {
		return next
	}
	fold := cases.Fold()
	if strings.Contains(fold.String(name), fold.String(DefaultNameBase)) {
		candidate := name + " 2"
		if exists(candidate) {
			candidate, _ = incrementTrailing(candidate, exists)
		}
		return candidate
	}
	return ""
}

// GenerateName returns the first free "Cell N" name.
func GenerateName(exists func(string) bool) string {
	for i := 1; ; i++ {
		name := DefaultNameBase + " " + strconv.Itoa(i)
		if !exists(name) {
			return name
		}
	}
}

// DuplicateName returns a free name for a copy of name: the trailing number
// incremented when there is one, otherwise name with the first free "_N"
// suffix.
func DuplicateName(name string, exists func(string) bool) string {
	if next, ok := incrementTrailing(name, exists); ok {
		return next
	}
	for i := 1; ; i++ {
		candidate := name + "_" + strconv.Itoa(i)
		if !exists(candidate) {
			return candidate
		}
	}
}

func incrementTrailing(name string, exists func(string) bool) (string, bool) {
	m := trailingNumber.FindStringSubmatch(name)
	if m == nil {
		return "", false
	}
	base, sep := m[1], m[2]
	n, err := strconv.Atoi(m[3])
	if err != nil {
		return "", false
	}
	for {
		n++
		candidate := base + sep + strconv.Itoa(n)
		if !exists(candidate) {
			return candidate, true
		}
	}
}
