// Package profile extracts the biography, experience and education sections
// from a profile card payload.
package profile

import (
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

// MinAboutLength is the trimmed rune count a text node needs to be
// considered as biography.
const MinAboutLength = 40

const fixedListKey = "fixedListComponent"

type Sections struct {
	About       string
	HasAbout    bool
	Experiences []person.Experience
	Education   []person.Education
}

// Parse extracts all sections from a profile payload. Missing branches leave
// the corresponding section empty.
func Parse(root *locator.Value) Sections {
	about, hasAbout := About(root)
	out := Sections{
		About:    about,
		HasAbout: hasAbout,
	}

	expFound := false
	eduFound := false
	for list := range ListBlocks(root) {
		if expFound && eduFound {
			break
		}
		first := list.Index(0)
		switch {
		case !expFound && IsExperienceEntry(first):
			out.Experiences = experiencesOf(list)
			expFound = true
		case !eduFound && IsEducationEntry(first):
			out.Education = educationOf(list)
			eduFound = true
		}
	}
	return out
}

// About picks the longest qualifying text node of the payload. Candidates are
// reduced per top level entry first, ties keep the earliest.
func About(root *locator.Value) (string, bool) {
	best := ""
	bestLen := 0
	for _, entry := range person.FlattenIncluded(root) {
		text, n := longestText(entry)
		if n > bestLen {
			best, bestLen = text, n
		}
	}
	return best, bestLen > 0
}

func longestText(entry *locator.Value) (string, int) {
	best := ""
	bestLen := 0
	for node := range locator.Find(entry, isTextNode) {
		text := trimmedText(node.Get("text"))
		n := utf8.RuneCountInString(text)
		if n >= MinAboutLength && n > bestLen {
			best, bestLen = text, n
		}
	}
	return best, bestLen
}

func trimmedText(v *locator.Value) string {
	return strings.TrimSpace(v.Text())
}

func isTextNode(v *locator.Value) bool {
	_, ok := v.Get("text").Str()
	return ok
}

// ListBlocks yields every array held by a fixed list container, in traversal
// order. Empty arrays are skipped.
func ListBlocks(root *locator.Value) iter.Seq[*locator.Value] {
	return func(yield func(*locator.Value) bool) {
		for container := range locator.ValuesOf(root, fixedListKey) {
			list := container.Get("components")
			if list.Len() == 0 || !list.IsArray() {
				continue
			}
			if !yield(list) {
				return
			}
		}
	}
}
