package person

import (
	"errors"
	"iter"
	"regexp"
	"strings"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
)

var (
	ErrEmptyName    = errors.New("empty name")
	ErrNoiseName    = errors.New("placeholder name")
	ErrNoProfileURL = errors.New("no canonical profile url")
)

// candidate source fields, tried in order
var (
	namePaths = [][]string{
		{"title", "text"},
		{"title"},
		{"name"},
		{"fullName"},
	}
	headlinePaths = [][]string{
		{"primarySubtitle", "text"},
		{"headline", "text"},
		{"headline"},
		{"subtitle", "text"},
		{"subtitle"},
	}
	locationPaths = [][]string{
		{"secondarySubtitle", "text"},
		{"location", "text"},
		{"location"},
	}
	currentPaths = [][]string{
		{"summary", "text"},
		{"currentPosition"},
		{"current"},
	}
	urlPaths = [][]string{
		{"navigationUrl"},
		{"url"},
		{"profileUrl"},
		{"navigationContext", "url"},
	}
	followerPaths = [][]string{
		{"followers"},
		{"followerCount"},
		{"followersCount"},
	}
)

var followerSuffix = regexp.MustCompile(`(?i)\s*[·•]\s*([0-9][0-9.,]*\s*[km]?\s+followers?)\s*$`)

var (
	noiseContains = []string{"mutual connection", "view services", "provides services"}
	noisePrefixes = []string{"view ", "linkedin "}
)

// IsNoiseName matches the placeholder texts LinkedIn renders in place of a
// real member name.
func IsNoiseName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if lower == "linkedin member" {
		return true
	}
	for _, s := range noiseContains {
		if strings.Contains(lower, s) {
			return true
		}
	}
	for _, p := range noisePrefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// splitFollowerSuffix strips a trailing "· 30K followers" from a display name.
func splitFollowerSuffix(name string) (string, string) {
	loc := followerSuffix.FindStringSubmatchIndex(name)
	if loc == nil {
		return strings.TrimSpace(name), ""
	}
	return strings.TrimSpace(name[:loc[0]]), strings.TrimSpace(name[loc[2]:loc[3]])
}

func isFollowerText(text string) bool {
	return strings.Contains(strings.ToLower(text), "follower")
}

func followersOf(v *locator.Value, nameSuffix string) string {
	for _, insight := range v.Get("insightsResolutionResults").Items() {
		text := strings.TrimSpace(insight.Path("simpleInsight", "title", "text").Text())
		if text != "" && isFollowerText(text) {
			return text
		}
	}
	for _, p := range followerPaths {
		text := strings.TrimSpace(v.Path(p...).Text())
		if text != "" && isFollowerText(text) {
			return text
		}
	}
	if nameSuffix != "" && isFollowerText(nameSuffix) {
		return nameSuffix
	}
	return ""
}

// IsCandidate is the structural predicate for person-like listing nodes: a
// navigationUrl pointing at a profile, or a title/subtitle pair.
func IsCandidate(v *locator.Value) bool {
	if !v.IsObject() {
		return false
	}
	if strings.Contains(v.Get("navigationUrl").Text(), "/in/") {
		return true
	}
	hasTitle := strings.TrimSpace(v.Path("title", "text").Text()) != ""
	hasSubtitle := v.FirstText([]string{"primarySubtitle", "text"}, []string{"subtitle", "text"}) != ""
	return hasTitle && hasSubtitle
}

// Explain normalizes a candidate node, the error tells why it was rejected.
func Explain(v *locator.Value) (Person, error) {
	name, suffix := splitFollowerSuffix(v.FirstText(namePaths...))
	if name == "" {
		return Person{}, ErrEmptyName
	}
	if IsNoiseName(name) {
		return Person{}, ErrNoiseName
	}

	rawURL := v.FirstText(urlPaths...)
	profileURL, ok := CanonicalProfileURL(rawURL)
	if !ok {
		return Person{}, ErrNoProfileURL
	}

	return Person{
		Name:       name,
		ProfileURL: profileURL,
		Headline:   v.FirstText(headlinePaths...),
		Location:   v.FirstText(locationPaths...),
		Current:    v.FirstText(currentPaths...),
		Followers:  followersOf(v, suffix),
		URNCode:    IdentityToken(rawURL),
	}, nil
}

// Normalize turns one raw candidate node into a Person, ok is false when the
// node is rejected.
func Normalize(v *locator.Value) (Person, bool) {
	p, err := Explain(v)
	return p, err == nil
}

// FlattenIncluded gathers the entries of the top level `included` array and
// of `data.included`, the two shapes listing responses come in. A document
// with neither is returned as its own single entry.
func FlattenIncluded(root *locator.Value) []*locator.Value {
	var out []*locator.Value
	out = append(out, root.Get("included").Items()...)
	out = append(out, root.Path("data", "included").Items()...)
	if len(out) == 0 && !root.Has("included") && !root.Path("data").Has("included") {
		if root.IsContainer() {
			return []*locator.Value{root}
		}
	}
	return out
}

// Candidates yields every person-like node of a listing document in traversal order.
func Candidates(root *locator.Value) iter.Seq[*locator.Value] {
	return func(yield func(*locator.Value) bool) {
		for _, entry := range FlattenIncluded(root) {
			for node := range locator.Find(entry, IsCandidate) {
				if !yield(node) {
					return
				}
			}
		}
	}
}

// Extract normalizes every candidate of a listing document, in discovery
// order. Duplicates are kept, deduplication belongs to the caller.
func Extract(root *locator.Value) []Person {
	var out []Person
	for node := range Candidates(root) {
		if p, ok := Normalize(node); ok {
			out = append(out, p)
		}
	}
	return out
}
