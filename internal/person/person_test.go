package person

import (
	"os"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
)

func mustParse(t *testing.T, doc string) *locator.Value {
	t.Helper()
	v, err := locator.Parse([]byte(doc))
	require.NoError(t, err)
	return v
}

func TestCanonicalProfileURL(t *testing.T) {
	table := []struct {
		input    string
		expected string
		ok       bool
	}{
		{input: "https://www.linkedin.com/in/John-Doe/?x=1", expected: "https://www.linkedin.com/in/John-Doe/", ok: true},
		{input: "https://www.linkedin.com/in/John-Doe", expected: "https://www.linkedin.com/in/John-Doe/", ok: true},
		{input: "https://www.linkedin.com/in/John-Doe/#experience", expected: "https://www.linkedin.com/in/John-Doe/", ok: true},
		{input: "/in/jane?miniProfileUrn=urn%3Ali%3Afs_miniProfile%3AX", expected: "https://www.linkedin.com/in/jane/", ok: true},
		{input: "https://de.linkedin.com/in/j%C3%BCrgen/", expected: "https://de.linkedin.com/in/j%C3%BCrgen/", ok: true},
		{input: "https://de.linkedin.com/in/jürgen", expected: "https://de.linkedin.com/in/j%C3%BCrgen/", ok: true},
		{input: "https://de.linkedin.com/in/j%c3%bcrgen", expected: "https://de.linkedin.com/in/j%C3%BCrgen/", ok: true},
		{input: "https://www.linkedin.com/company/acme/", ok: false},
		{input: "https://www.linkedin.com/in/", ok: false},
		{input: "https://www.linkedin.com/in/a/b/", ok: false},
		{input: "https://www.linkedin.com/in/a%2Fb/", ok: false},
		{input: "https://www.linkedin.com/in/jane//", ok: false},
		{input: "https://example.com/in/jane/", ok: false},
		{input: "ftp://www.linkedin.com/in/jane/", ok: false},
		{input: "", ok: false},
	}

	for _, row := range table {
		actual, ok := CanonicalProfileURL(row.input)
		require.Equal(t, row.ok, ok, row.input)
		require.Equal(t, row.expected, actual, row.input)
	}
}

func TestIdentityToken(t *testing.T) {
	table := []struct {
		input    string
		expected string
	}{
		{input: "https://www.linkedin.com/in/jane?miniProfileUrn=urn%3Ali%3Afs_miniProfile%3AACoAAB12", expected: "ACoAAB12"},
		{input: "https://www.linkedin.com/in/jane?profileUrn=urn%3Ali%3Afsd_profile%3AXYZ&trk=1", expected: "XYZ"},
		{input: "https://www.linkedin.com/in/jane?miniProfileUrn=plain", expected: "plain"},
		{input: "https://www.linkedin.com/in/jane?miniProfileUrn=urn%3Ali%3A", expected: ""},
		{input: "https://www.linkedin.com/in/jane/", expected: ""},
	}
	for _, row := range table {
		require.Equal(t, row.expected, IdentityToken(row.input), row.input)
	}
}

func TestIsNoiseName(t *testing.T) {
	noise := []string{
		"LinkedIn Member",
		"linkedin member",
		"3 mutual connections",
		"View services",
		"Provides services - Consulting",
		"View Jane’s profile",
		"LinkedIn Premium",
	}
	for _, name := range noise {
		require.True(t, IsNoiseName(name), name)
	}
	require.False(t, IsNoiseName("Jane Smith"))
	require.False(t, IsNoiseName("Viewfinder Smith"))
}

func TestNormalizeNoiseAndAcceptance(t *testing.T) {
	_, ok := Normalize(mustParse(t, `{
		"title": {"text": "LinkedIn Member"},
		"primarySubtitle": {"text": "Engineer"},
		"navigationUrl": "https://www.linkedin.com/in/member/"
	}`))
	require.False(t, ok)

	p, ok := Normalize(mustParse(t, `{
		"title": {"text": "Jane Smith"},
		"primarySubtitle": {"text": "Engineer"},
		"navigationUrl": "https://www.linkedin.com/in/jane-smith/"
	}`))
	require.True(t, ok)
	require.Equal(t, Person{
		Name:       "Jane Smith",
		ProfileURL: "https://www.linkedin.com/in/jane-smith/",
		Headline:   "Engineer",
	}, p)
}

func TestExplainReasons(t *testing.T) {
	_, err := Explain(mustParse(t, `{"title": {"text": " · 12 followers"}, "navigationUrl": "/in/x/"}`))
	require.ErrorIs(t, err, ErrEmptyName)

	_, err = Explain(mustParse(t, `{"title": {"text": "Acme"}, "navigationUrl": "https://www.linkedin.com/company/acme/"}`))
	require.ErrorIs(t, err, ErrNoProfileURL)

	_, err = Explain(mustParse(t, `{"name": "View services", "url": "/in/x/"}`))
	require.ErrorIs(t, err, ErrNoiseName)
}

func TestFollowerTextGate(t *testing.T) {
	p, ok := Normalize(mustParse(t, `{
		"title": {"text": "Jane"},
		"navigationUrl": "/in/jane/",
		"insightsResolutionResults": [{"simpleInsight": {"title": {"text": "Software Engineer"}}}]
	}`))
	require.True(t, ok)
	require.Equal(t, "", p.Followers)

	p, ok = Normalize(mustParse(t, `{
		"title": {"text": "Jane"},
		"navigationUrl": "/in/jane/",
		"insightsResolutionResults": [{"simpleInsight": {"title": {"text": "30K followers"}}}]
	}`))
	require.True(t, ok)
	require.Equal(t, "30K followers", p.Followers)

	p, ok = Normalize(mustParse(t, `{"name": "Jane", "url": "/in/jane/", "followers": 1200}`))
	require.True(t, ok)
	require.Equal(t, "", p.Followers)
}

func TestNameFollowerSuffix(t *testing.T) {
	p, ok := Normalize(mustParse(t, `{"title": {"text": "Bob Jones · 1,204 followers"}, "navigationUrl": "/in/bob/"}`))
	require.True(t, ok)
	require.Equal(t, "Bob Jones", p.Name)
	require.Equal(t, "1,204 followers", p.Followers)
}

func TestExtractSearchPage(t *testing.T) {
	contents, err := os.ReadFile("testdata/search_page.json")
	require.NoError(t, err)
	root, err := locator.Parse(contents)
	require.NoError(t, err)

	// top level `included` comes before `data.included`
	expected := []Person{
		{
			Name:       "Jane Smith",
			ProfileURL: "https://www.linkedin.com/in/jane-smith-42/",
			Headline:   "Engineer (duplicate)",
		},
		{
			Name:       "Jane Smith",
			ProfileURL: "https://www.linkedin.com/in/jane-smith-42/",
			Headline:   "Engineer",
			Location:   "Berlin, Germany",
			Current:    "Current: Staff Engineer at Acme",
			Followers:  "30K followers",
			URNCode:    "ACoAAAJane",
		},
		{
			Name:       "Bob Jones",
			ProfileURL: "https://www.linkedin.com/in/bob-jones/",
			Headline:   "Designer",
			Location:   "Paris",
			Followers:  "1,204 followers",
			URNCode:    "ACoAABob",
		},
	}

	if diff := cmp.Diff(expected, Extract(root)); diff != "" {
		t.Fatal(diff)
	}
}

func TestFlattenIncludedShapes(t *testing.T) {
	require.Len(t, FlattenIncluded(mustParse(t, `{"included": [{}, {}]}`)), 2)
	require.Len(t, FlattenIncluded(mustParse(t, `{"data": {"included": [{}]}, "included": [{}]}`)), 2)
	require.Len(t, FlattenIncluded(mustParse(t, `{"included": []}`)), 0)
	require.Len(t, FlattenIncluded(mustParse(t, `{"elements": []}`)), 1)
	require.Len(t, FlattenIncluded(mustParse(t, `"scalar"`)), 0)
}

func TestWithEnrichmentOnce(t *testing.T) {
	p := Person{Name: "Jane", ProfileURL: "https://www.linkedin.com/in/jane/"}
	exps := []Experience{{}, {Company: "A"}, {Company: "B"}, {Company: "C"}, {Company: "D"}}

	enriched := p.WithEnrichment("about text", exps, []Education{{Institution: "MIT"}})
	require.True(t, enriched.Enriched)
	require.Equal(t, []Experience{{Company: "A"}, {Company: "B"}, {Company: "C"}}, enriched.Experiences)
	require.Equal(t, "about text", enriched.About)

	again := enriched.WithEnrichment("other", nil, nil)
	require.Equal(t, enriched, again)
	require.False(t, p.Enriched)
}
