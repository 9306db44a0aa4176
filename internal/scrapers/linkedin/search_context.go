package linkedin

import (
	"encoding/json"
	"fmt"
	"net/url"
	"slices"
	"strings"
)

// Filter is one facet of a people search, ex. geoUrn=[103644278].
type Filter struct {
	Key    string
	Values []string
}

// SearchContext is what a people search page url says about the search: its
// keyword and its facet filters, in a stable order.
type SearchContext struct {
	keyword string
	Filters []Filter
}

// query parameters of a search page that are not facets
var nonFilterParams = []string{
	"keywords",
	"origin",
	"sid",
	"page",
	"position",
	"searchId",
	"spellCorrectionEnabled",
	"prevSearchId",
	"trk",
}

func NewSearchContext(keyword string, filters ...Filter) SearchContext {
	return SearchContext{keyword: strings.TrimSpace(keyword), Filters: filters}
}

// ParseSearchURL reads a `/search/results/people/` page url. Facet values
// come either as a JSON array (`["F","S"]`) or as a plain value.
func ParseSearchURL(raw string) (SearchContext, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return SearchContext{}, err
	}
	if !strings.HasPrefix(strings.TrimSuffix(parsed.Path, "/")+"/", "/search/results/people/") {
		return SearchContext{}, fmt.Errorf("not a people search url: %s", raw)
	}

	query := parsed.Query()
	out := SearchContext{keyword: strings.TrimSpace(query.Get("keywords"))}

	keys := make([]string, 0, len(query))
	for key := range query {
		if !slices.Contains(nonFilterParams, key) {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	for _, key := range keys {
		var values []string
		for _, raw := range query[key] {
			values = append(values, filterValues(raw)...)
		}
		if len(values) == 0 {
			continue
		}
		out.Filters = append(out.Filters, Filter{Key: key, Values: values})
	}
	return out, nil
}

func filterValues(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	if strings.HasPrefix(raw, "[") {
		var list []string
		if err := json.Unmarshal([]byte(raw), &list); err == nil {
			var out []string
			for _, v := range list {
				if v = strings.TrimSpace(v); v != "" {
					out = append(out, v)
				}
			}
			return out
		}
	}
	return []string{raw}
}

func (c SearchContext) Keyword() string {
	return c.keyword
}
