package linkedin

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/assert"
)

// VoyagerBuilder builds requests against LinkedIn's voyager graphql
// endpoint, the same one the web app uses.
type VoyagerBuilder struct {
	baseUrl        string
	searchQueryID  string
	profileQueryID string
	csrfToken      string
	search         SearchContext
}

type VoyagerOptions struct {
	BaseUrl        string
	SearchQueryID  string
	ProfileQueryID string
	// JSessionID is the session cookie, the csrf token is its unquoted value.
	JSessionID string
	Search     SearchContext
}

func NewVoyagerBuilder(opts VoyagerOptions) VoyagerBuilder {
	assert.NotEmptyStr(opts.BaseUrl, "base url")
	assert.NotEmptyStr(opts.SearchQueryID, "search query id")
	assert.NotEmptyStr(opts.ProfileQueryID, "profile query id")

	return VoyagerBuilder{
		baseUrl:        strings.TrimSuffix(opts.BaseUrl, "/"),
		searchQueryID:  opts.SearchQueryID,
		profileQueryID: opts.ProfileQueryID,
		csrfToken:      strings.Trim(opts.JSessionID, `"`),
		search:         opts.Search,
	}
}

// restliEscape escapes a value embedded in a rest.li `variables` expression,
// where parentheses, commas and colons are syntax.
func restliEscape(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

func restliList(values []string) string {
	escaped := make([]string, len(values))
	for i, v := range values {
		escaped[i] = restliEscape(v)
	}
	return "List(" + strings.Join(escaped, ",") + ")"
}

func (b VoyagerBuilder) header() http.Header {
	h := http.Header{}
	h.Set("accept", "application/vnd.linkedin.normalized+json+2.1")
	h.Set("x-restli-protocol-version", "2.0.0")
	h.Set("x-li-lang", "en_US")
	if b.csrfToken != "" {
		h.Set("csrf-token", b.csrfToken)
	}
	return h
}

func (b VoyagerBuilder) queryParameters() string {
	params := []string{"(key:resultType,value:List(PEOPLE))"}
	for _, f := range b.search.Filters {
		if f.Key == "resultType" {
			continue
		}
		params = append(params, fmt.Sprintf("(key:%s,value:%s)", restliEscape(f.Key), restliList(f.Values)))
	}
	return "List(" + strings.Join(params, ",") + ")"
}

// ListingRequest builds the people search page starting at `start`.
func (b VoyagerBuilder) ListingRequest(keyword string, start, count int) (Request, error) {
	if start < 0 || count <= 0 {
		return Request{}, fmt.Errorf("invalid page window start=%d count=%d", start, count)
	}

	query := "(flagshipSearchIntent:SEARCH_SRP,queryParameters:" + b.queryParameters() + ",includeFiltersInResponse:false)"
	if keyword != "" {
		query = "(keywords:" + restliEscape(keyword) + "," + query[1:]
	}
	variables := fmt.Sprintf("(start:%d,origin:GLOBAL_SEARCH_HEADER,query:%s,count:%d)", start, query, count)

	return Request{
		URL:    fmt.Sprintf("%s/voyager/api/graphql?variables=%s&queryId=%s", b.baseUrl, variables, b.searchQueryID),
		Header: b.header(),
	}, nil
}

// ProfileRequest builds the profile cards lookup of a member.
func (b VoyagerBuilder) ProfileRequest(urnCode string) (Request, error) {
	urnCode = strings.TrimSpace(urnCode)
	if urnCode == "" {
		return Request{}, fmt.Errorf("empty urn code")
	}
	variables := "(profileUrn:" + restliEscape("urn:li:fsd_profile:"+urnCode) + ")"

	return Request{
		URL:    fmt.Sprintf("%s/voyager/api/graphql?includeWebMetadata=true&variables=%s&queryId=%s", b.baseUrl, variables, b.profileQueryID),
		Header: b.header(),
	}, nil
}
