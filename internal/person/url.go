package person

import (
	"net/url"
	"strings"
)

const defaultOrigin = "https://www.linkedin.com"

var origin, _ = url.Parse(defaultOrigin)

func isLinkedInHost(host string) bool {
	host = strings.ToLower(host)
	return host == "linkedin.com" || strings.HasSuffix(host, ".linkedin.com")
}

// CanonicalProfileURL reduces a raw profile link to `https://<host>/in/<slug>/`.
// Query parameters and fragments are dropped and the slug is decoded then
// re-encoded, so differently escaped spellings of one slug compare equal.
// Anything that is not exactly a `/in/<slug>` path is rejected.
func CanonicalProfileURL(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	if !parsed.IsAbs() {
		parsed = origin.ResolveReference(parsed)
	}
	if parsed.Scheme != "https" && parsed.Scheme != "http" {
		return "", false
	}
	if !isLinkedInHost(parsed.Hostname()) {
		return "", false
	}

	escaped := parsed.EscapedPath()
	segments := strings.Split(strings.Trim(escaped, "/"), "/")
	if len(segments) != 2 || segments[0] != "in" {
		return "", false
	}
	// only a single trailing slash is tolerated
	if strings.HasSuffix(escaped, "//") || strings.HasPrefix(escaped, "//") {
		return "", false
	}

	slug, err := url.PathUnescape(segments[1])
	if err != nil {
		return "", false
	}
	slug = strings.TrimSpace(slug)
	if slug == "" || strings.Contains(slug, "/") {
		return "", false
	}

	return "https://" + strings.ToLower(parsed.Host) + "/in/" + url.PathEscape(slug) + "/", true
}

var identityParams = []string{"miniProfileUrn", "profileUrn"}

// IdentityToken extracts the opaque profile id carried by a listing link, ex.
// `?miniProfileUrn=urn%3Ali%3Afs_miniProfile%3AACoAAB12` yields `ACoAAB12`.
// It returns "" when the link carries no such parameter.
func IdentityToken(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	query := parsed.Query()
	for _, name := range identityParams {
		value := strings.TrimSpace(query.Get(name))
		if value == "" {
			continue
		}
		idx := strings.LastIndex(value, ":")
		token := strings.TrimSpace(value[idx+1:])
		if token != "" {
			return token
		}
	}
	return ""
}
