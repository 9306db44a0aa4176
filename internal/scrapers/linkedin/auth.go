package linkedin

import "strings"

// CookieTokenProvider hands out the `li_at` session cookie resolved by the
// config layer, which already folds in the environment.
type CookieTokenProvider struct {
	token string
}

func NewCookieTokenProvider(liAt string) CookieTokenProvider {
	return CookieTokenProvider{token: strings.TrimSpace(liAt)}
}

func (p CookieTokenProvider) Token() (string, bool) {
	return p.token, p.token != ""
}
