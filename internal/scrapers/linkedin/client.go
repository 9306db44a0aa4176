package linkedin

import (
	"context"
	"fmt"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	cloudflarebp "github.com/DaRealFreak/cloudflare-bp-go"
	"github.com/go-resty/resty/v2"
	"golang.org/x/net/publicsuffix"
	"golang.org/x/time/rate"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/assert"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/telemetry"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0.0.0 Safari/537.36"

type ClientOptions struct {
	BaseUrl string
	// LiAt and JSessionID are the session cookies of a logged in browser.
	LiAt       string
	JSessionID string
	UserAgent  string
	// RateLimit is in requests per second, zero disables limiting.
	RateLimit float64
	Burst     int
	Timeout   time.Duration
	// BrowserTransport makes the TLS handshake and headers look like a
	// regular browser's.
	BrowserTransport bool
	// Output receives a dump of every exchange, it may be nil.
	Output    telemetry.MessageOutput
	Telemetry telemetry.API
}

// Client is the resty backed Transport.
type Client struct {
	http *resty.Client
}

// sessionCookieHeader renders the session cookies verbatim, net/http would
// strip the quotes LinkedIn expects around JSESSIONID.
func sessionCookieHeader(liAt, jsessionID string) string {
	var parts []string
	if liAt != "" {
		parts = append(parts, "li_at="+liAt)
	}
	if jsessionID != "" {
		parts = append(parts, fmt.Sprintf(`JSESSIONID="%s"`, strings.Trim(jsessionID, `"`)))
	}
	return strings.Join(parts, "; ")
}

func NewClient(opts ClientOptions) (*Client, error) {
	assert.NotNil(opts.Telemetry, "telemetry")

	tel := telemetry.NewScopedAPI("linkedin_client", opts.Telemetry)

	parsedBaseUrl, err := url.Parse(opts.BaseUrl)
	if err != nil {
		return nil, err
	}
	if parsedBaseUrl.Hostname() == "" {
		return nil, fmt.Errorf("base url %q has no host", opts.BaseUrl)
	}

	httpClient := resty.New()
	httpClient.SetBaseURL(opts.BaseUrl)
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, err
	}
	httpClient.SetCookieJar(jar)
	if opts.BrowserTransport {
		httpClient.GetClient().Transport = cloudflarebp.AddCloudFlareByPass(httpClient.GetClient().Transport)
	}

	userAgent := opts.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	httpClient.SetHeader("user-agent", userAgent)
	if cookie := sessionCookieHeader(opts.LiAt, opts.JSessionID); cookie != "" {
		httpClient.SetHeader("cookie", cookie)
	}
	httpClient.SetRedirectPolicy(resty.DomainCheckRedirectPolicy(parsedBaseUrl.Hostname()))
	if opts.Timeout > 0 {
		httpClient.SetTimeout(opts.Timeout)
	} else {
		httpClient.SetTimeout(30 * time.Second)
	}

	if opts.RateLimit > 0 {
		burst := max(opts.Burst, 1)
		// the limiter only delays, it never drops a request
		rateLimiter := rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
		httpClient.OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			return rateLimiter.Wait(req.Context())
		})
	}

	telemetry.InstrumentResty(httpClient, tel, "scrapers/linkedin/client", opts.Output)

	return &Client{http: httpClient}, nil
}

// Fetch issues a GET, relative urls are resolved against the base url.
func (c *Client) Fetch(ctx context.Context, req Request) (Response, error) {
	res, err := c.http.R().
		SetContext(ctx).
		SetHeaderMultiValues(req.Header).
		Get(req.URL)
	if err != nil {
		return Response{}, err
	}
	return Response{
		Status: res.StatusCode(),
		Body:   res.Body(),
	}, nil
}
