package linkedin

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/chrono"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/telemetry"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

type fakeBuilder struct{}

func (fakeBuilder) ListingRequest(keyword string, start, count int) (Request, error) {
	return Request{URL: fmt.Sprintf("listing?keyword=%s&start=%d&count=%d", url.QueryEscape(keyword), start, count)}, nil
}

func (fakeBuilder) ProfileRequest(urnCode string) (Request, error) {
	return Request{URL: "profile/" + urnCode}, nil
}

type fakeTransport struct {
	pages    func(start int) (Response, error)
	profiles func(urnCode string) (Response, error)
	calls    []string
}

func (f *fakeTransport) Fetch(ctx context.Context, req Request) (Response, error) {
	if err := ctx.Err(); err != nil {
		return Response{}, err
	}
	f.calls = append(f.calls, req.URL)

	if urnCode, ok := strings.CutPrefix(req.URL, "profile/"); ok {
		if f.profiles == nil {
			return Response{Status: http.StatusNotFound}, nil
		}
		return f.profiles(urnCode)
	}
	parsed, err := url.Parse(req.URL)
	if err != nil {
		return Response{}, err
	}
	start, err := strconv.Atoi(parsed.Query().Get("start"))
	if err != nil {
		return Response{}, err
	}
	return f.pages(start)
}

func (f *fakeTransport) listingStarts() []int {
	var out []int
	for _, call := range f.calls {
		parsed, _ := url.Parse(call)
		if !strings.HasPrefix(parsed.Path, "listing") {
			continue
		}
		start, _ := strconv.Atoi(parsed.Query().Get("start"))
		out = append(out, start)
	}
	return out
}

func (f *fakeTransport) profileCalls(urnCode string) int {
	n := 0
	for _, call := range f.calls {
		if call == "profile/"+urnCode {
			n++
		}
	}
	return n
}

type recordingObserver struct {
	events    []string
	added     []person.Person
	enriched  []person.Person
	warnings  []string
	completed []Result
	progress  func(current, target int)
	onAdded   func(p person.Person)
}

func (o *recordingObserver) OnProgress(current, target int) {
	o.events = append(o.events, fmt.Sprintf("progress %d/%d", current, target))
	if o.progress != nil {
		o.progress(current, target)
	}
}

func (o *recordingObserver) OnPersonAdded(p person.Person) {
	o.events = append(o.events, "added "+p.Name)
	o.added = append(o.added, p)
	if o.onAdded != nil {
		o.onAdded(p)
	}
}

func (o *recordingObserver) OnPersonEnriched(p person.Person) {
	o.events = append(o.events, "enriched "+p.Name)
	o.enriched = append(o.enriched, p)
}

func (o *recordingObserver) OnWarning(message string) {
	o.events = append(o.events, "warning")
	o.warnings = append(o.warnings, message)
}

func (o *recordingObserver) OnComplete(result Result) {
	o.events = append(o.events, "complete")
	o.completed = append(o.completed, result)
}

type listed struct {
	name     string
	slug     string
	headline string
	urn      string
}

func listingPage(t *testing.T, people ...listed) (Response, error) {
	t.Helper()
	included := []any{}
	for _, p := range people {
		nav := "https://www.linkedin.com/in/" + p.slug + "/"
		if p.urn != "" {
			nav += "?miniProfileUrn=" + url.QueryEscape("urn:li:fs_miniProfile:"+p.urn)
		}
		included = append(included, map[string]any{
			"title":           map[string]any{"text": p.name},
			"primarySubtitle": map[string]any{"text": p.headline},
			"navigationUrl":   nav,
		})
	}
	body, err := json.Marshal(map[string]any{"included": included})
	require.NoError(t, err)
	return Response{Status: http.StatusOK, Body: body}, nil
}

const profileBody = `{"included": [{"subComponents": {"components": [{"components": {"fixedListComponent": {"components": [
	{"components": {"entityComponent": {
		"titleV2": {"text": {"text": "Acme"}},
		"subtitle": {"text": "2 yrs"},
		"subComponents": {"components": [{"components": {"entityComponent": {"titleV2": {"text": {"text": "Engineer"}}}}}]}
	}}}
]}}}]}}]}`

type harness struct {
	transport *fakeTransport
	observer  *recordingObserver
	clock     *chrono.Fake
	tel       *telemetry.Recorder
	scraper   *Scraper
}

func newHarness(t *testing.T, transport *fakeTransport, modify func(o *Options)) harness {
	t.Helper()
	h := harness{
		transport: transport,
		observer:  &recordingObserver{},
		clock:     chrono.NewFake(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		tel:       telemetry.NewRecorder(),
	}
	opts := Options{
		Transport: transport,
		Requests:  fakeBuilder{},
		Telemetry: h.tel,
		Observer:  h.observer,
		Clock:     h.clock,
		Rand:      func() float64 { return 0 },
	}
	if modify != nil {
		modify(&opts)
	}
	h.scraper = NewScraper(opts)
	return h
}

func names(people []person.Person) []string {
	out := make([]string, len(people))
	for i, p := range people {
		out[i] = p.Name
	}
	return out
}

func TestAllEmptyPagesStopAfterThree(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t, listed{name: "LinkedIn Member", slug: "member", headline: "Recruiter"})
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 5, Keyword: "golang"})
	require.NoError(t, err)

	require.Equal(t, []int{0, 10, 20}, transport.listingStarts())
	require.Equal(t, StopExhausted, result.Stop)
	require.Equal(t, 3, result.Pages)
	require.Empty(t, result.People)
	require.Equal(t, []string{`no results found for "golang"`}, h.observer.warnings)
	require.Equal(t, result.Reason, h.observer.warnings[0])
	// no pacing after the last page
	require.Equal(t, []time.Duration{400 * time.Millisecond, 400 * time.Millisecond}, h.clock.Sleeps())
}

func TestRateLimitRetriesExceeded(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, StatusLinkedInBlocked} {
		transport := &fakeTransport{
			pages: func(int) (Response, error) {
				return Response{Status: status}, nil
			},
		}
		h := newHarness(t, transport, nil)

		result, err := h.scraper.Run(context.Background(), Params{TargetCount: 5, Keyword: "golang"})
		require.ErrorIs(t, err, ErrRetriesExceeded)
		require.NotErrorIs(t, err, ErrRateLimited)

		require.Equal(t, []int{0, 0, 0, 0}, transport.listingStarts(), "status %d", status)
		require.Equal(t, StopFailed, result.Stop)
		require.Equal(t, 0, result.Pages)
		require.Contains(t, result.Reason, "retries exceeded")
		require.Equal(t, []time.Duration{
			1200 * time.Millisecond,
			1200 * time.Millisecond,
			1200 * time.Millisecond,
		}, h.clock.Sleeps())
		require.Equal(t, 3, h.tel.Count(telemetry.LevelWarning, report_scraper_rate_limit))
		require.Equal(t, 1, h.tel.Count(telemetry.LevelBroken, report_scraper_run))
	}
}

func TestRetryCountResetsAfterSuccessfulPage(t *testing.T) {
	attempts := map[int]int{}
	transport := &fakeTransport{
		pages: func(start int) (Response, error) {
			attempts[start]++
			if attempts[start] <= MaxRetries {
				return Response{Status: http.StatusTooManyRequests}, nil
			}
			return listingPage(t,
				listed{name: fmt.Sprintf("A%d", start), slug: fmt.Sprintf("a-%d", start), headline: "x"},
				listed{name: fmt.Sprintf("B%d", start), slug: fmt.Sprintf("b-%d", start), headline: "x"},
			)
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 4, Keyword: "golang"})
	require.NoError(t, err)
	require.Equal(t, StopTargetReached, result.Stop)
	require.Equal(t, []string{"A0", "B0", "A10", "B10"}, names(result.People))
	require.Equal(t, []int{0, 0, 0, 0, 10, 10, 10, 10}, transport.listingStarts())

	backoff := 1200 * time.Millisecond
	pacing := 400 * time.Millisecond
	require.Equal(t, []time.Duration{backoff, backoff, backoff, pacing, backoff, backoff, backoff}, h.clock.Sleeps())
}

func TestFatalStatusKeepsAccumulatedPeople(t *testing.T) {
	transport := &fakeTransport{
		pages: func(start int) (Response, error) {
			if start == 0 {
				return listingPage(t,
					listed{name: "Jane Smith", slug: "jane", headline: "Engineer"},
					listed{name: "Bob Jones", slug: "bob", headline: "Designer"},
				)
			}
			return Response{Status: http.StatusInternalServerError}, nil
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 10, Keyword: "golang"})
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusInternalServerError, statusErr.Status)

	require.Equal(t, []int{0, 10}, transport.listingStarts())
	require.Equal(t, StopFailed, result.Stop)
	require.Equal(t, []string{"Jane Smith", "Bob Jones"}, names(result.People))
	require.Equal(t, 1, result.Pages)
	require.Equal(t, []Result{result}, h.observer.completed)
}

func TestTransportErrorIsFatal(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return Response{}, errors.New("connection reset")
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 10})
	require.ErrorContains(t, err, "connection reset")
	require.Equal(t, StopFailed, result.Stop)
	require.Equal(t, []int{0}, transport.listingStarts())
	require.Empty(t, h.clock.Sleeps())
}

func TestMalformedListingIsFatal(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return Response{Status: http.StatusOK, Body: []byte(`{"included": [`)}, nil
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 10})
	require.ErrorContains(t, err, "decode listing page")
	require.Equal(t, StopFailed, result.Stop)
}

func TestDeduplicationKeepsFirstSeen(t *testing.T) {
	transport := &fakeTransport{
		pages: func(start int) (Response, error) {
			switch start {
			case 0:
				return listingPage(t,
					listed{name: "Jane Smith", slug: "jane", headline: "First"},
					listed{name: "Bob Jones", slug: "bob", headline: "Designer"},
					listed{name: "Jane Smith", slug: "jane", headline: "Same page"},
				)
			case 10:
				return listingPage(t,
					listed{name: "Jane Smith", slug: "jane", headline: "Second"},
					listed{name: "Carl", slug: "carl", headline: "Ops"},
				)
			}
			return listingPage(t)
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 10, Keyword: "golang"})
	require.NoError(t, err)

	expected := []person.Person{
		{Name: "Jane Smith", ProfileURL: "https://www.linkedin.com/in/jane/", Headline: "First"},
		{Name: "Bob Jones", ProfileURL: "https://www.linkedin.com/in/bob/", Headline: "Designer"},
		{Name: "Carl", ProfileURL: "https://www.linkedin.com/in/carl/", Headline: "Ops"},
	}
	if diff := cmp.Diff(expected, result.People); diff != "" {
		t.Fatal(diff)
	}
	require.Equal(t, expected, h.observer.added)
	require.Equal(t, StopExhausted, result.Stop)
	require.Equal(t, []int{0, 10, 20, 30, 40}, transport.listingStarts())
	require.Empty(t, result.Reason)
	require.Empty(t, h.observer.warnings)
}

func TestTargetCapsAcceptedPeople(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t,
				listed{name: "A", slug: "a", headline: "x"},
				listed{name: "B", slug: "b", headline: "x"},
				listed{name: "C", slug: "c", headline: "x"},
				listed{name: "D", slug: "d", headline: "x"},
			)
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 3, Keyword: "golang"})
	require.NoError(t, err)
	require.Equal(t, StopTargetReached, result.Stop)
	require.Equal(t, []string{"A", "B", "C"}, names(result.People))
	require.Empty(t, h.clock.Sleeps())
	require.Equal(t, []string{"added A", "added B", "added C", "progress 3/3", "complete"}, h.observer.events)
}

func TestEnrichment(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t,
				listed{name: "Jane", slug: "jane", headline: "Engineer", urn: "JANE"},
				listed{name: "Bob", slug: "bob", headline: "Designer", urn: "BOB"},
				listed{name: "Carl", slug: "carl", headline: "Ops"},
				listed{name: "Dana", slug: "dana", headline: "PM", urn: "DANA"},
			)
		},
		profiles: func(urnCode string) (Response, error) {
			switch urnCode {
			case "JANE":
				return Response{Status: http.StatusOK, Body: []byte(profileBody)}, nil
			case "BOB":
				return Response{Status: http.StatusTooManyRequests}, nil
			}
			return Response{Status: http.StatusOK, Body: []byte(`{"included": []}`)}, nil
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 4, Keyword: "golang", Enrich: true})
	require.NoError(t, err)
	require.Equal(t, StopTargetReached, result.Stop)

	require.Equal(t, []person.Experience{{Company: "Acme", Duration: "2 yrs", Position: "Engineer"}}, result.People[0].Experiences)
	require.True(t, result.People[0].Enriched)
	for _, p := range result.People[1:] {
		require.False(t, p.HasEnrichment(), p.Name)
	}

	require.Equal(t, 1, transport.profileCalls("JANE"))
	require.Equal(t, ProfileAttempts, transport.profileCalls("BOB"))
	require.Equal(t, 1, transport.profileCalls("DANA"))
	require.Equal(t, 1, h.tel.Count(telemetry.LevelWarning, report_scraper_enrich))
	require.Equal(t, []time.Duration{1200 * time.Millisecond}, h.clock.Sleeps())

	require.Equal(t, []string{
		"added Jane",
		"enriched Jane",
		"added Bob",
		"added Carl",
		"added Dana",
		"progress 4/4",
		"complete",
	}, h.observer.events)
	require.Empty(t, h.observer.added[0].Experiences)
	require.Equal(t, result.People[0], h.observer.enriched[0])
}

func TestDuplicatesAreNeverEnriched(t *testing.T) {
	transport := &fakeTransport{
		pages: func(start int) (Response, error) {
			if start == 0 {
				return listingPage(t,
					listed{name: "Jane", slug: "jane", headline: "Engineer", urn: "JANE"},
					listed{name: "Jane Again", slug: "jane", headline: "Engineer", urn: "JANE2"},
					listed{name: "Bob", slug: "bob", headline: "Designer", urn: "BOB"},
				)
			}
			return listingPage(t,
				listed{name: "Jane Later", slug: "jane", headline: "Engineer", urn: "JANE3"},
				listed{name: "Carl", slug: "carl", headline: "Ops", urn: "CARL"},
			)
		},
		profiles: func(urnCode string) (Response, error) {
			if urnCode == "JANE" {
				return Response{Status: http.StatusOK, Body: []byte(profileBody)}, nil
			}
			return Response{Status: http.StatusOK, Body: []byte(strings.ReplaceAll(profileBody, "Acme", "Globex"))}, nil
		},
	}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(context.Background(), Params{TargetCount: 3, Keyword: "golang", Enrich: true})
	require.NoError(t, err)
	require.Equal(t, StopTargetReached, result.Stop)
	require.Equal(t, []string{"Jane", "Bob", "Carl"}, names(result.People))
	require.Equal(t, []int{0, 10}, transport.listingStarts())

	require.Equal(t, 1, transport.profileCalls("JANE"))
	require.Equal(t, 0, transport.profileCalls("JANE2"))
	require.Equal(t, 0, transport.profileCalls("JANE3"))
	require.Equal(t, []string{"Jane", "Bob", "Carl"}, names(h.observer.enriched))
	require.Equal(t, []person.Experience{{Company: "Acme", Duration: "2 yrs", Position: "Engineer"}}, result.People[0].Experiences)
	require.Equal(t, "Globex", result.People[1].Experiences[0].Company)
}

func TestCancellationDuringEnrichmentIsSilent(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t,
				listed{name: "Jane", slug: "jane", headline: "Engineer", urn: "JANE"},
				listed{name: "Bob", slug: "bob", headline: "Designer", urn: "BOB"},
				listed{name: "Carl", slug: "carl", headline: "Ops", urn: "CARL"},
			)
		},
		profiles: func(string) (Response, error) {
			return Response{Status: http.StatusOK, Body: []byte(profileBody)}, nil
		},
	}
	h := newHarness(t, transport, nil)
	h.observer.onAdded = func(person.Person) {
		cancel()
	}

	result, err := h.scraper.Run(ctx, Params{TargetCount: 5, Keyword: "golang", Enrich: true})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StopCancelled, result.Stop)
	require.Equal(t, []string{"Jane"}, names(result.People))
	require.False(t, result.People[0].HasEnrichment())

	require.Equal(t, 0, transport.profileCalls("JANE"))
	require.Equal(t, 0, transport.profileCalls("BOB"))
	require.Empty(t, h.observer.enriched)
	require.Equal(t, 0, h.tel.Count(telemetry.LevelWarning, report_scraper_enrich))
	require.Equal(t, 0, h.tel.Count(telemetry.LevelBroken, ""))
}

func TestEnrichmentDisabled(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t, listed{name: "Jane", slug: "jane", headline: "Engineer", urn: "JANE"})
		},
	}
	h := newHarness(t, transport, nil)

	_, err := h.scraper.Run(context.Background(), Params{TargetCount: 1, Keyword: "golang"})
	require.NoError(t, err)
	require.Equal(t, 0, transport.profileCalls("JANE"))
}

func TestCancellationKeepsPeople(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	transport := &fakeTransport{
		pages: func(start int) (Response, error) {
			return listingPage(t, listed{name: fmt.Sprint("P", start), slug: fmt.Sprint("p-", start), headline: "x"})
		},
	}
	h := newHarness(t, transport, nil)
	h.observer.progress = func(current, target int) {
		cancel()
	}

	result, err := h.scraper.Run(ctx, Params{TargetCount: 10, Keyword: "golang"})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StopCancelled, result.Stop)
	require.Equal(t, []string{"P0"}, names(result.People))
	require.Equal(t, []int{0}, transport.listingStarts())
	require.Empty(t, h.clock.Sleeps())
	require.Equal(t, 0, h.tel.Count(telemetry.LevelBroken, ""))
}

func TestCancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	transport := &fakeTransport{}
	h := newHarness(t, transport, nil)

	result, err := h.scraper.Run(ctx, Params{TargetCount: 10})
	require.ErrorIs(t, err, context.Canceled)
	require.Equal(t, StopCancelled, result.Stop)
	require.Empty(t, transport.calls)
	require.Len(t, h.observer.completed, 1)
}

type staticTokens struct {
	token string
}

func (s staticTokens) Token() (string, bool) {
	return s.token, s.token != ""
}

func TestMissingTokenWarnsAndKeywordFallsBack(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t, listed{name: "Jane", slug: "jane", headline: "Engineer"})
		},
	}
	h := newHarness(t, transport, func(o *Options) {
		o.Tokens = staticTokens{}
		o.Keywords = NewSearchContext("  site reliability ")
	})

	_, err := h.scraper.Run(context.Background(), Params{TargetCount: 1})
	require.NoError(t, err)
	require.Len(t, h.observer.warnings, 1)
	require.Contains(t, h.observer.warnings[0], "no session token")
	require.Equal(t, []string{"listing?keyword=site+reliability&start=0&count=10"}, transport.calls)
}

func TestTokenPresentDoesNotWarn(t *testing.T) {
	transport := &fakeTransport{
		pages: func(int) (Response, error) {
			return listingPage(t, listed{name: "Jane", slug: "jane", headline: "Engineer"})
		},
	}
	h := newHarness(t, transport, func(o *Options) {
		o.Tokens = staticTokens{token: "AQED"}
	})

	_, err := h.scraper.Run(context.Background(), Params{TargetCount: 1, Keyword: "golang"})
	require.NoError(t, err)
	require.Empty(t, h.observer.warnings)
}

func TestInvalidTargetCount(t *testing.T) {
	h := newHarness(t, &fakeTransport{}, nil)
	_, err := h.scraper.Run(context.Background(), Params{TargetCount: 0})
	require.Error(t, err)
	require.Empty(t, h.observer.completed)
}

func TestPaginationState(t *testing.T) {
	state := PaginationState{}
	require.True(t, state.RateLimited())
	require.True(t, state.RateLimited())
	state.PageFetched(0)
	require.Equal(t, PaginationState{Cursor: 10, ConsecutiveEmptyPages: 1}, state)

	state.PageFetched(0)
	state.PageFetched(2)
	require.Equal(t, PaginationState{Cursor: 30}, state)
	require.False(t, state.Exhausted())

	for range MaxEmptyPages {
		state.PageFetched(0)
	}
	require.True(t, state.Exhausted())

	for range MaxRetries {
		require.True(t, state.RateLimited())
	}
	require.False(t, state.RateLimited())
}

func TestDelayRangePick(t *testing.T) {
	require.Equal(t, 400*time.Millisecond, DefaultPacing.Pick(0))
	require.Equal(t, 1100*time.Millisecond, DefaultPacing.Pick(0.9999999999))
	mid := DefaultBackoff.Pick(0.5)
	require.GreaterOrEqual(t, mid, DefaultBackoff.Min)
	require.LessOrEqual(t, mid, DefaultBackoff.Max)

	fixed := DelayRange{Min: time.Second, Max: time.Second}
	require.Equal(t, time.Second, fixed.Pick(0.7))
}
