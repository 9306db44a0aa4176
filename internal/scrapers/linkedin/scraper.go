// Package linkedin drives a people search against LinkedIn's voyager API: it
// pages through the listing, deduplicates the people found and optionally
// enriches each of them with their profile sections.
package linkedin

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/assert"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/chrono"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/components/telemetry"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/locator"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/profile"
)

var tracer = otel.Tracer("scrapers/linkedin")

const (
	report_scraper_run        = "scraper.run"
	report_scraper_auth       = "scraper.auth"
	report_scraper_fetch_page = "scraper.fetch-page"
	report_scraper_rate_limit = "scraper.rate-limit"
	report_scraper_enrich     = "scraper.enrich"
	report_scraper_people     = "scraper.people"
)

type StopReason int

const (
	StopTargetReached StopReason = iota
	StopExhausted
	StopFailed
	StopCancelled
)

func (r StopReason) String() string {
	switch r {
	case StopTargetReached:
		return "target reached"
	case StopExhausted:
		return "exhausted"
	case StopFailed:
		return "failed"
	case StopCancelled:
		return "cancelled"
	}
	return fmt.Sprintf("StopReason(%d)", int(r))
}

// Result is the final report of a run, People holds everything accumulated
// even when the run failed.
type Result struct {
	RunID  string
	People []person.Person
	Stop   StopReason
	// Pages is the number of listing pages successfully fetched.
	Pages int
	// Reason describes a failure or an empty result in plain text.
	Reason string
}

type Params struct {
	TargetCount int
	// Keyword may be empty, the Options.Keywords source is asked then.
	Keyword string
	Enrich  bool
}

type Options struct {
	Transport Transport
	Requests  RequestBuilder
	Telemetry telemetry.API

	// optional
	Tokens   TokenProvider
	Keywords KeywordSource
	Observer Observer
	Clock    chrono.API
	Pacing   DelayRange
	Backoff  DelayRange
	// Rand returns numbers in [0, 1), it decides where in a DelayRange a
	// wait falls.
	Rand func() float64
}

type Scraper struct {
	transport Transport
	requests  RequestBuilder
	tokens    TokenProvider
	keywords  KeywordSource
	observer  Observer
	clock     chrono.API
	pacing    DelayRange
	backoff   DelayRange
	rand      func() float64
	tel       telemetry.API
}

func NewScraper(opts Options) *Scraper {
	assert.NotNil(opts.Transport, "transport")
	assert.NotNil(opts.Requests, "request builder")
	assert.NotNil(opts.Telemetry, "telemetry")

	s := &Scraper{
		transport: opts.Transport,
		requests:  opts.Requests,
		tokens:    opts.Tokens,
		keywords:  opts.Keywords,
		observer:  opts.Observer,
		clock:     opts.Clock,
		pacing:    opts.Pacing,
		backoff:   opts.Backoff,
		rand:      opts.Rand,
		tel:       telemetry.NewScopedAPI("linkedin_scraper", opts.Telemetry),
	}
	if s.observer == nil {
		s.observer = NopObserver{}
	}
	if s.clock == nil {
		s.clock = chrono.NewStandardImpl()
	}
	if s.pacing == (DelayRange{}) {
		s.pacing = DefaultPacing
	}
	if s.backoff == (DelayRange{}) {
		s.backoff = DefaultBackoff
	}
	if s.rand == nil {
		s.rand = rand.Float64
	}
	return s
}

// run is the state of a single Run call.
type run struct {
	*Scraper
	target int
	enrich bool
	people []person.Person
	seen   map[string]struct{}
	pages  int
}

// Run scrapes until params.TargetCount people were collected, the listing
// stops yielding new people or a fatal error occurs. The returned Result is
// always complete, the error is non-nil when the run failed or was cancelled.
func (s *Scraper) Run(ctx context.Context, params Params) (Result, error) {
	if params.TargetCount <= 0 {
		return Result{}, fmt.Errorf("target count must be positive, got %d", params.TargetCount)
	}

	runID := uuid.NewString()
	ctx, span := tracer.Start(ctx, "Run")
	defer span.End()
	span.SetAttributes(
		attribute.String("run_id", runID),
		attribute.Int("target_count", params.TargetCount),
		attribute.Bool("enrich", params.Enrich),
	)

	keyword := strings.TrimSpace(params.Keyword)
	if keyword == "" && s.keywords != nil {
		keyword = strings.TrimSpace(s.keywords.Keyword())
	}
	s.tel.ReportDebug("starting run", "run_id", runID, "keyword", keyword, "target", params.TargetCount)

	if s.tokens != nil {
		if _, ok := s.tokens.Token(); !ok {
			s.tel.ReportWarning(report_scraper_auth, "no session token")
			s.observer.OnWarning("no session token found, requests will likely be rejected")
		}
	}

	r := &run{
		Scraper: s,
		target:  params.TargetCount,
		enrich:  params.Enrich,
		seen:    make(map[string]struct{}),
	}
	err := r.paginate(ctx, keyword)

	result := Result{
		RunID:  runID,
		People: r.people,
		Pages:  r.pages,
	}
	switch {
	case err == nil && len(r.people) >= r.target:
		result.Stop = StopTargetReached
	case err == nil:
		result.Stop = StopExhausted
		if len(r.people) == 0 {
			result.Reason = fmt.Sprintf("no results found for %q", keyword)
			s.observer.OnWarning(result.Reason)
		}
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		result.Stop = StopCancelled
		result.Reason = fmt.Sprintf("cancelled: %v", err)
	default:
		result.Stop = StopFailed
		result.Reason = err.Error()
		s.tel.ReportBroken(report_scraper_run, err, runID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.SetAttributes(
		attribute.String("stop", result.Stop.String()),
		attribute.Int("people", len(result.People)),
	)

	s.tel.ReportCount(report_scraper_people, int64(len(result.People)))
	s.observer.OnComplete(result)
	return result, err
}

func (r *run) paginate(ctx context.Context, keyword string) error {
	state := PaginationState{}
	for len(r.people) < r.target && !state.Exhausted() {
		if err := ctx.Err(); err != nil {
			return err
		}

		page, err := r.fetchPage(ctx, keyword, state.Cursor)
		if errors.Is(err, ErrRateLimited) {
			if !state.RateLimited() {
				return fmt.Errorf("listing at offset %d: %w", state.Cursor, ErrRetriesExceeded)
			}
			r.tel.ReportWarning(report_scraper_rate_limit, state.Cursor, state.RetryCount)
			err = r.clock.Sleep(ctx, r.backoff.Pick(r.rand()))
			if err != nil {
				return err
			}
			continue
		}
		if err != nil {
			return err
		}

		added := 0
		for _, p := range page {
			if len(r.people) >= r.target {
				break
			}
			if err := ctx.Err(); err != nil {
				return err
			}
			if !r.accept(p) {
				continue
			}
			added++
			if r.enrich {
				r.enrichLast(ctx)
			}
		}
		state.PageFetched(added)
		r.pages++
		r.observer.OnProgress(len(r.people), r.target)
		r.tel.ReportDebug("page done", "cursor", state.Cursor, "added", added, "empty_pages", state.ConsecutiveEmptyPages)

		if len(r.people) < r.target && !state.Exhausted() {
			err = r.clock.Sleep(ctx, r.pacing.Pick(r.rand()))
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// accept appends p when its profile url was not seen yet, a later duplicate
// never replaces the first.
func (r *run) accept(p person.Person) bool {
	if _, ok := r.seen[p.ProfileURL]; ok {
		return false
	}
	r.seen[p.ProfileURL] = struct{}{}
	r.people = append(r.people, p)
	r.observer.OnPersonAdded(p)
	return true
}

func (r *run) fetchPage(ctx context.Context, keyword string, cursor int) ([]person.Person, error) {
	ctx, span := tracer.Start(ctx, "fetchPage")
	defer span.End()
	span.SetAttributes(attribute.Int("cursor", cursor))

	fail := func(err error) ([]person.Person, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		if ctx.Err() == nil {
			r.tel.ReportBroken(report_scraper_fetch_page, err, cursor)
		}
		return nil, err
	}

	req, err := r.requests.ListingRequest(keyword, cursor, PageSize)
	if err != nil {
		return fail(fmt.Errorf("build listing request: %w", err))
	}
	res, err := r.transport.Fetch(ctx, req)
	if err != nil {
		return fail(fmt.Errorf("fetch listing page: %w", err))
	}
	err = checkStatus(res, req.URL)
	if errors.Is(err, ErrRateLimited) {
		span.SetAttributes(attribute.Bool("rate_limited", true))
		return nil, err
	}
	if err != nil {
		return fail(err)
	}

	root, err := locator.Parse(res.Body)
	if err != nil {
		return fail(fmt.Errorf("decode listing page: %w", err))
	}
	return person.Extract(root), nil
}

// enrichLast enriches the most recently accepted person. Failures are
// reported and leave the person as is, cancellation is silent.
func (r *run) enrichLast(ctx context.Context) {
	idx := len(r.people) - 1
	p := r.people[idx]
	if p.URNCode == "" {
		return
	}

	ctx, span := tracer.Start(ctx, "enrich")
	defer span.End()
	span.SetAttributes(attribute.String("urn_code", p.URNCode))

	sections, err := r.fetchProfile(ctx, p.URNCode)
	if ctx.Err() != nil {
		// a stopped run is not an enrichment failure
		return
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		r.tel.ReportWarning(report_scraper_enrich, err, p.ProfileURL)
		return
	}

	enriched := p.WithEnrichment(sections.About, sections.Experiences, sections.Education)
	if !enriched.HasEnrichment() {
		r.tel.ReportDebug("no profile sections found", "profile", p.ProfileURL)
		return
	}
	r.people[idx] = enriched
	r.observer.OnPersonEnriched(enriched)
}

// fetchProfile fetches and parses a profile, giving up after
// ProfileAttempts rate limited attempts.
func (r *run) fetchProfile(ctx context.Context, urnCode string) (profile.Sections, error) {
	req, err := r.requests.ProfileRequest(urnCode)
	if err != nil {
		return profile.Sections{}, fmt.Errorf("build profile request: %w", err)
	}

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return profile.Sections{}, err
		}
		res, err := r.transport.Fetch(ctx, req)
		if err != nil {
			return profile.Sections{}, fmt.Errorf("fetch profile: %w", err)
		}
		err = checkStatus(res, req.URL)
		if errors.Is(err, ErrRateLimited) {
			if attempt >= ProfileAttempts {
				return profile.Sections{}, fmt.Errorf("profile %s: gave up after %d attempts: %w", urnCode, attempt, err)
			}
			err = r.clock.Sleep(ctx, r.backoff.Pick(r.rand()))
			if err != nil {
				return profile.Sections{}, err
			}
			continue
		}
		if err != nil {
			return profile.Sections{}, err
		}

		root, err := locator.Parse(res.Body)
		if err != nil {
			return profile.Sections{}, fmt.Errorf("decode profile: %w", err)
		}
		return profile.Parse(root), nil
	}
}
