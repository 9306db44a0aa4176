package linkedin

import (
	"context"
	"net/http"

	"github.com/withLinda/LinkedIn-profile-scraper-extended-sub000/internal/person"
)

// Request is a fully built outbound GET.
type Request struct {
	URL    string
	Header http.Header
}

type Response struct {
	Status int
	Body   []byte
}

// Transport performs a single request. A non-2xx status is not an error at
// this level, only failing to get any response is.
type Transport interface {
	Fetch(ctx context.Context, req Request) (Response, error)
}

// RequestBuilder turns listing and profile lookups into requests, it is
// deterministic given its inputs and its own search context.
type RequestBuilder interface {
	ListingRequest(keyword string, start, count int) (Request, error)
	ProfileRequest(urnCode string) (Request, error)
}

// TokenProvider reads the session token, ok is false when there is none.
type TokenProvider interface {
	Token() (string, bool)
}

// KeywordSource supplies the keyword of the surrounding search when a run is
// started without one.
type KeywordSource interface {
	Keyword() string
}

// Observer receives run events synchronously, in order. Nothing it does
// feeds back into the run.
type Observer interface {
	OnProgress(current, target int)
	// OnPersonAdded is called once per accepted person, before enrichment.
	OnPersonAdded(p person.Person)
	// OnPersonEnriched is called with the fully merged person, only when
	// enrichment produced data.
	OnPersonEnriched(p person.Person)
	OnWarning(message string)
	OnComplete(result Result)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) OnProgress(int, int)            {}
func (NopObserver) OnPersonAdded(person.Person)    {}
func (NopObserver) OnPersonEnriched(person.Person) {}
func (NopObserver) OnWarning(string)               {}
func (NopObserver) OnComplete(Result)              {}
