package linkedin

const (
	PageSize        = 10
	MaxRetries      = 3
	MaxEmptyPages   = 3
	ProfileAttempts = 2
)

// PaginationState is the listing loop's cursor bookkeeping.
type PaginationState struct {
	// Cursor is the offset of the next page, it only moves forward.
	Cursor int
	// ConsecutiveEmptyPages counts pages in a row that added nobody.
	ConsecutiveEmptyPages int
	// RetryCount counts rate limited fetches of the current cursor.
	RetryCount int
}

// PageFetched records a successfully fetched page that added `added` people.
// The cursor moves regardless of how many were added.
func (s *PaginationState) PageFetched(added int) {
	s.RetryCount = 0
	if added == 0 {
		s.ConsecutiveEmptyPages++
	} else {
		s.ConsecutiveEmptyPages = 0
	}
	s.Cursor += PageSize
}

// RateLimited records a rate limited fetch, it returns false once the retry
// budget is spent.
func (s *PaginationState) RateLimited() bool {
	s.RetryCount++
	return s.RetryCount <= MaxRetries
}

func (s PaginationState) Exhausted() bool {
	return s.ConsecutiveEmptyPages >= MaxEmptyPages
}
