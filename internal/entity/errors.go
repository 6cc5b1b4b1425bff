package entity

import "errors"

// Domain errors the repository returns and handlers translate into HTTP
// statuses.
var (
	ErrBookUnavailable     = errors.New("book is not available")
	ErrLoanAlreadyReturned = errors.New("loan already returned")
	ErrLoanLimitReached    = errors.New("loan limit reached")
)
