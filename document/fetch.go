package document

import (
	"context"
	"fmt"
)

// Fetcher turns an identifier into a document. Implementations may block
// on the network; callers run them off the input loop.
type Fetcher interface {
	Fetch(ctx context.Context, identifier string) (*Document, error)
}

// FetchErrorKind classifies fetch failures.
type FetchErrorKind int

const (
	NotFound FetchErrorKind = iota
	NetworkError
	ParseError
)

func (k FetchErrorKind) String() string {
	switch k {
	case NotFound:
		return "not found"
	case NetworkError:
		return "network error"
	case ParseError:
		return "parse error"
	default:
		return fmt.Sprintf("FetchErrorKind(%d)", int(k))
	}
}

// FetchError is returned by fetchers. The reader keeps the last good page
// and shows the error as a notice.
type FetchError struct {
	Kind       FetchErrorKind
	Identifier string
	Err        error
}

func (e *FetchError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Identifier, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Identifier, e.Kind)
}

func (e *FetchError) Unwrap() error {
	return e.Err
}
