package topics

import (
	"errors"
	"fmt"
)

// Error codes
const (
	ErrCodeInsufficientTopics    = "TOPIC_001"
	ErrCodeNoDistinctRelatedTerm = "TOPIC_002"
)

var (
	// ErrInsufficientTopics means fewer eligible tags remained than requested
	ErrInsufficientTopics = errors.New("insufficient topics")

	// ErrNoDistinctRelatedTerm means a main tag has no related term that is
	// lexically distinct from it
	ErrNoDistinctRelatedTerm = errors.New("no distinct related term")
)

// TopicError describes a failed selection or build attempt
type TopicError struct {
	Code    string
	Message string
	Term    string
	Err     error
}

func (e *TopicError) Error() string {
	if e.Term != "" {
		return fmt.Sprintf("[%s] %s (term %q): %v", e.Code, e.Message, e.Term, e.Err)
	}
	return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.Err)
}

func (e *TopicError) Unwrap() error {
	return e.Err
}

func insufficientTopics(found, wanted, cursor int) error {
	return &TopicError{
		Code:    ErrCodeInsufficientTopics,
		Message: fmt.Sprintf("found %d of %d topics, scan stopped at tag %d", found, wanted, cursor),
		Err:     ErrInsufficientTopics,
	}
}

func noDistinctRelatedTerm(term string) error {
	return &TopicError{
		Code:    ErrCodeNoDistinctRelatedTerm,
		Message: "main tag has no distinct related term",
		Term:    term,
		Err:     ErrNoDistinctRelatedTerm,
	}
}
