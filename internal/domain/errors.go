package domain

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrEmptySystemPrompt = fmt.Errorf("%w: coaching requires a system prompt", ErrInvalidInput)
	ErrUnknownStrategy   = fmt.Errorf("%w: unknown reply strategy", ErrInvalidInput)
	ErrUnknownPersona    = fmt.Errorf("%w: unknown persona", ErrInvalidInput)
	ErrEmptyHistory      = fmt.Errorf("%w: chat history is empty", ErrInvalidInput)
	ErrEmptyCompletion   = errors.New("completion provider returned no choices")
)

type LimitReason string

const (
	LimitBurst LimitReason = "burst"
	LimitDaily LimitReason = "daily"
)

// TooManyRequestsError is returned by User.AddDialog when a rate limit is hit.
// Nothing is persisted when it is returned.
type TooManyRequestsError struct {
	Reason LimitReason
	Window time.Duration
}

func (e *TooManyRequestsError) Error() string {
	switch e.Reason {
	case LimitBurst:
		if e.Window > 0 {
			return fmt.Sprintf("Too many requests in %d seconds. Please try again later.", int(e.Window.Seconds()))
		}
		return "Too many requests in a short period. Please try again later."
	case LimitDaily:
		return "Too many requests today. Please try again tomorrow."
	default:
		return "Too many requests. Please try again later."
	}
}

// IsTooManyRequests reports whether err is (or wraps) a rate-limit rejection.
func IsTooManyRequests(err error) bool {
	var tmr *TooManyRequestsError
	return errors.As(err, &tmr)
}
