package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

var (
	// ErrAuthentication marks credential or permission failures. They are
	// never retried.
	ErrAuthentication = errors.New("gemini authentication failed")
	// ErrRateLimited marks quota and rate limit responses.
	ErrRateLimited = errors.New("gemini rate limit exceeded")
	// ErrEmptyResponse is returned when the model answers with no text.
	ErrEmptyResponse = errors.New("empty response from model")
	// ErrParse marks responses that did not contain a usable recipe.
	ErrParse = errors.New("unusable recipe response")
	// ErrExhausted is returned once every generation attempt has failed.
	ErrExhausted = errors.New("generation attempts exhausted")
)

// StatusError is a provider error carrying the HTTP status.
type StatusError struct {
	Code    int
	Status  string
	Message string
}

func (e *StatusError) Error() string {
	if e.Status != "" {
		return fmt.Sprintf("gemini error %d %s: %s", e.Code, e.Status, e.Message)
	}
	return fmt.Sprintf("gemini error %d: %s", e.Code, e.Message)
}

// Is lets errors.Is match a StatusError against the classification sentinels.
func (e *StatusError) Is(target error) bool {
	switch target {
	case ErrAuthentication:
		return e.isAuth()
	case ErrRateLimited:
		return e.Code == http.StatusTooManyRequests || e.Status == "RESOURCE_EXHAUSTED"
	}
	return false
}

func (e *StatusError) isAuth() bool {
	if e.Code == http.StatusUnauthorized || e.Code == http.StatusForbidden {
		return true
	}
	switch e.Status {
	case "UNAUTHENTICATED", "PERMISSION_DENIED":
		return true
	}
	// an invalid key comes back as 400 INVALID_ARGUMENT
	return strings.Contains(strings.ToLower(e.Message), "api key not valid")
}

// ParseError describes why a model response could not become a recipe.
type ParseError struct {
	Reason string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("parse recipe: %s: %v", e.Reason, e.Err)
	}
	return "parse recipe: " + e.Reason
}

func (e *ParseError) Unwrap() error { return e.Err }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

type errorClass int

const (
	classTransient errorClass = iota
	classRateLimit
	classTimeout
	classAuth
)

func (c errorClass) String() string {
	switch c {
	case classRateLimit:
		return "rate_limit"
	case classTimeout:
		return "timeout"
	case classAuth:
		return "auth"
	default:
		return "transient"
	}
}

func classify(err error) errorClass {
	switch {
	case errors.Is(err, ErrAuthentication):
		return classAuth
	case errors.Is(err, ErrRateLimited):
		return classRateLimit
	case errors.Is(err, context.DeadlineExceeded):
		return classTimeout
	default:
		return classTransient
	}
}

// Classify names the retry class of err: "auth", "rate_limit", "timeout" or
// "transient".
func Classify(err error) string {
	return classify(err).String()
}
