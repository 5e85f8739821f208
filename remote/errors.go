package remote

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/sashabaranov/go-openai"
)

// ErrorType represents the type of a remote feedback failure
type ErrorType int

const (
	ErrorTypeUnknown ErrorType = iota
	ErrorTypeRequest
	ErrorTypeResponse
	ErrorTypeAPI
	ErrorTypeRateLimit
	ErrorTypeAuthentication
	ErrorTypeInvalidInput
)

// FeedbackError represents an error in the remote feedback path
type FeedbackError struct {
	Type    ErrorType
	Message string
	Err     error
}

func (e *FeedbackError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s (%s): %v", e.TypeString(), e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.TypeString(), e.Message)
}

func (e *FeedbackError) Unwrap() error {
	return e.Err
}

func (e *FeedbackError) TypeString() string {
	switch e.Type {
	case ErrorTypeRequest:
		return "RequestError"
	case ErrorTypeResponse:
		return "ResponseError"
	case ErrorTypeAPI:
		return "APIError"
	case ErrorTypeRateLimit:
		return "RateLimitError"
	case ErrorTypeAuthentication:
		return "AuthenticationError"
	case ErrorTypeInvalidInput:
		return "InvalidInputError"
	default:
		return "UnknownError"
	}
}

// Retryable reports whether another attempt could succeed.
func (e *FeedbackError) Retryable() bool {
	switch e.Type {
	case ErrorTypeRequest, ErrorTypeAPI, ErrorTypeRateLimit:
		return true
	}
	return false
}

// NewFeedbackError creates a new FeedbackError
func NewFeedbackError(errType ErrorType, message string, err error) *FeedbackError {
	return &FeedbackError{
		Type:    errType,
		Message: message,
		Err:     err,
	}
}

// classify maps a go-openai failure onto the error taxonomy.
func classify(err error) *FeedbackError {
	var fbErr *FeedbackError
	if errors.As(err, &fbErr) {
		return fbErr
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == http.StatusUnauthorized || apiErr.HTTPStatusCode == http.StatusForbidden:
			return NewFeedbackError(ErrorTypeAuthentication, "credential rejected", err)
		case apiErr.HTTPStatusCode == http.StatusTooManyRequests:
			return NewFeedbackError(ErrorTypeRateLimit, "rate limited", err)
		case apiErr.HTTPStatusCode >= 400 && apiErr.HTTPStatusCode < 500:
			return NewFeedbackError(ErrorTypeInvalidInput, "request rejected", err)
		default:
			return NewFeedbackError(ErrorTypeAPI, fmt.Sprintf("API error: status code %d", apiErr.HTTPStatusCode), err)
		}
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if reqErr.HTTPStatusCode == http.StatusUnauthorized {
			return NewFeedbackError(ErrorTypeAuthentication, "credential rejected", err)
		}
		return NewFeedbackError(ErrorTypeAPI, fmt.Sprintf("API error: status code %d", reqErr.HTTPStatusCode), err)
	}

	return NewFeedbackError(ErrorTypeRequest, "failed to send request", err)
}
