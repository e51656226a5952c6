package errors

import (
	"errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeContent represents content loading and rendering errors
	ErrorTypeContent ErrorType = "content"
	// ErrorTypeTrail represents research trail service errors
	ErrorTypeTrail ErrorType = "trail"
	// ErrorTypeGraph represents graph database errors
	ErrorTypeGraph ErrorType = "graph"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Content Errors

// ErrContentParseFailed is returned when a content file cannot be decoded
type ErrContentParseFailed struct {
	*BaseError
	Path string
}

func NewContentParseFailed(path string, err error) *ErrContentParseFailed {
	return &ErrContentParseFailed{
		BaseError: NewBaseError(ErrorTypeContent, fmt.Sprintf("failed to parse %s", path), err),
		Path:      path,
	}
}

// ErrContentInvalid is returned when frontmatter fails validation
type ErrContentInvalid struct {
	*BaseError
	Path   string
	Reason string
}

func NewContentInvalid(path, reason string) *ErrContentInvalid {
	return &ErrContentInvalid{
		BaseError: NewBaseError(ErrorTypeContent, fmt.Sprintf("invalid frontmatter in %s", path), errors.New(reason)),
		Path:      path,
		Reason:    reason,
	}
}

// Trail Errors

// FetchKind classifies why a research trail read failed
type FetchKind string

const (
	FetchKindNetwork     FetchKind = "network"
	FetchKindStatus      FetchKind = "status"
	FetchKindDecode      FetchKind = "decode"
	FetchKindUnavailable FetchKind = "unavailable"
)

// FetchError keeps "request failed" distinct from "no data" even though
// presentation code collapses both to an empty result.
type FetchError struct {
	*BaseError
	Kind       FetchKind
	Endpoint   string
	StatusCode int
}

func NewFetchError(kind FetchKind, endpoint string, statusCode int, err error) *FetchError {
	msg := fmt.Sprintf("%s failure for %s", kind, endpoint)
	if kind == FetchKindStatus {
		msg = fmt.Sprintf("unexpected status %d for %s", statusCode, endpoint)
	}
	return &FetchError{
		BaseError:  NewBaseError(ErrorTypeTrail, msg, err),
		Kind:       kind,
		Endpoint:   endpoint,
		StatusCode: statusCode,
	}
}

// Graph Errors

// ErrGraphQueryFailed is returned when a graph query fails
type ErrGraphQueryFailed struct {
	*BaseError
	Query string
}

func NewGraphQueryFailed(query string, err error) *ErrGraphQueryFailed {
	return &ErrGraphQueryFailed{
		BaseError: NewBaseError(ErrorTypeGraph, fmt.Sprintf("query failed: %s", query), err),
		Query:     query,
	}
}

// Config Errors

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Helper functions

// IsErrorType checks if an error, or anything it wraps, carries the given type
func IsErrorType(err error, errType ErrorType) bool {
	for err != nil {
		switch e := err.(type) {
		case *BaseError:
			if e.Type == errType {
				return true
			}
		case interface{ Base() *BaseError }:
			if e.Base().Type == errType {
				return true
			}
		}
		err = errors.Unwrap(err)
	}
	return false
}

// Base exposes the embedded BaseError so IsErrorType can see through wrappers.
func (e *FetchError) Base() *BaseError { return e.BaseError }

func (e *ErrContentParseFailed) Base() *BaseError { return e.BaseError }

func (e *ErrContentInvalid) Base() *BaseError { return e.BaseError }

func (e *ErrGraphQueryFailed) Base() *BaseError { return e.BaseError }

func (e *ErrConfigValidationFailed) Base() *BaseError { return e.BaseError }

// AsFetchError extracts a FetchError from an error chain
func AsFetchError(err error) (*FetchError, bool) {
	var fe *FetchError
	if errors.As(err, &fe) {
		return fe, true
	}
	return nil, false
}
