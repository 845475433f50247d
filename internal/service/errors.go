package service

import (
	"errors"
	"fmt"
)

// ErrKind classifies routing failures. Callers branch on the kind; the
// message text is for humans only.
type ErrKind int

const (
	KindUnknown ErrKind = iota
	KindMissingParameter
	KindBadRequest
	KindNotFound
	KindNoSchedulerAvailable
	KindStoreFailure
)

// RouteError is a routing failure with a kind callers can match on
type RouteError struct {
	Kind    ErrKind
	Message string
	Err     error
}

func (e *RouteError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *RouteError) Unwrap() error {
	return e.Err
}

// Kind returns the ErrKind of err, KindUnknown for foreign errors
func Kind(err error) ErrKind {
	var re *RouteError
	if errors.As(err, &re) {
		return re.Kind
	}
	return KindUnknown
}

func missingParameter(msg string) *RouteError {
	return &RouteError{Kind: KindMissingParameter, Message: msg}
}

func badRequest(msg string) *RouteError {
	return &RouteError{Kind: KindBadRequest, Message: msg}
}

func notFound(msg string) *RouteError {
	return &RouteError{Kind: KindNotFound, Message: msg}
}

func noSchedulerAvailable(msg string) *RouteError {
	return &RouteError{Kind: KindNoSchedulerAvailable, Message: msg}
}

func storeFailure(msg string, err error) *RouteError {
	return &RouteError{Kind: KindStoreFailure, Message: msg, Err: err}
}
