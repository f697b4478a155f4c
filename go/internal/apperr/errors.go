// Package apperr classifies engine failures into validation, consistency and
// concurrency-conflict errors so callers can decide whether to retry.
package apperr

import (
	"errors"
	"fmt"
)

// Kind is the broad class of an error.
type Kind int

const (
	// KindValidation is a business-rule violation. Nothing was committed; the caller may retry with corrected input.
	KindValidation Kind = iota + 1
	// KindConsistency means an expected related row is missing. It indicates a prior invariant violation.
	KindConsistency
	// KindConflict means the operation lost a race against a concurrent change and may be retried as is.
	KindConflict
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindConsistency:
		return "consistency"
	case KindConflict:
		return "conflict"
	default:
		return "unknown"
	}
}

// Code identifies the specific rule that failed.
type Code string

const (
	CodeInvalidTransition       Code = "INVALID_TRANSITION"
	CodeInvalidState            Code = "INVALID_STATE"
	CodeBidTooLow               Code = "BID_TOO_LOW"
	CodeAuctionClosed           Code = "AUCTION_CLOSED"
	CodeAuctionStillOpen        Code = "AUCTION_STILL_OPEN"
	CodeStaleTradeReference     Code = "STALE_TRADE_REFERENCE"
	CodeCapExceeded             Code = "CAP_EXCEEDED"
	CodeRosterLimitExceeded     Code = "ROSTER_LIMIT_EXCEEDED"
	CodeKeeperLimitExceeded     Code = "KEEPER_LIMIT_EXCEEDED"
	CodeDuplicateActiveContract Code = "DUPLICATE_ACTIVE_CONTRACT"
	CodeAssetNotOwned           Code = "ASSET_NOT_OWNED"
	CodeNotAuthorized           Code = "NOT_AUTHORIZED"
	CodeInvalidInput            Code = "INVALID_INPUT"
	CodeNotFound                Code = "NOT_FOUND"
	CodeMissingRelation         Code = "MISSING_RELATION"
)

// Error is the engine's classified error.
type Error struct {
	Kind    Kind
	Code    Code
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Validation returns a KindValidation error.
func Validation(code Code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Consistency returns a KindConsistency error wrapping err, which may be nil.
func Consistency(code Code, err error, format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// Conflict returns a KindConflict error wrapping err, which may be nil.
func Conflict(code Code, err error, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// NotFound is a validation error for a referenced row that does not exist.
func NotFound(what string, id any) *Error {
	return Validation(CodeNotFound, "%s %v not found", what, id)
}

// As returns the first *Error in err's chain.
func As(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

func IsValidation(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindValidation
}

func IsConsistency(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindConsistency
}

// IsRetryable reports whether err is a concurrency conflict.
func IsRetryable(err error) bool {
	e, ok := As(err)
	return ok && e.Kind == KindConflict
}

// HasCode reports whether any *Error in err's chain carries code.
func HasCode(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Err
	}
	return false
}
