package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrorKind classifies a ShopError for the HTTP layer
type ErrorKind int

const (
	KindUnexpected ErrorKind = iota
	KindMissingField
	KindInvalidField
	KindDuplicateIdentifier
	KindNotFound
	KindUnauthenticated
	KindReferenceInUse
)

// ShopError is the error every service operation returns. Code is a stable
// machine-readable identifier; Message is safe to show to the shop owner.
type ShopError struct {
	Kind    ErrorKind
	Code    string
	Message string
	Err     error
}

func (e *ShopError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *ShopError) Unwrap() error {
	return e.Err
}

func missingField(message string) error {
	return &ShopError{Kind: KindMissingField, Code: "MISSING_FIELD", Message: message}
}

func invalidField(code, message string) error {
	return &ShopError{Kind: KindInvalidField, Code: code, Message: message}
}

func duplicate(code, message string) error {
	return &ShopError{Kind: KindDuplicateIdentifier, Code: code, Message: message}
}

func notFound(code, message string) error {
	return &ShopError{Kind: KindNotFound, Code: code, Message: message}
}

func unexpected(message string, err error) error {
	return &ShopError{Kind: KindUnexpected, Code: "DATABASE_ERROR", Message: message, Err: err}
}

// persistErr turns a database error into a ShopError. A unique index
// violation becomes a duplicate with the given code and message, since
// concurrent writers can slip past the service-level uniqueness checks.
func persistErr(err error, message, dupCode, dupMessage string) error {
	var se *ShopError
	if errors.As(err, &se) {
		return err
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) && dupCode != "" {
		return &ShopError{Kind: KindDuplicateIdentifier, Code: dupCode, Message: dupMessage, Err: err}
	}
	return unexpected(message, err)
}

// AsShopError extracts a ShopError from err, wrapping unknown errors as unexpected
func AsShopError(err error) *ShopError {
	var se *ShopError
	if errors.As(err, &se) {
		return se
	}
	return &ShopError{Kind: KindUnexpected, Code: "INTERNAL_ERROR", Message: "Unexpected server error", Err: err}
}

// IsKind reports whether err is a ShopError of the given kind
func IsKind(err error, kind ErrorKind) bool {
	var se *ShopError
	return errors.As(err, &se) && se.Kind == kind
}
