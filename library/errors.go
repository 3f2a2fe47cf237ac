package library

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by validation guard chains. Errors that carry
// context (which name, which field) are dedicated types below; use errors.As
// to inspect them.
var (
	// ErrEmptyValue is returned when a required argument is blank.
	ErrEmptyValue = errors.New("empty values detected")

	// ErrInvalidAge is returned when an age is outside the 13-120 range.
	ErrInvalidAge = errors.New("invalid age entered")

	// ErrInvalidEmail is returned when an email is not a gmail.com or yahoo.com address.
	ErrInvalidEmail = errors.New(`email must be either Gmail ("@gmail.com") or Yahoo ("@yahoo.com")`)

	// ErrInvalidQuantity is returned when a book quantity is negative or not an integer.
	ErrInvalidQuantity = errors.New("invalid quantity entered")

	// ErrInvalidSearch is returned when a search names an unknown record kind.
	ErrInvalidSearch = errors.New("search invalid: can only search for user, book, and author")
)

// NameTakenError is returned when creating an entity whose natural key is
// already present in its collection.
type NameTakenError struct {
	Kind string // "user", "book" or "author"
	Name string
}

func (e *NameTakenError) Error() string {
	return fmt.Sprintf("%s name %q is already taken", e.Kind, e.Name)
}

// NotFoundError is returned when a lookup misses, parameterized by the kind of
// entity that was looked up.
type NotFoundError struct {
	Kind string // "user", "book", "author", "borrow record" or "field"
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q cannot be found", e.Kind, e.Name)
}

// InvalidChangeError is returned when an update targets a protected field or
// supplies an out-of-range value for an enumerated field.
type InvalidChangeError struct {
	Field  string
	Reason string
}

func (e *InvalidChangeError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("field %q cannot be changed", e.Field)
	}
	return fmt.Sprintf("field %q cannot be changed: %s", e.Field, e.Reason)
}

// BookUnavailableError is returned when borrowing a book with no copies left.
type BookUnavailableError struct {
	Title string
}

func (e *BookUnavailableError) Error() string {
	return fmt.Sprintf("book %q cannot be borrowed for the time being", e.Title)
}

// BorrowLimitError is returned when a member has exhausted their borrow limit.
type BorrowLimitError struct {
	Username string
	Limit    int
}

func (e *BorrowLimitError) Error() string {
	return fmt.Sprintf("user %q has reached the borrow limit of %d books", e.Username, e.Limit)
}
