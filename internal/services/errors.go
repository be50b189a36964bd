package services

import "errors"

var (
	// ErrNotFound is the normal negative result for a local lookup.
	ErrNotFound = errors.New("not found")

	// ErrNotAuthorized declines a compound mutation whose target is not
	// owned by the acting user (book not on their shelf, tag not in their
	// vocabulary). It is a recoverable signal, not a fatal condition.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrInvalidCredentials is returned for any authentication mismatch.
	// Unknown usernames and wrong passwords are deliberately
	// indistinguishable to the caller.
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrUsernameTaken is the uniqueness violation for user signup.
	ErrUsernameTaken = errors.New("username already taken")

	// ErrDuplicateISBN is the uniqueness violation for book creation.
	ErrDuplicateISBN = errors.New("book with this isbn already exists")
)
