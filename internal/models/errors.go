package models

import "errors"

var (
	// ErrNotFound is returned when a requested document does not exist.
	ErrNotFound = errors.New("document not found")
	// ErrInvalidName is returned for document names with a disallowed extension
	// or a path component.
	ErrInvalidName = errors.New("invalid document name")
	// ErrAlreadyExists is returned when a create, rename or copy would collide
	// with an existing document.
	ErrAlreadyExists = errors.New("document already exists")
	// ErrUnauthorized is returned for mutating actions attempted without a
	// signed-in session.
	ErrUnauthorized = errors.New("must be signed in")
)
