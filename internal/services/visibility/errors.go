package visibility

import "errors"

var (
	// ErrAuthorizationDenied is returned when the requester lacks the
	// ownership or managing permission required for the partition.
	ErrAuthorizationDenied = errors.New("authorization denied")

	// ErrNotFound is returned when the entity does not exist, or when it
	// exists but its existence must not be revealed to the requester.
	ErrNotFound = errors.New("not found")
)
