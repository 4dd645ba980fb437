package domain

import "errors"

var (
	ErrDiscussionNotFound = errors.New("discussion not found")
	ErrItemNotFound       = errors.New("item not found in discussion")
	ErrDuplicateItem      = errors.New("item already present in discussion")
	ErrInvalidAction      = errors.New("invalid discussion update action")
)
