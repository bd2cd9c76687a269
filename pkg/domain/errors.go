package domain

import "errors"

// ErrNotFound is returned by collaborator stores when a referenced record does not exist.
var ErrNotFound = errors.New("not found")

// ErrAlreadyTaken is returned when a feedback request is already held by another operator.
var ErrAlreadyTaken = errors.New("already taken by another operator")
