package graph

import "errors"

var (
	// ErrResourceBusy is returned when an output texture cannot be released
	// because another object still references it.
	ErrResourceBusy = errors.New("resource is still referenced")
	// ErrFrozen is returned when editing an instance whose edits are disabled.
	ErrFrozen = errors.New("instance is frozen")
	// ErrNoSuchInput is returned by value setters for unknown inputs.
	ErrNoSuchInput = errors.New("no such input")
	// ErrKindMismatch is returned when a value cannot be given to an input.
	ErrKindMismatch = errors.New("value kind does not match input")
)
