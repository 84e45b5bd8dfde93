package modesync

import "errors"

var (
	// ErrUnknownEntry is returned when a setter targets an index that is not
	// in the local list. Nothing is changed or sent.
	ErrUnknownEntry = errors.New("unknown entry")
	// ErrUnknownField is returned for a (mode, field) pair with no registered setter.
	ErrUnknownField = errors.New("unknown field")
	// ErrUnknownMode is returned for events or edits naming an untracked mode type.
	ErrUnknownMode = errors.New("unknown mode")
	// ErrInvalidValue is returned when a value does not match the field kind.
	ErrInvalidValue = errors.New("invalid value")
	// ErrChannelUnavailable is reported when a mutation could not be handed to
	// or delivered by the transport. The local edit is kept.
	ErrChannelUnavailable = errors.New("channel unavailable")
	// ErrRejected is reported when the backend refused a mutation.
	ErrRejected = errors.New("mutation rejected")
)
