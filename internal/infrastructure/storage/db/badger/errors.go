package dbbadger

import "errors"

var (
	// ErrEntryInvalidRequest ...
	ErrEntryInvalidRequest = errors.New("entry transaction id must not be null")
	// ErrEntryNotFound ...
	ErrEntryNotFound = errors.New("entry not found")
	// ErrSubscriptionInvalidRequest ...
	ErrSubscriptionInvalidRequest = errors.New("subscription id must not be null")
)
