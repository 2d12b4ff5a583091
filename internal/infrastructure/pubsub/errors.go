package pubsub

import (
	"errors"
	"fmt"
)

var (
	// ErrNullStore ...
	ErrNullStore = errors.New("subscription store must not be null")
	// ErrInvalidTopic is returned when subscribing to an unknown topic.
	ErrInvalidTopic = errors.New("topic is invalid")
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New(
		"invalid webhook endpoint, must be a valid http(s) URI",
	)
	// ErrSubscriptionNotFound ...
	ErrSubscriptionNotFound = errors.New("subscription not found")
)

// WebhookError is returned when an endpoint doesn't reply with 200 OK.
type WebhookError struct {
	Endpoint string
	Status   int
	Body     string
}

func (e *WebhookError) Error() string {
	return fmt.Sprintf(
		"webhook %s replied with status %d: %s", e.Endpoint, e.Status, e.Body,
	)
}
