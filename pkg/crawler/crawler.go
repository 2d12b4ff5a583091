// Package crawler periodically watches the state of transactions and
// accounts on the TRON blockchain and reports changes through a channel
// of events.
package crawler

import (
	"github.com/tdex-network/tronkit/pkg/explorer"
	"golang.org/x/time/rate"
)

// Event are emitted through a channel during observation.
type Event interface {
	Type() EventType
}

// Observable represent object that can be observe on the blockchain.
// Observing returns a nil event if there's nothing to report.
type Observable interface {
	observe(explorerSvc explorer.Service, rateLimiter *rate.Limiter) (Event, error)
	key() string
}

// Service is the interface for Crawler
type Service interface {
	Start()
	Stop()
	AddObservable(observable Observable)
	RemoveObservable(observable Observable)
	IsObserving(observable Observable) bool
	GetEventChannel() chan Event
}
