package crawler

import (
	"sync"
	"time"

	"github.com/tdex-network/tronkit/pkg/explorer"
	"golang.org/x/time/rate"
)

const (
	// DefaultInterval ...
	DefaultInterval = 3 * time.Second

	eventQueueMaxSize = 100
	errorQueueMaxSize = 10
)

type blockchainCrawler struct {
	interval     time.Duration
	explorerSvc  explorer.Service
	errChan      chan error
	eventChan    chan Event
	observables  map[string]*observableHandler
	errorHandler func(err error)
	mutex        *sync.RWMutex
	wg           *sync.WaitGroup
	rateLimiter  *rate.Limiter
}

// Opts defines the parameters needed for creating a crawler service with
// NewService method. Zero RequestsPerSecond means no rate limit.
type Opts struct {
	ExplorerSvc       explorer.Service
	Interval          time.Duration
	RequestsPerSecond int
	ErrorHandler      func(err error)
}

// NewService returns a crawler that is ready to watch for blockchain
// activities. Use Start and Stop methods to manage it.
func NewService(opts Opts) Service {
	interval := opts.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RequestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(opts.RequestsPerSecond), 1)
	}
	errorHandler := opts.ErrorHandler
	if errorHandler == nil {
		errorHandler = func(error) {}
	}

	return &blockchainCrawler{
		interval:     interval,
		explorerSvc:  opts.ExplorerSvc,
		errChan:      make(chan error, errorQueueMaxSize),
		eventChan:    make(chan Event, eventQueueMaxSize),
		observables:  map[string]*observableHandler{},
		errorHandler: errorHandler,
		mutex:        &sync.RWMutex{},
		wg:           &sync.WaitGroup{},
		rateLimiter:  limiter,
	}
}

// Start forwards the errors of the observations to the error handler until
// the crawler is stopped.
func (bc *blockchainCrawler) Start() {
	for err := range bc.errChan {
		bc.errorHandler(err)
	}
}

// Stop stops all observations and emits a QuitEvent. The event channel must
// be drained for Stop to return.
func (bc *blockchainCrawler) Stop() {
	bc.mutex.Lock()
	handlers := bc.observables
	bc.observables = map[string]*observableHandler{}
	bc.mutex.Unlock()

	for _, obsHandler := range handlers {
		obsHandler.stop()
	}
	bc.wg.Wait()
	bc.eventChan <- QuitEvent{}
	close(bc.errChan)
}

// GetEventChannel returns Event channel which can be used to "listen" to
// blockchain events
func (bc *blockchainCrawler) GetEventChannel() chan Event {
	return bc.eventChan
}

// AddObservable adds new Observable to the list of Observables to be "watched
// over" only if the same Observable is not already in the list
func (bc *blockchainCrawler) AddObservable(observable Observable) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	key := observable.key()
	if _, ok := bc.observables[key]; ok {
		return
	}

	var obsHandler *observableHandler
	obsHandler = newObservableHandler(
		observable,
		bc.explorerSvc,
		bc.wg,
		bc.interval,
		bc.eventChan,
		bc.errChan,
		bc.rateLimiter,
		func() { bc.forget(key, obsHandler) },
	)
	bc.observables[key] = obsHandler
	bc.wg.Add(1)
	go obsHandler.start()
}

// RemoveObservable stops "watching" given Observable
func (bc *blockchainCrawler) RemoveObservable(observable Observable) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if obsHandler, ok := bc.observables[observable.key()]; ok {
		obsHandler.stop()
		delete(bc.observables, observable.key())
	}
}

// IsObserving returns whether the given Observable is being watched.
func (bc *blockchainCrawler) IsObserving(observable Observable) bool {
	bc.mutex.RLock()
	defer bc.mutex.RUnlock()

	_, ok := bc.observables[observable.key()]
	return ok
}

// forget removes the handler of an observable that is done.
func (bc *blockchainCrawler) forget(key string, obsHandler *observableHandler) {
	bc.mutex.Lock()
	defer bc.mutex.Unlock()

	if bc.observables[key] == obsHandler {
		delete(bc.observables, key)
	}
}
