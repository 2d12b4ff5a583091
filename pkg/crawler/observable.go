package crawler

import (
	"context"
	"errors"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tronkit/pkg/address"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"golang.org/x/time/rate"
)

// TransactionObservable watches a transaction until it's confirmed or
// failed. A TransactionPending event is emitted at every observation the
// transaction info is not available.
type TransactionObservable struct {
	TxID string
}

func NewTransactionObservable(txid string) Observable {
	return &TransactionObservable{txid}
}

func (t *TransactionObservable) observe(
	explorerSvc explorer.Service, rateLimiter *rate.Limiter,
) (Event, error) {
	if err := rateLimiter.Wait(context.Background()); err != nil {
		return nil, err
	}

	info, err := explorerSvc.GetTransactionInfo(context.Background(), t.TxID)
	if err != nil {
		if errors.Is(err, explorer.ErrTransactionNotFound) {
			return TransactionEvent{TxID: t.TxID, EventType: TransactionPending}, nil
		}
		return nil, err
	}

	event := TransactionEvent{
		TxID:        t.TxID,
		EventType:   TransactionConfirmed,
		BlockNumber: info.BlockNumber,
		BlockTime:   info.BlockTimestamp,
		Fee:         info.Fee,
	}
	if !info.Succeeded() {
		event.EventType = TransactionFailed
		event.Message = info.FailureMessage()
	}
	return event, nil
}

func (t *TransactionObservable) key() string {
	return t.TxID
}

// AccountObservable watches the balance of an account, an event is emitted
// only when it changes.
type AccountObservable struct {
	Address address.Address

	lastBalance int64
	observed    bool
}

func NewAccountObservable(addr address.Address) Observable {
	return &AccountObservable{Address: addr}
}

func (a *AccountObservable) observe(
	explorerSvc explorer.Service, rateLimiter *rate.Limiter,
) (Event, error) {
	if err := rateLimiter.Wait(context.Background()); err != nil {
		return nil, err
	}

	balance, err := explorerSvc.GetBalance(context.Background(), a.Address)
	if err != nil {
		return nil, err
	}
	if a.observed && balance == a.lastBalance {
		return nil, nil
	}

	a.observed = true
	a.lastBalance = balance
	return AccountEvent{Address: a.Address.String(), Balance: balance}, nil
}

func (a *AccountObservable) key() string {
	return a.Address.String()
}

type observableHandler struct {
	observable  Observable
	explorerSvc explorer.Service
	wg          *sync.WaitGroup
	ticker      *time.Ticker
	eventChan   chan Event
	errChan     chan error
	stopChan    chan struct{}
	stopOnce    *sync.Once
	rateLimiter *rate.Limiter
	onDone      func()
}

func newObservableHandler(
	observable Observable,
	explorerSvc explorer.Service,
	wg *sync.WaitGroup,
	interval time.Duration,
	eventChan chan Event,
	errChan chan error,
	rateLimiter *rate.Limiter,
	onDone func(),
) *observableHandler {
	return &observableHandler{
		observable:  observable,
		explorerSvc: explorerSvc,
		wg:          wg,
		ticker:      time.NewTicker(interval),
		eventChan:   eventChan,
		errChan:     errChan,
		stopChan:    make(chan struct{}),
		stopOnce:    &sync.Once{},
		rateLimiter: rateLimiter,
		onDone:      onDone,
	}
}

// start must be called after adding the handler to the wait group.
func (oh *observableHandler) start() {
	defer oh.wg.Done()
	defer oh.ticker.Stop()
	oh.logAction("start")

	for {
		select {
		case <-oh.ticker.C:
			event, err := oh.observable.observe(oh.explorerSvc, oh.rateLimiter)
			if err != nil {
				if !oh.publishError(err) {
					return
				}
				continue
			}
			if event == nil {
				continue
			}
			if !oh.publishEvent(event) {
				return
			}
			if event.Type().IsFinal() {
				oh.logAction("done")
				oh.onDone()
				return
			}
		case <-oh.stopChan:
			return
		}
	}
}

func (oh *observableHandler) stop() {
	oh.stopOnce.Do(func() {
		oh.logAction("stop")
		close(oh.stopChan)
	})
}

func (oh *observableHandler) publishEvent(event Event) bool {
	select {
	case oh.eventChan <- event:
		return true
	case <-oh.stopChan:
		return false
	}
}

func (oh *observableHandler) publishError(err error) bool {
	select {
	case oh.errChan <- err:
		return true
	case <-oh.stopChan:
		return false
	}
}

func (oh *observableHandler) logAction(action string) {
	obs := oh.observable
	switch obs.(type) {
	case *AccountObservable:
		log.Debugf("%s observing account: %v", action, obs.key())
	case *TransactionObservable:
		log.Debugf("%s observing tx: %v", action, obs.key())
	}
}
