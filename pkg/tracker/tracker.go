// Package tracker drives a signed transaction through its lifecycle, from
// broadcast to confirmation, on top of an explorer.Service.
package tracker

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"github.com/tdex-network/tronkit/pkg/retry"
	"github.com/tdex-network/tronkit/pkg/transaction"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultPollInterval is used by WaitUntilConfirmed when no positive
	// interval is given.
	DefaultPollInterval = 3 * time.Second
)

// Repository persists the state transitions of tracked transactions.
type Repository interface {
	SaveEntry(ctx context.Context, entry Entry) error
	GetEntry(ctx context.Context, txID string) (*Entry, error)
	ListEntries(ctx context.Context) ([]Entry, error)
}

// Observer is notified of every state transition. The tracker waits for
// ObserveTransition to return, so it must return once ctx is done.
type Observer interface {
	ObserveTransition(ctx context.Context, txID string, state State)
}

// Opts is the struct given to NewTracker method. The zero RetryPolicy is
// replaced by retry.DefaultPolicy. Repository and Observer are optional.
type Opts struct {
	Explorer    explorer.Service
	RetryPolicy retry.Policy
	Repository  Repository
	Observer    Observer
}

// Tracker has no state of its own, any number of transactions can be tracked
// concurrently with the same instance.
type Tracker struct {
	explorer explorer.Service
	policy   retry.Policy
	repo     Repository
	observer Observer
}

// NewTracker returns a new Tracker.
func NewTracker(opts Opts) (*Tracker, error) {
	if opts.Explorer == nil {
		return nil, ErrNullExplorer
	}
	policy := opts.RetryPolicy
	if policy.MaxAttempts == 0 {
		policy = retry.DefaultPolicy()
	}
	if policy.MaxAttempts < 0 {
		return nil, retry.ErrInvalidMaxAttempts
	}

	return &Tracker{
		explorer: opts.Explorer,
		policy:   policy,
		repo:     opts.Repository,
		observer: opts.Observer,
	}, nil
}

// Submit broadcasts the signed transaction. Transient transport failures are
// retried according to the retry policy, and reported with a
// *SubmissionError once exhausted. A rejection by the node is never retried
// and is reported with a *SubmissionRejected.
func (t *Tracker) Submit(
	ctx context.Context, tx *transaction.Record,
) (*Outcome, error) {
	if tx == nil {
		return nil, ErrNullTransaction
	}
	if err := tx.Verify(); err != nil {
		return nil, err
	}
	if !tx.IsSigned() {
		return nil, ErrUnsignedTransaction
	}

	t.record(ctx, &Outcome{TxID: tx.ID, State: Submitting}, "")
	log.Debugf("submitting tx %s", tx.ID)

	attempts := 0
	res, err := retry.Do(
		ctx, t.policy,
		func(ctx context.Context) (*explorer.BroadcastResult, error) {
			attempts++
			return t.explorer.BroadcastTransaction(ctx, tx)
		},
	)
	if err != nil {
		t.record(ctx, &Outcome{TxID: tx.ID, State: Failed}, err.Error())
		return nil, &SubmissionError{TxID: tx.ID, Attempts: attempts, Err: err}
	}

	if !res.Result {
		rejection := &SubmissionRejected{
			TxID:    tx.ID,
			Code:    res.Code,
			Message: res.DecodedMessage(),
		}
		t.record(ctx, &Outcome{TxID: tx.ID, State: Failed}, rejection.Error())
		return nil, rejection
	}

	out := &Outcome{TxID: tx.ID, State: Pending}
	t.record(ctx, out, "")
	log.Debugf("tx %s accepted by node", tx.ID)
	return out, nil
}

// Check looks up the execution info of the transaction once. The outcome is
// NotFound if the info is not available yet, Confirmed if the transaction
// succeeded. A failed execution returns a Failed outcome together with an
// *ExecutionFailedError.
func (t *Tracker) Check(ctx context.Context, txID string) (*Outcome, error) {
	if len(txID) <= 0 {
		return nil, ErrNullTxID
	}

	info, err := retry.Do(
		ctx, t.policy,
		func(ctx context.Context) (*explorer.TransactionInfo, error) {
			return t.explorer.GetTransactionInfo(ctx, txID)
		},
	)
	if err != nil {
		if errors.Is(err, explorer.ErrTransactionNotFound) {
			return &Outcome{TxID: txID, State: NotFound}, nil
		}
		return nil, err
	}

	if !info.Succeeded() {
		out := &Outcome{TxID: txID, State: Failed, Info: info}
		failure := &ExecutionFailedError{
			TxID:    txID,
			Result:  info.Receipt.Result,
			Message: info.FailureMessage(),
			Info:    info,
		}
		t.record(ctx, out, failure.Message)
		return out, failure
	}

	out := &Outcome{TxID: txID, State: Confirmed, Info: info}
	t.record(ctx, out, "")
	return out, nil
}

// WaitUntilConfirmed polls the execution info of the transaction every
// interval until it's available. There's no timeout, the loop ends only
// when the context is done, in which case the outcome is Cancelled and the
// error is nil.
//
// The transaction moves to Pending at the first unsuccessful lookup, unless
// it's already stored as Pending.
func (t *Tracker) WaitUntilConfirmed(
	ctx context.Context, txID string, interval time.Duration,
) (*Outcome, error) {
	if len(txID) <= 0 {
		return nil, ErrNullTxID
	}
	return t.waitUntilConfirmed(ctx, txID, interval, t.isPending(ctx, txID))
}

func (t *Tracker) waitUntilConfirmed(
	ctx context.Context, txID string, interval time.Duration, pending bool,
) (*Outcome, error) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Debugf("stopped waiting for tx %s", txID)
			return &Outcome{TxID: txID, State: Cancelled}, nil
		case <-timer.C:
		}

		out, err := t.Check(ctx, txID)
		if ctx.Err() != nil {
			log.Debugf("stopped waiting for tx %s", txID)
			return &Outcome{TxID: txID, State: Cancelled}, nil
		}
		if err != nil {
			return out, err
		}
		if out.State != NotFound {
			return out, nil
		}

		if !pending {
			t.record(ctx, &Outcome{TxID: txID, State: Pending}, "")
			pending = true
		}
		log.Debugf("tx %s not yet confirmed, next check in %s", txID, interval)
		timer.Reset(interval)
	}
}

// SubmitAndWait submits the transaction and waits for its confirmation.
func (t *Tracker) SubmitAndWait(
	ctx context.Context, tx *transaction.Record, interval time.Duration,
) (*Outcome, error) {
	out, err := t.Submit(ctx, tx)
	if err != nil {
		return nil, err
	}
	return t.waitUntilConfirmed(ctx, out.TxID, interval, true)
}

// WaitAll waits for the confirmation of all the given transactions
// concurrently. Outcomes are in the same order of the ids. The first error
// is returned once all waits are over, the other transactions keep being
// tracked in the meantime.
func (t *Tracker) WaitAll(
	ctx context.Context, txIDs []string, interval time.Duration,
) ([]*Outcome, error) {
	outcomes := make([]*Outcome, len(txIDs))

	g := &errgroup.Group{}
	for i, txID := range txIDs {
		i, txID := i, txID
		g.Go(func() error {
			out, err := t.WaitUntilConfirmed(ctx, txID, interval)
			outcomes[i] = out
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

// History returns the entries of all the transactions ever tracked.
func (t *Tracker) History(ctx context.Context) ([]Entry, error) {
	if t.repo == nil {
		return nil, ErrNullRepository
	}
	return t.repo.ListEntries(ctx)
}

// Entry returns the last known state of the given transaction.
func (t *Tracker) Entry(ctx context.Context, txID string) (*Entry, error) {
	if t.repo == nil {
		return nil, ErrNullRepository
	}
	return t.repo.GetEntry(ctx, txID)
}

// isPending returns whether the last stored state of the transaction is
// Pending.
func (t *Tracker) isPending(ctx context.Context, txID string) bool {
	if t.repo == nil {
		return false
	}
	entry, err := t.repo.GetEntry(ctx, txID)
	if err != nil || entry == nil {
		return false
	}
	return entry.State == Pending
}

// record notifies the observer and stores the transition, if a repository
// is set. Storage failures are only logged, they never affect the
// lifecycle.
func (t *Tracker) record(ctx context.Context, out *Outcome, msg string) {
	if t.observer != nil {
		t.observer.ObserveTransition(ctx, out.TxID, out.State)
	}
	if t.repo == nil {
		return
	}
	if err := t.repo.SaveEntry(ctx, newEntry(out, msg)); err != nil {
		log.WithError(err).Warnf(
			"failed to store state %s of tx %s", out.State, out.TxID,
		)
	}
}
