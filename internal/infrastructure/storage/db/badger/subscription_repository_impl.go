package dbbadger

import (
	"context"

	"github.com/tdex-network/tronkit/internal/infrastructure/pubsub"
	"github.com/timshannon/badgerhold/v4"
)

type subscriptionRepositoryImpl struct {
	store *badgerhold.Store
}

// NewSubscriptionRepositoryImpl initialize a badger implementation of the
// pubsub.Store
func NewSubscriptionRepositoryImpl(db *DbManager) pubsub.Store {
	return subscriptionRepositoryImpl{db.Store}
}

func (r subscriptionRepositoryImpl) AddSubscription(
	_ context.Context, sub pubsub.Subscription,
) error {
	if len(sub.ID) <= 0 {
		return ErrSubscriptionInvalidRequest
	}
	return r.store.Insert(sub.ID, &sub)
}

func (r subscriptionRepositoryImpl) RemoveSubscription(
	_ context.Context, id string,
) error {
	if len(id) <= 0 {
		return ErrSubscriptionInvalidRequest
	}
	var sub pubsub.Subscription
	if err := r.store.Get(id, &sub); err != nil {
		if err == badgerhold.ErrNotFound {
			return pubsub.ErrSubscriptionNotFound
		}
		return err
	}
	return r.store.Delete(id, sub)
}

func (r subscriptionRepositoryImpl) ListSubscriptions(
	_ context.Context,
) ([]pubsub.Subscription, error) {
	subs := make([]pubsub.Subscription, 0)
	if err := r.store.Find(&subs, nil); err != nil {
		return nil, err
	}
	return subs, nil
}
