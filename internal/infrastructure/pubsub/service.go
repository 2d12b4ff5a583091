// Package pubsub notifies webhooks of the state transitions of tracked
// transactions.
package pubsub

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sort"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/golang-jwt/jwt"
	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tronkit/pkg/circuitbreaker"
	"github.com/tdex-network/tronkit/pkg/tracker"
	"golang.org/x/sync/errgroup"
)

// DefaultRequestTimeout ...
const DefaultRequestTimeout = 15 * time.Second

// Store persists subscriptions.
type Store interface {
	AddSubscription(ctx context.Context, sub Subscription) error
	// RemoveSubscription returns ErrSubscriptionNotFound for unknown ids.
	RemoveSubscription(ctx context.Context, id string) error
	ListSubscriptions(ctx context.Context) ([]Subscription, error)
}

// Message is the JSON payload posted to webhooks.
type Message struct {
	TxID  string        `json:"txid"`
	State tracker.State `json:"state"`
	Time  int64         `json:"time"`
}

// Service implements tracker.Observer.
type Service struct {
	store  Store
	client *resty.Client
	cb     *gobreaker.CircuitBreaker
}

// NewService returns a new Service. The timeout applies to every webhook
// request and defaults to DefaultRequestTimeout.
func NewService(store Store, timeout time.Duration) (*Service, error) {
	if store == nil {
		return nil, ErrNullStore
	}
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	client := resty.New().
		SetTimeout(timeout).
		SetHeader("Content-Type", "application/json")

	return &Service{
		store:  store,
		client: client,
		cb:     circuitbreaker.NewCircuitBreaker("webhooks"),
	}, nil
}

// Subscribe registers the endpoint for the events of the given topic. If
// the same endpoint is already registered for the topic, the id of the
// existing subscription is returned.
func (s *Service) Subscribe(
	ctx context.Context, topic, endpoint, secret string,
) (string, error) {
	sub, err := NewSubscription(topic, endpoint, secret)
	if err != nil {
		return "", err
	}

	subs, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return "", err
	}
	for _, ss := range subs {
		if ss.Event == sub.Event && ss.Endpoint == sub.Endpoint {
			return ss.ID, nil
		}
	}

	if err := s.store.AddSubscription(ctx, *sub); err != nil {
		return "", err
	}
	return sub.ID, nil
}

func (s *Service) Unsubscribe(ctx context.Context, id string) error {
	return s.store.RemoveSubscription(ctx, id)
}

// ListSubscriptionsForTopic returns the subscriptions invoked for the given
// topic, including those for AnyTopic. UnspecifiedTopic lists all of them.
func (s *Service) ListSubscriptionsForTopic(
	ctx context.Context, topic string,
) ([]Subscription, error) {
	all, err := s.store.ListSubscriptions(ctx)
	if err != nil {
		return nil, err
	}

	subs := make([]Subscription, 0, len(all))
	for _, sub := range all {
		if topic == UnspecifiedTopic || sub.Event == topic ||
			sub.Event == AnyTopic {
			subs = append(subs, sub)
		}
	}
	sort.SliceStable(subs, func(i, j int) bool {
		return subs[i].ID < subs[j].ID
	})
	return subs, nil
}

// Publish posts the message to every webhook subscribed to the topic. All
// webhooks are invoked even if some fail, the first error is returned.
func (s *Service) Publish(ctx context.Context, topic, message string) error {
	subs, err := s.ListSubscriptionsForTopic(ctx, topic)
	if err != nil {
		return err
	}

	eg := &errgroup.Group{}
	for i := range subs {
		sub := subs[i]
		eg.Go(func() error { return s.doRequest(ctx, sub, message) })
	}
	return eg.Wait()
}

// ObserveTransition publishes the transition, if it has a topic. Pending
// requests are aborted once ctx is done. Failures are only logged.
func (s *Service) ObserveTransition(
	ctx context.Context, txID string, state tracker.State,
) {
	topic, ok := TopicForState(state)
	if !ok {
		return
	}

	buf, _ := json.Marshal(Message{txID, state, time.Now().Unix()})
	if err := s.Publish(ctx, topic, string(buf)); err != nil {
		log.WithError(err).Warnf("failed to notify %s of tx %s", topic, txID)
	}
}

func (s *Service) doRequest(
	ctx context.Context, sub Subscription, payload string,
) error {
	_, err := s.cb.Execute(func() (interface{}, error) {
		req := s.client.R().SetContext(ctx).SetBody(payload)
		if sub.IsSecured() {
			token, err := signToken(sub)
			if err != nil {
				return nil, err
			}
			req.SetHeader("Authorization", fmt.Sprintf("Bearer %s", token))
		}

		resp, err := req.Post(sub.Endpoint)
		if err != nil {
			return nil, err
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, &WebhookError{
				Endpoint: sub.Endpoint,
				Status:   resp.StatusCode(),
				Body:     resp.String(),
			}
		}
		return nil, nil
	})
	return err
}

// signToken returns a HS256 token signed with the secret of the
// subscription, whose subject is the topic.
func signToken(sub Subscription) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.StandardClaims{
		Subject:  sub.Event,
		IssuedAt: time.Now().Unix(),
	})
	return token.SignedString([]byte(sub.Secret))
}
