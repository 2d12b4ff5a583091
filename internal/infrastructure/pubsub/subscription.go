package pubsub

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"github.com/tdex-network/tronkit/pkg/tracker"
)

// Topics of the events published for tracked transactions.
const (
	AnyTopic         = "*"
	UnspecifiedTopic = ""

	TxPendingTopic   = "TX_PENDING"
	TxConfirmedTopic = "TX_CONFIRMED"
	TxFailedTopic    = "TX_FAILED"
)

var topicsByState = map[tracker.State]string{
	tracker.Pending:   TxPendingTopic,
	tracker.Confirmed: TxConfirmedTopic,
	tracker.Failed:    TxFailedTopic,
}

// Topics returns the list of topics one can subscribe to.
func Topics() []string {
	return []string{AnyTopic, TxPendingTopic, TxConfirmedTopic, TxFailedTopic}
}

// TopicForState returns the topic of the event published when a
// transaction reaches the given state, if any.
func TopicForState(state tracker.State) (string, bool) {
	topic, ok := topicsByState[state]
	return topic, ok
}

func isValidTopic(topic string) bool {
	for _, t := range Topics() {
		if t == topic {
			return true
		}
	}
	return false
}

// Subscription is a webhook invoked for every event of a topic.
type Subscription struct {
	ID       string `json:"id"`
	Event    string `json:"event"`
	Endpoint string `json:"endpoint"`
	Secret   string `json:"secret,omitempty"`
}

func NewSubscription(event, endpoint, secret string) (*Subscription, error) {
	event = strings.ToUpper(strings.TrimSpace(event))
	if !isValidTopic(event) {
		return nil, ErrInvalidTopic
	}
	u, err := url.ParseRequestURI(endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, ErrInvalidEndpoint
	}
	id := uuid.New().String()
	return &Subscription{id, event, endpoint, secret}, nil
}

func NewSubscriptionFromBytes(buf []byte) (*Subscription, error) {
	sub := &Subscription{}
	if err := json.Unmarshal(buf, sub); err != nil {
		return nil, err
	}
	return sub, nil
}

func (s *Subscription) Topic() string {
	return s.Event
}

func (s *Subscription) IsSecured() bool {
	return len(s.Secret) > 0
}

func (s *Subscription) Serialize() []byte {
	b, _ := json.Marshal(*s)
	return b
}

func (s *Subscription) String() string {
	return fmt.Sprintf("%s %s -> %s", s.ID, s.Event, s.Endpoint)
}
