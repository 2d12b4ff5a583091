// Package trongrid implements explorer.Service and explorer.Builder over the
// HTTP API exposed by TRON full and solidity nodes, like TronGrid.
package trongrid

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sony/gobreaker"
	"github.com/tdex-network/tronkit/pkg/circuitbreaker"
	"github.com/tdex-network/tronkit/pkg/explorer"
	"go.uber.org/ratelimit"
)

const (
	// DefaultEndpoint is the public TronGrid mainnet endpoint.
	DefaultEndpoint = "https://api.trongrid.io"
	// DefaultRequestsPerSecond is the request rate allowed to keys-less
	// clients.
	DefaultRequestsPerSecond = 10
	// DefaultTimeout ...
	DefaultTimeout = 30 * time.Second

	apiKeyHeader = "TRON-PRO-API-KEY"
)

var (
	// ErrInvalidEndpoint ...
	ErrInvalidEndpoint = errors.New("endpoint must be a valid http(s) url")
)

// Service is a TRON node client.
type Service interface {
	explorer.Service
	explorer.Builder
}

// RequestObserver is notified of the result of every request sent to the
// node.
type RequestObserver interface {
	ObserveRequest(endpoint string, elapsed time.Duration, err error)
}

// Opts is the struct given to NewService method. SolidityNodeURL defaults
// to FullNodeURL.
type Opts struct {
	FullNodeURL       string
	SolidityNodeURL   string
	APIKey            string
	RequestsPerSecond int
	Timeout           time.Duration
	Observer          RequestObserver
}

func (o *Opts) validate() error {
	if len(o.FullNodeURL) <= 0 {
		o.FullNodeURL = DefaultEndpoint
	}
	if len(o.SolidityNodeURL) <= 0 {
		o.SolidityNodeURL = o.FullNodeURL
	}
	for _, u := range []string{o.FullNodeURL, o.SolidityNodeURL} {
		if !strings.HasPrefix(u, "http://") && !strings.HasPrefix(u, "https://") {
			return ErrInvalidEndpoint
		}
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return nil
}

type service struct {
	fullNode     *resty.Client
	solidityNode *resty.Client
	limiter      ratelimit.Limiter
	cb           *gobreaker.CircuitBreaker
	observer     RequestObserver
}

// NewService returns a TronGrid client as a Service interface. Requests are
// rate limited and go through a circuit breaker. No retry is applied here,
// callers compose their own retry policy.
func NewService(opts Opts) (Service, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	limiter := ratelimit.NewUnlimited()
	if opts.RequestsPerSecond > 0 {
		limiter = ratelimit.New(opts.RequestsPerSecond)
	}

	return &service{
		fullNode:     newClient(opts.FullNodeURL, opts.APIKey, opts.Timeout),
		solidityNode: newClient(opts.SolidityNodeURL, opts.APIKey, opts.Timeout),
		limiter:      limiter,
		cb:           circuitbreaker.NewCircuitBreaker(opts.FullNodeURL),
		observer:     opts.Observer,
	}, nil
}

func newClient(baseURL, apiKey string, timeout time.Duration) *resty.Client {
	client := resty.New().
		SetBaseURL(strings.TrimSuffix(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetHeader("Content-Type", "application/json")
	if len(apiKey) > 0 {
		client.SetHeader(apiKeyHeader, apiKey)
	}
	return client
}

// post sends the request and returns the raw body of a 2xx response.
func (s *service) post(
	ctx context.Context, client *resty.Client, endpoint string, body interface{},
) ([]byte, error) {
	s.limiter.Take()

	start := time.Now()
	res, err := s.cb.Execute(func() (interface{}, error) {
		req := client.R().SetContext(ctx)
		if body != nil {
			req.SetBody(body)
		}
		resp, err := req.Post(endpoint)
		if err != nil {
			return nil, err
		}
		if resp.IsError() {
			return nil, &explorer.HTTPStatusError{
				Endpoint: endpoint,
				Code:     resp.StatusCode(),
				Status:   resp.Status(),
				Body:     strings.TrimSpace(resp.String()),
			}
		}
		return resp.Body(), nil
	})
	if s.observer != nil {
		s.observer.ObserveRequest(endpoint, time.Since(start), err)
	}
	if err != nil {
		return nil, err
	}
	return res.([]byte), nil
}

// decode unmarshals body into v. It returns false for empty objects, which
// the node returns for missing resources.
func decode(endpoint string, body []byte, v interface{}) (bool, error) {
	fields := map[string]json.RawMessage{}
	if err := json.Unmarshal(body, &fields); err != nil {
		return false, &explorer.MalformedResponseError{
			Endpoint: endpoint, Body: string(body), Err: err,
		}
	}
	if len(fields) == 0 {
		return false, nil
	}
	if raw, ok := fields["Error"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil {
			msg = string(raw)
		}
		return false, &explorer.NodeError{Endpoint: endpoint, Message: msg}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return false, &explorer.MalformedResponseError{
			Endpoint: endpoint, Body: string(body), Err: err,
		}
	}
	return true, nil
}
