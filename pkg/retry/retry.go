// Package retry runs operations against remote nodes with a bounded number
// of attempts, retrying only the failures classified as transient.
package retry

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	// DefaultMaxAttempts is the number of attempts of DefaultPolicy.
	DefaultMaxAttempts = 3
)

var (
	// DefaultTransientSignatures are the error messages, or parts of them,
	// that identify transport failures worth retrying. They are never
	// matched against errors carrying an HTTP status code.
	DefaultTransientSignatures = []string{
		"gateway error",
		"socket disconnected",
		"socket hang up",
		"econnreset",
		"connection reset",
		"connection refused",
		"timeout",
		"eof",
	}

	// DefaultTransientStatusCodes are the status codes of the HTTP responses
	// worth retrying.
	DefaultTransientStatusCodes = []int{
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout,
	}

	// ErrInvalidMaxAttempts ...
	ErrInvalidMaxAttempts = errors.New("max attempts must be a positive number")
)

// Classifier tells whether an error is transient.
type Classifier func(err error) bool

// StatusCoder is implemented by the errors returned for unsuccessful HTTP
// responses.
type StatusCoder interface {
	StatusCode() int
}

// MatchSignatures returns a Classifier that matches errors whose message
// contains any of the given signatures, case insensitive.
func MatchSignatures(signatures ...string) Classifier {
	lowered := make([]string, 0, len(signatures))
	for _, s := range signatures {
		lowered = append(lowered, strings.ToLower(s))
	}
	return func(err error) bool {
		if err == nil {
			return false
		}
		msg := strings.ToLower(err.Error())
		for _, s := range lowered {
			if strings.Contains(msg, s) {
				return true
			}
		}
		return false
	}
}

// MatchStatusCodes returns a Classifier that matches errors wrapping a
// StatusCoder with any of the given codes.
func MatchStatusCodes(codes ...int) Classifier {
	return func(err error) bool {
		var sc StatusCoder
		if !errors.As(err, &sc) {
			return false
		}
		for _, code := range codes {
			if sc.StatusCode() == code {
				return true
			}
		}
		return false
	}
}

// DefaultClassifier classifies errors carrying an HTTP status code by
// DefaultTransientStatusCodes only, and all the others by
// DefaultTransientSignatures.
func DefaultClassifier() Classifier {
	byCode := MatchStatusCodes(DefaultTransientStatusCodes...)
	byMessage := MatchSignatures(DefaultTransientSignatures...)
	return func(err error) bool {
		var sc StatusCoder
		if errors.As(err, &sc) {
			return byCode(err)
		}
		return byMessage(err)
	}
}

// Policy defines how many times an operation is attempted and which errors
// are retried. The zero Interval means retrying right away.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
	IsTransient Classifier
}

// DefaultPolicy retries transient errors up to 3 attempts without delay.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		IsTransient: DefaultClassifier(),
	}
}

func (p Policy) validate() error {
	if p.MaxAttempts <= 0 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

func (p Policy) backOff(ctx context.Context) backoff.BackOff {
	var b backoff.BackOff = &backoff.ZeroBackOff{}
	if p.Interval > 0 {
		b = backoff.NewConstantBackOff(p.Interval)
	}
	b = backoff.WithMaxRetries(b, uint64(p.MaxAttempts-1))
	return backoff.WithContext(b, ctx)
}

// ExhaustedError is returned when every attempt failed with a transient
// error. Err is the last of them.
type ExhaustedError struct {
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("gave up after %d attempts: %s", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error {
	return e.Err
}

// Do runs op until it succeeds, fails with a non transient error or the
// attempts of the policy are exhausted. Non transient errors are returned
// as they are, while exhaustion is reported with an *ExhaustedError.
func Do[T any](
	ctx context.Context, p Policy, op func(ctx context.Context) (T, error),
) (T, error) {
	var zero T
	if err := p.validate(); err != nil {
		return zero, err
	}
	isTransient := p.IsTransient
	if isTransient == nil {
		isTransient = DefaultClassifier()
	}

	attempts := 0
	transient := false
	operation := func() (T, error) {
		attempts++
		res, err := op(ctx)
		if err == nil {
			return res, nil
		}
		transient = ctx.Err() == nil && isTransient(err)
		if !transient {
			return res, backoff.Permanent(err)
		}
		log.WithError(err).Warnf(
			"transient failure on attempt %d/%d", attempts, p.MaxAttempts,
		)
		return res, err
	}

	res, err := backoff.RetryWithData(operation, p.backOff(ctx))
	if err == nil {
		return res, nil
	}
	if transient && ctx.Err() == nil {
		return zero, &ExhaustedError{Attempts: attempts, Err: err}
	}
	return zero, err
}

// Run is like Do for operations that return only an error.
func Run(ctx context.Context, p Policy, op func(ctx context.Context) error) error {
	_, err := Do(ctx, p, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}
