package stats

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tronkit/pkg/tracker"
)

func TestObserveRequest(t *testing.T) {
	m := NewMetrics()

	m.ObserveRequest("/wallet/getnowblock", 10*time.Millisecond, nil)
	m.ObserveRequest("/wallet/getnowblock", 20*time.Millisecond, nil)
	m.ObserveRequest("/wallet/getnowblock", time.Second, errors.New("503"))

	require.Equal(t, float64(2), testutil.ToFloat64(
		m.requests.WithLabelValues("/wallet/getnowblock", resultOk),
	))
	require.Equal(t, float64(1), testutil.ToFloat64(
		m.requests.WithLabelValues("/wallet/getnowblock", resultError),
	))
	require.Equal(t, 1, testutil.CollectAndCount(m.latency))
}

func TestObserveTransition(t *testing.T) {
	m := NewMetrics()
	ctx := context.Background()

	m.ObserveTransition(ctx, "a", tracker.Submitting)
	m.ObserveTransition(ctx, "a", tracker.Pending)
	m.ObserveTransition(ctx, "b", tracker.Pending)
	m.ObserveTransition(ctx, "a", tracker.Confirmed)

	require.Equal(t, float64(2), testutil.ToFloat64(
		m.transitions.WithLabelValues(tracker.Pending.String()),
	))
	require.Equal(t, float64(1), testutil.ToFloat64(
		m.transitions.WithLabelValues(tracker.Confirmed.String()),
	))
	require.Equal(t, 3, testutil.CollectAndCount(m.transitions))
}

func TestDump(t *testing.T) {
	m := NewMetrics()
	m.ObserveTransition(context.Background(), "a", tracker.Failed)

	buf := &bytes.Buffer{}
	require.NoError(t, m.Dump(buf))
	require.Contains(t, buf.String(), "tronkit_tx_transitions_total")

	path := filepath.Join(t.TempDir(), "stats")
	require.NoError(t, m.DumpToFile(path))
	require.NoError(t, m.DumpToFile(path))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, 2, bytes.Count(content, []byte("tronkit_tx_transitions_total")))
}
