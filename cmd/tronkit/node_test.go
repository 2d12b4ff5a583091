package main

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/tdex-network/tronkit/pkg/mathutil"
)

func TestParseTokenAmount(t *testing.T) {
	amount, err := parseTokenAmount("1000", 0)
	require.NoError(t, err)
	require.Equal(t, int64(1000), amount)

	amount, err = parseTokenAmount("1.5", 6)
	require.NoError(t, err)
	require.Equal(t, int64(1500000), amount)

	_, err = parseTokenAmount("1.5", 0)
	require.ErrorIs(t, err, mathutil.ErrTooManyDecimals)

	_, err = parseTokenAmount("10000000000", 18)
	require.ErrorIs(t, err, mathutil.ErrAmountOverflow)
}
