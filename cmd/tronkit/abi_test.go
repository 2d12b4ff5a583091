package main

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSplitTypes(t *testing.T) {
	tests := []struct {
		str      string
		expected []string
	}{
		{"", []string{}},
		{"address", []string{"address"}},
		{"address, uint256", []string{"address", "uint256"}},
		{"uint256[2],bytes,", []string{"uint256[2]", "bytes"}},
	}

	for _, tt := range tests {
		t.Run(tt.str, func(t *testing.T) {
			require.Equal(t, tt.expected, splitTypes(tt.str))
		})
	}
}
