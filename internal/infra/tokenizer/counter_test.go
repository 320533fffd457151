package tokenizer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	require.Equal(t, 0, Estimate("   "))
	require.Equal(t, 1, Estimate("a"))
	require.Equal(t, 4, Estimate("서울 날씨 어때요"))
	require.Equal(t, 7, Estimate("how is it today"))
}

func TestCounterWithoutEncodingEstimates(t *testing.T) {
	var nilCounter *Counter
	require.Equal(t, Estimate("hello world"), nilCounter.Count("hello world"))
	require.Equal(t, Estimate("hello world"), (&Counter{}).Count("hello world"))
}
