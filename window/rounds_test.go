package window

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInferRounds(t *testing.T) {
	rounds, alts, err := InferRounds(264264)
	require.NoError(t, err)
	assert.Equal(t, 1001, rounds)
	assert.Empty(t, alts)

	rounds, alts, err = InferRounds(1000)
	require.NoError(t, err)
	assert.Equal(t, 4, rounds)
	assert.Contains(t, alts, 5)
	assert.Contains(t, alts, 10)
	assert.Contains(t, alts, 1000)
	assert.NotContains(t, alts, 4)
}

func TestInferRoundsTriesCandidateAndSuccessor(t *testing.T) {
	rounds, alts, err := InferRounds(101 * 3)
	require.NoError(t, err)
	assert.Equal(t, 3, rounds)
	assert.Equal(t, []int{101}, alts)
}

func TestInferRoundsFails(t *testing.T) {
	_, _, err := InferRounds(10007)
	require.ErrorIs(t, err, ErrConfiguration)
	var cerr *ConfigError
	require.True(t, errors.As(err, &cerr))
	assert.Equal(t, 10007, cerr.Value)
}

func TestCheckRounds(t *testing.T) {
	require.NoError(t, checkRounds(1000, 10))
	require.NoError(t, checkRounds(7, 7))

	err := checkRounds(1000, 7)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "does not divide 1000")

	require.ErrorIs(t, checkRounds(10, 0), ErrConfiguration)
}
