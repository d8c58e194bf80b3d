package distance

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatrixEstimatorLookups(t *testing.T) {
	m := NewMatrix(Config{
		Matrix: map[string]map[string]float64{
			"toledo_oh": {"lansing_mi": 110},
		},
	})
	ctx := context.Background()

	leg, err := m.Estimate(ctx, "toledo_oh", "lansing_mi")
	require.NoError(t, err)
	assert.Equal(t, 110.0, leg.Miles)
	assert.InDelta(t, 120.0, leg.Minutes, 0.01)

	// Symmetric lookup.
	back, err := m.Estimate(ctx, "lansing_mi", "toledo_oh")
	require.NoError(t, err)
	assert.Equal(t, 110.0, back.Miles)

	// Unknown lanes fall back to the default.
	far, err := m.Estimate(ctx, "nowhere", "elsewhere")
	require.NoError(t, err)
	assert.Equal(t, 250.0, far.Miles)

	// Zero distance for identical tokens.
	same, err := m.Estimate(ctx, "toledo_oh", "toledo_oh")
	require.NoError(t, err)
	assert.Zero(t, same.Miles)
}

func TestMatrixEstimatorHonorsContext(t *testing.T) {
	m := NewMatrix(Config{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := m.Estimate(ctx, "a", "b")
	assert.Error(t, err)
}
