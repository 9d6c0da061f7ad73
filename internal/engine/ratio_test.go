package engine

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequired_Scenario(t *testing.T) {
	// supply=1000, weight=40, divisor=10 → required=4000
	got, err := Required(decimal.NewFromInt(1000), 40, 10)
	require.NoError(t, err)
	assert.True(t, got.Equal(decimal.NewFromInt(4000)), "got %s", got)
}

func TestRequired_Deterministic(t *testing.T) {
	supply := decimal.RequireFromString("12345.6789")
	first, err := Required(supply, 33, 7)
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		again, err := Required(supply, 33, 7)
		require.NoError(t, err)
		assert.True(t, first.Equal(again), "iteration %d: %s != %s", i, first, again)
	}
}

func TestRequired_Linear(t *testing.T) {
	supply := decimal.NewFromInt(500)
	base, err := Required(supply, 10, 10)
	require.NoError(t, err)

	doubleSupply, err := Required(supply.Mul(decimal.NewFromInt(2)), 10, 10)
	require.NoError(t, err)
	assert.True(t, doubleSupply.Equal(base.Mul(decimal.NewFromInt(2))))

	doubleWeight, err := Required(supply, 20, 10)
	require.NoError(t, err)
	assert.True(t, doubleWeight.Equal(base.Mul(decimal.NewFromInt(2))))
}

func TestRequired_InvalidInput(t *testing.T) {
	tests := []struct {
		name    string
		weight  int64
		divisor int64
	}{
		{name: "zero divisor", weight: 10, divisor: 0},
		{name: "negative divisor", weight: 10, divisor: -5},
		{name: "negative weight", weight: -1, divisor: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Required(decimal.NewFromInt(1000), tt.weight, tt.divisor)
			var cfgErr *ConfigError
			require.Error(t, err)
			assert.True(t, errors.As(err, &cfgErr))
		})
	}
}

func TestRequired_ZeroSupply(t *testing.T) {
	got, err := Required(decimal.Zero, 40, 10)
	require.NoError(t, err)
	assert.True(t, got.IsZero())
}
