package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSeed(t *testing.T) {
	a, err := NewSeed()
	require.NoError(t, err)
	b, err := NewSeed()
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestNewSatisfiesSource(t *testing.T) {
	r, err := New()
	require.NoError(t, err)

	var src Source = r
	n := src.Intn(10)
	assert.GreaterOrEqual(t, n, 0)
	assert.Less(t, n, 10)
}

func TestNewSeededIsRepeatable(t *testing.T) {
	a := NewSeeded(42)
	b := NewSeeded(42)
	for i := 0; i < 10; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
	}
}
