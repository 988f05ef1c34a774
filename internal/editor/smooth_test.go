package editor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecimationFactorBounds(t *testing.T) {
	assert.Equal(t, 11, DecimationFactor(0))
	assert.Equal(t, 1, DecimationFactor(1))
	assert.Equal(t, 6, DecimationFactor(0.5))

	// out-of-range input clamps
	assert.Equal(t, 11, DecimationFactor(-3))
	assert.Equal(t, 1, DecimationFactor(2))
}

func TestDecimateKeepsEveryNth(t *testing.T) {
	data := testSeries(100)

	out := Decimate(data, 10)
	// indices 0,10,...,90 plus the forced final point
	require.Len(t, out, 11)
	assert.Equal(t, data[0], out[0])
	assert.Equal(t, data[90], out[9])
	assert.Equal(t, data[99], out[10])
}

func TestDecimateAlwaysIncludesFinalPoint(t *testing.T) {
	for _, n := range []int{2, 7, 23, 252} {
		data := testSeries(n)
		for factor := 1; factor <= 11; factor++ {
			out := Decimate(data, factor)
			require.NotEmpty(t, out)
			assert.Equal(t, data[n-1], out[len(out)-1],
				"n=%d factor=%d", n, factor)
		}
	}
}

func TestDecimateFactorOneIsIdentity(t *testing.T) {
	data := testSeries(40)
	out := Decimate(data, 1)
	assert.Equal(t, data, out)
}

func TestDecimateNoDuplicateFinalPoint(t *testing.T) {
	data := testSeries(21) // last index 20 is a multiple of the stride
	out := Decimate(data, 10)
	assert.Len(t, out, 3) // 0, 10, 20
}

func TestDecimateEmpty(t *testing.T) {
	assert.Nil(t, Decimate(nil, 5))
}
