package models

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWords_ValueScan(t *testing.T) {
	in := Words{11, math.MaxUint64}

	v, err := in.Value()
	require.NoError(t, err)
	assert.Equal(t, "11,18446744073709551615", v)

	var out Words
	require.NoError(t, out.Scan(v))
	assert.Equal(t, in, out)

	require.NoError(t, out.Scan([]byte("1,2")))
	assert.Equal(t, Words{1, 2}, out)
}

func TestWords_ScanEmpty(t *testing.T) {
	var w Words
	require.NoError(t, w.Scan(nil))
	assert.Empty(t, w)

	require.NoError(t, w.Scan(""))
	assert.Empty(t, w)

	v, err := Words{}.Value()
	require.NoError(t, err)
	assert.Equal(t, "", v)
}

func TestWords_ScanInvalid(t *testing.T) {
	var w Words
	assert.Error(t, w.Scan("1,x"))
	assert.Error(t, w.Scan(42))
}
