package progression

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevel_Scenario(t *testing.T) {
	xp := uint64(450)

	level := Level(xp)
	require.Equal(t, 2, level)
	assert.Equal(t, uint64(400), LevelThresholdXP(level))
	assert.Equal(t, uint64(900), NextLevelThresholdXP(level))
	assert.InDelta(t, 10.0, LevelProgress(xp), 1e-9)
	assert.Equal(t, uint64(450), XPToNextLevel(xp))
}

func TestLevel_KnownValues(t *testing.T) {
	tests := []struct {
		xp    uint64
		level int
	}{
		{0, 0},
		{99, 0},
		{100, 1},
		{399, 1},
		{400, 2},
		{899, 2},
		{900, 3},
		{10_000, 10},
		{1_000_000, 100},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.level, Level(tc.xp), "xp=%d", tc.xp)
	}
}

func TestLevel_Monotonic(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for i := 0; i < 10_000; i++ {
		a := rng.Uint64() >> uint(rng.Intn(64))
		b := rng.Uint64() >> uint(rng.Intn(64))
		if a > b {
			a, b = b, a
		}
		require.LessOrEqual(t, Level(a), Level(b), "xp1=%d xp2=%d", a, b)
	}

	prev := 0
	for xp := uint64(0); xp < 50_000; xp++ {
		l := Level(xp)
		require.GreaterOrEqual(t, l, prev)
		prev = l
	}
}

func TestLevel_ThresholdRoundTrip(t *testing.T) {
	for level := 0; level <= 5_000; level++ {
		threshold := LevelThresholdXP(level)
		require.Equal(t, level, Level(threshold), "level=%d", level)
		if level > 0 {
			require.Less(t, Level(threshold-1), level, "level=%d", level)
		}
		require.Greater(t, NextLevelThresholdXP(level), threshold)
	}
}

func TestLevelProgress_Bounds(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	check := func(xp uint64) {
		p := LevelProgress(xp)
		require.GreaterOrEqual(t, p, 0.0, "xp=%d", xp)
		require.Less(t, p, 100.0, "xp=%d", xp)
	}

	for xp := uint64(0); xp < 20_000; xp++ {
		check(xp)
	}
	for i := 0; i < 10_000; i++ {
		check(rng.Uint64() >> 8)
	}
	check(LevelThresholdXP(1000) - 1)
}

func TestCurve_CustomBase(t *testing.T) {
	c := Curve{Base: 50}
	assert.Equal(t, 2, c.Level(200))
	assert.Equal(t, uint64(200), c.LevelThresholdXP(2))
	assert.Equal(t, uint64(450), c.NextLevelThresholdXP(2))

	var zero Curve
	assert.Equal(t, Level(450), zero.Level(450))
}

func TestCurve_LargeXP(t *testing.T) {
	c := Curve{Base: 1}
	assert.Equal(t, math.MaxUint32, c.Level(math.MaxUint64))
	assert.Equal(t, 1<<31, c.Level(1<<62))
	assert.Equal(t, 1<<31-1, c.Level(1<<62-1))
}

func TestCurve_TopLevelThresholds(t *testing.T) {
	for _, c := range []Curve{DefaultCurve, {Base: 1}, {Base: 7}, {Base: 1 << 40}} {
		level := c.Level(math.MaxUint64)
		threshold := c.LevelThresholdXP(level)
		next := c.NextLevelThresholdXP(level)

		assert.Greater(t, next, threshold, "base=%d", c.Base)
		assert.Equal(t, next-math.MaxUint64, c.XPToNextLevel(math.MaxUint64), "base=%d", c.Base)

		p := c.LevelProgress(math.MaxUint64)
		assert.GreaterOrEqual(t, p, 0.0, "base=%d", c.Base)
		assert.Less(t, p, 100.0, "base=%d", c.Base)
	}

	assert.Equal(t, 429496729, Level(math.MaxUint64))
	assert.Equal(t, uint64(math.MaxUint64), NextLevelThresholdXP(429496729))
	assert.Equal(t, uint64(0), XPToNextLevel(math.MaxUint64))
	assert.Equal(t, uint64(math.MaxUint64), LevelThresholdXP(math.MaxInt))
}

func TestLevelThresholdXP_NegativeLevel(t *testing.T) {
	assert.Equal(t, uint64(0), LevelThresholdXP(-3))
	assert.Equal(t, uint64(100), NextLevelThresholdXP(-3))
}

func TestLevelLabel(t *testing.T) {
	tests := []struct {
		level int
		label string
	}{
		{0, "Newcomer"},
		{1, "Beginner"},
		{5, "Beginner"},
		{6, "Intermediate"},
		{15, "Intermediate"},
		{16, "Advanced"},
		{30, "Advanced"},
		{31, "Expert"},
		{500, "Expert"},
	}

	for _, tc := range tests {
		assert.Equal(t, tc.label, LevelLabel(tc.level), "level=%d", tc.level)
	}
}
