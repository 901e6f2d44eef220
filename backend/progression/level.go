package progression

import (
	"math"
	"math/bits"
)

// DefaultBase is the XP multiplier of the quadratic level curve.
const DefaultBase uint64 = 100

// Curve converts XP into levels: level = floor(sqrt(xp / Base)).
type Curve struct {
	Base uint64
}

// DefaultCurve is the curve used by the package-level helpers.
var DefaultCurve = Curve{Base: DefaultBase}

func (c Curve) base() uint64 {
	if c.Base == 0 {
		return DefaultBase
	}
	return c.Base
}

// Level returns the level reached with xp.
func (c Curve) Level(xp uint64) int {
	return int(isqrt(xp / c.base()))
}

// LevelThresholdXP returns the XP needed to reach level. Thresholds beyond
// the uint64 range saturate at math.MaxUint64.
func (c Curve) LevelThresholdXP(level int) uint64 {
	if level <= 0 {
		return 0
	}
	l := uint64(level)
	return mulSat(mulSat(l, l), c.base())
}

// NextLevelThresholdXP returns the XP needed to reach level+1.
func (c Curve) NextLevelThresholdXP(level int) uint64 {
	if level < 0 {
		level = 0
	}
	return c.LevelThresholdXP(level + 1)
}

// LevelProgress returns how far xp is into its current level, as a
// percentage in [0, 100).
func (c Curve) LevelProgress(xp uint64) float64 {
	level := c.Level(xp)
	start := c.LevelThresholdXP(level)
	// float64 span: the top level's next threshold does not fit in uint64
	next := float64(level + 1)
	span := next*next*float64(c.base()) - float64(start)
	return min(float64(xp-start)/span*100, math.Nextafter(100, 0))
}

// XPToNextLevel returns the XP still missing before the next level, or 0
// once the next threshold lies beyond the uint64 range.
func (c Curve) XPToNextLevel(xp uint64) uint64 {
	next := c.NextLevelThresholdXP(c.Level(xp))
	if next <= xp {
		return 0
	}
	return next - xp
}

func Level(xp uint64) int                   { return DefaultCurve.Level(xp) }
func LevelThresholdXP(level int) uint64     { return DefaultCurve.LevelThresholdXP(level) }
func NextLevelThresholdXP(level int) uint64 { return DefaultCurve.NextLevelThresholdXP(level) }
func LevelProgress(xp uint64) float64       { return DefaultCurve.LevelProgress(xp) }
func XPToNextLevel(xp uint64) uint64        { return DefaultCurve.XPToNextLevel(xp) }

// LevelLabel names the tier a level belongs to.
func LevelLabel(level int) string {
	switch {
	case level <= 0:
		return "Newcomer"
	case level <= 5:
		return "Beginner"
	case level <= 15:
		return "Intermediate"
	case level <= 30:
		return "Advanced"
	default:
		return "Expert"
	}
}

// isqrt returns floor(sqrt(n)). The float estimate is corrected so the
// result stays exact where float64 can no longer represent n.
func isqrt(n uint64) uint64 {
	const maxRoot = 1<<32 - 1
	r := min(uint64(math.Sqrt(float64(n))), maxRoot)
	for r > 0 && r*r > n {
		r--
	}
	for r < maxRoot && (r+1)*(r+1) <= n {
		r++
	}
	return r
}

// mulSat returns a*b, or math.MaxUint64 when the product overflows.
func mulSat(a, b uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	if hi != 0 {
		return math.MaxUint64
	}
	return lo
}
