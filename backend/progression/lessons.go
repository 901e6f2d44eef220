package progression

import (
	"math"
	"math/bits"
)

const (
	// WordBits is the width of one lesson flag word.
	WordBits = 64
	// MaxLessons is the number of lesson slots an enrollment is created with.
	MaxLessons = 128
)

// IsCompleted reports whether the lesson at index is flagged in words.
// Indexes outside the capacity of words are reported as not completed.
func IsCompleted(words []uint64, index int) bool {
	if index < 0 || index >= len(words)*WordBits {
		return false
	}
	return (words[index/WordBits]>>uint(index%WordBits))&1 != 0
}

// CountCompleted returns the number of set bits across all words.
func CountCompleted(words []uint64) int {
	n := 0
	for _, w := range words {
		n += bits.OnesCount64(w)
	}
	return n
}

// CompletionPercent returns round(completed / totalLessons * 100). The value
// is not clamped and exceeds 100 when words holds more flags than
// totalLessons. A non-positive totalLessons yields 0.
func CompletionPercent(words []uint64, totalLessons int) int {
	if totalLessons <= 0 {
		return 0
	}
	return int(math.Round(float64(CountCompleted(words)) / float64(totalLessons) * 100))
}

// ClampPercent bounds p to [0, 100].
func ClampPercent(p int) int {
	return min(max(p, 0), 100)
}

// NewLessonFlags returns zeroed words able to hold capacity lessons.
func NewLessonFlags(capacity int) []uint64 {
	if capacity <= 0 {
		return []uint64{}
	}
	return make([]uint64, (capacity+WordBits-1)/WordBits)
}

// WithCompleted returns a copy of words with the lesson at index flagged.
// It returns false, and words unchanged, when index is out of range.
func WithCompleted(words []uint64, index int) ([]uint64, bool) {
	if index < 0 || index >= len(words)*WordBits {
		return words, false
	}
	out := make([]uint64, len(words))
	copy(out, words)
	out[index/WordBits] |= 1 << uint(index%WordBits)
	return out, true
}

// CompletedIndices lists the flagged lesson indexes in ascending order.
func CompletedIndices(words []uint64) []int {
	out := make([]int, 0, CountCompleted(words))
	for i, w := range words {
		for w != 0 {
			bit := bits.TrailingZeros64(w)
			out = append(out, i*WordBits+bit)
			w &= w - 1
		}
	}
	return out
}
