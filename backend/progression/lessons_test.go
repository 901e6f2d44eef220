package progression

import (
	"math"
	"math/rand"
	"sort"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLessonFlags_Scenario(t *testing.T) {
	words := []uint64{0b1011, 0}

	assert.Equal(t, 3, CountCompleted(words))
	assert.Equal(t, 30, CompletionPercent(words, 10))
	assert.True(t, IsCompleted(words, 0))
	assert.True(t, IsCompleted(words, 1))
	assert.False(t, IsCompleted(words, 2))
	assert.True(t, IsCompleted(words, 3))
	assert.Equal(t, []int{0, 1, 3}, CompletedIndices(words))
}

func TestCountCompleted_Exact(t *testing.T) {
	assert.Equal(t, 64, CountCompleted([]uint64{math.MaxUint64}))
	assert.Equal(t, 128, CountCompleted([]uint64{math.MaxUint64, math.MaxUint64}))
	assert.Equal(t, 1, CountCompleted([]uint64{1 << 63}))
	assert.Equal(t, 0, CountCompleted(nil))
	assert.Equal(t, 0, CountCompleted([]uint64{}))
}

func TestIsCompleted_HighBit(t *testing.T) {
	words := []uint64{1 << 63, 1 << 63}
	assert.True(t, IsCompleted(words, 63))
	assert.True(t, IsCompleted(words, 127))
	assert.False(t, IsCompleted(words, 62))
	assert.False(t, IsCompleted(words, 64))
}

func TestIsCompleted_OutOfRange(t *testing.T) {
	words := []uint64{math.MaxUint64, math.MaxUint64}
	capacity := len(words) * WordBits

	assert.False(t, IsCompleted(words, capacity))
	assert.False(t, IsCompleted(words, capacity+1000))
	assert.False(t, IsCompleted(words, -1))
	assert.False(t, IsCompleted(nil, 0))
}

func TestLessonFlags_RoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	for round := 0; round < 200; round++ {
		words := NewLessonFlags(MaxLessons)
		require.Len(t, words, 2)

		set := map[int]bool{}
		for n := rng.Intn(MaxLessons); n > 0; n-- {
			idx := rng.Intn(MaxLessons)
			set[idx] = true
			var ok bool
			words, ok = WithCompleted(words, idx)
			require.True(t, ok)
		}

		for i := 0; i < MaxLessons; i++ {
			require.Equal(t, set[i], IsCompleted(words, i), "round=%d index=%d", round, i)
		}
		assert.Equal(t, len(set), CountCompleted(words))

		want := make([]int, 0, len(set))
		for idx := range set {
			want = append(want, idx)
		}
		sort.Ints(want)
		if diff := cmp.Diff(want, CompletedIndices(words)); diff != "" {
			t.Fatalf("round %d: CompletedIndices mismatch (-want +got):\n%s", round, diff)
		}
	}
}

func TestWithCompleted_DoesNotMutate(t *testing.T) {
	words := []uint64{0, 0}
	out, ok := WithCompleted(words, 70)
	require.True(t, ok)
	assert.Equal(t, []uint64{0, 0}, words)
	assert.Equal(t, []uint64{0, 1 << 6}, out)

	same, ok := WithCompleted(words, 128)
	assert.False(t, ok)
	assert.Equal(t, words, same)
}

func TestNewLessonFlags(t *testing.T) {
	assert.Len(t, NewLessonFlags(0), 0)
	assert.Len(t, NewLessonFlags(1), 1)
	assert.Len(t, NewLessonFlags(64), 1)
	assert.Len(t, NewLessonFlags(65), 2)
}

func TestCompletionPercent(t *testing.T) {
	assert.Equal(t, 0, CompletionPercent(nil, 10))
	assert.Equal(t, 100, CompletionPercent([]uint64{0b1111}, 4))
	assert.Equal(t, 33, CompletionPercent([]uint64{0b1}, 3))
	assert.Equal(t, 67, CompletionPercent([]uint64{0b11}, 3))
	assert.Equal(t, 50, CompletionPercent([]uint64{0b1}, 2))
	assert.Equal(t, 0, CompletionPercent([]uint64{0b1}, 0))

	// stale flags can report more lessons than the course has
	assert.Equal(t, 200, CompletionPercent([]uint64{0b1111}, 2))
	assert.Equal(t, 100, ClampPercent(200))
	assert.Equal(t, 0, ClampPercent(-5))
	assert.Equal(t, 42, ClampPercent(42))
}
