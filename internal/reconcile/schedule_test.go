package reconcile

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGap(t *testing.T) {
	tests := []struct {
		frequency int
		count     int
		want      int
	}{
		{10, 3, 150},
		{10, 1, 300},
		{10, 0, 600},
		{5, 7, 38},
		{1, 100, 1},
		{60, 4, 720},
		{15, 2, 300},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("f=%d n=%d", tt.frequency, tt.count), func(t *testing.T) {
			assert.Equal(t, tt.want, Gap(tt.frequency, tt.count))
		})
	}
}

func TestRunDelays_Bounds(t *testing.T) {
	for _, f := range []int{1, 2, 5, 10, 15, 30, 60, 1440} {
		for n := 1; n <= 25; n++ {
			gap := Gap(f, n)
			delays := RunDelays(f, n)
			require.Len(t, delays, n)

			seen := make(map[int]bool, n)
			for _, d := range delays {
				require.Greater(t, d, 0, "f=%d n=%d", f, n)
				require.LessOrEqual(t, d, n*gap, "f=%d n=%d", f, n)
				require.Zero(t, d%gap, "f=%d n=%d delay %d not a multiple of %d", f, n, d, gap)
				require.False(t, seen[d], "f=%d n=%d duplicate delay %d", f, n, d)
				seen[d] = true
			}
		}
	}
}

func TestRunDelays_Example(t *testing.T) {
	assert.Equal(t, []int{150, 300, 450}, RunDelays(10, 3))
}

func TestShuffled_IsPermutation(t *testing.T) {
	in := []string{"A", "B", "C", "D", "E"}
	for seed := uint64(0); seed < 20; seed++ {
		out := shuffled(in, seededShuffle(seed))
		assert.ElementsMatch(t, in, out)
	}
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, in)
}

func TestShuffled_DefaultSource(t *testing.T) {
	out := shuffled([]string{"A", "B", "C"}, nil)
	assert.ElementsMatch(t, []string{"A", "B", "C"}, out)
}
