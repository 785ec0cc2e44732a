package reconcile

import (
	"math/rand/v2"
)

// Gap returns the spacing in seconds between the run delays of count
// deployments sharing a window of frequency minutes. One extra slot is
// reserved so no call lands on the window boundary. The result is rounded
// up so small counts never collapse two delays onto the same second.
func Gap(frequency, count int) int {
	window := frequency * 60
	slots := count + 1
	return (window + slots - 1) / slots
}

// RunDelays returns the delay for each of count positions: (i+1) * Gap.
func RunDelays(frequency, count int) []int {
	gap := Gap(frequency, count)
	delays := make([]int, count)
	for i := range delays {
		delays[i] = (i + 1) * gap
	}
	return delays
}

// ShuffleFunc permutes n elements through swap, like rand.Shuffle.
type ShuffleFunc func(n int, swap func(i, j int))

// shuffled returns a permuted copy of locations. The input is left untouched.
func shuffled(locations []string, shuffle ShuffleFunc) []string {
	out := make([]string, len(locations))
	copy(out, locations)
	if shuffle == nil {
		shuffle = rand.Shuffle
	}
	shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}
