package dispatch

import "math"

const (
	brightnessStep = 5.0
	brightnessMin  = 1.0
	brightnessMax  = 100.0
)

// nextBrightness snaps v to the next multiple of brightnessStep in the
// given direction (+1 for Up, -1 for Down), bounded to [min, max].
func nextBrightness(v float64, dir int) float64 {
	n := brightnessStep * (math.Trunc(v/brightnessStep) + float64(dir))
	if n < brightnessMin {
		n = brightnessMin
	}
	if n > brightnessMax {
		n = brightnessMax
	}
	return n
}

// sceneIndexForward returns the index into scenes that a single-press
// rotation (forward) lands on, given the current index (or 0 if no scene
// is active).
func sceneIndexForward(current, n int) int {
	return (current + 1) % n
}

// sceneIndexBackward returns the index a double-press rotation (backward)
// lands on, using Euclidean modulo so the result is never negative.
func sceneIndexBackward(current, n int) int {
	return ((current-1)%n + n) % n
}
