package dispatch

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// P4: next(v) stays within [min, max], lands on a multiple of 5 when
// interior, and Up/Down are inverses away from the boundaries.
func TestNextBrightnessBounds(t *testing.T) {
	assert.Equal(t, 45.0, nextBrightness(42.3, +1))
	assert.Equal(t, 40.0, nextBrightness(42.3, -1))
	assert.Equal(t, 100.0, nextBrightness(99.0, +1))
	assert.Equal(t, 1.0, nextBrightness(2.0, -1))
}

func TestNextBrightnessUpDownInverse(t *testing.T) {
	v := 50.0
	up := nextBrightness(v, +1)
	down := nextBrightness(up, -1)
	assert.Equal(t, v, down)
}

func TestSceneIndexForward(t *testing.T) {
	assert.Equal(t, 1, sceneIndexForward(0, 2))
	assert.Equal(t, 0, sceneIndexForward(1, 2))
}

func TestSceneIndexBackwardEuclidean(t *testing.T) {
	assert.Equal(t, 1, sceneIndexBackward(0, 2))
	assert.Equal(t, 0, sceneIndexBackward(1, 2))
}

// P6: N single-press favorite rotations return to the original scene.
func TestSceneRotationReturnsAfterNSteps(t *testing.T) {
	n := 3
	idx := 0
	for i := 0; i < n; i++ {
		idx = sceneIndexForward(idx, n)
	}
	assert.Equal(t, 0, idx)
}
