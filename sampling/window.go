// Package sampling selects clip windows from longer recordings under a
// temporal sampling policy.
package sampling

import (
	"fmt"
	"math/rand"
	"time"
)

// RandomView selects random jitter sampling instead of a fixed tiling
// position.
const RandomView = -1

var defaultRand = rand.New(rand.NewSource(time.Now().UnixNano()))

// SelectWindow picks a clip of clipSize samples from a recording of
// totalSize samples and returns the positions of the clip's first and
// last sample, as real values the caller truncates before slicing.
//
// With viewIndex == RandomView the start is drawn uniformly from
// [0, totalSize-clipSize]; otherwise the start is the viewIndex-th of
// numViews equally spaced positions covering that range, so view 0
// starts at the beginning and view numViews-1 ends flush with the
// recording. offset shifts both results by an absolute base position.
//
// A clip longer than the recording is not an error: the window then
// starts at offset and runs clipSize-1 past the available samples, and
// the extractor's short-record branch deals with it.
//
// rng is the entropy source for the random branch; nil falls back to a
// package-level source. Callers that need reproducibility or run many
// workers should pass their own seeded generator.
func SelectWindow(totalSize, clipSize float64, viewIndex, numViews int, offset float64, rng *rand.Rand) (float64, float64, error) {
	if totalSize < 0 {
		return 0, 0, fmt.Errorf("total size must be non-negative, got %v", totalSize)
	}
	if clipSize < 0 {
		return 0, 0, fmt.Errorf("clip size must be non-negative, got %v", clipSize)
	}
	if numViews < 1 {
		return 0, 0, fmt.Errorf("number of views must be at least 1, got %d", numViews)
	}
	if viewIndex != RandomView && (viewIndex < 0 || viewIndex >= numViews) {
		return 0, 0, fmt.Errorf("view index %d outside [0, %d)", viewIndex, numViews)
	}

	slack := max(totalSize-clipSize, 0)

	var start float64
	if viewIndex == RandomView {
		if rng == nil {
			rng = defaultRand
		}
		start = rng.Float64() * slack
	} else if numViews > 1 {
		start = slack * float64(viewIndex) / float64(numViews-1)
	}

	end := start + clipSize - 1
	return offset + start, offset + end, nil
}
