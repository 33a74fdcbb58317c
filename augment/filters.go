package augment

import (
	"fmt"
	"math"
)

// PreEmphasis implements the classic pre-emphasis filter
// y[n] = x[n] - α·x[n-1], emphasizing high frequencies before analysis.
// α is typically 0.95-0.97 for speech.
type PreEmphasis struct {
	Coefficient float64
}

// NewPreEmphasis creates a pre-emphasis transform with the given α.
func NewPreEmphasis(coefficient float64) (*PreEmphasis, error) {
	if coefficient < 0 || coefficient >= 1 {
		return nil, fmt.Errorf("pre-emphasis coefficient must be in [0, 1), got %v", coefficient)
	}
	return &PreEmphasis{Coefficient: coefficient}, nil
}

// Apply filters the samples. The first output sample passes through
// unchanged.
func (p *PreEmphasis) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := make([]float64, len(samples))
	if len(samples) == 0 {
		return out, nil
	}

	out[0] = samples[0]
	for i := 1; i < len(samples); i++ {
		out[i] = samples[i] - p.Coefficient*samples[i-1]
	}
	return out, nil
}

// DCRemoval implements a DC blocking filter,
// y[n] = x[n] - x[n-1] + R·y[n-1], removing the 0 Hz component so clip
// slicing offsets don't leak into the low mel bands.
type DCRemoval struct {
	poleLocation float64
}

// NewDCRemoval creates a DC blocker with the standard audio pole
// location of 0.995.
func NewDCRemoval() *DCRemoval {
	return &DCRemoval{poleLocation: 0.995}
}

// NewDCRemovalWithCutoff creates a DC blocker with the pole placed for
// the given -3dB cutoff: R = 1 - 2π·fc/fs.
func NewDCRemovalWithCutoff(sampleRate int, cutoffFreq float64) (*DCRemoval, error) {
	if sampleRate <= 0 || cutoffFreq <= 0 {
		return nil, fmt.Errorf("sample rate and cutoff must be positive")
	}

	r := 1.0 - 2.0*math.Pi*cutoffFreq/float64(sampleRate)
	if r <= 0 || r >= 1 {
		return nil, fmt.Errorf("cutoff %v Hz unrealizable at %d Hz", cutoffFreq, sampleRate)
	}
	return &DCRemoval{poleLocation: r}, nil
}

// Apply filters the samples with zeroed initial state.
func (d *DCRemoval) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := make([]float64, len(samples))

	var x1, y1 float64
	for i, x := range samples {
		y := x - x1 + d.poleLocation*y1
		out[i] = y
		x1, y1 = x, y
	}
	return out, nil
}
