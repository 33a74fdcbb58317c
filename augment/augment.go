// Package augment provides waveform transforms for training-time
// augmentation. Every transform returns a new slice of the same length
// and leaves its input untouched, so transforms compose freely.
package augment

import (
	"fmt"
	"math/rand"
)

// Gain scales every sample by a constant factor.
type Gain struct {
	Factor float64
}

// NewGain creates a gain transform.
func NewGain(factor float64) *Gain {
	return &Gain{Factor: factor}
}

// Apply scales the samples.
func (g *Gain) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s * g.Factor
	}
	return out, nil
}

// WhiteNoise adds uniform white noise with the given peak amplitude,
// drawn from an explicit generator so workers stay reproducible.
type WhiteNoise struct {
	Amplitude float64
	rng       *rand.Rand
}

// NewWhiteNoise creates a white noise transform. rng must not be nil.
func NewWhiteNoise(amplitude float64, rng *rand.Rand) (*WhiteNoise, error) {
	if rng == nil {
		return nil, fmt.Errorf("white noise transform needs a random source")
	}
	if amplitude < 0 {
		return nil, fmt.Errorf("noise amplitude must be non-negative, got %v", amplitude)
	}
	return &WhiteNoise{Amplitude: amplitude, rng: rng}, nil
}

// Apply adds noise to the samples.
func (w *WhiteNoise) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := make([]float64, len(samples))
	for i, s := range samples {
		out[i] = s + (w.rng.Float64()*2-1)*w.Amplitude
	}
	return out, nil
}

// Identity returns its input as a copy. Useful as a neutral element in
// transform pipelines and for testing the transform hook.
type Identity struct{}

// Apply copies the samples unchanged.
func (Identity) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := make([]float64, len(samples))
	copy(out, samples)
	return out, nil
}

// Chain applies transforms in order.
type Chain struct {
	transforms []Transform
}

// Transform is the waveform transform capability: same-domain
// augmentation mapping samples plus sample rate to transformed samples.
type Transform interface {
	Apply(samples []float64, sampleRate int) ([]float64, error)
}

// NewChain creates a transform chain.
func NewChain(transforms ...Transform) *Chain {
	return &Chain{transforms: transforms}
}

// Apply runs the chained transforms left to right.
func (c *Chain) Apply(samples []float64, sampleRate int) ([]float64, error) {
	out := samples
	for i, t := range c.transforms {
		next, err := t.Apply(out, sampleRate)
		if err != nil {
			return nil, fmt.Errorf("transform %d (%T): %w", i, t, err)
		}
		out = next
	}
	return out, nil
}
