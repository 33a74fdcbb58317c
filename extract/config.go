package extract

import "math"

// Config holds the sampling configuration for feature extraction. It is
// passed by value at call boundaries; there is no process-wide config
// state.
type Config struct {
	SampleRate       int     `json:"sample_rate"`        // Hz
	ClipSecs         float64 `json:"clip_secs"`          // target clip duration in seconds
	WindowLengthMS   float64 `json:"window_length_ms"`   // STFT analysis window length
	HopLengthMS      float64 `json:"hop_length_ms"`      // STFT hop between frames
	NumFrames        int     `json:"num_frames"`         // fixed output frame count
	NumEnsembleViews int     `json:"num_ensemble_views"` // deterministic tiling positions
}

// ClipSize returns the canonical clip length in samples.
func (c Config) ClipSize() int {
	return int(math.Round(float64(c.SampleRate) * c.ClipSecs))
}

// WindowSamples returns the STFT analysis window length in samples.
func (c Config) WindowSamples() int {
	return int(math.Round(c.WindowLengthMS * float64(c.SampleRate) / 1000.0))
}

// HopSamples returns the STFT hop length in samples.
func (c Config) HopSamples() int {
	return int(math.Round(c.HopLengthMS * float64(c.SampleRate) / 1000.0))
}

// Validate fails fast on a configuration that would produce degenerate
// spectrograms.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return &ConfigError{Field: "sample_rate", Value: c.SampleRate}
	}
	if c.ClipSecs <= 0 {
		return &ConfigError{Field: "clip_secs", Value: c.ClipSecs}
	}
	if c.WindowLengthMS <= 0 {
		return &ConfigError{Field: "window_length_ms", Value: c.WindowLengthMS}
	}
	if c.HopLengthMS <= 0 {
		return &ConfigError{Field: "hop_length_ms", Value: c.HopLengthMS}
	}
	if c.NumFrames <= 0 {
		return &ConfigError{Field: "num_frames", Value: c.NumFrames}
	}
	if c.NumEnsembleViews <= 0 {
		return &ConfigError{Field: "num_ensemble_views", Value: c.NumEnsembleViews}
	}
	if c.WindowSamples() < 1 {
		return &ConfigError{Field: "window_length_ms", Value: c.WindowLengthMS}
	}
	if c.WindowSamples() > FFTSize {
		return &ConfigError{Field: "window_length_ms", Value: c.WindowLengthMS}
	}
	if c.HopSamples() < 1 {
		return &ConfigError{Field: "hop_length_ms", Value: c.HopLengthMS}
	}
	return nil
}
