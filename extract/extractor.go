// Package extract converts labeled segments of raw audio recordings into
// fixed-size log-mel-spectrogram feature tensors.
package extract

import (
	"fmt"
	"math"
	"math/rand"

	"github.com/soundprep/melclip/algorithms/spectral"
	"github.com/soundprep/melclip/algorithms/windowing"
	"github.com/soundprep/melclip/logging"
	"github.com/soundprep/melclip/sampling"
)

const (
	// FFTSize is the transform length for every analysis frame,
	// independent of the configured window and hop.
	FFTSize = 2048

	// NumMelBands is the fixed number of mel bins in the output.
	NumMelBands = 128

	// logEpsilon keeps the log compression away from log(0).
	logEpsilon = 1e-6
)

// SampleStore retrieves the full raw waveform for a recording identity.
type SampleStore interface {
	Fetch(recordingID string) ([]float64, error)
}

// WaveformTransform is an optional same-domain augmentation applied to
// the sliced samples before spectrogram computation.
type WaveformTransform interface {
	Apply(samples []float64, sampleRate int) ([]float64, error)
}

// Extractor turns records into feature tensors. Calls are independent
// and allocate fresh buffers; an Extractor is safe for concurrent use as
// long as its random source is (give each worker its own seeded source).
type Extractor struct {
	cfg        Config
	stft       *spectral.STFT
	window     *windowing.Hann
	filterbank *spectral.MelFilterbank
	rng        *rand.Rand
	logger     logging.Logger
}

// NewExtractor validates the configuration and prepares the analysis
// window and mel filterbank for it.
func NewExtractor(cfg Config) (*Extractor, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	filterbank := spectral.NewMelFilterbank(NumMelBands, FFTSize, cfg.SampleRate, 0, 0)
	if filterbank == nil {
		return nil, &ConfigError{Field: "sample_rate", Value: cfg.SampleRate}
	}

	return &Extractor{
		cfg:        cfg,
		stft:       spectral.NewSTFT(),
		window:     windowing.NewHann(cfg.WindowSamples(), false),
		filterbank: filterbank,
		logger: logging.WithFields(logging.Fields{
			"component": "extractor",
		}),
	}, nil
}

// SetRand installs the entropy source used for random-jitter view
// selection. Unset, a shared package-level source is used.
func (e *Extractor) SetRand(rng *rand.Rand) {
	e.rng = rng
}

// Config returns the extractor's configuration.
func (e *Extractor) Config() Config {
	return e.cfg
}

// ExtractFeature fetches the recording for rec, selects a clip window
// for the given view index (RandomView for jitter sampling) and returns
// the feature tensor for it.
func (e *Extractor) ExtractFeature(store SampleStore, rec Record, viewIndex int, transform WaveformTransform) (*Tensor, error) {
	samples, err := store.Fetch(rec.RecordingID)
	if err != nil {
		return nil, fmt.Errorf("fetch recording %q: %w", rec.RecordingID, err)
	}

	startIdx, endIdx, err := sampling.SelectWindow(
		float64(rec.NumAudioSamples),
		float64(e.cfg.ClipSize()),
		viewIndex,
		e.cfg.NumEnsembleViews,
		float64(rec.StartSample),
		e.rng,
	)
	if err != nil {
		return nil, err
	}

	return e.Extract(samples, rec, int(startIdx), int(endIdx), transform)
}

// Extract computes the feature tensor for a pre-selected sample window.
// startIdx and endIdx are the absolute positions of the clip's first and
// last sample.
//
// A record shorter than the clip length ignores the window and uses its
// whole segment, padded along the time axis by repeating the last frame
// until the tensor has exactly NumFrames rows. A normal record uses the
// window as is and no padding is applied.
func (e *Extractor) Extract(samples []float64, rec Record, startIdx, endIdx int, transform WaveformTransform) (*Tensor, error) {
	var lo, hi int
	shortRecord := rec.NumAudioSamples < e.cfg.ClipSize()

	if shortRecord {
		lo, hi = clampRange(rec.StartSample, rec.EndSample, len(samples))
	} else {
		// endIdx is the index of the clip's last sample
		lo, hi = clampRange(startIdx, endIdx+1, len(samples))
	}

	if hi == lo {
		return nil, &RangeError{Start: lo, End: hi, BufLen: len(samples),
			Reason: "empty sample window"}
	}

	clip := samples[lo:hi]

	if transform != nil {
		e.logger.Warn("transforming audio samples", logging.Fields{
			"transform":   fmt.Sprintf("%T", transform),
			"recording":   rec.RecordingID,
			"num_samples": len(clip),
		})
		transformed, err := transform.Apply(clip, e.cfg.SampleRate)
		if err != nil {
			return nil, fmt.Errorf("waveform transform: %w", err)
		}
		clip = transformed
	}

	spectrogram, err := e.logMelSpectrogram(clip)
	if err != nil {
		return nil, err
	}

	if shortRecord {
		spectrogram = padEdge(spectrogram, e.cfg.NumFrames)
	}

	return &Tensor{Data: spectrogram}, nil
}

// logMelSpectrogram computes the time-major log-mel-spectrogram of a
// sample slice: Hann STFT magnitudes projected through the mel
// filterbank, then log compressed.
func (e *Extractor) logMelSpectrogram(clip []float64) ([][]float64, error) {
	result, err := e.stft.Compute(clip, e.cfg.WindowSamples(), e.cfg.HopSamples(), FFTSize, e.cfg.SampleRate, e.window)
	if err != nil {
		return nil, &RangeError{Start: 0, End: len(clip), BufLen: len(clip),
			Reason: fmt.Sprintf("spectrogram: %v", err)}
	}

	melSpectrogram := e.filterbank.Project(result.Magnitude)

	for _, row := range melSpectrogram {
		for i, v := range row {
			row[i] = math.Log(v + logEpsilon)
		}
	}

	return melSpectrogram, nil
}

// padEdge extends spectrogram to numFrames rows by repeating the last
// frame. A spectrogram that already has more rows is truncated so the
// output frame count stays fixed.
func padEdge(spectrogram [][]float64, numFrames int) [][]float64 {
	if len(spectrogram) >= numFrames {
		return spectrogram[:numFrames]
	}

	last := spectrogram[len(spectrogram)-1]
	for len(spectrogram) < numFrames {
		frame := make([]float64, len(last))
		copy(frame, last)
		spectrogram = append(spectrogram, frame)
	}

	return spectrogram
}

func clampRange(lo, hi, bufLen int) (int, int) {
	lo = min(max(lo, 0), bufLen)
	hi = min(max(hi, lo), bufLen)
	return lo, hi
}
