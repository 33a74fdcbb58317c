package extract

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/soundprep/melclip/augment"
	"github.com/soundprep/melclip/logging"
	"github.com/soundprep/melclip/sampling"
	"github.com/soundprep/melclip/store"
)

func TestMain(m *testing.M) {
	logging.SetGlobalLogger(nil)
	os.Exit(m.Run())
}

func generateSine(freq, sampleRate float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = math.Sin(2 * math.Pi * freq * float64(i) / sampleRate)
	}
	return out
}

func fullRecord(id string, n int) Record {
	return Record{RecordingID: id, StartSample: 0, EndSample: n, NumAudioSamples: n}
}

// End-to-end: 24 kHz, 1 s clip, 10 ms window, 5 ms hop, 199 frames.
func TestExtractFeatureZeroRecording(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	mem := store.NewMemory()
	mem.Put("silence", make([]float64, 24000))

	tensor, err := ext.ExtractFeature(mem, fullRecord("silence", 24000), 0, nil)
	require.NoError(t, err)

	channels, frames, bins := tensor.Shape()
	require.Equal(t, 1, channels)
	require.Equal(t, 199, frames)
	require.Equal(t, 128, bins)

	logFloor := math.Log(1e-6)
	for f, row := range tensor.Data {
		for b, v := range row {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("value at (%d, %d) is %v", f, b, v)
			}
			if math.Abs(v-logFloor) > 1e-9 {
				t.Fatalf("value at (%d, %d) = %v, want log(1e-6) = %v", f, b, v, logFloor)
			}
		}
	}
}

func TestNormalRecordShapeNoPadding(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	samples := generateSine(440, 24000, 24000)
	tensor, err := ext.Extract(samples, fullRecord("tone", 24000), 0, 23999, nil)
	require.NoError(t, err)

	_, frames, bins := tensor.Shape()
	require.Equal(t, 199, frames)
	require.Equal(t, 128, bins)
}

func TestShortRecordEdgePadding(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	// 23640 samples give (23640-240)/120+1 = 196 STFT frames, three
	// short of the 199 target.
	const segmentLen = 23640
	samples := generateSine(440, 24000, segmentLen)

	mem := store.NewMemory()
	mem.Put("short", samples)

	tensor, err := ext.ExtractFeature(mem, fullRecord("short", segmentLen), 0, nil)
	require.NoError(t, err)

	_, frames, bins := tensor.Shape()
	require.Equal(t, 199, frames)
	require.Equal(t, 128, bins)

	// The padded rows replicate the last computed frame.
	lastComputed := tensor.Data[195]
	for f := 196; f < 199; f++ {
		for b := range lastComputed {
			if tensor.Data[f][b] != lastComputed[b] {
				t.Fatalf("padded frame %d differs from last computed frame at band %d", f, b)
			}
		}
	}
	// And the computed region is not constant, so padding is distinguishable.
	different := false
	for b := range tensor.Data[0] {
		if tensor.Data[0][b] != lastComputed[b] {
			different = true
			break
		}
	}
	require.True(t, different, "computed frames unexpectedly uniform")
}

func TestShortRecordTruncatesExcessFrames(t *testing.T) {
	cfg := validConfig()
	cfg.NumFrames = 100
	ext, err := NewExtractor(cfg)
	require.NoError(t, err)

	// Still short of the 24000-sample clip, but long enough to produce
	// 196 frames, which must be cut down to the fixed frame count.
	samples := generateSine(440, 24000, 23640)
	tensor, err := ext.Extract(samples, fullRecord("short", 23640), 0, 0, nil)
	require.NoError(t, err)

	_, frames, _ := tensor.Shape()
	require.Equal(t, 100, frames)
}

func TestDeterministicViewsTileTheRecording(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	// A 1.1 s recording leaves 2400 samples of slack across 5 views.
	const total = 26400
	samples := make([]float64, total)
	for i := range samples {
		// Linear chirp so different windows give different spectra.
		f := 200 + 4000*float64(i)/float64(total)
		samples[i] = math.Sin(2 * math.Pi * f * float64(i) / 24000)
	}

	mem := store.NewMemory()
	mem.Put("chirp", samples)
	rec := fullRecord("chirp", total)

	var tensors []*Tensor
	for view := 0; view < 5; view++ {
		tensor, err := ext.ExtractFeature(mem, rec, view, nil)
		require.NoError(t, err)

		_, frames, bins := tensor.Shape()
		require.Equal(t, 199, frames)
		require.Equal(t, 128, bins)
		tensors = append(tensors, tensor)
	}

	// Same view twice is identical; different views differ.
	again, err := ext.ExtractFeature(mem, rec, 2, nil)
	require.NoError(t, err)
	require.Equal(t, tensors[2].Data, again.Data)

	require.NotEqual(t, tensors[0].Data, tensors[4].Data)
}

func TestRandomViewStaysInRecording(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)
	ext.SetRand(rand.New(rand.NewSource(11)))

	samples := generateSine(440, 24000, 30000)
	mem := store.NewMemory()
	mem.Put("long", samples)
	rec := fullRecord("long", 30000)

	for iter := 0; iter < 20; iter++ {
		tensor, err := ext.ExtractFeature(mem, rec, sampling.RandomView, nil)
		require.NoError(t, err)

		_, frames, bins := tensor.Shape()
		require.Equal(t, 199, frames)
		require.Equal(t, 128, bins)
	}
}

func TestIdentityTransformPassThrough(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	samples := generateSine(440, 24000, 24000)
	rec := fullRecord("tone", 24000)

	plain, err := ext.Extract(samples, rec, 0, 23999, nil)
	require.NoError(t, err)

	viaIdentity, err := ext.Extract(samples, rec, 0, 23999, augment.Identity{})
	require.NoError(t, err)

	require.Equal(t, plain.Data, viaIdentity.Data)
}

func TestNonIdentityTransformChangesSpectrogram(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	samples := generateSine(440, 24000, 24000)
	rec := fullRecord("tone", 24000)

	plain, err := ext.Extract(samples, rec, 0, 23999, nil)
	require.NoError(t, err)

	gained, err := ext.Extract(samples, rec, 0, 23999, augment.NewGain(2.0))
	require.NoError(t, err)

	require.NotEqual(t, plain.Data, gained.Data)
}

type failingTransform struct{}

func (failingTransform) Apply(samples []float64, sampleRate int) ([]float64, error) {
	return nil, fmt.Errorf("augmentation backend unavailable")
}

func TestTransformErrorPropagates(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	samples := generateSine(440, 24000, 24000)
	_, err = ext.Extract(samples, fullRecord("tone", 24000), 0, 23999, failingTransform{})
	require.ErrorContains(t, err, "augmentation backend unavailable")
}

func TestWindowBeyondBufferIsClamped(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	// Record metadata says 24000 samples but the buffer holds a little
	// less; the window is clamped and the extraction still succeeds with
	// fewer frames.
	samples := generateSine(440, 24000, 23880)
	tensor, err := ext.Extract(samples, fullRecord("trimmed", 24000), 0, 23999, nil)
	require.NoError(t, err)

	_, frames, _ := tensor.Shape()
	require.Equal(t, 198, frames)
}

func TestEmptyWindowIsRangeError(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	// Short-record branch with a segment entirely past the buffer.
	rec := Record{RecordingID: "v", StartSample: 5000, EndSample: 6000, NumAudioSamples: 1000}
	_, err = ext.Extract(make([]float64, 3000), rec, 0, 0, nil)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr), "want RangeError, got %T", err)
}

func TestSegmentTooShortForOneFrame(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	// 100 samples cannot fill a single 240-sample analysis window.
	rec := Record{RecordingID: "v", StartSample: 0, EndSample: 100, NumAudioSamples: 100}
	_, err = ext.Extract(make([]float64, 100), rec, 0, 0, nil)
	require.Error(t, err)

	var rangeErr *RangeError
	require.True(t, errors.As(err, &rangeErr), "want RangeError, got %T", err)
}

func TestExtractFeatureUnknownRecording(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	_, err = ext.ExtractFeature(store.NewMemory(), fullRecord("missing", 24000), 0, nil)
	require.ErrorContains(t, err, "missing")
}

func TestExtractFeatureInvalidView(t *testing.T) {
	ext, err := NewExtractor(validConfig())
	require.NoError(t, err)

	mem := store.NewMemory()
	mem.Put("v", make([]float64, 24000))

	_, err = ext.ExtractFeature(mem, fullRecord("v", 24000), 7, nil)
	require.Error(t, err)
}
