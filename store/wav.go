package store

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/wav"

	"github.com/soundprep/melclip/logging"
)

// WAVDir is a sample store that reads <dir>/<recordingID>.wav on every
// Fetch. Multi-channel files are mixed down to mono by averaging, and
// samples are scaled to [-1, 1] by the source bit depth.
type WAVDir struct {
	dir    string
	logger logging.Logger
}

// NewWAVDir creates a WAV-directory store rooted at dir.
func NewWAVDir(dir string) *WAVDir {
	return &WAVDir{
		dir: dir,
		logger: logging.WithFields(logging.Fields{
			"component": "wav_store",
		}),
	}
}

// Fetch returns the full raw waveform for a recording identity.
func (w *WAVDir) Fetch(recordingID string) ([]float64, error) {
	path := filepath.Join(w.dir, recordingID+".wav")

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording %q: %w", recordingID, err)
	}
	defer f.Close()

	decoder := wav.NewDecoder(f)
	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("decode recording %q: %w", recordingID, err)
	}

	numChannels := buf.Format.NumChannels
	if numChannels < 1 {
		return nil, fmt.Errorf("recording %q has no channels", recordingID)
	}

	scale := 1.0
	if decoder.BitDepth > 0 {
		scale = 1.0 / float64(int(1)<<(decoder.BitDepth-1))
	}

	numFrames := len(buf.Data) / numChannels
	samples := make([]float64, numFrames)
	for i := 0; i < numFrames; i++ {
		sum := 0
		for c := 0; c < numChannels; c++ {
			sum += buf.Data[i*numChannels+c]
		}
		samples[i] = float64(sum) / float64(numChannels) * scale
	}

	w.logger.Debug("loaded recording", logging.Fields{
		"recording":   recordingID,
		"num_samples": numFrames,
		"channels":    numChannels,
		"sample_rate": buf.Format.SampleRate,
	})

	return samples, nil
}
