package spectral

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// HzToMelHTK converts frequency in Hz to the HTK mel scale
func HzToMelHTK(hz float64) float64 {
	return 2595.0 * math.Log10(1.0+hz/700.0)
}

// MelToHzHTK converts HTK mel scale to frequency in Hz
func MelToHzHTK(mel float64) float64 {
	return 700.0 * (math.Pow(10.0, mel/2595.0) - 1.0)
}

// MelFilterbank is a bank of triangular filters on the HTK mel scale,
// unnormalized (no per-band energy normalization). Band edges are placed
// at continuous frequencies rather than snapped to FFT bins.
type MelFilterbank struct {
	numBands   int
	fftSize    int
	sampleRate int
	basis      *mat.Dense // numBands x (fftSize/2+1)
}

// NewMelFilterbank creates a mel filterbank for the given FFT grid.
// lowFreq/highFreq bound the mel range; highFreq <= 0 means Nyquist.
func NewMelFilterbank(numBands, fftSize, sampleRate int, lowFreq, highFreq float64) *MelFilterbank {
	if numBands <= 0 || fftSize <= 0 || sampleRate <= 0 {
		return nil
	}
	if highFreq <= 0 {
		highFreq = float64(sampleRate) / 2.0
	}

	freqBins := fftSize/2 + 1

	// Center frequencies of the FFT bins
	fftFreqs := make([]float64, freqBins)
	for k := range fftFreqs {
		fftFreqs[k] = float64(k) * float64(sampleRate) / float64(fftSize)
	}

	// numBands+2 equally spaced points on the mel axis, mapped back to Hz
	lowMel := HzToMelHTK(lowFreq)
	highMel := HzToMelHTK(highFreq)
	melStep := (highMel - lowMel) / float64(numBands+1)

	hzPoints := make([]float64, numBands+2)
	for i := range hzPoints {
		hzPoints[i] = MelToHzHTK(lowMel + float64(i)*melStep)
	}

	basis := mat.NewDense(numBands, freqBins, nil)

	for m := 0; m < numBands; m++ {
		left := hzPoints[m]
		center := hzPoints[m+1]
		right := hzPoints[m+2]

		for k, f := range fftFreqs {
			rising := (f - left) / (center - left)
			falling := (right - f) / (right - center)

			weight := math.Min(rising, falling)
			if weight > 0 {
				basis.Set(m, k, weight)
			}
		}
	}

	return &MelFilterbank{
		numBands:   numBands,
		fftSize:    fftSize,
		sampleRate: sampleRate,
		basis:      basis,
	}
}

// NumBands returns the number of mel bands.
func (mb *MelFilterbank) NumBands() int {
	return mb.numBands
}

// Basis returns the filterbank weight matrix, numBands x (fftSize/2+1).
func (mb *MelFilterbank) Basis() *mat.Dense {
	return mb.basis
}

// Project applies the filterbank to a time-major magnitude spectrogram
// (frames x freqBins) and returns a time-major mel spectrogram
// (frames x numBands).
func (mb *MelFilterbank) Project(magnitude [][]float64) [][]float64 {
	numFrames := len(magnitude)
	if numFrames == 0 {
		return [][]float64{}
	}

	freqBins := len(magnitude[0])

	flat := make([]float64, numFrames*freqBins)
	for t, row := range magnitude {
		copy(flat[t*freqBins:(t+1)*freqBins], row)
	}
	magMat := mat.NewDense(numFrames, freqBins, flat)

	// (frames x bins) · (bins x bands)
	var melMat mat.Dense
	melMat.Mul(magMat, mb.basis.T())

	melSpectrogram := make([][]float64, numFrames)
	for t := range melSpectrogram {
		melSpectrogram[t] = mat.Row(nil, t, &melMat)
	}

	return melSpectrogram
}
