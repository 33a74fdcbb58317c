package extract

// Tensor is the extracted feature: a time-major log-mel-spectrogram with
// a leading singleton channel dimension, shape (1, frames, bins). Each
// call allocates a fresh tensor; nothing is cached or shared.
type Tensor struct {
	Data [][]float64 `json:"data"` // frames x bins
}

// Shape returns (channels, frames, bins).
func (t *Tensor) Shape() (int, int, int) {
	if len(t.Data) == 0 {
		return 1, 0, 0
	}
	return 1, len(t.Data), len(t.Data[0])
}

// At returns the value at the given frame and mel bin.
func (t *Tensor) At(frame, bin int) float64 {
	return t.Data[frame][bin]
}
