// Package store provides sample store implementations backing feature
// extraction: an in-memory store for tests and in-process pipelines, and
// a WAV-directory store for on-disk corpora.
package store

import "fmt"

// Memory is a map-backed sample store. The zero value is unusable; use
// NewMemory.
type Memory struct {
	recordings map[string][]float64
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{recordings: make(map[string][]float64)}
}

// Put registers the full waveform for a recording identity. The slice is
// stored as given, not copied; callers must not mutate it afterwards.
func (m *Memory) Put(recordingID string, samples []float64) {
	m.recordings[recordingID] = samples
}

// Fetch returns the full raw waveform for a recording identity.
func (m *Memory) Fetch(recordingID string) ([]float64, error) {
	samples, ok := m.recordings[recordingID]
	if !ok {
		return nil, fmt.Errorf("recording %q not found", recordingID)
	}
	return samples, nil
}
