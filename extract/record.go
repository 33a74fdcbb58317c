package extract

// Record describes a labeled temporal segment within a recording. Sample
// offsets are absolute positions into the recording buffer identified by
// RecordingID; EndSample is exclusive.
type Record struct {
	RecordingID     string `json:"recording_id"`
	StartSample     int    `json:"start_sample"`
	EndSample       int    `json:"end_sample"`
	NumAudioSamples int    `json:"num_audio_samples"` // EndSample - StartSample
}

// Validate checks the record's offsets against the recording buffer
// length.
func (r Record) Validate(bufLen int) error {
	if r.StartSample < 0 || r.StartSample > r.EndSample {
		return &RangeError{Start: r.StartSample, End: r.EndSample, BufLen: bufLen,
			Reason: "segment offsets out of order"}
	}
	if r.EndSample > bufLen {
		return &RangeError{Start: r.StartSample, End: r.EndSample, BufLen: bufLen,
			Reason: "segment extends past the recording"}
	}
	if r.NumAudioSamples != r.EndSample-r.StartSample {
		return &RangeError{Start: r.StartSample, End: r.EndSample, BufLen: bufLen,
			Reason: "declared sample count disagrees with offsets"}
	}
	return nil
}
