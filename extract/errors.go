package extract

import "fmt"

// ConfigError reports a configuration field that would produce a
// degenerate spectrogram.
type ConfigError struct {
	Field string
	Value any
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration: %s = %v", e.Field, e.Value)
}

// RangeError reports a requested sample window that cannot be extracted
// from the recording buffer.
type RangeError struct {
	Start  int
	End    int
	BufLen int
	Reason string
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("sample range [%d, %d) invalid for buffer of %d samples: %s",
		e.Start, e.End, e.BufLen, e.Reason)
}
