package contracts

import "time"

// KeyID identifies a physical key position, as reported by the analog SDK (HID usage code).
type KeyID uint16

// Sample is one analog reading for one key.
type Sample struct {
	Key   KeyID
	Depth float64   // normalized travel in [0.0, 1.0]
	At    time.Time // when the source took the reading; sessions time key history with their own clock
}

// SampleSource returns the current readings of every actively reporting key.
// Keys at rest may be absent from the returned slice.
type SampleSource interface {
	Read() ([]Sample, error) // An error is treated as device loss.
	Close() error
}

// SourceConfig holds configuration for the native analog SDK source.
type SourceConfig struct {
	LibraryPath string // Path or name of the SDK shared library.
	BufferSize  int    // Maximum number of keys read per poll.
}
