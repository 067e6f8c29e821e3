package contracts

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds surfaced by sessions, sources and sinks. Callers match them with errors.Is.
var (
	// ErrSdkUnavailable is returned when the analog SDK fails or the device is disconnected.
	// It is terminal for the session.
	ErrSdkUnavailable = errors.New("analog SDK unavailable")
	// ErrInvalidLayout reports layout entries that were skipped or flagged at load time.
	ErrInvalidLayout = errors.New("invalid layout")
	// ErrMidiWriteFailed is returned when the output sink rejects a message.
	ErrMidiWriteFailed = errors.New("MIDI write failed")
	// ErrInvalidConfig is returned when thresholds or velocity parameters are out of range.
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrSessionStopped is returned by Tick after Stop.
	ErrSessionStopped = errors.New("session stopped")
	// ErrUnsupportedOS is returned when no native source or sink exists for the running platform.
	ErrUnsupportedOS = errors.New("unsupported operating system")
	// ErrInvalidMessage is returned when an event cannot be encoded as a MIDI 1.0 message.
	ErrInvalidMessage = errors.New("invalid MIDI message")
)

// LayoutIssue describes a single problematic layout entry.
type LayoutIssue struct {
	Key     KeyID
	Binding Binding
	Reason  string
	Skipped bool // false when the entry is kept and only flagged
}

func (i LayoutIssue) String() string {
	action := "flagged"
	if i.Skipped {
		action = "skipped"
	}
	return fmt.Sprintf("key 0x%02X (channel %d, note %d) %s: %s", uint16(i.Key), i.Binding.Channel, i.Binding.Note, action, i.Reason)
}

// LayoutError collects every issue found while loading a layout.
type LayoutError struct {
	Issues []LayoutIssue
}

func (e *LayoutError) Error() string {
	parts := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		parts[i] = issue.String()
	}
	return fmt.Sprintf("%s: %s", ErrInvalidLayout, strings.Join(parts, "; "))
}

func (e *LayoutError) Unwrap() error {
	return ErrInvalidLayout
}
