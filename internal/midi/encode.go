// Package midi holds the wire encoding shared by the platform output sinks.
package midi

import (
	"fmt"

	gomidi "gitlab.com/gomidi/midi/v2"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Encode converts an event into a MIDI 1.0 channel message, rejecting values the
// protocol cannot carry.
func Encode(ev contracts.NoteEvent) (gomidi.Message, error) {
	if ev.Channel > 15 {
		return nil, fmt.Errorf("%w: channel %d", contracts.ErrInvalidMessage, ev.Channel)
	}
	if ev.Note > 127 {
		return nil, fmt.Errorf("%w: note %d", contracts.ErrInvalidMessage, ev.Note)
	}

	switch ev.Command {
	case contracts.NoteOn:
		if ev.Velocity < 1 || ev.Velocity > 127 {
			return nil, fmt.Errorf("%w: note-on velocity %d", contracts.ErrInvalidMessage, ev.Velocity)
		}
		return gomidi.NoteOn(ev.Channel, ev.Note, ev.Velocity), nil
	case contracts.NoteOff:
		return gomidi.NoteOff(ev.Channel, ev.Note), nil
	case contracts.PolyAftertouch:
		if ev.Velocity > 127 {
			return nil, fmt.Errorf("%w: pressure %d", contracts.ErrInvalidMessage, ev.Velocity)
		}
		return gomidi.PolyAfterTouch(ev.Channel, ev.Note, ev.Velocity), nil
	default:
		return nil, fmt.Errorf("%w: unsupported command %s", contracts.ErrInvalidMessage, ev.Command)
	}
}

// ShortMessage packs a three-byte channel message into the little-endian DWORD layout used
// by short-message MIDI APIs (status in the low byte).
func ShortMessage(msg gomidi.Message) (uint32, error) {
	b := msg.Bytes()
	if len(b) == 0 || len(b) > 3 {
		return 0, fmt.Errorf("%w: %d-byte message is not a short message", contracts.ErrInvalidMessage, len(b))
	}
	var packed uint32
	for i, v := range b {
		packed |= uint32(v) << (8 * i)
	}
	return packed, nil
}
