package contracts

import "fmt"

// MIDICommand is the status nibble of a MIDI channel message.
type MIDICommand byte

const (
	// NoteOn is the MIDI command for a Note On event (0x90).
	NoteOn MIDICommand = 0x90
	// NoteOff is the MIDI command for a Note Off event (0x80).
	NoteOff MIDICommand = 0x80
	// PolyAftertouch is the MIDI command for polyphonic key pressure (0xA0).
	PolyAftertouch MIDICommand = 0xA0
)

func (c MIDICommand) String() string {
	switch c {
	case NoteOn:
		return "NoteOn"
	case NoteOff:
		return "NoteOff"
	case PolyAftertouch:
		return "PolyAftertouch"
	default:
		return fmt.Sprintf("MIDICommand(0x%02X)", byte(c))
	}
}

// NoteRef identifies a sounding note: a (channel, note) pair.
type NoteRef struct {
	Channel uint8 // 0-15
	Note    uint8 // 0-127
}

// NoteEvent is a single message produced by a session. It is a value and is never mutated
// after construction.
type NoteEvent struct {
	Command   MIDICommand
	Channel   uint8  // 0-15
	Note      uint8  // 0-127
	Velocity  uint8  // 1-127 for NoteOn, pressure for PolyAftertouch, 0 for NoteOff
	Key       KeyID  // physical key that produced the event
	Timestamp uint64 // UnixNano of the sample that triggered the event
}

// Ref returns the (channel, note) pair addressed by the event.
func (e NoteEvent) Ref() NoteRef {
	return NoteRef{Channel: e.Channel, Note: e.Note}
}

func (e NoteEvent) String() string {
	switch e.Command {
	case NoteOff:
		return fmt.Sprintf("%s ch=%d note=%d key=0x%02X", e.Command, e.Channel, e.Note, uint16(e.Key))
	default:
		return fmt.Sprintf("%s ch=%d note=%d vel=%d key=0x%02X", e.Command, e.Channel, e.Note, e.Velocity, uint16(e.Key))
	}
}

// DeviceInfo contains information about a MIDI output device.
type DeviceInfo struct {
	Name         string // Device name.
	Manufacturer string // Device manufacturer.
	EntityName   string // Name of the entity to which the device belongs.
}

// NoteSink accepts encoded note events in submission order and delivers them to a MIDI port.
type NoteSink interface {
	Send(event NoteEvent) error // Delivers one event; an error means this message was lost.
	Close() error               // Releases the underlying port.
}

// DeviceLister is implemented by sinks that can enumerate the output ports of the platform.
type DeviceLister interface {
	ListDevices() ([]DeviceInfo, error)
}

// OutputConfig holds configuration for opening a native MIDI output.
type OutputConfig struct {
	ClientName string // Name of the MIDI client registered with the OS.
	PortName   string // Substring of an existing port to open; names the virtual port when none matches.
	DeviceID   int    // Index of an existing output port; negative means "use PortName".
}
