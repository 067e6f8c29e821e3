package notemap

import "github.com/leandrodaf/analogmidi/sdk/contracts"

// HID usage codes (keyboard page) of the keys used by the built-in layouts.
const (
	KeyE          contracts.KeyID = 0x08
	KeyI          contracts.KeyID = 0x0C
	KeyO          contracts.KeyID = 0x12
	KeyP          contracts.KeyID = 0x13
	KeyQ          contracts.KeyID = 0x14
	KeyR          contracts.KeyID = 0x15
	KeyT          contracts.KeyID = 0x17
	KeyU          contracts.KeyID = 0x18
	KeyW          contracts.KeyID = 0x1A
	KeyY          contracts.KeyID = 0x1C
	Key2          contracts.KeyID = 0x1F
	Key3          contracts.KeyID = 0x20
	Key5          contracts.KeyID = 0x22
	Key6          contracts.KeyID = 0x23
	Key7          contracts.KeyID = 0x24
	Key9          contracts.KeyID = 0x26
	Key0          contracts.KeyID = 0x27
	KeyF12        contracts.KeyID = 0x45
	KeyLeftShift  contracts.KeyID = 0xE1
	KeyRightShift contracts.KeyID = 0xE5
)

// pianoRow lists the upper letter row as white keys and the number row as black keys,
// one semitone apart: Q=C, 2=C#, W=D, 3=D#, E=E, R=F ... P=E an octave and a third up.
var pianoRow = []contracts.KeyID{
	KeyQ, Key2, KeyW, Key3, KeyE, KeyR, Key5, KeyT, Key6, KeyY, Key7, KeyU,
	KeyI, Key9, KeyO, Key0, KeyP,
}

// PianoRow builds the two-row piano layout starting at base on the given channel.
// Notes that would exceed 127 are left out.
func PianoRow(base, channel uint8, shift int8) contracts.Layout {
	layout := make(contracts.Layout, len(pianoRow))
	for i, key := range pianoRow {
		note := int(base) + i
		if note > 127 {
			break
		}
		layout[key] = contracts.Binding{Channel: channel, Note: uint8(note), Shift: shift}
	}
	return layout
}
