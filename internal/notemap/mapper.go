// Package notemap resolves physical keys to MIDI notes under a layout.
package notemap

import (
	"slices"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

const (
	maxChannel = 15
	maxNote    = 127
)

// Mapper is an immutable, validated view of a layout.
type Mapper struct {
	bindings map[contracts.KeyID]contracts.Binding
	reverse  map[contracts.NoteRef][]contracts.KeyID
	keys     []contracts.KeyID
}

// NewMapper copies and validates layout. Out-of-range entries are dropped and duplicate
// note bindings are kept; both are reported in a *contracts.LayoutError. The returned
// Mapper is always usable, even when the error is non-nil.
func NewMapper(layout contracts.Layout) (*Mapper, error) {
	m := &Mapper{
		bindings: make(map[contracts.KeyID]contracts.Binding, len(layout)),
		reverse:  make(map[contracts.NoteRef][]contracts.KeyID, len(layout)),
	}

	keys := make([]contracts.KeyID, 0, len(layout))
	for key := range layout {
		keys = append(keys, key)
	}
	slices.Sort(keys)

	var issues []contracts.LayoutIssue
	for _, key := range keys {
		b := layout[key]
		switch {
		case b.Channel > maxChannel:
			issues = append(issues, contracts.LayoutIssue{Key: key, Binding: b, Reason: "channel out of range 0-15", Skipped: true})
			continue
		case b.Note > maxNote:
			issues = append(issues, contracts.LayoutIssue{Key: key, Binding: b, Reason: "note out of range 0-127", Skipped: true})
			continue
		}

		ref := contracts.NoteRef{Channel: b.Channel, Note: b.Note}
		if others := m.reverse[ref]; len(others) > 0 {
			issues = append(issues, contracts.LayoutIssue{Key: key, Binding: b, Reason: "note already bound to another key"})
		}
		m.bindings[key] = b
		m.reverse[ref] = append(m.reverse[ref], key)
		m.keys = append(m.keys, key)
	}

	if len(issues) > 0 {
		return m, &contracts.LayoutError{Issues: issues}
	}
	return m, nil
}

// Lookup returns the binding of key, if it is part of the layout.
func (m *Mapper) Lookup(key contracts.KeyID) (contracts.Binding, bool) {
	b, ok := m.bindings[key]
	return b, ok
}

// Resolve returns the note key should start. When shifted is true the binding's Shift is
// applied; a transposition outside 0-127 resolves to nothing.
func (m *Mapper) Resolve(key contracts.KeyID, shifted bool) (contracts.NoteRef, bool) {
	b, ok := m.bindings[key]
	if !ok {
		return contracts.NoteRef{}, false
	}
	note := int(b.Note)
	if shifted {
		note += int(b.Shift)
	}
	if note < 0 || note > maxNote {
		return contracts.NoteRef{}, false
	}
	return contracts.NoteRef{Channel: b.Channel, Note: uint8(note)}, true
}

// KeysFor returns the keys bound to ref without transposition, in ascending order.
func (m *Mapper) KeysFor(ref contracts.NoteRef) []contracts.KeyID {
	return slices.Clone(m.reverse[ref])
}

// Keys returns every mapped key in ascending order.
func (m *Mapper) Keys() []contracts.KeyID {
	return slices.Clone(m.keys)
}

// Len returns the number of mapped keys.
func (m *Mapper) Len() int {
	return len(m.keys)
}
