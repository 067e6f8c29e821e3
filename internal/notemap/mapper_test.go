package notemap

import (
	"errors"
	"slices"
	"testing"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

func TestResolve(t *testing.T) {
	m, err := NewMapper(contracts.Layout{
		1: {Channel: 0, Note: 60, Shift: 12},
		2: {Channel: 3, Note: 120, Shift: 12},
		3: {Channel: 1, Note: 5, Shift: -12},
	})
	if err != nil {
		t.Fatalf("NewMapper: %v", err)
	}

	cases := []struct {
		key     contracts.KeyID
		shifted bool
		want    contracts.NoteRef
		ok      bool
	}{
		{key: 1, want: contracts.NoteRef{Channel: 0, Note: 60}, ok: true},
		{key: 1, shifted: true, want: contracts.NoteRef{Channel: 0, Note: 72}, ok: true},
		{key: 2, want: contracts.NoteRef{Channel: 3, Note: 120}, ok: true},
		{key: 2, shifted: true, ok: false},
		{key: 3, shifted: true, ok: false},
		{key: 99, ok: false},
	}
	for _, c := range cases {
		got, ok := m.Resolve(c.key, c.shifted)
		if ok != c.ok || (ok && got != c.want) {
			t.Errorf("Resolve(%d, %v) = %v, %v; want %v, %v", c.key, c.shifted, got, ok, c.want, c.ok)
		}
	}
}

func TestUnmappedKeyIsIgnored(t *testing.T) {
	m, _ := NewMapper(contracts.Layout{1: {Note: 60}})
	if _, ok := m.Lookup(2); ok {
		t.Fatalf("key 2 should not be mapped")
	}
}

func TestInvalidEntriesAreSkipped(t *testing.T) {
	m, err := NewMapper(contracts.Layout{
		1: {Channel: 0, Note: 60},
		2: {Channel: 16, Note: 61},
		3: {Channel: 0, Note: 128},
		4: {Channel: 0, Note: 60},
	})
	if !errors.Is(err, contracts.ErrInvalidLayout) {
		t.Fatalf("expected ErrInvalidLayout, got %v", err)
	}

	var layoutErr *contracts.LayoutError
	if !errors.As(err, &layoutErr) {
		t.Fatalf("expected *LayoutError, got %T", err)
	}
	if len(layoutErr.Issues) != 3 {
		t.Fatalf("expected 3 issues, got %d: %v", len(layoutErr.Issues), err)
	}

	skipped := 0
	for _, issue := range layoutErr.Issues {
		if issue.Skipped {
			skipped++
		}
	}
	if skipped != 2 {
		t.Fatalf("expected 2 skipped entries, got %d", skipped)
	}

	if got := m.Keys(); !slices.Equal(got, []contracts.KeyID{1, 4}) {
		t.Fatalf("Keys() = %v, want [1 4]", got)
	}
	if got := m.KeysFor(contracts.NoteRef{Channel: 0, Note: 60}); !slices.Equal(got, []contracts.KeyID{1, 4}) {
		t.Fatalf("KeysFor(0/60) = %v, want [1 4]", got)
	}
}

func TestParseNote(t *testing.T) {
	cases := map[string]uint8{
		"C4":   60,
		"c4":   60,
		"C#4":  61,
		"Db4":  61,
		"A4":   69,
		"C-1":  0,
		"G9":   127,
		"bb3":  58,
		" E2 ": 40,
	}
	for in, want := range cases {
		got, err := ParseNote(in)
		if err != nil {
			t.Errorf("ParseNote(%q): %v", in, err)
			continue
		}
		if got != want {
			t.Errorf("ParseNote(%q) = %d, want %d", in, got, want)
		}
	}

	for _, bad := range []string{"", "H4", "C", "C#x", "G#9", "Cb-1"} {
		if _, err := ParseNote(bad); err == nil {
			t.Errorf("ParseNote(%q) should fail", bad)
		}
	}
}

func TestNoteNameRoundTrip(t *testing.T) {
	for v := 0; v <= 127; v++ {
		got, err := ParseNote(NoteName(uint8(v)))
		if err != nil || got != uint8(v) {
			t.Fatalf("note %d: NoteName=%q parsed to %d (%v)", v, NoteName(uint8(v)), got, err)
		}
	}
}

func TestPianoRow(t *testing.T) {
	layout := PianoRow(60, 2, 12)
	if len(layout) != len(pianoRow) {
		t.Fatalf("expected %d keys, got %d", len(pianoRow), len(layout))
	}
	if b := layout[KeyQ]; b.Note != 60 || b.Channel != 2 || b.Shift != 12 {
		t.Fatalf("Q binding = %+v", b)
	}
	if b := layout[KeyP]; b.Note != 76 {
		t.Fatalf("P binding = %+v, want note 76", b)
	}
	if _, err := NewMapper(layout); err != nil {
		t.Fatalf("piano row should be a valid layout: %v", err)
	}

	high := PianoRow(120, 0, 0)
	if len(high) != 8 {
		t.Fatalf("expected notes 120-127 only, got %d keys", len(high))
	}
}
