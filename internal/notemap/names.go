package notemap

import (
	"fmt"
	"strconv"
	"strings"
)

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var pitchClasses = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// NoteName returns the human-readable version of a note value, with C4 = 60.
func NoteName(value uint8) string {
	octave := int(value)/12 - 1
	return noteNames[int(value)%12] + strconv.Itoa(octave)
}

// ParseNote parses names such as "C4", "f#3", "Bb-1" into a MIDI note number (C4 = 60).
func ParseNote(name string) (uint8, error) {
	s := strings.TrimSpace(name)
	if s == "" {
		return 0, fmt.Errorf("empty note name")
	}

	class, ok := pitchClasses[strings.ToUpper(s[:1])[0]]
	if !ok {
		return 0, fmt.Errorf("invalid note name %q", name)
	}
	s = s[1:]

	for len(s) > 0 && (s[0] == '#' || s[0] == 'b') {
		if s[0] == '#' {
			class++
		} else {
			class--
		}
		s = s[1:]
	}

	octave, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in note name %q", name)
	}

	value := (octave+1)*12 + class
	if value < 0 || value > 127 {
		return 0, fmt.Errorf("note %q out of MIDI range", name)
	}
	return uint8(value), nil
}
