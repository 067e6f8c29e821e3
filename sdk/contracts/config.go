package contracts

import "time"

// CurveShape selects how a press rate is scaled into the velocity range.
type CurveShape string

const (
	// CurveLinear maps the normalized rate directly.
	CurveLinear CurveShape = "linear"
	// CurveExponential maps the normalized rate through (e^(kx) - 1) / (e^k - 1).
	CurveExponential CurveShape = "exponential"
)

// VelocityCurve converts a press rate (depth units per second) into a MIDI velocity.
type VelocityCurve struct {
	Shape    CurveShape
	MinRate  float64 // rate mapped to Floor
	MaxRate  float64 // rate mapped to Ceiling
	Exponent float64 // k for CurveExponential; positive values favour soft presses
	Floor    uint8   // lowest velocity produced, at least 1
	Ceiling  uint8   // highest velocity produced, at most 127
}

// Binding assigns a key to a note.
type Binding struct {
	Channel uint8 // 0-15
	Note    uint8 // 0-127
	Shift   int8  // semitones added while a modifier key is held
}

// Layout maps physical keys to notes. It is read-only once a session has started.
type Layout map[KeyID]Binding

// Config holds every parameter consumed by a session. It is immutable during a run.
type Config struct {
	PressThreshold   float64       // depth at or above which an idle key starts a note
	ReleaseThreshold float64       // depth below which a pressed key ends its note; must be < PressThreshold
	Velocity         VelocityCurve // press rate to velocity mapping
	FallbackVelocity uint8         // used when the press history is too short to measure
	DebounceTicks    int           // ticks a key may be missing before it is treated as released; 0 releases at once
	HistoryWindow    time.Duration // how far back before the crossing the press rate is measured
	HistorySize      int           // maximum number of samples kept per key
	Aftertouch       bool          // forward depth changes of held keys as polyphonic aftertouch
	Layout           Layout
	ToggleKeys       []KeyID // a press on any of these enables or disables note output
	ModifierKeys     []KeyID // while any of these is down, new presses use Binding.Shift
}
