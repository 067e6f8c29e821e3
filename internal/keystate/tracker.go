// Package keystate runs one press/release state machine per physical key.
//
// A key starts Idle. It becomes Pressed when its depth reaches the press threshold and
// goes back to Idle, through the transient Released phase, once its depth falls below the
// release threshold. The two thresholds differ so a depth hovering around either boundary
// cannot toggle the note on and off.
//
// A Tracker is owned by a single session and is not safe for concurrent use.
package keystate

import (
	"math"
	"slices"
	"time"

	"github.com/leandrodaf/analogmidi/internal/velocity"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Phase is the lifecycle position of a key.
type Phase int

const (
	Idle Phase = iota
	Pressed
	Released
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Pressed:
		return "pressed"
	case Released:
		return "released"
	default:
		return "unknown"
	}
}

// Resolver returns the note a key should start right now.
type Resolver func(key contracts.KeyID) (contracts.NoteRef, bool)

// KeyState is the mutable record of one key.
type KeyState struct {
	Phase      Phase
	Depth      float64
	PressedAt  time.Time
	PressDepth float64
	Velocity   uint8

	active    contracts.NoteRef
	hasActive bool
	history   []velocity.Point
	missed    int
}

// Active returns the note started by the current press, if any.
func (s *KeyState) Active() (contracts.NoteRef, bool) {
	return s.active, s.hasActive
}

// Settings are the thresholds a Tracker works with.
type Settings struct {
	PressThreshold   float64
	ReleaseThreshold float64
	DebounceTicks    int
	HistorySize      int
	Aftertouch       bool
}

// Tracker owns the state of every key observed in a session.
type Tracker struct {
	settings  Settings
	estimator *velocity.Estimator
	states    map[contracts.KeyID]*KeyState
	keys      []contracts.KeyID // ascending
}

// New returns an empty Tracker.
func New(settings Settings, estimator *velocity.Estimator) *Tracker {
	if settings.HistorySize < 2 {
		settings.HistorySize = 2
	}
	return &Tracker{
		settings:  settings,
		estimator: estimator,
		states:    make(map[contracts.KeyID]*KeyState),
	}
}

func (t *Tracker) state(key contracts.KeyID) *KeyState {
	if s, ok := t.states[key]; ok {
		return s
	}
	s := &KeyState{history: make([]velocity.Point, 0, t.settings.HistorySize)}
	t.states[key] = s
	i, _ := slices.BinarySearch(t.keys, key)
	t.keys = slices.Insert(t.keys, i, key)
	return s
}

// Update feeds one sample for key and appends the resulting events to dst.
func (t *Tracker) Update(dst []contracts.NoteEvent, key contracts.KeyID, depth float64, at time.Time, resolve Resolver) []contracts.NoteEvent {
	s := t.state(key)
	s.missed = 0
	return t.apply(dst, key, s, clampDepth(depth), at, resolve)
}

// Miss records that key reported nothing this tick. Within the debounce budget this is a
// no-op; past it the key is treated as fully released.
func (t *Tracker) Miss(dst []contracts.NoteEvent, key contracts.KeyID, at time.Time) []contracts.NoteEvent {
	s, ok := t.states[key]
	if !ok {
		return dst
	}
	s.missed++
	if s.missed <= t.settings.DebounceTicks {
		return dst
	}
	return t.apply(dst, key, s, 0, at, nil)
}

// Rest records that key, known to be at rest, reported nothing this tick. Sources leave
// resting keys out, so this is the only way the last moment before a strike reaches the
// history. Consecutive rest points collapse into the latest one. Keys that are not Idle at
// depth 0 are left to Miss.
func (t *Tracker) Rest(key contracts.KeyID, at time.Time) {
	s := t.state(key)
	if s.Phase != Idle || s.Depth > 0 {
		return
	}
	if n := len(s.history); n > 0 && s.history[n-1].Depth == 0 {
		s.history[n-1].At = at
		return
	}
	t.record(s, at, 0)
}

func (t *Tracker) apply(dst []contracts.NoteEvent, key contracts.KeyID, s *KeyState, depth float64, at time.Time, resolve Resolver) []contracts.NoteEvent {
	prev := s.Depth
	s.Depth = depth
	t.record(s, at, depth)

	switch s.Phase {
	case Idle:
		if depth < t.settings.PressThreshold {
			return dst
		}
		s.Phase = Pressed
		s.PressedAt = at
		s.PressDepth = depth
		s.Velocity = t.estimator.Estimate(s.history)
		s.hasActive = false
		if resolve != nil {
			s.active, s.hasActive = resolve(key)
		}
		if !s.hasActive {
			return dst
		}
		return append(dst, event(contracts.NoteOn, s.active, s.Velocity, key, at))

	case Pressed:
		if depth < t.settings.ReleaseThreshold {
			s.Phase = Released
			return t.release(dst, key, s, at)
		}
		if t.settings.Aftertouch && s.hasActive && depth != prev {
			return append(dst, event(contracts.PolyAftertouch, s.active, pressure(depth), key, at))
		}
	}
	return dst
}

// release emits the NoteOff for the note the press started and returns the key to Idle.
func (t *Tracker) release(dst []contracts.NoteEvent, key contracts.KeyID, s *KeyState, at time.Time) []contracts.NoteEvent {
	if s.hasActive {
		dst = append(dst, event(contracts.NoteOff, s.active, 0, key, at))
	}
	s.Phase = Idle
	s.hasActive = false
	s.active = contracts.NoteRef{}
	return dst
}

func (t *Tracker) record(s *KeyState, at time.Time, depth float64) {
	if len(s.history) == t.settings.HistorySize {
		copy(s.history, s.history[1:])
		s.history = s.history[:len(s.history)-1]
	}
	s.history = append(s.history, velocity.Point{At: at, Depth: depth})
}

// Flush releases every pressed key, emitting one NoteOff per sounding note, in key order.
func (t *Tracker) Flush(dst []contracts.NoteEvent, at time.Time) []contracts.NoteEvent {
	for _, key := range t.keys {
		s := t.states[key]
		if s.Phase != Pressed {
			continue
		}
		s.Phase = Released
		dst = t.release(dst, key, s, at)
	}
	return dst
}

// Pending returns, in ascending order, the keys that must be visited even when they report
// nothing: pressed keys and keys whose last depth was not zero.
func (t *Tracker) Pending() []contracts.KeyID {
	var keys []contracts.KeyID
	for _, key := range t.keys {
		s := t.states[key]
		if s.Phase != Idle || s.Depth > 0 {
			keys = append(keys, key)
		}
	}
	return keys
}

// Phase returns the phase of key; unseen keys are Idle.
func (t *Tracker) Phase(key contracts.KeyID) Phase {
	if s, ok := t.states[key]; ok {
		return s.Phase
	}
	return Idle
}

// State returns the record of key, or nil if it was never observed.
func (t *Tracker) State(key contracts.KeyID) *KeyState {
	return t.states[key]
}

// Sounding returns the number of keys holding a note.
func (t *Tracker) Sounding() int {
	n := 0
	for _, s := range t.states {
		if s.Phase == Pressed && s.hasActive {
			n++
		}
	}
	return n
}

func event(cmd contracts.MIDICommand, ref contracts.NoteRef, value uint8, key contracts.KeyID, at time.Time) contracts.NoteEvent {
	return contracts.NoteEvent{
		Command:   cmd,
		Channel:   ref.Channel,
		Note:      ref.Note,
		Velocity:  value,
		Key:       key,
		Timestamp: uint64(at.UnixNano()),
	}
}

func pressure(depth float64) uint8 {
	return uint8(math.Round(depth * 127))
}

func clampDepth(depth float64) float64 {
	if math.IsNaN(depth) || depth < 0 {
		return 0
	}
	if depth > 1 {
		return 1
	}
	return depth
}
