// Package replay provides a scripted sample source that plays back prepared frames.
package replay

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// ErrExhausted is returned once every frame has been played and looping is off.
var ErrExhausted = errors.New("replay exhausted")

// Frame is the set of readings of one poll. Keys with depth 0 are omitted from Read,
// the way the analog SDK leaves out keys at rest.
type Frame map[contracts.KeyID]float64

// Source plays frames back one per Read, stamping them period apart.
type Source struct {
	frames []Frame
	period time.Duration
	loop   bool
	clock  func() time.Time

	mu     sync.Mutex
	next   int
	played int
	start  time.Time
	closed bool
}

// Option configures a Source.
type Option func(*Source)

// WithPeriod sets the time between two frames (default 5ms, i.e. 200 Hz).
func WithPeriod(period time.Duration) Option {
	return func(s *Source) {
		s.period = period
	}
}

// WithLoop restarts playback after the last frame.
func WithLoop() Option {
	return func(s *Source) {
		s.loop = true
	}
}

// WithClock sets the time of the first frame.
func WithClock(clock func() time.Time) Option {
	return func(s *Source) {
		s.clock = clock
	}
}

// New returns a Source over frames.
func New(frames []Frame, opts ...Option) *Source {
	s := &Source{
		frames: frames,
		period: 5 * time.Millisecond,
		clock:  time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Read returns the next frame as samples in ascending key order.
func (s *Source) Read() ([]contracts.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, fmt.Errorf("%w: source closed", contracts.ErrSdkUnavailable)
	}
	if s.next >= len(s.frames) {
		if !s.loop || len(s.frames) == 0 {
			return nil, ErrExhausted
		}
		s.next = 0
	}
	if s.played == 0 {
		s.start = s.clock()
	}

	at := s.start.Add(time.Duration(s.played) * s.period)
	frame := s.frames[s.next]
	s.next++
	s.played++

	keys := make([]contracts.KeyID, 0, len(frame))
	for key, depth := range frame {
		if depth > 0 {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)

	samples := make([]contracts.Sample, len(keys))
	for i, key := range keys {
		samples[i] = contracts.Sample{Key: key, Depth: frame[key], At: at}
	}
	return samples, nil
}

// Close stops playback.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// Sequence builds frames from one depth sequence per key. Shorter sequences leave their
// key at rest once they run out.
func Sequence(depths map[contracts.KeyID][]float64) []Frame {
	n := 0
	for _, seq := range depths {
		n = max(n, len(seq))
	}
	frames := make([]Frame, n)
	for i := range frames {
		frames[i] = make(Frame, len(depths))
		for key, seq := range depths {
			if i < len(seq) {
				frames[i][key] = seq[i]
			}
		}
	}
	return frames
}

// Strike returns the depth sequence of a press that reaches full travel in pressTicks,
// holds for holdTicks and comes back up in as many ticks as it went down.
func Strike(pressTicks, holdTicks int) []float64 {
	pressTicks = max(pressTicks, 1)
	seq := make([]float64, 0, 2*pressTicks+holdTicks+1)
	for i := 1; i <= pressTicks; i++ {
		seq = append(seq, float64(i)/float64(pressTicks))
	}
	for i := 0; i < holdTicks; i++ {
		seq = append(seq, 1)
	}
	for i := pressTicks - 1; i >= 0; i-- {
		seq = append(seq, float64(i)/float64(pressTicks))
	}
	return seq
}

// Scale plays each key in turn, one strike per key, with gapTicks of silence between them.
// Strikes alternate between fast and slow presses so velocity changes audibly.
func Scale(keys []contracts.KeyID, gapTicks int) []Frame {
	var frames []Frame
	for i, key := range keys {
		press := 2
		if i%2 == 1 {
			press = 8
		}
		for _, depth := range Strike(press, 20) {
			frames = append(frames, Frame{key: depth})
		}
		for j := 0; j < gapTicks; j++ {
			frames = append(frames, Frame{})
		}
	}
	return frames
}
