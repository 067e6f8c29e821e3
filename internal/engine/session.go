// Package engine turns analog sample sets into MIDI events, one tick at a time.
package engine

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"go.uber.org/multierr"

	"github.com/leandrodaf/analogmidi/internal/keystate"
	"github.com/leandrodaf/analogmidi/internal/notemap"
	"github.com/leandrodaf/analogmidi/internal/velocity"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Session owns the key states of one keyboard and drives them from one sample source into
// one sink. Tick and Stop serialize on a mutex so no two ticks overlap.
type Session struct {
	logger  contracts.Logger
	source  contracts.SampleSource
	sink    contracts.NoteSink
	mapper  *notemap.Mapper
	keys    []contracts.KeyID // mapped, ascending
	tracker *keystate.Tracker
	clock   func() time.Time
	period  time.Duration

	toggleKeys   []contracts.KeyID
	modifierKeys []contracts.KeyID

	mu         sync.Mutex
	enabled    bool
	toggleHeld bool
	failure    error
	stopped    bool
	stopOnce   sync.Once
	stopErr    error
}

// NewSession builds a session from fully defaulted options. Layout problems are logged
// once and do not prevent the session from starting.
func NewSession(opts *contracts.SessionOptions) (*Session, error) {
	if opts.Source == nil {
		return nil, fmt.Errorf("%w: no sample source", contracts.ErrInvalidConfig)
	}
	if opts.Sink == nil {
		return nil, fmt.Errorf("%w: no MIDI sink", contracts.ErrInvalidConfig)
	}
	cfg := opts.Config

	estimator, err := velocity.NewEstimator(cfg.Velocity, cfg.HistoryWindow, cfg.FallbackVelocity)
	if err != nil {
		return nil, err
	}

	mapper, err := notemap.NewMapper(cfg.Layout)
	if err != nil {
		var layoutErr *contracts.LayoutError
		if !errors.As(err, &layoutErr) {
			return nil, err
		}
		for _, issue := range layoutErr.Issues {
			opts.Logger.Warn("Layout entry "+issueAction(issue),
				opts.Logger.Field().Int("key", int(issue.Key)),
				opts.Logger.Field().Uint8("channel", issue.Binding.Channel),
				opts.Logger.Field().Uint8("note", issue.Binding.Note),
				opts.Logger.Field().String("reason", issue.Reason))
		}
	}

	s := &Session{
		logger: opts.Logger,
		source: opts.Source,
		sink:   opts.Sink,
		mapper: mapper,
		keys:   mapper.Keys(),
		tracker: keystate.New(keystate.Settings{
			PressThreshold:   cfg.PressThreshold,
			ReleaseThreshold: cfg.ReleaseThreshold,
			DebounceTicks:    cfg.DebounceTicks,
			HistorySize:      cfg.HistorySize,
			Aftertouch:       cfg.Aftertouch,
		}, estimator),
		clock:        opts.Clock,
		period:       time.Duration(float64(time.Second) / opts.RefreshRate),
		toggleKeys:   slices.Clone(cfg.ToggleKeys),
		modifierKeys: slices.Clone(cfg.ModifierKeys),
		enabled:      true,
	}

	s.logger.Info("Session started",
		s.logger.Field().Int("keys", mapper.Len()),
		s.logger.Field().Float64("pressThreshold", cfg.PressThreshold),
		s.logger.Field().Float64("releaseThreshold", cfg.ReleaseThreshold),
		s.logger.Field().Duration("period", s.period))
	return s, nil
}

func issueAction(issue contracts.LayoutIssue) string {
	if issue.Skipped {
		return "skipped"
	}
	return "flagged"
}

// Enabled reports whether note output is on.
func (s *Session) Enabled() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.enabled
}

// Tick reads one sample set, advances every affected key and sends the resulting events.
// Every key history point of a tick is stamped with the session clock read right after the
// source, so Sample.At never mixes time domains into velocity estimation.
// The returned slice holds every event generated this tick, in send order, including those
// the sink rejected. A rejected message is reported as ErrMidiWriteFailed without
// interrupting the tick.
func (s *Session) Tick() ([]contracts.NoteEvent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stopped {
		return nil, contracts.ErrSessionStopped
	}
	if s.failure != nil {
		return nil, s.failure
	}

	samples, err := s.source.Read()
	now := s.clock()
	if err != nil {
		s.failure = fmt.Errorf("%w: %v", contracts.ErrSdkUnavailable, err)
		s.logger.Error("Analog source failed; releasing held notes", s.logger.Field().Error("error", err))
		events := s.tracker.Flush(nil, now)
		return events, multierr.Append(s.failure, s.emit(events))
	}

	frame := make(map[contracts.KeyID]contracts.Sample, len(samples))
	for _, sample := range samples {
		frame[sample.Key] = sample
	}

	var events []contracts.NoteEvent
	if s.updateToggle(frame) && !s.enabled {
		events = s.tracker.Flush(events, now)
	}
	if !s.enabled {
		return events, s.emit(events)
	}

	shifted := s.anyDown(frame, s.modifierKeys)
	resolve := func(key contracts.KeyID) (contracts.NoteRef, bool) {
		return s.mapper.Resolve(key, shifted)
	}

	// Resting keys are absent from the frame; they still mark when a strike began.
	for _, key := range s.keys {
		if _, ok := frame[key]; !ok {
			s.tracker.Rest(key, now)
		}
	}
	for _, key := range s.visit(frame) {
		if sample, ok := frame[key]; ok {
			events = s.tracker.Update(events, key, sample.Depth, now, resolve)
		} else {
			events = s.tracker.Miss(events, key, now)
		}
	}
	return events, s.emit(events)
}

// visit returns the keys to drive this tick in ascending order: mapped keys with a sample
// plus every key the tracker still has to bring to rest.
func (s *Session) visit(frame map[contracts.KeyID]contracts.Sample) []contracts.KeyID {
	keys := s.tracker.Pending()
	for key := range frame {
		if _, ok := s.mapper.Lookup(key); ok {
			keys = append(keys, key)
		}
	}
	slices.Sort(keys)
	return slices.Compact(keys)
}

// updateToggle flips the enabled state on a toggle key press and reports whether it did.
func (s *Session) updateToggle(frame map[contracts.KeyID]contracts.Sample) bool {
	if len(s.toggleKeys) == 0 {
		return false
	}
	held := s.anyDown(frame, s.toggleKeys)
	pressed := held && !s.toggleHeld
	s.toggleHeld = held
	if !pressed {
		return false
	}

	s.enabled = !s.enabled
	if s.enabled {
		s.logger.Info("Enabled keyboard")
	} else {
		s.logger.Info("Disabled keyboard")
	}
	return true
}

func (s *Session) anyDown(frame map[contracts.KeyID]contracts.Sample, keys []contracts.KeyID) bool {
	for _, key := range keys {
		if sample, ok := frame[key]; ok && sample.Depth > 0 {
			return true
		}
	}
	return false
}

// emit sends events in order. Failures are logged and combined; sending continues so a
// lost message never leaves later events unsent.
func (s *Session) emit(events []contracts.NoteEvent) error {
	var errs error
	for _, ev := range events {
		if err := s.sink.Send(ev); err != nil {
			s.logger.Warn("MIDI write failed",
				s.logger.Field().String("event", ev.String()),
				s.logger.Field().Error("error", err))
			errs = multierr.Append(errs, fmt.Errorf("%w: %s: %v", contracts.ErrMidiWriteFailed, ev, err))
			continue
		}
		s.logger.Debug(ev.Command.String(),
			s.logger.Field().Uint8("channel", ev.Channel),
			s.logger.Field().Uint8("note", ev.Note),
			s.logger.Field().Uint8("velocity", ev.Velocity),
			s.logger.Field().Int("key", int(ev.Key)))
	}
	return errs
}

// Run ticks every period until ctx is cancelled (returning nil) or the source fails
// (returning an error matching ErrSdkUnavailable). Write failures are logged and ignored.
func (s *Session) Run(ctx context.Context) error {
	s.logger.Info("Starting polling loop", s.logger.Field().Duration("period", s.period))

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()
	reporter := newRateReporter(time.Second, s.clock)

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Polling loop stopped")
			return nil
		case <-ticker.C:
		}

		if rate, ok := reporter.increment(); ok {
			s.logger.Info("Current polling rate", s.logger.Field().Float64("hz", rate))
		}

		_, err := s.Tick()
		switch {
		case err == nil:
		case errors.Is(err, contracts.ErrSdkUnavailable), errors.Is(err, contracts.ErrSessionStopped):
			return err
		}
	}
}

// Stop releases every held note, then closes the sink and the source. It is safe to call
// more than once; later calls return the first result.
func (s *Session) Stop() error {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		defer s.mu.Unlock()

		s.logger.Info("Stopping session", s.logger.Field().Int("sounding", s.tracker.Sounding()))
		events := s.tracker.Flush(nil, s.clock())
		s.stopErr = multierr.Combine(
			s.emit(events),
			s.sink.Close(),
			s.source.Close(),
		)
		s.stopped = true
		s.logger.Info("Session stopped", s.logger.Field().Int("flushed", len(events)))
	})
	return s.stopErr
}
