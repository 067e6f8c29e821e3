package contracts

import (
	"context"
	"time"
)

// Session drives one analog keyboard into one MIDI output.
type Session interface {
	Tick() ([]NoteEvent, error)    // Processes one sample set and returns the events sent, in order.
	Run(ctx context.Context) error // Ticks at the configured rate until ctx is done or the SDK fails.
	Stop() error                   // Flushes held notes, then releases the sink and the source.
	Enabled() bool                 // Reports whether note output is currently enabled.
}

// SessionOptions defines the configuration options for a session.
type SessionOptions struct {
	Logger      Logger           // Logger for lifecycle events and errors.
	LogLevel    LogLevel         // Level of logging to use.
	Config      *Config          // Thresholds, velocity curve and layout.
	Source      SampleSource     // Where analog readings come from.
	Sink        NoteSink         // Where MIDI events go.
	RefreshRate float64          // Ticks per second used by Run.
	Clock       func() time.Time // Time source for ticks without samples.
}

// Option is a function that modifies SessionOptions.
type Option func(*SessionOptions)

// WithLogger sets the logger for the session.
func WithLogger(l Logger) Option {
	return func(opts *SessionOptions) {
		opts.Logger = l
	}
}

// WithLogLevel sets the logging level for the session.
func WithLogLevel(level LogLevel) Option {
	return func(opts *SessionOptions) {
		opts.LogLevel = level
	}
}

// WithConfig sets thresholds, velocity curve and layout. Zero fields are filled with defaults.
func WithConfig(config Config) Option {
	return func(opts *SessionOptions) {
		opts.Config = &config
	}
}

// WithSampleSource sets the analog sample source.
func WithSampleSource(source SampleSource) Option {
	return func(opts *SessionOptions) {
		opts.Source = source
	}
}

// WithNoteSink sets the MIDI output.
func WithNoteSink(sink NoteSink) Option {
	return func(opts *SessionOptions) {
		opts.Sink = sink
	}
}

// WithRefreshRate sets the polling frequency in Hz used by Run.
func WithRefreshRate(hz float64) Option {
	return func(opts *SessionOptions) {
		opts.RefreshRate = hz
	}
}

// WithClock overrides the time source.
func WithClock(clock func() time.Time) Option {
	return func(opts *SessionOptions) {
		opts.Clock = clock
	}
}
