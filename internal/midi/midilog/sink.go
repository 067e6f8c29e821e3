// Package midilog provides a sink that logs events instead of sending them, for dry runs.
package midilog

import (
	"sync"

	"github.com/leandrodaf/analogmidi/internal/midi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Sink encodes every event, as a real port would, and writes it to the logger.
type Sink struct {
	logger contracts.Logger
	mu     sync.Mutex
	sent   int
	closed bool
}

// NewNoteSink returns a logging sink.
func NewNoteSink(logger contracts.Logger) *Sink {
	return &Sink{logger: logger}
}

// Send validates and logs ev.
func (s *Sink) Send(ev contracts.NoteEvent) error {
	msg, err := midi.Encode(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.sent++
	s.mu.Unlock()

	s.logger.Info("MIDI Event",
		s.logger.Field().String("Command", ev.Command.String()),
		s.logger.Field().Uint8("Channel", ev.Channel),
		s.logger.Field().Uint8("Note", ev.Note),
		s.logger.Field().Uint8("Velocity", ev.Velocity),
		s.logger.Field().String("Bytes", msg.String()),
	)
	return nil
}

// Sent returns the number of events accepted so far.
func (s *Sink) Sent() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sent
}

// Close logs the total number of events.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		s.logger.Info("Dry-run MIDI output closed", s.logger.Field().Int("events", s.sent))
	}
	return nil
}
