//go:build linux
// +build linux

package midilinux

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"

	"github.com/leandrodaf/analogmidi/internal/midi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

var (
	ErrNoMIDIPorts     = errors.New("no MIDI output ports found")
	ErrInvalidMIDIPort = errors.New("invalid MIDI output port")
	ErrSinkClosed      = errors.New("MIDI sink closed")
)

// Sink writes note events through RtMidi (ALSA). With a negative DeviceID it connects to the
// first port whose name contains PortName and creates a virtual port named PortName when
// none does; otherwise it connects to the port at DeviceID.
type Sink struct {
	logger contracts.Logger
	drv    *rtmididrv.Driver
	out    drivers.Out
	send   func(msg gomidi.Message) error
	mu     sync.Mutex
	closed bool
}

// NewNoteSink opens the RtMidi driver and the configured output port.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, fmt.Errorf("rtmididrv.New: %w", err)
	}
	s := &Sink{logger: logger, drv: drv}

	s.out, err = s.findOut(cfg)
	switch {
	case err == nil:
		logger.Info("MIDI output selected",
			logger.Field().Int("deviceID", s.out.Number()),
			logger.Field().String("deviceName", s.out.String()))
	case cfg.DeviceID < 0 && cfg.PortName != "" && (errors.Is(err, ErrInvalidMIDIPort) || errors.Is(err, ErrNoMIDIPorts)):
		s.out, err = drv.OpenVirtualOut(cfg.PortName)
		if err != nil {
			_ = drv.Close()
			return nil, fmt.Errorf("open virtual output %q: %w", cfg.PortName, err)
		}
		logger.Info("Virtual MIDI output opened", logger.Field().String("port", cfg.PortName))
	default:
		_ = drv.Close()
		return nil, err
	}

	s.send, err = gomidi.SendTo(s.out)
	if err != nil {
		_ = drv.Close()
		return nil, fmt.Errorf("open output: %w", err)
	}
	return s, nil
}

// findOut returns the port at DeviceID or, with a negative DeviceID, the first port whose
// name contains PortName.
func (s *Sink) findOut(cfg contracts.OutputConfig) (drivers.Out, error) {
	outs, err := s.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("list MIDI outputs: %w", err)
	}
	if len(outs) == 0 {
		return nil, ErrNoMIDIPorts
	}
	if cfg.DeviceID >= 0 {
		if cfg.DeviceID >= len(outs) {
			return nil, fmt.Errorf("%w: %d", ErrInvalidMIDIPort, cfg.DeviceID)
		}
		return outs[cfg.DeviceID], nil
	}

	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	i := midi.MatchPort(names, cfg.PortName)
	if i < 0 {
		return nil, fmt.Errorf("%w: no port matches %q", ErrInvalidMIDIPort, cfg.PortName)
	}
	return outs[i], nil
}

// ListDevices returns the output ports known to RtMidi.
func (s *Sink) ListDevices() ([]contracts.DeviceInfo, error) {
	outs, err := s.drv.Outs()
	if err != nil {
		return nil, fmt.Errorf("list MIDI outputs: %w", err)
	}
	if len(outs) == 0 {
		s.logger.Warn(ErrNoMIDIPorts.Error())
		return nil, ErrNoMIDIPorts
	}
	devices := make([]contracts.DeviceInfo, len(outs))
	for i, out := range outs {
		name := out.String()
		entity := name
		if client, _, ok := strings.Cut(name, ":"); ok {
			entity = client
		}
		devices[i] = contracts.DeviceInfo{Name: name, EntityName: entity, Manufacturer: "ALSA"}
	}
	return devices, nil
}

// Send encodes the event and writes it to the port.
func (s *Sink) Send(ev contracts.NoteEvent) error {
	msg, err := midi.Encode(ev)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrSinkClosed
	}
	return s.send(msg)
}

// Close releases the port and the driver.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	if err := s.out.Close(); err != nil {
		s.logger.Warn("Failed to close MIDI output", s.logger.Field().Error("error", err))
	}
	if err := s.drv.Close(); err != nil {
		return fmt.Errorf("close rtmidi driver: %w", err)
	}
	s.logger.Info("MIDI output closed")
	return nil
}
