//go:build darwin
// +build darwin

package mididarwin

import (
	"errors"
	"fmt"
	"sync"

	"github.com/youpy/go-coremidi"

	"github.com/leandrodaf/analogmidi/internal/midi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Error definitions for CoreMIDI output issues.
var (
	ErrNoMIDIDestinations     = errors.New("no MIDI destinations found")
	ErrInvalidMIDIDestination = errors.New("invalid MIDI destination")
	ErrCreateVirtualSource    = errors.New("error creating virtual source")
	ErrCreateOutputPort       = errors.New("error creating output port")
	ErrSinkClosed             = errors.New("MIDI sink closed")
)

// Sink publishes note events through CoreMIDI. With a negative DeviceID it sends to the first
// destination whose name contains PortName, or registers a virtual source named PortName
// that other applications can subscribe to when none does; otherwise it sends to the
// destination at DeviceID.
type Sink struct {
	logger      contracts.Logger
	client      coremidi.Client
	source      coremidi.Source
	port        coremidi.OutputPort
	destination coremidi.Destination
	virtual     bool
	mu          sync.Mutex
	closed      bool
}

// NewNoteSink creates the CoreMIDI client and opens the configured output.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	client, err := coremidi.NewClient(cfg.ClientName)
	if err != nil {
		return nil, err
	}
	logger.Info("MIDI client successfully created", logger.Field().String("client", cfg.ClientName))

	s := &Sink{logger: logger, client: client}
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error retrieving MIDI destinations: %w", err)
	}

	if cfg.DeviceID < 0 && cfg.PortName != "" {
		names := make([]string, len(destinations))
		for i, destination := range destinations {
			names[i] = destination.Name()
		}
		cfg.DeviceID = midi.MatchPort(names, cfg.PortName)
	}
	if cfg.DeviceID < 0 {
		if cfg.PortName == "" {
			cfg.PortName = cfg.ClientName
		}
		s.source, err = coremidi.NewSource(client, cfg.PortName)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCreateVirtualSource, err)
		}
		s.virtual = true
		logger.Info("Virtual MIDI source registered", logger.Field().String("port", cfg.PortName))
		return s, nil
	}

	if cfg.DeviceID >= len(destinations) {
		logger.Error(ErrInvalidMIDIDestination.Error(), logger.Field().Int("deviceID", cfg.DeviceID))
		return nil, ErrInvalidMIDIDestination
	}
	s.destination = destinations[cfg.DeviceID]
	s.port, err = coremidi.NewOutputPort(client, "Output Port")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCreateOutputPort, err)
	}
	logger.Info("MIDI destination selected",
		logger.Field().Int("deviceID", cfg.DeviceID),
		logger.Field().String("deviceName", s.destination.Name()))
	return s, nil
}

// ListDevices retrieves the available MIDI destinations.
func (s *Sink) ListDevices() ([]contracts.DeviceInfo, error) {
	destinations, err := coremidi.AllDestinations()
	if err != nil {
		return nil, fmt.Errorf("error listing MIDI destinations: %w", err)
	}
	if len(destinations) == 0 {
		s.logger.Warn(ErrNoMIDIDestinations.Error())
		return nil, ErrNoMIDIDestinations
	}

	devices := make([]contracts.DeviceInfo, len(destinations))
	for i, destination := range destinations {
		entity := destination.Entity()
		devices[i] = contracts.DeviceInfo{
			Name:         destination.Name(),
			EntityName:   entity.Name(),
			Manufacturer: entity.Manufacturer(),
		}
	}
	return devices, nil
}

// Send encodes the event and hands it to CoreMIDI.
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

	packet := coremidi.NewPacket(msg.Bytes(), 0)
	if s.virtual {
		return packet.Received(&s.source)
	}
	return packet.Send(&s.port, &s.destination)
}

// Close stops accepting events. CoreMIDI releases the client when the process exits.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.logger.Info("MIDI output closed")
	return nil
}
