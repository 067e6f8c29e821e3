//go:build windows
// +build windows

package midiwindows

import (
	"errors"
	"fmt"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/leandrodaf/analogmidi/internal/midi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// HMIDIOUT is a winmm output device handle.
type HMIDIOUT windows.Handle

// CALLBACK_NULL opens the device without a completion callback.
const CALLBACK_NULL = 0x00000000

// Struct representing MIDI output device capabilities (MIDIOUTCAPSW).
type midiOutCaps struct {
	wMid           uint16
	wPid           uint16
	vDriverVersion uint32
	szPname        [32]uint16
	wTechnology    uint16
	wVoices        uint16
	wNotes         uint16
	wChannelMask   uint16
	dwSupport      uint32
}

var (
	ErrNoMIDIDevices     = errors.New("no MIDI output devices found")
	ErrInvalidMIDIDevice = errors.New("invalid MIDI output device")
	ErrSinkClosed        = errors.New("MIDI sink closed")
)

// Load the winmm.dll library and required functions
var (
	winmm                 = windows.NewLazySystemDLL("winmm.dll")
	procMidiOutGetNumDevs = winmm.NewProc("midiOutGetNumDevs")
	procMidiOutGetDevCaps = winmm.NewProc("midiOutGetDevCapsW")
	procMidiOutOpen       = winmm.NewProc("midiOutOpen")
	procMidiOutShortMsg   = winmm.NewProc("midiOutShortMsg")
	procMidiOutReset      = winmm.NewProc("midiOutReset")
	procMidiOutClose      = winmm.NewProc("midiOutClose")
)

// Sink writes note events to a winmm output device. Windows has no native virtual ports,
// so PortName usually names a loopback device such as a loopMIDI port.
type Sink struct {
	logger contracts.Logger
	handle HMIDIOUT
	mu     sync.Mutex
	open   bool
}

// NewNoteSink opens the output device selected by DeviceID, or the first device whose
// name contains PortName when DeviceID is negative.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	s := &Sink{logger: logger}

	deviceID := cfg.DeviceID
	if deviceID < 0 {
		devices, err := s.ListDevices()
		if err != nil {
			return nil, err
		}
		names := make([]string, len(devices))
		for i, d := range devices {
			names[i] = d.Name
		}
		deviceID = midi.MatchPort(names, cfg.PortName)
		if deviceID < 0 {
			logger.Error("No MIDI output matches port name", logger.Field().String("port", cfg.PortName))
			return nil, fmt.Errorf("%w: %q", ErrInvalidMIDIDevice, cfg.PortName)
		}
	}

	r1, _, err := procMidiOutOpen.Call(
		uintptr(unsafe.Pointer(&s.handle)),
		uintptr(deviceID),
		0,
		0,
		CALLBACK_NULL,
	)
	if r1 != 0 {
		logger.Error(fmt.Sprintf("Failed to open MIDI output %d: %v", deviceID, err))
		return nil, fmt.Errorf("failed to open MIDI output %d: %v", deviceID, err)
	}

	s.open = true
	logger.Info(fmt.Sprintf("MIDI output %d connected", deviceID))
	return s, nil
}

// ListDevices lists the available MIDI output devices
func (s *Sink) ListDevices() ([]contracts.DeviceInfo, error) {
	r0, _, _ := procMidiOutGetNumDevs.Call()
	numDevices := uint32(r0)
	if numDevices == 0 {
		s.logger.Warn("No MIDI output devices found")
		return nil, ErrNoMIDIDevices
	}

	devices := make([]contracts.DeviceInfo, numDevices)
	for i := uint32(0); i < numDevices; i++ {
		var caps midiOutCaps
		r1, _, _ := procMidiOutGetDevCaps.Call(
			uintptr(i),
			uintptr(unsafe.Pointer(&caps)),
			unsafe.Sizeof(caps),
		)
		if r1 != 0 {
			s.logger.Warn(fmt.Sprintf("Failed to get information for MIDI output %d", i))
			continue
		}
		deviceName := windows.UTF16ToString(caps.szPname[:])
		devices[i] = contracts.DeviceInfo{
			Name:         deviceName,
			EntityName:   deviceName,
			Manufacturer: fmt.Sprintf("MID: %d PID: %d", caps.wMid, caps.wPid),
		}
	}
	return devices, nil
}

// Send encodes the event and writes it as a short message.
func (s *Sink) Send(ev contracts.NoteEvent) error {
	msg, err := midi.Encode(ev)
	if err != nil {
		return err
	}
	packed, err := midi.ShortMessage(msg)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.open {
		return ErrSinkClosed
	}

	r1, _, callErr := procMidiOutShortMsg.Call(uintptr(s.handle), uintptr(packed))
	if r1 != 0 {
		return fmt.Errorf("midiOutShortMsg returned %d: %v", r1, callErr)
	}
	return nil
}

// Close resets and closes the output device.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false

	if r1, _, err := procMidiOutReset.Call(uintptr(s.handle)); r1 != 0 {
		s.logger.Warn(fmt.Sprintf("Failed to reset MIDI output: %v", err))
	}
	r1, _, err := procMidiOutClose.Call(uintptr(s.handle))
	if r1 != 0 {
		s.logger.Error(fmt.Sprintf("Failed to close MIDI output: %v", err))
		return err
	}
	s.handle = 0
	s.logger.Info("MIDI output closed")
	return nil
}
