//go:build windows
// +build windows

package analogwindows

import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// WootingAnalogResult codes returned by the wrapper library.
const (
	resultOk                  = 1
	resultUnInitialized       = -2000
	resultNoDevices           = -1999
	resultDeviceDisconnected  = -1998
	resultFailure             = -1997
	resultInvalidArgument     = -1996
	resultNoPlugins           = -1995
	resultFunctionNotFound    = -1994
	resultNoMapping           = -1993
	resultNotAvailable        = -1992
	resultIncompatibleVersion = -1991
	resultDLLNotFound         = -1990
)

// keycodeHID selects HID usage codes as key identifiers.
const keycodeHID = 0

const defaultBufferSize = 40

func resultString(code int32) string {
	switch code {
	case resultUnInitialized:
		return "UnInitialized"
	case resultNoDevices:
		return "NoDevices"
	case resultDeviceDisconnected:
		return "DeviceDisconnected"
	case resultFailure:
		return "Failure"
	case resultInvalidArgument:
		return "InvalidArgument"
	case resultNoPlugins:
		return "NoPlugins"
	case resultFunctionNotFound:
		return "FunctionNotFound"
	case resultNoMapping:
		return "NoMapping"
	case resultNotAvailable:
		return "NotAvailable"
	case resultIncompatibleVersion:
		return "IncompatibleVersion"
	case resultDLLNotFound:
		return "DLLNotFound"
	default:
		return fmt.Sprintf("WootingAnalogResult(%d)", code)
	}
}

// Source reads the full analog buffer from the Wooting analog SDK wrapper.
type Source struct {
	logger contracts.Logger

	procInitialise     *windows.LazyProc
	procUninitialise   *windows.LazyProc
	procSetKeycodeMode *windows.LazyProc
	procReadFullBuffer *windows.LazyProc

	codes  []uint16
	depths []float32
	mu     sync.Mutex
	open   bool
}

// NewSampleSource loads the wrapper library and initialises the SDK.
func NewSampleSource(cfg contracts.SourceConfig, logger contracts.Logger) (contracts.SampleSource, error) {
	name := cfg.LibraryPath
	if name == "" {
		name = "wooting_analog_wrapper.dll"
	}
	size := cfg.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}

	dll := windows.NewLazyDLL(name)
	if err := dll.Load(); err != nil {
		logger.Error("Failed to load analog SDK", logger.Field().String("library", name), logger.Field().Error("error", err))
		return nil, fmt.Errorf("%w: %v", contracts.ErrSdkUnavailable, err)
	}

	s := &Source{
		logger:             logger,
		procInitialise:     dll.NewProc("wooting_analog_initialise"),
		procUninitialise:   dll.NewProc("wooting_analog_uninitialise"),
		procSetKeycodeMode: dll.NewProc("wooting_analog_set_keycode_mode"),
		procReadFullBuffer: dll.NewProc("wooting_analog_read_full_buffer"),
		codes:              make([]uint16, size),
		depths:             make([]float32, size),
	}

	logger.Info("Starting Wooting Analog SDK")
	r1, _, _ := s.procInitialise.Call()
	devices := int32(r1)
	if devices < 0 {
		return nil, fmt.Errorf("%w: initialise: %s", contracts.ErrSdkUnavailable, resultString(devices))
	}
	logger.Info("Analog SDK initialised", logger.Field().Int("devices", int(devices)))

	if r1, _, _ := s.procSetKeycodeMode.Call(keycodeHID); int32(r1) != resultOk {
		logger.Warn("Failed to select HID keycodes", logger.Field().String("result", resultString(int32(r1))))
	}

	s.open = true
	return s, nil
}

// Read returns one sample per key the SDK currently reports as pressed.
func (s *Source) Read() ([]contracts.Sample, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil, fmt.Errorf("%w: source closed", contracts.ErrSdkUnavailable)
	}

	r1, _, _ := s.procReadFullBuffer.Call(
		uintptr(unsafe.Pointer(&s.codes[0])),
		uintptr(unsafe.Pointer(&s.depths[0])),
		uintptr(len(s.codes)),
	)
	n := int32(r1)
	if n < 0 {
		return nil, fmt.Errorf("%w: read buffer: %s", contracts.ErrSdkUnavailable, resultString(n))
	}

	now := time.Now()
	samples := make([]contracts.Sample, n)
	for i := int32(0); i < n; i++ {
		samples[i] = contracts.Sample{
			Key:   contracts.KeyID(s.codes[i]),
			Depth: float64(s.depths[i]),
			At:    now,
		}
	}
	return samples, nil
}

// Close uninitialises the SDK.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.open {
		return nil
	}
	s.open = false

	r1, _, _ := s.procUninitialise.Call()
	if code := int32(r1); code != resultOk {
		return fmt.Errorf("uninitialise analog SDK: %s", resultString(code))
	}
	s.logger.Info("Analog SDK uninitialised")
	return nil
}
