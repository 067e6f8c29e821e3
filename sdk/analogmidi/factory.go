package analogmidi

import (
	"fmt"
	"runtime"

	"github.com/leandrodaf/analogmidi/internal/analog/analogwindows"
	"github.com/leandrodaf/analogmidi/internal/midi/mididarwin"
	"github.com/leandrodaf/analogmidi/internal/midi/midilinux"
	"github.com/leandrodaf/analogmidi/internal/midi/midiwindows"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// sinkInitializers maps OS names to the native MIDI output of that platform.
var sinkInitializers = map[string]func(contracts.OutputConfig, contracts.Logger) (contracts.NoteSink, error){
	"darwin":  mididarwin.NewNoteSink,  // CoreMIDI virtual source or destination.
	"windows": midiwindows.NewNoteSink, // winmm output device.
	"linux":   midilinux.NewNoteSink,   // ALSA through rtmidi.
}

// sourceInitializers maps OS names to the analog SDK binding of that platform.
var sourceInitializers = map[string]func(contracts.SourceConfig, contracts.Logger) (contracts.SampleSource, error){
	"windows": analogwindows.NewSampleSource, // Wooting analog wrapper DLL.
}

// NewNoteSink opens the native MIDI output for the current operating system. With a negative
// DeviceID it opens the first existing output whose name contains PortName (case-insensitive);
// when none matches, darwin and linux create a virtual port named PortName and windows fails.
// It returns an error wrapping contracts.ErrUnsupportedOS when there is none.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	if cfg.ClientName == "" {
		cfg.ClientName = DefaultClientName
	}
	if initializer, exists := sinkInitializers[runtime.GOOS]; exists {
		return initializer(cfg, logger)
	}
	return nil, fmt.Errorf("%w: no MIDI output for %s", contracts.ErrUnsupportedOS, runtime.GOOS)
}

// NewSampleSource connects to the analog keyboard SDK for the current operating system.
// It returns an error wrapping contracts.ErrUnsupportedOS when there is none.
func NewSampleSource(cfg contracts.SourceConfig, logger contracts.Logger) (contracts.SampleSource, error) {
	if initializer, exists := sourceInitializers[runtime.GOOS]; exists {
		return initializer(cfg, logger)
	}
	return nil, fmt.Errorf("%w: no analog SDK for %s", contracts.ErrUnsupportedOS, runtime.GOOS)
}

// ListDevices returns the MIDI outputs a sink could open, when the platform sink can list them.
func ListDevices(sink contracts.NoteSink) ([]contracts.DeviceInfo, error) {
	lister, ok := sink.(contracts.DeviceLister)
	if !ok {
		return nil, fmt.Errorf("%w: output cannot list devices", contracts.ErrUnsupportedOS)
	}
	return lister.ListDevices()
}
