//go:build !darwin
// +build !darwin

package mididarwin

import (
	"fmt"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// NewNoteSink reports that CoreMIDI output is unavailable on this platform.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	logger.Warn("CoreMIDI sink requested on a non-macOS system")
	return nil, fmt.Errorf("%w: CoreMIDI output requires macOS", contracts.ErrUnsupportedOS)
}
