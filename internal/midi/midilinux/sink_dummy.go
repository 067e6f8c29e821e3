//go:build !linux
// +build !linux

package midilinux

import (
	"fmt"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// NewNoteSink reports that the RtMidi/ALSA sink is unavailable on this platform.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	logger.Warn("ALSA sink requested on a non-Linux system")
	return nil, fmt.Errorf("%w: ALSA output requires Linux", contracts.ErrUnsupportedOS)
}
