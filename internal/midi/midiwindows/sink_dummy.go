//go:build !windows
// +build !windows

package midiwindows

import (
	"fmt"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// NewNoteSink reports that winmm output is unavailable on this platform.
func NewNoteSink(cfg contracts.OutputConfig, logger contracts.Logger) (contracts.NoteSink, error) {
	logger.Warn("winmm sink requested on a non-Windows system")
	return nil, fmt.Errorf("%w: winmm output requires Windows", contracts.ErrUnsupportedOS)
}
