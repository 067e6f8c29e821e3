//go:build !windows
// +build !windows

package analogwindows

import (
	"fmt"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// NewSampleSource reports that the Wooting wrapper DLL cannot be loaded on this platform.
func NewSampleSource(cfg contracts.SourceConfig, logger contracts.Logger) (contracts.SampleSource, error) {
	logger.Warn("Analog SDK source requested on a non-Windows system")
	return nil, fmt.Errorf("%w: analog SDK source requires Windows", contracts.ErrUnsupportedOS)
}
