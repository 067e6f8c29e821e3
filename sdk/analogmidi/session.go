// Package analogmidi is the entry point for turning an analog keyboard into a MIDI instrument.
package analogmidi

import (
	"github.com/leandrodaf/analogmidi/internal/engine"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// NewSession creates a session with the specified options.
// It applies default options, validates the configuration and starts the session.
//
// opts ...contracts.Option: A variadic list of option functions to customize the session.
// A sample source and a note sink are required; see NewSampleSource and NewNoteSink.
//
// Returns:
//   - contracts.Session: A started session, enabled and with every key idle.
//   - error: An error wrapping contracts.ErrInvalidConfig if the options are unusable.
func NewSession(opts ...contracts.Option) (contracts.Session, error) {
	options, err := applyDefaultOptions(opts...)
	if err != nil {
		return nil, err
	}

	session, err := engine.NewSession(&options)
	if err != nil {
		return nil, err
	}

	return session, nil
}
