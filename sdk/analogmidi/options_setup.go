package analogmidi

import (
	"fmt"
	"math"
	"time"

	"github.com/leandrodaf/analogmidi/internal/logger"
	"github.com/leandrodaf/analogmidi/internal/notemap"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

const (
	DefaultClientName  = "Analog MIDI"
	DefaultPortName    = "Analog Keyboard"
	DefaultRefreshRate = 200 // Hz
	DefaultBaseNote    = 60  // C4
	DefaultShift       = 12
)

// DefaultConfig returns the configuration used when none is given: the piano layout on the
// letter and number rows starting at middle C, F12 to toggle output and either shift key to
// play an octave up.
func DefaultConfig() contracts.Config {
	return contracts.Config{
		PressThreshold:   0.5,
		ReleaseThreshold: 0.2,
		Velocity: contracts.VelocityCurve{
			Shape:    contracts.CurveLinear,
			MinRate:  0,
			MaxRate:  20,
			Exponent: 3,
			Floor:    1,
			Ceiling:  127,
		},
		FallbackVelocity: 64,
		DebounceTicks:    3,
		HistoryWindow:    50 * time.Millisecond,
		HistorySize:      32,
		Layout:           notemap.PianoRow(DefaultBaseNote, 0, DefaultShift),
		ToggleKeys:       []contracts.KeyID{notemap.KeyF12},
		ModifierKeys:     []contracts.KeyID{notemap.KeyLeftShift, notemap.KeyRightShift},
	}
}

// applyDefaultOptions sets default values for SessionOptions if not explicitly provided.
//
// opts ...contracts.Option: A variadic list of option functions that can modify SessionOptions.
//
// Returns:
//   - contracts.SessionOptions: The finalized session options with defaults applied.
//   - error: An error wrapping contracts.ErrInvalidConfig if the result is unusable.
func applyDefaultOptions(opts ...contracts.Option) (contracts.SessionOptions, error) {
	options := &contracts.SessionOptions{}
	for _, opt := range opts {
		opt(options)
	}

	if options.Logger == nil {
		options.Logger = logger.NewZapLogger()
	}
	if options.LogLevel == 0 {
		options.LogLevel = contracts.InfoLevel
	}
	if options.RefreshRate == 0 {
		options.RefreshRate = DefaultRefreshRate
	}
	if options.Clock == nil {
		options.Clock = time.Now
	}

	if options.Config == nil {
		cfg := DefaultConfig()
		options.Config = &cfg
	} else {
		cfg := withConfigDefaults(*options.Config)
		options.Config = &cfg
	}

	options.Logger.SetLevel(options.LogLevel)

	if err := validate(options); err != nil {
		return contracts.SessionOptions{}, err
	}
	return *options, nil
}

// withConfigDefaults fills the zero fields of cfg that cannot be valid as zero. DebounceTicks,
// Aftertouch and the toggle and modifier keys are left as given.
func withConfigDefaults(cfg contracts.Config) contracts.Config {
	def := DefaultConfig()
	if cfg.PressThreshold == 0 {
		cfg.PressThreshold = def.PressThreshold
	}
	if cfg.ReleaseThreshold == 0 {
		cfg.ReleaseThreshold = def.ReleaseThreshold
	}
	if cfg.Velocity == (contracts.VelocityCurve{}) {
		cfg.Velocity = def.Velocity
	}
	if cfg.FallbackVelocity == 0 {
		cfg.FallbackVelocity = def.FallbackVelocity
	}
	if cfg.HistoryWindow == 0 {
		cfg.HistoryWindow = def.HistoryWindow
	}
	if cfg.HistorySize == 0 {
		cfg.HistorySize = def.HistorySize
	}
	if cfg.Layout == nil {
		cfg.Layout = def.Layout
	}
	return cfg
}

func validate(options *contracts.SessionOptions) error {
	cfg := options.Config
	switch {
	case math.IsNaN(cfg.PressThreshold) || cfg.PressThreshold <= 0 || cfg.PressThreshold > 1:
		return fmt.Errorf("%w: press threshold %g must lie in (0, 1]", contracts.ErrInvalidConfig, cfg.PressThreshold)
	case math.IsNaN(cfg.ReleaseThreshold) || cfg.ReleaseThreshold <= 0:
		return fmt.Errorf("%w: release threshold %g must be positive", contracts.ErrInvalidConfig, cfg.ReleaseThreshold)
	case cfg.ReleaseThreshold >= cfg.PressThreshold:
		return fmt.Errorf("%w: release threshold %g must be below press threshold %g",
			contracts.ErrInvalidConfig, cfg.ReleaseThreshold, cfg.PressThreshold)
	case cfg.DebounceTicks < 0:
		return fmt.Errorf("%w: debounce ticks %d must not be negative", contracts.ErrInvalidConfig, cfg.DebounceTicks)
	case cfg.HistorySize < 2:
		return fmt.Errorf("%w: history size %d must be at least 2", contracts.ErrInvalidConfig, cfg.HistorySize)
	case math.IsNaN(options.RefreshRate) || options.RefreshRate <= 0 || options.RefreshRate > 10000:
		return fmt.Errorf("%w: refresh rate %g Hz outside (0, 10000]", contracts.ErrInvalidConfig, options.RefreshRate)
	}
	return nil
}
