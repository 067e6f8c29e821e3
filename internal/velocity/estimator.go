// Package velocity derives a MIDI velocity from how fast a key travelled before it crossed
// the press threshold.
package velocity

import (
	"fmt"
	"math"
	"time"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

const (
	minVelocity = 1
	maxVelocity = 127
)

// Point is one (time, depth) observation of a key.
type Point struct {
	At    time.Time
	Depth float64
}

// Estimator maps a press trajectory to a velocity in [1, 127].
type Estimator struct {
	window   time.Duration
	curve    contracts.VelocityCurve
	fallback uint8
}

// NewEstimator validates the curve and returns an Estimator.
func NewEstimator(curve contracts.VelocityCurve, window time.Duration, fallback uint8) (*Estimator, error) {
	if err := Validate(curve); err != nil {
		return nil, err
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: history window must be positive, got %s", contracts.ErrInvalidConfig, window)
	}
	if fallback < minVelocity || fallback > maxVelocity {
		return nil, fmt.Errorf("%w: fallback velocity %d outside 1-127", contracts.ErrInvalidConfig, fallback)
	}
	return &Estimator{window: window, curve: curve, fallback: fallback}, nil
}

// Validate checks a velocity curve for use by an Estimator.
func Validate(curve contracts.VelocityCurve) error {
	switch curve.Shape {
	case contracts.CurveLinear, contracts.CurveExponential:
	default:
		return fmt.Errorf("%w: unknown velocity curve %q", contracts.ErrInvalidConfig, curve.Shape)
	}
	if !(curve.MaxRate > curve.MinRate) {
		return fmt.Errorf("%w: velocity max rate %g must exceed min rate %g", contracts.ErrInvalidConfig, curve.MaxRate, curve.MinRate)
	}
	if curve.Floor < minVelocity || curve.Ceiling > maxVelocity || curve.Floor > curve.Ceiling {
		return fmt.Errorf("%w: velocity range [%d, %d] must lie within 1-127", contracts.ErrInvalidConfig, curve.Floor, curve.Ceiling)
	}
	if math.IsNaN(curve.Exponent) || math.IsInf(curve.Exponent, 0) {
		return fmt.Errorf("%w: velocity exponent must be finite", contracts.ErrInvalidConfig)
	}
	return nil
}

// Fallback returns the velocity used when the trajectory cannot be measured.
func (e *Estimator) Fallback() uint8 {
	return e.fallback
}

// Estimate computes the velocity for a press. history must be in chronological order and end
// with the sample that crossed the press threshold.
func (e *Estimator) Estimate(history []Point) uint8 {
	if len(history) < 2 {
		return e.fallback
	}
	last := history[len(history)-1]
	cutoff := last.At.Add(-e.window)

	first := -1
	for i, p := range history[:len(history)-1] {
		if !p.At.Before(cutoff) {
			first = i
			break
		}
	}
	if first < 0 {
		return e.fallback
	}

	elapsed := last.At.Sub(history[first].At).Seconds()
	if elapsed <= 0 {
		return e.fallback
	}
	return e.Velocity((last.Depth - history[first].Depth) / elapsed)
}

// Velocity maps a press rate in depth units per second through the curve.
func (e *Estimator) Velocity(rate float64) uint8 {
	c := e.curve
	if math.IsNaN(rate) {
		return c.Floor
	}

	x := (rate - c.MinRate) / (c.MaxRate - c.MinRate)
	x = math.Max(0, math.Min(1, x))

	if c.Shape == contracts.CurveExponential && c.Exponent != 0 {
		x = math.Expm1(c.Exponent*x) / math.Expm1(c.Exponent)
	}

	v := float64(c.Floor) + x*float64(c.Ceiling-c.Floor)
	v = math.Round(v)
	if v < minVelocity {
		return minVelocity
	}
	if v > maxVelocity {
		return maxVelocity
	}
	return uint8(v)
}
