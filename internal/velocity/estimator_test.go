package velocity

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

var base = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func linearCurve() contracts.VelocityCurve {
	return contracts.VelocityCurve{Shape: contracts.CurveLinear, MinRate: 0, MaxRate: 20, Floor: 1, Ceiling: 127}
}

func mustEstimator(t *testing.T, curve contracts.VelocityCurve) *Estimator {
	t.Helper()
	e, err := NewEstimator(curve, 50*time.Millisecond, 64)
	if err != nil {
		t.Fatalf("NewEstimator: %v", err)
	}
	return e
}

// trajectory returns points spaced 5ms apart.
func trajectory(depths ...float64) []Point {
	pts := make([]Point, len(depths))
	for i, d := range depths {
		pts[i] = Point{At: base.Add(time.Duration(i) * 5 * time.Millisecond), Depth: d}
	}
	return pts
}

func TestEstimateFallsBackWithoutHistory(t *testing.T) {
	e := mustEstimator(t, linearCurve())

	if got := e.Estimate(nil); got != 64 {
		t.Fatalf("empty history: got %d, want 64", got)
	}
	if got := e.Estimate(trajectory(0.7)); got != 64 {
		t.Fatalf("single sample: got %d, want 64", got)
	}

	same := []Point{{At: base, Depth: 0.1}, {At: base, Depth: 0.8}}
	if got := e.Estimate(same); got != 64 {
		t.Fatalf("zero elapsed: got %d, want 64", got)
	}
}

func TestEstimateIgnoresSamplesOutsideWindow(t *testing.T) {
	e := mustEstimator(t, linearCurve())

	old := []Point{
		{At: base, Depth: 0.0},
		{At: base.Add(time.Second), Depth: 0.6},
	}
	if got := e.Estimate(old); got != 64 {
		t.Fatalf("only crossing inside window: got %d, want fallback 64", got)
	}

	// The 0.0 sample is one second old; only 0.4 -> 0.6 over 10ms counts (20 depth/s).
	mixed := []Point{
		{At: base, Depth: 0.0},
		{At: base.Add(time.Second), Depth: 0.4},
		{At: base.Add(time.Second + 10*time.Millisecond), Depth: 0.6},
	}
	if got := e.Estimate(mixed); got != 127 {
		t.Fatalf("windowed rate: got %d, want 127", got)
	}
}

func TestEstimateMonotonicInRate(t *testing.T) {
	for _, curve := range []contracts.VelocityCurve{
		linearCurve(),
		{Shape: contracts.CurveExponential, MinRate: 0, MaxRate: 20, Exponent: 2, Floor: 1, Ceiling: 127},
		{Shape: contracts.CurveExponential, MinRate: 0, MaxRate: 20, Exponent: -3, Floor: 10, Ceiling: 120},
	} {
		e := mustEstimator(t, curve)
		var prev uint8
		for step := 0.0; step <= 0.2; step += 0.005 {
			v := e.Estimate(trajectory(0, step, 2*step, 3*step))
			if v < prev {
				t.Fatalf("%s curve: velocity decreased from %d to %d at step %g", curve.Shape, prev, v, step)
			}
			prev = v
		}
	}
}

func TestEstimateFasterPressIsLouder(t *testing.T) {
	e := mustEstimator(t, linearCurve())

	slow := e.Estimate(trajectory(0.30, 0.35, 0.40, 0.45, 0.50))
	fast := e.Estimate(trajectory(0.00, 0.15, 0.30, 0.45, 0.60))
	if fast <= slow {
		t.Fatalf("fast press velocity %d should exceed slow press velocity %d", fast, slow)
	}
}

func TestVelocityRange(t *testing.T) {
	e := mustEstimator(t, linearCurve())

	cases := map[float64]uint8{
		-5:   1,
		0:    1,
		10:   64,
		20:   127,
		1000: 127,
	}
	for rate, want := range cases {
		if got := e.Velocity(rate); got != want {
			t.Errorf("Velocity(%g) = %d, want %d", rate, got, want)
		}
	}
}

func TestValidate(t *testing.T) {
	bad := []contracts.VelocityCurve{
		{Shape: "cubic", MaxRate: 1, Floor: 1, Ceiling: 127},
		{Shape: contracts.CurveLinear, MinRate: 5, MaxRate: 5, Floor: 1, Ceiling: 127},
		{Shape: contracts.CurveLinear, MaxRate: 1, Floor: 0, Ceiling: 127},
		{Shape: contracts.CurveLinear, MaxRate: 1, Floor: 100, Ceiling: 90},
		{Shape: contracts.CurveLinear, MaxRate: 1, Floor: 1, Ceiling: 128},
	}
	for i, curve := range bad {
		if err := Validate(curve); !errors.Is(err, contracts.ErrInvalidConfig) {
			t.Errorf("case %d: expected ErrInvalidConfig, got %v", i, err)
		}
	}
	if err := Validate(linearCurve()); err != nil {
		t.Fatalf("linear curve rejected: %v", err)
	}

	if _, err := NewEstimator(linearCurve(), 0, 64); !errors.Is(err, contracts.ErrInvalidConfig) {
		t.Fatalf("zero window accepted: %v", err)
	}
	if _, err := NewEstimator(linearCurve(), time.Millisecond, 0); !errors.Is(err, contracts.ErrInvalidConfig) {
		t.Fatalf("zero fallback accepted: %v", err)
	}
}
