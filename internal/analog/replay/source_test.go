package replay

import (
	"errors"
	"testing"
	"time"

	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

var t0 = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return t0 }

func TestReadStampsFramesAndOmitsRestingKeys(t *testing.T) {
	src := New([]Frame{
		{2: 0.5, 1: 0.2, 3: 0},
		{},
	}, WithClock(fixedClock), WithPeriod(10*time.Millisecond))

	samples, err := src.Read()
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if len(samples) != 2 || samples[0].Key != 1 || samples[1].Key != 2 {
		t.Fatalf("unexpected samples %+v", samples)
	}
	if !samples[0].At.Equal(t0) {
		t.Fatalf("first frame at %v, want %v", samples[0].At, t0)
	}

	samples, err = src.Read()
	if err != nil || len(samples) != 0 {
		t.Fatalf("second frame: %v, %v", samples, err)
	}

	if _, err := src.Read(); !errors.Is(err, ErrExhausted) {
		t.Fatalf("expected ErrExhausted, got %v", err)
	}
}

func TestLoopKeepsTimeMoving(t *testing.T) {
	src := New([]Frame{{1: 1}}, WithClock(fixedClock), WithLoop())
	var last time.Time
	for i := 0; i < 3; i++ {
		samples, err := src.Read()
		if err != nil {
			t.Fatalf("Read %d: %v", i, err)
		}
		last = samples[0].At
	}
	if want := t0.Add(10 * time.Millisecond); !last.Equal(want) {
		t.Fatalf("third frame at %v, want %v", last, want)
	}
}

func TestClosedSourceIsUnavailable(t *testing.T) {
	src := New([]Frame{{1: 1}})
	_ = src.Close()
	if _, err := src.Read(); !errors.Is(err, contracts.ErrSdkUnavailable) {
		t.Fatalf("expected ErrSdkUnavailable, got %v", err)
	}
}

func TestSequence(t *testing.T) {
	frames := Sequence(map[contracts.KeyID][]float64{
		1: {0.1, 0.2, 0.3},
		2: {0.9},
	})
	if len(frames) != 3 {
		t.Fatalf("expected 3 frames, got %d", len(frames))
	}
	if frames[0][2] != 0.9 || frames[2][1] != 0.3 {
		t.Fatalf("unexpected frames %v", frames)
	}
	if _, ok := frames[1][2]; ok {
		t.Fatalf("key 2 should be absent after its sequence ends")
	}
}

func TestStrike(t *testing.T) {
	seq := Strike(4, 2)
	want := []float64{0.25, 0.5, 0.75, 1, 1, 1, 0.75, 0.5, 0.25, 0}
	if len(seq) != len(want) {
		t.Fatalf("Strike(4, 2) = %v, want %v", seq, want)
	}
	for i := range want {
		if seq[i] != want[i] {
			t.Fatalf("Strike(4, 2) = %v, want %v", seq, want)
		}
	}
}
