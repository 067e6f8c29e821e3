package analogmidi

import (
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/leandrodaf/analogmidi/internal/analog/replay"
	"github.com/leandrodaf/analogmidi/internal/logger"
	"github.com/leandrodaf/analogmidi/internal/midi/midilog"
	"github.com/leandrodaf/analogmidi/internal/notemap"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

func TestApplyDefaultOptions(t *testing.T) {
	options, err := applyDefaultOptions()
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if options.Logger == nil || options.Clock == nil {
		t.Fatalf("logger and clock should default")
	}
	if options.RefreshRate != DefaultRefreshRate {
		t.Fatalf("refresh rate = %g", options.RefreshRate)
	}
	cfg := options.Config
	if cfg.PressThreshold != 0.5 || cfg.ReleaseThreshold != 0.2 || cfg.FallbackVelocity != 64 {
		t.Fatalf("unexpected thresholds %+v", cfg)
	}
	if cfg.DebounceTicks != 3 || cfg.HistorySize != 32 || cfg.HistoryWindow != 50*time.Millisecond {
		t.Fatalf("unexpected history settings %+v", cfg)
	}
	if b, ok := cfg.Layout[notemap.KeyQ]; !ok || b.Note != DefaultBaseNote || b.Shift != DefaultShift {
		t.Fatalf("Q should play middle C, got %+v", b)
	}
	if len(cfg.ToggleKeys) != 1 || len(cfg.ModifierKeys) != 2 {
		t.Fatalf("expected F12 toggle and both shift modifiers, got %v %v", cfg.ToggleKeys, cfg.ModifierKeys)
	}
}

func TestApplyDefaultOptionsFillsPartialConfig(t *testing.T) {
	options, err := applyDefaultOptions(contracts.WithConfig(contracts.Config{
		PressThreshold: 0.7,
		Aftertouch:     true,
		Layout:         contracts.Layout{notemap.KeyW: {Note: 50}},
	}))
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	cfg := options.Config
	if cfg.PressThreshold != 0.7 || cfg.ReleaseThreshold != 0.2 || !cfg.Aftertouch {
		t.Fatalf("given fields should win, zero fields default: %+v", cfg)
	}
	if len(cfg.Layout) != 1 || cfg.Velocity.Shape != contracts.CurveLinear {
		t.Fatalf("unexpected layout or curve %+v", cfg)
	}
	if len(cfg.ToggleKeys) != 0 || len(cfg.ModifierKeys) != 0 {
		t.Fatalf("toggle and modifier keys are not defaulted for a given config")
	}
}

func TestApplyDefaultOptionsKeepsZeroDebounce(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DebounceTicks = 0
	options, err := applyDefaultOptions(contracts.WithConfig(cfg))
	if err != nil {
		t.Fatalf("applyDefaultOptions: %v", err)
	}
	if options.Config.DebounceTicks != 0 {
		t.Fatalf("DebounceTicks = %d, want 0", options.Config.DebounceTicks)
	}

	// The key is released on the first tick it stops reporting.
	session, err := NewSession(
		contracts.WithLogger(logger.NewWithCore(zapcore.NewNopCore())),
		contracts.WithConfig(cfg),
		contracts.WithSampleSource(replay.New([]replay.Frame{{notemap.KeyQ: 0.9}, {}})),
		contracts.WithNoteSink(midilog.NewNoteSink(logger.NewWithCore(zapcore.NewNopCore()))),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	if _, err := session.Tick(); err != nil {
		t.Fatalf("Tick: %v", err)
	}
	events, err := session.Tick()
	if err != nil || len(events) != 1 || events[0].Command != contracts.NoteOff {
		t.Fatalf("expected NoteOff on the first missing tick, got %v, %v", events, err)
	}
}

func TestApplyDefaultOptionsRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		opts []contracts.Option
	}{
		{"release above press", []contracts.Option{contracts.WithConfig(contracts.Config{PressThreshold: 0.3, ReleaseThreshold: 0.4})}},
		{"release equals press", []contracts.Option{contracts.WithConfig(contracts.Config{PressThreshold: 0.4, ReleaseThreshold: 0.4})}},
		{"press above one", []contracts.Option{contracts.WithConfig(contracts.Config{PressThreshold: 1.5})}},
		{"negative press", []contracts.Option{contracts.WithConfig(contracts.Config{PressThreshold: -0.5})}},
		{"negative release", []contracts.Option{contracts.WithConfig(contracts.Config{ReleaseThreshold: -0.1})}},
		{"negative debounce", []contracts.Option{contracts.WithConfig(contracts.Config{DebounceTicks: -1})}},
		{"tiny history", []contracts.Option{contracts.WithConfig(contracts.Config{HistorySize: 1})}},
		{"negative rate", []contracts.Option{contracts.WithRefreshRate(-5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := applyDefaultOptions(tt.opts...); !errors.Is(err, contracts.ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestNewSessionPlaysReplayIntoSink(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := logger.NewWithCore(core)
	sink := midilog.NewNoteSink(log)
	src := replay.New(replay.Scale([]contracts.KeyID{notemap.KeyQ, notemap.KeyW}, 5))

	session, err := NewSession(
		contracts.WithLogger(log),
		contracts.WithSampleSource(src),
		contracts.WithNoteSink(sink),
	)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	var notes []uint8
	for {
		events, err := session.Tick()
		for _, ev := range events {
			if ev.Command == contracts.NoteOn {
				notes = append(notes, ev.Note)
			}
		}
		if err != nil {
			if !errors.Is(err, contracts.ErrSdkUnavailable) {
				t.Fatalf("Tick: %v", err)
			}
			break
		}
	}
	if err := session.Stop(); err != nil {
		t.Fatalf("Stop: %v", err)
	}

	if len(notes) != 2 || notes[0] != 60 || notes[1] != 62 {
		t.Fatalf("expected C4 then D4, got %v", notes)
	}
	if sink.Sent() != 4 {
		t.Fatalf("expected 4 events through the sink, got %d", sink.Sent())
	}
	if logs.FilterMessage("MIDI Event").Len() != 4 {
		t.Fatalf("expected every event logged by the dry-run sink")
	}
}

func TestNewSessionRequiresSource(t *testing.T) {
	_, err := NewSession(contracts.WithNoteSink(midilog.NewNoteSink(logger.NewZapLogger())))
	if !errors.Is(err, contracts.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
