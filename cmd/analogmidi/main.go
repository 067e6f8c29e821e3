package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"slices"
	"strings"
	"syscall"

	"github.com/leandrodaf/analogmidi/internal/analog/replay"
	"github.com/leandrodaf/analogmidi/internal/logger"
	"github.com/leandrodaf/analogmidi/internal/midi/midilog"
	"github.com/leandrodaf/analogmidi/internal/notemap"
	"github.com/leandrodaf/analogmidi/sdk/analogmidi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

// Overridden with -ldflags "-X main.version=... -X main.commit=... -X main.date=...".
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

type options struct {
	list        bool
	port        string
	device      int
	rate        float64
	press       float64
	release     float64
	debounce    int
	fallback    uint
	base        string
	channel     uint
	aftertouch  bool
	demo        bool
	dryRun      bool
	logLevel    string
	logFile     string
	library     string
	showVersion bool
}

func main() {
	opts := parseFlags(os.Args[1:])
	if opts.showVersion {
		fmt.Printf("analogmidi %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if err := run(opts); err != nil {
		fmt.Fprintln(os.Stderr, "analogmidi:", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) options {
	var o options
	fs := flag.NewFlagSet("analogmidi", flag.ExitOnError)
	fs.BoolVar(&o.list, "list", false, "list MIDI outputs and exit")
	fs.StringVar(&o.port, "port", analogmidi.DefaultPortName, "virtual port name, or part of an existing output name")
	fs.IntVar(&o.device, "device", -1, "index of an existing MIDI output (see -list); -1 opens a virtual port")
	fs.Float64Var(&o.rate, "rate", analogmidi.DefaultRefreshRate, "polling rate in Hz")
	fs.Float64Var(&o.press, "press", 0.5, "depth at which a key starts its note (0-1)")
	fs.Float64Var(&o.release, "release", 0.2, "depth below which a key ends its note (0-1)")
	fs.IntVar(&o.debounce, "debounce", 3, "ticks a key may stop reporting before it is released")
	fs.UintVar(&o.fallback, "fallback-velocity", 64, "velocity used when the press speed cannot be measured")
	fs.StringVar(&o.base, "base", "C4", "note played by Q, as a name (C4, F#3) or number")
	fs.UintVar(&o.channel, "channel", 1, "MIDI channel 1-16")
	fs.BoolVar(&o.aftertouch, "aftertouch", false, "send polyphonic aftertouch while keys are held")
	fs.BoolVar(&o.demo, "demo", false, "play a scripted scale instead of reading the keyboard")
	fs.BoolVar(&o.dryRun, "dry-run", false, "log MIDI events instead of sending them")
	fs.StringVar(&o.logLevel, "log-level", "info", "debug, info, warn or error")
	fs.StringVar(&o.logFile, "log-file", "", "write logs to this file instead of the console")
	fs.StringVar(&o.library, "sdk", "", "path to the analog SDK wrapper library")
	fs.BoolVar(&o.showVersion, "version", false, "print version and exit")
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "analogmidi - play MIDI from an analog keyboard")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Usage:")
		fmt.Fprintln(fs.Output(), "  analogmidi [options]")
		fmt.Fprintln(fs.Output(), "")
		fmt.Fprintln(fs.Output(), "Keys: Q..P play white notes, 2..0 the black ones, shift plays an octave up, F12 mutes.")
		fmt.Fprintln(fs.Output(), "")
		fs.PrintDefaults()
	}
	_ = fs.Parse(args)
	return o
}

func run(o options) error {
	log := logger.NewZapLogger()
	level, err := parseLevel(o.logLevel)
	if err != nil {
		return err
	}
	log.SetLevel(level)
	if o.logFile != "" {
		log.SetDestination(contracts.FileLog, o.logFile)
	}
	if s, ok := log.(interface{ Sync() error }); ok {
		defer func() { _ = s.Sync() }()
	}

	output := contracts.OutputConfig{
		ClientName: analogmidi.DefaultClientName,
		PortName:   o.port,
		DeviceID:   o.device,
	}
	if o.list {
		return listOutputs(contracts.OutputConfig{ClientName: output.ClientName, DeviceID: -1}, log)
	}

	cfg, err := buildConfig(o)
	if err != nil {
		return err
	}

	source, err := openSource(o, cfg.Layout, log)
	if err != nil {
		return err
	}
	sink, err := openSink(o, output, log)
	if err != nil {
		_ = source.Close()
		return err
	}

	session, err := analogmidi.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(level),
		contracts.WithConfig(cfg),
		contracts.WithSampleSource(source),
		contracts.WithNoteSink(sink),
		contracts.WithRefreshRate(o.rate),
	)
	if err != nil {
		_ = sink.Close()
		_ = source.Close()
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("Playing; press Ctrl+C to exit")
	runErr := session.Run(ctx)
	stopErr := session.Stop()
	if runErr != nil {
		return runErr
	}
	return stopErr
}

func buildConfig(o options) (contracts.Config, error) {
	base, err := notemap.ParseNote(o.base)
	if err != nil {
		return contracts.Config{}, err
	}
	if o.channel < 1 || o.channel > 16 {
		return contracts.Config{}, fmt.Errorf("%w: channel %d outside 1-16", contracts.ErrInvalidConfig, o.channel)
	}
	if o.fallback < 1 || o.fallback > 127 {
		return contracts.Config{}, fmt.Errorf("%w: fallback velocity %d outside 1-127", contracts.ErrInvalidConfig, o.fallback)
	}
	if o.debounce < 0 {
		return contracts.Config{}, fmt.Errorf("%w: debounce %d must not be negative", contracts.ErrInvalidConfig, o.debounce)
	}

	cfg := analogmidi.DefaultConfig()
	cfg.PressThreshold = o.press
	cfg.ReleaseThreshold = o.release
	cfg.DebounceTicks = o.debounce
	cfg.FallbackVelocity = uint8(o.fallback)
	cfg.Aftertouch = o.aftertouch
	cfg.Layout = notemap.PianoRow(base, uint8(o.channel-1), analogmidi.DefaultShift)
	return cfg, nil
}

func openSource(o options, layout contracts.Layout, log contracts.Logger) (contracts.SampleSource, error) {
	if !o.demo {
		return analogmidi.NewSampleSource(contracts.SourceConfig{LibraryPath: o.library}, log)
	}

	keys := make([]contracts.KeyID, 0, len(layout))
	for key := range layout {
		keys = append(keys, key)
	}
	slices.SortFunc(keys, func(a, b contracts.KeyID) int {
		return int(layout[a].Note) - int(layout[b].Note)
	})
	log.Info("Demo mode: playing a scripted scale", log.Field().Int("keys", len(keys)))
	return replay.New(replay.Scale(keys, 10), replay.WithLoop()), nil
}

func openSink(o options, output contracts.OutputConfig, log contracts.Logger) (contracts.NoteSink, error) {
	if o.dryRun {
		return midilog.NewNoteSink(log), nil
	}
	return analogmidi.NewNoteSink(output, log)
}

func listOutputs(output contracts.OutputConfig, log contracts.Logger) error {
	sink, err := analogmidi.NewNoteSink(output, log)
	if err != nil {
		return err
	}
	defer sink.Close()

	devices, err := analogmidi.ListDevices(sink)
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		fmt.Println("No MIDI outputs found.")
		return nil
	}
	fmt.Println("=== MIDI Output Ports ===")
	for i, d := range devices {
		fmt.Printf("  %d: %s (%s)\n", i, d.Name, d.Manufacturer)
	}
	return nil
}

func parseLevel(s string) (contracts.LogLevel, error) {
	switch strings.ToLower(s) {
	case "debug":
		return contracts.DebugLevel, nil
	case "info":
		return contracts.InfoLevel, nil
	case "warn", "warning":
		return contracts.WarnLevel, nil
	case "error":
		return contracts.ErrorLevel, nil
	}
	return 0, errors.New("unknown log level " + s)
}
