package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/leandrodaf/analogmidi/internal/analog/replay"
	"github.com/leandrodaf/analogmidi/internal/logger"
	"github.com/leandrodaf/analogmidi/internal/midi/midilog"
	"github.com/leandrodaf/analogmidi/internal/notemap"
	"github.com/leandrodaf/analogmidi/sdk/analogmidi"
	"github.com/leandrodaf/analogmidi/sdk/contracts"
)

func main() {
	log := logger.NewDevelopmentLogger()

	// C major: Q W E R T Y U I
	keys := []contracts.KeyID{
		notemap.KeyQ, notemap.KeyW, notemap.KeyE, notemap.KeyR,
		notemap.KeyT, notemap.KeyY, notemap.KeyU, notemap.KeyI,
	}

	session, err := analogmidi.NewSession(
		contracts.WithLogger(log),
		contracts.WithLogLevel(contracts.InfoLevel),
		contracts.WithSampleSource(replay.New(replay.Scale(keys, 10))),
		contracts.WithNoteSink(midilog.NewNoteSink(log)),
	)
	if err != nil {
		log.Error("Failed to start session", log.Field().Error("error", err))
		return
	}
	defer session.Stop()

	// Tick at the real polling rate so press speeds, and therefore velocities, are audible.
	ticker := time.NewTicker(5 * time.Millisecond)
	defer ticker.Stop()

	for range ticker.C {
		events, err := session.Tick()
		for _, ev := range events {
			if ev.Command == contracts.NoteOn {
				fmt.Printf("%-8s velocity %3d\n", notemap.NoteName(ev.Note), ev.Velocity)
			}
		}
		if errors.Is(err, contracts.ErrSdkUnavailable) {
			fmt.Println("Scale finished.")
			return
		}
	}
}
