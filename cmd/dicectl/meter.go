package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"golang.org/x/term"

	"github.com/gen2brain/dice"
)

const (
	meterMinLevel = -1000
	// meterRangeDb is the range of levels from meterMinLevel to zero.
	meterRangeDb  = 94.0
	meterBitDepth = 16
)

// meterControls returns the integer controls refreshed by measurement.
func (s *session) meterControls() ([]*dice.CardCtl, error) {
	var ctls []*dice.CardCtl

	for _, id := range s.model.MeasuredElems() {
		ctl, err := s.card.CtlById(id)
		if err != nil {
			return nil, err
		}

		if ctl.Type() == dice.SNDRV_CTL_ELEM_TYPE_INTEGER && ctl.Info().Min == meterMinLevel {
			ctls = append(ctls, ctl)
		}
	}

	if len(ctls) == 0 {
		return nil, fmt.Errorf("%s has no meters", s.card.Name())
	}

	return ctls, nil
}

// levelToSample converts a meter level to the amplitude of a 16 bit sample.
func levelToSample(level int32) int {
	if level <= meterMinLevel {
		return 0
	}

	db := float64(level) * meterRangeDb / -meterMinLevel

	return min(int(math.Round(math.Pow(10, db/20)*math.MaxInt16)), math.MaxInt16)
}

// meterRecorder writes one frame of levels per measurement to a WAV file.
type meterRecorder struct {
	file    *os.File
	encoder *wav.Encoder
	buf     *audio.IntBuffer
	frames  int
}

func newMeterRecorder(path string, channels, rate int) (*meterRecorder, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	return &meterRecorder{
		file: f,
		// Audio format 1 is PCM.
		encoder: wav.NewEncoder(f, rate, meterBitDepth, channels, 1),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: rate},
			Data:           make([]int, channels),
			SourceBitDepth: meterBitDepth,
		},
	}, nil
}

func (r *meterRecorder) record(ctls []*dice.CardCtl) error {
	i := 0
	for _, ctl := range ctls {
		for _, level := range ctl.Value().Int {
			r.buf.Data[i] = levelToSample(level)
			i++
		}
	}

	r.frames++

	return r.encoder.Write(r.buf)
}

func (r *meterRecorder) Close() error {
	if err := r.encoder.Close(); err != nil {
		r.file.Close()

		return err
	}

	return r.file.Close()
}

// meter prints the meters at each measurement and optionally records them.
func (s *session) meter(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("meter", flag.ContinueOnError)
	record := fs.String("record", "", "Record the levels to a WAV file, one frame per measurement.")
	duration := fs.Int("duration", 0, "Stop after the number of seconds, 0 to run until interrupted.")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctls, err := s.meterControls()
	if err != nil {
		return err
	}

	var rec *meterRecorder
	if *record != "" {
		channels := 0
		for _, ctl := range ctls {
			channels += ctl.NumValues()
		}

		rate := max(1, 1000/s.config.MeasureIntervalMs)
		rec, err = newMeterRecorder(*record, channels, rate)
		if err != nil {
			return err
		}
		defer func() {
			if err := rec.Close(); err != nil {
				s.logger.Error("close recording", "error", err)
			}
			fmt.Printf("Wrote %d frames to %s\n", rec.frames, *record)
		}()
	}

	if *duration > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(*duration)*time.Second)
		defer cancel()
	}

	width := 40
	tty := term.IsTerminal(int(os.Stdout.Fd()))
	if tty {
		if cols, _, err := term.GetSize(int(os.Stdout.Fd())); err == nil && cols > 60 {
			width = cols - 40
		}
	}

	return s.watch(ctx, true, func() error {
		if rec != nil {
			if err := rec.record(ctls); err != nil {
				return fmt.Errorf("could not write WAV file: %w", err)
			}
		}

		if tty {
			// Move to the top left and clear the screen.
			fmt.Print("\x1b[H\x1b[2J")
		}
		printMeters(os.Stdout, ctls, width)

		return nil
	})
}

// printMeters prints one bar per metered channel.
func printMeters(w io.Writer, ctls []*dice.CardCtl, width int) {
	for _, ctl := range ctls {
		for i, level := range ctl.Value().Int {
			db := float64(level) * meterRangeDb / -meterMinLevel
			n := int(float64(width) * float64(level-meterMinLevel) / -meterMinLevel)
			n = min(max(n, 0), width)
			fmt.Fprintf(w, "%-24s %2d %6.1f dB |%s%s|\n", ctl.Name(), i, db,
				strings.Repeat("#", n), strings.Repeat(" ", width-n))
		}
	}
}
