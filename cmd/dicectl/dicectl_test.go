package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func newSimSession(t *testing.T, name string) *session {
	t.Helper()

	config := dice.DefaultConfig()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	s, err := openSession(config, name, logger)
	require.NoError(t, err, "openSession should succeed for %s", name)
	t.Cleanup(s.Close)

	return s
}

func TestParseBool(t *testing.T) {
	for _, s := range []string{"1", "on", "True", "YES"} {
		v, err := parseBool(s)
		require.NoError(t, err, "%s should parse", s)
		assert.True(t, v, "%s should be true", s)
	}

	for _, s := range []string{"0", "Off", "false", "no"} {
		v, err := parseBool(s)
		require.NoError(t, err, "%s should parse", s)
		assert.False(t, v, "%s should be false", s)
	}

	_, err := parseBool("maybe")
	assert.Error(t, err)
}

func TestLevelToSample(t *testing.T) {
	assert.Equal(t, 0, levelToSample(meterMinLevel), "The floor should be silence")
	assert.Equal(t, 0, levelToSample(-2000), "Levels below the floor should be silence")
	assert.Equal(t, math.MaxInt16, levelToSample(0), "Zero should be full scale")
	assert.Equal(t, math.MaxInt16, levelToSample(100), "Levels above zero should be clamped")

	half := levelToSample(-64)
	assert.InDelta(t, math.MaxInt16/2, half, 400, "About -6 dB should be half of full scale")
}

func TestSessionControls(t *testing.T) {
	s := newSimSession(t, "k8")

	t.Run("FindControl", func(t *testing.T) {
		ctl, err := findControl(s.card, dice.ClockRateName)
		require.NoError(t, err, "Controls should be found by name")

		byId, err := findControl(s.card, "1")
		require.NoError(t, err, "Controls should be found by ID")
		assert.Equal(t, uint32(1), byId.ID())

		withIndex, err := findControl(s.card, dice.ClockRateName+",0")
		require.NoError(t, err, "Controls should be found by name and index")
		assert.Same(t, ctl, withIndex)

		_, err = findControl(s.card, "missing")
		assert.Error(t, err)
	})

	t.Run("ParseValue", func(t *testing.T) {
		ctl, err := findControl(s.card, dice.StreamInputMetersName)
		require.NoError(t, err)

		val, err := parseValue(ctl, []string{"-10"})
		require.NoError(t, err, "A single value should apply to every channel")
		assert.Len(t, val.Int, ctl.NumValues())
		for _, v := range val.Int {
			assert.Equal(t, int32(-10), v)
		}

		_, err = parseValue(ctl, []string{"x"})
		assert.Error(t, err, "Integers should be checked")

		nickname, err := findControl(s.card, dice.NicknameName)
		require.NoError(t, err)
		val, err = parseValue(nickname, []string{"Home", "studio"})
		require.NoError(t, err, "Words should be joined into the text")
		assert.Equal(t, "Home studio", strings.TrimRight(string(val.Bytes), "\x00"))

		_, err = parseValue(nickname, []string{strings.Repeat("a", dice.NicknameMaxSize)})
		assert.Error(t, err, "Text without room for NUL should be rejected")
	})

	t.Run("SetAndGet", func(t *testing.T) {
		require.NoError(t, s.set([]string{dice.ClockRateName, "96000"}), "set should succeed")

		var buf bytes.Buffer
		require.NoError(t, s.get(&buf, []string{dice.ClockRateName}), "get should succeed")
		assert.Contains(t, buf.String(), "Value: 96000")

		assert.Error(t, s.set([]string{dice.ClockRateName, "192000"}), "Rates not in the items should fail")
		assert.Error(t, s.set([]string{dice.ClockRateName}), "A value is needed")

		require.NoError(t, s.refresh(), "refresh should dispatch the accepted clock")
		global := s.model.(interface{ Global() dice.GlobalParameters }).Global()
		assert.Equal(t, uint32(96000), global.CurrentRate)
	})

	t.Run("DumpAndRestore", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "k8.yaml")
		require.NoError(t, s.dump([]string{path}), "dump should succeed")

		data, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Contains(t, string(data), dice.MixerEnableName)

		require.NoError(t, s.set([]string{dice.MixerEnableName, "off"}))
		require.NoError(t, s.restore([]string{path}), "restore should succeed")

		ctl, err := findControl(s.card, dice.MixerEnableName)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, ctl.Value().Bool, "The dumped value should be restored")

		assert.Error(t, s.restore(nil), "A file is needed")
	})
}

func TestMonitor(t *testing.T) {
	s := newSimSession(t, "k8")

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, s.monitor(ctx, &buf), "monitor should stop without error")

	out := buf.String()
	assert.Contains(t, out, "Monitoring")
	assert.Contains(t, out, dice.StreamInputMetersName, "Moving meters should be printed")
	assert.Zero(t, s.card.PendingEvents(), "Events should be dropped after monitoring")
}

func TestMonitorFailures(t *testing.T) {
	s := newSimSession(t, "k8")

	var logs bytes.Buffer
	s.logger = slog.New(slog.NewTextHandler(&logs, nil))

	s.dev.sim.InjectFault(func(tcode dice.TransactionCode, _ uint64) error {
		if tcode.IsRead() {
			return errors.New("timeout")
		}
		return nil
	})
	s.dev.sim.Notify(dice.SHELL_MIXER_NOTIFY_FLAG)

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	var buf bytes.Buffer
	require.NoError(t, s.monitor(ctx, &buf), "Failed notifications should not stop monitoring")
	assert.Error(t, ctx.Err(), "Monitoring should last until the context is done")
	assert.Contains(t, logs.String(), "failed to dispatch notification")
	assert.Contains(t, logs.String(), "failed to measure states")
}

func TestMeterRecorder(t *testing.T) {
	s := newSimSession(t, "k8")

	ctls, err := s.meterControls()
	require.NoError(t, err, "k8 should have meters")

	channels := 0
	for _, ctl := range ctls {
		channels += ctl.NumValues()
	}

	path := filepath.Join(t.TempDir(), "meters.wav")
	rec, err := newMeterRecorder(path, channels, 10)
	require.NoError(t, err, "newMeterRecorder should succeed")

	for range 3 {
		require.NoError(t, s.measure())
		require.NoError(t, rec.record(ctls), "record should succeed")
	}
	require.NoError(t, rec.Close(), "Close should succeed")
	assert.Equal(t, 3, rec.frames)

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile(), "The recording should be a valid WAV file")
	assert.Equal(t, uint16(channels), dec.NumChans)
	assert.Equal(t, uint16(meterBitDepth), dec.BitDepth)

	var out bytes.Buffer
	printMeters(&out, ctls, 20)
	assert.Equal(t, channels, strings.Count(out.String(), "\n"), "One bar per channel")
}
