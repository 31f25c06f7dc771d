package dice_test

import (
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

// memLogger keeps trace events in memory.
type memLogger struct {
	events []dice.Event
}

func (l *memLogger) Log(event dice.Event) {
	l.events = append(l.events, event)
}

func TestEventEncoding(t *testing.T) {
	event := dice.Event{
		Timestamp: time.Date(2024, 5, 1, 12, 30, 0, 123456789, time.UTC),
		SessionID: "6f1c2a4e-0000-4000-8000-000000000000",
		Kind:      dice.EventTransaction,
		Tcode:     dice.TCODE_READ_BLOCK_REQUEST,
		Addr:      dice.BaseAddr + 0x28,
		Data:      []byte{0x00, 0x00, 0x00, 0x0a},
		Duration:  150 * time.Microsecond,
		Err:       "transaction timed out",
	}

	data, err := dice.EncodeEvent(event)
	require.NoError(t, err, "EncodeEvent should succeed")

	decoded, err := dice.DecodeEvent(data)
	require.NoError(t, err, "DecodeEvent should succeed")

	assert.True(t, event.Timestamp.Equal(decoded.Timestamp), "The timestamp should keep nanoseconds")
	assert.Equal(t, event.SessionID, decoded.SessionID)
	assert.Equal(t, event.Kind, decoded.Kind)
	assert.Equal(t, event.Tcode, decoded.Tcode)
	assert.Equal(t, event.Addr, decoded.Addr)
	assert.Equal(t, event.Data, decoded.Data)
	assert.Equal(t, event.Duration, decoded.Duration)
	assert.Equal(t, event.Err, decoded.Err)

	_, err = dice.DecodeEvent([]byte{0xff})
	assert.Error(t, err, "Garbage should not decode")

	assert.Contains(t, event.String(), "read-block-request")
	assert.Contains(t, dice.Event{Kind: dice.EventNotification, Notification: 0x20}.String(), "notification")
}

func TestFileLogger(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.cbor")

	logger, err := dice.NewFileLogger(path)
	require.NoError(t, err, "NewFileLogger should succeed")

	ts := time.Now().UTC()
	logger.Log(dice.Event{Timestamp: ts, SessionID: "a", Kind: dice.EventNotification, Notification: dice.NOTIFY_LOCK_CHG})
	logger.Log(dice.Event{Timestamp: ts, SessionID: "a", Kind: dice.EventTransaction, Tcode: dice.TCODE_WRITE_QUADLET_REQUEST})
	require.NoError(t, logger.Close(), "Close should succeed")
	require.NoError(t, logger.Close(), "Close should be idempotent")

	// Dropped after Close.
	logger.Log(dice.Event{Timestamp: ts, SessionID: "a"})

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()

	reader := dice.NewTraceReader(f)

	first, err := reader.Next()
	require.NoError(t, err, "The first event should be read")
	assert.Equal(t, dice.EventNotification, first.Kind)
	assert.Equal(t, dice.NOTIFY_LOCK_CHG, first.Notification)

	second, err := reader.Next()
	require.NoError(t, err, "The second event should be read")
	assert.Equal(t, dice.EventTransaction, second.Kind)
	assert.Equal(t, dice.TCODE_WRITE_QUADLET_REQUEST, second.Tcode)

	_, err = reader.Next()
	assert.True(t, errors.Is(err, io.EOF), "The end of the trace should be io.EOF")
}

func TestTracingTransport(t *testing.T) {
	sim, err := dice.NewSimDevice("k8")
	require.NoError(t, err, "NewSimDevice should succeed")

	logger := &memLogger{}
	tt := dice.NewTracingTransport(sim, logger)

	_, err = uuid.Parse(tt.SessionID())
	assert.NoError(t, err, "The session ID should be a UUID")

	frame := make([]byte, 4)
	require.NoError(t, dice.ReadFrames(tt, 0, frame, dice.DefaultTimeoutMs), "ReadFrames should succeed")
	tt.LogNotification(dice.NOTIFY_CLOCK_ACCEPTED)

	require.Len(t, logger.events, 2, "One event per transaction and notification")

	tx := logger.events[0]
	assert.Equal(t, tt.SessionID(), tx.SessionID)
	assert.Equal(t, dice.EventTransaction, tx.Kind)
	assert.Equal(t, dice.TCODE_READ_QUADLET_REQUEST, tx.Tcode)
	assert.Equal(t, dice.BaseAddr, tx.Addr)
	assert.Equal(t, frame, tx.Data, "The response payload should be recorded")
	assert.Empty(t, tx.Err)

	assert.Equal(t, dice.EventNotification, logger.events[1].Kind)
	assert.Equal(t, dice.NOTIFY_CLOCK_ACCEPTED, logger.events[1].Notification)

	t.Run("Failure", func(t *testing.T) {
		errFault := errors.New("bus reset")
		sim.InjectFault(func(dice.TransactionCode, uint64) error { return errFault })
		defer sim.InjectFault(nil)

		logger.events = nil
		err := dice.ReadFrames(tt, 0, make([]byte, 4), dice.DefaultTimeoutMs)
		assert.ErrorIs(t, err, errFault)
		require.Len(t, logger.events, 1)
		assert.Equal(t, errFault.Error(), logger.events[0].Err, "The failure should be recorded")
	})

	t.Run("NilLogger", func(t *testing.T) {
		tt := dice.NewTracingTransport(sim, nil)
		assert.NoError(t, dice.ReadFrames(tt, 0, make([]byte, 4), dice.DefaultTimeoutMs))
	})
}
