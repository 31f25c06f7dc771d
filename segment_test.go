package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestSegment(t *testing.T) {
	sim, err := dice.NewSimDevice("k8")
	require.NoError(t, err, "NewSimDevice should succeed")

	segmentAddr := func(offset int) uint64 {
		return dice.BaseAddr + dice.TcKonnektBaseOffset + uint64(offset)
	}

	t.Run("MinimalWrite", func(t *testing.T) {
		rec := &recordingTransport{t: sim}
		seg := dice.NewSegment(dice.K8KnobSegment)
		require.NoError(t, seg.Cache(rec, dice.DefaultTimeoutMs), "Cache should succeed")

		params := seg.Data()
		if params.Knob1Target == dice.ShellKnob1Stream {
			params.Knob1Target = dice.ShellKnob1Mixer
		} else {
			params.Knob1Target = dice.ShellKnob1Stream
		}
		rec.reset()

		require.NoError(t, seg.Update(rec, &params, dice.DefaultTimeoutMs), "Update should succeed")
		require.Len(t, rec.writes, 1, "Only the quadlet of the second knob should be written")
		assert.Equal(t, dice.TCODE_WRITE_QUADLET_REQUEST, rec.writes[0].tcode)
		assert.Equal(t, segmentAddr(dice.K8KnobSegment.Offset+4), rec.writes[0].addr)
		assert.Equal(t, params, seg.Data(), "The cache should hold the new parameters")

		rec.reset()
		require.NoError(t, seg.Update(rec, &params, dice.DefaultTimeoutMs), "Update should succeed")
		assert.Empty(t, rec.writes, "Unchanged parameters should not be written")
	})

	t.Run("UpdateWhole", func(t *testing.T) {
		rec := &recordingTransport{t: sim}
		seg := dice.NewSegment(dice.K8KnobSegment)
		require.NoError(t, seg.Cache(rec, dice.DefaultTimeoutMs), "Cache should succeed")

		params := seg.Data()
		rec.reset()

		require.NoError(t, seg.UpdateWhole(rec, &params, dice.DefaultTimeoutMs), "UpdateWhole should succeed")
		require.Len(t, rec.writes, 1, "The whole segment should be written at once")
		assert.Equal(t, dice.TCODE_WRITE_BLOCK_REQUEST, rec.writes[0].tcode)
		assert.Equal(t, segmentAddr(dice.K8KnobSegment.Offset), rec.writes[0].addr)
		assert.Len(t, rec.writes[0].data, dice.K8KnobSegment.Size)
	})

	t.Run("ReadOnly", func(t *testing.T) {
		seg := dice.NewSegment(dice.K8MixerMeterSegment)
		require.NoError(t, seg.Cache(sim, dice.DefaultTimeoutMs), "Cache should succeed")
		assert.False(t, seg.Mutable(), "Meters cannot be written")

		params := seg.Data()
		assert.Error(t, seg.Update(sim, &params, dice.DefaultTimeoutMs), "Update of a read-only segment should fail")
	})

	t.Run("InvalidParameters", func(t *testing.T) {
		seg := dice.NewSegment(dice.K8KnobSegment)
		require.NoError(t, seg.Cache(sim, dice.DefaultTimeoutMs), "Cache should succeed")

		params := seg.Data()
		params.Knob0Target = dice.ShellKnob0Target(99)

		err := seg.Update(sim, &params, dice.DefaultTimeoutMs)
		var segErr *dice.SegmentError
		assert.ErrorAs(t, err, &segErr, "A value missing in the table should be reported")
		assert.ErrorIs(t, err, dice.ErrInvalidValue)
	})

	t.Run("FailedWriteKeepsCache", func(t *testing.T) {
		seg := dice.NewSegment(dice.K8KnobSegment)
		require.NoError(t, seg.Cache(sim, dice.DefaultTimeoutMs), "Cache should succeed")
		before := seg.Data()

		errFault := errors.New("bus reset")
		sim.InjectFault(func(tcode dice.TransactionCode, _ uint64) error {
			if !tcode.IsRead() {
				return errFault
			}
			return nil
		})
		defer sim.InjectFault(nil)

		params := before
		if params.Knob1Target == dice.ShellKnob1Stream {
			params.Knob1Target = dice.ShellKnob1Mixer
		} else {
			params.Knob1Target = dice.ShellKnob1Stream
		}

		err := seg.Update(sim, &params, dice.DefaultTimeoutMs)
		assert.ErrorIs(t, err, errFault, "The failure of the transaction should be returned")
		assert.Equal(t, before, seg.Data(), "The cache should be untouched on failure")
	})

	t.Run("Notified", func(t *testing.T) {
		seg := dice.NewSegment(dice.K8KnobSegment)
		assert.True(t, seg.IsNotified(dice.SHELL_KNOB_NOTIFY_FLAG|dice.NOTIFY_LOCK_CHG))
		assert.False(t, seg.IsNotified(dice.SHELL_MIXER_NOTIFY_FLAG))

		meter := dice.NewSegment(dice.K8MixerMeterSegment)
		assert.False(t, meter.IsNotified(0xffffffff), "Meters are never announced")
	})
}
