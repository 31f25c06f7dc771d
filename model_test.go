package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

type globalModel interface {
	Global() dice.GlobalParameters
}

func TestNewModel(t *testing.T) {
	sim, err := dice.NewSimDevice("k24d")
	require.NoError(t, err, "NewSimDevice should succeed")

	model, err := dice.NewModel(sim.VendorID(), sim.ModelID(), sim)
	require.NoError(t, err, "NewModel should succeed for the IDs of the unit")
	assert.IsType(t, &dice.K24dModel{}, model)

	_, err = dice.NewModel(0x000595, dice.K8ModelID, sim)
	assert.Error(t, err, "Other vendors should be rejected")
	_, err = dice.NewModel(dice.TcElectronicVendorID, 0x000030, sim)
	assert.Error(t, err, "Other models should be rejected")
	_, err = dice.NewModelByName("k6", sim)
	assert.Error(t, err, "Unknown names should be rejected")

	_, err = dice.NewSimDevice("k6")
	assert.Error(t, err, "Unknown names should be rejected by the simulator")
}

func TestModels(t *testing.T) {
	for _, name := range dice.ModelNames {
		t.Run(name, func(t *testing.T) {
			t.Run("Load", func(t *testing.T) {
				_, model, card := simCard(t, name)

				assert.Equal(t, model.Name(), card.Name())
				assert.Greater(t, card.NumCtls(), 5, "The card should have the elements of the model")
				assert.NotEmpty(t, model.NotifiedElems())
				assert.NotEmpty(t, model.MeasuredElems())

				rate, err := card.CtlByName(dice.ClockRateName)
				require.NoError(t, err, "The clock rate should be an element")
				assert.Equal(t, []string{"44100", "48000", "88200", "96000"}, rate.Info().Items)
				assert.Equal(t, []uint32{1}, rate.Value().Enum, "The unit runs at 48000")

				nickname, err := card.CtlByName(dice.NicknameName)
				require.NoError(t, err, "The nickname should be an element")
				assert.Equal(t, dice.NicknameMaxSize, nickname.NumValues())
			})

			t.Run("ClockRate", func(t *testing.T) {
				sim, model, card := simCard(t, name)
				id := dice.CardElemId(dice.ClockRateName)

				require.NoError(t, card.Write(id, dice.NewEnumValue(3)), "Write should succeed")
				assert.False(t, sim.Locked(), "The unit should be unlocked after the write")

				msg, ok := sim.ReadNotification(100)
				require.True(t, ok, "The unit should announce the change of clock")
				assert.Equal(t, dice.NOTIFY_CLOCK_ACCEPTED|dice.NOTIFY_LOCK_CHG, msg)

				require.NoError(t, card.DispatchNotification(msg), "DispatchNotification should succeed")

				global, ok := model.(globalModel)
				require.True(t, ok, "Models should expose the global section")
				assert.Equal(t, uint32(96000), global.Global().CurrentRate)
				assert.Equal(t, dice.ClockRate96000, global.Global().ClockConfig.Rate)

				val, err := card.Read(id)
				require.NoError(t, err)
				assert.Equal(t, []uint32{3}, val.Enum)
			})

			t.Run("Locked", func(t *testing.T) {
				sim, _, card := simCard(t, name)
				require.NoError(t, sim.Lock())
				defer sim.Unlock()

				err := card.Write(dice.CardElemId(dice.ClockRateName), dice.NewEnumValue(0))
				assert.ErrorIs(t, err, dice.ErrSimLocked, "A locked unit should refuse the change")

				rate, err := card.CtlByName(dice.ClockRateName)
				require.NoError(t, err)
				assert.Equal(t, []uint32{1}, rate.Value().Enum, "The value should be untouched")
			})

			t.Run("Nickname", func(t *testing.T) {
				_, model, card := simCard(t, name)

				raw := make([]byte, dice.NicknameMaxSize)
				copy(raw, "Studio")
				require.NoError(t, card.Write(dice.CardElemId(dice.NicknameName), dice.NewBytesValue(raw)))

				assert.Equal(t, "Studio", model.(globalModel).Global().Nickname)
			})

			t.Run("Measure", func(t *testing.T) {
				sim, model, card := simCard(t, name)
				require.NoError(t, card.SubscribeEvents(true))

				before := make(map[dice.ElemId]dice.ElemValue)
				for _, id := range model.MeasuredElems() {
					val, err := card.Read(id)
					require.NoError(t, err)
					before[id] = val
				}

				sim.Tick()
				require.NoError(t, card.Measure(), "Measure should succeed")
				assert.NotZero(t, card.PendingEvents(), "Moving meters should queue events")

				changed := false
				for _, id := range model.MeasuredElems() {
					ctl, err := card.CtlById(id)
					require.NoError(t, err)
					if !ctl.Value().Equal(before[id]) {
						changed = true
					}
				}
				assert.True(t, changed, "Some meter should move")
			})
		})
	}
}

func TestK8Model(t *testing.T) {
	mixerEnabledOffset := func() uint64 {
		return dice.TcKonnektBaseOffset + uint64(dice.K8MixerStateSegment.Offset) + 340
	}

	t.Run("NotificationScope", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")
		k8 := model.(*dice.K8Model)
		require.True(t, k8.MixerState().Enabled, "The mixer starts enabled")

		// The unit disables the mixer on its own.
		sim.Poke(mixerEnabledOffset(), []byte{0, 0, 0, 0})

		require.NoError(t, card.DispatchNotification(dice.SHELL_KNOB_NOTIFY_FLAG))
		ctl, err := card.CtlByName(dice.MixerEnableName)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, ctl.Value().Bool, "Segments not announced should not be read")

		require.NoError(t, card.DispatchNotification(dice.SHELL_MIXER_NOTIFY_FLAG))
		assert.Equal(t, []bool{false}, ctl.Value().Bool, "The announced segment should be read")
		assert.False(t, k8.MixerState().Enabled)
	})

	t.Run("Write", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")
		k8 := model.(*dice.K8Model)

		require.NoError(t, card.Write(dice.MixerElemId(dice.MixerEnableName), dice.NewBoolValue(false)))
		assert.False(t, k8.MixerState().Enabled)
		assert.Equal(t, []byte{0, 0, 0, 0}, sim.Peek(mixerEnabledOffset(), 4), "The unit should receive the value")
	})

	t.Run("FailedWrite", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")
		k8 := model.(*dice.K8Model)

		errFault := errors.New("bus reset")
		sim.InjectFault(func(tcode dice.TransactionCode, _ uint64) error {
			if !tcode.IsRead() {
				return errFault
			}
			return nil
		})

		err := card.Write(dice.MixerElemId(dice.MixerEnableName), dice.NewBoolValue(false))
		assert.ErrorIs(t, err, errFault)
		assert.True(t, k8.MixerState().Enabled, "The cache should be untouched on failure")

		ctl, err := card.CtlByName(dice.MixerEnableName)
		require.NoError(t, err)
		assert.Equal(t, []bool{true}, ctl.Value().Bool, "The element should be untouched on failure")
		assert.Equal(t, []byte{0, 0, 0, 1}, sim.Peek(mixerEnabledOffset(), 4))
	})

	t.Run("ReservedClockRate", func(t *testing.T) {
		sim, err := dice.NewSimDevice("k8")
		require.NoError(t, err)

		// Rate 0x0b is out of the known rates, source 0x0c is the internal oscillator.
		sim.Poke(dice.GeneralSectionsSize+76, []byte{0x00, 0x00, 0x0b, 0x0c})

		model, err := dice.NewModelByName("k8", sim, dice.WithLocker(sim))
		require.NoError(t, err)
		card, err := dice.OpenCard(model, nil)
		require.NoError(t, err, "A reserved rate should not prevent opening the card")

		_, err = card.Read(dice.CardElemId(dice.ClockRateName))
		assert.ErrorIs(t, err, dice.ErrInvalidValue, "Only the clock rate should fail")

		src, err := card.Read(dice.CardElemId(dice.ClockSourceName))
		require.NoError(t, err, "Other elements should still be readable")
		assert.Len(t, src.Enum, 1)

		sim.Poke(mixerEnabledOffset(), []byte{0, 0, 0, 0})
		err = card.DispatchNotification(dice.NOTIFY_CLOCK_ACCEPTED | dice.SHELL_MIXER_NOTIFY_FLAG)
		assert.ErrorIs(t, err, dice.ErrInvalidValue, "The failed element should be reported")

		ctl, err := card.CtlByName(dice.MixerEnableName)
		require.NoError(t, err)
		assert.Equal(t, []bool{false}, ctl.Value().Bool, "Other notified elements should be refreshed")
	})

	t.Run("FailedSegmentRead", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")
		k8 := model.(*dice.K8Model)

		knobAddr := dice.BaseAddr + dice.TcKonnektBaseOffset + uint64(dice.K8KnobSegment.Offset)
		errFault := errors.New("bus reset")
		sim.InjectFault(func(tcode dice.TransactionCode, addr uint64) error {
			if tcode.IsRead() && addr == knobAddr {
				return errFault
			}
			return nil
		})

		sim.Poke(mixerEnabledOffset(), []byte{0, 0, 0, 0})
		err := card.DispatchNotification(dice.SHELL_KNOB_NOTIFY_FLAG | dice.SHELL_MIXER_NOTIFY_FLAG)
		assert.ErrorIs(t, err, errFault, "The failed segment should be reported")
		assert.False(t, k8.MixerState().Enabled, "The other notified segment should be read")

		ctl, err := card.CtlByName(dice.MixerEnableName)
		require.NoError(t, err)
		assert.Equal(t, []bool{false}, ctl.Value().Bool)

		sim.InjectFault(nil)
		require.NoError(t, card.DispatchNotification(dice.SHELL_KNOB_NOTIFY_FLAG), "Later notifications should succeed")
	})

	t.Run("Meters", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")
		k8 := model.(*dice.K8Model)

		sim.Tick()
		require.NoError(t, card.Measure())

		meter := k8.MixerMeter()
		assert.Len(t, meter.AnalogInputs, dice.K8MixerMeterSpec.AnalogInputCount)
		assert.Len(t, meter.DigitalInputs, dice.K8MixerMeterSpec.DigitalInputCount)

		ctl, err := card.CtlByName(dice.AnalogInputMetersName)
		require.NoError(t, err)
		for _, level := range ctl.Value().Int {
			assert.GreaterOrEqual(t, level, ctl.Info().Min)
			assert.LessOrEqual(t, level, ctl.Info().Max)
		}
	})
}

func TestItwinModel(t *testing.T) {
	configOffset := dice.TcKonnektBaseOffset + uint64(dice.ItwinConfigSegment.Offset)

	t.Run("OutputSource", func(t *testing.T) {
		sim, model, card := simCard(t, "itwin")
		itwin := model.(*dice.ItwinModel)
		id := dice.MixerElemId(dice.OutputSourceName)

		ctl, err := card.CtlById(id)
		require.NoError(t, err, "The output source should be an element")
		assert.Equal(t, "S/PDIF-1/2", ctl.Info().Items[3])

		require.NoError(t, card.Write(id, dice.NewEnumValue(3, 0, 0, 0, 0, 0, 15)), "Write should succeed")
		assert.Equal(t, dice.ItwinOutputSpdif01, itwin.Config().OutputPairSrc[0])
		assert.Equal(t, dice.ItwinOutputMixerSend01, itwin.Config().OutputPairSrc[6])
		assert.Equal(t, []byte{0, 0, 0, 3}, sim.Peek(configOffset+120, 4), "The wire value is the position in the table")
		assert.Equal(t, []byte{0, 0, 0, 15}, sim.Peek(configOffset+144, 4))

		// Read the segment back from the unit.
		require.NoError(t, card.DispatchNotification(dice.SHELL_CONFIG_NOTIFY_FLAG))
		val, err := card.Read(id)
		require.NoError(t, err)
		assert.Equal(t, []uint32{3, 0, 0, 0, 0, 0, 15}, val.Enum)

		err = card.Write(id, dice.NewEnumValue(16, 0, 0, 0, 0, 0, 0))
		assert.ErrorIs(t, err, dice.ErrInvalidValue, "Indexes past the table should be rejected")
	})

	t.Run("UnknownOutputSource", func(t *testing.T) {
		sim, _, card := simCard(t, "itwin")

		sim.Poke(configOffset+124, []byte{0, 0, 0, 16})
		err := card.DispatchNotification(dice.SHELL_CONFIG_NOTIFY_FLAG)
		assert.ErrorIs(t, err, dice.ErrInvalidValue, "Wire values past the table should be reported")
	})
}
