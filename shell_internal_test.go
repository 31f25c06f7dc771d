package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func roundTrip[T any](t *testing.T, spec SegmentSpec[T], params T) {
	t.Helper()

	raw := make([]byte, spec.Size)
	require.NoError(t, spec.Serialize(&params, raw), "Serialize should succeed for %s", spec.Name)

	var decoded T
	require.NoError(t, spec.Deserialize(&decoded, raw), "Deserialize should succeed for %s", spec.Name)
	assert.Equal(t, params, decoded, "%s should survive a round trip", spec.Name)
}

func testMixerState(m *MonitorSrcMap) ShellMixerState {
	state := m.NewMixerState()
	state.Stream = ShellMonitorSrcPair{
		StereoLink: true,
		Params:     [2]MonitorSrcParam{{-100, -50, -200}, {-100, 50, -200}},
	}
	for i := range state.Analog {
		state.Analog[i].Params[1] = MonitorSrcParam{GainToMixer: int32(-10 * (i + 1)), PanToMixer: 25}
	}
	for i := range state.Digital {
		state.Digital[i].StereoLink = i%2 == 0
		state.Digital[i].Params[0].GainToSend = int32(-300 - i)
	}
	state.Mutes.Stream = true
	if len(state.Mutes.Digital) > 0 {
		state.Mutes.Digital[len(state.Mutes.Digital)-1] = true
	}
	state.OutputVolume = -120
	state.OutputDimEnable = true
	state.OutputDimVolume = -600

	return state
}

func testHwState() ShellHwState {
	return ShellHwState{
		AnalogJackStates: [ShellAnalogJackStateCount]ShellAnalogJackState{
			ShellAnalogJackFrontInsertedAttenuated,
			ShellAnalogJackRearInserted,
		},
		FirewireLed: FireWireLedBlinkSlow,
	}
}

func TestSegmentRoundTrip(t *testing.T) {
	t.Run("Itwin", func(t *testing.T) {
		roundTrip(t, ItwinConfigSegment, ItwinConfig{
			MixerStreamSrcPair: ShellMixerStream12_13,
			StandaloneSrc:      ShellStandaloneClockCoaxial,
			StandaloneRate:     StandaloneClockRate96000,
			OutputPairSrc: [ItwinPhysOutPairCount]ItwinOutputPairSrc{
				ItwinOutputSpdif01,
				ItwinOutputMixerSend01,
				ItwinOutputStream1213,
				ItwinOutputAdat67,
				ItwinOutputAnalog23,
				ItwinOutputMixerOut01,
				ItwinOutputStream01,
			},
		})
		roundTrip(t, ItwinMixerStateSegment, ItwinMixerState{
			Mixer:            testMixerState(&ItwinMonitorSrcMap),
			StreamMixBalance: 750,
			Enabled:          true,
		})
		roundTrip(t, ItwinHwStateSegment, ItwinHwState{HwState: testHwState(), ListeningMode: ListeningSide})
	})

	t.Run("K24d", func(t *testing.T) {
		roundTrip(t, K24dConfigSegment, K24dConfig{
			Opt: ShellOptIfaceConfig{
				InputFormat:  ShellOptInputAdat0to5Spdif01,
				OutputFormat: ShellOptOutputSpdif,
				OutputSource: ShellPhysOutSrcMixerSend01,
			},
			CoaxOutSrc:     ShellPhysOutSrcAnalog01,
			Out23Src:       ShellPhysOutSrcMixerOut01,
			StandaloneSrc:  ShellStandaloneClockOptical,
			StandaloneRate: StandaloneClockRate88200,
		})
		roundTrip(t, K24dMixerStateSegment, K24dMixerState{
			Mixer:              testMixerState(&K24dMonitorSrcMap),
			ReverbReturn:       ShellReverbReturn{PluginMode: true, ReturnGain: -300, ReturnMute: true},
			UseChStripAsPlugin: true,
			UseReverbAtMidRate: true,
			Enabled:            true,
		})
		roundTrip(t, K24dHwStateSegment, testHwState())
	})

	t.Run("K8", func(t *testing.T) {
		roundTrip(t, K8ConfigSegment, K8Config{
			CoaxOutSrc:     ShellPhysOutSrcMixerSend01,
			StandaloneSrc:  ShellStandaloneClockCoaxial,
			StandaloneRate: StandaloneClockRate44100,
		})
		roundTrip(t, K8MixerStateSegment, K8MixerState{Mixer: testMixerState(&K8MonitorSrcMap), Enabled: true})
		roundTrip(t, K8HwStateSegment, K8HwState{HwState: testHwState(), AuxInputEnabled: true})
	})

	t.Run("Klive", func(t *testing.T) {
		roundTrip(t, KliveConfigSegment, KliveConfig{
			Opt:                ShellOptIfaceConfig{InputFormat: ShellOptInputToslink01Spdif01},
			CoaxOutSrc:         ShellPhysOutSrcMixerOut01,
			Out01Src:           ShellPhysOutSrcAnalog01,
			Out23Src:           ShellPhysOutSrcMixerSend01,
			MixerStreamSrcPair: ShellMixerStream10_11,
			StandaloneSrc:      ShellStandaloneClockInternal,
			StandaloneRate:     StandaloneClockRate48000,
			MidiSender: MidiSender{
				Normal:       MidiMsgParams{Ch: 15, Cc: 7},
				Pushed:       MidiMsgParams{Ch: 1, Cc: 127},
				SendToPort:   true,
				SendToStream: true,
			},
		})
		roundTrip(t, KliveMixerStateSegment, KliveMixerState{
			Mixer:              testMixerState(&KliveMonitorSrcMap),
			ReverbReturn:       ShellReverbReturn{ReturnGain: -1000},
			UseChStripAsPlugin: true,
			ChStripSrc:         KliveChStripDigital45,
			ChStripMode:        KliveChStripRIAA1987,
			Enabled:            true,
		})
		roundTrip(t, KliveHwStateSegment, testHwState())
	})

	t.Run("Effects", func(t *testing.T) {
		roundTrip(t, KliveReverbStateSegment, ReverbState{
			InputLevel:      -240,
			Bypass:          true,
			KillDry:         true,
			OutputLevel:     -60,
			TimeDecay:       290,
			TimePreDecay:    100,
			ColorLow:        -50,
			ColorHigh:       50,
			ColorHighFactor: 25,
			ModRate:         10,
			ModDepth:        20,
			LevelEarly:      -30,
			LevelReverb:     -40,
			LevelDry:        -50,
			Algorithm:       ReverbSpring,
		})

		var states ChStripStates
		states[0] = ChStripState{
			SrcType: ChStripElectroTechno,
			Comp: CompState{
				InputGain:       360,
				MakeUpGain:      200,
				FullBandEnabled: true,
				Ctl:             [3]uint32{1, 2, 3},
				Level:           [3]uint32{4, 5, 6},
			},
			Deesser:        DeesserState{Ratio: 10, Bypass: true},
			EqBypass:       true,
			Limitter:       LimitterState{Threshold: 72},
			LimitterBypass: true,
		}
		for i := range states[0].Eq {
			states[0].Eq[i] = EqState{Enabled: i%2 == 1, Bandwidth: uint32(i), Gain: uint32(10 * i), Freq: uint32(1000 * i)}
		}
		states[1] = ChStripState{SrcType: ChStripPiano, Bypass: true}
		roundTrip(t, ItwinChStripStatesSegment, states)
	})

	t.Run("DesktopK6", func(t *testing.T) {
		roundTrip(t, DesktopK6HwStateSegment, DesktopHwState{
			MeterTarget:           MeterTargetPost,
			MixerOutputMonaural:   true,
			MixerOutputDimEnabled: true,
			MixerOutputDimVolume:  -900,
			InputScene:            InputSceneStereoIn,
			ReverbToHp:            true,
			MasterKnobBacklight:   true,
			Mic0Boost:             true,
		})
		roundTrip(t, DesktopK6ConfigSegment, DesktopConfig{StandaloneRate: StandaloneClockRate96000})
		roundTrip(t, DesktopK6MixerStateSegment, DesktopMixerState{
			MicInstLevel:  [2]int32{-10, -20},
			MicInstPan:    [2]int32{-50, 50},
			MicInstSend:   [2]int32{-30, -40},
			DualInstLevel: [2]int32{-50, -60},
			DualInstPan:   [2]int32{10, -10},
			DualInstSend:  [2]int32{-70, -80},
			StereoInLevel: -90,
			StereoInPan:   5,
			StereoInSend:  -1000,
			HpSrc:         DesktopHpSrcStream23,
		})
		roundTrip(t, DesktopK6PanelSegment, DesktopPanel{
			ButtonCount: 3,
			MainKnob:    -100,
			PhoneKnob:   -200,
			MixKnob:     500,
			ReverbLedOn: true,
			ReverbKnob:  -300,
			FirewireLed: FireWireLedBlinkFast,
		})
	})
}

func TestDesktopHwStateLayout(t *testing.T) {
	params := DesktopHwState{ReverbToMain: true, ReverbToHp: true, Mic0Phantom: true}
	raw := make([]byte, DesktopK6HwStateSegment.Size)
	require.NoError(t, DesktopK6HwStateSegment.Serialize(&params, raw))

	assert.Equal(t, uint32(0x03), deserializeU32(raw[28:32]), "Both reverb routings share one quadlet")
	assert.Equal(t, uint32(1), deserializeU32(raw[52:56]))

	serializeU32(0x04, raw[28:32])
	var decoded DesktopHwState
	require.NoError(t, DesktopK6HwStateSegment.Deserialize(&decoded, raw))
	assert.False(t, decoded.ReverbToMain, "Other bits should be ignored")
	assert.False(t, decoded.ReverbToHp)
}

func checkTableBounds[T comparable](t *testing.T, label string, table []T) {
	t.Helper()

	require.NotEmpty(t, table, "%s should not be empty", label)

	raw := make([]byte, 4)
	var val T

	serializeU32(uint32(len(table)-1), raw)
	require.NoError(t, deserializePosition(table, &val, raw, label), "The last index of %s should be valid", label)
	assert.Equal(t, table[len(table)-1], val)

	serializeU32(uint32(len(table)), raw)
	assert.ErrorIs(t, deserializePosition(table, &val, raw, label), ErrInvalidValue,
		"A wire value past %s should be rejected", label)
	assert.Equal(t, table[len(table)-1], val, "A rejected value should not be stored")

	_, err := enumValue(table, uint32(len(table)), label)
	assert.ErrorIs(t, err, ErrInvalidValue, "An index past %s should be rejected", label)

	_, err = enumValue(table, ^uint32(0), label)
	assert.ErrorIs(t, err, ErrInvalidValue, "The largest index of %s should be rejected", label)
}

func TestTableBounds(t *testing.T) {
	checkTableBounds(t, "iTwin knob targets", ItwinKnob0Targets)
	checkTableBounds(t, "iTwin standalone clock sources", ItwinStandaloneClockSources)
	checkTableBounds(t, "iTwin output pair sources", ItwinOutputPairSrcs)
	checkTableBounds(t, "Konnekt 24d knob 0 targets", K24dKnob0Targets)
	checkTableBounds(t, "Konnekt 24d knob 1 targets", K24dKnob1Targets)
	checkTableBounds(t, "Konnekt 24d standalone clock sources", K24dStandaloneClockSources)
	checkTableBounds(t, "Konnekt 8 knob 0 targets", K8Knob0Targets)
	checkTableBounds(t, "Konnekt 8 knob 1 targets", K8Knob1Targets)
	checkTableBounds(t, "Konnekt 8 standalone clock sources", K8StandaloneClockSources)
	checkTableBounds(t, "Konnekt Live knob 0 targets", KliveKnob0Targets)
	checkTableBounds(t, "Konnekt Live knob 1 targets", KliveKnob1Targets)
	checkTableBounds(t, "Konnekt Live standalone clock sources", KliveStandaloneClockSources)
	checkTableBounds(t, "Konnekt Live stream pairs", KliveMixerStreamSourcePairs)
	checkTableBounds(t, "Konnekt Live channel strip modes", KliveChStripModes)
	checkTableBounds(t, "output impedances", OutputImpedances)
	checkTableBounds(t, "meter targets", MeterTargets)
	checkTableBounds(t, "input scenes", InputScenes)
	checkTableBounds(t, "headphone sources", DesktopHpSrcs)
	checkTableBounds(t, "stream pairs", ShellMixerStreamSourcePairs)
	checkTableBounds(t, "physical output sources", ShellPhysOutSrcs)
	checkTableBounds(t, "FireWire LED states", FireWireLedStates)
	checkTableBounds(t, "listening modes", ListeningModes)
	checkTableBounds(t, "reverb algorithms", ReverbAlgorithms)
	checkTableBounds(t, "channel strip source types", ChStripSrcTypes)

	t.Run("NarrowedTable", func(t *testing.T) {
		params := KliveConfig{
			MixerStreamSrcPair: ShellMixerStream12_13,
			StandaloneSrc:      ShellStandaloneClockInternal,
		}
		raw := make([]byte, KliveConfigSegment.Size)
		assert.ErrorIs(t, KliveConfigSegment.Serialize(&params, raw), ErrInvalidValue,
			"A stream pair out of the table of the model should be rejected")

		raw = make([]byte, K8ConfigSegment.Size)
		serializeU32(1, raw[24:28])
		require.NoError(t, K8ConfigSegment.Deserialize(&K8Config{}, raw), "Deserialize should succeed")
		serializeU32(uint32(len(K8StandaloneClockSources)), raw[20:24])
		assert.ErrorIs(t, K8ConfigSegment.Deserialize(&K8Config{}, raw), ErrInvalidValue,
			"Konnekt 8 has no optical interface")
	})
}

func TestItwinMixerStateMutes(t *testing.T) {
	m := ItwinMonitorSrcMap
	state := m.NewMixerState()
	require.Len(t, state.Mutes.Analog, 4, "Two analog pairs have four channels")
	require.Len(t, state.Mutes.Digital, 10, "Five digital pairs have ten channels")

	state.Mutes.Analog[3] = true
	state.Mutes.Digital[0] = true
	state.Mutes.Digital[9] = true
	state.Digital[0].StereoLink = true

	raw := make([]byte, shellMixerStateSize)
	require.NoError(t, m.serializeMixerState(&state, raw))
	assert.Equal(t, uint32(1<<11|1<<12|1<<21), deserializeU32(raw[308:312]), "Digital mutes follow the analog ones")
	assert.Equal(t, uint32(1), deserializeU32(raw[3*shellMonitorSrcPairSize:3*shellMonitorSrcPairSize+4]),
		"The first digital pair takes the S/PDIF slot")

	var decoded ShellMixerState
	require.NoError(t, m.deserializeMixerState(&decoded, raw))
	assert.Equal(t, []bool{false, false, false, true}, decoded.Mutes.Analog)
	assert.Equal(t, []bool{true, false, false, false, false, false, false, false, false, true}, decoded.Mutes.Digital)
	assert.False(t, decoded.Mutes.Stream)
}

func TestKliveChStripSrc(t *testing.T) {
	t.Run("Known", func(t *testing.T) {
		raw := make([]byte, 4)
		require.NoError(t, serializeKliveChStripSrc(KliveChStripMixerOutput, raw))
		assert.Equal(t, uint32(10), deserializeU32(raw))

		require.NoError(t, serializeKliveChStripSrc(KliveChStripNone, raw))
		assert.Equal(t, uint32(11), deserializeU32(raw), "A known value is replaced")
	})

	t.Run("Unknown", func(t *testing.T) {
		params := KliveMixerState{Mixer: KliveMonitorSrcMap.NewMixerState()}
		raw := make([]byte, KliveMixerStateSegment.Size)
		require.NoError(t, KliveMixerStateSegment.Serialize(&params, raw))
		serializeU32(0x20, raw[332:336])

		require.NoError(t, KliveMixerStateSegment.Deserialize(&params, raw))
		assert.Equal(t, KliveChStripNone, params.ChStripSrc)

		params.Enabled = true
		require.NoError(t, KliveMixerStateSegment.Serialize(&params, raw))
		assert.Equal(t, uint32(0x20), deserializeU32(raw[332:336]), "The value of the unit should be kept")
		assert.True(t, deserializeBool(raw[344:348]))

		params.ChStripSrc = KliveChStripAnalog23
		require.NoError(t, KliveMixerStateSegment.Serialize(&params, raw))
		assert.Equal(t, uint32(5), deserializeU32(raw[332:336]))
	})
}
