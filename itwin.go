package dice

import "fmt"

// ItwinPhysOutPairCount is the number of physical output pairs of iTwin.
const ItwinPhysOutPairCount = 7

// ItwinKnob is the state of knob of iTwin.
type ItwinKnob struct {
	Target        ShellKnob0Target
	ClockRecovery bool
}

// ItwinKnob0Targets is the table of knob targets of iTwin.
var ItwinKnob0Targets = []ShellKnob0Target{
	ShellKnob0ChannelStrip0,
	ShellKnob0ChannelStrip1,
	ShellKnob0Reverb,
	ShellKnob0Mixer,
}

// ItwinKnobSegment is the segment for knob of iTwin.
var ItwinKnobSegment = SegmentSpec[ItwinKnob]{
	Name:       "knob",
	Offset:     0x0004,
	Size:       shellKnobSegmentSize,
	NotifyFlag: SHELL_KNOB_NOTIFY_FLAG,
	Serialize: func(params *ItwinKnob, raw []byte) error {
		if err := serializePosition(ItwinKnob0Targets, params.Target, raw[0:4], "knob target"); err != nil {
			return err
		}
		serializeBool(params.ClockRecovery, raw[8:12])

		return nil
	},
	Deserialize: func(params *ItwinKnob, raw []byte) error {
		if err := deserializePosition(ItwinKnob0Targets, &params.Target, raw[0:4], "knob target"); err != nil {
			return err
		}
		params.ClockRecovery = deserializeBool(raw[8:12])

		return nil
	},
}

// ItwinOutputPairSrc is the source of a physical output pair of iTwin.
type ItwinOutputPairSrc int

const (
	ItwinOutputMixerOut01 ItwinOutputPairSrc = iota
	ItwinOutputAnalog01
	ItwinOutputAnalog23
	ItwinOutputSpdif01
	ItwinOutputAdat01
	ItwinOutputAdat23
	ItwinOutputAdat45
	ItwinOutputAdat67
	ItwinOutputStream01
	ItwinOutputStream23
	ItwinOutputStream45
	ItwinOutputStream67
	ItwinOutputStream89
	ItwinOutputStream1011
	ItwinOutputStream1213
	ItwinOutputMixerSend01
)

var itwinOutputPairSrcNames = []string{
	"Mixer-out-1/2",
	"Analog-1/2",
	"Analog-3/4",
	"S/PDIF-1/2",
	"ADAT-1/2",
	"ADAT-3/4",
	"ADAT-5/6",
	"ADAT-7/8",
	"Stream-1/2",
	"Stream-3/4",
	"Stream-5/6",
	"Stream-7/8",
	"Stream-9/10",
	"Stream-11/12",
	"Stream-13/14",
	"Mixer-send-1/2",
}

func (s ItwinOutputPairSrc) String() string { return enumString(itwinOutputPairSrcNames, int(s)) }

// ItwinOutputPairSrcs is the table of output sources in the order of their wire values.
var ItwinOutputPairSrcs = []ItwinOutputPairSrc{
	ItwinOutputMixerOut01,
	ItwinOutputAnalog01,
	ItwinOutputAnalog23,
	ItwinOutputSpdif01,
	ItwinOutputAdat01,
	ItwinOutputAdat23,
	ItwinOutputAdat45,
	ItwinOutputAdat67,
	ItwinOutputStream01,
	ItwinOutputStream23,
	ItwinOutputStream45,
	ItwinOutputStream67,
	ItwinOutputStream89,
	ItwinOutputStream1011,
	ItwinOutputStream1213,
	ItwinOutputMixerSend01,
}

// ItwinConfig is the configuration of iTwin.
type ItwinConfig struct {
	MixerStreamSrcPair ShellMixerStreamSourcePair
	StandaloneSrc      ShellStandaloneClockSource
	StandaloneRate     StandaloneClockRate
	OutputPairSrc      [ItwinPhysOutPairCount]ItwinOutputPairSrc
}

// ItwinStandaloneClockSources is the table of standalone clock sources of iTwin.
var ItwinStandaloneClockSources = []ShellStandaloneClockSource{
	ShellStandaloneClockOptical,
	ShellStandaloneClockCoaxial,
	ShellStandaloneClockInternal,
}

// ItwinConfigSegment is the segment for configuration of iTwin.
var ItwinConfigSegment = SegmentSpec[ItwinConfig]{
	Name:       "configuration",
	Offset:     0x0028,
	Size:       168,
	NotifyFlag: SHELL_CONFIG_NOTIFY_FLAG,
	Serialize: func(params *ItwinConfig, raw []byte) error {
		if err := serializePosition(ShellMixerStreamSourcePairs, params.MixerStreamSrcPair, raw[24:28], "mixer stream source pair"); err != nil {
			return err
		}
		if err := serializePosition(ItwinStandaloneClockSources, params.StandaloneSrc, raw[28:32], "standalone clock source"); err != nil {
			return err
		}
		if err := serializeStandaloneClockRate(params.StandaloneRate, raw[32:36]); err != nil {
			return err
		}
		for i, src := range params.OutputPairSrc {
			pos := 120 + i*4
			if err := serializePosition(ItwinOutputPairSrcs, src, raw[pos:pos+4], "output pair source"); err != nil {
				return err
			}
		}

		return nil
	},
	Deserialize: func(params *ItwinConfig, raw []byte) error {
		if err := deserializePosition(ShellMixerStreamSourcePairs, &params.MixerStreamSrcPair, raw[24:28], "mixer stream source pair"); err != nil {
			return err
		}
		if err := deserializePosition(ItwinStandaloneClockSources, &params.StandaloneSrc, raw[28:32], "standalone clock source"); err != nil {
			return err
		}
		if err := deserializeStandaloneClockRate(&params.StandaloneRate, raw[32:36]); err != nil {
			return err
		}
		for i := range params.OutputPairSrc {
			pos := 120 + i*4
			if err := deserializePosition(ItwinOutputPairSrcs, &params.OutputPairSrc[i], raw[pos:pos+4], "output pair source"); err != nil {
				return err
			}
		}

		return nil
	},
}

// ItwinMixerState is the state of mixer of iTwin.
type ItwinMixerState struct {
	Mixer ShellMixerState
	// StreamMixBalance is the balance between analog and stream inputs, 0..1000.
	StreamMixBalance uint32
	Enabled          bool
}

// ItwinMonitorSrcMap is the map of monitor sources of iTwin.
var ItwinMonitorSrcMap = MonitorSrcMap{
	MonitorSrcStream,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcSpdif,
	MonitorSrcAnalog,
	MonitorSrcAnalog,
	MonitorSrcAdatSpdif,
	MonitorSrcAdat,
	MonitorSrcAdat,
	MonitorSrcAdat,
}

// ItwinMixerStateSegment is the segment for mixer state of iTwin.
var ItwinMixerStateSegment = mixerStateSpec(
	0x00d0,
	shellMixerStateSize+56,
	func(p *ItwinMixerState) *ShellMixerState { return &p.Mixer },
	&ItwinMonitorSrcMap,
	func(p *ItwinMixerState, raw []byte) error {
		serializeU32(p.StreamMixBalance, raw[348:352])
		serializeBool(p.Enabled, raw[352:356])
		return nil
	},
	func(p *ItwinMixerState, raw []byte) error {
		p.StreamMixBalance = deserializeU32(raw[348:352])
		p.Enabled = deserializeBool(raw[352:356])
		return nil
	},
)

// ListeningMode is the mode of listening on iTwin.
type ListeningMode int

const (
	ListeningMonaural ListeningMode = iota
	ListeningStereo
	ListeningSide
)

var listeningModeNames = []string{"Monaural", "Stereo", "Side"}

func (m ListeningMode) String() string { return enumString(listeningModeNames, int(m)) }

// ListeningModes is the table of listening modes in the order of their wire values.
var ListeningModes = []ListeningMode{ListeningMonaural, ListeningStereo, ListeningSide}

func serializeListeningMode(mode ListeningMode, raw []byte) error {
	return serializePosition(ListeningModes, mode, raw, "listening mode")
}

// Only the lower two bits carry the mode.
func deserializeListeningMode(mode *ListeningMode, raw []byte) error {
	val := deserializeU32(raw) & 0x03
	if int(val) >= len(ListeningModes) {
		return fmt.Errorf("invalid value for listening mode: %d: %w", val, ErrInvalidValue)
	}

	*mode = ListeningModes[val]

	return nil
}

// ItwinHwState is the state of hardware of iTwin.
type ItwinHwState struct {
	HwState       ShellHwState
	ListeningMode ListeningMode
}

// ItwinHwStateSegment is the segment for hardware state of iTwin.
var ItwinHwStateSegment = SegmentSpec[ItwinHwState]{
	Name:       "hardware-state",
	Offset:     0x1008,
	Size:       shellHwStateSize,
	NotifyFlag: SHELL_HW_STATE_NOTIFY_FLAG,
	Serialize: func(params *ItwinHwState, raw []byte) error {
		if err := serializeHwState(&params.HwState, raw); err != nil {
			return err
		}
		return serializeListeningMode(params.ListeningMode, raw[8:12])
	},
	Deserialize: func(params *ItwinHwState, raw []byte) error {
		if err := deserializeHwState(&params.HwState, raw); err != nil {
			return err
		}
		return deserializeListeningMode(&params.ListeningMode, raw[8:12])
	},
}

// ItwinMixerMeterSpec is the number of metered inputs of iTwin.
var ItwinMixerMeterSpec = MixerMeterSpec{AnalogInputCount: 4, DigitalInputCount: 8}

var (
	// ItwinReverbStateSegment is the segment for reverb state of iTwin.
	ItwinReverbStateSegment = reverbStateSpec(0x0244)
	// ItwinChStripStatesSegment is the segment for channel strip states of iTwin.
	ItwinChStripStatesSegment = chStripStatesSpec(0x028c)
	// ItwinMixerMeterSegment is the segment for mixer meter of iTwin.
	ItwinMixerMeterSegment = mixerMeterSpec(0x106c, ItwinMixerMeterSpec)
	// ItwinReverbMeterSegment is the segment for reverb meter of iTwin.
	ItwinReverbMeterSegment = reverbMeterSpec(0x10c8)
	// ItwinChStripMetersSegment is the segment for channel strip meters of iTwin.
	ItwinChStripMetersSegment = chStripMetersSpec(0x10e0)
)
