package dice

import (
	"fmt"
	"slices"
)

// OutputImpedance is the impedance of an analog output of Konnekt Live.
type OutputImpedance int

const (
	OutputUnbalance OutputImpedance = iota
	OutputBalance
)

var outputImpedanceNames = []string{"Unbalance", "Balance"}

func (i OutputImpedance) String() string { return enumString(outputImpedanceNames, int(i)) }

// OutputImpedances is the table of output impedances.
var OutputImpedances = []OutputImpedance{OutputUnbalance, OutputBalance}

// KliveKnob is the state of knobs of Konnekt Live.
type KliveKnob struct {
	Knob0Target  ShellKnob0Target
	Knob1Target  ShellKnob1Target
	Prog         LoadedProgram
	OutImpedance [2]OutputImpedance
}

// KliveKnob0Targets is the table of targets of the first knob of Konnekt Live.
var KliveKnob0Targets = []ShellKnob0Target{
	ShellKnob0Analog0,
	ShellKnob0Analog1,
	ShellKnob0Analog2_3,
	ShellKnob0Configurable,
}

// KliveKnob1Targets is the table of targets of the second knob of Konnekt Live.
var KliveKnob1Targets = ShellKnob1Targets

// KliveKnobSegment is the segment for knobs of Konnekt Live.
var KliveKnobSegment = SegmentSpec[KliveKnob]{
	Name:       "knob",
	Offset:     0x0004,
	Size:       shellKnobSegmentSize,
	NotifyFlag: SHELL_KNOB_NOTIFY_FLAG,
	Serialize: func(params *KliveKnob, raw []byte) error {
		if err := serializePosition(KliveKnob0Targets, params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		if err := serializePosition(KliveKnob1Targets, params.Knob1Target, raw[4:8], "knob 1 target"); err != nil {
			return err
		}
		if err := serializeLoadedProgram(params.Prog, raw[8:12]); err != nil {
			return err
		}
		for i, impedance := range params.OutImpedance {
			pos := 12 + i*4
			if err := serializePosition(OutputImpedances, impedance, raw[pos:pos+4], "output impedance"); err != nil {
				return err
			}
		}

		return nil
	},
	Deserialize: func(params *KliveKnob, raw []byte) error {
		if err := deserializePosition(KliveKnob0Targets, &params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		if err := deserializePosition(KliveKnob1Targets, &params.Knob1Target, raw[4:8], "knob 1 target"); err != nil {
			return err
		}
		if err := deserializeLoadedProgram(&params.Prog, raw[8:12]); err != nil {
			return err
		}
		for i := range params.OutImpedance {
			pos := 12 + i*4
			if err := deserializePosition(OutputImpedances, &params.OutImpedance[i], raw[pos:pos+4], "output impedance"); err != nil {
				return err
			}
		}

		return nil
	},
}

// KliveConfig is the configuration of Konnekt Live.
type KliveConfig struct {
	Opt                ShellOptIfaceConfig
	CoaxOutSrc         ShellPhysOutSrc
	Out01Src           ShellPhysOutSrc
	Out23Src           ShellPhysOutSrc
	MixerStreamSrcPair ShellMixerStreamSourcePair
	StandaloneSrc      ShellStandaloneClockSource
	StandaloneRate     StandaloneClockRate
	MidiSender         MidiSender
}

// KliveMixerStreamSourcePairs is the table of stream pairs available for the mixer of
// Konnekt Live.
var KliveMixerStreamSourcePairs = ShellMixerStreamSourcePairs[:6]

// KliveStandaloneClockSources is the table of standalone clock sources of Konnekt Live.
var KliveStandaloneClockSources = []ShellStandaloneClockSource{
	ShellStandaloneClockOptical,
	ShellStandaloneClockCoaxial,
	ShellStandaloneClockInternal,
}

// KliveConfigSegment is the segment for configuration of Konnekt Live.
var KliveConfigSegment = SegmentSpec[KliveConfig]{
	Name:       "configuration",
	Offset:     0x0028,
	Size:       132,
	NotifyFlag: SHELL_CONFIG_NOTIFY_FLAG,
	Serialize: func(params *KliveConfig, raw []byte) error {
		if err := serializeOptIfaceConfig(&params.Opt, raw[0:12]); err != nil {
			return err
		}
		if err := serializeCoaxOutPairSrc(params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := serializePosition(ShellPhysOutSrcs, params.Out01Src, raw[16:20], "output 1/2 source"); err != nil {
			return err
		}
		if err := serializePosition(ShellPhysOutSrcs, params.Out23Src, raw[20:24], "output 3/4 source"); err != nil {
			return err
		}
		if err := serializePosition(KliveMixerStreamSourcePairs, params.MixerStreamSrcPair, raw[24:28], "mixer stream source pair"); err != nil {
			return err
		}
		if err := serializePosition(KliveStandaloneClockSources, params.StandaloneSrc, raw[28:32], "standalone clock source"); err != nil {
			return err
		}
		if err := serializeStandaloneClockRate(params.StandaloneRate, raw[32:36]); err != nil {
			return err
		}
		serializeMidiSender(&params.MidiSender, raw[84:120])

		return nil
	},
	Deserialize: func(params *KliveConfig, raw []byte) error {
		if err := deserializeOptIfaceConfig(&params.Opt, raw[0:12]); err != nil {
			return err
		}
		if err := deserializeCoaxOutPairSrc(&params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := deserializePosition(ShellPhysOutSrcs, &params.Out01Src, raw[16:20], "output 1/2 source"); err != nil {
			return err
		}
		if err := deserializePosition(ShellPhysOutSrcs, &params.Out23Src, raw[20:24], "output 3/4 source"); err != nil {
			return err
		}
		if err := deserializePosition(KliveMixerStreamSourcePairs, &params.MixerStreamSrcPair, raw[24:28], "mixer stream source pair"); err != nil {
			return err
		}
		if err := deserializePosition(KliveStandaloneClockSources, &params.StandaloneSrc, raw[28:32], "standalone clock source"); err != nil {
			return err
		}
		if err := deserializeStandaloneClockRate(&params.StandaloneRate, raw[32:36]); err != nil {
			return err
		}
		deserializeMidiSender(&params.MidiSender, raw[84:120])

		return nil
	},
}

// KliveChStripSrc is the source of the channel strip effect of Konnekt Live.
type KliveChStripSrc int

const (
	KliveChStripStream01 KliveChStripSrc = iota
	KliveChStripAnalog01
	KliveChStripAnalog23
	KliveChStripDigital01
	KliveChStripDigital23
	KliveChStripDigital45
	KliveChStripDigital67
	KliveChStripMixerOutput
	KliveChStripNone
)

var kliveChStripSrcNames = []string{
	"Stream-1/2",
	"Analog-1/2",
	"Analog-3/4",
	"Digital-1/2",
	"Digital-3/4",
	"Digital-5/6",
	"Digital-7/8",
	"Mixer-out-1/2",
	"None",
}

func (s KliveChStripSrc) String() string { return enumString(kliveChStripSrcNames, int(s)) }

// KliveChStripSrcs is the table of channel strip sources.
var KliveChStripSrcs = []KliveChStripSrc{
	KliveChStripStream01,
	KliveChStripAnalog01,
	KliveChStripAnalog23,
	KliveChStripDigital01,
	KliveChStripDigital23,
	KliveChStripDigital45,
	KliveChStripDigital67,
	KliveChStripMixerOutput,
	KliveChStripNone,
}

// Wire values of channel strip sources, in the order of KliveChStripSrcs.
var kliveChStripSrcValues = []uint32{0, 4, 5, 6, 7, 8, 9, 10, 11}

// raw holds the cached image, so a value unknown to KliveChStripSrcs is kept as long as the
// source stays at KliveChStripNone.
func serializeKliveChStripSrc(src KliveChStripSrc, raw []byte) error {
	i := slices.Index(KliveChStripSrcs, src)
	if i < 0 {
		return fmt.Errorf("channel strip source %v is not supported: %w", src, ErrInvalidValue)
	}

	if src == KliveChStripNone && !slices.Contains(kliveChStripSrcValues, deserializeU32(raw)) {
		return nil
	}

	serializeU32(kliveChStripSrcValues[i], raw)

	return nil
}

// Unknown values stand for no source.
func deserializeKliveChStripSrc(src *KliveChStripSrc, raw []byte) {
	i := slices.Index(kliveChStripSrcValues, deserializeU32(raw))
	if i < 0 {
		*src = KliveChStripNone
		return
	}

	*src = KliveChStripSrcs[i]
}

// KliveChStripMode is the mode of the channel strip effect of Konnekt Live.
type KliveChStripMode int

const (
	KliveChStripFabrikC KliveChStripMode = iota
	KliveChStripRIAA1964
	KliveChStripRIAA1987
)

var kliveChStripModeNames = []string{"FabricC", "RIAA1964", "RIAA1987"}

func (m KliveChStripMode) String() string { return enumString(kliveChStripModeNames, int(m)) }

// KliveChStripModes is the table of channel strip modes.
var KliveChStripModes = []KliveChStripMode{KliveChStripFabrikC, KliveChStripRIAA1964, KliveChStripRIAA1987}

// KliveMixerState is the state of mixer of Konnekt Live.
type KliveMixerState struct {
	Mixer              ShellMixerState
	ReverbReturn       ShellReverbReturn
	UseChStripAsPlugin bool
	ChStripSrc         KliveChStripSrc
	ChStripMode        KliveChStripMode
	UseReverbAtMidRate bool
	Enabled            bool
}

// KliveMonitorSrcMap is the map of monitor sources of Konnekt Live.
var KliveMonitorSrcMap = MonitorSrcMap{
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

// KliveMixerStateSegment is the segment for mixer state of Konnekt Live.
var KliveMixerStateSegment = mixerStateSpec(
	0x00ac,
	shellMixerStateSize+48,
	func(p *KliveMixerState) *ShellMixerState { return &p.Mixer },
	&KliveMonitorSrcMap,
	func(p *KliveMixerState, raw []byte) error {
		serializeReverbReturn(&p.ReverbReturn, raw[316:328])
		serializeBool(p.UseChStripAsPlugin, raw[328:332])
		if err := serializeKliveChStripSrc(p.ChStripSrc, raw[332:336]); err != nil {
			return err
		}
		if err := serializePosition(KliveChStripModes, p.ChStripMode, raw[336:340], "channel strip mode"); err != nil {
			return err
		}
		serializeBool(p.UseReverbAtMidRate, raw[340:344])
		serializeBool(p.Enabled, raw[344:348])

		return nil
	},
	func(p *KliveMixerState, raw []byte) error {
		deserializeReverbReturn(&p.ReverbReturn, raw[316:328])
		p.UseChStripAsPlugin = deserializeBool(raw[328:332])
		deserializeKliveChStripSrc(&p.ChStripSrc, raw[332:336])
		if err := deserializePosition(KliveChStripModes, &p.ChStripMode, raw[336:340], "channel strip mode"); err != nil {
			return err
		}
		p.UseReverbAtMidRate = deserializeBool(raw[340:344])
		p.Enabled = deserializeBool(raw[344:348])

		return nil
	},
)

// KliveHwStateSegment is the segment for hardware state of Konnekt Live.
var KliveHwStateSegment = SegmentSpec[ShellHwState]{
	Name:        "hardware-state",
	Offset:      0x1008,
	Size:        shellHwStateSize,
	NotifyFlag:  SHELL_HW_STATE_NOTIFY_FLAG,
	Serialize:   serializeHwState,
	Deserialize: deserializeHwState,
}

// KliveMixerMeterSpec is the number of metered inputs of Konnekt Live.
var KliveMixerMeterSpec = MixerMeterSpec{AnalogInputCount: 4, DigitalInputCount: 8}

var (
	KliveReverbStateSegment   = reverbStateSpec(0x0218)
	KliveChStripStatesSegment = chStripStatesSpec(0x0260)
	KliveMixerMeterSegment    = mixerMeterSpec(0x1068, KliveMixerMeterSpec)
	KliveReverbMeterSegment   = reverbMeterSpec(0x10c4)
	KliveChStripMetersSegment = chStripMetersSpec(0x10dc)
)
