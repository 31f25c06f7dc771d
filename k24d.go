package dice

// K24dKnob is the state of knobs of Konnekt 24d.
type K24dKnob struct {
	Knob0Target ShellKnob0Target
	Knob1Target ShellKnob1Target
	Prog        LoadedProgram
}

// K24dKnob0Targets is the table of targets of the first knob of Konnekt 24d.
var K24dKnob0Targets = []ShellKnob0Target{
	ShellKnob0Analog0,
	ShellKnob0Analog1,
	ShellKnob0Analog2_3,
	ShellKnob0Configurable,
}

// K24dKnob1Targets is the table of targets of the second knob of Konnekt 24d.
var K24dKnob1Targets = []ShellKnob1Target{
	ShellKnob1Digital0_1,
	ShellKnob1Digital2_3,
	ShellKnob1Digital4_5,
	ShellKnob1Digital6_7,
	ShellKnob1Stream,
	ShellKnob1Reverb,
	ShellKnob1Mixer,
	ShellKnob1TunerPitchTone,
}

// K24dKnobSegment is the segment for knobs of Konnekt 24d.
var K24dKnobSegment = SegmentSpec[K24dKnob]{
	Name:       "knob",
	Offset:     0x0004,
	Size:       shellKnobSegmentSize,
	NotifyFlag: SHELL_KNOB_NOTIFY_FLAG,
	Serialize: func(params *K24dKnob, raw []byte) error {
		if err := serializePosition(K24dKnob0Targets, params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		if err := serializePosition(K24dKnob1Targets, params.Knob1Target, raw[4:8], "knob 1 target"); err != nil {
			return err
		}
		return serializeLoadedProgram(params.Prog, raw[8:12])
	},
	Deserialize: func(params *K24dKnob, raw []byte) error {
		if err := deserializePosition(K24dKnob0Targets, &params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		if err := deserializePosition(K24dKnob1Targets, &params.Knob1Target, raw[4:8], "knob 1 target"); err != nil {
			return err
		}
		return deserializeLoadedProgram(&params.Prog, raw[8:12])
	},
}

// K24dConfig is the configuration of Konnekt 24d.
type K24dConfig struct {
	Opt            ShellOptIfaceConfig
	CoaxOutSrc     ShellPhysOutSrc
	Out23Src       ShellPhysOutSrc
	StandaloneSrc  ShellStandaloneClockSource
	StandaloneRate StandaloneClockRate
}

// K24dStandaloneClockSources is the table of standalone clock sources of Konnekt 24d.
var K24dStandaloneClockSources = []ShellStandaloneClockSource{
	ShellStandaloneClockOptical,
	ShellStandaloneClockCoaxial,
	ShellStandaloneClockInternal,
}

// K24dConfigSegment is the segment for configuration of Konnekt 24d.
var K24dConfigSegment = SegmentSpec[K24dConfig]{
	Name:       "configuration",
	Offset:     0x0028,
	Size:       76,
	NotifyFlag: SHELL_CONFIG_NOTIFY_FLAG,
	Serialize: func(params *K24dConfig, raw []byte) error {
		if err := serializeOptIfaceConfig(&params.Opt, raw[0:12]); err != nil {
			return err
		}
		if err := serializeCoaxOutPairSrc(params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := serializePosition(ShellPhysOutSrcs, params.Out23Src, raw[16:20], "output 3/4 source"); err != nil {
			return err
		}
		if err := serializePosition(K24dStandaloneClockSources, params.StandaloneSrc, raw[20:24], "standalone clock source"); err != nil {
			return err
		}
		return serializeStandaloneClockRate(params.StandaloneRate, raw[24:28])
	},
	Deserialize: func(params *K24dConfig, raw []byte) error {
		if err := deserializeOptIfaceConfig(&params.Opt, raw[0:12]); err != nil {
			return err
		}
		if err := deserializeCoaxOutPairSrc(&params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := deserializePosition(ShellPhysOutSrcs, &params.Out23Src, raw[16:20], "output 3/4 source"); err != nil {
			return err
		}
		if err := deserializePosition(K24dStandaloneClockSources, &params.StandaloneSrc, raw[20:24], "standalone clock source"); err != nil {
			return err
		}
		return deserializeStandaloneClockRate(&params.StandaloneRate, raw[24:28])
	},
}

// K24dMixerState is the state of mixer of Konnekt 24d.
type K24dMixerState struct {
	Mixer              ShellMixerState
	ReverbReturn       ShellReverbReturn
	UseChStripAsPlugin bool
	UseReverbAtMidRate bool
	Enabled            bool
}

// K24dMonitorSrcMap is the map of monitor sources of Konnekt 24d.
var K24dMonitorSrcMap = MonitorSrcMap{
	MonitorSrcStream,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcAnalog,
	MonitorSrcAnalog,
	MonitorSrcAdatSpdif,
	MonitorSrcAdat,
	MonitorSrcAdat,
	MonitorSrcAdatSpdif,
}

// K24dMixerStateSegment is the segment for mixer state of Konnekt 24d.
var K24dMixerStateSegment = mixerStateSpec(
	0x0074,
	shellMixerStateSize+32,
	func(p *K24dMixerState) *ShellMixerState { return &p.Mixer },
	&K24dMonitorSrcMap,
	func(p *K24dMixerState, raw []byte) error {
		serializeReverbReturn(&p.ReverbReturn, raw[316:328])
		serializeBool(p.UseChStripAsPlugin, raw[328:332])
		serializeBool(p.UseReverbAtMidRate, raw[332:336])
		serializeBool(p.Enabled, raw[340:344])
		return nil
	},
	func(p *K24dMixerState, raw []byte) error {
		deserializeReverbReturn(&p.ReverbReturn, raw[316:328])
		p.UseChStripAsPlugin = deserializeBool(raw[328:332])
		p.UseReverbAtMidRate = deserializeBool(raw[332:336])
		p.Enabled = deserializeBool(raw[340:344])
		return nil
	},
)

// K24dHwStateSegment is the segment for hardware state of Konnekt 24d.
var K24dHwStateSegment = SegmentSpec[ShellHwState]{
	Name:        "hardware-state",
	Offset:      0x100c,
	Size:        shellHwStateSize,
	NotifyFlag:  SHELL_HW_STATE_NOTIFY_FLAG,
	Serialize:   serializeHwState,
	Deserialize: deserializeHwState,
}

// K24dMixerMeterSpec is the number of metered inputs of Konnekt 24d.
var K24dMixerMeterSpec = MixerMeterSpec{AnalogInputCount: 2, DigitalInputCount: 2}

var (
	K24dReverbStateSegment   = reverbStateSpec(0x01d0)
	K24dChStripStatesSegment = chStripStatesSpec(0x0218)
	K24dMixerMeterSegment    = mixerMeterSpec(0x105c, K24dMixerMeterSpec)
	K24dReverbMeterSegment   = reverbMeterSpec(0x10b8)
	K24dChStripMetersSegment = chStripMetersSpec(0x10d0)
)
