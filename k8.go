package dice

// K8Knob is the state of knobs of Konnekt 8.
type K8Knob struct {
	Knob0Target ShellKnob0Target
	Knob1Target ShellKnob1Target
}

// K8Knob0Targets is the table of targets of the first knob of Konnekt 8.
var K8Knob0Targets = []ShellKnob0Target{
	ShellKnob0Analog0,
	ShellKnob0Analog1,
	ShellKnob0Spdif0_1,
	ShellKnob0Configurable,
}

// K8Knob1Targets is the table of targets of the second knob of Konnekt 8.
var K8Knob1Targets = []ShellKnob1Target{ShellKnob1Stream, ShellKnob1Mixer}

// K8KnobSegment is the segment for knobs of Konnekt 8.
var K8KnobSegment = SegmentSpec[K8Knob]{
	Name:       "knob",
	Offset:     0x0004,
	Size:       shellKnobSegmentSize,
	NotifyFlag: SHELL_KNOB_NOTIFY_FLAG,
	Serialize: func(params *K8Knob, raw []byte) error {
		if err := serializePosition(K8Knob0Targets, params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		return serializePosition(K8Knob1Targets, params.Knob1Target, raw[4:8], "knob 1 target")
	},
	Deserialize: func(params *K8Knob, raw []byte) error {
		if err := deserializePosition(K8Knob0Targets, &params.Knob0Target, raw[0:4], "knob 0 target"); err != nil {
			return err
		}
		return deserializePosition(K8Knob1Targets, &params.Knob1Target, raw[4:8], "knob 1 target")
	},
}

// K8Config is the configuration of Konnekt 8.
type K8Config struct {
	CoaxOutSrc     ShellPhysOutSrc
	StandaloneSrc  ShellStandaloneClockSource
	StandaloneRate StandaloneClockRate
}

// K8StandaloneClockSources is the table of standalone clock sources of Konnekt 8, which has
// no optical interface.
var K8StandaloneClockSources = []ShellStandaloneClockSource{
	ShellStandaloneClockCoaxial,
	ShellStandaloneClockInternal,
}

// K8ConfigSegment is the segment for configuration of Konnekt 8.
var K8ConfigSegment = SegmentSpec[K8Config]{
	Name:       "configuration",
	Offset:     0x0028,
	Size:       76,
	NotifyFlag: SHELL_CONFIG_NOTIFY_FLAG,
	Serialize: func(params *K8Config, raw []byte) error {
		if err := serializeCoaxOutPairSrc(params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := serializePosition(K8StandaloneClockSources, params.StandaloneSrc, raw[20:24], "standalone clock source"); err != nil {
			return err
		}
		return serializeStandaloneClockRate(params.StandaloneRate, raw[24:28])
	},
	Deserialize: func(params *K8Config, raw []byte) error {
		if err := deserializeCoaxOutPairSrc(&params.CoaxOutSrc, raw[12:16]); err != nil {
			return err
		}
		if err := deserializePosition(K8StandaloneClockSources, &params.StandaloneSrc, raw[20:24], "standalone clock source"); err != nil {
			return err
		}
		return deserializeStandaloneClockRate(&params.StandaloneRate, raw[24:28])
	},
}

// K8MixerState is the state of mixer of Konnekt 8.
type K8MixerState struct {
	Mixer   ShellMixerState
	Enabled bool
}

// K8MonitorSrcMap is the map of monitor sources of Konnekt 8.
var K8MonitorSrcMap = MonitorSrcMap{
	MonitorSrcStream,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcAnalog,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcNone,
	MonitorSrcSpdif,
}

// K8MixerStateSegment is the segment for mixer state of Konnekt 8.
var K8MixerStateSegment = mixerStateSpec(
	0x0074,
	shellMixerStateSize+32,
	func(p *K8MixerState) *ShellMixerState { return &p.Mixer },
	&K8MonitorSrcMap,
	func(p *K8MixerState, raw []byte) error {
		serializeBool(p.Enabled, raw[340:344])
		return nil
	},
	func(p *K8MixerState, raw []byte) error {
		p.Enabled = deserializeBool(raw[340:344])
		return nil
	},
)

// K8HwState is the state of hardware of Konnekt 8.
type K8HwState struct {
	HwState         ShellHwState
	AuxInputEnabled bool
}

// K8HwStateSegment is the segment for hardware state of Konnekt 8.
var K8HwStateSegment = SegmentSpec[K8HwState]{
	Name:       "hardware-state",
	Offset:     0x100c,
	Size:       shellHwStateSize,
	NotifyFlag: SHELL_HW_STATE_NOTIFY_FLAG,
	Serialize: func(params *K8HwState, raw []byte) error {
		if err := serializeHwState(&params.HwState, raw); err != nil {
			return err
		}
		serializeBool(params.AuxInputEnabled, raw[8:12])

		return nil
	},
	Deserialize: func(params *K8HwState, raw []byte) error {
		if err := deserializeHwState(&params.HwState, raw); err != nil {
			return err
		}
		params.AuxInputEnabled = deserializeBool(raw[8:12])

		return nil
	},
}

// K8MixerMeterSpec is the number of metered inputs of Konnekt 8.
var K8MixerMeterSpec = MixerMeterSpec{AnalogInputCount: 2, DigitalInputCount: 2}

// K8MixerMeterSegment is the segment for mixer meter of Konnekt 8. It follows the layout of
// Konnekt 24d rather than overlapping the hardware state.
var K8MixerMeterSegment = mixerMeterSpec(0x105c, K8MixerMeterSpec)
