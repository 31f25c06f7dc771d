package dice

import "fmt"

// Notification flags of Desktop Konnekt 6. The unit has its own layout, so they differ from
// the rest of the series.
const (
	DESKTOP_HW_STATE_NOTIFY_FLAG    uint32 = 0x00010000
	DESKTOP_CONFIG_NOTIFY_FLAG      uint32 = 0x00020000
	DESKTOP_MIXER_STATE_NOTIFY_FLAG uint32 = 0x00040000
	DESKTOP_PANEL_NOTIFY_FLAG       uint32 = 0x00080000
)

// MeterTarget is the point in the signal path measured by the meters on the panel.
type MeterTarget int

const (
	MeterTargetInput MeterTarget = iota
	MeterTargetPre
	MeterTargetPost
)

var meterTargetNames = []string{"Input", "Pre", "Post"}

func (t MeterTarget) String() string { return enumString(meterTargetNames, int(t)) }

// MeterTargets is the table of meter targets in the order of their wire values.
var MeterTargets = []MeterTarget{MeterTargetInput, MeterTargetPre, MeterTargetPost}

// InputScene is the assignment of the two analog inputs.
type InputScene int

const (
	InputSceneMicInst InputScene = iota
	InputSceneDualInst
	InputSceneStereoIn
)

var inputSceneNames = []string{"Mic-inst", "Dual-inst", "Stereo-in"}

func (s InputScene) String() string { return enumString(inputSceneNames, int(s)) }

// InputScenes is the table of input scenes in the order of their wire values.
var InputScenes = []InputScene{InputSceneMicInst, InputSceneDualInst, InputSceneStereoIn}

// DesktopHwState is the state of hardware of Desktop Konnekt 6. The dim volume is between
// -1000 and -60 (-94.0 to -6.0 dB). The boost raises the first microphone input by 12 dB.
type DesktopHwState struct {
	MeterTarget           MeterTarget
	MixerOutputMonaural   bool
	KnobAssignToHp        bool
	MixerOutputDimEnabled bool
	MixerOutputDimVolume  int32
	InputScene            InputScene
	ReverbToMain          bool
	ReverbToHp            bool
	MasterKnobBacklight   bool
	Mic0Phantom           bool
	Mic0Boost             bool
}

const (
	desktopReverbToMainMask = 0x00000001
	desktopReverbToHpMask   = 0x00000002
)

// DesktopK6HwStateSegment is the segment for hardware state of Desktop Konnekt 6.
var DesktopK6HwStateSegment = SegmentSpec[DesktopHwState]{
	Name:       "hardware-state",
	Offset:     0x0008,
	Size:       144,
	NotifyFlag: DESKTOP_HW_STATE_NOTIFY_FLAG,
	Serialize: func(params *DesktopHwState, raw []byte) error {
		if err := serializePosition(MeterTargets, params.MeterTarget, raw[0:4], "meter target"); err != nil {
			return err
		}
		serializeBool(params.MixerOutputMonaural, raw[4:8])
		serializeBool(params.KnobAssignToHp, raw[8:12])
		serializeBool(params.MixerOutputDimEnabled, raw[12:16])
		serializeI32(params.MixerOutputDimVolume, raw[16:20])
		if err := serializePosition(InputScenes, params.InputScene, raw[20:24], "input scene"); err != nil {
			return err
		}

		var val uint32
		if params.ReverbToMain {
			val |= desktopReverbToMainMask
		}
		if params.ReverbToHp {
			val |= desktopReverbToHpMask
		}
		serializeU32(val, raw[28:32])

		serializeBool(params.MasterKnobBacklight, raw[32:36])
		serializeBool(params.Mic0Phantom, raw[52:56])
		serializeBool(params.Mic0Boost, raw[56:60])

		return nil
	},
	Deserialize: func(params *DesktopHwState, raw []byte) error {
		if err := deserializePosition(MeterTargets, &params.MeterTarget, raw[0:4], "meter target"); err != nil {
			return err
		}
		params.MixerOutputMonaural = deserializeBool(raw[4:8])
		params.KnobAssignToHp = deserializeBool(raw[8:12])
		params.MixerOutputDimEnabled = deserializeBool(raw[12:16])
		params.MixerOutputDimVolume = deserializeI32(raw[16:20])
		if err := deserializePosition(InputScenes, &params.InputScene, raw[20:24], "input scene"); err != nil {
			return err
		}

		val := deserializeU32(raw[28:32])
		params.ReverbToMain = val&desktopReverbToMainMask > 0
		params.ReverbToHp = val&desktopReverbToHpMask > 0

		params.MasterKnobBacklight = deserializeBool(raw[32:36])
		params.Mic0Phantom = deserializeBool(raw[52:56])
		params.Mic0Boost = deserializeBool(raw[56:60])

		return nil
	},
}

// DesktopConfig is the configuration of Desktop Konnekt 6.
type DesktopConfig struct {
	StandaloneRate StandaloneClockRate
}

// DesktopK6ConfigSegment is the segment for configuration of Desktop Konnekt 6.
var DesktopK6ConfigSegment = SegmentSpec[DesktopConfig]{
	Name:       "configuration",
	Offset:     0x0098,
	Size:       32,
	NotifyFlag: DESKTOP_CONFIG_NOTIFY_FLAG,
	Serialize: func(params *DesktopConfig, raw []byte) error {
		return serializeStandaloneClockRate(params.StandaloneRate, raw[4:8])
	},
	Deserialize: func(params *DesktopConfig, raw []byte) error {
		return deserializeStandaloneClockRate(&params.StandaloneRate, raw[4:8])
	},
}

// DesktopHpSrc is the source of the headphone output.
type DesktopHpSrc int

const (
	DesktopHpSrcStream23 DesktopHpSrc = iota
	DesktopHpSrcMixer01
)

var desktopHpSrcNames = []string{"Stream-3/4", "Mixer-out-1/2"}

func (s DesktopHpSrc) String() string { return enumString(desktopHpSrcNames, int(s)) }

// DesktopHpSrcs is the table of headphone sources.
var DesktopHpSrcs = []DesktopHpSrc{DesktopHpSrcStream23, DesktopHpSrcMixer01}

const (
	desktopHpSrcStream23Value = 0x05
	desktopHpSrcMixer01Value  = 0x0b
)

func serializeDesktopHpSrc(src DesktopHpSrc, raw []byte) error {
	switch src {
	case DesktopHpSrcStream23:
		serializeU32(desktopHpSrcStream23Value, raw)
	case DesktopHpSrcMixer01:
		serializeU32(desktopHpSrcMixer01Value, raw)
	default:
		return fmt.Errorf("headphone source %v is not supported: %w", src, ErrInvalidValue)
	}

	return nil
}

func deserializeDesktopHpSrc(src *DesktopHpSrc, raw []byte) error {
	switch val := deserializeU32(raw); val {
	case desktopHpSrcStream23Value:
		*src = DesktopHpSrcStream23
	case desktopHpSrcMixer01Value:
		*src = DesktopHpSrcMixer01
	default:
		return fmt.Errorf("unexpected value for headphone source: %#x: %w", val, ErrInvalidValue)
	}

	return nil
}

// DesktopMixerState is the state of mixer of Desktop Konnekt 6. Levels are between -1000 and
// 0 (-94.0 to 0.0 dB), pans between -50 and 50. Each input scene has its own set.
type DesktopMixerState struct {
	MicInstLevel  [2]int32
	MicInstPan    [2]int32
	MicInstSend   [2]int32
	DualInstLevel [2]int32
	DualInstPan   [2]int32
	DualInstSend  [2]int32
	StereoInLevel int32
	StereoInPan   int32
	StereoInSend  int32
	HpSrc         DesktopHpSrc
}

// DesktopK6MixerStateSegment is the segment for mixer state of Desktop Konnekt 6.
var DesktopK6MixerStateSegment = SegmentSpec[DesktopMixerState]{
	Name:       "mixer-state",
	Offset:     0x00b8,
	Size:       688,
	NotifyFlag: DESKTOP_MIXER_STATE_NOTIFY_FLAG,
	Serialize: func(params *DesktopMixerState, raw []byte) error {
		serializeI32(params.MicInstLevel[0], raw[12:16])
		serializeI32(params.MicInstPan[0], raw[16:20])
		serializeI32(params.MicInstSend[0], raw[20:24])
		serializeI32(params.MicInstLevel[1], raw[28:32])
		serializeI32(params.MicInstPan[1], raw[32:36])
		serializeI32(params.MicInstSend[1], raw[40:44])

		serializeI32(params.DualInstLevel[0], raw[228:232])
		serializeI32(params.DualInstPan[0], raw[232:236])
		serializeI32(params.DualInstSend[0], raw[240:244])
		serializeI32(params.DualInstLevel[1], raw[248:252])
		serializeI32(params.DualInstPan[1], raw[252:256])
		serializeI32(params.DualInstSend[1], raw[260:264])

		serializeI32(params.StereoInLevel, raw[444:448])
		serializeI32(params.StereoInPan, raw[448:452])
		serializeI32(params.StereoInSend, raw[452:456])

		return serializeDesktopHpSrc(params.HpSrc, raw[648:652])
	},
	Deserialize: func(params *DesktopMixerState, raw []byte) error {
		params.MicInstLevel[0] = deserializeI32(raw[12:16])
		params.MicInstPan[0] = deserializeI32(raw[16:20])
		params.MicInstSend[0] = deserializeI32(raw[20:24])
		params.MicInstLevel[1] = deserializeI32(raw[28:32])
		params.MicInstPan[1] = deserializeI32(raw[32:36])
		params.MicInstSend[1] = deserializeI32(raw[40:44])

		params.DualInstLevel[0] = deserializeI32(raw[228:232])
		params.DualInstPan[0] = deserializeI32(raw[232:236])
		params.DualInstSend[0] = deserializeI32(raw[240:244])
		params.DualInstLevel[1] = deserializeI32(raw[248:252])
		params.DualInstPan[1] = deserializeI32(raw[252:256])
		params.DualInstSend[1] = deserializeI32(raw[260:264])

		params.StereoInLevel = deserializeI32(raw[444:448])
		params.StereoInPan = deserializeI32(raw[448:452])
		params.StereoInSend = deserializeI32(raw[452:456])

		return deserializeDesktopHpSrc(&params.HpSrc, raw[648:652])
	},
}

// DesktopPanel is the state of the panel of Desktop Konnekt 6. Knob values change by user
// operation only. The main, phone and reverb knobs are between -1000 and 0, the mix knob
// between 0 and 1000.
type DesktopPanel struct {
	ButtonCount uint32
	MainKnob    int32
	PhoneKnob   int32
	MixKnob     uint32
	ReverbLedOn bool
	ReverbKnob  int32
	FirewireLed FireWireLedState
}

// DesktopK6PanelSegment is the segment for the panel of Desktop Konnekt 6.
var DesktopK6PanelSegment = SegmentSpec[DesktopPanel]{
	Name:       "hardware-panel",
	Offset:     0x2008,
	Size:       64,
	NotifyFlag: DESKTOP_PANEL_NOTIFY_FLAG,
	Serialize: func(params *DesktopPanel, raw []byte) error {
		serializeU32(params.ButtonCount, raw[0:4])
		serializeI32(params.MainKnob, raw[4:8])
		serializeI32(params.PhoneKnob, raw[8:12])
		serializeU32(params.MixKnob, raw[12:16])
		serializeBool(params.ReverbLedOn, raw[16:20])
		serializeI32(params.ReverbKnob, raw[24:28])

		return serializePosition(FireWireLedStates, params.FirewireLed, raw[36:40], "FireWire LED state")
	},
	Deserialize: func(params *DesktopPanel, raw []byte) error {
		params.ButtonCount = deserializeU32(raw[0:4])
		params.MainKnob = deserializeI32(raw[4:8])
		params.PhoneKnob = deserializeI32(raw[8:12])
		params.MixKnob = deserializeU32(raw[12:16])
		params.ReverbLedOn = deserializeBool(raw[16:20])
		params.ReverbKnob = deserializeI32(raw[24:28])

		return deserializePosition(FireWireLedStates, &params.FirewireLed, raw[36:40], "FireWire LED state")
	},
}

// DesktopMeter is the levels measured by Desktop Konnekt 6.
type DesktopMeter struct {
	AnalogInputs [2]int32
	MixerOutputs [2]int32
	StreamInputs [2]int32
}

// DesktopK6MeterSegment is the segment for meters of Desktop Konnekt 6.
var DesktopK6MeterSegment = SegmentSpec[DesktopMeter]{
	Name:   "hardware-meter",
	Offset: 0x20e4,
	Size:   92,
	Deserialize: func(params *DesktopMeter, raw []byte) error {
		for i := range 2 {
			params.AnalogInputs[i] = deserializeI32(raw[i*4 : i*4+4])
			params.MixerOutputs[i] = deserializeI32(raw[40+i*4 : 44+i*4])
			params.StreamInputs[i] = deserializeI32(raw[48+i*4 : 52+i*4])
		}

		return nil
	},
}
