package dice

import (
	"fmt"
	"slices"
)

// Notification flags of segments in the shell of TC Konnekt series. 0x00200000 is for tuner
// and 0x00400000 is unidentified.
const (
	SHELL_KNOB_NOTIFY_FLAG     uint32 = 0x00010000
	SHELL_CONFIG_NOTIFY_FLAG   uint32 = 0x00020000
	SHELL_MIXER_NOTIFY_FLAG    uint32 = 0x00040000
	SHELL_REVERB_NOTIFY_FLAG   uint32 = 0x00080000
	SHELL_CH_STRIP_NOTIFY_FLAG uint32 = 0x00100000
	SHELL_HW_STATE_NOTIFY_FLAG uint32 = 0x01000000
)

const (
	// ShellChStripCount is the number of channel strip effects.
	ShellChStripCount = 2
	// ShellAnalogJackStateCount is the number of analog inputs with jack sense.
	ShellAnalogJackStateCount = 2

	shellKnobSegmentSize     = 36
	shellHwStateSize         = 28
	shellMonitorSrcPairSize  = 28
	shellMixerMonitorSrcNum  = 10
	shellMixerStateSize      = shellMonitorSrcPairSize*shellMixerMonitorSrcNum + 36
	shellMixerMeterSize      = 0x5c
	shellReverbReturnSize    = 12
	shellOptIfaceConfigSize  = 12
	tcKonnektMidiSenderSize  = 36
	shellMonitorSrcParamSize = 12
)

// enumString returns the label of an enumerated value.
func enumString(names []string, val int) string {
	if val >= 0 && val < len(names) {
		return names[val]
	}

	return fmt.Sprintf("unknown(%d)", val)
}

// FireWireLedState is the state of the FireWire LED.
type FireWireLedState int

const (
	FireWireLedOff FireWireLedState = iota
	FireWireLedOn
	FireWireLedBlinkFast
	FireWireLedBlinkSlow
)

var fireWireLedStateNames = []string{"Off", "On", "Blink-fast", "Blink-slow"}

func (s FireWireLedState) String() string { return enumString(fireWireLedStateNames, int(s)) }

// FireWireLedStates is the table of LED states in the order of their wire values.
var FireWireLedStates = []FireWireLedState{
	FireWireLedOff,
	FireWireLedOn,
	FireWireLedBlinkSlow,
	FireWireLedBlinkFast,
}

// StandaloneClockRate is the rate of the sampling clock when the unit runs without host.
type StandaloneClockRate int

const (
	StandaloneClockRate44100 StandaloneClockRate = iota
	StandaloneClockRate48000
	StandaloneClockRate88200
	StandaloneClockRate96000
)

var standaloneClockRateNames = []string{"44100", "48000", "88200", "96000"}

func (r StandaloneClockRate) String() string { return enumString(standaloneClockRateNames, int(r)) }

// StandaloneClockRates is the table of standalone rates.
var StandaloneClockRates = []StandaloneClockRate{
	StandaloneClockRate44100,
	StandaloneClockRate48000,
	StandaloneClockRate88200,
	StandaloneClockRate96000,
}

// The wire value is the position in the table plus one.
func serializeStandaloneClockRate(rate StandaloneClockRate, raw []byte) error {
	i := slices.Index(StandaloneClockRates, rate)
	if i < 0 {
		return fmt.Errorf("standalone clock rate %v is not supported: %w", rate, ErrInvalidValue)
	}

	serializeU32(uint32(i+1), raw)

	return nil
}

func deserializeStandaloneClockRate(rate *StandaloneClockRate, raw []byte) error {
	val := deserializeU32(raw)
	if val < 1 || int(val) > len(StandaloneClockRates) {
		return fmt.Errorf("unexpected value for standalone clock rate: %d: %w", val, ErrInvalidValue)
	}

	*rate = StandaloneClockRates[val-1]

	return nil
}

// MidiMsgParams are the channel and control code of a MIDI message.
type MidiMsgParams struct {
	Ch uint8
	Cc uint8
}

// MidiSender configures MIDI messages generated by the knob.
type MidiSender struct {
	// Normal is sent when the knob is turned.
	Normal MidiMsgParams
	// Pushed is sent when the knob is turned while pushed.
	Pushed       MidiMsgParams
	SendToPort   bool
	SendToStream bool
}

func serializeMidiSender(sender *MidiSender, raw []byte) {
	_ = raw[tcKonnektMidiSenderSize-1]

	serializeU8(sender.Normal.Ch, raw[0:4])
	serializeU8(sender.Normal.Cc, raw[4:8])
	serializeU8(sender.Pushed.Ch, raw[12:16])
	serializeU8(sender.Pushed.Cc, raw[16:20])
	serializeBool(sender.SendToPort, raw[24:28])
	serializeBool(sender.SendToStream, raw[28:32])
}

func deserializeMidiSender(sender *MidiSender, raw []byte) {
	_ = raw[tcKonnektMidiSenderSize-1]

	sender.Normal.Ch = deserializeU8(raw[0:4])
	sender.Normal.Cc = deserializeU8(raw[4:8])
	sender.Pushed.Ch = deserializeU8(raw[12:16])
	sender.Pushed.Cc = deserializeU8(raw[16:20])
	sender.SendToPort = deserializeBool(raw[24:28])
	sender.SendToStream = deserializeBool(raw[28:32])
}

// LoadedProgram is the program loaded by the unit.
type LoadedProgram int

const (
	LoadedProgram0 LoadedProgram = iota
	LoadedProgram1
	LoadedProgram2
)

var loadedProgramNames = []string{"P1", "P2", "P3"}

func (p LoadedProgram) String() string { return enumString(loadedProgramNames, int(p)) }

// LoadedPrograms is the table of programs.
var LoadedPrograms = []LoadedProgram{LoadedProgram0, LoadedProgram1, LoadedProgram2}

// ShellAnalogJackState is the state of jack sense for an analog input.
type ShellAnalogJackState int

const (
	ShellAnalogJackFrontSelected ShellAnalogJackState = iota
	ShellAnalogJackFrontInserted
	ShellAnalogJackFrontInsertedAttenuated
	ShellAnalogJackRearSelected
	ShellAnalogJackRearInserted
)

var shellAnalogJackStateNames = []string{
	"Front-selected",
	"Front-inserted",
	"Front-inserted-attenuated",
	"Rear-selected",
	"Rear-inserted",
}

func (s ShellAnalogJackState) String() string { return enumString(shellAnalogJackStateNames, int(s)) }

// ShellAnalogJackStates is the table of jack states.
var ShellAnalogJackStates = []ShellAnalogJackState{
	ShellAnalogJackFrontSelected,
	ShellAnalogJackFrontInserted,
	ShellAnalogJackFrontInsertedAttenuated,
	ShellAnalogJackRearSelected,
	ShellAnalogJackRearInserted,
}

// Wire values of jack states, in the order of ShellAnalogJackStates.
var shellAnalogJackStateValues = []uint32{0x00, 0x05, 0x06, 0x07, 0x08}

func serializeAnalogJackState(state ShellAnalogJackState, raw []byte) error {
	i := slices.Index(ShellAnalogJackStates, state)
	if i < 0 {
		return fmt.Errorf("analog jack state %v is not supported: %w", state, ErrInvalidValue)
	}

	serializeU32(shellAnalogJackStateValues[i], raw)

	return nil
}

func deserializeAnalogJackState(state *ShellAnalogJackState, raw []byte) error {
	val := deserializeU32(raw)

	i := slices.Index(shellAnalogJackStateValues, val&0xff)
	if i < 0 {
		return fmt.Errorf("invalid value of analog jack state: %d: %w", val, ErrInvalidValue)
	}

	*state = ShellAnalogJackStates[i]

	return nil
}

// ShellHwState is the state of hardware.
type ShellHwState struct {
	AnalogJackStates [ShellAnalogJackStateCount]ShellAnalogJackState
	FirewireLed      FireWireLedState
}

func serializeHwState(state *ShellHwState, raw []byte) error {
	_ = raw[shellHwStateSize-1]

	if err := serializeAnalogJackState(state.AnalogJackStates[0], raw[0:4]); err != nil {
		return err
	}
	if err := serializeAnalogJackState(state.AnalogJackStates[1], raw[4:8]); err != nil {
		return err
	}

	return serializePosition(FireWireLedStates, state.FirewireLed, raw[20:24], "FireWire LED state")
}

func deserializeHwState(state *ShellHwState, raw []byte) error {
	_ = raw[shellHwStateSize-1]

	if err := deserializeAnalogJackState(&state.AnalogJackStates[0], raw[0:4]); err != nil {
		return err
	}
	if err := deserializeAnalogJackState(&state.AnalogJackStates[1], raw[4:8]); err != nil {
		return err
	}

	return deserializePosition(FireWireLedStates, &state.FirewireLed, raw[20:24], "FireWire LED state")
}

// MonitorSrcParam are the parameters of one channel of a monitor source.
type MonitorSrcParam struct {
	// GainToMixer is -1000..0 for -90.0..0.0 dB.
	GainToMixer int32
	// PanToMixer is -50..50.
	PanToMixer int32
	// GainToSend is -1000..0 for -90.0..0.0 dB.
	GainToSend int32
}

func serializeMonitorSrcParam(param *MonitorSrcParam, raw []byte) {
	_ = raw[shellMonitorSrcParamSize-1]

	serializeI32(param.GainToMixer, raw[0:4])
	serializeI32(param.PanToMixer, raw[4:8])
	serializeI32(param.GainToSend, raw[8:12])
}

func deserializeMonitorSrcParam(param *MonitorSrcParam, raw []byte) {
	_ = raw[shellMonitorSrcParamSize-1]

	param.GainToMixer = deserializeI32(raw[0:4])
	param.PanToMixer = deserializeI32(raw[4:8])
	param.GainToSend = deserializeI32(raw[8:12])
}

// ShellMonitorSrcPair is a stereo pair of monitor sources.
type ShellMonitorSrcPair struct {
	StereoLink bool
	// Params for left and right channels.
	Params [2]MonitorSrcParam
}

func serializeMonitorSrcPair(pair *ShellMonitorSrcPair, raw []byte) {
	_ = raw[shellMonitorSrcPairSize-1]

	serializeBool(pair.StereoLink, raw[0:4])
	serializeMonitorSrcParam(&pair.Params[0], raw[4:16])
	serializeMonitorSrcParam(&pair.Params[1], raw[16:28])
}

func deserializeMonitorSrcPair(pair *ShellMonitorSrcPair, raw []byte) {
	_ = raw[shellMonitorSrcPairSize-1]

	pair.StereoLink = deserializeBool(raw[0:4])
	deserializeMonitorSrcParam(&pair.Params[0], raw[4:16])
	deserializeMonitorSrcParam(&pair.Params[1], raw[16:28])
}

// ShellMonitorSrcMute are the mutes of monitor sources, one per channel.
type ShellMonitorSrcMute struct {
	Stream  bool
	Analog  []bool
	Digital []bool
}

// ShellMixerState is the state of the mixer.
type ShellMixerState struct {
	Stream          ShellMonitorSrcPair
	Analog          []ShellMonitorSrcPair
	Digital         []ShellMonitorSrcPair
	Mutes           ShellMonitorSrcMute
	OutputVolume    int32
	OutputDimEnable bool
	OutputDimVolume int32
}

// MonitorSrcType is the type of a slot for monitor source in the mixer.
type MonitorSrcType int

const (
	MonitorSrcNone MonitorSrcType = iota
	MonitorSrcStream
	MonitorSrcAnalog
	MonitorSrcSpdif
	MonitorSrcAdat
	MonitorSrcAdatSpdif
)

func (t MonitorSrcType) isDigital() bool {
	return t == MonitorSrcSpdif || t == MonitorSrcAdat || t == MonitorSrcAdatSpdif
}

// MonitorSrcMap assigns the slots of monitor sources in the mixer state.
type MonitorSrcMap [shellMixerMonitorSrcNum]MonitorSrcType

// AnalogPairCount returns the number of analog input pairs.
func (m *MonitorSrcMap) AnalogPairCount() int {
	return len(m.slots(func(t MonitorSrcType) bool { return t == MonitorSrcAnalog }))
}

// DigitalPairCount returns the number of digital input pairs.
func (m *MonitorSrcMap) DigitalPairCount() int {
	return len(m.slots(MonitorSrcType.isDigital))
}

func (m *MonitorSrcMap) slots(filter func(MonitorSrcType) bool) []int {
	var slots []int
	for i, t := range m {
		if filter(t) {
			slots = append(slots, i)
		}
	}

	return slots
}

// NewMixerState returns a zeroed state sized for the map.
func (m *MonitorSrcMap) NewMixerState() ShellMixerState {
	analog := m.AnalogPairCount()
	digital := m.DigitalPairCount()

	return ShellMixerState{
		Analog:  make([]ShellMonitorSrcPair, analog),
		Digital: make([]ShellMonitorSrcPair, digital),
		Mutes: ShellMonitorSrcMute{
			Analog:  make([]bool, analog*2),
			Digital: make([]bool, digital*2),
		},
	}
}

func (m *MonitorSrcMap) serializeMixerState(state *ShellMixerState, raw []byte) error {
	if len(raw) < shellMixerStateSize {
		return fmt.Errorf("insufficient buffer size %d for mixer state", len(raw))
	}

	serializeMonitorSrcPair(&state.Stream, raw[:shellMonitorSrcPairSize])

	for i, slot := range m.slots(func(t MonitorSrcType) bool { return t == MonitorSrcAnalog }) {
		if i >= len(state.Analog) {
			break
		}
		pos := slot * shellMonitorSrcPairSize
		serializeMonitorSrcPair(&state.Analog[i], raw[pos:pos+shellMonitorSrcPairSize])
	}

	for i, slot := range m.slots(MonitorSrcType.isDigital) {
		if i >= len(state.Digital) {
			break
		}
		pos := slot * shellMonitorSrcPairSize
		serializeMonitorSrcPair(&state.Digital[i], raw[pos:pos+shellMonitorSrcPairSize])
	}

	serializeBool(state.OutputDimEnable, raw[280:284])
	serializeI32(state.OutputVolume, raw[284:288])
	serializeI32(state.OutputDimVolume, raw[296:300])

	var mutes uint32
	if state.Mutes.Stream {
		mutes |= 0x00000001
	}
	for i, muted := range slices.Concat(state.Mutes.Analog, state.Mutes.Digital) {
		if muted {
			mutes |= 1 << (8 + i)
		}
	}
	serializeU32(mutes, raw[308:312])

	return nil
}

func (m *MonitorSrcMap) deserializeMixerState(state *ShellMixerState, raw []byte) error {
	if len(raw) < shellMixerStateSize {
		return fmt.Errorf("insufficient buffer size %d for mixer state", len(raw))
	}

	*state = m.NewMixerState()

	deserializeMonitorSrcPair(&state.Stream, raw[:shellMonitorSrcPairSize])

	for i, slot := range m.slots(func(t MonitorSrcType) bool { return t == MonitorSrcAnalog }) {
		pos := slot * shellMonitorSrcPairSize
		deserializeMonitorSrcPair(&state.Analog[i], raw[pos:pos+shellMonitorSrcPairSize])
	}

	for i, slot := range m.slots(MonitorSrcType.isDigital) {
		pos := slot * shellMonitorSrcPairSize
		deserializeMonitorSrcPair(&state.Digital[i], raw[pos:pos+shellMonitorSrcPairSize])
	}

	state.OutputDimEnable = deserializeBool(raw[280:284])
	state.OutputVolume = deserializeI32(raw[284:288])
	state.OutputDimVolume = deserializeI32(raw[296:300])

	mutes := deserializeU32(raw[308:312])
	state.Mutes.Stream = mutes&0x00000001 > 0
	for i := range state.Mutes.Analog {
		state.Mutes.Analog[i] = mutes&(1<<(8+i)) > 0
	}
	for i := range state.Mutes.Digital {
		state.Mutes.Digital[i] = mutes&(1<<(8+len(state.Mutes.Analog)+i)) > 0
	}

	return nil
}

// ShellReverbReturn configures the return of the reverb effect.
type ShellReverbReturn struct {
	// PluginMode delivers the return of the reverb by the rx stream.
	PluginMode bool
	ReturnGain int32
	ReturnMute bool
}

func serializeReverbReturn(state *ShellReverbReturn, raw []byte) {
	_ = raw[shellReverbReturnSize-1]

	serializeBool(state.PluginMode, raw[0:4])
	serializeI32(state.ReturnGain, raw[4:8])
	serializeBool(state.ReturnMute, raw[8:12])
}

func deserializeReverbReturn(state *ShellReverbReturn, raw []byte) {
	_ = raw[shellReverbReturnSize-1]

	state.PluginMode = deserializeBool(raw[0:4])
	state.ReturnGain = deserializeI32(raw[4:8])
	state.ReturnMute = deserializeBool(raw[8:12])
}

// ShellMixerMeter is the detected signal level in -1000..0 (-94.0..0 dB).
type ShellMixerMeter struct {
	StreamInputs  []int32
	AnalogInputs  []int32
	DigitalInputs []int32
	MainOutputs   []int32
}

const (
	shellMeterStreamInputCount    = 2
	shellMeterMainOutputCount     = 2
	shellMeterMaxStreamInputCount = 8
	shellMeterMaxAnalogInputCount = 4
	shellMeterMaxDigitalInputNum  = 8
)

// MixerMeterSpec is the number of metered inputs of a product.
type MixerMeterSpec struct {
	AnalogInputCount  int
	DigitalInputCount int
}

// NewMeter returns a zeroed meter sized for the product.
func (s MixerMeterSpec) NewMeter() ShellMixerMeter {
	return ShellMixerMeter{
		StreamInputs:  make([]int32, shellMeterStreamInputCount),
		AnalogInputs:  make([]int32, min(s.AnalogInputCount, shellMeterMaxAnalogInputCount)),
		DigitalInputs: make([]int32, min(s.DigitalInputCount, shellMeterMaxDigitalInputNum)),
		MainOutputs:   make([]int32, shellMeterMainOutputCount),
	}
}

// meterRegion is a fixed-width region of the meter image reserved for one category.
type meterRegion struct {
	offset int
	vals   []int32
}

func (s MixerMeterSpec) regions(meter *ShellMixerMeter) []meterRegion {
	return []meterRegion{
		{0, meter.StreamInputs},
		{shellMeterMaxStreamInputCount * 4, meter.AnalogInputs},
		{(shellMeterMaxStreamInputCount + shellMeterMaxAnalogInputCount) * 4, meter.DigitalInputs},
		{(shellMeterMaxStreamInputCount + shellMeterMaxAnalogInputCount + shellMeterMaxDigitalInputNum) * 4, meter.MainOutputs},
	}
}

func (s MixerMeterSpec) serializeMeter(meter *ShellMixerMeter, raw []byte) error {
	if len(raw) < shellMixerMeterSize {
		return fmt.Errorf("insufficient buffer size %d for mixer meter", len(raw))
	}

	for _, region := range s.regions(meter) {
		for i, v := range region.vals {
			pos := region.offset + i*4
			serializeI32(v, raw[pos:pos+4])
		}
	}

	return nil
}

func (s MixerMeterSpec) deserializeMeter(meter *ShellMixerMeter, raw []byte) error {
	if len(raw) < shellMixerMeterSize {
		return fmt.Errorf("insufficient buffer size %d for mixer meter", len(raw))
	}

	*meter = s.NewMeter()
	for _, region := range s.regions(meter) {
		for i := range region.vals {
			pos := region.offset + i*4
			region.vals[i] = deserializeI32(raw[pos : pos+4])
		}
	}

	return nil
}

// ShellPhysOutSrc is the source of a physical output.
type ShellPhysOutSrc int

const (
	ShellPhysOutSrcStream ShellPhysOutSrc = iota
	ShellPhysOutSrcAnalog01
	ShellPhysOutSrcMixerOut01
	ShellPhysOutSrcMixerSend01
)

var shellPhysOutSrcNames = []string{"Stream-input", "Analog-input-1/2", "Mixer-output-1/2", "Mixer-send-1/2"}

func (s ShellPhysOutSrc) String() string { return enumString(shellPhysOutSrcNames, int(s)) }

// ShellPhysOutSrcs is the table of sources of physical outputs.
var ShellPhysOutSrcs = []ShellPhysOutSrc{
	ShellPhysOutSrcStream,
	ShellPhysOutSrcAnalog01,
	ShellPhysOutSrcMixerOut01,
	ShellPhysOutSrcMixerSend01,
}

// ShellOptInputIfaceFormat is the format of the optical input interface.
type ShellOptInputIfaceFormat int

const (
	ShellOptInputAdat0to7 ShellOptInputIfaceFormat = iota
	ShellOptInputAdat0to5Spdif01
	ShellOptInputToslink01Spdif01
)

var shellOptInputIfaceFormatNames = []string{"ADAT-1:8", "ADAT-1:6+S/PDIF-1/2", "TOSLINK-1/2+S/PDIF-1/2"}

func (f ShellOptInputIfaceFormat) String() string {
	return enumString(shellOptInputIfaceFormatNames, int(f))
}

// ShellOptInputIfaceFormats is the table of optical input formats.
var ShellOptInputIfaceFormats = []ShellOptInputIfaceFormat{
	ShellOptInputAdat0to7,
	ShellOptInputAdat0to5Spdif01,
	ShellOptInputToslink01Spdif01,
}

// ShellOptOutputIfaceFormat is the format of the optical output interface.
type ShellOptOutputIfaceFormat int

const (
	ShellOptOutputAdat ShellOptOutputIfaceFormat = iota
	ShellOptOutputSpdif
)

var shellOptOutputIfaceFormatNames = []string{"ADAT", "S/PDIF"}

func (f ShellOptOutputIfaceFormat) String() string {
	return enumString(shellOptOutputIfaceFormatNames, int(f))
}

// ShellOptOutputIfaceFormats is the table of optical output formats.
var ShellOptOutputIfaceFormats = []ShellOptOutputIfaceFormat{ShellOptOutputAdat, ShellOptOutputSpdif}

// ShellOptIfaceConfig is the configuration of the optical interface.
type ShellOptIfaceConfig struct {
	InputFormat  ShellOptInputIfaceFormat
	OutputFormat ShellOptOutputIfaceFormat
	OutputSource ShellPhysOutSrc
}

func serializeOptIfaceConfig(config *ShellOptIfaceConfig, raw []byte) error {
	_ = raw[shellOptIfaceConfigSize-1]

	if err := serializePosition(ShellOptInputIfaceFormats, config.InputFormat, raw[0:4], "optical input format"); err != nil {
		return err
	}
	if err := serializePosition(ShellOptOutputIfaceFormats, config.OutputFormat, raw[4:8], "optical output format"); err != nil {
		return err
	}

	return serializePosition(ShellPhysOutSrcs, config.OutputSource, raw[8:12], "optical output source")
}

func deserializeOptIfaceConfig(config *ShellOptIfaceConfig, raw []byte) error {
	_ = raw[shellOptIfaceConfigSize-1]

	if err := deserializePosition(ShellOptInputIfaceFormats, &config.InputFormat, raw[0:4], "optical input format"); err != nil {
		return err
	}
	if err := deserializePosition(ShellOptOutputIfaceFormats, &config.OutputFormat, raw[4:8], "optical output format"); err != nil {
		return err
	}

	return deserializePosition(ShellPhysOutSrcs, &config.OutputSource, raw[8:12], "optical output source")
}

func serializeCoaxOutPairSrc(src ShellPhysOutSrc, raw []byte) error {
	return serializePosition(ShellPhysOutSrcs, src, raw, "coaxial output pair source")
}

func deserializeCoaxOutPairSrc(src *ShellPhysOutSrc, raw []byte) error {
	return deserializePosition(ShellPhysOutSrcs, src, raw, "coaxial output pair source")
}

// ShellStandaloneClockSource is the source of the sampling clock when the unit runs without
// host.
type ShellStandaloneClockSource int

const (
	ShellStandaloneClockOptical ShellStandaloneClockSource = iota
	ShellStandaloneClockCoaxial
	ShellStandaloneClockInternal
)

var shellStandaloneClockSourceNames = []string{"Optical", "Coaxial", "Internal"}

func (s ShellStandaloneClockSource) String() string {
	return enumString(shellStandaloneClockSourceNames, int(s))
}

// ShellMixerStreamSourcePair is a stereo pair of the rx stream available as mixer source.
type ShellMixerStreamSourcePair int

const (
	ShellMixerStream0_1 ShellMixerStreamSourcePair = iota
	ShellMixerStream2_3
	ShellMixerStream4_5
	ShellMixerStream6_7
	ShellMixerStream8_9
	ShellMixerStream10_11
	ShellMixerStream12_13
)

var shellMixerStreamSourcePairNames = []string{
	"Stream-1/2",
	"Stream-3/4",
	"Stream-5/6",
	"Stream-7/8",
	"Stream-9/10",
	"Stream-11/12",
	"Stream-13/14",
}

func (p ShellMixerStreamSourcePair) String() string {
	return enumString(shellMixerStreamSourcePairNames, int(p))
}

// ShellKnob0Target is the target of the first knob.
type ShellKnob0Target int

const (
	ShellKnob0Analog0 ShellKnob0Target = iota
	ShellKnob0Analog1
	ShellKnob0Analog2_3
	ShellKnob0Spdif0_1
	ShellKnob0ChannelStrip0
	ShellKnob0ChannelStrip1
	ShellKnob0Reverb
	ShellKnob0Mixer
	ShellKnob0Configurable
)

var shellKnob0TargetNames = []string{
	"Analog-1",
	"Analog-2",
	"Analog-3/4",
	"S/PDIF-1/2",
	"Channel-strip-1",
	"Channel-strip-2",
	"Reverb",
	"Mixer",
	"Configurable",
}

func (t ShellKnob0Target) String() string { return enumString(shellKnob0TargetNames, int(t)) }

// ShellKnob1Target is the target of the second knob.
type ShellKnob1Target int

const (
	ShellKnob1Digital0_1 ShellKnob1Target = iota
	ShellKnob1Digital2_3
	ShellKnob1Digital4_5
	ShellKnob1Digital6_7
	ShellKnob1Stream
	ShellKnob1Reverb
	ShellKnob1Mixer
	ShellKnob1TunerPitchTone
	ShellKnob1MidiSend
)

var shellKnob1TargetNames = []string{
	"Digital-1/2",
	"Digital-3/4",
	"Digital-5/6",
	"Digital-7/8",
	"Stream",
	"Reverb",
	"Mixer",
	"Tune-pitch/tone",
	"Midi-send",
}

func (t ShellKnob1Target) String() string { return enumString(shellKnob1TargetNames, int(t)) }

// ShellMixerStreamSourcePairs is the table of all stream pairs.
var ShellMixerStreamSourcePairs = []ShellMixerStreamSourcePair{
	ShellMixerStream0_1,
	ShellMixerStream2_3,
	ShellMixerStream4_5,
	ShellMixerStream6_7,
	ShellMixerStream8_9,
	ShellMixerStream10_11,
	ShellMixerStream12_13,
}

// ShellKnob1Targets is the table of all targets of the second knob.
var ShellKnob1Targets = []ShellKnob1Target{
	ShellKnob1Digital0_1,
	ShellKnob1Digital2_3,
	ShellKnob1Digital4_5,
	ShellKnob1Digital6_7,
	ShellKnob1Stream,
	ShellKnob1Reverb,
	ShellKnob1Mixer,
	ShellKnob1TunerPitchTone,
	ShellKnob1MidiSend,
}

func serializeLoadedProgram(prog LoadedProgram, raw []byte) error {
	return serializePosition(LoadedPrograms, prog, raw, "loaded program")
}

func deserializeLoadedProgram(prog *LoadedProgram, raw []byte) error {
	return deserializePosition(LoadedPrograms, prog, raw, "loaded program")
}

// mixerStateSpec builds the segment of mixer state for a product. extra handles the fields
// the product keeps after the common state.
func mixerStateSpec[T any](
	offset, size int,
	state func(*T) *ShellMixerState,
	srcMap *MonitorSrcMap,
	serializeExtra func(*T, []byte) error,
	deserializeExtra func(*T, []byte) error,
) SegmentSpec[T] {
	return SegmentSpec[T]{
		Name:       "mixer-state",
		Offset:     offset,
		Size:       size,
		NotifyFlag: SHELL_MIXER_NOTIFY_FLAG,
		Serialize: func(params *T, raw []byte) error {
			if err := srcMap.serializeMixerState(state(params), raw); err != nil {
				return err
			}
			return serializeExtra(params, raw)
		},
		Deserialize: func(params *T, raw []byte) error {
			if err := srcMap.deserializeMixerState(state(params), raw); err != nil {
				return err
			}
			return deserializeExtra(params, raw)
		},
	}
}

func mixerMeterSpec(offset int, spec MixerMeterSpec) SegmentSpec[ShellMixerMeter] {
	return SegmentSpec[ShellMixerMeter]{
		Name:        "mixer-meter",
		Offset:      offset,
		Size:        shellMixerMeterSize,
		Deserialize: spec.deserializeMeter,
	}
}
