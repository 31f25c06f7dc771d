package dice

import "fmt"

// ChStripSrcType is the type of source the channel strip effect is tuned for.
type ChStripSrcType int

const (
	ChStripFemaleVocal ChStripSrcType = iota
	ChStripMaleVocal
	ChStripGuitar
	ChStripPiano
	ChStripSpeak
	ChStripChoir
	ChStripHorns
	ChStripBass
	ChStripKick
	ChStripSnare
	ChStripMixRock
	ChStripMixSoft
	ChStripPercussion
	ChStripKit
	ChStripMixAcoustic
	ChStripMixPurist
	ChStripHouse
	ChStripTrance
	ChStripChill
	ChStripHipHop
	ChStripDrumAndBass
	ChStripElectroTechno
)

var chStripSrcTypeNames = []string{
	"Female-vocal",
	"Male-vocal",
	"Guitar",
	"Piano",
	"Speak",
	"Choir",
	"Horns",
	"Bass",
	"Kick",
	"Snare",
	"Mix-rock",
	"Mix-soft",
	"Percussion",
	"Kit",
	"Mix-acoustic",
	"Mix-purist",
	"House",
	"Trance",
	"Chill",
	"Hip-hop",
	"Drum'n'bass",
	"Electro-techno",
}

func (t ChStripSrcType) String() string { return enumString(chStripSrcTypeNames, int(t)) }

// ChStripSrcTypes is the table of source types.
var ChStripSrcTypes = []ChStripSrcType{
	ChStripFemaleVocal,
	ChStripMaleVocal,
	ChStripGuitar,
	ChStripPiano,
	ChStripSpeak,
	ChStripChoir,
	ChStripHorns,
	ChStripBass,
	ChStripKick,
	ChStripSnare,
	ChStripMixRock,
	ChStripMixSoft,
	ChStripPercussion,
	ChStripKit,
	ChStripMixAcoustic,
	ChStripMixPurist,
	ChStripHouse,
	ChStripTrance,
	ChStripChill,
	ChStripHipHop,
	ChStripDrumAndBass,
	ChStripElectroTechno,
}

const (
	chStripStateSize = 144
	chStripMeterSize = 28
)

// CompState is the state of the compressor, with three bands for ctl and level.
type CompState struct {
	InputGain       uint32
	MakeUpGain      uint32
	FullBandEnabled bool
	Ctl             [3]uint32
	Level           [3]uint32
}

// DeesserState is the state of the deesser.
type DeesserState struct {
	Ratio  uint32
	Bypass bool
}

// EqState is the state of one band of the equalizer.
type EqState struct {
	Enabled   bool
	Bandwidth uint32
	Gain      uint32
	Freq      uint32
}

// LimitterState is the state of the limitter.
type LimitterState struct {
	Threshold uint32
}

// ChStripState is the state of one channel strip effect.
type ChStripState struct {
	SrcType        ChStripSrcType
	Comp           CompState
	Deesser        DeesserState
	Eq             [4]EqState
	EqBypass       bool
	Limitter       LimitterState
	LimitterBypass bool
	Bypass         bool
}

// ChStripStateSegmentSize returns the size of a segment holding count states.
func ChStripStateSegmentSize(count int) int {
	return ((count+1)/2)*4 + count*chStripStateSize
}

func chStripStatePos(i int) int {
	return ((i+1)/2)*4 + i*chStripStateSize
}

func serializeChStripStates(states []ChStripState, raw []byte) error {
	if len(raw) < ChStripStateSegmentSize(len(states)) {
		return fmt.Errorf("insufficient buffer size %d for %d channel strip states", len(raw), len(states))
	}

	for i := range states {
		s := &states[i]
		pos := chStripStatePos(i)
		r := raw[pos : pos+chStripStateSize]

		serializeU32(s.Comp.InputGain, r[0:4])
		if err := serializePosition(ChStripSrcTypes, s.SrcType, r[4:8], "channel strip source type"); err != nil {
			return err
		}
		serializeBool(s.Comp.FullBandEnabled, r[8:12])
		serializeU32(s.Deesser.Ratio, r[12:16])
		serializeBool(s.Deesser.Bypass, r[16:20])
		for j := range s.Eq {
			// Each band takes 20 bytes with a blank quadlet before the frequency.
			p := 20 + j*20
			serializeBool(s.Eq[j].Enabled, r[p:p+4])
			serializeU32(s.Eq[j].Bandwidth, r[p+4:p+8])
			serializeU32(s.Eq[j].Gain, r[p+8:p+12])
			serializeU32(s.Eq[j].Freq, r[p+16:p+20])
		}
		serializeBool(s.EqBypass, r[100:104])
		for j := range s.Comp.Ctl {
			p := 104 + j*8
			serializeU32(s.Comp.Ctl[j], r[p:p+4])
			serializeU32(s.Comp.Level[j], r[p+4:p+8])
		}
		serializeBool(s.LimitterBypass, r[128:132])
		serializeU32(s.Comp.MakeUpGain, r[132:136])
		serializeU32(s.Limitter.Threshold, r[136:140])
		serializeBool(s.Bypass, r[140:144])
	}

	return nil
}

func deserializeChStripStates(states []ChStripState, raw []byte) error {
	if len(raw) < ChStripStateSegmentSize(len(states)) {
		return fmt.Errorf("insufficient buffer size %d for %d channel strip states", len(raw), len(states))
	}

	for i := range states {
		s := &states[i]
		pos := chStripStatePos(i)
		r := raw[pos : pos+chStripStateSize]

		s.Comp.InputGain = deserializeU32(r[0:4])
		if err := deserializePosition(ChStripSrcTypes, &s.SrcType, r[4:8], "channel strip source type"); err != nil {
			return err
		}
		s.Comp.FullBandEnabled = deserializeBool(r[8:12])
		s.Deesser.Ratio = deserializeU32(r[12:16])
		s.Deesser.Bypass = deserializeBool(r[16:20])
		for j := range s.Eq {
			p := 20 + j*20
			s.Eq[j].Enabled = deserializeBool(r[p : p+4])
			s.Eq[j].Bandwidth = deserializeU32(r[p+4 : p+8])
			s.Eq[j].Gain = deserializeU32(r[p+8 : p+12])
			s.Eq[j].Freq = deserializeU32(r[p+16 : p+20])
		}
		s.EqBypass = deserializeBool(r[100:104])
		for j := range s.Comp.Ctl {
			p := 104 + j*8
			s.Comp.Ctl[j] = deserializeU32(r[p : p+4])
			s.Comp.Level[j] = deserializeU32(r[p+4 : p+8])
		}
		s.LimitterBypass = deserializeBool(r[128:132])
		s.Comp.MakeUpGain = deserializeU32(r[132:136])
		s.Limitter.Threshold = deserializeU32(r[136:140])
		s.Bypass = deserializeBool(r[140:144])
	}

	return nil
}

// ChStripMeter is the detected level of one channel strip effect.
type ChStripMeter struct {
	Input  int32
	Limit  int32
	Output int32
	Gains  [3]int32
}

// ChStripMeterSegmentSize returns the size of a segment holding count meters.
func ChStripMeterSegmentSize(count int) int {
	return ((count+1)/2)*4 + count*chStripMeterSize
}

func chStripMeterPos(i int) int {
	return ((i+1)/2)*4 + i*chStripMeterSize
}

func serializeChStripMeters(meters []ChStripMeter, raw []byte) error {
	if len(raw) < ChStripMeterSegmentSize(len(meters)) {
		return fmt.Errorf("insufficient buffer size %d for %d channel strip meters", len(raw), len(meters))
	}

	for i := range meters {
		m := &meters[i]
		pos := chStripMeterPos(i)
		r := raw[pos : pos+chStripMeterSize]

		serializeI32(m.Input, r[0:4])
		serializeI32(m.Limit, r[4:8])
		serializeI32(m.Output, r[8:12])
		// Gains are laid out in reverse order.
		serializeI32(m.Gains[2], r[12:16])
		serializeI32(m.Gains[1], r[16:20])
		serializeI32(m.Gains[0], r[20:24])
	}

	return nil
}

func deserializeChStripMeters(meters []ChStripMeter, raw []byte) error {
	if len(raw) < ChStripMeterSegmentSize(len(meters)) {
		return fmt.Errorf("insufficient buffer size %d for %d channel strip meters", len(raw), len(meters))
	}

	for i := range meters {
		m := &meters[i]
		pos := chStripMeterPos(i)
		r := raw[pos : pos+chStripMeterSize]

		m.Input = deserializeI32(r[0:4])
		m.Limit = deserializeI32(r[4:8])
		m.Output = deserializeI32(r[8:12])
		m.Gains[2] = deserializeI32(r[12:16])
		m.Gains[1] = deserializeI32(r[16:20])
		m.Gains[0] = deserializeI32(r[20:24])
	}

	return nil
}

// ChStripStates are the states of the channel strip effects of a unit.
type ChStripStates [ShellChStripCount]ChStripState

// ChStripMeters are the meters of the channel strip effects of a unit.
type ChStripMeters [ShellChStripCount]ChStripMeter

func chStripStatesSpec(offset int) SegmentSpec[ChStripStates] {
	return SegmentSpec[ChStripStates]{
		Name:       "channel-strip-state",
		Offset:     offset,
		Size:       ChStripStateSegmentSize(ShellChStripCount),
		NotifyFlag: SHELL_CH_STRIP_NOTIFY_FLAG,
		Serialize: func(params *ChStripStates, raw []byte) error {
			return serializeChStripStates(params[:], raw)
		},
		Deserialize: func(params *ChStripStates, raw []byte) error {
			return deserializeChStripStates(params[:], raw)
		},
	}
}

func chStripMetersSpec(offset int) SegmentSpec[ChStripMeters] {
	return SegmentSpec[ChStripMeters]{
		Name:   "channel-strip-meter",
		Offset: offset,
		Size:   ChStripMeterSegmentSize(ShellChStripCount),
		Deserialize: func(params *ChStripMeters, raw []byte) error {
			return deserializeChStripMeters(params[:], raw)
		},
	}
}

func reverbStateSpec(offset int) SegmentSpec[ReverbState] {
	return SegmentSpec[ReverbState]{
		Name:        "reverb-state",
		Offset:      offset,
		Size:        reverbStateSize,
		NotifyFlag:  SHELL_REVERB_NOTIFY_FLAG,
		Serialize:   serializeReverbState,
		Deserialize: deserializeReverbState,
	}
}

func reverbMeterSpec(offset int) SegmentSpec[ReverbMeter] {
	return SegmentSpec[ReverbMeter]{
		Name:        "reverb-meter",
		Offset:      offset,
		Size:        reverbMeterSize,
		Deserialize: deserializeReverbMeter,
	}
}
