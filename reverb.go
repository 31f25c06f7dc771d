package dice

// ReverbAlgorithm is the algorithm of the reverb effect.
type ReverbAlgorithm int

const (
	ReverbLive1 ReverbAlgorithm = iota
	ReverbHall
	ReverbPlate
	ReverbClub
	ReverbConcertHall
	ReverbCathedral
	ReverbChurch
	ReverbRoom
	ReverbSmallRoom
	ReverbBox
	ReverbAmbient
	ReverbLive2
	ReverbLive3
	ReverbSpring
)

var reverbAlgorithmNames = []string{
	"Live1",
	"Hall",
	"Plate",
	"Club",
	"Concert-hall",
	"Cathedral",
	"Church",
	"Room",
	"Small-room",
	"Box",
	"Ambient",
	"Live2",
	"Live3",
	"Spring",
}

func (a ReverbAlgorithm) String() string { return enumString(reverbAlgorithmNames, int(a)) }

// ReverbAlgorithms is the table of algorithms.
var ReverbAlgorithms = []ReverbAlgorithm{
	ReverbLive1,
	ReverbHall,
	ReverbPlate,
	ReverbClub,
	ReverbConcertHall,
	ReverbCathedral,
	ReverbChurch,
	ReverbRoom,
	ReverbSmallRoom,
	ReverbBox,
	ReverbAmbient,
	ReverbLive2,
	ReverbLive3,
	ReverbSpring,
}

const (
	reverbStateSize = 68
	reverbMeterSize = 24
)

// ReverbState is the state of the reverb effect.
type ReverbState struct {
	InputLevel      int32
	Bypass          bool
	KillWet         bool
	KillDry         bool
	OutputLevel     int32
	TimeDecay       int32
	TimePreDecay    int32
	ColorLow        int32
	ColorHigh       int32
	ColorHighFactor int32
	ModRate         int32
	ModDepth        int32
	LevelEarly      int32
	LevelReverb     int32
	LevelDry        int32
	Algorithm       ReverbAlgorithm
}

func serializeReverbState(state *ReverbState, raw []byte) error {
	_ = raw[reverbStateSize-1]

	serializeI32(state.InputLevel, raw[0:4])
	serializeBool(state.Bypass, raw[4:8])
	serializeBool(state.KillWet, raw[8:12])
	serializeBool(state.KillDry, raw[12:16])
	serializeI32(state.OutputLevel, raw[16:20])
	serializeI32(state.TimeDecay, raw[20:24])
	serializeI32(state.TimePreDecay, raw[24:28])
	// 28..32 is blank.
	serializeI32(state.ColorLow, raw[32:36])
	serializeI32(state.ColorHigh, raw[36:40])
	serializeI32(state.ColorHighFactor, raw[40:44])
	serializeI32(state.ModRate, raw[44:48])
	serializeI32(state.ModDepth, raw[48:52])
	serializeI32(state.LevelEarly, raw[52:56])
	serializeI32(state.LevelReverb, raw[56:60])
	serializeI32(state.LevelDry, raw[60:64])

	return serializePosition(ReverbAlgorithms, state.Algorithm, raw[64:68], "reverb algorithm")
}

func deserializeReverbState(state *ReverbState, raw []byte) error {
	_ = raw[reverbStateSize-1]

	state.InputLevel = deserializeI32(raw[0:4])
	state.Bypass = deserializeBool(raw[4:8])
	state.KillWet = deserializeBool(raw[8:12])
	state.KillDry = deserializeBool(raw[12:16])
	state.OutputLevel = deserializeI32(raw[16:20])
	state.TimeDecay = deserializeI32(raw[20:24])
	state.TimePreDecay = deserializeI32(raw[24:28])
	state.ColorLow = deserializeI32(raw[32:36])
	state.ColorHigh = deserializeI32(raw[36:40])
	state.ColorHighFactor = deserializeI32(raw[40:44])
	state.ModRate = deserializeI32(raw[44:48])
	state.ModDepth = deserializeI32(raw[48:52])
	state.LevelEarly = deserializeI32(raw[52:56])
	state.LevelReverb = deserializeI32(raw[56:60])
	state.LevelDry = deserializeI32(raw[60:64])

	return deserializePosition(ReverbAlgorithms, &state.Algorithm, raw[64:68], "reverb algorithm")
}

// ReverbMeter is the detected level of the reverb effect.
type ReverbMeter struct {
	Outputs [2]int32
	Inputs  [2]int32
}

func serializeReverbMeter(meter *ReverbMeter, raw []byte) error {
	_ = raw[reverbMeterSize-1]

	serializeI32(meter.Outputs[0], raw[0:4])
	serializeI32(meter.Outputs[1], raw[4:8])
	serializeI32(meter.Inputs[0], raw[8:12])
	serializeI32(meter.Inputs[1], raw[12:16])

	return nil
}

func deserializeReverbMeter(meter *ReverbMeter, raw []byte) error {
	_ = raw[reverbMeterSize-1]

	meter.Outputs[0] = deserializeI32(raw[0:4])
	meter.Outputs[1] = deserializeI32(raw[4:8])
	meter.Inputs[0] = deserializeI32(raw[8:12])
	meter.Inputs[1] = deserializeI32(raw[12:16])

	return nil
}
