package dice

import "fmt"

// IEC60958Channels is the maximum number of IEC 60958 channels in a stream format entry.
const IEC60958Channels = 32

const (
	streamFormatSectionMinSize = 8
	streamFormatEntryMinSize   = 272
	streamFormatIec60958Size   = 280
	streamNamesSize            = 256
)

// Iec60958Param is the mode of a channel for IEC 60958 bit stream.
type Iec60958Param struct {
	Cap    bool
	Enable bool
}

func serializeIec60958Params(params *[IEC60958Channels]Iec60958Param, raw []byte) {
	var caps, enables uint32
	for i, param := range params {
		if param.Cap {
			caps |= 1 << i
		}
		if param.Enable {
			enables |= 1 << i
		}
	}

	serializeU32(caps, raw[0:4])
	serializeU32(enables, raw[4:8])
}

func deserializeIec60958Params(params *[IEC60958Channels]Iec60958Param, raw []byte) {
	caps := deserializeU32(raw[0:4])
	enables := deserializeU32(raw[4:8])

	for i := range params {
		params[i].Cap = caps&(1<<i) > 0
		params[i].Enable = enables&(1<<i) > 0
	}
}

// TxStreamFormatEntry is the format of a stream transmitted by the unit.
type TxStreamFormatEntry struct {
	IsoChannel int8
	Pcm        uint32
	Midi       uint32
	// Speed is the IEEE 1394 speed code.
	Speed    uint32
	Labels   []string
	Iec60958 [IEC60958Channels]Iec60958Param
}

func serializeTxStreamEntry(entry *TxStreamFormatEntry, raw []byte) error {
	serializeI32(int32(entry.IsoChannel), raw[0:4])
	serializeU32(entry.Pcm, raw[4:8])
	serializeU32(entry.Midi, raw[8:12])
	serializeU32(entry.Speed, raw[12:16])

	if err := serializeLabels(entry.Labels, raw[16:16+streamNamesSize]); err != nil {
		return err
	}

	// Old firmware has no IEC 60958 fields.
	if len(raw) >= streamFormatIec60958Size {
		serializeIec60958Params(&entry.Iec60958, raw[272:280])
	}

	return nil
}

func deserializeTxStreamEntry(entry *TxStreamFormatEntry, raw []byte) {
	entry.IsoChannel = int8(deserializeI32(raw[0:4]))
	entry.Pcm = deserializeU32(raw[4:8])
	entry.Midi = deserializeU32(raw[8:12])
	entry.Speed = deserializeU32(raw[12:16])
	entry.Labels = deserializeLabels(raw[16 : 16+streamNamesSize])

	if len(raw) >= streamFormatIec60958Size {
		deserializeIec60958Params(&entry.Iec60958, raw[272:280])
	}
}

// RxStreamFormatEntry is the format of a stream received by the unit.
type RxStreamFormatEntry struct {
	IsoChannel int8
	// Start is the position of the first data channel in the stream.
	Start    uint32
	Pcm      uint32
	Midi     uint32
	Labels   []string
	Iec60958 [IEC60958Channels]Iec60958Param
}

func serializeRxStreamEntry(entry *RxStreamFormatEntry, raw []byte) error {
	serializeI32(int32(entry.IsoChannel), raw[0:4])
	serializeU32(entry.Start, raw[4:8])
	serializeU32(entry.Pcm, raw[8:12])
	serializeU32(entry.Midi, raw[12:16])

	if err := serializeLabels(entry.Labels, raw[16:16+streamNamesSize]); err != nil {
		return err
	}

	if len(raw) >= streamFormatIec60958Size {
		serializeIec60958Params(&entry.Iec60958, raw[272:280])
	}

	return nil
}

func deserializeRxStreamEntry(entry *RxStreamFormatEntry, raw []byte) {
	entry.IsoChannel = int8(deserializeI32(raw[0:4]))
	entry.Start = deserializeU32(raw[4:8])
	entry.Pcm = deserializeU32(raw[8:12])
	entry.Midi = deserializeU32(raw[12:16])
	entry.Labels = deserializeLabels(raw[16 : 16+streamNamesSize])

	if len(raw) >= streamFormatIec60958Size {
		deserializeIec60958Params(&entry.Iec60958, raw[272:280])
	}
}

// streamFormatLayout reads the number of entries and the size of an entry, both read-only, and
// checks the image holds all of them.
func streamFormatLayout(raw []byte) (count, size int, err error) {
	if len(raw) < streamFormatSectionMinSize {
		return 0, 0, fmt.Errorf("insufficient buffer size %d for stream format", len(raw))
	}

	count = int(deserializeU32(raw[0:4]))
	size = 4 * int(deserializeU32(raw[4:8]))

	if count > 0 && size < streamFormatEntryMinSize {
		return 0, 0, fmt.Errorf("the size of entry should be greater than %d, actually %d", streamFormatEntryMinSize, size)
	}

	expected := streamFormatSectionMinSize + size*count
	if len(raw) < expected {
		return 0, 0, fmt.Errorf("the size of buffer should be greater than %d, actually %d", expected, len(raw))
	}

	return count, size, nil
}

func serializeStreamFormat[E any](entries []E, raw []byte, encode func(*E, []byte) error) error {
	count, size, err := streamFormatLayout(raw)
	if err != nil {
		return err
	}

	if count != len(entries) {
		return fmt.Errorf("the count of entries should be %d, actually %d", count, len(entries))
	}

	for i := range entries {
		pos := streamFormatSectionMinSize + size*i
		if err := encode(&entries[i], raw[pos:pos+size]); err != nil {
			return fmt.Errorf("entry %d: %w", i, err)
		}
	}

	return nil
}

func deserializeStreamFormat[E any](raw []byte, decode func(*E, []byte)) ([]E, error) {
	count, size, err := streamFormatLayout(raw)
	if err != nil {
		return nil, err
	}

	entries := make([]E, count)
	for i := range entries {
		pos := streamFormatSectionMinSize + size*i
		decode(&entries[i], raw[pos:pos+size])
	}

	return entries, nil
}

// TxStreamFormatParameters are the formats of the streams transmitted by the unit.
type TxStreamFormatParameters struct {
	Entries []TxStreamFormatEntry
}

// TxStreamFormatSpec is the codec of the tx stream format section. The number and size of
// entries are fixed by the unit, so serialization works on a cached image.
type TxStreamFormatSpec struct{}

func (TxStreamFormatSpec) Name() string { return "tx-stream-format" }

func (TxStreamFormatSpec) MinSize() int { return streamFormatSectionMinSize }

func (TxStreamFormatSpec) Serialize(params *TxStreamFormatParameters, raw []byte) error {
	return serializeStreamFormat(params.Entries, raw, serializeTxStreamEntry)
}

func (TxStreamFormatSpec) Deserialize(params *TxStreamFormatParameters, raw []byte) error {
	entries, err := deserializeStreamFormat(raw, deserializeTxStreamEntry)
	if err != nil {
		return err
	}

	params.Entries = entries

	return nil
}

// RxStreamFormatParameters are the formats of the streams received by the unit.
type RxStreamFormatParameters struct {
	Entries []RxStreamFormatEntry
}

// RxStreamFormatSpec is the codec of the rx stream format section.
type RxStreamFormatSpec struct{}

func (RxStreamFormatSpec) Name() string { return "rx-stream-format" }

func (RxStreamFormatSpec) MinSize() int { return streamFormatSectionMinSize }

func (RxStreamFormatSpec) Serialize(params *RxStreamFormatParameters, raw []byte) error {
	return serializeStreamFormat(params.Entries, raw, serializeRxStreamEntry)
}

func (RxStreamFormatSpec) Deserialize(params *RxStreamFormatParameters, raw []byte) error {
	entries, err := deserializeStreamFormat(raw, deserializeRxStreamEntry)
	if err != nil {
		return err
	}

	params.Entries = entries

	return nil
}
