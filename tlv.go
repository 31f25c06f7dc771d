package dice

import "fmt"

// Types of TLV data for dB information. Values are in 0.01 dB.
const (
	SNDRV_CTL_TLVT_DB_SCALE       = 1
	SNDRV_CTL_TLVT_DB_LINEAR      = 2
	SNDRV_CTL_TLVT_DB_MINMAX      = 4
	SNDRV_CTL_TLVT_DB_MINMAX_MUTE = 5

	tlvDbScaleMute = 0x00010000
	tlvDataLength  = 8
)

// DbScale maps integer values to dB by a fixed step from the minimum.
type DbScale struct {
	Min  int32
	Step uint16
	// Mute means the minimum value mutes the signal.
	Mute bool
}

// Encode returns the TLV data.
func (s DbScale) Encode() []uint32 {
	val := uint32(s.Step)
	if s.Mute {
		val |= tlvDbScaleMute
	}

	return []uint32{SNDRV_CTL_TLVT_DB_SCALE, tlvDataLength, uint32(s.Min), val}
}

// DecodeDbScale parses TLV data of DB_SCALE type.
func DecodeDbScale(raw []uint32) (DbScale, error) {
	if len(raw) < 4 {
		return DbScale{}, fmt.Errorf("insufficient length %d of TLV data for dB scale", len(raw))
	}

	if raw[0] != SNDRV_CTL_TLVT_DB_SCALE || raw[1] != tlvDataLength {
		return DbScale{}, fmt.Errorf("unexpected TLV header %d/%d for dB scale", raw[0], raw[1])
	}

	return DbScale{
		Min:  int32(raw[2]),
		Step: uint16(raw[3] & 0x0000ffff),
		Mute: raw[3]&tlvDbScaleMute > 0,
	}, nil
}

// DbInterval maps the range of integer values to dB between Min and Max.
type DbInterval struct {
	Min    int32
	Max    int32
	Linear bool
	// Mute means the minimum value mutes the signal.
	Mute bool
}

// Encode returns the TLV data.
func (i DbInterval) Encode() []uint32 {
	typ := uint32(SNDRV_CTL_TLVT_DB_MINMAX)
	switch {
	case i.Linear:
		typ = SNDRV_CTL_TLVT_DB_LINEAR
	case i.Mute:
		typ = SNDRV_CTL_TLVT_DB_MINMAX_MUTE
	}

	return []uint32{typ, tlvDataLength, uint32(i.Min), uint32(i.Max)}
}

// DecodeDbInterval parses TLV data of DB_LINEAR, DB_MINMAX or DB_MINMAX_MUTE type.
func DecodeDbInterval(raw []uint32) (DbInterval, error) {
	if len(raw) < 4 {
		return DbInterval{}, fmt.Errorf("insufficient length %d of TLV data for dB interval", len(raw))
	}

	if raw[1] != tlvDataLength {
		return DbInterval{}, fmt.Errorf("unexpected length %d of TLV data for dB interval", raw[1])
	}

	interval := DbInterval{Min: int32(raw[2]), Max: int32(raw[3])}

	switch raw[0] {
	case SNDRV_CTL_TLVT_DB_LINEAR:
		interval.Linear = true
	case SNDRV_CTL_TLVT_DB_MINMAX:
	case SNDRV_CTL_TLVT_DB_MINMAX_MUTE:
		interval.Mute = true
	default:
		return DbInterval{}, fmt.Errorf("unexpected TLV type %d for dB interval", raw[0])
	}

	return interval, nil
}
