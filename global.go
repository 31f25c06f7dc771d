package dice

import (
	"fmt"
	"slices"
	"strings"
)

// ClockRate is the nominal rate of the media clock. Values outside the defined set are kept
// as reserved.
type ClockRate uint8

const (
	ClockRate32000   ClockRate = 0x00
	ClockRate44100   ClockRate = 0x01
	ClockRate48000   ClockRate = 0x02
	ClockRate88200   ClockRate = 0x03
	ClockRate96000   ClockRate = 0x04
	ClockRate176400  ClockRate = 0x05
	ClockRate192000  ClockRate = 0x06
	ClockRateAnyLow  ClockRate = 0x07
	ClockRateAnyMid  ClockRate = 0x08
	ClockRateAnyHigh ClockRate = 0x09
	ClockRateNone    ClockRate = 0x0a
)

// IsReserved reports whether the rate is not defined by the protocol.
func (r ClockRate) IsReserved() bool {
	return r > ClockRateNone
}

// String returns a human-readable representation of the rate.
func (r ClockRate) String() string {
	switch r {
	case ClockRate32000:
		return "32000"
	case ClockRate44100:
		return "44100"
	case ClockRate48000:
		return "48000"
	case ClockRate88200:
		return "88200"
	case ClockRate96000:
		return "96000"
	case ClockRate176400:
		return "176400"
	case ClockRate192000:
		return "192000"
	case ClockRateAnyLow:
		return "any-low"
	case ClockRateAnyMid:
		return "any-mid"
	case ClockRateAnyHigh:
		return "any-high"
	case ClockRateNone:
		return "none"
	default:
		return fmt.Sprintf("reserved(%#02x)", uint8(r))
	}
}

// ClockSource is the signal source of the sampling clock. Values outside the defined set are
// kept as reserved.
type ClockSource uint8

const (
	ClockSourceAes1      ClockSource = 0x00
	ClockSourceAes2      ClockSource = 0x01
	ClockSourceAes3      ClockSource = 0x02
	ClockSourceAes4      ClockSource = 0x03
	ClockSourceAesAny    ClockSource = 0x04
	ClockSourceAdat      ClockSource = 0x05
	ClockSourceTdif      ClockSource = 0x06
	ClockSourceWordClock ClockSource = 0x07
	ClockSourceArx1      ClockSource = 0x08
	ClockSourceArx2      ClockSource = 0x09
	ClockSourceArx3      ClockSource = 0x0a
	ClockSourceArx4      ClockSource = 0x0b
	ClockSourceInternal  ClockSource = 0x0c
)

// IsReserved reports whether the source is not defined by the protocol.
func (s ClockSource) IsReserved() bool {
	return s > ClockSourceInternal
}

// String returns a human-readable representation of the source.
func (s ClockSource) String() string {
	switch s {
	case ClockSourceAes1:
		return "aes1"
	case ClockSourceAes2:
		return "aes2"
	case ClockSourceAes3:
		return "aes3"
	case ClockSourceAes4:
		return "aes4"
	case ClockSourceAesAny:
		return "aes-any"
	case ClockSourceAdat:
		return "adat"
	case ClockSourceTdif:
		return "tdif"
	case ClockSourceWordClock:
		return "word-clock"
	case ClockSourceArx1:
		return "arx1"
	case ClockSourceArx2:
		return "arx2"
	case ClockSourceArx3:
		return "arx3"
	case ClockSourceArx4:
		return "arx4"
	case ClockSourceInternal:
		return "internal"
	default:
		return fmt.Sprintf("reserved(%#02x)", uint8(s))
	}
}

// ClockConfig is the configuration of the media clock and the sampling clock.
type ClockConfig struct {
	Rate ClockRate
	Src  ClockSource
}

const (
	clockConfigSrcMask   = 0x000000ff
	clockConfigRateMask  = 0x0000ff00
	clockConfigRateShift = 8

	clockStatusSrcLocked = 0x00000001
)

func serializeClockConfig(config *ClockConfig, raw []byte) {
	val := (uint32(config.Rate) << clockConfigRateShift) & clockConfigRateMask
	val |= uint32(config.Src) & clockConfigSrcMask
	serializeU32(val, raw)
}

func deserializeClockConfig(config *ClockConfig, raw []byte) {
	val := deserializeU32(raw)
	config.Src = ClockSource(val & clockConfigSrcMask)
	config.Rate = ClockRate((val & clockConfigRateMask) >> clockConfigRateShift)
}

// ClockStatus is the status of the sampling clock.
type ClockStatus struct {
	SrcIsLocked bool
	Rate        ClockRate
}

func deserializeClockStatus(status *ClockStatus, raw []byte) {
	val := deserializeU32(raw)
	status.SrcIsLocked = val&clockStatusSrcLocked > 0
	status.Rate = ClockRate((val & clockConfigRateMask) >> clockConfigRateShift)
}

// ExternalSourceStates are the states of the external sources of the sampling clock. The
// internal oscillator is never listed.
type ExternalSourceStates struct {
	Sources []ClockSource
	// Locked changes are notified by NOTIFY_EXT_STATUS.
	Locked []bool
	// Slipped since the last read. Changes are not notified.
	Slipped []bool
}

// ClockSourceLabel is the name of a clock source reported by the unit.
type ClockSourceLabel struct {
	Source ClockSource
	Label  string
}

// GlobalParameters are the parameters in the global section.
type GlobalParameters struct {
	// Owner is the address of the node which receives notifications. It is managed by the
	// kernel driver.
	Owner              uint64
	LatestNotification uint32
	Nickname           string
	ClockConfig        ClockConfig
	Enable             bool
	ClockStatus        ClockStatus
	ExternalSources    ExternalSourceStates
	// CurrentRate is the detected rate of the sampling clock in Hz.
	CurrentRate       uint32
	Version           uint32
	AvailRates        []ClockRate
	AvailSources      []ClockSource
	ClockSourceLabels []ClockSourceLabel
}

// GlobalSectionMinSize is the size of the global section in the first version of the protocol.
const GlobalSectionMinSize = 96

// GlobalFluctuatedOffsets are the offsets in the global section which the unit changes without
// notification. The slipped bits of the extended status are such.
var GlobalFluctuatedOffsets = []int{88}

var clockCapsRateTable = []ClockRate{
	ClockRate32000,
	ClockRate44100,
	ClockRate48000,
	ClockRate88200,
	ClockRate96000,
	ClockRate176400,
	ClockRate192000,
	ClockRateAnyLow,
	ClockRateAnyMid,
	ClockRateAnyHigh,
	ClockRateNone,
}

var clockCapsSrcTable = []ClockSource{
	ClockSourceAes1,
	ClockSourceAes2,
	ClockSourceAes3,
	ClockSourceAes4,
	ClockSourceAesAny,
	ClockSourceAdat,
	ClockSourceTdif,
	ClockSourceWordClock,
	ClockSourceArx1,
	ClockSourceArx2,
	ClockSourceArx3,
	ClockSourceArx4,
	ClockSourceInternal,
}

// The bit position in the extended status is the index in this table.
var externalClockSourceTable = []ClockSource{
	ClockSourceAes1,
	ClockSourceAes2,
	ClockSourceAes3,
	ClockSourceAes4,
	ClockSourceAdat,
	ClockSourceTdif,
	ClockSourceArx1,
	ClockSourceArx2,
	ClockSourceArx3,
	ClockSourceArx4,
	ClockSourceWordClock,
}

// The labels of stream sources are always "unused" in the unit.
var clockSourceStreamLabels = []ClockSourceLabel{
	{ClockSourceArx1, "Stream-1"},
	{ClockSourceArx2, "Stream-2"},
	{ClockSourceArx3, "Stream-3"},
	{ClockSourceArx4, "Stream-4"},
}

func streamLabel(src ClockSource) (string, bool) {
	for _, entry := range clockSourceStreamLabels {
		if entry.Source == src {
			return entry.Label, true
		}
	}

	return "", false
}

func isUnused(label string) bool {
	return strings.EqualFold(label, "unused")
}

// GlobalSpec is the codec of the global section for a model.
type GlobalSpec struct {
	// ClockSourceLabelTable maps the position of labels in the label block to clock sources.
	// Some models report labels at unexpected positions.
	ClockSourceLabelTable []ClockSource
	// AvailableClockSourceOverride replaces the list of available sources, for models
	// reporting wrong capabilities.
	AvailableClockSourceOverride []ClockSource
}

// DefaultGlobalSpec returns the codec for models following the protocol as is.
func DefaultGlobalSpec() *GlobalSpec {
	return &GlobalSpec{
		ClockSourceLabelTable: slices.Clone(clockCapsSrcTable),
	}
}

// Name implements SectionCodec.
func (s *GlobalSpec) Name() string {
	return "global"
}

// MinSize implements SectionCodec.
func (s *GlobalSpec) MinSize() int {
	return GlobalSectionMinSize
}

// Serialize encodes the writable parameters: the nickname and the clock configuration. The
// owner field is managed by the kernel driver.
func (s *GlobalSpec) Serialize(params *GlobalParameters, raw []byte) error {
	if len(raw) < GlobalSectionMinSize {
		return fmt.Errorf("insufficient buffer size %d for global section", len(raw))
	}

	clear(raw[12:76])
	if err := serializeLabel(params.Nickname, raw[12:76]); err != nil {
		return err
	}

	serializeClockConfig(&params.ClockConfig, raw[76:80])

	return nil
}

// Deserialize decodes the section. Images larger than GlobalSectionMinSize carry the fields of
// the extended protocol; smaller ones get fixed capabilities.
func (s *GlobalSpec) Deserialize(params *GlobalParameters, raw []byte) error {
	if len(raw) < GlobalSectionMinSize {
		return fmt.Errorf("insufficient buffer size %d for global section", len(raw))
	}

	var version uint32
	var availRates []ClockRate
	var availSrcs []ClockSource
	var srcLabels []ClockSourceLabel

	if len(raw) > GlobalSectionMinSize {
		if len(raw) < 360 {
			return fmt.Errorf("insufficient buffer size %d for extended global section", len(raw))
		}

		labels := deserializeLabels(raw[104:360])
		for i, label := range labels {
			if i >= len(s.ClockSourceLabelTable) {
				break
			}
			srcLabels = append(srcLabels, ClockSourceLabel{s.ClockSourceLabelTable[i], label})
		}

		caps := deserializeU32(raw[100:104])
		rateBits := uint16(caps & 0x0000ffff)
		srcBits := uint16((caps & 0xffff0000) >> 16)

		for i, rate := range clockCapsRateTable {
			if rateBits&(1<<i) > 0 {
				availRates = append(availRates, rate)
			}
		}

		srcAvail := func(src ClockSource) bool {
			i := slices.Index(clockCapsSrcTable, src)
			return i >= 0 && srcBits&(1<<i) > 0
		}

		for i := range srcLabels {
			if !srcAvail(srcLabels[i].Source) {
				continue
			}
			if label, ok := streamLabel(srcLabels[i].Source); ok {
				srcLabels[i].Label = label
			}
		}

		if s.AvailableClockSourceOverride != nil {
			availSrcs = slices.Clone(s.AvailableClockSourceOverride)
		} else {
			for _, src := range clockCapsSrcTable {
				if !srcAvail(src) {
					continue
				}

				// Stream sources are always detectable, thus not selectable.
				if _, ok := streamLabel(src); ok {
					continue
				}

				if slices.ContainsFunc(srcLabels, func(l ClockSourceLabel) bool {
					return l.Source == src && !isUnused(l.Label)
				}) {
					availSrcs = append(availSrcs, src)
				}
			}
		}

		srcLabels = slices.DeleteFunc(srcLabels, func(l ClockSourceLabel) bool {
			if isUnused(l.Label) {
				return true
			}
			_, stream := streamLabel(l.Source)

			return !stream && !slices.Contains(availSrcs, l.Source)
		})

		version = deserializeU32(raw[96:100])
	} else {
		srcLabels = []ClockSourceLabel{
			{ClockSourceArx1, "Stream-1"},
			{ClockSourceInternal, "internal"},
		}
		availRates = []ClockRate{ClockRate44100, ClockRate48000}
		availSrcs = []ClockSource{ClockSourceInternal}
	}

	params.Owner = uint64(deserializeU32(raw[0:4]))<<32 | uint64(deserializeU32(raw[4:8]))
	params.LatestNotification = deserializeU32(raw[8:12])
	params.Nickname = deserializeLabel(raw[12:76])
	deserializeClockConfig(&params.ClockConfig, raw[76:80])
	params.Enable = deserializeBool(raw[80:84])
	deserializeClockStatus(&params.ClockStatus, raw[84:88])

	status := deserializeU32(raw[88:92])
	lockedBits := uint16(status & 0x0000ffff)
	slippedBits := uint16((status & 0xffff0000) >> 16)

	var states ExternalSourceStates
	for i, src := range externalClockSourceTable {
		if !slices.ContainsFunc(srcLabels, func(l ClockSourceLabel) bool { return l.Source == src }) {
			continue
		}

		states.Sources = append(states.Sources, src)
		states.Locked = append(states.Locked, lockedBits&(1<<i) > 0)
		states.Slipped = append(states.Slipped, slippedBits&(1<<i) > 0)
	}
	params.ExternalSources = states

	params.CurrentRate = deserializeU32(raw[92:96])
	params.Version = version
	params.AvailRates = availRates
	params.AvailSources = availSrcs
	params.ClockSourceLabels = srcLabels

	return nil
}
