package dice

import (
	"bytes"
	"fmt"
)

// GeneralSectionsSize is the size of the block describing the general sections.
const GeneralSectionsSize = 40

// Section is a block in the application space of DICE.
type Section struct {
	Offset int // The offset from BaseAddr in bytes.
	Size   int // The size in bytes.
}

// GeneralSections describes the location of the sections defined by the general protocol. It is
// read once when the unit is attached.
type GeneralSections struct {
	Global         Section
	TxStreamFormat Section
	RxStreamFormat Section
	ExtSync        Section
	Reserved       Section
}

func (s *GeneralSections) sections() []*Section {
	return []*Section{&s.Global, &s.TxStreamFormat, &s.RxStreamFormat, &s.ExtSync, &s.Reserved}
}

// Serialize encodes the table of sections. Offsets and sizes are expressed in quadlets.
func (s *GeneralSections) Serialize(raw []byte) error {
	if len(raw) < GeneralSectionsSize {
		return fmt.Errorf("insufficient buffer size %d for general sections", len(raw))
	}

	for i, section := range s.sections() {
		pos := i * 8
		serializeU32(uint32(section.Offset/4), raw[pos:pos+4])
		serializeU32(uint32(section.Size/4), raw[pos+4:pos+8])
	}

	return nil
}

// Deserialize decodes the table of sections.
func (s *GeneralSections) Deserialize(raw []byte) error {
	if len(raw) < GeneralSectionsSize {
		return fmt.Errorf("insufficient buffer size %d for general sections", len(raw))
	}

	for i, section := range s.sections() {
		pos := i * 8
		section.Offset = 4 * int(deserializeU32(raw[pos:pos+4]))
		section.Size = 4 * int(deserializeU32(raw[pos+4:pos+8]))
	}

	return nil
}

// ReadGeneralSections reads the table of sections from the unit.
func ReadGeneralSections(t Transport, timeoutMs int) (*GeneralSections, error) {
	raw := make([]byte, GeneralSectionsSize)
	if err := ReadFrames(t, 0, raw, timeoutMs); err != nil {
		return nil, fmt.Errorf("failed to read general sections: %w", err)
	}

	sections := &GeneralSections{}
	if err := sections.Deserialize(raw); err != nil {
		return nil, err
	}

	return sections, nil
}

// SectionCodec converts the parameters of a section from and to its raw image.
type SectionCodec[T any] interface {
	// Name returns the name of the section for error reporting.
	Name() string
	// MinSize returns the minimum size of the section in bytes.
	MinSize() int
	Serialize(params *T, raw []byte) error
	Deserialize(params *T, raw []byte) error
}

// SectionError reports a failure to process the content of a section.
type SectionError struct {
	Section string
	Err     error
}

func (e *SectionError) Error() string {
	return fmt.Sprintf("%s section: %v", e.Section, e.Err)
}

func (e *SectionError) Unwrap() error {
	return e.Err
}

func checkSection(name string, section Section, minSize int) error {
	if section.Size < minSize {
		return &SectionError{
			Section: name,
			Err:     fmt.Errorf("the size of section should be larger than %d, actually %d", minSize, section.Size),
		}
	}

	return nil
}

// CacheSection reads the whole section and decodes it into params. params is left untouched if
// either the read or the decoding fails.
func CacheSection[T any](t Transport, codec SectionCodec[T], section Section, params *T, timeoutMs int) error {
	if err := checkSection(codec.Name(), section, codec.MinSize()); err != nil {
		return err
	}

	raw := make([]byte, section.Size)
	if err := ReadFrames(t, uint64(section.Offset), raw, timeoutMs); err != nil {
		return err
	}

	var data T
	if err := codec.Deserialize(&data, raw); err != nil {
		return &SectionError{Section: codec.Name(), Err: err}
	}

	*params = data

	return nil
}

// UpdateSection encodes params into a zeroed image of the section and writes all of it.
func UpdateSection[T any](t Transport, codec SectionCodec[T], section Section, params *T, timeoutMs int) error {
	if err := checkSection(codec.Name(), section, codec.MinSize()); err != nil {
		return err
	}

	raw := make([]byte, section.Size)
	if err := codec.Serialize(params, raw); err != nil {
		return &SectionError{Section: codec.Name(), Err: err}
	}

	return WriteFrames(t, uint64(section.Offset), raw, timeoutMs)
}

// UpdateSectionPartially writes the quadlets in which params differ from prev. On success prev
// is set to params.
func UpdateSectionPartially[T any](t Transport, codec SectionCodec[T], section Section, params, prev *T, timeoutMs int) error {
	if err := checkSection(codec.Name(), section, codec.MinSize()); err != nil {
		return err
	}

	newRaw := make([]byte, section.Size)
	if err := codec.Serialize(params, newRaw); err != nil {
		return &SectionError{Section: codec.Name(), Err: err}
	}

	oldRaw := make([]byte, section.Size)
	if err := codec.Serialize(prev, oldRaw); err != nil {
		return &SectionError{Section: codec.Name(), Err: err}
	}

	if err := writeRanges(t, uint64(section.Offset), newRaw, oldRaw, timeoutMs); err != nil {
		return err
	}

	*prev = *params

	return nil
}

// SectionCache keeps the parameters of a section together with the raw image they were decoded
// from, so that fields the codec does not serialize survive partial reads and writes.
type SectionCache[T any] struct {
	codec   SectionCodec[T]
	section Section
	data    T
	raw     []byte
}

// NewSectionCache returns an empty cache for the section.
func NewSectionCache[T any](codec SectionCodec[T], section Section) *SectionCache[T] {
	return &SectionCache[T]{
		codec:   codec,
		section: section,
	}
}

// Section returns the location of the cached section.
func (c *SectionCache[T]) Section() Section {
	return c.section
}

// Params returns the cached parameters.
func (c *SectionCache[T]) Params() T {
	if c.raw != nil {
		var data T
		if err := c.codec.Deserialize(&data, c.raw); err == nil {
			return data
		}
	}

	return c.data
}

// Cache reads the whole section.
func (c *SectionCache[T]) Cache(t Transport, timeoutMs int) error {
	if err := checkSection(c.codec.Name(), c.section, c.codec.MinSize()); err != nil {
		return err
	}

	raw := make([]byte, c.section.Size)
	if err := ReadFrames(t, uint64(c.section.Offset), raw, timeoutMs); err != nil {
		return err
	}

	return c.commit(raw)
}

// CachePartially re-reads only the quadlets at the given offsets, which the unit changes without
// notification, and decodes them together with the rest of the cached image.
func (c *SectionCache[T]) CachePartially(t Transport, offsets []int, timeoutMs int) error {
	if c.raw == nil {
		return c.Cache(t, timeoutMs)
	}

	raw := make([]byte, len(c.raw))
	copy(raw, c.raw)

	for _, offset := range offsets {
		if offset+4 > len(raw) {
			return &SectionError{Section: c.codec.Name(), Err: fmt.Errorf("offset %d is out of section", offset)}
		}

		if err := ReadFrames(t, uint64(c.section.Offset+offset), raw[offset:offset+4], timeoutMs); err != nil {
			return err
		}
	}

	return c.commit(raw)
}

// Update writes the quadlets in which params differ from the cached image.
func (c *SectionCache[T]) Update(t Transport, params *T, timeoutMs int) error {
	if c.raw == nil {
		return &SectionError{Section: c.codec.Name(), Err: fmt.Errorf("section is not cached")}
	}

	raw := make([]byte, len(c.raw))
	copy(raw, c.raw)

	if err := c.codec.Serialize(params, raw); err != nil {
		return &SectionError{Section: c.codec.Name(), Err: err}
	}

	if err := writeRanges(t, uint64(c.section.Offset), raw, c.raw, timeoutMs); err != nil {
		return err
	}

	return c.commit(raw)
}

func (c *SectionCache[T]) commit(raw []byte) error {
	var data T
	if err := c.codec.Deserialize(&data, raw); err != nil {
		return &SectionError{Section: c.codec.Name(), Err: err}
	}

	c.data = data
	c.raw = raw

	return nil
}

// SectionNotified reports whether the notification word carries any of the flags.
func SectionNotified(flag, msg uint32) bool {
	return msg&flag > 0
}

// byteRange is a half-open range of quadlet-aligned bytes.
type byteRange struct {
	start int
	end   int
}

// writeRanges writes the ranges of newRaw that differ from oldRaw, one transaction per range.
func writeRanges(t Transport, offset uint64, newRaw, oldRaw []byte, timeoutMs int) error {
	for _, r := range changedRanges(newRaw, oldRaw) {
		if err := WriteFrames(t, offset+uint64(r.start), newRaw[r.start:r.end], timeoutMs); err != nil {
			return err
		}
	}

	return nil
}

// changedRanges compares two images quadlet by quadlet and returns the contiguous ranges of
// quadlets that differ.
func changedRanges(newRaw, oldRaw []byte) []byteRange {
	var ranges []byteRange

	for pos := 0; pos+4 <= len(newRaw); pos += 4 {
		if bytes.Equal(newRaw[pos:pos+4], oldRaw[pos:pos+4]) {
			continue
		}

		if n := len(ranges); n > 0 && ranges[n-1].end == pos {
			ranges[n-1].end = pos + 4
		} else {
			ranges = append(ranges, byteRange{start: pos, end: pos + 4})
		}
	}

	return ranges
}
