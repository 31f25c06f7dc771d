package dice

import (
	"fmt"
)

// TcKonnektBaseOffset is the offset of the window for TC Electronic Konnekt series in the
// application space.
const TcKonnektBaseOffset = 0x00a01000

// SegmentSpec describes a segment: a block of the register map of TC Konnekt units holding the
// parameters of one functional area.
//
// Serialize is nil for read-only segments. NotifyFlag is zero for segments which the unit
// never announces in its notification word, such as meters.
type SegmentSpec[T any] struct {
	Name       string
	Offset     int
	Size       int
	NotifyFlag uint32

	Serialize   func(params *T, raw []byte) error
	Deserialize func(params *T, raw []byte) error
}

// SegmentError reports a failure to encode or decode a segment.
type SegmentError struct {
	Name  string
	Cause error
	Raw   []byte
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("segment: %s, cause: '%v', raw: %02x", e.Name, e.Cause, e.Raw)
}

func (e *SegmentError) Unwrap() error {
	return e.Cause
}

// Segment holds the decoded parameters of a segment together with its raw image. Both are
// replaced together and only after every transaction succeeded.
type Segment[T any] struct {
	spec SegmentSpec[T]
	data T
	raw  []byte
}

// NewSegment returns a segment with a zeroed image.
func NewSegment[T any](spec SegmentSpec[T]) *Segment[T] {
	return &Segment[T]{
		spec: spec,
		raw:  make([]byte, spec.Size),
	}
}

// Name returns the name of the segment.
func (s *Segment[T]) Name() string {
	return s.spec.Name
}

// Spec returns the description of the segment.
func (s *Segment[T]) Spec() SegmentSpec[T] {
	return s.spec
}

// Data returns a copy of the cached parameters. The copy is decoded from the raw image, so
// the caller may modify it freely and hand it to Update.
func (s *Segment[T]) Data() T {
	var data T
	if err := s.spec.Deserialize(&data, s.raw); err != nil {
		return s.data
	}

	return data
}

// Raw returns a copy of the raw image.
func (s *Segment[T]) Raw() []byte {
	raw := make([]byte, len(s.raw))
	copy(raw, s.raw)

	return raw
}

// Mutable reports whether the segment can be written.
func (s *Segment[T]) Mutable() bool {
	return s.spec.Serialize != nil
}

// IsNotified reports whether the notification word announces a change in the segment.
func (s *Segment[T]) IsNotified(msg uint32) bool {
	return msg&s.spec.NotifyFlag > 0
}

func (s *Segment[T]) offset() uint64 {
	return uint64(TcKonnektBaseOffset + s.spec.Offset)
}

func (s *Segment[T]) error(cause error, raw []byte) error {
	return &SegmentError{Name: s.spec.Name, Cause: cause, Raw: raw}
}

// Cache reads the whole segment.
func (s *Segment[T]) Cache(t Transport, timeoutMs int) error {
	raw := make([]byte, s.spec.Size)
	if err := ReadFrames(t, s.offset(), raw, timeoutMs); err != nil {
		return fmt.Errorf("failed to read %s segment: %w", s.spec.Name, err)
	}

	var data T
	if err := s.spec.Deserialize(&data, raw); err != nil {
		return s.error(err, raw)
	}

	s.data = data
	s.raw = raw

	return nil
}

// Update writes the quadlets in which params differ from the cached image. Contiguous changed
// quadlets are written in one transaction. Nothing is written when params match the cache.
func (s *Segment[T]) Update(t Transport, params *T, timeoutMs int) error {
	raw, err := s.encode(params)
	if err != nil {
		return err
	}

	for _, r := range changedRanges(raw, s.raw) {
		if err := WriteFrames(t, s.offset()+uint64(r.start), raw[r.start:r.end], timeoutMs); err != nil {
			return fmt.Errorf("failed to update %s segment: %w", s.spec.Name, err)
		}
	}

	return s.commit(raw)
}

// UpdateWhole writes the whole image encoded from params in one transaction.
func (s *Segment[T]) UpdateWhole(t Transport, params *T, timeoutMs int) error {
	raw, err := s.encode(params)
	if err != nil {
		return err
	}

	if err := WriteFrames(t, s.offset(), raw, timeoutMs); err != nil {
		return fmt.Errorf("failed to update %s segment: %w", s.spec.Name, err)
	}

	return s.commit(raw)
}

func (s *Segment[T]) encode(params *T) ([]byte, error) {
	if s.spec.Serialize == nil {
		return nil, fmt.Errorf("%s segment is read-only", s.spec.Name)
	}

	raw := s.Raw()
	if err := s.spec.Serialize(params, raw); err != nil {
		return nil, s.error(err, s.Raw())
	}

	return raw, nil
}

func (s *Segment[T]) commit(raw []byte) error {
	var data T
	if err := s.spec.Deserialize(&data, raw); err != nil {
		return s.error(err, raw)
	}

	s.data = data
	s.raw = raw

	return nil
}
