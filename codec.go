package dice

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// NicknameMaxSize is the maximum size of the nickname of a unit in bytes.
const NicknameMaxSize = 64

// labelSeparator delimits labels in a label block.
const labelSeparator = '\\'

func serializeU32(val uint32, raw []byte) {
	binary.BigEndian.PutUint32(raw[:4], val)
}

func deserializeU32(raw []byte) uint32 {
	return binary.BigEndian.Uint32(raw[:4])
}

func serializeI32(val int32, raw []byte) {
	serializeU32(uint32(val), raw)
}

func deserializeI32(raw []byte) int32 {
	return int32(deserializeU32(raw))
}

func serializeBool(val bool, raw []byte) {
	var v uint32
	if val {
		v = 1
	}

	serializeU32(v, raw)
}

func deserializeBool(raw []byte) bool {
	return deserializeU32(raw) > 0
}

func serializeU8(val uint8, raw []byte) {
	serializeU32(uint32(val), raw)
}

func deserializeU8(raw []byte) uint8 {
	return uint8(deserializeU32(raw))
}

// serializePosition writes the index of val in table.
func serializePosition[T comparable](table []T, val T, raw []byte, label string) error {
	_ = raw[3]

	for i, entry := range table {
		if entry == val {
			serializeU32(uint32(i), raw)

			return nil
		}
	}

	return fmt.Errorf("%s %v is not supported: %w", label, val, ErrInvalidValue)
}

// deserializePosition reads an index and resolves it against table.
func deserializePosition[T comparable](table []T, val *T, raw []byte, label string) error {
	_ = raw[3]

	pos := deserializeU32(raw)
	if int(pos) >= len(table) {
		return fmt.Errorf("%s not found for index %d: %w", label, pos, ErrInvalidValue)
	}

	*val = table[pos]

	return nil
}

// swapQuadlets reverses the byte order of each quadlet in place. Strings are transferred in
// host order of the unit, which is little endian.
func swapQuadlets(raw []byte) {
	for pos := 0; pos+4 <= len(raw); pos += 4 {
		raw[pos], raw[pos+3] = raw[pos+3], raw[pos]
		raw[pos+1], raw[pos+2] = raw[pos+2], raw[pos+1]
	}
}

func serializeLabel(label string, raw []byte) error {
	if len(label) >= len(raw) {
		return fmt.Errorf("insufficient buffer size %d for label", len(raw))
	}

	copy(raw, label)
	swapQuadlets(raw)

	return nil
}

// deserializeLabel decodes a label. The label ends at the first NUL or at the end of raw.
func deserializeLabel(raw []byte) string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapQuadlets(data)

	return cString(data)
}

func serializeLabels(labels []string, raw []byte) error {
	clear(raw)

	pos := 0
	for _, label := range labels {
		if pos+len(label)+1 >= len(raw) {
			return fmt.Errorf("insufficient buffer size %d for all of labels", len(raw))
		}

		copy(raw[pos:], label)
		pos += len(label)
		raw[pos] = labelSeparator
		pos++
	}

	if pos+1 >= len(raw) {
		return fmt.Errorf("insufficient buffer size %d for all of labels", len(raw))
	}

	raw[pos] = labelSeparator
	swapQuadlets(raw)

	return nil
}

func deserializeLabels(raw []byte) []string {
	data := make([]byte, len(raw))
	copy(data, raw)
	swapQuadlets(data)

	var labels []string
	for _, chunk := range bytes.Split(data, []byte{labelSeparator}) {
		if len(chunk) == 0 || chunk[0] == 0 {
			break
		}

		labels = append(labels, cString(chunk))
	}

	return labels
}

// cString converts a C-style null-terminated byte array to a Go string.
func cString(b []byte) string {
	i := bytes.IndexByte(b, 0)
	if i == -1 {
		return string(b)
	}

	return string(b[:i])
}
