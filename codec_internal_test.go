package dice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwapQuadlets(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07, 0x08, 0x09}
	swapQuadlets(raw)

	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01, 0x08, 0x07, 0x06, 0x05, 0x09}, raw,
		"Each quadlet should be reversed and the trailing byte kept")
}

func TestLabel(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		raw := make([]byte, 16)
		require.NoError(t, serializeLabel("iTwin", raw), "serializeLabel should succeed")

		// Labels are stored in little endian quadlets.
		assert.Equal(t, []byte{'i', 'w', 'T', 'i', 0, 0, 0, 'n'}, raw[:8], "Quadlets should be byte-swapped")
		assert.Equal(t, "iTwin", deserializeLabel(raw), "The label should survive a round trip")
	})

	t.Run("TooLong", func(t *testing.T) {
		raw := make([]byte, 8)
		assert.Error(t, serializeLabel("12345678", raw), "A label filling the buffer leaves no room for NUL")
	})

	t.Run("Unterminated", func(t *testing.T) {
		raw := []byte{'d', 'c', 'b', 'a'}
		assert.Equal(t, "abcd", deserializeLabel(raw), "A label may end at the end of the buffer")
	})
}

func TestLabels(t *testing.T) {
	t.Run("RoundTrip", func(t *testing.T) {
		raw := make([]byte, 32)
		labels := []string{"S/PDIF", "ADAT", "Internal"}

		require.NoError(t, serializeLabels(labels, raw), "serializeLabels should succeed")
		assert.Equal(t, labels, deserializeLabels(raw), "Labels should survive a round trip")
	})

	t.Run("Insufficient", func(t *testing.T) {
		raw := make([]byte, 8)
		assert.Error(t, serializeLabels([]string{"S/PDIF", "ADAT"}, raw), "Labels larger than the buffer should fail")
	})

	t.Run("Empty", func(t *testing.T) {
		assert.Empty(t, deserializeLabels(make([]byte, 16)), "A zeroed block has no labels")
	})
}

func TestPosition(t *testing.T) {
	table := []ClockSource{ClockSourceAes1, ClockSourceAdat, ClockSourceInternal}
	raw := make([]byte, 4)

	require.NoError(t, serializePosition(table, ClockSourceInternal, raw, "source"), "serializePosition should succeed")
	assert.Equal(t, uint32(2), deserializeU32(raw), "The index in the table should be written")

	var src ClockSource
	require.NoError(t, deserializePosition(table, &src, raw, "source"), "deserializePosition should succeed")
	assert.Equal(t, ClockSourceInternal, src, "The entry at the index should be read")

	err := serializePosition(table, ClockSourceTdif, raw, "source")
	assert.ErrorIs(t, err, ErrInvalidValue, "A value missing in the table should be invalid")

	serializeU32(3, raw)
	err = deserializePosition(table, &src, raw, "source")
	assert.ErrorIs(t, err, ErrInvalidValue, "An index beyond the table should be invalid")
	assert.Equal(t, ClockSourceInternal, src, "The value should be untouched on failure")
}

func TestScalars(t *testing.T) {
	raw := make([]byte, 4)

	serializeI32(-1000, raw)
	assert.Equal(t, int32(-1000), deserializeI32(raw), "Negative integers should survive a round trip")

	serializeBool(true, raw)
	assert.Equal(t, []byte{0, 0, 0, 1}, raw, "True should be written as 1 in big endian")

	serializeU32(2, raw)
	assert.True(t, deserializeBool(raw), "Any non-zero value should be true")

	assert.Equal(t, "abc", cString([]byte{'a', 'b', 'c', 0, 'd'}), "cString should stop at NUL")
	assert.Equal(t, "abc", cString([]byte{'a', 'b', 'c'}), "cString should accept missing NUL")
}
