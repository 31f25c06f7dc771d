package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestDbScale(t *testing.T) {
	scale := dice.DbScale{Min: -9400, Step: 100, Mute: true}

	raw := scale.Encode()
	assert.Equal(t, []uint32{dice.SNDRV_CTL_TLVT_DB_SCALE, 8, uint32(0xffffdb48), 0x00010064}, raw,
		"The mute flag should be carried in the upper half of the last word")

	decoded, err := dice.DecodeDbScale(raw)
	require.NoError(t, err, "DecodeDbScale should succeed")
	assert.Equal(t, scale, decoded, "The scale should survive a round trip")

	_, err = dice.DecodeDbScale(raw[:3])
	assert.Error(t, err, "Short data should be rejected")

	_, err = dice.DecodeDbScale([]uint32{dice.SNDRV_CTL_TLVT_DB_MINMAX, 8, 0, 0})
	assert.Error(t, err, "Other types should be rejected")
}

func TestDbInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval dice.DbInterval
		typ      uint32
	}{
		{"MinMax", dice.DbInterval{Min: -7200, Max: 0}, dice.SNDRV_CTL_TLVT_DB_MINMAX},
		{"Mute", dice.DbInterval{Min: -7200, Max: 0, Mute: true}, dice.SNDRV_CTL_TLVT_DB_MINMAX_MUTE},
		{"Linear", dice.DbInterval{Min: -4800, Max: 1200, Linear: true}, dice.SNDRV_CTL_TLVT_DB_LINEAR},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := tt.interval.Encode()
			require.Len(t, raw, 4)
			assert.Equal(t, tt.typ, raw[0], "The type should follow the flags")

			decoded, err := dice.DecodeDbInterval(raw)
			require.NoError(t, err, "DecodeDbInterval should succeed")
			assert.Equal(t, tt.interval, decoded, "The interval should survive a round trip")
		})
	}

	t.Run("BadHeader", func(t *testing.T) {
		_, err := dice.DecodeDbInterval([]uint32{dice.SNDRV_CTL_TLVT_DB_SCALE, 8, 0, 0})
		assert.Error(t, err, "A dB scale is not an interval")

		_, err = dice.DecodeDbInterval([]uint32{dice.SNDRV_CTL_TLVT_DB_MINMAX, 12, 0, 0})
		assert.Error(t, err, "An unexpected length should be rejected")
	})
}
