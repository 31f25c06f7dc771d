package dice_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestGeneralSections(t *testing.T) {
	sections := dice.GeneralSections{
		Global:         dice.Section{Offset: 0x28, Size: 0x168},
		TxStreamFormat: dice.Section{Offset: 0x190, Size: 0x120},
		RxStreamFormat: dice.Section{Offset: 0x2b0, Size: 0x120},
		ExtSync:        dice.Section{Offset: 0x3d0, Size: 0x10},
	}

	raw := make([]byte, dice.GeneralSectionsSize)
	require.NoError(t, sections.Serialize(raw), "Serialize should succeed")

	// Offsets and sizes are expressed in quadlets.
	assert.Equal(t, []byte{0, 0, 0, 0x0a, 0, 0, 0, 0x5a}, raw[:8], "The global section should be encoded in quadlets")

	var decoded dice.GeneralSections
	require.NoError(t, decoded.Deserialize(raw), "Deserialize should succeed")
	assert.Equal(t, sections, decoded, "Sections should survive a round trip")

	assert.Error(t, decoded.Deserialize(raw[:20]), "A short image should be rejected")
}

func TestGlobalSection(t *testing.T) {
	sim, err := dice.NewSimDevice("k8")
	require.NoError(t, err, "NewSimDevice should succeed")

	sections, err := dice.ReadGeneralSections(sim, dice.DefaultTimeoutMs)
	require.NoError(t, err, "ReadGeneralSections should succeed")

	t.Run("Extended", func(t *testing.T) {
		var params dice.GlobalParameters
		err := dice.CacheSection[dice.GlobalParameters](sim, dice.DefaultGlobalSpec(), sections.Global, &params, dice.DefaultTimeoutMs)
		require.NoError(t, err, "CacheSection should succeed")

		assert.Equal(t, uint64(0xffff0000)<<32, params.Owner, "Owner should join both quadlets")
		assert.Equal(t, "Konnekt8", params.Nickname, "Nickname should be decoded")
		assert.Equal(t, dice.ClockConfig{Rate: dice.ClockRate48000, Src: dice.ClockSourceInternal}, params.ClockConfig)
		assert.Equal(t, dice.ClockStatus{SrcIsLocked: true, Rate: dice.ClockRate48000}, params.ClockStatus)
		assert.Equal(t, uint32(48000), params.CurrentRate)
		assert.Equal(t, uint32(0x01000400), params.Version)

		assert.Equal(t, []dice.ClockRate{dice.ClockRate44100, dice.ClockRate48000, dice.ClockRate88200, dice.ClockRate96000},
			params.AvailRates, "Rates should follow the capability bits")
		assert.Equal(t, []dice.ClockSource{dice.ClockSourceAes1, dice.ClockSourceAdat, dice.ClockSourceInternal},
			params.AvailSources, "Stream sources and sources labelled unused should not be selectable")
		assert.Equal(t, []dice.ClockSourceLabel{
			{Source: dice.ClockSourceAes1, Label: "S/PDIF"},
			{Source: dice.ClockSourceAdat, Label: "ADAT"},
			{Source: dice.ClockSourceArx1, Label: "Stream-1"},
			{Source: dice.ClockSourceInternal, Label: "Internal"},
		}, params.ClockSourceLabels, "Unused labels should be dropped and stream labels replaced")

		assert.Equal(t, []dice.ClockSource{dice.ClockSourceAes1, dice.ClockSourceAdat, dice.ClockSourceArx1},
			params.ExternalSources.Sources, "Internal should never be an external source")
		assert.Equal(t, []bool{false, false, true}, params.ExternalSources.Locked)
		assert.Equal(t, []bool{false, false, false}, params.ExternalSources.Slipped)
	})

	t.Run("Legacy", func(t *testing.T) {
		legacy := dice.Section{Offset: sections.Global.Offset, Size: dice.GlobalSectionMinSize}

		var params dice.GlobalParameters
		err := dice.CacheSection[dice.GlobalParameters](sim, dice.DefaultGlobalSpec(), legacy, &params, dice.DefaultTimeoutMs)
		require.NoError(t, err, "CacheSection should succeed")

		assert.Equal(t, []dice.ClockRate{dice.ClockRate44100, dice.ClockRate48000}, params.AvailRates,
			"Legacy firmware should get fixed rates")
		assert.Equal(t, []dice.ClockSource{dice.ClockSourceInternal}, params.AvailSources,
			"Legacy firmware should get the internal source only")
		assert.Equal(t, []dice.ClockSource{dice.ClockSourceArx1}, params.ExternalSources.Sources)
		assert.Equal(t, []bool{true}, params.ExternalSources.Locked)
		assert.Zero(t, params.Version, "Legacy firmware has no version")
	})

	t.Run("TooSmall", func(t *testing.T) {
		small := dice.Section{Offset: sections.Global.Offset, Size: 64}

		params := dice.GlobalParameters{Nickname: "untouched"}
		err := dice.CacheSection[dice.GlobalParameters](sim, dice.DefaultGlobalSpec(), small, &params, dice.DefaultTimeoutMs)

		var sectionErr *dice.SectionError
		assert.ErrorAs(t, err, &sectionErr, "A small section should be reported")
		assert.Equal(t, "untouched", params.Nickname, "Parameters should be untouched on failure")
	})
}

func TestClockValues(t *testing.T) {
	assert.Equal(t, "48000", dice.ClockRate48000.String())
	assert.Contains(t, dice.ClockRate(0x0b).String(), "reserved", "Unknown rates should be kept as reserved")
	assert.True(t, dice.ClockRate(0x0b).IsReserved(), "Rates beyond none should be reserved")
	assert.False(t, dice.ClockRateNone.IsReserved())

	assert.Equal(t, "internal", dice.ClockSourceInternal.String())
	assert.True(t, dice.ClockSource(0x0d).IsReserved(), "Sources beyond internal should be reserved")
}

func TestStreamFormatSections(t *testing.T) {
	sim, err := dice.NewSimDevice("k8")
	require.NoError(t, err, "NewSimDevice should succeed")

	sections, err := dice.ReadGeneralSections(sim, dice.DefaultTimeoutMs)
	require.NoError(t, err, "ReadGeneralSections should succeed")

	var tx dice.TxStreamFormatParameters
	require.NoError(t, dice.CacheSection[dice.TxStreamFormatParameters](sim, dice.TxStreamFormatSpec{},
		sections.TxStreamFormat, &tx, dice.DefaultTimeoutMs), "Caching tx stream format should succeed")

	require.Len(t, tx.Entries, 1, "The unit transmits one stream")
	assert.Equal(t, int8(-1), tx.Entries[0].IsoChannel, "Unused channels are -1")
	assert.Equal(t, uint32(4), tx.Entries[0].Pcm)
	assert.Equal(t, uint32(1), tx.Entries[0].Midi)
	assert.Equal(t, []string{"Out-1", "Out-2", "Out-3", "Out-4"}, tx.Entries[0].Labels)

	var rx dice.RxStreamFormatParameters
	require.NoError(t, dice.CacheSection[dice.RxStreamFormatParameters](sim, dice.RxStreamFormatSpec{},
		sections.RxStreamFormat, &rx, dice.DefaultTimeoutMs), "Caching rx stream format should succeed")

	require.Len(t, rx.Entries, 1, "The unit receives one stream")
	assert.Equal(t, []string{"In-1", "In-2", "In-3", "In-4"}, rx.Entries[0].Labels)

	t.Run("CountIsFixed", func(t *testing.T) {
		params := dice.TxStreamFormatParameters{Entries: append(tx.Entries, tx.Entries[0])}
		raw := sim.Peek(uint64(sections.TxStreamFormat.Offset), sections.TxStreamFormat.Size)

		err := dice.TxStreamFormatSpec{}.Serialize(&params, raw)
		assert.Error(t, err, "The number of entries is defined by the unit")
	})

	t.Run("PartialUpdate", func(t *testing.T) {
		rec := &recordingTransport{t: sim}
		cache := dice.NewSectionCache[dice.RxStreamFormatParameters](dice.RxStreamFormatSpec{}, sections.RxStreamFormat)
		require.NoError(t, cache.Cache(rec, dice.DefaultTimeoutMs), "Cache should succeed")

		params := cache.Params()
		params.Entries[0].IsoChannel = 3
		rec.reset()

		require.NoError(t, cache.Update(rec, &params, dice.DefaultTimeoutMs), "Update should succeed")
		require.Len(t, rec.writes, 1, "Only the changed quadlet should be written")
		assert.Equal(t, dice.TCODE_WRITE_QUADLET_REQUEST, rec.writes[0].tcode)
		assert.Equal(t, dice.BaseAddr+uint64(sections.RxStreamFormat.Offset)+8, rec.writes[0].addr,
			"The channel is the first quadlet of the first entry")
		assert.Equal(t, int8(3), cache.Params().Entries[0].IsoChannel, "The cache should hold the new value")
	})
}

func TestSectionCache(t *testing.T) {
	section := dice.Section{Offset: 0x28, Size: dice.GlobalSectionMinSize}

	t.Run("UpdateBeforeCache", func(t *testing.T) {
		cache := dice.NewSectionCache[dice.GlobalParameters](dice.DefaultGlobalSpec(), section)
		params := dice.GlobalParameters{}

		err := cache.Update(&MockTransport{}, &params, dice.DefaultTimeoutMs)
		assert.Error(t, err, "Update should fail before the section is cached")
	})

	t.Run("FailedWriteKeepsCache", func(t *testing.T) {
		sim, err := dice.NewSimDevice("k8")
		require.NoError(t, err, "NewSimDevice should succeed")

		cache := dice.NewSectionCache[dice.GlobalParameters](dice.DefaultGlobalSpec(), section)
		require.NoError(t, cache.Cache(sim, dice.DefaultTimeoutMs), "Cache should succeed")

		errFault := errors.New("bus reset")
		sim.InjectFault(func(tcode dice.TransactionCode, _ uint64) error {
			if !tcode.IsRead() {
				return errFault
			}
			return nil
		})

		params := cache.Params()
		params.Nickname = "renamed"
		err = cache.Update(sim, &params, dice.DefaultTimeoutMs)
		assert.ErrorIs(t, err, errFault, "The failure of the transaction should be returned")
		assert.Equal(t, "Konnekt8", cache.Params().Nickname, "The cache should be untouched on failure")
	})

	t.Run("CachePartially", func(t *testing.T) {
		tr := &MockTransport{}
		cache := dice.NewSectionCache[dice.GlobalParameters](dice.DefaultGlobalSpec(), section)

		tr.On("Transaction", dice.TCODE_READ_BLOCK_REQUEST, dice.BaseAddr+0x28, mock.Anything, dice.DefaultTimeoutMs).
			Return(nil).Once()
		require.NoError(t, cache.Cache(tr, dice.DefaultTimeoutMs), "Cache should succeed")

		tr.On("Transaction", dice.TCODE_READ_QUADLET_REQUEST, dice.BaseAddr+0x28+88, mock.Anything, dice.DefaultTimeoutMs).
			Run(func(args mock.Arguments) {
				frame := args.Get(2).([]byte)
				copy(frame, []byte{0x00, 0x01, 0x00, 0x00})
			}).Return(nil).Once()

		require.NoError(t, cache.CachePartially(tr, dice.GlobalFluctuatedOffsets, dice.DefaultTimeoutMs),
			"CachePartially should succeed")
		tr.AssertExpectations(t)

		// Legacy images list Arx1 only, at bit 6 of the table of external sources.
		assert.Equal(t, []bool{false}, cache.Params().ExternalSources.Slipped)
	})
}

func TestUpdateSectionPartially(t *testing.T) {
	sim, err := dice.NewSimDevice("itwin")
	require.NoError(t, err, "NewSimDevice should succeed")

	sections, err := dice.ReadGeneralSections(sim, dice.DefaultTimeoutMs)
	require.NoError(t, err, "ReadGeneralSections should succeed")

	var prev dice.GlobalParameters
	require.NoError(t, dice.CacheSection[dice.GlobalParameters](sim, dice.DefaultGlobalSpec(), sections.Global,
		&prev, dice.DefaultTimeoutMs), "CacheSection should succeed")

	params := prev
	params.Nickname = "iTwin-2"

	rec := &recordingTransport{t: sim}
	require.NoError(t, dice.UpdateSectionPartially[dice.GlobalParameters](rec, dice.DefaultGlobalSpec(), sections.Global,
		&params, &prev, dice.DefaultTimeoutMs), "UpdateSectionPartially should succeed")

	// The first quadlet of both nicknames holds "iTwi".
	require.Len(t, rec.writes, 1, "Only the changed quadlet of the nickname should be written")
	assert.Equal(t, dice.TCODE_WRITE_QUADLET_REQUEST, rec.writes[0].tcode)
	assert.Equal(t, dice.BaseAddr+uint64(sections.Global.Offset)+16, rec.writes[0].addr,
		"The nickname starts at the fourth quadlet")
	assert.Equal(t, "iTwin-2", prev.Nickname, "prev should follow params on success")

	var reread dice.GlobalParameters
	require.NoError(t, dice.CacheSection[dice.GlobalParameters](sim, dice.DefaultGlobalSpec(), sections.Global,
		&reread, dice.DefaultTimeoutMs))
	assert.Equal(t, "iTwin-2", reread.Nickname, "The unit should hold the new nickname")

	rec.reset()
	require.NoError(t, dice.UpdateSectionPartially[dice.GlobalParameters](rec, dice.DefaultGlobalSpec(), sections.Global,
		&params, &prev, dice.DefaultTimeoutMs))
	assert.Empty(t, rec.writes, "Unchanged parameters should not be written")
}

func TestSectionNotified(t *testing.T) {
	assert.True(t, dice.SectionNotified(dice.NOTIFY_GLOBAL_SECTION, dice.NOTIFY_LOCK_CHG))
	assert.True(t, dice.SectionNotified(dice.NOTIFY_VENDOR_SPECIFIC, dice.SHELL_MIXER_NOTIFY_FLAG))
	assert.False(t, dice.SectionNotified(dice.NOTIFY_TX_CFG_CHG, dice.NOTIFY_RX_CFG_CHG))
}
