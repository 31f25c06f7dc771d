package dice_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gen2brain/dice"
)

func TestSnapshot(t *testing.T) {
	t.Run("TakeAndRestore", func(t *testing.T) {
		model, card := memCard(t)

		snap, err := dice.TakeSnapshot(card)
		require.NoError(t, err, "TakeSnapshot should succeed")
		assert.Equal(t, "mem", snap.Model)
		require.Len(t, snap.Elements, 4, "Only writable elements should be kept")

		var buf bytes.Buffer
		_, err = snap.WriteTo(&buf)
		require.NoError(t, err, "WriteTo should succeed")
		assert.Contains(t, buf.String(), "Digital", "Enumerated values should be kept as labels")

		read, err := dice.ReadSnapshot(&buf)
		require.NoError(t, err, "ReadSnapshot should succeed")
		assert.Equal(t, snap, read, "The snapshot should survive YAML")

		for i := range read.Elements {
			switch read.Elements[i].Name {
			case "gain":
				read.Elements[i].Int = []int32{-30, -40}
			case "source":
				read.Elements[i].Enum = []string{"Stream"}
			case "label":
				read.Elements[i].Text = "main"
			}
		}

		require.NoError(t, dice.RestoreSnapshot(card, read), "RestoreSnapshot should succeed")
		assert.Equal(t, 3, model.writes, "Only changed elements should be written")

		assert.Equal(t, []int32{-30, -40}, model.values[gainId].Int)
		assert.Equal(t, []uint32{2}, model.values[srcId].Enum)
		assert.Equal(t, []byte("main\x00\x00\x00\x00"), model.values[labelId].Bytes)
	})

	t.Run("Errors", func(t *testing.T) {
		model, card := memCard(t)

		snap := &dice.Snapshot{
			Model: "mem",
			Elements: []dice.ElemSnapshot{
				{Iface: "pcm", Name: "gain", Int: []int32{0, 0}},
				{Iface: "mixer", Name: "missing", Bool: []bool{true}},
				{Iface: "mixer", Name: "source", Enum: []string{"Optical"}},
				{Iface: "card", Name: "label", Text: "too long for eight"},
				{Iface: "mixer", Name: "mute", Bool: []bool{true}},
			},
		}

		err := dice.RestoreSnapshot(card, snap)
		assert.Error(t, err, "Broken elements should be reported")
		assert.ErrorIs(t, err, dice.ErrInvalidValue, "Unknown items should be reported as invalid")
		assert.Equal(t, []bool{true}, model.values[muteId].Bool, "Valid elements should still be written")

		assert.Error(t, dice.RestoreSnapshot(card, nil))
		assert.Error(t, dice.RestoreSnapshot(nil, snap))
		_, err = dice.TakeSnapshot(nil)
		assert.Error(t, err)
		_, err = dice.ReadSnapshot(bytes.NewBufferString("elements: {"))
		assert.Error(t, err, "Broken YAML should fail")
	})

	t.Run("Unit", func(t *testing.T) {
		sim, model, card := simCard(t, "k8")

		snap, err := dice.TakeSnapshot(card)
		require.NoError(t, err, "TakeSnapshot should succeed")
		assert.Equal(t, model.Name(), snap.Model)

		found := false
		for i := range snap.Elements {
			if snap.Elements[i].Name == dice.MixerEnableName {
				snap.Elements[i].Bool = []bool{!snap.Elements[i].Bool[0]}
				found = true
			}
		}
		require.True(t, found, "The mixer switch should be in the snapshot")

		require.NoError(t, dice.RestoreSnapshot(card, snap), "RestoreSnapshot should succeed")

		ctl, err := card.CtlByName(dice.MixerEnableName)
		require.NoError(t, err)
		for _, elem := range snap.Elements {
			if elem.Name == dice.MixerEnableName {
				assert.Equal(t, elem.Bool, ctl.Value().Bool, "The card should hold the restored value")
			}
		}

		assert.False(t, sim.Locked(), "The unit should not be left locked")
	})
}
