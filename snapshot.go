package dice

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// Snapshot is the values of the writable elements of a card.
type Snapshot struct {
	Model    string         `yaml:"model"`
	Elements []ElemSnapshot `yaml:"elements"`
}

// ElemSnapshot is the value of one element. Enumerated values are kept as item labels and
// bytes as text, so that snapshots stay readable and survive changes of item order.
type ElemSnapshot struct {
	Iface string   `yaml:"iface"`
	Name  string   `yaml:"name"`
	Index uint32   `yaml:"index,omitempty"`
	Bool  []bool   `yaml:"bool,omitempty,flow"`
	Int   []int32  `yaml:"int,omitempty,flow"`
	Enum  []string `yaml:"enum,omitempty,flow"`
	Text  string   `yaml:"text,omitempty"`
}

func parseElemIface(name string) (ElemIface, error) {
	for _, iface := range []ElemIface{SNDRV_CTL_ELEM_IFACE_CARD, SNDRV_CTL_ELEM_IFACE_MIXER} {
		if iface.String() == name {
			return iface, nil
		}
	}

	return 0, fmt.Errorf("unknown interface: %s", name)
}

// TakeSnapshot returns the cached values of the writable elements of the card.
func TakeSnapshot(card *Card) (*Snapshot, error) {
	if card == nil {
		return nil, fmt.Errorf("card is nil")
	}

	snap := &Snapshot{Model: card.Name()}

	for _, ctl := range card.Ctls {
		if !ctl.IsWritable() {
			continue
		}

		id := ctl.ElemId()
		val := ctl.Value()
		elem := ElemSnapshot{Iface: id.Iface.String(), Name: id.Name, Index: id.Index}

		switch val.Type {
		case SNDRV_CTL_ELEM_TYPE_BOOLEAN:
			elem.Bool = val.Bool
		case SNDRV_CTL_ELEM_TYPE_INTEGER:
			elem.Int = val.Int
		case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
			for _, index := range val.Enum {
				label, err := ctl.EnumString(index)
				if err != nil {
					return nil, err
				}
				elem.Enum = append(elem.Enum, label)
			}
		case SNDRV_CTL_ELEM_TYPE_BYTES:
			elem.Text = cString(val.Bytes)
		default:
			continue
		}

		snap.Elements = append(snap.Elements, elem)
	}

	return snap, nil
}

// value converts the snapshot of the element into a value for the control.
func (e *ElemSnapshot) value(ctl *CardCtl) (ElemValue, error) {
	switch ctl.Type() {
	case SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		return NewBoolValue(e.Bool...), nil
	case SNDRV_CTL_ELEM_TYPE_INTEGER:
		return NewIntValue(e.Int...), nil
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		vals := make([]uint32, 0, len(e.Enum))
		for _, label := range e.Enum {
			index, err := ctl.EnumIndex(label)
			if err != nil {
				return ElemValue{}, err
			}
			vals = append(vals, index)
		}

		return NewEnumValue(vals...), nil
	case SNDRV_CTL_ELEM_TYPE_BYTES:
		raw := make([]byte, ctl.NumValues())
		if len(e.Text) >= len(raw) {
			return ElemValue{}, fmt.Errorf("text of %s too long: %d", e.Name, len(e.Text))
		}
		copy(raw, e.Text)

		return NewBytesValue(raw), nil
	default:
		return ElemValue{}, fmt.Errorf("unsupported type of %s: %s", e.Name, ctl.Type())
	}
}

// RestoreSnapshot writes the values in the snapshot which differ from the card. It continues
// after failures and returns all of them.
func RestoreSnapshot(card *Card, snap *Snapshot) error {
	if card == nil {
		return fmt.Errorf("card is nil")
	}

	if snap == nil {
		return fmt.Errorf("snapshot is nil")
	}

	var errs []error

	for i := range snap.Elements {
		elem := &snap.Elements[i]

		iface, err := parseElemIface(elem.Iface)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		id := ElemId{Iface: iface, Name: elem.Name, Index: elem.Index}
		ctl, err := card.CtlById(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		val, err := elem.value(ctl)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		if ctl.Value().Equal(val) {
			continue
		}

		if err := card.Write(id, val); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

// WriteTo encodes the snapshot in YAML.
func (s *Snapshot) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(s); err != nil {
		return 0, fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := enc.Close(); err != nil {
		return 0, err
	}

	return buf.WriteTo(w)
}

// ReadSnapshot decodes a snapshot in YAML.
func ReadSnapshot(r io.Reader) (*Snapshot, error) {
	var snap Snapshot
	if err := yaml.NewDecoder(r).Decode(&snap); err != nil {
		return nil, fmt.Errorf("failed to decode snapshot: %w", err)
	}

	return &snap, nil
}
