package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/gen2brain/dice"
)

// printAllControls lists all controls of the card and optionally their values.
func printAllControls(w io.Writer, card *dice.Card, listOnly bool) {
	numCtls := card.NumCtls()

	fmt.Fprintf(w, "Card '%s' has %d controls.\n", card.Name(), numCtls)
	fmt.Fprintln(w, "---------------------------------------")

	for i := 0; i < numCtls; i++ {
		ctl, err := card.CtlByIndex(uint(i))
		if err != nil {
			fmt.Fprintf(w, "Warning: Could not get control at index %d: %v\n", i, err)

			continue
		}

		printControl(w, ctl, listOnly)
	}
}

// printControl prints detailed information about a single control.
func printControl(w io.Writer, ctl *dice.CardCtl, listOnly bool) {
	if listOnly {
		fmt.Fprintf(w, "%d: %s\n", ctl.ID(), ctl.Name())

		return
	}

	access := "ro"
	if ctl.IsWritable() {
		access = "rw"
	}

	fmt.Fprintf(w, "%d: %s (%s, %d values, %s)\n", ctl.ID(), ctl.Name(), ctl.TypeString(), ctl.NumValues(), access)

	info := ctl.Info()
	switch ctl.Type() {
	case dice.SNDRV_CTL_ELEM_TYPE_INTEGER:
		fmt.Fprintf(w, "  Range: %d - %d\n", info.Min, info.Max)
	case dice.SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		fmt.Fprintf(w, "  Enums: %s\n", strings.Join(info.Items, ", "))
	}

	fmt.Fprintf(w, "  Value: %s\n", formatValue(ctl, ctl.Value()))
	fmt.Fprintln(w)
}

// formatValue returns the value of the control as text.
func formatValue(ctl *dice.CardCtl, val dice.ElemValue) string {
	var values []string

	switch val.Type {
	case dice.SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		for _, v := range val.Bool {
			if v {
				values = append(values, "On")
			} else {
				values = append(values, "Off")
			}
		}
	case dice.SNDRV_CTL_ELEM_TYPE_INTEGER:
		for _, v := range val.Int {
			values = append(values, strconv.Itoa(int(v)))
		}
	case dice.SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		for _, v := range val.Enum {
			label, err := ctl.EnumString(v)
			if err != nil {
				label = "<error>"
			}
			values = append(values, label)
		}
	case dice.SNDRV_CTL_ELEM_TYPE_BYTES:
		end := len(val.Bytes)
		for i, b := range val.Bytes {
			if b == 0 {
				end = i

				break
			}
		}

		return strconv.Quote(string(val.Bytes[:end]))
	default:
		return "<unsupported type>"
	}

	return strings.Join(values, ", ")
}

// findControl returns the control with the numeric ID or the name given as "name" or
// "name,index".
func findControl(card *dice.Card, arg string) (*dice.CardCtl, error) {
	if id, err := strconv.ParseUint(arg, 10, 32); err == nil {
		ctl, err := card.Ctl(uint32(id))
		if err != nil {
			return nil, fmt.Errorf("cannot find control with ID %d: %w", id, err)
		}

		return ctl, nil
	}

	name, index := arg, uint64(0)
	if i := strings.LastIndexByte(arg, ','); i > 0 {
		if n, err := strconv.ParseUint(arg[i+1:], 10, 32); err == nil {
			name, index = arg[:i], n
		}
	}

	ctl, err := card.CtlByNameAndIndex(name, uint(index))
	if err != nil {
		return nil, fmt.Errorf("cannot find control '%s': %w", arg, err)
	}

	return ctl, nil
}

// parseValue parses string arguments as the value of the control. A single value applies to
// every channel of the control.
func parseValue(ctl *dice.CardCtl, args []string) (dice.ElemValue, error) {
	count := ctl.NumValues()

	if ctl.Type() == dice.SNDRV_CTL_ELEM_TYPE_BYTES {
		text := strings.Join(args, " ")
		if len(text) >= count {
			return dice.ElemValue{}, fmt.Errorf("text is longer than %d bytes", count-1)
		}

		raw := make([]byte, count)
		copy(raw, text)

		return dice.NewBytesValue(raw), nil
	}

	if len(args) == 1 {
		single := args[0]
		args = make([]string, count)
		for i := range args {
			args[i] = single
		}
	}

	if len(args) != count {
		return dice.ElemValue{}, fmt.Errorf("provided %d values, but control has %d values", len(args), count)
	}

	switch ctl.Type() {
	case dice.SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		vals := make([]bool, count)
		for i, arg := range args {
			v, err := parseBool(arg)
			if err != nil {
				return dice.ElemValue{}, err
			}
			vals[i] = v
		}

		return dice.NewBoolValue(vals...), nil
	case dice.SNDRV_CTL_ELEM_TYPE_INTEGER:
		vals := make([]int32, count)
		for i, arg := range args {
			v, err := strconv.ParseInt(arg, 10, 32)
			if err != nil {
				return dice.ElemValue{}, fmt.Errorf("invalid integer value '%s'", arg)
			}
			vals[i] = int32(v)
		}

		return dice.NewIntValue(vals...), nil
	case dice.SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		vals := make([]uint32, count)
		for i, arg := range args {
			v, err := ctl.EnumIndex(arg)
			if err != nil {
				return dice.ElemValue{}, err
			}
			vals[i] = v
		}

		return dice.NewEnumValue(vals...), nil
	default:
		return dice.ElemValue{}, fmt.Errorf("cannot set value for unsupported control type %s", ctl.TypeString())
	}
}

// parseBool interprets various string representations of a boolean.
func parseBool(s string) (bool, error) {
	s = strings.ToLower(s)
	switch s {
	case "1", "on", "true", "yes":
		return true, nil
	case "0", "off", "false", "no":
		return false, nil
	}

	return false, fmt.Errorf("invalid boolean value '%s'", s)
}
