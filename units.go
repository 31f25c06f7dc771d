package dice

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// DiceDriverName is the name of the ALSA driver for DICE units in /proc/asound/cards.
const DiceDriverName = "Dice"

// Unit is a sound card of a DICE unit.
type Unit struct {
	Card        int
	Name        string
	Description string
	// VendorID and ModelID are read from the configuration ROM exposed in sysfs; zero if
	// unavailable.
	VendorID uint32
	ModelID  uint32
	// FwDevice is the character device of the node, such as /dev/fw1.
	FwDevice string
}

// HwdepDevice returns the path of the hwdep device of the card.
func (u Unit) HwdepDevice() string {
	return fmt.Sprintf("/dev/snd/hwC%dD0", u.Card)
}

// Supported reports whether a model exists for the unit.
func (u Unit) Supported() bool {
	if u.VendorID != TcElectronicVendorID {
		return false
	}

	switch u.ModelID {
	case DesktopK6ModelID, ItwinModelID, K24dModelID, K8ModelID, KliveModelID:
		return true
	default:
		return false
	}
}

// String returns a human-readable representation of the unit.
func (u Unit) String() string {
	return fmt.Sprintf("Card %d: %s (%s) vendor=%#06x model=%#06x %s",
		u.Card, u.Name, u.Description, u.VendorID, u.ModelID, u.FwDevice)
}

// EnumerateUnits scans /proc/asound and sysfs to find the sound cards of DICE units.
func EnumerateUnits() ([]Unit, error) {
	return enumerateUnits("/proc/asound", "/sys/class/sound")
}

var cardRegex = regexp.MustCompile(`^\s*(\d+)\s+\[\s*([^]]*?)\s*\]:\s*(\S+)\s+-\s+(.*)`)

func enumerateUnits(procRoot, sysRoot string) ([]Unit, error) {
	cardsFile := filepath.Join(procRoot, "cards")
	content, err := os.ReadFile(cardsFile)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", cardsFile, err)
	}

	var units []Unit

	for _, line := range strings.Split(string(content), "\n") {
		matches := cardRegex.FindStringSubmatch(line)
		if len(matches) != 5 || matches[3] != DiceDriverName {
			continue
		}

		id, err := strconv.Atoi(matches[1])
		if err != nil {
			continue
		}

		unit := Unit{
			Card:        id,
			Name:        strings.TrimSpace(matches[2]),
			Description: strings.TrimSpace(matches[4]),
		}

		// The device of the card is the unit directory of the node, such as fw1.0; the node
		// holds the IDs of the root directory.
		dev, err := filepath.EvalSymlinks(filepath.Join(sysRoot, fmt.Sprintf("card%d", id), "device"))
		if err == nil {
			node := filepath.Dir(dev)
			unit.VendorID = readSysfsID("vendor", dev, node)
			unit.ModelID = readSysfsID("model", dev, node)

			name := filepath.Base(dev)
			if i := strings.IndexByte(name, '.'); i > 0 {
				name = name[:i]
			}
			unit.FwDevice = "/dev/" + name
		}

		units = append(units, unit)
	}

	sort.Slice(units, func(i, j int) bool { return units[i].Card < units[j].Card })

	return units, nil
}

// readSysfsID reads the attribute from the first directory having it.
func readSysfsID(attr string, dirs ...string) uint32 {
	for _, dir := range dirs {
		data, err := os.ReadFile(filepath.Join(dir, attr))
		if err != nil {
			continue
		}

		val, err := strconv.ParseUint(strings.TrimSpace(string(data)), 0, 32)
		if err != nil {
			continue
		}

		return uint32(val)
	}

	return 0
}
