//go:build linux

package main

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/gen2brain/dice"
)

type hwdepNotifier struct {
	hwdep  *dice.Hwdep
	logger *slog.Logger
}

func (n hwdepNotifier) Next(timeoutMs int) (uint32, bool, error) {
	ev, ok, err := n.hwdep.ReadEvent(timeoutMs)
	if err != nil || !ok {
		return 0, false, err
	}

	if ev.Type == dice.SNDRV_FIREWIRE_EVENT_LOCK_STATUS {
		n.logger.Info("lock status", "locked", ev.Locked)

		return 0, false, nil
	}

	return ev.Notification, true, nil
}

// openDevice opens the hwdep device of the card and the character device of its node.
func openDevice(config *dice.Config, logger *slog.Logger) (*device, error) {
	hwdep, err := dice.OpenHwdep(config.HwdepDevice)
	if err != nil {
		return nil, err
	}

	info, err := hwdep.Info()
	if err != nil {
		hwdep.Close()

		return nil, err
	}

	if info.Type != dice.SNDRV_FIREWIRE_TYPE_DICE {
		hwdep.Close()

		return nil, fmt.Errorf("%s is not a DICE unit: type %d", config.HwdepDevice, info.Type)
	}

	fwPath := config.FwDevice
	if fwPath == "" {
		fwPath = info.FwDevicePath()
	}

	node, err := dice.OpenFwNode(fwPath)
	if err != nil {
		hwdep.Close()

		return nil, err
	}

	logger.Info("opened unit", "card", info.Card, "guid", fmt.Sprintf("%016x", info.Guid), "node", node.Path(),
		"generation", node.Generation())

	dev := &device{
		transport: node,
		locker:    hwdep,
		notifier:  hwdepNotifier{hwdep: hwdep, logger: logger},
		closers:   []io.Closer{node, hwdep},
	}

	if config.Model == dice.ModelAuto {
		units, err := dice.EnumerateUnits()
		if err != nil {
			dev.close()

			return nil, err
		}

		for _, unit := range units {
			if unit.Card == info.Card {
				dev.vendorID, dev.modelID = unit.VendorID, unit.ModelID
			}
		}
	}

	return dev, nil
}
