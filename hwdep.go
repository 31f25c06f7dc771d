//go:build linux

package dice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"
)

// HwdepInfo is the information of the unit reported by the hwdep device.
type HwdepInfo struct {
	Type       uint32
	Card       int
	Guid       uint64
	DeviceName string
}

// FwDevicePath returns the path of the character device of the node.
func (i HwdepInfo) FwDevicePath() string {
	return "/dev/" + i.DeviceName
}

// HwdepEvent is an event read from the hwdep device.
type HwdepEvent struct {
	Type uint32
	// Notification is the notification word of the unit for SNDRV_FIREWIRE_EVENT_DICE_NOTIFICATION.
	Notification uint32
	// Locked is the lock status for SNDRV_FIREWIRE_EVENT_LOCK_STATUS.
	Locked bool
}

// Hwdep is the hwdep device of the ALSA dice driver, such as /dev/snd/hwC1D0. It delivers
// notifications of the unit and implements Locker.
type Hwdep struct {
	file *os.File
	path string
	buf  [sndFirewireEventSize * 16]byte
	// Events read but not consumed yet.
	pending []HwdepEvent
}

var _ Locker = (*Hwdep)(nil)

// OpenHwdep opens the hwdep device at path.
func OpenHwdep(path string) (*Hwdep, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	return &Hwdep{file: file, path: path}, nil
}

// Close closes the hwdep device.
func (h *Hwdep) Close() error {
	if h == nil || h.file == nil {
		return nil
	}

	err := h.file.Close()
	h.file = nil

	return err
}

// Info returns the information of the unit.
func (h *Hwdep) Info() (HwdepInfo, error) {
	if h == nil || h.file == nil {
		return HwdepInfo{}, fmt.Errorf("hwdep is not open")
	}

	var info sndFirewireGetInfo
	if err := ioctl(h.file.Fd(), SNDRV_FIREWIRE_IOCTL_GET_INFO, uintptr(unsafe.Pointer(&info))); err != nil {
		return HwdepInfo{}, fmt.Errorf("SNDRV_FIREWIRE_IOCTL_GET_INFO failed: %w", err)
	}

	return HwdepInfo{
		Type:       info.Type,
		Card:       int(info.Card),
		Guid:       binary.BigEndian.Uint64(info.Guid[:]),
		DeviceName: cString(info.DeviceName[:]),
	}, nil
}

// Lock implements Locker. The driver refuses to start streams while the unit is locked.
func (h *Hwdep) Lock() error {
	if h == nil || h.file == nil {
		return fmt.Errorf("hwdep is not open")
	}

	if err := ioctl(h.file.Fd(), SNDRV_FIREWIRE_IOCTL_LOCK, 0); err != nil {
		return fmt.Errorf("SNDRV_FIREWIRE_IOCTL_LOCK failed: %w", err)
	}

	return nil
}

// Unlock implements Locker.
func (h *Hwdep) Unlock() error {
	if h == nil || h.file == nil {
		return fmt.Errorf("hwdep is not open")
	}

	if err := ioctl(h.file.Fd(), SNDRV_FIREWIRE_IOCTL_UNLOCK, 0); err != nil {
		return fmt.Errorf("SNDRV_FIREWIRE_IOCTL_UNLOCK failed: %w", err)
	}

	return nil
}

// ReadEvent waits for an event up to timeoutMs milliseconds, or forever if negative. It returns
// false without error when no event arrives in time.
func (h *Hwdep) ReadEvent(timeoutMs int) (HwdepEvent, bool, error) {
	if h == nil || h.file == nil {
		return HwdepEvent{}, false, fmt.Errorf("hwdep is not open")
	}

	if len(h.pending) == 0 {
		fds := []unix.PollFd{{Fd: int32(h.file.Fd()), Events: unix.POLLIN}}
		count, err := unix.Poll(fds, timeoutMs)
		if errors.Is(err, unix.EINTR) || (err == nil && count == 0) {
			return HwdepEvent{}, false, nil
		}
		if err != nil {
			return HwdepEvent{}, false, fmt.Errorf("poll failed: %w", err)
		}

		n, err := h.file.Read(h.buf[:])
		if err != nil {
			return HwdepEvent{}, false, fmt.Errorf("failed to read event: %w", err)
		}

		h.pending = parseHwdepEvents(h.buf[:n])
		if len(h.pending) == 0 {
			return HwdepEvent{}, false, nil
		}
	}

	ev := h.pending[0]
	h.pending = h.pending[1:]

	return ev, true, nil
}

func parseHwdepEvents(data []byte) []HwdepEvent {
	var events []HwdepEvent

	for len(data) >= sndFirewireEventSize {
		typ := binary.NativeEndian.Uint32(data[0:4])
		val := binary.NativeEndian.Uint32(data[4:8])
		data = data[sndFirewireEventSize:]

		switch typ {
		case SNDRV_FIREWIRE_EVENT_DICE_NOTIFICATION:
			events = append(events, HwdepEvent{Type: typ, Notification: val})
		case SNDRV_FIREWIRE_EVENT_LOCK_STATUS:
			events = append(events, HwdepEvent{Type: typ, Locked: val > 0})
		}
	}

	return events
}
