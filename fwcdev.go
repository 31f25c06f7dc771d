//go:build linux

package dice

import (
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"
	"unsafe"

	"golang.org/x/sys/unix"
)

// FwNode is a Transport over the character device of a node in the IEEE 1394 bus, such as
// /dev/fw1.
type FwNode struct {
	mu         sync.Mutex
	file       *os.File
	path       string
	generation uint32
	closure    uint64
	buf        []byte
}

var _ Transport = (*FwNode)(nil)

// OpenFwNode opens the character device at path and reads the current generation of the bus.
func OpenFwNode(path string) (*FwNode, error) {
	file, err := os.OpenFile(path, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}

	n := &FwNode{
		file: file,
		path: path,
		buf:  make([]byte, 4096),
	}

	var reset fwCdevEventBusReset
	info := fwCdevGetInfo{
		Version:  fwCdevVersion,
		BusReset: uint64(uintptr(unsafe.Pointer(&reset))),
	}

	if err := ioctl(file.Fd(), FW_CDEV_IOC_GET_INFO, uintptr(unsafe.Pointer(&info))); err != nil {
		file.Close()

		return nil, fmt.Errorf("FW_CDEV_IOC_GET_INFO failed on %s: %w", path, err)
	}
	runtime.KeepAlive(&reset)

	n.generation = reset.Generation

	return n, nil
}

// Path returns the path of the character device.
func (n *FwNode) Path() string {
	if n == nil {
		return ""
	}

	return n.path
}

// Generation returns the generation of the bus at the last bus reset seen by the node.
func (n *FwNode) Generation() uint32 {
	n.mu.Lock()
	defer n.mu.Unlock()

	return n.generation
}

// Close closes the character device.
func (n *FwNode) Close() error {
	if n == nil || n.file == nil {
		return nil
	}

	err := n.file.Close()
	n.file = nil

	return err
}

// Transaction implements Transport. It sends the request and waits for the response with the
// same closure, following bus resets on the way.
func (n *FwNode) Transaction(tcode TransactionCode, addr uint64, frame []byte, timeoutMs int) error {
	if n == nil || n.file == nil {
		return fmt.Errorf("node is not open")
	}

	if len(frame) == 0 {
		return fmt.Errorf("empty frame for %s", tcode)
	}

	n.mu.Lock()
	defer n.mu.Unlock()

	n.closure++
	req := fwCdevSendRequest{
		Tcode:      uint32(tcode),
		Length:     uint32(len(frame)),
		Offset:     addr,
		Closure:    n.closure,
		Data:       uint64(uintptr(unsafe.Pointer(&frame[0]))),
		Generation: n.generation,
	}

	err := ioctl(n.file.Fd(), FW_CDEV_IOC_SEND_REQUEST, uintptr(unsafe.Pointer(&req)))
	runtime.KeepAlive(frame)
	if err != nil {
		return fmt.Errorf("FW_CDEV_IOC_SEND_REQUEST failed: %w", err)
	}

	for {
		if err := n.waitEvent(timeoutMs); err != nil {
			return err
		}

		count, err := n.file.Read(n.buf)
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		done, err := n.handleEvent(n.buf[:count], req.Closure, tcode, frame)
		if done || err != nil {
			return err
		}
	}
}

func (n *FwNode) waitEvent(timeoutMs int) error {
	fds := []unix.PollFd{{Fd: int32(n.file.Fd()), Events: unix.POLLIN}}

	for {
		count, err := unix.Poll(fds, timeoutMs)
		if errors.Is(err, unix.EINTR) {
			continue
		}
		if err != nil {
			return fmt.Errorf("poll failed: %w", err)
		}
		if count == 0 {
			return ErrTimeout
		}

		return nil
	}
}

// handleEvent reports whether the event is the response to the request with the closure.
func (n *FwNode) handleEvent(event []byte, closure uint64, tcode TransactionCode, frame []byte) (bool, error) {
	if len(event) < 12 {
		return false, fmt.Errorf("short event: %d bytes", len(event))
	}

	typ := binary.NativeEndian.Uint32(event[8:12])
	switch typ {
	case FW_CDEV_EVENT_BUS_RESET:
		if len(event) >= int(unsafe.Sizeof(fwCdevEventBusReset{}))-4 {
			n.generation = binary.NativeEndian.Uint32(event[32:36])
		}

		return false, nil
	case FW_CDEV_EVENT_RESPONSE:
		if len(event) < fwCdevEventResponseHeaderSize {
			return false, fmt.Errorf("short response event: %d bytes", len(event))
		}

		if binary.NativeEndian.Uint64(event[0:8]) != closure {
			return false, nil
		}

		rcode := binary.NativeEndian.Uint32(event[12:16])
		if rcode != RCODE_COMPLETE {
			return true, fmt.Errorf("%s completed with rcode %#x", tcode, rcode)
		}

		if tcode.IsRead() {
			length := int(binary.NativeEndian.Uint32(event[16:20]))
			payload := event[fwCdevEventResponseHeaderSize:]
			if length != len(frame) || len(payload) < length {
				return true, fmt.Errorf("unexpected length of response: %d, expected %d", length, len(frame))
			}
			copy(frame, payload[:length])
		}

		return true, nil
	default:
		return false, nil
	}
}
