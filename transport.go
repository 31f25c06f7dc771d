package dice

import (
	"errors"
	"fmt"
)

// TransactionCode identifies the type of an asynchronous transaction in IEEE 1394.
type TransactionCode uint32

const (
	TCODE_WRITE_QUADLET_REQUEST TransactionCode = 0x0
	TCODE_WRITE_BLOCK_REQUEST   TransactionCode = 0x1
	TCODE_READ_QUADLET_REQUEST  TransactionCode = 0x4
	TCODE_READ_BLOCK_REQUEST    TransactionCode = 0x5
)

// String returns the name of the transaction code.
func (t TransactionCode) String() string {
	switch t {
	case TCODE_WRITE_QUADLET_REQUEST:
		return "write-quadlet-request"
	case TCODE_WRITE_BLOCK_REQUEST:
		return "write-block-request"
	case TCODE_READ_QUADLET_REQUEST:
		return "read-quadlet-request"
	case TCODE_READ_BLOCK_REQUEST:
		return "read-block-request"
	default:
		return fmt.Sprintf("tcode(%#x)", uint32(t))
	}
}

// IsRead reports whether the transaction reads data from the node.
func (t TransactionCode) IsRead() bool {
	return t == TCODE_READ_QUADLET_REQUEST || t == TCODE_READ_BLOCK_REQUEST
}

// Transport issues asynchronous transactions to a node in the IEEE 1394 bus.
//
// Transaction blocks until the response arrives or the timeout expires. For read transactions
// the response payload is copied into frame; for write transactions frame is the payload.
type Transport interface {
	Transaction(tcode TransactionCode, addr uint64, frame []byte, timeoutMs int) error
}

// Locker is implemented by units that can be locked against stream restarts by the kernel
// driver while their clock configuration changes.
type Locker interface {
	Lock() error
	Unlock() error
}

// ErrTimeout is returned by transports when no response arrives in time.
var ErrTimeout = errors.New("transaction timed out")

// ReadFrames reads frames from the offset in the application space, split into transactions of
// at most MaxFrameSize bytes.
func ReadFrames(t Transport, offset uint64, frames []byte, timeoutMs int) error {
	return transferFrames(t, offset, frames, timeoutMs, true)
}

// WriteFrames writes frames to the offset in the application space, split into transactions of
// at most MaxFrameSize bytes.
func WriteFrames(t Transport, offset uint64, frames []byte, timeoutMs int) error {
	return transferFrames(t, offset, frames, timeoutMs, false)
}

func transferFrames(t Transport, offset uint64, frames []byte, timeoutMs int, read bool) error {
	if t == nil {
		return fmt.Errorf("transport is nil")
	}

	for pos := 0; pos < len(frames); pos += MaxFrameSize {
		end := min(pos+MaxFrameSize, len(frames))
		frame := frames[pos:end]

		var tcode TransactionCode
		switch {
		case read && len(frame) == 4:
			tcode = TCODE_READ_QUADLET_REQUEST
		case read:
			tcode = TCODE_READ_BLOCK_REQUEST
		case len(frame) == 4:
			tcode = TCODE_WRITE_QUADLET_REQUEST
		default:
			tcode = TCODE_WRITE_BLOCK_REQUEST
		}

		addr := BaseAddr + offset + uint64(pos)
		if err := t.Transaction(tcode, addr, frame, timeoutMs); err != nil {
			return fmt.Errorf("%s at %#012x failed: %w", tcode, addr, err)
		}
	}

	return nil
}

// WithDeviceLock runs fn while the unit is locked. The lock is released on every path; an
// error from releasing it is joined to the error of fn.
func WithDeviceLock(l Locker, fn func() error) (err error) {
	if l == nil {
		return fn()
	}

	if err := l.Lock(); err != nil {
		return fmt.Errorf("failed to lock unit: %w", err)
	}

	defer func() {
		if uerr := l.Unlock(); uerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to unlock unit: %w", uerr))
		}
	}()

	return fn()
}
