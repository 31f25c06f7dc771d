// Package dice provides a Go interface to the control surface of FireWire audio units based on
// the DICE chipset, with models for the TC Electronic Konnekt series (iTwin, Konnekt 24d,
// Konnekt 8, Konnekt Live and Desktop Konnekt 6).
//
// The units expose their state as a register map in the IEEE 1394 address space. The package
// reads and writes that map through a Transport, keeps a decoded copy of every functional block
// (a segment) together with its raw image, and refreshes only the blocks the unit reports as
// changed in its notification word.
package dice

import "errors"

const (
	// BaseAddr is the address of the application space of DICE in the IEEE 1394 bus.
	BaseAddr uint64 = 0xffffe0000000

	// MaxFrameSize is the maximum size of payload in a single block transaction.
	MaxFrameSize = 512

	// DefaultTimeoutMs is the timeout used for transactions to DICE units.
	DefaultTimeoutMs = 20
)

// Notification flags defined by the general protocol.
const (
	NOTIFY_RX_CFG_CHG      uint32 = 0x00000001
	NOTIFY_TX_CFG_CHG      uint32 = 0x00000002
	NOTIFY_LOCK_CHG        uint32 = 0x00000010
	NOTIFY_CLOCK_ACCEPTED  uint32 = 0x00000020
	NOTIFY_EXT_STATUS      uint32 = 0x00000040
	NOTIFY_GLOBAL_SECTION  uint32 = NOTIFY_LOCK_CHG | NOTIFY_CLOCK_ACCEPTED | NOTIFY_EXT_STATUS
	NOTIFY_VENDOR_SPECIFIC uint32 = 0xffff0000
)

// ErrInvalidValue is returned when a value read from the unit or given by the host is not a
// member of the table the field is defined by.
var ErrInvalidValue = errors.New("invalid value")
