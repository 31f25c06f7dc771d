package dice

// ABI version of the character device requested by this package. Response events of this
// version carry no timestamp.
const fwCdevVersion = 4

// Types of events read from the character device.
const (
	FW_CDEV_EVENT_BUS_RESET = 0x00
	FW_CDEV_EVENT_RESPONSE  = 0x01
)

// RCODE_COMPLETE is the response code of a successful transaction.
const RCODE_COMPLETE = 0x0

// fwCdevGetInfo mirrors struct fw_cdev_get_info. Pointers are passed as 64-bit integers.
type fwCdevGetInfo struct {
	Version         uint32
	RomLength       uint32
	Rom             uint64
	BusReset        uint64
	BusResetClosure uint64
	Card            uint32
	_               uint32
}

// fwCdevSendRequest mirrors struct fw_cdev_send_request.
type fwCdevSendRequest struct {
	Tcode      uint32
	Length     uint32
	Offset     uint64
	Closure    uint64
	Data       uint64
	Generation uint32
	_          uint32
}

// fwCdevEventBusReset mirrors struct fw_cdev_event_bus_reset.
type fwCdevEventBusReset struct {
	Closure     uint64
	Type        uint32
	NodeID      uint32
	LocalNodeID uint32
	BmNodeID    uint32
	IrmNodeID   uint32
	RootNodeID  uint32
	Generation  uint32
	_           uint32
}

// Size of the header of struct fw_cdev_event_response before its payload.
const fwCdevEventResponseHeaderSize = 20

// sndFirewireGetInfo mirrors struct snd_firewire_get_info.
type sndFirewireGetInfo struct {
	Type       uint32
	Card       uint32
	Guid       [8]byte
	DeviceName [16]byte
}

// Size of struct snd_firewire_event_dice_notification and struct
// snd_firewire_event_lock_status.
const sndFirewireEventSize = 8
