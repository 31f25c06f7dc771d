package dice

// ElemType defines the value type of a control element.
// These values correspond to the SNDRV_CTL_ELEM_TYPE_* constants in the ALSA kernel headers.
type ElemType int32

const (
	SNDRV_CTL_ELEM_TYPE_NONE       ElemType = 0
	SNDRV_CTL_ELEM_TYPE_BOOLEAN    ElemType = 1
	SNDRV_CTL_ELEM_TYPE_INTEGER    ElemType = 2
	SNDRV_CTL_ELEM_TYPE_ENUMERATED ElemType = 3
	SNDRV_CTL_ELEM_TYPE_BYTES      ElemType = 4
)

// String returns the name of the element type as printed by amixer.
func (t ElemType) String() string {
	switch t {
	case SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		return "BOOL"
	case SNDRV_CTL_ELEM_TYPE_INTEGER:
		return "INT"
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		return "ENUM"
	case SNDRV_CTL_ELEM_TYPE_BYTES:
		return "BYTE"
	default:
		return "UNKNOWN"
	}
}

// ElemAccess defines the access permissions for a control element.
type ElemAccess uint32

const (
	// If set, the element is readable.
	SNDRV_CTL_ELEM_ACCESS_READ ElemAccess = 1 << 0
	// If set, the element is writable.
	SNDRV_CTL_ELEM_ACCESS_WRITE ElemAccess = 1 << 1
	// If set, the value changes without notification and is refreshed by measurement.
	SNDRV_CTL_ELEM_ACCESS_VOLATILE ElemAccess = 1 << 2
	// If set, the element carries dB information in TLV format.
	SNDRV_CTL_ELEM_ACCESS_TLV_READ ElemAccess = 1 << 4

	SNDRV_CTL_ELEM_ACCESS_READWRITE = SNDRV_CTL_ELEM_ACCESS_READ | SNDRV_CTL_ELEM_ACCESS_WRITE
)

// ElemIface is the interface an element belongs to.
type ElemIface int32

const (
	SNDRV_CTL_ELEM_IFACE_CARD  ElemIface = 0
	SNDRV_CTL_ELEM_IFACE_MIXER ElemIface = 2
)

// String returns the name of the interface.
func (i ElemIface) String() string {
	switch i {
	case SNDRV_CTL_ELEM_IFACE_CARD:
		return "card"
	case SNDRV_CTL_ELEM_IFACE_MIXER:
		return "mixer"
	default:
		return "unknown"
	}
}

// CardEventType defines the type of event generated by the card.
type CardEventType uint32

const (
	// Indicates that a control element's value has changed.
	SNDRV_CTL_EVENT_MASK_VALUE CardEventType = 1 << 0
	// Indicates that a control element's metadata (e.g., range) has changed.
	SNDRV_CTL_EVENT_MASK_INFO CardEventType = 1 << 1
	// Indicates that a control element has been added.
	SNDRV_CTL_EVENT_MASK_ADD CardEventType = 1 << 2
	// Indicates a control element has been removed.
	SNDRV_CTL_EVENT_MASK_REMOVE CardEventType = 1 << 3
)

// CardEvent represents a change of a control element of the card.
type CardEvent struct {
	Type      CardEventType
	ControlID uint32 // The numid of the control that changed.
}

// Events read from the hwdep device of ALSA FireWire drivers.
const (
	SNDRV_FIREWIRE_EVENT_LOCK_STATUS       = 0x000010cc
	SNDRV_FIREWIRE_EVENT_DICE_NOTIFICATION = 0x4443494e
)

// SNDRV_FIREWIRE_TYPE_DICE is the type of unit reported by the hwdep device for DICE units.
const SNDRV_FIREWIRE_TYPE_DICE = 1
