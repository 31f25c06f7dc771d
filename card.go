package dice

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// ElemId identifies a control element by its interface, name and index.
type ElemId struct {
	Iface ElemIface
	Name  string
	Index uint32
}

// String returns the identifier in the form used by amixer.
func (id ElemId) String() string {
	return fmt.Sprintf("iface=%s,name='%s',index=%d", id.Iface, id.Name, id.Index)
}

// CardElemId returns the identifier of an element in the card interface.
func CardElemId(name string) ElemId {
	return ElemId{Iface: SNDRV_CTL_ELEM_IFACE_CARD, Name: name}
}

// MixerElemId returns the identifier of an element in the mixer interface.
func MixerElemId(name string) ElemId {
	return ElemId{Iface: SNDRV_CTL_ELEM_IFACE_MIXER, Name: name}
}

// ElemInfo is the metadata of a control element.
type ElemInfo struct {
	Type   ElemType
	Access ElemAccess
	// Count is the number of values the element holds.
	Count int

	// Min, Max and Step are the range of integer elements.
	Min  int32
	Max  int32
	Step int32

	// Items are the labels of enumerated elements.
	Items []string

	// Tlv is the dB information of integer elements, if any.
	Tlv []uint32
}

// ElemValue is the value of a control element. Only the slice matching Type is used.
type ElemValue struct {
	Type  ElemType
	Bool  []bool
	Int   []int32
	Enum  []uint32
	Bytes []byte
}

// NewBoolValue returns a value for boolean elements.
func NewBoolValue(vals ...bool) ElemValue {
	return ElemValue{Type: SNDRV_CTL_ELEM_TYPE_BOOLEAN, Bool: vals}
}

// NewIntValue returns a value for integer elements.
func NewIntValue(vals ...int32) ElemValue {
	return ElemValue{Type: SNDRV_CTL_ELEM_TYPE_INTEGER, Int: vals}
}

// NewEnumValue returns a value for enumerated elements. The values are indices of items.
func NewEnumValue(vals ...uint32) ElemValue {
	return ElemValue{Type: SNDRV_CTL_ELEM_TYPE_ENUMERATED, Enum: vals}
}

// NewBytesValue returns a value for bytes elements.
func NewBytesValue(vals []byte) ElemValue {
	return ElemValue{Type: SNDRV_CTL_ELEM_TYPE_BYTES, Bytes: vals}
}

// Len returns the number of values.
func (v ElemValue) Len() int {
	switch v.Type {
	case SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		return len(v.Bool)
	case SNDRV_CTL_ELEM_TYPE_INTEGER:
		return len(v.Int)
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		return len(v.Enum)
	case SNDRV_CTL_ELEM_TYPE_BYTES:
		return len(v.Bytes)
	default:
		return 0
	}
}

// Equal reports whether both values have the same type and content.
func (v ElemValue) Equal(other ElemValue) bool {
	return v.Type == other.Type &&
		slices.Equal(v.Bool, other.Bool) &&
		slices.Equal(v.Int, other.Int) &&
		slices.Equal(v.Enum, other.Enum) &&
		slices.Equal(v.Bytes, other.Bytes)
}

// Clone returns a deep copy of the value.
func (v ElemValue) Clone() ElemValue {
	return ElemValue{
		Type:  v.Type,
		Bool:  slices.Clone(v.Bool),
		Int:   slices.Clone(v.Int),
		Enum:  slices.Clone(v.Enum),
		Bytes: slices.Clone(v.Bytes),
	}
}

// CardCtl represents an individual control element of a card.
type CardCtl struct {
	card  *Card
	numid uint32
	id    ElemId
	info  ElemInfo
	value ElemValue
}

// Card is the registry of control elements of one unit. A model adds its elements when it is
// attached and serves reads, writes and change detection for them.
//
// Card is not safe for concurrent use; operations on a unit are dispatched one at a time.
type Card struct {
	name     string
	Ctls     []*CardCtl
	ctlMap   map[string][]*CardCtl // Maps a name to one or more controls
	ctlIdMap map[uint32]*CardCtl   // Maps a numid to its control for O(1) access

	model      Model
	events     []CardEvent
	subscribed bool
	logger     *slog.Logger
}

// NewCard returns an empty card. A nil logger discards output.
func NewCard(name string, logger *slog.Logger) *Card {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	return &Card{
		name:     name,
		ctlMap:   make(map[string][]*CardCtl),
		ctlIdMap: make(map[uint32]*CardCtl),
		logger:   logger,
	}
}

// OpenCard caches the state of the unit through the model and returns a card with the
// elements of the model.
func OpenCard(model Model, logger *slog.Logger) (*Card, error) {
	if model == nil {
		return nil, fmt.Errorf("model is nil")
	}

	if err := model.Cache(); err != nil {
		return nil, fmt.Errorf("failed to cache %s: %w", model.Name(), err)
	}

	card := NewCard(model.Name(), logger)
	if err := card.Attach(model); err != nil {
		return nil, err
	}

	return card, nil
}

// Name returns the name of the card.
func (c *Card) Name() string {
	if c == nil {
		return ""
	}

	return c.name
}

// Model returns the model attached to the card.
func (c *Card) Model() Model {
	if c == nil {
		return nil
	}

	return c.model
}

// NumCtls returns the total number of controls of the card.
func (c *Card) NumCtls() int {
	if c == nil {
		return 0
	}

	return len(c.Ctls)
}

// NumCtlsByName returns the number of controls that match the given name.
func (c *Card) NumCtlsByName(name string) int {
	if c == nil {
		return 0
	}

	return len(c.ctlMap[name])
}

// Ctl returns a control by its numeric ID.
func (c *Card) Ctl(id uint32) (*CardCtl, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	ctl, ok := c.ctlIdMap[id]
	if !ok {
		return nil, fmt.Errorf("control with id %d not found", id)
	}

	return ctl, nil
}

// CtlByIndex returns a control by its 0-based index in the list of controls.
// The index is valid from 0 to NumCtls() - 1.
func (c *Card) CtlByIndex(index uint) (*CardCtl, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	if index >= uint(c.NumCtls()) {
		return nil, fmt.Errorf("index %d is out of bounds (number of controls: %d)", index, c.NumCtls())
	}

	return c.Ctls[index], nil
}

// CtlByName returns the first control found with the given name.
func (c *Card) CtlByName(name string) (*CardCtl, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	return c.CtlByNameAndIndex(name, 0)
}

// CtlByNameAndIndex returns a specific control by name and index.
func (c *Card) CtlByNameAndIndex(name string, index uint) (*CardCtl, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	ctls, ok := c.ctlMap[name]
	if !ok {
		return nil, fmt.Errorf("control not found: %s", name)
	}

	for _, ctl := range ctls {
		if uint(ctl.id.Index) == index {
			return ctl, nil
		}
	}

	return nil, fmt.Errorf("index %d out of bounds for control %s", index, name)
}

// CtlById returns the control with the identifier.
func (c *Card) CtlById(id ElemId) (*CardCtl, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	for _, ctl := range c.ctlMap[id.Name] {
		if ctl.id == id {
			return ctl, nil
		}
	}

	return nil, fmt.Errorf("control not found: %s", id)
}

func (c *Card) addElem(id ElemId, info ElemInfo) (ElemId, error) {
	if c == nil {
		return id, fmt.Errorf("card is nil")
	}

	if _, err := c.CtlById(id); err == nil {
		return id, fmt.Errorf("control already exists: %s", id)
	}

	if info.Count < 1 {
		return id, fmt.Errorf("invalid number of values %d for %s", info.Count, id.Name)
	}

	ctl := &CardCtl{
		card:  c,
		numid: uint32(len(c.Ctls) + 1),
		id:    id,
		info:  info,
		value: zeroValue(info),
	}

	c.Ctls = append(c.Ctls, ctl)
	c.ctlMap[id.Name] = append(c.ctlMap[id.Name], ctl)
	c.ctlIdMap[ctl.numid] = ctl

	if c.subscribed {
		c.events = append(c.events, CardEvent{Type: SNDRV_CTL_EVENT_MASK_ADD, ControlID: ctl.numid})
	}

	return id, nil
}

func elemAccess(writable bool) ElemAccess {
	if writable {
		return SNDRV_CTL_ELEM_ACCESS_READWRITE
	}

	return SNDRV_CTL_ELEM_ACCESS_READ
}

// AddBoolElem adds a boolean element with count values.
func (c *Card) AddBoolElem(id ElemId, count int, writable bool) (ElemId, error) {
	return c.addElem(id, ElemInfo{
		Type:   SNDRV_CTL_ELEM_TYPE_BOOLEAN,
		Access: elemAccess(writable),
		Count:  count,
		Max:    1,
		Step:   1,
	})
}

// AddIntElem adds an integer element with count values in the range. tlv may be nil.
func (c *Card) AddIntElem(id ElemId, min, max, step int32, count int, tlv []uint32, writable bool) (ElemId, error) {
	if min > max || step < 1 {
		return id, fmt.Errorf("invalid range %d..%d/%d for %s", min, max, step, id.Name)
	}

	access := elemAccess(writable)
	if tlv != nil {
		access |= SNDRV_CTL_ELEM_ACCESS_TLV_READ
	}

	return c.addElem(id, ElemInfo{
		Type:   SNDRV_CTL_ELEM_TYPE_INTEGER,
		Access: access,
		Count:  count,
		Min:    min,
		Max:    max,
		Step:   step,
		Tlv:    slices.Clone(tlv),
	})
}

// AddEnumElem adds an enumerated element with count values selecting one of items.
func (c *Card) AddEnumElem(id ElemId, count int, items []string, writable bool) (ElemId, error) {
	if len(items) == 0 {
		return id, fmt.Errorf("no items for %s", id.Name)
	}

	return c.addElem(id, ElemInfo{
		Type:   SNDRV_CTL_ELEM_TYPE_ENUMERATED,
		Access: elemAccess(writable),
		Count:  count,
		Items:  slices.Clone(items),
	})
}

// AddBytesElem adds a bytes element of count bytes.
func (c *Card) AddBytesElem(id ElemId, count int, writable bool) (ElemId, error) {
	return c.addElem(id, ElemInfo{
		Type:   SNDRV_CTL_ELEM_TYPE_BYTES,
		Access: elemAccess(writable),
		Count:  count,
	})
}

// MarkVolatile flags elements whose values change without notification.
func (c *Card) MarkVolatile(ids ...ElemId) error {
	for _, id := range ids {
		ctl, err := c.CtlById(id)
		if err != nil {
			return err
		}

		ctl.info.Access |= SNDRV_CTL_ELEM_ACCESS_VOLATILE
	}

	return nil
}

// Attach lets the model add its elements, then fills the elements with their current values.
func (c *Card) Attach(model Model) error {
	if c == nil {
		return fmt.Errorf("card is nil")
	}

	if model == nil {
		return fmt.Errorf("model is nil")
	}

	c.model = model

	if err := model.Load(c); err != nil {
		return fmt.Errorf("failed to load elements of %s: %w", model.Name(), err)
	}

	// An element holding a value out of its table stays at its zero value until the unit
	// reports a valid one.
	for _, ctl := range c.Ctls {
		if _, err := c.refresh(ctl); err != nil {
			c.logger.Warn("failed to read element", "elem", ctl.id.Name, "error", err)
		}
	}

	c.logger.Debug("card attached", "card", c.name, "model", model.Name(), "elems", len(c.Ctls))

	return nil
}

// Read returns the current value of the element.
func (c *Card) Read(id ElemId) (ElemValue, error) {
	ctl, err := c.CtlById(id)
	if err != nil {
		return ElemValue{}, err
	}

	if _, err := c.refresh(ctl); err != nil {
		return ElemValue{}, err
	}

	return ctl.Value(), nil
}

// Write validates the value against the metadata of the element and writes it to the unit.
// Invalid values are rejected before any transaction.
func (c *Card) Write(id ElemId, val ElemValue) error {
	ctl, err := c.CtlById(id)
	if err != nil {
		return err
	}

	if c.model == nil {
		return fmt.Errorf("no model is attached to %s", c.name)
	}

	if err := ctl.validate(val); err != nil {
		return err
	}

	old := ctl.value.Clone()
	val = val.Clone()

	handled, err := c.model.Write(id, &old, &val)
	if err != nil {
		c.logger.Debug("write failed", "elem", id.Name, "error", err)

		return fmt.Errorf("failed to write %s: %w", id.Name, err)
	}

	if !handled {
		return fmt.Errorf("control %s is not handled by %s", id.Name, c.model.Name())
	}

	if !ctl.value.Equal(val) {
		ctl.value = val
		c.queueEvent(ctl)
	}

	return nil
}

// DispatchNotification lets the model refresh the segments announced by the notification word,
// then queues events for the notified elements whose value changed.
func (c *Card) DispatchNotification(msg uint32) error {
	if c == nil {
		return fmt.Errorf("card is nil")
	}

	if c.model == nil {
		return fmt.Errorf("no model is attached to %s", c.name)
	}

	var errs []error
	if err := c.model.ParseNotification(msg); err != nil {
		errs = append(errs, fmt.Errorf("failed to parse notification %#08x: %w", msg, err))
	}

	errs = append(errs, c.refreshElems(c.model.NotifiedElems()))

	return errors.Join(errs...)
}

// Measure lets the model read the states which change without notification, then queues events
// for the measured elements whose value changed.
func (c *Card) Measure() error {
	if c == nil {
		return fmt.Errorf("card is nil")
	}

	if c.model == nil {
		return fmt.Errorf("no model is attached to %s", c.name)
	}

	var errs []error
	if err := c.model.MeasureStates(); err != nil {
		errs = append(errs, fmt.Errorf("failed to measure states: %w", err))
	}

	errs = append(errs, c.refreshElems(c.model.MeasuredElems()))

	return errors.Join(errs...)
}

// refreshElems reads every element even if some fail, so one bad value does not hide changes
// of the others.
func (c *Card) refreshElems(ids []ElemId) error {
	var errs []error
	for _, id := range ids {
		ctl, err := c.CtlById(id)
		if err != nil {
			errs = append(errs, err)
			continue
		}

		changed, err := c.refresh(ctl)
		if err != nil {
			c.logger.Warn("failed to read element", "elem", id.Name, "error", err)
			errs = append(errs, err)
			continue
		}

		if changed {
			c.queueEvent(ctl)
		}
	}

	return errors.Join(errs...)
}

func (c *Card) refresh(ctl *CardCtl) (bool, error) {
	val := zeroValue(ctl.info)

	handled, err := c.model.Read(ctl.id, &val)
	if err != nil {
		return false, fmt.Errorf("failed to read %s: %w", ctl.id.Name, err)
	}

	if !handled || ctl.value.Equal(val) {
		return false, nil
	}

	ctl.value = val

	return true, nil
}

func (c *Card) queueEvent(ctl *CardCtl) {
	if !c.subscribed {
		return
	}

	c.events = append(c.events, CardEvent{Type: SNDRV_CTL_EVENT_MASK_VALUE, ControlID: ctl.numid})
}

// SubscribeEvents enables or disables event generation for this card. Pending events are dropped
// when disabled.
func (c *Card) SubscribeEvents(enable bool) error {
	if c == nil {
		return fmt.Errorf("card is nil")
	}

	c.subscribed = enable
	if !enable {
		c.events = nil
	}

	return nil
}

// PendingEvents returns the number of queued events.
func (c *Card) PendingEvents() int {
	if c == nil {
		return 0
	}

	return len(c.events)
}

// ReadEvent dequeues the oldest pending event.
func (c *Card) ReadEvent() (*CardEvent, error) {
	if c == nil {
		return nil, fmt.Errorf("card is nil")
	}

	if len(c.events) == 0 {
		return nil, fmt.Errorf("no pending event")
	}

	event := c.events[0]
	c.events = c.events[1:]

	return &event, nil
}

// ConsumeEvent reads and discards a single pending event.
func (c *Card) ConsumeEvent() error {
	if c == nil {
		return fmt.Errorf("card is nil")
	}

	_, err := c.ReadEvent()

	return err
}

func zeroValue(info ElemInfo) ElemValue {
	val := ElemValue{Type: info.Type}

	switch info.Type {
	case SNDRV_CTL_ELEM_TYPE_BOOLEAN:
		val.Bool = make([]bool, info.Count)
	case SNDRV_CTL_ELEM_TYPE_INTEGER:
		val.Int = make([]int32, info.Count)
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		val.Enum = make([]uint32, info.Count)
	case SNDRV_CTL_ELEM_TYPE_BYTES:
		val.Bytes = make([]byte, info.Count)
	}

	return val
}

// Name returns the name of the control.
func (ctl *CardCtl) Name() string {
	if ctl == nil {
		return ""
	}

	return ctl.id.Name
}

// ID returns the numeric ID of the control.
func (ctl *CardCtl) ID() uint32 {
	if ctl == nil {
		return ^uint32(0)
	}

	return ctl.numid
}

// ElemId returns the identifier of the control.
func (ctl *CardCtl) ElemId() ElemId {
	if ctl == nil {
		return ElemId{}
	}

	return ctl.id
}

// Index returns the index of the control among controls of the same name.
func (ctl *CardCtl) Index() uint32 {
	if ctl == nil {
		return 0
	}

	return ctl.id.Index
}

// Type returns the value type of the control.
func (ctl *CardCtl) Type() ElemType {
	if ctl == nil {
		return SNDRV_CTL_ELEM_TYPE_NONE
	}

	return ctl.info.Type
}

// TypeString returns a string representation of the control's type.
func (ctl *CardCtl) TypeString() string {
	return ctl.Type().String()
}

// NumValues returns the number of values the control holds.
func (ctl *CardCtl) NumValues() int {
	if ctl == nil {
		return 0
	}

	return ctl.info.Count
}

// Access returns the access flags of the control.
func (ctl *CardCtl) Access() ElemAccess {
	if ctl == nil {
		return 0
	}

	return ctl.info.Access
}

// IsWritable reports whether the control accepts values.
func (ctl *CardCtl) IsWritable() bool {
	return ctl.Access()&SNDRV_CTL_ELEM_ACCESS_WRITE > 0
}

// Info returns a copy of the metadata of the control.
func (ctl *CardCtl) Info() ElemInfo {
	if ctl == nil {
		return ElemInfo{}
	}

	info := ctl.info
	info.Items = slices.Clone(ctl.info.Items)
	info.Tlv = slices.Clone(ctl.info.Tlv)

	return info
}

// Value returns a copy of the cached value of the control.
func (ctl *CardCtl) Value() ElemValue {
	if ctl == nil {
		return ElemValue{}
	}

	return ctl.value.Clone()
}

// EnumString returns the label of the item at the index.
func (ctl *CardCtl) EnumString(index uint32) (string, error) {
	if ctl == nil {
		return "", fmt.Errorf("control is nil")
	}

	if ctl.info.Type != SNDRV_CTL_ELEM_TYPE_ENUMERATED {
		return "", fmt.Errorf("control %s is not an enumerated type", ctl.id.Name)
	}

	if int(index) >= len(ctl.info.Items) {
		return "", fmt.Errorf("invalid index of %s: %d: %w", ctl.id.Name, index, ErrInvalidValue)
	}

	return ctl.info.Items[index], nil
}

// EnumIndex returns the index of the item with the label.
func (ctl *CardCtl) EnumIndex(label string) (uint32, error) {
	if ctl == nil {
		return 0, fmt.Errorf("control is nil")
	}

	pos := slices.Index(ctl.info.Items, label)
	if pos < 0 {
		return 0, fmt.Errorf("invalid item of %s: %s: %w", ctl.id.Name, label, ErrInvalidValue)
	}

	return uint32(pos), nil
}

func (ctl *CardCtl) validate(val ElemValue) error {
	if !ctl.IsWritable() {
		return fmt.Errorf("control %s is read-only", ctl.id.Name)
	}

	if val.Type != ctl.info.Type {
		return fmt.Errorf("invalid type %s for control %s of type %s", val.Type, ctl.id.Name, ctl.info.Type)
	}

	if val.Len() != ctl.info.Count {
		return fmt.Errorf("invalid number of values for %s: %d, expected %d", ctl.id.Name, val.Len(), ctl.info.Count)
	}

	switch val.Type {
	case SNDRV_CTL_ELEM_TYPE_INTEGER:
		for _, v := range val.Int {
			if v < ctl.info.Min || v > ctl.info.Max || (v-ctl.info.Min)%ctl.info.Step != 0 {
				return fmt.Errorf("value %d out of range %d..%d for %s: %w",
					v, ctl.info.Min, ctl.info.Max, ctl.id.Name, ErrInvalidValue)
			}
		}
	case SNDRV_CTL_ELEM_TYPE_ENUMERATED:
		for _, v := range val.Enum {
			if int(v) >= len(ctl.info.Items) {
				return fmt.Errorf("invalid index of %s: %d: %w", ctl.id.Name, v, ErrInvalidValue)
			}
		}
	}

	return nil
}
