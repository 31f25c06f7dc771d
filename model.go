package dice

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
)

// Model is the runtime of a product. It caches the state of the unit, adds control elements
// to a card, and maps reads and writes of the elements to the register map.
//
// Read and Write return false for elements the model does not handle.
type Model interface {
	Name() string
	// Cache reads the whole state of the unit.
	Cache() error
	// Load adds the elements of the model to the card.
	Load(card *Card) error
	Read(id ElemId, val *ElemValue) (bool, error)
	Write(id ElemId, old, new *ElemValue) (bool, error)
	// ParseNotification refreshes the state announced by the notification word.
	ParseNotification(msg uint32) error
	// MeasureStates refreshes the state which changes without notification.
	MeasureStates() error
	// NotifiedElems returns the elements whose value may change by notification.
	NotifiedElems() []ElemId
	// MeasuredElems returns the elements whose value may change by measurement.
	MeasuredElems() []ElemId
}

// Option configures a model.
type Option func(*unit)

// WithLogger sets the logger of the model.
func WithLogger(logger *slog.Logger) Option {
	return func(u *unit) {
		if logger != nil {
			u.logger = logger
		}
	}
}

// WithTimeout sets the timeout of transactions in milliseconds.
func WithTimeout(timeoutMs int) Option {
	return func(u *unit) {
		if timeoutMs > 0 {
			u.timeoutMs = timeoutMs
		}
	}
}

// WithLocker sets the locker used while the clock configuration changes.
func WithLocker(locker Locker) Option {
	return func(u *unit) {
		u.locker = locker
	}
}

// unit is the connection to a unit shared by the parts of a model.
type unit struct {
	t         Transport
	locker    Locker
	timeoutMs int
	logger    *slog.Logger
}

func newUnit(t Transport, opts ...Option) *unit {
	u := &unit{
		t:         t,
		timeoutMs: DefaultTimeoutMs,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}

	for _, opt := range opts {
		opt(u)
	}

	return u
}

func cacheSegment[T any](u *unit, seg *Segment[T]) error {
	err := seg.Cache(u.t, u.timeoutMs)
	u.logger.Debug("cache", "segment", seg.Name(), "error", err)

	return err
}

func cacheSegmentIfNotified[T any](u *unit, seg *Segment[T], msg uint32) error {
	if !seg.IsNotified(msg) {
		return nil
	}

	return cacheSegment(u, seg)
}

// updateSegment applies fn to a copy of the cached parameters and writes the difference.
func updateSegment[T any](u *unit, seg *Segment[T], fn func(*T) error) error {
	params := seg.Data()
	if err := fn(&params); err != nil {
		return err
	}

	err := seg.Update(u.t, &params, u.timeoutMs)
	u.logger.Debug("update", "segment", seg.Name(), "error", err)

	return err
}

type elemHandler struct {
	id    ElemId
	read  func(val *ElemValue) error
	write func(val *ElemValue) error
}

// ctlSet is a group of elements with their handlers.
type ctlSet struct {
	handlers []elemHandler
	volatile bool
}

func (s *ctlSet) ids() []ElemId {
	ids := make([]ElemId, 0, len(s.handlers))
	for _, h := range s.handlers {
		ids = append(ids, h.id)
	}

	return ids
}

func (s *ctlSet) find(id ElemId) *elemHandler {
	i := slices.IndexFunc(s.handlers, func(h elemHandler) bool { return h.id == id })
	if i < 0 {
		return nil
	}

	return &s.handlers[i]
}

func (s *ctlSet) read(id ElemId, val *ElemValue) (bool, error) {
	h := s.find(id)
	if h == nil {
		return false, nil
	}

	return true, h.read(val)
}

func (s *ctlSet) write(id ElemId, val *ElemValue) (bool, error) {
	h := s.find(id)
	if h == nil || h.write == nil {
		return false, nil
	}

	return true, h.write(val)
}

func (s *ctlSet) register(card *Card, id ElemId, read, write func(*ElemValue) error) error {
	s.handlers = append(s.handlers, elemHandler{id: id, read: read, write: write})
	if s.volatile {
		return card.MarkVolatile(id)
	}

	return nil
}

func (s *ctlSet) addBool(card *Card, name string, count int, read func() []bool, write func([]bool) error) error {
	id, err := card.AddBoolElem(MixerElemId(name), count, write != nil)
	if err != nil {
		return err
	}

	var w func(*ElemValue) error
	if write != nil {
		w = func(val *ElemValue) error { return write(val.Bool) }
	}

	return s.register(card, id, func(val *ElemValue) error {
		*val = NewBoolValue(read()...)
		return nil
	}, w)
}

// intRange is the range of an integer element.
type intRange struct {
	min  int32
	max  int32
	step int32
	tlv  []uint32
}

func (s *ctlSet) addInt(card *Card, name string, r intRange, count int, read func() []int32, write func([]int32) error) error {
	id, err := card.AddIntElem(MixerElemId(name), r.min, r.max, r.step, count, r.tlv, write != nil)
	if err != nil {
		return err
	}

	var w func(*ElemValue) error
	if write != nil {
		w = func(val *ElemValue) error { return write(val.Int) }
	}

	return s.register(card, id, func(val *ElemValue) error {
		*val = NewIntValue(read()...)
		return nil
	}, w)
}

func (s *ctlSet) addEnum(card *Card, id ElemId, items []string, count int, read func() ([]uint32, error), write func([]uint32) error) error {
	id, err := card.AddEnumElem(id, count, items, write != nil)
	if err != nil {
		return err
	}

	var w func(*ElemValue) error
	if write != nil {
		w = func(val *ElemValue) error { return write(val.Enum) }
	}

	return s.register(card, id, func(val *ElemValue) error {
		vals, err := read()
		if err != nil {
			return err
		}
		*val = NewEnumValue(vals...)

		return nil
	}, w)
}

func (s *ctlSet) addBytes(card *Card, id ElemId, count int, read func() []byte, write func([]byte) error) error {
	id, err := card.AddBytesElem(id, count, write != nil)
	if err != nil {
		return err
	}

	var w func(*ElemValue) error
	if write != nil {
		w = func(val *ElemValue) error { return write(val.Bytes) }
	}

	return s.register(card, id, func(val *ElemValue) error {
		*val = NewBytesValue(read())
		return nil
	}, w)
}

// enumItems returns the labels of a table of enumerated values.
func enumItems[T fmt.Stringer](table []T) []string {
	items := make([]string, len(table))
	for i, v := range table {
		items[i] = v.String()
	}

	return items
}

// enumIndex returns the position of the value in the table.
func enumIndex[T comparable](table []T, val T, label string) (uint32, error) {
	pos := slices.Index(table, val)
	if pos < 0 {
		return 0, fmt.Errorf("unexpected value for %s: %v: %w", label, val, ErrInvalidValue)
	}

	return uint32(pos), nil
}

// enumValue returns the value at the position in the table.
func enumValue[T any](table []T, index uint32, label string) (T, error) {
	var val T
	if int(index) >= len(table) {
		return val, fmt.Errorf("invalid index of %s: %d: %w", label, index, ErrInvalidValue)
	}

	return table[index], nil
}

// addEnumField adds an element selecting one value of the table for a single field of a
// segment.
func addEnumField[T any, E interface {
	comparable
	fmt.Stringer
}](s *ctlSet, u *unit, card *Card, name string, seg *Segment[T], table []E, field func(*T) *E) error {
	var write func([]uint32) error
	if seg.Mutable() {
		write = func(vals []uint32) error {
			val, err := enumValue(table, vals[0], name)
			if err != nil {
				return err
			}

			return updateSegment(u, seg, func(p *T) error {
				*field(p) = val
				return nil
			})
		}
	}

	return s.addEnum(card, MixerElemId(name), enumItems(table), 1, func() ([]uint32, error) {
		params := seg.Data()
		pos, err := enumIndex(table, *field(&params), name)
		if err != nil {
			return nil, err
		}

		return []uint32{pos}, nil
	}, write)
}

// addBoolField adds an element for a single boolean field of a segment.
func addBoolField[T any](s *ctlSet, u *unit, card *Card, name string, seg *Segment[T], field func(*T) *bool) error {
	return s.addBool(card, name, 1, func() []bool {
		params := seg.Data()
		return []bool{*field(&params)}
	}, func(vals []bool) error {
		return updateSegment(u, seg, func(p *T) error {
			*field(p) = vals[0]
			return nil
		})
	})
}

// Names of elements common to DICE units.
const (
	ClockRateName          = "clock-rate"
	ClockSourceName        = "clock-source"
	NicknameName           = "nickname"
	LockedClockSourceName  = "locked-clock-source"
	SlippedClockSourceName = "slipped-clock-source"
)

// commonCtl serves the sections defined by the general protocol: the global section and the
// stream format sections.
type commonCtl struct {
	*unit

	globalSpec *GlobalSpec
	sections   GeneralSections
	global     *SectionCache[GlobalParameters]
	tx         *SectionCache[TxStreamFormatParameters]
	rx         *SectionCache[RxStreamFormatParameters]

	ctls   ctlSet
	meters ctlSet
}

func newCommonCtl(u *unit, spec *GlobalSpec) *commonCtl {
	if spec == nil {
		spec = DefaultGlobalSpec()
	}

	return &commonCtl{
		unit:       u,
		globalSpec: spec,
		meters:     ctlSet{volatile: true},
	}
}

func (c *commonCtl) cache() error {
	sections, err := ReadGeneralSections(c.t, c.timeoutMs)
	if err != nil {
		return err
	}
	c.sections = *sections

	c.global = NewSectionCache[GlobalParameters](c.globalSpec, sections.Global)
	if err := c.global.Cache(c.t, c.timeoutMs); err != nil {
		return err
	}

	c.tx = NewSectionCache[TxStreamFormatParameters](TxStreamFormatSpec{}, sections.TxStreamFormat)
	if err := c.tx.Cache(c.t, c.timeoutMs); err != nil {
		return err
	}

	c.rx = NewSectionCache[RxStreamFormatParameters](RxStreamFormatSpec{}, sections.RxStreamFormat)

	return c.rx.Cache(c.t, c.timeoutMs)
}

// Sections returns the location of the general sections.
func (c *commonCtl) Sections() GeneralSections {
	return c.sections
}

// Global returns the cached parameters of the global section.
func (c *commonCtl) Global() GlobalParameters {
	if c.global == nil {
		return GlobalParameters{}
	}

	return c.global.Params()
}

// TxStreamFormat returns the cached formats of the transmitted streams.
func (c *commonCtl) TxStreamFormat() TxStreamFormatParameters {
	if c.tx == nil {
		return TxStreamFormatParameters{}
	}

	return c.tx.Params()
}

// RxStreamFormat returns the cached formats of the received streams.
func (c *commonCtl) RxStreamFormat() RxStreamFormatParameters {
	if c.rx == nil {
		return RxStreamFormatParameters{}
	}

	return c.rx.Params()
}

func (c *commonCtl) load(card *Card) error {
	params := c.global.Params()

	rateItems := enumItems(params.AvailRates)
	if err := c.ctls.addEnum(card, CardElemId(ClockRateName), rateItems, 1, func() ([]uint32, error) {
		p := c.global.Params()
		pos, err := enumIndex(p.AvailRates, p.ClockConfig.Rate, "clock rate")
		if err != nil {
			return nil, err
		}

		return []uint32{pos}, nil
	}, func(vals []uint32) error {
		return c.updateClockConfig(func(config *ClockConfig, p *GlobalParameters) error {
			if int(vals[0]) >= len(p.AvailRates) {
				return fmt.Errorf("invalid value for index of rate: %d greater than %d: %w",
					vals[0], len(p.AvailRates), ErrInvalidValue)
			}
			config.Rate = p.AvailRates[vals[0]]

			return nil
		})
	}); err != nil {
		return err
	}

	srcItems := make([]string, 0, len(params.AvailSources))
	for _, src := range params.AvailSources {
		label := src.String()
		for _, l := range params.ClockSourceLabels {
			if l.Source == src {
				label = l.Label
			}
		}
		srcItems = append(srcItems, label)
	}

	if err := c.ctls.addEnum(card, CardElemId(ClockSourceName), srcItems, 1, func() ([]uint32, error) {
		p := c.global.Params()
		pos, err := enumIndex(p.AvailSources, p.ClockConfig.Src, "clock source")
		if err != nil {
			return nil, err
		}

		return []uint32{pos}, nil
	}, func(vals []uint32) error {
		return c.updateClockConfig(func(config *ClockConfig, p *GlobalParameters) error {
			if int(vals[0]) >= len(p.AvailSources) {
				return fmt.Errorf("invalid value for index of source: %d greater than %d: %w",
					vals[0], len(p.AvailSources), ErrInvalidValue)
			}
			config.Src = p.AvailSources[vals[0]]

			return nil
		})
	}); err != nil {
		return err
	}

	if err := c.ctls.addBytes(card, CardElemId(NicknameName), NicknameMaxSize, func() []byte {
		raw := make([]byte, NicknameMaxSize)
		copy(raw, c.global.Params().Nickname)

		return raw
	}, func(vals []byte) error {
		nickname := string(vals)
		if i := bytes.IndexByte(vals, 0); i >= 0 {
			nickname = string(vals[:i])
		}

		p := c.global.Params()
		p.Nickname = nickname

		err := c.global.Update(c.t, &p, c.timeoutMs)
		c.logger.Debug("update", "section", "global", "error", err)

		return err
	}); err != nil {
		return err
	}

	count := len(params.ExternalSources.Sources)
	if count == 0 {
		return nil
	}

	if _, err := card.AddBoolElem(CardElemId(LockedClockSourceName), count, false); err != nil {
		return err
	}
	if err := c.ctls.register(card, CardElemId(LockedClockSourceName), func(val *ElemValue) error {
		*val = NewBoolValue(slices.Clone(c.global.Params().ExternalSources.Locked)...)
		return nil
	}, nil); err != nil {
		return err
	}

	if _, err := card.AddBoolElem(CardElemId(SlippedClockSourceName), count, false); err != nil {
		return err
	}

	return c.meters.register(card, CardElemId(SlippedClockSourceName), func(val *ElemValue) error {
		*val = NewBoolValue(slices.Clone(c.global.Params().ExternalSources.Slipped)...)
		return nil
	}, nil)
}

// updateClockConfig changes the clock configuration while the unit is locked. The section is
// read again first since the unit may have changed it on its own.
func (c *commonCtl) updateClockConfig(fn func(config *ClockConfig, params *GlobalParameters) error) error {
	return WithDeviceLock(c.locker, func() error {
		if err := c.global.Cache(c.t, c.timeoutMs); err != nil {
			return err
		}

		params := c.global.Params()
		if err := fn(&params.ClockConfig, &params); err != nil {
			return err
		}

		err := c.global.Update(c.t, &params, c.timeoutMs)
		c.logger.Debug("update", "section", "global", "rate", params.ClockConfig.Rate, "source", params.ClockConfig.Src, "error", err)

		return err
	})
}

func (c *commonCtl) read(id ElemId, val *ElemValue) (bool, error) {
	if handled, err := c.ctls.read(id, val); handled {
		return true, err
	}

	return c.meters.read(id, val)
}

func (c *commonCtl) write(id ElemId, val *ElemValue) (bool, error) {
	return c.ctls.write(id, val)
}

func (c *commonCtl) parseNotification(msg uint32) error {
	var errs []error

	if SectionNotified(NOTIFY_GLOBAL_SECTION, msg) {
		errs = append(errs, c.global.Cache(c.t, c.timeoutMs))
	}

	if SectionNotified(NOTIFY_TX_CFG_CHG, msg) {
		errs = append(errs, c.tx.Cache(c.t, c.timeoutMs))
	}

	if SectionNotified(NOTIFY_RX_CFG_CHG, msg) {
		errs = append(errs, c.rx.Cache(c.t, c.timeoutMs))
	}

	return errors.Join(errs...)
}

func (c *commonCtl) measureStates() error {
	return c.global.CachePartially(c.t, GlobalFluctuatedOffsets, c.timeoutMs)
}
