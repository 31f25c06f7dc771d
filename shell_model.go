package dice

import (
	"errors"
	"fmt"
	"strings"
)

// cachedSegment is the part of Segment common to every type of parameters.
type cachedSegment interface {
	Name() string
	Cache(t Transport, timeoutMs int) error
	IsNotified(msg uint32) bool
}

func cacheAny(u *unit, seg cachedSegment) error {
	err := seg.Cache(u.t, u.timeoutMs)
	u.logger.Debug("cache", "segment", seg.Name(), "error", err)

	return err
}

// shellModel is the runtime shared by products of TC Konnekt series. Products register their
// segments and element loaders; the dispatch of notifications and measurements is common.
type shellModel struct {
	*commonCtl

	name      string
	segments  []cachedSegment
	meterSegs []cachedSegment
	effects   *shellEffects
	loaders   []func(card *Card) error
}

func newShellModel(name string, t Transport, opts ...Option) shellModel {
	return shellModel{
		commonCtl: newCommonCtl(newUnit(t, opts...), nil),
		name:      name,
	}
}

// Name implements Model.
func (m *shellModel) Name() string {
	return m.name
}

// Cache implements Model.
func (m *shellModel) Cache() error {
	if err := m.commonCtl.cache(); err != nil {
		return err
	}

	for _, seg := range m.segments {
		if err := cacheAny(m.unit, seg); err != nil {
			return err
		}
	}

	for _, seg := range m.meterSegs {
		if err := cacheAny(m.unit, seg); err != nil {
			return err
		}
	}

	if m.effects != nil {
		return m.effects.cache(m.unit)
	}

	return nil
}

// Load implements Model.
func (m *shellModel) Load(card *Card) error {
	if err := m.commonCtl.load(card); err != nil {
		return err
	}

	for _, load := range m.loaders {
		if err := load(card); err != nil {
			return err
		}
	}

	if m.effects != nil {
		return m.effects.load(&m.ctls, &m.commonCtl.meters, m.unit, card)
	}

	return nil
}

// Read implements Model.
func (m *shellModel) Read(id ElemId, val *ElemValue) (bool, error) {
	return m.commonCtl.read(id, val)
}

// Write implements Model.
func (m *shellModel) Write(id ElemId, _, val *ElemValue) (bool, error) {
	return m.commonCtl.write(id, val)
}

// ParseNotification implements Model. Every notified segment is read even if another one
// fails.
func (m *shellModel) ParseNotification(msg uint32) error {
	errs := []error{m.commonCtl.parseNotification(msg)}

	for _, seg := range m.segments {
		if !seg.IsNotified(msg) {
			continue
		}

		errs = append(errs, cacheAny(m.unit, seg))
	}

	if m.effects != nil {
		errs = append(errs, m.effects.parseNotification(m.unit, msg))
	}

	return errors.Join(errs...)
}

// MeasureStates implements Model.
func (m *shellModel) MeasureStates() error {
	errs := []error{m.commonCtl.measureStates()}

	for _, seg := range m.meterSegs {
		errs = append(errs, cacheAny(m.unit, seg))
	}

	if m.effects != nil {
		errs = append(errs, m.effects.measure(m.unit))
	}

	return errors.Join(errs...)
}

// NotifiedElems implements Model.
func (m *shellModel) NotifiedElems() []ElemId {
	return m.ctls.ids()
}

// MeasuredElems implements Model.
func (m *shellModel) MeasuredElems() []ElemId {
	return m.commonCtl.meters.ids()
}

// TcElectronicVendorID is the IEEE OUI of TC Electronic.
const TcElectronicVendorID = 0x000166

// Model IDs of TC Konnekt series in the configuration ROM.
const (
	K24dModelID      = 0x000020
	K8ModelID        = 0x000021
	KliveModelID     = 0x000023
	DesktopK6ModelID = 0x000024
	ItwinModelID     = 0x000027
)

// ModelNames are the names accepted by NewModelByName.
var ModelNames = []string{"desktopk6", "itwin", "k24d", "k8", "klive"}

// NewModel returns the model for the unit with the IDs in its configuration ROM.
func NewModel(vendorID, modelID uint32, t Transport, opts ...Option) (Model, error) {
	if vendorID != TcElectronicVendorID {
		return nil, fmt.Errorf("unsupported vendor %#06x", vendorID)
	}

	switch modelID {
	case K24dModelID:
		return NewK24dModel(t, opts...), nil
	case K8ModelID:
		return NewK8Model(t, opts...), nil
	case KliveModelID:
		return NewKliveModel(t, opts...), nil
	case DesktopK6ModelID:
		return NewDesktopK6Model(t, opts...), nil
	case ItwinModelID:
		return NewItwinModel(t, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported model %#06x of vendor %#06x", modelID, vendorID)
	}
}

// NewModelByName returns the model with the name, one of ModelNames.
func NewModelByName(name string, t Transport, opts ...Option) (Model, error) {
	switch strings.ToLower(name) {
	case "desktopk6":
		return NewDesktopK6Model(t, opts...), nil
	case "itwin":
		return NewItwinModel(t, opts...), nil
	case "k24d":
		return NewK24dModel(t, opts...), nil
	case "k8":
		return NewK8Model(t, opts...), nil
	case "klive":
		return NewKliveModel(t, opts...), nil
	default:
		return nil, fmt.Errorf("unsupported model name: %s", name)
	}
}

// Names of elements for knobs and configuration of TC Konnekt series.
const (
	KnobTargetName             = "knob-target"
	ConfigurableKnobTargetName = "configurable-knob-target"
	LoadedProgramName          = "loaded-program"
	ClockRecoveryName          = "clock-recovery"
	StandaloneClockSourceName  = "standalone-clock-source"
	StandaloneClockRateName    = "standalone-clock-rate"
	MixerStreamSourceName      = "mixer-stream-source"
	CoaxialOutputSourceName    = "coaxial-output-source"
	OpticalInputFormatName     = "optical-input-format"
	OpticalOutputFormatName    = "optical-output-format"
	OpticalOutputSourceName    = "optical-output-source"
	Output01SourceName         = "output-1/2-source"
	Output34SourceName         = "output-3/4-source"
	OutputSourceName           = "output-source"
	MixerEnableName            = "mixer-enable"
	UseChStripAsPluginName     = "use-channel-strip-as-plugin"
	UseReverbAtMidRateName     = "use-reverb-at-mid-rate"
)

func loadOptIfaceCtl[T any](s *ctlSet, u *unit, card *Card, seg *Segment[T], opt func(*T) *ShellOptIfaceConfig) error {
	if err := addEnumField(s, u, card, OpticalInputFormatName, seg, ShellOptInputIfaceFormats,
		func(p *T) *ShellOptInputIfaceFormat { return &opt(p).InputFormat }); err != nil {
		return err
	}

	if err := addEnumField(s, u, card, OpticalOutputFormatName, seg, ShellOptOutputIfaceFormats,
		func(p *T) *ShellOptOutputIfaceFormat { return &opt(p).OutputFormat }); err != nil {
		return err
	}

	return addEnumField(s, u, card, OpticalOutputSourceName, seg, ShellPhysOutSrcs,
		func(p *T) *ShellPhysOutSrc { return &opt(p).OutputSource })
}

func loadStandaloneCtl[T any](s *ctlSet, u *unit, card *Card, seg *Segment[T], srcs []ShellStandaloneClockSource,
	src func(*T) *ShellStandaloneClockSource, rate func(*T) *StandaloneClockRate) error {
	if err := addEnumField(s, u, card, StandaloneClockSourceName, seg, srcs, src); err != nil {
		return err
	}

	return addEnumField(s, u, card, StandaloneClockRateName, seg, StandaloneClockRates, rate)
}
