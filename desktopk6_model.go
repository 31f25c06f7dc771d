package dice

import "math"

// Names of elements specific to Desktop Konnekt 6.
const (
	MeterTargetName        = "meter-target"
	MixerOutMonauralName   = "mixer-out-monaural"
	KnobAssignToHpName     = "knob-assign-to-headphone"
	SceneSelectName        = "scene-select"
	ReverbToMainName       = "reverb-to-main"
	ReverbToHpName         = "reverb-to-headphone"
	KnobBacklightName      = "knob-backlight"
	Mic0PhantomName        = "mic-1-phantom"
	Mic0BoostName          = "mic-1-boost"
	HpSrcName              = "headphone-source"
	MixerMicInstLevelName  = "mixer-mic-inst-source-level"
	MixerMicInstPanName    = "mixer-mic-inst-source-pan"
	MixerMicInstSendName   = "mixer-mic-inst-source-send"
	MixerDualInstLevelName = "mixer-dual-inst-source-level"
	MixerDualInstPanName   = "mixer-dual-inst-source-pan"
	MixerDualInstSendName  = "mixer-dual-inst-source-send"
	MixerStereoInLevelName = "mixer-stereo-input-source-level"
	MixerStereoInPanName   = "mixer-stereo-input-source-pan"
	MixerStereoInSendName  = "mixer-stereo-input-source-send"
	PanelButtonCountName   = "panel-button-count"
	PhoneKnobValueName     = "phone-knob-value"
	MixKnobValueName       = "mix-knob-value"
	ReverbLedStateName     = "reverb-led-state"
	ReverbKnobValueName    = "reverb-knob-value"
)

var (
	desktopDimRange     = intRange{min: -1000, max: -60, step: 1, tlv: DbInterval{Min: -9400, Max: -600}.Encode()}
	desktopMixKnobRange = intRange{min: 0, max: 1000, step: 1}
	desktopCountRange   = intRange{min: 0, max: math.MaxInt32, step: 1}
)

// DesktopK6Model is the runtime of TC Electronic Desktop Konnekt 6.
type DesktopK6Model struct {
	shellModel

	hw     *Segment[DesktopHwState]
	config *Segment[DesktopConfig]
	mixer  *Segment[DesktopMixerState]
	panel  *Segment[DesktopPanel]
	meter  *Segment[DesktopMeter]
}

var _ Model = (*DesktopK6Model)(nil)

// NewDesktopK6Model returns the model of Desktop Konnekt 6 over the transport.
func NewDesktopK6Model(t Transport, opts ...Option) *DesktopK6Model {
	m := &DesktopK6Model{
		shellModel: newShellModel("Desktop Konnekt 6", t, opts...),
		hw:         NewSegment(DesktopK6HwStateSegment),
		config:     NewSegment(DesktopK6ConfigSegment),
		mixer:      NewSegment(DesktopK6MixerStateSegment),
		panel:      NewSegment(DesktopK6PanelSegment),
		meter:      NewSegment(DesktopK6MeterSegment),
	}

	m.segments = []cachedSegment{m.hw, m.config, m.mixer, m.panel}
	m.meterSegs = []cachedSegment{m.meter}
	m.loaders = []func(*Card) error{m.loadHw, m.loadConfig, m.loadMixer, m.loadPanel, m.loadMeter}

	return m
}

// HwState returns the cached state of the hardware.
func (m *DesktopK6Model) HwState() DesktopHwState { return m.hw.Data() }

// Config returns the cached configuration.
func (m *DesktopK6Model) Config() DesktopConfig { return m.config.Data() }

// MixerState returns the cached state of the mixer.
func (m *DesktopK6Model) MixerState() DesktopMixerState { return m.mixer.Data() }

// Panel returns the cached state of the panel.
func (m *DesktopK6Model) Panel() DesktopPanel { return m.panel.Data() }

// Meter returns the last measured levels.
func (m *DesktopK6Model) Meter() DesktopMeter { return m.meter.Data() }

func (m *DesktopK6Model) loadHw(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, MeterTargetName, m.hw, MeterTargets,
		func(p *DesktopHwState) *MeterTarget { return &p.MeterTarget }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, SceneSelectName, m.hw, InputScenes,
		func(p *DesktopHwState) *InputScene { return &p.InputScene }); err != nil {
		return err
	}

	if err := addInt32Field(&m.ctls, m.unit, card, MixerOutDimVolumeName, desktopDimRange, m.hw,
		func(p *DesktopHwState) *int32 { return &p.MixerOutputDimVolume }); err != nil {
		return err
	}

	bools := []struct {
		name  string
		field func(*DesktopHwState) *bool
	}{
		{MixerOutMonauralName, func(p *DesktopHwState) *bool { return &p.MixerOutputMonaural }},
		{KnobAssignToHpName, func(p *DesktopHwState) *bool { return &p.KnobAssignToHp }},
		{MixerOutDimEnableName, func(p *DesktopHwState) *bool { return &p.MixerOutputDimEnabled }},
		{ReverbToMainName, func(p *DesktopHwState) *bool { return &p.ReverbToMain }},
		{ReverbToHpName, func(p *DesktopHwState) *bool { return &p.ReverbToHp }},
		{KnobBacklightName, func(p *DesktopHwState) *bool { return &p.MasterKnobBacklight }},
		{Mic0PhantomName, func(p *DesktopHwState) *bool { return &p.Mic0Phantom }},
		{Mic0BoostName, func(p *DesktopHwState) *bool { return &p.Mic0Boost }},
	}
	for _, b := range bools {
		if err := addBoolField(&m.ctls, m.unit, card, b.name, m.hw, b.field); err != nil {
			return err
		}
	}

	return nil
}

func (m *DesktopK6Model) loadConfig(card *Card) error {
	return addEnumField(&m.ctls, m.unit, card, StandaloneClockRateName, m.config, StandaloneClockRates,
		func(p *DesktopConfig) *StandaloneClockRate { return &p.StandaloneRate })
}

// addInt32Pair adds an element with two channels for a pair of integer fields.
func addInt32Pair[T any](s *ctlSet, u *unit, card *Card, name string, r intRange, seg *Segment[T], field func(*T) *[2]int32) error {
	return s.addInt(card, name, r, 2, func() []int32 {
		params := seg.Data()
		pair := *field(&params)
		return pair[:]
	}, func(vals []int32) error {
		return updateSegment(u, seg, func(p *T) error {
			copy(field(p)[:], vals)
			return nil
		})
	})
}

func (m *DesktopK6Model) loadMixer(card *Card) error {
	pairs := []struct {
		name  string
		r     intRange
		field func(*DesktopMixerState) *[2]int32
	}{
		{MixerMicInstLevelName, shellLevelRange, func(p *DesktopMixerState) *[2]int32 { return &p.MicInstLevel }},
		{MixerMicInstPanName, shellPanRange, func(p *DesktopMixerState) *[2]int32 { return &p.MicInstPan }},
		{MixerMicInstSendName, shellLevelRange, func(p *DesktopMixerState) *[2]int32 { return &p.MicInstSend }},
		{MixerDualInstLevelName, shellLevelRange, func(p *DesktopMixerState) *[2]int32 { return &p.DualInstLevel }},
		{MixerDualInstPanName, shellPanRange, func(p *DesktopMixerState) *[2]int32 { return &p.DualInstPan }},
		{MixerDualInstSendName, shellLevelRange, func(p *DesktopMixerState) *[2]int32 { return &p.DualInstSend }},
	}
	for _, pair := range pairs {
		if err := addInt32Pair(&m.ctls, m.unit, card, pair.name, pair.r, m.mixer, pair.field); err != nil {
			return err
		}
	}

	singles := []struct {
		name  string
		r     intRange
		field func(*DesktopMixerState) *int32
	}{
		{MixerStereoInLevelName, shellLevelRange, func(p *DesktopMixerState) *int32 { return &p.StereoInLevel }},
		{MixerStereoInPanName, shellPanRange, func(p *DesktopMixerState) *int32 { return &p.StereoInPan }},
		{MixerStereoInSendName, shellLevelRange, func(p *DesktopMixerState) *int32 { return &p.StereoInSend }},
	}
	for _, single := range singles {
		if err := addInt32Field(&m.ctls, m.unit, card, single.name, single.r, m.mixer, single.field); err != nil {
			return err
		}
	}

	return addEnumField(&m.ctls, m.unit, card, HpSrcName, m.mixer, DesktopHpSrcs,
		func(p *DesktopMixerState) *DesktopHpSrc { return &p.HpSrc })
}

// loadPanel adds elements for the panel. The knobs are operated by hand, so their elements
// are read-only.
func (m *DesktopK6Model) loadPanel(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, FirewireLedStateName, m.panel, FireWireLedStates,
		func(p *DesktopPanel) *FireWireLedState { return &p.FirewireLed }); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, ReverbLedStateName, m.panel,
		func(p *DesktopPanel) *bool { return &p.ReverbLedOn }); err != nil {
		return err
	}

	knobs := []struct {
		name string
		r    intRange
		val  func(*DesktopPanel) int32
	}{
		{PanelButtonCountName, desktopCountRange, func(p *DesktopPanel) int32 { return int32(min(p.ButtonCount, math.MaxInt32)) }},
		{MixerOutVolumeName, shellLevelRange, func(p *DesktopPanel) int32 { return p.MainKnob }},
		{PhoneKnobValueName, shellLevelRange, func(p *DesktopPanel) int32 { return p.PhoneKnob }},
		{MixKnobValueName, desktopMixKnobRange, func(p *DesktopPanel) int32 { return int32(min(p.MixKnob, math.MaxInt32)) }},
		{ReverbKnobValueName, shellLevelRange, func(p *DesktopPanel) int32 { return p.ReverbKnob }},
	}
	for _, knob := range knobs {
		if err := m.ctls.addInt(card, knob.name, knob.r, 1, func() []int32 {
			params := m.panel.Data()
			return []int32{knob.val(&params)}
		}, nil); err != nil {
			return err
		}
	}

	return nil
}

func (m *DesktopK6Model) loadMeter(card *Card) error {
	regions := []struct {
		name string
		vals func(*DesktopMeter) [2]int32
	}{
		{AnalogInputMetersName, func(p *DesktopMeter) [2]int32 { return p.AnalogInputs }},
		{MixerOutputMetersName, func(p *DesktopMeter) [2]int32 { return p.MixerOutputs }},
		{StreamInputMetersName, func(p *DesktopMeter) [2]int32 { return p.StreamInputs }},
	}
	for _, region := range regions {
		if err := m.commonCtl.meters.addInt(card, region.name, shellLevelRange, 2, func() []int32 {
			meter := m.meter.Data()
			vals := region.vals(&meter)
			return vals[:]
		}, nil); err != nil {
			return err
		}
	}

	return nil
}
