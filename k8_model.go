package dice

// AuxInputEnableName is the name of the element for the auxiliary input of Konnekt 8.
const AuxInputEnableName = "aux-input-enable"

// K8Model is the runtime of TC Electronic Konnekt 8. It has no effects.
type K8Model struct {
	shellModel

	knob   *Segment[K8Knob]
	config *Segment[K8Config]
	mixer  *Segment[K8MixerState]
	hw     *Segment[K8HwState]
	meter  *Segment[ShellMixerMeter]
}

var _ Model = (*K8Model)(nil)

// NewK8Model returns the model of Konnekt 8 over the transport.
func NewK8Model(t Transport, opts ...Option) *K8Model {
	m := &K8Model{
		shellModel: newShellModel("Konnekt 8", t, opts...),
		knob:       NewSegment(K8KnobSegment),
		config:     NewSegment(K8ConfigSegment),
		mixer:      NewSegment(K8MixerStateSegment),
		hw:         NewSegment(K8HwStateSegment),
		meter:      NewSegment(K8MixerMeterSegment),
	}

	m.segments = []cachedSegment{m.knob, m.config, m.mixer, m.hw}
	m.meterSegs = []cachedSegment{m.meter}
	m.loaders = []func(*Card) error{m.loadKnob, m.loadConfig, m.loadMixer, m.loadHw}

	return m
}

// Knob returns the cached state of the knobs.
func (m *K8Model) Knob() K8Knob { return m.knob.Data() }

// Config returns the cached configuration.
func (m *K8Model) Config() K8Config { return m.config.Data() }

// MixerState returns the cached state of the mixer.
func (m *K8Model) MixerState() K8MixerState { return m.mixer.Data() }

// HwState returns the cached state of the hardware.
func (m *K8Model) HwState() K8HwState { return m.hw.Data() }

// MixerMeter returns the last measured levels of the mixer.
func (m *K8Model) MixerMeter() ShellMixerMeter { return m.meter.Data() }

func (m *K8Model) loadKnob(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, KnobTargetName, m.knob, K8Knob0Targets,
		func(p *K8Knob) *ShellKnob0Target { return &p.Knob0Target }); err != nil {
		return err
	}

	return addEnumField(&m.ctls, m.unit, card, ConfigurableKnobTargetName, m.knob, K8Knob1Targets,
		func(p *K8Knob) *ShellKnob1Target { return &p.Knob1Target })
}

func (m *K8Model) loadConfig(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, CoaxialOutputSourceName, m.config, ShellPhysOutSrcs,
		func(p *K8Config) *ShellPhysOutSrc { return &p.CoaxOutSrc }); err != nil {
		return err
	}

	return loadStandaloneCtl(&m.ctls, m.unit, card, m.config, K8StandaloneClockSources,
		func(p *K8Config) *ShellStandaloneClockSource { return &p.StandaloneSrc },
		func(p *K8Config) *StandaloneClockRate { return &p.StandaloneRate })
}

func (m *K8Model) loadMixer(card *Card) error {
	if err := loadMixerCtl(&m.ctls, m.unit, card, m.mixer, func(p *K8MixerState) *ShellMixerState {
		return &p.Mixer
	}); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, MixerEnableName, m.mixer,
		func(p *K8MixerState) *bool { return &p.Enabled }); err != nil {
		return err
	}

	return loadMixerMeterCtl(&m.commonCtl.meters, card, m.meter)
}

func (m *K8Model) loadHw(card *Card) error {
	if err := loadHwStateCtl(&m.ctls, m.unit, card, m.hw, func(p *K8HwState) *ShellHwState {
		return &p.HwState
	}); err != nil {
		return err
	}

	return addBoolField(&m.ctls, m.unit, card, AuxInputEnableName, m.hw,
		func(p *K8HwState) *bool { return &p.AuxInputEnabled })
}
