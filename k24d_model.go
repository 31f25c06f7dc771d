package dice

// K24dModel is the runtime of TC Electronic Konnekt 24d.
type K24dModel struct {
	shellModel

	knob   *Segment[K24dKnob]
	config *Segment[K24dConfig]
	mixer  *Segment[K24dMixerState]
	hw     *Segment[ShellHwState]
	meter  *Segment[ShellMixerMeter]
}

var _ Model = (*K24dModel)(nil)

// NewK24dModel returns the model of Konnekt 24d over the transport.
func NewK24dModel(t Transport, opts ...Option) *K24dModel {
	m := &K24dModel{
		shellModel: newShellModel("Konnekt 24d", t, opts...),
		knob:       NewSegment(K24dKnobSegment),
		config:     NewSegment(K24dConfigSegment),
		mixer:      NewSegment(K24dMixerStateSegment),
		hw:         NewSegment(K24dHwStateSegment),
		meter:      NewSegment(K24dMixerMeterSegment),
	}

	m.segments = []cachedSegment{m.knob, m.config, m.mixer, m.hw}
	m.meterSegs = []cachedSegment{m.meter}
	m.effects = newShellEffects(K24dReverbStateSegment, K24dChStripStatesSegment,
		K24dReverbMeterSegment, K24dChStripMetersSegment)
	m.loaders = []func(*Card) error{m.loadKnob, m.loadConfig, m.loadMixer, m.loadHw}

	return m
}

// Knob returns the cached state of the knobs.
func (m *K24dModel) Knob() K24dKnob { return m.knob.Data() }

// Config returns the cached configuration.
func (m *K24dModel) Config() K24dConfig { return m.config.Data() }

// MixerState returns the cached state of the mixer.
func (m *K24dModel) MixerState() K24dMixerState { return m.mixer.Data() }

// HwState returns the cached state of the hardware.
func (m *K24dModel) HwState() ShellHwState { return m.hw.Data() }

// MixerMeter returns the last measured levels of the mixer.
func (m *K24dModel) MixerMeter() ShellMixerMeter { return m.meter.Data() }

func (m *K24dModel) loadKnob(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, KnobTargetName, m.knob, K24dKnob0Targets,
		func(p *K24dKnob) *ShellKnob0Target { return &p.Knob0Target }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, ConfigurableKnobTargetName, m.knob, K24dKnob1Targets,
		func(p *K24dKnob) *ShellKnob1Target { return &p.Knob1Target }); err != nil {
		return err
	}

	return addEnumField(&m.ctls, m.unit, card, LoadedProgramName, m.knob, LoadedPrograms,
		func(p *K24dKnob) *LoadedProgram { return &p.Prog })
}

func (m *K24dModel) loadConfig(card *Card) error {
	if err := loadOptIfaceCtl(&m.ctls, m.unit, card, m.config,
		func(p *K24dConfig) *ShellOptIfaceConfig { return &p.Opt }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, CoaxialOutputSourceName, m.config, ShellPhysOutSrcs,
		func(p *K24dConfig) *ShellPhysOutSrc { return &p.CoaxOutSrc }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, Output34SourceName, m.config, ShellPhysOutSrcs,
		func(p *K24dConfig) *ShellPhysOutSrc { return &p.Out23Src }); err != nil {
		return err
	}

	return loadStandaloneCtl(&m.ctls, m.unit, card, m.config, K24dStandaloneClockSources,
		func(p *K24dConfig) *ShellStandaloneClockSource { return &p.StandaloneSrc },
		func(p *K24dConfig) *StandaloneClockRate { return &p.StandaloneRate })
}

func (m *K24dModel) loadMixer(card *Card) error {
	if err := loadMixerCtl(&m.ctls, m.unit, card, m.mixer, func(p *K24dMixerState) *ShellMixerState {
		return &p.Mixer
	}); err != nil {
		return err
	}

	if err := loadReverbReturnCtl(&m.ctls, m.unit, card, m.mixer, func(p *K24dMixerState) *ShellReverbReturn {
		return &p.ReverbReturn
	}); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, UseChStripAsPluginName, m.mixer,
		func(p *K24dMixerState) *bool { return &p.UseChStripAsPlugin }); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, UseReverbAtMidRateName, m.mixer,
		func(p *K24dMixerState) *bool { return &p.UseReverbAtMidRate }); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, MixerEnableName, m.mixer,
		func(p *K24dMixerState) *bool { return &p.Enabled }); err != nil {
		return err
	}

	return loadMixerMeterCtl(&m.commonCtl.meters, card, m.meter)
}

func (m *K24dModel) loadHw(card *Card) error {
	return loadHwStateCtl(&m.ctls, m.unit, card, m.hw, func(p *ShellHwState) *ShellHwState { return p })
}
