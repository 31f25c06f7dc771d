package dice

// Names of elements specific to iTwin.
const (
	StreamMixBalanceName = "mixer-stream-mix-balance"
	ListeningModeName    = "listening-mode"
)

var itwinStreamMixBalanceRange = intRange{min: 0, max: 1000, step: 1}

// ItwinModel is the runtime of TC Electronic iTwin.
type ItwinModel struct {
	shellModel

	knob   *Segment[ItwinKnob]
	config *Segment[ItwinConfig]
	mixer  *Segment[ItwinMixerState]
	hw     *Segment[ItwinHwState]
	meter  *Segment[ShellMixerMeter]
}

var _ Model = (*ItwinModel)(nil)

// NewItwinModel returns the model of iTwin over the transport.
func NewItwinModel(t Transport, opts ...Option) *ItwinModel {
	m := &ItwinModel{
		shellModel: newShellModel("iTwin", t, opts...),
		knob:       NewSegment(ItwinKnobSegment),
		config:     NewSegment(ItwinConfigSegment),
		mixer:      NewSegment(ItwinMixerStateSegment),
		hw:         NewSegment(ItwinHwStateSegment),
		meter:      NewSegment(ItwinMixerMeterSegment),
	}

	m.segments = []cachedSegment{m.knob, m.config, m.mixer, m.hw}
	m.meterSegs = []cachedSegment{m.meter}
	m.effects = newShellEffects(ItwinReverbStateSegment, ItwinChStripStatesSegment,
		ItwinReverbMeterSegment, ItwinChStripMetersSegment)
	m.loaders = []func(*Card) error{m.loadKnob, m.loadConfig, m.loadMixer, m.loadHw}

	return m
}

// Knob returns the cached state of the knob.
func (m *ItwinModel) Knob() ItwinKnob { return m.knob.Data() }

// Config returns the cached configuration.
func (m *ItwinModel) Config() ItwinConfig { return m.config.Data() }

// MixerState returns the cached state of the mixer.
func (m *ItwinModel) MixerState() ItwinMixerState { return m.mixer.Data() }

// HwState returns the cached state of the hardware.
func (m *ItwinModel) HwState() ItwinHwState { return m.hw.Data() }

// MixerMeter returns the last measured levels of the mixer.
func (m *ItwinModel) MixerMeter() ShellMixerMeter { return m.meter.Data() }

func (m *ItwinModel) loadKnob(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, KnobTargetName, m.knob, ItwinKnob0Targets,
		func(p *ItwinKnob) *ShellKnob0Target { return &p.Target }); err != nil {
		return err
	}

	return addBoolField(&m.ctls, m.unit, card, ClockRecoveryName, m.knob,
		func(p *ItwinKnob) *bool { return &p.ClockRecovery })
}

func (m *ItwinModel) loadConfig(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, MixerStreamSourceName, m.config, ShellMixerStreamSourcePairs,
		func(p *ItwinConfig) *ShellMixerStreamSourcePair { return &p.MixerStreamSrcPair }); err != nil {
		return err
	}

	if err := loadStandaloneCtl(&m.ctls, m.unit, card, m.config, ItwinStandaloneClockSources,
		func(p *ItwinConfig) *ShellStandaloneClockSource { return &p.StandaloneSrc },
		func(p *ItwinConfig) *StandaloneClockRate { return &p.StandaloneRate }); err != nil {
		return err
	}

	return m.ctls.addEnum(card, MixerElemId(OutputSourceName), enumItems(ItwinOutputPairSrcs), ItwinPhysOutPairCount,
		func() ([]uint32, error) {
			config := m.config.Data()
			vals := make([]uint32, 0, ItwinPhysOutPairCount)
			for _, src := range config.OutputPairSrc {
				pos, err := enumIndex(ItwinOutputPairSrcs, src, "output pair source")
				if err != nil {
					return nil, err
				}
				vals = append(vals, pos)
			}

			return vals, nil
		}, func(vals []uint32) error {
			return updateSegment(m.unit, m.config, func(p *ItwinConfig) error {
				for i := range p.OutputPairSrc {
					src, err := enumValue(ItwinOutputPairSrcs, vals[i], OutputSourceName)
					if err != nil {
						return err
					}
					p.OutputPairSrc[i] = src
				}
				return nil
			})
		})
}

func (m *ItwinModel) loadMixer(card *Card) error {
	if err := loadMixerCtl(&m.ctls, m.unit, card, m.mixer, func(p *ItwinMixerState) *ShellMixerState {
		return &p.Mixer
	}); err != nil {
		return err
	}

	if err := m.ctls.addInt(card, StreamMixBalanceName, itwinStreamMixBalanceRange, 1, func() []int32 {
		return []int32{int32(m.mixer.Data().StreamMixBalance)}
	}, func(vals []int32) error {
		return updateSegment(m.unit, m.mixer, func(p *ItwinMixerState) error {
			p.StreamMixBalance = uint32(vals[0])
			return nil
		})
	}); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, MixerEnableName, m.mixer,
		func(p *ItwinMixerState) *bool { return &p.Enabled }); err != nil {
		return err
	}

	return loadMixerMeterCtl(&m.commonCtl.meters, card, m.meter)
}

func (m *ItwinModel) loadHw(card *Card) error {
	if err := loadHwStateCtl(&m.ctls, m.unit, card, m.hw, func(p *ItwinHwState) *ShellHwState {
		return &p.HwState
	}); err != nil {
		return err
	}

	return addEnumField(&m.ctls, m.unit, card, ListeningModeName, m.hw, ListeningModes,
		func(p *ItwinHwState) *ListeningMode { return &p.ListeningMode })
}
