package dice

// Names of elements specific to Konnekt Live.
const (
	OutputImpedanceName    = "output-impedance"
	ChStripSourceName      = "channel-strip-source"
	ChStripModeName        = "channel-strip-mode"
	MidiSenderChannelName  = "midi-sender-channel"
	MidiSenderCcName       = "midi-sender-control-change"
	MidiSenderToPortName   = "midi-sender-to-port"
	MidiSenderToStreamName = "midi-sender-to-stream"
)

var (
	midiChannelRange = intRange{min: 0, max: 15, step: 1}
	midiCcRange      = intRange{min: 0, max: 127, step: 1}
)

// KliveModel is the runtime of TC Electronic Konnekt Live.
type KliveModel struct {
	shellModel

	knob   *Segment[KliveKnob]
	config *Segment[KliveConfig]
	mixer  *Segment[KliveMixerState]
	hw     *Segment[ShellHwState]
	meter  *Segment[ShellMixerMeter]
}

var _ Model = (*KliveModel)(nil)

// NewKliveModel returns the model of Konnekt Live over the transport.
func NewKliveModel(t Transport, opts ...Option) *KliveModel {
	m := &KliveModel{
		shellModel: newShellModel("Konnekt Live", t, opts...),
		knob:       NewSegment(KliveKnobSegment),
		config:     NewSegment(KliveConfigSegment),
		mixer:      NewSegment(KliveMixerStateSegment),
		hw:         NewSegment(KliveHwStateSegment),
		meter:      NewSegment(KliveMixerMeterSegment),
	}

	m.segments = []cachedSegment{m.knob, m.config, m.mixer, m.hw}
	m.meterSegs = []cachedSegment{m.meter}
	m.effects = newShellEffects(KliveReverbStateSegment, KliveChStripStatesSegment,
		KliveReverbMeterSegment, KliveChStripMetersSegment)
	m.loaders = []func(*Card) error{m.loadKnob, m.loadConfig, m.loadMidiSender, m.loadMixer, m.loadHw}

	return m
}

// Knob returns the cached state of the knobs.
func (m *KliveModel) Knob() KliveKnob { return m.knob.Data() }

// Config returns the cached configuration.
func (m *KliveModel) Config() KliveConfig { return m.config.Data() }

// MixerState returns the cached state of the mixer.
func (m *KliveModel) MixerState() KliveMixerState { return m.mixer.Data() }

// HwState returns the cached state of the hardware.
func (m *KliveModel) HwState() ShellHwState { return m.hw.Data() }

// MixerMeter returns the last measured levels of the mixer.
func (m *KliveModel) MixerMeter() ShellMixerMeter { return m.meter.Data() }

func (m *KliveModel) loadKnob(card *Card) error {
	if err := addEnumField(&m.ctls, m.unit, card, KnobTargetName, m.knob, KliveKnob0Targets,
		func(p *KliveKnob) *ShellKnob0Target { return &p.Knob0Target }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, ConfigurableKnobTargetName, m.knob, KliveKnob1Targets,
		func(p *KliveKnob) *ShellKnob1Target { return &p.Knob1Target }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, LoadedProgramName, m.knob, LoadedPrograms,
		func(p *KliveKnob) *LoadedProgram { return &p.Prog }); err != nil {
		return err
	}

	count := len(KliveKnob{}.OutImpedance)

	return m.ctls.addEnum(card, MixerElemId(OutputImpedanceName), enumItems(OutputImpedances), count,
		func() ([]uint32, error) {
			knob := m.knob.Data()
			vals := make([]uint32, 0, count)
			for _, impedance := range knob.OutImpedance {
				pos, err := enumIndex(OutputImpedances, impedance, "output impedance")
				if err != nil {
					return nil, err
				}
				vals = append(vals, pos)
			}

			return vals, nil
		}, func(vals []uint32) error {
			return updateSegment(m.unit, m.knob, func(p *KliveKnob) error {
				for i := range p.OutImpedance {
					impedance, err := enumValue(OutputImpedances, vals[i], OutputImpedanceName)
					if err != nil {
						return err
					}
					p.OutImpedance[i] = impedance
				}
				return nil
			})
		})
}

func (m *KliveModel) loadConfig(card *Card) error {
	if err := loadOptIfaceCtl(&m.ctls, m.unit, card, m.config,
		func(p *KliveConfig) *ShellOptIfaceConfig { return &p.Opt }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, CoaxialOutputSourceName, m.config, ShellPhysOutSrcs,
		func(p *KliveConfig) *ShellPhysOutSrc { return &p.CoaxOutSrc }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, Output01SourceName, m.config, ShellPhysOutSrcs,
		func(p *KliveConfig) *ShellPhysOutSrc { return &p.Out01Src }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, Output34SourceName, m.config, ShellPhysOutSrcs,
		func(p *KliveConfig) *ShellPhysOutSrc { return &p.Out23Src }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, MixerStreamSourceName, m.config, KliveMixerStreamSourcePairs,
		func(p *KliveConfig) *ShellMixerStreamSourcePair { return &p.MixerStreamSrcPair }); err != nil {
		return err
	}

	return loadStandaloneCtl(&m.ctls, m.unit, card, m.config, KliveStandaloneClockSources,
		func(p *KliveConfig) *ShellStandaloneClockSource { return &p.StandaloneSrc },
		func(p *KliveConfig) *StandaloneClockRate { return &p.StandaloneRate })
}

// The first value of each element is for the normal knob, the second for the pushed one.
func (m *KliveModel) loadMidiSender(card *Card) error {
	msgs := func(p *KliveConfig) [2]*MidiMsgParams {
		return [2]*MidiMsgParams{&p.MidiSender.Normal, &p.MidiSender.Pushed}
	}

	if err := m.ctls.addInt(card, MidiSenderChannelName, midiChannelRange, 2, func() []int32 {
		config := m.config.Data()
		return []int32{int32(config.MidiSender.Normal.Ch), int32(config.MidiSender.Pushed.Ch)}
	}, func(vals []int32) error {
		return updateSegment(m.unit, m.config, func(p *KliveConfig) error {
			for i, msg := range msgs(p) {
				msg.Ch = uint8(vals[i])
			}
			return nil
		})
	}); err != nil {
		return err
	}

	if err := m.ctls.addInt(card, MidiSenderCcName, midiCcRange, 2, func() []int32 {
		config := m.config.Data()
		return []int32{int32(config.MidiSender.Normal.Cc), int32(config.MidiSender.Pushed.Cc)}
	}, func(vals []int32) error {
		return updateSegment(m.unit, m.config, func(p *KliveConfig) error {
			for i, msg := range msgs(p) {
				msg.Cc = uint8(vals[i])
			}
			return nil
		})
	}); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, MidiSenderToPortName, m.config,
		func(p *KliveConfig) *bool { return &p.MidiSender.SendToPort }); err != nil {
		return err
	}

	return addBoolField(&m.ctls, m.unit, card, MidiSenderToStreamName, m.config,
		func(p *KliveConfig) *bool { return &p.MidiSender.SendToStream })
}

func (m *KliveModel) loadMixer(card *Card) error {
	if err := loadMixerCtl(&m.ctls, m.unit, card, m.mixer, func(p *KliveMixerState) *ShellMixerState {
		return &p.Mixer
	}); err != nil {
		return err
	}

	if err := loadReverbReturnCtl(&m.ctls, m.unit, card, m.mixer, func(p *KliveMixerState) *ShellReverbReturn {
		return &p.ReverbReturn
	}); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, UseChStripAsPluginName, m.mixer,
		func(p *KliveMixerState) *bool { return &p.UseChStripAsPlugin }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, ChStripSourceName, m.mixer, KliveChStripSrcs,
		func(p *KliveMixerState) *KliveChStripSrc { return &p.ChStripSrc }); err != nil {
		return err
	}

	if err := addEnumField(&m.ctls, m.unit, card, ChStripModeName, m.mixer, KliveChStripModes,
		func(p *KliveMixerState) *KliveChStripMode { return &p.ChStripMode }); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, UseReverbAtMidRateName, m.mixer,
		func(p *KliveMixerState) *bool { return &p.UseReverbAtMidRate }); err != nil {
		return err
	}

	if err := addBoolField(&m.ctls, m.unit, card, MixerEnableName, m.mixer,
		func(p *KliveMixerState) *bool { return &p.Enabled }); err != nil {
		return err
	}

	return loadMixerMeterCtl(&m.commonCtl.meters, card, m.meter)
}

func (m *KliveModel) loadHw(card *Card) error {
	return loadHwStateCtl(&m.ctls, m.unit, card, m.hw, func(p *ShellHwState) *ShellHwState { return p })
}
