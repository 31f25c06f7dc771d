package dice

import (
	"errors"
	"fmt"
	"slices"
)

var (
	reverbInputLevelRange  = intRange{min: -240, max: 0, step: 1}
	reverbOutputLevelRange = intRange{min: -240, max: 120, step: 1}
	reverbTimeDecayRange   = intRange{min: 1, max: 290, step: 1}
	reverbPreDecayRange    = intRange{min: 0, max: 100, step: 1}
	reverbColorRange       = intRange{min: -50, max: 50, step: 1}
	reverbFactorRange      = intRange{min: -25, max: 25, step: 1}
	reverbLevelRange       = intRange{min: -48, max: 0, step: 1}
	reverbOutputMeterRange = intRange{min: -1000, max: 500, step: 1}
	reverbInputMeterRange  = intRange{min: -1000, max: 0, step: 1}

	chStripCompGainRange    = intRange{min: 0, max: 36, step: 1}
	chStripCompCtlRange     = intRange{min: 0, max: 200, step: 1}
	chStripCompLevelRange   = intRange{min: 0, max: 48, step: 1}
	chStripDeesserRange     = intRange{min: 0, max: 10, step: 1}
	chStripEqBandwidthRange = intRange{min: 0, max: 39, step: 1}
	chStripEqGainRange      = intRange{min: 0, max: 240, step: 1}
	chStripEqFreqRange      = intRange{min: 0, max: 240, step: 1}
	chStripLimitterRange    = intRange{min: 0, max: 72, step: 1}
	chStripLimitMeterRange  = intRange{min: -12, max: 0, step: 1}
	chStripLevelMeterRange  = intRange{min: -72, max: 0, step: 1}
	chStripGainMeterRange   = intRange{min: -24, max: 18, step: 1}
)

// Names of elements for the reverb effect.
const (
	ReverbInputLevelName      = "reverb-input-level"
	ReverbBypassName          = "reverb-bypass"
	ReverbKillWetName         = "reverb-kill-wet"
	ReverbKillDryName         = "reverb-kill-dry"
	ReverbOutputLevelName     = "reverb-output-level"
	ReverbTimeDecayName       = "reverb-time-decay"
	ReverbTimePreDecayName    = "reverb-time-pre-decay"
	ReverbColorLowName        = "reverb-color-low"
	ReverbColorHighName       = "reverb-color-high"
	ReverbColorHighFactorName = "reverb-color-high-factor"
	ReverbModRateName         = "reverb-mod-rate"
	ReverbModDepthName        = "reverb-mod-depth"
	ReverbLevelEarlyName      = "reverb-level-early"
	ReverbLevelReverbName     = "reverb-level-reverb"
	ReverbLevelDryName        = "reverb-level-dry"
	ReverbAlgorithmName       = "reverb-algorithm"
	ReverbOutputMeterName     = "reverb-output-meter"
	ReverbInputMeterName      = "reverb-input-meter"
)

func loadReverbCtl(s *ctlSet, u *unit, card *Card, seg *Segment[ReverbState]) error {
	ints := []struct {
		name  string
		r     intRange
		field func(*ReverbState) *int32
	}{
		{ReverbInputLevelName, reverbInputLevelRange, func(p *ReverbState) *int32 { return &p.InputLevel }},
		{ReverbOutputLevelName, reverbOutputLevelRange, func(p *ReverbState) *int32 { return &p.OutputLevel }},
		{ReverbTimeDecayName, reverbTimeDecayRange, func(p *ReverbState) *int32 { return &p.TimeDecay }},
		{ReverbTimePreDecayName, reverbPreDecayRange, func(p *ReverbState) *int32 { return &p.TimePreDecay }},
		{ReverbColorLowName, reverbColorRange, func(p *ReverbState) *int32 { return &p.ColorLow }},
		{ReverbColorHighName, reverbColorRange, func(p *ReverbState) *int32 { return &p.ColorHigh }},
		{ReverbColorHighFactorName, reverbFactorRange, func(p *ReverbState) *int32 { return &p.ColorHighFactor }},
		{ReverbModRateName, reverbFactorRange, func(p *ReverbState) *int32 { return &p.ModRate }},
		{ReverbModDepthName, reverbFactorRange, func(p *ReverbState) *int32 { return &p.ModDepth }},
		{ReverbLevelEarlyName, reverbLevelRange, func(p *ReverbState) *int32 { return &p.LevelEarly }},
		{ReverbLevelReverbName, reverbLevelRange, func(p *ReverbState) *int32 { return &p.LevelReverb }},
		{ReverbLevelDryName, reverbLevelRange, func(p *ReverbState) *int32 { return &p.LevelDry }},
	}

	for _, e := range ints {
		if err := addInt32Field(s, u, card, e.name, e.r, seg, e.field); err != nil {
			return err
		}
	}

	bools := []struct {
		name  string
		field func(*ReverbState) *bool
	}{
		{ReverbBypassName, func(p *ReverbState) *bool { return &p.Bypass }},
		{ReverbKillWetName, func(p *ReverbState) *bool { return &p.KillWet }},
		{ReverbKillDryName, func(p *ReverbState) *bool { return &p.KillDry }},
	}

	for _, e := range bools {
		if err := addBoolField(s, u, card, e.name, seg, e.field); err != nil {
			return err
		}
	}

	return addEnumField(s, u, card, ReverbAlgorithmName, seg, ReverbAlgorithms, func(p *ReverbState) *ReverbAlgorithm {
		return &p.Algorithm
	})
}

func loadReverbMeterCtl(meters *ctlSet, card *Card, seg *Segment[ReverbMeter]) error {
	if err := meters.addInt(card, ReverbOutputMeterName, reverbOutputMeterRange, 2, func() []int32 {
		meter := seg.Data()
		return meter.Outputs[:]
	}, nil); err != nil {
		return err
	}

	return meters.addInt(card, ReverbInputMeterName, reverbInputMeterRange, 2, func() []int32 {
		meter := seg.Data()
		return meter.Inputs[:]
	}, nil)
}

// Names of elements for the channel strip effects. Every element has one value per effect.
const (
	ChStripSrcTypeName           = "ch-strip-source-type"
	ChStripCompInputGainName     = "ch-strip-comp-input-gain"
	ChStripCompMakeUpGainName    = "ch-strip-comp-make-up-gain"
	ChStripCompFullBandName      = "ch-strip-comp-full-band-enable"
	ChStripDeesserRatioName      = "ch-strip-deesser-ratio"
	ChStripDeesserBypassName     = "ch-strip-deesser-bypass"
	ChStripEqBypassName          = "ch-strip-eq-bypass"
	ChStripLimitterThresholdName = "ch-strip-limitter-threshold"
	ChStripLimitterBypassName    = "ch-strip-limitter-bypass"
	ChStripBypassName            = "ch-strip-bypass"
	ChStripInputMeterName        = "ch-strip-input-meter"
	ChStripLimitMeterName        = "ch-strip-limit-meter"
	ChStripOutputMeterName       = "ch-strip-output-meter"
)

var (
	chStripCompBandNames = []string{"low", "mid", "high"}
	chStripEqBandNames   = []string{"low", "low-middle", "high-middle", "high"}
)

type chStripU32Field struct {
	name  string
	r     intRange
	field func(*ChStripState) *uint32
}

func addChStripU32(s *ctlSet, u *unit, card *Card, seg *Segment[ChStripStates], name string, r intRange, field func(*ChStripState) *uint32) error {
	return s.addInt(card, name, r, ShellChStripCount, func() []int32 {
		states := seg.Data()
		vals := make([]int32, len(states))
		for i := range states {
			vals[i] = int32(*field(&states[i]))
		}

		return vals
	}, func(vals []int32) error {
		return updateSegment(u, seg, func(states *ChStripStates) error {
			for i := range states {
				*field(&states[i]) = uint32(vals[i])
			}
			return nil
		})
	})
}

func addChStripBool(s *ctlSet, u *unit, card *Card, seg *Segment[ChStripStates], name string, field func(*ChStripState) *bool) error {
	return s.addBool(card, name, ShellChStripCount, func() []bool {
		states := seg.Data()
		vals := make([]bool, len(states))
		for i := range states {
			vals[i] = *field(&states[i])
		}

		return vals
	}, func(vals []bool) error {
		return updateSegment(u, seg, func(states *ChStripStates) error {
			for i := range states {
				*field(&states[i]) = vals[i]
			}
			return nil
		})
	})
}

func loadChStripCtl(s *ctlSet, u *unit, card *Card, seg *Segment[ChStripStates]) error {
	if err := s.addEnum(card, MixerElemId(ChStripSrcTypeName), enumItems(ChStripSrcTypes), ShellChStripCount,
		func() ([]uint32, error) {
			states := seg.Data()
			vals := make([]uint32, len(states))
			for i := range states {
				pos, err := enumIndex(ChStripSrcTypes, states[i].SrcType, "channel strip source type")
				if err != nil {
					return nil, err
				}
				vals[i] = pos
			}

			return vals, nil
		}, func(vals []uint32) error {
			return updateSegment(u, seg, func(states *ChStripStates) error {
				for i := range states {
					t, err := enumValue(ChStripSrcTypes, vals[i], ChStripSrcTypeName)
					if err != nil {
						return err
					}
					states[i].SrcType = t
				}
				return nil
			})
		}); err != nil {
		return err
	}

	u32s := []chStripU32Field{
		{ChStripCompInputGainName, chStripCompGainRange, func(p *ChStripState) *uint32 { return &p.Comp.InputGain }},
		{ChStripCompMakeUpGainName, chStripCompGainRange, func(p *ChStripState) *uint32 { return &p.Comp.MakeUpGain }},
		{ChStripDeesserRatioName, chStripDeesserRange, func(p *ChStripState) *uint32 { return &p.Deesser.Ratio }},
		{ChStripLimitterThresholdName, chStripLimitterRange, func(p *ChStripState) *uint32 { return &p.Limitter.Threshold }},
	}

	for i, band := range chStripCompBandNames {
		u32s = append(u32s,
			chStripU32Field{"ch-strip-comp-ctl-" + band, chStripCompCtlRange, func(p *ChStripState) *uint32 { return &p.Comp.Ctl[i] }},
			chStripU32Field{"ch-strip-comp-level-" + band, chStripCompLevelRange, func(p *ChStripState) *uint32 { return &p.Comp.Level[i] }},
		)
	}

	for _, e := range u32s {
		if err := addChStripU32(s, u, card, seg, e.name, e.r, e.field); err != nil {
			return err
		}
	}

	for i, band := range chStripEqBandNames {
		if err := addChStripBool(s, u, card, seg, fmt.Sprintf("ch-strip-eq-enable-%s", band), func(p *ChStripState) *bool {
			return &p.Eq[i].Enabled
		}); err != nil {
			return err
		}
		if err := addChStripU32(s, u, card, seg, fmt.Sprintf("ch-strip-eq-bandwidth-%s", band), chStripEqBandwidthRange, func(p *ChStripState) *uint32 {
			return &p.Eq[i].Bandwidth
		}); err != nil {
			return err
		}
		if err := addChStripU32(s, u, card, seg, fmt.Sprintf("ch-strip-eq-gain-%s", band), chStripEqGainRange, func(p *ChStripState) *uint32 {
			return &p.Eq[i].Gain
		}); err != nil {
			return err
		}
		if err := addChStripU32(s, u, card, seg, fmt.Sprintf("ch-strip-eq-freq-%s", band), chStripEqFreqRange, func(p *ChStripState) *uint32 {
			return &p.Eq[i].Freq
		}); err != nil {
			return err
		}
	}

	bools := []struct {
		name  string
		field func(*ChStripState) *bool
	}{
		{ChStripCompFullBandName, func(p *ChStripState) *bool { return &p.Comp.FullBandEnabled }},
		{ChStripDeesserBypassName, func(p *ChStripState) *bool { return &p.Deesser.Bypass }},
		{ChStripEqBypassName, func(p *ChStripState) *bool { return &p.EqBypass }},
		{ChStripLimitterBypassName, func(p *ChStripState) *bool { return &p.LimitterBypass }},
		{ChStripBypassName, func(p *ChStripState) *bool { return &p.Bypass }},
	}

	for _, e := range bools {
		if err := addChStripBool(s, u, card, seg, e.name, e.field); err != nil {
			return err
		}
	}

	return nil
}

func addChStripMeter(meters *ctlSet, card *Card, seg *Segment[ChStripMeters], name string, r intRange, field func(*ChStripMeter) int32) error {
	return meters.addInt(card, name, r, ShellChStripCount, func() []int32 {
		m := seg.Data()
		vals := make([]int32, len(m))
		for i := range m {
			vals[i] = field(&m[i])
		}

		return vals
	}, nil)
}

func loadChStripMeterCtl(meters *ctlSet, card *Card, seg *Segment[ChStripMeters]) error {
	if err := addChStripMeter(meters, card, seg, ChStripInputMeterName, chStripLevelMeterRange, func(m *ChStripMeter) int32 {
		return m.Input
	}); err != nil {
		return err
	}
	if err := addChStripMeter(meters, card, seg, ChStripLimitMeterName, chStripLimitMeterRange, func(m *ChStripMeter) int32 {
		return m.Limit
	}); err != nil {
		return err
	}
	if err := addChStripMeter(meters, card, seg, ChStripOutputMeterName, chStripLevelMeterRange, func(m *ChStripMeter) int32 {
		return m.Output
	}); err != nil {
		return err
	}

	for i, band := range chStripCompBandNames {
		if err := addChStripMeter(meters, card, seg, fmt.Sprintf("ch-strip-gain-meter-%s", band), chStripGainMeterRange, func(m *ChStripMeter) int32 {
			return m.Gains[i]
		}); err != nil {
			return err
		}
	}

	return nil
}

// shellEffects holds the segments of the reverb and channel strip effects.
type shellEffects struct {
	reverb        *Segment[ReverbState]
	chStrips      *Segment[ChStripStates]
	reverbMeter   *Segment[ReverbMeter]
	chStripMeters *Segment[ChStripMeters]
}

func newShellEffects(reverb SegmentSpec[ReverbState], chStrips SegmentSpec[ChStripStates],
	reverbMeter SegmentSpec[ReverbMeter], chStripMeters SegmentSpec[ChStripMeters]) *shellEffects {
	return &shellEffects{
		reverb:        NewSegment(reverb),
		chStrips:      NewSegment(chStrips),
		reverbMeter:   NewSegment(reverbMeter),
		chStripMeters: NewSegment(chStripMeters),
	}
}

func (e *shellEffects) cache(u *unit) error {
	if err := cacheSegment(u, e.reverb); err != nil {
		return err
	}
	if err := cacheSegment(u, e.chStrips); err != nil {
		return err
	}
	if err := cacheSegment(u, e.reverbMeter); err != nil {
		return err
	}

	return cacheSegment(u, e.chStripMeters)
}

func (e *shellEffects) load(ctls, meters *ctlSet, u *unit, card *Card) error {
	if err := loadReverbCtl(ctls, u, card, e.reverb); err != nil {
		return err
	}
	if err := loadChStripCtl(ctls, u, card, e.chStrips); err != nil {
		return err
	}
	if err := loadReverbMeterCtl(meters, card, e.reverbMeter); err != nil {
		return err
	}

	return loadChStripMeterCtl(meters, card, e.chStripMeters)
}

func (e *shellEffects) parseNotification(u *unit, msg uint32) error {
	return errors.Join(
		cacheSegmentIfNotified(u, e.reverb, msg),
		cacheSegmentIfNotified(u, e.chStrips, msg),
	)
}

// measure reads the meters of effects which are not bypassed.
func (e *shellEffects) measure(u *unit) error {
	var errs []error
	if !e.reverb.Data().Bypass {
		errs = append(errs, cacheSegment(u, e.reverbMeter))
	}

	states := e.chStrips.Data()
	if slices.ContainsFunc(states[:], func(s ChStripState) bool { return !s.Bypass }) {
		errs = append(errs, cacheSegment(u, e.chStripMeters))
	}

	return errors.Join(errs...)
}
