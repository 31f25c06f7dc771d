package dice

import "slices"

var (
	shellLevelRange = intRange{min: -1000, max: 0, step: 1, tlv: DbInterval{Min: -9400, Max: 0}.Encode()}
	shellPanRange   = intRange{min: -50, max: 50, step: 1}

	shellReturnGainRange = intRange{min: -1000, max: 0, step: 1, tlv: DbInterval{Min: -7200, Max: 0}.Encode()}
)

// Names of elements for the mixer.
const (
	MixerStreamSrcGainName = "mixer-stream-source-gain"
	MixerStreamSrcPanName  = "mixer-stream-source-pan"
	MixerStreamSrcMuteName = "mixer-stream-source-mute"
	SendStreamSrcGainName  = "send-stream-source-gain"
	MixerPhysSrcLinkName   = "mixer-phys-source-link"
	MixerPhysSrcGainName   = "mixer-phys-source-gain"
	MixerPhysSrcPanName    = "mixer-phys-source-pan"
	MixerPhysSrcMuteName   = "mixer-phys-source-mute"
	SendPhysSrcGainName    = "send-phys-source-gain"
	MixerOutDimEnableName  = "mixer-out-dim-enable"
	MixerOutVolumeName     = "mixer-out-volume"
	MixerOutDimVolumeName  = "mixer-out-dim-volume"

	StreamInputMetersName  = "stream-input-meters"
	AnalogInputMetersName  = "analog-input-meters"
	DigitalInputMetersName = "digital-input-meters"
	MixerOutputMetersName  = "mixer-output-meters"

	UseReverbAsPluginName = "use-reverb-as-plugin"
	ReverbReturnGainName  = "reverb-return-gain"
	ReverbReturnMuteName  = "reverb-return-mute"

	AnalogJackStateName  = "analog-jack-state"
	FirewireLedStateName = "firewire-led-state"
)

func physPairs(state *ShellMixerState) []*ShellMonitorSrcPair {
	var pairs []*ShellMonitorSrcPair
	for i := range state.Analog {
		pairs = append(pairs, &state.Analog[i])
	}
	for i := range state.Digital {
		pairs = append(pairs, &state.Digital[i])
	}

	return pairs
}

// addMixerParam adds an element for one parameter of every channel of the stream pair, or of
// every physical pair when stream is false.
func addMixerParam[T any](
	s *ctlSet, u *unit, card *Card, seg *Segment[T], state func(*T) *ShellMixerState,
	name string, r intRange, stream bool, field func(*MonitorSrcParam) *int32,
) error {
	pairs := func(st *ShellMixerState) []*ShellMonitorSrcPair {
		if stream {
			return []*ShellMonitorSrcPair{&st.Stream}
		}
		return physPairs(st)
	}

	params := seg.Data()
	count := len(pairs(state(&params))) * 2

	return s.addInt(card, name, r, count, func() []int32 {
		params := seg.Data()
		vals := make([]int32, 0, count)
		for _, pair := range pairs(state(&params)) {
			vals = append(vals, *field(&pair.Params[0]), *field(&pair.Params[1]))
		}

		return vals
	}, func(vals []int32) error {
		return updateSegment(u, seg, func(p *T) error {
			for i, pair := range pairs(state(p)) {
				*field(&pair.Params[0]) = vals[i*2]
				*field(&pair.Params[1]) = vals[i*2+1]
			}
			return nil
		})
	})
}

func loadMixerCtl[T any](s *ctlSet, u *unit, card *Card, seg *Segment[T], state func(*T) *ShellMixerState) error {
	gain := func(p *MonitorSrcParam) *int32 { return &p.GainToMixer }
	pan := func(p *MonitorSrcParam) *int32 { return &p.PanToMixer }
	send := func(p *MonitorSrcParam) *int32 { return &p.GainToSend }

	for _, stream := range []bool{true, false} {
		names := []string{MixerStreamSrcGainName, MixerStreamSrcPanName, SendStreamSrcGainName}
		if !stream {
			names = []string{MixerPhysSrcGainName, MixerPhysSrcPanName, SendPhysSrcGainName}
		}

		if err := addMixerParam(s, u, card, seg, state, names[0], shellLevelRange, stream, gain); err != nil {
			return err
		}
		if err := addMixerParam(s, u, card, seg, state, names[1], shellPanRange, stream, pan); err != nil {
			return err
		}
		if err := addMixerParam(s, u, card, seg, state, names[2], shellLevelRange, stream, send); err != nil {
			return err
		}
	}

	if err := addBoolField(s, u, card, MixerStreamSrcMuteName, seg, func(p *T) *bool {
		return &state(p).Mutes.Stream
	}); err != nil {
		return err
	}

	params := seg.Data()
	pairCount := len(physPairs(state(&params)))

	if err := s.addBool(card, MixerPhysSrcLinkName, pairCount, func() []bool {
		params := seg.Data()
		vals := make([]bool, 0, pairCount)
		for _, pair := range physPairs(state(&params)) {
			vals = append(vals, pair.StereoLink)
		}

		return vals
	}, func(vals []bool) error {
		return updateSegment(u, seg, func(p *T) error {
			for i, pair := range physPairs(state(p)) {
				pair.StereoLink = vals[i]
			}
			return nil
		})
	}); err != nil {
		return err
	}

	if err := s.addBool(card, MixerPhysSrcMuteName, pairCount*2, func() []bool {
		params := seg.Data()
		mutes := state(&params).Mutes

		return slices.Concat(mutes.Analog, mutes.Digital)
	}, func(vals []bool) error {
		return updateSegment(u, seg, func(p *T) error {
			mutes := &state(p).Mutes
			n := copy(mutes.Analog, vals)
			copy(mutes.Digital, vals[n:])
			return nil
		})
	}); err != nil {
		return err
	}

	if err := addBoolField(s, u, card, MixerOutDimEnableName, seg, func(p *T) *bool {
		return &state(p).OutputDimEnable
	}); err != nil {
		return err
	}

	if err := addInt32Field(s, u, card, MixerOutVolumeName, shellLevelRange, seg, func(p *T) *int32 {
		return &state(p).OutputVolume
	}); err != nil {
		return err
	}

	return addInt32Field(s, u, card, MixerOutDimVolumeName, shellLevelRange, seg, func(p *T) *int32 {
		return &state(p).OutputDimVolume
	})
}

// addInt32Field adds an element for a single integer field of a segment.
func addInt32Field[T any](s *ctlSet, u *unit, card *Card, name string, r intRange, seg *Segment[T], field func(*T) *int32) error {
	return s.addInt(card, name, r, 1, func() []int32 {
		params := seg.Data()
		return []int32{*field(&params)}
	}, func(vals []int32) error {
		return updateSegment(u, seg, func(p *T) error {
			*field(p) = vals[0]
			return nil
		})
	})
}

func loadReverbReturnCtl[T any](s *ctlSet, u *unit, card *Card, seg *Segment[T], ret func(*T) *ShellReverbReturn) error {
	if err := addBoolField(s, u, card, UseReverbAsPluginName, seg, func(p *T) *bool {
		return &ret(p).PluginMode
	}); err != nil {
		return err
	}

	if err := addInt32Field(s, u, card, ReverbReturnGainName, shellReturnGainRange, seg, func(p *T) *int32 {
		return &ret(p).ReturnGain
	}); err != nil {
		return err
	}

	return addBoolField(s, u, card, ReverbReturnMuteName, seg, func(p *T) *bool {
		return &ret(p).ReturnMute
	})
}

func loadMixerMeterCtl(meters *ctlSet, card *Card, seg *Segment[ShellMixerMeter]) error {
	regions := []struct {
		name string
		vals func(*ShellMixerMeter) []int32
	}{
		{StreamInputMetersName, func(m *ShellMixerMeter) []int32 { return m.StreamInputs }},
		{AnalogInputMetersName, func(m *ShellMixerMeter) []int32 { return m.AnalogInputs }},
		{DigitalInputMetersName, func(m *ShellMixerMeter) []int32 { return m.DigitalInputs }},
		{MixerOutputMetersName, func(m *ShellMixerMeter) []int32 { return m.MainOutputs }},
	}

	meter := seg.Data()
	for _, region := range regions {
		count := len(region.vals(&meter))
		if count == 0 {
			continue
		}

		if err := meters.addInt(card, region.name, shellLevelRange, count, func() []int32 {
			meter := seg.Data()
			return slices.Clone(region.vals(&meter))
		}, nil); err != nil {
			return err
		}
	}

	return nil
}

func loadHwStateCtl[T any](s *ctlSet, u *unit, card *Card, seg *Segment[T], hw func(*T) *ShellHwState) error {
	if err := s.addEnum(card, MixerElemId(AnalogJackStateName), enumItems(ShellAnalogJackStates),
		ShellAnalogJackStateCount, func() ([]uint32, error) {
			params := seg.Data()
			vals := make([]uint32, 0, ShellAnalogJackStateCount)
			for _, state := range hw(&params).AnalogJackStates {
				pos, err := enumIndex(ShellAnalogJackStates, state, "analog jack state")
				if err != nil {
					return nil, err
				}
				vals = append(vals, pos)
			}

			return vals, nil
		}, nil); err != nil {
		return err
	}

	return addEnumField(s, u, card, FirewireLedStateName, seg, FireWireLedStates, func(p *T) *FireWireLedState {
		return &hw(p).FirewireLed
	})
}
