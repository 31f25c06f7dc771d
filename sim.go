package dice

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"sync"
	"time"
)

// Layout of the general sections of the simulated units, in bytes from BaseAddr.
const (
	simGlobalOffset  = GeneralSectionsSize
	simGlobalSize    = 360
	simTxOffset      = simGlobalOffset + simGlobalSize
	simStreamSize    = streamFormatSectionMinSize + streamFormatIec60958Size
	simRxOffset      = simTxOffset + simStreamSize
	simExtSyncSize   = 16
	simExtSyncOffset = simRxOffset + simStreamSize

	simPageSize = 4096
)

var simClockRates = map[ClockRate]uint32{
	ClockRate32000:  32000,
	ClockRate44100:  44100,
	ClockRate48000:  48000,
	ClockRate88200:  88200,
	ClockRate96000:  96000,
	ClockRate176400: 176400,
	ClockRate192000: 192000,
}

// ErrSimLocked is returned by SimDevice.Lock when the unit is locked already.
var ErrSimLocked = errors.New("unit is locked already")

// SimDevice is a unit in memory. It implements Transport and Locker, so models run against it
// the same way as against hardware. Writes to the clock configuration are accepted with a
// notification, as the units do.
type SimDevice struct {
	mu       sync.Mutex
	name     string
	modelID  uint32
	pages    map[uint64]*[simPageSize]byte
	locked   bool
	notifies chan uint32
	fault    func(tcode TransactionCode, addr uint64) error
	ticks    int

	meters []Section
}

var (
	_ Transport = (*SimDevice)(nil)
	_ Locker    = (*SimDevice)(nil)
)

type simProduct struct {
	modelID  uint32
	nickname string
	pcm      uint32
	seed     func(d *SimDevice) error
}

var simProducts = map[string]simProduct{
	"desktopk6": {DesktopK6ModelID, "DesktopKonnekt6", 4, seedDesktopK6},
	"itwin":     {ItwinModelID, "iTwin", 8, seedItwin},
	"k24d":      {K24dModelID, "Konnekt24d", 12, seedK24d},
	"k8":        {K8ModelID, "Konnekt8", 4, seedK8},
	"klive":     {KliveModelID, "KonnektLive", 12, seedKlive},
}

// NewSimDevice returns a unit simulating the model with the name, one of ModelNames.
func NewSimDevice(name string) (*SimDevice, error) {
	name = strings.ToLower(name)

	product, ok := simProducts[name]
	if !ok {
		return nil, fmt.Errorf("unsupported model name: %s", name)
	}

	d := &SimDevice{
		name:     name,
		modelID:  product.modelID,
		pages:    make(map[uint64]*[simPageSize]byte),
		notifies: make(chan uint32, 64),
	}

	if err := d.seedSections(product); err != nil {
		return nil, err
	}

	if err := product.seed(d); err != nil {
		return nil, fmt.Errorf("failed to seed %s: %w", name, err)
	}

	return d, nil
}

// Name returns the name of the simulated model.
func (d *SimDevice) Name() string {
	return d.name
}

// VendorID returns the vendor ID of the simulated unit.
func (d *SimDevice) VendorID() uint32 {
	return TcElectronicVendorID
}

// ModelID returns the model ID of the simulated unit.
func (d *SimDevice) ModelID() uint32 {
	return d.modelID
}

// Transaction implements Transport.
func (d *SimDevice) Transaction(tcode TransactionCode, addr uint64, frame []byte, _ int) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.fault != nil {
		if err := d.fault(tcode, addr); err != nil {
			return err
		}
	}

	if addr < BaseAddr {
		return fmt.Errorf("address %#012x out of application space", addr)
	}
	offset := addr - BaseAddr

	switch tcode {
	case TCODE_READ_QUADLET_REQUEST, TCODE_READ_BLOCK_REQUEST:
		d.read(offset, frame)
	case TCODE_WRITE_QUADLET_REQUEST, TCODE_WRITE_BLOCK_REQUEST:
		d.write(offset, frame)
		d.accept(offset, len(frame))
	default:
		return fmt.Errorf("unsupported transaction: %s", tcode)
	}

	return nil
}

// Lock implements Locker.
func (d *SimDevice) Lock() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.locked {
		return ErrSimLocked
	}
	d.locked = true

	return nil
}

// Unlock implements Locker.
func (d *SimDevice) Unlock() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.locked = false

	return nil
}

// Locked reports whether the unit is locked.
func (d *SimDevice) Locked() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.locked
}

// InjectFault installs fn to fail transactions; nil removes it.
func (d *SimDevice) InjectFault(fn func(tcode TransactionCode, addr uint64) error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.fault = fn
}

// Peek returns a copy of the memory at the offset from BaseAddr.
func (d *SimDevice) Peek(offset uint64, size int) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	buf := make([]byte, size)
	d.read(offset, buf)

	return buf
}

// Poke changes the memory at the offset from BaseAddr as the unit itself would, without
// notification.
func (d *SimDevice) Poke(offset uint64, data []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.write(offset, data)
}

// Notify queues a notification word. It is dropped if the queue is full.
func (d *SimDevice) Notify(msg uint32) {
	select {
	case d.notifies <- msg:
	default:
	}
}

// ReadNotification waits for a notification up to timeoutMs milliseconds, or forever if
// negative. A zero timeout only takes a queued notification.
func (d *SimDevice) ReadNotification(timeoutMs int) (uint32, bool) {
	switch {
	case timeoutMs < 0:
		return <-d.notifies, true
	case timeoutMs == 0:
		select {
		case msg := <-d.notifies:
			return msg, true
		default:
			return 0, false
		}
	}

	select {
	case msg := <-d.notifies:
		return msg, true
	case <-time.After(time.Duration(timeoutMs) * time.Millisecond):
		return 0, false
	}
}

// Tick moves the meters of the unit to their next values.
func (d *SimDevice) Tick() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.ticks++
	for _, meter := range d.meters {
		raw := make([]byte, meter.Size)
		for i := 0; i+4 <= len(raw); i += 4 {
			phase := float64(d.ticks)/8 + float64(i)/16
			level := int32(-500 + 500*math.Sin(phase))
			serializeI32(level, raw[i:i+4])
		}
		d.write(uint64(meter.Offset), raw)
	}
}

func (d *SimDevice) page(offset uint64, alloc bool) *[simPageSize]byte {
	key := offset / simPageSize
	p, ok := d.pages[key]
	if !ok && alloc {
		p = new([simPageSize]byte)
		d.pages[key] = p
	}

	return p
}

func (d *SimDevice) read(offset uint64, frame []byte) {
	for i := range frame {
		pos := offset + uint64(i)
		if p := d.page(pos, false); p != nil {
			frame[i] = p[pos%simPageSize]
		} else {
			frame[i] = 0
		}
	}
}

func (d *SimDevice) write(offset uint64, frame []byte) {
	for i, b := range frame {
		pos := offset + uint64(i)
		d.page(pos, true)[pos%simPageSize] = b
	}
}

// accept applies a change of the clock configuration to the clock status.
func (d *SimDevice) accept(offset uint64, size int) {
	pos := uint64(simGlobalOffset + 76)
	if offset > pos || offset+uint64(size) < pos+4 {
		return
	}

	raw := make([]byte, 4)
	d.read(pos, raw)

	var config ClockConfig
	deserializeClockConfig(&config, raw)

	status := uint32(config.Rate)<<clockConfigRateShift | clockStatusSrcLocked
	serializeU32(status, raw)
	d.write(simGlobalOffset+84, raw)

	serializeU32(simClockRates[config.Rate], raw)
	d.write(simGlobalOffset+92, raw)

	d.Notify(NOTIFY_CLOCK_ACCEPTED | NOTIFY_LOCK_CHG)
}

func (d *SimDevice) seedSections(product simProduct) error {
	sections := GeneralSections{
		Global:         Section{Offset: simGlobalOffset, Size: simGlobalSize},
		TxStreamFormat: Section{Offset: simTxOffset, Size: simStreamSize},
		RxStreamFormat: Section{Offset: simRxOffset, Size: simStreamSize},
		ExtSync:        Section{Offset: simExtSyncOffset, Size: simExtSyncSize},
	}

	raw := make([]byte, GeneralSectionsSize)
	if err := sections.Serialize(raw); err != nil {
		return err
	}
	d.write(0, raw)

	global := make([]byte, simGlobalSize)
	serializeU32(0xffff0000, global[0:4])
	serializeU32(0x00000000, global[4:8])
	if err := serializeLabel(product.nickname, global[12:76]); err != nil {
		return err
	}
	serializeClockConfig(&ClockConfig{Rate: ClockRate48000, Src: ClockSourceInternal}, global[76:80])
	serializeU32(uint32(ClockRate48000)<<clockConfigRateShift|clockStatusSrcLocked, global[84:88])
	// Arx1 is locked.
	serializeU32(1<<slices.Index(externalClockSourceTable, ClockSourceArx1), global[88:92])
	serializeU32(48000, global[92:96])
	serializeU32(0x01000400, global[96:100])

	var rateBits, srcBits uint32
	for _, rate := range []ClockRate{ClockRate44100, ClockRate48000, ClockRate88200, ClockRate96000} {
		rateBits |= 1 << slices.Index(clockCapsRateTable, rate)
	}
	for _, src := range []ClockSource{ClockSourceAes1, ClockSourceAdat, ClockSourceArx1, ClockSourceInternal} {
		srcBits |= 1 << slices.Index(clockCapsSrcTable, src)
	}
	serializeU32(srcBits<<16|rateBits, global[100:104])

	labels := make([]string, 0, len(clockCapsSrcTable))
	for _, src := range clockCapsSrcTable {
		switch src {
		case ClockSourceAes1:
			labels = append(labels, "S/PDIF")
		case ClockSourceAdat:
			labels = append(labels, "ADAT")
		case ClockSourceInternal:
			labels = append(labels, "Internal")
		default:
			labels = append(labels, "Unused")
		}
	}
	if err := serializeLabels(labels, global[104:360]); err != nil {
		return err
	}
	d.write(simGlobalOffset, global)

	tx := make([]byte, simStreamSize)
	serializeU32(1, tx[0:4])
	serializeU32(streamFormatIec60958Size/4, tx[4:8])
	if err := serializeTxStreamEntry(&TxStreamFormatEntry{
		IsoChannel: -1,
		Pcm:        product.pcm,
		Midi:       1,
		Speed:      2,
		Labels:     simStreamLabels("Out", product.pcm),
	}, tx[8:]); err != nil {
		return err
	}
	d.write(simTxOffset, tx)

	rx := make([]byte, simStreamSize)
	serializeU32(1, rx[0:4])
	serializeU32(streamFormatIec60958Size/4, rx[4:8])
	if err := serializeRxStreamEntry(&RxStreamFormatEntry{
		IsoChannel: -1,
		Pcm:        product.pcm,
		Midi:       1,
		Labels:     simStreamLabels("In", product.pcm),
	}, rx[8:]); err != nil {
		return err
	}
	d.write(simRxOffset, rx)

	return nil
}

func simStreamLabels(prefix string, count uint32) []string {
	labels := make([]string, 0, count)
	for i := range count {
		labels = append(labels, fmt.Sprintf("%s-%d", prefix, i+1))
	}

	return labels
}

func seedSegment[T any](d *SimDevice, spec SegmentSpec[T], params T) error {
	raw := make([]byte, spec.Size)
	if spec.Serialize != nil {
		if err := spec.Serialize(&params, raw); err != nil {
			return fmt.Errorf("%s: %w", spec.Name, err)
		}
	}

	offset := uint64(TcKonnektBaseOffset + spec.Offset)
	d.write(offset, raw)

	if spec.NotifyFlag == 0 {
		d.meters = append(d.meters, Section{Offset: int(offset), Size: spec.Size})
	}

	return nil
}

func seedEffects(d *SimDevice, reverb SegmentSpec[ReverbState], chStrips SegmentSpec[ChStripStates],
	reverbMeter SegmentSpec[ReverbMeter], chStripMeters SegmentSpec[ChStripMeters]) error {
	return errors.Join(
		seedSegment(d, reverb, ReverbState{}),
		seedSegment(d, chStrips, ChStripStates{}),
		seedSegment(d, reverbMeter, ReverbMeter{}),
		seedSegment(d, chStripMeters, ChStripMeters{}),
	)
}

func seedItwin(d *SimDevice) error {
	return errors.Join(
		seedSegment(d, ItwinKnobSegment, ItwinKnob{Target: ShellKnob0Mixer}),
		seedSegment(d, ItwinConfigSegment, ItwinConfig{
			StandaloneSrc:  ShellStandaloneClockInternal,
			StandaloneRate: StandaloneClockRate48000,
		}),
		seedSegment(d, ItwinMixerStateSegment, ItwinMixerState{Enabled: true}),
		seedSegment(d, ItwinHwStateSegment, ItwinHwState{ListeningMode: ListeningStereo}),
		seedSegment(d, ItwinMixerMeterSegment, ShellMixerMeter{}),
		seedEffects(d, ItwinReverbStateSegment, ItwinChStripStatesSegment,
			ItwinReverbMeterSegment, ItwinChStripMetersSegment),
	)
}

func seedK24d(d *SimDevice) error {
	return errors.Join(
		seedSegment(d, K24dKnobSegment, K24dKnob{Knob1Target: ShellKnob1Mixer}),
		seedSegment(d, K24dConfigSegment, K24dConfig{
			StandaloneSrc:  ShellStandaloneClockInternal,
			StandaloneRate: StandaloneClockRate48000,
		}),
		seedSegment(d, K24dMixerStateSegment, K24dMixerState{Enabled: true}),
		seedSegment(d, K24dHwStateSegment, ShellHwState{}),
		seedSegment(d, K24dMixerMeterSegment, ShellMixerMeter{}),
		seedEffects(d, K24dReverbStateSegment, K24dChStripStatesSegment,
			K24dReverbMeterSegment, K24dChStripMetersSegment),
	)
}

func seedK8(d *SimDevice) error {
	return errors.Join(
		seedSegment(d, K8KnobSegment, K8Knob{Knob1Target: ShellKnob1Mixer}),
		seedSegment(d, K8ConfigSegment, K8Config{
			StandaloneSrc:  ShellStandaloneClockInternal,
			StandaloneRate: StandaloneClockRate48000,
		}),
		seedSegment(d, K8MixerStateSegment, K8MixerState{Enabled: true}),
		seedSegment(d, K8HwStateSegment, K8HwState{}),
		seedSegment(d, K8MixerMeterSegment, ShellMixerMeter{}),
	)
}

func seedDesktopK6(d *SimDevice) error {
	return errors.Join(
		seedSegment(d, DesktopK6HwStateSegment, DesktopHwState{MixerOutputDimVolume: -600}),
		seedSegment(d, DesktopK6ConfigSegment, DesktopConfig{StandaloneRate: StandaloneClockRate48000}),
		seedSegment(d, DesktopK6MixerStateSegment, DesktopMixerState{HpSrc: DesktopHpSrcMixer01}),
		seedSegment(d, DesktopK6PanelSegment, DesktopPanel{FirewireLed: FireWireLedOn}),
		seedSegment(d, DesktopK6MeterSegment, DesktopMeter{}),
	)
}

func seedKlive(d *SimDevice) error {
	return errors.Join(
		seedSegment(d, KliveKnobSegment, KliveKnob{Knob1Target: ShellKnob1Mixer}),
		seedSegment(d, KliveConfigSegment, KliveConfig{
			StandaloneSrc:  ShellStandaloneClockInternal,
			StandaloneRate: StandaloneClockRate48000,
			MidiSender: MidiSender{
				Normal: MidiMsgParams{Ch: 0, Cc: 7},
				Pushed: MidiMsgParams{Ch: 0, Cc: 10},
			},
		}),
		seedSegment(d, KliveMixerStateSegment, KliveMixerState{Enabled: true}),
		seedSegment(d, KliveHwStateSegment, ShellHwState{}),
		seedSegment(d, KliveMixerMeterSegment, ShellMixerMeter{}),
		seedEffects(d, KliveReverbStateSegment, KliveChStripStatesSegment,
			KliveReverbMeterSegment, KliveChStripMetersSegment),
	)
}
