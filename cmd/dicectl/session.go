package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/gen2brain/dice"
)

// notifier delivers notification words of the unit.
type notifier interface {
	// Next waits for a notification up to timeoutMs milliseconds. It returns false when none
	// arrived in time.
	Next(timeoutMs int) (uint32, bool, error)
}

// device is an opened unit, real or simulated.
type device struct {
	transport dice.Transport
	locker    dice.Locker
	notifier  notifier
	vendorID  uint32
	modelID   uint32
	closers   []io.Closer
	// sim is set for simulated units, which move their meters only when asked.
	sim *dice.SimDevice
}

func (d *device) close() error {
	var errs []error
	for _, c := range d.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

type simNotifier struct {
	sim *dice.SimDevice
}

func (n simNotifier) Next(timeoutMs int) (uint32, bool, error) {
	msg, ok := n.sim.ReadNotification(timeoutMs)

	return msg, ok, nil
}

func openSim(name string) (*device, error) {
	sim, err := dice.NewSimDevice(name)
	if err != nil {
		return nil, err
	}

	return &device{
		transport: sim,
		locker:    sim,
		notifier:  simNotifier{sim},
		vendorID:  sim.VendorID(),
		modelID:   sim.ModelID(),
		sim:       sim,
	}, nil
}

// session is a card backed by a model of an opened unit.
type session struct {
	config *dice.Config
	logger *slog.Logger
	dev    *device
	tracer *dice.TracingTransport
	model  dice.Model
	card   *dice.Card
	trace  *dice.FileLogger
	closed bool
}

func openSession(config *dice.Config, sim string, logger *slog.Logger) (*session, error) {
	var (
		dev *device
		err error
	)

	if sim != "" {
		dev, err = openSim(sim)
		if config.Model == dice.ModelAuto {
			config.Model = sim
		}
	} else {
		dev, err = openDevice(config, logger)
	}
	if err != nil {
		return nil, err
	}

	s := &session{config: config, logger: logger, dev: dev}

	var tracer dice.Logger = dice.NewSlogAdapter(logger)
	if config.TraceFile != "" {
		s.trace, err = dice.NewFileLogger(config.TraceFile)
		if err != nil {
			s.Close()

			return nil, fmt.Errorf("failed to open trace file: %w", err)
		}
		tracer = s.trace
	}

	s.tracer = dice.NewTracingTransport(dev.transport, tracer)
	logger.Debug("session", "id", s.tracer.SessionID())

	opts := []dice.Option{
		dice.WithLogger(logger),
		dice.WithTimeout(config.TimeoutMs),
		dice.WithLocker(dev.locker),
	}

	if config.Model == dice.ModelAuto {
		s.model, err = dice.NewModel(dev.vendorID, dev.modelID, s.tracer, opts...)
	} else {
		s.model, err = dice.NewModelByName(config.Model, s.tracer, opts...)
	}
	if err != nil {
		s.Close()

		return nil, err
	}

	s.card, err = dice.OpenCard(s.model, logger)
	if err != nil {
		s.Close()

		return nil, err
	}

	return s, nil
}

// Close releases the unit. It is safe to call more than once.
func (s *session) Close() {
	if s.closed {
		return
	}
	s.closed = true

	if err := s.dev.close(); err != nil {
		s.logger.Warn("close", "error", err)
	}

	if s.trace != nil {
		_ = s.trace.Close()
	}
}

// measure reads the states which change without notification.
func (s *session) measure() error {
	if s.dev.sim != nil {
		s.dev.sim.Tick()
	}

	return s.card.Measure()
}

// dispatch refreshes the elements announced by the notification.
func (s *session) dispatch(msg uint32) error {
	s.tracer.LogNotification(msg)

	return s.card.DispatchNotification(msg)
}

func (s *session) run(ctx context.Context, cmd string, args []string) error {
	switch cmd {
	case "list":
		printAllControls(os.Stdout, s.card, true)
	case "get":
		return s.get(os.Stdout, args)
	case "set":
		return s.set(args)
	case "monitor":
		return s.monitor(ctx, os.Stdout)
	case "meter":
		return s.meter(ctx, args)
	case "dump":
		return s.dump(args)
	case "restore":
		return s.restore(args)
	case "shell":
		return s.shell(ctx)
	default:
		return fmt.Errorf("unknown command: %s", cmd)
	}

	return nil
}

func (s *session) get(w io.Writer, args []string) error {
	if len(args) == 0 {
		printAllControls(w, s.card, false)

		return nil
	}

	for _, arg := range args {
		ctl, err := findControl(s.card, arg)
		if err != nil {
			return err
		}
		printControl(w, ctl, false)
	}

	return nil
}

func (s *session) set(args []string) error {
	if len(args) < 2 {
		return fmt.Errorf("expected a control and its value")
	}

	ctl, err := findControl(s.card, args[0])
	if err != nil {
		return err
	}

	val, err := parseValue(ctl, args[1:])
	if err != nil {
		return err
	}

	if err := s.card.Write(ctl.ElemId(), val); err != nil {
		return err
	}

	fmt.Printf("Set control '%s' successfully.\n", ctl.Name())

	return nil
}

func (s *session) dump(args []string) error {
	snap, err := dice.TakeSnapshot(s.card)
	if err != nil {
		return err
	}

	if len(args) == 0 {
		_, err = snap.WriteTo(os.Stdout)

		return err
	}

	f, err := os.Create(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := snap.WriteTo(f); err != nil {
		return err
	}

	return f.Close()
}

func (s *session) restore(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one snapshot file")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	snap, err := dice.ReadSnapshot(f)
	if err != nil {
		return err
	}

	if snap.Model != s.card.Name() {
		s.logger.Warn("snapshot of another model", "snapshot", snap.Model, "card", s.card.Name())
	}

	return dice.RestoreSnapshot(s.card, snap)
}
