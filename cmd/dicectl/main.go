package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/gen2brain/dice"
)

const commands = `
Commands:
  units                      List the sound cards of DICE units.
  list                       List the controls of the unit.
  get [control...]           Print controls, all of them if none is given.
  set <control> <value...>   Set the value of a control.
  monitor                    Print changes of controls until interrupted.
  meter [-record file.wav]   Print meters; optionally record levels to a WAV file.
  dump [file]                Write the writable controls as YAML.
  restore <file>             Write the controls in a YAML snapshot.
  shell                      Run commands interactively.
  trace <file>               Print the events of a trace file.
`

func main() {
	var (
		configPath string
		hwdepPath  string
		fwPath     string
		model      string
		sim        string
		timeout    int
		interval   int
		tracePath  string
		logLevel   string
	)

	defaults := dice.DefaultConfig()

	flag.StringVar(&configPath, "config", "", "The YAML configuration file.")
	flag.StringVar(&hwdepPath, "hwdep", defaults.HwdepDevice, "The hwdep device of the card.")
	flag.StringVar(&fwPath, "fw", "", "The character device of the node, taken from the hwdep device if empty.")
	flag.StringVar(&model, "model", defaults.Model, "The model of the unit (auto, desktopk6, itwin, k24d, k8, klive).")
	flag.StringVar(&sim, "sim", "", "Use a simulated unit of the model instead of hardware.")
	flag.IntVar(&timeout, "timeout", defaults.TimeoutMs, "The timeout of transactions in milliseconds.")
	flag.IntVar(&interval, "interval", defaults.MeasureIntervalMs, "The interval of measurements in milliseconds.")
	flag.StringVar(&tracePath, "trace", "", "Append CBOR encoded protocol events to the file.")
	flag.StringVar(&logLevel, "log-level", defaults.LogLevel, "The log level (debug, info, warn, error).")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s [options] <command> [args...]\n", os.Args[0])
		fmt.Fprintln(os.Stderr, "\nOptions:")
		for _, name := range []string{"config", "hwdep", "fw", "model", "sim", "timeout", "interval", "trace", "log-level"} {
			f := flag.Lookup(name)
			if f != nil {
				fmt.Fprintf(os.Stderr, "  --%s\n    \t%v (default %q)\n", f.Name, f.Usage, f.DefValue)
			}
		}
		fmt.Fprint(os.Stderr, commands)
	}

	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(1)
	}

	config := defaults
	if configPath != "" {
		var err error
		config, err = dice.LoadConfig(configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
			os.Exit(1)
		}
	}

	// Flags given on the command line override the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "hwdep":
			config.HwdepDevice = hwdepPath
		case "fw":
			config.FwDevice = fwPath
		case "model":
			config.Model = model
		case "timeout":
			config.TimeoutMs = timeout
		case "interval":
			config.MeasureIntervalMs = interval
		case "trace":
			config.TraceFile = tracePath
		case "log-level":
			config.LogLevel = logLevel
		}
	})

	if err := config.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Error in config: %v\n", err)
		os.Exit(1)
	}

	level, _ := config.SlogLevel()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cmd, args := flag.Arg(0), flag.Args()[1:]

	switch cmd {
	case "units":
		if err := runUnits(); err != nil {
			fmt.Fprintf(os.Stderr, "Error listing units: %v\n", err)
			os.Exit(1)
		}

		return
	case "trace":
		if err := runTrace(args); err != nil {
			fmt.Fprintf(os.Stderr, "Error reading trace: %v\n", err)
			os.Exit(1)
		}

		return
	}

	s, err := openSession(config, sim, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening unit: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	// The shell handles interrupts itself.
	ctx := context.Background()
	if cmd != "shell" {
		var stop context.CancelFunc
		ctx, stop = signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
		defer stop()
	}

	if err := s.run(ctx, cmd, args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		s.Close()
		os.Exit(1)
	}
}

// runUnits prints the sound cards of DICE units.
func runUnits() error {
	units, err := dice.EnumerateUnits()
	if err != nil {
		return err
	}

	if len(units) == 0 {
		fmt.Println("No DICE units found.")

		return nil
	}

	for _, unit := range units {
		supported := "unsupported"
		if unit.Supported() {
			supported = "supported"
		}
		fmt.Printf("%s [%s]\n", unit, supported)
	}

	return nil
}

// runTrace prints the events recorded with -trace.
func runTrace(args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("expected one trace file")
	}

	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()

	r := dice.NewTraceReader(f)
	for {
		event, err := r.Next()
		if err != nil {
			if err == io.EOF {
				return nil
			}

			return err
		}

		fmt.Printf("%s %s\n", event.SessionID, event)
	}
}
