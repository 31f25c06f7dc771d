package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/chzyer/readline"
	"golang.org/x/term"
)

const shellHelp = `Commands:
  list                      List controls.
  get [control...]          Print controls.
  set <control> <value...>  Set a control.
  monitor                   Print changes until Ctrl+C.
  dump [file]               Write the writable controls as YAML.
  restore <file>            Write the controls in a YAML snapshot.
  refresh                   Dispatch pending notifications and measure once.
  help                      Show this help.
  exit                      Leave the shell.
`

// lineReader reads command lines from a terminal or a script.
type lineReader interface {
	Readline() (string, error)
	Stdout() io.Writer
	Close() error
}

// scriptReader reads command lines from a non-interactive input.
type scriptReader struct {
	scanner *bufio.Scanner
}

func (r *scriptReader) Readline() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}

		return "", io.EOF
	}

	return r.scanner.Text(), nil
}

func (r *scriptReader) Stdout() io.Writer { return os.Stdout }

func (r *scriptReader) Close() error { return nil }

func newLineReader(prompt string) (lineReader, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return &scriptReader{scanner: bufio.NewScanner(os.Stdin)}, nil
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt,
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}

	return rl, nil
}

// shell runs commands read from the terminal, or from stdin when it is not one.
func (s *session) shell(ctx context.Context) error {
	rl, err := newLineReader(s.card.Name() + "> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	out := rl.Stdout()

	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		line, err := rl.Readline()
		if err != nil {
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}

			return nil
		}

		input := strings.TrimSpace(line)
		if input == "" || strings.HasPrefix(input, "#") {
			continue
		}

		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			fmt.Fprint(out, shellHelp)
		case "exit", "quit", "q":
			return nil
		case "list":
			printAllControls(out, s.card, true)
		case "get":
			err = s.get(out, args)
		case "set":
			err = s.set(args)
		case "monitor":
			// Ctrl+C stops the monitor only.
			monitorCtx, stop := signal.NotifyContext(ctx, os.Interrupt)
			err = s.monitor(monitorCtx, out)
			stop()
		case "dump":
			err = s.dump(args)
		case "restore":
			err = s.restore(args)
		case "refresh":
			err = s.refresh()
		default:
			err = fmt.Errorf("unknown command: %s", cmd)
		}

		if err != nil {
			fmt.Fprintf(out, "Error: %v\n", err)
		}
	}
}

// refresh dispatches the notifications already queued and measures once.
func (s *session) refresh() error {
	for {
		msg, ok, err := s.dev.notifier.Next(0)
		if err != nil {
			return err
		}
		if !ok {
			break
		}

		if err := s.dispatch(msg); err != nil {
			return err
		}
	}

	return s.measure()
}
