//go:build !linux

package main

import (
	"fmt"
	"log/slog"
	"runtime"

	"github.com/gen2brain/dice"
)

func openDevice(_ *dice.Config, _ *slog.Logger) (*device, error) {
	return nil, fmt.Errorf("units are not accessible on %s, use -sim", runtime.GOOS)
}
