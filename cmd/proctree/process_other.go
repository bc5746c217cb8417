//go:build !linux && !windows

package main

import (
	"fmt"
	"runtime"

	"proctree/config"
	"proctree/process"
)

func newSources(config.Config) (process.Sources, error) {
	return process.Sources{}, fmt.Errorf("%w: %s", process.ErrNotSupported, runtime.GOOS)
}
