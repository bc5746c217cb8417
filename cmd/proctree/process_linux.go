package main

import (
	"proctree/config"
	"proctree/process"
	"proctree/process_linux"
)

func newSources(cfg config.Config) (process.Sources, error) {
	return process_linux.NewSources(process_linux.Options{
		ProcfsPath:    cfg.ProcfsPath,
		ProcessSource: cfg.ProcessSource,
	})
}
