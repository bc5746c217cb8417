package main

import (
	"proctree/config"
	"proctree/process"
	"proctree/process_windows"
)

func newSources(cfg config.Config) (process.Sources, error) {
	return process_windows.NewSources(process_windows.Options{ServiceSource: cfg.ServiceSource})
}
