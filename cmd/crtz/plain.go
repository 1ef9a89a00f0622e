package main

import (
	"fmt"

	"github.com/gosuda/crtz"
)

// runPlain plays the dialogue over plain stdio. The debugger needs the
// terminal to itself, so -debug always routes here.
func runPlain(cfg appConfig) error {
	_, err := crtz.RunScript(cfg.script, cfg.player, cfg.debug)
	if err != nil {
		return fmt.Errorf("run script: %w", err)
	}
	return nil
}
