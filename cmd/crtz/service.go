package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/crtz"
	cruntime "github.com/gosuda/crtz/runtime"
)

// runVM compiles and runs the script on its own goroutine, bridging output
// and input prompts into the TUI event channel.
func runVM(cfg appConfig, events chan<- tea.Msg) {
	defer close(events)

	source, err := os.ReadFile(cfg.script)
	if err != nil {
		events <- vmDoneMsg{err: fmt.Errorf("open script: %w", err)}
		return
	}
	vm, diags := crtz.Compile(string(source))
	for _, d := range diags {
		events <- vmOutputMsg{out: cruntime.Output{Text: d.String(), NewLine: true}}
	}
	vm.SetPlayerName(cfg.player)

	vm.SetOutputHook(func(out cruntime.Output) {
		events <- vmOutputMsg{out: out}
	})
	vm.SetWarnHook(func(msg string) {
		events <- vmOutputMsg{out: cruntime.Output{Text: msg, NewLine: true}}
	})
	vm.SetInputProvider(func(req cruntime.InputRequest) (string, error) {
		resp := make(chan vmInputResp, 1)
		events <- vmPromptMsg{req: req, resp: resp}
		r := <-resp
		return r.value, nil
	})

	_, err = vm.Run()
	events <- vmDoneMsg{err: err}
}
