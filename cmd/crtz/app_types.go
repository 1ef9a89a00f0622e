package main

import (
	tea "github.com/charmbracelet/bubbletea"

	cruntime "github.com/gosuda/crtz/runtime"
)

type appConfig struct {
	script string
	player string
	debug  bool
}

type vmStartedMsg struct {
	events <-chan tea.Msg
}

type vmOutputMsg struct {
	out cruntime.Output
}

type vmDoneMsg struct {
	err error
}

type vmInputResp struct {
	value string
}

type vmPromptMsg struct {
	req  cruntime.InputRequest
	resp chan vmInputResp
}

type vmPollMsg struct{}

type pendingInput struct {
	req  cruntime.InputRequest
	resp chan vmInputResp
}
