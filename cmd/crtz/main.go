package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gosuda/crtz"
)

func main() {
	player := flag.String("player", "Andrew", "player name substituted for [@You]")
	debug := flag.Bool("debug", false, "start paused in the dialogue debugger")
	plain := flag.Bool("plain", false, "plain stdio instead of the TUI")
	compile := flag.String("compile", "", "compile the script to the given bytecode file and exit")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: crtz [flags] <script.crtz>")
		flag.PrintDefaults()
		os.Exit(1)
	}
	script := flag.Arg(0)

	if strings.TrimSpace(*compile) != "" {
		if err := compileTo(script, *compile); err != nil {
			fmt.Fprintf(os.Stderr, "compile: %v\n", err)
			os.Exit(1)
		}
		return
	}

	cfg := appConfig{
		script: script,
		player: *player,
		debug:  *debug,
	}

	if *plain || *debug {
		if err := runPlain(cfg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	p := tea.NewProgram(newModel(cfg), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "tui: %v\n", err)
		os.Exit(1)
	}
}

func compileTo(script, out string) error {
	source, err := os.ReadFile(script)
	if err != nil {
		return err
	}
	data, diags, err := crtz.CompileBytecode(string(source))
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(out, data, 0o644)
}
