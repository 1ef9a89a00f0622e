package cruntime

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/peterh/liner"
)

// Snapshot is a point-in-time copy of the variable state, handed to the
// debugger so inspection cannot disturb the run.
type Snapshot struct {
	IntVars    map[string]int32
	BoolVars   map[string]bool
	StringVars map[string]string
	Objects    map[string]map[string]int32
}

// Debugger pauses the dialogue at node entries. It stops when stepping or
// when the node's definition line carries a breakpoint, then reads commands
// until told to step or continue.
type Debugger struct {
	breakpoints map[int]bool
	stepping    bool
	readLine    func(prompt string) (string, error)
	out         io.Writer
	ln          *liner.State
}

// NewDebugger builds a terminal debugger reading commands through liner.
// Close releases the terminal.
func NewDebugger() *Debugger {
	ln := liner.NewLiner()
	ln.SetCtrlCAborts(true)
	d := &Debugger{
		breakpoints: map[int]bool{},
		out:         os.Stdout,
		ln:          ln,
	}
	d.readLine = func(prompt string) (string, error) {
		s, err := ln.Prompt(prompt)
		if err == nil && strings.TrimSpace(s) != "" {
			ln.AppendHistory(s)
		}
		return s, err
	}
	return d
}

// NewDebuggerIO builds a debugger with an injected command reader and output
// sink.
func NewDebuggerIO(readLine func(prompt string) (string, error), out io.Writer) *Debugger {
	return &Debugger{
		breakpoints: map[int]bool{},
		readLine:    readLine,
		out:         out,
	}
}

func (d *Debugger) Close() {
	if d.ln != nil {
		d.ln.Close()
	}
}

func (d *Debugger) AddBreakpoint(line int) {
	d.breakpoints[line] = true
}

func (d *Debugger) RemoveBreakpoint(line int) {
	delete(d.breakpoints, line)
}

// Step pauses again at the next node.
func (d *Debugger) Step() {
	d.stepping = true
}

// Continue runs until the next breakpoint.
func (d *Debugger) Continue() {
	d.stepping = false
}

// Check is called at each node entry with the node's definition line. When
// paused it runs the command loop until a step or continue.
func (d *Debugger) Check(line int, snap Snapshot) {
	if !d.stepping && !d.breakpoints[line] {
		return
	}
	fmt.Fprintf(d.out, "Breakpoint at line %d. Type 'help' for commands.\n", line)
	for {
		cmd, err := d.readLine("> ")
		if err != nil {
			d.Continue()
			return
		}
		cmd = strings.TrimSpace(cmd)
		switch {
		case cmd == "step" || cmd == "s":
			d.Step()
			return
		case cmd == "continue" || cmd == "c":
			d.Continue()
			return
		case cmd == "help" || cmd == "h":
			d.printHelp()
		case cmd == "breakpoints" || cmd == "b":
			d.listBreakpoints()
		case cmd == "variables" || cmd == "v":
			d.listVariables(snap)
		case strings.HasPrefix(cmd, "break"):
			arg, ok := commandArg(cmd)
			if !ok {
				fmt.Fprintln(d.out, "Usage: break <line>")
				continue
			}
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(d.out, "Invalid line number")
				continue
			}
			d.AddBreakpoint(n)
			fmt.Fprintf(d.out, "Breakpoint added at line %d\n", n)
		case strings.HasPrefix(cmd, "delete"):
			arg, ok := commandArg(cmd)
			if !ok {
				fmt.Fprintln(d.out, "Usage: delete <line>")
				continue
			}
			n, err := strconv.Atoi(arg)
			if err != nil {
				fmt.Fprintln(d.out, "Invalid line number")
				continue
			}
			d.RemoveBreakpoint(n)
			fmt.Fprintf(d.out, "Breakpoint removed at line %d\n", n)
		case strings.HasPrefix(cmd, "print") || strings.HasPrefix(cmd, "p"):
			arg, ok := commandArg(cmd)
			if !ok {
				fmt.Fprintln(d.out, "Usage: print <variable>")
				continue
			}
			d.printVar(arg, snap)
		default:
			fmt.Fprintln(d.out, "Unknown command. Type 'help' for available commands.")
		}
	}
}

func commandArg(cmd string) (string, bool) {
	sp := strings.IndexByte(cmd, ' ')
	if sp < 0 {
		return "", false
	}
	return strings.TrimSpace(cmd[sp+1:]), true
}

func (d *Debugger) printVar(name string, snap Snapshot) {
	if v, ok := snap.IntVars[name]; ok {
		fmt.Fprintf(d.out, "%s = %d\n", name, v)
		return
	}
	if b, ok := snap.BoolVars[name]; ok {
		fmt.Fprintf(d.out, "%s = %t\n", name, b)
		return
	}
	if s, ok := snap.StringVars[name]; ok {
		fmt.Fprintf(d.out, "%s = %s\n", name, s)
		return
	}
	if inst, field := splitDot(name); field != "" {
		if obj, ok := snap.Objects[inst]; ok {
			if v, ok := obj[field]; ok {
				fmt.Fprintf(d.out, "%s = %d\n", name, v)
				return
			}
		}
	}
	fmt.Fprintln(d.out, "Variable not found.")
}

func (d *Debugger) listVariables(snap Snapshot) {
	fmt.Fprintln(d.out, "Integer variables:")
	for _, k := range sortedKeys(snap.IntVars) {
		fmt.Fprintf(d.out, "  %s = %d\n", k, snap.IntVars[k])
	}
	fmt.Fprintln(d.out, "Boolean variables:")
	for _, k := range sortedKeys(snap.BoolVars) {
		fmt.Fprintf(d.out, "  %s = %t\n", k, snap.BoolVars[k])
	}
	fmt.Fprintln(d.out, "String variables:")
	for _, k := range sortedKeys(snap.StringVars) {
		fmt.Fprintf(d.out, "  %s = %s\n", k, snap.StringVars[k])
	}
	fmt.Fprintln(d.out, "Object fields:")
	for _, obj := range sortedKeys(snap.Objects) {
		for _, field := range sortedKeys(snap.Objects[obj]) {
			fmt.Fprintf(d.out, "  %s.%s = %d\n", obj, field, snap.Objects[obj][field])
		}
	}
}

func (d *Debugger) listBreakpoints() {
	if len(d.breakpoints) == 0 {
		fmt.Fprintln(d.out, "No breakpoints set.")
		return
	}
	lines := make([]int, 0, len(d.breakpoints))
	for n := range d.breakpoints {
		lines = append(lines, n)
	}
	sort.Ints(lines)
	var b strings.Builder
	b.WriteString("Breakpoints at lines:")
	for _, n := range lines {
		fmt.Fprintf(&b, " %d", n)
	}
	fmt.Fprintln(d.out, b.String())
}

func (d *Debugger) printHelp() {
	fmt.Fprintln(d.out, "Debugger commands:")
	fmt.Fprintln(d.out, "  step (s):           Execute the next line.")
	fmt.Fprintln(d.out, "  continue (c):       Continue execution until the next breakpoint.")
	fmt.Fprintln(d.out, "  print (p) <var>:    Print the value of a variable.")
	fmt.Fprintln(d.out, "  variables (v):      List all variables.")
	fmt.Fprintln(d.out, "  break <line>:       Set a breakpoint at the specified line.")
	fmt.Fprintln(d.out, "  delete <line>:      Remove a breakpoint at the specified line.")
	fmt.Fprintln(d.out, "  breakpoints (b):    List all breakpoints.")
	fmt.Fprintln(d.out, "  help (h):           Show this help message.")
}

func sortedKeys[M ~map[string]V, V any](m M) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
