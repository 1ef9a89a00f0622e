package crtz

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/gosuda/crtz/ast"
	"github.com/gosuda/crtz/bytecode"
	"github.com/gosuda/crtz/parser"
	cruntime "github.com/gosuda/crtz/runtime"
)

// Parse returns the AST program and any parse diagnostics for tooling use.
func Parse(source string) (*ast.Program, []parser.Diagnostic) {
	return parser.ParseSource(source)
}

// Compile parses a dialogue script and builds a VM instance. Parse problems
// are diagnostics, not errors; the VM runs whatever parsed.
func Compile(source string) (*cruntime.VM, []parser.Diagnostic) {
	program, diags := parser.ParseSource(source)
	return cruntime.New(program), diags
}

// CompileBytecode parses a script and lowers it to the binary dialogue
// format.
func CompileBytecode(source string) ([]byte, []parser.Diagnostic, error) {
	program, diags := parser.ParseSource(source)
	data, err := bytecode.Encode(bytecode.Compile(program))
	return data, diags, err
}

// RunSource parses and runs a script in one step. Diagnostics print to
// stderr and the run proceeds regardless, so partially broken scripts still
// play.
func RunSource(source, playerName string, debug bool) ([]cruntime.Output, error) {
	vm, diags := Compile(source)
	for _, d := range diags {
		fmt.Fprintln(os.Stderr, d)
	}
	if playerName != "" {
		vm.SetPlayerName(playerName)
	}
	if debug {
		dbg := cruntime.NewDebugger()
		defer dbg.Close()
		dbg.Step()
		vm.SetDebugger(dbg)
	}
	vm.SetOutputHook(func(out cruntime.Output) {
		if out.NewLine {
			fmt.Println(out.Text)
		} else {
			fmt.Print(out.Text)
		}
	})
	vm.SetInputProvider(stdinProvider())
	return vm.Run()
}

func stdinProvider() func(cruntime.InputRequest) (string, error) {
	reader := bufio.NewReader(os.Stdin)
	return func(cruntime.InputRequest) (string, error) {
		line, err := reader.ReadString('\n')
		if err != nil && line == "" {
			return "", err
		}
		return strings.TrimRight(line, "\r\n"), nil
	}
}

// RunScript loads a script file and runs it like RunSource.
func RunScript(filename, playerName string, debug bool) ([]cruntime.Output, error) {
	b, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("open script: %w", err)
	}
	return RunSource(string(b), playerName, debug)
}
