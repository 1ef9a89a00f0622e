package cruntime

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gosuda/crtz/ast"
)

// Output is one emitted fragment. NewLine marks a completed line; prompts
// stay open so the answer renders on the same line.
type Output struct {
	Text    string
	NewLine bool
}

type resultKind int

const (
	resultNone resultKind = iota
	resultGoto
	resultEnd
)

type execResult struct {
	kind   resultKind
	target string
}

// VM runs a dialogue program. Variable state lives on the program tables and
// is mutated in place, so a finished run leaves the final state inspectable.
type VM struct {
	program       *ast.Program
	player        string
	outputs       []Output
	outputHook    func(Output)
	signalHook    func(name string, value int32)
	warnHook      func(string)
	inputProvider func(InputRequest) (string, error)
	inputQueue    []string
	display       DisplayFunc
	debugger      *Debugger
}

func New(program *ast.Program) *VM {
	return &VM{
		program: program,
		player:  "Andrew",
	}
}

// SetPlayerName sets the name substituted for [@You] in lines and choices.
func (vm *VM) SetPlayerName(name string) {
	vm.player = name
}

// SetOutputHook streams every output fragment as it is emitted. Run still
// accumulates and returns the full transcript.
func (vm *VM) SetOutputHook(hook func(Output)) {
	vm.outputHook = hook
}

// SetSignalHook observes signal statements in addition to their printed form.
func (vm *VM) SetSignalHook(hook func(name string, value int32)) {
	vm.signalHook = hook
}

// SetWarnHook redirects runtime diagnostics. The default writes to stderr.
func (vm *VM) SetWarnHook(hook func(string)) {
	vm.warnHook = hook
}

// SetDebugger attaches a debugger consulted at every node entry.
func (vm *VM) SetDebugger(d *Debugger) {
	vm.debugger = d
}

func (vm *VM) Program() *ast.Program {
	return vm.program
}

func (vm *VM) emitOutput(out Output) {
	vm.outputs = append(vm.outputs, out)
	if vm.outputHook != nil {
		vm.outputHook(out)
	}
}

func (vm *VM) println(text string) {
	vm.emitOutput(Output{Text: text, NewLine: true})
}

func (vm *VM) warnf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	if vm.warnHook != nil {
		vm.warnHook(msg)
		return
	}
	fmt.Fprintln(os.Stderr, msg)
}

// globalEnv aliases the program tables, so dialogue-level actions mutate
// program state directly.
func (vm *VM) globalEnv() *Env {
	return &Env{
		IntVars:    vm.program.IntVars,
		BoolVars:   vm.program.BoolVars,
		StringVars: vm.program.StringVars,
		Objects:    vm.program.Objects,
	}
}

// Run walks the node graph from the entry node until an end statement, an
// implicit end (a node with neither choices nor a jump), or a failure.
// It returns the accumulated transcript.
func (vm *VM) Run() ([]Output, error) {
	vm.outputs = vm.outputs[:0]

	if vm.program.NPC != "" {
		vm.println("Npc: " + vm.program.NPC)
	}
	if vm.program.Desc != "" {
		vm.println("Description: " + vm.program.Desc)
		vm.println("")
	}

	current := vm.program.Entry
	for {
		node, ok := vm.program.Nodes[current]
		if !ok {
			return append([]Output(nil), vm.outputs...), fmt.Errorf("unknown node: %s", current)
		}

		if vm.debugger != nil {
			vm.debugger.Check(node.DefinitionLine, vm.Snapshot())
		}

		if node.Line != "" {
			vm.println(vm.interpolateLine(node.Line))
		}

		if len(node.Choices) > 0 {
			target, err := vm.promptChoice(node.Choices)
			if err != nil {
				return append([]Output(nil), vm.outputs...), err
			}
			current = target
			continue
		}

		res, err := vm.execActions(node.Actions, vm.globalEnv(), "")
		if err != nil {
			return append([]Output(nil), vm.outputs...), err
		}
		switch res.kind {
		case resultGoto:
			current = res.target
			continue
		case resultEnd:
			return append([]Output(nil), vm.outputs...), nil
		}

		vm.println("[End of Conversation]")
		return append([]Output(nil), vm.outputs...), nil
	}
}

// promptChoice lists the choices and re-prompts until a listed id is given.
// Choice text substitutes the player name but no variables.
func (vm *VM) promptChoice(choices []ast.Choice) (string, error) {
	for _, c := range choices {
		vm.println(fmt.Sprintf("[%d] %s", c.ID, vm.substPlayer(c.Text)))
	}
	for {
		vm.emitOutput(Output{Text: "Choose: "})
		raw, err := vm.resolveInput(InputRequest{Prompt: "Choose: "})
		if err != nil {
			return "", err
		}
		sel, convErr := strconv.ParseInt(strings.TrimSpace(raw), 10, 32)
		if convErr != nil {
			vm.println("Invalid")
			continue
		}
		for _, c := range choices {
			if c.ID == int32(sel) {
				return c.Target, nil
			}
		}
		vm.println("Invalid choice")
	}
}

// execActions runs an action list in env. A goto or satisfied conditional
// stops the list and reports the jump; end stops it with the ended banner
// already printed. thisInstance is the receiver during method bodies and
// empty at dialogue level.
func (vm *VM) execActions(actions []ast.Action, env *Env, thisInstance string) (execResult, error) {
	for _, act := range actions {
		switch a := act.(type) {
		case ast.SetAction:
			vm.execSet(a, env, thisInstance)
		case ast.SignalAction:
			val := EvalExpr(a.Expr, env)
			vm.println(fmt.Sprintf("[SIGNAL] %s = %d", a.Name, val))
			if vm.signalHook != nil {
				vm.signalHook(a.Name, val)
			}
		case ast.IfAction:
			if EvalExpr(a.Cond, env) != 0 {
				return execResult{kind: resultGoto, target: a.Target}, nil
			}
			if a.Else != "" {
				return execResult{kind: resultGoto, target: a.Else}, nil
			}
		case ast.GotoAction:
			return execResult{kind: resultGoto, target: a.Target}, nil
		case ast.EndAction:
			vm.println("[Dialogue ended]")
			return execResult{kind: resultEnd}, nil
		case ast.ShowAction:
			vm.println(vm.interpolateShow(a.Template, env))
		case ast.StmtAction:
			if err := vm.execStmt(a.Stmt, env); err != nil {
				return execResult{}, err
			}
		}
	}
	return execResult{kind: resultNone}, nil
}

// execSet writes an evaluated value. Dotted targets address object fields,
// creating the instance table on demand. Bare names prefer the receiver's
// fields during a method body, then booleans, then integers.
func (vm *VM) execSet(a ast.SetAction, env *Env, thisInstance string) {
	val := EvalExpr(a.Expr, env)
	if inst, field := splitDot(a.Target); field != "" {
		obj, ok := env.Objects[inst]
		if !ok {
			obj = map[string]int32{}
			env.Objects[inst] = obj
		}
		obj[field] = val
		return
	}
	if thisInstance != "" {
		if obj, ok := env.Objects[thisInstance]; ok {
			if _, ok := obj[a.Target]; ok {
				obj[a.Target] = val
				return
			}
		}
	}
	if _, ok := env.BoolVars[a.Target]; ok {
		env.BoolVars[a.Target] = val != 0
		return
	}
	env.IntVars[a.Target] = val
}

func (vm *VM) execStmt(stmt ast.Stmt, env *Env) error {
	switch s := stmt.(type) {
	case ast.MethodCallStmt:
		args := make([]int32, 0, len(s.Args))
		for _, ae := range s.Args {
			args = append(args, EvalExpr(ae, env))
		}
		vm.callMethod(s.Instance, s.Method, args)
	case ast.NewObjectStmt:
		cdef, ok := vm.program.Classes[s.Class]
		if !ok {
			vm.warnf("Unknown class in inline new: %s", s.Class)
			return nil
		}
		fields := make(map[string]int32, len(cdef.Fields))
		for k, v := range cdef.Fields {
			fields[k] = v
		}
		env.Objects[s.Instance] = fields
		vm.program.InstanceClass[s.Instance] = s.Class
	case ast.PrintStmt:
		if s.IsLiteral {
			vm.println(s.Literal)
		} else {
			vm.println(strconv.FormatInt(int64(EvalExpr(s.Expr, env)), 10))
		}
	case ast.DisplayStmt:
		vm.showPicture(s.Path)
	case ast.RawStmt:
		// unrecognized statement, skipped
	}
	return nil
}

// Snapshot copies the current variable state for inspection.
func (vm *VM) Snapshot() Snapshot {
	snap := Snapshot{
		IntVars:    make(map[string]int32, len(vm.program.IntVars)),
		BoolVars:   make(map[string]bool, len(vm.program.BoolVars)),
		StringVars: make(map[string]string, len(vm.program.StringVars)),
		Objects:    make(map[string]map[string]int32, len(vm.program.Objects)),
	}
	for k, v := range vm.program.IntVars {
		snap.IntVars[k] = v
	}
	for k, v := range vm.program.BoolVars {
		snap.BoolVars[k] = v
	}
	for k, v := range vm.program.StringVars {
		snap.StringVars[k] = v
	}
	for name, fields := range vm.program.Objects {
		cp := make(map[string]int32, len(fields))
		for k, v := range fields {
			cp[k] = v
		}
		snap.Objects[name] = cp
	}
	return snap
}
