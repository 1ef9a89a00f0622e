package cruntime

import (
	"strconv"
	"strings"

	"github.com/gosuda/crtz/ast"
)

// Env is the variable scope an expression evaluates against. At dialogue
// level it aliases the program tables directly; method calls build their own
// Env from copies and write back afterwards.
type Env struct {
	IntVars    map[string]int32
	BoolVars   map[string]bool
	StringVars map[string]string
	Objects    map[string]map[string]int32
}

// splitDot splits a dotted name into instance and field. The field part is
// empty when the name has no dot.
func splitDot(name string) (string, string) {
	if dot := strings.IndexByte(name, '.'); dot >= 0 {
		return name[:dot], name[dot+1:]
	}
	return name, ""
}

// lookup resolves a name to its numeric value. Dotted names read object
// fields, bare names check booleans before integers, and anything unknown
// is 0.
func (e *Env) lookup(name string) int64 {
	if inst, field := splitDot(name); field != "" {
		if obj, ok := e.Objects[inst]; ok {
			if v, ok := obj[field]; ok {
				return int64(v)
			}
		}
		return 0
	}
	if b, ok := e.BoolVars[name]; ok {
		if b {
			return 1
		}
		return 0
	}
	if v, ok := e.IntVars[name]; ok {
		return int64(v)
	}
	return 0
}

// EvalRPN evaluates a postfix token stream. The literals true and false read
// as 1 and 0 before any variable lookup. Arithmetic runs on int64 and the
// result narrows to int32 at the end; division by zero yields 0 instead of
// faulting. Underflowing the stack reads as 0, so malformed expressions
// still produce a value.
func EvalRPN(rpn []string, env *Env) int32 {
	var stack []int64
	pop := func() int64 {
		if len(stack) == 0 {
			return 0
		}
		v := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		return v
	}
	for _, tok := range rpn {
		if !isOperator(tok) {
			switch tok {
			case "true":
				stack = append(stack, 1)
			case "false":
				stack = append(stack, 0)
			default:
				if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
					stack = append(stack, n)
				} else {
					stack = append(stack, env.lookup(tok))
				}
			}
			continue
		}
		b := pop()
		a := pop()
		var r int64
		switch tok {
		case "+":
			r = a + b
		case "-":
			r = a - b
		case "*":
			r = a * b
		case "/":
			if b != 0 {
				r = a / b
			}
		case "<":
			r = b2i(a < b)
		case ">":
			r = b2i(a > b)
		case "<=":
			r = b2i(a <= b)
		case ">=":
			r = b2i(a >= b)
		case "==":
			r = b2i(a == b)
		case "!=":
			r = b2i(a != b)
		}
		stack = append(stack, r)
	}
	if len(stack) == 0 {
		return 0
	}
	return int32(stack[len(stack)-1])
}

// EvalExpr evaluates a compiled expression against env.
func EvalExpr(expr ast.Expr, env *Env) int32 {
	return EvalRPN(expr.RPN, env)
}

func isOperator(s string) bool {
	switch s {
	case "+", "-", "*", "/", "<", ">", "<=", ">=", "==", "!=":
		return true
	}
	return false
}

func b2i(b bool) int64 {
	if b {
		return 1
	}
	return 0
}
