package parser

import (
	"strconv"

	"github.com/gosuda/crtz/ast"
)

var operators = map[string]struct{}{
	"+": {}, "-": {}, "*": {}, "/": {},
	"==": {}, "!=": {}, "<": {}, "<=": {}, ">": {}, ">=": {},
}

func IsOperator(s string) bool {
	_, ok := operators[s]
	return ok
}

func precedence(op string) int {
	switch op {
	case "==", "!=", "<", "<=", ">", ">=":
		return 1
	case "+", "-":
		return 2
	case "*", "/":
		return 3
	default:
		return 0
	}
}

// TokenizeExpr splits an expression substring into tokens using the same
// identifier and number rules as the lexer, but over a raw string: dotted
// identifiers stay whole and '-' is always an operator token here.
// Unrecognized characters are skipped.
func TokenizeExpr(s string) []string {
	var out []string
	i := 0
	for i < len(s) {
		c := s[i]
		if isSpace(c) {
			i++
			continue
		}
		if i+1 < len(s) {
			two := s[i : i+2]
			switch two {
			case "<=", ">=", "==", "!=":
				out = append(out, two)
				i += 2
				continue
			}
		}
		switch c {
		case '+', '-', '*', '/', '(', ')', '<', '>':
			out = append(out, string(c))
			i++
			continue
		}
		if isDigit(c) {
			j := i + 1
			for j < len(s) && isDigit(s[j]) {
				j++
			}
			out = append(out, s[i:j])
			i = j
			continue
		}
		if isAlpha(c) || c == '_' {
			j := i + 1
			for j < len(s) && (isAlnum(s[j]) || s[j] == '_' || s[j] == '.') {
				j++
			}
			out = append(out, s[i:j])
			i = j
			continue
		}
		i++
	}
	return out
}

// InfixToRPN converts an infix token list to postfix via the shunting-yard
// algorithm. All operators are left-to-right binary so popping on >= precedence
// is sufficient; mismatched parentheses are tolerated.
func InfixToRPN(tokens []string) []string {
	var out, stack []string
	for _, t := range tokens {
		if t == "" {
			continue
		}
		switch {
		case IsOperator(t):
			for len(stack) > 0 && IsOperator(stack[len(stack)-1]) && precedence(stack[len(stack)-1]) >= precedence(t) {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			stack = append(stack, t)
		case t == "(":
			stack = append(stack, t)
		case t == ")":
			for len(stack) > 0 && stack[len(stack)-1] != "(" {
				out = append(out, stack[len(stack)-1])
				stack = stack[:len(stack)-1]
			}
			if len(stack) > 0 && stack[len(stack)-1] == "(" {
				stack = stack[:len(stack)-1]
			}
		default:
			out = append(out, t)
		}
	}
	for len(stack) > 0 {
		out = append(out, stack[len(stack)-1])
		stack = stack[:len(stack)-1]
	}
	return out
}

// CompileExpr tokenizes and converts once at parse time; the runtime only ever
// sees the postfix form.
func CompileExpr(raw string) ast.Expr {
	return ast.Expr{Raw: raw, RPN: InfixToRPN(TokenizeExpr(raw))}
}

// evalConstExpr evaluates a declaration initializer against the globals
// declared so far. The literals true and false read as 1 and 0. Objects are not constructed yet at declaration time, so
// dotted names resolve to 0, as does any unknown name. Division by zero
// yields 0.
func evalConstExpr(raw string, prog *ast.Program) int32 {
	rpn := InfixToRPN(TokenizeExpr(raw))
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
		if !IsOperator(tok) {
			if tok == "true" {
				stack = append(stack, 1)
			} else if tok == "false" {
				stack = append(stack, 0)
			} else if n, err := strconv.ParseInt(tok, 10, 64); err == nil {
				stack = append(stack, n)
			} else if b, ok := prog.BoolVars[tok]; ok {
				if b {
					stack = append(stack, 1)
				} else {
					stack = append(stack, 0)
				}
			} else if v, ok := prog.IntVars[tok]; ok {
				stack = append(stack, int64(v))
			} else {
				stack = append(stack, 0)
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
			r = boolToInt(a < b)
		case ">":
			r = boolToInt(a > b)
		case "<=":
			r = boolToInt(a <= b)
		case ">=":
			r = boolToInt(a >= b)
		case "==":
			r = boolToInt(a == b)
		case "!=":
			r = boolToInt(a != b)
		}
		stack = append(stack, r)
	}
	if len(stack) == 0 {
		return 0
	}
	return int32(stack[len(stack)-1])
}

func boolToInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

// splitTopLevel splits on sep outside any parenthesis nesting, trimming each
// part and dropping empties.
func splitTopLevel(s string, sep byte) []string {
	var out []string
	depth := 0
	start := 0
	flush := func(end int) {
		part := trimSpace(s[start:end])
		if part != "" {
			out = append(out, part)
		}
	}
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				flush(i)
				start = i + 1
			}
		}
	}
	flush(len(s))
	return out
}

func trimSpace(s string) string {
	a := 0
	for a < len(s) && isSpace(s[a]) {
		a++
	}
	b := len(s)
	for b > a && isSpace(s[b-1]) {
		b--
	}
	return s[a:b]
}
