package bytecode

import (
	"sort"
	"strconv"

	"github.com/gosuda/crtz/ast"
)

// Compile lowers a parsed program to the flat instruction stream. Every node
// gets a label with the node's name, so jumps and choice targets resolve by
// label id; conditionals get synthetic skip labels. Statements with no
// opcode in the format, method calls and object construction among them,
// are not lowered.
func Compile(prog *ast.Program) *File {
	f := NewFile()

	names := make([]string, 0, len(prog.Nodes))
	for name := range prog.Nodes {
		if name != prog.Entry {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	if _, ok := prog.Nodes[prog.Entry]; ok {
		names = append([]string{prog.Entry}, names...)
	}

	for i, name := range names {
		f.NodeIDs[name] = uint32(i)
		f.LabelIDs[name] = uint32(i)
	}
	nextLabel := uint32(len(names))

	labelFor := func(target string) uint32 {
		if id, ok := f.LabelIDs[target]; ok {
			return id
		}
		id := nextLabel
		nextLabel++
		f.LabelIDs[target] = id
		return id
	}

	for _, name := range names {
		node := prog.Nodes[name]
		f.emitOpU32(OpLabel, f.LabelIDs[name])
		f.emitOpU32(OpEnterNode, f.NodeIDs[name])

		if node.Line != "" {
			f.emitOpU32(OpLine, f.AddConst(node.Line))
		}

		if len(node.Choices) > 0 {
			for _, c := range node.Choices {
				f.emitOpU32(OpChoiceAdd, f.AddConst(c.Text))
				f.emitU32(labelFor(c.Target))
			}
			f.emitOp(OpChoiceFlush)
			f.emitOpU32(OpLeaveNode, f.NodeIDs[name])
			continue
		}

		for _, act := range node.Actions {
			switch a := act.(type) {
			case ast.SetAction:
				compileExpr(f, a.Expr)
				f.emitOpU32(OpStoreVar, f.AddConst(a.Target))
			case ast.SignalAction:
				compileExpr(f, a.Expr)
				f.emitOpU32(OpSignal, f.AddConst(a.Name))
			case ast.IfAction:
				compileExpr(f, a.Cond)
				skip := nextLabel
				nextLabel++
				f.emitOpU32(OpJumpIfFalse, skip)
				f.emitOpU32(OpJump, labelFor(a.Target))
				f.emitOpU32(OpLabel, skip)
				if a.Else != "" {
					f.emitOpU32(OpJump, labelFor(a.Else))
				}
			case ast.GotoAction:
				f.emitOpU32(OpJump, labelFor(a.Target))
			case ast.EndAction:
				f.emitOp(OpHalt)
			case ast.ShowAction:
				f.emitOpU32(OpLine, f.AddConst(a.Template))
			case ast.StmtAction:
				if p, ok := a.Stmt.(ast.PrintStmt); ok {
					if p.IsLiteral {
						f.emitOpU32(OpPushConst, f.AddConst(p.Literal))
					} else {
						compileExpr(f, p.Expr)
					}
					f.emitOp(OpPrint)
				}
			}
		}

		f.emitOpU32(OpLeaveNode, f.NodeIDs[name])
	}

	f.emitOp(OpHalt)
	return f
}

// compileExpr lowers a postfix expression: operands push, operators consume
// two stack items and push the result.
func compileExpr(f *File, expr ast.Expr) {
	for _, tok := range expr.RPN {
		switch tok {
		case "+":
			f.emitOp(OpAdd)
		case "-":
			f.emitOp(OpSub)
		case "*":
			f.emitOp(OpMul)
		case "/":
			f.emitOp(OpDiv)
		case "==":
			f.emitOp(OpCmpEq)
		case "!=":
			f.emitOp(OpCmpNeq)
		case "<":
			f.emitOp(OpCmpLt)
		case "<=":
			f.emitOp(OpCmpLte)
		case ">":
			f.emitOp(OpCmpGt)
		case ">=":
			f.emitOp(OpCmpGte)
		default:
			if _, err := strconv.ParseInt(tok, 10, 32); err == nil {
				f.emitOpU32(OpPushConst, f.AddConst(tok))
			} else {
				f.emitOpU32(OpLoadVar, f.AddConst(tok))
			}
		}
	}
}
