package parser

import (
	"fmt"
	"strings"

	"github.com/gosuda/crtz/ast"
)

// Diagnostic is a line-tagged parse problem. Parsing never aborts on one;
// the parser reports and keeps going best-effort.
type Diagnostic struct {
	Line    int
	Message string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("Error at line %d: %s", d.Line, d.Message)
}

type Parser struct {
	lex   *Lexer
	tk    Token
	prog  *ast.Program
	diags []Diagnostic
}

// ParseSource parses one script into a Program plus any diagnostics.
func ParseSource(src string) (*ast.Program, []Diagnostic) {
	p := New(src)
	p.Parse()
	return p.Program(), p.Diagnostics()
}

func New(src string) *Parser {
	p := &Parser{lex: NewLexer(src), prog: ast.NewProgram()}
	p.tk = p.lex.Next()
	return p
}

func (p *Parser) Program() *ast.Program {
	return p.prog
}

func (p *Parser) Diagnostics() []Diagnostic {
	return p.diags
}

func (p *Parser) errorf(format string, args ...any) {
	p.diags = append(p.diags, Diagnostic{Line: p.tk.Line, Message: fmt.Sprintf(format, args...)})
}

func (p *Parser) consume() Token {
	t := p.tk
	p.tk = p.lex.Next()
	return t
}

func (p *Parser) isSym(s string) bool {
	return p.tk.Kind == TokenSymbol && p.tk.Text == s
}

func (p *Parser) expectSym(s string) bool {
	if p.isSym(s) {
		p.consume()
		return true
	}
	p.errorf("Expected symbol '%s' but got '%s'", s, p.tk.Text)
	return false
}

func (p *Parser) Parse() {
	for p.tk.Kind != TokenEOF {
		if p.tk.Kind == TokenIdent || p.tk.Kind == TokenPicture {
			switch {
			case p.tk.Text == "npc":
				p.parseNpc()
			case p.tk.Text == "desc":
				p.parseDesc()
			case p.tk.Text == "int" || p.tk.Text == "string" || p.tk.Text == "match":
				p.parseVarDecl()
			case p.tk.Text == "node":
				p.parseNode()
			case p.tk.Text == "class":
				p.parseClass()
			case p.tk.Text == "new":
				p.parseNewInstance()
			case p.tk.Text == "room":
				p.parseRoom()
			case p.tk.Kind == TokenPicture:
				p.parsePicture()
			default:
				p.errorf("Unknown top-level keyword: %s", p.tk.Text)
				p.consume()
			}
		} else {
			p.consume()
		}
	}
}

func (p *Parser) parseNpc() {
	p.consume()
	if p.tk.Kind == TokenString {
		p.prog.NPC = p.consume().Text
		p.expectSym(";")
	} else {
		p.errorf("npc requires string")
	}
}

func (p *Parser) parseDesc() {
	p.consume()
	if p.tk.Kind == TokenString {
		p.prog.Desc = p.consume().Text
		p.expectSym(";")
	} else {
		p.errorf("desc requires string")
	}
}

// captureExprText gathers raw expression text up to the terminating ';',
// concatenating token texts the way the source lexer split them. The text is
// compiled to postfix once, not re-parsed at execution time.
func (p *Parser) captureExprText() string {
	var b strings.Builder
	for !p.isSym(";") && p.tk.Kind != TokenEOF {
		b.WriteString(p.consume().Text)
	}
	return b.String()
}

func (p *Parser) parseVarDecl() {
	kind := p.consume().Text

	if p.tk.Kind != TokenIdent {
		p.errorf("%s expects identifier", kind)
		return
	}
	name := p.consume().Text

	if p.isSym("=") {
		p.consume()
		switch kind {
		case "string":
			if p.tk.Kind == TokenStringDecl || p.tk.Kind == TokenString {
				p.prog.StringVars[name] = p.consume().Text
				p.expectSym(";")
			} else {
				p.errorf("String variable requires string literal")
			}
		case "match":
			if p.tk.Kind == TokenTrue || p.tk.Kind == TokenFalse {
				p.prog.BoolVars[name] = p.consume().Kind == TokenTrue
				p.expectSym(";")
			} else {
				p.errorf("Boolean variable requires true or false")
			}
		default:
			expr := p.captureExprText()
			p.expectSym(";")
			// initializers are evaluated immediately against the globals
			// declared so far; objects do not exist yet
			p.prog.IntVars[name] = evalConstExpr(expr, p.prog)
		}
		return
	}

	switch kind {
	case "string":
		p.prog.StringVars[name] = ""
	case "match":
		p.prog.BoolVars[name] = false
	default:
		p.prog.IntVars[name] = 0
	}
	p.expectSym(";")
}

func (p *Parser) parseClass() {
	p.consume()
	if p.tk.Kind != TokenIdent {
		p.errorf("class expects a name")
		return
	}
	className := p.consume().Text
	if !p.isSym("{") {
		p.errorf("expected '{' after class name")
		return
	}
	p.consume()

	cdef := &ast.ClassDef{
		Name:    className,
		Fields:  map[string]int32{},
		Methods: map[string]*ast.Method{},
	}

	for !p.isSym("}") && p.tk.Kind != TokenEOF {
		if p.tk.Kind != TokenIdent {
			p.consume()
			continue
		}
		switch p.tk.Text {
		case "int":
			p.consume()
			if p.tk.Kind != TokenIdent {
				p.errorf("field expects identifier")
				p.consume()
				continue
			}
			fname := p.consume().Text
			var fval int32
			if p.isSym("=") {
				p.consume()
				expr := p.captureExprText()
				p.expectSym(";")
				fval = evalConstExpr(expr, p.prog)
			} else {
				p.expectSym(";")
			}
			cdef.Fields[fname] = fval
		case "void":
			p.consume()
			if p.tk.Kind != TokenIdent {
				p.errorf("method expects a name")
				continue
			}
			mname := p.consume().Text
			params := p.parseParamList()
			if !p.isSym("{") {
				p.errorf("expected '{' for method body")
				continue
			}
			p.consume()
			actions := p.parseActionList()
			p.expectSym("}")
			cdef.Methods[mname] = &ast.Method{Name: mname, Params: params, Actions: actions}
		default:
			p.errorf("Unknown class member: %s", p.tk.Text)
			p.consume()
		}
	}

	p.expectSym("}")
	p.prog.Classes[className] = cdef
}

func (p *Parser) parseParamList() []string {
	var params []string
	if !p.isSym("(") {
		p.errorf("expected '(' after method name")
	} else {
		p.consume()
	}
	for !p.isSym(")") && p.tk.Kind != TokenEOF {
		if p.tk.Kind == TokenIdent {
			params = append(params, p.consume().Text)
			if p.isSym(",") {
				p.consume()
			}
			continue
		}
		p.consume()
	}
	p.expectSym(")")
	return params
}

func (p *Parser) parseNewInstance() {
	p.consume()
	if p.tk.Kind != TokenIdent {
		p.errorf("new expects class name")
		return
	}
	className := p.consume().Text
	if p.tk.Kind != TokenIdent {
		p.errorf("new expects instance name")
		return
	}
	instName := p.consume().Text
	p.expectSym(";")

	cdef, ok := p.prog.Classes[className]
	if !ok {
		p.errorf("Unknown class %s for new", className)
		return
	}
	fields := make(map[string]int32, len(cdef.Fields))
	for k, v := range cdef.Fields {
		fields[k] = v
	}
	p.prog.Objects[instName] = fields
	p.prog.InstanceClass[instName] = className
}

func (p *Parser) parseNode() {
	nodeLine := p.tk.Line
	p.consume()
	if p.tk.Kind != TokenIdent {
		p.errorf("node expects name")
		p.consume()
		return
	}
	name := p.consume().Text
	if p.prog.Entry == "" {
		p.prog.Entry = name
	}
	if !p.isSym("{") {
		p.errorf("expected '{' after node name")
		return
	}
	p.consume()

	node := &ast.Node{Name: name, DefinitionLine: nodeLine}
	for !p.isSym("}") && p.tk.Kind != TokenEOF {
		if p.tk.Kind != TokenIdent && p.tk.Kind != TokenPicture && p.tk.Kind != TokenLoad {
			p.consume()
			continue
		}
		switch p.tk.Text {
		case "line":
			p.consume()
			if p.tk.Kind == TokenString {
				node.Line = p.consume().Text
			}
			p.expectSym(";")
		case "show":
			p.consume()
			p.parseShow(node)
		case "choice":
			p.consume()
			p.parseChoice(node)
		default:
			if act, ok := p.parseActionStatement(); ok {
				if act != nil {
					node.Actions = append(node.Actions, act)
				}
			}
		}
	}
	p.expectSym("}")
	p.prog.Nodes[name] = node
}

func (p *Parser) parseShow(node *ast.Node) {
	if p.tk.Kind != TokenString {
		p.errorf("show requires string literal")
		return
	}
	texts := []string{p.consume().Text}
	for p.isSym(",") {
		p.consume()
		if p.tk.Kind != TokenString {
			p.errorf("show expects string after comma")
			break
		}
		texts = append(texts, p.consume().Text)
	}
	p.expectSym(";")
	for _, t := range texts {
		node.Actions = append(node.Actions, ast.ShowAction{Template: t})
	}
}

func (p *Parser) parseChoice(node *ast.Node) {
	if p.tk.Kind != TokenNumber {
		p.errorf("choice id expected")
		p.consume()
		return
	}
	id := p.consume().Number
	p.expectSym(":")
	if p.tk.Kind != TokenString {
		p.errorf("choice text string expected")
		return
	}
	text := p.consume().Text
	if p.isSym("->") {
		p.consume()
	} else if p.isSym("-") {
		p.consume()
		if p.isSym(">") {
			p.consume()
		}
	}
	if p.tk.Kind != TokenIdent {
		p.errorf("choice target expected")
		return
	}
	target := p.consume().Text
	p.expectSym(";")
	node.Choices = append(node.Choices, ast.Choice{ID: id, Text: text, Target: target})
}

// parseActionList consumes action statements until the closing '}' of a
// method body. Node bodies dispatch per keyword instead, since they also
// carry line/show/choice clauses.
func (p *Parser) parseActionList() []ast.Action {
	var actions []ast.Action
	for !p.isSym("}") && p.tk.Kind != TokenEOF {
		if p.tk.Kind != TokenIdent && p.tk.Kind != TokenPicture && p.tk.Kind != TokenLoad {
			p.consume()
			continue
		}
		if act, ok := p.parseActionStatement(); ok && act != nil {
			actions = append(actions, act)
		}
	}
	return actions
}

// parseActionStatement handles the statement vocabulary shared by node and
// method bodies: set, signal, if/goto, goto, end, and the catch-all capture.
func (p *Parser) parseActionStatement() (ast.Action, bool) {
	switch p.tk.Text {
	case "set":
		p.consume()
		var name string
		if p.tk.Kind == TokenIdent {
			name = p.consume().Text
		} else {
			p.errorf("set expected identifier")
		}
		if p.isSym("=") {
			p.consume()
		} else {
			p.errorf("expected '=' after set var")
		}
		expr := p.captureExprText()
		p.expectSym(";")
		return ast.SetAction{Target: name, Expr: CompileExpr(expr)}, true
	case "signal":
		p.consume()
		if p.tk.Kind != TokenIdent {
			p.errorf("signal name expected")
			return nil, true
		}
		name := p.consume().Text
		if p.isSym("=") {
			p.consume()
		}
		expr := p.captureExprText()
		p.expectSym(";")
		return ast.SignalAction{Name: name, Expr: CompileExpr(expr)}, true
	case "if":
		p.consume()
		if !p.isSym("(") {
			p.errorf("if requires (")
		} else {
			p.consume()
		}
		var cond strings.Builder
		for !p.isSym(")") && p.tk.Kind != TokenEOF {
			cond.WriteString(p.consume().Text)
		}
		p.expectSym(")")
		if p.tk.Kind == TokenIdent && p.tk.Text == "goto" {
			p.consume()
		} else {
			p.errorf("if expects goto")
		}
		if p.tk.Kind != TokenIdent {
			p.errorf("goto target expected")
			return nil, true
		}
		target := p.consume().Text
		var elseTarget string
		if p.tk.Kind == TokenIdent && p.tk.Text == "else" {
			p.consume()
			if p.tk.Kind == TokenIdent && p.tk.Text == "goto" {
				p.consume()
			} else {
				p.errorf("else expects goto")
			}
			if p.tk.Kind == TokenIdent {
				elseTarget = p.consume().Text
			} else {
				p.errorf("else goto target expected")
			}
		}
		p.expectSym(";")
		return ast.IfAction{Cond: CompileExpr(cond.String()), Target: target, Else: elseTarget}, true
	case "goto":
		p.consume()
		if p.tk.Kind != TokenIdent {
			p.errorf("goto target expected")
			return nil, true
		}
		target := p.consume().Text
		p.expectSym(";")
		return ast.GotoAction{Target: target}, true
	case "end":
		p.consume()
		p.expectSym(";")
		return ast.EndAction{}, true
	default:
		toks := p.captureStmtTokens()
		if len(toks) == 0 {
			return nil, true
		}
		return ast.StmtAction{Stmt: p.buildStmt(toks)}, true
	}
}

// captureStmtTokens gathers a catch-all statement's tokens up to ';' (consumed)
// or a closing '}' (left for the caller).
func (p *Parser) captureStmtTokens() []Token {
	var toks []Token
	for !p.isSym(";") && !p.isSym("}") && p.tk.Kind != TokenEOF {
		toks = append(toks, p.consume())
	}
	if p.isSym(";") {
		p.consume()
	}
	return toks
}

// buildStmt structurally parses a captured statement. Recognized forms are
// instance.method(args...), inline new, print(...) and display(...); anything
// else is kept raw and skipped at execution.
func (p *Parser) buildStmt(toks []Token) ast.Stmt {
	first := toks[0]

	if first.Kind == TokenIdent && first.Text == "new" &&
		len(toks) >= 3 && toks[1].Kind == TokenIdent && toks[2].Kind == TokenIdent {
		return ast.NewObjectStmt{Class: toks[1].Text, Instance: toks[2].Text}
	}

	if first.Kind == TokenIdent && strings.Contains(first.Text, ".") &&
		len(toks) >= 2 && toks[1].Kind == TokenSymbol && toks[1].Text == "(" {
		dot := strings.Index(first.Text, ".")
		inner := stmtInner(toks[2:])
		var args []ast.Expr
		for _, raw := range splitTopLevel(inner, ',') {
			args = append(args, CompileExpr(raw))
		}
		return ast.MethodCallStmt{
			Instance: first.Text[:dot],
			Method:   first.Text[dot+1:],
			Args:     args,
		}
	}

	if first.Kind == TokenIdent && first.Text == "print" &&
		len(toks) >= 2 && toks[1].Kind == TokenSymbol && toks[1].Text == "(" {
		if len(toks) >= 3 && toks[2].Kind == TokenString {
			return ast.PrintStmt{Literal: toks[2].Text, IsLiteral: true}
		}
		return ast.PrintStmt{Expr: CompileExpr(stmtInner(toks[2:]))}
	}

	if first.Kind == TokenIdent && first.Text == "display" &&
		len(toks) >= 3 && toks[1].Kind == TokenSymbol && toks[1].Text == "(" &&
		toks[2].Kind == TokenString {
		return ast.DisplayStmt{Path: toks[2].Text}
	}

	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return ast.RawStmt{Text: b.String()}
}

// stmtInner joins argument tokens back into raw text, dropping the closing ')'.
func stmtInner(toks []Token) string {
	if n := len(toks); n > 0 && toks[n-1].Kind == TokenSymbol && toks[n-1].Text == ")" {
		toks = toks[:n-1]
	}
	var b strings.Builder
	for _, t := range toks {
		b.WriteString(t.Text)
	}
	return b.String()
}

func (p *Parser) parseRoom() {
	p.consume()
	if p.tk.Kind != TokenIdent {
		p.errorf("room expects a name")
		return
	}
	name := p.consume().Text
	if !p.isSym("{") {
		p.errorf("expected '{' after room name")
		return
	}
	p.consume()

	room := &ast.Room{Name: name, Exits: map[string]string{}}
	for !p.isSym("}") && p.tk.Kind != TokenEOF {
		if p.tk.Kind != TokenIdent {
			p.consume()
			continue
		}
		switch p.tk.Text {
		case "desc":
			p.consume()
			if p.tk.Kind == TokenString {
				room.Description = p.consume().Text
				p.expectSym(";")
			}
		case "exit":
			p.consume()
			if p.tk.Kind == TokenIdent {
				dir := p.consume().Text
				if p.tk.Kind == TokenIdent {
					room.Exits[dir] = p.consume().Text
					p.expectSym(";")
				}
			}
		case "item":
			p.consume()
			if p.tk.Kind == TokenIdent {
				room.Items = append(room.Items, p.consume().Text)
				p.expectSym(";")
			}
		case "npc":
			p.consume()
			if p.tk.Kind == TokenIdent {
				room.NPCs = append(room.NPCs, p.consume().Text)
				p.expectSym(";")
			}
		default:
			p.consume()
		}
	}
	p.expectSym("}")
	p.prog.Rooms[name] = room
	if p.prog.CurrentRoom == "" {
		p.prog.CurrentRoom = name
	}
}

func (p *Parser) parsePicture() {
	p.consume()
	if p.tk.Kind != TokenIdent {
		p.errorf("picture expects an identifier")
		return
	}
	name := p.consume().Text
	if !p.isSym("[") {
		p.errorf("expected '[' after picture name")
		return
	}
	p.consume()
	if p.tk.Kind != TokenNumber {
		p.errorf("expected number for array size")
		return
	}
	size := p.consume().Number
	if !p.isSym("]") {
		p.errorf("expected ']' after array size")
		return
	}
	p.consume()
	if !p.isSym("=") {
		p.errorf("expected '=' after array declaration")
		return
	}
	p.consume()
	if p.tk.Kind != TokenLoad {
		p.errorf("expected 'load' keyword")
		return
	}
	p.consume()
	if !p.isSym("(") {
		p.errorf("expected '(' after load")
		return
	}
	p.consume()
	if p.tk.Kind != TokenString {
		p.errorf("expected string for folder path")
		return
	}
	path := p.consume().Text
	if !p.isSym(")") {
		p.errorf("expected ')' after folder path")
		return
	}
	p.consume()
	p.expectSym(";")

	p.prog.Pictures = append(p.prog.Pictures, ast.Picture{Name: name, Size: size, Path: path})
}
