package ast

// Program is the aggregate root produced by the parser. It is built once and
// then owned and mutated in place by a single runtime run.
type Program struct {
	NPC        string
	Desc       string
	IntVars    map[string]int32
	BoolVars   map[string]bool
	StringVars map[string]string
	Nodes      map[string]*Node
	Entry      string

	Classes       map[string]*ClassDef
	Objects       map[string]map[string]int32
	InstanceClass map[string]string

	Rooms       map[string]*Room
	CurrentRoom string
	Pictures    []Picture
}

func NewProgram() *Program {
	return &Program{
		IntVars:       map[string]int32{},
		BoolVars:      map[string]bool{},
		StringVars:    map[string]string{},
		Nodes:         map[string]*Node{},
		Classes:       map[string]*ClassDef{},
		Objects:       map[string]map[string]int32{},
		InstanceClass: map[string]string{},
		Rooms:         map[string]*Room{},
	}
}

// Node is the unit of interpreter state: display text, numbered choices and an
// action sequence. Choices short-circuit the action list at runtime.
type Node struct {
	Name           string
	Line           string
	Choices        []Choice
	Actions        []Action
	DefinitionLine int
}

type Choice struct {
	ID     int32
	Text   string
	Target string
}

// Expr is an expression captured during parsing, pre-tokenized into postfix
// form once so the runtime never re-splits the raw text.
type Expr struct {
	Raw string
	RPN []string
}

type Action interface {
	isAction()
}

type SetAction struct {
	Target string // plain name or dotted instance.field path
	Expr   Expr
}

func (SetAction) isAction() {}

type SignalAction struct {
	Name string
	Expr Expr
}

func (SignalAction) isAction() {}

type IfAction struct {
	Cond   Expr
	Target string
	Else   string // empty when no else clause
}

func (IfAction) isAction() {}

type GotoAction struct {
	Target string
}

func (GotoAction) isAction() {}

type EndAction struct{}

func (EndAction) isAction() {}

type ShowAction struct {
	Template string
}

func (ShowAction) isAction() {}

// StmtAction carries a catch-all statement. The statement is structurally
// parsed at parse time; unrecognized forms survive as RawStmt.
type StmtAction struct {
	Stmt Stmt
}

func (StmtAction) isAction() {}

type Stmt interface {
	isStmt()
}

type MethodCallStmt struct {
	Instance string
	Method   string
	Args     []Expr
}

func (MethodCallStmt) isStmt() {}

type NewObjectStmt struct {
	Class    string
	Instance string
}

func (NewObjectStmt) isStmt() {}

type PrintStmt struct {
	Literal   string
	IsLiteral bool
	Expr      Expr
}

func (PrintStmt) isStmt() {}

type DisplayStmt struct {
	Path string
}

func (DisplayStmt) isStmt() {}

type RawStmt struct {
	Text string
}

func (RawStmt) isStmt() {}

// ClassDef describes a class: integer field defaults plus straight-line
// methods. Immutable after parsing.
type ClassDef struct {
	Name    string
	Fields  map[string]int32
	Methods map[string]*Method
}

type Method struct {
	Name    string
	Params  []string
	Actions []Action
}

// Room is a declared-but-inert explorable location. The node interpreter
// never consults it.
type Room struct {
	Name        string
	Description string
	Exits       map[string]string
	Items       []string
	NPCs        []string
}

// Picture is a declared-but-inert image array binding.
type Picture struct {
	Name string
	Size int32
	Path string
}
