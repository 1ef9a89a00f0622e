package parser

import (
	"testing"

	"github.com/gosuda/crtz/ast"
)

func newTestProgram() *ast.Program {
	return ast.NewProgram()
}

func TestParseHeaderAndVariables(t *testing.T) {
	prog, diags := ParseSource(`
npc "Innkeeper";
desc "Runs the tavern.";
int gold = 3 * 4;
int level = true + 1;
int empty;
match met = true;
string rumor = 'dragons up north';
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if prog.NPC != "Innkeeper" || prog.Desc != "Runs the tavern." {
		t.Fatalf("header: %q / %q", prog.NPC, prog.Desc)
	}
	if prog.IntVars["gold"] != 12 {
		t.Fatalf("gold = %d", prog.IntVars["gold"])
	}
	if prog.IntVars["level"] != 2 {
		t.Fatalf("level = %d", prog.IntVars["level"])
	}
	if v, ok := prog.IntVars["empty"]; !ok || v != 0 {
		t.Fatalf("empty = %d (%v)", v, ok)
	}
	if !prog.BoolVars["met"] {
		t.Fatal("met not true")
	}
	if prog.StringVars["rumor"] != "dragons up north" {
		t.Fatalf("rumor = %q", prog.StringVars["rumor"])
	}
}

func TestParseNodeStructure(t *testing.T) {
	prog, diags := ParseSource(`
node greet {
    line "Welcome!";
    choice 1: "Trade" -> trade;
    choice 2: "Leave" -> out;
}
node trade { end; }
node out { end; }
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	if prog.Entry != "greet" {
		t.Fatalf("entry = %q", prog.Entry)
	}
	node := prog.Nodes["greet"]
	if node == nil {
		t.Fatal("greet missing")
	}
	if node.Line != "Welcome!" {
		t.Fatalf("line = %q", node.Line)
	}
	if len(node.Choices) != 2 {
		t.Fatalf("choices: %+v", node.Choices)
	}
	if node.Choices[1].ID != 2 || node.Choices[1].Target != "out" {
		t.Fatalf("choice 2: %+v", node.Choices[1])
	}
	if node.DefinitionLine != 2 {
		t.Fatalf("definition line = %d", node.DefinitionLine)
	}
}

func TestParseActionsAreStructured(t *testing.T) {
	prog, diags := ParseSource(`
node start {
    set gold = gold - 5;
    signal paid = 1;
    if (gold > 0) goto more else goto broke;
    goto more;
    show "left: ${gold}";
    hero.hit(2+3, 1);
    new Coin c;
    print("hi");
    print(1+2);
    end;
}
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	acts := prog.Nodes["start"].Actions
	if len(acts) != 10 {
		t.Fatalf("action count = %d", len(acts))
	}

	set, ok := acts[0].(ast.SetAction)
	if !ok || set.Target != "gold" || set.Expr.Raw != "gold-5" {
		t.Fatalf("set: %+v", acts[0])
	}
	if sig, ok := acts[1].(ast.SignalAction); !ok || sig.Name != "paid" {
		t.Fatalf("signal: %+v", acts[1])
	}
	iff, ok := acts[2].(ast.IfAction)
	if !ok || iff.Target != "more" || iff.Else != "broke" {
		t.Fatalf("if: %+v", acts[2])
	}
	if g, ok := acts[3].(ast.GotoAction); !ok || g.Target != "more" {
		t.Fatalf("goto: %+v", acts[3])
	}
	if sh, ok := acts[4].(ast.ShowAction); !ok || sh.Template != "left: ${gold}" {
		t.Fatalf("show: %+v", acts[4])
	}

	call, ok := acts[5].(ast.StmtAction).Stmt.(ast.MethodCallStmt)
	if !ok || call.Instance != "hero" || call.Method != "hit" || len(call.Args) != 2 {
		t.Fatalf("call: %+v", acts[5])
	}
	if call.Args[0].Raw != "2+3" || call.Args[1].Raw != "1" {
		t.Fatalf("call args: %+v", call.Args)
	}
	if nw, ok := acts[6].(ast.StmtAction).Stmt.(ast.NewObjectStmt); !ok || nw.Class != "Coin" || nw.Instance != "c" {
		t.Fatalf("new: %+v", acts[6])
	}
	if pr, ok := acts[7].(ast.StmtAction).Stmt.(ast.PrintStmt); !ok || !pr.IsLiteral || pr.Literal != "hi" {
		t.Fatalf("print literal: %+v", acts[7])
	}
	if pr, ok := acts[8].(ast.StmtAction).Stmt.(ast.PrintStmt); !ok || pr.IsLiteral || pr.Expr.Raw != "1+2" {
		t.Fatalf("print expr: %+v", acts[8])
	}
	if _, ok := acts[9].(ast.EndAction); !ok {
		t.Fatalf("end: %+v", acts[9])
	}
}

func TestParseClassAndInstances(t *testing.T) {
	prog, diags := ParseSource(`
class Fighter {
    int health = 10;
    int rage;
    void takeDamage(amount) {
        set health = health - amount;
    }
}
new Fighter hero;
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	cdef := prog.Classes["Fighter"]
	if cdef == nil {
		t.Fatal("class missing")
	}
	if cdef.Fields["health"] != 10 || cdef.Fields["rage"] != 0 {
		t.Fatalf("fields: %v", cdef.Fields)
	}
	m := cdef.Methods["takeDamage"]
	if m == nil || len(m.Params) != 1 || m.Params[0] != "amount" {
		t.Fatalf("method: %+v", m)
	}
	if len(m.Actions) != 1 {
		t.Fatalf("method actions: %+v", m.Actions)
	}
	if prog.Objects["hero"]["health"] != 10 {
		t.Fatalf("instance fields: %v", prog.Objects["hero"])
	}
	if prog.InstanceClass["hero"] != "Fighter" {
		t.Fatalf("instance class: %v", prog.InstanceClass)
	}
}

func TestParseRoomsAndPictures(t *testing.T) {
	prog, diags := ParseSource(`
room cellar {
    desc "Dark and damp.";
    exit north hall;
    item lantern;
    npc rat;
}
picture gallery[3] = load("art/cellar");
node start { end; }
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	room := prog.Rooms["cellar"]
	if room == nil || room.Description != "Dark and damp." {
		t.Fatalf("room: %+v", room)
	}
	if room.Exits["north"] != "hall" || len(room.Items) != 1 || len(room.NPCs) != 1 {
		t.Fatalf("room contents: %+v", room)
	}
	if prog.CurrentRoom != "cellar" {
		t.Fatalf("current room: %q", prog.CurrentRoom)
	}
	if len(prog.Pictures) != 1 {
		t.Fatalf("pictures: %+v", prog.Pictures)
	}
	pic := prog.Pictures[0]
	if pic.Name != "gallery" || pic.Size != 3 || pic.Path != "art/cellar" {
		t.Fatalf("picture: %+v", pic)
	}
}

func TestParseDiagnosticsKeepGoing(t *testing.T) {
	prog, diags := ParseSource(`
bogus;
node start { line "ok"; end; }
`)
	if len(diags) == 0 {
		t.Fatal("expected a diagnostic for unknown keyword")
	}
	if prog.Nodes["start"] == nil {
		t.Fatal("parse did not recover")
	}
}

func TestUnknownClassForNew(t *testing.T) {
	_, diags := ParseSource(`new Ghost g;` + "\n" + `node start { end; }`)
	if len(diags) == 0 {
		t.Fatal("expected diagnostic for unknown class")
	}
}
