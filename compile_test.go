package crtz_test

import (
	"testing"

	"github.com/gosuda/crtz"
	cruntime "github.com/gosuda/crtz/runtime"
)

func compileScript(t *testing.T, src string, inputs ...string) *cruntime.VM {
	t.Helper()
	vm, diags := crtz.Compile(src)
	if len(diags) != 0 {
		t.Fatalf("unexpected diagnostics: %v", diags)
	}
	vm.SetWarnHook(func(msg string) { t.Logf("warn: %s", msg) })
	vm.EnqueueInput(inputs...)
	return vm
}

func runScript(t *testing.T, src string, inputs ...string) ([]cruntime.Output, *cruntime.VM) {
	t.Helper()
	vm := compileScript(t, src, inputs...)
	out, err := vm.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return out, vm
}

func lines(out []cruntime.Output) []string {
	var ls []string
	for _, o := range out {
		if o.NewLine {
			ls = append(ls, o.Text)
		}
	}
	return ls
}

func expectLines(t *testing.T, out []cruntime.Output, want []string) {
	t.Helper()
	got := lines(out)
	if len(got) != len(want) {
		t.Fatalf("line count mismatch: got %d want %d\ngot: %q", len(got), len(want), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("line %d: got %q want %q", i, got[i], want[i])
		}
	}
}

func TestBasicDialogueFlow(t *testing.T) {
	src := `
npc "Guard";
desc "A watchful guard.";

int gold = 10;

node start {
    line "Halt, [@You]! You carry ${gold} gold.";
    choice 1: "Pay toll" -> pay;
    choice 2: "Leave" -> leave;
}

node pay {
    set gold = gold - 5;
    show "Gold left: ${gold}";
    goto leave;
}

node leave {
    line "Farewell.";
    end;
}
`
	out, vm := runScript(t, src, "1")
	expectLines(t, out, []string{
		"Npc: Guard",
		"Description: A watchful guard.",
		"",
		"Halt, [Andrew]! You carry 10 gold.",
		"[1] Pay toll",
		"[2] Leave",
		"Gold left: 5",
		"Farewell.",
		"[Dialogue ended]",
	})
	if got := vm.Program().IntVars["gold"]; got != 5 {
		t.Fatalf("gold = %d, want 5", got)
	}
}

func TestChoiceReprompt(t *testing.T) {
	src := `
node start {
    line "Pick.";
    choice 1: "A" -> x;
    choice 2: "B" -> y;
}
node x { line "at x"; end; }
node y { line "at y"; end; }
`
	out, _ := runScript(t, src, "nope", "9", "2")
	expectLines(t, out, []string{
		"Pick.",
		"[1] A",
		"[2] B",
		"Invalid",
		"Invalid choice",
		"at y",
		"[Dialogue ended]",
	})
}

func TestChoiceDispatchDoesNotRunActions(t *testing.T) {
	src := `
int hits = 0;
node start {
    choice 1: "go" -> next;
    set hits = hits + 1;
}
node next { end; }
`
	_, vm := runScript(t, src, "1")
	if got := vm.Program().IntVars["hits"]; got != 0 {
		t.Fatalf("choice node ran its actions: hits = %d", got)
	}
}

func TestEndHaltsRun(t *testing.T) {
	src := `
node start { end; }
node never { line "unreachable"; end; }
`
	out, _ := runScript(t, src)
	expectLines(t, out, []string{"[Dialogue ended]"})
}

func TestImplicitEndOfConversation(t *testing.T) {
	src := `
node start {
    line "Nothing more to say.";
}
`
	out, _ := runScript(t, src)
	expectLines(t, out, []string{
		"Nothing more to say.",
		"[End of Conversation]",
	})
}

func TestIfElseBranching(t *testing.T) {
	src := `
int hp = 3;
node start {
    if (hp > 5) goto strong else goto weak;
}
node strong { line "strong"; end; }
node weak { line "weak"; end; }
`
	out, _ := runScript(t, src)
	expectLines(t, out, []string{"weak", "[Dialogue ended]"})
}

func TestIfWithoutElseFallsThrough(t *testing.T) {
	src := `
int hp = 3;
node start {
    if (hp > 5) goto strong;
    set hp = hp + 1;
    goto done;
}
node strong { line "strong"; end; }
node done { end; }
`
	_, vm := runScript(t, src)
	if got := vm.Program().IntVars["hp"]; got != 4 {
		t.Fatalf("hp = %d, want 4 (fall-through action skipped?)", got)
	}
}

func TestBooleanLiteralsInExpressions(t *testing.T) {
	src := `
match met = false;
node start {
    set met = true;
    if (true) goto marked else goto missed;
}
node marked { line "marked"; end; }
node missed { line "missed"; end; }
`
	out, vm := runScript(t, src)
	expectLines(t, out, []string{"marked", "[Dialogue ended]"})
	if !vm.Program().BoolVars["met"] {
		t.Fatal("set met = true left met false")
	}
}

func TestSignalPrintsValue(t *testing.T) {
	src := `
int a = 7;
node start {
    signal reached = a + 1;
    signal dead = 5 / 0;
    end;
}
`
	var seen []string
	vm := compileScript(t, src)
	vm.SetSignalHook(func(name string, value int32) {
		seen = append(seen, name)
	})
	out, err := vm.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	expectLines(t, out, []string{
		"[SIGNAL] reached = 8",
		"[SIGNAL] dead = 0",
		"[Dialogue ended]",
	})
	if len(seen) != 2 || seen[0] != "reached" || seen[1] != "dead" {
		t.Fatalf("signal hook saw %v", seen)
	}
}

func TestMatchVariables(t *testing.T) {
	src := `
match met = false;
node start {
    line "Met before: ${met}";
    set met = 1;
    goto again;
}
node again {
    line "Met before: ${met}";
    end;
}
`
	out, vm := runScript(t, src)
	expectLines(t, out, []string{
		"Met before: false",
		"Met before: true",
		"[Dialogue ended]",
	})
	if !vm.Program().BoolVars["met"] {
		t.Fatal("met was not set")
	}
}

func TestShowPrefersStringVars(t *testing.T) {
	src := `
string name = 'Mira';
int name2 = 4;
node start {
    show "I am ${name}, number ${name2}, missing ${ghost}";
    end;
}
`
	out, _ := runScript(t, src)
	expectLines(t, out, []string{
		"I am Mira, number 4, missing 0",
		"[Dialogue ended]",
	})
}

func TestLineInterpolationIgnoresStringVars(t *testing.T) {
	src := `
string name = 'Mira';
node start {
    line "Who is ${name}?";
    end;
}
`
	out, _ := runScript(t, src)
	expectLines(t, out, []string{
		"Who is 0?",
		"[Dialogue ended]",
	})
}

func TestMethodMutatesOnlyReceiver(t *testing.T) {
	src := `
class Fighter {
    int health = 10;
    void takeDamage(amount) {
        set health = health - amount;
    }
}
new Fighter hero;
new Fighter rival;

node start {
    hero.takeDamage(3);
    goto report;
}
node report {
    line "HP: ${hero.health} vs ${rival.health}";
    end;
}
`
	out, vm := runScript(t, src)
	expectLines(t, out, []string{
		"HP: 7 vs 10",
		"[Dialogue ended]",
	})
	if got := vm.Program().Objects["hero"]["health"]; got != 7 {
		t.Fatalf("hero.health = %d, want 7", got)
	}
	if got := vm.Program().Objects["rival"]["health"]; got != 10 {
		t.Fatalf("rival.health = %d, want 10", got)
	}
}

func TestMethodWritesBackCollidingGlobals(t *testing.T) {
	src := `
int score = 1;
class Counter {
    int n = 0;
    void bump(by) {
        set score = score + by;
        set n = n + 1;
    }
}
new Counter c;
node start {
    c.bump(4);
    end;
}
`
	_, vm := runScript(t, src)
	if got := vm.Program().IntVars["score"]; got != 5 {
		t.Fatalf("score = %d, want 5", got)
	}
	if got := vm.Program().Objects["c"]["n"]; got != 1 {
		t.Fatalf("c.n = %d, want 1", got)
	}
}

func TestMethodEndDoesNotHaltDialogue(t *testing.T) {
	src := `
class Talker {
    int x = 0;
    void stop() {
        end;
        set x = 9;
    }
}
new Talker tk;
node start {
    tk.stop();
    line "still here";
    end;
}
`
	out, vm := runScript(t, src)
	// the node line prints on entry, then the method's end banner, then the
	// node's own end
	expectLines(t, out, []string{
		"still here",
		"[Dialogue ended]",
		"[Dialogue ended]",
	})
	if got := vm.Program().Objects["tk"]["x"]; got != 0 {
		t.Fatalf("statements after end ran: x = %d", got)
	}
}

func TestMethodGotoAbortsRemainingStatements(t *testing.T) {
	src := `
class Jumper {
    int a = 0;
    int b = 0;
    void leap() {
        set a = 1;
        goto elsewhere;
        set b = 1;
    }
}
new Jumper j;
node start {
    j.leap();
    line "after";
    end;
}
node elsewhere { line "jumped"; end; }
`
	out, vm := runScript(t, src)
	// the jump target is discarded; only the rest of the method is skipped
	expectLines(t, out, []string{"after", "[Dialogue ended]"})
	if vm.Program().Objects["j"]["a"] != 1 || vm.Program().Objects["j"]["b"] != 0 {
		t.Fatalf("jumper fields = %v", vm.Program().Objects["j"])
	}
}

func TestInlineNewAndPrint(t *testing.T) {
	src := `
class Coin { int value = 5; }
node start {
    new Coin pocket;
    print("found a coin");
    print(pocket.value * 2);
    end;
}
`
	out, vm := runScript(t, src)
	expectLines(t, out, []string{
		"found a coin",
		"10",
		"[Dialogue ended]",
	})
	if got := vm.Program().Objects["pocket"]["value"]; got != 5 {
		t.Fatalf("pocket.value = %d, want 5", got)
	}
}

func TestDisplayRoutesToViewer(t *testing.T) {
	src := `
node start {
    display("art/door.png");
    end;
}
`
	vm := compileScript(t, src)
	var shown []string
	vm.SetDisplay(func(path string) bool {
		shown = append(shown, path)
		return true
	})
	if _, err := vm.Run(); err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if len(shown) != 1 || shown[0] != "art/door.png" {
		t.Fatalf("viewer saw %v", shown)
	}
}

func TestUnknownNodeFails(t *testing.T) {
	src := `
node start { goto missing; }
`
	vm := compileScript(t, src)
	if _, err := vm.Run(); err == nil {
		t.Fatal("expected error for unknown node")
	}
}

func TestInitializerExpressions(t *testing.T) {
	src := `
int base = 4;
int doubled = base * 2 + 1;
node start { end; }
`
	_, vm := runScript(t, src)
	if got := vm.Program().IntVars["doubled"]; got != 9 {
		t.Fatalf("doubled = %d, want 9", got)
	}
}

func TestRunSourceSmoke(t *testing.T) {
	// RunSource wires stdin, so go through Compile with a queue instead.
	vm, diags := crtz.Compile(`
npc "Echo";
node start { line "hi [@You]"; end; }
`)
	if len(diags) != 0 {
		t.Fatalf("diagnostics: %v", diags)
	}
	vm.SetPlayerName("Robin")
	out, err := vm.Run()
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	expectLines(t, out, []string{
		"Npc: Echo",
		"hi [Robin]",
		"[Dialogue ended]",
	})
}
