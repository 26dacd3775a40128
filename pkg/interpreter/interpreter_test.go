package interpreter

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"polish/interpreter-go/pkg/runtime"
)

func TestDefThenAdd(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectValue(t, interp, "(def {x y} 5 10) (+ x y)", "15")
}

func TestLambdaApplication(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectValue(t, interp, `((\ {a b} {+ a b}) 5 6)`, "11")
}

func TestIfSkipsUntakenBranch(t *testing.T) {
	interp, out := newTestInterpreter(t)
	expectValue(t, interp, `(if (> 3 2) {+ 1 1} {print "false branch"})`, "2")
	if out.Len() != 0 {
		t.Fatalf("false branch executed, output %q", out.String())
	}
	expectValue(t, interp, `(if (> 2 3) {def {flag} 1} {+ 2 2})`, "4")
	if _, ok := interp.GlobalEnvironment().Lookup("flag"); ok {
		t.Fatalf("true branch executed for a false condition")
	}
}

func TestNonFunctionHeadIsNotCallable(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	errVal := expectError(t, interp, "((+ 1 2) 3)", runtime.ErrNotCallable)
	if !strings.Contains(errVal.Message, "Number") {
		t.Fatalf("expected message naming Number, got %q", errVal.Message)
	}
}

func TestEvalOfBuiltListMatchesDirectCall(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	cases := []struct {
		viaList string
		direct  string
	}{
		{"(eval (list + 1 2))", "(+ 1 2)"},
		{"(eval (list * 3 4))", "(* 3 4)"},
		{"(eval (list head {7 8} ))", "(head {7 8})"},
		{"(eval (list max 3 9))", "(max 3 9)"},
	}
	for _, tc := range cases {
		got := runtime.Format(evalAll(t, interp, tc.viaList))
		want := runtime.Format(evalAll(t, interp, tc.direct))
		if got != want {
			t.Fatalf("%s => %s, direct %s => %s", tc.viaList, got, tc.direct, want)
		}
	}
}

func TestEqualityIsReflexive(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	literals := []string{"0", "-12", "true", "false", `"text"`, "{}", "{1 {2 3} x}", "head"}
	for _, lit := range literals {
		expectValue(t, interp, "(== "+lit+" "+lit+")", "true")
		expectValue(t, interp, "(!= "+lit+" "+lit+")", "false")
	}
}

func TestHeadAndTail(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectValue(t, interp, "(head {1 2 3})", "{1}")
	expectValue(t, interp, "(tail {1 2 3})", "{2 3}")
	expectError(t, interp, "(head {})", runtime.ErrEmptyList)
	expectError(t, interp, "(tail {})", runtime.ErrEmptyList)
}

func TestListBuiltins(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	cases := []struct {
		src  string
		want string
	}{
		{"(list 1 2 3)", "{1 2 3}"},
		{"(join {1} {2 3} {})", "{1 2 3}"},
		{"(cons 0 {1 2})", "{0 1 2}"},
		{"(cons {a} {b})", "{{a} b}"},
		{"(len {1 2 3})", "3"},
		{"(len {})", "0"},
		{"(init {1 2 3})", "{1 2}"},
		{"(eval {+ 1 2})", "3"},
		{"(eval (head {(+ 1 2) 10}))", "3"},
		{"{+ 1 2}", "{+ 1 2}"},
		{"()", "()"},
		{"(5)", "5"},
	}
	for _, tc := range cases {
		expectValue(t, interp, tc.src, tc.want)
	}
	expectError(t, interp, "(init {})", runtime.ErrEmptyList)
	expectError(t, interp, "(join {1} 2)", runtime.ErrTypeMismatch)
	expectError(t, interp, "(len 1 2)", runtime.ErrArityMismatch)
}

func TestListBuiltinsResolveBareSymbols(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	evalAll(t, interp, "(def {xs} {1 2 3})")
	env := interp.GlobalEnvironment()
	head, ok := interp.Builtin("head")
	if !ok {
		t.Fatalf("head not registered")
	}
	got := interp.Call(env, head, runtime.NewSExpr(runtime.Sym("xs")))
	if runtime.Format(got) != "{1}" {
		t.Fatalf("head xs => %s, want {1}", runtime.Format(got))
	}
	plus, _ := interp.Builtin("+")
	got = interp.Call(env, plus, runtime.NewSExpr(runtime.Sym("int_max"), runtime.Num(1)))
	if runtime.Format(got) != "2147483648" {
		t.Fatalf("+ int_max 1 => %s", runtime.Format(got))
	}
	got = interp.Call(env, head, runtime.NewSExpr(runtime.Sym("missing")))
	if errVal, ok := got.(runtime.ErrorValue); !ok || errVal.Code != runtime.ErrTypeMismatch {
		t.Fatalf("head missing => %s, want type mismatch", runtime.Format(got))
	}
	expectValue(t, interp, "(len (list xs))", "1")
	got = interp.Call(env, mustBuiltin(t, interp, "list"), runtime.NewSExpr(runtime.Sym("xs"), runtime.Num(4)))
	if runtime.Format(got) != "{{1 2 3} 4}" {
		t.Fatalf("list xs 4 => %s", runtime.Format(got))
	}
}

func mustBuiltin(t *testing.T, interp *Interpreter, name string) runtime.Value {
	t.Helper()
	fn, ok := interp.Builtin(name)
	if !ok {
		t.Fatalf("builtin %s not registered", name)
	}
	return fn
}

func TestErrorsShortCircuit(t *testing.T) {
	interp, out := newTestInterpreter(t)
	errVal := expectError(t, interp, `(+ 1 (/ 4 0) (print "after"))`, runtime.ErrDivisionByZero)
	if errVal.Message != "Division by zero" {
		t.Fatalf("unexpected message %q", errVal.Message)
	}
	if out.Len() != 0 {
		t.Fatalf("evaluation continued past an error: %q", out.String())
	}
	expectError(t, interp, "(+ 1 nothing)", runtime.ErrUnboundSymbol)
}

func TestDefinitionErrors(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectError(t, interp, "(def {x 1} 1 2)", runtime.ErrTypeMismatch)
	expectError(t, interp, "(def {x y} 1)", runtime.ErrArityMismatch)
	expectError(t, interp, "(def 1 2)", runtime.ErrTypeMismatch)
	expectError(t, interp, `(\ {1} {x})`, runtime.ErrTypeMismatch)
	expectError(t, interp, `(\ {x})`, runtime.ErrArityMismatch)
	expectError(t, interp, `((\ {a b} {a}) 1)`, runtime.ErrArityMismatch)
}

func TestDefBindsGloballyAssignBindsLocally(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	evalAll(t, interp, `(def {setter} (\ {v} {= {local} v}))`)
	evalAll(t, interp, `(def {definer} (\ {v} {def {shared} v}))`)
	expectValue(t, interp, "(setter 4)", "()")
	expectError(t, interp, "local", runtime.ErrUnboundSymbol)
	expectValue(t, interp, "(definer 9)", "()")
	expectValue(t, interp, "shared", "9")
	expectValue(t, interp, "(= {top} 3) top", "3")
}

func TestClosuresCaptureDefiningFrame(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	evalAll(t, interp, `(def {adder} (\ {a} {\ {b} {+ a b}}))`)
	evalAll(t, interp, "(def {add5} (adder 5))")
	expectValue(t, interp, "(add5 10)", "15")
	expectValue(t, interp, "((adder 1) 2)", "3")
	evalAll(t, interp, "(def {a} 100)")
	expectValue(t, interp, "(add5 1)", "6")
}

func TestRecursionThroughDef(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	evalAll(t, interp, `(def {fact} (\ {n} {if (== n 0) {1} {* n (fact (- n 1))}}))`)
	expectValue(t, interp, "(fact 5)", "120")
	expectValue(t, interp, "(fact 20)", "2432902008176640000")
	expectError(t, interp, "(fact 21)", runtime.ErrIntegerOverflow)
}

func TestEnvironmentBindingsAreCopies(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	evalAll(t, interp, "(def {xs} {1 2 3})")
	expectValue(t, interp, "(tail xs)", "{2 3}")
	expectValue(t, interp, "xs", "{1 2 3}")
}

func TestLogicBuiltins(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	cases := []struct {
		src  string
		want string
	}{
		{"(and true true false)", "false"},
		{"(and true)", "true"},
		{"(or false false true)", "true"},
		{"(! true)", "false"},
		{"(bool 0)", "false"},
		{"(bool 7)", "true"},
		{"(bool {})", "false"},
		{`(bool "")`, "false"},
		{"(bool head)", "true"},
		{"(== 1 1 1)", "true"},
		{"(== 1 1 2)", "false"},
		{"(!= 1 2 3)", "true"},
		{"(!= 1 2 1)", "false"},
		{"(== {1 2} {1 2})", "true"},
		{"(== head tail)", "false"},
		{"(< 1 2)", "1"},
		{"(<= 2 2)", "1"},
		{"(>= 1 2)", "0"},
		{"(if 0 {1} {2})", "2"},
	}
	for _, tc := range cases {
		expectValue(t, interp, tc.src, tc.want)
	}
	expectError(t, interp, "(and 1 true)", runtime.ErrTypeMismatch)
	expectError(t, interp, "(< 1)", runtime.ErrArityMismatch)
	expectError(t, interp, "(< 1 {2})", runtime.ErrTypeMismatch)
	expectError(t, interp, `(if "yes" {1} {2})`, runtime.ErrTypeMismatch)
}

func TestZeroArgumentCalls(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectValue(t, interp, "(+)", "<builtin>")
	env := interp.GlobalEnvironment()
	for _, name := range []string{"+", "-", "max", "and", "or", "join", "=="} {
		got := interp.Call(env, mustBuiltin(t, interp, name), runtime.NewSExpr())
		if errVal, ok := got.(runtime.ErrorValue); !ok || errVal.Code != runtime.ErrArityMismatch {
			t.Fatalf("(%s) with no arguments => %s, want arity mismatch", name, runtime.Format(got))
		}
	}
	got := interp.Call(env, mustBuiltin(t, interp, "list"), runtime.NewSExpr())
	if runtime.Format(got) != "{}" {
		t.Fatalf("list with no arguments => %s", runtime.Format(got))
	}
}

func TestPrintAndError(t *testing.T) {
	interp, out := newTestInterpreter(t)
	expectValue(t, interp, `(print 1 "two" {three} true)`, "()")
	if got := out.String(); got != "1 \"two\" {three} true\n" {
		t.Fatalf("print output %q", got)
	}
	errVal := expectError(t, interp, `(error "boom")`, runtime.ErrUser)
	if errVal.Message != "boom" {
		t.Fatalf("error message %q", errVal.Message)
	}
	expectError(t, interp, "(error 1)", runtime.ErrTypeMismatch)
}

func TestEvalLineReadsWholeLine(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	if got := runtime.Format(interp.EvalLine("+ 1 2")); got != "3" {
		t.Fatalf("+ 1 2 => %s", got)
	}
	if got := runtime.Format(interp.EvalLine("(* 2 3)")); got != "6" {
		t.Fatalf("(* 2 3) => %s", got)
	}
	got := interp.EvalLine("(+ 1")
	if errVal, ok := got.(runtime.ErrorValue); !ok || errVal.Code != runtime.ErrParseFailure {
		t.Fatalf("unbalanced input => %s, want parse failure", runtime.Format(got))
	}
}

func TestConstants(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	expectValue(t, interp, "int_max", "2147483647")
	expectValue(t, interp, "int_min", "-2147483648")
	expectValue(t, interp, "(! false)", "true")
}

func TestBuiltinsAreRegistered(t *testing.T) {
	interp, _ := newTestInterpreter(t)
	names := interp.Builtins()
	want := []string{"!", "!=", "%", "*", "+", "-", "/", "<", "<=", "=", "==", ">", ">=", "\\", "^",
		"and", "bool", "cons", "def", "error", "eval", "head", "if", "init", "join", "len", "list",
		"load", "max", "min", "or", "print", "tail"}
	if len(names) != len(want) {
		t.Fatalf("registered %d builtins, want %d: %v", len(names), len(want), names)
	}
	for idx := range want {
		if names[idx] != want[idx] {
			t.Fatalf("builtin %d = %q, want %q", idx, names[idx], want[idx])
		}
	}
}

func TestLoadEvaluatesEveryForm(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "lib.pl")
	source := strings.Join([]string{
		"; helpers",
		`(def {double} (\ {n} {* 2 n}))`,
		"(head {})",
		`(print "loaded")`,
	}, "\n")
	if err := os.WriteFile(lib, []byte(source), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	interp, out := newTestInterpreter(t)
	expectValue(t, interp, `(load "`+filepath.ToSlash(lib)+`")`, "()")
	expectValue(t, interp, "(double 21)", "42")
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	if len(lines) != 2 || !strings.HasPrefix(lines[0], "Error: Function 'head' passed {}") || lines[1] != `"loaded"` {
		t.Fatalf("unexpected load output %q", out.String())
	}
}

func TestLoadFailures(t *testing.T) {
	dir := t.TempDir()
	broken := filepath.Join(dir, "broken.pl")
	if err := os.WriteFile(broken, []byte("(+ 1"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	interp, _ := newTestInterpreter(t)
	errVal := expectError(t, interp, `(load "`+filepath.ToSlash(broken)+`")`, runtime.ErrParseFailure)
	if !strings.HasPrefix(errVal.Message, "Could not load library") {
		t.Fatalf("unexpected message %q", errVal.Message)
	}
	expectError(t, interp, `(load "`+filepath.ToSlash(filepath.Join(dir, "missing.pl"))+`")`, runtime.ErrParseFailure)
	expectError(t, interp, "(load 1)", runtime.ErrTypeMismatch)
}

type mapResolver map[string]string

func (m mapResolver) Resolve(path string) (string, error) {
	if resolved, ok := m[path]; ok {
		return resolved, nil
	}
	return "", os.ErrNotExist
}

func TestLoadUsesResolver(t *testing.T) {
	dir := t.TempDir()
	lib := filepath.Join(dir, "prelude.pl")
	if err := os.WriteFile(lib, []byte("(def {answer} 42)"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	interp, _ := newTestInterpreter(t, WithResolver(mapResolver{"prelude": lib}))
	expectValue(t, interp, `(load "prelude") answer`, "42")
	expectError(t, interp, `(load "other")`, runtime.ErrParseFailure)
}
