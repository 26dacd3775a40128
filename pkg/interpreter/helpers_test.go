package interpreter

import (
	"bytes"
	"testing"

	"polish/interpreter-go/pkg/runtime"
)

// newTestInterpreter returns an interpreter printing into the returned buffer.
func newTestInterpreter(t *testing.T, opts ...Option) (*Interpreter, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]Option{WithOutput(&out)}, opts...)
	return New(opts...), &out
}

// evalAll evaluates every form in src and returns the last result.
func evalAll(t *testing.T, interp *Interpreter, src string) runtime.Value {
	t.Helper()
	results, err := interp.EvalSource("test.pl", []byte(src))
	if err != nil {
		t.Fatalf("parse %q: %v", src, err)
	}
	if len(results) == 0 {
		t.Fatalf("no forms in %q", src)
	}
	return results[len(results)-1]
}

func expectValue(t *testing.T, interp *Interpreter, src, want string) {
	t.Helper()
	got := evalAll(t, interp, src)
	if runtime.Format(got) != want {
		t.Fatalf("%s => %s, want %s", src, runtime.Format(got), want)
	}
}

func expectError(t *testing.T, interp *Interpreter, src string, code runtime.ErrorCode) runtime.ErrorValue {
	t.Helper()
	got := evalAll(t, interp, src)
	errVal, ok := got.(runtime.ErrorValue)
	if !ok {
		t.Fatalf("%s => %s, want %s error", src, runtime.Format(got), code)
	}
	if errVal.Code != code {
		t.Fatalf("%s => %s (%s), want code %s", src, errVal.Message, errVal.Code, code)
	}
	return errVal
}
