package interpreter

import (
	"fmt"
	"io"
	"os"
	"sort"

	"polish/interpreter-go/pkg/parser"
	"polish/interpreter-go/pkg/runtime"
)

// SourceResolver maps a path given to `load` onto a readable file.
type SourceResolver interface {
	Resolve(path string) (string, error)
}

// Interpreter evaluates polish values against its own global environment.
// An Interpreter is not safe for concurrent use; give each goroutine its own.
type Interpreter struct {
	global   *runtime.Environment
	out      io.Writer
	parser   *parser.Parser
	resolver SourceResolver
	builtins map[string]runtime.NativeFunc
}

// Option configures an Interpreter.
type Option func(*Interpreter)

// WithOutput directs `print` and `load` diagnostics to w (default os.Stdout).
func WithOutput(w io.Writer) Option {
	return func(i *Interpreter) {
		if w != nil {
			i.out = w
		}
	}
}

// WithResolver sets how `load` finds files. Without one, paths are used as given.
func WithResolver(r SourceResolver) Option {
	return func(i *Interpreter) {
		i.resolver = r
	}
}

// New returns an interpreter whose global environment holds every builtin and
// the predefined constants.
func New(opts ...Option) *Interpreter {
	p, err := parser.NewParser()
	if err != nil {
		panic(fmt.Sprintf("interpreter: %v", err))
	}
	i := &Interpreter{
		global:   runtime.NewEnvironment(nil),
		out:      os.Stdout,
		parser:   p,
		builtins: make(map[string]runtime.NativeFunc),
	}
	for _, opt := range opts {
		opt(i)
	}
	i.registerBuiltins()
	return i
}

// GlobalEnvironment returns the interpreter’s global environment.
func (i *Interpreter) GlobalEnvironment() *runtime.Environment {
	return i.global
}

// Output returns the writer used by `print`.
func (i *Interpreter) Output() io.Writer {
	return i.out
}

// Builtins returns the registered builtin names in sorted order.
func (i *Interpreter) Builtins() []string {
	names := make([]string, 0, len(i.builtins))
	for name := range i.builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Builtin returns the registered builtin with the given name.
func (i *Interpreter) Builtin(name string) (runtime.NativeFunctionValue, bool) {
	impl, ok := i.builtins[name]
	if !ok {
		return runtime.NativeFunctionValue{}, false
	}
	return runtime.NewNative(name, impl), true
}

// Read parses source and returns its root as an S-expression of top-level forms.
func (i *Interpreter) Read(name string, source []byte) (*runtime.SExprValue, error) {
	root, err := i.parser.Parse(name, source)
	if err != nil {
		return nil, err
	}
	return runtime.Read(root).(*runtime.SExprValue), nil
}

// EvalLine evaluates one line of REPL input: the whole line is read as a
// single S-expression, so `+ 1 2` and `(+ 1 2)` both yield 3. Parse failures
// come back as error values.
func (i *Interpreter) EvalLine(line string) runtime.Value {
	expr, err := i.Read("<stdin>", []byte(line))
	if err != nil {
		return runtime.Errorf(runtime.ErrParseFailure, "%v", err)
	}
	return i.Eval(i.global, expr)
}

// EvalSource evaluates every top-level form of source in order and returns
// one result per form. Only a parse failure produces a Go error.
func (i *Interpreter) EvalSource(name string, source []byte) ([]runtime.Value, error) {
	expr, err := i.Read(name, source)
	if err != nil {
		return nil, err
	}
	results := make([]runtime.Value, 0, expr.Count())
	for expr.Count() > 0 {
		results = append(results, i.Eval(i.global, expr.Pop(0)))
	}
	return results, nil
}

// LoadFile runs `load` for path in the global environment.
func (i *Interpreter) LoadFile(path string) runtime.Value {
	return i.loadInto(i.global, path)
}

func (i *Interpreter) loadInto(env *runtime.Environment, path string) runtime.Value {
	resolved := path
	if i.resolver != nil {
		r, err := i.resolver.Resolve(path)
		if err != nil {
			return loadFailure(err)
		}
		resolved = r
	}
	source, err := os.ReadFile(resolved)
	if err != nil {
		return loadFailure(err)
	}
	expr, err := i.Read(resolved, source)
	if err != nil {
		return loadFailure(err)
	}
	for expr.Count() > 0 {
		v := i.Eval(env, expr.Pop(0))
		if runtime.IsError(v) {
			runtime.Println(i.out, v)
		}
	}
	return runtime.Unit()
}

func loadFailure(err error) runtime.Value {
	return runtime.Errorf(runtime.ErrParseFailure, "Could not load library\n%v", err)
}
