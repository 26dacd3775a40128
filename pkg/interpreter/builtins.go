package interpreter

import (
	"strings"

	"polish/interpreter-go/pkg/runtime"
)

const (
	intMax32 = int64(1<<31 - 1)
	intMin32 = int64(-1 << 31)
)

type builtinEntry struct {
	name string
	impl runtime.NativeFunc
}

func (i *Interpreter) builtinTable() []builtinEntry {
	return []builtinEntry{
		{"load", i.builtinLoad},
		{"error", builtinError},
		{"print", i.builtinPrint},

		{"def", builtinDef},
		{"=", builtinPut},
		{"\\", builtinLambda},

		{"or", booleanFold("or", func(a, b bool) bool { return a || b })},
		{"and", booleanFold("and", func(a, b bool) bool { return a && b })},
		{"==", builtinEq},
		{"!=", builtinNeq},
		{">", numericComparison(">", func(a, b int64) bool { return a > b })},
		{">=", numericComparison(">=", func(a, b int64) bool { return a >= b })},
		{"<", numericComparison("<", func(a, b int64) bool { return a < b })},
		{"<=", numericComparison("<=", func(a, b int64) bool { return a <= b })},
		{"bool", builtinBool},
		{"!", builtinNot},
		{"if", i.builtinIf},

		{"list", builtinList},
		{"head", builtinHead},
		{"tail", builtinTail},
		{"eval", i.builtinEval},
		{"join", builtinJoin},
		{"cons", builtinCons},
		{"len", builtinLen},
		{"init", builtinInit},

		{"+", arithmetic("+", addInt64, nil)},
		{"-", arithmetic("-", subInt64, negInt64)},
		{"*", arithmetic("*", mulInt64, nil)},
		{"/", arithmetic("/", divInt64, nil)},
		{"%", arithmetic("%", modInt64, nil)},
		{"^", arithmetic("^", powInt64, nil)},
		{"max", arithmetic("max", maxInt64, nil)},
		{"min", arithmetic("min", minInt64, nil)},
	}
}

func (i *Interpreter) registerBuiltins() {
	for _, entry := range i.builtinTable() {
		i.builtins[entry.name] = entry.impl
		i.global.Put(entry.name, runtime.NewNative(entry.name, entry.impl))
	}
	i.global.Put("true", runtime.Bool(true))
	i.global.Put("false", runtime.Bool(false))
	i.global.Put("int_max", runtime.Num(intMax32))
	i.global.Put("int_min", runtime.Num(intMin32))
}

//-----------------------------------------------------------------------------
// Argument checks. Each returns nil when the check passes, otherwise the
// error value the builtin must return.
//-----------------------------------------------------------------------------

func arityError(fn string, args *runtime.SExprValue, want int) runtime.Value {
	if args.Count() == want {
		return nil
	}
	return runtime.Errorf(runtime.ErrArityMismatch,
		"Function '%s' passed incorrect number of arguments. Expected %d instead of %d.",
		fn, want, args.Count())
}

func minArityError(fn string, args *runtime.SExprValue, min int) runtime.Value {
	if args.Count() >= min {
		return nil
	}
	return runtime.Errorf(runtime.ErrArityMismatch,
		"Function '%s' passed incorrect number of arguments. Expected at least %d instead of %d.",
		fn, min, args.Count())
}

func typeError(fn string, args *runtime.SExprValue, idx int, want runtime.Kind) runtime.Value {
	got := args.Cells[idx].Kind()
	if got == want {
		return nil
	}
	return runtime.Errorf(runtime.ErrTypeMismatch,
		"Function '%s' passed incorrect type for argument %d. Expected %s instead of %s.",
		fn, idx, want, got)
}

func emptyError(fn string, args *runtime.SExprValue, idx int) runtime.Value {
	if l, ok := args.Cells[idx].(runtime.ListValue); ok && l.Count() > 0 {
		return nil
	}
	return runtime.Errorf(runtime.ErrEmptyList, "Function '%s' passed {} for argument %d.", fn, idx)
}

//-----------------------------------------------------------------------------
// Definition and lambdas
//-----------------------------------------------------------------------------

func builtinDef(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	return defineVariables(env, args, "def", env.Def)
}

func builtinPut(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	return defineVariables(env, args, "=", env.Put)
}

func defineVariables(env *runtime.Environment, args *runtime.SExprValue, fn string, bind func(string, runtime.Value)) runtime.Value {
	if e := minArityError(fn, args, 1); e != nil {
		return e
	}
	if e := typeError(fn, args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	syms := args.Cells[0].(*runtime.QExprValue)
	for _, cell := range syms.Cells {
		if cell.Kind() != runtime.KindSymbol {
			return runtime.Errorf(runtime.ErrTypeMismatch,
				"Function '%s' cannot define non-symbol. Expected %s instead of %s.",
				fn, runtime.KindSymbol, cell.Kind())
		}
	}
	if syms.Count() != args.Count()-1 {
		return runtime.Errorf(runtime.ErrArityMismatch,
			"Function '%s' takes incorrect number of values. Expected %d instead of %d.",
			fn, syms.Count(), args.Count()-1)
	}
	for idx, cell := range syms.Cells {
		bind(cell.(runtime.SymbolValue).Name, args.Cells[idx+1])
	}
	return runtime.Unit()
}

func builtinLambda(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("\\", args, 2); e != nil {
		return e
	}
	if e := typeError("\\", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	if e := typeError("\\", args, 1, runtime.KindQExpr); e != nil {
		return e
	}
	for _, cell := range args.Cells[0].(*runtime.QExprValue).Cells {
		if cell.Kind() != runtime.KindSymbol {
			return runtime.Errorf(runtime.ErrTypeMismatch,
				"Cannot define non-symbol. Expected %s instead of %s.", runtime.KindSymbol, cell.Kind())
		}
	}
	formals := args.Pop(0).(*runtime.QExprValue)
	body := args.Pop(0).(*runtime.QExprValue)
	return runtime.NewLambda(formals, body, env.Capture())
}

//-----------------------------------------------------------------------------
// Conditional
//-----------------------------------------------------------------------------

func (i *Interpreter) builtinIf(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("if", args, 3); e != nil {
		return e
	}
	if n, ok := args.Cells[0].(runtime.NumberValue); ok {
		args.Cells[0] = runtime.Bool(n.Val != 0)
	}
	if e := typeError("if", args, 0, runtime.KindBool); e != nil {
		return e
	}
	if e := typeError("if", args, 1, runtime.KindQExpr); e != nil {
		return e
	}
	if e := typeError("if", args, 2, runtime.KindQExpr); e != nil {
		return e
	}
	branch := 2
	if args.Cells[0].(runtime.BoolValue).Val {
		branch = 1
	}
	chosen := args.Take(branch).(*runtime.QExprValue)
	return i.Eval(env, chosen.ToSExpr())
}

//-----------------------------------------------------------------------------
// I/O
//-----------------------------------------------------------------------------

func (i *Interpreter) builtinPrint(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	parts := make([]string, 0, args.Count())
	for _, cell := range args.Cells {
		parts = append(parts, runtime.Format(cell))
	}
	_, _ = i.out.Write([]byte(strings.Join(parts, " ") + "\n"))
	return runtime.Unit()
}

func builtinError(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("error", args, 1); e != nil {
		return e
	}
	if e := typeError("error", args, 0, runtime.KindString); e != nil {
		return e
	}
	return runtime.ErrorValue{Code: runtime.ErrUser, Message: args.Cells[0].(runtime.StringValue).Val}
}

func (i *Interpreter) builtinLoad(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("load", args, 1); e != nil {
		return e
	}
	if e := typeError("load", args, 0, runtime.KindString); e != nil {
		return e
	}
	return i.loadInto(env, args.Cells[0].(runtime.StringValue).Val)
}
