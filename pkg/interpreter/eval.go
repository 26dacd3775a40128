package interpreter

import (
	"polish/interpreter-go/pkg/runtime"
)

// Eval reduces v to a single value. Symbols are looked up, S-expressions are
// evaluated and applied; every other value evaluates to itself.
func (i *Interpreter) Eval(env *runtime.Environment, v runtime.Value) runtime.Value {
	switch val := v.(type) {
	case runtime.SymbolValue:
		return env.Get(val.Name)
	case *runtime.SExprValue:
		return i.evalSExpr(env, val)
	case runtime.NumberValue, runtime.BoolValue, runtime.ErrorValue, runtime.StringValue,
		runtime.NativeFunctionValue, *runtime.LambdaValue, *runtime.QExprValue:
		return v
	default:
		return v
	}
}

func (i *Interpreter) evalSExpr(env *runtime.Environment, expr *runtime.SExprValue) runtime.Value {
	for idx := range expr.Cells {
		expr.Cells[idx] = i.Eval(env, expr.Cells[idx])
		if runtime.IsError(expr.Cells[idx]) {
			return expr.Take(idx)
		}
	}

	switch expr.Count() {
	case 0:
		return expr
	case 1:
		return expr.Take(0)
	}

	first := expr.Pop(0)
	if !runtime.IsFunction(first) {
		return runtime.Errorf(runtime.ErrNotCallable, "'%s' is not a function", first.Kind())
	}
	return i.Call(env, first, expr)
}

// Call applies fn to args. The callee owns args.
func (i *Interpreter) Call(env *runtime.Environment, fn runtime.Value, args *runtime.SExprValue) runtime.Value {
	switch f := fn.(type) {
	case runtime.NativeFunctionValue:
		return f.Impl(env, args)
	case *runtime.LambdaValue:
		return i.callLambda(env, f, args)
	default:
		return runtime.Errorf(runtime.ErrNotCallable, "'%s' is not a function", fn.Kind())
	}
}

func (i *Interpreter) callLambda(env *runtime.Environment, fn *runtime.LambdaValue, args *runtime.SExprValue) runtime.Value {
	if args.Count() != fn.Formals.Count() {
		return runtime.Errorf(runtime.ErrArityMismatch,
			"Lambda passed incorrect number of arguments. Expected %d instead of %d.",
			fn.Formals.Count(), args.Count())
	}
	scope := fn.Closure
	if scope == nil {
		scope = env.Root()
	}
	frame := scope.Extend()
	for idx, formal := range fn.Formals.Cells {
		sym, ok := formal.(runtime.SymbolValue)
		if !ok {
			return runtime.Errorf(runtime.ErrTypeMismatch,
				"Cannot bind non-symbol. Expected %s instead of %s.", runtime.KindSymbol, formal.Kind())
		}
		frame.Put(sym.Name, args.Cells[idx])
	}
	body := runtime.Copy(fn.Body).(*runtime.QExprValue).ToSExpr()
	return i.Eval(frame, body)
}
