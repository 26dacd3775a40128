package interpreter

import (
	"polish/interpreter-go/pkg/runtime"
)

// autoResolve replaces a bare symbol argument with a copy of its bound value,
// so `(head xs)` works when xs arrives unevaluated. Only the list and
// arithmetic builtins call it; the evaluator itself never does.
func autoResolve(env *runtime.Environment, args *runtime.SExprValue, idx int) {
	if sym, ok := args.Cells[idx].(runtime.SymbolValue); ok {
		args.Cells[idx] = env.Get(sym.Name)
	}
}

func builtinList(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	for idx := range args.Cells {
		autoResolve(env, args, idx)
	}
	return args.ToQExpr()
}

func builtinHead(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("head", args, 1); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	if e := typeError("head", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	if e := emptyError("head", args, 0); e != nil {
		return e
	}
	list := args.Take(0).(*runtime.QExprValue)
	return runtime.NewQExpr(list.Take(0))
}

func builtinTail(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("tail", args, 1); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	if e := typeError("tail", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	if e := emptyError("tail", args, 0); e != nil {
		return e
	}
	list := args.Take(0).(*runtime.QExprValue)
	list.Pop(0)
	return list
}

func (i *Interpreter) builtinEval(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("eval", args, 1); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	if e := typeError("eval", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	list := args.Take(0).(*runtime.QExprValue)
	return i.Eval(env, list.ToSExpr())
}

func builtinJoin(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := minArityError("join", args, 1); e != nil {
		return e
	}
	for idx := range args.Cells {
		autoResolve(env, args, idx)
		if e := typeError("join", args, idx, runtime.KindQExpr); e != nil {
			return e
		}
	}
	out := args.Pop(0).(*runtime.QExprValue)
	for args.Count() > 0 {
		out.Join(args.Pop(0).(*runtime.QExprValue))
	}
	return out
}

func builtinCons(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("cons", args, 2); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	autoResolve(env, args, 1)
	if e := typeError("cons", args, 1, runtime.KindQExpr); e != nil {
		return e
	}
	value := args.Pop(0)
	list := args.Take(0).(*runtime.QExprValue)
	list.Insert(0, value)
	return list
}

func builtinLen(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("len", args, 1); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	if e := typeError("len", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	return runtime.Num(int64(args.Cells[0].(*runtime.QExprValue).Count()))
}

func builtinInit(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("init", args, 1); e != nil {
		return e
	}
	autoResolve(env, args, 0)
	if e := typeError("init", args, 0, runtime.KindQExpr); e != nil {
		return e
	}
	if e := emptyError("init", args, 0); e != nil {
		return e
	}
	list := args.Take(0).(*runtime.QExprValue)
	list.Pop(list.Count() - 1)
	return list
}
