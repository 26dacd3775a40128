package interpreter

import (
	"polish/interpreter-go/pkg/runtime"
)

func booleanFold(fn string, combine func(a, b bool) bool) runtime.NativeFunc {
	return func(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
		if e := minArityError(fn, args, 1); e != nil {
			return e
		}
		for idx := range args.Cells {
			if e := typeError(fn, args, idx, runtime.KindBool); e != nil {
				return e
			}
		}
		acc := args.Cells[0].(runtime.BoolValue).Val
		for _, cell := range args.Cells[1:] {
			acc = combine(acc, cell.(runtime.BoolValue).Val)
		}
		return runtime.Bool(acc)
	}
}

func builtinEq(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := minArityError("==", args, 1); e != nil {
		return e
	}
	first := args.Cells[0]
	for _, cell := range args.Cells[1:] {
		if !runtime.Equal(first, cell) {
			return runtime.Bool(false)
		}
	}
	return runtime.Bool(true)
}

// builtinNeq is true only when no two arguments are equal.
func builtinNeq(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := minArityError("!=", args, 1); e != nil {
		return e
	}
	for a := 0; a < args.Count(); a++ {
		for b := a + 1; b < args.Count(); b++ {
			if runtime.Equal(args.Cells[a], args.Cells[b]) {
				return runtime.Bool(false)
			}
		}
	}
	return runtime.Bool(true)
}

func numericComparison(fn string, cmp func(a, b int64) bool) runtime.NativeFunc {
	return func(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
		if e := arityError(fn, args, 2); e != nil {
			return e
		}
		if e := typeError(fn, args, 0, runtime.KindNumber); e != nil {
			return e
		}
		if e := typeError(fn, args, 1, runtime.KindNumber); e != nil {
			return e
		}
		left := args.Cells[0].(runtime.NumberValue).Val
		right := args.Cells[1].(runtime.NumberValue).Val
		if cmp(left, right) {
			return runtime.Num(1)
		}
		return runtime.Num(0)
	}
}

func builtinBool(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("bool", args, 1); e != nil {
		return e
	}
	return runtime.Bool(runtime.Truthy(args.Cells[0]))
}

func builtinNot(_ *runtime.Environment, args *runtime.SExprValue) runtime.Value {
	if e := arityError("!", args, 1); e != nil {
		return e
	}
	if e := typeError("!", args, 0, runtime.KindBool); e != nil {
		return e
	}
	return runtime.Bool(!args.Cells[0].(runtime.BoolValue).Val)
}
