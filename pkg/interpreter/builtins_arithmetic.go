package interpreter

import (
	"math"

	"polish/interpreter-go/pkg/runtime"
)

// arithOp folds next into acc. A non-nil Value is the error to return.
type arithOp func(acc, next int64) (int64, runtime.Value)

// unaryOp applies to a single argument; nil means the argument is returned as is.
type unaryOp func(n int64) (int64, runtime.Value)

func arithmetic(fn string, op arithOp, unary unaryOp) runtime.NativeFunc {
	return func(env *runtime.Environment, args *runtime.SExprValue) runtime.Value {
		if e := minArityError(fn, args, 1); e != nil {
			return e
		}
		for idx := range args.Cells {
			autoResolve(env, args, idx)
			if e := typeError(fn, args, idx, runtime.KindNumber); e != nil {
				return e
			}
		}
		acc := args.Cells[0].(runtime.NumberValue).Val
		if unary != nil && args.Count() == 1 {
			n, failure := unary(acc)
			if failure != nil {
				return failure
			}
			return runtime.Num(n)
		}
		for _, cell := range args.Cells[1:] {
			next, failure := op(acc, cell.(runtime.NumberValue).Val)
			if failure != nil {
				return failure
			}
			acc = next
		}
		return runtime.Num(acc)
	}
}

func overflowError() runtime.Value {
	return runtime.Errorf(runtime.ErrIntegerOverflow, "Integer overflow")
}

func divisionByZeroError() runtime.Value {
	return runtime.Errorf(runtime.ErrDivisionByZero, "Division by zero")
}

func addInt64(a, b int64) (int64, runtime.Value) {
	if (b > 0 && a > math.MaxInt64-b) || (b < 0 && a < math.MinInt64-b) {
		return 0, overflowError()
	}
	return a + b, nil
}

func negInt64(n int64) (int64, runtime.Value) {
	if n == math.MinInt64 {
		return 0, overflowError()
	}
	return -n, nil
}

func subInt64(a, b int64) (int64, runtime.Value) {
	if (b < 0 && a > math.MaxInt64+b) || (b > 0 && a < math.MinInt64+b) {
		return 0, overflowError()
	}
	return a - b, nil
}

func mulInt64(a, b int64) (int64, runtime.Value) {
	if a == 0 || b == 0 {
		return 0, nil
	}
	if (a == -1 && b == math.MinInt64) || (b == -1 && a == math.MinInt64) {
		return 0, overflowError()
	}
	r := a * b
	if r/b != a {
		return 0, overflowError()
	}
	return r, nil
}

func divInt64(a, b int64) (int64, runtime.Value) {
	if b == 0 {
		return 0, divisionByZeroError()
	}
	if a == math.MinInt64 && b == -1 {
		return 0, overflowError()
	}
	return a / b, nil
}

func modInt64(a, b int64) (int64, runtime.Value) {
	if b == 0 {
		return 0, divisionByZeroError()
	}
	return a % b, nil
}

// powInt64 multiplies step by step, checking each product. 0^0 is 1.
func powInt64(base, exp int64) (int64, runtime.Value) {
	if exp < 0 {
		return 0, runtime.Errorf(runtime.ErrNegativeExponent, "Negative exponent (%d) not supported", exp)
	}
	switch base {
	case 0:
		if exp == 0 {
			return 1, nil
		}
		return 0, nil
	case 1:
		return 1, nil
	case -1:
		if exp%2 == 0 {
			return 1, nil
		}
		return -1, nil
	}
	result := int64(1)
	for ; exp > 0; exp-- {
		next, failure := mulInt64(result, base)
		if failure != nil {
			return 0, failure
		}
		result = next
	}
	return result, nil
}

func maxInt64(a, b int64) (int64, runtime.Value) {
	if b > a {
		return b, nil
	}
	return a, nil
}

func minInt64(a, b int64) (int64, runtime.Value) {
	if b < a {
		return b, nil
	}
	return a, nil
}
