package runtime

// Copy returns an independent deep copy of v.
func Copy(v Value) Value {
	switch val := v.(type) {
	case NumberValue, BoolValue, SymbolValue, StringValue, ErrorValue, NativeFunctionValue:
		return val
	case *LambdaValue:
		// The captured environment is never mutated after capture, so copies
		// share it.
		return &LambdaValue{
			Formals: copyQExpr(val.Formals),
			Body:    copyQExpr(val.Body),
			Closure: val.Closure,
		}
	case *SExprValue:
		return &SExprValue{List{Cells: copyCells(val.Cells)}}
	case *QExprValue:
		return copyQExpr(val)
	case nil:
		return nil
	default:
		panic("runtime: copy of unsupported value")
	}
}

func copyQExpr(q *QExprValue) *QExprValue {
	if q == nil {
		return nil
	}
	return &QExprValue{List{Cells: copyCells(q.Cells)}}
}

func copyCells(cells []Value) []Value {
	if cells == nil {
		return nil
	}
	out := make([]Value, len(cells))
	for i, c := range cells {
		out[i] = Copy(c)
	}
	return out
}

// Equal reports structural equality. Builtins compare by registered name,
// lambdas by formals and body.
func Equal(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch x := a.(type) {
	case NumberValue:
		return x.Val == b.(NumberValue).Val
	case BoolValue:
		return x.Val == b.(BoolValue).Val
	case SymbolValue:
		return x.Name == b.(SymbolValue).Name
	case StringValue:
		return x.Val == b.(StringValue).Val
	case ErrorValue:
		return x.Message == b.(ErrorValue).Message
	case NativeFunctionValue:
		y, ok := b.(NativeFunctionValue)
		return ok && x.Name == y.Name
	case *LambdaValue:
		y, ok := b.(*LambdaValue)
		return ok && cellsEqual(x.Formals.Cells, y.Formals.Cells) && cellsEqual(x.Body.Cells, y.Body.Cells)
	case *SExprValue:
		return cellsEqual(x.Cells, b.(*SExprValue).Cells)
	case *QExprValue:
		return cellsEqual(x.Cells, b.(*QExprValue).Cells)
	default:
		return false
	}
}

func cellsEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Truthy implements the `bool` coercion: non-zero numbers, true booleans,
// non-empty strings, symbols and lists, and every function are true; errors
// are false.
func Truthy(v Value) bool {
	switch val := v.(type) {
	case NumberValue:
		return val.Val != 0
	case BoolValue:
		return val.Val
	case ErrorValue:
		return false
	case SymbolValue:
		return val.Name != ""
	case StringValue:
		return val.Val != ""
	case NativeFunctionValue, *LambdaValue:
		return true
	case *SExprValue:
		return val.Count() > 0
	case *QExprValue:
		return val.Count() > 0
	default:
		return false
	}
}
