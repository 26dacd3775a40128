package runtime

import (
	"fmt"
)

// Kind identifies the runtime value category.
type Kind int

const (
	KindNumber Kind = iota
	KindBool
	KindError
	KindSymbol
	KindString
	KindFunction
	KindSExpr
	KindQExpr
)

func (k Kind) String() string {
	switch k {
	case KindNumber:
		return "Number"
	case KindBool:
		return "Boolean"
	case KindError:
		return "Error"
	case KindSymbol:
		return "Symbol"
	case KindString:
		return "String"
	case KindFunction:
		return "Function"
	case KindSExpr:
		return "S-expression"
	case KindQExpr:
		return "Q-expression"
	default:
		return fmt.Sprintf("unknown_kind_%d", int(k))
	}
}

// Value is the shared behaviour for all runtime values.
type Value interface {
	Kind() Kind
}

//-----------------------------------------------------------------------------
// Scalars
//-----------------------------------------------------------------------------

type NumberValue struct {
	Val int64
}

func (v NumberValue) Kind() Kind { return KindNumber }

type BoolValue struct {
	Val bool
}

func (v BoolValue) Kind() Kind { return KindBool }

type SymbolValue struct {
	Name string
}

func (v SymbolValue) Kind() Kind { return KindSymbol }

type StringValue struct {
	Val string
}

func (v StringValue) Kind() Kind { return KindString }

// Num constructs a number value.
func Num(n int64) NumberValue { return NumberValue{Val: n} }

// Bool constructs a boolean value.
func Bool(b bool) BoolValue { return BoolValue{Val: b} }

// Sym constructs a symbol value.
func Sym(name string) SymbolValue { return SymbolValue{Name: name} }

// Str constructs a string value.
func Str(s string) StringValue { return StringValue{Val: s} }

//-----------------------------------------------------------------------------
// Errors
//-----------------------------------------------------------------------------

// ErrorCode classifies error values. It is not part of equality or printing.
type ErrorCode int

const (
	ErrUnknown ErrorCode = iota
	ErrUnboundSymbol
	ErrArityMismatch
	ErrTypeMismatch
	ErrEmptyList
	ErrNotCallable
	ErrDivisionByZero
	ErrIntegerOverflow
	ErrNegativeExponent
	ErrParseFailure
	ErrUser
)

func (c ErrorCode) String() string {
	switch c {
	case ErrUnboundSymbol:
		return "UnboundSymbol"
	case ErrArityMismatch:
		return "ArityMismatch"
	case ErrTypeMismatch:
		return "TypeMismatch"
	case ErrEmptyList:
		return "EmptyList"
	case ErrNotCallable:
		return "NotCallable"
	case ErrDivisionByZero:
		return "DivisionByZero"
	case ErrIntegerOverflow:
		return "IntegerOverflow"
	case ErrNegativeExponent:
		return "NegativeExponent"
	case ErrParseFailure:
		return "ParseFailure"
	case ErrUser:
		return "UserError"
	default:
		return "Unknown"
	}
}

type ErrorValue struct {
	Code    ErrorCode
	Message string
}

func (v ErrorValue) Kind() Kind { return KindError }

// Error lets an ErrorValue travel through Go error paths (the CLI uses this).
func (v ErrorValue) Error() string { return v.Message }

// Errorf formats an error value.
func Errorf(code ErrorCode, format string, args ...any) ErrorValue {
	return ErrorValue{Code: code, Message: fmt.Sprintf(format, args...)}
}

// IsError reports whether v is an error value.
func IsError(v Value) bool {
	_, ok := v.(ErrorValue)
	return ok
}

//-----------------------------------------------------------------------------
// Functions
//-----------------------------------------------------------------------------

// NativeFunc implements a builtin. It owns args and must not retain any cell
// it does not return.
type NativeFunc func(env *Environment, args *SExprValue) Value

// NativeFunctionValue is a builtin identified by its registered name.
type NativeFunctionValue struct {
	Name string
	Impl NativeFunc
}

func (v NativeFunctionValue) Kind() Kind { return KindFunction }

// NewNative constructs a builtin function value.
func NewNative(name string, impl NativeFunc) NativeFunctionValue {
	return NativeFunctionValue{Name: name, Impl: impl}
}

// LambdaValue is a user function built by `\`.
type LambdaValue struct {
	Formals *QExprValue
	Body    *QExprValue
	Closure *Environment
}

func (v *LambdaValue) Kind() Kind { return KindFunction }

// NewLambda takes ownership of formals and body.
func NewLambda(formals, body *QExprValue, closure *Environment) *LambdaValue {
	return &LambdaValue{Formals: formals, Body: body, Closure: closure}
}

// IsFunction reports whether the value is callable.
func IsFunction(v Value) bool {
	switch v.(type) {
	case NativeFunctionValue, *LambdaValue:
		return true
	default:
		return false
	}
}
