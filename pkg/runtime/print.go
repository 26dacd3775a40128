package runtime

import (
	"io"
	"strconv"
	"strings"
)

// Format renders a value the way the REPL prints it.
func Format(v Value) string {
	var b strings.Builder
	writeValue(&b, v)
	return b.String()
}

// Print writes the rendering of v to w.
func Print(w io.Writer, v Value) error {
	_, err := io.WriteString(w, Format(v))
	return err
}

// Println writes the rendering of v followed by a newline.
func Println(w io.Writer, v Value) error {
	_, err := io.WriteString(w, Format(v)+"\n")
	return err
}

func writeValue(b *strings.Builder, v Value) {
	switch val := v.(type) {
	case NumberValue:
		b.WriteString(strconv.FormatInt(val.Val, 10))
	case BoolValue:
		if val.Val {
			b.WriteString("true")
		} else {
			b.WriteString("false")
		}
	case ErrorValue:
		b.WriteString("Error: ")
		b.WriteString(val.Message)
	case SymbolValue:
		b.WriteString(val.Name)
	case StringValue:
		b.WriteString(strconv.Quote(val.Val))
	case NativeFunctionValue:
		b.WriteString("<builtin>")
	case *LambdaValue:
		b.WriteString("(\\ ")
		writeCells(b, val.Formals.Cells, '{', '}')
		b.WriteByte(' ')
		writeCells(b, val.Body.Cells, '{', '}')
		b.WriteByte(')')
	case *SExprValue:
		writeCells(b, val.Cells, '(', ')')
	case *QExprValue:
		writeCells(b, val.Cells, '{', '}')
	case nil:
		b.WriteString("<nil>")
	default:
		b.WriteString("<" + v.Kind().String() + ">")
	}
}

func writeCells(b *strings.Builder, cells []Value, open, close byte) {
	b.WriteByte(open)
	for i, c := range cells {
		if i > 0 {
			b.WriteByte(' ')
		}
		writeValue(b, c)
	}
	b.WriteByte(close)
}
