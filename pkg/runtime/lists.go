package runtime

// List is the backing sequence shared by S- and Q-expressions. A list owns its
// cells: Pop and Take hand a cell to the caller, Append and Insert take one.
type List struct {
	Cells []Value
}

// Count returns the number of cells.
func (l *List) Count() int { return len(l.Cells) }

// Append adds v as the last cell.
func (l *List) Append(v Value) {
	l.Cells = append(l.Cells, v)
}

// Pop removes the cell at index i and returns it; later cells shift down.
func (l *List) Pop(i int) Value {
	v := l.Cells[i]
	copy(l.Cells[i:], l.Cells[i+1:])
	l.Cells[len(l.Cells)-1] = nil
	l.Cells = l.Cells[:len(l.Cells)-1]
	return v
}

// Take pops the cell at index i and discards every other cell.
func (l *List) Take(i int) Value {
	v := l.Pop(i)
	l.Cells = nil
	return v
}

// Insert places v at index i, shifting later cells up.
func (l *List) Insert(i int, v Value) {
	l.Cells = append(l.Cells, nil)
	copy(l.Cells[i+1:], l.Cells[i:])
	l.Cells[i] = v
}

// Join drains other into the receiver. other is empty afterwards.
func (l *List) Join(other ListValue) {
	src := other.list()
	l.Cells = append(l.Cells, src.Cells...)
	src.Cells = nil
}

func (l *List) list() *List { return l }

// ListValue is implemented by *SExprValue and *QExprValue.
type ListValue interface {
	Value
	Count() int
	list() *List
}

// SExprValue is an evaluated ("active") list.
type SExprValue struct {
	List
}

func (v *SExprValue) Kind() Kind { return KindSExpr }

// QExprValue is a quoted list; the evaluator never reduces it.
type QExprValue struct {
	List
}

func (v *QExprValue) Kind() Kind { return KindQExpr }

// NewSExpr builds an S-expression owning cells.
func NewSExpr(cells ...Value) *SExprValue {
	return &SExprValue{List{Cells: cells}}
}

// NewQExpr builds a Q-expression owning cells.
func NewQExpr(cells ...Value) *QExprValue {
	return &QExprValue{List{Cells: cells}}
}

// ToSExpr reinterprets a Q-expression as an S-expression, moving its cells.
func (v *QExprValue) ToSExpr() *SExprValue {
	out := &SExprValue{List{Cells: v.Cells}}
	v.Cells = nil
	return out
}

// ToQExpr reinterprets an S-expression as a Q-expression, moving its cells.
func (v *SExprValue) ToQExpr() *QExprValue {
	out := &QExprValue{List{Cells: v.Cells}}
	v.Cells = nil
	return out
}

// Unit is the empty S-expression returned by side-effecting builtins.
func Unit() *SExprValue { return NewSExpr() }
