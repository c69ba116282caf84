package db

import (
	"github.com/helidb/helidb/core"
	"github.com/helidb/helidb/sql"
)

// tristate is the three-valued truth of a predicate: SQL boolean
// logic where NULL is distinct from both true and false.
type tristate int

const (
	triFalse tristate = iota
	triTrue
	triNull
)

// truth interprets a value as a condition. Booleans are integers
// 0/1 (the representation comparisons produce); NULL stays unknown.
func truth(v core.Value) (tristate, error) {
	if v.IsNull() {
		return triNull, nil
	}
	if v.Kind != core.IntValue {
		return triFalse, core.Errorf(core.TypeError, "condition must be boolean, got %s", v.Kind)
	}
	if v.Int != 0 {
		return triTrue, nil
	}
	return triFalse, nil
}

// evalExpr evaluates an expression against a row of the given table.
// A nil row means no row context: column references become Bind
// errors, which is how constant expressions (INSERT values) are
// evaluated.
func evalExpr(table *core.Table, row core.Row, expr sql.Expression) (core.Value, error) {
	switch e := expr.(type) {
	case sql.LiteralExpr:
		return e.Value, nil

	case sql.ColumnExpr:
		if row == nil {
			return core.Value{}, core.Errorf(core.BindError, "column %s not allowed in this context", e.Name)
		}
		index, ok := table.ColumnIndex(e.Name)
		if !ok {
			return core.Value{}, core.Errorf(core.BindError, "unknown column %s", e.Name)
		}
		return row[index], nil

	case sql.IsNullExpr:
		v, err := evalExpr(table, row, e.Operand)
		if err != nil {
			return core.Value{}, err
		}
		if e.Negated {
			return core.NewBool(!v.IsNull()), nil
		}
		return core.NewBool(v.IsNull()), nil

	case sql.UnaryExpr:
		return evalUnary(table, row, e)

	case sql.BinaryExpr:
		return evalBinary(table, row, e)

	default:
		return core.Value{}, core.Errorf(core.ParseError, "unsupported expression %T", expr)
	}
}

func evalUnary(table *core.Table, row core.Row, e sql.UnaryExpr) (core.Value, error) {
	v, err := evalExpr(table, row, e.Operand)
	if err != nil {
		return core.Value{}, err
	}
	switch e.Op {
	case sql.OpNeg:
		if v.IsNull() {
			return core.Null(), nil
		}
		if v.Kind != core.IntValue {
			return core.Value{}, core.Errorf(core.TypeError, "cannot negate %s", v.Kind)
		}
		return core.NewInt(-v.Int), nil
	default: // OpNot
		t, err := truth(v)
		if err != nil {
			return core.Value{}, err
		}
		switch t {
		case triTrue:
			return core.NewBool(false), nil
		case triFalse:
			return core.NewBool(true), nil
		default:
			return core.Null(), nil
		}
	}
}

func evalBinary(table *core.Table, row core.Row, e sql.BinaryExpr) (core.Value, error) {
	left, err := evalExpr(table, row, e.Left)
	if err != nil {
		return core.Value{}, err
	}
	right, err := evalExpr(table, row, e.Right)
	if err != nil {
		return core.Value{}, err
	}

	switch e.Op {
	case sql.OpAnd, sql.OpOr:
		return evalLogical(e.Op, left, right)
	case sql.OpAdd, sql.OpSub, sql.OpMul, sql.OpDiv, sql.OpMod:
		return evalArithmetic(e.Op, left, right)
	default:
		return evalComparison(e.Op, left, right)
	}
}

// evalLogical implements Kleene AND/OR: a NULL operand stays unknown
// unless the other operand already decides the result.
func evalLogical(op sql.BinaryOp, left, right core.Value) (core.Value, error) {
	l, err := truth(left)
	if err != nil {
		return core.Value{}, err
	}
	r, err := truth(right)
	if err != nil {
		return core.Value{}, err
	}
	if op == sql.OpAnd {
		switch {
		case l == triFalse || r == triFalse:
			return core.NewBool(false), nil
		case l == triNull || r == triNull:
			return core.Null(), nil
		default:
			return core.NewBool(true), nil
		}
	}
	switch {
	case l == triTrue || r == triTrue:
		return core.NewBool(true), nil
	case l == triNull || r == triNull:
		return core.Null(), nil
	default:
		return core.NewBool(false), nil
	}
}

func evalArithmetic(op sql.BinaryOp, left, right core.Value) (core.Value, error) {
	if left.IsNull() || right.IsNull() {
		return core.Null(), nil
	}
	if left.Kind != core.IntValue || right.Kind != core.IntValue {
		return core.Value{}, core.Errorf(core.TypeError, "arithmetic requires INT operands, got %s %s %s", left.Kind, op, right.Kind)
	}
	switch op {
	case sql.OpAdd:
		return core.NewInt(left.Int + right.Int), nil
	case sql.OpSub:
		return core.NewInt(left.Int - right.Int), nil
	case sql.OpMul:
		return core.NewInt(left.Int * right.Int), nil
	case sql.OpDiv:
		if right.Int == 0 {
			return core.Value{}, core.Errorf(core.ArithmeticError, "division by zero")
		}
		return core.NewInt(left.Int / right.Int), nil
	default: // OpMod
		if right.Int == 0 {
			return core.Value{}, core.Errorf(core.ArithmeticError, "modulo by zero")
		}
		return core.NewInt(left.Int % right.Int), nil
	}
}

// evalComparison yields a three-valued boolean: NULL when either
// operand is NULL, a Type error on mixed non-null kinds.
func evalComparison(op sql.BinaryOp, left, right core.Value) (core.Value, error) {
	if left.IsNull() || right.IsNull() {
		return core.Null(), nil
	}
	if left.Kind != right.Kind {
		return core.Value{}, core.Errorf(core.TypeError, "cannot compare %s with %s", left.Kind, right.Kind)
	}
	switch op {
	case sql.OpEq:
		return core.NewBool(left.Equal(right)), nil
	case sql.OpNe:
		return core.NewBool(!left.Equal(right)), nil
	}
	cmp, err := left.Compare(right)
	if err != nil {
		return core.Value{}, err
	}
	switch op {
	case sql.OpLt:
		return core.NewBool(cmp < 0), nil
	case sql.OpGt:
		return core.NewBool(cmp > 0), nil
	case sql.OpLe:
		return core.NewBool(cmp <= 0), nil
	default: // OpGe
		return core.NewBool(cmp >= 0), nil
	}
}

// admits reports whether a WHERE clause accepts the row. Only a
// predicate that evaluates to true admits; false and NULL both
// reject. A nil clause admits every row.
func admits(table *core.Table, row core.Row, where sql.Expression) (bool, error) {
	if where == nil {
		return true, nil
	}
	v, err := evalExpr(table, row, where)
	if err != nil {
		return false, err
	}
	t, err := truth(v)
	if err != nil {
		return false, err
	}
	return t == triTrue, nil
}
