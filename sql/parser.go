package sql

import (
	"strconv"

	"github.com/helidb/helidb/core"
)

// Parser is a recursive-descent parser producing one Statement per
// terminated SQL statement. It fails fast at the first syntax error.
type Parser struct {
	lexer *Lexer
	cur   Token
	peek  Token
}

func NewParser(sql string) *Parser {
	return &Parser{lexer: NewLexer(sql)}
}

// Parse parses a full source string into its statements. Statements
// are separated by semicolons; a trailing semicolon is optional for
// the last one.
func Parse(sql string) ([]Statement, error) {
	return NewParser(sql).ParseStatements()
}

func (parser *Parser) ParseStatements() ([]Statement, error) {
	if err := parser.start(); err != nil {
		return nil, err
	}

	// On error the statements parsed so far are returned too, so
	// callers can report which statement failed.
	var statements []Statement
	for parser.cur.Type != EOF {
		if parser.cur.Type == Semicolon {
			if err := parser.advance(); err != nil {
				return statements, err
			}
			continue
		}

		statement, err := parser.parseStatement()
		if err != nil {
			return statements, err
		}

		switch parser.cur.Type {
		case Semicolon, EOF:
		default:
			return statements, parser.unexpected("';'")
		}
		statements = append(statements, statement)
	}
	return statements, nil
}

func (parser *Parser) start() error {
	if err := parser.advance(); err != nil {
		return err
	}
	return parser.advance()
}

func (parser *Parser) advance() error {
	parser.cur = parser.peek
	token, err := parser.lexer.NextToken()
	if err != nil {
		return err
	}
	parser.peek = token
	return nil
}

func (parser *Parser) expect(t TokenType, what string) (Token, error) {
	if parser.cur.Type != t {
		return Token{}, parser.unexpected(what)
	}
	token := parser.cur
	if err := parser.advance(); err != nil {
		return Token{}, err
	}
	return token, nil
}

// accept consumes the current token when it matches, reporting
// whether it did.
func (parser *Parser) accept(t TokenType) (bool, error) {
	if parser.cur.Type != t {
		return false, nil
	}
	return true, parser.advance()
}

func (parser *Parser) unexpected(what string) error {
	got := parser.cur.String()
	if parser.cur.Type == EOF {
		got = "end of input"
	}
	return core.Errorf(core.ParseError, "expected %s, got %s", what, got)
}

func (parser *Parser) parseStatement() (Statement, error) {
	switch parser.cur.Type {
	case Create:
		return parser.parseCreateTable()
	case Drop:
		return parser.parseDropTable()
	case Insert:
		return parser.parseInsert()
	case Select:
		return parser.parseSelect()
	case Update:
		return parser.parseUpdate()
	case Delete:
		return parser.parseDelete()
	default:
		return nil, parser.unexpected("a statement (CREATE, DROP, INSERT, SELECT, UPDATE, or DELETE)")
	}
}

func (parser *Parser) parseCreateTable() (Statement, error) {
	var statement CreateTableStatement

	if err := parser.advance(); err != nil { // consume CREATE
		return nil, err
	}
	if _, err := parser.expect(Table, "TABLE"); err != nil {
		return nil, err
	}

	if ok, err := parser.accept(If); err != nil {
		return nil, err
	} else if ok {
		if _, err := parser.expect(Not, "NOT"); err != nil {
			return nil, err
		}
		if _, err := parser.expect(Exists, "EXISTS"); err != nil {
			return nil, err
		}
		statement.IfNotExists = true
	}

	name, err := parser.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	statement.Table = name.Value

	if _, err := parser.expect(ParenOpen, "'('"); err != nil {
		return nil, err
	}
	for {
		column, err := parser.parseColumnDef()
		if err != nil {
			return nil, err
		}
		statement.Columns = append(statement.Columns, column)

		if ok, err := parser.accept(Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := parser.expect(ParenClose, "')'"); err != nil {
		return nil, err
	}

	return statement, nil
}

func (parser *Parser) parseColumnDef() (core.Column, error) {
	name, err := parser.expect(Identifier, "column name")
	if err != nil {
		return core.Column{}, err
	}

	columnType, err := parser.parseColumnType()
	if err != nil {
		return core.Column{}, err
	}

	column := core.Column{Name: name.Value, Type: columnType, Nullable: true}
	for {
		switch parser.cur.Type {
		case Primary:
			if err := parser.advance(); err != nil {
				return core.Column{}, err
			}
			if _, err := parser.expect(Key, "KEY"); err != nil {
				return core.Column{}, err
			}
			column.PrimaryKey = true
			column.Nullable = false
		case Not:
			if err := parser.advance(); err != nil {
				return core.Column{}, err
			}
			if _, err := parser.expect(Null, "NULL"); err != nil {
				return core.Column{}, err
			}
			column.Nullable = false
		default:
			return column, nil
		}
	}
}

func (parser *Parser) parseColumnType() (core.ColumnType, error) {
	switch parser.cur.Type {
	case IntKeyword, Integer:
		if err := parser.advance(); err != nil {
			return core.ColumnType{}, err
		}
		// A display width like INT(32) is accepted and discarded.
		if ok, err := parser.accept(ParenOpen); err != nil {
			return core.ColumnType{}, err
		} else if ok {
			if _, err := parser.expect(Int, "display width"); err != nil {
				return core.ColumnType{}, err
			}
			if _, err := parser.expect(ParenClose, "')'"); err != nil {
				return core.ColumnType{}, err
			}
		}
		return core.ColumnType{Kind: core.IntType}, nil
	case Varchar:
		if err := parser.advance(); err != nil {
			return core.ColumnType{}, err
		}
		if ok, err := parser.accept(ParenOpen); err != nil {
			return core.ColumnType{}, err
		} else if !ok {
			// Bare VARCHAR means no declared length cap.
			return core.ColumnType{Kind: core.VarcharType}, nil
		}
		length, err := parser.expect(Int, "VARCHAR length")
		if err != nil {
			return core.ColumnType{}, err
		}
		n, convErr := strconv.Atoi(length.Value)
		if convErr != nil {
			return core.ColumnType{}, core.Errorf(core.ParseError, "invalid VARCHAR length %s", length.Value)
		}
		if n <= 0 {
			return core.ColumnType{}, core.Errorf(core.SchemaError, "VARCHAR length must be positive")
		}
		if _, err := parser.expect(ParenClose, "')'"); err != nil {
			return core.ColumnType{}, err
		}
		return core.ColumnType{Kind: core.VarcharType, Length: n}, nil
	default:
		return core.ColumnType{}, parser.unexpected("column type (INT or VARCHAR)")
	}
}

func (parser *Parser) parseDropTable() (Statement, error) {
	if err := parser.advance(); err != nil { // consume DROP
		return nil, err
	}
	if _, err := parser.expect(Table, "TABLE"); err != nil {
		return nil, err
	}

	var statement DropTableStatement
	for {
		name, err := parser.expect(Identifier, "table name")
		if err != nil {
			return nil, err
		}
		statement.Tables = append(statement.Tables, name.Value)

		if ok, err := parser.accept(Comma); err != nil {
			return nil, err
		} else if !ok {
			return statement, nil
		}
	}
}

func (parser *Parser) parseInsert() (Statement, error) {
	if err := parser.advance(); err != nil { // consume INSERT
		return nil, err
	}
	if _, err := parser.accept(Into); err != nil { // INTO is optional
		return nil, err
	}

	var statement InsertStatement
	name, err := parser.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	statement.Table = name.Value

	if ok, err := parser.accept(ParenOpen); err != nil {
		return nil, err
	} else if ok {
		for {
			column, err := parser.expect(Identifier, "column name")
			if err != nil {
				return nil, err
			}
			statement.Columns = append(statement.Columns, column.Value)

			if ok, err := parser.accept(Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
		if _, err := parser.expect(ParenClose, "')'"); err != nil {
			return nil, err
		}
	}

	if _, err := parser.expect(Values, "VALUES"); err != nil {
		return nil, err
	}
	for {
		row, err := parser.parseTuple()
		if err != nil {
			return nil, err
		}
		statement.Rows = append(statement.Rows, row)

		if ok, err := parser.accept(Comma); err != nil {
			return nil, err
		} else if !ok {
			return statement, nil
		}
	}
}

func (parser *Parser) parseTuple() ([]Expression, error) {
	if _, err := parser.expect(ParenOpen, "'('"); err != nil {
		return nil, err
	}
	var row []Expression
	for {
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		row = append(row, expr)

		if ok, err := parser.accept(Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}
	if _, err := parser.expect(ParenClose, "')'"); err != nil {
		return nil, err
	}
	return row, nil
}

func (parser *Parser) parseSelect() (Statement, error) {
	if err := parser.advance(); err != nil { // consume SELECT
		return nil, err
	}

	var statement SelectStatement
	if ok, err := parser.accept(Asterisk); err != nil {
		return nil, err
	} else if ok {
		statement.Star = true
	} else {
		for {
			column, err := parser.expect(Identifier, "column name or '*'")
			if err != nil {
				return nil, err
			}
			statement.Columns = append(statement.Columns, column.Value)

			if ok, err := parser.accept(Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
	}

	if _, err := parser.expect(From, "FROM"); err != nil {
		return nil, err
	}
	name, err := parser.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	statement.Table = name.Value

	statement.Where, err = parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}

	if ok, err := parser.accept(Order); err != nil {
		return nil, err
	} else if ok {
		if _, err := parser.expect(By, "BY"); err != nil {
			return nil, err
		}
		for {
			column, err := parser.expect(Identifier, "column name")
			if err != nil {
				return nil, err
			}
			key := OrderKey{Column: column.Value}
			if ok, err := parser.accept(Asc); err != nil {
				return nil, err
			} else if !ok {
				if ok, err := parser.accept(Desc); err != nil {
					return nil, err
				} else if ok {
					key.Descending = true
				}
			}
			statement.OrderBy = append(statement.OrderBy, key)

			if ok, err := parser.accept(Comma); err != nil {
				return nil, err
			} else if !ok {
				break
			}
		}
	}

	return statement, nil
}

func (parser *Parser) parseUpdate() (Statement, error) {
	if err := parser.advance(); err != nil { // consume UPDATE
		return nil, err
	}

	var statement UpdateStatement
	name, err := parser.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	statement.Table = name.Value

	if _, err := parser.expect(Set, "SET"); err != nil {
		return nil, err
	}
	for {
		column, err := parser.expect(Identifier, "column name")
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(Equals, "'='"); err != nil {
			return nil, err
		}
		value, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		statement.Assignments = append(statement.Assignments, Assignment{
			Column: column.Value,
			Value:  value,
		})

		if ok, err := parser.accept(Comma); err != nil {
			return nil, err
		} else if !ok {
			break
		}
	}

	statement.Where, err = parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return statement, nil
}

func (parser *Parser) parseDelete() (Statement, error) {
	if err := parser.advance(); err != nil { // consume DELETE
		return nil, err
	}
	if _, err := parser.expect(From, "FROM"); err != nil {
		return nil, err
	}

	var statement DeleteStatement
	name, err := parser.expect(Identifier, "table name")
	if err != nil {
		return nil, err
	}
	statement.Table = name.Value

	statement.Where, err = parser.parseOptionalWhere()
	if err != nil {
		return nil, err
	}
	return statement, nil
}

func (parser *Parser) parseOptionalWhere() (Expression, error) {
	if ok, err := parser.accept(Where); err != nil {
		return nil, err
	} else if !ok {
		return nil, nil
	}
	return parser.parseExpression()
}

// Expression grammar, loosest to tightest:
// OR < AND < NOT < comparison / IS NULL < additive < multiplicative
// < unary minus < atom.
func (parser *Parser) parseExpression() (Expression, error) {
	return parser.parseOr()
}

func (parser *Parser) parseOr() (Expression, error) {
	left, err := parser.parseAnd()
	if err != nil {
		return nil, err
	}
	for parser.cur.Type == Or {
		if err := parser.advance(); err != nil {
			return nil, err
		}
		right, err := parser.parseAnd()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: OpOr, Left: left, Right: right}
	}
	return left, nil
}

func (parser *Parser) parseAnd() (Expression, error) {
	left, err := parser.parseNot()
	if err != nil {
		return nil, err
	}
	for parser.cur.Type == And {
		if err := parser.advance(); err != nil {
			return nil, err
		}
		right, err := parser.parseNot()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: OpAnd, Left: left, Right: right}
	}
	return left, nil
}

func (parser *Parser) parseNot() (Expression, error) {
	if parser.cur.Type == Not {
		if err := parser.advance(); err != nil {
			return nil, err
		}
		operand, err := parser.parseNot()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: OpNot, Operand: operand}, nil
	}
	return parser.parseComparison()
}

func (parser *Parser) parseComparison() (Expression, error) {
	left, err := parser.parseAdditive()
	if err != nil {
		return nil, err
	}
	for {
		switch parser.cur.Type {
		case Is:
			if err := parser.advance(); err != nil {
				return nil, err
			}
			negated, err := parser.accept(Not)
			if err != nil {
				return nil, err
			}
			if _, err := parser.expect(Null, "NULL"); err != nil {
				return nil, err
			}
			left = IsNullExpr{Operand: left, Negated: negated}
		case Equals, NotEquals, LessThan, GreaterThan, LessThanOrEqual, GreaterThanOrEqual:
			op := comparisonOp(parser.cur.Type)
			if err := parser.advance(); err != nil {
				return nil, err
			}
			right, err := parser.parseAdditive()
			if err != nil {
				return nil, err
			}
			left = BinaryExpr{Op: op, Left: left, Right: right}
		default:
			return left, nil
		}
	}
}

func comparisonOp(t TokenType) BinaryOp {
	switch t {
	case Equals:
		return OpEq
	case NotEquals:
		return OpNe
	case LessThan:
		return OpLt
	case GreaterThan:
		return OpGt
	case LessThanOrEqual:
		return OpLe
	default:
		return OpGe
	}
}

func (parser *Parser) parseAdditive() (Expression, error) {
	left, err := parser.parseMultiplicative()
	if err != nil {
		return nil, err
	}
	for parser.cur.Type == Plus || parser.cur.Type == Minus {
		op := OpAdd
		if parser.cur.Type == Minus {
			op = OpSub
		}
		if err := parser.advance(); err != nil {
			return nil, err
		}
		right, err := parser.parseMultiplicative()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
	return left, nil
}

func (parser *Parser) parseMultiplicative() (Expression, error) {
	left, err := parser.parseUnary()
	if err != nil {
		return nil, err
	}
	for {
		var op BinaryOp
		switch parser.cur.Type {
		case Asterisk:
			op = OpMul
		case Slash:
			op = OpDiv
		case Percent:
			op = OpMod
		default:
			return left, nil
		}
		if err := parser.advance(); err != nil {
			return nil, err
		}
		right, err := parser.parseUnary()
		if err != nil {
			return nil, err
		}
		left = BinaryExpr{Op: op, Left: left, Right: right}
	}
}

func (parser *Parser) parseUnary() (Expression, error) {
	if parser.cur.Type == Minus {
		if err := parser.advance(); err != nil {
			return nil, err
		}
		operand, err := parser.parseUnary()
		if err != nil {
			return nil, err
		}
		return UnaryExpr{Op: OpNeg, Operand: operand}, nil
	}
	return parser.parseAtom()
}

func (parser *Parser) parseAtom() (Expression, error) {
	switch parser.cur.Type {
	case Int:
		value := parser.cur.Value
		if err := parser.advance(); err != nil {
			return nil, err
		}
		n, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return nil, core.Errorf(core.ParseError, "integer literal %s out of range", value)
		}
		return LiteralExpr{Value: core.NewInt(int32(n))}, nil
	case String:
		value := parser.cur.Value
		if err := parser.advance(); err != nil {
			return nil, err
		}
		return LiteralExpr{Value: core.NewVarchar(value)}, nil
	case Null:
		if err := parser.advance(); err != nil {
			return nil, err
		}
		return LiteralExpr{Value: core.Null()}, nil
	case Identifier:
		name := parser.cur.Value
		if err := parser.advance(); err != nil {
			return nil, err
		}
		return ColumnExpr{Name: name}, nil
	case ParenOpen:
		if err := parser.advance(); err != nil {
			return nil, err
		}
		expr, err := parser.parseExpression()
		if err != nil {
			return nil, err
		}
		if _, err := parser.expect(ParenClose, "')'"); err != nil {
			return nil, err
		}
		return expr, nil
	default:
		return nil, parser.unexpected("an expression")
	}
}
