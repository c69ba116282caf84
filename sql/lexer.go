package sql

import (
	"strings"

	"github.com/helidb/helidb/core"
)

type Token struct {
	Type  TokenType
	Value string
	Pos   int // byte offset of the token start in the source
}

type TokenType int

const (
	Identifier TokenType = iota
	Int
	String
	Comma
	ParenOpen
	ParenClose
	Semicolon
	Equals
	NotEquals
	LessThan
	GreaterThan
	LessThanOrEqual
	GreaterThanOrEqual
	Plus
	Minus
	Asterisk
	Slash
	Percent
	Create
	Table
	If
	Exists
	Drop
	Insert
	Into
	Values
	Select
	From
	Where
	Order
	By
	Asc
	Desc
	Update
	Set
	Delete
	Primary
	Key
	Not
	Null
	Is
	And
	Or
	IntKeyword
	Integer
	Varchar
	EOF
)

func (token Token) String() string {
	switch token.Type {
	case Identifier:
		return "Identifier(" + token.Value + ")"
	case Int:
		return "Int(" + token.Value + ")"
	case String:
		return "String(" + token.Value + ")"
	case Comma:
		return "Comma"
	case ParenOpen:
		return "ParenOpen"
	case ParenClose:
		return "ParenClose"
	case Semicolon:
		return "Semicolon"
	case Equals:
		return "Equals"
	case NotEquals:
		return "NotEquals"
	case LessThan:
		return "LessThan"
	case GreaterThan:
		return "GreaterThan"
	case LessThanOrEqual:
		return "LessThanOrEqual"
	case GreaterThanOrEqual:
		return "GreaterThanOrEqual"
	case Plus:
		return "Plus"
	case Minus:
		return "Minus"
	case Asterisk:
		return "Asterisk"
	case Slash:
		return "Slash"
	case Percent:
		return "Percent"
	case EOF:
		return "EOF"
	default:
		return "Keyword(" + token.Value + ")"
	}
}

var keywords = map[string]TokenType{
	"CREATE":  Create,
	"TABLE":   Table,
	"IF":      If,
	"EXISTS":  Exists,
	"DROP":    Drop,
	"INSERT":  Insert,
	"INTO":    Into,
	"VALUES":  Values,
	"SELECT":  Select,
	"FROM":    From,
	"WHERE":   Where,
	"ORDER":   Order,
	"BY":      By,
	"ASC":     Asc,
	"DESC":    Desc,
	"UPDATE":  Update,
	"SET":     Set,
	"DELETE":  Delete,
	"PRIMARY": Primary,
	"KEY":     Key,
	"NOT":     Not,
	"NULL":    Null,
	"IS":      Is,
	"AND":     And,
	"OR":      Or,
	"INT":     IntKeyword,
	"INTEGER": Integer,
	"VARCHAR": Varchar,
}

// lookupIdentifier classifies a word as a keyword (case-insensitive)
// or an identifier (source case preserved).
func lookupIdentifier(word string) TokenType {
	if t, ok := keywords[strings.ToUpper(word)]; ok {
		return t
	}
	return Identifier
}

type Lexer struct {
	sql          string
	position     int
	readPosition int
	ch           byte
}

func NewLexer(sql string) *Lexer {
	lexer := &Lexer{sql: sql}
	lexer.readChar()
	return lexer
}

func (lexer *Lexer) readChar() {
	if lexer.readPosition >= len(lexer.sql) {
		lexer.ch = 0
	} else {
		lexer.ch = lexer.sql[lexer.readPosition]
	}
	lexer.position = lexer.readPosition
	lexer.readPosition++
}

func (lexer *Lexer) peekChar() byte {
	if lexer.readPosition >= len(lexer.sql) {
		return 0
	}
	return lexer.sql[lexer.readPosition]
}

func (lexer *Lexer) NextToken() (Token, error) {
	lexer.skipWhitespaceAndComments()

	pos := lexer.position
	switch lexer.ch {
	case 0:
		return Token{Type: EOF, Pos: pos}, nil
	case ',':
		lexer.readChar()
		return Token{Type: Comma, Value: ",", Pos: pos}, nil
	case '(':
		lexer.readChar()
		return Token{Type: ParenOpen, Value: "(", Pos: pos}, nil
	case ')':
		lexer.readChar()
		return Token{Type: ParenClose, Value: ")", Pos: pos}, nil
	case ';':
		lexer.readChar()
		return Token{Type: Semicolon, Value: ";", Pos: pos}, nil
	case '+':
		lexer.readChar()
		return Token{Type: Plus, Value: "+", Pos: pos}, nil
	case '-':
		lexer.readChar()
		return Token{Type: Minus, Value: "-", Pos: pos}, nil
	case '*':
		lexer.readChar()
		return Token{Type: Asterisk, Value: "*", Pos: pos}, nil
	case '/':
		lexer.readChar()
		return Token{Type: Slash, Value: "/", Pos: pos}, nil
	case '%':
		lexer.readChar()
		return Token{Type: Percent, Value: "%", Pos: pos}, nil
	case '=':
		lexer.readChar()
		return Token{Type: Equals, Value: "=", Pos: pos}, nil
	case '<':
		lexer.readChar()
		switch lexer.ch {
		case '=':
			lexer.readChar()
			return Token{Type: LessThanOrEqual, Value: "<=", Pos: pos}, nil
		case '>':
			lexer.readChar()
			return Token{Type: NotEquals, Value: "<>", Pos: pos}, nil
		}
		return Token{Type: LessThan, Value: "<", Pos: pos}, nil
	case '>':
		lexer.readChar()
		if lexer.ch == '=' {
			lexer.readChar()
			return Token{Type: GreaterThanOrEqual, Value: ">=", Pos: pos}, nil
		}
		return Token{Type: GreaterThan, Value: ">", Pos: pos}, nil
	case '!':
		lexer.readChar()
		if lexer.ch == '=' {
			lexer.readChar()
			return Token{Type: NotEquals, Value: "!=", Pos: pos}, nil
		}
		return Token{}, core.Errorf(core.LexError, "unknown character '!' at offset %d", pos)
	case '\'', '"':
		return lexer.readString()
	}

	switch {
	case isDigit(lexer.ch):
		return Token{Type: Int, Value: lexer.readNumber(), Pos: pos}, nil
	case isIdentStart(lexer.ch):
		word := lexer.readIdentifier()
		return Token{Type: lookupIdentifier(word), Value: word, Pos: pos}, nil
	default:
		return Token{}, core.Errorf(core.LexError, "unknown character %q at offset %d", string(lexer.ch), pos)
	}
}

func (lexer *Lexer) skipWhitespaceAndComments() {
	for {
		for lexer.ch == ' ' || lexer.ch == '\t' || lexer.ch == '\n' || lexer.ch == '\r' {
			lexer.readChar()
		}
		if lexer.ch == '-' && lexer.peekChar() == '-' {
			for lexer.ch != '\n' && lexer.ch != 0 {
				lexer.readChar()
			}
			continue
		}
		return
	}
}

func (lexer *Lexer) readIdentifier() string {
	position := lexer.position
	for isIdentStart(lexer.ch) || isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

// readString scans a quoted literal. Either quote style works; a
// doubled quote inside the literal stands for the quote character.
func (lexer *Lexer) readString() (Token, error) {
	pos := lexer.position
	quote := lexer.ch
	lexer.readChar()

	var builder strings.Builder
	for {
		switch lexer.ch {
		case 0:
			return Token{}, core.Errorf(core.LexError, "unterminated string at offset %d", pos)
		case quote:
			if lexer.peekChar() == quote {
				builder.WriteByte(quote)
				lexer.readChar()
				lexer.readChar()
				continue
			}
			lexer.readChar()
			return Token{Type: String, Value: builder.String(), Pos: pos}, nil
		default:
			builder.WriteByte(lexer.ch)
			lexer.readChar()
		}
	}
}

func (lexer *Lexer) readNumber() string {
	position := lexer.position
	for isDigit(lexer.ch) {
		lexer.readChar()
	}
	return lexer.sql[position:lexer.position]
}

func isIdentStart(ch byte) bool {
	return ('a' <= ch && ch <= 'z') || ('A' <= ch && ch <= 'Z') || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}
