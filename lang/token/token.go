// Package token defines the lexical token kinds produced by lang/scanner and
// consumed by lang/parser, and the packed source-position type they share.
package token

// Kind identifies the lexical class of a Token (spec.md §3: "a closed
// enumeration").
type Kind int8

//nolint:revive
const (
	ILLEGAL Kind = iota
	EOF
	UNKNOWN // a single character the scanner didn't recognize
	COMMENT // filtered out by the parser, never reaches the AST

	// Literals and names
	INTEGER
	VAR        // a single lowercase letter a-z
	IDENTIFIER // any other identifier

	// Punctuation
	LBRACE
	RBRACE
	LPAREN
	RPAREN
	COMMA
	SEMICOLON

	// Operators
	PLUS
	MINUS
	MULTIPLY
	DIVIDE
	MODULO
	NOT
	AND
	OR
	XOR
	ASSIGN
	EQUAL
	NOT_EQUAL
	GT
	GT_EQUAL
	LT
	LT_EQUAL

	// Keywords
	IF
	ELSE
	WHILE
	RETURN

	maxKind
)

var kindNames = [...]string{
	ILLEGAL:    "illegal",
	EOF:        "eof",
	UNKNOWN:    "unknown",
	COMMENT:    "comment",
	INTEGER:    "integer",
	VAR:        "var",
	IDENTIFIER: "identifier",
	LBRACE:     "{",
	RBRACE:     "}",
	LPAREN:     "(",
	RPAREN:     ")",
	COMMA:      ",",
	SEMICOLON:  ";",
	PLUS:       "+",
	MINUS:      "-",
	MULTIPLY:   "*",
	DIVIDE:     "/",
	MODULO:     "%",
	NOT:        "!",
	AND:        "&",
	OR:         "|",
	XOR:        "^",
	ASSIGN:     "=",
	EQUAL:      "==",
	NOT_EQUAL:  "!=",
	GT:         ">",
	GT_EQUAL:   ">=",
	LT:         "<",
	LT_EQUAL:   "<=",
	IF:         "if",
	ELSE:       "else",
	WHILE:      "while",
	RETURN:     "return",
}

// keywords maps the lowercased spelling of a reserved word to its Kind. The
// scanner consults it after scanning a full identifier run (spec.md §4.2).
var keywords = map[string]Kind{
	"if":     IF,
	"else":   ELSE,
	"while":  WHILE,
	"return": RETURN,
}

// Lookup returns the keyword Kind for a lowercased identifier lexeme, or
// false if it isn't a keyword.
func Lookup(lowered string) (Kind, bool) {
	k, ok := keywords[lowered]
	return k, ok
}

func (k Kind) String() string {
	if k >= 0 && k < maxKind && kindNames[k] != "" {
		return kindNames[k]
	}
	return "illegal"
}

// GoString quotes punctuation and operators, the way the teacher's
// token.Token.GoString does, so error messages read naturally ('+' rather
// than plus).
func (k Kind) GoString() string {
	switch {
	case k >= LBRACE && k <= LT_EQUAL:
		return "'" + kindNames[k] + "'"
	default:
		return kindNames[k]
	}
}

// Token is a tagged (kind, lexeme) pair with the position of the lexeme's
// first character (spec.md §3).
type Token struct {
	Kind   Kind
	Lexeme string
	Pos    Pos
}

func (t Token) String() string {
	if t.Lexeme == "" {
		return t.Kind.String()
	}
	return t.Kind.String() + " " + t.Lexeme
}
