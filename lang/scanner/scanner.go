// Package scanner implements the tokenizer described in spec.md §4.2: a
// deterministic state machine, pulled one token at a time, that turns source
// text into a stream of lang/token.Token values.
package scanner

import (
	"strings"
	"unicode"

	"github.com/pellmell/wbc/lang/token"
)

// state names the tokenizer's FSM states (spec.md §4.2).
type state int

const (
	stateStart state = iota
	stateBang
	stateSlash
	stateLineComment
	stateComment
	stateEqual
	stateGT
	stateLT
	stateIdent
	stateInt
)

// reserved maps single-character lexemes straight to a token kind from the
// START state.
var reserved = map[rune]token.Kind{
	',': token.COMMA,
	'{': token.LBRACE,
	'}': token.RBRACE,
	'(': token.LPAREN,
	')': token.RPAREN,
	'+': token.PLUS,
	'-': token.MINUS,
	'*': token.MULTIPLY,
	'%': token.MODULO,
	'&': token.AND,
	'|': token.OR,
	'^': token.XOR,
	';': token.SEMICOLON,
}

// Scanner tokenizes a source string for the parser to pull from one token at
// a time (spec.md §4.2 contract: "on each next_token() call...").
type Scanner struct {
	src  []rune
	off  int // index of the next rune to read
	line int // line of src[off]
	col  int // column of src[off]

	// restore point for the single character of lookahead the FSM needs; see
	// unget.
	prevOff, prevLine, prevCol int
}

// New creates a Scanner positioned at the start of source. \r\n and bare \r
// are folded to \n first (spec.md §4.2 "Normalization").
func New(source string) *Scanner {
	s := &Scanner{}
	s.Reset(source)
	return s
}

// Reset rewinds the scanner to the beginning of source, reusing the
// receiver. The teacher's reset() idiom (lang/parser init) is mirrored here
// so a Scanner — and by extension a Parser and Compiler — can be reused
// across compilations without reallocating (spec.md §5).
func (s *Scanner) Reset(source string) {
	source = strings.ReplaceAll(source, "\r\n", "\n")
	source = strings.ReplaceAll(source, "\r", "\n")
	s.src = []rune(source)
	s.off = 0
	s.line = 1
	s.col = 1
}

func (s *Scanner) pos() token.Pos {
	return token.MakePos(s.line, s.col)
}

// advance returns the rune at the current offset and moves past it. ok is
// false at end of input.
func (s *Scanner) advance() (rune, bool) {
	s.prevOff, s.prevLine, s.prevCol = s.off, s.line, s.col
	if s.off >= len(s.src) {
		return 0, false
	}
	r := s.src[s.off]
	s.off++
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
	return r, true
}

// unget rewinds by the one character of lookahead most recently consumed by
// advance, restoring line/col to what they were before that call (spec.md
// §4.2: "must un-read its character on the same source column/line").
func (s *Scanner) unget() {
	s.off, s.line, s.col = s.prevOff, s.prevLine, s.prevCol
}

func isIdentStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isIdentContinue(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// Next returns the next token, or a token.EOF token once the input is
// exhausted. It never returns an error: an unrecognized character is
// surfaced as an token.UNKNOWN token, which lang/parser turns into a parse
// error (spec.md §4.2, §7).
func (s *Scanner) Next() token.Token {
	var lexeme strings.Builder
	st := stateStart
	var startPos token.Pos

	for {
		p := s.pos()
		c, ok := s.advance()

		switch st {
		case stateStart:
			startPos = p
			switch {
			case !ok:
				return token.Token{Kind: token.EOF, Pos: startPos}
			case unicode.IsSpace(c):
				continue
			case c == '!':
				st = stateBang
			case isIdentStart(c):
				st = stateIdent
			case unicode.IsDigit(c):
				st = stateInt
			case c == '/':
				st = stateSlash
			case c == '>':
				st = stateGT
			case c == '<':
				st = stateLT
			case c == '=':
				st = stateEqual
			default:
				if k, isReserved := reserved[c]; isReserved {
					return token.Token{Kind: k, Lexeme: string(c), Pos: startPos}
				}
				return token.Token{Kind: token.UNKNOWN, Lexeme: string(c), Pos: startPos}
			}

		case stateBang:
			if c == '=' {
				return token.Token{Kind: token.NOT_EQUAL, Lexeme: "!=", Pos: startPos}
			}
			s.unget()
			return token.Token{Kind: token.NOT, Lexeme: "!", Pos: startPos}

		case stateEqual:
			if c == '=' {
				return token.Token{Kind: token.EQUAL, Lexeme: "==", Pos: startPos}
			}
			s.unget()
			return token.Token{Kind: token.ASSIGN, Lexeme: "=", Pos: startPos}

		case stateGT:
			if c == '=' {
				return token.Token{Kind: token.GT_EQUAL, Lexeme: ">=", Pos: startPos}
			}
			s.unget()
			return token.Token{Kind: token.GT, Lexeme: ">", Pos: startPos}

		case stateLT:
			if c == '=' {
				return token.Token{Kind: token.LT_EQUAL, Lexeme: "<=", Pos: startPos}
			}
			s.unget()
			return token.Token{Kind: token.LT, Lexeme: "<", Pos: startPos}

		case stateSlash:
			switch c {
			case '/':
				st = stateLineComment
			case '*':
				st = stateComment
			default:
				s.unget()
				return token.Token{Kind: token.DIVIDE, Lexeme: "/", Pos: startPos}
			}

		case stateLineComment:
			if !ok || c == '\n' {
				if ok {
					s.unget()
				}
				return token.Token{Kind: token.COMMENT, Lexeme: lexeme.String(), Pos: startPos}
			}
			lexeme.WriteRune(c)

		case stateComment:
			if !ok {
				return token.Token{Kind: token.COMMENT, Lexeme: lexeme.String(), Pos: startPos}
			}
			if c == '*' {
				if nc, nok := s.advance(); nok && nc == '/' {
					return token.Token{Kind: token.COMMENT, Lexeme: lexeme.String(), Pos: startPos}
				} else {
					lexeme.WriteRune(c)
					if nok {
						s.unget()
					}
					continue
				}
			}
			lexeme.WriteRune(c)

		case stateIdent:
			if !ok || !isIdentContinue(c) {
				if ok {
					s.unget()
				}
				word := lexeme.String()
				lowered := strings.ToLower(word)
				if k, isKeyword := token.Lookup(lowered); isKeyword {
					return token.Token{Kind: k, Lexeme: word, Pos: startPos}
				}
				if len(word) == 1 && word[0] >= 'a' && word[0] <= 'z' {
					return token.Token{Kind: token.VAR, Lexeme: word, Pos: startPos}
				}
				return token.Token{Kind: token.IDENTIFIER, Lexeme: word, Pos: startPos}
			}
			lexeme.WriteRune(c)

		case stateInt:
			if !ok || !unicode.IsDigit(c) {
				if ok {
					s.unget()
				}
				return token.Token{Kind: token.INTEGER, Lexeme: lexeme.String(), Pos: startPos}
			}
			lexeme.WriteRune(c)
		}

		if st == stateIdent || st == stateInt {
			// the first character of these runs is consumed by the START branch
			// above without having been appended yet.
			if lexeme.Len() == 0 {
				lexeme.WriteRune(c)
			}
		}
	}
}
