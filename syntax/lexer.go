package syntax

import (
	"fmt"
	"unicode"
	"unicode/utf8"
)

// ---------------------------------------------------------------------------
// Lexer: Tokenizer for import declaration text
// ---------------------------------------------------------------------------

// Lexer tokenizes deferred-import declaration text. Newlines are
// significant (they terminate declarations) and are emitted as tokens;
// runs of blank lines collapse into a single newline token.
type Lexer struct {
	input   string
	pos     int  // current position in input
	readPos int  // reading position (after current char)
	ch      rune // current character
	line    int  // current line (1-based)
	col     int  // current column (1-based)
}

// NewLexer creates a new lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   1,
	}
	l.readChar()
	return l
}

// readChar reads the next character. Line and column describe the
// character that becomes current, so the first character of a line is
// column 1 and a newline belongs to the line it terminates.
func (l *Lexer) readChar() {
	switch l.ch {
	case '\n':
		l.line++
		l.col = 1
	case 0:
		// Initial state or EOF: nothing consumed yet.
	default:
		l.col++
	}

	if l.readPos >= len(l.input) {
		l.ch = 0 // EOF
		l.pos = l.readPos
	} else {
		r, size := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.pos = l.readPos
		l.readPos += size
	}
}

// peekChar returns the next character without consuming it.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// position returns the current position.
func (l *Lexer) position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.col,
	}
}

// NextToken returns the next token.
func (l *Lexer) NextToken() Token {
	l.skipSpaceAndComments()

	pos := l.position()

	switch {
	case l.ch == 0:
		return Token{Type: TokenEOF, Literal: "", Pos: pos}

	case l.ch == '\n':
		l.readChar()
		l.skipBlankLines()
		return Token{Type: TokenNewline, Literal: "\n", Pos: pos}

	case l.ch == '.':
		l.readChar()
		return Token{Type: TokenDot, Literal: ".", Pos: pos}

	case l.ch == ',':
		l.readChar()
		return Token{Type: TokenComma, Literal: ",", Pos: pos}

	case isLetter(l.ch) || l.ch == '_':
		return l.readWord(pos)

	default:
		ch := l.ch
		l.readChar()
		return Token{Type: TokenError, Literal: fmt.Sprintf("unexpected character %q", ch), Pos: pos}
	}
}

// skipSpaceAndComments skips horizontal whitespace and # comments.
// Newlines are left for NextToken to emit.
func (l *Lexer) skipSpaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\r' {
			l.readChar()
		}

		// Line comment: # to end of line
		if l.ch == '#' {
			for l.ch != '\n' && l.ch != 0 {
				l.readChar()
			}
			continue
		}

		break
	}
}

// skipBlankLines consumes whitespace, comments and further newlines so
// that consecutive blank lines produce one newline token.
func (l *Lexer) skipBlankLines() {
	for {
		l.skipSpaceAndComments()
		if l.ch != '\n' {
			return
		}
		l.readChar()
	}
}

// readWord reads an identifier or reserved word.
func (l *Lexer) readWord(pos Position) Token {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	word := l.input[start:l.pos]

	if t, ok := reservedWords[word]; ok {
		return Token{Type: t, Literal: word, Pos: pos}
	}
	return Token{Type: TokenIdent, Literal: word, Pos: pos}
}

func isLetter(r rune) bool {
	return unicode.IsLetter(r)
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}
