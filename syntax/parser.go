package syntax

import (
	"fmt"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: Recursive descent parser for import declarations
// ---------------------------------------------------------------------------

// ErrorKind classifies a parse diagnostic.
type ErrorKind int

const (
	// SyntaxError marks declaration text that is not import-shaped.
	SyntaxError ErrorKind = iota

	// UnsupportedImport marks a recognized but unsupported import form:
	// a bare module import or an aliased import.
	UnsupportedImport
)

func (k ErrorKind) String() string {
	switch k {
	case SyntaxError:
		return "syntax error"
	case UnsupportedImport:
		return "unsupported import"
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// ParseError is one positioned parse diagnostic.
type ParseError struct {
	Pos  Position
	Kind ErrorKind
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Pos.Line, e.Msg)
}

// Parser parses deferred-import declaration text into a File.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []*ParseError
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{
		lexer: NewLexer(input),
	}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses declaration text and returns the parsed file together
// with the first error encountered, if any. Declarations after an
// erroneous line are still collected into the file.
func Parse(input string) (*File, error) {
	p := NewParser(input)
	file := p.ParseFile()
	if errs := p.Errors(); len(errs) > 0 {
		return file, errs[0]
	}
	return file, nil
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// errorf records a parse error at the given position.
func (p *Parser) errorf(pos Position, kind ErrorKind, format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{
		Pos:  pos,
		Kind: kind,
		Msg:  fmt.Sprintf(format, args...),
	})
}

// Errors returns accumulated parse errors in source order.
func (p *Parser) Errors() []*ParseError {
	return p.errors
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseFile parses the whole input as a block of declarations.
func (p *Parser) ParseFile() *File {
	file := &File{}

	for p.curTokenIs(TokenNewline) {
		p.nextToken()
	}

	for !p.curTokenIs(TokenEOF) {
		if decl := p.parseDecl(); decl != nil {
			file.Decls = append(file.Decls, decl)
		}
		for p.curTokenIs(TokenNewline) {
			p.nextToken()
		}
	}

	return file
}

// parseDecl parses one declaration line. Returns nil if the line was
// erroneous; the error has been recorded and the line consumed.
func (p *Parser) parseDecl() *ImportDecl {
	switch p.curToken.Type {
	case TokenFrom:
		return p.parseFromImport()

	case TokenImport:
		p.parseBareImport()
		return nil

	case TokenError:
		p.errorf(p.curToken.Pos, SyntaxError, "%s", p.curToken.Literal)
		p.skipLine()
		return nil

	default:
		p.errorf(p.curToken.Pos, SyntaxError,
			"expected from-import declaration, got %s", p.curToken)
		p.skipLine()
		return nil
	}
}

// parseFromImport parses "from <module> import <name>, ...".
func (p *Parser) parseFromImport() *ImportDecl {
	declPos := p.curToken.Pos
	p.nextToken() // consume "from"

	module, ok := p.parseModulePath(declPos)
	if !ok {
		p.skipLine()
		return nil
	}

	if !p.curTokenIs(TokenImport) {
		p.errorf(declPos, SyntaxError,
			"expected import after module path, got %s", p.curToken)
		p.skipLine()
		return nil
	}
	p.nextToken()

	var names []string
	for {
		if !p.curTokenIs(TokenIdent) {
			p.errorf(declPos, SyntaxError,
				"expected imported name, got %s", p.curToken)
			p.skipLine()
			return nil
		}
		names = append(names, p.curToken.Literal)
		p.nextToken()

		if p.curTokenIs(TokenAs) {
			p.errorf(p.curToken.Pos, UnsupportedImport,
				"unsupported import form: import alias")
			p.skipLine()
			return nil
		}
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}

	if !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
		p.errorf(declPos, SyntaxError,
			"unexpected %s after import list", p.curToken)
		p.skipLine()
		return nil
	}
	if p.curTokenIs(TokenNewline) {
		p.nextToken()
	}

	return &ImportDecl{Module: module, Names: names, Pos: declPos}
}

// parseBareImport consumes "import <module> [as <alias>]" and records
// it as unsupported. Only from-imports can be deferred.
func (p *Parser) parseBareImport() {
	pos := p.curToken.Pos
	p.nextToken() // consume "import"

	module, ok := p.parseModulePath(pos)
	if !ok {
		p.skipLine()
		return
	}

	if p.curTokenIs(TokenAs) {
		p.errorf(pos, UnsupportedImport,
			"unsupported import form: import %s as ... (use from %s import <name>)", module, module)
	} else {
		p.errorf(pos, UnsupportedImport,
			"unsupported import form: import %s (use from %s import <name>)", module, module)
	}
	p.skipLine()
}

// parseModulePath parses a dotted module path.
func (p *Parser) parseModulePath(declPos Position) (string, bool) {
	if !p.curTokenIs(TokenIdent) {
		p.errorf(declPos, SyntaxError,
			"expected module path, got %s", p.curToken)
		return "", false
	}

	var sb strings.Builder
	sb.WriteString(p.curToken.Literal)
	p.nextToken()

	for p.curTokenIs(TokenDot) {
		p.nextToken()
		if !p.curTokenIs(TokenIdent) {
			p.errorf(declPos, SyntaxError,
				"expected path segment after '.', got %s", p.curToken)
			return "", false
		}
		sb.WriteByte('.')
		sb.WriteString(p.curToken.Literal)
		p.nextToken()
	}

	return sb.String(), true
}

// skipLine advances past the rest of the current line.
func (p *Parser) skipLine() {
	for !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
		p.nextToken()
	}
	if p.curTokenIs(TokenNewline) {
		p.nextToken()
	}
}
