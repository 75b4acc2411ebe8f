package syntax

import "fmt"

// ---------------------------------------------------------------------------
// Token types for import declaration text
// ---------------------------------------------------------------------------

// TokenType represents the type of a token.
type TokenType int

const (
	// Special tokens
	TokenEOF TokenType = iota
	TokenError

	// Structure
	TokenNewline // declaration terminator
	TokenDot     // .
	TokenComma   // ,

	// Words
	TokenIdent  // company, Models, heavy_lib
	TokenFrom   // from
	TokenImport // import
	TokenAs     // as
)

var tokenNames = map[TokenType]string{
	TokenEOF:     "EOF",
	TokenError:   "ERROR",
	TokenNewline: "NEWLINE",
	TokenDot:     ".",
	TokenComma:   ",",
	TokenIdent:   "IDENT",
	TokenFrom:    "from",
	TokenImport:  "import",
	TokenAs:      "as",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Token(%d)", t)
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string   // the raw text
	Pos     Position // start position
}

func (t Token) String() string {
	if t.Type == TokenEOF {
		return "EOF"
	}
	if t.Type == TokenError {
		return fmt.Sprintf("ERROR(%s)", t.Literal)
	}
	return fmt.Sprintf("%s(%q)", t.Type, t.Literal)
}

// Reserved words mapped to their token types.
var reservedWords = map[string]TokenType{
	"from":   TokenFrom,
	"import": TokenImport,
	"as":     TokenAs,
}
