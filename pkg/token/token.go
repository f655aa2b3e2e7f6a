// Package token defines the lexical token vocabulary of the tinyb language.
package token

import "fmt"

// Type identifies the lexical class of a Token.
type Type int

// Token type constants, grouped by category.
const (
	// Special tokens
	ILLEGAL Type = iota // unrecognized byte
	EOF                 // end of input

	// Identifiers and literals
	IDENT // identifiers: x, count, myVar
	INT   // decimal integer literals: 0, 42, 1000

	// Keywords
	AUTO   // auto
	EXTERN // extern
	RETURN // return
	IF     // if
	ELSE   // else
	WHILE  // while
	SWITCH // switch
	CASE   // case
	GOTO   // goto

	// Punctuation
	LPAREN    // (
	RPAREN    // )
	LBRACE    // {
	RBRACE    // }
	LBRACKET  // [
	RBRACKET  // ]
	SEMICOLON // ;
	COMMA     // ,
	COLON     // :
	QUESTION  // ?

	// Operators
	ASSIGN    // =
	EQ        // ==
	NOT_EQ    // !=
	LT        // <
	LT_EQ     // <=
	GT        // >
	GT_EQ     // >=
	PLUS      // +
	MINUS     // -
	STAR      // *
	SLASH     // /
	PERCENT   // %
	INC       // ++
	DEC       // --
	SHL       // <<
	SHR       // >>
	AND_AND   // &&
	OR_OR     // ||
	NOT       // !

	// Compound assignment
	PLUS_ASSIGN    // +=
	MINUS_ASSIGN   // -=
	STAR_ASSIGN    // *=
	SLASH_ASSIGN   // /=
	PERCENT_ASSIGN // %=
	SHL_ASSIGN     // <<=
	SHR_ASSIGN     // >>=
	AND_ASSIGN     // &&=
	OR_ASSIGN      // ||=
)

var typeNames = map[Type]string{
	ILLEGAL: "ILLEGAL", EOF: "EOF",
	IDENT: "IDENT", INT: "INT",
	AUTO: "auto", EXTERN: "extern", RETURN: "return", IF: "if", ELSE: "else",
	WHILE: "while", SWITCH: "switch", CASE: "case", GOTO: "goto",
	LPAREN: "(", RPAREN: ")", LBRACE: "{", RBRACE: "}", LBRACKET: "[", RBRACKET: "]",
	SEMICOLON: ";", COMMA: ",", COLON: ":", QUESTION: "?",
	ASSIGN: "=", EQ: "==", NOT_EQ: "!=", LT: "<", LT_EQ: "<=", GT: ">", GT_EQ: ">=",
	PLUS: "+", MINUS: "-", STAR: "*", SLASH: "/", PERCENT: "%",
	INC: "++", DEC: "--", SHL: "<<", SHR: ">>", AND_AND: "&&", OR_OR: "||", NOT: "!",
	PLUS_ASSIGN: "+=", MINUS_ASSIGN: "-=", STAR_ASSIGN: "*=", SLASH_ASSIGN: "/=",
	PERCENT_ASSIGN: "%=", SHL_ASSIGN: "<<=", SHR_ASSIGN: ">>=",
	AND_ASSIGN: "&&=", OR_ASSIGN: "||=",
}

// String renders the token type's canonical spelling, used in diagnostics.
func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// keywords maps the reserved-word spellings to their token type. Identifiers
// are only reclassified as keywords after the full identifier has been
// scanned (spec.md §4.1: "recognized after identifier scanning").
var keywords = map[string]Type{
	"auto": AUTO, "extern": EXTERN, "return": RETURN,
	"if": IF, "else": ELSE, "while": WHILE,
	"switch": SWITCH, "case": CASE, "goto": GOTO,
}

// LookupIdent classifies a scanned identifier lexeme as a keyword token type
// or, if it matches no keyword, as a plain IDENT.
func LookupIdent(ident string) Type {
	if tt, ok := keywords[ident]; ok {
		return tt
	}
	return IDENT
}

// Position is a 1-indexed line/column location in the source buffer, plus
// the 0-indexed byte offset it corresponds to (useful for slicing source
// text for diagnostics without re-scanning).
type Position struct {
	Line   int
	Column int
	Offset int
}

// Token is a single lexical unit: a tag plus, for IDENT and INT, the
// lexeme that produced it.
type Token struct {
	Type    Type
	Literal string
	Pos     Position
}

// New constructs a Token, the single call site every lexer code path routes
// through so Literal and Pos always travel together.
func New(t Type, literal string, pos Position) Token {
	return Token{Type: t, Literal: literal, Pos: pos}
}
