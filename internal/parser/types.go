package parser

import "github.com/salaheldinsoliman/solang/internal/pt"

type TokenType int

const (
	// Special tokens
	ILLEGAL TokenType = iota
	EOF

	// Identifiers + literals
	IDENTIFIER
	NUMBER
	RATIONAL
	HEX_NUMBER
	STRING
	HEX_STRING

	// Keywords
	PRAGMA
	CONTRACT
	ABSTRACT
	INTERFACE
	LIBRARY
	STRUCT
	EVENT
	FUNCTION
	CONSTRUCTOR
	MODIFIER
	FALLBACK
	RECEIVE
	RETURNS
	RETURN
	IF
	ELSE
	WHILE
	DO
	FOR
	BREAK
	CONTINUE
	EMIT
	TRY
	CATCH
	ASSEMBLY
	UNCHECKED
	NEW
	DELETE
	TRUE
	FALSE
	MAPPING
	MEMORY
	STORAGE
	CALLDATA
	PUBLIC
	PRIVATE
	INTERNAL
	EXTERNAL
	PURE
	VIEW
	PAYABLE
	CONSTANT
	IMMUTABLE
	VIRTUAL
	OVERRIDE
	INDEXED
	ANONYMOUS

	// Operators
	PLUS
	INCREMENT
	MINUS
	DECREMENT
	STAR
	STAR_STAR
	SLASH
	PERCENT
	BANG
	TILDE
	BANG_EQUAL
	EQUAL
	EQUAL_EQUAL
	ARROW
	LESS
	LESS_EQUAL
	LESS_LESS
	GREATER
	GREATER_EQUAL
	GREATER_GREATER
	AND
	AMPERSAND
	OR
	PIPE
	CARET
	QUESTION

	// Assignment operators
	PLUS_EQUAL
	MINUS_EQUAL
	STAR_EQUAL
	SLASH_EQUAL
	PERCENT_EQUAL
	AMPERSAND_EQUAL
	PIPE_EQUAL
	CARET_EQUAL
	LESS_LESS_EQUAL
	GREATER_GREATER_EQUAL

	// Separators
	COMMA
	DOT
	SEMICOLON
	COLON

	// Brackets
	LEFT_PAREN
	RIGHT_PAREN
	LEFT_BRACE
	RIGHT_BRACE
	LEFT_BRACKET
	RIGHT_BRACKET
)

type Token struct {
	Type   TokenType
	Lexeme string
	Offset int // 0-based absolute index in input
	End    int
	Line   int // 1-based
	Column int // 1-based
}

type ScanError struct {
	Message string
	Loc     pt.Loc
}

type ParseError struct {
	Message string
	Loc     pt.Loc
}
