package parser

import (
	"strconv"
	"strings"
)

var keywords = map[string]TokenType{
	"pragma":      PRAGMA,
	"contract":    CONTRACT,
	"abstract":    ABSTRACT,
	"interface":   INTERFACE,
	"library":     LIBRARY,
	"struct":      STRUCT,
	"event":       EVENT,
	"function":    FUNCTION,
	"constructor": CONSTRUCTOR,
	"modifier":    MODIFIER,
	"fallback":    FALLBACK,
	"receive":     RECEIVE,
	"returns":     RETURNS,
	"return":      RETURN,
	"if":          IF,
	"else":        ELSE,
	"while":       WHILE,
	"do":          DO,
	"for":         FOR,
	"break":       BREAK,
	"continue":    CONTINUE,
	"emit":        EMIT,
	"try":         TRY,
	"catch":       CATCH,
	"assembly":    ASSEMBLY,
	"unchecked":   UNCHECKED,
	"new":         NEW,
	"delete":      DELETE,
	"true":        TRUE,
	"false":       FALSE,
	"mapping":     MAPPING,
	"memory":      MEMORY,
	"storage":     STORAGE,
	"calldata":    CALLDATA,
	"public":      PUBLIC,
	"private":     PRIVATE,
	"internal":    INTERNAL,
	"external":    EXTERNAL,
	"pure":        PURE,
	"view":        VIEW,
	"payable":     PAYABLE,
	"constant":    CONSTANT,
	"immutable":   IMMUTABLE,
	"virtual":     VIRTUAL,
	"override":    OVERRIDE,
	"indexed":     INDEXED,
	"anonymous":   ANONYMOUS,
}

var operators = map[string]TokenType{
	"+":   PLUS,
	"++":  INCREMENT,
	"-":   MINUS,
	"--":  DECREMENT,
	"*":   STAR,
	"**":  STAR_STAR,
	"/":   SLASH,
	"%":   PERCENT,
	"!":   BANG,
	"~":   TILDE,
	"!=":  BANG_EQUAL,
	"=":   EQUAL,
	"==":  EQUAL_EQUAL,
	"=>":  ARROW,
	"<":   LESS,
	"<=":  LESS_EQUAL,
	"<<":  LESS_LESS,
	">":   GREATER,
	">=":  GREATER_EQUAL,
	">>":  GREATER_GREATER,
	"&&":  AND,
	"&":   AMPERSAND,
	"||":  OR,
	"|":   PIPE,
	"^":   CARET,
	"?":   QUESTION,
	"+=":  PLUS_EQUAL,
	"-=":  MINUS_EQUAL,
	"*=":  STAR_EQUAL,
	"/=":  SLASH_EQUAL,
	"%=":  PERCENT_EQUAL,
	"&=":  AMPERSAND_EQUAL,
	"|=":  PIPE_EQUAL,
	"^=":  CARET_EQUAL,
	"<<=": LESS_LESS_EQUAL,
	">>=": GREATER_GREATER_EQUAL,
	",":   COMMA,
	".":   DOT,
	";":   SEMICOLON,
	":":   COLON,
	"(":   LEFT_PAREN,
	")":   RIGHT_PAREN,
	"{":   LEFT_BRACE,
	"}":   RIGHT_BRACE,
	"[":   LEFT_BRACKET,
	"]":   RIGHT_BRACKET,
}

// isElementaryType reports whether name is a builtin type such as uint64,
// bytes32 or address.
func isElementaryType(name string) bool {
	switch name {
	case "bool", "address", "string", "bytes", "byte", "int", "uint":
		return true
	}
	for _, prefix := range []string{"uint", "int"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok {
			n, err := strconv.Atoi(rest)
			return err == nil && n >= 8 && n <= 256 && n%8 == 0 && !strings.HasPrefix(rest, "0")
		}
	}
	if rest, ok := strings.CutPrefix(name, "bytes"); ok {
		n, err := strconv.Atoi(rest)
		return err == nil && n >= 1 && n <= 32 && !strings.HasPrefix(rest, "0")
	}
	return false
}
