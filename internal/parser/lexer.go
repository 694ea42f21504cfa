package parser

import (
	"encoding/hex"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
	"github.com/salaheldinsoliman/solang/internal/pt"
)

// SolidityLexer splits source text into raw tokens. Keywords are recognised
// afterwards from Ident tokens.
var SolidityLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Comment", Pattern: `//[^\n]*|/\*(?s:.*?)\*/`},
	{Name: "HexNumber", Pattern: `0[xX][0-9a-fA-F_]+`},
	{Name: "Rational", Pattern: `(?:[0-9][0-9_]*)?\.[0-9][0-9_]*(?:[eE]-?[0-9]+)?|[0-9][0-9_]*[eE]-[0-9]+`},
	{Name: "Number", Pattern: `[0-9][0-9_]*(?:[eE][0-9]+)?`},
	{Name: "HexString", Pattern: `hex"[0-9a-fA-F_]*"|hex'[0-9a-fA-F_]*'`},
	{Name: "String", Pattern: `"(?:\\.|[^"\\\n])*"|'(?:\\.|[^'\\\n])*'`},
	{Name: "Ident", Pattern: `[a-zA-Z_$][a-zA-Z0-9_$]*`},
	{Name: "Operator", Pattern: `<<=|>>=|\*\*|\+\+|--|&&|\|\||==|!=|<=|>=|<<|>>|\+=|-=|\*=|/=|%=|&=|\|=|\^=|=>|[-+*/%&|^~!<>=?:;,.(){}\[\]]`},
	{Name: "Illegal", Pattern: `.`},
})

// Scan tokenizes source. Unknown characters become ILLEGAL tokens and a
// ScanError; scanning always reaches EOF.
func Scan(fileNo int, filename, source string) ([]Token, []ScanError) {
	var errs []ScanError

	symbols := lexer.SymbolsByRune(SolidityLexer)
	lex, err := SolidityLexer.LexString(filename, source)
	if err != nil {
		errs = append(errs, ScanError{Message: err.Error(), Loc: pt.FileLoc(fileNo, 0, 0)})
		return []Token{{Type: EOF, Offset: len(source), End: len(source)}}, errs
	}

	raw, err := lexer.ConsumeAll(lex)
	if err != nil {
		errs = append(errs, ScanError{Message: err.Error(), Loc: pt.FileLoc(fileNo, 0, 0)})
	}

	tokens := make([]Token, 0, len(raw))
	for _, t := range raw {
		if t.EOF() {
			break
		}
		tok := Token{
			Lexeme: t.Value,
			Offset: t.Pos.Offset,
			End:    t.Pos.Offset + len(t.Value),
			Line:   t.Pos.Line,
			Column: t.Pos.Column,
		}
		switch symbols[t.Type] {
		case "Whitespace", "Comment":
			continue
		case "HexNumber":
			tok.Type = HEX_NUMBER
		case "Rational":
			tok.Type = RATIONAL
		case "Number":
			tok.Type = NUMBER
		case "HexString":
			tok.Type = HEX_STRING
		case "String":
			tok.Type = STRING
		case "Ident":
			if kw, ok := keywords[t.Value]; ok {
				tok.Type = kw
			} else {
				tok.Type = IDENTIFIER
			}
		case "Operator":
			tok.Type = operators[t.Value]
		default:
			tok.Type = ILLEGAL
			errs = append(errs, ScanError{
				Message: "unrecognised token '" + t.Value + "'",
				Loc:     pt.FileLoc(fileNo, tok.Offset, tok.End),
			})
		}
		tokens = append(tokens, tok)
	}

	tokens = append(tokens, Token{Type: EOF, Offset: len(source), End: len(source)})
	return tokens, errs
}

// unescape decodes the body of a string literal. It returns the offending
// escape on failure.
func unescape(s string) (string, string, bool) {
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			b.WriteByte(c)
			continue
		}
		if i+1 >= len(s) {
			return "", "\\", false
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 'r':
			b.WriteByte('\r')
		case 't':
			b.WriteByte('\t')
		case '\\', '\'', '"':
			b.WriteByte(s[i])
		case '\n':
		case 'x':
			if i+3 > len(s) {
				return "", s[i-1:], false
			}
			bs, err := hex.DecodeString(s[i+1 : i+3])
			if err != nil {
				return "", s[i-1 : i+3], false
			}
			b.Write(bs)
			i += 2
		case 'u':
			if i+5 > len(s) {
				return "", s[i-1:], false
			}
			bs, err := hex.DecodeString(s[i+1 : i+5])
			if err != nil {
				return "", s[i-1 : i+5], false
			}
			b.WriteRune(rune(int(bs[0])<<8 | int(bs[1])))
			i += 4
		default:
			return "", s[i-1 : i+1], false
		}
	}
	return b.String(), "", true
}

func decodeHexString(lexeme string) []byte {
	body := strings.ReplaceAll(lexeme[4:len(lexeme)-1], "_", "")
	bs, err := hex.DecodeString(body)
	if err != nil {
		return nil
	}
	return bs
}
