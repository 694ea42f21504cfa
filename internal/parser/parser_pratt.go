package parser

import (
	"strings"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

var binaryPrecedence = map[string]int{
	"||": 1,
	"&&": 2,
	"==": 3, "!=": 3,
	"<": 4, "<=": 4, ">": 4, ">=": 4,
	"|":  5,
	"^":  6,
	"&":  7,
	"<<": 8, ">>": 8,
	"+": 9, "-": 9,
	"*": 10, "/": 10, "%": 10,
	"**": 11,
}

func isAssignOperator(tok Token) bool {
	switch tok.Type {
	case EQUAL, PLUS_EQUAL, MINUS_EQUAL, STAR_EQUAL, SLASH_EQUAL, PERCENT_EQUAL,
		AMPERSAND_EQUAL, PIPE_EQUAL, CARET_EQUAL, LESS_LESS_EQUAL, GREATER_GREATER_EQUAL:
		return true
	}
	return false
}

func (p *Parser) parseExpr() pt.Expression {
	cond := p.parsePrattExpr(1)

	if p.match(QUESTION) {
		trueExpr := p.parseExpr()
		p.consume(COLON, "expected ':' in conditional expression")
		falseExpr := p.parseExpr()
		return &pt.ConditionalOperator{
			Loc:   cond.NodeLoc().Union(falseExpr.NodeLoc()),
			Cond:  cond,
			True:  trueExpr,
			False: falseExpr,
		}
	}

	if isAssignOperator(p.peek()) {
		op := p.advance()
		right := p.parseExpr()
		return &pt.Assign{
			Loc:   cond.NodeLoc().Union(right.NodeLoc()),
			Op:    op.Lexeme,
			Left:  cond,
			Right: right,
		}
	}

	return cond
}

func (p *Parser) parsePrattExpr(minPrec int) pt.Expression {
	expr := p.parsePrefixExpr()

	for {
		tok := p.peek()
		prec, ok := binaryPrecedence[tok.Lexeme]
		if !ok || prec < minPrec {
			break
		}

		p.advance()
		next := prec + 1
		if tok.Lexeme == "**" {
			// right associative
			next = prec
		}
		right := p.parsePrattExpr(next)

		expr = &pt.BinaryExpr{
			Loc:   expr.NodeLoc().Union(right.NodeLoc()),
			Op:    tok.Lexeme,
			Left:  expr,
			Right: right,
		}
	}

	return expr
}

func (p *Parser) parsePrefixExpr() pt.Expression {
	if p.match(MINUS, BANG, TILDE, PLUS) {
		op := p.previous()
		value := p.parsePrefixExpr()
		return &pt.UnaryExpr{
			Loc:  p.locOf(op).Union(value.NodeLoc()),
			Op:   op.Lexeme,
			Expr: value,
		}
	}

	if p.match(INCREMENT, DECREMENT) {
		op := p.previous()
		value := p.parsePrefixExpr()
		return &pt.IncDec{
			Loc:    p.locOf(op).Union(value.NodeLoc()),
			Op:     op.Lexeme,
			Prefix: true,
			Expr:   value,
		}
	}

	if p.match(DELETE) {
		op := p.previous()
		value := p.parsePrefixExpr()
		return &pt.Delete{
			Loc:  p.locOf(op).Union(value.NodeLoc()),
			Expr: value,
		}
	}

	if p.match(NEW) {
		op := p.previous()
		ty := p.parseTypeName()
		expr := &pt.New{Loc: p.locOf(op).Union(ty.NodeLoc()), Expr: ty}
		return p.parsePostfixExpr(expr)
	}

	return p.parsePostfixExpr(p.parsePrimaryExpr())
}

func (p *Parser) parsePostfixExpr(expr pt.Expression) pt.Expression {
	for {
		switch {
		case p.match(DOT):
			tok := p.peek()
			if !isMemberName(tok) {
				p.errorAtCurrent("expected member name after '.'")
				return expr
			}
			p.advance()
			expr = &pt.MemberAccess{
				Loc:    expr.NodeLoc().Union(p.locOf(tok)),
				Expr:   expr,
				Member: p.makeIdent(tok),
			}
		case p.check(LEFT_PAREN) && p.checkAt(1, LEFT_BRACE):
			p.advance()
			p.advance()
			args := p.parseNamedArguments()
			end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
			expr = &pt.NamedFunctionCall{
				Loc:    expr.NodeLoc().Union(p.locOf(end)),
				Callee: expr,
				Args:   args,
			}
		case p.match(LEFT_PAREN):
			args := p.parseExprList()
			end := p.consume(RIGHT_PAREN, "expected ')' after arguments")
			expr = &pt.FunctionCall{
				Loc:    expr.NodeLoc().Union(p.locOf(end)),
				Callee: expr,
				Args:   args,
			}
		case p.match(LEFT_BRACKET):
			var index pt.Expression
			if !p.check(RIGHT_BRACKET) {
				index = p.parseExpr()
			}
			end := p.consume(RIGHT_BRACKET, "expected ']' after index")
			expr = &pt.ArraySubscript{
				Loc:   expr.NodeLoc().Union(p.locOf(end)),
				Array: expr,
				Index: index,
			}
		case p.match(INCREMENT, DECREMENT):
			op := p.previous()
			expr = &pt.IncDec{
				Loc:  expr.NodeLoc().Union(p.locOf(op)),
				Op:   op.Lexeme,
				Expr: expr,
			}
		default:
			return expr
		}
	}
}

// isMemberName accepts keywords that double as member names, e.g. x.delete.
func isMemberName(tok Token) bool {
	switch tok.Type {
	case IDENTIFIER, PAYABLE, DELETE:
		return true
	}
	return false
}

// parseNamedArguments parses `a: 1, b: 2}` after the opening brace.
func (p *Parser) parseNamedArguments() []pt.NamedArgument {
	var args []pt.NamedArgument

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		name, ok := p.consumeIdent("expected argument name")
		if !ok {
			p.synchronizeUntil(COMMA, RIGHT_BRACE)
			if p.match(COMMA) {
				continue
			}
			break
		}
		p.consume(COLON, "expected ':' after argument name")
		value := p.parseExpr()
		args = append(args, pt.NamedArgument{
			Loc:  name.Loc.Union(value.NodeLoc()),
			Name: name,
			Expr: value,
		})
		if !p.match(COMMA) {
			break
		}
	}

	p.consume(RIGHT_BRACE, "expected '}' after named arguments")
	return args
}

func (p *Parser) parsePrimaryExpr() pt.Expression {
	tok := p.peek()

	switch tok.Type {
	case NUMBER:
		p.advance()
		value, exp, _ := strings.Cut(strings.ToLower(tok.Lexeme), "e")
		return &pt.NumberLiteral{
			Loc:      p.locOf(tok),
			Value:    strings.ReplaceAll(value, "_", ""),
			Exponent: exp,
		}
	case RATIONAL:
		p.advance()
		return p.makeRational(tok)
	case HEX_NUMBER:
		p.advance()
		return &pt.HexNumberLiteral{Loc: p.locOf(tok), Value: tok.Lexeme}
	case STRING:
		return p.parseStringLiteral()
	case HEX_STRING:
		var bs []byte
		for p.check(HEX_STRING) {
			t := p.advance()
			body := strings.ReplaceAll(t.Lexeme[4:len(t.Lexeme)-1], "_", "")
			if len(body)%2 != 0 {
				p.errorAt(p.locOf(t), "hex string has odd number of characters")
			}
			bs = append(bs, decodeHexString(t.Lexeme)...)
		}
		return &pt.HexLiteral{Loc: p.span(tok), Bytes: bs}
	case TRUE, FALSE:
		p.advance()
		return &pt.BoolLiteral{Loc: p.locOf(tok), Value: tok.Type == TRUE}
	case PAYABLE:
		p.advance()
		return &pt.ElementaryType{Loc: p.locOf(tok), Name: "address", Payable: true}
	case MAPPING:
		return p.parseTypeName()
	case IDENTIFIER:
		if isElementaryType(tok.Lexeme) {
			return p.parseElementaryType()
		}
		p.advance()
		return &pt.Variable{Loc: p.locOf(tok), Name: tok.Lexeme}
	case LEFT_PAREN:
		return p.parseParenthesisOrList()
	case LEFT_BRACKET:
		p.advance()
		var elems []pt.Expression
		for !p.check(RIGHT_BRACKET) && !p.isAtEnd() {
			elems = append(elems, p.parseExpr())
			if !p.match(COMMA) {
				break
			}
		}
		p.consume(RIGHT_BRACKET, "expected ']' after array literal")
		return &pt.ArrayLiteral{Loc: p.span(tok), Elems: elems}
	}

	p.errorAtCurrent("unexpected token in expression")
	switch tok.Type {
	case EOF, SEMICOLON, RIGHT_BRACE, RIGHT_PAREN:
	default:
		p.advance()
	}
	return &pt.BadExpr{Loc: p.locOf(tok)}
}

func (p *Parser) makeRational(tok Token) pt.Expression {
	lexeme := strings.ReplaceAll(strings.ToLower(tok.Lexeme), "_", "")
	mantissa, exp, _ := strings.Cut(lexeme, "e")
	integer, fraction, _ := strings.Cut(mantissa, ".")
	return &pt.RationalNumberLiteral{
		Loc:      p.locOf(tok),
		Integer:  integer,
		Fraction: fraction,
		Exponent: exp,
	}
}

func (p *Parser) parseStringLiteral() pt.Expression {
	start := p.peek()
	var b strings.Builder

	for p.check(STRING) {
		t := p.advance()
		value, bad, ok := unescape(t.Lexeme[1 : len(t.Lexeme)-1])
		if !ok {
			p.errorAt(p.locOf(t), "invalid escape '"+bad+"'")
		}
		b.WriteString(value)
	}

	return &pt.StringLiteral{Loc: p.span(start), Value: b.String()}
}

// parseParenthesisOrList handles (e), (a, b), (a, , b) and (uint x, y).
func (p *Parser) parseParenthesisOrList() pt.Expression {
	l := p.advance()

	if r := p.peek(); r.Type == RIGHT_PAREN {
		p.advance()
		return &pt.List{Loc: p.span(l)}
	}

	var entries []pt.ListEntry
	single := true

	for !p.isAtEnd() {
		if p.check(COMMA) || p.check(RIGHT_PAREN) {
			entries = append(entries, pt.ListEntry{Loc: p.locOf(p.peek())})
			single = false
		} else {
			expr := p.parseExpr()
			if p.check(MEMORY) || p.check(STORAGE) || p.check(CALLDATA) || p.check(IDENTIFIER) {
				single = false
				param := p.parseParameter(expr)
				entries = append(entries, pt.ListEntry{Loc: param.Loc, Param: param})
			} else {
				entries = append(entries, pt.ListEntry{
					Loc:   expr.NodeLoc(),
					Param: &pt.Parameter{Loc: expr.NodeLoc(), Ty: expr},
				})
			}
		}
		if !p.match(COMMA) {
			break
		}
		single = false
	}

	p.consume(RIGHT_PAREN, "expected ')'")

	if single && len(entries) == 1 {
		return &pt.Parenthesis{Loc: p.span(l), Expr: entries[0].Param.Ty}
	}

	return &pt.List{Loc: p.span(l), Entries: entries}
}

func (p *Parser) parseExprList() []pt.Expression {
	var args []pt.Expression
	if p.check(RIGHT_PAREN) {
		return args
	}

	for {
		args = append(args, p.parseExpr())
		if !p.match(COMMA) {
			break
		}
	}

	return args
}
