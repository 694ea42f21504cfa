package parser

import "github.com/salaheldinsoliman/solang/internal/pt"

func (p *Parser) parseFunction() pt.Part {
	startToken := p.advance()

	def := &pt.FunctionDefinition{}

	switch startToken.Type {
	case CONSTRUCTOR:
		def.Ty = pt.FunctionTyConstructor
	case MODIFIER:
		def.Ty = pt.FunctionTyModifier
	case FALLBACK:
		def.Ty = pt.FunctionTyFallback
	case RECEIVE:
		def.Ty = pt.FunctionTyReceive
	default:
		def.Ty = pt.FunctionTyFunction
	}

	if def.Ty == pt.FunctionTyFunction || def.Ty == pt.FunctionTyModifier {
		if p.check(IDENTIFIER) {
			name := p.makeIdent(p.advance())
			def.Name = &name
		} else if def.Ty == pt.FunctionTyModifier {
			p.errorAtCurrent("expected modifier name")
		}
	}

	// modifiers may omit the parameter list
	if def.Ty != pt.FunctionTyModifier || p.check(LEFT_PAREN) {
		def.Params = p.parseParameterList()
	}

	p.parseFunctionAttributes(def)

	if p.match(RETURNS) {
		def.Returns = p.parseParameterList()
	}

	def.LocPrototype = p.span(startToken)

	if p.match(SEMICOLON) {
		def.Loc = p.span(startToken)
		return def
	}

	if !p.check(LEFT_BRACE) {
		p.errorAtCurrent("expected '{' or ';' after function declaration")
		p.synchronize()
		return nil
	}

	def.Body = p.parseBlock(false)
	def.Loc = p.span(startToken)
	return def
}

func (p *Parser) parseFunctionAttributes(def *pt.FunctionDefinition) {
	for {
		tok := p.peek()
		switch tok.Type {
		case PUBLIC, PRIVATE, INTERNAL, EXTERNAL:
			def.Visibility = p.advance().Lexeme
		case PURE, VIEW, PAYABLE:
			def.Mutability = p.advance().Lexeme
		case VIRTUAL:
			p.advance()
			def.Virtual = true
		case OVERRIDE:
			p.advance()
			def.Override = true
		case IDENTIFIER:
			start := p.peek()
			invocation := pt.ModifierInvocation{Name: p.parseIdentifierPath()}
			if p.match(LEFT_PAREN) {
				invocation.Args = p.parseExprList()
				p.consume(RIGHT_PAREN, "expected ')' after modifier arguments")
			}
			invocation.Loc = p.span(start)
			def.Modifiers = append(def.Modifiers, invocation)
		default:
			return
		}
	}
}

// parseParameterList parses `(T a, T storage b, )`. Empty entries are kept so
// that sema can report stray commas.
func (p *Parser) parseParameterList() []pt.ListEntry {
	p.consume(LEFT_PAREN, "expected '('")
	var entries []pt.ListEntry

	if p.match(RIGHT_PAREN) {
		return entries
	}

	for !p.isAtEnd() {
		if p.check(COMMA) || p.check(RIGHT_PAREN) {
			entries = append(entries, pt.ListEntry{Loc: p.locOf(p.peek())})
		} else {
			param := p.parseParameter(p.parseTypeName())
			entries = append(entries, pt.ListEntry{Loc: param.Loc, Param: param})
		}
		if !p.match(COMMA) {
			break
		}
	}

	p.consume(RIGHT_PAREN, "expected ')' after parameter list")
	return entries
}

// parseParameter finishes a parameter whose type has already been parsed.
func (p *Parser) parseParameter(ty pt.Expression) *pt.Parameter {
	param := &pt.Parameter{Ty: ty}
	param.Storage = p.parseStorageLocation()
	if p.check(IDENTIFIER) {
		id := p.makeIdent(p.advance())
		param.Name = &id
	}
	param.Loc = pt.FileLoc(p.fileNo, ty.NodeLoc().Start, p.previous().End)
	return param
}

// parseTypeName parses a type in declaration position: elementary types,
// mappings, user defined names and array suffixes.
func (p *Parser) parseTypeName() pt.Expression {
	start := p.peek()
	var ty pt.Expression

	switch {
	case p.match(MAPPING):
		p.consume(LEFT_PAREN, "expected '(' after 'mapping'")
		key := p.parseTypeName()
		if p.check(IDENTIFIER) {
			p.advance()
		}
		p.consume(ARROW, "expected '=>' in mapping")
		value := p.parseTypeName()
		if p.check(IDENTIFIER) {
			p.advance()
		}
		p.consume(RIGHT_PAREN, "expected ')' after mapping")
		ty = &pt.Mapping{Loc: p.span(start), Key: key, Value: value}
	case p.check(IDENTIFIER) && isElementaryType(start.Lexeme):
		ty = p.parseElementaryType()
	case p.check(IDENTIFIER):
		path := p.parseIdentifierPath()
		ty = pathToExpr(path)
	default:
		p.errorAtCurrent("expected type")
		bad := &pt.BadExpr{Loc: p.locOf(start)}
		if !p.isAtEnd() {
			p.advance()
		}
		return bad
	}

	for p.match(LEFT_BRACKET) {
		var index pt.Expression
		if !p.check(RIGHT_BRACKET) {
			index = p.parseExpr()
		}
		p.consume(RIGHT_BRACKET, "expected ']' in array type")
		ty = &pt.ArraySubscript{Loc: p.span(start), Array: ty, Index: index}
	}

	return ty
}

func (p *Parser) parseElementaryType() pt.Expression {
	tok := p.advance()
	ty := &pt.ElementaryType{Loc: p.locOf(tok), Name: tok.Lexeme}
	if tok.Lexeme == "address" && p.match(PAYABLE) {
		ty.Payable = true
		ty.Loc = p.span(tok)
	}
	return ty
}

func pathToExpr(path pt.IdentifierPath) pt.Expression {
	first := path.Identifiers[0]
	var expr pt.Expression = &pt.Variable{Loc: first.Loc, Name: first.Name}
	for _, id := range path.Identifiers[1:] {
		expr = &pt.MemberAccess{
			Loc:    expr.NodeLoc().Union(id.Loc),
			Expr:   expr,
			Member: id,
		}
	}
	return expr
}
