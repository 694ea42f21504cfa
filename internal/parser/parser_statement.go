package parser

import "github.com/salaheldinsoliman/solang/internal/pt"

func (p *Parser) parseBlock(unchecked bool) *pt.Block {
	start := p.consume(LEFT_BRACE, "expected '{'")
	block := &pt.Block{Unchecked: unchecked}

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		before := p.current
		if stmt := p.parseStatement(); stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		if p.current == before {
			p.errorAtCurrent("unexpected token '" + p.peek().Lexeme + "'")
			p.synchronize()
		}
	}

	p.consume(RIGHT_BRACE, "expected '}' after block")
	block.Loc = p.span(start)
	return block
}

func (p *Parser) parseStatement() pt.Statement {
	tok := p.peek()

	switch tok.Type {
	case LEFT_BRACE:
		if p.checkAt(1, IDENTIFIER) && p.checkAt(2, COLON) {
			return p.parseArgsStatement()
		}
		return p.parseBlock(false)
	case UNCHECKED:
		p.advance()
		block := p.parseBlock(true)
		block.Loc = p.span(tok)
		return block
	case IF:
		return p.parseIf()
	case WHILE:
		return p.parseWhile()
	case DO:
		return p.parseDoWhile()
	case FOR:
		return p.parseFor()
	case BREAK:
		p.advance()
		p.consume(SEMICOLON, "expected ';' after 'break'")
		return &pt.BreakStmt{Loc: p.span(tok)}
	case CONTINUE:
		p.advance()
		p.consume(SEMICOLON, "expected ';' after 'continue'")
		return &pt.ContinueStmt{Loc: p.span(tok)}
	case RETURN:
		p.advance()
		stmt := &pt.ReturnStmt{}
		if !p.check(SEMICOLON) {
			stmt.Expr = p.parseExpr()
		}
		p.consume(SEMICOLON, "expected ';' after return")
		stmt.Loc = p.span(tok)
		return stmt
	case EMIT:
		p.advance()
		event := p.parseExpr()
		p.consume(SEMICOLON, "expected ';' after emit")
		return &pt.EmitStmt{Loc: p.span(tok), Event: event}
	case TRY:
		return p.parseTry()
	case ASSEMBLY:
		return p.parseAssembly()
	case IDENTIFIER:
		if tok.Lexeme == "revert" && (p.checkAt(1, LEFT_PAREN) || p.checkAt(1, IDENTIFIER)) {
			return p.parseRevert()
		}
	}

	stmt := p.parseSimpleStatement()
	p.consume(SEMICOLON, "expected ';' after statement")
	return withLoc(stmt, p.span(tok))
}

// parseSimpleStatement parses a variable definition or an expression
// statement, without the trailing semicolon.
func (p *Parser) parseSimpleStatement() pt.Statement {
	start := p.peek()
	expr := p.parseExpr()

	if _, bad := expr.(*pt.BadExpr); bad {
		p.synchronizeUntil(SEMICOLON, RIGHT_BRACE)
		return &pt.BadStmt{Loc: expr.NodeLoc()}
	}

	if !p.check(IDENTIFIER) && !p.check(MEMORY) && !p.check(STORAGE) && !p.check(CALLDATA) {
		return &pt.ExpressionStmt{Loc: expr.NodeLoc(), Expr: expr}
	}

	decl := pt.VariableDeclaration{Ty: expr}
	decl.Storage = p.parseStorageLocation()
	name, ok := p.consumeIdent("expected variable name")
	if !ok {
		p.synchronizeUntil(SEMICOLON, RIGHT_BRACE)
		return &pt.BadStmt{Loc: p.span(start)}
	}
	decl.Name = &name
	decl.Loc = p.span(start)

	stmt := &pt.VariableDefinitionStmt{Decl: decl}
	if p.match(EQUAL) {
		stmt.Initializer = p.parseExpr()
	}
	stmt.Loc = p.span(start)
	return stmt
}

func withLoc(stmt pt.Statement, loc pt.Loc) pt.Statement {
	switch s := stmt.(type) {
	case *pt.ExpressionStmt:
		s.Loc = loc
	case *pt.VariableDefinitionStmt:
		s.Loc = loc
	}
	return stmt
}

func (p *Parser) parseArgsStatement() pt.Statement {
	start := p.advance()
	args := p.parseNamedArguments()
	return &pt.ArgsStmt{Loc: p.span(start), Args: args}
}

func (p *Parser) parseIf() pt.Statement {
	start := p.advance()
	p.consume(LEFT_PAREN, "expected '(' after 'if'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")

	stmt := &pt.IfStmt{Cond: cond, Then: p.parseStatement()}
	if p.match(ELSE) {
		stmt.Else = p.parseStatement()
	}
	stmt.Loc = p.span(start)
	return stmt
}

func (p *Parser) parseWhile() pt.Statement {
	start := p.advance()
	p.consume(LEFT_PAREN, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")
	body := p.parseStatement()
	return &pt.WhileStmt{Loc: p.span(start), Cond: cond, Body: body}
}

func (p *Parser) parseDoWhile() pt.Statement {
	start := p.advance()
	body := p.parseStatement()
	p.consume(WHILE, "expected 'while' after do body")
	p.consume(LEFT_PAREN, "expected '(' after 'while'")
	cond := p.parseExpr()
	p.consume(RIGHT_PAREN, "expected ')' after condition")
	p.consume(SEMICOLON, "expected ';' after do while")
	return &pt.DoWhileStmt{Loc: p.span(start), Body: body, Cond: cond}
}

func (p *Parser) parseFor() pt.Statement {
	start := p.advance()
	p.consume(LEFT_PAREN, "expected '(' after 'for'")

	stmt := &pt.ForStmt{}
	if !p.match(SEMICOLON) {
		stmt.Init = p.parseSimpleStatement()
		p.consume(SEMICOLON, "expected ';' after for initializer")
	}
	if !p.check(SEMICOLON) {
		stmt.Cond = p.parseExpr()
	}
	p.consume(SEMICOLON, "expected ';' after for condition")
	if !p.check(RIGHT_PAREN) {
		stmt.Next = p.parseExpr()
	}
	p.consume(RIGHT_PAREN, "expected ')' after for clauses")

	if p.match(SEMICOLON) {
		stmt.Loc = p.span(start)
		return stmt
	}

	stmt.Body = p.parseStatement()
	stmt.Loc = p.span(start)
	return stmt
}

// parseRevert handles `revert(...)`, `revert Err(...)` and `revert Err({...})`.
func (p *Parser) parseRevert() pt.Statement {
	start := p.advance()

	var path *pt.IdentifierPath
	if p.check(IDENTIFIER) {
		ip := p.parseIdentifierPath()
		path = &ip
	}

	p.consume(LEFT_PAREN, "expected '(' after revert")

	if p.match(LEFT_BRACE) {
		args := p.parseNamedArguments()
		p.consume(RIGHT_PAREN, "expected ')' after revert arguments")
		p.consume(SEMICOLON, "expected ';' after revert")
		return &pt.RevertNamedArgsStmt{Loc: p.span(start), Path: path, Args: args}
	}

	args := p.parseExprList()
	p.consume(RIGHT_PAREN, "expected ')' after revert arguments")
	p.consume(SEMICOLON, "expected ';' after revert")
	return &pt.RevertStmt{Loc: p.span(start), Path: path, Args: args}
}

func (p *Parser) parseTry() pt.Statement {
	start := p.advance()
	stmt := &pt.TryStmt{Expr: p.parseExpr()}

	if p.match(RETURNS) {
		stmt.HasReturns = true
		stmt.Returns = p.parseParameterList()
	}

	stmt.Ok = p.parseBlock(false)

	for p.check(CATCH) {
		catchStart := p.advance()
		clause := pt.CatchClause{}

		if p.check(IDENTIFIER) {
			name := p.makeIdent(p.advance())
			clause.Name = &name
		}
		if p.match(LEFT_PAREN) {
			param := p.parseParameter(p.parseTypeName())
			clause.Param = param
			p.consume(RIGHT_PAREN, "expected ')' after catch parameter")
		}

		clause.Body = p.parseBlock(false)
		clause.Loc = p.span(catchStart)
		stmt.Catches = append(stmt.Catches, clause)
	}

	if len(stmt.Catches) == 0 {
		p.errorAtCurrent("expected 'catch' after try block")
	}

	stmt.Loc = p.span(start)
	return stmt
}

// parseAssembly keeps the body as raw source; inline assembly is not resolved
// beyond its dialect and flags.
func (p *Parser) parseAssembly() pt.Statement {
	start := p.advance()
	stmt := &pt.AssemblyStmt{}

	if p.check(STRING) {
		lit := p.parseStringLiteral().(*pt.StringLiteral)
		stmt.Dialect = lit
	}

	if p.match(LEFT_PAREN) {
		for p.check(STRING) {
			lit := p.parseStringLiteral().(*pt.StringLiteral)
			stmt.Flags = append(stmt.Flags, *lit)
			if !p.match(COMMA) {
				break
			}
		}
		p.consume(RIGHT_PAREN, "expected ')' after assembly flags")
	}

	open := p.consume(LEFT_BRACE, "expected '{' after assembly")
	depth := 1
	for depth > 0 && !p.isAtEnd() {
		switch p.advance().Type {
		case LEFT_BRACE:
			depth++
		case RIGHT_BRACE:
			depth--
		}
	}
	if depth > 0 {
		p.errorAtCurrent("unterminated assembly block")
	}

	stmt.Body = pt.Block{Loc: p.span(open)}
	if open.Type == LEFT_BRACE && depth == 0 {
		stmt.Source = p.source[open.End:p.previous().Offset]
	}
	stmt.Loc = p.span(start)
	return stmt
}
