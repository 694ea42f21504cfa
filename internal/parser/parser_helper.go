package parser

import "github.com/salaheldinsoliman/solang/internal/pt"

func (p *Parser) advance() Token {
	if !p.isAtEnd() {
		p.current++
	}
	return p.previous()
}

func (p *Parser) check(tt TokenType) bool {
	if p.isAtEnd() {
		return false
	}
	return p.peek().Type == tt
}

// checkAt looks ahead n tokens past the current one.
func (p *Parser) checkAt(n int, tt TokenType) bool {
	if p.current+n >= len(p.tokens) {
		return false
	}
	return p.tokens[p.current+n].Type == tt
}

func (p *Parser) match(types ...TokenType) bool {
	for _, tt := range types {
		if p.check(tt) {
			p.advance()
			return true
		}
	}
	return false
}

func (p *Parser) consume(tt TokenType, message string) Token {
	if p.check(tt) {
		return p.advance()
	}
	p.errorAtCurrent(message)
	illegal := Token{Type: ILLEGAL, Offset: p.peek().Offset, End: p.peek().Offset}
	if !p.isAtEnd() {
		p.advance()
	}
	return illegal
}

func (p *Parser) peek() Token {
	return p.tokens[p.current]
}

func (p *Parser) previous() Token {
	return p.tokens[p.current-1]
}

func (p *Parser) isAtEnd() bool {
	return p.peek().Type == EOF
}

func (p *Parser) errorAtCurrent(message string) {
	tok := p.peek()
	p.errors = append(p.errors, ParseError{
		Message: message,
		Loc:     p.locOf(tok),
	})
}

func (p *Parser) errorAt(loc pt.Loc, message string) {
	p.errors = append(p.errors, ParseError{Message: message, Loc: loc})
}

func (p *Parser) locOf(tok Token) pt.Loc {
	return pt.FileLoc(p.fileNo, tok.Offset, tok.End)
}

// span covers from the start of tok to the end of the previous token.
func (p *Parser) span(tok Token) pt.Loc {
	return pt.FileLoc(p.fileNo, tok.Offset, p.previous().End)
}


func (p *Parser) synchronize() {
	p.advance()

	for !p.isAtEnd() {
		if p.previous().Type == SEMICOLON || p.previous().Type == RIGHT_BRACE {
			return
		}

		switch p.peek().Type {
		case FUNCTION, CONTRACT, IF, WHILE, FOR, RETURN, EMIT, STRUCT, EVENT, CONSTRUCTOR, MODIFIER:
			return
		}

		p.advance()
	}
}

func (p *Parser) synchronizeUntil(stopTokens ...TokenType) {
	stop := make(map[TokenType]struct{})
	for _, t := range stopTokens {
		stop[t] = struct{}{}
	}

	for !p.isAtEnd() {
		if _, ok := stop[p.peek().Type]; ok {
			return
		}
		p.advance()
	}
}

func (p *Parser) makeIdent(tok Token) pt.Identifier {
	return pt.Identifier{Loc: p.locOf(tok), Name: tok.Lexeme}
}

// consumeIdent consumes an identifier token and returns a pt.Identifier
func (p *Parser) consumeIdent(message string) (pt.Identifier, bool) {
	tok := p.consume(IDENTIFIER, message)
	if tok.Type == ILLEGAL {
		return pt.Identifier{Name: "error"}, false
	}
	return p.makeIdent(tok), true
}

// parseIdentifierPath parses a dotted name such as Lib.Error
func (p *Parser) parseIdentifierPath() pt.IdentifierPath {
	first, _ := p.consumeIdent("expected identifier")
	path := pt.IdentifierPath{Loc: first.Loc, Identifiers: []pt.Identifier{first}}

	for p.check(DOT) && p.checkAt(1, IDENTIFIER) {
		p.advance()
		next := p.makeIdent(p.advance())
		path.Identifiers = append(path.Identifiers, next)
		path.Loc = path.Loc.Union(next.Loc)
	}

	return path
}

func (p *Parser) parseStorageLocation() *pt.StorageLocation {
	if !p.match(MEMORY, STORAGE, CALLDATA) {
		return nil
	}
	tok := p.previous()
	kind := pt.Memory
	switch tok.Type {
	case STORAGE:
		kind = pt.Storage
	case CALLDATA:
		kind = pt.Calldata
	}
	return &pt.StorageLocation{Loc: p.locOf(tok), Kind: kind}
}
