package parser

import (
	"strings"

	"github.com/salaheldinsoliman/solang/internal/pt"
)

type Parser struct {
	fileNo   int
	filename string
	source   string
	tokens   []Token
	current  int
	errors   []ParseError
}

func NewParser(fileNo int, filename, source string, tokens []Token) *Parser {
	return &Parser{
		fileNo:   fileNo,
		filename: filename,
		source:   source,
		tokens:   tokens,
	}
}

func (p *Parser) Errors() []ParseError {
	return p.errors
}

func (p *Parser) ParseSourceUnit() *pt.SourceUnit {
	unit := &pt.SourceUnit{}

	for !p.isAtEnd() {
		start := p.current
		if part := p.parseSourceUnitPart(); part != nil {
			unit.Parts = append(unit.Parts, part)
		}
		if p.current == start {
			p.errorAtCurrent("unexpected token '" + p.peek().Lexeme + "'")
			p.synchronize()
		}
	}

	return unit
}

func (p *Parser) parseSourceUnitPart() pt.Part {
	switch {
	case p.check(PRAGMA):
		return p.parsePragma()
	case p.check(CONTRACT), p.check(ABSTRACT), p.check(INTERFACE), p.check(LIBRARY):
		return p.parseContract()
	case p.check(STRUCT):
		return p.parseStruct()
	case p.check(EVENT):
		return p.parseEvent()
	case p.isErrorDefinition():
		return p.parseErrorDefinition()
	case p.check(FUNCTION):
		return p.parseFunction()
	case p.check(SEMICOLON):
		p.advance()
		return nil
	default:
		return p.parseVariableDefinition()
	}
}

func (p *Parser) parsePragma() pt.Part {
	start := p.advance()
	name, ok := p.consumeIdent("expected pragma name")
	if !ok {
		p.synchronize()
		return nil
	}

	for !p.check(SEMICOLON) && !p.isAtEnd() {
		p.advance()
	}
	semi := p.consume(SEMICOLON, "expected ';' after pragma")

	value := ""
	if semi.Type == SEMICOLON {
		value = strings.TrimSpace(p.source[name.Loc.End:semi.Offset])
	}

	return &pt.PragmaDirective{
		Loc:   p.span(start),
		Name:  name,
		Value: value,
	}
}

// isErrorDefinition spots `error Name(`; error is not a reserved word.
func (p *Parser) isErrorDefinition() bool {
	return p.check(IDENTIFIER) && p.peek().Lexeme == "error" &&
		p.checkAt(1, IDENTIFIER) && p.checkAt(2, LEFT_PAREN)
}

func (p *Parser) parseContract() pt.Part {
	start := p.peek()
	kind := pt.KindContract

	switch {
	case p.match(ABSTRACT):
		kind = pt.KindAbstract
		p.consume(CONTRACT, "expected 'contract' after 'abstract'")
	case p.match(INTERFACE):
		kind = pt.KindInterface
	case p.match(LIBRARY):
		kind = pt.KindLibrary
	default:
		p.advance()
	}

	name, ok := p.consumeIdent("expected contract name")
	if !ok {
		p.synchronize()
		return nil
	}

	p.consume(LEFT_BRACE, "expected '{' to start contract body")

	contract := &pt.ContractDefinition{Kind: kind, Name: name}

	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		before := p.current
		if part := p.parseContractPart(); part != nil {
			contract.Parts = append(contract.Parts, part)
		}
		if p.current == before {
			p.errorAtCurrent("unexpected token '" + p.peek().Lexeme + "' in contract")
			p.synchronize()
		}
	}

	p.consume(RIGHT_BRACE, "expected '}' to close contract")
	contract.Loc = p.span(start)

	return contract
}

func (p *Parser) parseContractPart() pt.Part {
	switch {
	case p.check(STRUCT):
		return p.parseStruct()
	case p.check(EVENT):
		return p.parseEvent()
	case p.isErrorDefinition():
		return p.parseErrorDefinition()
	case p.check(FUNCTION), p.check(CONSTRUCTOR), p.check(MODIFIER), p.check(FALLBACK), p.check(RECEIVE):
		return p.parseFunction()
	case p.check(SEMICOLON):
		p.advance()
		return nil
	default:
		return p.parseVariableDefinition()
	}
}

func (p *Parser) parseStruct() pt.Part {
	start := p.advance()
	name, ok := p.consumeIdent("expected struct name")
	if !ok {
		p.synchronize()
		return nil
	}

	p.consume(LEFT_BRACE, "expected '{' after struct name")

	def := &pt.StructDefinition{Name: name}
	for !p.check(RIGHT_BRACE) && !p.isAtEnd() {
		fieldStart := p.peek()
		ty := p.parseTypeName()
		field, ok := p.consumeIdent("expected field name")
		if !ok {
			p.synchronizeUntil(SEMICOLON, RIGHT_BRACE)
			p.match(SEMICOLON)
			continue
		}
		p.consume(SEMICOLON, "expected ';' after struct field")
		def.Fields = append(def.Fields, pt.VariableDeclaration{
			Loc:  p.span(fieldStart),
			Ty:   ty,
			Name: &field,
		})
	}

	p.consume(RIGHT_BRACE, "expected '}' after struct fields")
	def.Loc = p.span(start)
	return def
}

func (p *Parser) parseEvent() pt.Part {
	start := p.advance()
	name, ok := p.consumeIdent("expected event name")
	if !ok {
		p.synchronize()
		return nil
	}

	def := &pt.EventDefinition{Name: name}

	p.consume(LEFT_PAREN, "expected '(' after event name")
	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		fieldStart := p.peek()
		field := pt.EventParameter{Ty: p.parseTypeName()}
		if p.match(INDEXED) {
			field.Indexed = true
		}
		if p.check(IDENTIFIER) {
			id := p.makeIdent(p.advance())
			field.Name = &id
		}
		field.Loc = p.span(fieldStart)
		def.Fields = append(def.Fields, field)
		if !p.match(COMMA) {
			break
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' after event fields")

	if p.match(ANONYMOUS) {
		def.Anonymous = true
	}
	p.consume(SEMICOLON, "expected ';' after event")

	def.Loc = p.span(start)
	return def
}

func (p *Parser) parseErrorDefinition() pt.Part {
	start := p.advance()
	name := p.makeIdent(p.advance())

	def := &pt.ErrorDefinition{Name: name}

	p.consume(LEFT_PAREN, "expected '(' after error name")
	for !p.check(RIGHT_PAREN) && !p.isAtEnd() {
		fieldStart := p.peek()
		field := pt.ErrorParameter{Ty: p.parseTypeName()}
		if p.check(IDENTIFIER) {
			id := p.makeIdent(p.advance())
			field.Name = &id
		}
		field.Loc = p.span(fieldStart)
		def.Fields = append(def.Fields, field)
		if !p.match(COMMA) {
			break
		}
	}
	p.consume(RIGHT_PAREN, "expected ')' after error fields")
	p.consume(SEMICOLON, "expected ';' after error")

	def.Loc = p.span(start)
	return def
}

func (p *Parser) parseVariableDefinition() pt.Part {
	start := p.peek()
	ty := p.parseTypeName()
	if _, bad := ty.(*pt.BadExpr); bad {
		p.synchronize()
		return nil
	}

	def := &pt.VariableDefinition{Ty: ty}

	for {
		tok := p.peek()
		if tok.Type == OVERRIDE {
			p.advance()
			continue
		}
		kind, ok := variableAttr(tok.Type)
		if !ok {
			break
		}
		p.advance()
		def.Attrs = append(def.Attrs, pt.VariableAttribute{Loc: p.locOf(tok), Kind: kind})
	}

	id, ok := p.consumeIdent("expected variable name")
	if !ok {
		p.synchronize()
		return nil
	}
	def.Name = id

	if p.match(EQUAL) {
		def.Initializer = p.parseExpr()
	}

	p.consume(SEMICOLON, "expected ';' after variable definition")
	def.Loc = p.span(start)
	return def
}

func variableAttr(tt TokenType) (pt.VariableAttrKind, bool) {
	switch tt {
	case PUBLIC:
		return pt.AttrPublic, true
	case INTERNAL:
		return pt.AttrInternal, true
	case PRIVATE:
		return pt.AttrPrivate, true
	case CONSTANT:
		return pt.AttrConstant, true
	case IMMUTABLE:
		return pt.AttrImmutable, true
	}
	return 0, false
}
