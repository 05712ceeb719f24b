package parser

import (
	"github.com/rubiojr/templated/ast"
	"github.com/rubiojr/templated/scanner"
)

// Type annotations are consumed structurally but kept as raw source
// text; the bundler never inspects them.

func (p *Parser) rawType(parse func()) *ast.Type {
	start := p.tok().Pos
	parse()
	end := p.prevEnd()
	return &ast.Type{Span: ast.Span{Start: start, End: end}, Text: p.src[start.Offset:end.Offset]}
}

func (p *Parser) typeAnnotation() *ast.Type { return p.rawType(p.unionType) }

// typePack parses a return or variadic annotation, which may be a
// parenthesized list or a ...T pack.
func (p *Parser) typePack() *ast.Type { return p.rawType(p.unionType) }

// genericList parses <T, U..., V = default>.
func (p *Parser) genericList() *ast.Type {
	return p.rawType(func() {
		p.expect("<", "")
		for !p.is(">") {
			p.expectName()
			p.accept("...")
			if p.accept("=") {
				p.unionType()
			}
			if !p.accept(",") {
				break
			}
		}
		p.expect(">", "to close generic list")
	})
}

func (p *Parser) unionType() {
	if !p.accept("|") {
		p.accept("&")
	}
	p.optionalType()
	for p.is("|") || p.is("&") {
		p.next()
		p.optionalType()
	}
}

func (p *Parser) optionalType() {
	p.simpleType()
	for p.accept("?") {
	}
}

func (p *Parser) simpleType() {
	t := p.tok()
	switch {
	case t.Kind == scanner.Name && t.Text == "typeof" && p.peekTok(1).Is("("):
		p.next()
		p.next()
		p.expr()
		p.expect(")", "to close 'typeof'")
	case t.Kind == scanner.Name:
		p.next()
		if p.accept(".") {
			p.expectName()
		}
		if p.is("<") {
			p.typeArgs()
		}
		p.accept("...")
	case t.Is("nil"), t.Is("true"), t.Is("false"), t.Kind == scanner.String:
		p.next()
	case t.Is("{"):
		p.tableType()
	case t.Is("("):
		p.typeList()
		if p.accept("->") {
			p.unionType()
		}
	case t.Is("<"):
		p.genericList()
		p.typeList()
		p.expect("->", "in function type")
		p.unionType()
	case t.Is("..."):
		p.next()
		p.optionalType()
	default:
		p.errorf("expected type near '%s'", t)
	}
}

// typeList parses ( [name:] T, ... ) as used by function types and packs.
func (p *Parser) typeList() {
	p.expect("(", "")
	for !p.is(")") {
		if p.tok().Kind == scanner.Name && p.peekTok(1).Is(":") {
			p.next()
			p.next()
		}
		p.unionType()
		if !p.accept(",") {
			break
		}
	}
	p.expect(")", "to close type list")
}

func (p *Parser) typeArgs() {
	p.expect("<", "")
	for !p.is(">") {
		p.unionType()
		if !p.accept(",") {
			break
		}
	}
	p.expect(">", "to close type arguments")
}

func (p *Parser) tableType() {
	p.expect("{", "")
	for !p.is("}") {
		if t := p.tok(); t.Kind == scanner.Name && (t.Text == "read" || t.Text == "write") {
			if n := p.peekTok(1); n.Kind == scanner.Name || n.Is("[") {
				p.next()
			}
		}
		switch {
		case p.is("["):
			p.next()
			p.unionType()
			p.expect("]", "to close indexer type")
			p.expect(":", "in indexer type")
			p.unionType()
		case p.tok().Kind == scanner.Name && p.peekTok(1).Is(":"):
			p.next()
			p.next()
			p.unionType()
		default:
			p.unionType()
		}
		if !p.accept(",") && !p.accept(";") {
			break
		}
	}
	p.expect("}", "to close table type")
}
