package ir

import (
	"strings"
)

// ParseText parses the textual IR syntax of §6 into a Program.
func ParseText(src string) (*Program, error) {
	toks, err := tokenizeAll(src)
	if err != nil {
		return nil, err
	}
	p := &parser{toks: toks}
	return p.parseProgram()
}

func tokenizeAll(src string) ([]token, error) {
	lx := newLexer(src)
	var toks []token
	for {
		t, err := lx.next()
		if err != nil {
			return nil, err
		}
		toks = append(toks, t)
		if t.kind == tokEOF {
			return toks, nil
		}
	}
}

type parser struct {
	toks []token
	i    int
}

func (p *parser) cur() token { return p.toks[p.i] }

func (p *parser) advance() token {
	t := p.toks[p.i]
	if p.i < len(p.toks)-1 {
		p.i++
	}
	return t
}

func (p *parser) expectPunct(s string) (token, error) {
	t := p.cur()
	if t.kind != tokPunct || t.text != s {
		return token{}, NewPosError(t.pos, "expected %q, found %q", s, t.text)
	}
	return p.advance(), nil
}

func (p *parser) expectKeyword(s string) (token, error) {
	t := p.cur()
	if t.kind != tokKeyword || t.text != s {
		return token{}, NewPosError(t.pos, "expected keyword %q, found %q", s, t.text)
	}
	return p.advance(), nil
}

func (p *parser) expectIdent() (token, error) {
	t := p.cur()
	if t.kind != tokIdent {
		return token{}, NewPosError(t.pos, "expected identifier, found %q", t.text)
	}
	return p.advance(), nil
}

func (p *parser) parseProgram() (*Program, error) {
	prog := &Program{}
	for p.cur().kind != tokEOF {
		t := p.cur()
		switch {
		case t.kind == tokKeyword && t.text == "from":
			imports, err := p.parseImportClause()
			if err != nil {
				return nil, err
			}
			prog.Imports = append(prog.Imports, imports...)
		case t.kind == tokPunct && t.text == "@":
			fn, err := p.parseFunction()
			if err != nil {
				return nil, err
			}
			prog.Functions = append(prog.Functions, *fn)
		default:
			return nil, NewPosError(t.pos, "expected import or function, found %q", t.text)
		}
	}
	return prog, nil
}

func (p *parser) parseImportClause() ([]Import, error) {
	if _, err := p.expectKeyword("from"); err != nil {
		return nil, err
	}
	pathTok := p.cur()
	if pathTok.kind != tokString {
		return nil, NewPosError(pathTok.pos, "expected import path string, found %q", pathTok.text)
	}
	p.advance()
	if _, err := p.expectKeyword("import"); err != nil {
		return nil, err
	}

	var imports []Import
	for {
		if _, err := p.expectPunct("@"); err != nil {
			return nil, err
		}
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		imp := Import{Path: pathTok.text, Name: name.text}
		if p.cur().kind == tokKeyword && p.cur().text == "as" {
			p.advance()
			if _, err := p.expectPunct("@"); err != nil {
				return nil, err
			}
			alias, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			imp.Alias = alias.text
		}
		imports = append(imports, imp)
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(";"); err != nil {
		return nil, err
	}
	return imports, nil
}

func (p *parser) parseType() (Type, error) {
	t := p.cur()
	if t.kind == tokIdent && t.text == "ptr" {
		p.advance()
		if _, err := p.expectPunct("<"); err != nil {
			return Type{}, err
		}
		inner, err := p.parseType()
		if err != nil {
			return Type{}, err
		}
		if _, err := p.expectPunct(">"); err != nil {
			return Type{}, err
		}
		return Ptr(inner), nil
	}
	if t.kind != tokIdent {
		return Type{}, NewPosError(t.pos, "expected type, found %q", t.text)
	}
	typ, err := ParseType(t.text)
	if err != nil {
		return Type{}, WrapPos(t.pos, err, "parsing type")
	}
	p.advance()
	return typ, nil
}

func (p *parser) parseFunction() (*Function, error) {
	if _, err := p.expectPunct("@"); err != nil {
		return nil, err
	}
	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	if _, err := p.expectPunct("("); err != nil {
		return nil, err
	}
	var args []Parameter
	for p.cur().kind != tokPunct || p.cur().text != ")" {
		pname, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		ptyp, err := p.parseType()
		if err != nil {
			return nil, err
		}
		args = append(args, Parameter{Name: pname.text, Type: ptyp})
		if p.cur().kind == tokPunct && p.cur().text == "," {
			p.advance()
			continue
		}
		break
	}
	if _, err := p.expectPunct(")"); err != nil {
		return nil, err
	}
	var ret *Type
	if p.cur().kind == tokPunct && p.cur().text == ":" {
		p.advance()
		rt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		ret = &rt
	}
	if _, err := p.expectPunct("{"); err != nil {
		return nil, err
	}
	var body []Item
	for !(p.cur().kind == tokPunct && p.cur().text == "}") {
		item, err := p.parseBodyItem()
		if err != nil {
			return nil, err
		}
		body = append(body, item)
	}
	if _, err := p.expectPunct("}"); err != nil {
		return nil, err
	}
	return &Function{
		Signature: FunctionSignature{Name: name.text, Arguments: args, ReturnType: ret},
		Body:      body,
	}, nil
}

func (p *parser) parseBodyItem() (Item, error) {
	t := p.cur()
	if t.kind == tokPunct && t.text == "." {
		p.advance()
		name, err := p.expectIdent()
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(":"); err != nil {
			return nil, err
		}
		return LabelMarker{Name: name.text}, nil
	}

	if t.kind != tokIdent {
		return nil, NewPosError(t.pos, "expected label or instruction, found %q", t.text)
	}

	// Lookahead: `ident [: type] =` means Const/Value; bare `OP ...` means
	// Effect.
	save := p.i
	first, _ := p.expectIdent()
	var declType *Type
	if p.cur().kind == tokPunct && p.cur().text == ":" {
		p.advance()
		dt, err := p.parseType()
		if err != nil {
			return nil, err
		}
		declType = &dt
	}
	if p.cur().kind == tokPunct && p.cur().text == "=" {
		p.advance()
		return p.parseDefinition(first.text, declType)
	}

	// Not a definition: rewind and parse as an Effect instruction.
	p.i = save
	return p.parseEffect()
}

func (p *parser) parseDefinition(dest string, declType *Type) (Item, error) {
	if p.cur().kind == tokKeyword && p.cur().text == "const" {
		p.advance()
		lit, err := p.parseLiteralToken(declType)
		if err != nil {
			return nil, err
		}
		if _, err := p.expectPunct(";"); err != nil {
			return nil, err
		}
		typ := literalDefaultType(lit)
		if declType != nil {
			typ = *declType
		}
		return ConstInstr{Dest: dest, Type: typ, Value: lit}, nil
	}

	opTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	funcs, args, labels, err := p.parseOperands()
	if err != nil {
		return nil, err
	}
	typ := Int
	if declType != nil {
		typ = *declType
	}
	return ValueInstr{Dest: dest, Type: typ, Op: Op(opTok.text), Args: args, Funcs: funcs, Labels: labels}, nil
}

func (p *parser) parseEffect() (Item, error) {
	opTok, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	funcs, args, labels, err := p.parseOperands()
	if err != nil {
		return nil, err
	}
	return EffectInstr{Op: Op(opTok.text), Args: args, Funcs: funcs, Labels: labels}, nil
}

// parseOperands consumes operands until `;`, classifying each as a func
// (`@name`), a label (`.name`), or a bare variable name, then consumes the
// terminating `;`.
func (p *parser) parseOperands() (funcs, args, labels []string, err error) {
	for {
		t := p.cur()
		if t.kind == tokPunct && t.text == ";" {
			p.advance()
			return funcs, args, labels, nil
		}
		switch {
		case t.kind == tokPunct && t.text == "@":
			p.advance()
			id, err := p.expectIdent()
			if err != nil {
				return nil, nil, nil, err
			}
			funcs = append(funcs, id.text)
		case t.kind == tokPunct && t.text == ".":
			p.advance()
			id, err := p.expectIdent()
			if err != nil {
				return nil, nil, nil, err
			}
			labels = append(labels, id.text)
		case t.kind == tokIdent:
			p.advance()
			args = append(args, t.text)
		default:
			return nil, nil, nil, NewPosError(t.pos, "expected operand or ';', found %q", t.text)
		}
	}
}

func (p *parser) parseLiteralToken(declType *Type) (Literal, error) {
	t := p.cur()
	switch {
	case t.kind == tokKeyword && (t.text == "true" || t.text == "false"):
		p.advance()
		return ParseLiteral(Bool, t.text)
	case t.kind == tokChar:
		p.advance()
		return ParseLiteral(Char, t.text)
	case t.kind == tokNumber:
		p.advance()
		typ := Int
		if declType != nil {
			typ = *declType
		} else if strings.ContainsAny(t.text, ".eE") {
			typ = Float
		}
		return ParseLiteral(typ, t.text)
	default:
		return Literal{}, NewPosError(t.pos, "expected literal, found %q", t.text)
	}
}

func literalDefaultType(l Literal) Type {
	switch l.Kind {
	case LitInt:
		return Int
	case LitBool:
		return Bool
	case LitFloat:
		return Float
	case LitChar:
		return Char
	default:
		return Int
	}
}
