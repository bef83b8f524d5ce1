package parser

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/schema/internal/token"
)

var scalarTypes = map[string]ast.ElementType{
	"u8":           ast.TypeU8,
	"u16":          ast.TypeU16,
	"u32":          ast.TypeU32,
	"u64":          ast.TypeU64,
	"s8":           ast.TypeS8,
	"s16":          ast.TypeS16,
	"s32":          ast.TypeS32,
	"s64":          ast.TypeS64,
	"f32":          ast.TypeF32,
	"f64":          ast.TypeF64,
	"bool":         ast.TypeBool,
	"string":       ast.TypeString,
	"short_string": ast.TypeShortString,
}

type Parser struct {
	graph  *ast.Graph
	tokens []token.Token
	pos    int
}

func New(tokens []token.Token) *Parser {
	return &Parser{
		tokens: tokens,
		graph:  ast.NewGraph(),
	}
}

func (p *Parser) Parse() (*ast.Graph, error) {
	for p.peek() != nil {
		if err := p.parseDecl(p.graph.Global, true); err != nil {
			return nil, err
		}
	}
	return p.graph, nil
}

func (p *Parser) peek() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	return &p.tokens[p.pos]
}

func (p *Parser) next() *token.Token {
	if p.pos >= len(p.tokens) {
		return nil
	}
	t := &p.tokens[p.pos]
	p.pos++
	return t
}

func (p *Parser) errorf(t *token.Token, format string, args ...any) error {
	if t == nil {
		line, col := 0, 0
		if n := len(p.tokens); n > 0 {
			line, col = p.tokens[n-1].Line, p.tokens[n-1].Col
		}
		return errors.ParseFailed(line, col, "unexpected end of input")
	}
	return errors.ParseFailed(t.Line, t.Col, fmt.Sprintf(format, args...))
}

func (p *Parser) expect(v string) (*token.Token, error) {
	t := p.next()
	if t == nil || !t.Is(v) {
		if t == nil {
			return nil, p.errorf(nil, "")
		}
		return nil, p.errorf(t, "expected %q, got %q", v, t.Value)
	}
	return t, nil
}

func (p *Parser) expectIdent() (*token.Token, error) {
	t := p.next()
	if t == nil {
		return nil, p.errorf(nil, "")
	}
	if t.Type != token.Ident {
		return nil, p.errorf(t, "expected %v, got %q", token.Ident, t.Value)
	}
	return t, nil
}

// accept consumes the next token if it is spelled v.
func (p *Parser) accept(v string) bool {
	if t := p.peek(); t != nil && t.Is(v) {
		p.pos++
		return true
	}
	return false
}

func (p *Parser) parseDecl(ns *ast.Namespace, allowNamespace bool) error {
	t := p.peek()
	switch {
	case t.Is("namespace") && allowNamespace:
		return p.parseNamespace()
	case t.Is("struct"):
		return p.parseStruct(ns)
	case t.Is("enum"):
		return p.parseEnum(ns)
	}
	return p.errorf(t, "unexpected %q, expected struct, enum or namespace", t.Value)
}

func (p *Parser) parseNamespace() error {
	p.next()
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	ns := p.findNamespace(name.Value)
	if _, err := p.expect("{"); err != nil {
		return err
	}
	for {
		t := p.peek()
		if t == nil {
			return p.errorf(nil, "")
		}
		if t.Is("}") {
			p.next()
			p.accept(";")
			return nil
		}
		if err := p.parseDecl(ns, false); err != nil {
			return err
		}
	}
}

// findNamespace returns the namespace called name, creating it on first use
// so that reopened namespace blocks merge.
func (p *Parser) findNamespace(name string) *ast.Namespace {
	for _, ns := range p.graph.Spaces {
		if ns.Name == name {
			return ns
		}
	}
	ns := &ast.Namespace{Name: name}
	p.graph.Spaces = append(p.graph.Spaces, ns)
	return ns
}

func (p *Parser) parseStruct(ns *ast.Namespace) error {
	kw := p.next()
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	st := &ast.StructDef{
		Space: ns,
		Name:  name.Value,
		Loc:   ast.Location{Line: kw.Line, Column: kw.Col},
	}
	for p.peek() != nil && p.peek().Type == token.Annotation {
		ann := p.next()
		switch ann.Value {
		case "@naked":
			st.Naked = true
		default:
			return p.errorf(ann, "unknown struct annotation %s", ann.Value)
		}
	}
	if _, err := p.expect("{"); err != nil {
		return err
	}
	for {
		t := p.peek()
		if t == nil {
			return p.errorf(nil, "")
		}
		if t.Is("}") {
			p.next()
			break
		}
		elem, err := p.parseElement(st)
		if err != nil {
			return err
		}
		st.Elements = append(st.Elements, elem)
	}
	p.accept(";")
	ns.Structs = append(ns.Structs, st)
	return nil
}

func (p *Parser) parseElement(st *ast.StructDef) (*ast.ElementDef, error) {
	typ, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	elem := &ast.ElementDef{
		Enclosing: st,
		Loc:       ast.Location{Line: typ.Line, Column: typ.Col},
	}
	if scalar, ok := scalarTypes[typ.Value]; ok {
		elem.Type = scalar
	} else {
		elem.Type = ast.TypeCustom
		elem.CustomName = typ.Value
		if p.accept("::") {
			inner, err := p.expectIdent()
			if err != nil {
				return nil, err
			}
			elem.Namespace = typ.Value
			elem.CustomName = inner.Value
		}
	}

	name, err := p.expectIdent()
	if err != nil {
		return nil, err
	}
	elem.Name = name.Value

	if err := p.parseArraySuffix(elem); err != nil {
		return nil, err
	}

	if p.accept("=") {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		elem.Init = lit
	}

	if _, err := p.expect(";"); err != nil {
		return nil, err
	}
	return elem, nil
}

func (p *Parser) parseArraySuffix(elem *ast.ElementDef) error {
	for p.accept("[") {
		elem.ArrayDims++
		if p.accept("]") {
			if elem.ArrayDims == 1 {
				elem.Array = ast.ArrayDynamic
			}
			continue
		}
		size, err := p.parseU32()
		if err != nil {
			return err
		}
		if _, err := p.expect("]"); err != nil {
			return err
		}
		if elem.ArrayDims == 1 {
			elem.Array = ast.ArrayStatic
			elem.ArraySize = size
		}
	}

	if t := p.peek(); t != nil && t.Type == token.Annotation {
		p.next()
		if t.Value != "@compact" {
			return p.errorf(t, "unknown element annotation %s", t.Value)
		}
		if elem.Array != ast.ArrayStatic {
			return p.errorf(t, "@compact requires a sized array on %s", elem.Name)
		}
		elem.Array = ast.ArrayCompact
	}
	return nil
}

func (p *Parser) parseEnum(ns *ast.Namespace) error {
	kw := p.next()
	name, err := p.expectIdent()
	if err != nil {
		return err
	}
	enm := &ast.EnumDef{
		Space: ns,
		Name:  name.Value,
		Loc:   ast.Location{Line: kw.Line, Column: kw.Col},
	}
	if _, err := p.expect("{"); err != nil {
		return err
	}
	next := int64(0)
	for {
		if p.accept("}") {
			break
		}
		item, err := p.expectIdent()
		if err != nil {
			return err
		}
		value := next
		if p.accept("=") {
			value, err = p.parseInt()
			if err != nil {
				return err
			}
		}
		enm.Items = append(enm.Items, ast.EnumItem{Name: item.Value, Value: value})
		next = value + 1
		if !p.accept(",") {
			if _, err := p.expect("}"); err != nil {
				return err
			}
			break
		}
	}
	p.accept(";")
	ns.Enums = append(ns.Enums, enm)
	return nil
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	t := p.next()
	if t == nil {
		return nil, p.errorf(nil, "")
	}
	switch t.Type {
	case token.String:
		return &ast.Literal{Kind: ast.LiteralString, Str: unescape(t.Value)}, nil
	case token.Number:
		if i, err := parseIntText(t.Value); err == nil {
			return &ast.Literal{Kind: ast.LiteralInt, Int: i, Float: float64(i)}, nil
		}
		f, err := strconv.ParseFloat(t.Value, 64)
		if err != nil {
			return nil, p.errorf(t, "invalid number %s", t.Value)
		}
		return &ast.Literal{Kind: ast.LiteralFloat, Float: f}, nil
	case token.Ident:
		switch t.Value {
		case "true":
			return &ast.Literal{Kind: ast.LiteralBool, Bool: true}, nil
		case "false":
			return &ast.Literal{Kind: ast.LiteralBool}, nil
		}
		return &ast.Literal{Kind: ast.LiteralIdent, Str: t.Value}, nil
	}
	return nil, p.errorf(t, "expected literal, got %q", t.Value)
}

func (p *Parser) parseU32() (uint32, error) {
	t := p.next()
	if t == nil {
		return 0, p.errorf(nil, "")
	}
	if t.Type != token.Number {
		return 0, p.errorf(t, "expected %v, got %q", token.Number, t.Value)
	}
	val, err := strconv.ParseUint(t.Value, 0, 32)
	if err != nil {
		return 0, p.errorf(t, "invalid number: %s", t.Value)
	}
	return uint32(val), nil
}

func (p *Parser) parseInt() (int64, error) {
	t := p.next()
	if t == nil {
		return 0, p.errorf(nil, "")
	}
	if t.Type != token.Number {
		return 0, p.errorf(t, "expected %v, got %q", token.Number, t.Value)
	}
	val, err := parseIntText(t.Value)
	if err != nil {
		return 0, p.errorf(t, "invalid number: %s", t.Value)
	}
	return val, nil
}

func parseIntText(s string) (int64, error) {
	return strconv.ParseInt(s, 0, 64)
}

func unescape(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i+1 == len(s) {
			b.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case '0':
			b.WriteByte(0)
		default:
			b.WriteByte(s[i])
		}
	}
	return b.String()
}
