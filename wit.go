package cbuf

import (
	"strings"
	"unicode"

	"go.bytecodealliance.org/wit"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

// WITTypes exports the schema as named WIT type definitions: enums become
// enums, structs become records and every array kind becomes a list.
// Definitions are ordered so that each one follows the types it uses.
func (p *Parser) WITTypes() ([]*wit.TypeDef, error) {
	if err := p.loaded(); err != nil {
		return nil, err
	}
	x := &witExporter{
		p:    p,
		defs: make(map[any]*wit.TypeDef),
	}
	for _, ns := range p.graph.Namespaces() {
		for _, enm := range ns.Enums {
			x.enum(enm)
		}
	}
	for _, st := range p.graph.Structs() {
		if _, err := x.record(st); err != nil {
			return nil, err
		}
	}
	return x.order, nil
}

type witExporter struct {
	p     *Parser
	defs  map[any]*wit.TypeDef
	order []*wit.TypeDef
}

func (x *witExporter) enum(enm *ast.EnumDef) *wit.TypeDef {
	if td, ok := x.defs[enm]; ok {
		return td
	}
	cases := make([]wit.EnumCase, len(enm.Items))
	for i, item := range enm.Items {
		cases[i] = wit.EnumCase{Name: witName(item.Name)}
	}
	name := witName(enm.QualifiedName())
	td := &wit.TypeDef{Name: &name, Kind: &wit.Enum{Cases: cases}}
	x.defs[enm] = td
	x.order = append(x.order, td)
	return td
}

func (x *witExporter) record(st *ast.StructDef) (*wit.TypeDef, error) {
	if td, ok := x.defs[st]; ok {
		return td, nil
	}
	fields := make([]wit.Field, 0, len(st.Elements))
	for _, elem := range st.Elements {
		t, err := x.elementType(elem)
		if err != nil {
			return nil, err
		}
		if elem.IsArray() {
			t = &wit.TypeDef{Kind: &wit.List{Type: t}}
		}
		fields = append(fields, wit.Field{Name: witName(elem.Name), Type: t})
	}
	name := witName(st.QualifiedName())
	td := &wit.TypeDef{Name: &name, Kind: &wit.Record{Fields: fields}}
	x.defs[st] = td
	x.order = append(x.order, td)
	return td, nil
}

func (x *witExporter) elementType(elem *ast.ElementDef) (wit.Type, error) {
	switch elem.Type {
	case ast.TypeU8:
		return wit.U8{}, nil
	case ast.TypeU16:
		return wit.U16{}, nil
	case ast.TypeU32:
		return wit.U32{}, nil
	case ast.TypeU64:
		return wit.U64{}, nil
	case ast.TypeS8:
		return wit.S8{}, nil
	case ast.TypeS16:
		return wit.S16{}, nil
	case ast.TypeS32:
		return wit.S32{}, nil
	case ast.TypeS64:
		return wit.S64{}, nil
	case ast.TypeF32:
		return wit.F32{}, nil
	case ast.TypeF64:
		return wit.F64{}, nil
	case ast.TypeBool:
		return wit.Bool{}, nil
	case ast.TypeString, ast.TypeShortString:
		return wit.String{}, nil
	}
	if enm := x.p.syms.FindEnum(elem); enm != nil {
		return x.enum(enm), nil
	}
	if st := x.p.syms.FindStruct(elem); st != nil {
		return x.record(st)
	}
	return nil, errors.Unresolved(errors.PhaseResolve, elem.Enclosing.QualifiedName(), elem.Name, elem.TypeText())
}

// witName converts a schema identifier to a WIT kebab-case identifier.
// Namespace separators and underscores become dashes.
func witName(s string) string {
	s = strings.ReplaceAll(s, "::", "-")
	var result strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case r == '_' || r == '-':
			if result.Len() > 0 && !strings.HasSuffix(result.String(), "-") {
				result.WriteByte('-')
			}
			prevLower = false
		case unicode.IsUpper(r):
			if prevLower {
				result.WriteByte('-')
			}
			result.WriteRune(unicode.ToLower(r))
			prevLower = false
		default:
			result.WriteRune(r)
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		}
	}
	return strings.TrimSuffix(result.String(), "-")
}

// WITText renders WIT type definitions as WIT source, one declaration per
// paragraph. Short declarations fit on a single line.
func WITText(defs []*wit.TypeDef) string {
	var b strings.Builder
	for i, td := range defs {
		if i > 0 {
			b.WriteByte('\n')
		}
		name := ""
		if td.Name != nil {
			name = *td.Name
		}
		b.WriteString(td.Kind.WIT(td, name))
		b.WriteByte('\n')
	}
	return b.String()
}
