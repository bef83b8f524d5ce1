package cbuf

import (
	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/schema"
)

// StructInfo describes one struct of a parsed schema.
type StructInfo struct {
	Name   string
	Fields []FieldInfo
	Hash   uint64
	Line   int
	Column int
	Size   uint32
	Naked  bool
	// Simple reports a statically known maximum wire size.
	Simple     bool
	HasCompact bool
}

// FieldInfo describes one element of a struct.
type FieldInfo struct {
	// Default is the schema default converted to the field's value type,
	// or nil when there is none.
	Default any
	Name    string
	Type    string
	// UpperBound is the byte capacity of a short string.
	UpperBound uint32
	// ArrayLength is the count of a static array.
	ArrayLength uint32
	// ArrayUpperBound is the maximum count of a bounded-variable array.
	ArrayUpperBound uint32
	IsArray         bool
	IsComplex       bool
}

// Metadata describes every struct of the schema, global namespace first.
// Hashes and classifiers are computed on demand.
func (p *Parser) Metadata() ([]StructInfo, error) {
	if err := p.loaded(); err != nil {
		return nil, err
	}
	if err := p.ComputeHashes(); err != nil {
		return nil, err
	}
	var out []StructInfo
	for _, st := range p.graph.Structs() {
		simple, err := p.calc.Bounded(st)
		if err != nil {
			return nil, err
		}
		compact, err := p.calc.HasCompact(st)
		if err != nil {
			return nil, err
		}
		info := StructInfo{
			Name:       st.QualifiedName(),
			Hash:       st.HashValue,
			Line:       st.Loc.Line,
			Column:     st.Loc.Column,
			Size:       st.NativeSize,
			Naked:      st.Naked,
			Simple:     simple,
			HasCompact: compact,
		}
		for _, elem := range st.Elements {
			info.Fields = append(info.Fields, fieldInfo(p.syms, elem))
		}
		out = append(out, info)
	}
	return out, nil
}

func fieldInfo(syms *schema.SymbolTable, elem *ast.ElementDef) FieldInfo {
	fi := FieldInfo{
		Name:      elem.Name,
		Type:      TypeName(syms, elem),
		Default:   defaultValue(elem),
		IsArray:   elem.IsArray(),
		IsComplex: IsComplex(syms, elem),
	}
	if elem.Type == ast.TypeShortString {
		fi.UpperBound = ast.ShortStringSize
	}
	switch elem.Array {
	case ast.ArrayStatic:
		fi.ArrayLength = elem.ArraySize
	case ast.ArrayCompact:
		fi.ArrayUpperBound = elem.ArraySize
	}
	return fi
}

var typeNames = [...]string{
	ast.TypeU8:          "uint8",
	ast.TypeU16:         "uint16",
	ast.TypeU32:         "uint32",
	ast.TypeU64:         "uint64",
	ast.TypeS8:          "int8",
	ast.TypeS16:         "int16",
	ast.TypeS32:         "int32",
	ast.TypeS64:         "int64",
	ast.TypeF32:         "float32",
	ast.TypeF64:         "float64",
	ast.TypeString:      "string",
	ast.TypeShortString: "string",
	ast.TypeBool:        "bool",
}

// TypeName returns the language-neutral type name of an element: uint8 to
// float64, string for both string kinds, int32 for enums and the qualified
// name for structs.
func TypeName(syms *schema.SymbolTable, elem *ast.ElementDef) string {
	if elem.Type != ast.TypeCustom {
		return typeNames[elem.Type]
	}
	if syms.FindEnum(elem) != nil {
		return "int32"
	}
	if st := syms.FindStruct(elem); st != nil {
		return st.QualifiedName()
	}
	return elem.TypeText()
}

// IsComplex reports whether an element refers to a struct.
func IsComplex(syms *schema.SymbolTable, elem *ast.ElementDef) bool {
	return elem.Type == ast.TypeCustom && syms.FindEnum(elem) == nil
}

func defaultValue(elem *ast.ElementDef) any {
	lit := elem.Init
	if lit == nil {
		return nil
	}
	switch elem.Type {
	case ast.TypeU8, ast.TypeU16, ast.TypeU32:
		return uint32(lit.Int)
	case ast.TypeS8, ast.TypeS16, ast.TypeS32:
		return int32(lit.Int)
	case ast.TypeU64, ast.TypeS64:
		return lit.Int
	case ast.TypeF32, ast.TypeF64:
		return lit.Float
	case ast.TypeString, ast.TypeShortString:
		return lit.Str
	case ast.TypeBool:
		return lit.Bool
	}
	return nil
}
