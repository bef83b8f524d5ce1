package schema

import (
	"strings"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/schema/internal/parser"
	"github.com/wippyai/cbuf/schema/internal/token"
)

// Parse compiles schema text into a type graph.
func Parse(source string) (*ast.Graph, error) {
	tokens := token.Tokenize(source)
	for _, t := range tokens {
		if t.Type == token.Invalid {
			return nil, errors.ParseFailed(t.Line, t.Col, "unexpected character "+t.Value)
		}
	}
	return parser.New(tokens).Parse()
}

// SymbolTable resolves type references of a graph to their definitions.
type SymbolTable struct {
	structs map[string]*ast.StructDef
	enums   map[string]*ast.EnumDef
}

// NewSymbolTable indexes every definition of g. Two definitions sharing a
// qualified name are rejected.
func NewSymbolTable(g *ast.Graph) (*SymbolTable, error) {
	s := &SymbolTable{
		structs: make(map[string]*ast.StructDef),
		enums:   make(map[string]*ast.EnumDef),
	}
	for _, ns := range g.Namespaces() {
		for _, st := range ns.Structs {
			key := key(ns.Name, st.Name)
			if s.has(key) {
				return nil, duplicate(st.QualifiedName(), st.Loc)
			}
			s.structs[key] = st
		}
		for _, enm := range ns.Enums {
			key := key(ns.Name, enm.Name)
			if s.has(key) {
				return nil, duplicate(enm.QualifiedName(), enm.Loc)
			}
			s.enums[key] = enm
		}
	}
	return s, nil
}

func duplicate(name string, loc ast.Location) error {
	return errors.New(errors.PhaseResolve, errors.KindInvalidData).
		Type(name).
		Detail("duplicate definition at line %d:%d", loc.Line, loc.Column).
		Build()
}

func key(namespace, name string) string {
	if namespace == "" || namespace == ast.GlobalNamespace {
		return name
	}
	return namespace + "::" + name
}

func (s *SymbolTable) has(k string) bool {
	_, st := s.structs[k]
	_, en := s.enums[k]
	return st || en
}

// candidates lists the lookup keys for a custom element type, most
// specific first: explicit qualifier, enclosing namespace, global.
func candidates(elem *ast.ElementDef) []string {
	if elem.Namespace != "" {
		return []string{key(elem.Namespace, elem.CustomName)}
	}
	var keys []string
	if elem.Enclosing != nil && !elem.Enclosing.Space.IsGlobal() {
		keys = append(keys, key(elem.Enclosing.Space.Name, elem.CustomName))
	}
	return append(keys, elem.CustomName)
}

// FindStruct returns the struct an element refers to, or nil.
func (s *SymbolTable) FindStruct(elem *ast.ElementDef) *ast.StructDef {
	if elem.Type != ast.TypeCustom {
		return nil
	}
	for _, k := range candidates(elem) {
		if st, ok := s.structs[k]; ok {
			return st
		}
		if _, ok := s.enums[k]; ok {
			return nil
		}
	}
	return nil
}

// FindEnum returns the enum an element refers to, or nil.
func (s *SymbolTable) FindEnum(elem *ast.ElementDef) *ast.EnumDef {
	if elem.Type != ast.TypeCustom {
		return nil
	}
	for _, k := range candidates(elem) {
		if enm, ok := s.enums[k]; ok {
			return enm
		}
		if _, ok := s.structs[k]; ok {
			return nil
		}
	}
	return nil
}

// FindSymbol reports whether a custom element type resolves to anything.
func (s *SymbolTable) FindSymbol(elem *ast.ElementDef) bool {
	return s.FindStruct(elem) != nil || s.FindEnum(elem) != nil
}

// LookupStruct finds a struct by "ns::Name" or "Name".
func (s *SymbolTable) LookupStruct(name string) (*ast.StructDef, error) {
	namespace, local := Decompose(name)
	if st, ok := s.structs[key(namespace, local)]; ok {
		return st, nil
	}
	return nil, errors.NotFound(errors.PhaseResolve, "struct", name)
}

// LookupEnum finds an enum by "ns::Name" or "Name".
func (s *SymbolTable) LookupEnum(name string) (*ast.EnumDef, error) {
	namespace, local := Decompose(name)
	if enm, ok := s.enums[key(namespace, local)]; ok {
		return enm, nil
	}
	return nil, errors.NotFound(errors.PhaseResolve, "enum", name)
}

// Decompose splits a qualified name into namespace and local name. The
// namespace is empty for unqualified names.
func Decompose(name string) (namespace, local string) {
	ns, rest, found := strings.Cut(name, "::")
	if !found {
		return "", name
	}
	return ns, rest
}
