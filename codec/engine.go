package codec

import (
	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/layout"
)

// DefaultRenderLimit is the array length above which decoding advances over
// the items without rendering them.
const DefaultRenderLimit = 1000

type category uint8

const (
	catNumeric category = iota
	catString
	catShortString
	catStruct
)

func (c category) String() string {
	switch c {
	case catNumeric:
		return "numeric"
	case catString:
		return "string"
	case catShortString:
		return "short_string"
	}
	return "struct"
}

// field is an element with its type resolved against a symbol table.
type field struct {
	elem  *ast.ElementDef
	ops   *scalarOps
	inner *ast.StructDef
	cat   category
}

// wireSize is the fixed wire width of one item, or 0 when items vary.
func (f field) wireSize() int {
	switch f.cat {
	case catNumeric:
		return f.ops.size
	case catShortString:
		return ast.ShortStringSize
	}
	return 0
}

// engine holds what the decode, skip and convert traversals share.
type engine struct {
	calc  *layout.Calculator
	phase errors.Phase
}

func (e *engine) resolve(elem *ast.ElementDef) (field, error) {
	f := field{elem: elem}
	switch elem.Type {
	case ast.TypeString:
		f.cat = catString
	case ast.TypeShortString:
		f.cat = catShortString
	case ast.TypeCustom:
		syms := e.calc.Symbols()
		if syms.FindEnum(elem) != nil {
			f.cat, f.ops = catNumeric, enumOps
			break
		}
		inner := syms.FindStruct(elem)
		if inner == nil {
			return f, errors.Unresolved(e.phase, elem.Enclosing.QualifiedName(), elem.Name, elem.TypeText())
		}
		f.cat, f.inner = catStruct, inner
	default:
		f.cat, f.ops = catNumeric, opsFor(elem.Type)
	}
	return f, nil
}

// count returns the number of items of elem on the wire, reading the count
// prefix of counted arrays. A compact count above its maximum fails before
// any item is read.
func (e *engine) count(elem *ast.ElementDef, cur *Cursor, path string) (uint32, error) {
	switch elem.Array {
	case ast.ArrayNone:
		return 1, nil
	case ast.ArrayStatic:
		return elem.ArraySize, nil
	}
	n, err := cur.u32(e.phase, path)
	if err != nil {
		return 0, err
	}
	if elem.Array == ast.ArrayCompact && n > elem.ArraySize {
		return 0, errors.BoundsViolation(e.phase, []string{path}, n, elem.ArraySize)
	}
	return n, nil
}

// skipItems advances cur over n items of f without rendering them.
func (e *engine) skipItems(f field, n uint32, cur *Cursor, path string) error {
	if size := f.wireSize(); size > 0 {
		return cur.skip(uint64(size)*uint64(n), e.phase, path)
	}
	for i := uint32(0); i < n; i++ {
		switch f.cat {
		case catString:
			l, err := cur.u32(e.phase, path)
			if err != nil {
				return err
			}
			if err := cur.skip(uint64(l), e.phase, path); err != nil {
				return err
			}
		case catStruct:
			if err := e.skipStruct(f.inner, cur, path); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) skipStruct(st *ast.StructDef, cur *Cursor, path string) error {
	if !st.Naked {
		if err := cur.skip(ast.PreambleSize, e.phase, path); err != nil {
			return err
		}
	}
	for _, elem := range st.Elements {
		if err := e.skipElement(elem, cur, path+"."+elem.Name); err != nil {
			return err
		}
	}
	return nil
}

func (e *engine) skipElement(elem *ast.ElementDef, cur *Cursor, path string) error {
	f, err := e.resolve(elem)
	if err != nil {
		return err
	}
	n, err := e.count(elem, cur, path)
	if err != nil {
		return err
	}
	return e.skipItems(f, n, cur, path)
}

// Skipper advances a cursor past whole structs. Its consumption matches
// the Decoder's for every element kind.
type Skipper struct {
	engine
}

func NewSkipper(calc *layout.Calculator) *Skipper {
	return &Skipper{engine{calc: calc, phase: errors.PhaseSkip}}
}

// Skip advances cur past one wire instance of st.
func (s *Skipper) Skip(st *ast.StructDef, cur *Cursor) error {
	if _, err := s.calc.StructSize(st); err != nil {
		return err
	}
	return s.skipStruct(st, cur, st.QualifiedName())
}

// SkipElement advances cur past one element of a struct.
func (s *Skipper) SkipElement(elem *ast.ElementDef, cur *Cursor) error {
	if elem.Enclosing != nil {
		if _, err := s.calc.StructSize(elem.Enclosing); err != nil {
			return err
		}
	}
	return s.skipElement(elem, cur, elem.Name)
}
