package layout

import (
	"math"

	"go.uber.org/zap"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/schema"
)

// Native handle slot sizes for content that does not live inline: a Go
// string header and a Go slice header on 64-bit targets.
const (
	StringHandleSize = 16
	SliceHandleSize  = 24
)

// Calculator computes native layout, structural hashes and shape classes
// for the structs of one symbol table. Results are memoized on the
// StructDef itself, so every property is computed at most once per struct.
type Calculator struct {
	syms     *schema.SymbolTable
	visiting map[visitKey]struct{}
	visits   map[ast.Memo]int
}

type visitKey struct {
	st   *ast.StructDef
	pass ast.Memo
}

func NewCalculator(syms *schema.SymbolTable) *Calculator {
	return &Calculator{
		syms:     syms,
		visiting: make(map[visitKey]struct{}),
		visits:   make(map[ast.Memo]int),
	}
}

// Symbols returns the symbol table the calculator resolves against.
func (c *Calculator) Symbols() *schema.SymbolTable {
	return c.syms
}

// Visits reports how many struct traversals a pass has performed.
func (c *Calculator) Visits(pass ast.Memo) int {
	return c.visits[pass]
}

// enter marks st as in progress for pass. Reentering a struct that is still
// in progress means the type graph is cyclic.
func (c *Calculator) enter(st *ast.StructDef, pass ast.Memo, phase errors.Phase) error {
	k := visitKey{st, pass}
	if _, ok := c.visiting[k]; ok {
		return errors.UnsupportedShape(phase, st.QualifiedName(), "cyclic struct composition")
	}
	c.visiting[k] = struct{}{}
	c.visits[pass]++
	return nil
}

func (c *Calculator) leave(st *ast.StructDef, pass ast.Memo) {
	delete(c.visiting, visitKey{st, pass})
}

// resolve returns the struct a custom element refers to, or nil for enums.
func (c *Calculator) resolve(elem *ast.ElementDef, phase errors.Phase) (*ast.StructDef, error) {
	if c.syms.FindEnum(elem) != nil {
		return nil, nil
	}
	inner := c.syms.FindStruct(elem)
	if inner == nil {
		return nil, errors.Unresolved(phase, elem.Enclosing.QualifiedName(), elem.Name, elem.TypeText())
	}
	return inner, nil
}

// ScalarSize returns the fixed byte width of a non-custom element type.
func ScalarSize(t ast.ElementType) uint32 {
	switch t {
	case ast.TypeBool, ast.TypeU8, ast.TypeS8:
		return 1
	case ast.TypeU16, ast.TypeS16:
		return 2
	case ast.TypeF32, ast.TypeU32, ast.TypeS32:
		return 4
	case ast.TypeF64, ast.TypeU64, ast.TypeS64:
		return 8
	case ast.TypeShortString:
		return ast.ShortStringSize
	case ast.TypeString:
		return StringHandleSize
	}
	return 0
}

// elementTypeSize returns the native size of one item of elem, ignoring
// any array qualifier.
func (c *Calculator) elementTypeSize(elem *ast.ElementDef) (uint32, error) {
	if elem.Type != ast.TypeCustom {
		return ScalarSize(elem.Type), nil
	}
	inner, err := c.resolve(elem, errors.PhaseLayout)
	if err != nil {
		return 0, err
	}
	if inner == nil {
		return 4, nil
	}
	return c.StructSize(inner)
}

// StructSize returns the tightly packed native size of st, computing the
// size and offset of each of its elements on first call.
func (c *Calculator) StructSize(st *ast.StructDef) (uint32, error) {
	if st.Done.Has(ast.MemoSize) {
		return st.NativeSize, nil
	}
	if err := c.enter(st, ast.MemoSize, errors.PhaseLayout); err != nil {
		return 0, err
	}
	defer c.leave(st, ast.MemoSize)

	var size uint32
	if !st.Naked {
		size = ast.PreambleSize
	}

	for _, elem := range st.Elements {
		if elem.ArrayDims > 1 {
			return 0, errors.UnsupportedShape(errors.PhaseLayout, st.QualifiedName(),
				"multidimensional array at element "+elem.Name)
		}
		itemSize, err := c.elementTypeSize(elem)
		if err != nil {
			return 0, err
		}

		elemSize, typeSize := itemSize, itemSize
		switch elem.Array {
		case ast.ArrayDynamic:
			elemSize, typeSize = SliceHandleSize, 0
		case ast.ArrayStatic, ast.ArrayCompact:
			total, ok := SafeMulU32(elem.ArraySize, itemSize)
			if elem.Array == ast.ArrayCompact {
				total, ok = addChecked(total, 4, ok)
			}
			if !ok {
				return 0, overflow(st, elem)
			}
			elemSize = total
		}

		elem.NativeOffset = size
		elem.NativeSize = elemSize
		elem.TypeSize = typeSize
		var ok bool
		if size, ok = SafeAddU32(size, elemSize); !ok {
			return 0, overflow(st, elem)
		}
	}

	st.NativeSize = size
	st.Done |= ast.MemoSize
	Logger().Debug("computed native size",
		zap.String("struct", st.QualifiedName()),
		zap.Uint32("size", size))
	return size, nil
}

func overflow(st *ast.StructDef, elem *ast.ElementDef) error {
	return errors.UnsupportedShape(errors.PhaseLayout, st.QualifiedName(),
		"native size overflows at element "+elem.Name)
}

func addChecked(a, b uint32, ok bool) (uint32, bool) {
	if !ok {
		return 0, false
	}
	return SafeAddU32(a, b)
}

func SafeMulU32(a, b uint32) (uint32, bool) {
	if b != 0 && a > math.MaxUint32/b {
		return 0, false
	}
	return a * b, true
}

func SafeAddU32(a, b uint32) (uint32, bool) {
	if a > math.MaxUint32-b {
		return 0, false
	}
	return a + b, true
}

// ComputeAll runs the requested passes over every struct of g. The first
// failure stops the whole pass and is reported against the struct being
// computed.
func (c *Calculator) ComputeAll(g *ast.Graph, passes ast.Memo) error {
	for _, st := range g.Structs() {
		if passes.Has(ast.MemoSize) {
			if _, err := c.StructSize(st); err != nil {
				return errors.Schema(errors.PhaseLayout, st.QualifiedName(), err)
			}
		}
		if passes.Has(ast.MemoHash) {
			if _, err := c.Hash(st); err != nil {
				return errors.Schema(errors.PhaseHash, st.QualifiedName(), err)
			}
		}
		if passes.Has(ast.MemoBounded) {
			if _, err := c.Bounded(st); err != nil {
				return errors.Schema(errors.PhaseClassify, st.QualifiedName(), err)
			}
		}
		if passes.Has(ast.MemoCompact) {
			if _, err := c.HasCompact(st); err != nil {
				return errors.Schema(errors.PhaseClassify, st.QualifiedName(), err)
			}
		}
	}
	return nil
}
