package layout

import (
	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

// Bounded reports whether st has a statically known maximum wire size: no
// string and no dynamic array anywhere in its closure. Compact arrays and
// short strings keep a struct bounded.
func (c *Calculator) Bounded(st *ast.StructDef) (bool, error) {
	if st.Done.Has(ast.MemoBounded) {
		return st.Bounded, nil
	}
	if err := c.enter(st, ast.MemoBounded, errors.PhaseClassify); err != nil {
		return false, err
	}
	defer c.leave(st, ast.MemoBounded)

	bounded := true
	for _, elem := range st.Elements {
		if elem.Type == ast.TypeString || elem.Array == ast.ArrayDynamic {
			bounded = false
			break
		}
		if elem.Type != ast.TypeCustom {
			continue
		}
		inner, err := c.resolve(elem, errors.PhaseClassify)
		if err != nil {
			return false, err
		}
		if inner == nil {
			continue
		}
		ok, err := c.Bounded(inner)
		if err != nil {
			return false, err
		}
		if !ok {
			bounded = false
			break
		}
	}

	st.Bounded = bounded
	st.Done |= ast.MemoBounded
	return bounded, nil
}

// HasCompact reports whether st or any struct nested in it has a compact
// (bounded-variable) array. String fields never count.
func (c *Calculator) HasCompact(st *ast.StructDef) (bool, error) {
	if st.Done.Has(ast.MemoCompact) {
		return st.HasCompact, nil
	}
	if err := c.enter(st, ast.MemoCompact, errors.PhaseClassify); err != nil {
		return false, err
	}
	defer c.leave(st, ast.MemoCompact)

	found := false
	for _, elem := range st.Elements {
		if elem.Type == ast.TypeString {
			continue
		}
		if elem.Array == ast.ArrayCompact {
			found = true
			break
		}
		if elem.Type != ast.TypeCustom {
			continue
		}
		inner, err := c.resolve(elem, errors.PhaseClassify)
		if err != nil {
			return false, err
		}
		if inner == nil {
			continue
		}
		ok, err := c.HasCompact(inner)
		if err != nil {
			return false, err
		}
		if ok {
			found = true
			break
		}
	}

	st.HasCompact = found
	st.Done |= ast.MemoCompact
	return found, nil
}
