package codec

import (
	"go.uber.org/zap"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/layout"
)

// FieldPair matches a source element with the destination element it is
// converted into. Nested holds the pairs for a struct-typed pair; nil means
// the nested structs are matched by name.
type FieldPair struct {
	Src    *ast.ElementDef
	Dst    *ast.ElementDef
	Nested []FieldPair
}

// MatchByName pairs the elements of src and dst that share a name.
func MatchByName(src, dst *ast.StructDef) []FieldPair {
	byName := make(map[string]*ast.ElementDef, len(dst.Elements))
	for _, elem := range dst.Elements {
		byName[elem.Name] = elem
	}
	var pairs []FieldPair
	for _, elem := range src.Elements {
		if d, ok := byName[elem.Name]; ok {
			pairs = append(pairs, FieldPair{Src: elem, Dst: d})
		}
	}
	return pairs
}

// TruncationKind says what a conversion dropped.
type TruncationKind uint8

const (
	// TruncatedBytes is a string cut to fit a short string slot.
	TruncatedBytes TruncationKind = iota
	// TruncatedItems is an array cut to fit a fixed-capacity destination.
	TruncatedItems
)

func (k TruncationKind) String() string {
	if k == TruncatedBytes {
		return "bytes"
	}
	return "items"
}

// Truncation records source content that did not fit its destination.
type Truncation struct {
	Path    string
	Kind    TruncationKind
	Dropped uint32
}

// Report is the per-call outcome of a conversion.
type Report struct {
	Truncations []Truncation
	Consumed    int
}

func (r *Report) truncate(path string, kind TruncationKind, dropped uint32) {
	r.Truncations = append(r.Truncations, Truncation{Path: path, Kind: kind, Dropped: dropped})
	Logger().Debug("conversion truncated",
		zap.String("path", path),
		zap.Stringer("kind", kind),
		zap.Uint32("dropped", dropped))
}

// Converter projects wire data of a source schema onto the native layout of
// a destination schema.
type Converter struct {
	src engine
	dst engine
}

func NewConverter(srcCalc, dstCalc *layout.Calculator) *Converter {
	return &Converter{
		src: engine{calc: srcCalc, phase: errors.PhaseConvert},
		dst: engine{calc: dstCalc, phase: errors.PhaseConvert},
	}
}

// Convert reads one wire instance of srcSt from cur and writes the paired
// fields into out, which holds a native dstSt. Source elements without a
// pair are consumed and discarded. A nil pairs slice matches by name.
func (c *Converter) Convert(srcSt *ast.StructDef, cur *Cursor, dstSt *ast.StructDef, out *Native, pairs []FieldPair) (*Report, error) {
	if _, err := c.dst.calc.StructSize(dstSt); err != nil {
		return nil, err
	}
	start := cur.Pos()
	report := &Report{}
	if err := c.convertStruct(srcSt, cur, dstSt, out, 0, pairs, dstSt.Name, report); err != nil {
		Logger().Debug("convert failed",
			zap.String("src", srcSt.QualifiedName()),
			zap.String("dst", dstSt.QualifiedName()),
			zap.Error(err))
		return nil, err
	}
	report.Consumed = cur.Pos() - start
	return report, nil
}

type boundPair struct {
	src    field
	dst    field
	nested []FieldPair
}

func (c *Converter) bind(pairs []FieldPair, path string) (map[*ast.ElementDef]boundPair, error) {
	bound := make(map[*ast.ElementDef]boundPair, len(pairs))
	for _, p := range pairs {
		sf, err := c.src.resolve(p.Src)
		if err != nil {
			return nil, err
		}
		df, err := c.dst.resolve(p.Dst)
		if err != nil {
			return nil, err
		}
		if err := compatible(sf, df, path+"."+p.Dst.Name); err != nil {
			return nil, err
		}
		bound[p.Src] = boundPair{src: sf, dst: df, nested: p.Nested}
	}
	return bound, nil
}

// compatible rejects pairs whose array-ness or value category differ.
// Numeric values convert into any numeric or enum type and either string
// kind converts into the other.
func compatible(src, dst field, path string) error {
	if src.elem.IsArray() != dst.elem.IsArray() {
		return errors.TypeMismatch(errors.PhaseConvert, []string{path},
			arrayText(src.elem), arrayText(dst.elem))
	}
	if textual(src.cat) == textual(dst.cat) && (src.cat == catStruct) == (dst.cat == catStruct) {
		return nil
	}
	return errors.TypeMismatch(errors.PhaseConvert, []string{path}, src.elem.TypeText(), dst.elem.TypeText())
}

func textual(c category) bool {
	return c == catString || c == catShortString
}

func arrayText(elem *ast.ElementDef) string {
	if elem.IsArray() {
		return elem.Array.String() + " array of " + elem.TypeText()
	}
	return elem.TypeText()
}

func (c *Converter) convertStruct(srcSt *ast.StructDef, cur *Cursor, dstSt *ast.StructDef, out *Native, base uint32, pairs []FieldPair, path string, report *Report) error {
	if pairs == nil {
		pairs = MatchByName(srcSt, dstSt)
	}
	bound, err := c.bind(pairs, path)
	if err != nil {
		return err
	}

	if !srcSt.Naked {
		if _, err := cur.preamble(errors.PhaseConvert, path); err != nil {
			return err
		}
	}
	if !dstSt.Naked {
		hash, err := c.dst.calc.Hash(dstSt)
		if err != nil {
			return err
		}
		if err := out.putPreamble(base, Preamble{Hash: hash, Size: dstSt.NativeSize}, path); err != nil {
			return err
		}
	}

	for _, elem := range srcSt.Elements {
		bp, ok := bound[elem]
		if !ok {
			if err := c.src.skipElement(elem, cur, path+"."+elem.Name); err != nil {
				return err
			}
			continue
		}
		if err := c.convertField(bp, cur, out, base, path+"."+bp.dst.elem.Name, report); err != nil {
			return err
		}
	}
	return nil
}

func (c *Converter) convertField(bp boundPair, cur *Cursor, out *Native, base uint32, path string, report *Report) error {
	dst := bp.dst.elem
	off := base + dst.NativeOffset

	n, err := c.src.count(bp.src.elem, cur, path)
	if err != nil {
		return err
	}

	if dst.Array == ast.ArrayDynamic {
		h, err := out.handle(off, layout.SliceHandleSize, path)
		if err != nil {
			return err
		}
		for i := uint32(0); i < n; i++ {
			if err := c.appendItem(bp, cur, h, path, report); err != nil {
				return err
			}
		}
		return nil
	}

	capacity, start := uint32(1), off
	switch dst.Array {
	case ast.ArrayStatic:
		capacity = dst.ArraySize
	case ast.ArrayCompact:
		slot, err := out.slot(off, 4, path)
		if err != nil {
			return err
		}
		le.PutUint32(slot, n)
		capacity, start = dst.ArraySize, off+4
	}

	written := min(n, capacity)
	for i := uint32(0); i < written; i++ {
		if err := c.storeItem(bp, cur, out, start+i*dst.TypeSize, path, report); err != nil {
			return err
		}
	}
	if n > written {
		if err := c.src.skipItems(bp.src, n-written, cur, path); err != nil {
			return err
		}
		report.truncate(path, TruncatedItems, n-written)
	}
	return nil
}

// storeItem converts one source item into the inline slot at off.
func (c *Converter) storeItem(bp boundPair, cur *Cursor, out *Native, off uint32, path string, report *Report) error {
	switch bp.dst.cat {
	case catStruct:
		return c.convertStruct(bp.src.inner, cur, bp.dst.inner, out, off, bp.nested, path, report)
	case catString, catShortString:
		s, err := c.src.readItem(bp.src, cur, path)
		if err != nil {
			return err
		}
		return storeText(s.(string), bp.dst.cat, out, off, path, report)
	}
	v, err := c.loadNumber(bp.src, cur, path)
	if err != nil {
		return err
	}
	slot, err := out.slot(off, uint32(bp.dst.ops.size), path)
	if err != nil {
		return err
	}
	bp.dst.ops.store(slot, v)
	return nil
}

func storeText(s string, cat category, out *Native, off uint32, path string, report *Report) error {
	if cat == catString {
		h, err := out.handle(off, layout.StringHandleSize, path)
		if err != nil {
			return err
		}
		h.Str = s
		return nil
	}
	slot, err := out.slot(off, ast.ShortStringSize, path)
	if err != nil {
		return err
	}
	copied := copy(slot, s)
	clear(slot[copied:])
	if len(s) > copied {
		report.truncate(path, TruncatedBytes, uint32(len(s)-copied))
	}
	return nil
}

// appendItem converts one source item onto the end of a dynamic array.
func (c *Converter) appendItem(bp boundPair, cur *Cursor, h *Handle, path string, report *Report) error {
	switch bp.dst.cat {
	case catStruct:
		size, err := c.dst.calc.StructSize(bp.dst.inner)
		if err != nil {
			return err
		}
		child := NewNative(size)
		if err := c.convertStruct(bp.src.inner, cur, bp.dst.inner, child, 0, bp.nested, path, report); err != nil {
			return err
		}
		h.Structs = append(h.Structs, child)
		return nil
	case catString, catShortString:
		v, err := c.src.readItem(bp.src, cur, path)
		if err != nil {
			return err
		}
		s := v.(string)
		if bp.dst.cat == catShortString && len(s) > ast.ShortStringSize {
			report.truncate(path, TruncatedBytes, uint32(len(s)-ast.ShortStringSize))
			s = s[:ast.ShortStringSize]
		}
		h.Strings = append(h.Strings, s)
		return nil
	}
	v, err := c.loadNumber(bp.src, cur, path)
	if err != nil {
		return err
	}
	size := bp.dst.ops.size
	h.ItemSize = size
	h.Items = append(h.Items, make([]byte, size)...)
	bp.dst.ops.store(h.Items[len(h.Items)-size:], v)
	return nil
}

func (c *Converter) loadNumber(f field, cur *Cursor, path string) (number, error) {
	b, err := cur.take(f.ops.size, errors.PhaseConvert, path)
	if err != nil {
		return number{}, err
	}
	return f.ops.load(b), nil
}
