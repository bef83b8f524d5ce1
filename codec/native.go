package codec

import (
	"bytes"
	"strconv"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/layout"
)

// Native is a capacity-tracked destination laid out per a struct's native
// layout. Content that does not live inline (strings and dynamic arrays)
// is held in handles keyed by the offset of their slot.
type Native struct {
	handles map[uint32]*Handle
	data    []byte
}

// Handle is the out-of-line content behind a string or dynamic array slot.
type Handle struct {
	Str      string
	Strings  []string
	Items    []byte
	Structs  []*Native
	ItemSize int
}

// Len returns the number of fixed-width items in a dynamic numeric array.
func (h *Handle) Len() int {
	if h.ItemSize == 0 {
		return 0
	}
	return len(h.Items) / h.ItemSize
}

// Item returns the raw bytes of item i of a dynamic numeric array.
func (h *Handle) Item(i int) []byte {
	return h.Items[i*h.ItemSize : (i+1)*h.ItemSize]
}

func NewNative(size uint32) *Native {
	return &Native{
		data:    make([]byte, size),
		handles: make(map[uint32]*Handle),
	}
}

// Bytes returns the inline bytes.
func (n *Native) Bytes() []byte {
	return n.data
}

// Len returns the capacity in bytes.
func (n *Native) Len() int {
	return len(n.data)
}

// Slot returns the size bytes at off, failing with a bounds violation when
// the range does not fit.
func (n *Native) Slot(off, size uint32) ([]byte, error) {
	return n.slot(off, size, "")
}

func (n *Native) slot(off, size uint32, path string) ([]byte, error) {
	end := uint64(off) + uint64(size)
	if end > uint64(len(n.data)) {
		return nil, errors.Overflow(errors.PhaseConvert, []string{path}, int(off), int(size), len(n.data))
	}
	return n.data[off:end], nil
}

// Handle returns the handle stored at off, or nil.
func (n *Native) Handle(off uint32) *Handle {
	return n.handles[off]
}

func (n *Native) handle(off, size uint32, path string) (*Handle, error) {
	if _, err := n.slot(off, size, path); err != nil {
		return nil, err
	}
	h, ok := n.handles[off]
	if !ok {
		h = &Handle{}
		n.handles[off] = h
	}
	return h, nil
}

// U32 reads a little-endian count or integer slot.
func (n *Native) U32(off uint32) (uint32, error) {
	b, err := n.Slot(off, 4)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// Preamble reads the header of a non-naked struct stored at off.
func (n *Native) Preamble(off uint32) (Preamble, error) {
	b, err := n.Slot(off, ast.PreambleSize)
	if err != nil {
		return Preamble{}, err
	}
	return Preamble{Hash: le.Uint64(b), Size: le.Uint32(b[8:])}, nil
}

func (n *Native) putPreamble(off uint32, pre Preamble, path string) error {
	b, err := n.slot(off, ast.PreambleSize, path)
	if err != nil {
		return err
	}
	le.PutUint64(b, pre.Hash)
	le.PutUint32(b[8:], pre.Size)
	return nil
}

// Render emits the contents of a native instance of st to sink using the
// same paths and sink calls a Decoder uses for wire data.
func Render(calc *layout.Calculator, st *ast.StructDef, n *Native, prefix string, sink Sink) error {
	if _, err := calc.StructSize(st); err != nil {
		return err
	}
	r := renderer{engine{calc: calc, phase: errors.PhaseConvert}}
	return r.renderStruct(st, n, 0, prefix, sink)
}

type renderer struct {
	engine
}

func (r *renderer) renderStruct(st *ast.StructDef, n *Native, base uint32, prefix string, sink Sink) error {
	for _, elem := range st.Elements {
		if err := r.renderElement(elem, n, base+elem.NativeOffset, prefix, sink); err != nil {
			return err
		}
	}
	return nil
}

func (r *renderer) renderElement(elem *ast.ElementDef, n *Native, off uint32, prefix string, sink Sink) error {
	f, err := r.resolve(elem)
	if err != nil {
		return err
	}
	path := prefix + elem.Name

	if elem.Array == ast.ArrayDynamic {
		return r.renderDynamic(f, n.Handle(off), prefix, path, sink)
	}

	count, start := uint32(1), off
	switch elem.Array {
	case ast.ArrayStatic:
		count = elem.ArraySize
	case ast.ArrayCompact:
		c, err := n.U32(off)
		if err != nil {
			return err
		}
		sink.Count(prefix+"num_"+elem.Name, c)
		count, start = min(c, elem.ArraySize), off+4
	}

	if f.cat == catStruct {
		if !elem.IsArray() {
			return r.renderStruct(f.inner, n, start, path+".", sink)
		}
		for i := uint32(0); i < count; i++ {
			item := path + "[" + strconv.FormatUint(uint64(i), 10) + "]."
			if err := r.renderStruct(f.inner, n, start+i*elem.TypeSize, item, sink); err != nil {
				return err
			}
		}
		return nil
	}

	vs := make([]any, 0, count)
	for i := uint32(0); i < count; i++ {
		v, err := r.renderItem(f, n, start+i*elem.TypeSize)
		if err != nil {
			return err
		}
		vs = append(vs, v)
	}
	if !elem.IsArray() {
		sink.Value(path, vs[0])
		return nil
	}
	sink.Values(path, vs)
	return nil
}

func (r *renderer) renderItem(f field, n *Native, off uint32) (any, error) {
	switch f.cat {
	case catString:
		if h := n.Handle(off); h != nil {
			return h.Str, nil
		}
		return "", nil
	case catShortString:
		b, err := n.Slot(off, ast.ShortStringSize)
		if err != nil {
			return nil, err
		}
		if i := bytes.IndexByte(b, 0); i >= 0 {
			b = b[:i]
		}
		return string(b), nil
	}
	b, err := n.Slot(off, uint32(f.ops.size))
	if err != nil {
		return nil, err
	}
	return f.ops.read(b), nil
}

func (r *renderer) renderDynamic(f field, h *Handle, prefix, path string, sink Sink) error {
	if h == nil {
		h = &Handle{}
	}
	switch f.cat {
	case catStruct:
		sink.Count(prefix+"num_"+f.elem.Name, uint32(len(h.Structs)))
		for i, child := range h.Structs {
			item := path + "[" + strconv.Itoa(i) + "]."
			if err := r.renderStruct(f.inner, child, 0, item, sink); err != nil {
				return err
			}
		}
		return nil
	case catString, catShortString:
		sink.Count(prefix+"num_"+f.elem.Name, uint32(len(h.Strings)))
		vs := make([]any, len(h.Strings))
		for i, s := range h.Strings {
			vs[i] = s
		}
		sink.Values(path, vs)
		return nil
	}
	sink.Count(prefix+"num_"+f.elem.Name, uint32(h.Len()))
	vs := make([]any, h.Len())
	for i := range vs {
		vs[i] = f.ops.read(h.Item(i))
	}
	sink.Values(path, vs)
	return nil
}
