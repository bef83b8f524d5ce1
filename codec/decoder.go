package codec

import (
	"strconv"

	"go.uber.org/zap"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/layout"
)

// DecoderOption configures a Decoder.
type DecoderOption func(*Decoder)

// WithRenderLimit sets the array length above which items are advanced
// over and reported through Sink.Elided.
func WithRenderLimit(n int) DecoderOption {
	return func(d *Decoder) {
		if n >= 0 {
			d.limit = n
		}
	}
}

// WithHashCheck makes the decoder compare every preamble hash against the
// schema hash of the struct being decoded.
func WithHashCheck() DecoderOption {
	return func(d *Decoder) {
		d.checkHash = true
	}
}

// Decoder materializes wire buffers into a Sink.
type Decoder struct {
	engine
	limit     int
	checkHash bool
}

func NewDecoder(calc *layout.Calculator, opts ...DecoderOption) *Decoder {
	d := &Decoder{
		engine: engine{calc: calc, phase: errors.PhaseDecode},
		limit:  DefaultRenderLimit,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decode reads one wire instance of st from cur and emits every element to
// sink with prefix prepended to its path. After an error the cursor
// position and anything already emitted are meaningless. The struct is laid
// out first, which rejects cycles and unsupported array shapes.
func (d *Decoder) Decode(st *ast.StructDef, cur *Cursor, prefix string, sink Sink) error {
	if _, err := d.calc.StructSize(st); err != nil {
		return err
	}
	if err := d.decodeStruct(st, cur, prefix, sink); err != nil {
		Logger().Debug("decode failed",
			zap.String("struct", st.QualifiedName()),
			zap.Int("offset", cur.Pos()),
			zap.Error(err))
		return err
	}
	return nil
}

func (d *Decoder) decodeStruct(st *ast.StructDef, cur *Cursor, prefix string, sink Sink) error {
	if !st.Naked {
		pre, err := cur.preamble(d.phase, prefix)
		if err != nil {
			return err
		}
		if d.checkHash {
			if err := d.verify(st, pre, prefix); err != nil {
				return err
			}
		}
	}
	for _, elem := range st.Elements {
		if err := d.decodeElement(elem, cur, prefix, sink); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) verify(st *ast.StructDef, pre Preamble, path string) error {
	want, err := d.calc.Hash(st)
	if err != nil {
		return err
	}
	if pre.Hash != want {
		return errors.New(d.phase, errors.KindInvalidData).
			Struct(st.QualifiedName()).
			Path(path).
			Value(pre.Hash).
			Detail("preamble hash %X does not match schema hash %X", pre.Hash, want).
			Build()
	}
	return nil
}

func (d *Decoder) decodeElement(elem *ast.ElementDef, cur *Cursor, prefix string, sink Sink) error {
	f, err := d.resolve(elem)
	if err != nil {
		return err
	}
	path := prefix + elem.Name

	if !elem.IsArray() {
		if f.cat == catStruct {
			return d.decodeStruct(f.inner, cur, path+".", sink)
		}
		v, err := d.readItem(f, cur, path)
		if err != nil {
			return err
		}
		sink.Value(path, v)
		return nil
	}

	n, err := d.count(elem, cur, path)
	if err != nil {
		return err
	}
	if uint64(n) > uint64(d.limit) {
		if err := d.skipItems(f, n, cur, path); err != nil {
			return err
		}
		sink.Elided(path, n)
		return nil
	}
	if elem.Array.Counted() {
		sink.Count(prefix+"num_"+elem.Name, n)
	}

	if f.cat == catStruct {
		for i := uint32(0); i < n; i++ {
			item := path + "[" + strconv.FormatUint(uint64(i), 10) + "]."
			if err := d.decodeStruct(f.inner, cur, item, sink); err != nil {
				return err
			}
		}
		return nil
	}

	// every item takes at least one wire byte
	vs := make([]any, 0, min(uint64(n), uint64(cur.Remaining())))
	for i := uint32(0); i < n; i++ {
		v, err := d.readItem(f, cur, path)
		if err != nil {
			return err
		}
		vs = append(vs, v)
	}
	sink.Values(path, vs)
	return nil
}

func (e *engine) readItem(f field, cur *Cursor, path string) (any, error) {
	switch f.cat {
	case catString:
		return cur.readString(e.phase, path)
	case catShortString:
		return cur.readShortString(e.phase, path)
	}
	b, err := cur.take(f.ops.size, e.phase, path)
	if err != nil {
		return nil, err
	}
	return f.ops.read(b), nil
}
