package codec

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/layout"
	"github.com/wippyai/cbuf/schema"
)

func load(t *testing.T, src string) *layout.Calculator {
	t.Helper()
	g, err := schema.Parse(src)
	require.NoError(t, err)
	syms, err := schema.NewSymbolTable(g)
	require.NoError(t, err)
	return layout.NewCalculator(syms)
}

func lookup(t *testing.T, c *layout.Calculator, name string) *ast.StructDef {
	t.Helper()
	st, err := c.Symbols().LookupStruct(name)
	require.NoError(t, err)
	return st
}

// wire builds little-endian test buffers.
type wire struct {
	buf []byte
}

func (w *wire) u8(v uint8) *wire {
	w.buf = append(w.buf, v)
	return w
}

func (w *wire) u16(v uint16) *wire {
	w.buf = le.AppendUint16(w.buf, v)
	return w
}

func (w *wire) u32(v uint32) *wire {
	w.buf = le.AppendUint32(w.buf, v)
	return w
}

func (w *wire) u64(v uint64) *wire {
	w.buf = le.AppendUint64(w.buf, v)
	return w
}

func (w *wire) s32(v int32) *wire {
	return w.u32(uint32(v))
}

func (w *wire) f32(v float32) *wire {
	return w.u32(math.Float32bits(v))
}

func (w *wire) f64(v float64) *wire {
	return w.u64(math.Float64bits(v))
}

func (w *wire) str(s string) *wire {
	w.u32(uint32(len(s)))
	w.buf = append(w.buf, s...)
	return w
}

func (w *wire) short(s string) *wire {
	var slot [ast.ShortStringSize]byte
	copy(slot[:], s)
	w.buf = append(w.buf, slot[:]...)
	return w
}

// preamble appends a struct header. The payload length is not checked by
// any engine.
func (w *wire) preamble(hash uint64) *wire {
	return w.u64(hash).u32(0)
}
