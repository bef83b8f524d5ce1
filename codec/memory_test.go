package codec

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tetratelabs/wazero"

	"github.com/wippyai/cbuf/errors"
)

// memoryModule is a module exporting one page of memory as "memory".
var memoryModule = []byte{
	0x00, 0x61, 0x73, 0x6d, 0x01, 0x00, 0x00, 0x00,
	0x05, 0x03, 0x01, 0x00, 0x01,
	0x07, 0x0a, 0x01, 0x06, 'm', 'e', 'm', 'o', 'r', 'y', 0x02, 0x00,
}

func guestMemory(t *testing.T) *WazeroMemory {
	t.Helper()
	ctx := context.Background()
	rt := wazero.NewRuntime(ctx)
	t.Cleanup(func() { rt.Close(ctx) })

	mod, err := rt.Instantiate(ctx, memoryModule)
	require.NoError(t, err)
	require.NotNil(t, mod.Memory())
	return NewWazeroMemory(mod.Memory())
}

func TestWazeroMemory_Decode(t *testing.T) {
	mem := guestMemory(t)
	assert.Equal(t, uint32(65536), mem.Size())

	calc := load(t, `struct P { f32 x; f32 y; string label; }`)
	buf := (&wire{}).preamble(0).f32(1).f32(2).str("pt").buf
	require.NoError(t, mem.Write(128, buf))

	cur, err := CursorFromMemory(mem, 128, uint32(len(buf)))
	require.NoError(t, err)

	var c Collector
	require.NoError(t, NewDecoder(calc).Decode(lookup(t, calc, "P"), cur, "", &c))
	assert.Equal(t, []Field{
		{Path: "x", Value: float32(1)},
		{Path: "y", Value: float32(2)},
		{Path: "label", Value: "pt"},
	}, c.Fields)
}

func TestWazeroMemory_WriteNative(t *testing.T) {
	mem := guestMemory(t)
	srcCalc := load(t, `struct S @naked { u8 a; u8 b; }`)
	dstCalc := load(t, `struct D @naked { u16 b; u16 a; }`)

	n := NewNative(4)
	_, err := NewConverter(srcCalc, dstCalc).Convert(lookup(t, srcCalc, "S"), NewCursor([]byte{1, 2}),
		lookup(t, dstCalc, "D"), n, nil)
	require.NoError(t, err)
	require.NoError(t, WriteNative(mem, 16, n))

	got, err := mem.Read(16, 4)
	require.NoError(t, err)
	assert.Equal(t, []byte{2, 0, 1, 0}, got)
}

func TestWazeroMemory_OutOfBounds(t *testing.T) {
	mem := guestMemory(t)

	_, err := CursorFromMemory(mem, 65530, 16)
	assert.True(t, errors.IsKind(err, errors.KindOutOfBounds), "got %v", err)

	err = WriteNative(mem, 65535, NewNative(8))
	assert.True(t, errors.IsKind(err, errors.KindBoundsViolation), "got %v", err)
}
