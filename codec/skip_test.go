package codec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wippyai/cbuf/errors"
)

func TestSkip_MatchesDecode(t *testing.T) {
	big := &wire{}
	big.u32(1500)
	for i := 0; i < 1500; i++ {
		big.str("s")
	}

	tests := []struct {
		name   string
		schema string
		buf    []byte
	}{
		{"message", msgSchema, msgWire()},
		{"static struct array", `struct In { u8 v; } struct Msg @naked { In b[2]; u16 t; }`,
			(&wire{}).preamble(0).u8(1).preamble(0).u8(2).u16(3).buf},
		{"compact strings", `struct Msg @naked { short_string s[3] @compact; string d; }`,
			(&wire{}).u32(2).short("a").short("b").str("tail").buf},
		{"elided strings", `struct Msg @naked { string many[]; }`, big.buf},
		{"enum array", `enum E { A, B } struct Msg { E e[2]; E f[]; }`,
			(&wire{}).preamble(0).s32(0).s32(1).u32(1).s32(1).buf},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calc := load(t, tt.schema)
			st := lookup(t, calc, "Msg")

			dc := NewCursor(tt.buf)
			require.NoError(t, NewDecoder(calc).Decode(st, dc, "", &Collector{}))

			sc := NewCursor(tt.buf)
			require.NoError(t, NewSkipper(calc).Skip(st, sc))

			assert.Equal(t, len(tt.buf), dc.Pos())
			assert.Equal(t, dc.Pos(), sc.Pos())
		})
	}
}

func TestSkip_Interleaved(t *testing.T) {
	calc := load(t, `struct Part { string s; u8 v[2] @compact; }`)
	st := lookup(t, calc, "Part")

	w := &wire{}
	w.preamble(0).str("first").u32(1).u8(1)
	w.preamble(0).str("second").u32(2).u8(2).u8(3)
	w.preamble(0).str("third").u32(0)

	cur := NewCursor(w.buf)
	require.NoError(t, NewSkipper(calc).Skip(st, cur))

	var c Collector
	require.NoError(t, NewDecoder(calc).Decode(st, cur, "", &c))
	assert.Equal(t, []Field{
		{Path: "s", Value: "second"},
		{Path: "num_v", Value: uint32(2)},
		{Path: "v", Value: []any{uint8(2), uint8(3)}},
	}, c.Fields)

	require.NoError(t, NewSkipper(calc).Skip(st, cur))
	assert.Zero(t, cur.Remaining())
}

func TestSkip_Errors(t *testing.T) {
	calc := load(t, `struct M @naked { u8 v[2] @compact; }`)
	cur := NewCursor((&wire{}).u32(5).u8(1).u8(2).buf)
	err := NewSkipper(calc).Skip(lookup(t, calc, "M"), cur)
	assert.True(t, errors.IsKind(err, errors.KindBoundsViolation), "got %v", err)
	assert.Equal(t, 4, cur.Pos())

	calc = load(t, `struct M @naked { string s[]; }`)
	err = NewSkipper(calc).Skip(lookup(t, calc, "M"), NewCursor((&wire{}).u32(2).str("a").buf))
	assert.True(t, errors.IsKind(err, errors.KindOutOfBounds), "got %v", err)
}

func TestSkipElement(t *testing.T) {
	calc := load(t, `struct M @naked { string a; u32 b; }`)
	st := lookup(t, calc, "M")
	cur := NewCursor((&wire{}).str("abc").u32(7).buf)
	require.NoError(t, NewSkipper(calc).SkipElement(st.Elements[0], cur))
	assert.Equal(t, 7, cur.Pos())
}
