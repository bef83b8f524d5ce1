package codec

import (
	"encoding/binary"
	"math"

	"github.com/wippyai/cbuf/ast"
)

var le = binary.LittleEndian

type numKind uint8

const (
	numSigned numKind = iota
	numUnsigned
	numFloat
)

// number carries a numeric value between a source and a destination type.
// Conversions out of it follow Go's conversion rules: integers wrap,
// floats truncate toward zero.
type number struct {
	i    int64
	u    uint64
	f    float64
	kind numKind
}

func signed(v int64) number    { return number{i: v, kind: numSigned} }
func unsigned(v uint64) number { return number{u: v, kind: numUnsigned} }
func float(v float64) number   { return number{f: v, kind: numFloat} }

func (n number) asInt() int64 {
	switch n.kind {
	case numUnsigned:
		return int64(n.u)
	case numFloat:
		return int64(n.f)
	}
	return n.i
}

func (n number) asUint() uint64 {
	switch n.kind {
	case numSigned:
		return uint64(n.i)
	case numFloat:
		if n.f >= math.MaxInt64 {
			return uint64(n.f)
		}
		return uint64(int64(n.f))
	}
	return n.u
}

func (n number) asFloat() float64 {
	switch n.kind {
	case numSigned:
		return float64(n.i)
	case numUnsigned:
		return float64(n.u)
	}
	return n.f
}

func (n number) truthy() bool {
	switch n.kind {
	case numSigned:
		return n.i != 0
	case numUnsigned:
		return n.u != 0
	}
	return n.f != 0
}

// scalarOps is the capability record of a fixed-width type: its byte
// width, a typed read, and numeric load/store used by conversion.
type scalarOps struct {
	read  func(b []byte) any
	load  func(b []byte) number
	store func(b []byte, n number)
	size  int
}

var scalarTable = [...]scalarOps{
	ast.TypeU8: {
		size:  1,
		read:  func(b []byte) any { return b[0] },
		load:  func(b []byte) number { return unsigned(uint64(b[0])) },
		store: func(b []byte, n number) { b[0] = uint8(n.asUint()) },
	},
	ast.TypeU16: {
		size:  2,
		read:  func(b []byte) any { return le.Uint16(b) },
		load:  func(b []byte) number { return unsigned(uint64(le.Uint16(b))) },
		store: func(b []byte, n number) { le.PutUint16(b, uint16(n.asUint())) },
	},
	ast.TypeU32: {
		size:  4,
		read:  func(b []byte) any { return le.Uint32(b) },
		load:  func(b []byte) number { return unsigned(uint64(le.Uint32(b))) },
		store: func(b []byte, n number) { le.PutUint32(b, uint32(n.asUint())) },
	},
	ast.TypeU64: {
		size:  8,
		read:  func(b []byte) any { return le.Uint64(b) },
		load:  func(b []byte) number { return unsigned(le.Uint64(b)) },
		store: func(b []byte, n number) { le.PutUint64(b, n.asUint()) },
	},
	ast.TypeS8: {
		size:  1,
		read:  func(b []byte) any { return int8(b[0]) },
		load:  func(b []byte) number { return signed(int64(int8(b[0]))) },
		store: func(b []byte, n number) { b[0] = uint8(int8(n.asInt())) },
	},
	ast.TypeS16: {
		size:  2,
		read:  func(b []byte) any { return int16(le.Uint16(b)) },
		load:  func(b []byte) number { return signed(int64(int16(le.Uint16(b)))) },
		store: func(b []byte, n number) { le.PutUint16(b, uint16(int16(n.asInt()))) },
	},
	ast.TypeS32: {
		size:  4,
		read:  func(b []byte) any { return int32(le.Uint32(b)) },
		load:  func(b []byte) number { return signed(int64(int32(le.Uint32(b)))) },
		store: func(b []byte, n number) { le.PutUint32(b, uint32(int32(n.asInt()))) },
	},
	ast.TypeS64: {
		size:  8,
		read:  func(b []byte) any { return int64(le.Uint64(b)) },
		load:  func(b []byte) number { return signed(int64(le.Uint64(b))) },
		store: func(b []byte, n number) { le.PutUint64(b, uint64(n.asInt())) },
	},
	ast.TypeF32: {
		size:  4,
		read:  func(b []byte) any { return math.Float32frombits(le.Uint32(b)) },
		load:  func(b []byte) number { return float(float64(math.Float32frombits(le.Uint32(b)))) },
		store: func(b []byte, n number) { le.PutUint32(b, math.Float32bits(float32(n.asFloat()))) },
	},
	ast.TypeF64: {
		size:  8,
		read:  func(b []byte) any { return math.Float64frombits(le.Uint64(b)) },
		load:  func(b []byte) number { return float(math.Float64frombits(le.Uint64(b))) },
		store: func(b []byte, n number) { le.PutUint64(b, math.Float64bits(n.asFloat())) },
	},
	ast.TypeBool: {
		size: 1,
		read: func(b []byte) any { return b[0] != 0 },
		load: func(b []byte) number { return unsigned(uint64(b[0])) },
		store: func(b []byte, n number) {
			b[0] = 0
			if n.truthy() {
				b[0] = 1
			}
		},
	},
}

// enumOps handles enum elements, which are always 4-byte integers.
var enumOps = &scalarTable[ast.TypeS32]

// opsFor returns the capability record of a fixed-width scalar type, or nil
// for strings and custom types.
func opsFor(t ast.ElementType) *scalarOps {
	if int(t) >= len(scalarTable) || scalarTable[t].size == 0 {
		return nil
	}
	return &scalarTable[t]
}
