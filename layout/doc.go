// Package layout computes schema-time properties of cbuf structs.
//
// # Native Layout
//
// Elements are packed tightly in declaration order with no padding:
//
//	Type                 Native size
//	────────────────────────────────────────────
//	bool, u8, s8         1
//	u16, s16             2
//	u32, s32, f32, enum  4
//	u64, s64, f64        8
//	short_string         16
//	string               StringHandleSize
//	T name[N]            N × size(T)
//	T name[N] @compact   4 + N × size(T)
//	T name[]             SliceHandleSize
//	struct               its own native size
//
// A non-naked struct starts with a 12-byte preamble (8-byte hash, 4-byte
// size).
//
// # Structural Hash
//
// Each struct is rendered to a canonical signature, one line per element
// giving array qualifier, type and field name. Nested structs are rendered
// as their own hash, never by name, and the struct's own name is not part of
// the signature, so renaming a struct or its namespace keeps its hash. The
// signature is folded with hash = hash*33 + byte starting from 5381.
//
// # Shape Classes
//
// Bounded is false when a string or a dynamic array appears anywhere in a
// struct's closure. HasCompact is true when a compact array does.
//
// All results are memoized on the ast.StructDef. A Calculator guards each
// pass with a visiting set so that a cyclic graph fails with an
// unsupported_shape error instead of recursing forever.
package layout
