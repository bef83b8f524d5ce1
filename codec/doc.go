// Package codec reads, skips and converts cbuf wire buffers.
//
// All engines walk an ast.StructDef and a Cursor together. The Cursor
// guards every read against the bytes remaining, so a truncated or lying
// buffer fails with an out_of_bounds error instead of reading past its end.
//
// # Wire Format
//
// All multi-byte integers are little-endian:
//
//	Element                 Encoding
//	─────────────────────────────────────────────────────────
//	non-naked struct        [8B hash][4B payload length][elements]
//	naked struct            [elements]
//	scalar                  raw bytes of the declared width
//	short_string            16 bytes, NUL padded
//	string                  [4B length][bytes]
//	static array            N items, N from the schema
//	compact/dynamic array   [4B count][count items]
//	enum                    4-byte integer
//
// # Engines
//
//	Decoder    - emits every element to a Sink (TextSink, Collector)
//	Skipper    - advances past a struct consuming exactly what Decoder does
//	Converter  - projects wire data onto a destination's native layout
//
// Arrays longer than the render limit (DefaultRenderLimit) are advanced
// over and reported through Sink.Elided.
//
// # Conversion
//
// Converter writes into a Native, a capacity-tracked buffer laid out per
// the destination struct's native layout. Strings and dynamic arrays live
// in handles keyed by their slot offset. A write that does not fit fails
// with a bounds_violation error. Content dropped to fit a fixed-capacity
// destination is listed in the returned Report.
//
// # WASM Memory
//
// Buffers living in a guest's linear memory are read through the Memory
// interface; WazeroMemory adapts a wazero module memory:
//
//	mem := codec.NewWazeroMemory(mod.Memory())
//	cur, err := codec.CursorFromMemory(mem, ptr, length)
package codec
