// Package schema compiles cbuf schema text into an ast.Graph and resolves
// type references within it.
//
// Basic usage:
//
//	g, err := schema.Parse(`
//	namespace geo {
//		struct Point { f32 x; f32 y; }
//	}`)
//	syms, err := schema.NewSymbolTable(g)
//	pt, err := syms.LookupStruct("geo::Point")
//
// Supported syntax:
//   - struct, enum and namespace declarations; reopened namespaces merge
//   - scalar types u8..u64, s8..s64, f32, f64, bool, string, short_string
//   - custom types, optionally qualified as ns::Type
//   - arrays: name[N] (static), name[N] @compact (bounded), name[] (dynamic)
//   - @naked structs, which carry no preamble
//   - default values: numbers, strings, true/false, enum item names
//   - comments: // line and /* block */
//
// A custom type without a qualifier resolves in the enclosing struct's
// namespace first, then in the global namespace.
package schema
