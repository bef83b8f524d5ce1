// Package cbuf parses cbuf schemas and reads, skips and converts messages
// encoded with them.
//
// A schema declares structs and enums, optionally grouped in namespaces.
// Each struct has a native layout (tightly packed, no padding) and a
// structural hash that is written into the preamble of every non-naked
// wire instance.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct responsibilities:
//
//	cbuf/               Root package with the Parser facade
//	├── ast/            Type graph: namespaces, structs, enums, elements
//	├── schema/         Schema text parser and symbol table
//	├── layout/         Native layout, structural hash, shape classifiers
//	├── codec/          Decoder, Skipper, Converter over wire buffers
//	├── errors/         Structured error types for debugging
//	└── cmd/cbufdump/   Command line dump and schema browser
//
// # Quick Start
//
//	p := cbuf.New()
//	err := p.ParseMetadata(`
//	    namespace geo {
//	        struct Point { f32 x; f32 y; }
//	    }`)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	size, _ := p.StructSize("geo::Point") // 20: 12 byte preamble + 2 floats
//	n, err := p.Print("geo::Point", buf, codec.NewTextSink(os.Stdout))
//
// # Schema Language
//
//	struct Name [@naked] { elements }
//	enum Name { A, B = 5, C }
//	namespace ns { ... }
//
// Elements are "type name [array] [= default];". Arrays are written
// name[N] (static), name[N] @compact (at most N, count on the wire) or
// name[] (dynamic, count on the wire).
//
// # Conversion
//
// Convert reads a message encoded with one schema and projects it onto the
// native layout of a struct from another schema, pairing fields by name:
//
//	native, report, err := src.Convert("Msg", buf, dst, "Msg")
//	for _, t := range report.Truncations {
//	    log.Printf("%s: dropped %d %s", t.Path, t.Dropped, t.Kind)
//	}
//
// # Error Handling
//
// All errors are *errors.Error values carrying the phase, kind and element
// path. Use errors.IsKind to test for a kind:
//
//	if errors.IsKind(err, errors.KindBoundsViolation) { ... }
package cbuf
