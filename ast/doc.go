// Package ast defines the type graph of a cbuf schema document.
//
// A Graph holds namespaces; each namespace holds struct and enum
// definitions; each struct holds an ordered list of elements. The graph is
// built once by the schema parser and is read-only afterwards, except for
// the memoized layout, hash and classifier fields on StructDef and
// ElementDef, which the layout package fills in on first demand and never
// recomputes.
package ast
