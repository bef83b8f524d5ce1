package ast

// GlobalNamespace is the name of the namespace holding top-level definitions.
const GlobalNamespace = "__global_namespace"

// PreambleSize is the size of the hash + payload length header in front of
// every non-naked struct, both on the wire and in the native layout.
const PreambleSize = 12

// ShortStringSize is the fixed slot size of a short string.
const ShortStringSize = 16

// ElementType is the scalar type tag of an element.
type ElementType uint8

const (
	TypeU8 ElementType = iota
	TypeU16
	TypeU32
	TypeU64
	TypeS8
	TypeS16
	TypeS32
	TypeS64
	TypeF32
	TypeF64
	TypeString
	TypeShortString
	TypeBool
	TypeCustom
)

var typeNames = [...]string{
	TypeU8:          "u8",
	TypeU16:         "u16",
	TypeU32:         "u32",
	TypeU64:         "u64",
	TypeS8:          "s8",
	TypeS16:         "s16",
	TypeS32:         "s32",
	TypeS64:         "s64",
	TypeF32:         "f32",
	TypeF64:         "f64",
	TypeString:      "string",
	TypeShortString: "short_string",
	TypeBool:        "bool",
	TypeCustom:      "custom",
}

func (t ElementType) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return "unknown"
}

// IsNumeric reports whether values of t are integers, floats or booleans.
func (t ElementType) IsNumeric() bool {
	return t <= TypeF64 || t == TypeBool
}

// IsText reports whether t is one of the two string kinds.
func (t ElementType) IsText() bool {
	return t == TypeString || t == TypeShortString
}

// ArrayKind is the single-dimension array qualifier of an element.
type ArrayKind uint8

const (
	ArrayNone ArrayKind = iota
	// ArrayStatic has a schema-declared count and no count on the wire.
	ArrayStatic
	// ArrayCompact is a bounded-variable array: a wire count capped by a declared maximum.
	ArrayCompact
	// ArrayDynamic has a wire count and no bound.
	ArrayDynamic
)

func (k ArrayKind) String() string {
	switch k {
	case ArrayNone:
		return "none"
	case ArrayStatic:
		return "static"
	case ArrayCompact:
		return "compact"
	case ArrayDynamic:
		return "dynamic"
	}
	return "unknown"
}

// Counted reports whether the wire form carries a 4-byte element count.
func (k ArrayKind) Counted() bool {
	return k == ArrayCompact || k == ArrayDynamic
}

// Location is a position in schema source text.
type Location struct {
	Line   int
	Column int
}

// LiteralKind tags the value held by a Literal.
type LiteralKind uint8

const (
	LiteralInt LiteralKind = iota
	LiteralFloat
	LiteralString
	LiteralBool
	LiteralIdent
)

// Literal is an element default value as written in the schema.
type Literal struct {
	Str   string
	Int   int64
	Float float64
	Kind  LiteralKind
	Bool  bool
}

// Memo records which lazily computed struct properties are frozen.
type Memo uint8

const (
	MemoSize Memo = 1 << iota
	MemoHash
	MemoBounded
	MemoCompact
)

// Has reports whether all bits of f are set.
func (m Memo) Has(f Memo) bool {
	return m&f == f
}

// Graph is a parsed schema document.
type Graph struct {
	Global *Namespace
	Spaces []*Namespace
}

// NewGraph returns an empty graph with its global namespace.
func NewGraph() *Graph {
	return &Graph{Global: &Namespace{Name: GlobalNamespace}}
}

// Namespaces returns the global namespace followed by named namespaces.
func (g *Graph) Namespaces() []*Namespace {
	out := make([]*Namespace, 0, len(g.Spaces)+1)
	out = append(out, g.Global)
	return append(out, g.Spaces...)
}

// Structs returns every struct of the graph in declaration order, global first.
func (g *Graph) Structs() []*StructDef {
	var out []*StructDef
	for _, ns := range g.Namespaces() {
		out = append(out, ns.Structs...)
	}
	return out
}

// Namespace groups struct and enum definitions.
type Namespace struct {
	Name    string
	Structs []*StructDef
	Enums   []*EnumDef
}

// IsGlobal reports whether ns is the global namespace.
func (ns *Namespace) IsGlobal() bool {
	return ns == nil || ns.Name == GlobalNamespace || ns.Name == ""
}

// StructDef is a message type. The computed fields are zero until the
// layout package fills them on first demand; Done marks which are frozen.
type StructDef struct {
	Space    *Namespace
	Name     string
	Elements []*ElementDef
	Loc      Location
	Naked    bool

	NativeSize uint32
	HashValue  uint64
	Bounded    bool
	HasCompact bool
	Done       Memo
}

// QualifiedName returns ns::Name, or Name for global structs.
func (st *StructDef) QualifiedName() string {
	if st.Space.IsGlobal() {
		return st.Name
	}
	return st.Space.Name + "::" + st.Name
}

// EnumItem is a named enum constant.
type EnumItem struct {
	Name  string
	Value int64
}

// EnumDef is a set of named integer constants, always 4 bytes on the wire.
type EnumDef struct {
	Space *Namespace
	Name  string
	Items []EnumItem
	Loc   Location
}

// QualifiedName returns ns::Name, or Name for global enums.
func (e *EnumDef) QualifiedName() string {
	if e.Space.IsGlobal() {
		return e.Name
	}
	return e.Space.Name + "::" + e.Name
}

// ElementDef is one field of a struct.
type ElementDef struct {
	Enclosing  *StructDef
	Init       *Literal
	Name       string
	CustomName string
	// Namespace is the explicit qualifier of a custom type (ns::Type), if any.
	Namespace string
	Loc       Location
	// ArraySize is the static count or the compact maximum.
	ArraySize uint32
	// ArrayDims counts the [..] suffixes written in the schema.
	ArrayDims int
	Type      ElementType
	Array     ArrayKind

	// NativeSize and NativeOffset are set by the layout engine. TypeSize is
	// the native size of one item (zero for dynamic arrays).
	NativeSize   uint32
	NativeOffset uint32
	TypeSize     uint32
}

// IsArray reports whether the element carries an array qualifier.
func (e *ElementDef) IsArray() bool {
	return e.Array != ArrayNone
}

// TypeText returns the element type as written in the schema.
func (e *ElementDef) TypeText() string {
	if e.Type != TypeCustom {
		return e.Type.String()
	}
	if e.Namespace != "" {
		return e.Namespace + "::" + e.CustomName
	}
	return e.CustomName
}
