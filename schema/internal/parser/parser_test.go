package parser

import (
	"strings"
	"testing"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/schema/internal/token"
)

func parse(t *testing.T, src string) *ast.Graph {
	t.Helper()
	g, err := New(token.Tokenize(src)).Parse()
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	return g
}

func TestParse_GlobalStruct(t *testing.T) {
	g := parse(t, `struct Point { f32 x; f32 y; }`)
	if len(g.Global.Structs) != 1 {
		t.Fatalf("expected 1 struct, got %d", len(g.Global.Structs))
	}
	st := g.Global.Structs[0]
	if st.Name != "Point" || st.Naked || st.Space != g.Global {
		t.Errorf("unexpected struct %+v", st)
	}
	if len(st.Elements) != 2 || st.Elements[0].Name != "x" || st.Elements[1].Type != ast.TypeF32 {
		t.Errorf("unexpected elements %+v", st.Elements)
	}
	if st.Elements[0].Enclosing != st {
		t.Error("element enclosing struct not set")
	}
}

func TestParse_Arrays(t *testing.T) {
	g := parse(t, `
struct A {
	u8 fixed[4];
	u16 capped[10] @compact;
	s32 dyn[];
	f64 grid[2][3];
}`)
	el := g.Global.Structs[0].Elements
	tests := []struct {
		kind ast.ArrayKind
		size uint32
		dims int
	}{
		{ast.ArrayStatic, 4, 1},
		{ast.ArrayCompact, 10, 1},
		{ast.ArrayDynamic, 0, 1},
		{ast.ArrayStatic, 2, 2},
	}
	for i, tt := range tests {
		if el[i].Array != tt.kind || el[i].ArraySize != tt.size || el[i].ArrayDims != tt.dims {
			t.Errorf("element %s: got kind=%v size=%d dims=%d, want %v %d %d",
				el[i].Name, el[i].Array, el[i].ArraySize, el[i].ArrayDims, tt.kind, tt.size, tt.dims)
		}
	}
}

func TestParse_NamespacesAndCustomTypes(t *testing.T) {
	g := parse(t, `
namespace geo {
	struct Point @naked { f32 x; f32 y; }
	enum Color { RED, GREEN = 5, BLUE }
}
namespace msg {
	struct Shape {
		geo::Point pts[];
		geo::Color color = GREEN;
		string name = "shape";
		short_string tag;
		bool visible = true;
		f64 scale = 1.5;
		s32 offset = -3;
	}
}
namespace geo {
	struct Box { Point lo; Point hi; }
}`)
	if len(g.Spaces) != 2 {
		t.Fatalf("expected 2 namespaces (reopened merged), got %d", len(g.Spaces))
	}
	geo := g.Spaces[0]
	if len(geo.Structs) != 2 || !geo.Structs[0].Naked {
		t.Fatalf("unexpected geo namespace %+v", geo)
	}
	enm := geo.Enums[0]
	if enm.Items[0].Value != 0 || enm.Items[1].Value != 5 || enm.Items[2].Value != 6 {
		t.Errorf("unexpected enum values %+v", enm.Items)
	}

	shape := g.Spaces[1].Structs[0]
	pts := shape.Elements[0]
	if pts.Type != ast.TypeCustom || pts.Namespace != "geo" || pts.CustomName != "Point" || pts.Array != ast.ArrayDynamic {
		t.Errorf("unexpected pts %+v", pts)
	}
	if shape.Elements[1].Init == nil || shape.Elements[1].Init.Kind != ast.LiteralIdent || shape.Elements[1].Init.Str != "GREEN" {
		t.Errorf("unexpected enum default %+v", shape.Elements[1].Init)
	}
	if lit := shape.Elements[2].Init; lit.Kind != ast.LiteralString || lit.Str != "shape" {
		t.Errorf("unexpected string default %+v", lit)
	}
	if shape.Elements[3].Type != ast.TypeShortString {
		t.Errorf("expected short string, got %v", shape.Elements[3].Type)
	}
	if lit := shape.Elements[4].Init; lit.Kind != ast.LiteralBool || !lit.Bool {
		t.Errorf("unexpected bool default %+v", lit)
	}
	if lit := shape.Elements[5].Init; lit.Kind != ast.LiteralFloat || lit.Float != 1.5 {
		t.Errorf("unexpected float default %+v", lit)
	}
	if lit := shape.Elements[6].Init; lit.Kind != ast.LiteralInt || lit.Int != -3 {
		t.Errorf("unexpected int default %+v", lit)
	}

	box := geo.Structs[1]
	if box.Elements[0].Namespace != "" || box.Elements[0].CustomName != "Point" {
		t.Errorf("unexpected unqualified reference %+v", box.Elements[0])
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"missing semicolon", "struct A { u8 x }", `expected ";"`},
		{"missing name", "struct { }", "expected identifier"},
		{"unterminated", "struct A { u8 x;", "unexpected end of input"},
		{"bad annotation", "struct A @packed { }", "unknown struct annotation"},
		{"compact dynamic", "struct A { u8 x[] @compact; }", "@compact requires a sized array"},
		{"nested namespace", "namespace a { namespace b { } }", "unexpected \"namespace\""},
		{"top level junk", "u8 x;", "expected struct, enum or namespace"},
		{"bad size", "struct A { u8 x[y]; }", "expected number"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(token.Tokenize(tt.src)).Parse()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.want)
			}
			if !strings.Contains(err.Error(), "[parse]") {
				t.Errorf("error %q is not a parse error", err.Error())
			}
		})
	}
}

func TestUnescape(t *testing.T) {
	if got := unescape(`a\"b\\c\n`); got != "a\"b\\c\n" {
		t.Errorf("unescape: got %q", got)
	}
}
