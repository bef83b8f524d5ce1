package cbuf

import (
	"go.uber.org/zap"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/codec"
	"github.com/wippyai/cbuf/errors"
	"github.com/wippyai/cbuf/layout"
	"github.com/wippyai/cbuf/schema"
)

// Option configures a Parser.
type Option func(*Parser)

// WithLogger sets the logger the Parser reports schema passes to.
func WithLogger(l *zap.Logger) Option {
	return func(p *Parser) {
		p.log = l
	}
}

// WithRenderLimit sets the array length above which Print elides items.
func WithRenderLimit(n int) Option {
	return func(p *Parser) {
		p.limit = n
	}
}

// WithHashCheck makes Print verify every preamble hash.
func WithHashCheck() Option {
	return func(p *Parser) {
		p.checkHash = true
	}
}

// Parser owns one parsed schema: its type graph, symbol table and layout
// results. A Parser is not safe for concurrent use; independent Parsers
// share no state.
type Parser struct {
	graph     *ast.Graph
	syms      *schema.SymbolTable
	calc      *layout.Calculator
	log       *zap.Logger
	limit     int
	checkHash bool
}

func New(opts ...Option) *Parser {
	p := &Parser{limit: codec.DefaultRenderLimit}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = Logger()
	}
	return p
}

// ParseMetadata parses schema text and computes the native layout of every
// struct it defines. It replaces any schema loaded before.
func (p *Parser) ParseMetadata(text string) error {
	g, err := schema.Parse(text)
	if err != nil {
		return err
	}
	syms, err := schema.NewSymbolTable(g)
	if err != nil {
		return err
	}
	calc := layout.NewCalculator(syms)

	p.log.Debug("computing native layout", zap.Int("structs", len(g.Structs())))
	if err := calc.ComputeAll(g, ast.MemoSize); err != nil {
		return err
	}
	p.graph, p.syms, p.calc = g, syms, calc
	return nil
}

// ComputeHashes computes the structural hash of every struct, failing on
// the first struct whose hash cannot be computed.
func (p *Parser) ComputeHashes() error {
	if err := p.loaded(); err != nil {
		return err
	}
	p.log.Debug("computing hashes", zap.Int("structs", len(p.graph.Structs())))
	return p.calc.ComputeAll(p.graph, ast.MemoHash)
}

// Graph returns the parsed type graph, or nil before ParseMetadata.
func (p *Parser) Graph() *ast.Graph {
	return p.graph
}

// Calculator returns the layout calculator of the parsed schema.
func (p *Parser) Calculator() *layout.Calculator {
	return p.calc
}

func (p *Parser) loaded() error {
	if p.graph == nil {
		return errors.InvalidInput(errors.PhaseResolve, "no schema loaded")
	}
	return nil
}

// Struct returns the struct named "ns::Name" or "Name".
func (p *Parser) Struct(name string) (*ast.StructDef, error) {
	if err := p.loaded(); err != nil {
		return nil, err
	}
	return p.syms.LookupStruct(name)
}

func (p *Parser) StructSize(name string) (uint32, error) {
	st, err := p.Struct(name)
	if err != nil {
		return 0, err
	}
	return p.calc.StructSize(st)
}

func (p *Parser) Hash(name string) (uint64, error) {
	st, err := p.Struct(name)
	if err != nil {
		return 0, err
	}
	return p.calc.Hash(st)
}

// Bounded reports whether the maximum wire size of a struct is known
// statically.
func (p *Parser) Bounded(name string) (bool, error) {
	st, err := p.Struct(name)
	if err != nil {
		return false, err
	}
	return p.calc.Bounded(st)
}

// HasCompact reports whether a struct transitively holds a bounded-variable
// array.
func (p *Parser) HasCompact(name string) (bool, error) {
	st, err := p.Struct(name)
	if err != nil {
		return false, err
	}
	return p.calc.HasCompact(st)
}

// Print decodes one instance of the named struct from buf, emitting every
// element to sink under the prefix "Name.". It returns the bytes consumed.
func (p *Parser) Print(name string, buf []byte, sink codec.Sink) (int, error) {
	st, err := p.Struct(name)
	if err != nil {
		return 0, err
	}
	opts := []codec.DecoderOption{codec.WithRenderLimit(p.limit)}
	if p.checkHash {
		opts = append(opts, codec.WithHashCheck())
	}
	cur := codec.NewCursor(buf)
	if err := codec.NewDecoder(p.calc, opts...).Decode(st, cur, st.Name+".", sink); err != nil {
		return 0, err
	}
	return cur.Pos(), nil
}

// Skip returns the number of bytes one instance of the named struct
// occupies at the start of buf.
func (p *Parser) Skip(name string, buf []byte) (int, error) {
	st, err := p.Struct(name)
	if err != nil {
		return 0, err
	}
	cur := codec.NewCursor(buf)
	if err := codec.NewSkipper(p.calc).Skip(st, cur); err != nil {
		return 0, err
	}
	return cur.Pos(), nil
}

// Convert reads one instance of srcName from buf and projects it onto a
// native instance of dstName from the dst schema, pairing fields by name.
func (p *Parser) Convert(srcName string, buf []byte, dst *Parser, dstName string) (*codec.Native, *codec.Report, error) {
	src, err := p.Struct(srcName)
	if err != nil {
		return nil, nil, err
	}
	target, err := dst.Struct(dstName)
	if err != nil {
		return nil, nil, err
	}
	size, err := dst.calc.StructSize(target)
	if err != nil {
		return nil, nil, err
	}
	out := codec.NewNative(size)
	report, err := codec.NewConverter(p.calc, dst.calc).Convert(src, codec.NewCursor(buf), target, out, nil)
	if err != nil {
		return nil, nil, err
	}
	p.log.Debug("converted",
		zap.String("src", src.QualifiedName()),
		zap.String("dst", target.QualifiedName()),
		zap.Int("consumed", report.Consumed),
		zap.Int("truncations", len(report.Truncations)))
	return out, report, nil
}

// Render emits a native instance of the named struct to sink.
func (p *Parser) Render(name string, n *codec.Native, sink codec.Sink) error {
	st, err := p.Struct(name)
	if err != nil {
		return err
	}
	return codec.Render(p.calc, st, n, st.Name+".", sink)
}
