package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/davecgh/go-spew/spew"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/wippyai/cbuf"
	"github.com/wippyai/cbuf/codec"
	"github.com/wippyai/cbuf/layout"
)

func main() {
	var (
		schemaFile  = flag.String("schema", "", "Path to cbuf schema file")
		structName  = flag.String("struct", "", "Struct to inspect or decode (ns::Name)")
		dataFile    = flag.String("data", "", "Wire buffer to decode")
		convertTo   = flag.String("convert", "", "Convert the buffer into another schema (file:ns::Name)")
		list        = flag.Bool("list", false, "List structs with size and hash and exit")
		asJSON      = flag.Bool("json", false, "Print decoded fields as JSON")
		witOut      = flag.Bool("wit", false, "Print the schema as WIT type definitions")
		dump        = flag.Bool("dump", false, "Dump the parsed type graph")
		checkHash   = flag.Bool("check", false, "Verify preamble hashes while decoding")
		limit       = flag.Int("limit", codec.DefaultRenderLimit, "Arrays longer than this are elided")
		verbose     = flag.Bool("v", false, "Verbose debug logging")
		interactive = flag.Bool("i", false, "Interactive schema browser")
	)
	flag.Parse()

	if *schemaFile == "" {
		fmt.Fprintln(os.Stderr, "Usage: cbufdump -schema <file.cbuf> -list")
		fmt.Fprintln(os.Stderr, "       cbufdump -schema <file.cbuf> -struct Name [-data buf.bin] [-json]")
		fmt.Fprintln(os.Stderr, "       cbufdump -schema <file.cbuf> -struct Name -data buf.bin -convert other.cbuf:Name")
		fmt.Fprintln(os.Stderr, "       cbufdump -schema <file.cbuf> -i  (interactive mode)")
		os.Exit(1)
	}

	if *verbose {
		if err := enableLogging(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *interactive {
		if !term.IsTerminal(int(os.Stdout.Fd())) {
			fmt.Fprintln(os.Stderr, "Error: interactive mode needs a terminal")
			os.Exit(1)
		}
		if err := runInteractive(*schemaFile); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := []cbuf.Option{cbuf.WithRenderLimit(*limit)}
	if *checkHash {
		opts = append(opts, cbuf.WithHashCheck())
	}
	cfg := config{
		schemaFile: *schemaFile,
		structName: *structName,
		dataFile:   *dataFile,
		convertTo:  *convertTo,
		list:       *list,
		asJSON:     *asJSON,
		wit:        *witOut,
		dump:       *dump,
		opts:       opts,
	}
	if err := run(cfg); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

type config struct {
	schemaFile string
	structName string
	dataFile   string
	convertTo  string
	opts       []cbuf.Option
	list       bool
	asJSON     bool
	wit        bool
	dump       bool
}

func enableLogging() error {
	logger, err := zap.NewDevelopment()
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	cbuf.SetLogger(logger)
	layout.SetLogger(logger)
	codec.SetLogger(logger)
	return nil
}

func loadSchema(path string, opts ...cbuf.Option) (*cbuf.Parser, error) {
	text, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read schema: %w", err)
	}
	p := cbuf.New(opts...)
	if err := p.ParseMetadata(string(text)); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return p, nil
}

func run(cfg config) error {
	p, err := loadSchema(cfg.schemaFile, cfg.opts...)
	if err != nil {
		return err
	}

	if cfg.dump {
		dumper := spew.ConfigState{Indent: "  ", MaxDepth: 6, DisablePointerAddresses: true}
		dumper.Fdump(os.Stdout, p.Graph())
		return nil
	}

	if cfg.wit {
		defs, err := p.WITTypes()
		if err != nil {
			return err
		}
		fmt.Print(cbuf.WITText(defs))
		return nil
	}

	if cfg.list || cfg.structName == "" {
		return listStructs(p)
	}

	if cfg.dataFile == "" {
		return describe(p, cfg.structName)
	}

	data, err := os.ReadFile(cfg.dataFile)
	if err != nil {
		return fmt.Errorf("read data: %w", err)
	}

	if cfg.convertTo != "" {
		return convert(p, cfg.structName, data, cfg.convertTo)
	}
	return decode(p, cfg.structName, data, cfg.asJSON)
}

func listStructs(p *cbuf.Parser) error {
	infos, err := p.Metadata()
	if err != nil {
		return err
	}
	fmt.Printf("%-32s %8s %18s %8s %8s\n", "STRUCT", "SIZE", "HASH", "BOUNDED", "COMPACT")
	for _, info := range infos {
		fmt.Printf("%-32s %8d %18s %8t %8t\n", info.Name, info.Size, fmt.Sprintf("0x%016X", info.Hash), info.Simple, info.HasCompact)
	}
	return nil
}

func describe(p *cbuf.Parser, name string) error {
	st, err := p.Struct(name)
	if err != nil {
		return err
	}
	sig, err := p.Calculator().Signature(st)
	if err != nil {
		return err
	}
	infos, err := p.Metadata()
	if err != nil {
		return err
	}
	var info cbuf.StructInfo
	for _, i := range infos {
		if i.Name == st.QualifiedName() {
			info = i
		}
	}

	fmt.Printf("Struct: %s (line %d)\n", info.Name, info.Line)
	fmt.Printf("Native size: %d\n", info.Size)
	fmt.Printf("Hash: 0x%016X\n", info.Hash)
	fmt.Printf("Bounded: %t, compact arrays: %t\n", info.Simple, info.HasCompact)
	fmt.Printf("\nFields:\n")
	for i, f := range info.Fields {
		elem := st.Elements[i]
		fmt.Printf("  %-24s %-20s offset=%-6d size=%d\n", f.Name, fieldType(f), elem.NativeOffset, elem.NativeSize)
	}
	fmt.Printf("\nSignature:\n%s", sig)
	return nil
}

func fieldType(f cbuf.FieldInfo) string {
	switch {
	case !f.IsArray:
		return f.Type
	case f.ArrayLength > 0:
		return fmt.Sprintf("%s[%d]", f.Type, f.ArrayLength)
	case f.ArrayUpperBound > 0:
		return fmt.Sprintf("%s[<=%d]", f.Type, f.ArrayUpperBound)
	}
	return f.Type + "[]"
}

func decode(p *cbuf.Parser, name string, data []byte, asJSON bool) error {
	if asJSON {
		var c codec.Collector
		if _, err := p.Print(name, data, &c); err != nil {
			return err
		}
		js, err := c.JSON()
		if err != nil {
			return err
		}
		fmt.Println(string(js))
		return nil
	}

	sink := codec.NewTextSink(os.Stdout)
	n, err := p.Print(name, data, sink)
	if err != nil {
		return err
	}
	if err := sink.Err(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "consumed %d of %d bytes\n", n, len(data))
	return nil
}

func convert(p *cbuf.Parser, name string, data []byte, target string) error {
	file, dstName, ok := strings.Cut(target, ":")
	if !ok || dstName == "" {
		return fmt.Errorf("convert target must be file:Struct, got %q", target)
	}
	dst, err := loadSchema(file)
	if err != nil {
		return err
	}
	native, report, err := p.Convert(name, data, dst, dstName)
	if err != nil {
		return err
	}
	sink := codec.NewTextSink(os.Stdout)
	if err := dst.Render(dstName, native, sink); err != nil {
		return err
	}
	if err := sink.Err(); err != nil {
		return err
	}
	for _, t := range report.Truncations {
		fmt.Fprintf(os.Stderr, "truncated %s: dropped %d %s\n", t.Path, t.Dropped, t.Kind)
	}
	fmt.Fprintf(os.Stderr, "consumed %d of %d bytes\n", report.Consumed, len(data))
	return nil
}
