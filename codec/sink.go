package codec

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Sink receives the values a Decoder materializes. Paths are dotted for
// nested structs and indexed for struct array items, e.g. "msg.items[2].id".
type Sink interface {
	// Value receives a single scalar, enum or string element.
	Value(path string, v any)
	// Count receives the wire count of a bounded-variable or dynamic array.
	Count(path string, n uint32)
	// Values receives every item of a scalar, enum or string array.
	Values(path string, vs []any)
	// Elided marks an array whose items were advanced over without rendering.
	Elided(path string, n uint32)
}

// TextSink renders one line per element in the classic dump format.
type TextSink struct {
	w   io.Writer
	err error
}

func NewTextSink(w io.Writer) *TextSink {
	return &TextSink{w: w}
}

// Err returns the first write error encountered.
func (s *TextSink) Err() error {
	return s.err
}

func (s *TextSink) printf(format string, args ...any) {
	if s.err != nil {
		return
	}
	_, s.err = fmt.Fprintf(s.w, format, args...)
}

func (s *TextSink) Value(path string, v any) {
	s.printf("%s: %s\n", path, FormatValue(v))
}

func (s *TextSink) Count(path string, n uint32) {
	s.printf("%s = %d\n", path, n)
}

func (s *TextSink) Values(path string, vs []any) {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = FormatValue(v)
	}
	s.printf("%s[%d] = %s\n", path, len(vs), strings.Join(parts, ", "))
}

func (s *TextSink) Elided(path string, n uint32) {
	s.printf("%s[%d] = ...\n", path, n)
}

// FormatValue renders a decoded value as dump text. Strings are quoted with
// quote and backslash characters escaped.
func FormatValue(v any) string {
	switch x := v.(type) {
	case string:
		return quote(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case bool:
		return strconv.FormatBool(x)
	}
	return fmt.Sprint(v)
}

func quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('"')
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '"', '\'', '\\':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	b.WriteByte('"')
	return b.String()
}

// Field is one materialized element.
type Field struct {
	Value any
	Path  string
}

// Elided is the value a Collector records for an array that was too long
// to render.
type Elided struct {
	Count uint32
}

// Collector records decoded elements in wire order.
type Collector struct {
	Fields []Field
}

func (c *Collector) Value(path string, v any) {
	c.Fields = append(c.Fields, Field{Path: path, Value: v})
}

func (c *Collector) Count(path string, n uint32) {
	c.Fields = append(c.Fields, Field{Path: path, Value: n})
}

func (c *Collector) Values(path string, vs []any) {
	c.Fields = append(c.Fields, Field{Path: path, Value: vs})
}

func (c *Collector) Elided(path string, n uint32) {
	c.Fields = append(c.Fields, Field{Path: path, Value: Elided{Count: n}})
}

// Get returns the value recorded at path.
func (c *Collector) Get(path string) (any, bool) {
	for _, f := range c.Fields {
		if f.Path == path {
			return f.Value, true
		}
	}
	return nil, false
}

// JSON renders the collected fields as one flat JSON object keyed by path,
// preserving wire order.
func (c *Collector) JSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range c.Fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(f.Path)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(jsonValue(f.Value))
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonValue maps values encoding/json cannot represent. Non-finite floats
// become strings and elided arrays become a marker object.
func jsonValue(v any) any {
	switch x := v.(type) {
	case float32:
		if math.IsNaN(float64(x)) || math.IsInf(float64(x), 0) {
			return FormatValue(x)
		}
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return FormatValue(x)
		}
	case Elided:
		return map[string]uint32{"elided": x.Count}
	case []any:
		out := make([]any, len(x))
		for i, item := range x {
			out[i] = jsonValue(item)
		}
		return out
	}
	return v
}
