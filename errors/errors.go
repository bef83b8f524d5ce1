package errors

import (
	stderrors "errors"
	"fmt"
	"strings"
)

// Phase indicates where in processing the error occurred
type Phase string

const (
	PhaseParse    Phase = "parse"    // schema text parsing
	PhaseResolve  Phase = "resolve"  // symbol table construction and lookup
	PhaseLayout   Phase = "layout"   // native size computation
	PhaseHash     Phase = "hash"     // structural hash computation
	PhaseClassify Phase = "classify" // bounded / compact classifiers
	PhaseDecode   Phase = "decode"   // wire to rendered fields
	PhaseSkip     Phase = "skip"     // wire traversal without rendering
	PhaseConvert  Phase = "convert"  // wire to native layout of another struct
)

// Kind categorizes the error
type Kind string

const (
	KindSchemaResolution Kind = "schema_resolution"
	KindUnsupportedShape Kind = "unsupported_shape"
	KindBoundsViolation  Kind = "bounds_violation"
	KindTypeMismatch     Kind = "type_mismatch"
	KindOutOfBounds      Kind = "out_of_bounds"
	KindInvalidData      Kind = "invalid_data"
	KindNotFound         Kind = "not_found"
	KindInvalidInput     Kind = "invalid_input"
)

// Error is the structured error type used throughout the codec
type Error struct {
	Value  any
	Cause  error
	Phase  Phase
	Kind   Kind
	Struct string
	Type   string
	Detail string
	Path   []string
}

// Error implements the error interface
func (e *Error) Error() string {
	var b strings.Builder

	b.WriteByte('[')
	b.WriteString(string(e.Phase))
	b.WriteString("] ")
	b.WriteString(string(e.Kind))

	if len(e.Path) > 0 {
		b.WriteString(" at ")
		b.WriteString(strings.Join(e.Path, "."))
	}

	if e.Struct != "" || e.Type != "" {
		b.WriteString(": ")
		if e.Struct != "" && e.Type != "" {
			b.WriteString("struct ")
			b.WriteString(e.Struct)
			b.WriteString(", type ")
			b.WriteString(e.Type)
		} else if e.Struct != "" {
			b.WriteString("struct ")
			b.WriteString(e.Struct)
		} else {
			b.WriteString("type ")
			b.WriteString(e.Type)
		}
	}

	if e.Detail != "" {
		if e.Struct != "" || e.Type != "" {
			b.WriteString(" - ")
		} else {
			b.WriteString(": ")
		}
		b.WriteString(e.Detail)
	}

	if e.Cause != nil {
		b.WriteString(" (caused by: ")
		b.WriteString(e.Cause.Error())
		b.WriteByte(')')
	}

	return b.String()
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Cause
}

// Is reports whether target matches this error
func (e *Error) Is(target error) bool {
	if t, ok := target.(*Error); ok {
		return e.Phase == t.Phase && e.Kind == t.Kind
	}
	return false
}

// IsKind reports whether any *Error in err's chain has the given kind.
func IsKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !stderrors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Cause
	}
	return false
}

// Builder provides structured error construction
type Builder struct {
	err Error
}

// New creates a new error builder
func New(phase Phase, kind Kind) *Builder {
	return &Builder{
		err: Error{
			Phase: phase,
			Kind:  kind,
		},
	}
}

// Path sets the field path
func (b *Builder) Path(path ...string) *Builder {
	b.err.Path = path
	return b
}

// Struct sets the struct name
func (b *Builder) Struct(name string) *Builder {
	b.err.Struct = name
	return b
}

// Type sets the schema type name
func (b *Builder) Type(t string) *Builder {
	b.err.Type = t
	return b
}

// Value sets the offending value
func (b *Builder) Value(v any) *Builder {
	b.err.Value = v
	return b
}

// Cause sets the underlying error
func (b *Builder) Cause(err error) *Builder {
	b.err.Cause = err
	return b
}

// Detail sets the human-readable detail message
func (b *Builder) Detail(msg string, args ...any) *Builder {
	if len(args) > 0 {
		b.err.Detail = fmt.Sprintf(msg, args...)
	} else {
		b.err.Detail = msg
	}
	return b
}

// Build returns the constructed error
func (b *Builder) Build() *Error {
	return &b.err
}

// Convenience constructors for common error patterns

// Unresolved creates a schema resolution error for a custom type name
// that the symbol table does not know.
func Unresolved(phase Phase, structName, elemName, typeName string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindSchemaResolution,
		Path:   []string{elemName},
		Struct: structName,
		Type:   typeName,
		Detail: fmt.Sprintf("could not resolve type %s", typeName),
	}
}

// UnsupportedShape creates an unsupported shape error
func UnsupportedShape(phase Phase, structName, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindUnsupportedShape,
		Struct: structName,
		Detail: detail,
	}
}

// BoundsViolation creates an error for a counted array whose count
// exceeds its declared maximum.
func BoundsViolation(phase Phase, path []string, count, maxCount uint32) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBoundsViolation,
		Path:   path,
		Detail: fmt.Sprintf("count %d exceeds maximum %d", count, maxCount),
		Value:  count,
	}
}

// TypeMismatch creates a type mismatch error
func TypeMismatch(phase Phase, path []string, srcType, dstType string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindTypeMismatch,
		Path:   path,
		Type:   dstType,
		Detail: fmt.Sprintf("cannot convert %s to %s", srcType, dstType),
	}
}

// ShortBuffer creates an out of bounds error for a read past the end of
// the source buffer.
func ShortBuffer(phase Phase, path []string, need, remaining int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindOutOfBounds,
		Path:   path,
		Detail: fmt.Sprintf("need %d bytes, %d remaining", need, remaining),
		Value:  need,
	}
}

// Overflow creates a bounds violation for a write past the end of a
// capacity-tracked destination.
func Overflow(phase Phase, path []string, offset, size, capacity int) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindBoundsViolation,
		Path:   path,
		Detail: fmt.Sprintf("write of %d bytes at offset %d exceeds capacity %d", size, offset, capacity),
		Value:  offset,
	}
}

// NotFound creates a not-found error
func NotFound(phase Phase, what, name string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindNotFound,
		Detail: fmt.Sprintf("%s %q not found", what, name),
	}
}

// InvalidInput creates an invalid input error
func InvalidInput(phase Phase, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   KindInvalidInput,
		Detail: detail,
	}
}

// ParseFailed creates a parsing error at a source location
func ParseFailed(line, col int, detail string) *Error {
	return &Error{
		Phase:  PhaseParse,
		Kind:   KindInvalidData,
		Detail: fmt.Sprintf("line %d:%d: %s", line, col, detail),
		Value:  line,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(phase Phase, kind Kind, cause error, detail string) *Error {
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Detail: detail,
		Cause:  cause,
	}
}

// Schema wraps the first failure of a schema-wide pass, naming the struct
// the pass was computing. The cause's kind is kept so IsKind still matches.
func Schema(phase Phase, structName string, cause error) *Error {
	kind := KindInvalidData
	var e *Error
	if stderrors.As(cause, &e) {
		kind = e.Kind
	}
	return &Error{
		Phase:  phase,
		Kind:   kind,
		Struct: structName,
		Detail: fmt.Sprintf("could not compute %s", phase),
		Cause:  cause,
	}
}
