// Package errors provides structured error types for the cbuf codec.
//
// Errors are categorized by Phase (where the error occurred) and Kind (error category).
// The Error type includes the field path, struct and type names, and the cause chain.
//
// Use the Builder for structured error construction:
//
//	err := errors.New(errors.PhaseDecode, errors.KindBoundsViolation).
//		Path("Msg", "vals").
//		Struct("Msg").
//		Detail("count %d exceeds maximum %d", 12, 10).
//		Build()
//
// Or use convenience constructors for common patterns:
//
//	err := errors.TypeMismatch(errors.PhaseConvert, path, "f32", "string")
//	err := errors.ShortBuffer(errors.PhaseDecode, path, 4, 1)
//
// Kinds map onto the codec's failure taxonomy: schema_resolution,
// unsupported_shape, bounds_violation and type_mismatch, plus out_of_bounds
// for reads past the end of a source buffer. Use IsKind to test a chain.
package errors
