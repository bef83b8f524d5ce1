package layout

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

// HashSeed is the initial value of the structural hash.
const HashSeed uint64 = 5381

// nativeTypeNames are the type spellings used in hash signatures.
var nativeTypeNames = [...]string{
	ast.TypeU8:          "uint8_t",
	ast.TypeU16:         "uint16_t",
	ast.TypeU32:         "uint32_t",
	ast.TypeU64:         "uint64_t",
	ast.TypeS8:          "int8_t",
	ast.TypeS16:         "int16_t",
	ast.TypeS32:         "int32_t",
	ast.TypeS64:         "int64_t",
	ast.TypeF32:         "float",
	ast.TypeF64:         "double",
	ast.TypeString:      "std::string",
	ast.TypeShortString: "VString<15>",
	ast.TypeBool:        "bool",
}

// HashBytes folds b into a 64-bit value, hash = hash*33 + byte.
func HashBytes(b []byte) uint64 {
	h := HashSeed
	for _, c := range b {
		h = (h << 5) + h + uint64(c)
	}
	return h
}

// Hash returns the structural hash of st. Nested structs contribute their
// own hash instead of their name, so the result depends on shape and field
// names only.
func (c *Calculator) Hash(st *ast.StructDef) (uint64, error) {
	if st.Done.Has(ast.MemoHash) {
		return st.HashValue, nil
	}
	sig, err := c.Signature(st)
	if err != nil {
		return 0, err
	}
	st.HashValue = HashBytes([]byte(sig))
	st.Done |= ast.MemoHash
	Logger().Debug("computed hash",
		zap.String("struct", st.QualifiedName()),
		zap.Uint64("hash", st.HashValue))
	return st.HashValue, nil
}

// Signature returns the canonical text hashed by Hash.
func (c *Calculator) Signature(st *ast.StructDef) (string, error) {
	if err := c.enter(st, ast.MemoHash, errors.PhaseHash); err != nil {
		return "", err
	}
	defer c.leave(st, ast.MemoHash)

	var b strings.Builder
	b.WriteString("struct \n")
	for _, elem := range st.Elements {
		switch elem.Array {
		case ast.ArrayStatic:
			b.WriteString("[" + strconv.FormatUint(uint64(elem.ArraySize), 10) + "] ")
		case ast.ArrayCompact:
			b.WriteString("[" + strconv.FormatUint(uint64(elem.ArraySize), 10) + "] @compact ")
		case ast.ArrayDynamic:
			b.WriteString("[] ")
		}

		// Scalar lines end in "; \n" and custom lines in ";\n". Every
		// stored hash depends on that spacing.
		if elem.Type != ast.TypeCustom {
			b.WriteString(nativeTypeNames[elem.Type] + " " + elem.Name + "; \n")
			continue
		}
		if enm := c.syms.FindEnum(elem); enm != nil {
			b.WriteString(elem.CustomName + " " + elem.Name + ";\n")
			continue
		}
		inner := c.syms.FindStruct(elem)
		if inner == nil {
			return "", errors.Unresolved(errors.PhaseHash, st.QualifiedName(), elem.Name, elem.TypeText())
		}
		h, err := c.Hash(inner)
		if err != nil {
			return "", err
		}
		b.WriteString(strings.ToUpper(strconv.FormatUint(h, 16)) + " " + elem.Name + ";\n")
	}
	return b.String(), nil
}
