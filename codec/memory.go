package codec

import (
	"github.com/wippyai/cbuf/errors"
)

// Memory is a linear memory holding wire buffers, such as a WASM guest's.
type Memory interface {
	Read(offset uint32, length uint32) ([]byte, error)
	Write(offset uint32, data []byte) error
}

// CursorFromMemory returns a cursor over a copy of length bytes at offset.
// The copy keeps the cursor valid if the memory grows while it is in use.
func CursorFromMemory(mem Memory, offset, length uint32) (*Cursor, error) {
	data, err := mem.Read(offset, length)
	if err != nil {
		return nil, errors.Wrap(errors.PhaseDecode, errors.KindOutOfBounds, err, "reading wire buffer from memory")
	}
	buf := make([]byte, len(data))
	copy(buf, data)
	return NewCursor(buf), nil
}

// WriteNative copies the inline bytes of n into mem at offset. Handle
// contents have no linear memory representation and are not written.
func WriteNative(mem Memory, offset uint32, n *Native) error {
	if err := mem.Write(offset, n.Bytes()); err != nil {
		return errors.Wrap(errors.PhaseConvert, errors.KindBoundsViolation, err, "writing native instance to memory")
	}
	return nil
}
