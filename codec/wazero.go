package codec

import (
	"github.com/tetratelabs/wazero/api"

	"github.com/wippyai/cbuf/errors"
)

// WazeroMemory adapts the linear memory of a wazero module instance to
// Memory, so messages held by a guest can be decoded in place.
type WazeroMemory struct {
	mem api.Memory
}

func NewWazeroMemory(mem api.Memory) *WazeroMemory {
	return &WazeroMemory{mem: mem}
}

func (m *WazeroMemory) Read(offset uint32, length uint32) ([]byte, error) {
	data, ok := m.mem.Read(offset, length)
	if !ok {
		return nil, errors.New(errors.PhaseDecode, errors.KindOutOfBounds).
			Value(offset).
			Detail("read of %d bytes at offset %d exceeds memory size %d", length, offset, m.mem.Size()).
			Build()
	}
	return data, nil
}

func (m *WazeroMemory) Write(offset uint32, data []byte) error {
	ok := m.mem.Write(offset, data)
	if !ok {
		return errors.Overflow(errors.PhaseConvert, nil, int(offset), len(data), int(m.mem.Size()))
	}
	return nil
}

// Size returns the current memory size in bytes.
func (m *WazeroMemory) Size() uint32 {
	return m.mem.Size()
}
