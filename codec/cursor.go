package codec

import (
	"bytes"

	"github.com/wippyai/cbuf/ast"
	"github.com/wippyai/cbuf/errors"
)

// Cursor is a forward-only read position over a wire buffer. Every read is
// checked against the bytes remaining.
type Cursor struct {
	buf []byte
	pos int
}

func NewCursor(buf []byte) *Cursor {
	return &Cursor{buf: buf}
}

// Pos returns the number of bytes consumed so far.
func (c *Cursor) Pos() int {
	return c.pos
}

// Remaining returns the number of unread bytes.
func (c *Cursor) Remaining() int {
	return len(c.buf) - c.pos
}

func (c *Cursor) take(n int, phase errors.Phase, path string) ([]byte, error) {
	if n < 0 || n > c.Remaining() {
		return nil, errors.ShortBuffer(phase, []string{path}, n, c.Remaining())
	}
	b := c.buf[c.pos : c.pos+n]
	c.pos += n
	return b, nil
}

func (c *Cursor) skip(n uint64, phase errors.Phase, path string) error {
	if n > uint64(c.Remaining()) {
		return errors.ShortBuffer(phase, []string{path}, int(min(n, uint64(1<<62))), c.Remaining())
	}
	c.pos += int(n)
	return nil
}

func (c *Cursor) u32(phase errors.Phase, path string) (uint32, error) {
	b, err := c.take(4, phase, path)
	if err != nil {
		return 0, err
	}
	return le.Uint32(b), nil
}

// Preamble is the header in front of a non-naked struct on the wire.
type Preamble struct {
	Hash uint64
	Size uint32
}

func (c *Cursor) preamble(phase errors.Phase, path string) (Preamble, error) {
	b, err := c.take(ast.PreambleSize, phase, path)
	if err != nil {
		return Preamble{}, err
	}
	return Preamble{Hash: le.Uint64(b), Size: le.Uint32(b[8:])}, nil
}

// readString reads a length-prefixed string.
func (c *Cursor) readString(phase errors.Phase, path string) (string, error) {
	n, err := c.u32(phase, path)
	if err != nil {
		return "", err
	}
	if uint64(n) > uint64(c.Remaining()) {
		return "", errors.ShortBuffer(phase, []string{path}, int(n), c.Remaining())
	}
	b, _ := c.take(int(n), phase, path)
	return string(b), nil
}

// readShortString reads a fixed 16-byte slot, stopping at the first NUL.
func (c *Cursor) readShortString(phase errors.Phase, path string) (string, error) {
	b, err := c.take(ast.ShortStringSize, phase, path)
	if err != nil {
		return "", err
	}
	if i := bytes.IndexByte(b, 0); i >= 0 {
		b = b[:i]
	}
	return string(b), nil
}
