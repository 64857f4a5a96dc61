// Bounds-checked little-endian reads over a raw container buffer.
//
// Both decoders walk their containers through a cursor rather than bare
// offset arithmetic, so any read past the declared buffer length fails
// with ErrTruncated instead of slicing out of range. The error is sticky:
// after the first failed read every later read returns the zero value,
// letting a decode sequence run field-by-field and check Err once.
package ntx

import (
	"encoding/binary"
	"fmt"
)

type cursor struct {
	buf []byte
	pos int
	err error
}

func newCursor(buf []byte) *cursor {
	return &cursor{buf: buf}
}

// short records a truncation error unless n bytes remain at pos.
// Reports true when the cursor is already failed or would overrun.
func (c *cursor) short(n int) bool {
	if c.err != nil {
		return true
	}
	if n < 0 || c.pos+n > len(c.buf) {
		c.err = fmt.Errorf("%w: need %d bytes at offset %d of %d", ErrTruncated, n, c.pos, len(c.buf))
		return true
	}
	return false
}

func (c *cursor) u8() uint8 {
	if c.short(1) {
		return 0
	}
	v := c.buf[c.pos]
	c.pos++
	return v
}

func (c *cursor) u16() uint16 {
	if c.short(2) {
		return 0
	}
	v := binary.LittleEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v
}

func (c *cursor) u32() uint32 {
	if c.short(4) {
		return 0
	}
	v := binary.LittleEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v
}

// bytes returns the next n bytes without copying. Callers that retain the
// result past the life of the container buffer must copy it themselves.
func (c *cursor) bytes(n int) []byte {
	if c.short(n) {
		return nil
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v
}

func (c *cursor) skip(n int) {
	if c.short(n) {
		return
	}
	c.pos += n
}

// seek moves to an absolute offset within the buffer.
func (c *cursor) seek(off int) {
	if c.err != nil {
		return
	}
	if off < 0 || off > len(c.buf) {
		c.err = fmt.Errorf("%w: seek to %d of %d", ErrTruncated, off, len(c.buf))
		return
	}
	c.pos = off
}

func (c *cursor) remaining() int {
	if c.err != nil {
		return 0
	}
	return len(c.buf) - c.pos
}

func (c *cursor) Err() error {
	return c.err
}
