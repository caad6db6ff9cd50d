package w3e

import (
	"encoding/binary"
	"fmt"
	"math"
)

// bitReader reads unsigned integers of arbitrary bit width from a byte slice.
// Bits are consumed MSB-first within each byte; multi-byte accessors compose
// their bytes little-endian (low byte first), matching the W3E wire order.
//
// A bitReader is read-only over a borrowed buffer. Writing goes through the
// separate bitWriter type, so using a stream in the wrong direction is a
// compile-time error rather than a runtime mode check.
type bitReader struct {
	buf []byte
	pos int // current bit position
}

func newBitReader(b []byte) *bitReader { return &bitReader{buf: b} }

// read reads n bits (0 ≤ n ≤ 32) and returns them as a uint32.
// Library code must never panic on untrusted input: reading past the end of
// the buffer returns ErrUnexpectedEOF, never a value assembled from fewer
// bits than requested.
func (r *bitReader) read(n int) (uint32, error) {
	if n == 0 {
		return 0, nil
	}
	end := r.pos + n
	if end > len(r.buf)*8 {
		return 0, fmt.Errorf("bitReader: read %d bits at pos %d overflows buffer (%d bytes): %w",
			n, r.pos, len(r.buf), ErrUnexpectedEOF)
	}
	// Fast path: byte-aligned whole-byte read.
	if r.pos%8 == 0 && n == 8 {
		off := r.pos / 8
		r.pos = end
		return uint32(r.buf[off]), nil
	}
	// Slow path: bit-by-bit for non-aligned or non-standard widths.
	var v uint32
	for i := 0; i < n; i++ {
		byteIdx := (r.pos + i) / 8
		bitIdx := 7 - ((r.pos + i) % 8) // MSB first within byte
		bit := (r.buf[byteIdx] >> bitIdx) & 1
		v = (v << 1) | uint32(bit)
	}
	r.pos = end
	return v, nil
}

// peek reads n bits without advancing the cursor.
func (r *bitReader) peek(n int) (uint32, error) {
	saved := r.pos
	v, err := r.read(n)
	r.pos = saved
	return v, err
}

func (r *bitReader) readU8() (uint8, error) {
	v, err := r.read(8)
	return uint8(v), err
}

func (r *bitReader) readI8() (int8, error) {
	v, err := r.read(8)
	return int8(v), err
}

// readU16 reads two bytes little-endian.
func (r *bitReader) readU16() (uint16, error) {
	// Fast path: byte-aligned.
	if r.pos%8 == 0 && r.pos+16 <= len(r.buf)*8 {
		off := r.pos / 8
		r.pos += 16
		return binary.LittleEndian.Uint16(r.buf[off:]), nil
	}
	lo, err := r.read(8)
	if err != nil {
		return 0, err
	}
	hi, err := r.read(8)
	if err != nil {
		return 0, err
	}
	return uint16(hi)<<8 | uint16(lo), nil
}

func (r *bitReader) readI16() (int16, error) {
	v, err := r.readU16()
	return int16(v), err
}

// readU32 reads four bytes little-endian.
func (r *bitReader) readU32() (uint32, error) {
	if r.pos%8 == 0 && r.pos+32 <= len(r.buf)*8 {
		off := r.pos / 8
		r.pos += 32
		return binary.LittleEndian.Uint32(r.buf[off:]), nil
	}
	var v uint32
	for shift := 0; shift < 32; shift += 8 {
		b, err := r.read(8)
		if err != nil {
			return 0, err
		}
		v |= b << shift
	}
	return v, nil
}

// readF32 reads a little-endian IEEE-754 single-precision float.
func (r *bitReader) readF32() (float32, error) {
	v, err := r.readU32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// readChar reads one byte as a character code. Tags are raw bytes on the
// wire, not necessarily printable ASCII.
func (r *bitReader) readChar() (byte, error) {
	v, err := r.read(8)
	return byte(v), err
}

// readTag4 reads a 4-character palette tag, e.g. "Oaby".
func (r *bitReader) readTag4() (string, error) {
	var tag [4]byte
	for i := range tag {
		c, err := r.readChar()
		if err != nil {
			return "", err
		}
		tag[i] = c
	}
	return string(tag[:]), nil
}

// readTag4Array reads count consecutive 4-character tags. The remaining
// buffer is checked up front so a hostile count fails before any allocation.
func (r *bitReader) readTag4Array(count int) ([]string, error) {
	if count < 0 || int64(r.pos)+int64(count)*32 > int64(len(r.buf))*8 {
		return nil, fmt.Errorf("bitReader: %d tags need %d bytes at pos %d (buf=%d bytes): %w",
			count, count*4, r.pos/8, len(r.buf), ErrUnexpectedEOF)
	}
	tags := make([]string, count)
	for i := range tags {
		t, err := r.readTag4()
		if err != nil {
			return nil, err
		}
		tags[i] = t
	}
	return tags, nil
}

// bitWriter appends bits MSB-first within each byte to an owned growable
// buffer. Capacity doubles when exhausted so an encode of N bytes does O(N)
// total copying; a read-direction API does not exist on this type.
type bitWriter struct {
	buf []byte // zero-initialized; len(buf) is the current capacity in bytes
	pos int    // current bit position
}

func newBitWriter() *bitWriter { return &bitWriter{} }

// grow ensures the buffer holds at least n more bits past pos.
func (w *bitWriter) grow(n int) {
	need := (w.pos + n + 7) / 8
	if need <= len(w.buf) {
		return
	}
	newCap := len(w.buf) * 2
	if newCap < 64 {
		newCap = 64
	}
	for newCap < need {
		newCap *= 2
	}
	nb := make([]byte, newCap)
	copy(nb, w.buf)
	w.buf = nb
}

// writeBits appends the low n bits of v (0 ≤ n ≤ 32), MSB first. Bits of v
// above n are ignored, so an oversized value truncates deterministically
// instead of bleeding into neighbouring fields.
func (w *bitWriter) writeBits(v uint32, n int) {
	if n == 0 {
		return
	}
	w.grow(n)
	// Fast path: byte-aligned whole-byte write.
	if w.pos%8 == 0 && n == 8 {
		w.buf[w.pos/8] = byte(v)
		w.pos += 8
		return
	}
	for i := n - 1; i >= 0; i-- {
		if (v>>i)&1 == 1 {
			byteIdx := w.pos / 8
			bitIdx := 7 - (w.pos % 8)
			w.buf[byteIdx] |= 1 << bitIdx
		}
		w.pos++
	}
}

func (w *bitWriter) writeU8(v uint8) { w.writeBits(uint32(v), 8) }
func (w *bitWriter) writeI8(v int8)  { w.writeBits(uint32(uint8(v)), 8) }

// writeU16 writes two bytes little-endian.
func (w *bitWriter) writeU16(v uint16) {
	w.writeU8(uint8(v))
	w.writeU8(uint8(v >> 8))
}

func (w *bitWriter) writeI16(v int16) { w.writeU16(uint16(v)) }

// writeU32 writes four bytes little-endian.
func (w *bitWriter) writeU32(v uint32) {
	for shift := 0; shift < 32; shift += 8 {
		w.writeU8(uint8(v >> shift))
	}
}

// writeF32 writes a little-endian IEEE-754 single-precision float.
func (w *bitWriter) writeF32(f float32) {
	w.writeU32(math.Float32bits(f))
}

func (w *bitWriter) writeChar(c byte) { w.writeU8(c) }

// writeTag4 writes a palette tag, which must be exactly 4 bytes.
func (w *bitWriter) writeTag4(tag string) error {
	if len(tag) != 4 {
		return fmt.Errorf("tag %q: need exactly 4 characters, got %d: %w",
			tag, len(tag), ErrInvalidFieldValue)
	}
	for i := 0; i < 4; i++ {
		w.writeChar(tag[i])
	}
	return nil
}

func (w *bitWriter) writeTag4Array(tags []string) error {
	for i, t := range tags {
		if err := w.writeTag4(t); err != nil {
			return fmt.Errorf("tag %d: %w", i, err)
		}
	}
	return nil
}

// bytes returns the written stream truncated to the exact byte length
// implied by the bit cursor (ceiling to the next byte). The writer must not
// be used again afterwards.
func (w *bitWriter) bytes() []byte {
	return w.buf[:(w.pos+7)/8]
}
