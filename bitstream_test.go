package w3e

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

// TestBitReaderReadZeroBits verifies that reading 0 bits returns 0 without advancing position.
func TestBitReaderReadZeroBits(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	v, err := r.read(0)
	if err != nil {
		t.Fatalf("read(0) error: %v", err)
	}
	if v != 0 {
		t.Errorf("read(0): got %d, want 0", v)
	}
	if r.pos != 0 {
		t.Errorf("read(0) advanced pos to %d, want 0", r.pos)
	}
}

// TestBitReaderReadSingleByte verifies reading all 8 bits of a single byte.
func TestBitReaderReadSingleByte(t *testing.T) {
	r := newBitReader([]byte{0b10110100})
	v, err := r.read(8)
	if err != nil {
		t.Fatalf("read(8) error: %v", err)
	}
	if v != 0b10110100 {
		t.Errorf("read(8): got %08b, want 10110100", v)
	}
}

// TestBitReaderReadMSBFirst verifies that bits are consumed MSB-first within each byte.
func TestBitReaderReadMSBFirst(t *testing.T) {
	// 0b10000000: only the MSB is set
	r := newBitReader([]byte{0b10000000})
	v, err := r.read(1)
	if err != nil {
		t.Fatalf("read(1) error: %v", err)
	}
	if v != 1 {
		t.Errorf("read(1) from 0x80: got %d, want 1", v)
	}
	v, err = r.read(1)
	if err != nil {
		t.Fatalf("second read(1) error: %v", err)
	}
	if v != 0 {
		t.Errorf("second read(1) from 0x80: got %d, want 0", v)
	}
}

// TestBitReaderReadCrossesBytes verifies reading spans two bytes correctly.
func TestBitReaderReadCrossesBytes(t *testing.T) {
	// bytes: 0b00000001 0b10000000
	// reading 10 bits starting at bit 0: 0000000110 = 6
	r := newBitReader([]byte{0x01, 0x80})
	v, err := r.read(10)
	if err != nil {
		t.Fatalf("read(10) error: %v", err)
	}
	if v != 0b0000000110 {
		t.Errorf("read(10): got %010b (%d), want 0000000110 (6)", v, v)
	}
}

// TestBitReaderSequentialReads verifies that multiple sequential reads accumulate position correctly.
func TestBitReaderSequentialReads(t *testing.T) {
	// 0xAB = 0b10101011
	r := newBitReader([]byte{0xAB})
	cases := []struct {
		bits int
		want uint32
	}{
		{1, 1}, // MSB: 1
		{1, 0},
		{1, 1},
		{1, 0},
		{1, 1},
		{1, 0},
		{1, 1},
		{1, 1}, // LSB: 1
	}
	for i, tc := range cases {
		v, err := r.read(tc.bits)
		if err != nil {
			t.Fatalf("step %d read(%d) error: %v", i, tc.bits, err)
		}
		if v != tc.want {
			t.Errorf("step %d read(%d): got %d, want %d", i, tc.bits, v, tc.want)
		}
	}
}

// TestBitReaderOverflowReturnsError verifies that reading past the buffer returns
// ErrUnexpectedEOF, never a value assembled from fewer bits than requested.
func TestBitReaderOverflowReturnsError(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	_, err := r.read(9) // 9 bits from a 1-byte (8-bit) buffer
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("read(9) from 1-byte buffer: got %v, want ErrUnexpectedEOF", err)
	}
}

// TestBitReaderOverflowEmptyBuffer verifies error on read from empty buffer.
func TestBitReaderOverflowEmptyBuffer(t *testing.T) {
	r := newBitReader([]byte{})
	_, err := r.read(1)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("read(1) from empty buffer: got %v, want ErrUnexpectedEOF", err)
	}
}

// TestBitReaderPeek verifies peek returns the next bits without advancing the cursor.
func TestBitReaderPeek(t *testing.T) {
	r := newBitReader([]byte{0xB3, 0x20})
	p, err := r.peek(5)
	if err != nil {
		t.Fatalf("peek(5) error: %v", err)
	}
	if r.pos != 0 {
		t.Errorf("peek(5) advanced pos to %d, want 0", r.pos)
	}
	v, err := r.read(5)
	if err != nil {
		t.Fatalf("read(5) error: %v", err)
	}
	if p != v {
		t.Errorf("peek(5)=%d but read(5)=%d", p, v)
	}
}

// TestBitReaderPeekOverflowRestoresPos verifies a failed peek leaves the cursor untouched.
func TestBitReaderPeekOverflowRestoresPos(t *testing.T) {
	r := newBitReader([]byte{0xFF})
	if _, err := r.read(4); err != nil {
		t.Fatalf("read(4) error: %v", err)
	}
	if _, err := r.peek(8); !errors.Is(err, ErrUnexpectedEOF) {
		t.Fatalf("peek(8) past end: got %v, want ErrUnexpectedEOF", err)
	}
	if r.pos != 4 {
		t.Errorf("failed peek moved pos to %d, want 4", r.pos)
	}
}

// TestBitReaderLittleEndianWords verifies multi-byte accessors compose bytes low-first.
func TestBitReaderLittleEndianWords(t *testing.T) {
	r := newBitReader([]byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12})
	u16, err := r.readU16()
	if err != nil {
		t.Fatalf("readU16 error: %v", err)
	}
	if u16 != 0x1234 {
		t.Errorf("readU16: got 0x%04X, want 0x1234", u16)
	}
	u32, err := r.readU32()
	if err != nil {
		t.Fatalf("readU32 error: %v", err)
	}
	if u32 != 0x12345678 {
		t.Errorf("readU32: got 0x%08X, want 0x12345678", u32)
	}
}

// TestBitReaderLittleEndianUnaligned verifies the word accessors keep byte order
// when the cursor is not byte-aligned and the fast path cannot apply.
func TestBitReaderLittleEndianUnaligned(t *testing.T) {
	// One pad bit, then 0x34 0x12 shifted left one bit across three bytes:
	// 0 0011010 0 0001001 0 .......
	r := newBitReader([]byte{0x1A, 0x09, 0x00})
	if _, err := r.read(1); err != nil {
		t.Fatalf("read(1) error: %v", err)
	}
	u16, err := r.readU16()
	if err != nil {
		t.Fatalf("readU16 error: %v", err)
	}
	if u16 != 0x1234 {
		t.Errorf("unaligned readU16: got 0x%04X, want 0x1234", u16)
	}
}

// TestBitReaderSignedReads verifies sign extension of the narrow signed accessors.
func TestBitReaderSignedReads(t *testing.T) {
	r := newBitReader([]byte{0x80, 0xFF, 0xFF, 0x00, 0x80})
	i8, err := r.readI8()
	if err != nil {
		t.Fatalf("readI8 error: %v", err)
	}
	if i8 != -128 {
		t.Errorf("readI8(0x80): got %d, want -128", i8)
	}
	i16, err := r.readI16()
	if err != nil {
		t.Fatalf("readI16 error: %v", err)
	}
	if i16 != -1 {
		t.Errorf("readI16(0xFFFF): got %d, want -1", i16)
	}
	i16, err = r.readI16()
	if err != nil {
		t.Fatalf("second readI16 error: %v", err)
	}
	if i16 != -32768 {
		t.Errorf("readI16(0x8000 LE): got %d, want -32768", i16)
	}
}

// TestBitReaderReadF32 verifies little-endian IEEE-754 float reads.
func TestBitReaderReadF32(t *testing.T) {
	// -128.0 = 0xC3000000, little-endian on the wire.
	r := newBitReader([]byte{0x00, 0x00, 0x00, 0xC3})
	f, err := r.readF32()
	if err != nil {
		t.Fatalf("readF32 error: %v", err)
	}
	if f != -128 {
		t.Errorf("readF32: got %g, want -128", f)
	}
}

// TestBitReaderReadTag4 verifies 4-character tag reads.
func TestBitReaderReadTag4(t *testing.T) {
	r := newBitReader([]byte("OabyOclm"))
	tag, err := r.readTag4()
	if err != nil {
		t.Fatalf("readTag4 error: %v", err)
	}
	if tag != "Oaby" {
		t.Errorf("readTag4: got %q, want %q", tag, "Oaby")
	}
	tags, err := r.readTag4Array(1)
	if err != nil {
		t.Fatalf("readTag4Array error: %v", err)
	}
	if len(tags) != 1 || tags[0] != "Oclm" {
		t.Errorf("readTag4Array: got %v, want [Oclm]", tags)
	}
}

// TestBitReaderReadTag4ArrayOverflow verifies a count implying a read past the
// buffer fails up front with ErrUnexpectedEOF.
func TestBitReaderReadTag4ArrayOverflow(t *testing.T) {
	r := newBitReader([]byte("Oaby"))
	_, err := r.readTag4Array(2)
	if !errors.Is(err, ErrUnexpectedEOF) {
		t.Errorf("readTag4Array(2) on 4-byte buffer: got %v, want ErrUnexpectedEOF", err)
	}
}

// TestBitWriterMSBFirst verifies writeBits packs MSB-first within each byte.
func TestBitWriterMSBFirst(t *testing.T) {
	w := newBitWriter()
	w.writeBits(1, 1)
	w.writeBits(0, 1)
	w.writeBits(0b110100, 6)
	got := w.bytes()
	if !bytes.Equal(got, []byte{0b10110100}) {
		t.Errorf("bytes(): got %08b, want 10110100", got)
	}
}

// TestBitWriterTruncatesOversizedValue verifies bits above n are discarded so
// an oversized value cannot bleed into neighbouring fields.
func TestBitWriterTruncatesOversizedValue(t *testing.T) {
	w := newBitWriter()
	w.writeBits(0xFFFF, 4) // only the low 4 bits survive
	w.writeBits(0, 4)
	got := w.bytes()
	if !bytes.Equal(got, []byte{0xF0}) {
		t.Errorf("bytes(): got %02X, want F0", got)
	}
}

// TestBitWriterPartialFinalByte verifies bytes() rounds the bit cursor up to
// the next whole byte.
func TestBitWriterPartialFinalByte(t *testing.T) {
	w := newBitWriter()
	w.writeBits(0b101, 3)
	got := w.bytes()
	if len(got) != 1 {
		t.Fatalf("bytes(): got %d bytes, want 1", len(got))
	}
	if got[0] != 0b10100000 {
		t.Errorf("bytes(): got %08b, want 10100000", got[0])
	}
}

// TestBitWriterLittleEndianWords verifies the word writers mirror the readers.
func TestBitWriterLittleEndianWords(t *testing.T) {
	w := newBitWriter()
	w.writeU16(0x1234)
	w.writeU32(0x12345678)
	w.writeF32(-128)
	want := []byte{0x34, 0x12, 0x78, 0x56, 0x34, 0x12, 0x00, 0x00, 0x00, 0xC3}
	if !bytes.Equal(w.bytes(), want) {
		t.Errorf("bytes():\n got %X\nwant %X", w.bytes(), want)
	}
}

// TestBitWriterSignedWords verifies the signed writers mirror the signed readers.
func TestBitWriterSignedWords(t *testing.T) {
	w := newBitWriter()
	w.writeI8(-128)
	w.writeI16(-32768)
	w.writeI16(-1)

	r := newBitReader(w.bytes())
	i8, err := r.readI8()
	if err != nil || i8 != -128 {
		t.Errorf("readI8: got %d (err %v), want -128", i8, err)
	}
	i16, err := r.readI16()
	if err != nil || i16 != -32768 {
		t.Errorf("readI16: got %d (err %v), want -32768", i16, err)
	}
	i16, err = r.readI16()
	if err != nil || i16 != -1 {
		t.Errorf("second readI16: got %d (err %v), want -1", i16, err)
	}
}

// TestBitWriterGrowth verifies geometric growth preserves earlier bytes across
// many reallocations.
func TestBitWriterGrowth(t *testing.T) {
	w := newBitWriter()
	for i := 0; i < 1000; i++ {
		w.writeU8(uint8(i))
	}
	got := w.bytes()
	if len(got) != 1000 {
		t.Fatalf("bytes(): got %d bytes, want 1000", len(got))
	}
	for i, b := range got {
		if b != uint8(i) {
			t.Fatalf("byte %d: got 0x%02X, want 0x%02X", i, b, uint8(i))
		}
	}
}

// TestBitWriterTagLength verifies non-4-byte tags are rejected.
func TestBitWriterTagLength(t *testing.T) {
	w := newBitWriter()
	if err := w.writeTag4("Oab"); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("writeTag4(3 chars): got %v, want ErrInvalidFieldValue", err)
	}
	if err := w.writeTag4Array([]string{"Oaby", "toolong"}); !errors.Is(err, ErrInvalidFieldValue) {
		t.Errorf("writeTag4Array with bad tag: got %v, want ErrInvalidFieldValue", err)
	}
}

// TestBitStreamRoundTripMixedWidths writes a mixed-width sequence and reads it
// back bit-for-bit.
func TestBitStreamRoundTripMixedWidths(t *testing.T) {
	w := newBitWriter()
	w.writeBits(1, 1)
	w.writeBits(0x1F, 5)
	w.writeBits(0, 2) // pad to the byte boundary
	w.writeU16(0x2000)
	w.writeU32(0xDEADBEEF)
	w.writeF32(float32(math.Pi))
	w.writeChar('O')
	if err := w.writeTag4("Oaby"); err != nil {
		t.Fatalf("writeTag4: %v", err)
	}

	r := newBitReader(w.bytes())
	checks := []struct {
		name string
		got  func() (uint32, error)
		want uint32
	}{
		{"bit", func() (uint32, error) { return r.read(1) }, 1},
		{"5bits", func() (uint32, error) { return r.read(5) }, 0x1F},
		{"pad", func() (uint32, error) { return r.read(2) }, 0},
		{"u16", func() (uint32, error) { v, err := r.readU16(); return uint32(v), err }, 0x2000},
		{"u32", func() (uint32, error) { return r.readU32() }, 0xDEADBEEF},
	}
	for _, tc := range checks {
		v, err := tc.got()
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if v != tc.want {
			t.Errorf("%s: got 0x%X, want 0x%X", tc.name, v, tc.want)
		}
	}
	f, err := r.readF32()
	if err != nil || f != float32(math.Pi) {
		t.Errorf("f32: got %v (err %v), want %v", f, err, float32(math.Pi))
	}
	c, err := r.readChar()
	if err != nil || c != 'O' {
		t.Errorf("char: got %q (err %v), want 'O'", c, err)
	}
	tag, err := r.readTag4()
	if err != nil || tag != "Oaby" {
		t.Errorf("tag: got %q (err %v), want Oaby", tag, err)
	}
}
