// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"golang.org/x/text/encoding/unicode"
)

// utf16LEDecoder decodes little-endian UTF-16 code units, one code
// unit (or one surrogate pair) at a time.
var utf16LEDecoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM).NewDecoder()

// BitReader is a positioned byte-cursor over an in-memory MS-NRBF
// stream. It never seeks backwards and never blocks: the caller must
// hand it a fully materialized buffer rather than an io.Reader.
type BitReader struct {
	data []byte
	pos  int64
}

// NewBitReader wraps data for sequential reading from offset 0.
func NewBitReader(data []byte) *BitReader {
	return &BitReader{data: data}
}

// Pos returns the current byte offset, used to stamp errors.
func (r *BitReader) Pos() int64 { return r.pos }

// Len returns the total number of bytes in the underlying buffer.
func (r *BitReader) Len() int64 { return int64(len(r.data)) }

// Remaining returns the number of unread bytes.
func (r *BitReader) Remaining() int64 { return r.Len() - r.pos }

func (r *BitReader) need(n int64) error {
	if r.pos+n > r.Len() || n < 0 {
		return newErr(ErrUnexpectedEndOfStream, r.pos)
	}
	return nil
}

func (r *BitReader) take(n int64) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	b := r.data[r.pos : r.pos+n]
	r.pos += n
	return b, nil
}

// ReadU8 reads one unsigned byte.
func (r *BitReader) ReadU8() (uint8, error) {
	b, err := r.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// ReadI8 reads one signed byte.
func (r *BitReader) ReadI8() (int8, error) {
	v, err := r.ReadU8()
	return int8(v), err
}

// ReadU16LE reads a little-endian uint16.
func (r *BitReader) ReadU16LE() (uint16, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(b), nil
}

// ReadI16LE reads a little-endian int16.
func (r *BitReader) ReadI16LE() (int16, error) {
	v, err := r.ReadU16LE()
	return int16(v), err
}

// ReadU32LE reads a little-endian uint32.
func (r *BitReader) ReadU32LE() (uint32, error) {
	b, err := r.take(4)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(b), nil
}

// ReadI32LE reads a little-endian int32.
func (r *BitReader) ReadI32LE() (int32, error) {
	v, err := r.ReadU32LE()
	return int32(v), err
}

// ReadU64LE reads a little-endian uint64.
func (r *BitReader) ReadU64LE() (uint64, error) {
	b, err := r.take(8)
	if err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint64(b), nil
}

// ReadI64LE reads a little-endian int64.
func (r *BitReader) ReadI64LE() (int64, error) {
	v, err := r.ReadU64LE()
	return int64(v), err
}

// ReadF32LE reads a little-endian IEEE-754 single precision float.
func (r *BitReader) ReadF32LE() (float32, error) {
	v, err := r.ReadU32LE()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

// ReadF64LE reads a little-endian IEEE-754 double precision float.
func (r *BitReader) ReadF64LE() (float64, error) {
	v, err := r.ReadU64LE()
	if err != nil {
		return 0, err
	}
	return math.Float64frombits(v), nil
}

// ReadBool reads one byte; zero is false, anything else is true.
func (r *BitReader) ReadBool() (bool, error) {
	v, err := r.ReadU8()
	if err != nil {
		return false, err
	}
	return v != 0, nil
}

// ReadChar reads a single UTF-16 code point, consuming a second code
// unit when the first is a high surrogate.
func (r *BitReader) ReadChar() (rune, error) {
	b, err := r.take(2)
	if err != nil {
		return 0, err
	}
	u1 := binary.LittleEndian.Uint16(b)
	raw := append([]byte(nil), b...)
	if u1 >= 0xD800 && u1 <= 0xDBFF {
		b2, err := r.take(2)
		if err != nil {
			return 0, err
		}
		raw = append(raw, b2...)
	}
	decoded, err := utf16LEDecoder.Bytes(raw)
	if err != nil {
		return 0, newMsgErr(ErrInvalidUTF8, r.pos, "invalid UTF-16 code unit")
	}
	ru, size := utf8.DecodeRune(decoded)
	if ru == utf8.RuneError && size <= 1 {
		return 0, newMsgErr(ErrInvalidUTF8, r.pos, "invalid UTF-16 surrogate pair")
	}
	return ru, nil
}

// ReadDateTime reads a packed 64-bit DateTime: the low 62 bits are
// ticks since 0001-01-01, the top 2 bits are the DateTimeKind.
func (r *BitReader) ReadDateTime() (DateTimeValue, error) {
	raw, err := r.ReadU64LE()
	if err != nil {
		return DateTimeValue{}, err
	}
	return DateTimeValue{
		Ticks: int64(raw &^ (uint64(3) << 62)),
		Kind:  DateTimeKind(raw >> 62),
	}, nil
}

// ReadTimeSpan reads a signed 64-bit tick count.
func (r *BitReader) ReadTimeSpan() (int64, error) {
	return r.ReadI64LE()
}

// ReadDecimal reads a length-prefixed ASCII decimal literal (optional
// leading sign, optional decimal point, ASCII digits).
func (r *BitReader) ReadDecimal() (string, error) {
	return r.ReadLengthPrefixedString()
}

// Read7BitEncodedLength reads a 7-bit variable-length unsigned
// integer: 1-5 bytes, each contributing its low 7 bits, the high bit
// of each byte signaling that another byte follows.
func (r *BitReader) Read7BitEncodedLength() (int, error) {
	var result uint32
	for shift := uint(0); shift < 35; shift += 7 {
		b, err := r.ReadU8()
		if err != nil {
			return 0, err
		}
		result |= uint32(b&0x7f) << shift
		if b&0x80 == 0 {
			return int(result), nil
		}
	}
	return 0, newMsgErr(ErrUnexpectedEndOfStream, r.pos, "7-bit length prefix too long")
}

// ReadLengthPrefixedString reads a 7-bit length prefix followed by
// that many UTF-8 bytes.
func (r *BitReader) ReadLengthPrefixedString() (string, error) {
	n, err := r.Read7BitEncodedLength()
	if err != nil {
		return "", err
	}
	b, err := r.take(int64(n))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", newMsgErr(ErrInvalidUTF8, r.pos, "malformed UTF-8 string")
	}
	return string(b), nil
}

// ReadBytes reads n raw bytes.
func (r *BitReader) ReadBytes(n int64) ([]byte, error) {
	b, err := r.take(n)
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out, nil
}
