// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBitReaderPrimitiveRoundTrips(t *testing.T) {
	data := concat(
		[]byte{0x01},
		i32(-12345),
		u64(0xDEADBEEFCAFEBABE),
	)
	r := NewBitReader(data)

	u8, err := r.ReadU8()
	assert.NoError(t, err)
	assert.Equal(t, uint8(1), u8)

	i32v, err := r.ReadI32LE()
	assert.NoError(t, err)
	assert.Equal(t, int32(-12345), i32v)

	u64v, err := r.ReadU64LE()
	assert.NoError(t, err)
	assert.Equal(t, uint64(0xDEADBEEFCAFEBABE), u64v)
}

func TestBitReaderFloatRoundTrips(t *testing.T) {
	data := concat(u32(math.Float32bits(3.5)), u64(math.Float64bits(-2.25)))
	r := NewBitReader(data)

	f32, err := r.ReadF32LE()
	assert.NoError(t, err)
	assert.Equal(t, float32(3.5), f32)

	f64, err := r.ReadF64LE()
	assert.NoError(t, err)
	assert.Equal(t, float64(-2.25), f64)
}

func TestBitReaderLengthPrefixedString(t *testing.T) {
	r := NewBitReader(lpstr("hello"))
	s, err := r.ReadLengthPrefixedString()
	assert.NoError(t, err)
	assert.Equal(t, "hello", s)
}

func Test7BitEncodedLengthMultiByte(t *testing.T) {
	// 200 encodes as 0xC8, 0x01: low 7 bits of 200 with the
	// continuation bit set, then the remaining high bit.
	r := NewBitReader([]byte{0xC8, 0x01})
	n, err := r.Read7BitEncodedLength()
	assert.NoError(t, err)
	assert.Equal(t, 200, n)
}

func Test7BitEncodedLengthTooLong(t *testing.T) {
	r := NewBitReader([]byte{0x80, 0x80, 0x80, 0x80, 0x80, 0x01})
	_, err := r.Read7BitEncodedLength()
	assert.Error(t, err)
}

func TestBitReaderCharSurrogatePair(t *testing.T) {
	// U+1F600 encodes as the surrogate pair 0xD83D 0xDE00.
	r := NewBitReader(concat(u16(0xD83D), u16(0xDE00)))
	ru, err := r.ReadChar()
	assert.NoError(t, err)
	assert.Equal(t, rune(0x1F600), ru)
}

func TestBitReaderCharBMP(t *testing.T) {
	r := NewBitReader(u16('A'))
	ru, err := r.ReadChar()
	assert.NoError(t, err)
	assert.Equal(t, rune('A'), ru)
}

func TestBitReaderDateTimePacking(t *testing.T) {
	ticks := int64(636000000000000000)
	raw := uint64(ticks) | (uint64(DateTimeKindUTC) << 62)
	r := NewBitReader(u64(raw))
	dt, err := r.ReadDateTime()
	assert.NoError(t, err)
	assert.Equal(t, ticks, dt.Ticks)
	assert.Equal(t, DateTimeKindUTC, dt.Kind)
}

func TestBitReaderUnexpectedEndOfStream(t *testing.T) {
	r := NewBitReader([]byte{0x01, 0x02})
	_, err := r.ReadU32LE()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrUnexpectedEndOfStream, nerr.Kind)
}

func TestBitReaderInvalidUTF8String(t *testing.T) {
	r := NewBitReader([]byte{0x02, 0xff, 0xfe})
	_, err := r.ReadLengthPrefixedString()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrInvalidUTF8, nerr.Kind)
}
