// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestDecodePrimitiveRoundTrips checks that every PrimitiveType code
// except DateTime (covered by TestBitReaderDateTimePacking) round-trips
// bytes to value for the width the format documents.
func TestDecodePrimitiveRoundTrips(t *testing.T) {
	tests := []struct {
		name string
		code PrimitiveTypeEnumeration
		data []byte
		want Value
	}{
		{"Boolean", PrimitiveTypeBoolean, []byte{1}, BoolValue{V: true}},
		{"Byte", PrimitiveTypeByte, []byte{0xAB}, UintValue{V: 0xAB, Bits: 8}},
		{"Char", PrimitiveTypeChar, u16('Z'), CharValue{V: 'Z'}},
		{"Decimal", PrimitiveTypeDecimal, lpstr("12.50"), DecimalValue{V: "12.50"}},
		{"Double", PrimitiveTypeDouble, u64(math.Float64bits(1.5)), FloatValue{V: 1.5, Bits: 64}},
		{"Int16", PrimitiveTypeInt16, []byte{0xFF, 0xFF}, IntValue{V: -1, Bits: 16}},
		{"Int32", PrimitiveTypeInt32, i32(-7), IntValue{V: -7, Bits: 32}},
		{"Int64", PrimitiveTypeInt64, i64(-7), IntValue{V: -7, Bits: 64}},
		{"SByte", PrimitiveTypeSByte, []byte{0xFF}, IntValue{V: -1, Bits: 8}},
		{"Single", PrimitiveTypeSingle, u32(math.Float32bits(2.5)), FloatValue{V: 2.5, Bits: 32}},
		{"TimeSpan", PrimitiveTypeTimeSpan, i64(100), TimeSpanValue{Ticks: 100}},
		{"UInt16", PrimitiveTypeUInt16, u16(65000), UintValue{V: 65000, Bits: 16}},
		{"UInt32", PrimitiveTypeUInt32, u32(4000000000), UintValue{V: 4000000000, Bits: 32}},
		{"UInt64", PrimitiveTypeUInt64, u64(1 << 63), UintValue{V: 1 << 63, Bits: 64}},
		{"Null", PrimitiveTypeNull, nil, NullValue{}},
		{"String", PrimitiveTypeString, lpstr("hi"), StringValue{V: "hi"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewBitReader(tt.data)
			v, err := decodePrimitive(r, tt.code)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}
}

func TestDecodePrimitiveInvalidCode(t *testing.T) {
	r := NewBitReader(nil)
	_, err := decodePrimitive(r, PrimitiveTypeEnumeration(4))
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrInvalidPrimitiveCode, nerr.Kind)
}
