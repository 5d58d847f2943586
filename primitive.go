// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// PrimitiveTypeEnumeration identifies the shape of a scalar value
// inline in the stream, per [MS-NRBF] 2.1.2.3.
type PrimitiveTypeEnumeration byte

// PrimitiveTypeEnumeration codes.
const (
	PrimitiveTypeBoolean   PrimitiveTypeEnumeration = 1
	PrimitiveTypeByte      PrimitiveTypeEnumeration = 2
	PrimitiveTypeChar      PrimitiveTypeEnumeration = 3
	PrimitiveTypeDecimal   PrimitiveTypeEnumeration = 5
	PrimitiveTypeDouble    PrimitiveTypeEnumeration = 6
	PrimitiveTypeInt16     PrimitiveTypeEnumeration = 7
	PrimitiveTypeInt32     PrimitiveTypeEnumeration = 8
	PrimitiveTypeInt64     PrimitiveTypeEnumeration = 9
	PrimitiveTypeSByte     PrimitiveTypeEnumeration = 10
	PrimitiveTypeSingle    PrimitiveTypeEnumeration = 11
	PrimitiveTypeTimeSpan  PrimitiveTypeEnumeration = 12
	PrimitiveTypeDateTime  PrimitiveTypeEnumeration = 13
	PrimitiveTypeUInt16    PrimitiveTypeEnumeration = 14
	PrimitiveTypeUInt32    PrimitiveTypeEnumeration = 15
	PrimitiveTypeUInt64    PrimitiveTypeEnumeration = 16
	PrimitiveTypeNull      PrimitiveTypeEnumeration = 17
	PrimitiveTypeString    PrimitiveTypeEnumeration = 18
)

func (t PrimitiveTypeEnumeration) String() string {
	switch t {
	case PrimitiveTypeBoolean:
		return "Boolean"
	case PrimitiveTypeByte:
		return "Byte"
	case PrimitiveTypeChar:
		return "Char"
	case PrimitiveTypeDecimal:
		return "Decimal"
	case PrimitiveTypeDouble:
		return "Double"
	case PrimitiveTypeInt16:
		return "Int16"
	case PrimitiveTypeInt32:
		return "Int32"
	case PrimitiveTypeInt64:
		return "Int64"
	case PrimitiveTypeSByte:
		return "SByte"
	case PrimitiveTypeSingle:
		return "Single"
	case PrimitiveTypeTimeSpan:
		return "TimeSpan"
	case PrimitiveTypeDateTime:
		return "DateTime"
	case PrimitiveTypeUInt16:
		return "UInt16"
	case PrimitiveTypeUInt32:
		return "UInt32"
	case PrimitiveTypeUInt64:
		return "UInt64"
	case PrimitiveTypeNull:
		return "Null"
	case PrimitiveTypeString:
		return "String"
	default:
		return "Unknown"
	}
}

// decodePrimitive maps a PrimitiveTypeEnumeration to the matching
// BitReader call.
func decodePrimitive(r *BitReader, t PrimitiveTypeEnumeration) (Value, error) {
	switch t {
	case PrimitiveTypeBoolean:
		v, err := r.ReadBool()
		if err != nil {
			return nil, err
		}
		return BoolValue{V: v}, nil

	case PrimitiveTypeByte:
		v, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		return UintValue{V: uint64(v), Bits: 8}, nil

	case PrimitiveTypeChar:
		v, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		return CharValue{V: v}, nil

	case PrimitiveTypeDecimal:
		v, err := r.ReadDecimal()
		if err != nil {
			return nil, err
		}
		return DecimalValue{V: v}, nil

	case PrimitiveTypeDouble:
		v, err := r.ReadF64LE()
		if err != nil {
			return nil, err
		}
		return FloatValue{V: v, Bits: 64}, nil

	case PrimitiveTypeInt16:
		v, err := r.ReadI16LE()
		if err != nil {
			return nil, err
		}
		return IntValue{V: int64(v), Bits: 16}, nil

	case PrimitiveTypeInt32:
		v, err := r.ReadI32LE()
		if err != nil {
			return nil, err
		}
		return IntValue{V: int64(v), Bits: 32}, nil

	case PrimitiveTypeInt64:
		v, err := r.ReadI64LE()
		if err != nil {
			return nil, err
		}
		return IntValue{V: v, Bits: 64}, nil

	case PrimitiveTypeSByte:
		v, err := r.ReadI8()
		if err != nil {
			return nil, err
		}
		return IntValue{V: int64(v), Bits: 8}, nil

	case PrimitiveTypeSingle:
		v, err := r.ReadF32LE()
		if err != nil {
			return nil, err
		}
		return FloatValue{V: float64(v), Bits: 32}, nil

	case PrimitiveTypeTimeSpan:
		v, err := r.ReadTimeSpan()
		if err != nil {
			return nil, err
		}
		return TimeSpanValue{Ticks: v}, nil

	case PrimitiveTypeDateTime:
		v, err := r.ReadDateTime()
		if err != nil {
			return nil, err
		}
		return v, nil

	case PrimitiveTypeUInt16:
		v, err := r.ReadU16LE()
		if err != nil {
			return nil, err
		}
		return UintValue{V: uint64(v), Bits: 16}, nil

	case PrimitiveTypeUInt32:
		v, err := r.ReadU32LE()
		if err != nil {
			return nil, err
		}
		return UintValue{V: uint64(v), Bits: 32}, nil

	case PrimitiveTypeUInt64:
		v, err := r.ReadU64LE()
		if err != nil {
			return nil, err
		}
		return UintValue{V: v, Bits: 64}, nil

	case PrimitiveTypeNull:
		return NullValue{}, nil

	case PrimitiveTypeString:
		v, err := r.ReadLengthPrefixedString()
		if err != nil {
			return nil, err
		}
		return StringValue{V: v}, nil

	default:
		return nil, newCodeErr(ErrInvalidPrimitiveCode, r.Pos(), byte(t))
	}
}
