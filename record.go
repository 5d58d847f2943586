// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// RecordTypeEnumeration identifies the shape of the next top-level
// record in the stream, per [MS-NRBF] 2.1.2.1.
type RecordTypeEnumeration byte

// RecordTypeEnumeration codes.
const (
	RecordSerializedStreamHeader          RecordTypeEnumeration = 0
	RecordClassWithId                     RecordTypeEnumeration = 1
	RecordSystemClassWithMembers          RecordTypeEnumeration = 2
	RecordClassWithMembers                RecordTypeEnumeration = 3
	RecordSystemClassWithMembersAndTypes  RecordTypeEnumeration = 4
	RecordClassWithMembersAndTypes        RecordTypeEnumeration = 5
	RecordBinaryObjectString              RecordTypeEnumeration = 6
	RecordBinaryArray                     RecordTypeEnumeration = 7
	RecordMemberPrimitiveTyped            RecordTypeEnumeration = 8
	RecordMemberReference                 RecordTypeEnumeration = 9
	RecordObjectNull                      RecordTypeEnumeration = 10
	RecordMessageEnd                      RecordTypeEnumeration = 11
	RecordBinaryLibrary                   RecordTypeEnumeration = 12
	RecordObjectNullMultiple256           RecordTypeEnumeration = 13
	RecordObjectNullMultiple              RecordTypeEnumeration = 14
	RecordArraySinglePrimitive            RecordTypeEnumeration = 15
	RecordArraySingleObject               RecordTypeEnumeration = 16
	RecordArraySingleString               RecordTypeEnumeration = 17
	RecordMethodCall                      RecordTypeEnumeration = 21
	RecordMethodReturn                    RecordTypeEnumeration = 22
)

func (t RecordTypeEnumeration) String() string {
	switch t {
	case RecordSerializedStreamHeader:
		return "SerializedStreamHeader"
	case RecordClassWithId:
		return "ClassWithId"
	case RecordSystemClassWithMembers:
		return "SystemClassWithMembers"
	case RecordClassWithMembers:
		return "ClassWithMembers"
	case RecordSystemClassWithMembersAndTypes:
		return "SystemClassWithMembersAndTypes"
	case RecordClassWithMembersAndTypes:
		return "ClassWithMembersAndTypes"
	case RecordBinaryObjectString:
		return "BinaryObjectString"
	case RecordBinaryArray:
		return "BinaryArray"
	case RecordMemberPrimitiveTyped:
		return "MemberPrimitiveTyped"
	case RecordMemberReference:
		return "MemberReference"
	case RecordObjectNull:
		return "ObjectNull"
	case RecordMessageEnd:
		return "MessageEnd"
	case RecordBinaryLibrary:
		return "BinaryLibrary"
	case RecordObjectNullMultiple256:
		return "ObjectNullMultiple256"
	case RecordObjectNullMultiple:
		return "ObjectNullMultiple"
	case RecordArraySinglePrimitive:
		return "ArraySinglePrimitive"
	case RecordArraySingleObject:
		return "ArraySingleObject"
	case RecordArraySingleString:
		return "ArraySingleString"
	case RecordMethodCall:
		return "MethodCall"
	case RecordMethodReturn:
		return "MethodReturn"
	default:
		return "Unknown"
	}
}

// BinaryArrayTypeEnumeration discriminates the shape field of a
// BinaryArray record, per [MS-NRBF] 2.4.1.1.
type BinaryArrayTypeEnumeration byte

// BinaryArrayTypeEnumeration values.
const (
	BinaryArrayTypeSingle            BinaryArrayTypeEnumeration = 0
	BinaryArrayTypeJagged            BinaryArrayTypeEnumeration = 1
	BinaryArrayTypeRectangular       BinaryArrayTypeEnumeration = 2
	BinaryArrayTypeSingleOffset      BinaryArrayTypeEnumeration = 3
	BinaryArrayTypeJaggedOffset      BinaryArrayTypeEnumeration = 4
	BinaryArrayTypeRectangularOffset BinaryArrayTypeEnumeration = 5
)

func (t BinaryArrayTypeEnumeration) String() string {
	switch t {
	case BinaryArrayTypeSingle:
		return "Single"
	case BinaryArrayTypeJagged:
		return "Jagged"
	case BinaryArrayTypeRectangular:
		return "Rectangular"
	case BinaryArrayTypeSingleOffset:
		return "SingleOffset"
	case BinaryArrayTypeJaggedOffset:
		return "JaggedOffset"
	case BinaryArrayTypeRectangularOffset:
		return "RectangularOffset"
	default:
		return "Unknown"
	}
}

// StreamHeader is the SerializedStreamHeader record: root id, header
// id, and the version pair that must read 1.0.
type StreamHeader struct {
	RootID       int32 `json:"root_id"`
	HeaderID     int32 `json:"header_id"`
	MajorVersion int32 `json:"major_version"`
	MinorVersion int32 `json:"minor_version"`
}
