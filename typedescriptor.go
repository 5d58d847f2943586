// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// BinaryTypeEnumeration discriminates the declared type of a class
// member or array element, per [MS-NRBF] 2.1.2.2.
type BinaryTypeEnumeration byte

// BinaryTypeEnumeration values.
const (
	BinaryTypePrimitive      BinaryTypeEnumeration = 0
	BinaryTypeString         BinaryTypeEnumeration = 1
	BinaryTypeObject         BinaryTypeEnumeration = 2
	BinaryTypeSystemClass    BinaryTypeEnumeration = 3
	BinaryTypeClass          BinaryTypeEnumeration = 4
	BinaryTypeObjectArray    BinaryTypeEnumeration = 5
	BinaryTypeStringArray    BinaryTypeEnumeration = 6
	BinaryTypePrimitiveArray BinaryTypeEnumeration = 7
)

func (t BinaryTypeEnumeration) String() string {
	switch t {
	case BinaryTypePrimitive:
		return "Primitive"
	case BinaryTypeString:
		return "String"
	case BinaryTypeObject:
		return "Object"
	case BinaryTypeSystemClass:
		return "SystemClass"
	case BinaryTypeClass:
		return "Class"
	case BinaryTypeObjectArray:
		return "ObjectArray"
	case BinaryTypeStringArray:
		return "StringArray"
	case BinaryTypePrimitiveArray:
		return "PrimitiveArray"
	default:
		return "Unknown"
	}
}

// ClassTypeInfo is the AdditionalInfo operand for a Class-typed
// member: a class name plus the library it was declared in.
type ClassTypeInfo struct {
	TypeName  string `json:"type_name"`
	LibraryID int32  `json:"library_id"`
}

// AdditionalInfo is the operand that rides alongside a
// BinaryTypeEnumeration in a MemberTypeInfo, shaped as follows:
//
//	Primitive, PrimitiveArray -> PrimitiveType (non-zero)
//	SystemClass               -> ClassName (non-empty)
//	Class                     -> ClassInfo (non-nil)
//	String, Object, ObjectArray, StringArray -> no operand
type AdditionalInfo struct {
	PrimitiveType PrimitiveTypeEnumeration `json:"primitive_type,omitempty"`
	ClassName     string                   `json:"class_name,omitempty"`
	ClassInfo     *ClassTypeInfo           `json:"class_info,omitempty"`
}

// MemberTypeInfo pairs one BinaryTypeEnumeration with its operand.
type MemberTypeInfo struct {
	Type           BinaryTypeEnumeration `json:"type"`
	AdditionalInfo AdditionalInfo        `json:"additional_info"`
}

// parseMemberTypeInfoOperand reads the AdditionalInfo operand for a
// single already-read BinaryTypeEnumeration byte.
func parseMemberTypeInfoOperand(r *BitReader, bt BinaryTypeEnumeration) (AdditionalInfo, error) {
	switch bt {
	case BinaryTypePrimitive, BinaryTypePrimitiveArray:
		b, err := r.ReadU8()
		if err != nil {
			return AdditionalInfo{}, err
		}
		pt := PrimitiveTypeEnumeration(b)
		if pt < PrimitiveTypeBoolean || pt > PrimitiveTypeString || pt == 4 {
			return AdditionalInfo{}, newCodeErr(ErrInvalidPrimitiveCode, r.Pos(), b)
		}
		return AdditionalInfo{PrimitiveType: pt}, nil

	case BinaryTypeSystemClass:
		name, err := r.ReadLengthPrefixedString()
		if err != nil {
			return AdditionalInfo{}, err
		}
		return AdditionalInfo{ClassName: name}, nil

	case BinaryTypeClass:
		name, err := r.ReadLengthPrefixedString()
		if err != nil {
			return AdditionalInfo{}, err
		}
		libID, err := r.ReadI32LE()
		if err != nil {
			return AdditionalInfo{}, err
		}
		return AdditionalInfo{ClassInfo: &ClassTypeInfo{TypeName: name, LibraryID: libID}}, nil

	case BinaryTypeString, BinaryTypeObject, BinaryTypeObjectArray, BinaryTypeStringArray:
		return AdditionalInfo{}, nil

	default:
		return AdditionalInfo{}, newCodeErr(ErrUnexpectedBinaryType, r.Pos(), byte(bt))
	}
}

// parseTypeDescriptor reads memberCount BinaryTypeEnumeration bytes
// followed, in order, by each one's AdditionalInfo operand. This is
// the two-pass shape [MS-NRBF] 2.3.1.2 mandates: all the discriminant
// bytes first, then all the operands.
func parseTypeDescriptor(r *BitReader, memberCount int) ([]MemberTypeInfo, error) {
	infos := make([]MemberTypeInfo, memberCount)
	for i := 0; i < memberCount; i++ {
		b, err := r.ReadU8()
		if err != nil {
			return nil, err
		}
		infos[i].Type = BinaryTypeEnumeration(b)
	}
	for i := range infos {
		ai, err := parseMemberTypeInfoOperand(r, infos[i].Type)
		if err != nil {
			return nil, err
		}
		infos[i].AdditionalInfo = ai
	}
	return infos, nil
}
