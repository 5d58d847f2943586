// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"bytes"
	"encoding/json"
)

// Value is the closed set of node kinds a parsed MS-NRBF stream can
// produce: a tagged union encoded as a closed interface with a
// private marker method so every switch over Value is exhaustive.
type Value interface {
	isValue()
}

// NullValue is the single null value. All instances are equal; it
// carries no state.
type NullValue struct{}

func (NullValue) isValue() {}

// BoolValue wraps a PrimitiveType Boolean.
type BoolValue struct {
	V bool `json:"value"`
}

func (BoolValue) isValue() {}

// IntValue wraps a signed integer primitive (SByte, Int16, Int32, Int64).
type IntValue struct {
	V    int64 `json:"value"`
	Bits int   `json:"bits"`
}

func (IntValue) isValue() {}

// UintValue wraps an unsigned integer primitive (Byte, UInt16, UInt32, UInt64).
type UintValue struct {
	V    uint64 `json:"value"`
	Bits int    `json:"bits"`
}

func (UintValue) isValue() {}

// FloatValue wraps Single/Double.
type FloatValue struct {
	V    float64 `json:"value"`
	Bits int     `json:"bits"`
}

func (FloatValue) isValue() {}

// DecimalValue wraps the length-prefixed ASCII Decimal primitive.
type DecimalValue struct {
	V string `json:"value"`
}

func (DecimalValue) isValue() {}

// StringValue wraps a String primitive or a BinaryObjectString record.
type StringValue struct {
	V string `json:"value"`
	// ObjectID is non-zero when this string was registered under an
	// object id (BinaryObjectString), zero for inline String members.
	ObjectID int32 `json:"object_id,omitempty"`
}

func (StringValue) isValue() {}

// CharValue wraps a single UTF-16 code point (Char primitive).
type CharValue struct {
	V rune `json:"value"`
}

func (CharValue) isValue() {}

// DateTimeKind mirrors .NET's DateTimeKind enum packed into the top
// two bits of a DateTime primitive.
type DateTimeKind uint8

// DateTimeKind values, per [MS-NRBF] 2.3.1.
const (
	DateTimeKindUnspecified DateTimeKind = 0
	DateTimeKindUTC         DateTimeKind = 1
	DateTimeKindLocal       DateTimeKind = 2
)

// DateTimeValue wraps a packed DateTime primitive.
type DateTimeValue struct {
	Ticks int64        `json:"ticks"`
	Kind  DateTimeKind `json:"kind"`
}

func (DateTimeValue) isValue() {}

// TimeSpanValue wraps a signed tick count.
type TimeSpanValue struct {
	Ticks int64 `json:"ticks"`
}

func (TimeSpanValue) isValue() {}

// ArrayValue is an ordered sequence of values, produced by
// ArraySinglePrimitive/ArraySingleObject/ArraySingleString/BinaryArray.
type ArrayValue struct {
	ObjectID int32   `json:"object_id"`
	Elements []Value `json:"elements"`
}

func (ArrayValue) isValue() {}

// ClassInstanceValue is an ordered map of member name to value,
// produced by any of the four ClassWithMembers* record shapes or by
// ClassWithId reusing a previously-registered layout.
type ClassInstanceValue struct {
	ObjectID   int32            `json:"object_id"`
	ClassName  string           `json:"class_name"`
	LibraryID  int32            `json:"library_id,omitempty"`
	MemberKeys []string         `json:"-"`
	Members    map[string]Value `json:"-"`
}

func (ClassInstanceValue) isValue() {}

// MarshalJSON renders members in declaration order rather than Go's
// default alphabetical map key order, so the JSON output matches the
// field order the original .NET class declared.
func (c ClassInstanceValue) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"object_id":`)
	idBytes, err := json.Marshal(c.ObjectID)
	if err != nil {
		return nil, err
	}
	buf.Write(idBytes)
	buf.WriteString(`,"class_name":`)
	nameBytes, err := json.Marshal(c.ClassName)
	if err != nil {
		return nil, err
	}
	buf.Write(nameBytes)
	if c.LibraryID != 0 {
		buf.WriteString(`,"library_id":`)
		libBytes, err := json.Marshal(c.LibraryID)
		if err != nil {
			return nil, err
		}
		buf.Write(libBytes)
	}
	buf.WriteString(`,"members":{`)
	for i, k := range c.MemberKeys {
		if i > 0 {
			buf.WriteByte(',')
		}
		keyBytes, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(keyBytes)
		buf.WriteByte(':')
		valBytes, err := json.Marshal(c.Members[k])
		if err != nil {
			return nil, err
		}
		buf.Write(valBytes)
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

// OrderedMembers returns the class's members in declaration order, the
// order MemberKeys was populated in by the dispatcher.
func (c ClassInstanceValue) OrderedMembers() []struct {
	Name  string
	Value Value
} {
	out := make([]struct {
		Name  string
		Value Value
	}, len(c.MemberKeys))
	for i, k := range c.MemberKeys {
		out[i] = struct {
			Name  string
			Value Value
		}{Name: k, Value: c.Members[k]}
	}
	return out
}

// ReferenceValue is an unresolved MemberReference placeholder, as
// IterRecords hands it back. Both resolution modes replace every
// placeholder found in a class instance's members or an array's
// elements.
type ReferenceValue struct {
	IDRef int32 `json:"id_ref"`
}

func (ReferenceValue) isValue() {}

// MethodCallValue carries the fixed prefix of a MethodCall record plus,
// when ArgsInline is set, the method and type names read inline. The
// parser does not populate CallContext or Args.
type MethodCallValue struct {
	MessageFlags uint32 `json:"message_flags"`
	MethodName   *Value `json:"method_name,omitempty"`
	TypeName     *Value `json:"type_name,omitempty"`
	CallContext  *Value `json:"call_context,omitempty"`
	Args         *Value `json:"args,omitempty"`
}

func (MethodCallValue) isValue() {}

// MethodReturnValue mirrors MethodCallValue for MethodReturn records:
// ReturnValue is read inline when ReturnValueInline is set; the parser
// does not populate CallContext, Args or ExceptionValue.
type MethodReturnValue struct {
	MessageFlags   uint32 `json:"message_flags"`
	ReturnValue    *Value `json:"return_value,omitempty"`
	CallContext    *Value `json:"call_context,omitempty"`
	Args           *Value `json:"args,omitempty"`
	ExceptionValue *Value `json:"exception,omitempty"`
}

func (MethodReturnValue) isValue() {}
