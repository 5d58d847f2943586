// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestParseEmptyStringRoot checks a root that is a single empty
// BinaryObjectString.
func TestParseEmptyStringRoot(t *testing.T) {
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryObjectString)}, i32(1), lpstr(""),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	v, err := p.Parse()
	assert.NoError(t, err)
	assert.Equal(t, StringValue{V: "", ObjectID: 1}, v)
}

// TestParseClassWithPrimitiveMembers checks a non-system class
// declaring its member types, with one Int32 member.
func TestParseClassWithPrimitiveMembers(t *testing.T) {
	classInfo := concat(i32(1), lpstr("Simple"), i32(1), lpstr("X"))
	types := []byte{byte(BinaryTypePrimitive)}
	operand := []byte{byte(PrimitiveTypeInt32)}
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryLibrary)}, i32(0), lpstr("TestLib"),
		[]byte{byte(RecordClassWithMembersAndTypes)}, classInfo, types, operand, i32(0),
		i32(42),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	v, err := p.Parse()
	assert.NoError(t, err)
	inst, ok := v.(ClassInstanceValue)
	assert.True(t, ok)
	assert.Equal(t, "Simple", inst.ClassName)
	assert.Equal(t, IntValue{V: 42, Bits: 32}, inst.Members["X"])
}

// TestParseSharedReference checks that two array slots referencing
// the same registered string object resolve to equal values.
func TestParseSharedReference(t *testing.T) {
	data := concat(
		header(10, -1),
		[]byte{byte(RecordBinaryObjectString)}, i32(1), lpstr("Hi"),
		[]byte{byte(RecordArraySingleObject)}, i32(10), i32(2),
		[]byte{byte(RecordMemberReference)}, i32(1),
		[]byte{byte(RecordMemberReference)}, i32(1),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	v, err := p.Parse()
	assert.NoError(t, err)
	arr, ok := v.(ArrayValue)
	assert.True(t, ok)
	assert.Len(t, arr.Elements, 2)
	assert.Equal(t, StringValue{V: "Hi", ObjectID: 1}, arr.Elements[0])
	assert.Equal(t, arr.Elements[0], arr.Elements[1])
}

// TestParseNullRunInObjectArray checks that an ObjectNullMultiple256
// run expands in place inside an object array without overshooting
// the array's declared length.
func TestParseNullRunInObjectArray(t *testing.T) {
	data := concat(
		header(5, -1),
		[]byte{byte(RecordArraySingleObject)}, i32(5), i32(5),
		[]byte{byte(RecordBinaryObjectString)}, i32(2), lpstr("A"),
		[]byte{byte(RecordObjectNullMultiple256)}, []byte{3},
		[]byte{byte(RecordBinaryObjectString)}, i32(3), lpstr("B"),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	v, err := p.Parse()
	assert.NoError(t, err)
	arr := v.(ArrayValue)
	assert.Len(t, arr.Elements, 5)
	assert.Equal(t, StringValue{V: "A", ObjectID: 2}, arr.Elements[0])
	assert.Equal(t, NullValue{}, arr.Elements[1])
	assert.Equal(t, NullValue{}, arr.Elements[2])
	assert.Equal(t, NullValue{}, arr.Elements[3])
	assert.Equal(t, StringValue{V: "B", ObjectID: 3}, arr.Elements[4])
}

// TestParseClassReuseViaClassWithId checks that a second instance of
// an already-declared class is decoded from a ClassWithId record
// using the first instance's registered layout. IterRecords is used
// here since Parse only returns the value rooted at the header.
func TestParseClassReuseViaClassWithId(t *testing.T) {
	classInfo := concat(i32(1), lpstr("Point"), i32(2), lpstr("X"), lpstr("Y"))
	types := []byte{byte(BinaryTypePrimitive), byte(BinaryTypePrimitive)}
	operands := []byte{byte(PrimitiveTypeInt32), byte(PrimitiveTypeInt32)}
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryLibrary)}, i32(0), lpstr("TestLib"),
		[]byte{byte(RecordClassWithMembersAndTypes)}, classInfo, types, operands, i32(0),
		i32(1), i32(2),
		[]byte{byte(RecordClassWithId)}, i32(2), i32(1),
		i32(3), i32(4),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	it := p.IterRecords()

	// The header and the library record come first and carry no value.
	kindH, vH, okH, errH := it.Next()
	assert.NoError(t, errH)
	assert.True(t, okH)
	assert.Equal(t, RecordSerializedStreamHeader, kindH)
	assert.Nil(t, vH)

	kindL, vL, okL, errL := it.Next()
	assert.NoError(t, errL)
	assert.True(t, okL)
	assert.Equal(t, RecordBinaryLibrary, kindL)
	assert.Nil(t, vL)

	kind1, v1, ok1, err1 := it.Next()
	assert.NoError(t, err1)
	assert.True(t, ok1)
	assert.Equal(t, RecordClassWithMembersAndTypes, kind1)
	first := v1.(ClassInstanceValue)
	assert.Equal(t, IntValue{V: 1, Bits: 32}, first.Members["X"])
	assert.Equal(t, IntValue{V: 2, Bits: 32}, first.Members["Y"])

	kind2, v2, ok2, err2 := it.Next()
	assert.NoError(t, err2)
	assert.True(t, ok2)
	assert.Equal(t, RecordClassWithId, kind2)
	second := v2.(ClassInstanceValue)
	assert.Equal(t, "Point", second.ClassName)
	assert.Equal(t, IntValue{V: 3, Bits: 32}, second.Members["X"])
	assert.Equal(t, IntValue{V: 4, Bits: 32}, second.Members["Y"])

	_, _, ok3, err3 := it.Next()
	assert.NoError(t, err3)
	assert.False(t, ok3)
}

// TestParseUnsupportedArrayShapeRank and TestParseUnsupportedArrayShapeOffset
// check that a BinaryArray with rank != 1, or one of the Offset
// shapes, is rejected outright.
func TestParseUnsupportedArrayShapeRank(t *testing.T) {
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryArray)}, i32(1), []byte{byte(BinaryArrayTypeSingle)}, i32(2),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrUnsupportedArrayShape, nerr.Kind)
}

func TestParseUnsupportedArrayShapeOffset(t *testing.T) {
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryArray)}, i32(1), []byte{byte(BinaryArrayTypeJaggedOffset)}, i32(1),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrUnsupportedArrayShape, nerr.Kind)
}

// TestParseRequiresHeaderFirst and TestParseRejectsUnsupportedVersion
// check that the stream header must come first and must carry the
// supported version pair.
func TestParseRequiresHeaderFirst(t *testing.T) {
	data := messageEnd()
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrInvalidHeader, nerr.Kind)
}

func TestParseRejectsUnsupportedVersion(t *testing.T) {
	data := concat(
		[]byte{byte(RecordSerializedStreamHeader)}, i32(1), i32(-1), i32(2), i32(0),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrInvalidHeader, nerr.Kind)
}

// TestParseTruncatedStreamFails checks that a stream cut off mid-record
// surfaces UnexpectedEndOfStream rather than a panic.
func TestParseTruncatedStreamFails(t *testing.T) {
	data := header(1, -1)[:6]
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrUnexpectedEndOfStream, nerr.Kind)
}

// TestParseDuplicateLibraryIDFails checks that reusing a library id
// is rejected rather than silently overwriting the earlier name.
func TestParseDuplicateLibraryIDFails(t *testing.T) {
	data := concat(
		header(1, -1),
		[]byte{byte(RecordBinaryLibrary)}, i32(0), lpstr("A"),
		[]byte{byte(RecordBinaryLibrary)}, i32(0), lpstr("B"),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrDuplicateID, nerr.Kind)
}

// TestParseUnknownReferenceFails exercises the registry's unknown-id
// detection via a root that never gets registered.
func TestParseUnknownReferenceFails(t *testing.T) {
	data := concat(
		header(99, -1),
		[]byte{byte(RecordMemberReference)}, i32(99),
		messageEnd(),
	)
	p := NewBytes(data, nil)
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrUnknownObjectID, nerr.Kind)
}

func selfReferencingNodeStream() []byte {
	classInfo := concat(i32(1), lpstr("Node"), i32(1), lpstr("Self"))
	return concat(
		header(1, -1),
		[]byte{byte(RecordBinaryLibrary)}, i32(0), lpstr("TestLib"),
		[]byte{byte(RecordClassWithMembers)}, classInfo, i32(0),
		[]byte{byte(RecordMemberReference)}, i32(1),
		messageEnd(),
	)
}

// TestExpandResolutionDetectsCycle and TestExpandResolutionSkipsCycleWithStub
// exercise ResolveExpand's cycle detection; TestInPlaceResolutionAllowsCycle
// shows ResolveInPlace tolerates the same stream because it never
// copies the cyclic structure.
func TestExpandResolutionDetectsCycle(t *testing.T) {
	p := NewBytes(selfReferencingNodeStream(), &Options{ResolveMode: ResolveExpand})
	_, err := p.Parse()
	assert.Error(t, err)
	nerr, ok := err.(*Error)
	assert.True(t, ok)
	assert.Equal(t, ErrCyclicReference, nerr.Kind)
}

func TestExpandResolutionSkipsCycleWithStub(t *testing.T) {
	p := NewBytes(selfReferencingNodeStream(), &Options{ResolveMode: ResolveExpand, SkipCycles: true})
	v, err := p.Parse()
	assert.NoError(t, err)
	inst := v.(ClassInstanceValue)
	assert.Equal(t, CyclicStubValue{IDRef: 1}, inst.Members["Self"])
}

func TestInPlaceResolutionAllowsCycle(t *testing.T) {
	p := NewBytes(selfReferencingNodeStream(), &Options{ResolveMode: ResolveInPlace})
	v, err := p.Parse()
	assert.NoError(t, err)
	inst := v.(ClassInstanceValue)
	self, ok := inst.Members["Self"].(ClassInstanceValue)
	assert.True(t, ok)
	assert.Equal(t, int32(1), self.ObjectID)
}
