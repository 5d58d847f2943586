// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// parseState is the record dispatch state machine: INITIAL -> READY
// -> ... -> TERMINATED.
type parseState int

const (
	stateInitial parseState = iota
	stateReady
	stateTerminated
)

// dispatcher is the main record-dispatch loop. It owns the single
// BitReader cursor and the single set of symbol tables for one parse:
// a sequential walk that populates the shared tables as it goes and
// decodes values using whatever has been registered so far.
type dispatcher struct {
	r      *BitReader
	tables *symbolTables
	state  parseState
	header StreamHeader
}

func newDispatcher(data []byte) *dispatcher {
	return &dispatcher{
		r:      NewBitReader(data),
		tables: newSymbolTables(),
		state:  stateInitial,
	}
}

// nullRunMarker flows out of decodeRecordBody for the two null-run
// record kinds. It is only meaningful inside decodeSequence, which
// expands it; any other caller treats seeing one as malformed input.
type nullRunMarker struct{ count int }

func (nullRunMarker) isValue() {}

// readDiscriminant reads the one-byte RecordTypeEnumeration and
// enforces the state machine: any record other than
// SerializedStreamHeader in state INITIAL is an error, and any record
// after MessageEnd is an error.
func (d *dispatcher) readDiscriminant() (RecordTypeEnumeration, error) {
	if d.state == stateTerminated {
		return 0, newMsgErr(ErrInvalidRecordType, d.r.Pos(), "read past MessageEnd")
	}
	b, err := d.r.ReadU8()
	if err != nil {
		return 0, err
	}
	kind := RecordTypeEnumeration(b)
	if d.state == stateInitial && kind != RecordSerializedStreamHeader {
		return 0, newCodeErr(ErrInvalidHeader, d.r.Pos()-1, b)
	}
	return kind, nil
}

// readTopLevelRecord reads and fully decodes the next top-level
// record, returning its kind and value (nil for control records that
// emit no value: SerializedStreamHeader, BinaryLibrary, MessageEnd).
func (d *dispatcher) readTopLevelRecord() (RecordTypeEnumeration, Value, error) {
	kind, err := d.readDiscriminant()
	if err != nil {
		return 0, nil, err
	}

	switch kind {
	case RecordSerializedStreamHeader:
		if err := d.parseHeader(); err != nil {
			return 0, nil, err
		}
		d.state = stateReady
		return kind, nil, nil

	case RecordBinaryLibrary:
		if err := d.parseBinaryLibrary(); err != nil {
			return 0, nil, err
		}
		return kind, nil, nil

	case RecordMessageEnd:
		d.state = stateTerminated
		return kind, nil, nil

	default:
		val, err := d.decodeRecordBody(kind)
		if err != nil {
			return 0, nil, err
		}
		if _, isRun := val.(nullRunMarker); isRun {
			return 0, nil, newMsgErr(ErrInvalidRecordType, d.r.Pos(), "null-run record at top level")
		}
		return kind, val, nil
	}
}

// readValue reads one full record expected to yield exactly one
// value, skipping over any interleaved BinaryLibrary records (which
// can legally precede the class record that needs them). Used by
// single-member-slot contexts: typed class members and MethodCall/
// MethodReturn optional fields.
func (d *dispatcher) readValue() (Value, error) {
	for {
		kind, err := d.readDiscriminant()
		if err != nil {
			return nil, err
		}
		switch kind {
		case RecordBinaryLibrary:
			if err := d.parseBinaryLibrary(); err != nil {
				return nil, err
			}
			continue
		case RecordSerializedStreamHeader, RecordMessageEnd:
			return nil, newMsgErr(ErrInvalidRecordType, d.r.Pos(), "unexpected control record")
		default:
			val, err := d.decodeRecordBody(kind)
			if err != nil {
				return nil, err
			}
			if _, isRun := val.(nullRunMarker); isRun {
				return nil, newMsgErr(ErrInvalidRecordType, d.r.Pos(), "null-run record outside an array/member sequence")
			}
			return val, nil
		}
	}
}

// decodeSequence reads exactly n values for an enclosing member/array
// context, expanding ObjectNullMultiple(256) runs in place without
// overshooting n. When allowed is non-nil, every non-null-run record
// kind encountered must be a member of it.
func (d *dispatcher) decodeSequence(n int, allowed map[RecordTypeEnumeration]bool) ([]Value, error) {
	out := make([]Value, 0, n)
	for len(out) < n {
		kind, err := d.readDiscriminant()
		if err != nil {
			return nil, err
		}

		switch kind {
		case RecordBinaryLibrary:
			if err := d.parseBinaryLibrary(); err != nil {
				return nil, err
			}
			continue

		case RecordObjectNullMultiple256:
			c, err := d.r.ReadU8()
			if err != nil {
				return nil, err
			}
			out = appendNulls(out, int(c), n)
			continue

		case RecordObjectNullMultiple:
			c, err := d.r.ReadI32LE()
			if err != nil {
				return nil, err
			}
			out = appendNulls(out, int(c), n)
			continue

		case RecordSerializedStreamHeader, RecordMessageEnd:
			return nil, newMsgErr(ErrInvalidRecordType, d.r.Pos(), "unexpected control record in sequence")

		default:
			if allowed != nil && !allowed[kind] {
				return nil, newCodeErr(ErrInvalidRecordType, d.r.Pos(), byte(kind))
			}
			val, err := d.decodeRecordBody(kind)
			if err != nil {
				return nil, err
			}
			out = append(out, val)
		}
	}
	return out, nil
}

// appendNulls appends up to count NullValues to out, capped so the
// total never exceeds n: a null run is not permitted to overshoot its
// enclosing sequence's declared length.
func appendNulls(out []Value, count, n int) []Value {
	remaining := n - len(out)
	if count > remaining {
		count = remaining
	}
	for i := 0; i < count; i++ {
		out = append(out, NullValue{})
	}
	return out
}

// decodeRecordBody decodes everything after an already-read
// discriminant byte for every value-producing and null-run record
// kind. Header/BinaryLibrary/MessageEnd are handled by callers before
// reaching here.
func (d *dispatcher) decodeRecordBody(kind RecordTypeEnumeration) (Value, error) {
	switch kind {
	case RecordClassWithId:
		return d.parseClassWithId()
	case RecordSystemClassWithMembers:
		return d.parseClassWithMembers(true, false)
	case RecordClassWithMembers:
		return d.parseClassWithMembers(false, false)
	case RecordSystemClassWithMembersAndTypes:
		return d.parseClassWithMembers(true, true)
	case RecordClassWithMembersAndTypes:
		return d.parseClassWithMembers(false, true)
	case RecordBinaryObjectString:
		return d.parseBinaryObjectString()
	case RecordBinaryArray:
		return d.parseBinaryArray()
	case RecordMemberPrimitiveTyped:
		return d.parseMemberPrimitiveTyped()
	case RecordMemberReference:
		return d.parseMemberReference()
	case RecordObjectNull:
		return NullValue{}, nil
	case RecordObjectNullMultiple256:
		c, err := d.r.ReadU8()
		if err != nil {
			return nil, err
		}
		return nullRunMarker{count: int(c)}, nil
	case RecordObjectNullMultiple:
		c, err := d.r.ReadI32LE()
		if err != nil {
			return nil, err
		}
		return nullRunMarker{count: int(c)}, nil
	case RecordArraySinglePrimitive:
		return d.parseArraySinglePrimitive()
	case RecordArraySingleObject:
		return d.parseArraySingleObject()
	case RecordArraySingleString:
		return d.parseArraySingleString()
	case RecordMethodCall:
		return d.parseMethodCall()
	case RecordMethodReturn:
		return d.parseMethodReturn()
	default:
		return nil, newCodeErr(ErrInvalidRecordType, d.r.Pos()-1, byte(kind))
	}
}

func (d *dispatcher) parseHeader() error {
	var err error
	var h StreamHeader
	if h.RootID, err = d.r.ReadI32LE(); err != nil {
		return err
	}
	if h.HeaderID, err = d.r.ReadI32LE(); err != nil {
		return err
	}
	if h.MajorVersion, err = d.r.ReadI32LE(); err != nil {
		return err
	}
	if h.MinorVersion, err = d.r.ReadI32LE(); err != nil {
		return err
	}
	if h.MajorVersion != 1 || h.MinorVersion != 0 {
		return newMsgErr(ErrInvalidHeader, d.r.Pos(),
			"unsupported stream version")
	}
	d.header = h
	return nil
}

func (d *dispatcher) parseBinaryLibrary() error {
	id, err := d.r.ReadI32LE()
	if err != nil {
		return err
	}
	name, err := d.r.ReadLengthPrefixedString()
	if err != nil {
		return err
	}
	return d.tables.registerLibrary(id, name, d.r.Pos())
}

func (d *dispatcher) parseBinaryObjectString() (Value, error) {
	id, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}
	s, err := d.r.ReadLengthPrefixedString()
	if err != nil {
		return nil, err
	}
	v := StringValue{V: s, ObjectID: id}
	if err := d.tables.registerObject(id, v, d.r.Pos()); err != nil {
		return nil, err
	}
	return v, nil
}

func (d *dispatcher) parseMemberPrimitiveTyped() (Value, error) {
	b, err := d.r.ReadU8()
	if err != nil {
		return nil, err
	}
	return decodePrimitive(d.r, PrimitiveTypeEnumeration(b))
}

func (d *dispatcher) parseMemberReference() (Value, error) {
	id, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}
	return ReferenceValue{IDRef: id}, nil
}

// decodeMember reads a single value conforming to a known member type
// descriptor. Only Primitive is decoded directly off the BitReader;
// every other shape is encoded inline as whatever concrete record
// follows, so decodeMember delegates to readValue.
func (d *dispatcher) decodeMember(info MemberTypeInfo) (Value, error) {
	if info.Type == BinaryTypePrimitive {
		return decodePrimitive(d.r, info.AdditionalInfo.PrimitiveType)
	}
	return d.readValue()
}

func (d *dispatcher) parseClassWithMembers(isSystem, hasTypes bool) (Value, error) {
	ci, err := parseClassInfo(d.r)
	if err != nil {
		return nil, err
	}

	layout := &ClassLayout{ClassInfo: ci, HasTypes: hasTypes, IsSystem: isSystem}

	if hasTypes {
		types, err := parseTypeDescriptor(d.r, int(ci.MemberCount))
		if err != nil {
			return nil, err
		}
		layout.MemberTypes = types
	}

	if !isSystem {
		libID, err := d.r.ReadI32LE()
		if err != nil {
			return nil, err
		}
		if _, err := d.tables.lookupLibrary(libID, d.r.Pos()); err != nil {
			return nil, err
		}
		layout.LibraryID = libID
	}

	if err := d.tables.registerClass(layout, d.r.Pos()); err != nil {
		return nil, err
	}

	inst := ClassInstanceValue{
		ObjectID:   ci.ObjectID,
		ClassName:  ci.Name,
		LibraryID:  layout.LibraryID,
		MemberKeys: ci.MemberNames,
		Members:    make(map[string]Value, len(ci.MemberNames)),
	}

	if hasTypes {
		for i, name := range ci.MemberNames {
			v, err := d.decodeMember(layout.MemberTypes[i])
			if err != nil {
				return nil, err
			}
			inst.Members[name] = v
		}
	} else {
		values, err := d.decodeSequence(len(ci.MemberNames), nil)
		if err != nil {
			return nil, err
		}
		for i, name := range ci.MemberNames {
			inst.Members[name] = values[i]
		}
	}

	if err := d.tables.registerObject(ci.ObjectID, inst, d.r.Pos()); err != nil {
		return nil, err
	}
	return inst, nil
}

func (d *dispatcher) parseClassWithId() (Value, error) {
	objectID, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}
	metadataID, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}
	layout, err := d.tables.lookupClass(metadataID, d.r.Pos())
	if err != nil {
		return nil, err
	}

	inst := ClassInstanceValue{
		ObjectID:   objectID,
		ClassName:  layout.Name,
		LibraryID:  layout.LibraryID,
		MemberKeys: layout.MemberNames,
		Members:    make(map[string]Value, len(layout.MemberNames)),
	}

	if layout.HasTypes {
		for i, name := range layout.MemberNames {
			v, err := d.decodeMember(layout.MemberTypes[i])
			if err != nil {
				return nil, err
			}
			inst.Members[name] = v
		}
	} else {
		values, err := d.decodeSequence(len(layout.MemberNames), nil)
		if err != nil {
			return nil, err
		}
		for i, name := range layout.MemberNames {
			inst.Members[name] = values[i]
		}
	}

	if err := d.tables.registerObject(objectID, inst, d.r.Pos()); err != nil {
		return nil, err
	}
	return inst, nil
}

// parseArrayInfo reads the object id and length, which the three
// ArraySingle* record shapes share.
func (d *dispatcher) parseArrayInfo() (id int32, length int32, err error) {
	if id, err = d.r.ReadI32LE(); err != nil {
		return
	}
	length, err = d.r.ReadI32LE()
	return
}

func (d *dispatcher) parseArraySinglePrimitive() (Value, error) {
	id, length, err := d.parseArrayInfo()
	if err != nil {
		return nil, err
	}
	b, err := d.r.ReadU8()
	if err != nil {
		return nil, err
	}
	pt := PrimitiveTypeEnumeration(b)

	elems := make([]Value, length)
	for i := range elems {
		v, err := decodePrimitive(d.r, pt)
		if err != nil {
			return nil, err
		}
		elems[i] = v
	}

	av := ArrayValue{ObjectID: id, Elements: elems}
	if err := d.tables.registerObject(id, av, d.r.Pos()); err != nil {
		return nil, err
	}
	return av, nil
}

func (d *dispatcher) parseArraySingleObject() (Value, error) {
	id, length, err := d.parseArrayInfo()
	if err != nil {
		return nil, err
	}
	elems, err := d.decodeSequence(int(length), nil)
	if err != nil {
		return nil, err
	}
	av := ArrayValue{ObjectID: id, Elements: elems}
	if err := d.tables.registerObject(id, av, d.r.Pos()); err != nil {
		return nil, err
	}
	return av, nil
}

var stringArrayAllowed = map[RecordTypeEnumeration]bool{
	RecordBinaryObjectString: true,
	RecordMemberReference:    true,
	RecordObjectNull:         true,
}

func (d *dispatcher) parseArraySingleString() (Value, error) {
	id, length, err := d.parseArrayInfo()
	if err != nil {
		return nil, err
	}
	elems, err := d.decodeSequence(int(length), stringArrayAllowed)
	if err != nil {
		return nil, err
	}
	av := ArrayValue{ObjectID: id, Elements: elems}
	if err := d.tables.registerObject(id, av, d.r.Pos()); err != nil {
		return nil, err
	}
	return av, nil
}

// parseBinaryArray supports only the Single/Jagged/Rectangular shapes
// at rank 1: every other combination fails with UnsupportedArrayShape.
func (d *dispatcher) parseBinaryArray() (Value, error) {
	id, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}
	kindByte, err := d.r.ReadU8()
	if err != nil {
		return nil, err
	}
	kind := BinaryArrayTypeEnumeration(kindByte)

	rank, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}

	switch kind {
	case BinaryArrayTypeSingle, BinaryArrayTypeJagged, BinaryArrayTypeRectangular:
	default:
		return nil, newMsgErr(ErrUnsupportedArrayShape, d.r.Pos(), kind.String())
	}
	if rank != 1 {
		return nil, newMsgErr(ErrUnsupportedArrayShape, d.r.Pos(),
			"only rank 1 is supported")
	}

	length, err := d.r.ReadI32LE()
	if err != nil {
		return nil, err
	}

	btByte, err := d.r.ReadU8()
	if err != nil {
		return nil, err
	}
	bt := BinaryTypeEnumeration(btByte)
	ai, err := parseMemberTypeInfoOperand(d.r, bt)
	if err != nil {
		return nil, err
	}

	var elems []Value
	if bt == BinaryTypePrimitive {
		elems = make([]Value, length)
		for i := range elems {
			v, err := decodePrimitive(d.r, ai.PrimitiveType)
			if err != nil {
				return nil, err
			}
			elems[i] = v
		}
	} else {
		elems, err = d.decodeSequence(int(length), nil)
		if err != nil {
			return nil, err
		}
	}

	av := ArrayValue{ObjectID: id, Elements: elems}
	if err := d.tables.registerObject(id, av, d.r.Pos()); err != nil {
		return nil, err
	}
	return av, nil
}

// MethodCall/MethodReturn flag bits, per [MS-NRBF] 2.2.3.1.
const (
	msgFlagNoArgs                 = 0x00000001
	msgFlagArgsInline             = 0x00000002
	msgFlagArgsIsArray            = 0x00000004
	msgFlagArgsInArray            = 0x00000008
	msgFlagNoContext              = 0x00000010
	msgFlagContextInline          = 0x00000020
	msgFlagContextInArray         = 0x00000040
	msgFlagMethodSignatureInArray = 0x00000080
	msgFlagPropertiesInArray      = 0x00000100
	msgFlagNoReturnValue          = 0x00000200
	msgFlagReturnValueVoid        = 0x00000400
	msgFlagReturnValueInline      = 0x00000800
	msgFlagReturnValueInArray     = 0x00001000
	msgFlagExceptionInArray       = 0x00002000
)

// parseMethodCall always parses the fixed MessageFlags prefix; the
// method name and type name are decoded inline only when the flags
// say they ride inline (ArgsInline) rather than inside a following
// args array. Anything not decoded here is simply left for the
// ordinary top-level loop to read as whatever record follows.
func (d *dispatcher) parseMethodCall() (Value, error) {
	flags, err := d.r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	mc := MethodCallValue{MessageFlags: flags}
	if flags&msgFlagArgsInline != 0 {
		name, err := d.readValue()
		if err != nil {
			return nil, err
		}
		mc.MethodName = &name
		typeName, err := d.readValue()
		if err != nil {
			return nil, err
		}
		mc.TypeName = &typeName
	}
	return mc, nil
}

func (d *dispatcher) parseMethodReturn() (Value, error) {
	flags, err := d.r.ReadU32LE()
	if err != nil {
		return nil, err
	}
	mr := MethodReturnValue{MessageFlags: flags}
	if flags&msgFlagReturnValueInline != 0 {
		rv, err := d.readValue()
		if err != nil {
			return nil, err
		}
		mr.ReturnValue = &rv
	}
	return mr, nil
}
