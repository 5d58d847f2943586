// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import "fmt"

// ErrorKind discriminates the fatal failure modes a parse can hit.
// Every failure is fatal to the current parse; there is no local
// recovery.
type ErrorKind int

// Error kinds, carried verbatim from the MS-NRBF decoding contract.
const (
	ErrUnexpectedEndOfStream ErrorKind = iota
	ErrInvalidRecordType
	ErrInvalidPrimitiveCode
	ErrUnexpectedBinaryType
	ErrInvalidHeader
	ErrDuplicateID
	ErrUnknownObjectID
	ErrUnknownClass
	ErrUnknownLibrary
	ErrUnsupportedArrayShape
	ErrCyclicReference
	ErrInvalidUTF8
)

func (k ErrorKind) String() string {
	switch k {
	case ErrUnexpectedEndOfStream:
		return "UnexpectedEndOfStream"
	case ErrInvalidRecordType:
		return "InvalidRecordType"
	case ErrInvalidPrimitiveCode:
		return "InvalidPrimitiveCode"
	case ErrUnexpectedBinaryType:
		return "UnexpectedBinaryType"
	case ErrInvalidHeader:
		return "InvalidHeader"
	case ErrDuplicateID:
		return "DuplicateId"
	case ErrUnknownObjectID:
		return "UnknownObjectId"
	case ErrUnknownClass:
		return "UnknownClass"
	case ErrUnknownLibrary:
		return "UnknownLibrary"
	case ErrUnsupportedArrayShape:
		return "UnsupportedArrayShape"
	case ErrCyclicReference:
		return "CyclicReference"
	case ErrInvalidUTF8:
		return "InvalidUtf8"
	default:
		return "Unknown"
	}
}

// Error is the single error type every decode failure surfaces as. It
// pins the byte offset at which the failure was detected, the way
// [MS-NRBF] implementers need in order to locate the offending record
// in a hex dump.
type Error struct {
	Kind   ErrorKind
	Offset int64
	// ID carries the offending identifier for id-keyed errors
	// (DuplicateId, UnknownObjectId, UnknownClass, UnknownLibrary).
	ID int32
	// Code carries the offending discriminant byte for
	// InvalidRecordType/InvalidPrimitiveCode/UnexpectedBinaryType.
	Code byte
	// Msg is an optional human-readable detail.
	Msg string
}

func (e *Error) Error() string {
	base := fmt.Sprintf("nrbf: %s at offset %d", e.Kind, e.Offset)
	switch e.Kind {
	case ErrInvalidRecordType, ErrInvalidPrimitiveCode, ErrUnexpectedBinaryType:
		base += fmt.Sprintf(" (code=0x%02x)", e.Code)
	case ErrDuplicateID, ErrUnknownObjectID, ErrUnknownClass, ErrUnknownLibrary:
		base += fmt.Sprintf(" (id=%d)", e.ID)
	}
	if e.Msg != "" {
		base += ": " + e.Msg
	}
	return base
}

// Is reports whether err is an *Error with the given kind, so callers
// can do errors.Is(err, &nrbf.Error{Kind: nrbf.ErrCyclicReference}).
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

func newErr(kind ErrorKind, offset int64) *Error {
	return &Error{Kind: kind, Offset: offset}
}

func newCodeErr(kind ErrorKind, offset int64, code byte) *Error {
	return &Error{Kind: kind, Offset: offset, Code: code}
}

func newIDErr(kind ErrorKind, offset int64, id int32) *Error {
	return &Error{Kind: kind, Offset: offset, ID: id}
}

func newMsgErr(kind ErrorKind, offset int64, msg string) *Error {
	return &Error{Kind: kind, Offset: offset, Msg: msg}
}
