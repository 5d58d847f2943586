// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

import "encoding/binary"

// The helpers below hand-assemble raw MS-NRBF byte streams for the
// dispatcher and resolver tests, built as plain byte-slice literals
// rather than pulling in a builder library.

func i32(v int32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(v))
	return buf
}

func u32(v uint32) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, v)
	return buf
}

func i64(v int64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, uint64(v))
	return buf
}

func u64(v uint64) []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint64(buf, v)
	return buf
}

func u16(v uint16) []byte {
	buf := make([]byte, 2)
	binary.LittleEndian.PutUint16(buf, v)
	return buf
}

// lpstr encodes a string the way BinaryWriter.Write(string) does for
// short strings: a one-byte 7-bit length prefix followed by UTF-8
// bytes. None of the fixtures below need the multi-byte form.
func lpstr(s string) []byte {
	if len(s) >= 0x80 {
		panic("lpstr fixture helper only supports short strings")
	}
	return append([]byte{byte(len(s))}, []byte(s)...)
}

func concat(parts ...[]byte) []byte {
	var out []byte
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

func header(rootID, headerID int32) []byte {
	return concat([]byte{byte(RecordSerializedStreamHeader)}, i32(rootID), i32(headerID), i32(1), i32(0))
}

func messageEnd() []byte {
	return []byte{byte(RecordMessageEnd)}
}
