// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// ClassInfo is the common prefix shared by all four
// ClassWithMembers[AndTypes] record shapes: an object id, the class
// name, and its declared member names in order.
type ClassInfo struct {
	ObjectID    int32    `json:"object_id"`
	Name        string   `json:"name"`
	MemberCount int32    `json:"member_count"`
	MemberNames []string `json:"member_names"`
}

func parseClassInfo(r *BitReader) (ClassInfo, error) {
	var ci ClassInfo
	var err error
	if ci.ObjectID, err = r.ReadI32LE(); err != nil {
		return ci, err
	}
	if ci.Name, err = r.ReadLengthPrefixedString(); err != nil {
		return ci, err
	}
	if ci.MemberCount, err = r.ReadI32LE(); err != nil {
		return ci, err
	}
	ci.MemberNames = make([]string, ci.MemberCount)
	for i := range ci.MemberNames {
		if ci.MemberNames[i], err = r.ReadLengthPrefixedString(); err != nil {
			return ci, err
		}
	}
	return ci, nil
}

// ClassLayout is a registered class: its ClassInfo plus, when the
// declaring record carried types, the per-member TypeDescriptor, and
// when non-system, the library it was declared in. Subsequent
// ClassWithId records reuse a ClassLayout by its ObjectID (used as
// the "metadata id").
type ClassLayout struct {
	ClassInfo
	MemberTypes []MemberTypeInfo `json:"member_types,omitempty"`
	LibraryID   int32            `json:"library_id,omitempty"`
	HasTypes    bool             `json:"-"`
	IsSystem    bool             `json:"-"`
}
