// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// ResolveMode selects how Parse substitutes MemberReference
// placeholders once a stream has been fully read.
type ResolveMode int

const (
	// ResolveInPlace substitutes placeholders with the registered
	// object directly. Class instances and arrays keep their backing
	// map/slice, so two placeholders for the same id end up pointing
	// at shared, mutable backing storage — the resulting graph may
	// contain shared substructure or cycles and is unsuitable for a
	// naive tree-walking serializer.
	ResolveInPlace ResolveMode = iota

	// ResolveExpand substitutes placeholders with a fresh shallow
	// copy at each reference site, producing a tree. Cycles are
	// detected via a per-branch visited set and either fail with
	// CyclicReference or, when SkipCycles is set, are replaced by a
	// CyclicStubValue sentinel.
	ResolveExpand
)

// CyclicStubValue is emitted in place of a MemberReference when
// expansion-mode resolution hits a cycle and the caller opted into
// SkipCycles instead of failing outright.
type CyclicStubValue struct {
	IDRef int32 `json:"cyclic_ref"`
}

func (CyclicStubValue) isValue() {}

// resolveInPlace performs a single pass over every registered object,
// patching ReferenceValue entries directly in each object's Members
// map or Elements slice. Because those are Go reference types, a
// patch applied once is visible through every other copy of the same
// struct already embedded elsewhere in the graph — so iteration order
// over objects does not matter and a second pass is never needed.
func resolveInPlace(tables *symbolTables) error {
	for _, id := range tables.objectOrder {
		v := tables.objects[id]
		switch t := v.(type) {
		case ClassInstanceValue:
			for _, k := range t.MemberKeys {
				if ref, ok := t.Members[k].(ReferenceValue); ok {
					resolved, err := tables.lookupObject(ref.IDRef, 0)
					if err != nil {
						return err
					}
					t.Members[k] = resolved
				}
			}
		case ArrayValue:
			for i, e := range t.Elements {
				if ref, ok := e.(ReferenceValue); ok {
					resolved, err := tables.lookupObject(ref.IDRef, 0)
					if err != nil {
						return err
					}
					t.Elements[i] = resolved
				}
			}
		}
	}
	return nil
}

// expandValue substitutes placeholders with fresh shallow copies,
// tracking the set of object ids currently being expanded on this
// branch to detect cycles.
func expandValue(v Value, visiting map[int32]bool, tables *symbolTables, skipCycles bool) (Value, error) {
	switch t := v.(type) {
	case ReferenceValue:
		if visiting[t.IDRef] {
			if skipCycles {
				return CyclicStubValue{IDRef: t.IDRef}, nil
			}
			return nil, newIDErr(ErrCyclicReference, 0, t.IDRef)
		}
		obj, err := tables.lookupObject(t.IDRef, 0)
		if err != nil {
			return nil, err
		}
		visiting[t.IDRef] = true
		defer delete(visiting, t.IDRef)
		return expandValue(obj, visiting, tables, skipCycles)

	case ClassInstanceValue:
		newMembers := make(map[string]Value, len(t.Members))
		for _, k := range t.MemberKeys {
			ev, err := expandValue(t.Members[k], visiting, tables, skipCycles)
			if err != nil {
				return nil, err
			}
			newMembers[k] = ev
		}
		t.Members = newMembers
		return t, nil

	case ArrayValue:
		newElems := make([]Value, len(t.Elements))
		for i, e := range t.Elements {
			ev, err := expandValue(e, visiting, tables, skipCycles)
			if err != nil {
				return nil, err
			}
			newElems[i] = ev
		}
		t.Elements = newElems
		return t, nil

	default:
		return v, nil
	}
}

// resolveExpand expands the tree rooted at rootID into a cycle-free
// copy, pre-marking rootID as visiting so a reference back to the
// root itself is caught as a cycle.
func resolveExpand(tables *symbolTables, rootID int32, skipCycles bool) (Value, error) {
	root, err := tables.lookupObject(rootID, 0)
	if err != nil {
		return nil, err
	}
	visiting := map[int32]bool{rootID: true}
	return expandValue(root, visiting, tables, skipCycles)
}
