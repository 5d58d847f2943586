// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package nrbf

// symbolTables holds the three independent id-keyed maps a parse
// populates as it goes: library id -> name, class metadata id ->
// layout, and object id -> parsed value, populated in order while
// walking a self-describing structure and read back by later steps of
// the same parse. Lives for exactly one parse, created fresh by
// newDispatcher and discarded with it.
type symbolTables struct {
	libraries map[int32]string
	classes   map[int32]*ClassLayout
	objects   map[int32]Value
	// objectOrder records registration order of every registered
	// object, nested or top-level; resolveInPlace walks it to visit
	// each object once.
	objectOrder []int32
}

func newSymbolTables() *symbolTables {
	return &symbolTables{
		libraries: make(map[int32]string),
		classes:   make(map[int32]*ClassLayout),
		objects:   make(map[int32]Value),
	}
}

func (s *symbolTables) registerLibrary(id int32, name string, offset int64) error {
	if _, dup := s.libraries[id]; dup {
		return newIDErr(ErrDuplicateID, offset, id)
	}
	s.libraries[id] = name
	return nil
}

func (s *symbolTables) lookupLibrary(id int32, offset int64) (string, error) {
	name, ok := s.libraries[id]
	if !ok {
		return "", newIDErr(ErrUnknownLibrary, offset, id)
	}
	return name, nil
}

func (s *symbolTables) registerClass(layout *ClassLayout, offset int64) error {
	if _, dup := s.classes[layout.ObjectID]; dup {
		return newIDErr(ErrDuplicateID, offset, layout.ObjectID)
	}
	s.classes[layout.ObjectID] = layout
	return nil
}

func (s *symbolTables) lookupClass(metadataID int32, offset int64) (*ClassLayout, error) {
	layout, ok := s.classes[metadataID]
	if !ok {
		return nil, newIDErr(ErrUnknownClass, offset, metadataID)
	}
	return layout, nil
}

func (s *symbolTables) registerObject(id int32, v Value, offset int64) error {
	if _, dup := s.objects[id]; dup {
		return newIDErr(ErrDuplicateID, offset, id)
	}
	s.objects[id] = v
	s.objectOrder = append(s.objectOrder, id)
	return nil
}

func (s *symbolTables) lookupObject(id int32, offset int64) (Value, error) {
	v, ok := s.objects[id]
	if !ok {
		return nil, newIDErr(ErrUnknownObjectID, offset, id)
	}
	return v, nil
}
