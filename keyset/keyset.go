// Copyright (C) 2019-2021, Ava Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package keyset implements an ordered-insertion set of key IDs.
//
// Trust rings and beneficiary sets are persisted inside codec-encoded
// records, so the set keeps its members in an exported slice (stable
// iteration order for introspection APIs) and rebuilds its lookup
// index lazily after decoding.
package keyset

// Set is a set of key IDs with insertion-ordered iteration.
// The zero value is an empty set ready for use.
type Set struct {
	Items []uint64 `serialize:"true" json:"items"`

	index map[uint64]struct{}
}

// New returns a set seeded with the given keys.
func New(keys ...uint64) Set {
	s := Set{}
	for _, k := range keys {
		s.Add(k)
	}
	return s
}

func (s *Set) ensureIndex() {
	if s.index != nil {
		return
	}
	s.index = make(map[uint64]struct{}, len(s.Items))
	for _, k := range s.Items {
		s.index[k] = struct{}{}
	}
}

// Add inserts k and reports whether it was not already present.
func (s *Set) Add(k uint64) bool {
	s.ensureIndex()
	if _, ok := s.index[k]; ok {
		return false
	}
	s.index[k] = struct{}{}
	s.Items = append(s.Items, k)
	return true
}

// Remove deletes k, preserving the order of the remaining members,
// and reports whether it was present.
func (s *Set) Remove(k uint64) bool {
	s.ensureIndex()
	if _, ok := s.index[k]; !ok {
		return false
	}
	delete(s.index, k)
	for i, v := range s.Items {
		if v == k {
			s.Items = append(s.Items[:i], s.Items[i+1:]...)
			break
		}
	}
	return true
}

// Contains reports whether k is a member.
func (s *Set) Contains(k uint64) bool {
	s.ensureIndex()
	_, ok := s.index[k]
	return ok
}

// Values returns the members in insertion order. The caller must not
// mutate the returned slice.
func (s *Set) Values() []uint64 {
	return s.Items
}

// Len returns the number of members.
func (s *Set) Len() int {
	return len(s.Items)
}
