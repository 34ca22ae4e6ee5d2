// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"iter"
)

// MappingScope yields the children of f that data mappers operate on.
//
// Children inheriting the parent's data are not yielded themselves; their own
// children are spliced into the sequence in their place, recursively, under
// their own names and preserving relative order. The sequence reads live
// state between steps, so a listener mutating the tree mid-traversal is
// observed: every child present for the duration of the traversal is yielded
// exactly once, in stable order, and a removed child is not yielded after its
// removal. The sequence is restartable; each range starts a fresh traversal.
func MappingScope(f *Form) iter.Seq[*Form] {
	return func(yield func(*Form) bool) {
		splice(f, map[string]bool{}, yield)
	}
}

// splice walks one level, descending through inherit-data children. Seen
// names are tracked per level: sibling names are unique, and a name yielded
// once stays consumed even if a listener re-inserts it mid-traversal.
func splice(f *Form, seen map[string]bool, yield func(*Form) bool) bool {
	for {
		next, ok := f.nextChild(seen)
		if !ok {
			return true
		}
		seen[next.cfg.Name] = true

		if next.cfg.InheritData {
			if !splice(next, map[string]bool{}, yield) {
				return false
			}
			continue
		}

		if !yield(next) {
			return false
		}
	}
}

// mappingNames returns the names visible to mappers, with inherit-data
// subtrees flattened. Used to partition submitted input by child name.
func (f *Form) mappingNames() []string {
	var names []string
	for child := range MappingScope(f) {
		names = append(names, child.cfg.Name)
	}
	return names
}
