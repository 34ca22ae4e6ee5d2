// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package form implements a hierarchical data-binding and submission engine.
// A tree of named nodes binds submitted flat or nested input onto a structured
// model object, mediated by a chain of reversible transformers per leaf and a
// pluggable data mapper per compound node.
//
// Nodes are constructed configured via New, assembled with Add, and written
// through two entry points: SetData for programmatic model data and Submit for
// user input. Both fire lifecycle events whose listeners may mutate the tree
// mid-flight; the mapping machinery observes the live child set rather than a
// snapshot. Errors collected on nodes are exposed as a flat or nested view
// with a fixed plain-text rendering, see Errors.
package form

import (
	"fmt"
	"iter"
	"slices"
)

// Form is a node in the form tree. A compound node owns children and a data
// mapper; a leaf owns a transformer chain only. Forms are not safe for
// concurrent use by multiple goroutines.
type Form struct {
	cfg    Config
	parent *Form

	order    []string
	children map[string]*Form

	modelData any
	viewData  any

	initialized bool
	submitted   bool
	clicked     bool

	errors  []*Error
	extra   map[string]any
	failure *TransformationFailure

	listeners map[EventKind][]ListenerFunc

	chain chain
}

// New creates a configured form node. The configuration is validated and the
// initial data, when present, is applied as by SetData.
func New(cfg Config) (*Form, error) {
	err := validateConfig(&cfg)
	if err != nil {
		return nil, err
	}

	f := &Form{
		cfg:       cfg,
		children:  map[string]*Form{},
		listeners: map[EventKind][]ListenerFunc{},
		chain:     chain(cfg.Transformers),
	}

	for _, l := range cfg.Listeners {
		f.listeners[l.On] = append(f.listeners[l.On], l.Fn)
	}

	if cfg.Data != nil {
		err = f.SetData(cfg.Data)
		if err != nil {
			return nil, err
		}
	}

	return f, nil
}

// Name returns the node's name, unique among its siblings.
func (f *Form) Name() string { return f.cfg.Name }

// Parent returns the node holding this one in its children, or nil for roots.
func (f *Form) Parent() *Form { return f.parent }

// Root returns the topmost ancestor of this node.
func (f *Form) Root() *Form {
	r := f
	for r.parent != nil {
		r = r.parent
	}
	return r
}

// Compound reports whether this node owns children and a data mapper.
func (f *Form) Compound() bool { return f.cfg.Compound }

// InheritData reports whether this node's data is a view onto its parent's.
func (f *Form) InheritData() bool { return f.cfg.InheritData }

// Disabled reports whether this node refuses submitted data.
func (f *Form) Disabled() bool { return f.cfg.Disabled }

// Submitted reports whether Submit ran on this node.
func (f *Form) Submitted() bool { return f.submitted }

// Initialized reports whether initial data was applied to this node.
func (f *Form) Initialized() bool { return f.initialized }

// On registers a listener for a lifecycle event.
func (f *Form) On(kind EventKind, fn ListenerFunc) {
	f.listeners[kind] = append(f.listeners[kind], fn)
}

func (f *Form) dispatch(kind EventKind, data any) (any, error) {
	ev := &Event{form: f, data: data}
	for _, fn := range f.listeners[kind] {
		if err := fn(ev); err != nil {
			return nil, err
		}
	}
	return ev.data, nil
}

// Add appends child to this node's children.
//
// It fails with ErrAlreadySubmitted once this node has been submitted, when
// the child is unnamed, already attached elsewhere, or an ancestor of this
// node. On an initialized, non-inheriting compound node the current data is
// mapped onto the single new child immediately so late additions receive
// correctly derived initial data.
func (f *Form) Add(child *Form) error {
	return f.insert(len(f.order), child)
}

// AddAt inserts child at the given position in the traversal order,
// otherwise behaving exactly as Add.
func (f *Form) AddAt(index int, child *Form) error {
	if index < 0 || index > len(f.order) {
		return fmt.Errorf("index %d out of range", index)
	}
	return f.insert(index, child)
}

func (f *Form) insert(index int, child *Form) error {
	if f.submitted {
		return ErrAlreadySubmitted
	}

	if child.cfg.Name == "" {
		return fmt.Errorf("children require a name")
	}

	if child.parent != nil {
		return fmt.Errorf("parent already set")
	}

	for a := f; a != nil; a = a.parent {
		if a == child {
			return fmt.Errorf("cannot add %q: node is its own ancestor", child.cfg.Name)
		}
	}

	if _, ok := f.children[child.cfg.Name]; ok {
		return fmt.Errorf("child %q already present", child.cfg.Name)
	}

	child.parent = f
	f.order = slices.Insert(f.order, index, child.cfg.Name)
	f.children[child.cfg.Name] = child

	// A child added after setup still receives derived initial data. Nodes
	// inheriting data and uninitialized nodes map lazily at the next SetData.
	if f.cfg.Compound && f.initialized && !f.cfg.InheritData {
		// An inheriting child is never a mapping target itself; its own
		// children take its place, same as in the full mapping scope.
		scope := iter.Seq[*Form](func(yield func(*Form) bool) {
			yield(child)
		})
		if child.cfg.InheritData {
			scope = MappingScope(child)
		}

		return f.cfg.Mapper.MapDataToForms(f.viewData, scope)
	}

	return nil
}

// Remove detaches the named child and clears its parent reference. Removing
// an absent name is a no-op. It fails with ErrAlreadySubmitted once this node
// has been submitted.
func (f *Form) Remove(name string) error {
	if f.submitted {
		return ErrAlreadySubmitted
	}

	child, ok := f.children[name]
	if !ok {
		return nil
	}

	child.parent = nil
	delete(f.children, name)
	f.order = slices.DeleteFunc(f.order, func(n string) bool { return n == name })

	return nil
}

// Has reports whether a child with the given name is present.
func (f *Form) Has(name string) bool {
	_, ok := f.children[name]
	return ok
}

// Get returns the named child.
func (f *Form) Get(name string) (*Form, bool) {
	c, ok := f.children[name]
	return c, ok
}

// Len returns the number of direct children.
func (f *Form) Len() int { return len(f.order) }

// Names returns the child names in traversal order.
func (f *Form) Names() []string { return slices.Clone(f.order) }

// Children yields the direct children in traversal order. The sequence reads
// the live child set so it is safe to use while listeners mutate the tree.
func (f *Form) Children() iter.Seq[*Form] {
	return func(yield func(*Form) bool) {
		seen := map[string]bool{}
		for {
			next, ok := f.nextChild(seen)
			if !ok {
				return
			}
			seen[next.cfg.Name] = true
			if !yield(next) {
				return
			}
		}
	}
}

// nextChild returns the first child in current order not yet seen, re-reading
// the live order so mutations between steps are observed.
func (f *Form) nextChild(seen map[string]bool) (*Form, bool) {
	for _, name := range f.order {
		if seen[name] {
			continue
		}
		if c, ok := f.children[name]; ok {
			return c, true
		}
	}
	return nil, false
}
