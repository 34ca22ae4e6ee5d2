// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
)

// EventKind identifies a point in the setData/submit lifecycle where
// listeners are invoked.
type EventKind int

const (
	// PreSetData fires at the start of SetData with the candidate value,
	// before transformation and mapping. Listeners may replace the value
	// and may add or remove children; the mapping step that follows sees
	// the mutated tree.
	PreSetData EventKind = iota
	// PostSetData fires after SetData has transformed and mapped the value.
	PostSetData
	// PreSubmit fires at the start of Submit with the raw submitted value,
	// before it is distributed to children. Listeners may replace the value
	// and may add or remove children.
	PreSubmit
	// PostSubmit fires once the node and all its children finished submitting.
	PostSubmit
)

// Event is the payload passed to listeners. The value it carries is the
// candidate data for the lifecycle step that fired it; SetData replaces
// the candidate for the remainder of the step.
type Event struct {
	form *Form
	data any
}

// Form returns the node the event fired on. Listeners may call Add and
// Remove on it; structural changes are observed by the steps that follow.
func (e *Event) Form() *Form { return e.form }

// Data returns the candidate value.
func (e *Event) Data() any { return e.data }

// SetData replaces the candidate value for the remainder of the
// triggering operation.
func (e *Event) SetData(v any) { e.data = v }

// ListenerFunc is invoked for a lifecycle event. A returned error aborts
// the triggering SetData or Submit call.
type ListenerFunc func(*Event) error

// Listener binds a ListenerFunc to an event kind, for registration via Config.
type Listener struct {
	On EventKind
	Fn ListenerFunc
}

// Config describes a form node before construction. Structural properties
// set here are fixed for the node's lifetime; only Add and Remove mutate
// the tree afterwards.
type Config struct {
	// Name identifies the node among its siblings. Empty names are legal
	// for root nodes only.
	Name string
	// Compound nodes own children and delegate data assembly to a Mapper.
	Compound bool
	// InheritData nodes hold no data of their own; their children are
	// spliced into the parent's mapping scope.
	InheritData bool
	// Disabled nodes accept no submitted data but still mark themselves
	// submitted so the tree reaches a consistent terminal state.
	Disabled bool
	// DataLocked guards the initial data against being overwritten by a
	// parent's mapping pass.
	DataLocked bool
	// Button marks the node as a submit-triggering control.
	Button bool
	// Multiple allows list values to be submitted to a leaf.
	Multiple bool
	// AllowFileUpload allows file uploads to be submitted to a leaf.
	AllowFileUpload bool
	// Data is the initial model data, applied during New.
	Data any
	// Mapper distributes and assembles data for compound nodes. Compound
	// nodes without an explicit mapper use MapMapper.
	Mapper DataMapper
	// Transformers form the chain between model and view representation,
	// applied innermost first.
	Transformers []DataTransformer
	// Listeners are registered before the initial data is applied.
	Listeners []Listener
}

func validateConfig(cfg *Config) error {
	if cfg.Compound && cfg.Button {
		return fmt.Errorf("buttons cannot be compound")
	}

	if cfg.InheritData && cfg.DataLocked {
		return fmt.Errorf("nodes inheriting data cannot lock their own")
	}

	if cfg.InheritData && cfg.Data != nil {
		return fmt.Errorf("nodes inheriting data cannot carry initial data")
	}

	if cfg.Compound && cfg.Mapper == nil {
		cfg.Mapper = &MapMapper{}
	}

	if !cfg.Compound && cfg.Mapper != nil {
		return fmt.Errorf("only compound nodes may have a data mapper")
	}

	return nil
}
