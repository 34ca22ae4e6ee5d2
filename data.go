// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"mime/multipart"
	"reflect"
)

// Data returns the model representation of the node's value. Nodes inheriting
// data report their parent's.
func (f *Form) Data() any {
	if f.cfg.InheritData && f.parent != nil {
		return f.parent.Data()
	}
	return f.modelData
}

// ViewData returns the view representation of the node's value, produced by
// running the transformer chain forward. Nodes inheriting data report their
// parent's.
func (f *Form) ViewData() any {
	if f.cfg.InheritData && f.parent != nil {
		return f.parent.ViewData()
	}
	return f.viewData
}

// ExtraData returns the submitted keys that matched no child, captured only
// when the submission ran with clearMissing enabled.
func (f *Form) ExtraData() map[string]any { return f.extra }

// SetData applies model data programmatically.
//
// The PreSetData event fires with the candidate value before any mutation;
// listeners may replace the value and add or remove children, and the mapping
// step that follows observes those changes. The transformer chain runs
// forward to produce view data; transform errors here propagate to the
// caller. Compound nodes then distribute the view data onto their mapping
// scope. Locked nodes ignore SetData once initialized.
func (f *Form) SetData(value any) error {
	if f.cfg.InheritData {
		return fmt.Errorf("cannot set data on a form inheriting its parent data")
	}

	if f.cfg.DataLocked && f.initialized {
		return nil
	}

	value, err := f.dispatch(PreSetData, value)
	if err != nil {
		return err
	}

	view, err := f.chain.transform(value)
	if err != nil {
		return fmt.Errorf("unable to transform data for %q: %w", f.cfg.Name, err)
	}

	f.modelData = value
	f.viewData = view

	if f.cfg.Compound {
		err = f.cfg.Mapper.MapDataToForms(view, MappingScope(f))
		if err != nil {
			return err
		}
	}

	f.initialized = true

	_, err = f.dispatch(PostSetData, f.modelData)

	return err
}

// Submit binds user-submitted input onto the tree.
//
// The node is marked submitted even when disabled. A disabled node ignores
// the value entirely and propagates only the submitted flag to its children.
// For compound nodes the value is partitioned by child name over the mapping
// scope: an absent key submits nil to the child when clearMissing is true and
// skips the child entirely when false, and keys matching no child are
// collected as extra data only under clearMissing. After the children
// submitted, the mapper folds their values back into the model unless no
// child submitted at all. Leaves run the transformer chain in reverse;
// failures are recorded on the node rather than returned, so sibling
// submission always continues.
//
// The submitted flag is set after the PreSubmit dispatch and child
// distribution, so a PreSubmit listener may still mutate the child set and a
// listener error leaves the node open for another Submit.
func (f *Form) Submit(value any, clearMissing bool) error {
	if f.submitted {
		return ErrAlreadySubmitted
	}

	if f.cfg.Disabled {
		f.markSubmittedTree()
		return nil
	}

	value, err := f.dispatch(PreSubmit, value)
	if err != nil {
		return err
	}

	if f.cfg.Compound {
		err = f.submitCompound(value, clearMissing)
	} else {
		f.submitLeaf(value)
	}
	f.submitted = true
	if err != nil {
		return err
	}

	_, err = f.dispatch(PostSubmit, f.modelData)

	return err
}

func (f *Form) submitCompound(value any, clearMissing bool) error {
	data, ok := value.(map[string]any)
	if value != nil && !ok {
		f.failure = &TransformationFailure{Message: diagCompound}
		f.modelData = nil
		f.viewData = nil
		return nil
	}
	if data == nil {
		data = map[string]any{}
	}

	anySubmitted := false
	for child := range MappingScope(f) {
		val, present := data[child.Name()]
		if !present {
			if !clearMissing {
				continue
			}
			// A locked child keeps its pre-seeded value when the input
			// does not name it, even under clearMissing.
			if child.cfg.DataLocked && child.initialized {
				continue
			}
			val = nil
		}

		if err := child.Submit(val, clearMissing); err != nil {
			return err
		}
		anySubmitted = true
	}

	// Inherit-data children are never mapping targets themselves; flag them
	// submitted so the whole subtree reaches its terminal state together.
	f.markInheritSubmitted()

	if clearMissing {
		known := map[string]bool{}
		for _, name := range f.mappingNames() {
			known[name] = true
		}
		for k, v := range data {
			if !known[k] {
				if f.extra == nil {
					f.extra = map[string]any{}
				}
				f.extra[k] = v
			}
		}
	}

	if f.cfg.InheritData || !anySubmitted {
		// With nothing submitted the pre-existing model object is kept,
		// identity included, rather than fabricating an empty one.
		return nil
	}

	model, err := f.cfg.Mapper.MapFormsToData(MappingScope(f), f.modelData)
	if err != nil {
		return err
	}

	view, err := f.chain.transform(model)
	if err != nil {
		f.failure = &TransformationFailure{Message: err.Error(), Cause: err}
		f.modelData = nil
		f.viewData = nil
		return nil
	}

	f.modelData = model
	f.viewData = view

	return nil
}

// submitLeaf never fails: reverse-transform errors are downgraded to a
// transformation failure on the node so sibling submission continues.
func (f *Form) submitLeaf(value any) {
	if f.cfg.Button {
		f.clicked = value != nil
		return
	}

	switch {
	case isFileUpload(value) && !f.cfg.AllowFileUpload:
		f.fail(diagFileGiven, nil)

	case isMulti(value) && !f.cfg.Multiple:
		f.fail(diagArrayGiven, nil)

	default:
		f.viewData = value

		model, err := f.chain.reverseTransform(value)
		if err != nil {
			f.fail(err.Error(), err)
			return
		}

		f.modelData = model
	}
}

func (f *Form) fail(message string, cause error) {
	f.failure = &TransformationFailure{Message: message, Cause: cause}
	f.modelData = nil
	f.viewData = nil
}

func (f *Form) markInheritSubmitted() {
	for _, name := range f.order {
		child := f.children[name]
		if child.cfg.InheritData && !child.submitted {
			child.submitted = true
			child.markInheritSubmitted()
		}
	}
}

// markSubmittedTree flags this node and every descendant as submitted without
// touching data or firing events, the terminal state reached below a disabled
// node.
func (f *Form) markSubmittedTree() {
	if f.submitted {
		return
	}
	f.submitted = true

	for _, name := range f.order {
		f.children[name].markSubmittedTree()
	}
}

func isFileUpload(v any) bool {
	_, ok := v.(*multipart.FileHeader)
	return ok
}

func isMulti(v any) bool {
	switch v.(type) {
	case nil, string, *multipart.FileHeader:
		return false
	}

	switch reflect.ValueOf(v).Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return true
	default:
		return false
	}
}
