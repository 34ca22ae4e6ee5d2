// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

// Button reports whether this node is a submit-triggering control.
func (f *Form) Button() bool { return f.cfg.Button }

// Clicked reports whether this button was activated during submission.
// Disabled buttons are never clicked.
func (f *Form) Clicked() bool { return f.clicked && !f.cfg.Disabled }

// ClickedButton resolves the button activated during this submission, visible
// from any node of the tree.
//
// Resolution order: this node itself when it is a clicked, submitted,
// non-disabled button; otherwise the first clicked button among descendants,
// depth-first in insertion order; otherwise the parent's resolution. Nil when
// no button was clicked anywhere.
func (f *Form) ClickedButton() *Form {
	if b := f.clickedButtonDown(); b != nil {
		return b
	}

	if f.parent != nil {
		return f.parent.ClickedButton()
	}

	return nil
}

func (f *Form) clickedButtonDown() *Form {
	if f.cfg.Button && f.submitted && f.Clicked() {
		return f
	}

	for _, name := range f.order {
		if b := f.children[name].clickedButtonDown(); b != nil {
			return b
		}
	}

	return nil
}
