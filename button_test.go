// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func button(name string) *Form {
	f, err := New(Config{Name: name, Button: true})
	Expect(err).ToNot(HaveOccurred())
	return f
}

var _ = Describe("ClickedButton", func() {
	It("Should click a button submitted with a value", func() {
		parent := compound("p")
		btn := button("save")
		Expect(parent.Add(btn)).To(Succeed())

		Expect(parent.Submit(map[string]any{"save": ""}, true)).To(Succeed())

		Expect(btn.Clicked()).To(BeTrue())
		Expect(parent.ClickedButton()).To(Equal(btn))
	})

	It("Should not click a button whose key was absent", func() {
		parent := compound("p")
		btn := button("save")
		Expect(parent.Add(btn)).To(Succeed())
		Expect(parent.Add(named("a"))).To(Succeed())

		Expect(parent.Submit(map[string]any{"a": "x"}, true)).To(Succeed())

		Expect(btn.Clicked()).To(BeFalse())
		Expect(parent.ClickedButton()).To(BeNil())
	})

	It("Should find the first clicked button depth-first", func() {
		root := compound("root")
		nested := compound("nested")
		Expect(root.Add(nested)).To(Succeed())
		deep := button("deep")
		Expect(nested.Add(deep)).To(Succeed())
		late := button("late")
		Expect(root.Add(late)).To(Succeed())

		Expect(root.Submit(map[string]any{"nested": map[string]any{"deep": ""}, "late": ""}, true)).To(Succeed())

		Expect(root.ClickedButton()).To(Equal(deep))
	})

	It("Should resolve through the parent from any node", func() {
		root := compound("root")
		field := named("field")
		btn := button("go")
		Expect(root.Add(field)).To(Succeed())
		Expect(root.Add(btn)).To(Succeed())

		Expect(root.Submit(map[string]any{"field": "x", "go": ""}, true)).To(Succeed())

		Expect(field.ClickedButton()).To(Equal(btn))
	})

	It("Should return nil when nothing was clicked", func() {
		root := compound("root")
		Expect(root.Add(named("a"))).To(Succeed())
		Expect(root.Submit(map[string]any{"a": "x"}, true)).To(Succeed())
		Expect(root.ClickedButton()).To(BeNil())
	})
})
