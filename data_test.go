// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"mime/multipart"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("SetData", func() {
	It("Should distribute data onto children", func() {
		parent := compound("author")
		first := named("firstName")
		last := named("lastName")
		Expect(parent.Add(first)).To(Succeed())
		Expect(parent.Add(last)).To(Succeed())

		Expect(parent.SetData(map[string]any{"firstName": "Bernhard", "lastName": "Schussek"})).To(Succeed())

		Expect(first.Data()).To(Equal("Bernhard"))
		Expect(last.Data()).To(Equal("Schussek"))
	})

	It("Should run the transformer chain forward", func() {
		f, err := New(Config{Name: "age", Transformers: []DataTransformer{IntegerTransformer{}}})
		Expect(err).ToNot(HaveOccurred())

		Expect(f.SetData(42)).To(Succeed())
		Expect(f.Data()).To(Equal(42))
		Expect(f.ViewData()).To(Equal("42"))
	})

	It("Should propagate transform errors", func() {
		f, err := New(Config{Name: "age", Transformers: []DataTransformer{IntegerTransformer{}}})
		Expect(err).ToNot(HaveOccurred())

		Expect(f.SetData("not a number")).To(MatchError(ContainSubstring("expected an integer")))
	})

	It("Should refuse data on inheriting nodes", func() {
		f, err := New(Config{Name: "x", Compound: true, InheritData: true})
		Expect(err).ToNot(HaveOccurred())
		Expect(f.SetData(map[string]any{})).To(MatchError("cannot set data on a form inheriting its parent data"))
	})

	It("Should ignore writes to locked nodes once initialized", func() {
		f, err := New(Config{Name: "lastName", DataLocked: true, Data: "last name"})
		Expect(err).ToNot(HaveOccurred())

		Expect(f.SetData("other")).To(Succeed())
		Expect(f.Data()).To(Equal("last name"))
	})

	It("Should let listeners replace the candidate value", func() {
		f, err := New(Config{Name: "x", Listeners: []Listener{
			{On: PreSetData, Fn: func(ev *Event) error {
				ev.SetData("replaced")
				return nil
			}},
		}})
		Expect(err).ToNot(HaveOccurred())

		Expect(f.SetData("original")).To(Succeed())
		Expect(f.Data()).To(Equal("replaced"))
	})

	It("Should honor structural mutation by listeners", func() {
		parent, err := New(Config{Name: "p", Compound: true, Listeners: []Listener{
			{On: PreSetData, Fn: func(ev *Event) error {
				if err := ev.Form().Remove("a"); err != nil {
					return err
				}
				return ev.Form().Add(named("b"))
			}},
		}})
		Expect(err).ToNot(HaveOccurred())

		a := named("a")
		Expect(parent.Add(a)).To(Succeed())

		Expect(parent.SetData(map[string]any{"a": "1", "b": "2"})).To(Succeed())

		Expect(a.Parent()).To(BeNil())
		Expect(a.Initialized()).To(BeFalse())
		b, ok := parent.Get("b")
		Expect(ok).To(BeTrue())
		Expect(b.Data()).To(Equal("2"))
	})
})

var _ = Describe("Submit", func() {
	It("Should bind matching children and mark them submitted", func() {
		parent := compound("author")
		first := named("firstName")
		last := named("lastName")
		Expect(parent.Add(first)).To(Succeed())
		Expect(parent.Add(last)).To(Succeed())

		Expect(parent.Submit(map[string]any{"firstName": "Bernhard", "lastName": "Schussek"}, true)).To(Succeed())

		Expect(first.Data()).To(Equal("Bernhard"))
		Expect(last.Data()).To(Equal("Schussek"))
		Expect(first.Submitted()).To(BeTrue())
		Expect(last.Submitted()).To(BeTrue())
		Expect(parent.Data()).To(Equal(map[string]any{"firstName": "Bernhard", "lastName": "Schussek"}))
	})

	It("Should fail when already submitted", func() {
		f := named("x")
		Expect(f.Submit("a", true)).To(Succeed())
		Expect(f.Submit("b", true)).To(MatchError(ErrAlreadySubmitted))
	})

	It("Should reverse the transformer chain on leaves", func() {
		f, err := New(Config{Name: "age", Transformers: []DataTransformer{IntegerTransformer{}}})
		Expect(err).ToNot(HaveOccurred())

		Expect(f.Submit("42", true)).To(Succeed())
		Expect(f.Data()).To(Equal(42))
		Expect(f.ViewData()).To(Equal("42"))
	})

	Describe("clear-missing policy", func() {
		It("Should submit nil for omitted keys when clearing", func() {
			parent := compound("p")
			a := named("a")
			Expect(parent.Add(a)).To(Succeed())
			Expect(a.SetData("before")).To(Succeed())

			Expect(parent.Submit(map[string]any{}, true)).To(Succeed())

			Expect(a.Submitted()).To(BeTrue())
			Expect(a.Data()).To(BeNil())
		})

		It("Should leave omitted children untouched when not clearing", func() {
			parent := compound("p")
			a := named("a")
			b := named("b")
			Expect(parent.Add(a)).To(Succeed())
			Expect(parent.Add(b)).To(Succeed())
			Expect(a.SetData("before")).To(Succeed())

			Expect(parent.Submit(map[string]any{"b": "bound"}, false)).To(Succeed())

			Expect(a.Submitted()).To(BeFalse())
			Expect(a.Data()).To(Equal("before"))
			Expect(b.Submitted()).To(BeTrue())
			Expect(b.Data()).To(Equal("bound"))
		})

		It("Should skip locked children with omitted keys even when clearing", func() {
			parent := compound("p")
			locked, err := New(Config{Name: "lastName", DataLocked: true, Data: "last name"})
			Expect(err).ToNot(HaveOccurred())
			Expect(parent.Add(locked)).To(Succeed())

			Expect(parent.Submit(map[string]any{}, true)).To(Succeed())

			Expect(locked.Data()).To(Equal("last name"))
			Expect(locked.Submitted()).To(BeFalse())
		})

		It("Should submit locked children whose key is present", func() {
			parent := compound("p")
			locked, err := New(Config{Name: "lastName", DataLocked: true, Data: "last name"})
			Expect(err).ToNot(HaveOccurred())
			Expect(parent.Add(locked)).To(Succeed())

			Expect(parent.Submit(map[string]any{"lastName": "Schussek"}, true)).To(Succeed())

			Expect(locked.Data()).To(Equal("Schussek"))
			Expect(locked.Submitted()).To(BeTrue())
		})

		It("Should collect unmatched keys only when clearing", func() {
			parent := compound("p")
			Expect(parent.Add(named("a"))).To(Succeed())

			Expect(parent.Submit(map[string]any{"a": "1", "stray": "x"}, true)).To(Succeed())
			Expect(parent.ExtraData()).To(Equal(map[string]any{"stray": "x"}))

			other := compound("q")
			Expect(other.Add(named("a"))).To(Succeed())
			Expect(other.Submit(map[string]any{"a": "1", "stray": "x"}, false)).To(Succeed())
			Expect(other.ExtraData()).To(BeNil())
		})
	})

	Describe("disabled nodes", func() {
		It("Should ignore the value yet mark the subtree submitted", func() {
			parent, err := New(Config{Name: "p", Compound: true, Disabled: true})
			Expect(err).ToNot(HaveOccurred())
			a := named("a")
			Expect(parent.Add(a)).To(Succeed())
			Expect(a.SetData("before")).To(Succeed())

			Expect(parent.Submit(map[string]any{"a": "after"}, true)).To(Succeed())

			Expect(parent.Submitted()).To(BeTrue())
			Expect(a.Submitted()).To(BeTrue())
			Expect(a.Data()).To(Equal("before"))
		})

		It("Should never click a disabled button", func() {
			parent := compound("p")
			btn, err := New(Config{Name: "go", Button: true, Disabled: true})
			Expect(err).ToNot(HaveOccurred())
			Expect(parent.Add(btn)).To(Succeed())

			Expect(parent.Submit(map[string]any{"go": ""}, true)).To(Succeed())
			Expect(btn.Clicked()).To(BeFalse())
			Expect(parent.ClickedButton()).To(BeNil())
		})
	})

	Describe("transformation failures", func() {
		It("Should record the array diagnostic and clear the data", func() {
			f := named("x")
			Expect(f.SetData("before")).To(Succeed())

			Expect(f.Submit([]any{"a", "b"}, true)).To(Succeed())

			Expect(f.Failure()).ToNot(BeNil())
			Expect(f.Failure().Message).To(Equal("Submitted data was expected to be text or number, array given."))
			Expect(f.Data()).To(BeNil())
		})

		It("Should record the file diagnostic for unexpected uploads", func() {
			f := named("x")
			Expect(f.Submit(&multipart.FileHeader{Filename: "cv.pdf"}, true)).To(Succeed())

			Expect(f.Failure()).ToNot(BeNil())
			Expect(f.Failure().Message).To(Equal("Submitted data was expected to be text or number, file upload given."))
			Expect(f.Data()).To(BeNil())
		})

		It("Should accept uploads when allowed", func() {
			f, err := New(Config{Name: "cv", AllowFileUpload: true})
			Expect(err).ToNot(HaveOccurred())

			hdr := &multipart.FileHeader{Filename: "cv.pdf"}
			Expect(f.Submit(hdr, true)).To(Succeed())
			Expect(f.Failure()).To(BeNil())
			Expect(f.Data()).To(Equal(hdr))
		})

		It("Should accept lists on multiple leaves", func() {
			f, err := New(Config{Name: "tags", Multiple: true})
			Expect(err).ToNot(HaveOccurred())

			Expect(f.Submit([]any{"go", "forms"}, true)).To(Succeed())
			Expect(f.Failure()).To(BeNil())
			Expect(f.Data()).To(Equal([]any{"go", "forms"}))
		})

		It("Should not stop sibling submission", func() {
			parent := compound("p")
			bad, err := New(Config{Name: "bad", Transformers: []DataTransformer{IntegerTransformer{}}})
			Expect(err).ToNot(HaveOccurred())
			good := named("good")
			Expect(parent.Add(bad)).To(Succeed())
			Expect(parent.Add(good)).To(Succeed())

			Expect(parent.Submit(map[string]any{"bad": "NaN", "good": "ok"}, true)).To(Succeed())

			Expect(bad.Failure()).ToNot(BeNil())
			Expect(bad.Data()).To(BeNil())
			Expect(good.Data()).To(Equal("ok"))
			Expect(parent.Data()).To(Equal(map[string]any{"good": "ok"}))
		})

		It("Should record a failure for non-map input on compounds", func() {
			parent := compound("p")
			Expect(parent.Add(named("a"))).To(Succeed())

			Expect(parent.Submit("scalar", true)).To(Succeed())
			Expect(parent.Failure()).ToNot(BeNil())
			Expect(parent.Failure().Message).To(Equal("Compound forms expect an array or NULL on submission."))
		})
	})

	Describe("model identity", func() {
		It("Should keep the existing model when no child submitted", func() {
			parent := compound("p")
			a := named("a")
			Expect(parent.Add(a)).To(Succeed())

			model := map[string]any{"a": "kept"}
			Expect(parent.SetData(model)).To(Succeed())

			Expect(parent.Submit(map[string]any{}, false)).To(Succeed())

			Expect(parent.Data()).To(Equal(map[string]any{"a": "kept"}))

			// same object, not a rebuilt copy
			model["probe"] = "shared"
			Expect(parent.Data()).To(HaveKeyWithValue("probe", "shared"))
		})
	})

	Describe("events", func() {
		It("Should honor listener mutation before distribution", func() {
			b := named("b")
			parent, err := New(Config{Name: "p", Compound: true, Listeners: []Listener{
				{On: PreSubmit, Fn: func(ev *Event) error {
					if err := ev.Form().Remove("a"); err != nil {
						return err
					}
					return ev.Form().Add(b)
				}},
			}})
			Expect(err).ToNot(HaveOccurred())

			a := named("a")
			Expect(parent.Add(a)).To(Succeed())

			Expect(parent.Submit(map[string]any{"a": "1", "b": "2"}, true)).To(Succeed())

			Expect(a.Submitted()).To(BeFalse())
			Expect(a.Parent()).To(BeNil())
			Expect(b.Submitted()).To(BeTrue())
			Expect(b.Data()).To(Equal("2"))
		})

		It("Should let listeners replace the raw value", func() {
			f, err := New(Config{Name: "x", Listeners: []Listener{
				{On: PreSubmit, Fn: func(ev *Event) error {
					ev.SetData("replaced")
					return nil
				}},
			}})
			Expect(err).ToNot(HaveOccurred())

			Expect(f.Submit("original", true)).To(Succeed())
			Expect(f.Data()).To(Equal("replaced"))
		})

		It("Should leave the node open for resubmission after a listener error", func() {
			first := true
			f, err := New(Config{Name: "x", Listeners: []Listener{
				{On: PreSubmit, Fn: func(ev *Event) error {
					if first {
						first = false
						return fmt.Errorf("not ready")
					}
					return nil
				}},
			}})
			Expect(err).ToNot(HaveOccurred())

			Expect(f.Submit("v", true)).To(MatchError("not ready"))
			Expect(f.Submitted()).To(BeFalse())

			Expect(f.Submit("v", true)).To(Succeed())
			Expect(f.Data()).To(Equal("v"))
		})

		It("Should fire the post-submit event", func() {
			seen := []any{}
			f, err := New(Config{Name: "x", Listeners: []Listener{
				{On: PostSubmit, Fn: func(ev *Event) error {
					seen = append(seen, ev.Data())
					return nil
				}},
			}})
			Expect(err).ToNot(HaveOccurred())

			Expect(f.Submit("v", true)).To(Succeed())
			Expect(seen).To(Equal([]any{"v"}))
		})
	})

	Describe("inherit-data subtrees", func() {
		It("Should splice inherited children into the parent scope", func() {
			parent := compound("p")
			inherit, err := New(Config{Name: "meta", Compound: true, InheritData: true})
			Expect(err).ToNot(HaveOccurred())
			city := named("city")
			street := named("street")
			Expect(inherit.Add(city)).To(Succeed())
			Expect(inherit.Add(street)).To(Succeed())
			Expect(parent.Add(named("name"))).To(Succeed())
			Expect(parent.Add(inherit)).To(Succeed())

			Expect(parent.Submit(map[string]any{"name": "n", "city": "Berlin", "street": "x"}, true)).To(Succeed())

			Expect(city.Data()).To(Equal("Berlin"))
			Expect(street.Data()).To(Equal("x"))
			Expect(inherit.Submitted()).To(BeTrue())
			Expect(parent.Data()).To(Equal(map[string]any{"name": "n", "city": "Berlin", "street": "x"}))
			Expect(inherit.Data()).To(Equal(map[string]any{"name": "n", "city": "Berlin", "street": "x"}))
		})
	})
})
