// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"iter"
	"reflect"
	"strings"
)

// DataMapper distributes a compound node's data onto its children and folds
// submitted children back into the compound's model data.
//
// The forms sequence already excludes inherit-data nodes and splices their
// children in; mappers must not reach for children directly. MapFormsToData
// receives the node's current model data and returns the updated model, which
// may be the same object mutated in place.
type DataMapper interface {
	MapDataToForms(data any, forms iter.Seq[*Form]) error
	MapFormsToData(forms iter.Seq[*Form], data any) (any, error)
}

// MapMapper maps map[string]any model data onto children keyed by child name.
// It is the default mapper for compound nodes.
type MapMapper struct{}

func (MapMapper) MapDataToForms(data any, forms iter.Seq[*Form]) error {
	if data == nil {
		for f := range forms {
			if err := f.SetData(nil); err != nil {
				return err
			}
		}
		return nil
	}

	m, ok := data.(map[string]any)
	if !ok {
		return fmt.Errorf("expected map[string]any, got %T", data)
	}

	for f := range forms {
		if err := f.SetData(m[f.Name()]); err != nil {
			return err
		}
	}

	return nil
}

func (MapMapper) MapFormsToData(forms iter.Seq[*Form], data any) (any, error) {
	m, ok := data.(map[string]any)
	if !ok {
		if data != nil {
			return nil, fmt.Errorf("expected map[string]any, got %T", data)
		}
		m = map[string]any{}
	}

	for f := range forms {
		if !f.Submitted() || f.Failure() != nil || f.Disabled() {
			continue
		}
		m[f.Name()] = f.Data()
	}

	return m, nil
}

// StructMapper maps struct model data onto children. Fields are matched by
// their `form` tag when present, otherwise by case-insensitive field name.
// MapFormsToData requires a pointer to a struct so fields can be written.
type StructMapper struct{}

func (StructMapper) MapDataToForms(data any, forms iter.Seq[*Form]) error {
	v := reflect.ValueOf(data)
	for v.Kind() == reflect.Pointer {
		v = v.Elem()
	}

	if !v.IsValid() {
		for f := range forms {
			if err := f.SetData(nil); err != nil {
				return err
			}
		}
		return nil
	}

	if v.Kind() != reflect.Struct {
		return fmt.Errorf("expected a struct, got %T", data)
	}

	for f := range forms {
		field := structField(v, f.Name())
		if !field.IsValid() {
			return fmt.Errorf("no field for form %q on %s", f.Name(), v.Type())
		}
		if err := f.SetData(field.Interface()); err != nil {
			return err
		}
	}

	return nil
}

func (StructMapper) MapFormsToData(forms iter.Seq[*Form], data any) (any, error) {
	v := reflect.ValueOf(data)
	if v.Kind() != reflect.Pointer || v.Elem().Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a pointer to struct, got %T", data)
	}
	elem := v.Elem()

	for f := range forms {
		if !f.Submitted() || f.Failure() != nil || f.Disabled() {
			continue
		}

		field := structField(elem, f.Name())
		if !field.IsValid() {
			return nil, fmt.Errorf("no field for form %q on %s", f.Name(), elem.Type())
		}
		if !field.CanSet() {
			return nil, fmt.Errorf("field for form %q on %s is not settable", f.Name(), elem.Type())
		}

		val := reflect.ValueOf(f.Data())
		switch {
		case !val.IsValid():
			field.SetZero()
		case val.Type().AssignableTo(field.Type()):
			field.Set(val)
		case val.Type().ConvertibleTo(field.Type()):
			field.Set(val.Convert(field.Type()))
		default:
			return nil, fmt.Errorf("cannot assign %T to field %q", f.Data(), f.Name())
		}
	}

	return data, nil
}

// structField resolves a form name to a struct field, preferring an explicit
// `form` tag over a case-insensitive name match.
func structField(v reflect.Value, name string) reflect.Value {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		if tag, ok := t.Field(i).Tag.Lookup("form"); ok && tag == name {
			return v.Field(i)
		}
	}
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Name, name) {
			return v.Field(i)
		}
	}
	return reflect.Value{}
}
