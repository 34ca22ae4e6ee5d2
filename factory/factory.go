// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package factory constructs configured form nodes from type names, model
// properties or YAML definitions. It owns the mapping from field type names
// to engine configuration; the engine itself is agnostic of types.
package factory

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/KDederichs/form"
)

// Type constants identify the builtin node types.
const (
	TextType     = "text"
	PasswordType = "password"
	IntegerType  = "integer"
	FloatType    = "float"
	CheckboxType = "checkbox"
	CompoundType = "compound"
	ButtonType   = "button"
	SubmitType   = "submit"
)

// Options tune a created node beyond what its type implies.
type Options struct {
	// Disabled nodes accept no submitted data.
	Disabled bool
	// Locked protects initial data from being overwritten by parent mapping.
	Locked bool
	// InheritData splices the node's children into the parent's mapping scope.
	InheritData bool
	// Multiple allows list values on a leaf.
	Multiple bool
	// AllowFileUpload allows uploaded files on a leaf.
	AllowFileUpload bool
	// Mapper overrides the compound node's data mapper.
	Mapper form.DataMapper
	// Transformers are appended after the type's own transformers.
	Transformers []form.DataTransformer
	// Listeners to register on the node.
	Listeners []form.Listener
}

// TypeFunc produces the base configuration for a node type.
type TypeFunc func(name string, opts Options) form.Config

// Factory creates form nodes from registered types.
type Factory struct {
	types map[string]TypeFunc
}

// NewFactory creates a factory with the builtin types registered.
func NewFactory() *Factory {
	f := &Factory{types: map[string]TypeFunc{}}

	f.RegisterType(TextType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Transformers: []form.DataTransformer{form.TrimTransformer{}}}
	})
	f.RegisterType(PasswordType, func(name string, opts Options) form.Config {
		return form.Config{Name: name}
	})
	f.RegisterType(IntegerType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Transformers: []form.DataTransformer{form.IntegerTransformer{}}}
	})
	f.RegisterType(FloatType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Transformers: []form.DataTransformer{form.FloatTransformer{}}}
	})
	f.RegisterType(CheckboxType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Transformers: []form.DataTransformer{form.BoolTransformer{}}}
	})
	f.RegisterType(CompoundType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Compound: true}
	})
	f.RegisterType(ButtonType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Button: true}
	})
	f.RegisterType(SubmitType, func(name string, opts Options) form.Config {
		return form.Config{Name: name, Button: true}
	})

	return f
}

// RegisterType adds or replaces a node type.
func (f *Factory) RegisterType(name string, fn TypeFunc) {
	f.types[name] = fn
}

// CreateNamed creates a node of the given type. The empty type is text.
func (f *Factory) CreateNamed(name, typ string, data any, opts Options) (*form.Form, error) {
	if typ == "" {
		typ = TextType
	}

	fn, ok := f.types[typ]
	if !ok {
		return nil, fmt.Errorf("unsupported node type %q", typ)
	}

	cfg := fn(name, opts)
	cfg.Data = data
	cfg.Disabled = opts.Disabled
	cfg.DataLocked = opts.Locked
	cfg.InheritData = opts.InheritData
	cfg.Multiple = opts.Multiple
	cfg.AllowFileUpload = opts.AllowFileUpload
	cfg.Transformers = append(cfg.Transformers, opts.Transformers...)
	cfg.Listeners = opts.Listeners
	if opts.Mapper != nil {
		cfg.Mapper = opts.Mapper
	}

	return form.New(cfg)
}

// CreateForProperty creates a node for a field of the model type, inferring
// the node type from the field's Go type. Fields are matched by their `form`
// tag when present, otherwise by case-insensitive name.
func (f *Factory) CreateForProperty(model any, property string, data any, opts Options) (*form.Form, error) {
	t := reflect.TypeOf(model)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("expected a struct model, got %T", model)
	}

	field, ok := lookupField(t, property)
	if !ok {
		return nil, fmt.Errorf("no field for property %q on %s", property, t)
	}

	typ := inferType(field.Type)
	if typ == CompoundType && field.Type.Kind() == reflect.Struct && opts.Mapper == nil {
		opts.Mapper = form.StructMapper{}
	}

	return f.CreateNamed(property, typ, data, opts)
}

func lookupField(t reflect.Type, property string) (reflect.StructField, bool) {
	for i := 0; i < t.NumField(); i++ {
		if tag, ok := t.Field(i).Tag.Lookup("form"); ok && tag == property {
			return t.Field(i), true
		}
	}
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Name, property) {
			return t.Field(i), true
		}
	}
	return reflect.StructField{}, false
}

func inferType(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}

	switch t.Kind() {
	case reflect.Bool:
		return CheckboxType
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return IntegerType
	case reflect.Float32, reflect.Float64:
		return FloatType
	case reflect.Struct, reflect.Map:
		return CompoundType
	default:
		return TextType
	}
}
