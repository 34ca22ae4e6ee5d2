// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package factory

import (
	"fmt"
	"io"
	"os"

	"github.com/KDederichs/form"
	"github.com/KDederichs/form/internal/validator"
	"gopkg.in/yaml.v3"
)

// Definition describes a form tree as data, typically loaded from YAML. The
// Description supports Go template syntax with Sprig functions and color
// markup tags like {red}text{/red} when presented interactively.
type Definition struct {
	Name        string     `json:"name" yaml:"name"`
	Description string     `json:"description" yaml:"description"`
	Properties  []Property `json:"properties" yaml:"properties"`
}

// Property defines a single node of the tree. Properties holding nested
// sub-properties build compound nodes; all others build leaves of the named
// type. Conditional is an expression evaluated against the environment to
// decide whether the node is included at all.
type Property struct {
	Name                 string     `json:"name" yaml:"name"`
	Description          string     `json:"description" yaml:"description"`
	Help                 string     `json:"help" yaml:"help"`
	Type                 string     `json:"type" yaml:"type"`
	Conditional          string     `json:"conditional" yaml:"conditional"`
	ValidationExpression string     `json:"validation" yaml:"validation"`
	Required             bool       `json:"required" yaml:"required"`
	Disabled             bool       `json:"disabled" yaml:"disabled"`
	Locked               bool       `json:"locked" yaml:"locked"`
	Multiple             bool       `json:"multiple" yaml:"multiple"`
	Default              any        `json:"default" yaml:"default"`
	Enum                 []string   `json:"enum" yaml:"enum"`
	Properties           []Property `json:"properties" yaml:"properties"`
}

// LoadReader reads a YAML form definition from r.
func LoadReader(r io.Reader) (*Definition, error) {
	fb, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	return LoadBytes(fb)
}

// LoadFile reads a YAML form definition from the file at path.
func LoadFile(path string) (*Definition, error) {
	fb, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	return LoadBytes(fb)
}

// LoadBytes unmarshals data as a YAML form definition.
func LoadBytes(data []byte) (*Definition, error) {
	var def Definition
	err := yaml.Unmarshal(data, &def)
	if err != nil {
		return nil, err
	}

	if len(def.Properties) == 0 {
		return nil, fmt.Errorf("no properties defined")
	}

	return &def, nil
}

// Build constructs the form tree the definition describes. Properties whose
// conditional expression evaluates false against env are left out. The
// "input" variable conditionals may reference defaults to an empty map so
// definitions shared with interactive filling still build.
func (d *Definition) Build(env map[string]any) (*form.Form, error) {
	merged := map[string]any{"input": map[string]any{}, "Input": map[string]any{}}
	for k, v := range env {
		merged[k] = v
	}
	env = merged

	f := NewFactory()

	root, err := f.CreateNamed(d.Name, CompoundType, nil, Options{})
	if err != nil {
		return nil, err
	}

	err = f.buildProperties(root, d.Properties, env)
	if err != nil {
		return nil, err
	}

	return root, nil
}

func (f *Factory) buildProperties(parent *form.Form, props []Property, env map[string]any) error {
	for _, prop := range props {
		if prop.Conditional != "" {
			ok, err := validator.Validate(env, prop.Conditional)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}
		}

		child, err := f.buildProperty(prop, env)
		if err != nil {
			return err
		}

		err = parent.Add(child)
		if err != nil {
			return err
		}
	}

	return nil
}

func (f *Factory) buildProperty(prop Property, env map[string]any) (*form.Form, error) {
	opts := Options{
		Disabled: prop.Disabled,
		Locked:   prop.Locked,
		Multiple: prop.Multiple,
	}

	if len(prop.Properties) > 0 {
		node, err := f.CreateNamed(prop.Name, CompoundType, nil, opts)
		if err != nil {
			return nil, err
		}

		err = f.buildProperties(node, prop.Properties, env)
		if err != nil {
			return nil, err
		}

		return node, nil
	}

	return f.CreateNamed(prop.Name, prop.Type, prop.Default, opts)
}
