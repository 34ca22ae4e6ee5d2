// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package interview fills a form definition interactively on a terminal. Each
// leaf property is presented as a prompt matching its type, the answers are
// assembled into the nested input structure, and the structure is submitted
// on the form tree built from the same definition. The submitted tree is
// returned so callers can inspect data, errors and transformation failures.
package interview

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/KDederichs/form"
	"github.com/KDederichs/form/factory"
	"github.com/KDederichs/form/internal/validator"
)

// surveyor abstracts the survey library for testability.
type surveyor interface {
	AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error
}

type defaultSurveyor struct{}

func (d *defaultSurveyor) AskOne(p survey.Prompt, response interface{}, opts ...survey.AskOpt) error {
	return survey.AskOne(p, response, opts...)
}

type option func(*interviewer)

func withSurveyor(s surveyor) option {
	return func(i *interviewer) {
		i.surveyor = s
	}
}

func withIsTerminal(f func() bool) option {
	return func(i *interviewer) {
		i.isTerminal = f
	}
}

func withOutput(w io.Writer) option {
	return func(i *interviewer) {
		i.output = w
	}
}

type interviewer struct {
	env        map[string]any
	input      map[string]any
	surveyor   surveyor
	isTerminal func() bool
	output     io.Writer
}

// Run presents the definition interactively and submits the collected input
// on the tree the definition builds. It requires a valid terminal. The env
// map provides template variables for descriptions and conditional
// expressions; the answers collected so far are additionally available to
// conditionals as "input".
func Run(def *factory.Definition, env map[string]any, opts ...option) (*form.Form, error) {
	iv := &interviewer{
		env:        env,
		input:      map[string]any{},
		surveyor:   &defaultSurveyor{},
		isTerminal: isTerminal,
		output:     os.Stdout,
	}

	for _, o := range opts {
		o(iv)
	}

	if !iv.isTerminal() {
		return nil, fmt.Errorf("can only run an interview on a valid terminal")
	}

	if len(def.Properties) == 0 {
		return nil, fmt.Errorf("no properties defined")
	}

	root, err := def.Build(env)
	if err != nil {
		return nil, err
	}

	d, err := renderTemplate(def.Description, env)
	if err != nil {
		return nil, err
	}
	fmt.Fprintln(iv.output, d)
	fmt.Fprintln(iv.output)

	iv.surveyor.AskOne(&survey.Input{Message: "Press enter to start"}, &struct{}{})

	err = iv.askProperties(def.Properties, iv.input)
	if err != nil {
		return nil, err
	}

	err = root.Submit(iv.input, true)
	if err != nil {
		return nil, err
	}

	return root, nil
}

// askProperties collects one value per property that should be presented
// into the given map, keyed by property name. Filling the live map keeps
// earlier answers visible to later conditionals.
func (iv *interviewer) askProperties(props []factory.Property, into map[string]any) error {
	for _, prop := range props {
		should, err := iv.shouldAsk(prop)
		if err != nil {
			return err
		}
		if !should {
			continue
		}

		val, err := iv.askProperty(prop)
		if err != nil {
			return err
		}

		into[prop.Name] = val
	}

	return nil
}

// askProperty dispatches a single property to the matching prompt. Properties
// with sub-properties collect a nested structure.
func (iv *interviewer) askProperty(prop factory.Property) (any, error) {
	if len(prop.Properties) > 0 {
		err := iv.describe(prop)
		if err != nil {
			return nil, err
		}

		nested := map[string]any{}
		err = iv.askProperties(prop.Properties, nested)
		if err != nil {
			return nil, err
		}

		return nested, nil
	}

	if prop.Multiple {
		return iv.askMultiple(prop)
	}

	switch prop.Type {
	case factory.CheckboxType:
		return iv.askBool(prop)

	case factory.IntegerType:
		return iv.askValidated(prop, "isInt(value)")

	case factory.FloatType:
		return iv.askValidated(prop, "isFloat(value)")

	case factory.TextType, factory.PasswordType, "":
		return iv.askString(prop)

	default:
		return nil, fmt.Errorf("unsupported property type %q", prop.Type)
	}
}

// askString prompts for a string or password value, delegating to a select
// prompt when the property enumerates its choices.
func (iv *interviewer) askString(prop factory.Property) (string, error) {
	err := iv.describe(prop)
	if err != nil {
		return "", err
	}

	if len(prop.Enum) > 0 {
		return iv.askEnum(prop)
	}

	var ans string
	var opts []survey.AskOpt

	if prop.Required {
		opts = append(opts, survey.WithValidator(survey.MinLength(1)))
	}

	if prop.ValidationExpression != "" {
		opts = append(opts, survey.WithValidator(validator.SurveyValidator(prop.ValidationExpression, prop.Required)))
	}

	if prop.Type == factory.PasswordType {
		err = iv.surveyor.AskOne(&survey.Password{
			Message: prop.Name,
			Help:    prop.Help,
		}, &ans, opts...)
	} else {
		err = iv.surveyor.AskOne(&survey.Input{
			Message: prop.Name,
			Help:    prop.Help,
			Default: defaultString(prop),
		}, &ans, opts...)
	}
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (iv *interviewer) askEnum(prop factory.Property) (string, error) {
	var ans string
	var opts []survey.AskOpt

	if prop.Required {
		opts = append(opts, survey.WithValidator(survey.Required))
	}

	deflt := defaultString(prop)
	if deflt == "" {
		deflt = prop.Enum[0]
	}

	err := iv.surveyor.AskOne(&survey.Select{
		Message: prop.Name,
		Help:    prop.Help,
		Default: deflt,
		Options: prop.Enum,
	}, &ans, opts...)
	if err != nil {
		return "", err
	}

	return ans, nil
}

// askValidated prompts for a string gated by an expression, combined with any
// custom validation. The raw string is returned; the node's transformer chain
// converts it during submission.
func (iv *interviewer) askValidated(prop factory.Property, validation string) (string, error) {
	err := iv.describe(prop)
	if err != nil {
		return "", err
	}

	if prop.ValidationExpression != "" {
		validation = fmt.Sprintf("%s && %s", validation, prop.ValidationExpression)
	}

	var ans string

	err = iv.surveyor.AskOne(&survey.Input{
		Message: prop.Name,
		Help:    prop.Help,
		Default: defaultString(prop),
	}, &ans, survey.WithValidator(validator.SurveyValidator(validation, true)))
	if err != nil {
		return "", err
	}

	return ans, nil
}

func (iv *interviewer) askBool(prop factory.Property) (bool, error) {
	err := iv.describe(prop)
	if err != nil {
		return false, err
	}

	var ans bool
	var dflt bool

	if s := defaultString(prop); s != "" {
		dflt, err = strconv.ParseBool(s)
		if err != nil {
			return false, err
		}
	}

	err = iv.surveyor.AskOne(&survey.Confirm{
		Message: prop.Name,
		Help:    prop.Help,
		Default: dflt,
	}, &ans)
	if err != nil {
		return false, err
	}

	return ans, nil
}

// askMultiple collects list entries until an empty answer.
func (iv *interviewer) askMultiple(prop factory.Property) ([]any, error) {
	err := iv.describe(prop)
	if err != nil {
		return nil, err
	}

	ans := []any{}

	for {
		prompt := fmt.Sprintf("Add additional '%s' entry", prop.Name)
		if len(ans) == 0 {
			prompt = fmt.Sprintf("Add first '%s' entry", prop.Name)
		}

		var val string
		err = iv.surveyor.AskOne(&survey.Input{
			Message: prompt,
			Help:    prop.Help,
		}, &val)
		if err != nil {
			return nil, err
		}

		if val == "" {
			break
		}

		ans = append(ans, val)
	}

	fmt.Fprintln(iv.output)

	return ans, nil
}

// describe renders the property description template and prints it.
func (iv *interviewer) describe(prop factory.Property) error {
	if prop.Description == "" {
		return nil
	}

	d, err := renderTemplate(prop.Description, iv.env)
	if err != nil {
		return err
	}

	fmt.Fprintln(iv.output)
	fmt.Fprintln(iv.output, d)
	fmt.Fprintln(iv.output)

	return nil
}

// shouldAsk evaluates the property's conditional against the environment
// merged with the answers collected so far.
func (iv *interviewer) shouldAsk(prop factory.Property) (bool, error) {
	if prop.Conditional == "" {
		return true, nil
	}

	env := make(map[string]any)
	for k, v := range iv.env {
		env[k] = v
	}

	env["input"] = iv.input
	env["Input"] = iv.input

	return validator.Validate(env, prop.Conditional)
}

func defaultString(prop factory.Property) string {
	switch v := prop.Default.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprintf("%v", v)
	}
}
