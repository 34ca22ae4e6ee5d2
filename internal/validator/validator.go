// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

// Package validator evaluates boolean expressions against an environment
// using the expr language. It backs conditional properties in form
// definitions and validation expressions on interactive prompts.
package validator

import (
	"fmt"
	"strconv"

	"github.com/AlecAivazis/survey/v2"
	"github.com/expr-lang/expr"
)

func helpers(env map[string]any) map[string]any {
	out := map[string]any{
		"isInt": func(v any) bool {
			switch n := v.(type) {
			case int, int64:
				return true
			case string:
				_, err := strconv.Atoi(n)
				return err == nil
			default:
				return false
			}
		},
		"isFloat": func(v any) bool {
			switch n := v.(type) {
			case float64, int:
				return true
			case string:
				_, err := strconv.ParseFloat(n, 64)
				return err == nil
			default:
				return false
			}
		},
	}

	for k, v := range env {
		out[k] = v
	}

	return out
}

// Validate evaluates expression against env and returns its boolean result.
func Validate(env map[string]any, expression string) (bool, error) {
	e := helpers(env)

	prog, err := expr.Compile(expression, expr.Env(e), expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return false, fmt.Errorf("invalid expression %q: %w", expression, err)
	}

	res, err := expr.Run(prog, e)
	if err != nil {
		return false, fmt.Errorf("could not evaluate expression %q: %w", expression, err)
	}

	b, ok := res.(bool)
	if !ok {
		return false, fmt.Errorf("expression %q did not return a boolean", expression)
	}

	return b, nil
}

// SurveyValidator adapts an expression to a survey validator. The answer is
// available to the expression as "value". Empty answers pass unless required
// is set.
func SurveyValidator(expression string, required bool) survey.Validator {
	return func(ans any) error {
		if s, ok := ans.(string); ok && s == "" && !required {
			return nil
		}

		ok, err := Validate(map[string]any{"value": ans, "Value": ans}, expression)
		if err != nil {
			return err
		}

		if !ok {
			return fmt.Errorf("validation using %q did not pass", expression)
		}

		return nil
	}
}
