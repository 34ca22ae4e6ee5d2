// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"strconv"
	"strings"
)

// DataTransformer converts between the model and view representations of a
// single node's value. Transform runs model to view; ReverseTransform runs
// view to model during submission.
type DataTransformer interface {
	Transform(value any) (any, error)
	ReverseTransform(value any) (any, error)
}

// chain applies transformers innermost first when producing view data and in
// reverse order when reversing submitted data.
type chain []DataTransformer

func (c chain) transform(value any) (any, error) {
	var err error
	for _, t := range c {
		value, err = t.Transform(value)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

func (c chain) reverseTransform(value any) (any, error) {
	var err error
	for i := len(c) - 1; i >= 0; i-- {
		value, err = c[i].ReverseTransform(value)
		if err != nil {
			return nil, err
		}
	}
	return value, nil
}

// IntegerTransformer converts between integer model data and string view data.
type IntegerTransformer struct{}

func (IntegerTransformer) Transform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case int:
		return strconv.Itoa(v), nil
	case int64:
		return strconv.FormatInt(v, 10), nil
	default:
		return nil, fmt.Errorf("expected an integer, got %T", value)
	}
}

func (IntegerTransformer) ReverseTransform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case int:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid integer", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected a string, got %T", value)
	}
}

// FloatTransformer converts between float model data and string view data.
type FloatTransformer struct{}

func (FloatTransformer) Transform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	case int:
		return strconv.Itoa(v), nil
	default:
		return nil, fmt.Errorf("expected a float, got %T", value)
	}
}

func (FloatTransformer) ReverseTransform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return nil, nil
	case float64:
		return v, nil
	case string:
		if v == "" {
			return nil, nil
		}
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid number", v)
		}
		return n, nil
	default:
		return nil, fmt.Errorf("expected a string, got %T", value)
	}
}

// BoolTransformer converts between boolean model data and string view data.
type BoolTransformer struct{}

func (BoolTransformer) Transform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case bool:
		return strconv.FormatBool(v), nil
	default:
		return nil, fmt.Errorf("expected a bool, got %T", value)
	}
}

func (BoolTransformer) ReverseTransform(value any) (any, error) {
	switch v := value.(type) {
	case nil:
		return false, nil
	case bool:
		return v, nil
	case string:
		if v == "" {
			return false, nil
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid boolean", v)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected a string, got %T", value)
	}
}

// TrimTransformer leaves model data unchanged and trims surrounding
// whitespace from submitted strings.
type TrimTransformer struct{}

func (TrimTransformer) Transform(value any) (any, error) {
	return value, nil
}

func (TrimTransformer) ReverseTransform(value any) (any, error) {
	if s, ok := value.(string); ok {
		return strings.TrimSpace(s), nil
	}
	return value, nil
}
