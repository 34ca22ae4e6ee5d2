// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

const maxRequestMemory = 32 << 20

// HandleRequest derives the root node's submission from an HTTP request.
//
// POST, PUT, DELETE and PATCH are submitting methods: the request body is
// parsed into a nested structure using bracketed field names such as
// "profile[address][city]", uploaded files are merged in at their paths, and
// the result keyed by the root name is submitted. PATCH submits with
// clearMissing disabled so omitted fields keep their data. A named root
// absent from the request entirely is submitted null without clearing.
//
// GET is a full replace: the query string alone is the data, keyed by the
// root name or taken whole when the root is unnamed, and files are omitted.
// A named root absent from the query leaves the form untouched. All other
// methods do nothing.
func HandleRequest(f *Form, r *http.Request) error {
	switch r.Method {
	case http.MethodGet:
		return handleGet(f, r)

	case http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodPatch:
		return handleSubmitting(f, r)

	default:
		return nil
	}
}

func handleGet(f *Form, r *http.Request) error {
	query := nestedValues(r.URL.Query())

	if f.Name() == "" {
		return f.Submit(query, true)
	}

	data, ok := query[f.Name()]
	if !ok {
		return nil
	}

	return f.Submit(data, true)
}

func handleSubmitting(f *Form, r *http.Request) error {
	values, err := bodyValues(r)
	if err != nil {
		return fmt.Errorf("unable to parse request: %w", err)
	}

	params := nestedValues(values)

	var files map[string]any
	if r.MultipartForm != nil {
		files = nestedFiles(r.MultipartForm.File)
	}

	name := f.Name()
	var data any
	if name == "" {
		data = mergeNested(params, files)
	} else {
		p, pok := params[name]
		fl, fok := files[name]
		if !pok && !fok {
			return f.Submit(nil, false)
		}

		pm, pIsMap := p.(map[string]any)
		fm, fIsMap := fl.(map[string]any)
		switch {
		case pIsMap || fIsMap:
			data = mergeNested(pm, fm)
		case pok:
			data = p
		default:
			data = fl
		}
	}

	return f.Submit(data, r.Method != http.MethodPatch)
}

// bodyValues parses the request body into form values. ParseMultipartForm
// covers multipart bodies for every method and urlencoded bodies for POST,
// PUT and PATCH; net/http never reads a DELETE body as a form, so urlencoded
// DELETE payloads are parsed here.
func bodyValues(r *http.Request) (url.Values, error) {
	err := r.ParseMultipartForm(maxRequestMemory)
	if err != nil && err != http.ErrNotMultipart {
		return nil, err
	}

	if r.Method == http.MethodDelete && len(r.PostForm) == 0 && r.Body != nil {
		ct, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		if ct == "application/x-www-form-urlencoded" {
			body, err := io.ReadAll(io.LimitReader(r.Body, maxRequestMemory))
			if err != nil {
				return nil, err
			}

			return url.ParseQuery(string(body))
		}
	}

	return r.PostForm, nil
}

// nestedValues expands bracketed keys into nested maps. A trailing "[]"
// collects repeated values into a list; a repeated plain key keeps the last
// value.
func nestedValues(values map[string][]string) map[string]any {
	out := map[string]any{}
	for key, vals := range values {
		if len(vals) == 0 {
			continue
		}

		path, list := splitBrackets(key)
		if list {
			entries := make([]any, len(vals))
			for i, v := range vals {
				entries[i] = v
			}
			setPath(out, path, entries)
		} else {
			setPath(out, path, vals[len(vals)-1])
		}
	}
	return out
}

// nestedFiles expands bracketed upload field names the same way, carrying the
// multipart headers as values.
func nestedFiles(files map[string][]*multipart.FileHeader) map[string]any {
	out := map[string]any{}
	for key, headers := range files {
		if len(headers) == 0 {
			continue
		}

		path, list := splitBrackets(key)
		if list {
			entries := make([]any, len(headers))
			for i, h := range headers {
				entries[i] = h
			}
			setPath(out, path, entries)
		} else {
			setPath(out, path, headers[len(headers)-1])
		}
	}
	return out
}

// splitBrackets turns "a[b][c]" into its path segments and reports whether
// the key ended in "[]". Malformed remainders are kept as literal segments.
func splitBrackets(key string) ([]string, bool) {
	open := strings.IndexByte(key, '[')
	if open < 0 {
		return []string{key}, false
	}

	path := []string{key[:open]}
	rest := key[open:]
	list := false

	for rest != "" {
		if !strings.HasPrefix(rest, "[") {
			path = append(path, rest)
			break
		}
		end := strings.IndexByte(rest, ']')
		if end < 0 {
			path = append(path, rest[1:])
			break
		}

		seg := rest[1:end]
		rest = rest[end+1:]
		if seg == "" && rest == "" {
			list = true
			break
		}
		path = append(path, seg)
	}

	return path, list
}

func setPath(m map[string]any, path []string, value any) {
	for i := 0; i < len(path)-1; i++ {
		next, ok := m[path[i]].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[path[i]] = next
		}
		m = next
	}
	m[path[len(path)-1]] = value
}

// mergeNested layers files over params, descending into maps present on both
// sides.
func mergeNested(params, files map[string]any) map[string]any {
	out := map[string]any{}
	for k, v := range params {
		out[k] = v
	}

	for k, v := range files {
		fm, fok := v.(map[string]any)
		pm, pok := out[k].(map[string]any)
		if fok && pok {
			out[k] = mergeNested(pm, fm)
			continue
		}
		out[k] = v
	}

	return out
}
