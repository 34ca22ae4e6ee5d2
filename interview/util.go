// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package interview

import (
	"bytes"
	"os"
	"strings"
	"text/template"

	"github.com/Masterminds/sprig/v3"
	"github.com/jedib0t/go-pretty/v6/text"
	terminal "golang.org/x/term"
)

func isTerminal() bool {
	return terminal.IsTerminal(int(os.Stdin.Fd())) && terminal.IsTerminal(int(os.Stdout.Fd()))
}

func renderTemplate(tmpl string, env map[string]any) (string, error) {
	t, err := template.New("interview").Funcs(sprig.TxtFuncMap()).Parse(tmpl)
	if err != nil {
		return "", err
	}

	out := bytes.NewBuffer([]byte{})

	err = t.Execute(out, env)
	if err != nil {
		return "", err
	}

	return colorMarkup(out.String()), nil
}

var markupColors = map[string]text.Color{
	"bold":      text.Bold,
	"black":     text.FgBlack,
	"red":       text.FgRed,
	"green":     text.FgGreen,
	"yellow":    text.FgYellow,
	"blue":      text.FgBlue,
	"magenta":   text.FgMagenta,
	"cyan":      text.FgCyan,
	"white":     text.FgWhite,
	"hiblack":   text.FgHiBlack,
	"hired":     text.FgHiRed,
	"higreen":   text.FgHiGreen,
	"hiyellow":  text.FgHiYellow,
	"hiblue":    text.FgHiBlue,
	"himagenta": text.FgHiMagenta,
	"hicyan":    text.FgHiCyan,
	"hiwhite":   text.FgHiWhite,
}

// colorMarkup replaces color tags like {red}text{/red} with the matching
// terminal escape sequences. A closing tag resets all attributes, so nested
// tags do not restore the enclosing color.
func colorMarkup(input string) string {
	for name, color := range markupColors {
		input = strings.ReplaceAll(input, "{"+name+"}", color.EscapeSeq())
		input = strings.ReplaceAll(input, "{/"+name+"}", text.EscapeReset)
	}

	return input
}
