// Copyright (c) 2025-2026, Kay Dederichs and contributors
//
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/KDederichs/form"
	"github.com/KDederichs/form/factory"
	"github.com/KDederichs/form/interview"
	"github.com/choria-io/fisk"
	"gopkg.in/yaml.v3"
)

var (
	definition string
	dataFile   string
	stringData map[string]string
	keepExtra  bool
	asJSON     bool
	version    string
)

func main() {
	stringData = map[string]string{}

	app := fisk.New("formfill", "Binds data onto form definitions")
	app.Version(version)

	app.Help = `
Builds a form tree from a YAML definition, submits data onto it and prints
the bound result. Data comes from a JSON file, from the command line or from
interactive prompts.
`
	submit := app.Command("submit", "Submits data onto a form definition").Action(submitAction)
	submit.Arg("definition", "The form definition to build").Required().ExistingFileVar(&definition)
	submit.Arg("data", "Data to submit").StringMapVar(&stringData)
	submit.Flag("json", "Loads submitted data from a JSON file").PlaceHolder("FILE").ExistingFileVar(&dataFile)
	submit.Flag("keep-extra", "Show submitted keys that matched no field").BoolVar(&keepExtra)
	submit.Flag("output-json", "Print the result as JSON rather than YAML").BoolVar(&asJSON)

	iview := app.Command("interview", "Fills a form definition interactively").Action(interviewAction)
	iview.Arg("definition", "The form definition to build").Required().ExistingFileVar(&definition)
	iview.Flag("output-json", "Print the result as JSON rather than YAML").BoolVar(&asJSON)

	app.MustParseWithUsage(os.Args[1:])
}

func envData() map[string]any {
	env := map[string]string{}
	for _, val := range os.Environ() {
		parts := strings.SplitN(val, "=", 2)
		if len(parts) != 2 {
			continue
		}
		env[parts[0]] = parts[1]
	}

	return map[string]any{"ENVIRONMENT": env}
}

func submitAction(_ *fisk.ParseContext) error {
	def, err := factory.LoadFile(definition)
	if err != nil {
		return err
	}

	root, err := def.Build(envData())
	if err != nil {
		return err
	}

	data := map[string]any{}
	if dataFile != "" {
		df, err := os.ReadFile(dataFile)
		if err != nil {
			return err
		}
		err = json.Unmarshal(df, &data)
		if err != nil {
			return err
		}
	}
	for k, v := range stringData {
		data[k] = v
	}

	err = root.Submit(data, true)
	if err != nil {
		return err
	}

	return report(root)
}

func interviewAction(_ *fisk.ParseContext) error {
	def, err := factory.LoadFile(definition)
	if err != nil {
		return err
	}

	root, err := interview.Run(def, envData())
	if err != nil {
		return err
	}

	return report(root)
}

func report(root *form.Form) error {
	failed := false
	for child := range root.Children() {
		if f := child.Failure(); f != nil {
			root.AddError(form.NewError(fmt.Sprintf("%s: %s", child.Name(), f.Message)))
			failed = true
		}
	}

	if errs := root.Errors(true, false); errs.Len() > 0 {
		fmt.Fprint(os.Stderr, errs.String())
	}

	if keepExtra {
		for k := range root.ExtraData() {
			fmt.Fprintf(os.Stderr, "ignored unknown field %q\n", k)
		}
	}

	var out []byte
	var err error
	if asJSON {
		out, err = json.MarshalIndent(root.Data(), "", "  ")
	} else {
		out, err = yaml.Marshal(root.Data())
	}
	if err != nil {
		return err
	}

	fmt.Println(string(out))

	if failed {
		return fmt.Errorf("some fields could not be bound")
	}

	return nil
}
