// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log"
	"os"

	"github.com/agencyforge/pagebuilder/pkg/bconfig"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/util/utilfn"
	"github.com/invopop/jsonschema"
)

const SchemaSettingsFileName = "schema/settings.json"
const SchemaComponentConfigFileName = "schema/componentconfig.json"

func writeSchema(fileName string, schema *jsonschema.Schema) error {
	jsonSchema, err := utilfn.MarshalIndentNoHTMLString(schema, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal schema: %v", err)
	}
	written, err := utilfn.WriteFileIfDifferent(fileName, []byte(jsonSchema))
	if !written {
		fmt.Fprintf(os.Stderr, "no changes to %s\n", fileName)
	}
	if err != nil {
		return fmt.Errorf("failed to write schema: %v", err)
	}
	return nil
}

func main() {
	if err := os.MkdirAll("schema", 0755); err != nil {
		log.Fatalf("cannot create schema dir: %v", err)
	}
	err := writeSchema(SchemaSettingsFileName, jsonschema.Reflect(&bconfig.SettingsType{}))
	if err != nil {
		log.Fatalf("settings schema error: %v", err)
	}
	err = writeSchema(SchemaComponentConfigFileName, compfactory.ConfigSchema())
	if err != nil {
		log.Fatalf("component config schema error: %v", err)
	}
}
