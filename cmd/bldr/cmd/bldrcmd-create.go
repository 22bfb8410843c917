// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/agencyforge/pagebuilder/pkg/util/utilfn"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
	"github.com/spf13/cobra"
)

var createConfigArg string
var createHtml bool

var createCmd = &cobra.Command{
	Use:   "create <type> [--config json] [--html]",
	Short: "create a component and print it",
	Long:  `create builds a detached element for a registered component type and prints it as json (or rendered html with --html)`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCreateCmd,
}

func init() {
	createCmd.Flags().StringVarP(&createConfigArg, "config", "c", "", "component config as a json object")
	createCmd.Flags().BoolVar(&createHtml, "html", false, "print rendered html instead of json")
	rootCmd.AddCommand(createCmd)
}

func runCreateCmd(cmd *cobra.Command, args []string) error {
	var config map[string]any
	if createConfigArg != "" {
		if err := json.Unmarshal([]byte(createConfigArg), &config); err != nil {
			return fmt.Errorf("invalid --config json: %w", err)
		}
	}
	elem, err := getFactory().Create(args[0], config)
	if err != nil {
		return err
	}
	if createHtml {
		html, err := vdom.RenderHTML(elem)
		if err != nil {
			return err
		}
		WriteStdout("%s\n", html)
		return nil
	}
	out, err := utilfn.MarshalIndentNoHTMLString(elem, "", "  ")
	if err != nil {
		return err
	}
	WriteStdout("%s\n", out)
	return nil
}
