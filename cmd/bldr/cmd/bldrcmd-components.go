// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/agencyforge/pagebuilder/pkg/util/utilfn"
	"github.com/spf13/cobra"
)

var componentsJson bool

var componentsCmd = &cobra.Command{
	Use:   "components [--json]",
	Short: "list the registered component types",
	Args:  cobra.NoArgs,
	RunE:  runComponentsCmd,
}

func init() {
	componentsCmd.Flags().BoolVar(&componentsJson, "json", false, "output full descriptors as json")
	rootCmd.AddCommand(componentsCmd)
}

func runComponentsCmd(cmd *cobra.Command, args []string) error {
	descs := Registry.Descriptors()
	if componentsJson {
		out, err := utilfn.MarshalIndentNoHTMLString(descs, "", "  ")
		if err != nil {
			return err
		}
		WriteStdout("%s\n", out)
		return nil
	}
	for _, desc := range descs {
		WriteStdout("%-12s <%s>  %s\n", desc.Type, desc.Tag, desc.Description)
	}
	return nil
}
