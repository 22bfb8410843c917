// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/util/utilfn"
	"github.com/spf13/cobra"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "print the JSON Schema for component configs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		out, err := utilfn.MarshalIndentNoHTMLString(compfactory.ConfigSchema(), "", "  ")
		if err != nil {
			return err
		}
		WriteStdout("%s\n", out)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(schemaCmd)
}
