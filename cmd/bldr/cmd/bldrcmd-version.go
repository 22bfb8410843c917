// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version number of bldr",
	RunE: func(cmd *cobra.Command, args []string) error {
		WriteStdout("bldr v%s (%s)\n", builderbase.BuilderVersion, builderbase.BuildTime)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
