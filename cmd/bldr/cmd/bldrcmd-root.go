// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"io"
	"os"
	"runtime/debug"

	"github.com/agencyforge/pagebuilder/pkg/bconfig"
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:               "bldr",
		Short:             "CLI tool for the page builder",
		Long:              `bldr lists, creates and renders page builder components and documents from the command line`,
		SilenceUsage:      true,
		PersistentPreRunE: preRunSetup,
	}
)

var WrappedStdout io.Writer = os.Stdout
var WrappedStderr io.Writer = os.Stderr
var BldrExitCode int

var noSettingsArg bool

// registry used by all commands, component overrides from settings.json are applied
var Registry *compfactory.Registry

func init() {
	rootCmd.PersistentFlags().BoolVar(&noSettingsArg, "no-settings", false, "ignore component overrides in settings.json")
}

func WriteStderr(fmtStr string, args ...any) {
	fmt.Fprintf(WrappedStderr, fmtStr, args...)
}

func WriteStdout(fmtStr string, args ...any) {
	fmt.Fprintf(WrappedStdout, fmtStr, args...)
}

func preRunSetup(cmd *cobra.Command, args []string) error {
	Registry = compfactory.MakeDefaultRegistry()
	if noSettingsArg {
		return nil
	}
	if err := builderbase.CacheAndRemoveEnvVars(); err != nil {
		return err
	}
	settings, err := bconfig.ReadSettings(builderbase.GetConfigDir())
	if err != nil {
		WriteStderr("[warning] %v\n", err)
	}
	Registry.ApplyOverrides(settings.Components)
	return nil
}

func getFactory() *compfactory.Factory {
	if Registry == nil {
		Registry = compfactory.MakeDefaultRegistry()
	}
	return compfactory.MakeFactory(Registry)
}

// Execute executes the root command.
func Execute() {
	defer func() {
		r := recover()
		if r != nil {
			WriteStderr("[panic] %v\n", r)
			debug.PrintStack()
			os.Exit(1)
		}
		os.Exit(BldrExitCode)
	}()
	err := rootCmd.Execute()
	if err != nil {
		BldrExitCode = 1
	}
}
