// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"github.com/agencyforge/pagebuilder/cmd/bldr/cmd"
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
)

// set at build time
var BuilderVersion = "0.0.0"
var BuildTime = "0"

func main() {
	builderbase.BuilderVersion = BuilderVersion
	builderbase.BuildTime = BuildTime
	cmd.Execute()
}
