// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package logutil

import (
	"log"

	"github.com/agencyforge/pagebuilder/pkg/builderbase"
)

// DevPrintf logs using log.Printf only if running in dev mode
func DevPrintf(format string, v ...any) {
	if builderbase.IsDevMode() {
		log.Printf(format, v...)
	}
}

// LogPrefix sets the standard logger's prefix and flags for a builder binary
func LogPrefix(binName string) {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix("[" + binName + "] ")
}
