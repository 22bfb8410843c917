// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package panichandler

import (
	"fmt"
	"log"
	"runtime/debug"
	"sync/atomic"
)

var panicCount atomic.Int64

func GetPanicCount() int64 {
	return panicCount.Load()
}

// LogPanic logs a recovered panic (if any) without converting it
func LogPanic(debugStr string, recoverVal any) {
	if recoverVal == nil {
		return
	}
	panicCount.Add(1)
	log.Printf("[panic] in %s: %v\n", debugStr, recoverVal)
	debug.PrintStack()
}

// PanicHandler handles panics and returns an error (wrapping the panic) if a panic occurred
func PanicHandler(debugStr string, recoverVal any) error {
	if recoverVal == nil {
		return nil
	}
	LogPanic(debugStr, recoverVal)
	if err, ok := recoverVal.(error); ok {
		return fmt.Errorf("panic in %s: %w", debugStr, err)
	}
	return fmt.Errorf("panic in %s: %v", debugStr, recoverVal)
}
