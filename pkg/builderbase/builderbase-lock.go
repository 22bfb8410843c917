// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builderbase

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/alexflint/go-filemutex"
)

const DataLockFileName = "builder.lock"

type FDLock interface {
	Close() error
}

// AcquireDataLock takes an exclusive lock on the data dir so two servers never share a db
func AcquireDataLock() (FDLock, error) {
	return AcquireLock(filepath.Join(GetDataDir(), DataLockFileName))
}

func AcquireLock(lockFileName string) (FDLock, error) {
	log.Printf("[base] acquiring lock on %s\n", lockFileName)
	m, err := filemutex.New(lockFileName)
	if err != nil {
		return nil, fmt.Errorf("filemutex new error: %w", err)
	}
	err = m.TryLock()
	if err != nil {
		m.Close()
		return nil, fmt.Errorf("filemutex trylock error: %w", err)
	}
	return m, nil
}
