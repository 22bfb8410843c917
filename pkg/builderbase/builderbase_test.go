// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builderbase

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCacheAndRemoveEnvVars(t *testing.T) {
	tmpDir := t.TempDir()
	t.Setenv(ConfigHomeEnvVar, filepath.Join(tmpDir, "cfg"))
	t.Setenv(DataHomeEnvVar, filepath.Join(tmpDir, "data"))
	t.Setenv(DevVarName, "1")
	if err := CacheAndRemoveEnvVars(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if GetConfigDir() != filepath.Join(tmpDir, "cfg") {
		t.Errorf("bad config dir %q", GetConfigDir())
	}
	if GetDataDir() != filepath.Join(tmpDir, "data") {
		t.Errorf("bad data dir %q", GetDataDir())
	}
	if !IsDevMode() {
		t.Errorf("expected dev mode")
	}
	if os.Getenv(ConfigHomeEnvVar) != "" {
		t.Errorf("env var should have been removed")
	}
}

func TestLoadDotEnv(t *testing.T) {
	tmpDir := t.TempDir()
	envFile := filepath.Join(tmpDir, ".env")
	err := os.WriteFile(envFile, []byte("BUILDER_TEST_DOTENV_A=hello\nBUILDER_TEST_DOTENV_B=fromfile\n"), 0600)
	if err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("BUILDER_TEST_DOTENV_B", "fromenv")
	os.Unsetenv("BUILDER_TEST_DOTENV_A")
	defer os.Unsetenv("BUILDER_TEST_DOTENV_A")
	if err := LoadDotEnv(filepath.Join(tmpDir, "missing.env"), envFile); err != nil {
		t.Fatalf("LoadDotEnv: %v", err)
	}
	if os.Getenv("BUILDER_TEST_DOTENV_A") != "hello" {
		t.Errorf("expected value from file, got %q", os.Getenv("BUILDER_TEST_DOTENV_A"))
	}
	if os.Getenv("BUILDER_TEST_DOTENV_B") != "fromenv" {
		t.Errorf("existing env var should win, got %q", os.Getenv("BUILDER_TEST_DOTENV_B"))
	}
}

func TestTryMkdirs(t *testing.T) {
	tmpDir := t.TempDir()
	dir := filepath.Join(tmpDir, "a", "b")
	if err := TryMkdirs(dir, 0700, "test dir"); err != nil {
		t.Fatalf("TryMkdirs: %v", err)
	}
	filePath := filepath.Join(tmpDir, "file")
	os.WriteFile(filePath, []byte("x"), 0600)
	if err := TryMkdirs(filePath, 0700, "test dir"); err == nil {
		t.Fatalf("expected error for non-directory")
	}
}

func TestAcquireLock(t *testing.T) {
	lockFile := filepath.Join(t.TempDir(), DataLockFileName)
	lock, err := AcquireLock(lockFile)
	if err != nil {
		t.Fatalf("AcquireLock: %v", err)
	}
	if _, err := AcquireLock(lockFile); err == nil {
		t.Fatalf("second AcquireLock should fail while the first is held")
	}
	if err := lock.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	lock2, err := AcquireLock(lockFile)
	if err != nil {
		t.Fatalf("AcquireLock after release: %v", err)
	}
	lock2.Close()
}
