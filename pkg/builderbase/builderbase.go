// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package builderbase

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// set by main-server.go
var BuilderVersion = "0.0.0"
var BuildTime = "0"

const (
	ConfigHomeEnvVar = "BUILDER_CONFIG_HOME"
	DataHomeEnvVar   = "BUILDER_DATA_HOME"
	DevVarName       = "BUILDER_DEV"
	DotEnvVarName    = "BUILDER_DOTENV"
)

const DefaultHomeDirName = ".pagebuilder"
const DBDir = "db"
const ConfigDir = "config"
const PublishDir = "published"
const DotEnvFileName = ".env"

var ConfigHome_VarCache string // caches BUILDER_CONFIG_HOME
var DataHome_VarCache string   // caches BUILDER_DATA_HOME
var Dev_VarCache string        // caches BUILDER_DEV

var baseLock = &sync.Mutex{}
var ensureDirCache = map[string]bool{}

// LoadDotEnv loads KEY=VAL pairs from the given files into the process env.
// existing env vars win.  missing files are skipped.
func LoadDotEnv(fileNames ...string) error {
	var existing []string
	for _, fileName := range fileNames {
		if fileName == "" {
			continue
		}
		if _, err := os.Stat(fileName); err != nil {
			continue
		}
		existing = append(existing, fileName)
	}
	if len(existing) == 0 {
		return nil
	}
	err := godotenv.Load(existing...)
	if err != nil {
		return fmt.Errorf("loading env files %v: %w", existing, err)
	}
	log.Printf("[config] loaded env from %v\n", existing)
	return nil
}

// CacheAndRemoveEnvVars reads (and unsets) the builder env vars.  unset dirs default under ~/.pagebuilder
func CacheAndRemoveEnvVars() error {
	ConfigHome_VarCache = os.Getenv(ConfigHomeEnvVar)
	os.Unsetenv(ConfigHomeEnvVar)
	DataHome_VarCache = os.Getenv(DataHomeEnvVar)
	os.Unsetenv(DataHomeEnvVar)
	Dev_VarCache = os.Getenv(DevVarName)
	os.Unsetenv(DevVarName)
	var err error
	if ConfigHome_VarCache == "" {
		ConfigHome_VarCache = filepath.Join(GetHomeDir(), DefaultHomeDirName, ConfigDir)
	} else if ConfigHome_VarCache, err = ExpandHomeDir(ConfigHome_VarCache); err != nil {
		return fmt.Errorf("%s: %w", ConfigHomeEnvVar, err)
	}
	if DataHome_VarCache == "" {
		DataHome_VarCache = filepath.Join(GetHomeDir(), DefaultHomeDirName)
	} else if DataHome_VarCache, err = ExpandHomeDir(DataHome_VarCache); err != nil {
		return fmt.Errorf("%s: %w", DataHomeEnvVar, err)
	}
	return nil
}

func IsDevMode() bool {
	return Dev_VarCache != ""
}

func GetDataDir() string {
	return DataHome_VarCache
}

func GetConfigDir() string {
	return ConfigHome_VarCache
}

func GetHomeDir() string {
	homeVar, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return homeVar
}

func ExpandHomeDir(pathStr string) (string, error) {
	if pathStr != "~" && !strings.HasPrefix(pathStr, "~/") {
		return filepath.Clean(pathStr), nil
	}
	homeDir := GetHomeDir()
	if pathStr == "~" {
		return homeDir, nil
	}
	expandedPath := filepath.Clean(filepath.Join(homeDir, pathStr[2:]))
	if !strings.HasPrefix(expandedPath, homeDir) {
		return "", fmt.Errorf("potential path traversal detected for path %s", pathStr)
	}
	return expandedPath, nil
}

func EnsureDataDir() error {
	return CacheEnsureDir(GetDataDir(), "datahome", 0700, "builder data directory")
}

func EnsureDBDir() error {
	return CacheEnsureDir(filepath.Join(GetDataDir(), DBDir), "dbdir", 0700, "builder db directory")
}

func EnsureConfigDir() error {
	return CacheEnsureDir(GetConfigDir(), "configdir", 0700, "builder config directory")
}

func CacheEnsureDir(dirName string, cacheKey string, perm os.FileMode, dirDesc string) error {
	baseLock.Lock()
	ok := ensureDirCache[cacheKey]
	baseLock.Unlock()
	if ok {
		return nil
	}
	err := TryMkdirs(dirName, perm, dirDesc)
	if err != nil {
		return err
	}
	baseLock.Lock()
	ensureDirCache[cacheKey] = true
	baseLock.Unlock()
	return nil
}

func TryMkdirs(dirName string, perm os.FileMode, dirDesc string) error {
	info, err := os.Stat(dirName)
	if errors.Is(err, fs.ErrNotExist) {
		err = os.MkdirAll(dirName, perm)
		if err != nil {
			return fmt.Errorf("cannot make %s %q: %w", dirDesc, dirName, err)
		}
		info, err = os.Stat(dirName)
	}
	if err != nil {
		return fmt.Errorf("error trying to stat %s: %w", dirDesc, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q must be a directory", dirDesc, dirName)
	}
	return nil
}
