// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package bconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/agencyforge/pagebuilder/pkg/bconfig/defaultconfig"
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
)

const SettingsFile = "settings.json"

const (
	PublishKind_Dir = "dir"
	PublishKind_S3  = "s3"
)

type SettingsType struct {
	WebListenAddr string `json:"web:listenaddr,omitempty" jsonschema_description:"host:port the builder http server listens on"`

	DBPath string `json:"db:path,omitempty" jsonschema_description:"sqlite db file, defaults to the data dir (use :memory: for a throwaway db)"`

	PublishKind   string `json:"publish:kind,omitempty" jsonschema:"enum=dir,enum=s3"`
	PublishDir    string `json:"publish:dir,omitempty"`
	PublishBucket string `json:"publish:bucket,omitempty"`
	PublishPrefix string `json:"publish:prefix,omitempty"`
	PublishRegion string `json:"publish:region,omitempty"`

	Components map[string]compfactory.ComponentOverride `json:"components,omitempty" jsonschema_description:"per component type default overrides"`
}

func (s SettingsType) Validate() error {
	switch s.PublishKind {
	case "", PublishKind_Dir:
	case PublishKind_S3:
		if s.PublishBucket == "" {
			return fmt.Errorf("publish:bucket is required when publish:kind is %q", PublishKind_S3)
		}
	default:
		return fmt.Errorf("invalid publish:kind %q", s.PublishKind)
	}
	return nil
}

func (s SettingsType) GetPublishDir() string {
	if s.PublishDir != "" {
		if expanded, err := builderbase.ExpandHomeDir(s.PublishDir); err == nil {
			return expanded
		}
		return s.PublishDir
	}
	return filepath.Join(builderbase.GetDataDir(), builderbase.PublishDir)
}

func decodeSettingsOver(base SettingsType, data []byte) (SettingsType, error) {
	rtn := base
	if base.Components != nil {
		rtn.Components = make(map[string]compfactory.ComponentOverride, len(base.Components))
		for k, v := range base.Components {
			rtn.Components[k] = v
		}
	}
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&rtn); err != nil {
		return base, err
	}
	return rtn, nil
}

func GetDefaultSettings() SettingsType {
	barr, err := fs.ReadFile(defaultconfig.ConfigFS, SettingsFile)
	if err != nil {
		// embedded at build time
		panic(fmt.Sprintf("cannot read default %s: %v", SettingsFile, err))
	}
	rtn, err := decodeSettingsOver(SettingsType{}, barr)
	if err != nil {
		panic(fmt.Sprintf("invalid default %s: %v", SettingsFile, err))
	}
	return rtn
}

func GetSettingsPath(configDir string) string {
	return filepath.Join(configDir, SettingsFile)
}

// ReadSettings reads settings.json from configDir over the defaults.
// a missing file is not an error.  on a bad file the defaults are returned with the error.
func ReadSettings(configDir string) (SettingsType, error) {
	defaults := GetDefaultSettings()
	fileName := GetSettingsPath(configDir)
	barr, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return defaults, nil
	}
	if err != nil {
		return defaults, fmt.Errorf("reading %s: %w", fileName, err)
	}
	if len(bytes.TrimSpace(barr)) == 0 {
		return defaults, nil
	}
	rtn, err := decodeSettingsOver(defaults, barr)
	if err != nil {
		return defaults, fmt.Errorf("parsing %s: %w", fileName, err)
	}
	if err := rtn.Validate(); err != nil {
		return defaults, fmt.Errorf("%s: %w", fileName, err)
	}
	return rtn, nil
}
