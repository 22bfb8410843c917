// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"fmt"
	"sort"
	"strings"

	"github.com/agencyforge/pagebuilder/pkg/util/logutil"
	"github.com/agencyforge/pagebuilder/pkg/vdom/cssparser"
	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// ComponentConfig holds the optional, type specific defaults accepted by Create.
// fields that do not apply to a component type are ignored.
type ComponentConfig struct {
	Label       string         `json:"label,omitempty" jsonschema_description:"visible label (button, link, header)"`
	Content     string         `json:"content,omitempty" jsonschema_description:"body text, or an HTML fragment for the html component"`
	Placeholder string         `json:"placeholder,omitempty"`
	Href        string         `json:"href,omitempty"`
	Src         string         `json:"src,omitempty"`
	Alt         string         `json:"alt,omitempty"`
	Level       int            `json:"level,omitempty" jsonschema:"minimum=1,maximum=6"`
	Rows        int            `json:"rows,omitempty" jsonschema:"minimum=1,maximum=100"`
	Cols        int            `json:"cols,omitempty" jsonschema:"minimum=1,maximum=26"`
	Style       any            `json:"style,omitempty" jsonschema_description:"CSS declaration string or property map"`
	Class       string         `json:"class,omitempty"`
	Attrs       map[string]any `json:"attrs,omitempty"`
	Key         string         `json:"key,omitempty"`
}

// DecodeConfig converts a loosely typed config map (as decoded from JSON) into a ComponentConfig
func DecodeConfig(compType string, config map[string]any) (*ComponentConfig, error) {
	rtn := &ComponentConfig{}
	if len(config) == 0 {
		return rtn, nil
	}
	var md mapstructure.Metadata
	dconfig := &mapstructure.DecoderConfig{
		Result:           rtn,
		TagName:          "json",
		Metadata:         &md,
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(dconfig)
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(config); err != nil {
		return nil, invalidConfigErr(compType, "%v", err)
	}
	if len(md.Unused) > 0 {
		sort.Strings(md.Unused)
		logutil.DevPrintf("[compfactory] %s: ignoring unknown config fields %v\n", compType, md.Unused)
	}
	return rtn, nil
}

// StyleMap normalizes the Style field (string or map) into a property map
func (cfg *ComponentConfig) StyleMap() (map[string]string, error) {
	if cfg == nil || cfg.Style == nil {
		return nil, nil
	}
	switch style := cfg.Style.(type) {
	case string:
		return cssparser.ParseStyle(style)
	case map[string]string:
		return style, nil
	case map[string]any:
		rtn := make(map[string]string, len(style))
		for prop, val := range style {
			if val == nil {
				continue
			}
			rtn[strings.ToLower(prop)] = fmt.Sprintf("%v", val)
		}
		return rtn, nil
	}
	return nil, fmt.Errorf("style must be a string or an object, got %T", cfg.Style)
}

// ConfigSchema returns the JSON schema for ComponentConfig
func ConfigSchema() *jsonschema.Schema {
	reflector := &jsonschema.Reflector{
		ExpandedStruct:            true,
		AllowAdditionalProperties: true,
	}
	return reflector.Reflect(&ComponentConfig{})
}
