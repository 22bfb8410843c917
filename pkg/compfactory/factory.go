// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"strings"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

// Factory builds visual elements from registered component descriptors.
// Create has no side effects beyond constructing the element, it never touches a document tree.
type Factory struct {
	Registry *Registry
}

func MakeFactory(reg *Registry) *Factory {
	if reg == nil {
		reg = MakeDefaultRegistry()
	}
	return &Factory{Registry: reg}
}

// Create builds a new, detached element for compType.  config is optional (nil is fine).
// unknown types fail with *UnknownComponentTypeError, no element is returned.
func (f *Factory) Create(compType string, config map[string]any) (*vdom.VElem, error) {
	if !f.Registry.Has(compType) {
		return nil, &UnknownComponentTypeError{Type: compType}
	}
	cfg, err := DecodeConfig(compType, config)
	if err != nil {
		return nil, err
	}
	return f.CreateWithConfig(compType, cfg)
}

func (f *Factory) CreateWithConfig(compType string, cfg *ComponentConfig) (*vdom.VElem, error) {
	desc, ok := f.Registry.Lookup(compType)
	if !ok {
		return nil, &UnknownComponentTypeError{Type: compType}
	}
	if cfg == nil {
		cfg = &ComponentConfig{}
	}
	elem := vdom.NewElem(desc.Tag)
	elem.CompType = desc.Type
	elem.Text = desc.DefaultText
	// descriptor maps are fresh copies from Lookup, safe to hand to the element
	elem.Props = desc.DefaultProps
	elem.Style = desc.DefaultStyle
	if err := applyCommonConfig(elem, cfg); err != nil {
		return nil, err
	}
	if desc.Build != nil {
		if err := desc.Build(elem, cfg); err != nil {
			return nil, err
		}
	}
	return elem, nil
}

func applyCommonConfig(elem *vdom.VElem, cfg *ComponentConfig) error {
	for name, val := range cfg.Attrs {
		lname := strings.ToLower(name)
		if !vdom.IsValidAttrName(lname) {
			return invalidConfigErr(elem.CompType, "invalid attr name %q", name)
		}
		if lname == "style" || lname == vdom.ElemIdAttr || lname == vdom.CompTypeAttr {
			return invalidConfigErr(elem.CompType, "attr %q cannot be set through attrs", name)
		}
		if vdom.IsEventAttr(lname) {
			return invalidConfigErr(elem.CompType, "attr %q: event handlers must be bound, not set as attributes", name)
		}
		if strVal, ok := val.(string); ok && (lname == "href" || lname == "src") && vdom.IsUnsafeUrl(strVal) {
			return invalidConfigErr(elem.CompType, "unsupported %s url %q", lname, strVal)
		}
		elem.SetProp(lname, val)
	}
	if cfg.Class != "" {
		elem.SetProp(vdom.ClassPropKey, cfg.Class)
	}
	if cfg.Key != "" {
		elem.SetProp(vdom.KeyPropKey, cfg.Key)
	}
	styleMap, err := cfg.StyleMap()
	if err != nil {
		return invalidConfigErr(elem.CompType, "%v", err)
	}
	for prop, val := range styleMap {
		elem.SetStyle(prop, val)
	}
	return nil
}

// Create is a convenience for one-off construction against a registry
func Create(reg *Registry, compType string, config map[string]any) (*vdom.VElem, error) {
	return MakeFactory(reg).Create(compType, config)
}
