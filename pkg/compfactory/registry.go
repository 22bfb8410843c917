// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"fmt"
	"sort"
	"sync"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

// BuildFn applies the type specific parts of a component (config fields, child structure)
// to an element that already carries the descriptor defaults
type BuildFn = func(elem *vdom.VElem, cfg *ComponentConfig) error

type Descriptor struct {
	Type         string            `json:"type"`
	Tag          string            `json:"tag"`
	DefaultText  string            `json:"defaulttext,omitempty"`
	DefaultStyle map[string]string `json:"defaultstyle,omitempty"`
	DefaultProps map[string]any    `json:"defaultprops,omitempty"`
	Description  string            `json:"description,omitempty"`
	Build        BuildFn           `json:"-"`
}

// settings file override for a builtin (or registered) component's defaults
type ComponentOverride struct {
	Label string            `json:"label,omitempty"`
	Style map[string]string `json:"style,omitempty"`
}

func (d Descriptor) copy() Descriptor {
	rtn := d
	if d.DefaultStyle != nil {
		rtn.DefaultStyle = make(map[string]string, len(d.DefaultStyle))
		for k, v := range d.DefaultStyle {
			rtn.DefaultStyle[k] = v
		}
	}
	if d.DefaultProps != nil {
		rtn.DefaultProps = make(map[string]any, len(d.DefaultProps))
		for k, v := range d.DefaultProps {
			rtn.DefaultProps[k] = v
		}
	}
	return rtn
}

func (d Descriptor) withOverride(ov ComponentOverride) Descriptor {
	rtn := d.copy()
	if ov.Label != "" {
		rtn.DefaultText = ov.Label
	}
	if len(ov.Style) > 0 {
		if rtn.DefaultStyle == nil {
			rtn.DefaultStyle = make(map[string]string)
		}
		for prop, val := range ov.Style {
			if val == "" {
				delete(rtn.DefaultStyle, prop)
				continue
			}
			rtn.DefaultStyle[prop] = val
		}
	}
	return rtn
}

// Registry maps semantic type tags to descriptors.  it is passed explicitly to the
// factory and the host, there is no process wide registry.
type Registry struct {
	lock      *sync.Mutex
	base      map[string]Descriptor
	effective map[string]Descriptor
	overrides map[string]ComponentOverride
}

func MakeRegistry() *Registry {
	return &Registry{
		lock:      &sync.Mutex{},
		base:      make(map[string]Descriptor),
		effective: make(map[string]Descriptor),
	}
}

// MakeDefaultRegistry returns a registry with all builtin component types
func MakeDefaultRegistry() *Registry {
	reg := MakeRegistry()
	for _, desc := range builtinDescriptors() {
		if err := reg.Register(desc); err != nil {
			panic(fmt.Sprintf("bad builtin component %q: %v", desc.Type, err))
		}
	}
	return reg
}

func (r *Registry) Register(desc Descriptor) error {
	if desc.Type == "" {
		return fmt.Errorf("component type cannot be empty")
	}
	if desc.Tag == "" {
		return fmt.Errorf("component %q has no element tag", desc.Type)
	}
	r.lock.Lock()
	defer r.lock.Unlock()
	if _, found := r.base[desc.Type]; found {
		return fmt.Errorf("component type %q already registered", desc.Type)
	}
	r.base[desc.Type] = desc.copy()
	if ov, ok := r.overrides[desc.Type]; ok {
		r.effective[desc.Type] = desc.withOverride(ov)
	} else {
		r.effective[desc.Type] = desc.copy()
	}
	return nil
}

// Lookup returns a copy of the effective descriptor (overrides applied)
func (r *Registry) Lookup(compType string) (Descriptor, bool) {
	r.lock.Lock()
	defer r.lock.Unlock()
	desc, ok := r.effective[compType]
	if !ok {
		return Descriptor{}, false
	}
	return desc.copy(), true
}

func (r *Registry) Has(compType string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()
	_, ok := r.effective[compType]
	return ok
}

func (r *Registry) Types() []string {
	r.lock.Lock()
	defer r.lock.Unlock()
	rtn := make([]string, 0, len(r.effective))
	for compType := range r.effective {
		rtn = append(rtn, compType)
	}
	sort.Strings(rtn)
	return rtn
}

func (r *Registry) Descriptors() []Descriptor {
	types := r.Types()
	rtn := make([]Descriptor, 0, len(types))
	for _, compType := range types {
		desc, ok := r.Lookup(compType)
		if ok {
			rtn = append(rtn, desc)
		}
	}
	return rtn
}

// ApplyOverrides replaces the current set of overrides.  overrides for unknown types
// are kept and applied if the type is registered later.
func (r *Registry) ApplyOverrides(overrides map[string]ComponentOverride) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.overrides = make(map[string]ComponentOverride, len(overrides))
	for compType, ov := range overrides {
		r.overrides[compType] = ov
	}
	r.effective = make(map[string]Descriptor, len(r.base))
	for compType, desc := range r.base {
		if ov, ok := r.overrides[compType]; ok {
			r.effective[compType] = desc.withOverride(ov)
			continue
		}
		r.effective[compType] = desc.copy()
	}
}
