// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

const TextTag = "#text"
const FragmentTag = "#fragment"

const ElemIdAttr = "data-elemid"
const CompTypeAttr = "data-component"

const KeyPropKey = "key"
const ClassPropKey = "class"

// void elements never take children
var voidTags = map[string]bool{
	"area":   true,
	"br":     true,
	"col":    true,
	"embed":  true,
	"hr":     true,
	"img":    true,
	"input":  true,
	"link":   true,
	"meta":   true,
	"source": true,
	"wbr":    true,
}

// visual element, doubles as the serialized document node
type VElem struct {
	Id       string            `json:"id,omitempty"`       // required, except for #text nodes
	Tag      string            `json:"tag"`                // rendered tag (button, h1, #text)
	CompType string            `json:"comptype,omitempty"` // semantic component type that produced this elem
	Props    map[string]any    `json:"props,omitempty"`
	Style    map[string]string `json:"style,omitempty"`
	Text     string            `json:"text,omitempty"`
	Children []*VElem          `json:"children,omitempty"`

	handlers *HandlerSet
}

type VDomEvent struct {
	ElemId    string `json:"elemid"`
	EventType string `json:"eventtype"`
	EventData any    `json:"eventdata,omitempty"`
}

// matches the browser KeyboardEvent fields we forward
type VDomKeyboardEvent struct {
	Type    string `json:"type"`
	Key     string `json:"key"`
	Code    string `json:"code"`
	Shift   bool   `json:"shift,omitempty"`
	Control bool   `json:"ctrl,omitempty"`
	Alt     bool   `json:"alt,omitempty"`
	Meta    bool   `json:"meta,omitempty"`
	Repeat  bool   `json:"repeat,omitempty"`
}

func IsVoidTag(tag string) bool {
	return voidTags[tag]
}
