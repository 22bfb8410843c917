// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateButtonDefault(t *testing.T) {
	f := MakeFactory(MakeDefaultRegistry())
	elem, err := f.Create("button", nil)
	require.NoError(t, err)
	assert.Equal(t, "button", elem.CompType)
	assert.Equal(t, "button", elem.Tag)
	assert.Equal(t, "Click Me", elem.Text)
	assert.NotEmpty(t, elem.Id)
	assert.Equal(t, "#007bff", elem.Style["background-color"])
}

func TestCreateAllBuiltinsCarryMarker(t *testing.T) {
	reg := MakeDefaultRegistry()
	f := MakeFactory(reg)
	expectedText := map[string]string{
		CompType_Button: DefaultButtonLabel,
		CompType_Header: DefaultHeaderText,
		CompType_Text:   DefaultTextContent,
		CompType_Link:   DefaultLinkText,
	}
	for _, compType := range reg.Types() {
		elem, err := f.Create(compType, nil)
		require.NoError(t, err, compType)
		assert.Equal(t, compType, elem.CompType)
		desc, _ := reg.Lookup(compType)
		assert.Equal(t, desc.Tag, elem.Tag, compType)
		if text, ok := expectedText[compType]; ok {
			assert.Equal(t, text, elem.Text, compType)
		}
	}
}

func TestCreateUnknownType(t *testing.T) {
	f := MakeFactory(MakeDefaultRegistry())
	for _, compType := range []string{"", "carousel", "Button"} {
		elem, err := f.Create(compType, map[string]any{"label": "x"})
		assert.Nil(t, elem)
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrUnknownComponentType))
		var uerr *UnknownComponentTypeError
		require.True(t, errors.As(err, &uerr))
		assert.Equal(t, compType, uerr.Type)
	}
}

func TestCreateWithConfig(t *testing.T) {
	f := MakeFactory(nil)
	elem, err := f.Create("button", map[string]any{
		"label": "Buy Now",
		"style": "color: black; Margin: 2px",
		"class": "cta",
		"attrs": map[string]any{"Title": "buy"},
		"rows":  5, // not applicable to buttons, ignored
	})
	require.NoError(t, err)
	assert.Equal(t, "Buy Now", elem.Text)
	assert.Equal(t, "black", elem.Style["color"])
	assert.Equal(t, "2px", elem.Style["margin"])
	assert.Equal(t, "#007bff", elem.Style["background-color"])
	assert.Equal(t, "cta", elem.GetPropString("class"))
	assert.Equal(t, "buy", elem.GetPropString("title"))
	assert.Empty(t, elem.Children)

	header, err := f.Create("header", map[string]any{"level": "3", "label": "Pricing"})
	require.NoError(t, err)
	assert.Equal(t, "h3", header.Tag)
	assert.Equal(t, "Pricing", header.Text)

	link, err := f.Create("link", map[string]any{"href": "/about", "style": map[string]any{"font-size": 14}})
	require.NoError(t, err)
	assert.Equal(t, "/about", link.GetPropString("href"))
	assert.Equal(t, "14", link.Style["font-size"])

	input, err := f.Create("input", map[string]any{"placeholder": "Email"})
	require.NoError(t, err)
	assert.Equal(t, "Email", input.GetPropString("placeholder"))
}

func TestCreateTable(t *testing.T) {
	f := MakeFactory(nil)
	table, err := f.Create("table", nil)
	require.NoError(t, err)
	require.Len(t, table.Children, 2)
	thead, tbody := table.Children[0], table.Children[1]
	require.Len(t, thead.Children[0].Children, DefaultTableCols)
	assert.Equal(t, "Column 1", thead.Children[0].Children[0].Text)
	assert.Len(t, tbody.Children, DefaultTableRows)

	table, err = f.Create("table", map[string]any{"rows": 4.0, "cols": 3})
	require.NoError(t, err)
	assert.Len(t, table.Children[1].Children, 4)
	assert.Len(t, table.Children[1].Children[0].Children, 3)

	_, err = f.Create("table", map[string]any{"rows": 1000})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateHTML(t *testing.T) {
	f := MakeFactory(nil)
	elem, err := f.Create("html", map[string]any{"content": `<h2>Hi</h2><script>x()</script><p>there</p>`})
	require.NoError(t, err)
	require.Len(t, elem.Children, 2)
	assert.Equal(t, "h2", elem.Children[0].Tag)
	assert.Equal(t, "p", elem.Children[1].Tag)

	_, err = f.Create("html", map[string]any{"content": `<div>`})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestCreateInvalidConfig(t *testing.T) {
	f := MakeFactory(nil)
	bad := []struct {
		compType string
		config   map[string]any
	}{
		{"header", map[string]any{"level": 9}},
		{"link", map[string]any{"href": "javascript:alert(1)"}},
		{"image", map[string]any{"src": " JavaScript:alert(1)"}},
		{"button", map[string]any{"style": "color: ("}},
		{"button", map[string]any{"style": 5}},
		{"button", map[string]any{"attrs": map[string]any{"onclick": "x()"}}},
		{"button", map[string]any{"attrs": map[string]any{"style": "color: red"}}},
		{"text", map[string]any{"rows": "many"}},
		{"button", map[string]any{"attrs": map[string]any{"x onclick": "alert(1)"}}},
		{"button", map[string]any{"attrs": map[string]any{`title"`: "x"}}},
		{"button", map[string]any{"attrs": map[string]any{"a>b": "x"}}},
		{"link", map[string]any{"attrs": map[string]any{"href": "java\tscript:alert(1)"}}},
		{"link", map[string]any{"href": "vbscript:msgbox(1)"}},
	}
	for _, tc := range bad {
		elem, err := f.Create(tc.compType, tc.config)
		assert.Nil(t, elem, "%s %v", tc.compType, tc.config)
		assert.ErrorIs(t, err, ErrInvalidConfig, "%s %v", tc.compType, tc.config)
		assert.False(t, IsUnknownComponentType(err))
	}
}

func TestElementsAreIndependent(t *testing.T) {
	f := MakeFactory(nil)
	a, err := f.Create("button", nil)
	require.NoError(t, err)
	b, err := f.Create("button", nil)
	require.NoError(t, err)
	assert.NotEqual(t, a.Id, b.Id)
	a.SetText("changed")
	a.SetStyle("color", "red")
	a.SetProp("type", "submit")
	assert.Equal(t, "Click Me", b.Text)
	assert.Equal(t, "#ffffff", b.Style["color"])
	assert.Equal(t, "button", b.GetPropString("type"))

	// the registry defaults are untouched as well
	c, err := f.Create("button", nil)
	require.NoError(t, err)
	assert.Equal(t, "#ffffff", c.Style["color"])
}

func TestRegistry(t *testing.T) {
	reg := MakeRegistry()
	assert.Error(t, reg.Register(Descriptor{Type: "", Tag: "div"}))
	assert.Error(t, reg.Register(Descriptor{Type: "hero"}))
	require.NoError(t, reg.Register(Descriptor{Type: "hero", Tag: "section", DefaultText: "Welcome"}))
	assert.Error(t, reg.Register(Descriptor{Type: "hero", Tag: "div"}))
	assert.Equal(t, []string{"hero"}, reg.Types())

	f := MakeFactory(reg)
	elem, err := f.Create("hero", nil)
	require.NoError(t, err)
	assert.Equal(t, "section", elem.Tag)
	assert.Equal(t, "Welcome", elem.Text)

	// registries are independent of each other
	_, err = MakeFactory(MakeDefaultRegistry()).Create("hero", nil)
	assert.True(t, IsUnknownComponentType(err))
	_, err = f.Create("button", nil)
	assert.True(t, IsUnknownComponentType(err))
}

func TestRegistryOverrides(t *testing.T) {
	reg := MakeDefaultRegistry()
	reg.ApplyOverrides(map[string]ComponentOverride{
		"button": {Label: "Get Started", Style: map[string]string{"background-color": "#ff6600", "cursor": ""}},
		"later":  {Label: "Late"},
	})
	f := MakeFactory(reg)
	elem, err := f.Create("button", nil)
	require.NoError(t, err)
	assert.Equal(t, "Get Started", elem.Text)
	assert.Equal(t, "#ff6600", elem.Style["background-color"])
	_, hasCursor := elem.Style["cursor"]
	assert.False(t, hasCursor)

	require.NoError(t, reg.Register(Descriptor{Type: "later", Tag: "span", DefaultText: "x"}))
	later, err := f.Create("later", nil)
	require.NoError(t, err)
	assert.Equal(t, "Late", later.Text)

	reg.ApplyOverrides(nil)
	elem, err = f.Create("button", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultButtonLabel, elem.Text)
	assert.Equal(t, "pointer", elem.Style["cursor"])
}

func TestCreateRendersOnBackends(t *testing.T) {
	f := MakeFactory(nil)
	elem, err := f.Create("button", nil)
	require.NoError(t, err)
	node := vdom.RenderHeadless(elem)
	marker, ok := node.GetAttr(vdom.CompTypeAttr)
	require.True(t, ok)
	assert.Equal(t, "button", marker)
	assert.Equal(t, "Click Me", node.TextContent())

	html, err := vdom.RenderHTML(elem)
	require.NoError(t, err)
	assert.Contains(t, html, ">Click Me</button>")
}

func TestConfigSchema(t *testing.T) {
	schema := ConfigSchema()
	barr, err := json.Marshal(schema)
	require.NoError(t, err)
	var parsed map[string]any
	require.NoError(t, json.Unmarshal(barr, &parsed))
	props, ok := parsed["properties"].(map[string]any)
	require.True(t, ok, "schema should have properties")
	for _, field := range []string{"label", "content", "placeholder", "level", "rows", "cols", "style"} {
		assert.Contains(t, props, field)
	}
}

func TestAttrNamesRenderSafely(t *testing.T) {
	f := MakeFactory(nil)
	elem, err := f.Create("button", map[string]any{"attrs": map[string]any{"data-track": "cta", "aria-label": "Buy"}})
	require.NoError(t, err)
	html, err := vdom.RenderHTML(elem)
	require.NoError(t, err)
	assert.Contains(t, html, `data-track="cta"`)
	assert.Contains(t, html, `aria-label="Buy"`)

	_, err = f.Create("button", map[string]any{"attrs": map[string]any{"x onclick": "alert(1)"}})
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "invalid attr name")
}
