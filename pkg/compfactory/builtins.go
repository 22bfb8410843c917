// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package compfactory

import (
	"fmt"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

const (
	CompType_Button    = "button"
	CompType_Header    = "header"
	CompType_Text      = "text"
	CompType_Table     = "table"
	CompType_Image     = "image"
	CompType_Link      = "link"
	CompType_Input     = "input"
	CompType_Container = "container"
	CompType_Divider   = "divider"
	CompType_HTML      = "html"
)

const (
	DefaultButtonLabel      = "Click Me"
	DefaultHeaderText       = "Header"
	DefaultTextContent      = "Edit this text"
	DefaultLinkText         = "Link"
	DefaultLinkHref         = "#"
	DefaultImageSrc         = "https://placehold.co/600x400"
	DefaultImageAlt         = "Image"
	DefaultInputPlaceholder = "Enter text"
	DefaultTableRows        = 2
	DefaultTableCols        = 2
	MaxTableRows            = 100
	MaxTableCols            = 26
)

func builtinDescriptors() []Descriptor {
	return []Descriptor{
		{
			Type:        CompType_Button,
			Tag:         "button",
			DefaultText: DefaultButtonLabel,
			DefaultStyle: map[string]string{
				"padding":          "10px 20px",
				"background-color": "#007bff",
				"color":            "#ffffff",
				"border":           "none",
				"border-radius":    "4px",
				"cursor":           "pointer",
			},
			DefaultProps: map[string]any{"type": "button"},
			Description:  "clickable button",
			Build:        buildButton,
		},
		{
			Type:         CompType_Header,
			Tag:          "h1",
			DefaultText:  DefaultHeaderText,
			DefaultStyle: map[string]string{"margin": "0 0 10px 0"},
			Description:  "heading, level 1-6",
			Build:        buildHeader,
		},
		{
			Type:         CompType_Text,
			Tag:          "p",
			DefaultText:  DefaultTextContent,
			DefaultStyle: map[string]string{"line-height": "1.5"},
			Description:  "paragraph of text",
			Build:        buildText,
		},
		{
			Type:         CompType_Table,
			Tag:          "table",
			DefaultStyle: map[string]string{"width": "100%", "border-collapse": "collapse"},
			Description:  "table with a header row",
			Build:        buildTable,
		},
		{
			Type:         CompType_Image,
			Tag:          "img",
			DefaultStyle: map[string]string{"max-width": "100%"},
			DefaultProps: map[string]any{"src": DefaultImageSrc, "alt": DefaultImageAlt},
			Description:  "image",
			Build:        buildImage,
		},
		{
			Type:         CompType_Link,
			Tag:          "a",
			DefaultText:  DefaultLinkText,
			DefaultStyle: map[string]string{"color": "#007bff"},
			DefaultProps: map[string]any{"href": DefaultLinkHref},
			Description:  "hyperlink",
			Build:        buildLink,
		},
		{
			Type: CompType_Input,
			Tag:  "input",
			DefaultStyle: map[string]string{
				"padding":       "8px",
				"border":        "1px solid #cccccc",
				"border-radius": "4px",
			},
			DefaultProps: map[string]any{"type": "text", "placeholder": DefaultInputPlaceholder},
			Description:  "single line text input",
			Build:        buildInput,
		},
		{
			Type:         CompType_Container,
			Tag:          "div",
			DefaultStyle: map[string]string{"padding": "10px", "min-height": "100px"},
			Description:  "layout container, accepts children",
		},
		{
			Type:         CompType_Divider,
			Tag:          "hr",
			DefaultStyle: map[string]string{"border": "none", "border-top": "1px solid #dddddd"},
			Description:  "horizontal rule",
		},
		{
			Type:        CompType_HTML,
			Tag:         "div",
			Description: "custom HTML block (scripts and inline handlers are stripped)",
			Build:       buildHTML,
		},
	}
}

func firstNonEmpty(vals ...string) string {
	for _, val := range vals {
		if val != "" {
			return val
		}
	}
	return ""
}

func buildButton(elem *vdom.VElem, cfg *ComponentConfig) error {
	elem.Text = firstNonEmpty(cfg.Label, elem.Text)
	return nil
}

func buildHeader(elem *vdom.VElem, cfg *ComponentConfig) error {
	if cfg.Level != 0 {
		if cfg.Level < 1 || cfg.Level > 6 {
			return invalidConfigErr(elem.CompType, "level must be between 1 and 6, got %d", cfg.Level)
		}
		elem.Tag = fmt.Sprintf("h%d", cfg.Level)
	}
	elem.Text = firstNonEmpty(cfg.Label, cfg.Content, elem.Text)
	return nil
}

func buildText(elem *vdom.VElem, cfg *ComponentConfig) error {
	elem.Text = firstNonEmpty(cfg.Content, cfg.Label, elem.Text)
	return nil
}

func buildTable(elem *vdom.VElem, cfg *ComponentConfig) error {
	rows := DefaultTableRows
	cols := DefaultTableCols
	if cfg.Rows != 0 {
		rows = cfg.Rows
	}
	if cfg.Cols != 0 {
		cols = cfg.Cols
	}
	if rows < 1 || rows > MaxTableRows {
		return invalidConfigErr(elem.CompType, "rows must be between 1 and %d, got %d", MaxTableRows, rows)
	}
	if cols < 1 || cols > MaxTableCols {
		return invalidConfigErr(elem.CompType, "cols must be between 1 and %d, got %d", MaxTableCols, cols)
	}
	cellStyle := map[string]string{"border": "1px solid #dddddd", "padding": "8px"}
	thead := vdom.NewElem("thead")
	headRow := vdom.NewElem("tr")
	for col := 0; col < cols; col++ {
		th := vdom.NewElem("th")
		th.SetText(fmt.Sprintf("Column %d", col+1))
		for prop, val := range cellStyle {
			th.SetStyle(prop, val)
		}
		headRow.AppendChild(th)
	}
	thead.AppendChild(headRow)
	tbody := vdom.NewElem("tbody")
	for row := 0; row < rows; row++ {
		tr := vdom.NewElem("tr")
		for col := 0; col < cols; col++ {
			td := vdom.NewElem("td")
			for prop, val := range cellStyle {
				td.SetStyle(prop, val)
			}
			tr.AppendChild(td)
		}
		tbody.AppendChild(tr)
	}
	elem.AppendChild(thead)
	elem.AppendChild(tbody)
	return nil
}

func buildImage(elem *vdom.VElem, cfg *ComponentConfig) error {
	if cfg.Src != "" {
		if vdom.IsUnsafeUrl(cfg.Src) {
			return invalidConfigErr(elem.CompType, "unsupported src url %q", cfg.Src)
		}
		elem.SetProp("src", cfg.Src)
	}
	if cfg.Alt != "" {
		elem.SetProp("alt", cfg.Alt)
	}
	return nil
}

func buildLink(elem *vdom.VElem, cfg *ComponentConfig) error {
	if cfg.Href != "" {
		if vdom.IsUnsafeUrl(cfg.Href) {
			return invalidConfigErr(elem.CompType, "unsupported href %q", cfg.Href)
		}
		elem.SetProp("href", cfg.Href)
	}
	elem.Text = firstNonEmpty(cfg.Label, cfg.Content, elem.Text)
	return nil
}

func buildInput(elem *vdom.VElem, cfg *ComponentConfig) error {
	if cfg.Placeholder != "" {
		elem.SetProp("placeholder", cfg.Placeholder)
	}
	return nil
}

func buildHTML(elem *vdom.VElem, cfg *ComponentConfig) error {
	if cfg.Content == "" {
		return nil
	}
	children, err := vdom.ParseHTML(cfg.Content)
	if err != nil {
		return invalidConfigErr(elem.CompType, "content: %v", err)
	}
	for _, child := range children {
		elem.AppendChild(child)
	}
	return nil
}
