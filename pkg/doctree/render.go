// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package doctree

import (
	"fmt"
	"html"
	"strings"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

// RenderHTML renders the document body (the root element and everything under it)
func RenderHTML(d *Document) (string, error) {
	return vdom.RenderHTML(d.Root)
}

// RenderPage renders a standalone HTML page suitable for publishing
func RenderPage(d *Document) (string, error) {
	body, err := RenderHTML(d)
	if err != nil {
		return "", fmt.Errorf("error rendering document %s: %w", d.OID, err)
	}
	var sb strings.Builder
	sb.WriteString("<!DOCTYPE html>\n<html>\n<head>\n")
	sb.WriteString(`<meta charset="utf-8">` + "\n")
	if d.Kind == DocKind_Page {
		sb.WriteString(`<meta name="viewport" content="width=device-width, initial-scale=1">` + "\n")
	}
	sb.WriteString("<title>")
	sb.WriteString(html.EscapeString(d.Name))
	sb.WriteString("</title>\n</head>\n<body>\n")
	sb.WriteString(body)
	sb.WriteString("\n</body>\n</html>\n")
	return sb.String(), nil
}
