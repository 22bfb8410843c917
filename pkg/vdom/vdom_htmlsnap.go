// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"html"
	"io"
	"strings"
)

// HTMLBackend renders to a static HTML snapshot (server side rendering for previews and publishing).
// nodes are built headlessly, then serialized with WriteHTML.
type HTMLBackend struct {
	HeadlessBackend
}

var _ Backend = (*HTMLBackend)(nil)

func MakeHTMLBackend() *HTMLBackend {
	return &HTMLBackend{}
}

func styleString(decls []StyleDecl) string {
	var parts []string
	for _, decl := range decls {
		parts = append(parts, decl.Prop+": "+decl.Val)
	}
	return strings.Join(parts, "; ")
}

type errWriter struct {
	w   io.Writer
	err error
}

func (ew *errWriter) str(s string) {
	if ew.err != nil {
		return
	}
	_, ew.err = io.WriteString(ew.w, s)
}

func (b *HTMLBackend) WriteHTML(w io.Writer, node NodeRef) error {
	ew := &errWriter{w: w}
	writeNodeHTML(ew, asHeadlessNode(node))
	return ew.err
}

func writeNodeHTML(ew *errWriter, node *HeadlessNode) {
	if node.Tag == TextTag {
		ew.str(html.EscapeString(node.Text))
		return
	}
	if node.Tag == FragmentTag {
		ew.str(html.EscapeString(node.Text))
		for _, child := range node.Children {
			writeNodeHTML(ew, child)
		}
		return
	}
	if !IsValidTagName(node.Tag) {
		return
	}
	ew.str("<" + node.Tag)
	for _, attr := range node.Attrs {
		if !IsValidAttrName(attr.Key) || IsEventAttr(attr.Key) {
			continue
		}
		if attr.Val == "" {
			ew.str(" " + attr.Key)
			continue
		}
		ew.str(" " + attr.Key + "=\"" + html.EscapeString(attr.Val) + "\"")
	}
	if len(node.Style) > 0 {
		ew.str(" style=\"" + html.EscapeString(styleString(node.Style)) + "\"")
	}
	if IsVoidTag(node.Tag) {
		ew.str(">")
		return
	}
	ew.str(">")
	ew.str(html.EscapeString(node.Text))
	for _, child := range node.Children {
		writeNodeHTML(ew, child)
	}
	ew.str("</" + node.Tag + ">")
}

// RenderHTML renders elem to an HTML string
func RenderHTML(elem *VElem) (string, error) {
	if elem == nil {
		return "", nil
	}
	be := MakeHTMLBackend()
	node := Render(be, elem)
	var sb strings.Builder
	err := be.WriteHTML(&sb, node)
	if err != nil {
		return "", err
	}
	return sb.String(), nil
}
