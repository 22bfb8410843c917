// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"fmt"
	"strings"
)

type Attr struct {
	Key string
	Val string
}

type StyleDecl struct {
	Prop string
	Val  string
}

// in-memory node created by HeadlessBackend
type HeadlessNode struct {
	Tag      string
	Text     string
	Attrs    []Attr
	Style    []StyleDecl
	Children []*HeadlessNode
	Parent   *HeadlessNode
}

func (n *HeadlessNode) GetAttr(key string) (string, bool) {
	for _, attr := range n.Attrs {
		if attr.Key == key {
			return attr.Val, true
		}
	}
	return "", false
}

func (n *HeadlessNode) GetStyle(prop string) string {
	for _, decl := range n.Style {
		if decl.Prop == prop {
			return decl.Val
		}
	}
	return ""
}

// TextContent concatenates the text of the node and all descendants
func (n *HeadlessNode) TextContent() string {
	var sb strings.Builder
	n.writeText(&sb)
	return sb.String()
}

func (n *HeadlessNode) writeText(sb *strings.Builder) {
	sb.WriteString(n.Text)
	for _, child := range n.Children {
		child.writeText(sb)
	}
}

// HeadlessBackend builds a HeadlessNode tree.  used for tests and host side previews.
type HeadlessBackend struct {
	NodeCount int
}

var _ Backend = (*HeadlessBackend)(nil)

func MakeHeadlessBackend() *HeadlessBackend {
	return &HeadlessBackend{}
}

func asHeadlessNode(node NodeRef) *HeadlessNode {
	hn, ok := node.(*HeadlessNode)
	if !ok {
		panic(fmt.Sprintf("headless backend got foreign node type %T", node))
	}
	return hn
}

func (b *HeadlessBackend) CreateElement(tag string) NodeRef {
	b.NodeCount++
	return &HeadlessNode{Tag: tag}
}

func (b *HeadlessBackend) CreateText(text string) NodeRef {
	b.NodeCount++
	return &HeadlessNode{Tag: TextTag, Text: text}
}

func (b *HeadlessBackend) SetText(node NodeRef, text string) {
	asHeadlessNode(node).Text = text
}

func (b *HeadlessBackend) SetStyle(node NodeRef, prop string, val string) {
	hn := asHeadlessNode(node)
	for idx := range hn.Style {
		if hn.Style[idx].Prop == prop {
			hn.Style[idx].Val = val
			return
		}
	}
	hn.Style = append(hn.Style, StyleDecl{Prop: prop, Val: val})
}

func (b *HeadlessBackend) SetAttr(node NodeRef, key string, val string) {
	hn := asHeadlessNode(node)
	for idx := range hn.Attrs {
		if hn.Attrs[idx].Key == key {
			hn.Attrs[idx].Val = val
			return
		}
	}
	hn.Attrs = append(hn.Attrs, Attr{Key: key, Val: val})
}

func (b *HeadlessBackend) AppendChild(parent NodeRef, child NodeRef) {
	pn := asHeadlessNode(parent)
	cn := asHeadlessNode(child)
	cn.Parent = pn
	pn.Children = append(pn.Children, cn)
}

// RenderHeadless is a convenience wrapper around Render for the headless backend
func RenderHeadless(elem *VElem) *HeadlessNode {
	node := Render(MakeHeadlessBackend(), elem)
	if node == nil {
		return nil
	}
	return node.(*HeadlessNode)
}
