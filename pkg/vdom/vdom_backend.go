// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"fmt"
	"sort"
	"strconv"
)

type NodeRef any

// Backend is the set of platform operations needed to materialize a VElem tree.
// implementations: HeadlessBackend (in-memory), HTMLBackend (server side snapshot)
type Backend interface {
	CreateElement(tag string) NodeRef
	CreateText(text string) NodeRef
	SetText(node NodeRef, text string)
	SetStyle(node NodeRef, prop string, val string)
	SetAttr(node NodeRef, key string, val string)
	AppendChild(parent NodeRef, child NodeRef)
}

func sortedKeys[T any](m map[string]T) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// returns false for values that have no attribute form (funcs, maps, false bools, ...)
func attrValToString(val any) (string, bool) {
	switch v := val.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if !v {
			return "", false
		}
		return "", true
	case int:
		return strconv.Itoa(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case fmt.Stringer:
		return v.String(), true
	}
	return "", false
}

// Render materializes elem (and its children) on the given backend and returns the root node
func Render(be Backend, elem *VElem) NodeRef {
	if elem == nil {
		return nil
	}
	if elem.IsText() {
		return be.CreateText(elem.Text)
	}
	if elem.Tag != FragmentTag && !IsValidTagName(elem.Tag) {
		return nil
	}
	node := be.CreateElement(elem.Tag)
	if elem.Tag != FragmentTag {
		if elem.Id != "" {
			be.SetAttr(node, ElemIdAttr, elem.Id)
		}
		if elem.CompType != "" {
			be.SetAttr(node, CompTypeAttr, elem.CompType)
		}
		for _, key := range sortedKeys(elem.Props) {
			if key == KeyPropKey {
				continue
			}
			strVal, ok := attrValToString(elem.Props[key])
			if !ok || !isRenderableProp(key, strVal) {
				continue
			}
			be.SetAttr(node, key, strVal)
		}
		for _, prop := range sortedKeys(elem.Style) {
			be.SetStyle(node, prop, elem.Style[prop])
		}
	}
	if elem.Text != "" {
		be.SetText(node, elem.Text)
	}
	for _, child := range elem.Children {
		childNode := Render(be, child)
		if childNode == nil {
			continue
		}
		be.AppendChild(node, childNode)
	}
	return node
}
