// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"regexp"
	"strings"
)

var tagNameRe = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)
var attrNameRe = regexp.MustCompile(`^[a-z][a-z0-9_.:-]*$`)

var unsafeUrlSchemes = []string{"javascript:", "vbscript:"}

// IsValidTagName reports whether tag can be written into markup as-is
func IsValidTagName(tag string) bool {
	return tagNameRe.MatchString(tag)
}

// IsValidAttrName reports whether name can be written into markup as-is (lower case only)
func IsValidAttrName(name string) bool {
	return attrNameRe.MatchString(name)
}

// event handler attributes are never rendered, events go through the binder
func IsEventAttr(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "on")
}

func isUrlAttr(name string) bool {
	return name == "href" || name == "src" || name == "action" || name == "formaction" || name == "xlink:href"
}

// IsUnsafeUrl reports script urls.  browsers drop ascii whitespace and control chars
// inside the scheme ("java\tscript:"), so those are removed before checking.
func IsUnsafeUrl(url string) bool {
	cleaned := strings.Map(func(r rune) rune {
		if r <= ' ' {
			return -1
		}
		return r
	}, url)
	cleaned = strings.ToLower(cleaned)
	for _, scheme := range unsafeUrlSchemes {
		if strings.HasPrefix(cleaned, scheme) {
			return true
		}
	}
	return false
}

// reports whether a prop may be emitted as an attribute on a rendered node
func isRenderableProp(key string, val string) bool {
	if !IsValidAttrName(key) || IsEventAttr(key) {
		return false
	}
	if key == "style" || key == ElemIdAttr || key == CompTypeAttr {
		return false
	}
	if isUrlAttr(key) && IsUnsafeUrl(val) {
		return false
	}
	return true
}
