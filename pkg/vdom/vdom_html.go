// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/agencyforge/pagebuilder/pkg/vdom/cssparser"
	"github.com/wavetermdev/htmltoken"
)

// parses user supplied HTML fragments (custom code blocks) into VElems

// content of these tags is dropped entirely
var droppedTags = map[string]bool{
	"script": true,
	"style":  true,
	"iframe": true,
	"object": true,
}

func appendChildToStack(stack []*VElem, child *VElem) {
	if child == nil || len(stack) == 0 {
		return
	}
	parent := stack[len(stack)-1]
	parent.Children = append(parent.Children, child)
}

func popElemStack(stack []*VElem) []*VElem {
	if len(stack) <= 1 {
		return stack
	}
	curElem := stack[len(stack)-1]
	stack = stack[:len(stack)-1]
	appendChildToStack(stack, curElem)
	return stack
}

func curElemTag(stack []*VElem) string {
	if len(stack) == 0 {
		return ""
	}
	return stack[len(stack)-1].Tag
}

func tokenToElem(token htmltoken.Token) (*VElem, error) {
	elem := NewElem(strings.ToLower(token.Data))
	for _, attr := range token.Attr {
		key := strings.ToLower(attr.Key)
		if !IsValidAttrName(key) {
			continue
		}
		// events go through the binder, never through markup
		if IsEventAttr(key) {
			continue
		}
		if key == "style" {
			styleMap, err := cssparser.ParseStyle(attr.Val)
			if err != nil {
				return nil, fmt.Errorf("<%s> %w", elem.Tag, err)
			}
			for prop, val := range styleMap {
				elem.SetStyle(prop, val)
			}
			continue
		}
		if isUrlAttr(key) && IsUnsafeUrl(attr.Val) {
			continue
		}
		elem.SetProp(key, attr.Val)
	}
	return elem, nil
}

func isWsChar(char rune) bool {
	return char == ' ' || char == '\t' || char == '\n' || char == '\r'
}

func isAllWhitespace(s string) bool {
	for _, char := range s {
		if !isWsChar(char) {
			return false
		}
	}
	return true
}

// whitespace-only text between tags collapses away, otherwise runs collapse to one space
func processTextStr(s string) string {
	if s == "" || isAllWhitespace(s) {
		return ""
	}
	return strings.Join(strings.FieldsFunc(s, isWsChar), " ")
}

// ParseHTML parses an HTML fragment into a list of top-level elements
func ParseHTML(htmlStr string) ([]*VElem, error) {
	iter := htmltoken.NewTokenizer(strings.NewReader(htmlStr))
	elemStack := []*VElem{{Tag: FragmentTag}}
	dropDepth := 0
	for {
		tokenType := iter.Next()
		token := iter.Token()
		switch tokenType {
		case htmltoken.StartTagToken:
			tag := strings.ToLower(token.Data)
			if dropDepth > 0 || droppedTags[tag] {
				if !IsVoidTag(tag) {
					dropDepth++
				}
				continue
			}
			elem, err := tokenToElem(token)
			if err != nil {
				return nil, err
			}
			if IsVoidTag(elem.Tag) {
				appendChildToStack(elemStack, elem)
				continue
			}
			elemStack = append(elemStack, elem)
		case htmltoken.EndTagToken:
			tag := strings.ToLower(token.Data)
			if dropDepth > 0 {
				dropDepth--
				continue
			}
			if IsVoidTag(tag) {
				continue
			}
			if len(elemStack) <= 1 {
				return nil, fmt.Errorf("end tag %q without start tag", tag)
			}
			if curElemTag(elemStack) != tag {
				return nil, fmt.Errorf("end tag %q does not match start tag %q", tag, curElemTag(elemStack))
			}
			elemStack = popElemStack(elemStack)
		case htmltoken.SelfClosingTagToken:
			if dropDepth > 0 || droppedTags[strings.ToLower(token.Data)] {
				continue
			}
			elem, err := tokenToElem(token)
			if err != nil {
				return nil, err
			}
			appendChildToStack(elemStack, elem)
		case htmltoken.TextToken:
			if dropDepth > 0 {
				continue
			}
			textStr := processTextStr(token.Data)
			if textStr == "" {
				continue
			}
			appendChildToStack(elemStack, TextElem(textStr))
		case htmltoken.CommentToken:
			continue
		case htmltoken.DoctypeToken:
			return nil, errors.New("doctype not supported")
		case htmltoken.ErrorToken:
			if iter.Err() != io.EOF {
				return nil, iter.Err()
			}
			if len(elemStack) > 1 {
				return nil, fmt.Errorf("unclosed tag %q", curElemTag(elemStack))
			}
			return elemStack[0].Children, nil
		}
	}
}
