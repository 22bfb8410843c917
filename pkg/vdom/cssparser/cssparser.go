// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package cssparser parses inline CSS declaration lists ("color: red; margin: 0")
// into property maps.  Quotes and parenthesized values (url(), calc()) may contain ';'.
package cssparser

import (
	"fmt"
	"sort"
	"strings"
	"unicode"
)

type Parser struct {
	Input     string
	Pos       int
	quoteChar rune // 0 when not in a quoted string
	parenPos  []int
}

func MakeParser(input string) *Parser {
	return &Parser{Input: input}
}

// ParseStyle parses a declaration list.  property names are lower-cased (custom properties excepted).
func ParseStyle(style string) (map[string]string, error) {
	return MakeParser(style).Parse()
}

func (p *Parser) Parse() (map[string]string, error) {
	result := make(map[string]string)
	lastProp := ""
	for {
		p.skipWhitespace()
		if p.eof() {
			break
		}
		// allow stray semicolons ("color: red;; margin: 0")
		if p.peek() == ';' {
			p.Pos++
			continue
		}
		propName, err := p.parsePropName(lastProp)
		if err != nil {
			return nil, err
		}
		lastProp = propName
		value, err := p.parseValue(propName)
		if err != nil {
			return nil, err
		}
		if value == "" {
			return nil, fmt.Errorf("bad style, empty value for property %q", propName)
		}
		result[propName] = value
		if !p.eof() && p.peek() == ';' {
			p.Pos++
		}
	}
	return result, nil
}

func isPropChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' || r == '_'
}

func (p *Parser) parsePropName(lastProp string) (string, error) {
	start := p.Pos
	for !p.eof() && isPropChar(p.peek()) {
		p.Pos++
	}
	name := p.Input[start:p.Pos]
	p.skipWhitespace()
	if name == "" {
		if lastProp == "" {
			return "", fmt.Errorf("bad style, expected property name at pos %d", p.Pos+1)
		}
		return "", fmt.Errorf("bad style, expected property name after %q at pos %d", lastProp, p.Pos+1)
	}
	if p.eof() {
		return "", fmt.Errorf("bad style, expected ':' after property %q, got EOF", name)
	}
	if p.peek() != ':' {
		return "", fmt.Errorf("bad style, expected ':' after property %q, got %q at pos %d", name, string(p.peek()), p.Pos+1)
	}
	p.Pos++
	if strings.HasPrefix(name, "--") {
		return name, nil
	}
	return strings.ToLower(name), nil
}

func (p *Parser) parseValue(propName string) (string, error) {
	start := p.Pos
	quoteStart := 0
	for !p.eof() {
		c := p.peek()
		if p.quoteChar != 0 {
			if c == '\\' {
				p.Pos++
			} else if c == p.quoteChar {
				p.quoteChar = 0
			}
			p.Pos++
			continue
		}
		if c == ';' && len(p.parenPos) == 0 {
			break
		}
		switch c {
		case '"', '\'':
			p.quoteChar = c
			quoteStart = p.Pos
		case '(':
			p.parenPos = append(p.parenPos, p.Pos)
		case ')':
			if len(p.parenPos) == 0 {
				return "", fmt.Errorf("bad style, property %q has unmatched ')' at pos %d", propName, p.Pos+1)
			}
			p.parenPos = p.parenPos[:len(p.parenPos)-1]
		}
		p.Pos++
	}
	if p.quoteChar != 0 {
		return "", fmt.Errorf("bad style, property %q has unmatched quote at pos %d", propName, quoteStart+1)
	}
	if len(p.parenPos) > 0 {
		return "", fmt.Errorf("bad style, property %q has unmatched '(' at pos %d", propName, p.parenPos[len(p.parenPos)-1]+1)
	}
	return strings.TrimSpace(p.Input[start:p.Pos]), nil
}

func (p *Parser) skipWhitespace() {
	for !p.eof() && unicode.IsSpace(p.peek()) {
		p.Pos++
	}
}

func (p *Parser) peek() rune {
	return rune(p.Input[p.Pos])
}

func (p *Parser) eof() bool {
	return p.Pos >= len(p.Input)
}

// FormatStyle is the inverse of ParseStyle, properties are emitted in sorted order
func FormatStyle(style map[string]string) string {
	props := make([]string, 0, len(style))
	for prop := range style {
		props = append(props, prop)
	}
	sort.Strings(props)
	parts := make([]string, 0, len(props))
	for _, prop := range props {
		parts = append(parts, prop+": "+style[prop])
	}
	return strings.Join(parts, "; ")
}
