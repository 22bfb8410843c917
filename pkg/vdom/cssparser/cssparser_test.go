// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cssparser

import (
	"fmt"
	"testing"
)

func compareMaps(a, b map[string]string) error {
	if len(a) != len(b) {
		return fmt.Errorf("map length mismatch: %d != %d", len(a), len(b))
	}
	for k, v := range a {
		if b[k] != v {
			return fmt.Errorf("value mismatch for key %s: %q != %q", k, v, b[k])
		}
	}
	return nil
}

func TestParseStyle(t *testing.T) {
	style := `background: url("example;with;semicolons.jpg"); Color: red; margin-right: 5px; content: "hello;world";`
	parsed, err := ParseStyle(style)
	if err != nil {
		t.Fatalf("ParseStyle failed: %v", err)
	}
	expected := map[string]string{
		"background":   `url("example;with;semicolons.jpg")`,
		"color":        "red",
		"margin-right": "5px",
		"content":      `"hello;world"`,
	}
	if err := compareMaps(parsed, expected); err != nil {
		t.Fatalf("parsed map does not match expected: %v", err)
	}

	parsed, err = ParseStyle(`width: calc(100% - (2 * 10px));; --Brand-Color: #ff0000 ; font-weight: bold !important`)
	if err != nil {
		t.Fatalf("ParseStyle failed: %v", err)
	}
	expected = map[string]string{
		"width":         "calc(100% - (2 * 10px))",
		"--Brand-Color": "#ff0000",
		"font-weight":   "bold !important",
	}
	if err := compareMaps(parsed, expected); err != nil {
		t.Fatalf("parsed map does not match expected: %v", err)
	}
}

func TestParseStyleEmpty(t *testing.T) {
	parsed, err := ParseStyle("   ")
	if err != nil {
		t.Fatalf("ParseStyle failed: %v", err)
	}
	if len(parsed) != 0 {
		t.Fatalf("expected empty map, got %v", parsed)
	}
}

func TestParseStyleErrors(t *testing.T) {
	badStyles := []string{
		`hello more: bad;`,
		`background: url("example.jpg`,
		`foo: url(...`,
		`foo: bar)`,
		`color:;`,
		`: red`,
	}
	for _, style := range badStyles {
		_, err := ParseStyle(style)
		if err == nil {
			t.Errorf("expected error for %q, got nil", style)
		}
	}
}

func TestFormatStyle(t *testing.T) {
	out := FormatStyle(map[string]string{"padding": "4px", "color": "red"})
	if out != "color: red; padding: 4px" {
		t.Fatalf("unexpected format output %q", out)
	}
	reparsed, err := ParseStyle(out)
	if err != nil {
		t.Fatalf("reparse failed: %v", err)
	}
	if reparsed["padding"] != "4px" || reparsed["color"] != "red" {
		t.Fatalf("unexpected reparse %v", reparsed)
	}
}
