// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package vdom

import (
	"encoding/json"
	"strings"
	"testing"
)

func makeTestTree() *VElem {
	root := NewElem("div")
	root.CompType = "container"
	btn := NewElem("button")
	btn.CompType = "button"
	btn.SetText("Click Me")
	btn.SetStyle("color", "white")
	img := NewElem("img")
	img.SetProp("src", "/a.png")
	img.SetProp("alt", `say "hi"`)
	root.AppendChild(btn)
	root.AppendChild(img)
	return root
}

func TestInsertRemoveChild(t *testing.T) {
	root := NewElem("div")
	a := NewElem("p")
	b := NewElem("p")
	c := NewElem("p")
	root.AppendChild(a)
	root.AppendChild(c)
	root.InsertChild(1, b)
	if root.ChildIndex(b.Id) != 1 || root.ChildIndex(c.Id) != 2 {
		t.Fatalf("bad insert order")
	}
	root.InsertChild(99, NewElem("span"))
	if len(root.Children) != 4 || root.Children[3].Tag != "span" {
		t.Fatalf("out of range insert should append")
	}
	removed := root.RemoveChild(b.Id)
	if removed != b {
		t.Fatalf("expected b to be removed")
	}
	if root.RemoveChild(b.Id) != nil {
		t.Fatalf("second remove should return nil")
	}
	if len(root.Children) != 3 {
		t.Fatalf("expected 3 children, got %d", len(root.Children))
	}
}

func TestFind(t *testing.T) {
	root := makeTestTree()
	btn := root.Children[0]
	found, parent := root.Find(btn.Id)
	if found != btn || parent != root {
		t.Fatalf("find returned wrong elem/parent")
	}
	found, parent = root.Find(root.Id)
	if found != root || parent != nil {
		t.Fatalf("find root should have nil parent")
	}
	found, _ = root.Find("nope")
	if found != nil {
		t.Fatalf("expected nil for unknown id")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	root := makeTestTree()
	clone := root.Clone()
	if clone.Id == root.Id {
		t.Fatalf("clone should get a new id")
	}
	clone.Children[0].SetText("changed")
	clone.Children[0].SetStyle("color", "black")
	clone.Children[1].SetProp("src", "/b.png")
	if root.Children[0].Text != "Click Me" {
		t.Errorf("clone text change leaked into original")
	}
	if root.Children[0].Style["color"] != "white" {
		t.Errorf("clone style change leaked into original")
	}
	if root.Children[1].GetPropString("src") != "/a.png" {
		t.Errorf("clone prop change leaked into original")
	}
}

func TestHandlerOrderAndRemove(t *testing.T) {
	elem := NewElem("button")
	var calls []int
	id1 := elem.AddHandler("click", func(VDomEvent) { calls = append(calls, 1) })
	elem.AddHandler("click", func(VDomEvent) { calls = append(calls, 2) })
	elem.AddHandler("input", func(VDomEvent) { calls = append(calls, 99) })
	for _, fn := range elem.GetHandlers("click") {
		fn(VDomEvent{EventType: "click"})
	}
	if len(calls) != 2 || calls[0] != 1 || calls[1] != 2 {
		t.Fatalf("unexpected calls %v", calls)
	}
	if !elem.RemoveHandler("click", id1) {
		t.Fatalf("remove should succeed")
	}
	if elem.RemoveHandler("click", id1) {
		t.Fatalf("second remove should fail")
	}
	if elem.HandlerCount("click") != 1 {
		t.Fatalf("expected 1 click handler, got %d", elem.HandlerCount("click"))
	}
	elem.Destroy()
	if elem.HandlerCount("click") != 0 || elem.HandlerCount("input") != 0 {
		t.Fatalf("destroy should drop all handlers")
	}
}

func TestRenderHeadless(t *testing.T) {
	root := makeTestTree()
	node := RenderHeadless(root)
	if node.Tag != "div" || len(node.Children) != 2 {
		t.Fatalf("unexpected headless root %#v", node)
	}
	if val, _ := node.GetAttr(CompTypeAttr); val != "container" {
		t.Errorf("expected component marker, got %q", val)
	}
	btnNode := node.Children[0]
	if btnNode.Text != "Click Me" || btnNode.GetStyle("color") != "white" {
		t.Errorf("bad button node %#v", btnNode)
	}
	if btnNode.Parent != node {
		t.Errorf("parent link not set")
	}
	if node.TextContent() != "Click Me" {
		t.Errorf("unexpected text content %q", node.TextContent())
	}
}

func TestRenderHTML(t *testing.T) {
	root := makeTestTree()
	root.Children[0].SetText("<b>&</b>")
	out, err := RenderHTML(root)
	if err != nil {
		t.Fatalf("render error: %v", err)
	}
	if !strings.Contains(out, `data-component="button"`) {
		t.Errorf("missing component marker: %s", out)
	}
	if !strings.Contains(out, `style="color: white"`) {
		t.Errorf("missing style: %s", out)
	}
	if !strings.Contains(out, "&lt;b&gt;&amp;&lt;/b&gt;</button>") {
		t.Errorf("text not escaped: %s", out)
	}
	if !strings.Contains(out, `alt="say &#34;hi&#34;" src="/a.png">`) {
		t.Errorf("bad img attrs: %s", out)
	}
	if strings.Contains(out, "</img>") {
		t.Errorf("void element should not be closed: %s", out)
	}
}

func TestJsonDropsHandlers(t *testing.T) {
	elem := NewElem("button")
	elem.CompType = "button"
	elem.AddHandler("click", func(VDomEvent) {})
	barr, err := json.Marshal(elem)
	if err != nil {
		t.Fatalf("marshal error: %v", err)
	}
	var decoded VElem
	if err := json.Unmarshal(barr, &decoded); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if decoded.Id != elem.Id || decoded.CompType != "button" {
		t.Fatalf("bad decode %#v", decoded)
	}
	if decoded.HandlerCount("click") != 0 {
		t.Fatalf("handlers should not survive serialization")
	}
}

func TestParseHTML(t *testing.T) {
	elems, err := ParseHTML(`
	<div class="hero" style="color: red; padding: 4px" onclick="alert(1)">
	    <h2>Hello   world</h2>
	    <img src="/x.png">
	    <script>alert(1)</script>
	    <a href="javascript:alert(1)">bad</a>
	</div>
	<p>second</p>`)
	if err != nil {
		t.Fatalf("parse error: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("expected 2 top level elems, got %d", len(elems))
	}
	div := elems[0]
	if div.Tag != "div" || div.GetPropString("class") != "hero" {
		t.Fatalf("bad div %#v", div)
	}
	if div.Style["color"] != "red" || div.Style["padding"] != "4px" {
		t.Errorf("style not parsed: %v", div.Style)
	}
	if _, ok := div.Props["onclick"]; ok {
		t.Errorf("inline event handler should be dropped")
	}
	if len(div.Children) != 3 {
		t.Fatalf("expected h2, img, a (script dropped), got %d children", len(div.Children))
	}
	if div.Children[0].Children[0].Text != "Hello world" {
		t.Errorf("whitespace not collapsed: %q", div.Children[0].Children[0].Text)
	}
	if div.Children[1].Tag != "img" || div.Children[1].GetPropString("src") != "/x.png" {
		t.Errorf("bad img %#v", div.Children[1])
	}
	if _, ok := div.Children[2].Props["href"]; ok {
		t.Errorf("javascript: href should be dropped")
	}
}

func TestParseHTMLErrors(t *testing.T) {
	bad := []string{
		`<div><span></div>`,
		`</p>`,
		`<div>`,
		`<!DOCTYPE html><p>x</p>`,
		`<p style="color: (">x</p>`,
	}
	for _, str := range bad {
		_, err := ParseHTML(str)
		if err == nil {
			t.Errorf("expected error for %q", str)
		}
	}
}

func TestRenderSkipsUnsafeMarkup(t *testing.T) {
	root := NewElem("div")
	btn := NewElem("button")
	btn.SetProp("x onclick", "alert(1)")
	btn.SetProp("onclick", "alert(2)")
	btn.SetProp("style", "color:red")
	btn.SetProp("title", "ok")
	link := NewElem("a")
	link.SetProp("href", " JavaScript:alert(3)")
	badTag := NewElem("img src=x onerror=alert(4)")
	root.AppendChild(btn)
	root.AppendChild(link)
	root.AppendChild(badTag)
	html, err := RenderHTML(root)
	if err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	for _, bad := range []string{"onclick", "alert", "onerror", "color:red"} {
		if strings.Contains(html, bad) {
			t.Errorf("rendered html contains %q: %s", bad, html)
		}
	}
	if !strings.Contains(html, `title="ok"`) {
		t.Errorf("valid attr missing: %s", html)
	}
}

func TestWriteHTMLSkipsUnsafeAttrs(t *testing.T) {
	be := MakeHTMLBackend()
	node := be.CreateElement("button")
	be.SetAttr(node, "x onclick", "alert(1)")
	be.SetAttr(node, "onclick", "alert(2)")
	be.SetAttr(node, "title", "ok")
	be.AppendChild(node, be.CreateElement("img src=x onerror=alert(3)"))
	var sb strings.Builder
	if err := be.WriteHTML(&sb, node); err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	if sb.String() != `<button title="ok"></button>` {
		t.Errorf("unexpected html: %s", sb.String())
	}
}

func TestIsUnsafeUrl(t *testing.T) {
	cases := map[string]bool{
		"javascript:alert(1)":   true,
		" JavaScript:alert(1)":  true,
		"java\tscript:alert(1)": true,
		"vbscript:msgbox(1)":    true,
		"VBScript:x":            true,
		"https://example.com":   false,
		"/about":                false,
		"#":                     false,
	}
	for url, expected := range cases {
		if IsUnsafeUrl(url) != expected {
			t.Errorf("IsUnsafeUrl(%q) = %v, expected %v", url, !expected, expected)
		}
	}
}

func TestParseHTMLFiltersUrls(t *testing.T) {
	elems, err := ParseHTML("<a href=\"vbscript:msgbox(1)\">x</a><img src=\"java\tscript:alert(1)\">")
	if err != nil {
		t.Fatalf("ParseHTML: %v", err)
	}
	if len(elems) != 2 {
		t.Fatalf("expected 2 elems, got %d", len(elems))
	}
	if _, ok := elems[0].Props["href"]; ok {
		t.Errorf("vbscript href should be dropped")
	}
	if _, ok := elems[1].Props["src"]; ok {
		t.Errorf("javascript src should be dropped")
	}
}
