// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package doctree

import (
	"encoding/json"
	"fmt"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
)

func Encode(d *Document) ([]byte, error) {
	barr, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("error encoding document %s: %w", d.OID, err)
	}
	return barr, nil
}

// Decode parses a stored document.  every element that carries a component marker must
// name a type known to reg (returns *compfactory.UnknownComponentTypeError otherwise).
// a nil reg skips the marker check.
func Decode(data []byte, reg *compfactory.Registry) (*Document, error) {
	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("error decoding document: %w", err)
	}
	if doc.Kind == "" {
		doc.Kind = DocKind_Page
	}
	if !IsValidKind(doc.Kind) {
		return nil, fmt.Errorf("invalid document kind %q", doc.Kind)
	}
	if doc.Root == nil {
		doc.Root = makeRootElem(doc.Kind)
		return &doc, nil
	}
	if err := ValidateTree(doc.Root, reg); err != nil {
		return nil, err
	}
	return &doc, nil
}

// ValidateTree checks component markers and fills in missing element ids.
// duplicate ids are an error.
func ValidateTree(root *vdom.VElem, reg *compfactory.Registry) error {
	seen := make(map[string]bool)
	var rtnErr error
	root.Walk(func(elem *vdom.VElem, _ *vdom.VElem) bool {
		if rtnErr != nil {
			return false
		}
		if elem.Tag == "" {
			rtnErr = fmt.Errorf("element %q has no tag", elem.Id)
			return false
		}
		if elem.IsText() {
			return true
		}
		if err := validateMarkup(elem); err != nil {
			rtnErr = err
			return false
		}
		if elem.Id == "" {
			elem.Id = vdom.MakeElemId()
		}
		if seen[elem.Id] {
			rtnErr = fmt.Errorf("duplicate element id %q", elem.Id)
			return false
		}
		seen[elem.Id] = true
		if reg != nil && elem.CompType != "" && elem.CompType != RootCompType && !reg.Has(elem.CompType) {
			rtnErr = &compfactory.UnknownComponentTypeError{Type: elem.CompType}
			return false
		}
		return true
	})
	return rtnErr
}

// stored props end up in rendered and published html, so names are checked the same way config attrs are
func validateMarkup(elem *vdom.VElem) error {
	if elem.Tag != vdom.FragmentTag && !vdom.IsValidTagName(elem.Tag) {
		return fmt.Errorf("%w: element %q has tag %q", ErrInvalidElem, elem.Id, elem.Tag)
	}
	for key := range elem.Props {
		if key == vdom.KeyPropKey {
			continue
		}
		if !vdom.IsValidAttrName(key) || vdom.IsEventAttr(key) {
			return fmt.Errorf("%w: element %q has prop %q", ErrInvalidElem, elem.Id, key)
		}
	}
	return nil
}
