// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package doctree

import (
	"errors"
	"fmt"
	"time"

	"github.com/agencyforge/pagebuilder/pkg/vdom"
	"github.com/google/uuid"
)

const (
	DocKind_Page  = "page"
	DocKind_Email = "email"
)

const RootCompType = "root"

var ErrElemNotFound = errors.New("element not found")
var ErrNotContainer = errors.New("element cannot have children")
var ErrCycle = errors.New("cannot move an element into itself")
var ErrRootRemoval = errors.New("cannot remove the document root")
var ErrAlreadyAttached = errors.New("element is already in the document")
var ErrInvalidElem = errors.New("invalid element")

// Document is the host owned tree of visual elements for one page or email
type Document struct {
	OID          string      `json:"oid"`
	Version      int         `json:"version"`
	Name         string      `json:"name"`
	Kind         string      `json:"kind"`
	AgencyId     string      `json:"agencyid,omitempty"`
	SubAccountId string      `json:"subaccountid,omitempty"`
	CreatedTs    int64       `json:"createdts"`
	UpdatedTs    int64       `json:"updatedts"`
	Root         *vdom.VElem `json:"root"`
}

func IsValidKind(kind string) bool {
	return kind == DocKind_Page || kind == DocKind_Email
}

func makeRootElem(kind string) *vdom.VElem {
	root := vdom.NewElem("div")
	root.CompType = RootCompType
	if kind == DocKind_Email {
		root.SetStyle("max-width", "600px")
		root.SetStyle("margin", "0 auto")
	}
	return root
}

func MakeDocument(name string, kind string) *Document {
	if kind == "" {
		kind = DocKind_Page
	}
	now := time.Now().UnixMilli()
	return &Document{
		OID:       uuid.New().String(),
		Name:      name,
		Kind:      kind,
		CreatedTs: now,
		UpdatedTs: now,
		Root:      makeRootElem(kind),
	}
}

func (d *Document) touch() {
	d.UpdatedTs = time.Now().UnixMilli()
}

// Find returns the element with the given id (nil if not in the document)
func (d *Document) Find(elemId string) *vdom.VElem {
	elem, _ := d.Root.Find(elemId)
	return elem
}

func (d *Document) FindWithParent(elemId string) (*vdom.VElem, *vdom.VElem) {
	return d.Root.Find(elemId)
}

// Insert attaches a detached element under parentId at index (index < 0 appends).
// empty parentId means the document root.
func (d *Document) Insert(parentId string, index int, elem *vdom.VElem) error {
	if elem == nil {
		return fmt.Errorf("cannot insert nil element")
	}
	if parentId == "" {
		parentId = d.Root.Id
	}
	parent := d.Find(parentId)
	if parent == nil {
		return fmt.Errorf("parent %q: %w", parentId, ErrElemNotFound)
	}
	if !parent.CanHaveChildren() {
		return fmt.Errorf("parent %q (%s): %w", parentId, parent.Tag, ErrNotContainer)
	}
	if elem.Id != "" && d.Find(elem.Id) != nil {
		return fmt.Errorf("element %q: %w", elem.Id, ErrAlreadyAttached)
	}
	parent.InsertChild(index, elem)
	d.touch()
	return nil
}

// Remove detaches the element from the tree and destroys it (its event bindings are dropped)
func (d *Document) Remove(elemId string) (*vdom.VElem, error) {
	if elemId == d.Root.Id {
		return nil, ErrRootRemoval
	}
	elem, parent := d.FindWithParent(elemId)
	if elem == nil || parent == nil {
		return nil, fmt.Errorf("element %q: %w", elemId, ErrElemNotFound)
	}
	parent.RemoveChild(elemId)
	elem.Destroy()
	d.touch()
	return elem, nil
}

// Move re-parents an element, keeping its bindings
func (d *Document) Move(elemId string, newParentId string, index int) error {
	if elemId == d.Root.Id {
		return fmt.Errorf("cannot move the document root: %w", ErrCycle)
	}
	if newParentId == "" {
		newParentId = d.Root.Id
	}
	elem, oldParent := d.FindWithParent(elemId)
	if elem == nil || oldParent == nil {
		return fmt.Errorf("element %q: %w", elemId, ErrElemNotFound)
	}
	if elem.Contains(newParentId) {
		return fmt.Errorf("moving %q under %q: %w", elemId, newParentId, ErrCycle)
	}
	newParent := d.Find(newParentId)
	if newParent == nil {
		return fmt.Errorf("parent %q: %w", newParentId, ErrElemNotFound)
	}
	if !newParent.CanHaveChildren() {
		return fmt.Errorf("parent %q (%s): %w", newParentId, newParent.Tag, ErrNotContainer)
	}
	oldIdx := oldParent.ChildIndex(elemId)
	oldParent.RemoveChild(elemId)
	// same parent, moving forward: the removal shifted the target slot left
	if oldParent == newParent && index > oldIdx {
		index--
	}
	newParent.InsertChild(index, elem)
	d.touch()
	return nil
}

// Count returns the number of non-text elements in the document (root included)
func (d *Document) Count() int {
	count := 0
	d.Root.Walk(func(elem *vdom.VElem, _ *vdom.VElem) bool {
		if !elem.IsText() {
			count++
		}
		return true
	})
	return count
}

// Close drops all bindings in the document
func (d *Document) Close() {
	d.Root.Destroy()
}
