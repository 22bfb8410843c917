// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package bstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
)

var ErrNotFound = errors.New("document not found")
var ErrAlreadyExists = errors.New("document already exists")
var ErrVersionMismatch = errors.New("document version mismatch")

// DocumentInfo is the listing row for a document (no element tree)
type DocumentInfo struct {
	OID          string `json:"oid" db:"oid"`
	Version      int    `json:"version" db:"version"`
	Name         string `json:"name" db:"name"`
	Kind         string `json:"kind" db:"kind"`
	AgencyId     string `json:"agencyid" db:"agencyid"`
	SubAccountId string `json:"subaccountid" db:"subaccountid"`
	CreatedTs    int64  `json:"createdts" db:"createdts"`
	UpdatedTs    int64  `json:"updatedts" db:"updatedts"`
}

type docDataType struct {
	OID     string `db:"oid"`
	Version int    `db:"version"`
	Data    []byte `db:"data"`
}

// Insert stores a new document, doc.Version is set to 1 once the transaction commits
func (s *Store) Insert(ctx context.Context, doc *doctree.Document) error {
	if doc.OID == "" {
		return fmt.Errorf("cannot insert document with empty id")
	}
	newDoc := *doc
	newDoc.Version = 1
	err := s.WithTx(ctx, func(tx *TxWrap) error {
		query := "SELECT oid FROM db_document WHERE oid = ?"
		if tx.Exists(query, doc.OID) {
			return fmt.Errorf("%s: %w", doc.OID, ErrAlreadyExists)
		}
		data, err := doctree.Encode(&newDoc)
		if err != nil {
			return err
		}
		query = `INSERT INTO db_document (oid, version, name, kind, agencyid, subaccountid, createdts, updatedts, data)
		         VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
		tx.Exec(query, newDoc.OID, newDoc.Version, newDoc.Name, newDoc.Kind, newDoc.AgencyId, newDoc.SubAccountId, newDoc.CreatedTs, newDoc.UpdatedTs, data)
		return nil
	})
	if err != nil {
		return err
	}
	doc.Version = newDoc.Version
	return nil
}

// Update writes doc if the stored version still matches doc.Version (optimistic locking).
// once the transaction commits doc.Version is incremented to the new stored version.
func (s *Store) Update(ctx context.Context, doc *doctree.Document) error {
	if doc.OID == "" {
		return fmt.Errorf("cannot update document with empty id")
	}
	newDoc := *doc
	err := s.WithTx(ctx, func(tx *TxWrap) error {
		query := "SELECT oid FROM db_document WHERE oid = ?"
		if !tx.Exists(query, doc.OID) {
			return fmt.Errorf("%s: %w", doc.OID, ErrNotFound)
		}
		query = "SELECT version FROM db_document WHERE oid = ?"
		curVersion := tx.GetInt(query, doc.OID)
		if tx.Err != nil {
			return tx.Err
		}
		if curVersion != doc.Version {
			return fmt.Errorf("%s (stored %d, have %d): %w", doc.OID, curVersion, doc.Version, ErrVersionMismatch)
		}
		newDoc.Version = curVersion + 1
		newDoc.UpdatedTs = time.Now().UnixMilli()
		data, err := doctree.Encode(&newDoc)
		if err != nil {
			return err
		}
		query = `UPDATE db_document SET version = ?, name = ?, kind = ?, agencyid = ?, subaccountid = ?, updatedts = ?, data = ?
		         WHERE oid = ? AND version = ?`
		tx.Exec(query, newDoc.Version, newDoc.Name, newDoc.Kind, newDoc.AgencyId, newDoc.SubAccountId, newDoc.UpdatedTs, data, doc.OID, curVersion)
		return nil
	})
	if err != nil {
		return err
	}
	doc.Version = newDoc.Version
	doc.UpdatedTs = newDoc.UpdatedTs
	return nil
}

// Get loads a document, every component marker in it must be known to reg
func (s *Store) Get(ctx context.Context, oid string, reg *compfactory.Registry) (*doctree.Document, error) {
	return WithTxRtn(ctx, s, func(tx *TxWrap) (*doctree.Document, error) {
		query := "SELECT oid, version, data FROM db_document WHERE oid = ?"
		var row docDataType
		found := tx.Get(&row, query, oid)
		if tx.Err != nil {
			return nil, tx.Err
		}
		if !found {
			return nil, fmt.Errorf("%s: %w", oid, ErrNotFound)
		}
		doc, err := doctree.Decode(row.Data, reg)
		if err != nil {
			return nil, fmt.Errorf("document %s: %w", oid, err)
		}
		doc.OID = row.OID
		doc.Version = row.Version
		return doc, nil
	})
}

// List returns document info sorted by most recently updated.  empty agencyId lists everything.
func (s *Store) List(ctx context.Context, agencyId string) ([]*DocumentInfo, error) {
	return WithTxRtn(ctx, s, func(tx *TxWrap) ([]*DocumentInfo, error) {
		var rtn []*DocumentInfo
		cols := "oid, version, name, kind, agencyid, subaccountid, createdts, updatedts"
		if agencyId == "" {
			query := fmt.Sprintf("SELECT %s FROM db_document ORDER BY updatedts DESC, oid", cols)
			tx.Select(&rtn, query)
		} else {
			query := fmt.Sprintf("SELECT %s FROM db_document WHERE agencyid = ? ORDER BY updatedts DESC, oid", cols)
			tx.Select(&rtn, query, agencyId)
		}
		return rtn, nil
	})
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return WithTxRtn(ctx, s, func(tx *TxWrap) (int, error) {
		return tx.GetInt("SELECT count(*) FROM db_document"), nil
	})
}

func (s *Store) Delete(ctx context.Context, oid string) error {
	return s.WithTx(ctx, func(tx *TxWrap) error {
		query := "SELECT oid FROM db_document WHERE oid = ?"
		if !tx.Exists(query, oid) {
			return fmt.Errorf("%s: %w", oid, ErrNotFound)
		}
		tx.Exec("DELETE FROM db_document WHERE oid = ?", oid)
		return nil
	})
}
