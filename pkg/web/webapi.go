// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"

	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/docbus"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/agencyforge/pagebuilder/pkg/publish"
	"github.com/agencyforge/pagebuilder/pkg/session"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
	"github.com/gorilla/mux"
)

type CreateDocumentRequest struct {
	Name         string `json:"name"`
	Kind         string `json:"kind,omitempty"`
	AgencyId     string `json:"agencyid,omitempty"`
	SubAccountId string `json:"subaccountid,omitempty"`
}

type AddElementRequest struct {
	Type     string         `json:"type"`
	Config   map[string]any `json:"config,omitempty"`
	ParentId string         `json:"parentid,omitempty"`
	Index    *int           `json:"index,omitempty"`
}

type DispatchEventResponse struct {
	Handled  int             `json:"handled"`
	Error    string          `json:"error,omitempty"`
	Document json.RawMessage `json:"document"`
}

type SaveDocumentResponse struct {
	OID     string `json:"oid"`
	Version int    `json:"version"`
}

func (s *Server) handleListComponents(r *http.Request) (any, error) {
	return s.registry().Descriptors(), nil
}

func (s *Server) handleComponentSchema(r *http.Request) (any, error) {
	return compfactory.ConfigSchema(), nil
}

func (s *Server) handleCreateComponent(r *http.Request) (any, error) {
	compType := mux.Vars(r)["type"]
	var config map[string]any
	if err := readJsonBody(r, &config); err != nil {
		return nil, err
	}
	return s.Manager.Factory().Create(compType, config)
}

func (s *Server) handleCreateDocument(r *http.Request) (any, error) {
	var req CreateDocumentRequest
	if err := readJsonBody(r, &req); err != nil {
		return nil, err
	}
	if req.Name == "" {
		return nil, badRequestErr("name is required")
	}
	if req.Kind != "" && !doctree.IsValidKind(req.Kind) {
		return nil, badRequestErr("invalid document kind %q", req.Kind)
	}
	sess, err := s.Manager.Create(r.Context(), req.Name, req.Kind, req.AgencyId, req.SubAccountId)
	if err != nil {
		return nil, err
	}
	return snapshotRaw(sess)
}

func (s *Server) handleListDocuments(r *http.Request) (any, error) {
	infos, err := s.Lister.List(r.Context(), r.URL.Query().Get("agencyid"))
	if err != nil {
		return nil, err
	}
	if infos == nil {
		return []any{}, nil
	}
	return infos, nil
}

func (s *Server) openSession(r *http.Request) (*session.Session, error) {
	docId := mux.Vars(r)["id"]
	if docId == "" {
		return nil, badRequestErr("document id is required")
	}
	return s.Manager.Open(r.Context(), docId)
}

func snapshotRaw(sess *session.Session) (json.RawMessage, error) {
	barr, err := sess.Snapshot()
	if err != nil {
		return nil, err
	}
	return json.RawMessage(barr), nil
}

// notifies websocket watchers of docId.  doc may be nil, a snapshot is taken only if someone is listening.
func (s *Server) publishDoc(sess *session.Session, doc json.RawMessage, origin string, reason string) {
	if s.Bus == nil || s.Bus.SubscriberCount(sess.DocId()) == 0 {
		return
	}
	if doc == nil {
		var err error
		doc, err = snapshotRaw(sess)
		if err != nil {
			log.Printf("[web] cannot snapshot doc:%s for watchers: %v\n", sess.DocId(), err)
			return
		}
	}
	s.Bus.Publish(docbus.DocUpdate{DocId: sess.DocId(), Origin: origin, Reason: reason, Document: doc})
}

func (s *Server) handleGetDocument(r *http.Request) (any, error) {
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	return snapshotRaw(sess)
}

func (s *Server) handleDeleteDocument(r *http.Request) (any, error) {
	docId := mux.Vars(r)["id"]
	if err := s.Manager.Delete(r.Context(), docId); err != nil {
		return nil, err
	}
	return map[string]string{"oid": docId}, nil
}

func (s *Server) handleAddElement(r *http.Request) (any, error) {
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	var req AddElementRequest
	if err := readJsonBody(r, &req); err != nil {
		return nil, err
	}
	index := -1
	if req.Index != nil {
		index = *req.Index
	}
	elem, err := sess.AddComponent(req.Type, req.Config, req.ParentId, index)
	if err != nil {
		return nil, err
	}
	s.publishDoc(sess, nil, "", docbus.UpdateReason_Add)
	return elem, nil
}

func (s *Server) handleRemoveElement(r *http.Request) (any, error) {
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	elemId := mux.Vars(r)["elemid"]
	if err := sess.RemoveElement(elemId); err != nil {
		return nil, err
	}
	s.publishDoc(sess, nil, "", docbus.UpdateReason_Remove)
	return map[string]string{"elemid": elemId}, nil
}

// dispatchEvent runs the event and returns the resulting document.  handler errors are
// reported in the response, the event may have partly applied.
func dispatchEvent(sess *session.Session, event vdom.VDomEvent) (*DispatchEventResponse, error) {
	if event.ElemId == "" || event.EventType == "" {
		return nil, badRequestErr("elemid and eventtype are required")
	}
	handled, err := sess.Dispatch(event)
	if err != nil && handled == 0 {
		return nil, err
	}
	doc, snapErr := snapshotRaw(sess)
	if snapErr != nil {
		return nil, snapErr
	}
	rtn := &DispatchEventResponse{Handled: handled, Document: doc}
	if err != nil {
		rtn.Error = err.Error()
	}
	return rtn, nil
}

func (s *Server) handleDispatchEvent(r *http.Request) (any, error) {
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	var event vdom.VDomEvent
	if err := readJsonBody(r, &event); err != nil {
		return nil, err
	}
	resp, err := dispatchEvent(sess, event)
	if err != nil {
		return nil, err
	}
	s.publishDoc(sess, resp.Document, "", docbus.UpdateReason_Event)
	return resp, nil
}

func (s *Server) handleSaveDocument(r *http.Request) (any, error) {
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	if err := sess.Save(r.Context()); err != nil {
		return nil, err
	}
	rtn := &SaveDocumentResponse{OID: sess.DocId()}
	sess.WithDoc(func(doc *doctree.Document) error {
		rtn.Version = doc.Version
		return nil
	})
	s.publishDoc(sess, nil, "", docbus.UpdateReason_Save)
	return rtn, nil
}

func (s *Server) handleRenderDocument(w http.ResponseWriter, r *http.Request) {
	sess, err := s.openSession(r)
	if err != nil {
		http.Error(w, err.Error(), errorStatusCode(err))
		return
	}
	var html string
	if r.URL.Query().Get("page") != "" {
		html, err = sess.RenderPage()
	} else {
		html, err = sess.RenderHTML()
	}
	if err != nil {
		http.Error(w, fmt.Sprintf("error rendering document: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set(ContentTypeHeaderKey, ContentTypeHtml)
	w.Header().Set(ContentLengthHeaderKey, fmt.Sprintf("%d", len(html)))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(html))
}

func (s *Server) handlePublishDocument(r *http.Request) (any, error) {
	if s.Publisher == nil {
		return nil, fmt.Errorf("publishing is not configured")
	}
	sess, err := s.openSession(r)
	if err != nil {
		return nil, err
	}
	var page *publish.Page
	err = sess.WithDoc(func(doc *doctree.Document) error {
		var pageErr error
		page, pageErr = publish.MakePage(doc)
		return pageErr
	})
	if err != nil {
		return nil, err
	}
	location, err := s.Publisher.Publish(r.Context(), page)
	if err != nil {
		return nil, err
	}
	return &publish.PublishResult{DocId: page.DocId, Location: location}, nil
}
