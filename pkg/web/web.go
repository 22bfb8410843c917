// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/agencyforge/pagebuilder/pkg/bstore"
	"github.com/agencyforge/pagebuilder/pkg/builderbase"
	"github.com/agencyforge/pagebuilder/pkg/compfactory"
	"github.com/agencyforge/pagebuilder/pkg/docbus"
	"github.com/agencyforge/pagebuilder/pkg/doctree"
	"github.com/agencyforge/pagebuilder/pkg/publish"
	"github.com/agencyforge/pagebuilder/pkg/session"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
)

type WebFnType = func(http.ResponseWriter, *http.Request)

// returns the "data" of a json response
type ApiFnType = func(r *http.Request) (any, error)

// Header constants
const (
	CacheControlHeaderKey     = "Cache-Control"
	CacheControlHeaderNoCache = "no-cache"

	ContentTypeHeaderKey = "Content-Type"
	ContentTypeJson      = "application/json"
	ContentTypeHtml      = "text/html; charset=utf-8"

	ContentLengthHeaderKey = "Content-Length"
)

const HttpReadTimeout = 5 * time.Second
const HttpWriteTimeout = 21 * time.Second
const HttpMaxHeaderBytes = 60000
const HttpTimeoutDuration = 21 * time.Second
const MaxRequestBodySize = 1024 * 1024

type WebFnOpts struct {
	AllowCaching bool
	JsonErrors   bool
}

var errBadRequest = errors.New("bad request")

func badRequestErr(format string, args ...any) error {
	return fmt.Errorf("%w: %s", errBadRequest, fmt.Sprintf(format, args...))
}

// DocLister lists stored documents (satisfied by *bstore.Store)
type DocLister interface {
	List(ctx context.Context, agencyId string) ([]*bstore.DocumentInfo, error)
}

type Server struct {
	Manager   *session.Manager
	Lister    DocLister
	Publisher publish.Publisher
	Bus       *docbus.Bus
}

func MakeServer(mgr *session.Manager, lister DocLister, pub publish.Publisher) *Server {
	return &Server{Manager: mgr, Lister: lister, Publisher: pub, Bus: docbus.MakeBus()}
}

func (s *Server) registry() *compfactory.Registry {
	return s.Manager.Factory().Registry
}

func errorStatusCode(err error) int {
	switch {
	case errors.Is(err, compfactory.ErrUnknownComponentType),
		errors.Is(err, bstore.ErrNotFound),
		errors.Is(err, session.ErrSessionNotFound),
		errors.Is(err, doctree.ErrElemNotFound):
		return http.StatusNotFound
	case errors.Is(err, errBadRequest),
		errors.Is(err, compfactory.ErrInvalidConfig),
		errors.Is(err, doctree.ErrNotContainer),
		errors.Is(err, doctree.ErrCycle),
		errors.Is(err, doctree.ErrRootRemoval),
		errors.Is(err, doctree.ErrAlreadyAttached),
		errors.Is(err, doctree.ErrInvalidElem):
		return http.StatusBadRequest
	case errors.Is(err, bstore.ErrVersionMismatch),
		errors.Is(err, bstore.ErrAlreadyExists):
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}

func marshalReturnValue(data any, err error) []byte {
	var mapRtn = make(map[string]any)
	if err != nil {
		mapRtn["error"] = err.Error()
	} else {
		mapRtn["success"] = true
		mapRtn["data"] = data
	}
	rtn, err := json.Marshal(mapRtn)
	if err != nil {
		return marshalReturnValue(nil, fmt.Errorf("error serializing response: %v", err))
	}
	return rtn
}

func writeJsonRtn(w http.ResponseWriter, statusCode int, jsonRtn []byte) {
	w.Header().Set(ContentTypeHeaderKey, ContentTypeJson)
	w.Header().Set(ContentLengthHeaderKey, fmt.Sprintf("%d", len(jsonRtn)))
	w.WriteHeader(statusCode)
	w.Write(jsonRtn)
}

// ApiFnWrap writes fn's result as {"success": true, "data": ...} or {"error": ...}
func ApiFnWrap(fn ApiFnType) WebFnType {
	return WebFnWrap(WebFnOpts{JsonErrors: true}, func(w http.ResponseWriter, r *http.Request) {
		data, err := fn(r)
		if err != nil {
			statusCode := errorStatusCode(err)
			if statusCode == http.StatusInternalServerError {
				log.Printf("[web] %s %s: %v\n", r.Method, r.URL.Path, err)
			}
			writeJsonRtn(w, statusCode, marshalReturnValue(nil, err))
			return
		}
		writeJsonRtn(w, http.StatusOK, marshalReturnValue(data, nil))
	})
}

func WebFnWrap(opts WebFnOpts, fn WebFnType) WebFnType {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recErr := recover()
			if recErr == nil {
				return
			}
			panicStr := fmt.Sprintf("panic: %v", recErr)
			log.Printf("[web] panic: %v\n", recErr)
			debug.PrintStack()
			if opts.JsonErrors {
				writeJsonRtn(w, http.StatusInternalServerError, marshalReturnValue(nil, errors.New(panicStr)))
			} else {
				http.Error(w, panicStr, http.StatusInternalServerError)
			}
		}()
		if !opts.AllowCaching {
			w.Header().Set(CacheControlHeaderKey, CacheControlHeaderNoCache)
		}
		fn(w, r)
	}
}

// decodes an optional json body into out (an empty body leaves out untouched)
func readJsonBody(r *http.Request, out any) error {
	barr, err := io.ReadAll(io.LimitReader(r.Body, MaxRequestBodySize+1))
	if err != nil {
		return badRequestErr("unable to read request body: %v", err)
	}
	if len(barr) > MaxRequestBodySize {
		return badRequestErr("request body too large")
	}
	if len(barr) == 0 {
		return nil
	}
	if err := json.Unmarshal(barr, out); err != nil {
		return badRequestErr("invalid request body: %v", err)
	}
	return nil
}

func (s *Server) MakeRouter() *mux.Router {
	gr := mux.NewRouter()
	api := gr.PathPrefix("/api").Subrouter()
	api.HandleFunc("/components", ApiFnWrap(s.handleListComponents)).Methods(http.MethodGet)
	api.HandleFunc("/components/schema", ApiFnWrap(s.handleComponentSchema)).Methods(http.MethodGet)
	api.HandleFunc("/components/{type}", ApiFnWrap(s.handleCreateComponent)).Methods(http.MethodPost)
	api.HandleFunc("/documents", ApiFnWrap(s.handleCreateDocument)).Methods(http.MethodPost)
	api.HandleFunc("/documents", ApiFnWrap(s.handleListDocuments)).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", ApiFnWrap(s.handleGetDocument)).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}", ApiFnWrap(s.handleDeleteDocument)).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/elements", ApiFnWrap(s.handleAddElement)).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/elements/{elemid}", ApiFnWrap(s.handleRemoveElement)).Methods(http.MethodDelete)
	api.HandleFunc("/documents/{id}/events", ApiFnWrap(s.handleDispatchEvent)).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/save", ApiFnWrap(s.handleSaveDocument)).Methods(http.MethodPost)
	api.HandleFunc("/documents/{id}/render", WebFnWrap(WebFnOpts{}, s.handleRenderDocument)).Methods(http.MethodGet)
	api.HandleFunc("/documents/{id}/publish", ApiFnWrap(s.handlePublishDocument)).Methods(http.MethodPost)
	gr.HandleFunc("/ws/documents/{id}", s.HandleWs)
	return gr
}

func MakeTCPListener(serverAddr string) (net.Listener, error) {
	rtn, err := net.Listen("tcp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("error creating listener at %v: %v", serverAddr, err)
	}
	log.Printf("[web] server listening on %s\n", rtn.Addr())
	return rtn, nil
}

// MakeHttpServer builds the http.Server.  websocket routes skip the timeout handler.
func (s *Server) MakeHttpServer() *http.Server {
	gr := s.MakeRouter()
	timeoutHandler := http.TimeoutHandler(gr, HttpTimeoutDuration, "Timeout")
	var handler http.Handler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if isWsRequest(r) {
			gr.ServeHTTP(w, r)
			return
		}
		timeoutHandler.ServeHTTP(w, r)
	})
	if builderbase.IsDevMode() {
		handler = handlers.CORS(handlers.AllowedOrigins([]string{"*"}), handlers.AllowedMethods([]string{"GET", "POST", "DELETE"}))(handler)
	}
	return &http.Server{
		ReadTimeout:    HttpReadTimeout,
		WriteTimeout:   HttpWriteTimeout,
		MaxHeaderBytes: HttpMaxHeaderBytes,
		Handler:        handler,
	}
}

// blocking, returns http.ErrServerClosed after Shutdown
func (s *Server) RunWebServer(server *http.Server, listener net.Listener) error {
	err := server.Serve(listener)
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("[web] ERROR: %v\n", err)
	}
	return err
}
