// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/agencyforge/pagebuilder/pkg/docbus"
	"github.com/agencyforge/pagebuilder/pkg/panichandler"
	"github.com/agencyforge/pagebuilder/pkg/session"
	"github.com/agencyforge/pagebuilder/pkg/vdom"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const wsReadWaitTimeout = 15 * time.Second
const wsWriteWaitTimeout = 10 * time.Second
const wsPingPeriodTickTime = 10 * time.Second
const wsInitialPingTime = 1 * time.Second
const wsReadLimit = 64 * 1024
const wsOutputChSize = 100

const (
	WSMessage_Ping     = "ping"
	WSMessage_Pong     = "pong"
	WSMessage_Event    = "event"
	WSMessage_Document = "document"
	WSMessage_Update   = "docupdate"
	WSMessage_Error    = "error"
)

var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:   4 * 1024,
	WriteBufferSize:  32 * 1024,
	HandshakeTimeout: 1 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

// client -> server
type WSEventMessage struct {
	Type  string         `json:"type"`
	ReqId string         `json:"reqid,omitempty"`
	Event vdom.VDomEvent `json:"event"`
}

// server -> client
type WSDocumentMessage struct {
	Type     string          `json:"type"`
	ReqId    string          `json:"reqid,omitempty"`
	Handled  int             `json:"handled"`
	Error    string          `json:"error,omitempty"`
	Document json.RawMessage `json:"document"`
}

// server -> client, a change made by another editor (or over http)
type WSUpdateMessage struct {
	Type     string          `json:"type"`
	Reason   string          `json:"reason"`
	Document json.RawMessage `json:"document"`
}

func isWsRequest(r *http.Request) bool {
	return strings.HasPrefix(r.URL.Path, "/ws/")
}

func (s *Server) HandleWs(w http.ResponseWriter, r *http.Request) {
	sess, err := s.openSession(r)
	if err != nil {
		http.Error(w, err.Error(), errorStatusCode(err))
		return
	}
	err = s.handleWsInternal(w, r, sess)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func getMessageType(jmsg map[string]any) string {
	if str, ok := jmsg["type"].(string); ok {
		return str
	}
	return ""
}

func errorMessage(reqId string, err error) map[string]any {
	rtn := map[string]any{"type": WSMessage_Error, "error": err.Error()}
	if reqId != "" {
		rtn["reqid"] = reqId
	}
	return rtn
}

// sendOutput queues msg for the writer.  returns false once the writer has exited.
func sendOutput(outputCh chan any, writerDoneCh chan any, msg any) bool {
	select {
	case outputCh <- msg:
		return true
	case <-writerDoneCh:
		return false
	}
}

// processes one event message, events from a connection are handled in order
func (s *Server) processEventMessage(sess *session.Session, connId string, message []byte, outputCh chan any, writerDoneCh chan any) {
	var msg WSEventMessage
	defer func() {
		panicErr := panichandler.PanicHandler("ws:processEventMessage", recover())
		if panicErr != nil {
			sendOutput(outputCh, writerDoneCh, errorMessage(msg.ReqId, panicErr))
		}
	}()
	if err := json.Unmarshal(message, &msg); err != nil {
		sendOutput(outputCh, writerDoneCh, errorMessage("", fmt.Errorf("invalid event message: %v", err)))
		return
	}
	resp, err := dispatchEvent(sess, msg.Event)
	if err != nil {
		sendOutput(outputCh, writerDoneCh, errorMessage(msg.ReqId, err))
		return
	}
	sendOutput(outputCh, writerDoneCh, &WSDocumentMessage{
		Type:     WSMessage_Document,
		ReqId:    msg.ReqId,
		Handled:  resp.Handled,
		Error:    resp.Error,
		Document: resp.Document,
	})
	s.publishDoc(sess, resp.Document, connId, docbus.UpdateReason_Event)
}

// ReadLoop reads until the connection fails, closeCh is closed on return.
// writerDoneCh is closed by WriteLoop, sends to outputCh give up once it is.
func (s *Server) ReadLoop(conn *websocket.Conn, sess *session.Session, connId string, outputCh chan any, closeCh chan any, writerDoneCh chan any) {
	readWait := wsReadWaitTimeout
	conn.SetReadLimit(wsReadLimit)
	conn.SetReadDeadline(time.Now().Add(readWait))
	defer close(closeCh)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("[web] ws read error: %v\n", err)
			}
			break
		}
		jmsg := map[string]any{}
		err = json.Unmarshal(message, &jmsg)
		if err != nil {
			log.Printf("[web] error unmarshalling ws json: %v\n", err)
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		switch getMessageType(jmsg) {
		case WSMessage_Pong:
			// nothing
		case WSMessage_Ping:
			sendOutput(outputCh, writerDoneCh, map[string]any{"type": WSMessage_Pong, "stime": time.Now().UnixMilli()})
		case WSMessage_Event:
			s.processEventMessage(sess, connId, message, outputCh, writerDoneCh)
		default:
			sendOutput(outputCh, writerDoneCh, errorMessage("", fmt.Errorf("unknown message type %q", getMessageType(jmsg))))
		}
	}
}

func WritePing(conn *websocket.Conn) error {
	pingMessage := map[string]any{"type": WSMessage_Ping, "stime": time.Now().UnixMilli()}
	jsonVal, _ := json.Marshal(pingMessage)
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout)) // no error
	return conn.WriteMessage(websocket.TextMessage, jsonVal)
}

// WriteLoop writes queued messages and pings until closeCh closes or a write fails.
// a failed write closes conn so the reader stops too.  doneCh is closed on return.
func WriteLoop(conn *websocket.Conn, outputCh chan any, closeCh chan any, doneCh chan any) {
	defer close(doneCh)
	ticker := time.NewTicker(wsInitialPingTime)
	defer ticker.Stop()
	initialPing := true
	for {
		select {
		case msg := <-outputCh:
			barr, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[web] cannot marshal websocket message: %v\n", err)
				// just loop again
				break
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout))
			err = conn.WriteMessage(websocket.TextMessage, barr)
			if err != nil {
				conn.Close()
				log.Printf("[web] ws write error: %v\n", err)
				return
			}

		case <-ticker.C:
			err := WritePing(conn)
			if err != nil {
				conn.Close()
				log.Printf("[web] ws write error: %v\n", err)
				return
			}
			if initialPing {
				initialPing = false
				ticker.Reset(wsPingPeriodTickTime)
			}

		case <-closeCh:
			return
		}
	}
}

// forwards updates from other connections until closeCh closes
func forwardUpdates(connId string, updateCh <-chan docbus.DocUpdate, outputCh chan any, closeCh chan any) {
	for {
		select {
		case update, ok := <-updateCh:
			if !ok {
				return
			}
			if update.Origin == connId {
				continue
			}
			msg := &WSUpdateMessage{Type: WSMessage_Update, Reason: update.Reason, Document: update.Document}
			select {
			case outputCh <- msg:
			case <-closeCh:
				return
			}
		case <-closeCh:
			return
		}
	}
}

func (s *Server) handleWsInternal(w http.ResponseWriter, r *http.Request, sess *session.Session) error {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocket Upgrade Failed: %v", err)
	}
	defer conn.Close()
	wsConnId := uuid.New().String()
	log.Printf("[web] new websocket connection: doc:%s connid:%s\n", sess.DocId(), wsConnId)
	outputCh := make(chan any, wsOutputChSize)
	closeCh := make(chan any)
	writerDoneCh := make(chan any)
	wg := &sync.WaitGroup{}
	if s.Bus != nil {
		updateCh := s.Bus.Subscribe(sess.DocId(), wsConnId)
		defer s.Bus.Unsubscribe(sess.DocId(), wsConnId)
		wg.Add(1)
		go func() {
			defer wg.Done()
			forwardUpdates(wsConnId, updateCh, outputCh, closeCh)
		}()
	}
	wg.Add(2)
	go func() {
		defer wg.Done()
		s.ReadLoop(conn, sess, wsConnId, outputCh, closeCh, writerDoneCh)
	}()
	go func() {
		defer wg.Done()
		WriteLoop(conn, outputCh, closeCh, writerDoneCh)
	}()
	wg.Wait()
	log.Printf("[web] websocket connection closed: connid:%s\n", wsConnId)
	return nil
}
