// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
	ReadBufferSize:  4 * 1024,
	WriteBufferSize: 4 * 1024,
}

// keepAliveInterval is how often a ping is sent on an idle event stream.
const keepAliveInterval = 30 * time.Second

// StreamBuildEvents upgrades the connection to a websocket and forwards
// progress events for one run. The stream closes when the run reaches a
// terminal phase or the client disconnects.
func StreamBuildEvents(svc *BuildService) gin.HandlerFunc {
	return func(c *gin.Context) {
		runID := c.Param("runId")

		ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			slog.Error("failed to upgrade the websocket", "error", err)
			return
		}
		defer ws.Close()
		slog.Info("event stream connected", "run_id", runID)

		events, cancel := svc.Publisher.Subscribe()
		defer cancel()

		// Reads only surface client disconnects; incoming payloads
		// are discarded.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := ws.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ticker := time.NewTicker(keepAliveInterval)
		defer ticker.Stop()

		for {
			select {
			case e, ok := <-events:
				if !ok {
					return
				}
				if e.RunID != runID {
					continue
				}
				if err := ws.WriteJSON(e); err != nil {
					slog.Warn("failed to write event", "run_id", runID, "error", err)
					return
				}
				if e.Phase.Terminal() {
					slog.Info("event stream complete", "run_id", runID, "phase", e.Phase)
					return
				}
			case <-ticker.C:
				if err := ws.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second)); err != nil {
					return
				}
			case <-done:
				slog.Info("event stream client disconnected", "run_id", runID)
				return
			}
		}
	}
}
