// Copyright (c) 2019 Cisco and/or its affiliates.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at:
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package controller

import (
	"net/http"

	"github.com/unrolled/render"
)

const (
	urlPrefix = "/controller/"

	// EventHistoryURL is URL used to obtain the event history.
	// See history.go for the query arguments.
	EventHistoryURL = urlPrefix + "event-history"

	// ResyncURL is URL used to trigger DB resync.
	ResyncURL = urlPrefix + "resync"
)

// errorResponse is the body of a failed request.
type errorResponse struct {
	Error string `json:"error"`
}

func (c *Controller) registerHandlers() {
	if c.HTTPHandlers == nil {
		c.Log.Warn("No http handler provided, skipping registration of Controller REST handlers")
		return
	}
	c.HTTPHandlers.RegisterHTTPHandler(EventHistoryURL, c.eventHistoryGetHandler, "GET")
	c.HTTPHandlers.RegisterHTTPHandler(ResyncURL, c.resyncReqHandler, "POST")
}

func (c *Controller) eventHistoryGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		history, err := c.history.query(req.URL.Query())
		switch {
		case err == errNoSuchEvent:
			formatter.JSON(w, http.StatusNotFound, errorResponse{err.Error()})
		case err != nil:
			formatter.JSON(w, http.StatusBadRequest, errorResponse{err.Error()})
		default:
			formatter.JSON(w, http.StatusOK, history)
		}
	}
}

// resyncReqHandler asks the DB watcher to resync against the remote DB.
func (c *Controller) resyncReqHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if c.watcher == nil {
			formatter.JSON(w, http.StatusServiceUnavailable, errorResponse{"DB watcher is not running"})
			return
		}
		if err := c.watcher.requestResync(false); err != nil {
			formatter.JSON(w, http.StatusInternalServerError, errorResponse{err.Error()})
			return
		}
		formatter.JSON(w, http.StatusOK, "Resync request was successfully dispatched.")
	}
}
