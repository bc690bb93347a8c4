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

package nsm

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/unrolled/render"

	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

const (
	// NsrsURL is URL used to obtain all NSRs.
	NsrsURL = "/nfvo/nsr"

	// NsrURL is URL used to obtain one NSR (with its VNFRs).
	NsrURL = NsrsURL + "/{id}"

	// NsdsURL is URL used to obtain the NSD catalog.
	NsdsURL = "/nfvo/nsd"

	// ConfigURL is URL used to submit configuration transactions.
	ConfigURL = "/nfvo/config"
)

// NsrDetail is the REST representation of one NSR.
type NsrDetail struct {
	Nsr   *model.Nsr    `json:"nsr"`
	Vnfrs []*model.Vnfr `json:"vnfrs,omitempty"`
}

// errorResponse is returned for failed requests.
type errorResponse struct {
	Error string `json:"error"`
}

// registerHandlers registers all supported REST APIs.
func (m *NsManager) registerHandlers() {
	if m.HTTPHandlers == nil {
		m.Log.Warn("No http handler provided, skipping registration of NS manager REST handlers")
		return
	}
	m.HTTPHandlers.RegisterHTTPHandler(NsrsURL, m.nsrsGetHandler, "GET")
	m.HTTPHandlers.RegisterHTTPHandler(NsrURL, m.nsrGetHandler, "GET")
	m.HTTPHandlers.RegisterHTTPHandler(NsdsURL, m.nsdsGetHandler, "GET")
	m.HTTPHandlers.RegisterHTTPHandler(ConfigURL, m.configPostHandler, "POST")
}

// nsrsGetHandler is the GET handler for "nsr" API.
func (m *NsManager) nsrsGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		formatter.JSON(w, http.StatusOK, m.GetNsrs())
	}
}

// nsrGetHandler is the GET handler for "nsr/{id}" API.
func (m *NsManager) nsrGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		id := mux.Vars(req)["id"]
		nsr, found := m.GetNsr(id)
		if !found {
			formatter.JSON(w, http.StatusNotFound, errorResponse{Error: "NSR " + id + " not found"})
			return
		}
		formatter.JSON(w, http.StatusOK, &NsrDetail{Nsr: nsr, Vnfrs: m.GetVnfrs(id)})
	}
}

// nsdsGetHandler is the GET handler for "nsd" API.
func (m *NsManager) nsdsGetHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		formatter.JSON(w, http.StatusOK, m.GetNsds())
	}
}

// configPostHandler is the POST handler for "config" API. The request is
// committed as one transaction, rejected transactions are reported with 400.
func (m *NsManager) configPostHandler(formatter *render.Render) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		var request model.ConfigRequest
		if err := json.NewDecoder(req.Body).Decode(&request); err != nil {
			formatter.JSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}
		keys, err := m.commitConfig(req.Context(), &request)
		if err != nil {
			status := http.StatusInternalServerError
			switch err.(type) {
			case *datastore.PrepareError, *datastore.AlreadyExistsError, *datastore.NotFoundError, *configError:
				status = http.StatusBadRequest
			}
			formatter.JSON(w, status, errorResponse{Error: err.Error()})
			return
		}
		formatter.JSON(w, http.StatusOK, &model.ConfigResponse{Keys: keys})
	}
}

// configError is a malformed item of a configuration request.
type configError struct {
	msg string
}

func (e *configError) Error() string {
	return e.msg
}

// commitConfig translates the request into one data store transaction.
// Existing records are replaced, new ones created.
func (m *NsManager) commitConfig(ctx context.Context, request *model.ConfigRequest) ([]string, error) {
	txn := m.DataStore.NewTxn()
	var keys []string
	for _, item := range request.Put {
		key, record, err := item.Record()
		if err != nil {
			txn.Abort()
			return nil, &configError{msg: err.Error()}
		}
		exists, err := m.recordExists(ctx, key)
		if err != nil {
			txn.Abort()
			return nil, err
		}
		if exists {
			txn.Update(key, record, datastore.Replace)
		} else {
			txn.Create(key, record)
		}
		keys = append(keys, key)
	}
	for _, ref := range request.Delete {
		key, err := ref.Key()
		if err != nil {
			txn.Abort()
			return nil, &configError{msg: err.Error()}
		}
		txn.Delete(key)
		keys = append(keys, key)
	}
	if _, err := txn.Commit(ctx); err != nil {
		return nil, err
	}
	return keys, nil
}

func (m *NsManager) recordExists(ctx context.Context, key string) (bool, error) {
	it, err := m.DataStore.Read(ctx, key)
	if err != nil {
		return false, err
	}
	_, _, found := it.Next()
	return found, nil
}
