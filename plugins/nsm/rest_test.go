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
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/gorilla/mux"
	"github.com/onsi/gomega"
	"github.com/unrolled/render"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// newTestRouter mounts the REST handlers the way the HTTP plugin does.
func newTestRouter(m *NsManager) *mux.Router {
	formatter := render.New(render.Options{IndentJSON: true})
	router := mux.NewRouter()
	router.HandleFunc(NsrsURL, m.nsrsGetHandler(formatter)).Methods("GET")
	router.HandleFunc(NsrURL, m.nsrGetHandler(formatter)).Methods("GET")
	router.HandleFunc(NsdsURL, m.nsdsGetHandler(formatter)).Methods("GET")
	router.HandleFunc(ConfigURL, m.configPostHandler(formatter)).Methods("POST")
	return router
}

func serve(router *mux.Router, method, url string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, url, bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func configRequest(puts map[string]proto.Message, deletes ...*model.ConfigRef) []byte {
	request := &model.ConfigRequest{Delete: deletes}
	for kind, record := range puts {
		item, err := model.NewConfigItem(kind, record)
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		request.Put = append(request.Put, item)
	}
	body, err := json.Marshal(request)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	return body
}

func TestRestGetNsr(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	router := newTestRouter(env.m)

	rec := serve(router, "GET", NsrsURL, nil)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	gomega.Expect(rec.Body.String()).To(gomega.MatchJSON("null"))

	env.runNsr(testNsd(false))

	rec = serve(router, "GET", NsrsURL, nil)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	var nsrs []*model.Nsr
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &nsrs)).To(gomega.Succeed())
	gomega.Expect(nsrs).To(gomega.HaveLen(1))
	gomega.Expect(nsrs[0].Name).To(gomega.Equal(testNsrName))
	gomega.Expect(nsrs[0].OperationalStatus).To(gomega.Equal(model.NsrState_RUNNING))

	rec = serve(router, "GET", "/nfvo/nsr/"+testNsrID, nil)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	var detail NsrDetail
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &detail)).To(gomega.Succeed())
	gomega.Expect(detail.Nsr.Id).To(gomega.Equal(testNsrID))
	gomega.Expect(detail.Vnfrs).To(gomega.HaveLen(2))
	gomega.Expect(detail.Vnfrs[0].Name).To(gomega.Equal("ns.ping.1"))

	rec = serve(router, "GET", "/nfvo/nsr/missing", nil)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusNotFound))
	gomega.Expect(rec.Body.String()).To(gomega.MatchJSON(`{"error": "NSR missing not found"}`))

	rec = serve(router, "GET", NsdsURL, nil)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	var nsds []*model.Nsd
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &nsds)).To(gomega.Succeed())
	gomega.Expect(nsds).To(gomega.HaveLen(1))
	gomega.Expect(nsds[0].Id).To(gomega.Equal("nsd-1"))
}

func TestRestPostConfig(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	router := newTestRouter(env.m)

	body := configRequest(map[string]proto.Message{
		model.CloudAccountKeyword: testCloudAccount(),
		model.VnfdKeyword:         testVnfds()[0],
	})
	rec := serve(router, "POST", ConfigURL, body)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	var response model.ConfigResponse
	gomega.Expect(json.Unmarshal(rec.Body.Bytes(), &response)).To(gomega.Succeed())
	gomega.Expect(response.Keys).To(gomega.ConsistOf(
		model.CloudAccountKey(testAccount), model.VnfdKey("ping")))
	gomega.Expect(env.stored(model.VnfdKey("ping"))).ToNot(gomega.BeNil())

	// existing records are replaced
	rec = serve(router, "POST", ConfigURL, body)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))

	// removal
	rec = serve(router, "POST", ConfigURL, configRequest(nil,
		&model.ConfigRef{Kind: model.VnfdKeyword, ID: "ping"}))
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusOK))
	gomega.Expect(env.stored(model.VnfdKey("ping"))).To(gomega.BeNil())
}

func TestRestPostConfigRejected(t *testing.T) {
	env := newTestEnv(t)
	defer env.close()
	router := newTestRouter(env.m)

	rec := serve(router, "POST", ConfigURL, []byte("{"))
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))

	rec = serve(router, "POST", ConfigURL, []byte(`{"put": [{"kind": "unknown", "spec": {}}]}`))
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("unsupported configuration kind"))

	rec = serve(router, "POST", ConfigURL, configRequest(nil, &model.ConfigRef{Kind: model.NsdKeyword}))
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))

	// rejected by admission, nothing is stored
	body := configRequest(map[string]proto.Message{
		model.CloudAccountKeyword: testCloudAccount(),
		model.NsrConfigKeyword:    testNsrConfig("missing"),
	})
	rec = serve(router, "POST", ConfigURL, body)
	gomega.Expect(rec.Code).To(gomega.Equal(http.StatusBadRequest))
	gomega.Expect(rec.Body.String()).To(gomega.ContainSubstring("NSD missing is not in the catalog"))
	gomega.Expect(env.stored(model.CloudAccountKey(testAccount))).To(gomega.BeNil())
}
