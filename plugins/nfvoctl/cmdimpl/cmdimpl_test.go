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

package cmdimpl

import (
	"bytes"
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/onsi/gomega"

	"github.com/contiv/nfvo/plugins/nfvoctl/remote"
	"github.com/contiv/nfvo/plugins/nsm"
	"github.com/contiv/nfvo/plugins/nsm/model"
)

const testConfig = `
kind: cloud-account
spec:
  name: vim
  account_type: local
---
kind: nsd
spec:
  id: nsd-1
  name: ping-pong
  constituent_vnfds:
    - member_vnf_index: 1
      vnfd_id_ref: ping
      start_by_default: true
---
`

// testServer serves canned responses and records the config requests.
type testServer struct {
	*httptest.Server
	requests []*model.ConfigRequest
}

func newTestServer() *testServer {
	ts := &testServer{}
	nsr := &model.Nsr{
		Id: "nsr-1", Name: "ns", NsdName: "ping-pong", CloudAccount: "vim",
		OperationalStatus:   model.NsrState_RUNNING,
		ConstituentVnfrRefs: []string{"v1"},
		ScalingGroupRecords: []*model.ScalingGroupRecord{{
			ScalingGroupNameRef: "sg",
			Instances: []*model.ScalingInstanceRecord{{
				InstanceId: 1, IsDefault: true, OpStatus: model.ScalingInstanceStatus_RUNNING,
				PoolValues: []*model.PoolValue{{Pool: "vlans", Value: 100}},
			}},
		}},
		OperationalEvents: []*model.OperationalEvent{{Id: 1, Event: "instantiate-rcvd", Description: "received"}},
	}
	mux := http.NewServeMux()
	mux.HandleFunc(nsm.NsrsURL, func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]*model.Nsr{nsr})
	})
	mux.HandleFunc(nsm.NsrsURL+"/", func(w http.ResponseWriter, req *http.Request) {
		if !strings.HasSuffix(req.URL.Path, "/nsr-1") {
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"error": "NSR missing not found"}`))
			return
		}
		json.NewEncoder(w).Encode(&nsm.NsrDetail{Nsr: nsr, Vnfrs: []*model.Vnfr{{
			Name: "ns.sg.1.ping.1", VnfdName: "ping", MemberVnfIndexRef: 1,
			ScalingGroupNameRef: "sg", ScalingInstanceId: 1,
			OperationalStatus: model.RecordStatus_RUNNING,
			ConnectionPoints:  []*model.VnfrConnectionPoint{{Name: "cp0", IpAddress: "10.1.1.2"}},
		}}})
	})
	mux.HandleFunc(nsm.NsdsURL, func(w http.ResponseWriter, req *http.Request) {
		json.NewEncoder(w).Encode([]*model.Nsd{{Id: "nsd-1", Name: "ping-pong",
			ScalingGroupDescriptors: []*model.ScalingGroupDescriptor{{Name: "sg", MinInstanceCount: 1, MaxInstanceCount: 2}}}})
	})
	mux.HandleFunc(nsm.ConfigURL, func(w http.ResponseWriter, req *http.Request) {
		request := &model.ConfigRequest{}
		json.NewDecoder(req.Body).Decode(request)
		ts.requests = append(ts.requests, request)
		if len(request.Delete) > 0 && request.Delete[0].ID == "in-use" {
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte(`{"error": "NSD in-use: ref count exists"}`))
			return
		}
		var keys []string
		for _, item := range request.Put {
			key, _, _ := item.Record()
			keys = append(keys, key)
		}
		for _, ref := range request.Delete {
			key, _ := ref.Key()
			keys = append(keys, key)
		}
		json.NewEncoder(w).Encode(&model.ConfigResponse{Keys: keys})
	})
	ts.Server = httptest.NewServer(mux)
	return ts
}

func (ts *testServer) host() string {
	return strings.TrimPrefix(ts.URL, "http://")
}

func newTestClient() *remote.HTTPClient {
	client, err := remote.CreateHTTPClient("")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	return client
}

func TestParseConfigDocuments(t *testing.T) {
	gomega.RegisterTestingT(t)

	items, err := ParseConfigDocuments([]byte(testConfig))
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(items).To(gomega.HaveLen(2))
	key, record, err := items[1].Record()
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(key).To(gomega.Equal(model.NsdKey("nsd-1")))
	nsd := record.(*model.Nsd)
	gomega.Expect(nsd.ConstituentVnfds[0].StartByDefault).To(gomega.BeTrue())

	_, err = ParseConfigDocuments([]byte("---\n"))
	gomega.Expect(err).To(gomega.MatchError("no configuration found"))

	_, err = ParseConfigDocuments([]byte("kind: nsd\nspec:\n  name: no-id\n"))
	gomega.Expect(err).To(gomega.HaveOccurred())
	gomega.Expect(err.Error()).To(gomega.ContainSubstring("document 1"))

	_, err = ParseConfigDocuments([]byte("kind: nsd\n---\nkind: vnfr\nspec:\n  id: x\n"))
	gomega.Expect(err).To(gomega.HaveOccurred())

	_, err = ParseConfigDocuments([]byte("kind: [nsd\n"))
	gomega.Expect(err).To(gomega.HaveOccurred())
}

func TestApplyAndDelete(t *testing.T) {
	gomega.RegisterTestingT(t)
	ts := newTestServer()
	defer ts.Close()

	dir, err := ioutil.TempDir("", "nfvoctl")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	defer os.RemoveAll(dir)
	file := filepath.Join(dir, "config.yaml")
	gomega.Expect(ioutil.WriteFile(file, []byte(testConfig), 0644)).To(gomega.Succeed())

	var out bytes.Buffer
	gomega.Expect(ApplyFile(&out, newTestClient(), ts.host(), file)).To(gomega.Succeed())
	gomega.Expect(ts.requests).To(gomega.HaveLen(1))
	gomega.Expect(ts.requests[0].Put).To(gomega.HaveLen(2))
	gomega.Expect(out.String()).To(gomega.ContainSubstring(model.NsdKey("nsd-1")))

	out.Reset()
	gomega.Expect(DeleteRecords(&out, newTestClient(), ts.host(), model.NsrConfigKeyword, []string{"a", "b"})).
		To(gomega.Succeed())
	gomega.Expect(ts.requests[1].Delete).To(gomega.HaveLen(2))
	gomega.Expect(out.String()).To(gomega.ContainSubstring(model.NsrConfigKey("b")))

	err = DeleteRecords(&out, newTestClient(), ts.host(), model.NsdKeyword, []string{"in-use"})
	gomega.Expect(err).To(gomega.HaveOccurred())
	gomega.Expect(err.Error()).To(gomega.ContainSubstring("ref count exists"))

	gomega.Expect(ApplyFile(&out, newTestClient(), ts.host(), filepath.Join(dir, "missing"))).ToNot(gomega.Succeed())
}

func TestPrintRecords(t *testing.T) {
	gomega.RegisterTestingT(t)
	ts := newTestServer()
	defer ts.Close()
	client := newTestClient()

	var out bytes.Buffer
	gomega.Expect(PrintNsrs(&out, client, ts.host())).To(gomega.Succeed())
	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	gomega.Expect(lines).To(gomega.HaveLen(2))
	gomega.Expect(lines[0]).To(gomega.HavePrefix("ID"))
	gomega.Expect(strings.Fields(lines[1])[:5]).To(gomega.Equal([]string{"nsr-1", "ns", "ping-pong", "vim", "RUNNING"}))

	out.Reset()
	gomega.Expect(PrintNsr(&out, client, ts.host(), "nsr-1")).To(gomega.Succeed())
	gomega.Expect(out.String()).To(gomega.ContainSubstring("ns.sg.1.ping.1"))
	gomega.Expect(out.String()).To(gomega.ContainSubstring("sg/1"))
	gomega.Expect(out.String()).To(gomega.ContainSubstring("cp0=10.1.1.2"))
	gomega.Expect(out.String()).To(gomega.ContainSubstring("vlans=100"))

	err := PrintNsr(&out, client, ts.host(), "missing")
	gomega.Expect(err).To(gomega.MatchError("404 Not Found: NSR missing not found"))

	out.Reset()
	gomega.Expect(PrintEvents(&out, client, ts.host(), "nsr-1")).To(gomega.Succeed())
	gomega.Expect(out.String()).To(gomega.ContainSubstring("instantiate-rcvd"))

	out.Reset()
	gomega.Expect(PrintNsds(&out, client, ts.host())).To(gomega.Succeed())
	gomega.Expect(out.String()).To(gomega.ContainSubstring("sg(1..2)"))
}
