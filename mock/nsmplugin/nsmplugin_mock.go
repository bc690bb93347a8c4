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

package nsmplugin

import (
	"context"
	"fmt"
	"sync"

	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

// MockNsmPlugin is a mock implementation of an NSM backend. It records
// every call and fails the calls with injected errors.
type MockNsmPlugin struct {
	sync.Mutex

	calls  []string
	vnfrs  map[string]*model.Vnfr // instantiated VNFRs by ID
	errors map[string]error       // by method name
}

// NewMockNsmPlugin is a constructor for MockNsmPlugin.
func NewMockNsmPlugin() *MockNsmPlugin {
	return &MockNsmPlugin{
		vnfrs:  make(map[string]*model.Vnfr),
		errors: make(map[string]error),
	}
}

// Factory returns a factory which always returns this instance, to be used
// with nsmplugin.Register.
func (m *MockNsmPlugin) Factory() nsmplugin.Factory {
	return func(account *model.CloudAccount) (nsmplugin.API, error) {
		return m, nil
	}
}

// InjectError makes every call of the given method (e.g. "InstantiateVnf")
// fail with err. Nil err removes the injected error.
func (m *MockNsmPlugin) InjectError(method string, err error) {
	m.Lock()
	defer m.Unlock()
	if err == nil {
		delete(m.errors, method)
		return
	}
	m.errors[method] = err
}

// Calls returns all the recorded calls in the form "<method> <record name>".
func (m *MockNsmPlugin) Calls() []string {
	m.Lock()
	defer m.Unlock()
	return append([]string(nil), m.calls...)
}

// InstantiatedVnfrs returns VNFRs passed to InstantiateVnf and not terminated since.
func (m *MockNsmPlugin) InstantiatedVnfrs() []*model.Vnfr {
	m.Lock()
	defer m.Unlock()
	var vnfrs []*model.Vnfr
	for _, vnfr := range m.vnfrs {
		vnfrs = append(vnfrs, vnfr)
	}
	return vnfrs
}

func (m *MockNsmPlugin) record(method, name string) error {
	m.calls = append(m.calls, fmt.Sprintf("%s %s", method, name))
	return m.errors[method]
}

// CreateNsr records the call.
func (m *MockNsmPlugin) CreateNsr(cfg *model.NsrConfig, nsd *model.Nsd) error {
	m.Lock()
	defer m.Unlock()
	return m.record("CreateNsr", cfg.Name)
}

// Deploy records the call.
func (m *MockNsmPlugin) Deploy(ctx context.Context, nsr *model.Nsr) error {
	m.Lock()
	defer m.Unlock()
	return m.record("Deploy", nsr.Name)
}

// InstantiateNs records the call.
func (m *MockNsmPlugin) InstantiateNs(ctx context.Context, nsr *model.Nsr) error {
	m.Lock()
	defer m.Unlock()
	return m.record("InstantiateNs", nsr.Name)
}

// InstantiateVl records the call.
func (m *MockNsmPlugin) InstantiateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error {
	m.Lock()
	defer m.Unlock()
	return m.record("InstantiateVl", vlr.Name)
}

// InstantiateVnf records the call and remembers the VNFR.
func (m *MockNsmPlugin) InstantiateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error {
	m.Lock()
	defer m.Unlock()
	if err := m.record("InstantiateVnf", vnfr.Name); err != nil {
		return err
	}
	m.vnfrs[vnfr.Id] = vnfr
	return nil
}

// TerminateNs records the call.
func (m *MockNsmPlugin) TerminateNs(ctx context.Context, nsr *model.Nsr) error {
	m.Lock()
	defer m.Unlock()
	return m.record("TerminateNs", nsr.Name)
}

// TerminateVnf records the call and forgets the VNFR.
func (m *MockNsmPlugin) TerminateVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr) error {
	m.Lock()
	defer m.Unlock()
	delete(m.vnfrs, vnfr.Id)
	return m.record("TerminateVnf", vnfr.Name)
}

// TerminateVl records the call.
func (m *MockNsmPlugin) TerminateVl(ctx context.Context, nsr *model.Nsr, vlr *model.Vlr) error {
	m.Lock()
	defer m.Unlock()
	return m.record("TerminateVl", vlr.Name)
}
