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

package vnffgmgr

import (
	"context"
	"sync"

	"github.com/gogo/protobuf/proto"

	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/vnffgmgr"
)

// MockVnffgMgr is a mock implementation of the VNFFG manager.
type MockVnffgMgr struct {
	sync.Mutex

	accounts   map[string]*model.SdnAccount
	chains     map[string]*model.Vnffgr
	requests   []*model.Vnffgr
	sffs       []map[string]*model.Sff
	createErr  error
	nextPathID uint32
}

// NewMockVnffgMgr is a constructor for MockVnffgMgr.
func NewMockVnffgMgr() *MockVnffgMgr {
	return &MockVnffgMgr{
		accounts:   make(map[string]*model.SdnAccount),
		chains:     make(map[string]*model.Vnffgr),
		nextPathID: 1,
	}
}

// InjectCreateError makes CreateVnffgr fail with err.
func (m *MockVnffgMgr) InjectCreateError(err error) {
	m.Lock()
	defer m.Unlock()
	m.createErr = err
}

// Requests returns all the requests passed to CreateVnffgr.
func (m *MockVnffgMgr) Requests() []*model.Vnffgr {
	m.Lock()
	defer m.Unlock()
	return append([]*model.Vnffgr(nil), m.requests...)
}

// SffMaps returns the SFF maps passed to CreateVnffgr.
func (m *MockVnffgMgr) SffMaps() []map[string]*model.Sff {
	m.Lock()
	defer m.Unlock()
	return append([]map[string]*model.Sff(nil), m.sffs...)
}

// Chains returns IDs of the rendered graphs.
func (m *MockVnffgMgr) Chains() []string {
	m.Lock()
	defer m.Unlock()
	var ids []string
	for id := range m.chains {
		ids = append(ids, id)
	}
	return ids
}

// AddSdnAccount remembers the account.
func (m *MockVnffgMgr) AddSdnAccount(account *model.SdnAccount) error {
	m.Lock()
	defer m.Unlock()
	m.accounts[account.Name] = account
	return nil
}

// RemoveSdnAccount forgets the account.
func (m *MockVnffgMgr) RemoveSdnAccount(name string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.accounts, name)
	return nil
}

// CreateVnffgr records the request and assigns path IDs.
func (m *MockVnffgMgr) CreateVnffgr(ctx context.Context, sdnAccount string, request *model.Vnffgr,
	classifiers []*model.VnffgrClassifier, sffs map[string]*model.Sff) (*model.Vnffgr, error) {
	m.Lock()
	defer m.Unlock()
	m.requests = append(m.requests, proto.Clone(request).(*model.Vnffgr))
	m.sffs = append(m.sffs, sffs)
	if m.createErr != nil {
		return nil, m.createErr
	}
	result := proto.Clone(request).(*model.Vnffgr)
	for _, rsp := range result.Rsps {
		rsp.PathId = m.nextPathID
		m.nextPathID++
	}
	result.Classifiers = classifiers
	result.OperationalStatus = model.RecordStatus_RUNNING
	m.chains[result.Id] = result
	return result, nil
}

// FetchVnffgr returns the rendered graph.
func (m *MockVnffgMgr) FetchVnffgr(ctx context.Context, sdnAccount string, id string) (*model.Vnffgr, error) {
	m.Lock()
	defer m.Unlock()
	chain, found := m.chains[id]
	if !found {
		return nil, vnffgmgr.ErrChainNotFound
	}
	return chain, nil
}

// TerminateVnffgr removes the graph.
func (m *MockVnffgMgr) TerminateVnffgr(ctx context.Context, sdnAccount string, id string) error {
	m.Lock()
	defer m.Unlock()
	delete(m.chains, id)
	return nil
}
