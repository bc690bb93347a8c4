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

package noop

import (
	"sort"
	"sync"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/vnffgmgr/renderer"
)

// AccountType under which the noop renderer is available.
const AccountType = "noop"

// Renderer only logs the chains it is asked to render and keeps track
// of them, nothing is programmed into the network.
type Renderer struct {
	Deps

	sync.Mutex
	chains map[string]*renderer.Chain // chain ID -> chain
}

// Deps lists dependencies of the Renderer.
type Deps struct {
	Log     logging.Logger
	Account *model.SdnAccount
}

// NewRenderer is the renderer.Factory of the noop renderer.
func NewRenderer(account *model.SdnAccount, log logging.Logger) (renderer.ChainRendererAPI, error) {
	rndr := &Renderer{
		Deps: Deps{
			Log:     log,
			Account: account,
		},
	}
	rndr.Init()
	return rndr, nil
}

// Init initializes the renderer.
func (rndr *Renderer) Init() {
	rndr.chains = make(map[string]*renderer.Chain)
}

// AddChain logs the newly created chain.
func (rndr *Renderer) AddChain(chain *renderer.Chain) error {
	rndr.Lock()
	defer rndr.Unlock()
	rndr.chains[chain.ID] = chain
	rndr.Log.Infof("Rendering %s", chain)
	return nil
}

// DeleteChain logs the removed chain.
func (rndr *Renderer) DeleteChain(chain *renderer.Chain) error {
	rndr.Lock()
	defer rndr.Unlock()
	delete(rndr.chains, chain.ID)
	rndr.Log.Infof("Removing chain %s (%s)", chain.Name, chain.ID)
	return nil
}

// Resync replaces the set of rendered chains.
func (rndr *Renderer) Resync(chains []*renderer.Chain) error {
	rndr.Lock()
	defer rndr.Unlock()
	rndr.chains = make(map[string]*renderer.Chain)
	for _, chain := range chains {
		rndr.chains[chain.ID] = chain
	}
	rndr.Log.Infof("Resynced %d chains of SDN account %s", len(chains), rndr.Account.GetName())
	return nil
}

// Chains returns IDs of the rendered chains in ascending order.
func (rndr *Renderer) Chains() []string {
	rndr.Lock()
	defer rndr.Unlock()
	var ids []string
	for id := range rndr.chains {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
