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
	"sort"
	"sync"

	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

// ErrUnknownAccountType is returned by New when no backend is registered
// for the account type.
var ErrUnknownAccountType = errors.New("no NSM plugin registered for the account type")

var registry = struct {
	sync.RWMutex
	factories map[string]Factory
}{factories: make(map[string]Factory)}

// Register makes the backend available for cloud accounts of the given type.
// A repeated registration replaces the previous factory.
func Register(accountType string, factory Factory) {
	registry.Lock()
	defer registry.Unlock()
	registry.factories[accountType] = factory
}

// Unregister removes the backend of the account type.
func Unregister(accountType string) {
	registry.Lock()
	defer registry.Unlock()
	delete(registry.factories, accountType)
}

// AccountTypes returns the registered account types in ascending order.
func AccountTypes() []string {
	registry.RLock()
	defer registry.RUnlock()
	var types []string
	for accountType := range registry.factories {
		types = append(types, accountType)
	}
	sort.Strings(types)
	return types
}

// New creates a backend instance for the cloud account.
func New(account *model.CloudAccount) (API, error) {
	registry.RLock()
	factory, registered := registry.factories[account.AccountType]
	registry.RUnlock()
	if !registered {
		return nil, errors.Wrapf(ErrUnknownAccountType, "account %s of type %q",
			account.Name, account.AccountType)
	}
	plugin, err := factory(account)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create NSM plugin for account %s", account.Name)
	}
	return plugin, nil
}
