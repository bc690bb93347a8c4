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
	"testing"

	"github.com/onsi/gomega"
	"github.com/pkg/errors"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

type testBackend struct {
	API
	account string
}

func TestRegistry(t *testing.T) {
	gomega.RegisterTestingT(t)

	Register("test", func(account *model.CloudAccount) (API, error) {
		return &testBackend{account: account.Name}, nil
	})
	Register("broken", func(account *model.CloudAccount) (API, error) {
		return nil, errors.New("unreachable VIM")
	})
	defer Unregister("test")
	defer Unregister("broken")

	gomega.Expect(AccountTypes()).To(gomega.ContainElement("test"))

	plugin, err := New(&model.CloudAccount{Name: "acc1", AccountType: "test"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(plugin.(*testBackend).account).To(gomega.Equal("acc1"))

	_, err = New(&model.CloudAccount{Name: "acc2", AccountType: "openstack"})
	gomega.Expect(errors.Cause(err)).To(gomega.Equal(ErrUnknownAccountType))

	_, err = New(&model.CloudAccount{Name: "acc3", AccountType: "broken"})
	gomega.Expect(err).To(gomega.HaveOccurred())

	Unregister("test")
	_, err = New(&model.CloudAccount{Name: "acc1", AccountType: "test"})
	gomega.Expect(errors.Cause(err)).To(gomega.Equal(ErrUnknownAccountType))
}
