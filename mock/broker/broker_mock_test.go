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

package broker

import (
	"context"
	"errors"
	"testing"

	"github.com/gogo/protobuf/proto"
	"github.com/onsi/gomega"

	"github.com/ligato/cn-infra/db/keyval"

	"github.com/contiv/nfvo/plugins/nsm/model"
)

var (
	_ keyval.ProtoBroker         = (*MockBroker)(nil)
	_ keyval.ProtoTxn            = (*mockTxn)(nil)
	_ keyval.ProtoKeyVal         = (*mockKv)(nil)
	_ keyval.ProtoKeyValIterator = (*mockIt)(nil)
	_ keyval.ProtoKeyIterator    = (*mockKeyIt)(nil)
)

func TestMockBrokerTxn(t *testing.T) {
	gomega.RegisterTestingT(t)
	mb := NewMockBroker()

	err := mb.NewTxn().
		Put("/nfvo/a", &model.SdnAccount{Name: "a", AccountType: "noop"}).
		Put("/nfvo/b", &model.SdnAccount{Name: "b", AccountType: "noop"}).
		Commit(context.Background())
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(mb.Keys()).To(gomega.Equal([]string{"/nfvo/a", "/nfvo/b"}))

	account := &model.SdnAccount{}
	found, rev, err := mb.GetValue("/nfvo/b", account)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(found).To(gomega.BeTrue())
	gomega.Expect(rev).To(gomega.BeEquivalentTo(2))
	gomega.Expect(proto.Equal(account, &model.SdnAccount{Name: "b", AccountType: "noop"})).To(gomega.BeTrue())

	it, err := mb.ListValues("/nfvo/")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	kv, stop := it.GetNext()
	gomega.Expect(stop).To(gomega.BeFalse())
	gomega.Expect(kv.GetKey()).To(gomega.Equal("/nfvo/a"))

	// failed commit leaves the data untouched
	mb.CommitErr = errors.New("etcd unavailable")
	gomega.Expect(mb.NewTxn().Delete("/nfvo/a").Commit(context.Background())).ToNot(gomega.Succeed())
	mb.CommitErr = nil
	gomega.Expect(mb.NewTxn().Delete("/nfvo/a").Commit(context.Background())).To(gomega.Succeed())
	gomega.Expect(mb.Keys()).To(gomega.Equal([]string{"/nfvo/b"}))
}
