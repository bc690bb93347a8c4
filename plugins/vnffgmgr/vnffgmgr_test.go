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
	"errors"
	"testing"

	"github.com/onsi/gomega"
	pkgerrors "github.com/pkg/errors"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/mock/broker"
	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/vnffgmgr/renderer"
)

// recordingRenderer remembers the chains it was asked to render.
type recordingRenderer struct {
	added   []*renderer.Chain
	deleted []*renderer.Chain
	resync  []*renderer.Chain
	addErr  error
}

func (r *recordingRenderer) AddChain(chain *renderer.Chain) error {
	if r.addErr != nil {
		return r.addErr
	}
	r.added = append(r.added, chain)
	return nil
}

func (r *recordingRenderer) DeleteChain(chain *renderer.Chain) error {
	r.deleted = append(r.deleted, chain)
	return nil
}

func (r *recordingRenderer) Resync(chains []*renderer.Chain) error {
	r.resync = chains
	return nil
}

func newTestPlugin(ds datastore.API) (*Plugin, *recordingRenderer) {
	p := NewPlugin(UseDeps(func(deps *Deps) {
		deps.HTTPHandlers = nil
		deps.DataStore = ds
	}))
	p.Cfg = nil
	p.Log = logging.ForPlugin("vnffgmgr-test")
	gomega.Expect(p.Init()).To(gomega.Succeed())
	gomega.Expect(p.AfterInit()).To(gomega.Succeed())

	rndr := &recordingRenderer{}
	p.RegisterRenderer("test", func(account *model.SdnAccount, log logging.Logger) (renderer.ChainRendererAPI, error) {
		return rndr, nil
	})
	return p, rndr
}

func pingPongGraph(id string) *model.Vnffgr {
	return &model.Vnffgr{
		Id:   id,
		Name: "ns.fg",
		Rsps: []*model.RenderedServicePath{
			{
				Id:   "rsp1",
				Name: "ping-to-pong",
				Hops: []*model.RspHop{
					{HopNumber: 1, VnfrIdRef: "vnfr-ping", VnfrName: "ns.ping.1", CpName: "ping/cp0", IpAddress: "10.100.1.2"},
					{HopNumber: 2, VnfrIdRef: "vnfr-pong", VnfrName: "ns.pong.2", CpName: "pong/cp0", IpAddress: "10.100.1.3"},
				},
			},
		},
	}
}

func TestCreateAndTerminate(t *testing.T) {
	gomega.RegisterTestingT(t)
	p, rndr := newTestPlugin(nil)
	ctx := context.Background()

	// unknown account
	_, err := p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg-1"), nil, nil)
	gomega.Expect(pkgerrors.Cause(err)).To(gomega.Equal(ErrUnknownSdnAccount))
	err = p.AddSdnAccount(&model.SdnAccount{Name: "sdn", AccountType: "odl"})
	gomega.Expect(pkgerrors.Cause(err)).To(gomega.Equal(ErrUnknownSdnAccountType))

	gomega.Expect(p.AddSdnAccount(&model.SdnAccount{Name: "sdn", AccountType: "test"})).To(gomega.Succeed())
	gomega.Expect(rndr.resync).To(gomega.BeEmpty())

	classifiers := []*model.VnffgrClassifier{
		{Id: "cl1", Name: "web", RspIdRef: "rsp1", VnfrIdRef: "vnfr-ping", CpName: "ping/cp0",
			MatchAttributes: []*model.MatchAttributes{{Id: "m1", IpProto: 6, DestinationPort: 80}}},
	}
	sffs := map[string]*model.Sff{
		"vnfr-sff": {VnfrIdRef: "vnfr-sff", Name: "ns.sff.3", Role: model.SfcRole_SFF,
			ConnectionPoints: []*model.VnfrConnectionPoint{{Name: "sff/cp0", IpAddress: "10.100.1.4"}}},
	}
	vnffgr, err := p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg-1"), classifiers, sffs)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(vnffgr.OperationalStatus).To(gomega.Equal(model.RecordStatus_RUNNING))
	gomega.Expect(vnffgr.SdnAccount).To(gomega.Equal("sdn"))
	gomega.Expect(vnffgr.Rsps[0].PathId).To(gomega.BeEquivalentTo(1))
	gomega.Expect(vnffgr.Classifiers).To(gomega.HaveLen(1))

	gomega.Expect(rndr.added).To(gomega.HaveLen(1))
	chain := rndr.added[0]
	gomega.Expect(chain.Paths[0].Hops).To(gomega.HaveLen(2))
	gomega.Expect(chain.Paths[0].Hops[1].Forwarder).To(gomega.Equal("ns.sff.3"))
	gomega.Expect(chain.Forwarders[0].Addresses).To(gomega.Equal([]string{"10.100.1.4"}))
	gomega.Expect(chain.Classifiers[0].PathName).To(gomega.Equal("ping-to-pong"))

	// the second graph gets the next path ID
	second, err := p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg-2"), nil, nil)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(second.Rsps[0].PathId).To(gomega.BeEquivalentTo(2))
	_, err = p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg-2"), nil, nil)
	gomega.Expect(err).To(gomega.HaveOccurred())

	fetched, err := p.FetchVnffgr(ctx, "sdn", "fg-1")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(fetched.Rsps[0].PathId).To(gomega.BeEquivalentTo(1))
	gomega.Expect(p.getChains()).To(gomega.HaveLen(2))

	// account with graphs cannot be removed
	gomega.Expect(p.RemoveSdnAccount("sdn")).ToNot(gomega.Succeed())

	gomega.Expect(p.TerminateVnffgr(ctx, "sdn", "fg-1")).To(gomega.Succeed())
	gomega.Expect(rndr.deleted).To(gomega.HaveLen(1))
	_, err = p.FetchVnffgr(ctx, "sdn", "fg-1")
	gomega.Expect(pkgerrors.Cause(err)).To(gomega.Equal(ErrChainNotFound))
	gomega.Expect(p.TerminateVnffgr(ctx, "sdn", "fg-1")).To(gomega.Succeed())

	// released path ID is reused
	third, err := p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg-3"), nil, nil)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(third.Rsps[0].PathId).To(gomega.BeEquivalentTo(1))
}

func TestInvalidRequests(t *testing.T) {
	gomega.RegisterTestingT(t)
	p, rndr := newTestPlugin(nil)
	ctx := context.Background()
	gomega.Expect(p.AddSdnAccount(&model.SdnAccount{Name: "sdn", AccountType: "test"})).To(gomega.Succeed())

	_, err := p.CreateVnffgr(ctx, "sdn", &model.Vnffgr{Id: "fg", Name: "empty"}, nil, nil)
	gomega.Expect(err).To(gomega.HaveOccurred())

	unresolved := pingPongGraph("fg")
	unresolved.Rsps[0].Hops[1].VnfrIdRef = ""
	_, err = p.CreateVnffgr(ctx, "sdn", unresolved, nil, nil)
	gomega.Expect(err).To(gomega.HaveOccurred())

	_, err = p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg"),
		[]*model.VnffgrClassifier{{Name: "cl", RspIdRef: "unknown"}}, nil)
	gomega.Expect(err).To(gomega.HaveOccurred())

	// failed rendering releases the path IDs
	rndr.addErr = errors.New("controller unreachable")
	_, err = p.CreateVnffgr(ctx, "sdn", pingPongGraph("fg"), nil, nil)
	gomega.Expect(err).To(gomega.HaveOccurred())
	gomega.Expect(p.pathIDs.allocatedIDs).To(gomega.BeEmpty())
	gomega.Expect(p.getChains()).To(gomega.BeEmpty())
}

func TestRestoreChains(t *testing.T) {
	gomega.RegisterTestingT(t)
	ds := datastore.NewPlugin(datastore.UseDeps(func(deps *datastore.Deps) {
		deps.Broker = broker.NewMockBroker()
	}))
	ds.Log = logging.ForPlugin("datastore-test")
	gomega.Expect(ds.Init()).To(gomega.Succeed())

	published := pingPongGraph("fg-1")
	published.SdnAccount = "sdn"
	published.OperationalStatus = model.RecordStatus_RUNNING
	published.Rsps[0].PathId = 7
	_, err := ds.Create(context.Background(), model.VnffgrKey("fg-1"), published)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	_, err = ds.Create(context.Background(), model.VnffgrKey("fg-2"), &model.Vnffgr{Id: "fg-2"})
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	p, rndr := newTestPlugin(ds)
	gomega.Expect(p.AddSdnAccount(&model.SdnAccount{Name: "sdn", AccountType: "test"})).To(gomega.Succeed())
	gomega.Expect(rndr.resync).To(gomega.HaveLen(1))
	gomega.Expect(rndr.resync[0].Paths[0].PathID).To(gomega.BeEquivalentTo(7))

	fetched, err := p.FetchVnffgr(context.Background(), "sdn", "fg-1")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(fetched.Name).To(gomega.Equal("ns.fg"))
	gomega.Expect(p.pathIDs.allocatedIDs).To(gomega.HaveKey(uint32(7)))
}

func TestPathIDPool(t *testing.T) {
	gomega.RegisterTestingT(t)

	_, err := newPathIDPool(0, 10)
	gomega.Expect(err).To(gomega.HaveOccurred())
	_, err = newPathIDPool(5, 4)
	gomega.Expect(err).To(gomega.HaveOccurred())

	pool, err := newPathIDPool(1, 3, 2)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	id, err := pool.getOrAllocateID("a")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(id).To(gomega.BeEquivalentTo(1))
	id, err = pool.getOrAllocateID("a")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(id).To(gomega.BeEquivalentTo(1))

	// 2 is reserved
	id, err = pool.getOrAllocateID("b")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	gomega.Expect(id).To(gomega.BeEquivalentTo(3))
	_, err = pool.getOrAllocateID("c")
	gomega.Expect(err).To(gomega.HaveOccurred())

	gomega.Expect(pool.reserveID("c", 2)).ToNot(gomega.Succeed())
	gomega.Expect(pool.reserveID("c", 3)).ToNot(gomega.Succeed())
	pool.releaseID("b")
	pool.releaseID("unknown")
	gomega.Expect(pool.reserveID("c", 3)).To(gomega.Succeed())
	gomega.Expect(pool.labels).To(gomega.Equal(map[string]uint32{"a": 1, "c": 3}))
}

func TestReAddSdnAccount(t *testing.T) {
	gomega.RegisterTestingT(t)
	p, _ := newTestPlugin(nil)

	created := 0
	p.RegisterRenderer("counted", func(account *model.SdnAccount, log logging.Logger) (renderer.ChainRendererAPI, error) {
		created++
		return &recordingRenderer{}, nil
	})
	account := &model.SdnAccount{Name: "readded", AccountType: "counted"}

	// every resync adds all configured accounts again
	gomega.Expect(p.AddSdnAccount(account)).To(gomega.Succeed())
	gomega.Expect(p.AddSdnAccount(account)).To(gomega.Succeed())
	gomega.Expect(created).To(gomega.Equal(1))

	// changed account gets a new renderer, logger is reused
	gomega.Expect(p.AddSdnAccount(&model.SdnAccount{Name: "readded", AccountType: "test"})).To(gomega.Succeed())
	gomega.Expect(p.AddSdnAccount(account)).To(gomega.Succeed())
	gomega.Expect(created).To(gomega.Equal(2))

	// a new plugin instance under the same name finds the registered logger
	other, _ := newTestPlugin(nil)
	other.RegisterRenderer("counted", func(account *model.SdnAccount, log logging.Logger) (renderer.ChainRendererAPI, error) {
		created++
		return &recordingRenderer{}, nil
	})
	gomega.Expect(other.AddSdnAccount(account)).To(gomega.Succeed())
	gomega.Expect(created).To(gomega.Equal(3))
}
