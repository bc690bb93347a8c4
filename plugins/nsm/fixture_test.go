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
	"fmt"
	"io/ioutil"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/gogo/protobuf/proto"
	"github.com/onsi/gomega"

	"github.com/ligato/cn-infra/logging"

	"github.com/contiv/nfvo/mock/broker"
	mocknsm "github.com/contiv/nfvo/mock/nsmplugin"
	mockvnffg "github.com/contiv/nfvo/mock/vnffgmgr"
	controller "github.com/contiv/nfvo/plugins/controller/api"
	"github.com/contiv/nfvo/plugins/datastore"
	"github.com/contiv/nfvo/plugins/nsm/model"
	"github.com/contiv/nfvo/plugins/nsmplugin"
)

const (
	testAccountType = "nsm-test"
	testAccount     = "vim"
	testNsrID       = "nsr-1"
	testNsrName     = "ns"

	waitTimeout = "3s"
)

// testConfigAgent records the requests of the NS manager.
type testConfigAgent struct {
	sync.Mutex
	configured []string
	requests   []*ScalingConfigRequest
	scalingErr error
}

func (a *testConfigAgent) ConfigureVnf(ctx context.Context, nsr *model.Nsr, vnfr *model.Vnfr, vnfd *model.Vnfd) error {
	a.Lock()
	defer a.Unlock()
	a.configured = append(a.configured, vnfr.Name)
	return nil
}

func (a *testConfigAgent) ApplyScalingConfig(ctx context.Context, request *ScalingConfigRequest) error {
	a.Lock()
	defer a.Unlock()
	a.requests = append(a.requests, request)
	return a.scalingErr
}

func (a *testConfigAgent) scalingRequests() []*ScalingConfigRequest {
	a.Lock()
	defer a.Unlock()
	return append([]*ScalingConfigRequest(nil), a.requests...)
}

// vlrOutcome selects the answer of the virtual link responder.
type vlrOutcome int

const (
	vlrCreated vlrOutcome = iota
	vlrFailed
	vlrNoResult
)

// testEnv is an NS manager over a real data store with a mock broker,
// a mock NSM backend and a mock VNFFG manager.
type testEnv struct {
	m       *NsManager
	ds      *datastore.DataStore
	broker  *broker.MockBroker
	backend *mocknsm.MockNsmPlugin
	vnffg   *mockvnffg.MockVnffgMgr
	agent   *testConfigAgent
	tmpDir  string

	subnets     int
	vlrOutcomes map[string]vlrOutcome // VLD ID -> responder outcome, set before the NSR is created
}

func newTestEnv(t *testing.T) *testEnv {
	return newTestEnvWithBroker(t, broker.NewMockBroker())
}

func newTestEnvWithBroker(t *testing.T, mb *broker.MockBroker) *testEnv {
	gomega.RegisterTestingT(t)

	env := &testEnv{
		broker:  mb,
		backend: mocknsm.NewMockNsmPlugin(),
		vnffg:   mockvnffg.NewMockVnffgMgr(),
		agent:   &testConfigAgent{},

		vlrOutcomes: make(map[string]vlrOutcome),
	}
	var err error
	env.tmpDir, err = ioutil.TempDir("", "nsm-test")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())

	env.ds = datastore.NewPlugin(datastore.UseDeps(func(deps *datastore.Deps) {
		deps.Broker = mb
	}))
	env.ds.Log = logging.ForPlugin("datastore-test")
	gomega.Expect(env.ds.Init()).To(gomega.Succeed())

	// virtual link manager
	env.ds.RegisterResponder(model.VlrKeyPrefix(), datastore.ResponderFunc(
		func(ctx context.Context, key string, record proto.Message) (proto.Message, error) {
			vlr := record.(*model.Vlr)
			switch env.vlrOutcomes[vlr.VldRef] {
			case vlrFailed:
				vlr.OperationalStatus = model.RecordStatus_FAILED
				return vlr, nil
			case vlrNoResult:
				return nil, nil
			}
			env.subnets++
			vlr.AssignedSubnet = fmt.Sprintf("10.1.%d.0/24", env.subnets)
			vlr.OperationalStatus = model.RecordStatus_RUNNING
			return vlr, nil
		}))

	nsmplugin.Register(testAccountType, env.backend.Factory())

	env.m = NewPlugin(UseDeps(func(deps *Deps) {
		deps.DataStore = env.ds
		deps.VnffgMgr = env.vnffg
		deps.ConfigAgent = env.agent
		deps.HTTPHandlers = nil
	}))
	env.m.Log = logging.ForPlugin("nsm-test")
	env.m.Cfg = nil
	gomega.Expect(env.m.Init()).To(gomega.Succeed())
	env.m.config.ArtifactRoot = env.tmpDir
	env.m.config.VnffgPollInterval = 10 * time.Millisecond
	env.m.config.VnffgReadyTimeout = 2 * time.Second
	return env
}

func (env *testEnv) close() {
	env.m.Close()
	nsmplugin.Unregister(testAccountType)
	os.RemoveAll(env.tmpDir)
}

// configKey returns the key of a configuration record.
func configKey(record proto.Message) string {
	id := model.ConfigID(record)
	switch record.(type) {
	case *model.Nsd:
		return model.NsdKey(id)
	case *model.Vnfd:
		return model.VnfdKey(id)
	case *model.NsrConfig:
		return model.NsrConfigKey(id)
	case *model.CloudAccount:
		return model.CloudAccountKey(id)
	case *model.SdnAccount:
		return model.SdnAccountKey(id)
	}
	panic(fmt.Sprintf("unexpected record %T", record))
}

// apply commits the configuration changes in one transaction and delivers
// the resulting change events to the NS manager, like the controller does.
// Returns the commit error, or the first error of the manager.
func (env *testEnv) apply(puts []proto.Message, deletes ...string) error {
	ctx := context.Background()
	txn := env.ds.NewTxn()
	var changes []*controller.ResourceChange
	for _, record := range puts {
		key := configKey(record)
		keyword, _ := model.ParseKey(key)
		prev := env.stored(key)
		if prev != nil {
			txn.Update(key, record, datastore.Replace)
		} else {
			txn.Create(key, record)
		}
		changes = append(changes, &controller.ResourceChange{
			Resource: keyword, Key: key, PrevValue: prev, NewValue: record,
		})
	}
	for _, key := range deletes {
		keyword, _ := model.ParseKey(key)
		changes = append(changes, &controller.ResourceChange{
			Resource: keyword, Key: key, PrevValue: env.stored(key),
		})
		txn.Delete(key)
	}
	if _, err := txn.Commit(ctx); err != nil {
		return err
	}

	var firstErr error
	for _, change := range changes {
		gomega.Expect(env.m.HandlesEvent(change)).To(gomega.BeTrue())
		if _, err := env.m.Update(change); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// put is apply of a single record.
func (env *testEnv) put(records ...proto.Message) error {
	return env.apply(records)
}

// stored returns the record stored under the key, nil if there is none.
func (env *testEnv) stored(key string) proto.Message {
	it, err := env.ds.Read(context.Background(), key)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	_, record, found := it.Next()
	if !found {
		return nil
	}
	return record
}

// storedKeys returns keys of all records under the prefix.
func (env *testEnv) storedKeys(prefix string) []string {
	it, err := env.ds.Read(context.Background(), prefix+"*")
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
	var keys []string
	for {
		key, _, ok := it.Next()
		if !ok {
			return keys
		}
		keys = append(keys, key)
	}
}

// resources returns the database snapshot as delivered by a resync.
func (env *testEnv) resources() controller.ResourceData {
	resources := make(controller.ResourceData)
	for _, prefix := range []string{model.ConfigPrefix, model.OpdataPrefix} {
		it, err := env.ds.Read(context.Background(), prefix+"*")
		gomega.Expect(err).ToNot(gomega.HaveOccurred())
		for {
			key, record, ok := it.Next()
			if !ok {
				break
			}
			keyword, _ := model.ParseKey(key)
			if resources[keyword] == nil {
				resources[keyword] = make(controller.KeyValuePairs)
			}
			resources[keyword][key] = record
		}
	}
	return resources
}

// vnfrID returns ID of the VNFR with the given name, empty if there is none.
func (env *testEnv) vnfrID(nsrID, name string) string {
	for _, vnfr := range env.m.GetVnfrs(nsrID) {
		if vnfr.Name == name {
			return vnfr.Id
		}
	}
	return ""
}

// vnfrNames returns names of all VNFRs of the NSR.
func (env *testEnv) vnfrNames(nsrID string) []string {
	var names []string
	for _, vnfr := range env.m.GetVnfrs(nsrID) {
		names = append(names, vnfr.Name)
	}
	return names
}

// report publishes the VNF status the way a backend does and delivers
// the change to the manager.
func (env *testEnv) report(nsrID, vnfrName string, status model.RecordStatus) {
	ctx := context.Background()
	var id string
	gomega.Eventually(func() string {
		id = env.vnfrID(nsrID, vnfrName)
		return id
	}, waitTimeout).ShouldNot(gomega.BeEmpty())

	key := model.VnfrKey(id)
	gomega.Eventually(func() proto.Message { return env.stored(key) }, waitTimeout).ShouldNot(gomega.BeNil())
	prev := env.stored(key)
	update := &model.Vnfr{
		OperationalStatus: status,
		ConnectionPoints:  []*model.VnfrConnectionPoint{{Name: "cp0", IpAddress: "192.168.0.1"}},
	}
	if status != model.RecordStatus_RUNNING {
		update.ConnectionPoints = nil
	}
	gomega.Expect(env.ds.Update(ctx, key, update, datastore.Merge)).To(gomega.Succeed())

	change := &controller.ResourceChange{
		Resource: model.VnfrKeyword, Key: key, PrevValue: prev, NewValue: env.stored(key),
	}
	gomega.Expect(env.m.HandlesEvent(change)).To(gomega.BeTrue())
	_, err := env.m.Update(change)
	gomega.Expect(err).ToNot(gomega.HaveOccurred())
}

// state returns the operational state of the NSR.
func (env *testEnv) state(nsrID string) model.NsrState {
	nsr, found := env.m.GetNsr(nsrID)
	if !found {
		return model.NsrState_TERMINATED
	}
	return nsr.OperationalStatus
}

// events returns the names of the operational events of the NSR.
func (env *testEnv) events(nsrID string) []string {
	nsr, found := env.m.GetNsr(nsrID)
	if !found {
		return nil
	}
	var events []string
	for _, ev := range nsr.OperationalEvents {
		events = append(events, ev.Event)
	}
	return events
}

// waitDeployed waits until the instantiation task of the NSR has finished.
func (env *testEnv) waitDeployed(nsrName string) {
	gomega.Eventually(env.backend.Calls, waitTimeout).Should(gomega.ContainElement("Deploy " + nsrName))
}

// withNsr runs f with the record lock held.
func (env *testEnv) withNsr(nsrID string, f func(n *networkServiceRecord)) {
	env.m.Lock()
	defer env.m.Unlock()
	n, exists := env.m.nsrs[nsrID]
	gomega.Expect(exists).To(gomega.BeTrue())
	f(n)
}

/*********************************** Fixtures ***********************************/

func testCloudAccount() *model.CloudAccount {
	return &model.CloudAccount{Name: testAccount, AccountType: testAccountType, SdnAccount: "sdn"}
}

func testVnfds() []proto.Message {
	return []proto.Message{
		&model.Vnfd{
			Id: "ping", Name: "ping",
			ConnectionPoints: []*model.VnfdConnectionPoint{{Name: "cp0"}, {Name: "cp1"}},
		},
		&model.Vnfd{
			Id: "pong", Name: "pong",
			ConnectionPoints: []*model.VnfdConnectionPoint{{Name: "cp0"}},
		},
		&model.Vnfd{
			Id: "scaled", Name: "scaled",
			ConnectionPoints: []*model.VnfdConnectionPoint{{Name: "cp0"}},
		},
	}
}

// testNsd returns an NSD with 2 VLDs and 3 constituent VNFs, two of them
// started by default. With scaling, the third one forms the scaling group "sg"
// with one instance created by default.
func testNsd(scaling bool) *model.Nsd {
	nsd := &model.Nsd{
		Id:   "nsd-1",
		Name: "ping-pong",
		ConstituentVnfds: []*model.ConstituentVnfd{
			{MemberVnfIndex: 1, VnfdIdRef: "ping", StartByDefault: true},
			{MemberVnfIndex: 2, VnfdIdRef: "pong", StartByDefault: true},
			{MemberVnfIndex: 3, VnfdIdRef: "scaled"},
		},
		Vlds: []*model.Vld{
			{
				Id: "vld-mgmt", Name: "mgmt",
				VnfdConnectionPointRefs: []*model.VnfdCpRef{
					{MemberVnfIndexRef: 1, VnfdIdRef: "ping", VnfdConnectionPointRef: "cp0"},
					{MemberVnfIndexRef: 2, VnfdIdRef: "pong", VnfdConnectionPointRef: "cp0"},
					{MemberVnfIndexRef: 3, VnfdIdRef: "scaled", VnfdConnectionPointRef: "cp0"},
				},
			},
			{
				Id: "vld-data", Name: "data",
				VnfdConnectionPointRefs: []*model.VnfdCpRef{
					{MemberVnfIndexRef: 1, VnfdIdRef: "ping", VnfdConnectionPointRef: "cp1"},
				},
			},
		},
	}
	if scaling {
		nsd.ScalingGroupDescriptors = []*model.ScalingGroupDescriptor{{
			Name:             "sg",
			MinInstanceCount: 1,
			MaxInstanceCount: 2,
			VnfdMembers:      []*model.ScalingMember{{MemberVnfIndexRef: 3, Count: 1}},
			ScalingConfigActions: []*model.ScalingConfigAction{
				{Trigger: model.ScalingTrigger_PRE_SCALE_OUT, NsConfigPrimitiveNameRef: "assign-vlan"},
				{Trigger: model.ScalingTrigger_POST_SCALE_IN, NsConfigPrimitiveNameRef: "release-vlan"},
			},
		}}
		nsd.ParameterPools = []*model.ParameterPool{{Name: "vlans", StartValue: 100, EndValue: 102}}
		nsd.ConfigPrimitives = []*model.ConfigPrimitive{
			{
				Name: "assign-vlan",
				Parameters: []*model.PrimitiveParameter{
					{Name: "vlan", ParameterPool: "vlans"},
					{Name: "mtu", DefaultValue: "1500"},
				},
			},
			{
				Name:       "release-vlan",
				Parameters: []*model.PrimitiveParameter{{Name: "vlan", ParameterPool: "vlans"}},
			},
		}
	}
	return nsd
}

func testNsrConfig(nsdID string, instances ...uint32) *model.NsrConfig {
	cfg := &model.NsrConfig{
		Id:           testNsrID,
		Name:         testNsrName,
		NsdRef:       nsdID,
		CloudAccount: testAccount,
	}
	if len(instances) > 0 {
		group := &model.ScalingGroupConfig{ScalingGroupNameRef: "sg"}
		for _, id := range instances {
			group.Instances = append(group.Instances, &model.ScalingInstanceConfig{Id: id})
		}
		cfg.ScalingGroups = []*model.ScalingGroupConfig{group}
	}
	return cfg
}

// setupCatalog configures the accounts, VNFDs and the NSD.
func (env *testEnv) setupCatalog(nsd *model.Nsd) {
	records := []proto.Message{testCloudAccount(), &model.SdnAccount{Name: "sdn", AccountType: "noop"}}
	records = append(records, testVnfds()...)
	gomega.Expect(env.apply(records)).To(gomega.Succeed())
	gomega.Expect(env.put(nsd)).To(gomega.Succeed())
}

// runNsr instantiates the NSR from the NSD and brings all its VNFRs up.
func (env *testEnv) runNsr(nsd *model.Nsd) {
	env.setupCatalog(nsd)
	gomega.Expect(env.put(testNsrConfig(nsd.Id))).To(gomega.Succeed())
	env.waitDeployed(testNsrName)
	for _, name := range env.vnfrNames(testNsrID) {
		env.report(testNsrID, name, model.RecordStatus_RUNNING)
	}
	gomega.Eventually(func() model.NsrState { return env.state(testNsrID) }, waitTimeout).
		Should(gomega.Equal(model.NsrState_RUNNING))
}
